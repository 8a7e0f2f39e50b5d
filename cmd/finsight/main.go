package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finsight/internal/backend"
	"finsight/internal/cli"
	apphttp "finsight/internal/http"
	"finsight/internal/log"
	"finsight/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	if err := backendCfg.Validate(); err != nil {
		logger.Error("Backend configuration validation failed", "error", err)
		os.Exit(1)
	}

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	insight := services.NewInsightService(backend.Snapshotter(result.Backend), cfg.TrendWindow, logger)

	opts := apphttp.Options{
		Addr:           cfg.ListenAddr(),
		Insight:        insight,
		BudgetCacheTTL: cfg.BudgetCacheTTL,
	}
	if result.Transactions != nil {
		opts.Store = result.Transactions
	}
	if result.Budgets != nil {
		opts.Budgets = result.Budgets
	}
	srv := apphttp.NewServer(opts)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	})

	logger.Info("Starting finsight server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"trend_window", cfg.TrendWindow)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
