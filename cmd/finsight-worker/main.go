package main

import (
	"context"
	"errors"
	"os"
	"time"

	"finsight/internal/amqp"
	"finsight/internal/backend"
	"finsight/internal/cli"
	"finsight/internal/log"
	"finsight/internal/sheets"
	gsheet "finsight/internal/sheets/google"
	"finsight/internal/sheets/memory"
	"finsight/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker, os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	logger.Info("Starting finsight-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}

	// The worker never publishes, so it reads through the backend without
	// an AMQP client of its own for writes.
	backendCfg.AMQPURL = ""

	factory := backend.NewFactory(logger.Logger)
	result, err := factory.CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if result.Cleanup != nil {
			if err := result.Cleanup(); err != nil {
				logger.Error("Backend cleanup error", "error", err)
			}
		}
	}()

	// Digest rows go to the spreadsheet when one is configured; otherwise
	// they stay in memory and only the logs show them.
	var digestWriter sheets.DigestWriter
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.New(context.Background(), gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			TransactionSheet:   cfg.GoogleTransactionSheetName,
			DigestSheet:        cfg.GoogleDigestSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		digestWriter = client
		logger.Info("Digest export to Google Sheets enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleDigestSheetName)
	} else {
		digestWriter = memory.New(nil)
		logger.Info("No spreadsheet configured, digests are not archived externally")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	digestWorker := worker.NewDigestWorker(
		backend.Snapshotter(result.Backend),
		digestWriter,
		amqpClient,
		cfg.TrendWindow,
		cfg.DigestInterval,
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, nil)

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"trend_window", cfg.TrendWindow,
		"digest_interval", cfg.DigestInterval.String())

	if err := digestWorker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
