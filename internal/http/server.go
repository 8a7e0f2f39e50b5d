package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finsight/internal/cache"
	"finsight/internal/core"
	"finsight/internal/log"
	"finsight/internal/middleware/ratelimit"
	"finsight/internal/middleware/security"
	"finsight/internal/middleware/trace"
	"finsight/internal/services"
)

// TransactionStore is the persistence surface behind the transaction
// endpoints. *services.TransactionService satisfies it. Backends without a
// local store leave it nil and the endpoints report 501.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, record core.Record) (core.Record, error)
	DeleteTransaction(ctx context.Context, id string) error
	ListMonth(ctx context.Context, month, year int) ([]core.Record, error)
}

var _ TransactionStore = (*services.TransactionService)(nil)

// BudgetStore serves the budget endpoints. *storage.SQLiteRepository
// satisfies it.
type BudgetStore interface {
	SetBudget(ctx context.Context, category string, month, year int, amountCents int64) error
	BudgetTotal(ctx context.Context, month, year int) (int64, error)
}

// Options configures a Server. Insight is required; Store and Budgets are
// nil for backends without local persistence.
type Options struct {
	Addr           string
	Insight        *services.InsightService
	Store          TransactionStore
	Budgets        BudgetStore
	BudgetCacheTTL time.Duration
}

// Server is the JSON API front of the analytics engine.
type Server struct {
	http.Server

	insight *services.InsightService
	store   TransactionStore
	budgets BudgetStore

	// Budget totals come from a table that changes rarely; responses are
	// cached with a TTL and invalidated on budget writes. The manager
	// evicts expired entries in the background so stale totals do not sit
	// in memory between requests.
	budgetCache  cache.Cache[int64]
	cacheManager *cache.Manager

	limiter      *ratelimit.Limiter
	detector     *security.Detector
	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(opts Options) *Server {
	ttl := opts.BudgetCacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	budgetCache := cache.NewLRUCache[int64](100, ttl)
	cacheManager := cache.NewManager(log.New(log.DefaultConfig()))
	cacheManager.Register(budgetCache)
	cacheManager.StartCleanup(ttl)

	s := &Server{
		insight:      opts.Insight,
		store:        opts.Store,
		budgets:      opts.Budgets,
		budgetCache:  budgetCache,
		cacheManager: cacheManager,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		detector:     security.NewDetector(),
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/summary", s.handleMonthSummary)
	mux.HandleFunc("GET /api/summary/category", s.handleCategoryMonthSummary)
	mux.HandleFunc("GET /api/category", s.handleCategorySummary)
	mux.HandleFunc("GET /api/compare", s.handleCompare)
	mux.HandleFunc("GET /api/trends", s.handleTrends)
	mux.HandleFunc("POST /api/ask", s.limited(s.handleAsk))

	mux.HandleFunc("POST /api/transactions", s.limited(s.handleCreateTransaction))
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.limited(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/budgets/total", s.handleBudgetTotal)
	mux.HandleFunc("POST /api/budgets", s.limited(s.handleSetBudget))

	traceMw := trace.NewMiddleware(s.detector.ExtractClientIP)
	headersMw := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	handler := traceMw.Middleware(headersMw.Middleware(s.inspect(mux)))

	s.Server = http.Server{
		Addr:         opts.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// limited applies per-IP rate limiting to write endpoints.
func (s *Server) limited(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := s.detector.ExtractClientIP(r)
		if !s.limiter.Allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
			return
		}
		next(w, r)
	}
}

// inspect logs requests matching known probe patterns. They are still
// served; the signal is for operators, not a block list.
func (s *Server) inspect(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.detector.DetectSuspiciousRequest(r) {
			slog.WarnContext(r.Context(), "Suspicious request pattern",
				"client_ip", s.detector.ExtractClientIP(r),
				"method", r.Method,
				"path", r.URL.Path)
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background cleanup goroutines and drains the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ok"}).Write(w)
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Payload(map[string]string{"status": "ready"}).Write(w)
}
