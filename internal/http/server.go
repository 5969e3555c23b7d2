// Package http exposes the ledger and analytics services as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	applog "fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures the server.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	MaxBodyBytes       int64
	RequestTimeout     time.Duration
	Logger             *applog.Logger
}

type appMetrics struct {
	started             time.Time
	transactionsCreated int64
	transactionsUpdated int64
	transactionsDeleted int64
	budgetsUpserted     int64
	summariesComputed   int64
}

type Server struct {
	http.Server
	ledger       *services.LedgerService
	analytics    *services.AnalyticsService
	store        Pinger
	logger       *applog.Logger
	rateLimiter  *rateLimiter
	maxBodyBytes int64

	metrics    securityMetrics
	appMetrics appMetrics

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware around the given store.
func NewServer(opts Options, store storage.Store, ledger *services.LedgerService, analytics *services.AnalyticsService) *Server {
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 << 10
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 15 * time.Second
	}

	s := &Server{
		ledger:       ledger,
		analytics:    analytics,
		store:        store,
		logger:       opts.Logger.WithComponent(applog.ComponentHTTP),
		rateLimiter:  newRateLimiter(opts.RateLimitPerMinute),
		maxBodyBytes: opts.MaxBodyBytes,
		appMetrics:   appMetrics{started: time.Now()},
	}
	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.routes(opts.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       opts.RequestTimeout,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(timeout time.Duration) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(applog.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.securityHeaders)

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", s.handleMetrics)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))
		r.Use(s.limitMutations)

		r.Get("/categories", s.handleCategories)
		r.Get("/analytics", s.handleAnalytics)

		r.Route("/budgets", func(r chi.Router) {
			r.Get("/", s.handleListBudgets)
			r.Post("/", s.handleUpsertBudget)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", s.handleListTransactions)
			r.Post("/", s.handleCreateTransaction)
			r.Put("/{id}", s.handleUpdateTransaction)
			r.Delete("/{id}", s.handleDeleteTransaction)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Shutdown stops the rate limiter janitor and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}
