package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	applog "finance/internal/log"
	"finance/internal/middleware/ratelimit"
	"finance/internal/middleware/security"
	"finance/internal/middleware/trace"
	"finance/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

const readyTimeout = 2 * time.Second

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	CORSAllowedOrigins []string
	RateLimitPerMinute int
	Logger             *applog.Logger
}

type Server struct {
	http.Server
	tx     *services.TransactionService
	auth   *services.AuthService
	store  Pinger
	logger *applog.Logger

	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(addr string, tx *services.TransactionService, auth *services.AuthService, store Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	detector := security.NewDetector()
	s := &Server{
		tx:       tx,
		auth:     auth,
		store:    store,
		logger:   logger,
		detector: detector,
		limiter: ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: opts.RateLimitPerMinute,
			SafeMethodsFree:   true,
		}),
		tracer: trace.NewMiddleware(detector.ExtractClientIP, applog.NewStructuredLogger(logger)),
	}

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.routes(opts.CORSAllowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) routes(origins []string) http.Handler {
	mux := chi.NewRouter()

	mux.Use(s.tracer.Middleware)
	mux.Use(applog.Middleware(s.logger))
	mux.Use(applog.RequestIDMiddleware(trace.RequestIDFromRequest))
	mux.Use(security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware)
	mux.Use(s.detector.Middleware)
	if len(origins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type", trace.RequestIDHeader},
			ExposedHeaders:   []string{trace.RequestIDHeader, "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	mux.Use(s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").Write(w)
	}))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NotFoundError("not found").Write(w)
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusMethodNotAllowed, "method not allowed").Write(w)
	})

	mux.Get("/healthz", handleHealth)
	mux.Get("/readyz", s.handleReady)

	mux.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", s.handleRegister)
		api.Post("/auth/login", s.handleLogin)

		api.Group(func(priv chi.Router) {
			priv.Use(s.requireAuth)

			priv.Post("/auth/logout", s.handleLogout)

			priv.Get("/transactions", s.handleListTransactions)
			priv.Post("/transactions", s.handleCreateTransaction)
			priv.Get("/transactions/export.xlsx", s.handleExport)
			priv.Put("/transactions/{id}", s.handleEditTransaction)
			priv.Delete("/transactions/{id}", s.handleDeleteTransaction)

			priv.Get("/categories", s.handleListCategories)
			priv.Post("/categories", s.handleCreateCategory)
			priv.Delete("/categories/{id}", s.handleDeleteCategory)

			priv.Get("/settings/currency", s.handleGetCurrency)
			priv.Put("/settings/currency", s.handleSetCurrency)

			priv.Get("/reports", s.handleListReports)
			priv.Get("/reports/{kind}", s.handleReport)
		})
	})

	return mux
}

// Shutdown stops the rate limiter and drains the HTTP server. Safe to call
// more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Metrics is a snapshot of the middleware counters.
type Metrics struct {
	Trace              trace.Metrics
	RateLimit          ratelimit.Metrics
	SuspiciousRequests int64
}

func (s *Server) Metrics() Metrics {
	return Metrics{
		Trace:              s.tracer.GetMetrics(),
		RateLimit:          s.limiter.GetMetrics(),
		SuspiciousRequests: s.detector.GetMetrics().SuspiciousRequests,
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("store unavailable"))
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
