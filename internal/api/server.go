// Package api provides the admin HTTP server of the roster sync service.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	v1 "github.com/stacklok/roster-sync/internal/api/v1"
	"github.com/stacklok/roster-sync/internal/coordinator"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
)

// ServerOption configures the API server
type ServerOption func(*serverConfig)

type serverConfig struct {
	middlewares    []func(http.Handler) http.Handler
	institutions   map[string]roster.Operations
	reports        reconcile.ReportStore
	metricsHandler http.Handler
}

// WithMiddlewares adds middleware to the server
func WithMiddlewares(mw ...func(http.Handler) http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.middlewares = append(cfg.middlewares, mw...)
	}
}

// WithInstitution serves the roster operations of an institution
func WithInstitution(name string, ops roster.Operations) ServerOption {
	return func(cfg *serverConfig) {
		cfg.institutions[name] = ops
	}
}

// WithReportStore serves persisted reconciliation reports
func WithReportStore(reports reconcile.ReportStore) ServerOption {
	return func(cfg *serverConfig) {
		cfg.reports = reports
	}
}

// WithMetricsHandler serves h on /metrics
func WithMetricsHandler(h http.Handler) ServerOption {
	return func(cfg *serverConfig) {
		cfg.metricsHandler = h
	}
}

// NewServer creates and configures the HTTP router
func NewServer(
	store sis.Store,
	coord coordinator.Coordinator,
	statusSvc status.Service,
	opts ...ServerOption,
) *chi.Mux {
	cfg := &serverConfig{
		institutions: make(map[string]roster.Operations),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	r := chi.NewRouter()
	for _, mw := range cfg.middlewares {
		r.Use(mw)
	}

	if cfg.metricsHandler != nil {
		r.Handle("/metrics", cfg.metricsHandler)
	}
	r.Mount("/", v1.HealthRouter(store, coord))
	r.Mount("/v1", v1.Router(v1.NewRoutes(store, coord, statusSvc, cfg.reports, cfg.institutions)))

	return r
}

// LoggingMiddleware logs HTTP requests
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
