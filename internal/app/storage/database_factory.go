package storage

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/config"
	"github.com/stacklok/roster-sync/internal/db"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
)

// DatabaseFactory creates a PostgreSQL-backed SIS store. Status and reports
// are written to the configured directories on fs.
type DatabaseFactory struct {
	config *config.Config
	pool   *pgxpool.Pool
	fs     afero.Fs
	tracer trace.Tracer
}

var _ Factory = (*DatabaseFactory)(nil)

// DatabaseFactoryOption is a functional option for configuring the DatabaseFactory
type DatabaseFactoryOption func(*DatabaseFactory)

// WithTracer sets the OpenTelemetry tracer for the SIS store.
// If not set, tracing will be disabled (no-op).
func WithTracer(tracer trace.Tracer) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.tracer = tracer
	}
}

// WithFilesystem sets the filesystem for status and report files. Defaults to the OS filesystem.
func WithFilesystem(fs afero.Fs) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.fs = fs
	}
}

// WithConnectionPool uses an existing pool instead of dialing the configured database.
// The factory takes ownership and closes it on Cleanup.
func WithConnectionPool(pool *pgxpool.Pool) DatabaseFactoryOption {
	return func(f *DatabaseFactory) {
		f.pool = pool
	}
}

// NewDatabaseFactory creates a new database-backed storage factory.
// Unless a pool is injected it connects to the configured PostgreSQL database.
func NewDatabaseFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (*DatabaseFactory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	factory := &DatabaseFactory{config: cfg, fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(factory)
	}

	if factory.pool == nil {
		if cfg.Database == nil {
			return nil, fmt.Errorf("database configuration is required")
		}
		slog.Info("Creating database-backed storage factory")

		pool, err := db.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection pool: %w", err)
		}
		factory.pool = pool
	}

	return factory, nil
}

// CreateStore creates the PostgreSQL SIS store
func (d *DatabaseFactory) CreateStore(_ context.Context) (sis.Store, error) {
	slog.Debug("Creating database-backed SIS store")

	opts := []sis.Option{sis.WithConnectionPool(d.pool)}
	if d.tracer != nil {
		opts = append(opts, sis.WithTracer(d.tracer))
		slog.Debug("SIS store tracing enabled")
	}
	return sis.New(opts...)
}

// CreateStatusPersistence creates file-backed job status persistence under the status directory
func (d *DatabaseFactory) CreateStatusPersistence(_ context.Context) (status.StatusPersistence, error) {
	dir := d.config.GetStatusDir()
	if err := d.fs.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create status directory %s: %w", dir, err)
	}
	return status.NewFileStatusPersistence(d.fs, dir), nil
}

// CreateReportStore creates the report store under the reports directory
func (d *DatabaseFactory) CreateReportStore(_ context.Context) (reconcile.ReportStore, error) {
	dir := d.config.GetReportsDir()
	if err := d.fs.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create reports directory %s: %w", dir, err)
	}
	return reconcile.NewReportStore(d.fs, dir, d.config.GetReportRetention()), nil
}

// Cleanup closes the database connection pool
func (d *DatabaseFactory) Cleanup() {
	if d.pool != nil {
		slog.Info("Closing database connection pool")
		d.pool.Close()
	}
}
