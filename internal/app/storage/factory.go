// Package storage creates the storage-dependent components of the service as a family:
// the SIS store backed by PostgreSQL and the file-backed status and report stores.
package storage

import (
	"context"
	"fmt"

	"github.com/stacklok/roster-sync/internal/config"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
)

//go:generate mockgen -destination=mocks/mock_factory.go -package=mocks -source=factory.go Factory

// Factory creates storage-dependent components and owns their resources
type Factory interface {
	// CreateStore creates the SIS store
	CreateStore(ctx context.Context) (sis.Store, error)

	// CreateStatusPersistence creates the job status persistence
	CreateStatusPersistence(ctx context.Context) (status.StatusPersistence, error)

	// CreateReportStore creates the reconciliation report store
	CreateReportStore(ctx context.Context) (reconcile.ReportStore, error)

	// Cleanup releases the resources held by the factory, e.g. the connection pool
	Cleanup()
}

// NewStorageFactory creates the production storage factory for cfg
func NewStorageFactory(ctx context.Context, cfg *config.Config, opts ...DatabaseFactoryOption) (Factory, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	return NewDatabaseFactory(ctx, cfg, opts...)
}
