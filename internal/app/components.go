package app

import (
	"github.com/stacklok/roster-sync/internal/coordinator"
	"github.com/stacklok/roster-sync/internal/events"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
)

// AppComponents groups all application components
//
//nolint:revive // This name is fine
type AppComponents struct {
	// Store is the SIS store shared by every institution
	Store sis.Store

	// Institutions are the per-institution handles, in configuration order
	Institutions []*Institution

	// Dispatcher drains the SIS event queue
	Dispatcher events.Dispatcher

	// Reports persists reconciliation reports
	Reports reconcile.ReportStore

	// StatusService records the reconciliation job status
	StatusService status.Service

	// Coordinator schedules reconciliation and runs the event loop
	Coordinator coordinator.Coordinator

	cleanup func()
}

// Institution returns the named institution handle, or nil
func (c *AppComponents) Institution(name string) *Institution {
	for _, inst := range c.Institutions {
		if inst.Name == name {
			return inst
		}
	}
	return nil
}

// Close releases the storage resources
func (c *AppComponents) Close() {
	if c.cleanup != nil {
		c.cleanup()
		c.cleanup = nil
	}
}
