// Package coordinator schedules the background work of the roster sync service.
//
// A Coordinator owns one reconciliation timer per institution and the event
// ingestion loop. It records every run in the status service so the job state
// survives restarts and can be served by the admin API.
//
// # Scheduling
//
// The delay before an institution's next run is derived from its persisted
// status: if the last successful run is older than the configured interval the
// run starts right away, otherwise the coordinator waits for the remainder.
// A random jitter is added so that replicas do not hit the LMS at the same moment.
//
// Runs can also be requested on demand with Trigger. The engine's own guard
// rejects a second concurrent run for the same institution.
//
// # Lifecycle
//
//	c, err := coordinator.New(
//	    coordinator.WithStatusService(statusSvc),
//	    coordinator.WithDispatcher(dispatcher),
//	    coordinator.WithJob(coordinator.Job{Institution: "foothill", Interval: 6 * time.Hour, Engine: engine}),
//	)
//	go func() { _ = c.Start(ctx) }()
//	...
//	_ = c.Stop()
//
// Stop cancels the timers and the event loop and waits for runs in flight.
package coordinator
