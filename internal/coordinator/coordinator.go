package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stacklok/roster-sync/internal/events"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/status"
)

//go:generate mockgen -destination=mocks/mock_coordinator.go -package=mocks -source=coordinator.go Coordinator

// DefaultJitter is the maximum random delay added to each scheduled run
const DefaultJitter = 30 * time.Second

var (
	// ErrUnknownInstitution is returned by Trigger for an institution without a job
	ErrUnknownInstitution = errors.New("unknown institution")

	// ErrNotStarted is returned by Trigger before Start
	ErrNotStarted = errors.New("coordinator not started")
)

// Job is the reconciliation schedule of one institution
type Job struct {
	Institution string

	// Interval between runs. Zero means the job only runs when triggered.
	Interval time.Duration

	Engine reconcile.Engine
}

// Coordinator manages the background reconciliation schedule and the event loop
type Coordinator interface {
	// Start initializes the job status, starts the timers and the event loop,
	// and blocks until the context is cancelled or Stop is called
	Start(ctx context.Context) error

	// Stop cancels all background work and waits for it to finish
	Stop() error

	// Ready reports whether Start has finished initializing
	Ready() bool

	// Trigger starts a reconciliation run in the background.
	// It fails with reconcile.ErrRunInProgress when a run is already active.
	Trigger(institution string, opts reconcile.RunOptions) error
}

type options struct {
	jobs       []Job
	dispatcher events.Dispatcher
	statusSvc  status.Service
	jitter     time.Duration
}

// Option configures the coordinator
type Option func(*options) error

// WithJob adds an institution's reconciliation job
func WithJob(job Job) Option {
	return func(o *options) error {
		if job.Institution == "" {
			return fmt.Errorf("job institution must not be empty")
		}
		if job.Engine == nil {
			return fmt.Errorf("job for %s has no engine", job.Institution)
		}
		if job.Interval < 0 {
			return fmt.Errorf("job for %s has a negative interval", job.Institution)
		}
		if slices.ContainsFunc(o.jobs, func(j Job) bool { return j.Institution == job.Institution }) {
			return fmt.Errorf("duplicate job for institution %s", job.Institution)
		}
		o.jobs = append(o.jobs, job)
		return nil
	}
}

// WithDispatcher sets the event loop started alongside the timers
func WithDispatcher(d events.Dispatcher) Option {
	return func(o *options) error {
		o.dispatcher = d
		return nil
	}
}

// WithStatusService sets where job status is recorded
func WithStatusService(svc status.Service) Option {
	return func(o *options) error {
		o.statusSvc = svc
		return nil
	}
}

// WithJitter sets the maximum random delay added to scheduled runs
func WithJitter(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("jitter must not be negative")
		}
		o.jitter = d
		return nil
	}
}

type defaultCoordinator struct {
	jobs       map[string]Job
	order      []string
	dispatcher events.Dispatcher
	statusSvc  status.Service
	jitter     time.Duration

	ready atomic.Bool

	mu     sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	done   chan struct{}
	runs   sync.WaitGroup
}

var _ Coordinator = (*defaultCoordinator)(nil)

// New creates a Coordinator. A status service is required.
func New(opts ...Option) (Coordinator, error) {
	o := &options{jitter: DefaultJitter}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.statusSvc == nil {
		return nil, fmt.Errorf("status service is required")
	}

	c := &defaultCoordinator{
		jobs:       make(map[string]Job, len(o.jobs)),
		dispatcher: o.dispatcher,
		statusSvc:  o.statusSvc,
		jitter:     o.jitter,
	}
	for _, job := range o.jobs {
		c.jobs[job.Institution] = job
		c.order = append(c.order, job.Institution)
	}
	return c, nil
}

func (c *defaultCoordinator) Ready() bool {
	return c.ready.Load()
}

func (c *defaultCoordinator) Start(ctx context.Context) error {
	slog.Info("Starting background coordinator", "institution_count", len(c.jobs))

	if err := c.statusSvc.Initialize(ctx, c.order); err != nil {
		return fmt.Errorf("failed to initialize job status: %w", err)
	}

	coordCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("coordinator already started")
	}
	c.runCtx, c.cancel, c.done = coordCtx, cancel, done
	c.mu.Unlock()

	defer func() {
		c.ready.Store(false)
		c.mu.Lock()
		cancel()
		c.mu.Unlock()
		c.runs.Wait()
		close(done)
		slog.Info("Background coordinator shut down")
	}()

	var loops sync.WaitGroup
	if c.dispatcher != nil {
		loops.Add(1)
		go func() {
			defer loops.Done()
			if err := c.dispatcher.Start(coordCtx); err != nil {
				slog.Error("Event loop exited with error", "error", err)
			}
		}()
	}

	for _, name := range c.order {
		job := c.jobs[name]
		if job.Interval == 0 {
			slog.Info("Reconciliation runs on demand only", "institution", name)
			continue
		}
		loops.Add(1)
		go func() {
			defer loops.Done()
			c.schedule(coordCtx, job)
		}()
	}

	c.ready.Store(true)
	<-coordCtx.Done()
	slog.Info("Coordinator stopping")
	loops.Wait()
	return nil
}

func (c *defaultCoordinator) Stop() error {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping coordinator")
		cancel()
		<-done
	}
	return nil
}

func (c *defaultCoordinator) Trigger(institution string, opts reconcile.RunOptions) error {
	job, ok := c.jobs[institution]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownInstitution, institution)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.runCtx == nil || c.runCtx.Err() != nil {
		return ErrNotStarted
	}
	if job.Engine.Running() {
		return fmt.Errorf("%w for %s", reconcile.ErrRunInProgress, institution)
	}

	ctx := c.runCtx
	c.runs.Add(1)
	go func() {
		defer c.runs.Done()
		c.performRun(ctx, job, opts)
	}()
	return nil
}

// schedule runs the job every interval until ctx is done
func (c *defaultCoordinator) schedule(ctx context.Context, job Job) {
	var lastRun *time.Time
	if st, err := c.statusSvc.GetStatus(ctx, job.Institution); err == nil {
		lastRun = st.LastRunTime
	}

	delay := nextRunDelay(lastRun, job.Interval, time.Now()) + jitter(c.jitter)
	slog.Info("Scheduled reconciliation",
		"institution", job.Institution, "interval", job.Interval, "first_run_in", delay.Round(time.Second))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			c.performRun(ctx, job, reconcile.RunOptions{})
			timer.Reset(job.Interval + jitter(c.jitter))
		case <-ctx.Done():
			return
		}
	}
}

// performRun executes one run and records its outcome
func (c *defaultCoordinator) performRun(ctx context.Context, job Job, opts reconcile.RunOptions) {
	name := job.Institution
	start := time.Now()

	if job.Engine.Running() {
		slog.Info("Skipping reconciliation, another run is active", "institution", name)
		return
	}

	// final defaults to failed so an early exit never leaves the job running
	final := func(s *status.JobStatus) {
		s.Phase = status.PhaseFailed
		s.Message = fmt.Sprintf("Unexpected failure while reconciling institution %s", name)
		s.Term = ""
		s.AttemptCount++
	}
	skip := false
	defer func() {
		if skip {
			return
		}
		if err := c.statusSvc.UpdateStatus(context.WithoutCancel(ctx), name, final); err != nil {
			slog.Error("Error updating job status", "institution", name, "error", err)
		}
	}()

	if err := c.statusSvc.UpdateStatus(ctx, name, func(s *status.JobStatus) {
		s.Phase = status.PhaseRunning
		s.Message = "Reconciliation started"
		s.LastAttempt = &start
	}); err != nil {
		slog.Warn("Error updating job status", "institution", name, "error", err)
	}

	reports, runErr := job.Engine.Run(ctx, opts)
	if errors.Is(runErr, reconcile.ErrRunInProgress) {
		slog.Info("Skipping reconciliation, another run is active", "institution", name)
		skip = true
		return
	}

	duration := time.Since(start).Round(time.Millisecond)
	terms := summarize(reports)
	if runErr != nil {
		slog.Error("Reconciliation failed", "institution", name, "duration", duration, "error", runErr)
		final = func(s *status.JobStatus) {
			s.Phase = status.PhaseFailed
			s.Message = runErr.Error()
			s.Term = ""
			s.AttemptCount++
			s.LastDuration = duration.String()
			s.Terms = terms
		}
		return
	}

	now := time.Now()
	message := "Reconciliation completed successfully"
	if opts.DryRun {
		message = "Dry run completed successfully"
	}
	slog.Info(message, "institution", name, "terms", len(terms), "duration", duration)
	final = func(s *status.JobStatus) {
		s.Phase = status.PhaseComplete
		s.Message = message
		s.Term = ""
		s.AttemptCount = 0
		s.LastRunTime = &now
		s.LastDuration = duration.String()
		s.Terms = terms
	}
}
