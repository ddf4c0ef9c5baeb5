package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_dispatcher.go -package=mocks -source=dispatcher.go Dispatcher

const (
	// DefaultBatchSize is the number of events fetched per poll
	DefaultBatchSize = 100
	// DefaultConcurrency is the number of events processed in parallel
	DefaultConcurrency = 4
	// DefaultInterval is the delay between the end of one poll and the start of the next
	DefaultInterval = 15 * time.Second

	// TracerName is the name used for the dispatcher tracer
	TracerName = "github.com/stacklok/roster-sync/events"

	// termDiscriminatorIndex is the position of the institution character in a term code
	termDiscriminatorIndex = 5
)

// Outcomes recorded per event
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeRetained = "retained"
)

var (
	// ErrUnknownInstitution is returned when no institution owns a term code
	ErrUnknownInstitution = errors.New("no institution for term")
	// ErrUnknownEventType is returned for event types the dispatcher cannot route
	ErrUnknownEventType = errors.New("unknown event type")
	// ErrAlreadyRunning is returned by Start when the loop is already running
	ErrAlreadyRunning = errors.New("event loop is already running")
)

// Route binds an institution's term discriminator to its roster operations
type Route struct {
	Institution   string
	Discriminator string
	Enabled       bool
	Operations    roster.Operations
}

// Summary counts what happened to the events of one poll
type Summary struct {
	Fetched  int `json:"fetched"`
	Applied  int `json:"applied"`
	Rejected int `json:"rejected"`
	Retained int `json:"retained"`
}

// Dispatcher polls the event queue and applies events
type Dispatcher interface {
	// PollOnce fetches one batch of pending events and processes it
	PollOnce(ctx context.Context) (*Summary, error)

	// Start polls until ctx is cancelled or Stop is called.
	// Blocks for the lifetime of the loop.
	Start(ctx context.Context) error

	// Stop ends the loop and waits for the current poll to finish
	Stop() error
}

type options struct {
	store       sis.Store
	routes      []Route
	batchSize   int
	concurrency int
	interval    time.Duration
	metrics     *telemetry.EventMetrics
	tracer      trace.Tracer
}

// Option configures the dispatcher
type Option func(*options) error

// WithStore sets the store holding the event queue
func WithStore(store sis.Store) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("store must not be nil")
		}
		o.store = store
		return nil
	}
}

// WithRoute registers an institution. A disabled route needs no operations.
func WithRoute(route Route) Option {
	return func(o *options) error {
		if len(route.Discriminator) != 1 {
			return fmt.Errorf("institution %s: discriminator must be a single character", route.Institution)
		}
		if route.Enabled && route.Operations == nil {
			return fmt.Errorf("institution %s: operations must not be nil", route.Institution)
		}
		for _, r := range o.routes {
			if r.Discriminator == route.Discriminator {
				return fmt.Errorf("institutions %s and %s share discriminator %q",
					r.Institution, route.Institution, route.Discriminator)
			}
		}
		o.routes = append(o.routes, route)
		return nil
	}
}

// WithBatchSize sets how many events are fetched per poll
func WithBatchSize(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("batch size must be at least 1, got %d", n)
		}
		o.batchSize = n
		return nil
	}
}

// WithConcurrency sets how many events are processed in parallel
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		o.concurrency = n
		return nil
	}
}

// WithInterval sets the delay between polls
func WithInterval(d time.Duration) Option {
	return func(o *options) error {
		if d <= 0 {
			return fmt.Errorf("interval must be positive, got %s", d)
		}
		o.interval = d
		return nil
	}
}

// WithMetrics sets the event metrics
func WithMetrics(m *telemetry.EventMetrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithTracer sets the tracer for poll and event spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

type defaultDispatcher struct {
	store       sis.Store
	routes      map[byte]Route
	batchSize   int
	concurrency int
	interval    time.Duration
	metrics     *telemetry.EventMetrics
	tracer      trace.Tracer

	running atomic.Bool
	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
}

var _ Dispatcher = (*defaultDispatcher)(nil)

// New creates a Dispatcher. A store is required.
func New(opts ...Option) (Dispatcher, error) {
	o := &options{
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		interval:    DefaultInterval,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		return nil, fmt.Errorf("store is required")
	}

	routes := make(map[byte]Route, len(o.routes))
	for _, r := range o.routes {
		routes[r.Discriminator[0]] = r
	}

	return &defaultDispatcher{
		store:       o.store,
		routes:      routes,
		batchSize:   o.batchSize,
		concurrency: o.concurrency,
		interval:    o.interval,
		metrics:     o.metrics,
		tracer:      o.tracer,
	}, nil
}

// route resolves the institution owning term
func (d *defaultDispatcher) route(term string) (Route, error) {
	if len(term) <= termDiscriminatorIndex {
		return Route{}, fmt.Errorf("%w: %q is too short", ErrUnknownInstitution, term)
	}
	r, ok := d.routes[term[termDiscriminatorIndex]]
	if !ok {
		return Route{}, fmt.Errorf("%w: %q", ErrUnknownInstitution, term)
	}
	return r, nil
}

func (d *defaultDispatcher) PollOnce(ctx context.Context) (_ *Summary, retErr error) {
	ctx, span := otel.StartSpan(ctx, d.tracer, "events.PollOnce")
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	start := time.Now()
	defer func() { d.metrics.RecordPollDuration(ctx, time.Since(start)) }()

	batch, err := d.store.GetPendingEvents(ctx, d.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending events: %w", err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(batch)))

	summary := &Summary{Fetched: len(batch)}
	if len(batch) == 0 {
		return summary, nil
	}

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(d.concurrency)
	for _, e := range batch {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			// An event in flight runs to completion even if the poll is cancelled.
			outcome := d.handle(context.WithoutCancel(ctx), e)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeApplied:
				summary.Applied++
			case OutcomeRejected:
				summary.Rejected++
			}
			return nil
		})
	}
	_ = g.Wait()

	// Includes events never started because the poll was cancelled.
	summary.Retained = summary.Fetched - summary.Applied - summary.Rejected

	slog.Info("Processed SIS events",
		"fetched", summary.Fetched,
		"applied", summary.Applied,
		"rejected", summary.Rejected,
		"retained", summary.Retained)
	return summary, nil
}

// handle applies one event and settles its fate in the queue
func (d *defaultDispatcher) handle(ctx context.Context, e sis.Event) (outcome string) {
	ctx, span := otel.StartSpan(ctx, d.tracer, "events.handle",
		otel.SectionAttributes(e.Term, e.CRN),
		trace.WithAttributes(
			otel.AttrEventID.Int64(e.ID),
			otel.AttrEventType.String(e.Type.String()),
			otel.AttrPersonID.Int64(e.PersonID),
		))
	defer span.End()

	institution := ""
	defer func() { d.metrics.RecordEvent(ctx, institution, e.Type.String(), outcome) }()

	r, err := d.route(e.Term)
	if err != nil {
		slog.Warn("Discarding event for unknown institution",
			"event_id", e.ID, "type", e.Type.String(), "term", e.Term, "error", err)
		return d.discard(ctx, e, OutcomeRejected)
	}
	institution = r.Institution
	span.SetAttributes(otel.AttrInstitution.String(institution))

	if !r.Enabled {
		slog.Debug("Discarding event for disabled institution",
			"institution", institution, "event_id", e.ID, "type", e.Type.String())
		return d.discard(ctx, e, OutcomeRejected)
	}

	err = d.apply(ctx, r.Operations, e)
	switch {
	case err == nil:
		slog.Info("Applied SIS event",
			"institution", institution, "event_id", e.ID, "type", e.Type.String(),
			"term", e.Term, "crn", e.CRN, "person_id", e.PersonID)
		return d.discard(ctx, e, OutcomeApplied)
	case isTerminal(err):
		slog.Warn("Discarding SIS event that cannot be applied",
			"institution", institution, "event_id", e.ID, "type", e.Type.String(),
			"term", e.Term, "crn", e.CRN, "person_id", e.PersonID, "error", err)
		return d.discard(ctx, e, OutcomeRejected)
	default:
		otel.RecordError(span, err)
		slog.Error("Failed to apply SIS event, will retry",
			"institution", institution, "event_id", e.ID, "type", e.Type.String(),
			"term", e.Term, "crn", e.CRN, "person_id", e.PersonID, "error", err)
		return OutcomeRetained
	}
}

func (d *defaultDispatcher) apply(ctx context.Context, ops roster.Operations, e sis.Event) error {
	switch e.Type {
	case sis.EventPersonSync:
		return ops.SyncPerson(ctx, e.PersonID)
	case sis.EventStudentEnroll:
		person, err := d.store.GetPerson(ctx, sis.ByID(e.PersonID))
		if err != nil {
			return err
		}
		return ops.EnrollStudent(ctx, e.Term, e.CRN, person)
	case sis.EventStudentDrop:
		return ops.DropStudent(ctx, e.Term, e.CRN, e.PersonID)
	case sis.EventSectionCancel:
		return ops.DeleteSection(ctx, e.Term, e.CRN, sis.PolicyStrict, nil)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEventType, e.Type)
	}
}

// discard deletes e from the queue. A failed delete leaves the event for the next poll.
func (d *defaultDispatcher) discard(ctx context.Context, e sis.Event, outcome string) string {
	if err := d.store.DeleteEvent(ctx, e.ID); err != nil {
		slog.Error("Failed to delete SIS event", "event_id", e.ID, "error", err)
		return OutcomeRetained
	}
	return outcome
}

// isTerminal reports whether err means the event can never be applied
func isTerminal(err error) bool {
	return sis.IsNotTracked(err) ||
		errors.Is(err, sis.ErrPersonNotFound) ||
		errors.Is(err, ErrUnknownEventType)
}

func (d *defaultDispatcher) Start(ctx context.Context) error {
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	d.mu.Lock()
	d.cancel, d.done = cancel, done
	d.mu.Unlock()
	defer func() {
		cancel()
		close(done)
		slog.Info("Event loop stopped")
	}()

	slog.Info("Starting event loop",
		"interval", d.interval, "batch_size", d.batchSize, "concurrency", d.concurrency)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			if _, err := d.PollOnce(loopCtx); err != nil {
				slog.Error("Event poll failed", "error", err)
			}
			timer.Reset(d.interval)
		case <-loopCtx.Done():
			return nil
		}
	}
}

func (d *defaultDispatcher) Stop() error {
	d.mu.Lock()
	cancel, done := d.cancel, d.done
	d.mu.Unlock()

	if cancel != nil {
		slog.Info("Stopping event loop")
		cancel()
		<-done
	}
	return nil
}
