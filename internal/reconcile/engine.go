package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sync/atomic"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/telemetry"
)

//go:generate mockgen -destination=mocks/mock_engine.go -package=mocks -source=engine.go Engine

const (
	// TracerName is the name used for the reconciliation tracer
	TracerName = "github.com/stacklok/roster-sync/reconcile"

	// courseFanOut bounds concurrent enrollment listings per term
	courseFanOut = 16

	defaultPersonPattern = `^[0-9]{8}$`
)

// ErrRunInProgress is returned when a reconciliation run is already active for the institution
var ErrRunInProgress = errors.New("reconciliation already in progress")

// Phase is the state of the engine
type Phase string

// Engine phases
const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseReporting Phase = "reporting"
)

// PhaseListener is told about every phase change. term is empty for PhaseIdle.
type PhaseListener func(phase Phase, term string)

// RunOptions modify a single run
type RunOptions struct {
	// DryRun computes the diff and the reports without mutating anything
	DryRun bool
}

// Engine reconciles the rosters of one institution
type Engine interface {
	// Run reconciles every current term. It fails with ErrRunInProgress
	// without side effects when another run is active.
	Run(ctx context.Context, opts RunOptions) ([]*Report, error)

	// Running reports whether a run is active
	Running() bool
}

type options struct {
	institution   string
	store         sis.Store
	client        lms.Client
	operations    roster.Operations
	reports       ReportStore
	blacklist     []glob.Glob
	personPattern *regexp.Regexp
	listener      PhaseListener
	metrics       *telemetry.ReconcileMetrics
	tracer        trace.Tracer
}

// Option configures the engine
type Option func(*options) error

// WithInstitution names the institution whose terms are reconciled
func WithInstitution(name string) Option {
	return func(o *options) error {
		if name == "" {
			return fmt.Errorf("institution must not be empty")
		}
		o.institution = name
		return nil
	}
}

// WithStore sets the SIS store
func WithStore(store sis.Store) Option {
	return func(o *options) error {
		o.store = store
		return nil
	}
}

// WithClient sets the LMS client
func WithClient(client lms.Client) Option {
	return func(o *options) error {
		o.client = client
		return nil
	}
}

// WithOperations sets the roster operations used for corrections
func WithOperations(ops roster.Operations) Option {
	return func(o *options) error {
		o.operations = ops
		return nil
	}
}

// WithReportStore sets where reports are persisted. Without one, reports are only returned.
func WithReportStore(reports ReportStore) Option {
	return func(o *options) error {
		o.reports = reports
		return nil
	}
}

// WithBlacklist sets the term globs that are never reconciled
func WithBlacklist(globs []glob.Glob) Option {
	return func(o *options) error {
		o.blacklist = globs
		return nil
	}
}

// WithPersonPattern sets the pattern LMS external ids must match to be reconciled
func WithPersonPattern(pattern *regexp.Regexp) Option {
	return func(o *options) error {
		if pattern == nil {
			return fmt.Errorf("person pattern must not be nil")
		}
		o.personPattern = pattern
		return nil
	}
}

// WithPhaseListener sets a callback for phase changes
func WithPhaseListener(l PhaseListener) Option {
	return func(o *options) error {
		o.listener = l
		return nil
	}
}

// WithMetrics sets the reconciliation metrics
func WithMetrics(m *telemetry.ReconcileMetrics) Option {
	return func(o *options) error {
		o.metrics = m
		return nil
	}
}

// WithTracer sets the tracer for run spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

type defaultEngine struct {
	institution   string
	store         sis.Store
	client        lms.Client
	operations    roster.Operations
	reports       ReportStore
	blacklist     []glob.Glob
	personPattern *regexp.Regexp
	listener      PhaseListener
	metrics       *telemetry.ReconcileMetrics
	tracer        trace.Tracer

	running atomic.Bool
}

var _ Engine = (*defaultEngine)(nil)

// New creates an Engine. The institution, store, client and operations are required.
func New(opts ...Option) (Engine, error) {
	o := &options{personPattern: regexp.MustCompile(defaultPersonPattern)}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}

	switch {
	case o.institution == "":
		return nil, fmt.Errorf("institution is required")
	case o.store == nil:
		return nil, fmt.Errorf("store is required")
	case o.client == nil:
		return nil, fmt.Errorf("lms client is required")
	case o.operations == nil:
		return nil, fmt.Errorf("roster operations are required")
	}

	return &defaultEngine{
		institution:   o.institution,
		store:         o.store,
		client:        o.client,
		operations:    o.operations,
		reports:       o.reports,
		blacklist:     o.blacklist,
		personPattern: o.personPattern,
		listener:      o.listener,
		metrics:       o.metrics,
		tracer:        o.tracer,
	}, nil
}

func (e *defaultEngine) Running() bool {
	return e.running.Load()
}

func (e *defaultEngine) setPhase(phase Phase, term string) {
	if e.listener != nil {
		e.listener(phase, term)
	}
}

func (e *defaultEngine) Run(ctx context.Context, opts RunOptions) (_ []*Report, retErr error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, fmt.Errorf("%w for %s", ErrRunInProgress, e.institution)
	}
	defer e.running.Store(false)

	runID := uuid.NewString()
	ctx, span := otel.StartSpan(ctx, e.tracer, "reconcile.Run", trace.WithAttributes(
		otel.AttrInstitution.String(e.institution),
	))
	start := time.Now()
	defer func() {
		e.metrics.RecordRunDuration(ctx, e.institution, time.Since(start), retErr == nil)
		otel.RecordError(span, retErr)
		span.End()
		e.setPhase(PhaseIdle, "")
	}()

	slog.Info("Starting enrollment reconciliation",
		"institution", e.institution, "run_id", runID, "dry_run", opts.DryRun)

	terms, err := e.store.GetCurrentTerms(ctx, e.institution)
	if err != nil {
		return nil, fmt.Errorf("failed to get current terms: %w", err)
	}

	var (
		reports []*Report
		errs    []error
	)
	for _, term := range terms {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		if e.blacklisted(term) {
			slog.Info("Skipping blacklisted term", "institution", e.institution, "term", term)
			continue
		}

		enrollmentTerm, err := e.client.GetEnrollmentTermBySISID(ctx, term)
		if errors.Is(err, lms.ErrEnrollmentTermNotFound) {
			slog.Info("Skipping term without LMS enrollment term", "institution", e.institution, "term", term)
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to resolve enrollment term %s: %w", term, err))
			continue
		}

		e.setPhase(PhaseRunning, term)
		snapshot, err := e.reconcileTerm(ctx, runID, term, enrollmentTerm, opts.DryRun)
		if err != nil {
			slog.Error("Failed to reconcile term", "institution", e.institution, "term", term, "error", err)
			errs = append(errs, fmt.Errorf("term %s: %w", term, err))
			continue
		}

		e.setPhase(PhaseReporting, term)
		e.persist(snapshot)
		reports = append(reports, snapshot.Report)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(reports)))
	slog.Info("Completed enrollment reconciliation",
		"institution", e.institution, "run_id", runID, "terms", len(reports), "duration", time.Since(start))
	return reports, errors.Join(errs...)
}

func (e *defaultEngine) blacklisted(term string) bool {
	for _, g := range e.blacklist {
		if g.Match(term) {
			return true
		}
	}
	return false
}

func (e *defaultEngine) persist(snapshot *Snapshot) {
	r := snapshot.Report
	if e.reports == nil || r.DryRun {
		return
	}
	path, err := e.reports.Save(snapshot)
	if err != nil {
		slog.Error("Failed to save reconciliation report", "institution", e.institution, "term", r.Term, "error", err)
		return
	}
	slog.Info("Saved reconciliation report", "institution", e.institution, "term", r.Term, "path", path)
}
