// Package roster implements the cross-system roster mutations shared by the
// event dispatcher and the reconciliation engine. Each operation is an ordered
// call sequence against the SIS ledger and the LMS, guarded by ledger membership
// so that repeated application is harmless.
package roster

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/progress"
	"github.com/stacklok/roster-sync/internal/sis"
)

//go:generate mockgen -destination=mocks/mock_operations.go -package=mocks -source=operations.go Operations

var (
	// ErrSectionAlreadyTracked is returned by CreateSection when the section is already mirrored
	ErrSectionAlreadyTracked = errors.New("section is already tracked")

	// ErrNoSections is returned by CreateCourse when no CRN is given
	ErrNoSections = errors.New("at least one CRN is required")
)

// CleanupMode decides whether remote failures abort section teardown
type CleanupMode string

const (
	// CleanupLenient logs remote failures and removes the ledger rows anyway
	CleanupLenient CleanupMode = "lenient"
	// CleanupStrict stops at the first remote failure and keeps the ledger rows
	CleanupStrict CleanupMode = "strict"
)

// DefaultConcurrency bounds per-student fan-out inside one operation
const DefaultConcurrency = 4

// TracerName is the name used for the roster operations tracer
const TracerName = "github.com/stacklok/roster-sync/roster"

// Operations performs roster mutations for one institution
type Operations interface {
	// CreateSection mirrors a SIS section into an LMS course and enrolls its roster
	CreateSection(ctx context.Context, term, crn string, courseID int64, p *progress.Monitor) error

	// DeleteSection removes a mirrored section, its enrollments and its ledger rows
	DeleteSection(ctx context.Context, term, crn string, policy sis.LookupPolicy, p *progress.Monitor) error

	// CreateCourse creates an LMS course for the parent of the first CRN and mirrors every CRN into it
	CreateCourse(ctx context.Context, term string, crns []string, p *progress.Monitor) (*lms.Course, error)

	// DeleteCourse tears down every section mirrored into a course, then deletes the course
	DeleteCourse(ctx context.Context, courseID int64, p *progress.Monitor) error

	// EnrollStudent enrolls a person into a tracked section. Re-enrollment is a no-op.
	EnrollStudent(ctx context.Context, term, crn string, person *sis.Person) error

	// DropStudent inactivates the tracked enrollment of a person
	DropStudent(ctx context.Context, term, crn string, personID int64) error

	// DropEnrollment inactivates a known LMS enrollment and removes its ledger row
	DropEnrollment(ctx context.Context, enrollment lms.Enrollment) error

	// SyncStudent brings a person's LMS enrollments for a term in line with the SIS
	// and returns a description of every step taken
	SyncStudent(ctx context.Context, term string, person *sis.Person) ([]string, error)

	// SyncPerson refreshes the LMS profile of a person
	SyncPerson(ctx context.Context, personID int64) error
}

type options struct {
	store       sis.Store
	client      lms.Client
	institution string
	cleanup     CleanupMode
	concurrency int
	tracer      trace.Tracer
}

// Option configures Operations
type Option func(*options) error

// WithStore sets the SIS store
func WithStore(store sis.Store) Option {
	return func(o *options) error {
		if store == nil {
			return fmt.Errorf("store must not be nil")
		}
		o.store = store
		return nil
	}
}

// WithClient sets the LMS client
func WithClient(client lms.Client) Option {
	return func(o *options) error {
		if client == nil {
			return fmt.Errorf("lms client must not be nil")
		}
		o.client = client
		return nil
	}
}

// WithInstitution names the institution in logs and spans
func WithInstitution(name string) Option {
	return func(o *options) error {
		o.institution = name
		return nil
	}
}

// WithCleanupMode sets the section teardown policy
func WithCleanupMode(mode CleanupMode) Option {
	return func(o *options) error {
		switch mode {
		case CleanupLenient, CleanupStrict:
			o.cleanup = mode
			return nil
		default:
			return fmt.Errorf("unknown cleanup mode %q", mode)
		}
	}
}

// WithConcurrency sets the per-operation fan-out limit
func WithConcurrency(n int) Option {
	return func(o *options) error {
		if n < 1 {
			return fmt.Errorf("concurrency must be at least 1, got %d", n)
		}
		o.concurrency = n
		return nil
	}
}

// WithTracer sets the tracer for operation spans
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

type defaultOperations struct {
	store       sis.Store
	client      lms.Client
	institution string
	cleanup     CleanupMode
	concurrency int
	tracer      trace.Tracer
}

var _ Operations = (*defaultOperations)(nil)

// New creates Operations. A store and a client are required.
func New(opts ...Option) (Operations, error) {
	o := &options{
		cleanup:     CleanupLenient,
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if o.client == nil {
		return nil, fmt.Errorf("lms client is required")
	}

	return &defaultOperations{
		store:       o.store,
		client:      o.client,
		institution: o.institution,
		cleanup:     o.cleanup,
		concurrency: o.concurrency,
		tracer:      o.tracer,
	}, nil
}

func profileOf(p *sis.Person) lms.UserProfile {
	return lms.UserProfile{
		LoginID:   p.ExternalID,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
	}
}
