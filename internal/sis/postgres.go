package sis

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/otel"
)

// StoreTracerName is the name used for the SIS store tracer
const StoreTracerName = "github.com/stacklok/roster-sync/sis"

type options struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

// Option configures the PostgreSQL store
type Option func(*options) error

// WithConnectionPool sets the pgx pool. The caller closes the pool.
func WithConnectionPool(pool *pgxpool.Pool) Option {
	return func(o *options) error {
		if pool == nil {
			return fmt.Errorf("pgx pool is required")
		}
		o.pool = pool
		return nil
	}
}

// WithTracer sets the tracer for store spans. Tracing is disabled when unset.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

type postgresStore struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
}

var _ Store = (*postgresStore)(nil)

// New creates a Store backed by PostgreSQL
func New(opts ...Option) (Store, error) {
	o := &options{}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.pool == nil {
		return nil, fmt.Errorf("pgx pool is required")
	}

	return &postgresStore{pool: o.pool, tracer: o.tracer}, nil
}

func (s *postgresStore) startSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	opts = append([]trace.SpanStartOption{trace.WithAttributes(semconv.DBSystemPostgreSQL)}, opts...)
	return otel.StartSpan(ctx, s.tracer, name, opts...)
}

func (s *postgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *postgresStore) GetPendingEvents(ctx context.Context, limit int) ([]Event, error) {
	ctx, span := s.startSpan(ctx, "sis.GetPendingEvents")
	defer span.End()

	rows, err := s.pool.Query(ctx, getPendingEventsSQL, limit)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query pending events: %w", err)
	}
	events, err := pgx.CollectRows(rows, pgx.RowToStructByName[Event])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read pending events: %w", err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(events)))
	return events, nil
}

func (s *postgresStore) DeleteEvent(ctx context.Context, id int64) error {
	ctx, span := s.startSpan(ctx, "sis.DeleteEvent", trace.WithAttributes(otel.AttrEventID.Int64(id)))
	defer span.End()

	if _, err := s.pool.Exec(ctx, deleteEventSQL, id); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to delete event %d: %w", id, err)
	}
	return nil
}

func (s *postgresStore) GetPerson(ctx context.Context, ref PersonRef) (*Person, error) {
	ctx, span := s.startSpan(ctx, "sis.GetPerson", trace.WithAttributes(attribute.String("person.ref", ref.String())))
	defer span.End()

	var (
		rows pgx.Rows
		err  error
	)
	if externalID, ok := ref.ExternalID(); ok {
		rows, err = s.pool.Query(ctx, getPersonByExternalIDSQL, externalID)
	} else {
		id, _ := ref.ID()
		rows, err = s.pool.Query(ctx, getPersonByIDSQL, id)
	}
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query person %s: %w", ref, err)
	}

	people, err := pgx.CollectRows(rows, pgx.RowToStructByName[Person])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read person %s: %w", ref, err)
	}

	switch len(people) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrPersonNotFound, ref)
	case 1:
		return &people[0], nil
	default:
		return nil, fmt.Errorf("%w: %s matched %d rows", ErrAmbiguousPerson, ref, len(people))
	}
}

func (s *postgresStore) GetSection(ctx context.Context, term, crn string) (*Section, error) {
	return s.getSection(ctx, "sis.GetSection", getSectionSQL, term, crn)
}

func (s *postgresStore) GetCourse(ctx context.Context, term, crn string) (*Section, error) {
	return s.getSection(ctx, "sis.GetCourse", getCourseSQL, term, crn)
}

func (s *postgresStore) getSection(ctx context.Context, spanName, query, term, crn string) (*Section, error) {
	ctx, span := s.startSpan(ctx, spanName, otel.SectionAttributes(term, crn))
	defer span.End()

	rows, err := s.pool.Query(ctx, query, term, crn)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query section %s/%s: %w", term, crn, err)
	}
	section, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[Section])
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSectionNotFound, term, crn)
		}
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read section %s/%s: %w", term, crn, err)
	}
	return &section, nil
}

func (s *postgresStore) GetSectionRoster(ctx context.Context, term, crn string) ([]Enrollment, error) {
	ctx, span := s.startSpan(ctx, "sis.GetSectionRoster", otel.SectionAttributes(term, crn))
	defer span.End()

	return s.queryEnrollments(ctx, span, getSectionRosterSQL, term, crn)
}

func (s *postgresStore) GetAllEnrollmentsByTerm(ctx context.Context, term string) ([]Enrollment, error) {
	ctx, span := s.startSpan(ctx, "sis.GetAllEnrollmentsByTerm", trace.WithAttributes(otel.AttrTerm.String(term)))
	defer span.End()

	return s.queryEnrollments(ctx, span, getAllEnrollmentsByTermSQL, term)
}

func (s *postgresStore) GetEnrollmentHistory(ctx context.Context, term string, personID int64) ([]Enrollment, error) {
	ctx, span := s.startSpan(ctx, "sis.GetEnrollmentHistory", trace.WithAttributes(
		otel.AttrTerm.String(term),
		otel.AttrPersonID.Int64(personID),
	))
	defer span.End()

	return s.queryEnrollments(ctx, span, getEnrollmentHistorySQL, term, personID)
}

func (s *postgresStore) queryEnrollments(ctx context.Context, span trace.Span, query string, args ...any) ([]Enrollment, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query enrollments: %w", err)
	}
	enrollments, err := pgx.CollectRows(rows, pgx.RowToStructByName[Enrollment])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read enrollments: %w", err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(enrollments)))
	return enrollments, nil
}

func (s *postgresStore) GetCurrentTerms(ctx context.Context, institution string) ([]string, error) {
	ctx, span := s.startSpan(ctx, "sis.GetCurrentTerms", trace.WithAttributes(otel.AttrInstitution.String(institution)))
	defer span.End()

	rows, err := s.pool.Query(ctx, getCurrentTermsSQL, institution)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query current terms: %w", err)
	}
	terms, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read current terms: %w", err)
	}
	return terms, nil
}

func (s *postgresStore) IsSectionTracked(
	ctx context.Context,
	term, crn string,
	policy LookupPolicy,
) (*TrackedSection, error) {
	ctx, span := s.startSpan(ctx, "sis.IsSectionTracked", otel.SectionAttributes(term, crn),
		trace.WithAttributes(attribute.String("lookup.policy", policy.String())))
	defer span.End()

	rows, err := s.pool.Query(ctx, getTrackedSectionsSQL, term, crn)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query tracked section %s/%s: %w", term, crn, err)
	}
	sections, err := pgx.CollectRows(rows, pgx.RowToStructByName[TrackedSection])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read tracked section %s/%s: %w", term, crn, err)
	}

	span.SetAttributes(otel.AttrResultCount.Int(len(sections)))
	return ResolveTrackedSection(sections, policy)
}

func (s *postgresStore) IsEnrollmentTracked(
	ctx context.Context,
	term, crn string,
	personID int64,
) (*TrackedEnrollment, error) {
	ctx, span := s.startSpan(ctx, "sis.IsEnrollmentTracked", otel.SectionAttributes(term, crn),
		trace.WithAttributes(otel.AttrPersonID.Int64(personID)))
	defer span.End()

	rows, err := s.pool.Query(ctx, getTrackedEnrollmentSQL, term, crn, personID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query tracked enrollment: %w", err)
	}
	enrollments, err := pgx.CollectRows(rows, pgx.RowToStructByName[TrackedEnrollment])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read tracked enrollment: %w", err)
	}
	if len(enrollments) != 1 {
		return nil, fmt.Errorf("%w: %s/%s person %d (%d rows)", ErrEnrollmentNotTracked, term, crn, personID, len(enrollments))
	}
	return &enrollments[0], nil
}

func (s *postgresStore) GetTrackedSectionsByCourse(ctx context.Context, courseID int64) ([]TrackedSection, error) {
	ctx, span := s.startSpan(ctx, "sis.GetTrackedSectionsByCourse", trace.WithAttributes(otel.AttrCourseID.Int64(courseID)))
	defer span.End()

	rows, err := s.pool.Query(ctx, getTrackedSectionsByCourseSQL, courseID)
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to query tracked sections of course %d: %w", courseID, err)
	}
	sections, err := pgx.CollectRows(rows, pgx.RowToStructByName[TrackedSection])
	if err != nil {
		otel.RecordError(span, err)
		return nil, fmt.Errorf("failed to read tracked sections of course %d: %w", courseID, err)
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(sections)))
	return sections, nil
}

func (s *postgresStore) TrackSection(ctx context.Context, section TrackedSection) error {
	ctx, span := s.startSpan(ctx, "sis.TrackSection", otel.SectionAttributes(section.Term, section.CRN))
	defer span.End()

	_, err := s.pool.Exec(ctx, trackSectionSQL, section.Term, section.CRN, section.CourseID, section.SectionID)
	if err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to track section %s/%s: %w", section.Term, section.CRN, err)
	}
	return nil
}

func (s *postgresStore) UntrackSection(ctx context.Context, sectionID int64) error {
	ctx, span := s.startSpan(ctx, "sis.UntrackSection", trace.WithAttributes(attribute.Int64("lms.section_id", sectionID)))
	defer span.End()

	if _, err := s.pool.Exec(ctx, untrackSectionSQL, sectionID); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to untrack section %d: %w", sectionID, err)
	}
	return nil
}

func (s *postgresStore) TrackEnrollment(ctx context.Context, e TrackedEnrollment) error {
	ctx, span := s.startSpan(ctx, "sis.TrackEnrollment", otel.SectionAttributes(e.Term, e.CRN),
		trace.WithAttributes(otel.AttrPersonID.Int64(e.PersonID)))
	defer span.End()

	_, err := s.pool.Exec(ctx, trackEnrollmentSQL,
		e.Term, e.CRN, e.PersonID, e.UserID, e.Type, e.EnrollmentID, e.CourseID, e.SectionID, e.URL)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: enrollment %s/%s person %d", ErrAlreadyTracked, e.Term, e.CRN, e.PersonID)
		}
		otel.RecordError(span, err)
		return fmt.Errorf("failed to track enrollment: %w", err)
	}
	return nil
}

func (s *postgresStore) UntrackEnrollment(ctx context.Context, enrollmentID int64) error {
	ctx, span := s.startSpan(ctx, "sis.UntrackEnrollment",
		trace.WithAttributes(attribute.Int64("lms.enrollment_id", enrollmentID)))
	defer span.End()

	if _, err := s.pool.Exec(ctx, untrackEnrollmentSQL, enrollmentID); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to untrack enrollment %d: %w", enrollmentID, err)
	}
	return nil
}

func (s *postgresStore) UntrackSectionEnrollments(ctx context.Context, term, crn string) error {
	ctx, span := s.startSpan(ctx, "sis.UntrackSectionEnrollments", otel.SectionAttributes(term, crn))
	defer span.End()

	if _, err := s.pool.Exec(ctx, untrackSectionEnrollmentsSQL, term, crn); err != nil {
		otel.RecordError(span, err)
		return fmt.Errorf("failed to untrack enrollments of %s/%s: %w", term, crn, err)
	}
	return nil
}
