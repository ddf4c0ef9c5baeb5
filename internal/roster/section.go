package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/progress"
	"github.com/stacklok/roster-sync/internal/sis"
)

var teardownStates = []string{lms.StateActive, lms.StateInactive, "invited"}

func (o *defaultOperations) CreateSection(
	ctx context.Context,
	term, crn string,
	courseID int64,
	p *progress.Monitor,
) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.CreateSection", otel.SectionAttributes(term, crn),
		trace.WithAttributes(otel.AttrInstitution.String(o.institution)))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	existing, err := o.store.IsSectionTracked(ctx, term, crn, sis.PolicyTolerateUntracked)
	if err != nil {
		return fmt.Errorf("failed to check section %s/%s: %w", term, crn, err)
	}
	if existing != nil {
		return fmt.Errorf("%w: %s/%s is LMS section %d", ErrSectionAlreadyTracked, term, crn, existing.SectionID)
	}

	section, err := o.store.GetSection(ctx, term, crn)
	if err != nil {
		return fmt.Errorf("failed to get section %s/%s: %w", term, crn, err)
	}
	roster, err := o.store.GetSectionRoster(ctx, term, crn)
	if err != nil {
		return fmt.Errorf("failed to get roster of %s/%s: %w", term, crn, err)
	}
	p.AddTasks(len(roster))

	created, err := o.client.CreateSection(ctx, courseID, SectionName(section), term, crn)
	if err != nil {
		return err
	}
	if created.CourseID == 0 {
		created.CourseID = courseID
	}

	if err := o.store.TrackSection(ctx, sis.TrackedSection{
		Term:      term,
		CRN:       crn,
		CourseID:  created.CourseID,
		SectionID: created.ID,
	}); err != nil {
		return err
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, student := range roster {
		g.Go(func() error {
			defer p.CompleteTask(1)

			err := o.enrollByID(gctx, term, crn, student.PersonID)
			if err != nil {
				slog.Error("Failed to enroll student into new section",
					"institution", o.institution, "term", term, "crn", crn,
					"person_id", student.PersonID, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("section %s/%s created but %d of %d students failed to enroll: %w",
			term, crn, len(errs), len(roster), errors.Join(errs...))
	}

	slog.Info("Created section in LMS course",
		"institution", o.institution, "term", term, "crn", crn,
		"course_id", created.CourseID, "section_id", created.ID, "students", len(roster))
	return nil
}

func (o *defaultOperations) enrollByID(ctx context.Context, term, crn string, personID int64) error {
	person, err := o.store.GetPerson(ctx, sis.ByID(personID))
	if err != nil {
		return err
	}
	return o.EnrollStudent(ctx, term, crn, person)
}

func (o *defaultOperations) DeleteSection(
	ctx context.Context,
	term, crn string,
	policy sis.LookupPolicy,
	p *progress.Monitor,
) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.DeleteSection", otel.SectionAttributes(term, crn),
		trace.WithAttributes(otel.AttrInstitution.String(o.institution)))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	tracked, err := o.store.IsSectionTracked(ctx, term, crn, policy)
	if err != nil {
		return err
	}
	if tracked == nil {
		slog.Info("Section is not tracked, nothing to delete", "institution", o.institution, "term", term, "crn", crn)
		return nil
	}
	return o.teardownSection(ctx, tracked, p)
}

// teardownSection removes a mirrored section, its enrollments and its ledger rows
func (o *defaultOperations) teardownSection(ctx context.Context, tracked *sis.TrackedSection, p *progress.Monitor) error {
	if err := o.removeSectionEnrollments(ctx, tracked, p); err != nil {
		return err
	}

	if err := o.client.DeleteSection(ctx, tracked.SectionID); err != nil && !lms.IsNotFound(err) {
		if o.cleanup == CleanupStrict {
			return err
		}
		slog.Warn("Failed to delete LMS section, removing ledger rows anyway",
			"institution", o.institution, "term", tracked.Term, "crn", tracked.CRN, "section_id", tracked.SectionID, "error", err)
	}

	// Rows for enrollments the LMS no longer listed.
	if err := o.store.UntrackSectionEnrollments(ctx, tracked.Term, tracked.CRN); err != nil {
		return err
	}
	if err := o.store.UntrackSection(ctx, tracked.SectionID); err != nil {
		return err
	}

	slog.Info("Deleted section from LMS course",
		"institution", o.institution, "term", tracked.Term, "crn", tracked.CRN, "section_id", tracked.SectionID)
	return nil
}

func (o *defaultOperations) removeSectionEnrollments(
	ctx context.Context,
	tracked *sis.TrackedSection,
	p *progress.Monitor,
) error {
	enrollments, err := o.client.ListSectionEnrollments(ctx, tracked.SectionID, lms.EnrollmentFilter{States: teardownStates})
	if err != nil {
		if lms.IsNotFound(err) {
			return nil
		}
		if o.cleanup == CleanupStrict {
			return err
		}
		slog.Warn("Failed to list LMS section enrollments",
			"institution", o.institution, "section_id", tracked.SectionID, "error", err)
		return nil
	}
	p.AddTasks(len(enrollments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for _, e := range enrollments {
		g.Go(func() error {
			defer p.CompleteTask(1)

			if _, err := o.client.DeleteStudent(gctx, e); err != nil && !lms.IsNotFound(err) {
				if o.cleanup == CleanupStrict {
					return err
				}
				slog.Warn("Failed to delete LMS enrollment, removing ledger row anyway",
					"institution", o.institution, "enrollment_id", e.ID, "error", err)
			}
			return o.store.UntrackEnrollment(gctx, e.ID)
		})
	}
	return g.Wait()
}
