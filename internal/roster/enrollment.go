package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/sis"
)

func (o *defaultOperations) EnrollStudent(ctx context.Context, term, crn string, person *sis.Person) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.EnrollStudent", otel.SectionAttributes(term, crn),
		trace.WithAttributes(otel.AttrInstitution.String(o.institution), otel.AttrPersonID.Int64(person.ID)))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	section, err := o.store.IsSectionTracked(ctx, term, crn, sis.PolicyStrict)
	if err != nil {
		return err
	}

	user, err := o.client.SyncUser(ctx, profileOf(person))
	if err != nil {
		return err
	}

	enrollment, err := o.client.EnrollStudent(ctx, section.SectionID, user.ID)
	if err != nil {
		return err
	}

	row := sis.TrackedEnrollment{
		Term:         term,
		CRN:          crn,
		PersonID:     person.ID,
		UserID:       user.ID,
		Type:         lms.StudentEnrollment,
		EnrollmentID: enrollment.ID,
		CourseID:     section.CourseID,
		SectionID:    section.SectionID,
		URL:          enrollment.HTMLURL,
	}
	err = o.store.TrackEnrollment(ctx, row)
	switch {
	case errors.Is(err, sis.ErrAlreadyTracked):
		return o.refreshTrackedEnrollment(ctx, row)
	case err != nil:
		return err
	}

	slog.Info("Enrolled student into LMS section",
		"institution", o.institution, "term", term, "crn", crn,
		"person_id", person.ID, "enrollment_id", enrollment.ID)
	return nil
}

// refreshTrackedEnrollment replaces a ledger row that points at an older LMS enrollment
func (o *defaultOperations) refreshTrackedEnrollment(ctx context.Context, row sis.TrackedEnrollment) error {
	existing, err := o.store.IsEnrollmentTracked(ctx, row.Term, row.CRN, row.PersonID)
	if err != nil || existing.EnrollmentID == row.EnrollmentID {
		slog.Debug("Enrollment already tracked",
			"institution", o.institution, "term", row.Term, "crn", row.CRN, "person_id", row.PersonID)
		return nil
	}

	if err := o.store.UntrackEnrollment(ctx, existing.EnrollmentID); err != nil {
		return err
	}
	if err := o.store.TrackEnrollment(ctx, row); err != nil && !errors.Is(err, sis.ErrAlreadyTracked) {
		return err
	}
	slog.Info("Replaced stale tracked enrollment",
		"institution", o.institution, "term", row.Term, "crn", row.CRN, "person_id", row.PersonID,
		"old_enrollment_id", existing.EnrollmentID, "enrollment_id", row.EnrollmentID)
	return nil
}

func (o *defaultOperations) DropStudent(ctx context.Context, term, crn string, personID int64) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.DropStudent", otel.SectionAttributes(term, crn),
		trace.WithAttributes(otel.AttrInstitution.String(o.institution), otel.AttrPersonID.Int64(personID)))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	tracked, err := o.store.IsEnrollmentTracked(ctx, term, crn, personID)
	if err != nil {
		return err
	}

	enrollment, err := o.client.GetEnrollment(ctx, tracked.EnrollmentID)
	if lms.IsNotFound(err) {
		slog.Warn("Tracked enrollment no longer exists in LMS, removing ledger row",
			"institution", o.institution, "term", term, "crn", crn, "enrollment_id", tracked.EnrollmentID)
		return o.store.UntrackEnrollment(ctx, tracked.EnrollmentID)
	}
	if err != nil {
		return err
	}

	return o.DropEnrollment(ctx, *enrollment)
}

func (o *defaultOperations) DropEnrollment(ctx context.Context, enrollment lms.Enrollment) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.DropEnrollment",
		trace.WithAttributes(
			otel.AttrInstitution.String(o.institution),
			attribute.Int64("lms.enrollment_id", enrollment.ID),
		))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	if _, err := o.client.DropStudent(ctx, enrollment); err != nil {
		if !lms.IsNotFound(err) {
			return fmt.Errorf("failed to drop enrollment %d: %w", enrollment.ID, err)
		}
		slog.Warn("Enrollment already gone from LMS", "institution", o.institution, "enrollment_id", enrollment.ID)
	}

	if err := o.store.UntrackEnrollment(ctx, enrollment.ID); err != nil {
		return err
	}

	slog.Info("Dropped student from LMS section",
		"institution", o.institution, "enrollment_id", enrollment.ID,
		"course_id", enrollment.CourseID, "sis_section_id", enrollment.SISSectionID)
	return nil
}
