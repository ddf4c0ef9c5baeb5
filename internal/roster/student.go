package roster

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/sis"
)

func (o *defaultOperations) SyncStudent(ctx context.Context, term string, person *sis.Person) (ops []string, retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.SyncStudent", trace.WithAttributes(
		otel.AttrInstitution.String(o.institution),
		otel.AttrTerm.String(term),
		otel.AttrPersonID.Int64(person.ID),
	))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	slog.Info("Checking student enrollment synchronization",
		"institution", o.institution, "term", term, "person_id", person.ID)

	if _, err := o.client.SyncUser(ctx, profileOf(person)); err != nil {
		return nil, err
	}

	history, err := o.store.GetEnrollmentHistory(ctx, term, person.ID)
	if err != nil {
		return nil, err
	}
	current, err := o.client.ListUserEnrollments(ctx, person.ExternalID, term)
	if err != nil {
		return nil, err
	}

	enrolled := make(map[string]bool, len(current))
	for _, e := range current {
		if _, crn, ok := e.SectionKey(); ok {
			enrolled[crn] = true
		}
	}

	for _, h := range history {
		if !h.IsRegistered() || enrolled[h.CRN] {
			continue
		}
		if err := o.EnrollStudent(ctx, term, h.CRN, person); err != nil {
			slog.Error("Failed to add student during sync",
				"institution", o.institution, "term", term, "crn", h.CRN, "person_id", person.ID, "error", err)
			ops = append(ops, fmt.Sprintf("Failed to add student to course (term = %s, crn = %s): %v", term, h.CRN, err))
			continue
		}
		ops = append(ops, fmt.Sprintf("Added student to course (term = %s, crn = %s)", term, h.CRN))
	}

	dropped := make(map[string]bool)
	for _, h := range history {
		if h.IsDropped() {
			dropped[h.CRN] = true
		}
	}

	for _, e := range current {
		enrollmentTerm, crn, ok := e.SectionKey()
		if !ok || enrollmentTerm != term || !dropped[crn] {
			continue
		}
		if err := o.DropEnrollment(ctx, e); err != nil {
			slog.Error("Failed to drop student during sync",
				"institution", o.institution, "term", term, "crn", crn, "person_id", person.ID, "error", err)
			ops = append(ops, fmt.Sprintf("Failed to drop student from course (term = %s, crn = %s): %v", term, crn, err))
			continue
		}
		ops = append(ops, fmt.Sprintf("Dropped student from course (LMS course = %d, term = %s, crn = %s)",
			e.CourseID, term, crn))
	}

	ops = append(ops, fmt.Sprintf("Sync completed for %s", person.FullName()))
	return ops, nil
}

func (o *defaultOperations) SyncPerson(ctx context.Context, personID int64) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.SyncPerson", trace.WithAttributes(
		otel.AttrInstitution.String(o.institution),
		otel.AttrPersonID.Int64(personID),
	))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	person, err := o.store.GetPerson(ctx, sis.ByID(personID))
	if err != nil {
		return err
	}
	if _, err := o.client.SyncUser(ctx, profileOf(person)); err != nil {
		return err
	}

	slog.Info("Synchronized LMS profile", "institution", o.institution, "person_id", personID)
	return nil
}
