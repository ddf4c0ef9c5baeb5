package roster

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/progress"
)

func (o *defaultOperations) CreateCourse(
	ctx context.Context,
	term string,
	crns []string,
	p *progress.Monitor,
) (_ *lms.Course, retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.CreateCourse", trace.WithAttributes(
		otel.AttrInstitution.String(o.institution),
		otel.AttrTerm.String(term),
	))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	crns = uniqueCRNs(crns)
	if len(crns) == 0 {
		return nil, ErrNoSections
	}

	parent, err := o.store.GetCourse(ctx, term, crns[0])
	if err != nil {
		return nil, fmt.Errorf("failed to get parent course of %s/%s: %w", term, crns[0], err)
	}
	enrollmentTerm, err := o.client.GetEnrollmentTermBySISID(ctx, term)
	if err != nil {
		return nil, err
	}

	course, err := o.client.CreateCourse(ctx, lms.CreateCourseRequest{
		Name:             CourseName(parent),
		CourseCode:       CourseCode(parent),
		SISCourseID:      lms.IntegrationID(term, parent.CRN),
		EnrollmentTermID: enrollmentTerm.ID,
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(otel.AttrCourseID.Int64(course.ID))

	var errs []error
	for _, crn := range crns {
		if err := o.CreateSection(ctx, term, crn, course.ID, p); err != nil {
			slog.Error("Failed to create section in new course",
				"institution", o.institution, "term", term, "crn", crn, "course_id", course.ID, "error", err)
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return course, fmt.Errorf("course %d created but %d of %d sections failed: %w",
			course.ID, len(errs), len(crns), errors.Join(errs...))
	}

	slog.Info("Created LMS course",
		"institution", o.institution, "term", term, "course_id", course.ID, "name", course.Name, "sections", len(crns))
	return course, nil
}

func (o *defaultOperations) DeleteCourse(ctx context.Context, courseID int64, p *progress.Monitor) (retErr error) {
	ctx, span := otel.StartSpan(ctx, o.tracer, "roster.DeleteCourse", trace.WithAttributes(
		otel.AttrInstitution.String(o.institution),
		otel.AttrCourseID.Int64(courseID),
	))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	_, err := o.client.GetCourse(ctx, courseID)
	gone := lms.IsNotFound(err)
	if err != nil && !gone {
		return err
	}

	sections, err := o.store.GetTrackedSectionsByCourse(ctx, courseID)
	if err != nil {
		return err
	}
	for i := range sections {
		if err := o.teardownSection(ctx, &sections[i], p); err != nil {
			return err
		}
	}

	if gone {
		slog.Info("LMS course is already gone, removed its ledger rows",
			"institution", o.institution, "course_id", courseID, "sections", len(sections))
		return nil
	}
	if err := o.client.DeleteCourse(ctx, courseID); err != nil && !lms.IsNotFound(err) {
		return err
	}

	slog.Info("Deleted LMS course", "institution", o.institution, "course_id", courseID, "sections", len(sections))
	return nil
}

func uniqueCRNs(crns []string) []string {
	seen := make(map[string]bool, len(crns))
	out := make([]string, 0, len(crns))
	for _, crn := range crns {
		if crn == "" || seen[crn] {
			continue
		}
		seen[crn] = true
		out = append(out, crn)
	}
	return out
}
