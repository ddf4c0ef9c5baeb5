package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/otel"
	"github.com/stacklok/roster-sync/internal/sis"
)

// enrollmentKey identifies an enrollment on both sides
type enrollmentKey struct {
	term       string
	crn        string
	externalID string
}

func (k enrollmentKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.term, k.crn, k.externalID)
}

// externalID is the SIS identity of an LMS enrollment
func externalID(e lms.Enrollment) string {
	if e.User.SISUserID != "" {
		return e.User.SISUserID
	}
	return e.User.LoginID
}

func (e *defaultEngine) reconcileTerm(
	ctx context.Context,
	runID, term string,
	enrollmentTerm *lms.EnrollmentTerm,
	dryRun bool,
) (_ *Snapshot, retErr error) {
	ctx, span := otel.StartSpan(ctx, e.tracer, "reconcile.Term", trace.WithAttributes(
		otel.AttrInstitution.String(e.institution),
		otel.AttrTerm.String(term),
	))
	defer func() {
		otel.RecordError(span, retErr)
		span.End()
	}()

	report := &Report{
		RunID:              runID,
		Institution:        e.institution,
		Term:               term,
		EnrollmentTermID:   enrollmentTerm.ID,
		EnrollmentTermName: enrollmentTerm.Name,
		DryRun:             dryRun,
		StartedAt:          time.Now().UTC(),
	}

	target, err := e.targetEnrollments(ctx, term, enrollmentTerm.ID)
	if err != nil {
		return nil, err
	}
	source, err := e.sourceEnrollments(ctx, term)
	if err != nil {
		return nil, err
	}
	report.SourceCount = len(source)
	report.TargetCount = len(target)

	inTarget := make(map[enrollmentKey]bool, len(target))
	for _, t := range target {
		_, crn, _ := t.SectionKey()
		inTarget[enrollmentKey{term: term, crn: crn, externalID: externalID(t)}] = true
	}
	inSource := make(map[enrollmentKey]bool, len(source))
	for _, s := range source {
		inSource[enrollmentKey{term: s.Term, crn: s.CRN, externalID: s.ExternalID}] = true
	}

	var adds []sis.Enrollment
	for _, s := range source {
		k := enrollmentKey{term: s.Term, crn: s.CRN, externalID: s.ExternalID}
		if !inTarget[k] {
			adds = append(adds, s)
			// A repeated source row must not be enrolled twice.
			inTarget[k] = true
		}
	}
	var drops []lms.Enrollment
	for _, t := range target {
		_, crn, _ := t.SectionKey()
		if !inSource[enrollmentKey{term: term, crn: crn, externalID: externalID(t)}] {
			drops = append(drops, t)
		}
	}
	report.MissingEnrollments = len(adds)
	report.MissingDrops = len(drops)

	slog.Info("Computed enrollment differences",
		"institution", e.institution, "term", term,
		"source", report.SourceCount, "target", report.TargetCount,
		"missing_enrollments", report.MissingEnrollments, "missing_drops", report.MissingDrops)

	if !dryRun {
		addFailures := e.applyAdds(ctx, report, adds)
		dropFailures := e.applyDrops(ctx, report, drops)
		e.metrics.RecordCorrections(ctx, e.institution, term, "add", report.CorrectedEnrollments, addFailures)
		e.metrics.RecordCorrections(ctx, e.institution, term, "drop", report.CorrectedDrops, dropFailures)
	}

	report.FinishedAt = time.Now().UTC()
	slog.Info("Reconciled term",
		"institution", e.institution, "term", term,
		"corrected_enrollments", report.CorrectedEnrollments,
		"corrected_drops", report.CorrectedDrops,
		"failures", report.Failures,
		"duration", report.Duration())

	return &Snapshot{Report: report, SourceEnrollments: source, TargetEnrollments: target}, nil
}

// targetEnrollments lists the active student enrollments of every LMS course in the enrollment term
// that link back to a section of term and belong to a reconcilable person
func (e *defaultEngine) targetEnrollments(ctx context.Context, term string, enrollmentTermID int64) ([]lms.Enrollment, error) {
	courses, err := e.client.ListCoursesByEnrollmentTerm(ctx, enrollmentTermID)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses of enrollment term %d: %w", enrollmentTermID, err)
	}

	var (
		mu  sync.Mutex
		all []lms.Enrollment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(courseFanOut)
	for _, c := range courses {
		g.Go(func() error {
			enrollments, err := e.client.ListCourseEnrollments(gctx, c.ID, lms.EnrollmentFilter{})
			if err != nil {
				return fmt.Errorf("failed to list enrollments of course %d: %w", c.ID, err)
			}

			kept := enrollments[:0]
			for _, en := range enrollments {
				enrollmentTerm, _, ok := en.SectionKey()
				if !ok || enrollmentTerm != term || !e.personPattern.MatchString(externalID(en)) {
					continue
				}
				kept = append(kept, en)
			}

			mu.Lock()
			all = append(all, kept...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all, nil
}

func (e *defaultEngine) sourceEnrollments(ctx context.Context, term string) ([]sis.Enrollment, error) {
	rows, err := e.store.GetAllEnrollmentsByTerm(ctx, term)
	if err != nil {
		return nil, fmt.Errorf("failed to get SIS enrollments: %w", err)
	}
	registered := rows[:0]
	for _, r := range rows {
		if r.IsRegistered() {
			registered = append(registered, r)
		}
	}
	return registered, nil
}

func (e *defaultEngine) applyAdds(ctx context.Context, report *Report, adds []sis.Enrollment) (failed int) {
	for _, s := range adds {
		if ctx.Err() != nil {
			return failed
		}
		key := enrollmentKey{term: s.Term, crn: s.CRN, externalID: s.ExternalID}

		err := e.enroll(ctx, s)
		if sis.IsNotTracked(err) {
			slog.Warn("Missing enrollment is in a section that was never mirrored",
				"institution", e.institution, "enrollment", key.String())
		} else if err != nil {
			slog.Error("Failed to add missing enrollment",
				"institution", e.institution, "enrollment", key.String(), "error", err)
		}
		if err != nil {
			report.fail(fmt.Sprintf("add %s: %v", key, err))
			failed++
			continue
		}
		report.CorrectedEnrollments++
	}
	return failed
}

func (e *defaultEngine) enroll(ctx context.Context, s sis.Enrollment) error {
	person, err := e.store.GetPerson(ctx, sis.ByID(s.PersonID))
	if err != nil {
		return err
	}
	return e.operations.EnrollStudent(ctx, s.Term, s.CRN, person)
}

func (e *defaultEngine) applyDrops(ctx context.Context, report *Report, drops []lms.Enrollment) (failed int) {
	for _, t := range drops {
		if ctx.Err() != nil {
			return failed
		}
		if err := e.operations.DropEnrollment(ctx, t); err != nil {
			slog.Error("Failed to drop stale enrollment",
				"institution", e.institution, "enrollment_id", t.ID, "sis_section_id", t.SISSectionID, "error", err)
			report.fail(fmt.Sprintf("drop enrollment %d (%s): %v", t.ID, t.SISSectionID, err))
			failed++
			continue
		}
		report.CorrectedDrops++
	}
	return failed
}

func (r *Report) fail(msg string) {
	r.Failures++
	r.Errors = append(r.Errors, msg)
}
