package coordinator

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/status"
)

// nextRunDelay returns how long to wait before the first run given the last successful one
func nextRunDelay(lastRun *time.Time, interval time.Duration, now time.Time) time.Duration {
	if lastRun == nil {
		return 0
	}
	remaining := lastRun.Add(interval).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func jitter(maxJitter time.Duration) time.Duration {
	if maxJitter <= 0 {
		return 0
	}
	//nolint:gosec // G404: non-cryptographic randomness is enough for scheduling jitter
	return time.Duration(rand.Int64N(int64(maxJitter)))
}

func summarize(reports []*reconcile.Report) []status.TermSummary {
	if len(reports) == 0 {
		return nil
	}
	terms := make([]status.TermSummary, 0, len(reports))
	for _, r := range reports {
		terms = append(terms, status.TermSummary{
			Term:                 r.Term,
			SourceCount:          r.SourceCount,
			TargetCount:          r.TargetCount,
			MissingEnrollments:   r.MissingEnrollments,
			CorrectedEnrollments: r.CorrectedEnrollments,
			MissingDrops:         r.MissingDrops,
			CorrectedDrops:       r.CorrectedDrops,
			Failures:             r.Failures,
		})
	}
	return terms
}

// StatusListener returns a reconcile.PhaseListener that mirrors engine phases into svc.
// The idle phase is ignored; the coordinator writes the final status itself.
func StatusListener(svc status.Service, institution string) reconcile.PhaseListener {
	return func(phase reconcile.Phase, term string) {
		var next status.Phase
		switch phase {
		case reconcile.PhaseRunning:
			next = status.PhaseRunning
		case reconcile.PhaseReporting:
			next = status.PhaseReporting
		default:
			return
		}
		err := svc.UpdateStatus(context.Background(), institution, func(s *status.JobStatus) {
			s.Phase = next
			s.Term = term
		})
		if err != nil {
			slog.Warn("Error updating job phase", "institution", institution, "phase", next, "error", err)
		}
	}
}
