package reconcile

import (
	"time"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/sis"
)

// Report summarizes the reconciliation of one term
type Report struct {
	RunID                string    `json:"runId"`
	Institution          string    `json:"institution"`
	Term                 string    `json:"term"`
	EnrollmentTermID     int64     `json:"enrollmentTermId"`
	EnrollmentTermName   string    `json:"enrollmentTermName"`
	DryRun               bool      `json:"dryRun,omitempty"`
	SourceCount          int       `json:"sourceCount"`
	TargetCount          int       `json:"targetCount"`
	MissingEnrollments   int       `json:"missingEnrollments"`
	CorrectedEnrollments int       `json:"correctedEnrollments"`
	MissingDrops         int       `json:"missingDrops"`
	CorrectedDrops       int       `json:"correctedDrops"`
	Failures             int       `json:"failures"`
	Errors               []string  `json:"errors,omitempty"`
	StartedAt            time.Time `json:"startedAt"`
	FinishedAt           time.Time `json:"finishedAt"`
}

// Duration is the wall time the term took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Snapshot is the persisted form of a report together with the rosters it was computed from
type Snapshot struct {
	Report            *Report          `json:"report"`
	SourceEnrollments []sis.Enrollment `json:"sourceEnrollments"`
	TargetEnrollments []lms.Enrollment `json:"targetEnrollments"`
}
