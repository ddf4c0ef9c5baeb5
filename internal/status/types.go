package status

import "time"

// Phase is the state of an institution's reconciliation job
type Phase string

const (
	// PhaseIdle means no run is active and none has finished yet
	PhaseIdle Phase = "idle"

	// PhaseRunning means a run is diffing and correcting a term
	PhaseRunning Phase = "running"

	// PhaseReporting means a run is persisting the report of a term
	PhaseReporting Phase = "reporting"

	// PhaseFailed means the last run ended with an error
	PhaseFailed Phase = "failed"

	// PhaseComplete means the last run finished successfully
	PhaseComplete Phase = "complete"
)

// JobStatus is the persisted state of an institution's last reconciliation run
type JobStatus struct {
	// Phase is the current phase
	Phase Phase `json:"phase"`

	// Message provides additional information about the phase
	Message string `json:"message,omitempty"`

	// Term is the term being processed while running
	Term string `json:"term,omitempty"`

	// LastAttempt is when the last run started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of failed runs since the last success
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastRunTime is when the last successful run finished
	LastRunTime *time.Time `json:"lastRunTime,omitempty"`

	// LastDuration is how long the last run took, e.g. "2m3s"
	LastDuration string `json:"lastDuration,omitempty"`

	// Terms summarizes the reports of the last run
	Terms []TermSummary `json:"terms,omitempty"`
}

// TermSummary is the headline of one term's reconciliation report
type TermSummary struct {
	Term                 string `json:"term"`
	SourceCount          int    `json:"sourceCount"`
	TargetCount          int    `json:"targetCount"`
	MissingEnrollments   int    `json:"missingEnrollments"`
	CorrectedEnrollments int    `json:"correctedEnrollments"`
	MissingDrops         int    `json:"missingDrops"`
	CorrectedDrops       int    `json:"correctedDrops"`
	Failures             int    `json:"failures"`
}
