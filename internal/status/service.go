package status

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks -source=service.go Service

// Service keeps the job status of every institution in memory and persists each change
type Service interface {
	// Initialize loads or creates the status of each institution.
	// A status left running by an interrupted process is reset to failed.
	Initialize(ctx context.Context, institutions []string) error

	// ListStatuses returns a copy of every institution's status
	ListStatuses(ctx context.Context) (map[string]*JobStatus, error)

	// GetStatus returns a copy of one institution's status
	GetStatus(ctx context.Context, institution string) (*JobStatus, error)

	// UpdateStatus applies update to the institution's status and persists the result
	UpdateStatus(ctx context.Context, institution string, update func(*JobStatus)) error
}

type defaultService struct {
	persistence StatusPersistence

	mu       sync.RWMutex
	statuses map[string]*JobStatus
}

var _ Service = (*defaultService)(nil)

// NewService creates a Service backed by persistence
func NewService(persistence StatusPersistence) Service {
	return &defaultService{
		persistence: persistence,
		statuses:    make(map[string]*JobStatus),
	}
}

func (s *defaultService) Initialize(ctx context.Context, institutions []string) error {
	for _, name := range institutions {
		st, err := s.persistence.LoadStatus(ctx, name)
		if err != nil {
			slog.Warn("Failed to load job status, starting idle", "institution", name, "error", err)
			st = &JobStatus{Phase: PhaseIdle}
		}

		switch st.Phase {
		case "":
			st.Phase = PhaseIdle
		case PhaseRunning, PhaseReporting:
			slog.Warn("Previous reconciliation was interrupted, resetting to failed",
				"institution", name, "phase", st.Phase)
			st.Phase = PhaseFailed
			st.Message = "Previous reconciliation was interrupted"
			st.Term = ""
			if err := s.persistence.SaveStatus(ctx, name, st); err != nil {
				slog.Warn("Failed to persist corrected job status", "institution", name, "error", err)
			}
		}

		if st.LastRunTime != nil {
			slog.Info("Loaded job status",
				"institution", name, "phase", st.Phase, "last_run", st.LastRunTime.Format(time.RFC3339))
		} else {
			slog.Info("Loaded job status", "institution", name, "phase", st.Phase)
		}

		s.mu.Lock()
		s.statuses[name] = st
		s.mu.Unlock()
	}
	return nil
}

func (s *defaultService) ListStatuses(_ context.Context) (map[string]*JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*JobStatus, len(s.statuses))
	for name, st := range s.statuses {
		result[name] = st.clone()
	}
	return result, nil
}

func (s *defaultService) GetStatus(_ context.Context, institution string) (*JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.statuses[institution]
	if !ok {
		return nil, fmt.Errorf("no job status for institution %s", institution)
	}
	return st.clone(), nil
}

func (s *defaultService) UpdateStatus(ctx context.Context, institution string, update func(*JobStatus)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.statuses[institution]
	if !ok {
		current = &JobStatus{Phase: PhaseIdle}
	}
	next := current.clone()
	update(next)

	if err := s.persistence.SaveStatus(ctx, institution, next); err != nil {
		return err
	}
	s.statuses[institution] = next
	return nil
}

func (j *JobStatus) clone() *JobStatus {
	c := *j
	if j.LastAttempt != nil {
		t := *j.LastAttempt
		c.LastAttempt = &t
	}
	if j.LastRunTime != nil {
		t := *j.LastRunTime
		c.LastRunTime = &t
	}
	c.Terms = slices.Clone(j.Terms)
	return &c
}
