package coordinator_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/roster-sync/internal/coordinator"
	eventsmocks "github.com/stacklok/roster-sync/internal/events/mocks"
	"github.com/stacklok/roster-sync/internal/reconcile"
	reconcilemocks "github.com/stacklok/roster-sync/internal/reconcile/mocks"
	"github.com/stacklok/roster-sync/internal/status"
)

const testInstitution = "foothill"

func newStatus(t *testing.T) (status.Service, status.StatusPersistence) {
	t.Helper()
	p := status.NewFileStatusPersistence(afero.NewMemMapFs(), "/status")
	return status.NewService(p), p
}

func start(t *testing.T, c coordinator.Coordinator) {
	t.Helper()

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond)

	t.Cleanup(func() {
		require.NoError(t, c.Stop())
		require.NoError(t, <-errCh)
		assert.False(t, c.Ready())
	})
}

func waitForPhase(t *testing.T, svc status.Service, phase status.Phase) *status.JobStatus {
	t.Helper()

	var st *status.JobStatus
	require.Eventually(t, func() bool {
		var err error
		st, err = svc.GetStatus(context.Background(), testInstitution)
		return err == nil && st.Phase == phase
	}, 2*time.Second, 5*time.Millisecond)
	return st
}

func TestNew(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, _ := newStatus(t)

	tests := []struct {
		name    string
		opts    []coordinator.Option
		wantErr string
	}{
		{
			name: "valid",
			opts: []coordinator.Option{
				coordinator.WithStatusService(svc),
				coordinator.WithJob(coordinator.Job{Institution: testInstitution, Interval: time.Hour, Engine: engine}),
			},
		},
		{
			name:    "missing status service",
			opts:    nil,
			wantErr: "status service is required",
		},
		{
			name: "job without engine",
			opts: []coordinator.Option{
				coordinator.WithStatusService(svc),
				coordinator.WithJob(coordinator.Job{Institution: testInstitution}),
			},
			wantErr: "has no engine",
		},
		{
			name: "duplicate job",
			opts: []coordinator.Option{
				coordinator.WithStatusService(svc),
				coordinator.WithJob(coordinator.Job{Institution: testInstitution, Engine: engine}),
				coordinator.WithJob(coordinator.Job{Institution: testInstitution, Engine: engine}),
			},
			wantErr: "duplicate job",
		},
		{
			name: "negative jitter",
			opts: []coordinator.Option{
				coordinator.WithStatusService(svc),
				coordinator.WithJitter(-time.Second),
			},
			wantErr: "jitter must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, err := coordinator.New(tt.opts...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.False(t, c.Ready())
		})
	}
}

func TestStop_BeforeStart(t *testing.T) {
	t.Parallel()

	svc, _ := newStatus(t)
	c, err := coordinator.New(coordinator.WithStatusService(svc))
	require.NoError(t, err)
	assert.NoError(t, c.Stop())
}

func TestTrigger_Errors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, _ := newStatus(t)

	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Engine: engine}),
	)
	require.NoError(t, err)

	err = c.Trigger("deanza", reconcile.RunOptions{})
	assert.ErrorIs(t, err, coordinator.ErrUnknownInstitution)

	err = c.Trigger(testInstitution, reconcile.RunOptions{})
	assert.ErrorIs(t, err, coordinator.ErrNotStarted)

	start(t, c)

	engine.EXPECT().Running().Return(true)
	err = c.Trigger(testInstitution, reconcile.RunOptions{})
	assert.ErrorIs(t, err, reconcile.ErrRunInProgress)
}

func TestTrigger_RecordsSuccess(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, p := newStatus(t)

	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Engine: engine}),
	)
	require.NoError(t, err)
	start(t, c)

	// Once on trigger, once when the run starts
	engine.EXPECT().Running().Return(false).Times(2)
	engine.EXPECT().Run(gomock.Any(), reconcile.RunOptions{}).Return([]*reconcile.Report{
		{Term: "201811", SourceCount: 3, TargetCount: 2, MissingEnrollments: 1, CorrectedEnrollments: 1},
	}, nil)

	require.NoError(t, c.Trigger(testInstitution, reconcile.RunOptions{}))

	st := waitForPhase(t, svc, status.PhaseComplete)
	assert.Equal(t, "Reconciliation completed successfully", st.Message)
	assert.Zero(t, st.AttemptCount)
	require.NotNil(t, st.LastRunTime)
	require.NotNil(t, st.LastAttempt)
	assert.NotEmpty(t, st.LastDuration)
	require.Len(t, st.Terms, 1)
	assert.Equal(t, status.TermSummary{
		Term: "201811", SourceCount: 3, TargetCount: 2, MissingEnrollments: 1, CorrectedEnrollments: 1,
	}, st.Terms[0])

	persisted, err := p.LoadStatus(context.Background(), testInstitution)
	require.NoError(t, err)
	assert.Equal(t, status.PhaseComplete, persisted.Phase)
}

func TestTrigger_RecordsFailure(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, _ := newStatus(t)

	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Engine: engine}),
	)
	require.NoError(t, err)
	start(t, c)

	engine.EXPECT().Running().Return(false).Times(4)
	engine.EXPECT().Run(gomock.Any(), gomock.Any()).Return(
		[]*reconcile.Report{{Term: "201811", Failures: 2}},
		errors.New("term 201812: connection reset"),
	).Times(2)

	require.NoError(t, c.Trigger(testInstitution, reconcile.RunOptions{}))
	st := waitForPhase(t, svc, status.PhaseFailed)
	assert.Equal(t, 1, st.AttemptCount)

	require.NoError(t, c.Trigger(testInstitution, reconcile.RunOptions{}))
	require.Eventually(t, func() bool {
		st, err = svc.GetStatus(context.Background(), testInstitution)
		return err == nil && st.AttemptCount == 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.Equal(t, status.PhaseFailed, st.Phase)
	assert.Contains(t, st.Message, "connection reset")
	assert.Nil(t, st.LastRunTime)
	require.Len(t, st.Terms, 1)
	assert.Equal(t, 2, st.Terms[0].Failures)
}

func TestSchedule_RunsWhenDue(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, _ := newStatus(t)

	engine.EXPECT().Running().Return(false)
	engine.EXPECT().Run(gomock.Any(), reconcile.RunOptions{}).Return(nil, nil).Times(1)

	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJitter(0),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Interval: time.Hour, Engine: engine}),
	)
	require.NoError(t, err)
	start(t, c)

	st := waitForPhase(t, svc, status.PhaseComplete)
	assert.Empty(t, st.Terms)
}

func TestSchedule_WaitsForInterval(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, p := newStatus(t)

	lastRun := time.Now().Add(-time.Minute)
	require.NoError(t, p.SaveStatus(context.Background(), testInstitution, &status.JobStatus{
		Phase:       status.PhaseComplete,
		LastRunTime: &lastRun,
	}))

	// No Run expectation: a call fails the test
	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJitter(0),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Interval: time.Hour, Engine: engine}),
	)
	require.NoError(t, err)
	start(t, c)

	time.Sleep(50 * time.Millisecond)
	st, err := svc.GetStatus(context.Background(), testInstitution)
	require.NoError(t, err)
	assert.Equal(t, status.PhaseComplete, st.Phase)
}

func TestSchedule_SkipsActiveRunWithoutTouchingStatus(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	engine := reconcilemocks.NewMockEngine(ctrl)
	svc, p := newStatus(t)

	lastRun := time.Now().Add(-2 * time.Hour)
	require.NoError(t, p.SaveStatus(context.Background(), testInstitution, &status.JobStatus{
		Phase:       status.PhaseComplete,
		Message:     "Dry run completed successfully",
		LastRunTime: &lastRun,
	}))

	// No Run expectation: a call fails the test
	checked := make(chan struct{})
	var once sync.Once
	engine.EXPECT().Running().DoAndReturn(func() bool {
		once.Do(func() { close(checked) })
		return true
	}).MinTimes(1)

	c, err := coordinator.New(
		coordinator.WithStatusService(svc),
		coordinator.WithJitter(0),
		coordinator.WithJob(coordinator.Job{Institution: testInstitution, Interval: time.Hour, Engine: engine}),
	)
	require.NoError(t, err)
	start(t, c)

	select {
	case <-checked:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled run never checked the engine")
	}

	st, err := svc.GetStatus(context.Background(), testInstitution)
	require.NoError(t, err)
	assert.Equal(t, status.PhaseComplete, st.Phase)
	assert.Equal(t, "Dry run completed successfully", st.Message)
	assert.Nil(t, st.LastAttempt)
	assert.Zero(t, st.AttemptCount)
}

func TestStart_RunsEventLoop(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	dispatcher := eventsmocks.NewMockDispatcher(ctrl)
	svc, _ := newStatus(t)

	started := make(chan struct{})
	stopped := make(chan struct{})
	dispatcher.EXPECT().Start(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		close(stopped)
		return nil
	})

	c, err := coordinator.New(coordinator.WithStatusService(svc), coordinator.WithDispatcher(dispatcher))
	require.NoError(t, err)

	errCh := make(chan error, 1)
	go func() { errCh <- c.Start(context.Background()) }()

	<-started
	require.Eventually(t, c.Ready, time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())
	require.NoError(t, <-errCh)

	select {
	case <-stopped:
	default:
		t.Fatal("event loop still running after Stop")
	}
}
