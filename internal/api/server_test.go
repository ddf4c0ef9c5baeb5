package api_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/roster-sync/internal/api"
	"github.com/stacklok/roster-sync/internal/api/common"
	v1 "github.com/stacklok/roster-sync/internal/api/v1"
	"github.com/stacklok/roster-sync/internal/coordinator"
	coordmocks "github.com/stacklok/roster-sync/internal/coordinator/mocks"
	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/reconcile"
	reconcilemocks "github.com/stacklok/roster-sync/internal/reconcile/mocks"
	"github.com/stacklok/roster-sync/internal/roster"
	rostermocks "github.com/stacklok/roster-sync/internal/roster/mocks"
	"github.com/stacklok/roster-sync/internal/sis"
	sismocks "github.com/stacklok/roster-sync/internal/sis/mocks"
	"github.com/stacklok/roster-sync/internal/status"
	statusmocks "github.com/stacklok/roster-sync/internal/status/mocks"
)

const testInstitution = "foothill"

type fixture struct {
	store     *sismocks.MockStore
	coord     *coordmocks.MockCoordinator
	statusSvc *statusmocks.MockService
	ops       *rostermocks.MockOperations
	reports   *reconcilemocks.MockReportStore
	server    http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		store:     sismocks.NewMockStore(ctrl),
		coord:     coordmocks.NewMockCoordinator(ctrl),
		statusSvc: statusmocks.NewMockService(ctrl),
		ops:       rostermocks.NewMockOperations(ctrl),
		reports:   reconcilemocks.NewMockReportStore(ctrl),
	}
	f.server = api.NewServer(f.store, f.coord, f.statusSvc,
		api.WithInstitution(testInstitution, f.ops),
		api.WithReportStore(f.reports),
		api.WithMiddlewares(api.LoggingMiddleware),
	)
	return f
}

func (f *fixture) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) common.ErrorResponse {
	t.Helper()

	var body common.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "error", body.Status)
	return body
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		pingErr        error
		expectedStatus int
		expectedBody   string
	}{
		{name: "database reachable", expectedStatus: http.StatusOK, expectedBody: "ok"},
		{name: "database down", pingErr: errors.New("connection refused"), expectedStatus: http.StatusInternalServerError, expectedBody: "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.store.EXPECT().Ping(gomock.Any()).Return(tt.pingErr)

			rr := f.do(t, http.MethodGet, "/health", "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var response map[string]string
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
			assert.Equal(t, tt.expectedBody, response["status"])
		})
	}
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	for _, ready := range []bool{true, false} {
		t.Run(fmt.Sprintf("ready=%v", ready), func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			f.coord.EXPECT().Ready().Return(ready)

			rr := f.do(t, http.MethodGet, "/readiness", "")
			if ready {
				assert.Equal(t, http.StatusOK, rr.Code)
				return
			}
			assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
			decodeError(t, rr)
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()

	rr := newFixture(t).do(t, http.MethodGet, "/version", "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	for _, key := range []string{"version", "commit", "build_date", "go_version", "platform"} {
		assert.Contains(t, response, key)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	store := sismocks.NewMockStore(ctrl)
	coord := coordmocks.NewMockCoordinator(ctrl)
	statusSvc := statusmocks.NewMockService(ctrl)

	without := api.NewServer(store, coord, statusSvc)
	rr := httptest.NewRecorder()
	without.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("roster_sync_events_total 1\n"))
	})
	with := api.NewServer(store, coord, statusSvc, api.WithMetricsHandler(metrics))
	rr = httptest.NewRecorder()
	with.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "roster_sync_events_total")
}

func TestStatusEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("list", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.statusSvc.EXPECT().ListStatuses(gomock.Any()).Return(map[string]*status.JobStatus{
			testInstitution: {Phase: status.PhaseComplete, Terms: []status.TermSummary{{Term: "201811", CorrectedDrops: 2}}},
			"deanza":        {Phase: status.PhaseIdle},
		}, nil)

		rr := f.do(t, http.MethodGet, "/v1/status", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var response map[string]status.JobStatus
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, status.PhaseComplete, response[testInstitution].Phase)
		assert.Equal(t, 2, response[testInstitution].Terms[0].CorrectedDrops)
		assert.Equal(t, status.PhaseIdle, response["deanza"].Phase)
	})

	t.Run("one institution", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.statusSvc.EXPECT().GetStatus(gomock.Any(), testInstitution).
			Return(&status.JobStatus{Phase: status.PhaseRunning, Term: "201811"}, nil)

		rr := f.do(t, http.MethodGet, "/v1/institutions/foothill/status", "")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"term":"201811"`)
	})

	t.Run("unknown institution", func(t *testing.T) {
		t.Parallel()

		rr := newFixture(t).do(t, http.MethodGet, "/v1/institutions/mission/status", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		decodeError(t, rr)
	})
}

func TestReconcileEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		target         string
		setup          func(f *fixture)
		expectedStatus int
	}{
		{
			name:   "accepted",
			target: "/v1/institutions/foothill/reconcile",
			setup: func(f *fixture) {
				f.coord.EXPECT().Trigger(testInstitution, reconcile.RunOptions{}).Return(nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:   "dry run",
			target: "/v1/institutions/foothill/reconcile?dryRun=true",
			setup: func(f *fixture) {
				f.coord.EXPECT().Trigger(testInstitution, reconcile.RunOptions{DryRun: true}).Return(nil)
			},
			expectedStatus: http.StatusAccepted,
		},
		{
			name:   "run in progress",
			target: "/v1/institutions/foothill/reconcile",
			setup: func(f *fixture) {
				f.coord.EXPECT().Trigger(testInstitution, gomock.Any()).
					Return(fmt.Errorf("%w for foothill", reconcile.ErrRunInProgress))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "unknown institution",
			target: "/v1/institutions/mission/reconcile",
			setup: func(f *fixture) {
				f.coord.EXPECT().Trigger("mission", gomock.Any()).
					Return(fmt.Errorf("%w: mission", coordinator.ErrUnknownInstitution))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "not started",
			target: "/v1/institutions/foothill/reconcile",
			setup: func(f *fixture) {
				f.coord.EXPECT().Trigger(testInstitution, gomock.Any()).Return(coordinator.ErrNotStarted)
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
		{
			name:           "bad dry run flag",
			target:         "/v1/institutions/foothill/reconcile?dryRun=maybe",
			setup:          func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(f)

			rr := f.do(t, http.MethodPost, tt.target, "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if rr.Code >= http.StatusBadRequest {
				decodeError(t, rr)
			}
		})
	}
}

func TestSyncStudentEndpoint(t *testing.T) {
	t.Parallel()

	person := &sis.Person{ID: 42, ExternalID: "20000001"}

	t.Run("returns the operations", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.EXPECT().GetPerson(gomock.Any(), sis.ByExternalID("20000001")).Return(person, nil)
		f.ops.EXPECT().SyncStudent(gomock.Any(), "201811", person).
			Return([]string{"enroll 201811/40001", "drop 201811/40002"}, nil)

		rr := f.do(t, http.MethodPost, "/v1/institutions/foothill/students/20000001/sync?term=201811", "")
		require.Equal(t, http.StatusOK, rr.Code)

		var response struct {
			Operations []string `json:"operations"`
			ExternalID string   `json:"externalId"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
		assert.Equal(t, "20000001", response.ExternalID)
		assert.Len(t, response.Operations, 2)
	})

	t.Run("missing term", func(t *testing.T) {
		t.Parallel()

		rr := newFixture(t).do(t, http.MethodPost, "/v1/institutions/foothill/students/20000001/sync", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Message, "term")
	})

	t.Run("unknown person", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.EXPECT().GetPerson(gomock.Any(), gomock.Any()).
			Return(nil, fmt.Errorf("%w: 99999999", sis.ErrPersonNotFound))

		rr := f.do(t, http.MethodPost, "/v1/institutions/foothill/students/99999999/sync?term=201811", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("lms failure", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.store.EXPECT().GetPerson(gomock.Any(), gomock.Any()).Return(person, nil)
		f.ops.EXPECT().SyncStudent(gomock.Any(), "201811", person).
			Return(nil, fmt.Errorf("failed to enroll: %w", &lms.HTTPError{StatusCode: http.StatusServiceUnavailable}))

		rr := f.do(t, http.MethodPost, "/v1/institutions/foothill/students/20000001/sync?term=201811", "")
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("unknown institution", func(t *testing.T) {
		t.Parallel()

		rr := newFixture(t).do(t, http.MethodPost, "/v1/institutions/mission/students/20000001/sync?term=201811", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestSectionEndpoints(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setup          func(f *fixture)
		expectedStatus int
	}{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/v1/institutions/foothill/sections",
			body:   `{"term":"201811","crn":"40001","courseId":1001}`,
			setup: func(f *fixture) {
				f.ops.EXPECT().CreateSection(gomock.Any(), "201811", "40001", int64(1001), gomock.Nil()).Return(nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "create already tracked",
			method: http.MethodPost,
			target: "/v1/institutions/foothill/sections",
			body:   `{"term":"201811","crn":"40001","courseId":1001}`,
			setup: func(f *fixture) {
				f.ops.EXPECT().CreateSection(gomock.Any(), "201811", "40001", int64(1001), gomock.Any()).
					Return(roster.ErrSectionAlreadyTracked)
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "create with missing course",
			method:         http.MethodPost,
			target:         "/v1/institutions/foothill/sections",
			body:           `{"term":"201811","crn":"40001"}`,
			setup:          func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "create with malformed body",
			method:         http.MethodPost,
			target:         "/v1/institutions/foothill/sections",
			body:           `{"term":`,
			setup:          func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/v1/institutions/foothill/sections/201811/40001",
			setup: func(f *fixture) {
				f.ops.EXPECT().DeleteSection(gomock.Any(), "201811", "40001", sis.PolicyStrict, gomock.Nil()).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:   "delete untracked",
			method: http.MethodDelete,
			target: "/v1/institutions/foothill/sections/201811/40009",
			setup: func(f *fixture) {
				f.ops.EXPECT().DeleteSection(gomock.Any(), "201811", "40009", sis.PolicyStrict, gomock.Any()).
					Return(fmt.Errorf("failed to look up section: %w", sis.ErrSectionNotTracked))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "delete with database failure",
			method: http.MethodDelete,
			target: "/v1/institutions/foothill/sections/201811/40001",
			setup: func(f *fixture) {
				f.ops.EXPECT().DeleteSection(gomock.Any(), "201811", "40001", sis.PolicyStrict, gomock.Any()).
					Return(errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(f)

			rr := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if rr.Code >= http.StatusBadRequest {
				decodeError(t, rr)
			}
		})
	}
}

func TestCourseEndpoints(t *testing.T) {
	t.Parallel()

	course := &lms.Course{ID: 2001, Name: "MATH 001A: Calculus", CourseCode: "MATH 001A", SISCourseID: "201811:40001"}

	tests := []struct {
		name           string
		method         string
		target         string
		body           string
		setup          func(f *fixture)
		expectedStatus int
		check          func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name:   "create",
			method: http.MethodPost,
			target: "/v1/institutions/foothill/courses",
			body:   `{"term":"201811","crns":["40001","40002"]}`,
			setup: func(f *fixture) {
				f.ops.EXPECT().CreateCourse(gomock.Any(), "201811", []string{"40001", "40002"}, gomock.Nil()).Return(course, nil)
			},
			expectedStatus: http.StatusCreated,
			check: func(t *testing.T, rr *httptest.ResponseRecorder) {
				t.Helper()
				var body v1.CourseResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
				assert.Equal(t, int64(2001), body.CourseID)
				assert.Equal(t, "201811:40001", body.SISCourseID)
				assert.Equal(t, []string{"40001", "40002"}, body.CRNs)
			},
		},
		{
			name:           "create without crns",
			method:         http.MethodPost,
			target:         "/v1/institutions/foothill/courses",
			body:           `{"term":"201811","crns":[]}`,
			setup:          func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "create without enrollment term",
			method: http.MethodPost,
			target: "/v1/institutions/foothill/courses",
			body:   `{"term":"201899","crns":["40001"]}`,
			setup: func(f *fixture) {
				f.ops.EXPECT().CreateCourse(gomock.Any(), "201899", []string{"40001"}, gomock.Any()).
					Return(nil, fmt.Errorf("%w: 201899", lms.ErrEnrollmentTermNotFound))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "create with a section already mirrored",
			method: http.MethodPost,
			target: "/v1/institutions/foothill/courses",
			body:   `{"term":"201811","crns":["40001"]}`,
			setup: func(f *fixture) {
				f.ops.EXPECT().CreateCourse(gomock.Any(), "201811", []string{"40001"}, gomock.Any()).
					Return(course, fmt.Errorf("course 2001 created but 1 of 1 sections failed: %w", roster.ErrSectionAlreadyTracked))
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:   "delete",
			method: http.MethodDelete,
			target: "/v1/institutions/foothill/courses/2001",
			setup: func(f *fixture) {
				f.ops.EXPECT().DeleteCourse(gomock.Any(), int64(2001), gomock.Nil()).Return(nil)
			},
			expectedStatus: http.StatusNoContent,
		},
		{
			name:           "delete with bad id",
			method:         http.MethodDelete,
			target:         "/v1/institutions/foothill/courses/abc",
			setup:          func(*fixture) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "delete with lms failure",
			method: http.MethodDelete,
			target: "/v1/institutions/foothill/courses/2001",
			setup: func(f *fixture) {
				f.ops.EXPECT().DeleteCourse(gomock.Any(), int64(2001), gomock.Any()).
					Return(&lms.HTTPError{StatusCode: http.StatusInternalServerError})
			},
			expectedStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(f)

			rr := f.do(t, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if rr.Code >= http.StatusBadRequest {
				decodeError(t, rr)
			}
			if tt.check != nil {
				tt.check(t, rr)
			}
		})
	}
}

func TestReportEndpoint(t *testing.T) {
	t.Parallel()

	snapshot := &reconcile.Snapshot{
		Report: &reconcile.Report{RunID: "run-7", Institution: testInstitution, Term: "201811", MissingDrops: 2},
	}

	tests := []struct {
		name           string
		target         string
		setup          func(f *fixture)
		expectedStatus int
	}{
		{
			name:   "latest report",
			target: "/v1/institutions/foothill/reports/201811",
			setup: func(f *fixture) {
				f.reports.EXPECT().Latest(testInstitution, "201811").Return(snapshot, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:   "no report yet",
			target: "/v1/institutions/foothill/reports/201821",
			setup: func(f *fixture) {
				f.reports.EXPECT().Latest(testInstitution, "201821").
					Return(nil, fmt.Errorf("%w for foothill term 201821", reconcile.ErrNoReport))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:   "unreadable report",
			target: "/v1/institutions/foothill/reports/201811",
			setup: func(f *fixture) {
				f.reports.EXPECT().Latest(testInstitution, "201811").Return(nil, errors.New("unexpected end of JSON input"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "unknown institution",
			target:         "/v1/institutions/mission/reports/201811",
			setup:          func(*fixture) {},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			tt.setup(f)

			rr := f.do(t, http.MethodGet, tt.target, "")
			assert.Equal(t, tt.expectedStatus, rr.Code)
			if rr.Code >= http.StatusBadRequest {
				decodeError(t, rr)
				return
			}

			var got reconcile.Snapshot
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
			require.NotNil(t, got.Report)
			assert.Equal(t, "run-7", got.Report.RunID)
			assert.Equal(t, 2, got.Report.MissingDrops)
		})
	}

	t.Run("without a report store", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		server := api.NewServer(sismocks.NewMockStore(ctrl), coordmocks.NewMockCoordinator(ctrl), statusmocks.NewMockService(ctrl),
			api.WithInstitution(testInstitution, rostermocks.NewMockOperations(ctrl)))

		rr := httptest.NewRecorder()
		server.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/institutions/foothill/reports/201811", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	})
}
