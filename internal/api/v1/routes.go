// Package v1 provides the admin REST API handlers of the roster sync service.
package v1

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/roster-sync/internal/api/common"
	"github.com/stacklok/roster-sync/internal/coordinator"
	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
	"github.com/stacklok/roster-sync/internal/status"
	"github.com/stacklok/roster-sync/internal/versions"
)

// ReconcileResponse acknowledges a reconciliation request
type ReconcileResponse struct {
	Status      string `json:"status"`
	Institution string `json:"institution"`
	DryRun      bool   `json:"dryRun"`
}

// SyncStudentResponse lists the steps a student sync performed
type SyncStudentResponse struct {
	Institution string   `json:"institution"`
	Term        string   `json:"term"`
	ExternalID  string   `json:"externalId"`
	Operations  []string `json:"operations"`
}

// CreateSectionRequest is the body of a section creation request
type CreateSectionRequest struct {
	Term     string `json:"term"`
	CRN      string `json:"crn"`
	CourseID int64  `json:"courseId"`
}

// SectionResponse identifies a mirrored section
type SectionResponse struct {
	Institution string `json:"institution"`
	Term        string `json:"term"`
	CRN         string `json:"crn"`
	CourseID    int64  `json:"courseId,omitempty"`
}

// CreateCourseRequest is the body of a course creation request. The first CRN names the course.
type CreateCourseRequest struct {
	Term string   `json:"term"`
	CRNs []string `json:"crns"`
}

// CourseResponse identifies a course created for mirrored sections
type CourseResponse struct {
	Institution string   `json:"institution"`
	Term        string   `json:"term"`
	CourseID    int64    `json:"courseId"`
	Name        string   `json:"name"`
	CourseCode  string   `json:"courseCode"`
	SISCourseID string   `json:"sisCourseId"`
	CRNs        []string `json:"crns"`
}

// Routes serves the per-institution admin endpoints
type Routes struct {
	store        sis.Store
	coordinator  coordinator.Coordinator
	statusSvc    status.Service
	reports      reconcile.ReportStore
	institutions map[string]roster.Operations
}

// NewRoutes creates a new Routes instance. institutions maps names to their roster operations.
// A nil reports store disables the report endpoint.
func NewRoutes(
	store sis.Store,
	coord coordinator.Coordinator,
	statusSvc status.Service,
	reports reconcile.ReportStore,
	institutions map[string]roster.Operations,
) *Routes {
	return &Routes{
		store:        store,
		coordinator:  coord,
		statusSvc:    statusSvc,
		reports:      reports,
		institutions: institutions,
	}
}

// Router creates the router for the /v1 API
func Router(routes *Routes) http.Handler {
	r := chi.NewRouter()

	r.Get("/status", routes.listStatuses)

	r.Route("/institutions/{institution}", func(r chi.Router) {
		r.Get("/status", routes.getStatus)
		r.Post("/reconcile", routes.reconcile)
		r.Get("/reports/{term}", routes.getReport)
		r.Post("/students/{externalId}/sync", routes.syncStudent)
		r.Post("/sections", routes.createSection)
		r.Delete("/sections/{term}/{crn}", routes.deleteSection)
		r.Post("/courses", routes.createCourse)
		r.Delete("/courses/{courseId}", routes.deleteCourse)
	})

	return r
}

func (rr *Routes) listStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := rr.statusSvc.ListStatuses(r.Context())
	if err != nil {
		slog.Error("Failed to list job status", "error", err)
		common.WriteErrorResponse(w, "Failed to list job status", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, statuses, http.StatusOK)
}

func (rr *Routes) getStatus(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}
	st, err := rr.statusSvc.GetStatus(r.Context(), institution)
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	}
	common.WriteJSONResponse(w, st, http.StatusOK)
}

func (rr *Routes) reconcile(w http.ResponseWriter, r *http.Request) {
	institution, err := common.GetAndValidateURLParam(r, "institution")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	dryRun := false
	if v := r.URL.Query().Get("dryRun"); v != "" {
		if dryRun, err = strconv.ParseBool(v); err != nil {
			common.WriteErrorResponse(w, "dryRun must be a boolean", http.StatusBadRequest)
			return
		}
	}

	err = rr.coordinator.Trigger(institution, reconcile.RunOptions{DryRun: dryRun})
	switch {
	case errors.Is(err, coordinator.ErrUnknownInstitution):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	case errors.Is(err, reconcile.ErrRunInProgress):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
		return
	case errors.Is(err, coordinator.ErrNotStarted):
		common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
		return
	case err != nil:
		slog.Error("Failed to trigger reconciliation", "institution", institution, "error", err)
		common.WriteErrorResponse(w, "Failed to trigger reconciliation", http.StatusInternalServerError)
		return
	}

	slog.Info("Reconciliation requested", "institution", institution, "dry_run", dryRun)
	common.WriteJSONResponse(w, ReconcileResponse{
		Status:      "accepted",
		Institution: institution,
		DryRun:      dryRun,
	}, http.StatusAccepted)
}

func (rr *Routes) getReport(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}
	term, err := common.GetAndValidateURLParam(r, "term")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if rr.reports == nil {
		common.WriteErrorResponse(w, "reports are not available", http.StatusServiceUnavailable)
		return
	}

	snapshot, err := rr.reports.Latest(institution, term)
	switch {
	case errors.Is(err, reconcile.ErrNoReport):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		slog.Error("Failed to read reconciliation report", "institution", institution, "term", term, "error", err)
		common.WriteErrorResponse(w, "Failed to read reconciliation report", http.StatusInternalServerError)
		return
	}
	common.WriteJSONResponse(w, snapshot, http.StatusOK)
}

func (rr *Routes) syncStudent(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}
	externalID, err := common.GetAndValidateURLParam(r, "externalId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	term := r.URL.Query().Get("term")
	if term == "" {
		common.WriteErrorResponse(w, "term query parameter is required", http.StatusBadRequest)
		return
	}

	person, err := rr.store.GetPerson(r.Context(), sis.ByExternalID(externalID))
	if err != nil {
		writeOperationError(w, "Failed to look up person", err)
		return
	}

	ops, err := rr.institutions[institution].SyncStudent(r.Context(), term, person)
	if err != nil {
		slog.Error("Student sync failed",
			"institution", institution, "term", term, "external_id", externalID, "error", err)
		writeOperationError(w, "Student sync failed", err)
		return
	}

	common.WriteJSONResponse(w, SyncStudentResponse{
		Institution: institution,
		Term:        term,
		ExternalID:  externalID,
		Operations:  ops,
	}, http.StatusOK)
}

func (rr *Routes) createSection(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}

	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Term == "" || req.CRN == "" || req.CourseID <= 0 {
		common.WriteErrorResponse(w, "term, crn and a positive courseId are required", http.StatusBadRequest)
		return
	}

	err := rr.institutions[institution].CreateSection(r.Context(), req.Term, req.CRN, req.CourseID, nil)
	if err != nil {
		slog.Error("Section creation failed",
			"institution", institution, "term", req.Term, "crn", req.CRN, "error", err)
		writeOperationError(w, "Section creation failed", err)
		return
	}

	common.WriteJSONResponse(w, SectionResponse{
		Institution: institution,
		Term:        req.Term,
		CRN:         req.CRN,
		CourseID:    req.CourseID,
	}, http.StatusCreated)
}

func (rr *Routes) deleteSection(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}
	term, err := common.GetAndValidateURLParam(r, "term")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	crn, err := common.GetAndValidateURLParam(r, "crn")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	err = rr.institutions[institution].DeleteSection(r.Context(), term, crn, sis.PolicyStrict, nil)
	if err != nil {
		slog.Error("Section deletion failed", "institution", institution, "term", term, "crn", crn, "error", err)
		writeOperationError(w, "Section deletion failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (rr *Routes) createCourse(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}

	var req CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.WriteErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Term == "" || len(req.CRNs) == 0 {
		common.WriteErrorResponse(w, "term and at least one crn are required", http.StatusBadRequest)
		return
	}

	course, err := rr.institutions[institution].CreateCourse(r.Context(), req.Term, req.CRNs, nil)
	if err != nil {
		slog.Error("Course creation failed",
			"institution", institution, "term", req.Term, "crns", req.CRNs, "error", err)
		writeOperationError(w, "Course creation failed", err)
		return
	}

	common.WriteJSONResponse(w, CourseResponse{
		Institution: institution,
		Term:        req.Term,
		CourseID:    course.ID,
		Name:        course.Name,
		CourseCode:  course.CourseCode,
		SISCourseID: course.SISCourseID,
		CRNs:        req.CRNs,
	}, http.StatusCreated)
}

func (rr *Routes) deleteCourse(w http.ResponseWriter, r *http.Request) {
	institution, ok := rr.institution(w, r)
	if !ok {
		return
	}
	raw, err := common.GetAndValidateURLParam(r, "courseId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	courseID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || courseID <= 0 {
		common.WriteErrorResponse(w, "courseId must be a positive integer", http.StatusBadRequest)
		return
	}

	if err := rr.institutions[institution].DeleteCourse(r.Context(), courseID, nil); err != nil {
		slog.Error("Course deletion failed", "institution", institution, "course_id", courseID, "error", err)
		writeOperationError(w, "Course deletion failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// institution resolves the {institution} parameter, writing a 4xx on failure
func (rr *Routes) institution(w http.ResponseWriter, r *http.Request) (string, bool) {
	name, err := common.GetAndValidateURLParam(r, "institution")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	if _, ok := rr.institutions[name]; !ok {
		common.WriteErrorResponse(w, "unknown institution: "+name, http.StatusNotFound)
		return "", false
	}
	return name, true
}

// writeOperationError maps domain errors to status codes
func writeOperationError(w http.ResponseWriter, message string, err error) {
	var httpErr *lms.HTTPError
	switch {
	case errors.Is(err, sis.ErrPersonNotFound), sis.IsNotTracked(err), errors.Is(err, sis.ErrSectionNotFound),
		errors.Is(err, lms.ErrEnrollmentTermNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, roster.ErrNoSections):
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, roster.ErrSectionAlreadyTracked),
		errors.Is(err, sis.ErrDuplicateSections),
		errors.Is(err, sis.ErrAmbiguousPerson):
		common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
	case errors.As(err, &httpErr):
		common.WriteErrorResponse(w, message+": "+err.Error(), http.StatusBadGateway)
	default:
		common.WriteErrorResponse(w, message+": "+err.Error(), http.StatusInternalServerError)
	}
}

// HealthRouter creates a router for the health, readiness and version endpoints
func HealthRouter(store sis.Store, coord coordinator.Coordinator) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler(store))
	r.Get("/readiness", readinessHandler(coord))
	r.Get("/version", versionHandler)

	return r
}

// healthHandler pings the SIS database
func healthHandler(store sis.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			slog.Error("Health check failed", "error", err)
			common.WriteJSONResponse(w, map[string]string{"status": "fail"}, http.StatusInternalServerError)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}

// readinessHandler reports ready once the coordinator has started
func readinessHandler(coord coordinator.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if coord == nil || !coord.Ready() {
			common.WriteErrorResponse(w, "coordinator not started", http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}
