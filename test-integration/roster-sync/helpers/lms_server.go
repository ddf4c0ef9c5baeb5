package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/roster-sync/internal/lms"
)

const (
	// LMSToken is the bearer token the fake LMS accepts
	LMSToken = "integration-test-token"

	sisUserPrefix = "sis_user_id:"
)

// FakeLMS is an in-memory LMS tenant served over HTTP with the REST surface the
// roster sync client uses
type FakeLMS struct {
	server *httptest.Server

	mu          sync.Mutex
	nextID      int64
	pageSize    int
	requests    int
	terms       []lms.EnrollmentTerm
	courses     map[int64]*lms.Course
	sections    map[int64]*lms.Section
	users       map[string]*lms.User
	enrollments map[int64]*lms.Enrollment
}

// NewFakeLMS starts a fake LMS. Close it when done.
func NewFakeLMS() *FakeLMS {
	f := &FakeLMS{
		nextID:      100,
		courses:     make(map[int64]*lms.Course),
		sections:    make(map[int64]*lms.Section),
		users:       make(map[string]*lms.User),
		enrollments: make(map[int64]*lms.Enrollment),
	}
	f.server = httptest.NewServer(f.router())
	return f
}

// BaseURL is the API root to configure as lms.baseURL
func (f *FakeLMS) BaseURL() string {
	return f.server.URL + "/api/v1"
}

// Close stops the server
func (f *FakeLMS) Close() {
	f.server.Close()
}

// SetPageSize forces pagination of list endpoints
func (f *FakeLMS) SetPageSize(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pageSize = n
}

// AddTerm registers an enrollment term and returns it
func (f *FakeLMS) AddTerm(name, sisTermID string) lms.EnrollmentTerm {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := lms.EnrollmentTerm{ID: f.id(), Name: name, SISTermID: sisTermID}
	f.terms = append(f.terms, t)
	return t
}

// AddCourse registers a course in an enrollment term and returns it
func (f *FakeLMS) AddCourse(name string, termID int64) lms.Course {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &lms.Course{ID: f.id(), Name: name, CourseCode: name, EnrollmentTermID: termID, WorkflowState: "available"}
	f.courses[c.ID] = c
	return *c
}

// AddSection creates a section linked to term/crn directly in the LMS, bypassing the tracking ledger
func (f *FakeLMS) AddSection(courseID int64, term, crn string) lms.Section {
	f.mu.Lock()
	defer f.mu.Unlock()
	return *f.createSection(courseID, term+" "+crn, lms.FormatSISSectionID(term, crn, "1000"), lms.IntegrationID(term, crn))
}

// Enroll creates an active enrollment directly in the LMS, creating the user if needed
func (f *FakeLMS) Enroll(sectionID int64, loginID string) lms.Enrollment {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[loginID]
	if !ok {
		u = &lms.User{ID: f.id(), Name: loginID, LoginID: loginID, SISUserID: loginID}
		f.users[loginID] = u
	}
	return *f.enroll(f.sections[sectionID], u)
}

// ActiveLogins returns the login ids actively enrolled in a section, sorted
func (f *FakeLMS) ActiveLogins(sectionID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var logins []string
	for _, e := range f.enrollments {
		if e.CourseSectionID == sectionID && e.EnrollmentState == lms.StateActive {
			logins = append(logins, e.User.LoginID)
		}
	}
	slices.Sort(logins)
	return logins
}

// SectionExists reports whether a section is present
func (f *FakeLMS) SectionExists(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sections[id]
	return ok
}

// Course returns a course by id
func (f *FakeLMS) Course(id int64) (lms.Course, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[id]
	if !ok {
		return lms.Course{}, false
	}
	return *c, true
}

// User returns the account with the given login id
func (f *FakeLMS) User(loginID string) (lms.User, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[loginID]
	if !ok {
		return lms.User{}, false
	}
	return *u, true
}

// Requests returns the number of authenticated API requests served
func (f *FakeLMS) Requests() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *FakeLMS) id() int64 {
	f.nextID++
	return f.nextID
}

func (f *FakeLMS) createSection(courseID int64, name, sisSectionID, integrationID string) *lms.Section {
	s := &lms.Section{
		ID:            f.id(),
		CourseID:      courseID,
		Name:          name,
		SISSectionID:  sisSectionID,
		IntegrationID: integrationID,
	}
	f.sections[s.ID] = s
	return s
}

func (f *FakeLMS) enroll(s *lms.Section, u *lms.User) *lms.Enrollment {
	e := &lms.Enrollment{
		ID:              f.id(),
		CourseID:        s.CourseID,
		CourseSectionID: s.ID,
		UserID:          u.ID,
		Type:            lms.StudentEnrollment,
		EnrollmentState: lms.StateActive,
		SISSectionID:    s.SISSectionID,
		User:            lms.EnrollmentUser{ID: u.ID, LoginID: u.LoginID, SISUserID: u.SISUserID},
	}
	e.HTMLURL = fmt.Sprintf("%s/courses/%d/users/%d", f.server.URL, s.CourseID, u.ID)
	f.enrollments[e.ID] = e
	return e
}

func (f *FakeLMS) router() http.Handler {
	r := chi.NewRouter()
	r.Use(f.authenticate)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/accounts/{account}/terms", f.listTerms)
		r.Get("/accounts/{account}/courses", f.listCourses)
		r.Post("/accounts/{account}/courses", f.createCourse)
		r.Post("/accounts/{account}/users", f.createUser)
		r.Get("/accounts/{account}/enrollments/{id}", f.getEnrollment)

		r.Get("/users/{user}/profile", f.getUser)
		r.Put("/users/{user}", f.updateUser)
		r.Get("/users/{user}/enrollments", f.listUserEnrollments)

		r.Get("/courses/{id}", f.getCourse)
		r.Delete("/courses/{id}", f.deleteCourse)
		r.Get("/courses/{id}/enrollments", f.listCourseEnrollments)
		r.Delete("/courses/{course}/enrollments/{id}", f.endEnrollment)
		r.Post("/courses/{id}/sections", f.createSectionHandler)

		r.Delete("/sections/{id}", f.deleteSection)
		r.Get("/sections/{id}/enrollments", f.listSectionEnrollments)
		r.Post("/sections/{id}/enrollments", f.enrollHandler)
	})
	return r
}

func (f *FakeLMS) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+LMSToken {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid access token"})
			return
		}
		f.mu.Lock()
		f.requests++
		f.mu.Unlock()
		w.Header().Set("X-Rate-Limit-Remaining", "700.0")
		w.Header().Set("X-Request-Cost", "0.5")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"errors": []map[string]string{{"message": "The specified resource does not exist."}}})
}

func idParam(r *http.Request, name string) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id
}

func loginParam(r *http.Request) string {
	return strings.TrimPrefix(chi.URLParam(r, "user"), sisUserPrefix)
}

// writePage writes one page of items and a rel="next" Link header when more remain
func writePage[T any](f *FakeLMS, w http.ResponseWriter, r *http.Request, items []T) {
	size := f.pageSize
	if size <= 0 {
		size = len(items)
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	start := min((page-1)*size, len(items))
	end := min(start+size, len(items))
	if end < len(items) {
		next := *r.URL
		q := next.Query()
		q.Set("page", strconv.Itoa(page+1))
		next.RawQuery = q.Encode()
		w.Header().Set("Link", fmt.Sprintf(`<%s%s>; rel="next"`, f.server.URL, next.RequestURI()))
	}

	result := items[start:end]
	if result == nil {
		result = []T{}
	}
	writeJSON(w, http.StatusOK, result)
}

// matches applies the type[] and state[] filters of enrollment listings
func matches(e *lms.Enrollment, r *http.Request) bool {
	q := r.URL.Query()
	states := q["state[]"]
	if len(states) == 0 {
		states = []string{lms.StateActive}
	}
	if !slices.Contains(states, e.EnrollmentState) {
		return false
	}
	types := q["type[]"]
	return len(types) == 0 || slices.Contains(types, e.Type)
}

func (f *FakeLMS) collect(keep func(*lms.Enrollment) bool) []lms.Enrollment {
	var result []lms.Enrollment
	for _, e := range f.enrollments {
		if keep(e) {
			result = append(result, *e)
		}
	}
	slices.SortFunc(result, func(a, b lms.Enrollment) int { return int(a.ID - b.ID) })
	return result
}

func (f *FakeLMS) listTerms(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"enrollment_terms": f.terms})
}

func (f *FakeLMS) listCourses(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	termID, _ := strconv.ParseInt(r.URL.Query().Get("enrollment_term_id"), 10, 64)
	var result []lms.Course
	for _, c := range f.courses {
		if termID == 0 || c.EnrollmentTermID == termID {
			result = append(result, *c)
		}
	}
	slices.SortFunc(result, func(a, b lms.Course) int { return int(a.ID - b.ID) })
	writePage(f, w, r, result)
}

func (f *FakeLMS) getCourse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.courses[idParam(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (f *FakeLMS) createCourse(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	termID, _ := strconv.ParseInt(r.PostForm.Get("course[term_id]"), 10, 64)
	c := &lms.Course{
		ID:               f.id(),
		Name:             r.PostForm.Get("course[name]"),
		CourseCode:       r.PostForm.Get("course[course_code]"),
		SISCourseID:      r.PostForm.Get("course[sis_course_id]"),
		EnrollmentTermID: termID,
		WorkflowState:    "created",
	}
	f.courses[c.ID] = c
	writeJSON(w, http.StatusOK, c)
}

func (f *FakeLMS) deleteCourse(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := idParam(r, "id")
	if _, ok := f.courses[id]; !ok {
		notFound(w)
		return
	}
	delete(f.courses, id)
	writeJSON(w, http.StatusOK, map[string]bool{"delete": true})
}

func (f *FakeLMS) getUser(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[loginParam(r)]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeLMS) createUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	loginID := r.PostForm.Get("pseudonym[unique_id]")
	if _, exists := f.users[loginID]; exists {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "ID already in use"})
		return
	}
	u := &lms.User{
		ID:           f.id(),
		Name:         r.PostForm.Get("user[name]"),
		ShortName:    r.PostForm.Get("user[short_name]"),
		SortableName: r.PostForm.Get("user[sortable_name]"),
		LoginID:      loginID,
		SISUserID:    r.PostForm.Get("pseudonym[sis_user_id]"),
		PrimaryEmail: r.PostForm.Get("communication_channel[address]"),
	}
	f.users[loginID] = u
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeLMS) updateUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[loginParam(r)]
	if !ok {
		notFound(w)
		return
	}
	u.Name = r.PostForm.Get("user[name]")
	u.ShortName = r.PostForm.Get("user[short_name]")
	u.SortableName = r.PostForm.Get("user[sortable_name]")
	u.PrimaryEmail = r.PostForm.Get("user[email]")
	writeJSON(w, http.StatusOK, u)
}

func (f *FakeLMS) listUserEnrollments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	login := loginParam(r)
	writePage(f, w, r, f.collect(func(e *lms.Enrollment) bool { return e.User.LoginID == login && matches(e, r) }))
}

func (f *FakeLMS) listCourseEnrollments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	courseID := idParam(r, "id")
	writePage(f, w, r, f.collect(func(e *lms.Enrollment) bool {
		return e.CourseID == courseID && matches(e, r)
	}))
}

func (f *FakeLMS) listSectionEnrollments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sectionID := idParam(r, "id")
	if _, ok := f.sections[sectionID]; !ok {
		notFound(w)
		return
	}
	writePage(f, w, r, f.collect(func(e *lms.Enrollment) bool {
		return e.CourseSectionID == sectionID && matches(e, r)
	}))
}

func (f *FakeLMS) getEnrollment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.enrollments[idParam(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (f *FakeLMS) enrollHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sections[idParam(r, "id")]
	if !ok {
		notFound(w)
		return
	}
	userID, _ := strconv.ParseInt(r.PostForm.Get("enrollment[user_id]"), 10, 64)
	for _, u := range f.users {
		if u.ID == userID {
			writeJSON(w, http.StatusOK, f.enroll(s, u))
			return
		}
	}
	notFound(w)
}

func (f *FakeLMS) endEnrollment(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	e, ok := f.enrollments[idParam(r, "id")]
	if !ok || e.CourseID != idParam(r, "course") {
		notFound(w)
		return
	}
	switch r.URL.Query().Get("task") {
	case "inactivate":
		e.EnrollmentState = lms.StateInactive
	case "delete":
		e.EnrollmentState = "deleted"
	default:
		e.EnrollmentState = "completed"
	}
	writeJSON(w, http.StatusOK, e)
}

func (f *FakeLMS) createSectionHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	courseID := idParam(r, "id")
	if _, ok := f.courses[courseID]; !ok {
		notFound(w)
		return
	}
	s := f.createSection(courseID,
		r.PostForm.Get("course_section[name]"),
		r.PostForm.Get("course_section[sis_section_id]"),
		r.PostForm.Get("course_section[integration_id]"),
	)
	writeJSON(w, http.StatusOK, s)
}

func (f *FakeLMS) deleteSection(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := idParam(r, "id")
	s, ok := f.sections[id]
	if !ok {
		notFound(w)
		return
	}
	delete(f.sections, id)
	writeJSON(w, http.StatusOK, s)
}
