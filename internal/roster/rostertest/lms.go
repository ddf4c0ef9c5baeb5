package rostertest

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"sort"
	"sync"

	"github.com/stacklok/roster-sync/internal/lms"
)

// Hook is consulted at the start of every LMS call while the fake holds its lock.
// A non-nil error fails the call.
type Hook func(method string, args ...any) error

// LMS is an in-memory lms.Client
type LMS struct {
	mu          sync.Mutex
	users       map[string]lms.User
	courses     map[int64]lms.Course
	sections    map[int64]lms.Section
	enrollments map[int64]lms.Enrollment
	terms       []lms.EnrollmentTerm
	calls       map[string]int
	nextID      int64
	hook        Hook
}

var _ lms.Client = (*LMS)(nil)

// NewLMS creates an empty LMS
func NewLMS() *LMS {
	return &LMS{
		users:       make(map[string]lms.User),
		courses:     make(map[int64]lms.Course),
		sections:    make(map[int64]lms.Section),
		enrollments: make(map[int64]lms.Enrollment),
		calls:       make(map[string]int),
		nextID:      1000,
	}
}

// SetHook installs a failure-injection hook
func (l *LMS) SetHook(h Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hook = h
}

// AddTerm registers an enrollment term
func (l *LMS) AddTerm(t lms.EnrollmentTerm) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.terms = append(l.terms, t)
}

// AddCourse registers a course and returns it with its id assigned
func (l *LMS) AddCourse(c lms.Course) lms.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c.ID == 0 {
		c.ID = l.id()
	}
	if c.WorkflowState == "" {
		c.WorkflowState = "available"
	}
	l.courses[c.ID] = c
	return c
}

// AddSection registers a section linked to (term, crn) and returns it
func (l *LMS) AddSection(courseID int64, term, crn string) lms.Section {
	l.mu.Lock()
	defer l.mu.Unlock()
	s := lms.Section{
		ID:            l.id(),
		CourseID:      courseID,
		Name:          term + ":" + crn,
		SISSectionID:  lms.FormatSISSectionID(term, crn, "0000"),
		IntegrationID: lms.IntegrationID(term, crn),
	}
	l.sections[s.ID] = s
	return s
}

// AddEnrollment enrolls loginID into a section directly, bypassing hooks
func (l *LMS) AddEnrollment(sectionID int64, loginID string) lms.Enrollment {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[loginID]
	if !ok {
		u = lms.User{ID: l.id(), LoginID: loginID, SISUserID: loginID}
		l.users[loginID] = u
	}
	return l.enroll(l.sections[sectionID], u)
}

// Calls returns how often method was invoked
func (l *LMS) Calls(method string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[method]
}

// TotalCalls returns the number of calls to any method
func (l *LMS) TotalCalls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	var n int
	for _, c := range l.calls {
		n += c
	}
	return n
}

// ActiveEnrollments returns active enrollments in a section, ordered by id
func (l *LMS) ActiveEnrollments(sectionID int64) []lms.Enrollment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter(func(e lms.Enrollment) bool {
		return e.CourseSectionID == sectionID && e.EnrollmentState == lms.StateActive
	})
}

// User returns the user with loginID
func (l *LMS) User(loginID string) (lms.User, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	u, ok := l.users[loginID]
	return u, ok
}

// SectionExists reports whether a section is present
func (l *LMS) SectionExists(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sections[id]
	return ok
}

func (l *LMS) id() int64 {
	l.nextID++
	return l.nextID
}

func (l *LMS) enter(method string, args ...any) error {
	l.calls[method]++
	if l.hook != nil {
		return l.hook(method, args...)
	}
	return nil
}

func notFound(what string, id any) error {
	return &lms.HTTPError{StatusCode: http.StatusNotFound, Method: http.MethodGet, URL: fmt.Sprintf("/%s/%v", what, id)}
}

func (l *LMS) filter(keep func(lms.Enrollment) bool) []lms.Enrollment {
	var out []lms.Enrollment
	for _, e := range l.enrollments {
		if keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (l *LMS) enroll(s lms.Section, u lms.User) lms.Enrollment {
	for _, e := range l.enrollments {
		if e.CourseSectionID == s.ID && e.UserID == u.ID && e.EnrollmentState == lms.StateActive {
			return e
		}
	}
	e := lms.Enrollment{
		ID:              l.id(),
		CourseID:        s.CourseID,
		CourseSectionID: s.ID,
		UserID:          u.ID,
		Type:            lms.StudentEnrollment,
		EnrollmentState: lms.StateActive,
		SISSectionID:    s.SISSectionID,
		User:            lms.EnrollmentUser{ID: u.ID, LoginID: u.LoginID, SISUserID: u.SISUserID},
	}
	e.HTMLURL = fmt.Sprintf("https://lms.test/courses/%d/users/%d", e.CourseID, e.UserID)
	l.enrollments[e.ID] = e
	return e
}

func (l *LMS) GetUser(_ context.Context, sisLoginID string) (*lms.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("GetUser", sisLoginID); err != nil {
		return nil, err
	}
	u, ok := l.users[sisLoginID]
	if !ok {
		return nil, notFound("users", sisLoginID)
	}
	return &u, nil
}

func (l *LMS) CreateUser(_ context.Context, p lms.UserProfile) (*lms.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("CreateUser", p); err != nil {
		return nil, err
	}
	u := lms.User{
		ID: l.id(), Name: p.Name(), SortableName: p.SortableName(), ShortName: p.Name(),
		LoginID: p.LoginID, SISUserID: p.LoginID, PrimaryEmail: p.Email,
	}
	l.users[p.LoginID] = u
	return &u, nil
}

func (l *LMS) UpdateUser(_ context.Context, p lms.UserProfile) (*lms.User, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("UpdateUser", p); err != nil {
		return nil, err
	}
	u, ok := l.users[p.LoginID]
	if !ok {
		return nil, notFound("users", p.LoginID)
	}
	u.Name, u.SortableName, u.ShortName, u.PrimaryEmail = p.Name(), p.SortableName(), p.Name(), p.Email
	l.users[p.LoginID] = u
	return &u, nil
}

func (l *LMS) SyncUser(ctx context.Context, p lms.UserProfile) (*lms.User, error) {
	if err := lms.ValidateEmail(p.Email); err != nil {
		return nil, err
	}
	u, err := l.GetUser(ctx, p.LoginID)
	switch {
	case lms.IsNotFound(err):
		return l.CreateUser(ctx, p)
	case err != nil:
		return nil, err
	case p.Drifted(u):
		return l.UpdateUser(ctx, p)
	default:
		return u, nil
	}
}

func (l *LMS) GetCourse(_ context.Context, id int64) (*lms.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("GetCourse", id); err != nil {
		return nil, err
	}
	c, ok := l.courses[id]
	if !ok {
		return nil, notFound("courses", id)
	}
	return &c, nil
}

func (l *LMS) CreateCourse(_ context.Context, req lms.CreateCourseRequest) (*lms.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("CreateCourse", req); err != nil {
		return nil, err
	}
	c := lms.Course{
		ID: l.id(), Name: req.Name, CourseCode: req.CourseCode, SISCourseID: req.SISCourseID,
		EnrollmentTermID: req.EnrollmentTermID, WorkflowState: "created",
	}
	l.courses[c.ID] = c
	return &c, nil
}

func (l *LMS) DeleteCourse(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("DeleteCourse", id); err != nil {
		return err
	}
	if _, ok := l.courses[id]; !ok {
		return notFound("courses", id)
	}
	delete(l.courses, id)
	return nil
}

func (l *LMS) CreateSection(_ context.Context, courseID int64, name, term, crn string) (*lms.Section, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("CreateSection", courseID, name, term, crn); err != nil {
		return nil, err
	}
	if _, ok := l.courses[courseID]; !ok {
		return nil, notFound("courses", courseID)
	}
	s := lms.Section{
		ID: l.id(), CourseID: courseID, Name: name,
		SISSectionID:  lms.FormatSISSectionID(term, crn, "0000"),
		IntegrationID: lms.IntegrationID(term, crn),
	}
	l.sections[s.ID] = s
	return &s, nil
}

func (l *LMS) DeleteSection(_ context.Context, id int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("DeleteSection", id); err != nil {
		return err
	}
	if _, ok := l.sections[id]; !ok {
		return notFound("sections", id)
	}
	delete(l.sections, id)
	return nil
}

func matches(e lms.Enrollment, filter lms.EnrollmentFilter) bool {
	types, states := filter.Types, filter.States
	if len(types) == 0 {
		types = []string{lms.StudentEnrollment}
	}
	if len(states) == 0 {
		states = []string{lms.StateActive}
	}
	return slices.Contains(types, e.Type) && slices.Contains(states, e.EnrollmentState)
}

func (l *LMS) ListCourseEnrollments(_ context.Context, courseID int64, filter lms.EnrollmentFilter) ([]lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("ListCourseEnrollments", courseID); err != nil {
		return nil, err
	}
	return l.filter(func(e lms.Enrollment) bool { return e.CourseID == courseID && matches(e, filter) }), nil
}

func (l *LMS) ListSectionEnrollments(_ context.Context, sectionID int64, filter lms.EnrollmentFilter) ([]lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("ListSectionEnrollments", sectionID); err != nil {
		return nil, err
	}
	if _, ok := l.sections[sectionID]; !ok {
		return nil, notFound("sections", sectionID)
	}
	return l.filter(func(e lms.Enrollment) bool { return e.CourseSectionID == sectionID && matches(e, filter) }), nil
}

func (l *LMS) ListUserEnrollments(_ context.Context, sisLoginID, term string) ([]lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("ListUserEnrollments", sisLoginID, term); err != nil {
		return nil, err
	}
	return l.filter(func(e lms.Enrollment) bool {
		t, _, ok := e.SectionKey()
		return ok && t == term && e.User.LoginID == sisLoginID && e.EnrollmentState == lms.StateActive &&
			e.Type == lms.StudentEnrollment
	}), nil
}

func (l *LMS) GetEnrollment(_ context.Context, id int64) (*lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("GetEnrollment", id); err != nil {
		return nil, err
	}
	e, ok := l.enrollments[id]
	if !ok {
		return nil, notFound("enrollments", id)
	}
	return &e, nil
}

func (l *LMS) EnrollStudent(_ context.Context, sectionID, userID int64) (*lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("EnrollStudent", sectionID, userID); err != nil {
		return nil, err
	}
	s, ok := l.sections[sectionID]
	if !ok {
		return nil, notFound("sections", sectionID)
	}
	for _, u := range l.users {
		if u.ID == userID {
			e := l.enroll(s, u)
			return &e, nil
		}
	}
	return nil, notFound("users", userID)
}

func (l *LMS) DropStudent(_ context.Context, enrollment lms.Enrollment) (*lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("DropStudent", enrollment.ID); err != nil {
		return nil, err
	}
	e, ok := l.enrollments[enrollment.ID]
	if !ok {
		return nil, notFound("enrollments", enrollment.ID)
	}
	e.EnrollmentState = lms.StateInactive
	l.enrollments[e.ID] = e
	return &e, nil
}

func (l *LMS) DeleteStudent(_ context.Context, enrollment lms.Enrollment) (*lms.Enrollment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("DeleteStudent", enrollment.ID); err != nil {
		return nil, err
	}
	e, ok := l.enrollments[enrollment.ID]
	if !ok {
		return nil, notFound("enrollments", enrollment.ID)
	}
	delete(l.enrollments, e.ID)
	e.EnrollmentState = "deleted"
	return &e, nil
}

func (l *LMS) GetEnrollmentTerms(context.Context) ([]lms.EnrollmentTerm, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("GetEnrollmentTerms"); err != nil {
		return nil, err
	}
	return slices.Clone(l.terms), nil
}

func (l *LMS) GetEnrollmentTermBySISID(ctx context.Context, sisTermID string) (*lms.EnrollmentTerm, error) {
	terms, err := l.GetEnrollmentTerms(ctx)
	if err != nil {
		return nil, err
	}
	for i := range terms {
		if terms[i].SISTermID == sisTermID {
			return &terms[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", lms.ErrEnrollmentTermNotFound, sisTermID)
}

func (l *LMS) ListCoursesByEnrollmentTerm(_ context.Context, termID int64) ([]lms.Course, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enter("ListCoursesByEnrollmentTerm", termID); err != nil {
		return nil, err
	}
	var out []lms.Course
	for _, c := range l.courses {
		if c.EnrollmentTermID == termID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
