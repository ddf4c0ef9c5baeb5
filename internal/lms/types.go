// Package lms is a REST client for the course-management system that receives
// the mirrored rosters.
package lms

import (
	"fmt"
	"strings"
)

// Enrollment types and states used by the sync
const (
	StudentEnrollment = "StudentEnrollment"

	StateActive   = "active"
	StateInactive = "inactive"
)

// User is an LMS user profile
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SortableName string `json:"sortable_name"`
	ShortName    string `json:"short_name"`
	LoginID      string `json:"login_id"`
	SISUserID    string `json:"sis_user_id"`
	PrimaryEmail string `json:"primary_email"`
}

// UserProfile is the identity pushed to the LMS when a user is created or updated
type UserProfile struct {
	LoginID   string
	FirstName string
	LastName  string
	Email     string
}

// Name returns "First Last"
func (p UserProfile) Name() string {
	return p.FirstName + " " + p.LastName
}

// SortableName returns "Last, First"
func (p UserProfile) SortableName() string {
	return p.LastName + ", " + p.FirstName
}

// Drifted reports whether u no longer matches the profile on name or email
func (p UserProfile) Drifted(u *User) bool {
	return u.Name != p.Name() || u.SortableName != p.SortableName() || u.PrimaryEmail != p.Email
}

// Course is an LMS course shell
type Course struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	CourseCode       string `json:"course_code"`
	SISCourseID      string `json:"sis_course_id"`
	EnrollmentTermID int64  `json:"enrollment_term_id"`
	WorkflowState    string `json:"workflow_state"`
}

// CreateCourseRequest holds the fields of a new course
type CreateCourseRequest struct {
	Name             string
	CourseCode       string
	SISCourseID      string
	EnrollmentTermID int64
}

// Section is an LMS course section
type Section struct {
	ID            int64  `json:"id"`
	CourseID      int64  `json:"course_id"`
	Name          string `json:"name"`
	SISSectionID  string `json:"sis_section_id"`
	IntegrationID string `json:"integration_id"`
}

// EnrollmentUser is the user summary embedded in an enrollment
type EnrollmentUser struct {
	ID        int64  `json:"id"`
	LoginID   string `json:"login_id"`
	SISUserID string `json:"sis_user_id"`
}

// Enrollment is a user's membership in a course section
type Enrollment struct {
	ID              int64          `json:"id"`
	CourseID        int64          `json:"course_id"`
	CourseSectionID int64          `json:"course_section_id"`
	UserID          int64          `json:"user_id"`
	Type            string         `json:"type"`
	EnrollmentState string         `json:"enrollment_state"`
	SISSectionID    string         `json:"sis_section_id"`
	HTMLURL         string         `json:"html_url"`
	User            EnrollmentUser `json:"user"`
}

// SectionKey returns the SIS term and CRN encoded in the enrollment's SIS section id
func (e *Enrollment) SectionKey() (term, crn string, ok bool) {
	return ParseSISSectionID(e.SISSectionID)
}

// EnrollmentTerm is an LMS enrollment term
type EnrollmentTerm struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SISTermID string `json:"sis_term_id"`
}

// EnrollmentFilter restricts enrollment listings by type and state.
// Empty fields default to student enrollments in the active state.
type EnrollmentFilter struct {
	Types  []string
	States []string
}

func (f EnrollmentFilter) types() []string {
	if len(f.Types) == 0 {
		return []string{StudentEnrollment}
	}
	return f.Types
}

func (f EnrollmentFilter) states() []string {
	if len(f.States) == 0 {
		return []string{StateActive}
	}
	return f.States
}

// FormatSISSectionID builds the "term:crn:suffix" SIS section id
func FormatSISSectionID(term, crn, suffix string) string {
	return fmt.Sprintf("%s:%s:%s", term, crn, suffix)
}

// IntegrationID builds the "term:crn" integration id
func IntegrationID(term, crn string) string {
	return term + ":" + crn
}

// ParseSISSectionID splits "term:crn[:suffix]"
func ParseSISSectionID(id string) (term, crn string, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
