// Package sis provides access to the student information system: person,
// section and registration lookups, the pending change-event queue, and the
// tracking ledger recording which sections and enrollments are mirrored into
// the LMS.
package sis

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Person is a resolved SIS identity. It is a snapshot and is never cached.
type Person struct {
	ID         int64  `db:"pidm" json:"id"`
	ExternalID string `db:"campus_id" json:"externalId"`
	FirstName  string `db:"first_name" json:"firstName"`
	LastName   string `db:"last_name" json:"lastName"`
	Email      string `db:"email" json:"email"`
}

// FullName returns "First Last"
func (p *Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// PersonRef identifies a person either by internal id or by external (campus) id
type PersonRef struct {
	id         int64
	externalID string
	byExternal bool
}

// ByID references a person by internal numeric id
func ByID(id int64) PersonRef {
	return PersonRef{id: id}
}

// ByExternalID references a person by campus login id
func ByExternalID(externalID string) PersonRef {
	return PersonRef{externalID: externalID, byExternal: true}
}

// ID returns the internal id and whether the reference is by id
func (r PersonRef) ID() (int64, bool) {
	return r.id, !r.byExternal
}

// ExternalID returns the external id and whether the reference is by external id
func (r PersonRef) ExternalID() (string, bool) {
	return r.externalID, r.byExternal
}

func (r PersonRef) String() string {
	if r.byExternal {
		return "external:" + r.externalID
	}
	return "id:" + strconv.FormatInt(r.id, 10)
}

// Section is a course offering keyed by (term, CRN)
type Section struct {
	Term          string `db:"term" json:"term"`
	CRN           string `db:"crn" json:"crn"`
	SubjectCode   string `db:"subject_code" json:"subjectCode"`
	CourseNumber  string `db:"course_number" json:"courseNumber"`
	SectionNumber string `db:"section_number" json:"sectionNumber"`
	Title         string `db:"title" json:"title"`
	ParentCRN     string `db:"parent_crn" json:"parentCrn,omitempty"`
}

// Enrollment is one SIS registration row
type Enrollment struct {
	Term               string    `db:"term" json:"term"`
	CRN                string    `db:"crn" json:"crn"`
	PersonID           int64     `db:"pidm" json:"personId"`
	ExternalID         string    `db:"campus_id" json:"externalId"`
	RegistrationStatus string    `db:"registration_status" json:"registrationStatus"`
	StatusDate         time.Time `db:"status_date" json:"statusDate"`
}

// IsRegistered reports whether the registration status is an active registration
func (e *Enrollment) IsRegistered() bool {
	return IsRegisteredStatus(e.RegistrationStatus)
}

// IsDropped reports whether the registration status is a drop condition
func (e *Enrollment) IsDropped() bool {
	return IsDropStatus(e.RegistrationStatus)
}

// IsRegisteredStatus reports whether status starts with 'R'
func IsRegisteredStatus(status string) bool {
	return strings.HasPrefix(status, "R")
}

// IsDropStatus reports whether status is dropped (D), withdrawn (W), inactive (I) or pending (P)
func IsDropStatus(status string) bool {
	if status == "" {
		return false
	}
	switch status[0] {
	case 'D', 'W', 'I', 'P':
		return true
	default:
		return false
	}
}

// EventType classifies a change event
type EventType int16

// Event types as written by the SIS triggers
const (
	EventPersonSync    EventType = 0
	EventStudentEnroll EventType = 1
	EventStudentDrop   EventType = 2
	EventSectionCancel EventType = 3
)

func (t EventType) String() string {
	switch t {
	case EventPersonSync:
		return "person-sync"
	case EventStudentEnroll:
		return "student-enroll"
	case EventStudentDrop:
		return "student-drop"
	case EventSectionCancel:
		return "section-cancel"
	default:
		return fmt.Sprintf("unknown(%d)", int16(t))
	}
}

// Event is a queued SIS change notification
type Event struct {
	ID       int64     `db:"id" json:"id"`
	Type     EventType `db:"event_type" json:"type"`
	Term     string    `db:"term" json:"term"`
	CRN      string    `db:"crn" json:"crn"`
	PersonID int64     `db:"pidm" json:"personId"`
}

// TrackedSection is a ledger row mirroring a SIS section into an LMS section
type TrackedSection struct {
	ID        int64  `db:"id" json:"id"`
	Term      string `db:"term" json:"term"`
	CRN       string `db:"crn" json:"crn"`
	CourseID  int64  `db:"course_id" json:"courseId"`
	SectionID int64  `db:"section_id" json:"sectionId"`
}

// NoSectionID is stored when an enrollment has no LMS section
const NoSectionID int64 = -1

// TrackedEnrollment is a ledger row mirroring a SIS registration into an LMS enrollment
type TrackedEnrollment struct {
	ID           int64  `db:"id" json:"id"`
	Term         string `db:"term" json:"term"`
	CRN          string `db:"crn" json:"crn"`
	PersonID     int64  `db:"pidm" json:"personId"`
	UserID       int64  `db:"user_id" json:"userId"`
	Type         string `db:"enrollment_type" json:"type"`
	EnrollmentID int64  `db:"enrollment_id" json:"enrollmentId"`
	CourseID     int64  `db:"course_id" json:"courseId"`
	SectionID    int64  `db:"section_id" json:"sectionId"`
	URL          string `db:"url" json:"url"`
}
