package sis

import "context"

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go Store

// EventQueue is the queue of pending SIS change events
type EventQueue interface {
	// GetPendingEvents returns up to limit events, oldest first
	GetPendingEvents(ctx context.Context, limit int) ([]Event, error)

	// DeleteEvent removes an applied or rejected event
	DeleteEvent(ctx context.Context, id int64) error
}

// Directory provides read access to SIS people, sections, registrations and terms
type Directory interface {
	// GetPerson resolves a person. Returns ErrPersonNotFound or ErrAmbiguousPerson.
	GetPerson(ctx context.Context, ref PersonRef) (*Person, error)

	// GetSection returns a section. Returns ErrSectionNotFound.
	GetSection(ctx context.Context, term, crn string) (*Section, error)

	// GetCourse returns the parent section of a cross-listed section, or the section itself
	GetCourse(ctx context.Context, term, crn string) (*Section, error)

	// GetSectionRoster returns the registered students of a section
	GetSectionRoster(ctx context.Context, term, crn string) ([]Enrollment, error)

	// GetAllEnrollmentsByTerm returns every registered enrollment of the term, mirrored or not
	GetAllEnrollmentsByTerm(ctx context.Context, term string) ([]Enrollment, error)

	// GetEnrollmentHistory returns all registration rows of a person for a term, any status
	GetEnrollmentHistory(ctx context.Context, term string, personID int64) ([]Enrollment, error)

	// GetCurrentTerms returns the institution's current term followed by the next one
	GetCurrentTerms(ctx context.Context, institution string) ([]string, error)
}

// Ledger records which sections and enrollments are mirrored into the LMS
type Ledger interface {
	// IsSectionTracked looks up the section row under the given policy
	IsSectionTracked(ctx context.Context, term, crn string, policy LookupPolicy) (*TrackedSection, error)

	// IsEnrollmentTracked returns the single enrollment row, or ErrEnrollmentNotTracked
	IsEnrollmentTracked(ctx context.Context, term, crn string, personID int64) (*TrackedEnrollment, error)

	// GetTrackedSectionsByCourse returns every section row mirrored into an LMS course
	GetTrackedSectionsByCourse(ctx context.Context, courseID int64) ([]TrackedSection, error)

	TrackSection(ctx context.Context, section TrackedSection) error
	UntrackSection(ctx context.Context, sectionID int64) error

	// TrackEnrollment inserts a row. Returns ErrAlreadyTracked on a uniqueness violation.
	TrackEnrollment(ctx context.Context, enrollment TrackedEnrollment) error
	UntrackEnrollment(ctx context.Context, enrollmentID int64) error

	// UntrackSectionEnrollments removes every enrollment row of a section
	UntrackSectionEnrollments(ctx context.Context, term, crn string) error
}

// Store is the complete SIS access surface
type Store interface {
	EventQueue
	Directory
	Ledger

	// Ping verifies the database is reachable
	Ping(ctx context.Context) error
}
