// Package rostertest provides in-memory SIS and LMS fakes for exercising roster
// operations end to end without a database or an LMS.
package rostertest

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/stacklok/roster-sync/internal/sis"
)

type sectionKey struct{ term, crn string }

// Store is an in-memory sis.Store. The zero value is not usable; call NewStore.
type Store struct {
	mu            sync.Mutex
	people        map[int64]sis.Person
	sections      map[sectionKey]sis.Section
	registrations []sis.Enrollment
	events        []sis.Event
	terms         map[string][]string
	tracked       []sis.TrackedSection
	enrollments   []sis.TrackedEnrollment
	nextID        int64
	pingErr       error
}

var _ sis.Store = (*Store)(nil)

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		people:   make(map[int64]sis.Person),
		sections: make(map[sectionKey]sis.Section),
		terms:    make(map[string][]string),
	}
}

// AddPerson registers a person
func (s *Store) AddPerson(p sis.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.people[p.ID] = p
}

// AddSection registers a section
func (s *Store) AddSection(sec sis.Section) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sections[sectionKey{sec.Term, sec.CRN}] = sec
}

// Register records a registration, replacing any earlier status for the same key
func (s *Store) Register(term, crn string, personID int64, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	externalID := s.people[personID].ExternalID
	for i, r := range s.registrations {
		if r.Term == term && r.CRN == crn && r.PersonID == personID {
			s.registrations[i].RegistrationStatus = status
			return
		}
	}
	s.registrations = append(s.registrations, sis.Enrollment{
		Term: term, CRN: crn, PersonID: personID, ExternalID: externalID, RegistrationStatus: status,
	})
}

// AddEvent queues an event and returns its id
func (s *Store) AddEvent(e sis.Event) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = s.nextID
	s.events = append(s.events, e)
	return e.ID
}

// SetCurrentTerms sets the terms returned for an institution
func (s *Store) SetCurrentTerms(institution string, terms ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.terms[institution] = terms
}

// SetPingError makes Ping fail with err
func (s *Store) SetPingError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pingErr = err
}

// Events returns the queued events
func (s *Store) Events() []sis.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// TrackedSections returns the section rows for (term, crn)
func (s *Store) TrackedSections(term, crn string) []sis.TrackedSection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sectionRows(term, crn)
}

// TrackedEnrollments returns the enrollment rows for (term, crn)
func (s *Store) TrackedEnrollments(term, crn string) []sis.TrackedEnrollment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sis.TrackedEnrollment
	for _, e := range s.enrollments {
		if e.Term == term && e.CRN == crn {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) sectionRows(term, crn string) []sis.TrackedSection {
	var out []sis.TrackedSection
	for _, t := range s.tracked {
		if t.Term == term && t.CRN == crn {
			out = append(out, t)
		}
	}
	return out
}

func (s *Store) Ping(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pingErr
}

func (s *Store) GetPendingEvents(_ context.Context, limit int) ([]sis.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit < len(s.events) {
		return slices.Clone(s.events[:limit]), nil
	}
	return slices.Clone(s.events), nil
}

func (s *Store) DeleteEvent(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = slices.DeleteFunc(s.events, func(e sis.Event) bool { return e.ID == id })
	return nil
}

func (s *Store) GetPerson(_ context.Context, ref sis.PersonRef) (*sis.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := ref.ID(); ok {
		if p, found := s.people[id]; found {
			return &p, nil
		}
		return nil, fmt.Errorf("%w: %s", sis.ErrPersonNotFound, ref)
	}
	externalID, _ := ref.ExternalID()
	for _, p := range s.people {
		if p.ExternalID == externalID {
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", sis.ErrPersonNotFound, ref)
}

func (s *Store) GetSection(_ context.Context, term, crn string) (*sis.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sections[sectionKey{term, crn}]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", sis.ErrSectionNotFound, term, crn)
	}
	return &sec, nil
}

func (s *Store) GetCourse(ctx context.Context, term, crn string) (*sis.Section, error) {
	sec, err := s.GetSection(ctx, term, crn)
	if err != nil || sec.ParentCRN == "" {
		return sec, err
	}
	return s.GetSection(ctx, term, sec.ParentCRN)
}

func (s *Store) GetSectionRoster(_ context.Context, term, crn string) ([]sis.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sis.Enrollment
	for _, r := range s.registrations {
		if r.Term == term && r.CRN == crn && r.IsRegistered() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetAllEnrollmentsByTerm(_ context.Context, term string) ([]sis.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sis.Enrollment
	for _, r := range s.registrations {
		if r.Term == term && r.IsRegistered() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetEnrollmentHistory(_ context.Context, term string, personID int64) ([]sis.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sis.Enrollment
	for _, r := range s.registrations {
		if r.Term == term && r.PersonID == personID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *Store) GetCurrentTerms(_ context.Context, institution string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.terms[institution]), nil
}

func (s *Store) IsSectionTracked(_ context.Context, term, crn string, policy sis.LookupPolicy) (*sis.TrackedSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sis.ResolveTrackedSection(s.sectionRows(term, crn), policy)
}

func (s *Store) IsEnrollmentTracked(_ context.Context, term, crn string, personID int64) (*sis.TrackedEnrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found []sis.TrackedEnrollment
	for _, e := range s.enrollments {
		if e.Term == term && e.CRN == crn && e.PersonID == personID {
			found = append(found, e)
		}
	}
	if len(found) != 1 {
		return nil, fmt.Errorf("%w: %s/%s person %d", sis.ErrEnrollmentNotTracked, term, crn, personID)
	}
	return &found[0], nil
}

func (s *Store) GetTrackedSectionsByCourse(_ context.Context, courseID int64) ([]sis.TrackedSection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []sis.TrackedSection
	for _, t := range s.tracked {
		if t.CourseID == courseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) TrackSection(_ context.Context, section sis.TrackedSection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	section.ID = s.nextID
	s.tracked = append(s.tracked, section)
	return nil
}

func (s *Store) UntrackSection(_ context.Context, sectionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracked = slices.DeleteFunc(s.tracked, func(t sis.TrackedSection) bool { return t.SectionID == sectionID })
	return nil
}

func (s *Store) TrackEnrollment(_ context.Context, e sis.TrackedEnrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.enrollments {
		if existing.Term == e.Term && existing.CRN == e.CRN && existing.PersonID == e.PersonID && existing.Type == e.Type {
			return fmt.Errorf("%w: enrollment %s/%s person %d", sis.ErrAlreadyTracked, e.Term, e.CRN, e.PersonID)
		}
	}
	s.nextID++
	e.ID = s.nextID
	s.enrollments = append(s.enrollments, e)
	return nil
}

func (s *Store) UntrackEnrollment(_ context.Context, enrollmentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = slices.DeleteFunc(s.enrollments, func(e sis.TrackedEnrollment) bool {
		return e.EnrollmentID == enrollmentID
	})
	return nil
}

func (s *Store) UntrackSectionEnrollments(_ context.Context, term, crn string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = slices.DeleteFunc(s.enrollments, func(e sis.TrackedEnrollment) bool {
		return e.Term == term && e.CRN == crn
	})
	return nil
}
