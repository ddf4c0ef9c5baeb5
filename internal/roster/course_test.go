package roster_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/progress"
	"github.com/stacklok/roster-sync/internal/roster"
	"github.com/stacklok/roster-sync/internal/sis"
)

const crossListedCRN = "12347"

// withCrossListing adds a section whose parent is crn, with person 4 registered in it
func (f *fixture) withCrossListing() {
	f.lms.AddTerm(lms.EnrollmentTerm{ID: 7, Name: "Winter 2018", SISTermID: term})
	f.store.AddSection(sis.Section{
		Term: term, CRN: crossListedCRN, SubjectCode: "MATH", CourseNumber: "F001A.", SectionNumber: "03", ParentCRN: crn,
	})
	f.store.AddPerson(person(4))
	f.store.Register(term, crossListedCRN, 4, "RE")
}

func TestCreateCourse_MirrorsEverySection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withCrossListing()
	p := progress.New(nil)

	course, err := f.ops.CreateCourse(context.Background(), term, []string{crossListedCRN, crn, crossListedCRN}, p)
	require.NoError(t, err)

	assert.Equal(t, "MATH 001A", course.Name)
	assert.Equal(t, "MATH 001A", course.CourseCode)
	assert.Equal(t, "201812:12345", course.SISCourseID, "named after the parent section")
	assert.Equal(t, int64(7), course.EnrollmentTermID)
	assert.Equal(t, 2, f.lms.Calls("CreateSection"))

	for c, students := range map[string]int{crn: 3, crossListedCRN: 1} {
		rows := f.store.TrackedSections(term, c)
		require.Len(t, rows, 1, c)
		assert.Equal(t, course.ID, rows[0].CourseID)
		assert.Len(t, f.lms.ActiveEnrollments(rows[0].SectionID), students, c)
	}
	assert.Equal(t, 100, p.Percent())
}

func TestCreateCourse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(f *fixture)
		crns    []string
		wantErr error
	}{
		{name: "no crns", crns: []string{""}, wantErr: roster.ErrNoSections},
		{name: "unknown section", setup: (*fixture).withCrossListing, crns: []string{"99999"}, wantErr: sis.ErrSectionNotFound},
		{name: "no enrollment term", crns: []string{crn}, wantErr: lms.ErrEnrollmentTermNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			course, err := f.ops.CreateCourse(context.Background(), term, tt.crns, nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, course)
			assert.Zero(t, f.lms.Calls("CreateCourse"))
		})
	}
}

func TestCreateCourse_SectionFailureKeepsCourse(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.withCrossListing()
	require.NoError(t, f.ops.CreateSection(context.Background(), term, crn, f.course.ID, nil))

	course, err := f.ops.CreateCourse(context.Background(), term, []string{crn, crossListedCRN}, nil)
	require.ErrorIs(t, err, roster.ErrSectionAlreadyTracked)
	require.NotNil(t, course)

	rows := f.store.TrackedSections(term, crossListedCRN)
	require.Len(t, rows, 1)
	assert.Equal(t, course.ID, rows[0].CourseID)
	assert.Equal(t, f.course.ID, f.store.TrackedSections(term, crn)[0].CourseID)
}

func TestDeleteCourse(t *testing.T) {
	t.Parallel()

	t.Run("tears down sections then the course", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.withCrossListing()
		course, err := f.ops.CreateCourse(context.Background(), term, []string{crn, crossListedCRN}, nil)
		require.NoError(t, err)
		sectionID := f.sectionID(t, crn)

		p := progress.New(nil)
		require.NoError(t, f.ops.DeleteCourse(context.Background(), course.ID, p))

		for _, c := range []string{crn, crossListedCRN} {
			assert.Empty(t, f.store.TrackedSections(term, c))
			assert.Empty(t, f.store.TrackedEnrollments(term, c))
		}
		assert.False(t, f.lms.SectionExists(sectionID))
		_, err = f.lms.GetCourse(context.Background(), course.ID)
		assert.True(t, lms.IsNotFound(err))
		assert.Equal(t, 100, p.Percent())
	})

	t.Run("course already gone still clears the ledger", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.store.TrackSection(context.Background(), sis.TrackedSection{
			Term: term, CRN: crn, CourseID: 999, SectionID: 555,
		}))

		require.NoError(t, f.ops.DeleteCourse(context.Background(), 999, nil))
		assert.Empty(t, f.store.TrackedSections(term, crn))
		assert.Zero(t, f.lms.Calls("DeleteCourse"))
	})

	t.Run("untouched courses keep their sections", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.ops.CreateSection(context.Background(), term, crn, f.course.ID, nil))
		other := f.lms.AddCourse(lms.Course{Name: "MATH 1B", EnrollmentTermID: 7})

		require.NoError(t, f.ops.DeleteCourse(context.Background(), other.ID, nil))
		assert.Len(t, f.store.TrackedSections(term, crn), 1)
		assert.Equal(t, 1, f.lms.Calls("DeleteCourse"))
	})
}
