package sis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveTrackedSection(t *testing.T) {
	t.Parallel()

	first := TrackedSection{ID: 1, Term: "201812", CRN: "12345", CourseID: 10, SectionID: 100}
	second := TrackedSection{ID: 2, Term: "201812", CRN: "12345", CourseID: 10, SectionID: 101}

	tests := []struct {
		name    string
		rows    []TrackedSection
		policy  LookupPolicy
		want    *TrackedSection
		wantErr error
	}{
		{name: "single row strict", rows: []TrackedSection{first}, policy: PolicyStrict, want: &first},
		{name: "single row tolerate untracked", rows: []TrackedSection{first}, policy: PolicyTolerateUntracked, want: &first},
		{name: "no rows strict", policy: PolicyStrict, wantErr: ErrSectionNotTracked},
		{name: "no rows tolerate duplicates", policy: PolicyTolerateDuplicates, wantErr: ErrSectionNotTracked},
		{name: "no rows tolerate untracked", policy: PolicyTolerateUntracked},
		{name: "duplicates strict", rows: []TrackedSection{first, second}, policy: PolicyStrict, wantErr: ErrDuplicateSections},
		{name: "duplicates tolerate untracked", rows: []TrackedSection{first, second}, policy: PolicyTolerateUntracked, wantErr: ErrDuplicateSections},
		{name: "duplicates tolerated takes first", rows: []TrackedSection{first, second}, policy: PolicyTolerateDuplicates, want: &first},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ResolveTrackedSection(tt.rows, tt.policy)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookupPolicyString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "strict", PolicyStrict.String())
	assert.Equal(t, "tolerate-duplicates", PolicyTolerateDuplicates.String())
	assert.Equal(t, "tolerate-untracked", PolicyTolerateUntracked.String())
	assert.Equal(t, "policy(9)", LookupPolicy(9).String())
}
