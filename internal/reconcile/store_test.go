package reconcile

import (
	"fmt"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/roster-sync/internal/sis"
)

func TestReportFileName(t *testing.T) {
	t.Parallel()

	at := time.Date(2018, 9, 3, 14, 5, 6, 42_000_000, time.FixedZone("PDT", -7*3600))
	assert.Equal(t, "foothill-201811-20180903T210506.042Z.json", ReportFileName("foothill", "201811", at))
	assert.NotEqual(t, ReportFileName("foothill", "201811", at), ReportFileName("foothill", "201811", at.Add(time.Millisecond)))
}

func TestParseReportFileName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		institution string
		file        string
		wantTerm    string
		wantOK      bool
	}{
		{name: "valid", institution: "foothill", file: "foothill-201811-20180903T210506.000Z.json", wantTerm: "201811", wantOK: true},
		{name: "underscored institution", institution: "de_anza", file: "de_anza-201812-20180903T210506.000Z.json", wantTerm: "201812", wantOK: true},
		{name: "longer institution sharing a prefix", institution: "de", file: "de-anza-201812-20180903T210506.000Z.json"},
		{name: "second precision", institution: "foothill", file: "foothill-201811-20180903T210506Z.json", wantTerm: "201811", wantOK: true},
		{name: "other institution", institution: "deanza", file: "foothill-201811-20180903T210506.000Z.json"},
		{name: "bad timestamp", institution: "foothill", file: "foothill-201811-yesterday.json"},
		{name: "not json", institution: "foothill", file: "foothill-201811-20180903T210506.000Z.txt"},
		{name: "no term", institution: "foothill", file: "foothill-20180903T210506.000Z.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			term, ok := parseReportFileName(tt.institution, tt.file)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTerm, term)
		})
	}
}

func snapshotAt(term string, finished time.Time) *Snapshot {
	return &Snapshot{
		Report: &Report{
			Institution: "foothill",
			Term:        term,
			StartedAt:   finished.Add(-time.Minute),
			FinishedAt:  finished,
		},
		SourceEnrollments: []sis.Enrollment{{Term: term, CRN: "1", ExternalID: "20000001", RegistrationStatus: "RE"}},
	}
}

func countReports(t *testing.T, fs afero.Fs, term string) int {
	t.Helper()
	matches, err := afero.Glob(fs, fmt.Sprintf("/reports/foothill-%s-*.json", term))
	require.NoError(t, err)
	return len(matches)
}

func TestFileReportStore_Retention(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewReportStore(fs, "/reports", 6)
	base := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

	for i := range 8 {
		path, err := store.Save(snapshotAt("201811", base.Add(time.Duration(i)*time.Hour)))
		require.NoError(t, err)
		require.NoError(t, fs.Chtimes(path, base, base.Add(time.Duration(i)*time.Hour)))
	}
	assert.Equal(t, 6, countReports(t, fs, "201811"))

	exists, err := afero.Exists(fs, "/reports/"+ReportFileName("foothill", "201811", base))
	require.NoError(t, err)
	assert.False(t, exists, "oldest report pruned")

	// Other suffixes are counted separately
	_, err = store.Save(snapshotAt("201812", base))
	require.NoError(t, err)
	assert.Equal(t, 1, countReports(t, fs, "201812"))
	assert.Equal(t, 6, countReports(t, fs, "201811"))

	// Same suffix, different year shares the budget
	path, err := store.Save(snapshotAt("201711", base.Add(24*time.Hour)))
	require.NoError(t, err)
	require.NoError(t, fs.Chtimes(path, base, base.Add(24*time.Hour)))
	assert.Equal(t, 1, countReports(t, fs, "201711"))
	assert.Equal(t, 5, countReports(t, fs, "201811"))
}

func TestFileReportStore_Latest(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewReportStore(fs, "/reports", 0)
	base := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

	_, err := store.Latest("foothill", "201811")
	require.ErrorIs(t, err, ErrNoReport)

	for i := range 3 {
		s := snapshotAt("201811", base.Add(time.Duration(i)*time.Hour))
		s.Report.RunID = fmt.Sprintf("run-%d", i)
		path, err := store.Save(s)
		require.NoError(t, err)
		require.NoError(t, fs.Chtimes(path, base, base.Add(time.Duration(i)*time.Hour)))
	}

	latest, err := store.Latest("foothill", "201811")
	require.NoError(t, err)
	assert.Equal(t, "run-2", latest.Report.RunID)
	require.Len(t, latest.SourceEnrollments, 1)
	assert.Equal(t, "20000001", latest.SourceEnrollments[0].ExternalID)

	_, err = store.Latest("foothill", "201812")
	assert.ErrorIs(t, err, ErrNoReport)
}

func TestFileReportStore_PrefixedInstitutions(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewReportStore(fs, "/reports", 1)
	base := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

	save := func(institution, runID string, at time.Time) {
		t.Helper()
		s := snapshotAt("201812", at)
		s.Report.Institution = institution
		s.Report.RunID = runID
		path, err := store.Save(s)
		require.NoError(t, err)
		require.NoError(t, fs.Chtimes(path, at, at))
	}

	save("de_anza", "long", base)
	save("de", "short", base.Add(time.Hour))

	long, err := store.Latest("de_anza", "201812")
	require.NoError(t, err)
	assert.Equal(t, "long", long.Report.RunID, "pruning de must not touch de_anza")

	short, err := store.Latest("de", "201812")
	require.NoError(t, err)
	assert.Equal(t, "short", short.Report.RunID)
}

func TestFileReportStore_SameSecondRuns(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	store := NewReportStore(fs, "/reports", 6)
	at := time.Date(2018, 9, 1, 0, 0, 0, 0, time.UTC)

	first, err := store.Save(snapshotAt("201811", at))
	require.NoError(t, err)
	second, err := store.Save(snapshotAt("201811", at.Add(250*time.Millisecond)))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, countReports(t, fs, "201811"))
}

func TestFileReportStore_SaveRejectsEmptySnapshot(t *testing.T) {
	t.Parallel()

	store := NewReportStore(afero.NewMemMapFs(), "/reports", 6)
	_, err := store.Save(&Snapshot{})
	assert.Error(t, err)
}
