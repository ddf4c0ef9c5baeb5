package status

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBasePath    = "/data/status"
	testInstitution = "foothill"
)

func TestFileStatusPersistence_SaveAndLoad(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	persistence := NewFileStatusPersistence(fs, testBasePath)

	now := time.Now().UTC().Truncate(time.Second)
	saved := &JobStatus{
		Phase:        PhaseComplete,
		Message:      "Reconciliation completed",
		LastAttempt:  &now,
		LastRunTime:  &now,
		LastDuration: "2m3s",
		Terms: []TermSummary{
			{Term: "201811", SourceCount: 120, TargetCount: 118, MissingEnrollments: 2, CorrectedEnrollments: 2},
		},
	}

	ctx := context.Background()
	require.NoError(t, persistence.SaveStatus(ctx, testInstitution, saved))

	exists, err := afero.Exists(fs, filepath.Join(testBasePath, testInstitution, StatusFileName))
	require.NoError(t, err)
	assert.True(t, exists)

	loaded, err := persistence.LoadStatus(ctx, testInstitution)
	require.NoError(t, err)
	assert.Equal(t, saved.Phase, loaded.Phase)
	assert.Equal(t, saved.Message, loaded.Message)
	assert.Equal(t, saved.LastDuration, loaded.LastDuration)
	require.NotNil(t, loaded.LastRunTime)
	assert.True(t, now.Equal(*loaded.LastRunTime))
	assert.Equal(t, saved.Terms, loaded.Terms)
}

func TestFileStatusPersistence_LoadNonExistent(t *testing.T) {
	t.Parallel()

	persistence := NewFileStatusPersistence(afero.NewMemMapFs(), testBasePath)

	loaded, err := persistence.LoadStatus(context.Background(), testInstitution)
	require.NoError(t, err)
	assert.Equal(t, PhaseIdle, loaded.Phase)
	assert.Empty(t, loaded.Message)
}

func TestFileStatusPersistence_AtomicWrite(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	persistence := NewFileStatusPersistence(fs, testBasePath)
	ctx := context.Background()

	require.NoError(t, persistence.SaveStatus(ctx, testInstitution, &JobStatus{Phase: PhaseRunning}))
	require.NoError(t, persistence.SaveStatus(ctx, testInstitution, &JobStatus{Phase: PhaseComplete}))

	exists, err := afero.Exists(fs, filepath.Join(testBasePath, testInstitution, StatusFileName+".tmp"))
	require.NoError(t, err)
	assert.False(t, exists, "temporary file should be renamed away")

	loaded, err := persistence.LoadStatus(ctx, testInstitution)
	require.NoError(t, err)
	assert.Equal(t, PhaseComplete, loaded.Phase)
}

func TestFileStatusPersistence_LoadAllStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, fs afero.Fs, p StatusPersistence)
		want  map[string]Phase
	}{
		{
			name:  "missing base directory",
			setup: func(*testing.T, afero.Fs, StatusPersistence) {},
			want:  map[string]Phase{},
		},
		{
			name: "empty base directory",
			setup: func(t *testing.T, fs afero.Fs, _ StatusPersistence) {
				t.Helper()
				require.NoError(t, fs.MkdirAll(testBasePath, 0750))
			},
			want: map[string]Phase{},
		},
		{
			name: "several institutions",
			setup: func(t *testing.T, _ afero.Fs, p StatusPersistence) {
				t.Helper()
				require.NoError(t, p.SaveStatus(context.Background(), "foothill", &JobStatus{Phase: PhaseComplete}))
				require.NoError(t, p.SaveStatus(context.Background(), "deanza", &JobStatus{Phase: PhaseFailed}))
			},
			want: map[string]Phase{"foothill": PhaseComplete, "deanza": PhaseFailed},
		},
		{
			name: "corrupt file is skipped",
			setup: func(t *testing.T, fs afero.Fs, p StatusPersistence) {
				t.Helper()
				require.NoError(t, p.SaveStatus(context.Background(), "foothill", &JobStatus{Phase: PhaseComplete}))
				require.NoError(t, fs.MkdirAll(filepath.Join(testBasePath, "deanza"), 0750))
				require.NoError(t, afero.WriteFile(fs, filepath.Join(testBasePath, "deanza", StatusFileName), []byte("{"), 0600))
				require.NoError(t, afero.WriteFile(fs, filepath.Join(testBasePath, "README"), []byte("x"), 0600))
			},
			want: map[string]Phase{"foothill": PhaseComplete},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			p := NewFileStatusPersistence(fs, testBasePath)
			tt.setup(t, fs, p)

			all, err := p.LoadAllStatus(context.Background())
			require.NoError(t, err)

			got := make(map[string]Phase, len(all))
			for name, st := range all {
				got[name] = st.Phase
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileStatusPersistence_SaveOnReadOnlyFs(t *testing.T) {
	t.Parallel()

	p := NewFileStatusPersistence(afero.NewReadOnlyFs(afero.NewMemMapFs()), testBasePath)
	err := p.SaveStatus(context.Background(), testInstitution, &JobStatus{Phase: PhaseIdle})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create status directory")
}
