package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/roster-sync/internal/events"
	eventmocks "github.com/stacklok/roster-sync/internal/events/mocks"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/versions"
)

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)

		require.NoError(t, printVersion(cmd, formatJSON))

		var info versions.VersionInfo
		require.NoError(t, json.Unmarshal(out.Bytes(), &info))
		assert.Equal(t, versions.GetVersionInfo().Version, info.Version)
		assert.NotEmpty(t, info.GoVersion)
	})

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		cmd := &cobra.Command{}
		var out bytes.Buffer
		cmd.SetOut(&out)

		require.NoError(t, printVersion(cmd, ""))
		assert.True(t, strings.HasPrefix(out.String(), "roster-sync "))
	})
}

func testReports() []*reconcile.Report {
	started := time.Date(2018, 9, 1, 2, 0, 0, 0, time.UTC)
	return []*reconcile.Report{
		{
			Term:                 "201812",
			EnrollmentTermName:   "Fall 2018",
			SourceCount:          1200,
			TargetCount:          1190,
			MissingEnrollments:   12,
			CorrectedEnrollments: 11,
			MissingDrops:         2,
			CorrectedDrops:       2,
			Failures:             1,
			StartedAt:            started,
			FinishedAt:           started.Add(90 * time.Second),
		},
	}
}

func TestPrintReports(t *testing.T) {
	t.Parallel()

	t.Run("table", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		require.NoError(t, printReports(&out, testReports(), formatTable))
		assert.Contains(t, out.String(), "201812")
		assert.Contains(t, out.String(), "Fall 2018")
		assert.Contains(t, out.String(), "1200")
		assert.Contains(t, out.String(), "1m30s")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		var out bytes.Buffer
		require.NoError(t, printReports(&out, testReports(), formatJSON))

		var decoded []reconcile.Report
		require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
		require.Len(t, decoded, 1)
		assert.Equal(t, 11, decoded[0].CorrectedEnrollments)
	})
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{input: "yes\n", want: true},
		{input: "y\n", want: true},
		{input: " YES \n", want: true},
		{input: "no\n", want: false},
		{input: "\n", want: false},
		{input: "", want: false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			got, err := confirm(strings.NewReader(tt.input), &out, "Continue?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, "Continue? (yes/no): ", out.String())
		})
	}
}

func TestRequireConfirmation_Yes(t *testing.T) {
	t.Parallel()

	cmd := &cobra.Command{}
	cmd.Flags().Bool("yes", false, "")
	require.NoError(t, cmd.Flags().Set("yes", "true"))

	assert.NoError(t, requireConfirmation(cmd, "Drop everything?"))
}

func TestMigrateDownPrompt(t *testing.T) {
	t.Parallel()

	assert.Contains(t, migrateDownPrompt(0), "ALL steps")
	assert.Contains(t, migrateDownPrompt(2), "2 step(s)")
}

func TestPollEvents(t *testing.T) {
	t.Parallel()

	t.Run("single poll", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		d := eventmocks.NewMockDispatcher(ctrl)
		d.EXPECT().PollOnce(gomock.Any()).Return(&events.Summary{Fetched: 3, Applied: 3}, nil)

		total, err := pollEvents(context.Background(), d, false)
		require.NoError(t, err)
		assert.Equal(t, &events.Summary{Fetched: 3, Applied: 3}, total)
	})

	t.Run("drain stops when a batch makes no progress", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		d := eventmocks.NewMockDispatcher(ctrl)
		gomock.InOrder(
			d.EXPECT().PollOnce(gomock.Any()).Return(&events.Summary{Fetched: 100, Applied: 98, Retained: 2}, nil),
			d.EXPECT().PollOnce(gomock.Any()).Return(&events.Summary{Fetched: 5, Applied: 2, Rejected: 1, Retained: 2}, nil),
			d.EXPECT().PollOnce(gomock.Any()).Return(&events.Summary{Fetched: 2, Retained: 2}, nil),
		)

		total, err := pollEvents(context.Background(), d, true)
		require.NoError(t, err)
		assert.Equal(t, &events.Summary{Fetched: 107, Applied: 100, Rejected: 1, Retained: 6}, total)
	})

	t.Run("poll error", func(t *testing.T) {
		t.Parallel()

		ctrl := gomock.NewController(t)
		d := eventmocks.NewMockDispatcher(ctrl)
		d.EXPECT().PollOnce(gomock.Any()).Return(nil, errors.New("connection reset"))

		_, err := pollEvents(context.Background(), d, true)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to poll events")
	})
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, &events.Summary{Fetched: 4, Applied: 3, Retained: 1}))
	assert.JSONEq(t, `{"fetched":4,"applied":3,"rejected":0,"retained":1}`, out.String())
}
