package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/afero"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks -source=store.go ReportStore

const (
	// DefaultRetention is the number of reports kept per term suffix
	DefaultRetention = 6

	reportTimeFormat = "20060102T150405.000Z"
	// Parses names with and without the millisecond field
	reportTimeLayout = "20060102T150405Z"
	reportExt        = ".json"
)

// ErrNoReport is returned when no report exists for a term
var ErrNoReport = errors.New("no report found")

// ReportStore persists reconciliation snapshots
type ReportStore interface {
	// Save writes a snapshot and prunes older reports of the same term suffix.
	// It returns the path of the written file.
	Save(snapshot *Snapshot) (string, error)

	// Latest returns the most recent snapshot for an institution and term
	Latest(institution, term string) (*Snapshot, error)
}

type fileReportStore struct {
	fs        afero.Fs
	dir       string
	retention int
}

var _ ReportStore = (*fileReportStore)(nil)

// NewReportStore creates a ReportStore writing JSON files to dir on fs.
// A retention below 1 uses DefaultRetention.
func NewReportStore(fs afero.Fs, dir string, retention int) ReportStore {
	if retention < 1 {
		retention = DefaultRetention
	}
	return &fileReportStore{fs: fs, dir: dir, retention: retention}
}

// ReportFileName is the file name of a report written at t
func ReportFileName(institution, term string, t time.Time) string {
	return fmt.Sprintf("%s-%s-%s%s", institution, term, t.UTC().Format(reportTimeFormat), reportExt)
}

// parseReportFileName returns the term of a report file belonging to institution
func parseReportFileName(institution, name string) (string, bool) {
	rest, ok := strings.CutPrefix(name, institution+"-")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutSuffix(rest, reportExt)
	if !ok {
		return "", false
	}
	i := strings.LastIndexByte(rest, '-')
	// A hyphen left in the term means the file belongs to a longer institution name
	if i <= 0 || strings.IndexByte(rest[:i], '-') >= 0 {
		return "", false
	}
	if _, err := time.Parse(reportTimeLayout, rest[i+1:]); err != nil {
		return "", false
	}
	return rest[:i], true
}

func (s *fileReportStore) Save(snapshot *Snapshot) (string, error) {
	if snapshot == nil || snapshot.Report == nil {
		return "", fmt.Errorf("snapshot has no report")
	}
	r := snapshot.Report

	if err := s.fs.MkdirAll(s.dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create reports directory: %w", err)
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	path := filepath.Join(s.dir, ReportFileName(r.Institution, r.Term, r.FinishedAt))
	if err := afero.WriteFile(s.fs, path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}

	if err := s.prune(r.Institution, r.Term); err != nil {
		slog.Warn("Failed to prune old reports", "institution", r.Institution, "term", r.Term, "error", err)
	}
	return path, nil
}

// reportFiles lists the reports of institution whose term matches keep, newest first
func (s *fileReportStore) reportFiles(institution string, keep func(term string) bool) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, err
	}

	var files []os.FileInfo
	for _, fi := range entries {
		if fi.IsDir() {
			continue
		}
		term, ok := parseReportFileName(institution, fi.Name())
		if !ok || !keep(term) {
			continue
		}
		files = append(files, fi)
	}

	sort.Slice(files, func(i, j int) bool {
		if !files[i].ModTime().Equal(files[j].ModTime()) {
			return files[i].ModTime().After(files[j].ModTime())
		}
		return files[i].Name() > files[j].Name()
	})
	return files, nil
}

// prune removes the oldest reports sharing the last character of term beyond retention
func (s *fileReportStore) prune(institution, term string) error {
	if term == "" {
		return nil
	}
	suffix := term[len(term)-1:]
	files, err := s.reportFiles(institution, func(t string) bool { return strings.HasSuffix(t, suffix) })
	if err != nil {
		return err
	}
	if len(files) <= s.retention {
		return nil
	}

	var errs []error
	for _, fi := range files[s.retention:] {
		path := filepath.Join(s.dir, fi.Name())
		if err := s.fs.Remove(path); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.Debug("Pruned reconciliation report", "path", path)
	}
	return errors.Join(errs...)
}

func (s *fileReportStore) Latest(institution, term string) (*Snapshot, error) {
	files, err := s.reportFiles(institution, func(t string) bool { return t == term })
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w for %s term %s", ErrNoReport, institution, term)
	}

	data, err := afero.ReadFile(s.fs, filepath.Join(s.dir, files[0].Name()))
	if err != nil {
		return nil, fmt.Errorf("failed to read report: %w", err)
	}
	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse report %s: %w", files[0].Name(), err)
	}
	return &snapshot, nil
}
