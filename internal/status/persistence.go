// Package status tracks and persists the reconciliation job status of each institution.
package status

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

//go:generate mockgen -destination=mocks/mock_status_persistence.go -package=mocks -source=persistence.go StatusPersistence

const (
	// StatusFileName is the name of the status file
	StatusFileName = "status.json"
)

// StatusPersistence defines the interface for job status persistence
//
//nolint:revive // This name is fine
type StatusPersistence interface {
	// SaveStatus saves the job status of an institution
	SaveStatus(ctx context.Context, institution string, status *JobStatus) error

	// LoadStatus loads the job status of an institution.
	// Returns an idle JobStatus if none was saved yet.
	LoadStatus(ctx context.Context, institution string) (*JobStatus, error)

	// LoadAllStatus loads the job status of every institution with a status file
	LoadAllStatus(ctx context.Context) (map[string]*JobStatus, error)
}

// fileStatusPersistence stores one JSON file per institution directory
type fileStatusPersistence struct {
	fs       afero.Fs
	basePath string
}

// NewFileStatusPersistence creates a file-based status persistence rooted at basePath on fs
func NewFileStatusPersistence(fs afero.Fs, basePath string) StatusPersistence {
	return &fileStatusPersistence{
		fs:       fs,
		basePath: basePath,
	}
}

func (f *fileStatusPersistence) SaveStatus(_ context.Context, institution string, status *JobStatus) error {
	dir := filepath.Join(f.basePath, institution)
	if err := f.fs.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create status directory for institution '%s': %w", institution, err)
	}

	filePath := filepath.Join(dir, StatusFileName)

	data, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status for institution '%s': %w", institution, err)
	}

	// Write to a temporary file first so readers never see a partial file
	tempPath := filePath + ".tmp"
	if err := afero.WriteFile(f.fs, tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary status file for institution '%s': %w", institution, err)
	}

	if err := f.fs.Rename(tempPath, filePath); err != nil {
		_ = f.fs.Remove(tempPath)
		return fmt.Errorf("failed to rename status file for institution '%s': %w", institution, err)
	}

	return nil
}

func (f *fileStatusPersistence) LoadStatus(_ context.Context, institution string) (*JobStatus, error) {
	filePath := filepath.Join(f.basePath, institution, StatusFileName)

	data, err := afero.ReadFile(f.fs, filePath)
	if err != nil {
		if os.IsNotExist(err) {
			// First run
			return &JobStatus{Phase: PhaseIdle}, nil
		}
		return nil, fmt.Errorf("failed to read status file for institution '%s': %w", institution, err)
	}

	var status JobStatus
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status for institution '%s': %w", institution, err)
	}

	return &status, nil
}

func (f *fileStatusPersistence) LoadAllStatus(ctx context.Context) (map[string]*JobStatus, error) {
	result := make(map[string]*JobStatus)

	entries, err := afero.ReadDir(f.fs, f.basePath)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to read status directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		institution := entry.Name()
		status, err := f.LoadStatus(ctx, institution)
		if err != nil {
			// Partial results are better than none
			slog.Warn("Skipping unreadable status file", "institution", institution, "error", err)
			continue
		}

		result[institution] = status
	}

	return result, nil
}
