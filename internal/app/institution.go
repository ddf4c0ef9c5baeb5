package app

import (
	"fmt"
	"log/slog"

	"github.com/stacklok/roster-sync/internal/config"
	"github.com/stacklok/roster-sync/internal/lms"
	"github.com/stacklok/roster-sync/internal/reconcile"
	"github.com/stacklok/roster-sync/internal/roster"
)

// Institution holds everything needed to serve one institution
type Institution struct {
	Name   string
	Config *config.InstitutionConfig

	Client     lms.Client
	Operations roster.Operations
	Engine     reconcile.Engine
}

// ClientFactory creates the LMS client of an institution
type ClientFactory func(cfg *config.InstitutionConfig, opts ...lms.Option) (lms.Client, error)

// DefaultClientFactory reads the institution's token and creates an HTTP LMS client
func DefaultClientFactory(cfg *config.InstitutionConfig, opts ...lms.Option) (lms.Client, error) {
	token, err := cfg.LMS.GetToken(cfg.Name)
	if err != nil {
		return nil, err
	}

	opts = append([]lms.Option{
		lms.WithInstitution(cfg.Name),
		lms.WithAccountID(cfg.LMS.GetAccountID()),
		lms.WithMaxRetries(cfg.LMS.GetMaxRetries()),
		lms.WithRateLimit(cfg.LMS.RequestsPerSecond),
	}, opts...)

	client, err := lms.NewClient(cfg.LMS.BaseURL, token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create LMS client: %w", err)
	}
	slog.Debug("LMS client created", "institution", cfg.Name, "base_url", cfg.LMS.BaseURL)
	return client, nil
}
