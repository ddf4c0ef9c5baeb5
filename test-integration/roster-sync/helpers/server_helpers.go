package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	rosterapp "github.com/stacklok/roster-sync/internal/app"
	"github.com/stacklok/roster-sync/internal/config"
)

// ConfigOptions tunes the generated configuration
type ConfigOptions struct {
	EventsEnabled    bool
	ReconcileEnabled bool
	CleanupMode      string
	PersonPattern    string
}

// WriteConfigYAML writes a configuration with one enabled institution ("foothill", discriminator "1")
// pointing at lms and db, plus a disabled "deanza". Returns the config file path.
func WriteConfigYAML(dir string, lms *FakeLMS, db *Database, opts ConfigOptions) (string, error) {
	tokenFile := filepath.Join(dir, "lms-token")
	if err := os.WriteFile(tokenFile, []byte(LMSToken+"\n"), 0600); err != nil {
		return "", err
	}
	passwordFile := filepath.Join(dir, "db-password")
	if err := os.WriteFile(passwordFile, []byte(db.Password+"\n"), 0600); err != nil {
		return "", err
	}

	maxRetries := 1
	foothill := config.InstitutionConfig{
		Name:              "foothill",
		TermDiscriminator: "1",
		Enabled:           true,
		LMS: config.LMSConfig{
			BaseURL:    lms.BaseURL(),
			TokenFile:  tokenFile,
			MaxRetries: &maxRetries,
		},
	}
	if opts.ReconcileEnabled || opts.PersonPattern != "" {
		foothill.Reconcile = &config.ReconcileConfig{
			Enabled:       opts.ReconcileEnabled,
			Interval:      "1h",
			PersonPattern: opts.PersonPattern,
		}
	}

	cfg := config.Config{
		Institutions: []config.InstitutionConfig{
			foothill,
			{
				Name:              "deanza",
				TermDiscriminator: "2",
				Enabled:           false,
				LMS:               config.LMSConfig{BaseURL: "https://deanza.invalid/api/v1"},
			},
		},
		Events: &config.EventsConfig{Enabled: opts.EventsEnabled, Interval: "200ms", BatchSize: 50, Concurrency: 2},
		Sync:   &config.SyncConfig{CleanupMode: opts.CleanupMode},
		Database: &config.DatabaseConfig{
			Host:         db.Host,
			Port:         db.Port,
			User:         db.User,
			PasswordFile: passwordFile,
			Database:     db.Name,
			SSLMode:      "disable",
		},
		Reports: &config.ReportsConfig{Dir: filepath.Join(dir, "reports"), Retention: 3},
		Status:  &config.StatusConfig{Dir: filepath.Join(dir, "status")},
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", err
	}
	return path, nil
}

// ServerTestHelper manages the roster sync server lifecycle for testing
type ServerTestHelper struct {
	ctx        context.Context
	configPath string
	baseURL    string
	httpClient *http.Client
	app        *rosterapp.RosterApp
	done       chan error
}

// NewServerTestHelper creates a new server test helper
func NewServerTestHelper(ctx context.Context, configPath string) *ServerTestHelper {
	return &ServerTestHelper{
		ctx:        ctx,
		configPath: configPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// StartServer loads the configuration and serves the application on an ephemeral port
func (s *ServerTestHelper) StartServer() error {
	cfg, err := config.LoadConfig(config.WithConfigPath(s.configPath))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	app, err := rosterapp.NewRosterApp(s.ctx,
		rosterapp.WithConfig(cfg),
		rosterapp.WithAddress("127.0.0.1:0"),
		rosterapp.WithSchedulingJitter(0),
	)
	if err != nil {
		return fmt.Errorf("failed to build app: %w", err)
	}
	s.app = app

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	s.baseURL = "http://" + listener.Addr().String()

	s.done = make(chan error, 1)
	go func() {
		s.done <- app.StartWithListener(listener)
	}()
	return nil
}

// StopServer gracefully stops the server
func (s *ServerTestHelper) StopServer() error {
	if s.app == nil {
		return nil
	}
	if err := s.app.Stop(10 * time.Second); err != nil {
		return err
	}
	return <-s.done
}

// WaitForServerReady waits until the readiness endpoint reports ready
func (s *ServerTestHelper) WaitForServerReady(timeout time.Duration) {
	gomega.Eventually(func() error {
		resp, err := s.httpClient.Get(s.baseURL + "/readiness")
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server returned status %d", resp.StatusCode)
		}
		return nil
	}, timeout, 100*time.Millisecond).Should(gomega.Succeed(), "Server should be ready")
}

// Get performs a GET request against the server
func (s *ServerTestHelper) Get(path string) (*http.Response, error) {
	return s.httpClient.Get(s.baseURL + path)
}

// Post performs a POST request with an optional JSON body
func (s *ServerTestHelper) Post(path string, body any) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(data)
	}
	return s.httpClient.Post(s.baseURL+path, "application/json", r)
}

// Delete performs a DELETE request
func (s *ServerTestHelper) Delete(path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(s.ctx, http.MethodDelete, s.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return s.httpClient.Do(req)
}

// DecodeJSON reads and closes the response body into out
func DecodeJSON(resp *http.Response, out any) error {
	defer func() {
		_ = resp.Body.Close()
	}()
	return json.NewDecoder(resp.Body).Decode(out)
}
