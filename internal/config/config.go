// Package config provides configuration loading and validation for the roster sync service.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/roster-sync/internal/telemetry"
)

// EnvPrefix is the prefix for environment variables read by the service
const EnvPrefix = "ROSTER_SYNC"

const (
	// CleanupModeLenient keeps removing ledger rows when remote deletes fail
	CleanupModeLenient = "lenient"
	// CleanupModeStrict aborts ledger cleanup on the first remote failure
	CleanupModeStrict = "strict"
)

const (
	defaultEventsInterval     = 15 * time.Second
	defaultEventsBatchSize    = 100
	defaultEventsConcurrency  = 4
	defaultReconcileInterval  = 6 * time.Hour
	defaultReportRetention    = 6
	defaultReportsDir         = "./data/reports"
	defaultStatusDir          = "./data/status"
	defaultPersonPattern      = `^[0-9]{8}$`
	defaultLMSAccountID       = "1"
	defaultLMSMaxRetries      = 3
	defaultDatabaseSSLMode    = "require"
	databasePasswordEnvSuffix = "DATABASE_PASSWORD"
)

// Option configures the config loader
type Option func(*loaderConfig) error

type loaderConfig struct {
	path string
}

// WithConfigPath sets the path of the YAML configuration file.
// Symlinks are resolved and relative paths must stay local.
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config is the root configuration of the service
type Config struct {
	// Institutions lists every SIS institution mirrored into an LMS tenant
	Institutions []InstitutionConfig `yaml:"institutions"`

	// Events configures the event ingestion loop
	Events *EventsConfig `yaml:"events,omitempty"`

	// Sync configures synchronization operation behaviour
	Sync *SyncConfig `yaml:"sync,omitempty"`

	// Database configures the connection to the SIS database
	Database *DatabaseConfig `yaml:"database,omitempty"`

	// Reports configures where reconciliation reports are written
	Reports *ReportsConfig `yaml:"reports,omitempty"`

	// Status configures where job status files are written
	Status *StatusConfig `yaml:"status,omitempty"`

	// Telemetry configures OpenTelemetry tracing and metrics
	Telemetry *telemetry.Config `yaml:"telemetry,omitempty"`
}

// InstitutionConfig describes one institution sharing the SIS database
type InstitutionConfig struct {
	// Name identifies the institution in logs, metrics, reports and the API
	Name string `yaml:"name"`

	// TermDiscriminator is the character found at index 5 of the institution's term codes
	TermDiscriminator string `yaml:"termDiscriminator"`

	// Enabled controls whether events and reconciliation run for this institution
	Enabled bool `yaml:"enabled"`

	LMS       LMSConfig        `yaml:"lms"`
	Reconcile *ReconcileConfig `yaml:"reconcile,omitempty"`
}

// LMSConfig describes how to reach the institution's LMS tenant
type LMSConfig struct {
	// BaseURL is the REST API root, e.g. https://example.instructure.com/api/v1
	BaseURL string `yaml:"baseURL"`

	// TokenFile holds the API access token. Falls back to ROSTER_SYNC_<NAME>_LMS_TOKEN.
	TokenFile string `yaml:"tokenFile,omitempty"`

	// AccountID is the root account used for course and term listings
	AccountID string `yaml:"accountId,omitempty"`

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// MaxRetries bounds retries of throttled or failed idempotent requests
	MaxRetries *int `yaml:"maxRetries,omitempty"`
}

// ReconcileConfig configures the periodic reconciliation job
type ReconcileConfig struct {
	Enabled bool `yaml:"enabled"`

	// Interval between reconciliation runs (e.g. "6h")
	Interval string `yaml:"interval,omitempty"`

	// BlacklistedTerms are glob patterns of term codes that are never reconciled
	BlacklistedTerms []string `yaml:"blacklistedTerms,omitempty"`

	// PersonPattern is the regular expression LMS login ids must match to be reconciled
	PersonPattern string `yaml:"personPattern,omitempty"`
}

// EventsConfig configures the event ingestion loop
type EventsConfig struct {
	Enabled     bool   `yaml:"enabled"`
	Interval    string `yaml:"interval,omitempty"`
	BatchSize   int    `yaml:"batchSize,omitempty"`
	Concurrency int    `yaml:"concurrency,omitempty"`
}

// SyncConfig configures synchronization operations
type SyncConfig struct {
	// CleanupMode is either "lenient" (default) or "strict"
	CleanupMode string `yaml:"cleanupMode,omitempty"`
}

// ReportsConfig configures reconciliation report persistence
type ReportsConfig struct {
	Dir       string `yaml:"dir,omitempty"`
	Retention int    `yaml:"retention,omitempty"`
}

// StatusConfig configures job status persistence
type StatusConfig struct {
	Dir string `yaml:"dir,omitempty"`
}

// DatabaseConfig defines the SIS database connection settings
type DatabaseConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	User string `yaml:"user"`

	// PasswordFile is the path to a file containing the password.
	// Falls back to the ROSTER_SYNC_DATABASE_PASSWORD environment variable.
	PasswordFile string `yaml:"passwordFile,omitempty"`

	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslMode,omitempty"`

	MaxOpenConns    int32  `yaml:"maxOpenConns,omitempty"`
	MaxIdleConns    int32  `yaml:"maxIdleConns,omitempty"`
	ConnMaxLifetime string `yaml:"connMaxLifetime,omitempty"`
}

// LoadConfig reads, parses and validates the YAML configuration file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Institution returns the named institution configuration, or nil
func (c *Config) Institution(name string) *InstitutionConfig {
	for i := range c.Institutions {
		if c.Institutions[i].Name == name {
			return &c.Institutions[i]
		}
	}
	return nil
}

// GetCleanupMode returns the configured cleanup mode, defaulting to lenient
func (c *Config) GetCleanupMode() string {
	if c.Sync == nil || c.Sync.CleanupMode == "" {
		return CleanupModeLenient
	}
	return c.Sync.CleanupMode
}

// GetReportsDir returns the reports directory
func (c *Config) GetReportsDir() string {
	if c.Reports == nil || c.Reports.Dir == "" {
		return defaultReportsDir
	}
	return c.Reports.Dir
}

// GetReportRetention returns how many reports are kept per term suffix
func (c *Config) GetReportRetention() int {
	if c.Reports == nil || c.Reports.Retention <= 0 {
		return defaultReportRetention
	}
	return c.Reports.Retention
}

// GetStatusDir returns the job status directory
func (c *Config) GetStatusDir() string {
	if c.Status == nil || c.Status.Dir == "" {
		return defaultStatusDir
	}
	return c.Status.Dir
}

// EventsEnabled reports whether the event loop should run
func (c *Config) EventsEnabled() bool {
	return c.Events != nil && c.Events.Enabled
}

// GetEventsInterval returns the delay between event polls
func (c *Config) GetEventsInterval() time.Duration {
	if c.Events == nil || c.Events.Interval == "" {
		return defaultEventsInterval
	}
	d, err := time.ParseDuration(c.Events.Interval)
	if err != nil {
		return defaultEventsInterval
	}
	return d
}

// GetEventsBatchSize returns the maximum number of events fetched per poll
func (c *Config) GetEventsBatchSize() int {
	if c.Events == nil || c.Events.BatchSize <= 0 {
		return defaultEventsBatchSize
	}
	return c.Events.BatchSize
}

// GetEventsConcurrency returns how many events are processed at once
func (c *Config) GetEventsConcurrency() int {
	if c.Events == nil || c.Events.Concurrency <= 0 {
		return defaultEventsConcurrency
	}
	return c.Events.Concurrency
}

// GetAccountID returns the LMS root account id
func (l *LMSConfig) GetAccountID() string {
	if l.AccountID == "" {
		return defaultLMSAccountID
	}
	return l.AccountID
}

// GetMaxRetries returns the retry bound for LMS requests
func (l *LMSConfig) GetMaxRetries() int {
	if l.MaxRetries == nil {
		return defaultLMSMaxRetries
	}
	return *l.MaxRetries
}

// GetToken resolves the LMS API token for the named institution.
// The token file takes precedence over the environment.
func (l *LMSConfig) GetToken(institution string) (string, error) {
	if l.TokenFile != "" {
		data, err := os.ReadFile(filepath.Clean(l.TokenFile))
		if err != nil {
			return "", fmt.Errorf("failed to read LMS token from file %s: %w", l.TokenFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	envName := TokenEnvVar(institution)
	if token := os.Getenv(envName); token != "" {
		return token, nil
	}

	return "", fmt.Errorf("no LMS token configured: set lms.tokenFile or %s environment variable", envName)
}

// TokenEnvVar returns the environment variable consulted for an institution's LMS token
func TokenEnvVar(institution string) string {
	name := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(institution))
	return fmt.Sprintf("%s_%s_LMS_TOKEN", EnvPrefix, name)
}

// ReconcileEnabled reports whether scheduled reconciliation runs for the institution
func (i *InstitutionConfig) ReconcileEnabled() bool {
	return i.Enabled && i.Reconcile != nil && i.Reconcile.Enabled
}

// GetReconcileInterval returns the delay between reconciliation runs
func (i *InstitutionConfig) GetReconcileInterval() time.Duration {
	if i.Reconcile == nil || i.Reconcile.Interval == "" {
		return defaultReconcileInterval
	}
	d, err := time.ParseDuration(i.Reconcile.Interval)
	if err != nil {
		return defaultReconcileInterval
	}
	return d
}

// GetPersonPattern returns the compiled login id pattern
func (i *InstitutionConfig) GetPersonPattern() *regexp.Regexp {
	pattern := defaultPersonPattern
	if i.Reconcile != nil && i.Reconcile.PersonPattern != "" {
		pattern = i.Reconcile.PersonPattern
	}
	return regexp.MustCompile(pattern)
}

// GetBlacklistedTerms returns the compiled blacklist globs
func (i *InstitutionConfig) GetBlacklistedTerms() []glob.Glob {
	if i.Reconcile == nil {
		return nil
	}
	globs := make([]glob.Glob, 0, len(i.Reconcile.BlacklistedTerms))
	for _, pattern := range i.Reconcile.BlacklistedTerms {
		g, err := glob.Compile(pattern)
		if err != nil {
			continue
		}
		globs = append(globs, g)
	}
	return globs
}

// GetPassword returns the database password from the password file or the environment
func (d *DatabaseConfig) GetPassword() (string, error) {
	if d.PasswordFile != "" {
		data, err := os.ReadFile(filepath.Clean(d.PasswordFile))
		if err != nil {
			return "", fmt.Errorf("failed to read password from file %s: %w", d.PasswordFile, err)
		}
		return strings.TrimSpace(string(data)), nil
	}

	envName := EnvPrefix + "_" + databasePasswordEnvSuffix
	if envPassword := os.Getenv(envName); envPassword != "" {
		return envPassword, nil
	}

	return "", fmt.Errorf("no database password configured: set passwordFile or %s environment variable", envName)
}

// GetConnectionString builds a PostgreSQL URL with the password escaped
func (d *DatabaseConfig) GetConnectionString() (string, error) {
	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}

	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = defaultDatabaseSSLMode
	}

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		url.QueryEscape(d.User),
		url.QueryEscape(password),
		d.Host,
		d.Port,
		d.Database,
		sslMode,
	), nil
}

// institutionName keeps names safe as report file prefixes, URL segments and env var suffixes
var institutionName = regexp.MustCompile(`^[a-z0-9_]+$`)

func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if len(c.Institutions) == 0 {
		return fmt.Errorf("at least one institution must be configured")
	}

	names := make(map[string]bool)
	discriminators := make(map[string]string)
	for i := range c.Institutions {
		inst := &c.Institutions[i]
		if inst.Name == "" {
			return fmt.Errorf("institution[%d]: name is required", i)
		}
		if !institutionName.MatchString(inst.Name) {
			return fmt.Errorf("institution[%d]: name '%s' must match %s", i, inst.Name, institutionName)
		}
		if names[inst.Name] {
			return fmt.Errorf("institution[%d]: duplicate institution name '%s'", i, inst.Name)
		}
		names[inst.Name] = true

		if other, ok := discriminators[inst.TermDiscriminator]; ok {
			return fmt.Errorf("institution[%d] (%s): termDiscriminator '%s' already used by %s",
				i, inst.Name, inst.TermDiscriminator, other)
		}
		discriminators[inst.TermDiscriminator] = inst.Name

		if err := validateInstitution(inst, i); err != nil {
			return err
		}
	}

	if c.Sync != nil {
		switch c.Sync.CleanupMode {
		case "", CleanupModeLenient, CleanupModeStrict:
		default:
			return fmt.Errorf("sync.cleanupMode must be '%s' or '%s', got '%s'",
				CleanupModeLenient, CleanupModeStrict, c.Sync.CleanupMode)
		}
	}

	if c.Events != nil && c.Events.Interval != "" {
		if _, err := time.ParseDuration(c.Events.Interval); err != nil {
			return fmt.Errorf("events.interval must be a valid duration (e.g., '15s'): %w", err)
		}
	}

	if c.Database != nil {
		if err := c.Database.validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

func validateInstitution(inst *InstitutionConfig, index int) error {
	prefix := fmt.Sprintf("institution[%d] (%s)", index, inst.Name)

	if len(inst.TermDiscriminator) != 1 {
		return fmt.Errorf("%s: termDiscriminator must be a single character", prefix)
	}

	if inst.LMS.BaseURL == "" {
		return fmt.Errorf("%s: lms.baseURL is required", prefix)
	}
	if _, err := url.ParseRequestURI(inst.LMS.BaseURL); err != nil {
		return fmt.Errorf("%s: lms.baseURL is invalid: %w", prefix, err)
	}
	if inst.LMS.RequestsPerSecond < 0 {
		return fmt.Errorf("%s: lms.requestsPerSecond cannot be negative", prefix)
	}
	if inst.LMS.MaxRetries != nil && *inst.LMS.MaxRetries < 0 {
		return fmt.Errorf("%s: lms.maxRetries cannot be negative", prefix)
	}

	if inst.Reconcile == nil {
		return nil
	}

	if inst.Reconcile.Interval != "" {
		if _, err := time.ParseDuration(inst.Reconcile.Interval); err != nil {
			return fmt.Errorf("%s: reconcile.interval must be a valid duration (e.g., '6h'): %w", prefix, err)
		}
	}

	var errs []error
	for _, pattern := range inst.Reconcile.BlacklistedTerms {
		if _, err := glob.Compile(pattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid blacklisted term pattern '%s': %w", prefix, pattern, err))
		}
	}
	if inst.Reconcile.PersonPattern != "" {
		if _, err := regexp.Compile(inst.Reconcile.PersonPattern); err != nil {
			errs = append(errs, fmt.Errorf("%s: invalid reconcile.personPattern: %w", prefix, err))
		}
	}

	return errors.Join(errs...)
}

func (d *DatabaseConfig) validate() error {
	if d.Host == "" {
		return fmt.Errorf("host is required")
	}
	if d.Port == 0 {
		return fmt.Errorf("port is required")
	}
	if d.User == "" {
		return fmt.Errorf("user is required")
	}
	if d.Database == "" {
		return fmt.Errorf("database name is required")
	}
	if d.ConnMaxLifetime != "" {
		if _, err := time.ParseDuration(d.ConnMaxLifetime); err != nil {
			return fmt.Errorf("connMaxLifetime must be a valid duration: %w", err)
		}
	}
	return nil
}
