package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	rosterapp "github.com/stacklok/roster-sync/internal/app"
	"github.com/stacklok/roster-sync/internal/config"
	"github.com/stacklok/roster-sync/internal/telemetry"
	"github.com/stacklok/roster-sync/internal/versions"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// loadConfig loads the configuration file named by --config or ROSTER_SYNC_CONFIG
func loadConfig() (*config.Config, error) {
	configPath := viper.GetString("config")
	if configPath == "" {
		return nil, fmt.Errorf("--config is required")
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(configPath))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.Info("Loaded configuration", "path", configPath, "institutions", len(cfg.Institutions))
	return cfg, nil
}

// newTelemetry initializes telemetry, reporting the build version unless configured otherwise
func newTelemetry(ctx context.Context, cfg *config.Config) (*telemetry.Telemetry, error) {
	if cfg.Telemetry != nil && cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = versions.GetVersionInfo().Version
	}
	tel, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	return tel, nil
}

func shutdownTelemetry(tel *telemetry.Telemetry) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultGracefulTimeout)
	defer cancel()
	if err := tel.Shutdown(ctx); err != nil {
		slog.Error("Failed to shutdown telemetry", "error", err)
	}
}

// telemetryOptions passes the telemetry providers to the application builder
func telemetryOptions(tel *telemetry.Telemetry) []rosterapp.RosterAppOptions {
	return []rosterapp.RosterAppOptions{
		rosterapp.WithMeterProvider(tel.MeterProvider()),
		rosterapp.WithTracerProvider(tel.TracerProvider()),
		rosterapp.WithMetricsHandler(tel.MetricsHandler()),
	}
}

// oneShot loads the configuration, telemetry and components for commands that run a single
// operation. The returned release function must be called when the command ends.
func oneShot(ctx context.Context) (*rosterapp.AppComponents, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	opts := append([]rosterapp.RosterAppOptions{rosterapp.WithConfig(cfg)}, telemetryOptions(tel)...)
	components, err := rosterapp.NewComponents(ctx, opts...)
	if err != nil {
		shutdownTelemetry(tel)
		return nil, nil, fmt.Errorf("failed to initialize components: %w", err)
	}

	return components, func() {
		components.Close()
		shutdownTelemetry(tel)
	}, nil
}

// institution returns the enabled institution named by the --institution flag
func institution(cmd *cobra.Command, components *rosterapp.AppComponents) (*rosterapp.Institution, error) {
	name, err := cmd.Flags().GetString("institution")
	if err != nil {
		return nil, fmt.Errorf("failed to get institution flag: %w", err)
	}
	inst := components.Institution(name)
	if inst == nil {
		return nil, fmt.Errorf("institution %q is not configured or not enabled", name)
	}
	return inst, nil
}

// requireConfirmation asks the user to confirm a destructive action unless --yes was given.
// Without a terminal on stdin the action is refused.
func requireConfirmation(cmd *cobra.Command, prompt string) error {
	yes, err := cmd.Flags().GetBool("yes")
	if err != nil {
		return fmt.Errorf("failed to get yes flag: %w", err)
	}
	if yes {
		return nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) { //nolint:gosec // file descriptors fit in an int
		return fmt.Errorf("refusing to prompt on non-interactive input, pass --yes to continue")
	}

	ok, err := confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("cancelled by user")
	}
	return nil
}

// confirm writes prompt to out and reads a yes/no answer from in
func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprintf(out, "%s (yes/no): ", prompt)

	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read user input: %w", err)
	}

	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y":
		return true, nil
	default:
		return false, nil
	}
}
