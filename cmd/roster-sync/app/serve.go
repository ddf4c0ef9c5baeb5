package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	rosterapp "github.com/stacklok/roster-sync/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the event loop, the reconciliation schedule and the admin API",
	Long: `Start the roster sync service.

The service polls the SIS event queue, runs the reconciliation job of every institution
on its configured interval and serves the admin API. The configuration file (--config)
lists the institutions, their LMS tenants and the SIS database connection.`,
	RunE: runServe,
}

const (
	defaultGracefulTimeout = 30 * time.Second
)

func init() {
	serveCmd.Flags().String("address", ":8080", "Address to listen on")

	if err := viper.BindPFlag("address", serveCmd.Flags().Lookup("address")); err != nil {
		slog.Error("Failed to bind address flag", "error", err)
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	tel, err := newTelemetry(ctx, cfg)
	if err != nil {
		return err
	}
	defer shutdownTelemetry(tel)

	opts := append([]rosterapp.RosterAppOptions{
		rosterapp.WithConfig(cfg),
		rosterapp.WithAddress(viper.GetString("address")),
	}, telemetryOptions(tel)...)

	// The application context must outlive the signal so that Stop drives the shutdown
	app, err := rosterapp.NewRosterApp(context.WithoutCancel(ctx), opts...)
	if err != nil {
		return fmt.Errorf("failed to create roster sync application: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			_ = app.Stop(defaultGracefulTimeout)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	if err := app.Stop(defaultGracefulTimeout); err != nil {
		return err
	}
	return <-errCh
}
