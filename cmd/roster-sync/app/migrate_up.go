package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/roster-sync/database"
)

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending database migrations",
	Long: `Apply pending database migrations to bring the schema up to date.
The connection parameters are read from the config file.`,
	RunE: runMigrateUp,
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}

	connString, err := migrationConnString()
	if err != nil {
		return err
	}

	if err := requireConfirmation(cmd, "Apply database migrations?"); err != nil {
		return err
	}

	slog.Info("Applying database migrations...", "steps", numSteps)
	if err := database.MigrateUp(connString, numSteps); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	displayMigrationVersion(connString)
	return nil
}
