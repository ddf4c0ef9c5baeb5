package app

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/stacklok/roster-sync/database"
)

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Migrate the database down",
	Long: `Migrate the database schema down by reverting migrations.
WARNING: reverting drops the tracking tables and everything mirrored so far is forgotten.

Examples:
  # Migrate down by 1 step
  roster-sync migrate down --config config.yaml --num-steps 1 --yes

  # Migrate down all the way
  roster-sync migrate down --config config.yaml --yes`,
	RunE: runMigrateDown,
}

func runMigrateDown(cmd *cobra.Command, _ []string) error {
	numSteps, err := cmd.Flags().GetUint("num-steps")
	if err != nil {
		return fmt.Errorf("failed to get num-steps flag: %w", err)
	}

	connString, err := migrationConnString()
	if err != nil {
		return err
	}

	if err := requireConfirmation(cmd, migrateDownPrompt(numSteps)); err != nil {
		return err
	}

	if numSteps == 0 {
		slog.Warn("Migrating down all steps, this will remove all tracking tables")
	} else {
		slog.Info("Migrating down", "steps", numSteps)
	}
	if err := database.MigrateDown(connString, numSteps); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	displayMigrationVersion(connString)
	return nil
}

func migrateDownPrompt(numSteps uint) string {
	if numSteps == 0 {
		return "WARNING: This will migrate down ALL steps and forget every mirrored section. Continue?"
	}
	return fmt.Sprintf("WARNING: This will migrate down %d step(s) and may result in data loss. Continue?", numSteps)
}
