// Package app provides the command line interface of the roster sync service.
package app

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/roster-sync/internal/versions"
)

var rootCmd = &cobra.Command{
	Use:               "roster-sync",
	DisableAutoGenTag: true,
	Short:             "SIS to LMS roster synchronization service",
	Long: `roster-sync mirrors course sections and student enrollments from the student
information system into the LMS tenant of each configured institution.

It applies SIS change events as they arrive, periodically reconciles every current
term, and exposes an admin API for section and student operations.`,
	Run: func(cmd *cobra.Command, _ []string) {
		// If no subcommand is provided, print help
		if err := cmd.Help(); err != nil {
			slog.Error("Error displaying help", "error", err)
		}
	},
}

// NewRootCmd creates the root command with every subcommand attached
func NewRootCmd() *cobra.Command {
	rootCmd.PersistentFlags().String("config", "", "Path to configuration file (YAML format)")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		slog.Error("Error binding config flag", "error", err)
	}

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(reconcileCmd)
	rootCmd.AddCommand(syncStudentCmd)
	rootCmd.AddCommand(pollEventsCmd)

	return rootCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return fmt.Errorf("failed to get format flag: %w", err)
		}
		return printVersion(cmd, format)
	},
}

func init() {
	versionCmd.Flags().String("format", "", "Output format (json)")
}

func printVersion(cmd *cobra.Command, format string) error {
	info := versions.GetVersionInfo()
	if format == formatJSON {
		output, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format version info as JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(output))
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "roster-sync %s (commit %s, built %s, %s %s)\n",
		info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
	return nil
}
