package app

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stacklok/roster-sync/internal/sis"
)

var syncStudentCmd = &cobra.Command{
	Use:   "sync-student",
	Short: "Bring one student's LMS enrollments for a term in line with the SIS",
	RunE:  runSyncStudent,
}

func init() {
	syncStudentCmd.Flags().String("institution", "", "Institution of the student (required)")
	syncStudentCmd.Flags().String("term", "", "Term code, e.g. 201812 (required)")
	syncStudentCmd.Flags().String("external-id", "", "SIS external id of the student (required)")

	for _, name := range []string{"institution", "term", "external-id"} {
		if err := syncStudentCmd.MarkFlagRequired(name); err != nil {
			panic(err)
		}
	}
}

func runSyncStudent(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	term, err := cmd.Flags().GetString("term")
	if err != nil {
		return fmt.Errorf("failed to get term flag: %w", err)
	}
	externalID, err := cmd.Flags().GetString("external-id")
	if err != nil {
		return fmt.Errorf("failed to get external-id flag: %w", err)
	}

	components, release, err := oneShot(ctx)
	if err != nil {
		return err
	}
	defer release()

	inst, err := institution(cmd, components)
	if err != nil {
		return err
	}

	person, err := components.Store.GetPerson(ctx, sis.ByExternalID(externalID))
	if err != nil {
		return fmt.Errorf("failed to find student %s: %w", externalID, err)
	}

	changes, err := inst.Operations.SyncStudent(ctx, term, person)
	if err != nil {
		return fmt.Errorf("failed to sync student %s: %w", externalID, err)
	}

	out := cmd.OutOrStdout()
	if len(changes) == 0 {
		fmt.Fprintf(out, "%s is already in sync for %s\n", externalID, term)
		return nil
	}
	for _, change := range changes {
		fmt.Fprintln(out, change)
	}
	return nil
}
