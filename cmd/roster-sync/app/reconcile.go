package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/roster-sync/internal/reconcile"
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile the current terms of one institution",
	Long: `Run the reconciliation job of one institution once and print the per-term reports.

With --dry-run the differences between the SIS and the LMS are reported without
enrolling or dropping anyone.`,
	RunE: runReconcile,
}

func init() {
	reconcileCmd.Flags().String("institution", "", "Institution to reconcile (required)")
	reconcileCmd.Flags().Bool("dry-run", false, "Report differences without correcting them")
	reconcileCmd.Flags().String("format", formatTable, "Output format (table or json)")

	if err := reconcileCmd.MarkFlagRequired("institution"); err != nil {
		panic(err)
	}
}

func runReconcile(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return fmt.Errorf("failed to get dry-run flag: %w", err)
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
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

	reports, err := inst.Engine.Run(ctx, reconcile.RunOptions{DryRun: dryRun})
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}
	return printReports(cmd.OutOrStdout(), reports, format)
}

// printReports writes one row per term, or the reports as JSON
func printReports(w io.Writer, reports []*reconcile.Report, format string) error {
	if format == formatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	table := tablewriter.NewWriter(w)
	table.Header("Term", "LMS Term", "SIS", "LMS", "Missing Adds", "Added", "Missing Drops", "Dropped", "Failures", "Duration")
	for _, r := range reports {
		row := []string{
			r.Term,
			r.EnrollmentTermName,
			strconv.Itoa(r.SourceCount),
			strconv.Itoa(r.TargetCount),
			strconv.Itoa(r.MissingEnrollments),
			strconv.Itoa(r.CorrectedEnrollments),
			strconv.Itoa(r.MissingDrops),
			strconv.Itoa(r.CorrectedDrops),
			strconv.Itoa(r.Failures),
			r.Duration().Round(time.Millisecond).String(),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to render report: %w", err)
		}
	}
	return table.Render()
}
