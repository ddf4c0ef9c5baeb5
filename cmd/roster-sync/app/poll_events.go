package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/stacklok/roster-sync/internal/events"
)

var pollEventsCmd = &cobra.Command{
	Use:   "poll-events",
	Short: "Apply pending SIS change events once",
	Long: `Fetch one batch of pending SIS change events and apply them.

With --drain batches are polled until the queue is empty or a batch makes no
progress, i.e. every fetched event was retained for a later retry.`,
	RunE: runPollEvents,
}

func init() {
	pollEventsCmd.Flags().Bool("drain", false, "Keep polling until the queue is empty")
}

func runPollEvents(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	drain, err := cmd.Flags().GetBool("drain")
	if err != nil {
		return fmt.Errorf("failed to get drain flag: %w", err)
	}

	components, release, err := oneShot(ctx)
	if err != nil {
		return err
	}
	defer release()

	total, err := pollEvents(ctx, components.Dispatcher, drain)
	if err != nil {
		return err
	}
	return printSummary(cmd.OutOrStdout(), total)
}

// pollEvents polls once, or until no batch makes progress when drain is set
func pollEvents(ctx context.Context, d events.Dispatcher, drain bool) (*events.Summary, error) {
	total := &events.Summary{}
	for {
		summary, err := d.PollOnce(ctx)
		if err != nil {
			return total, fmt.Errorf("failed to poll events: %w", err)
		}
		total.Fetched += summary.Fetched
		total.Applied += summary.Applied
		total.Rejected += summary.Rejected
		total.Retained += summary.Retained

		if !drain || summary.Applied+summary.Rejected == 0 || ctx.Err() != nil {
			return total, nil
		}
		slog.Debug("Polling next batch", "fetched", summary.Fetched)
	}
}

func printSummary(w io.Writer, s *events.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
