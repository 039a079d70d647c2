package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run both pipelines continuously",
	Long: `Polls the knowledge and transcript directories on a fixed interval
and processes whatever is new: knowledge documents are ingested into the
search index, transcripts are derived into the agent's prompt and first
message. Runs until interrupted; in-flight work completes before exit.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeStorage()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching for new knowledge files and transcripts. Press Ctrl+C to stop.")

	err := schedulerService.Start(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("Stopped.")
		return nil
	}
	return err
}
