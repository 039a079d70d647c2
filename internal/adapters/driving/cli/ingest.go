package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Process new knowledge documents into the search index",
	Long: `Scans the knowledge directory for documents not yet processed,
extracts their text, embeds each paragraph and adds the results to the
search index. Already-processed files are skipped.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeStorage()

	ctx := context.Background()
	added, err := ingestService.RunIngestion(ctx)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	status, statusErr := ingestService.Status(ctx)
	if !added {
		cmd.Println("No new knowledge files to process.")
		if statusErr == nil && status.ErrorCount > 0 {
			cmd.Printf("%d file(s) failed and will be retried on the next run.\n", status.ErrorCount)
		}
		return nil
	}

	if statusErr == nil {
		cmd.Printf("Knowledge base updated: %d file(s) processed, %d fragment(s) added.\n",
			status.DocumentsProcessed, status.FragmentsAdded)
		if status.ErrorCount > 0 {
			cmd.Printf("%d file(s) failed and will be retried on the next run.\n", status.ErrorCount)
		}
	} else {
		cmd.Println("Knowledge base updated.")
	}
	return nil
}
