package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/voiceforge-labs/voiceforge-cli/internal/core/services"
)

var queryLimit int

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve knowledge context for a query",
	Long: `Embeds the query, finds the nearest knowledge fragments in the
search index and prints them as numbered context blocks. This is the same
context a conversation would receive.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryLimit, "limit", "n", services.DefaultMaxResults, "maximum number of fragments")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	defer closeStorage()

	ctx := context.Background()
	if !retrievalService.Load(ctx) {
		cmd.Println("No knowledge base found. Run 'voiceforge ingest' first.")
		return nil
	}

	retrieved := retrievalService.RetrieveContext(ctx, args[0], queryLimit)
	if retrieved == "" {
		cmd.Println("No relevant context found.")
		return nil
	}

	cmd.Println(retrieved)
	return nil
}
