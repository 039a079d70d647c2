// Package cli implements the voiceforge command line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/voiceforge-labs/voiceforge-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "voiceforge",
	Short: "Knowledge pipeline and configuration derivation for AI voice agents",
	Long: `VoiceForge maintains the knowledge base and generated configuration
for an AI voice agent.

It ingests knowledge documents into an embedding-backed search index,
serves relevant context to conversations, and derives the agent's prompt
and first message from conversation transcripts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&baseDirFlag, "base-dir", "", "base directory for configuration and data (default ~/.voiceforge)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}
