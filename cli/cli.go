package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/trueflow-dev/trueflow/internal/logging"
)

const trueflowVersion = "0.1.0"

var rootCmd = &cobra.Command{
	Use:   "trueflow",
	Short: "trueflow is a semantic code-review engine",
	Long: `trueflow decomposes source files into language-aware, content-addressed
blocks, organizes them into a Merkle tree over the repository, and records
per-block review verdicts in an append-only log synchronized through a
dedicated VCS ref.`,
	Version: trueflowVersion,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
	},
}

var verbose bool

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(markCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(configCmd)
}
