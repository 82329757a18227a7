package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "foreman",
	Short: "Multi-agent task orchestration engine",
	Long: `Foreman coordinates a team of specialist Claude workers to complete
complex tasks: a coordinator plans and delegates, a keyword router assigns
unclaimed tasks, and an executor runs batches in parallel, sequential or
pooled mode with per-task timeouts and failure isolation.

Core capabilities:
- Routes tasks to the best-matching specialist by content
- Executes batches under an automatically chosen strategy
- Captures per-task failures without failing the batch
- Aggregates outcomes into a deduplicated summary`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(delegateCmd)
	rootCmd.AddCommand(workersCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
