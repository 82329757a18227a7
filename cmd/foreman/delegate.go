package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/foreman/internal/config"
)

var (
	delegateTimeout     time.Duration
	delegateContext     []string
	delegateWorkersFile string
)

var delegateCmd = &cobra.Command{
	Use:   "delegate <worker> <task>",
	Short: "Run a single task on a named worker",
	Long: `Delegate bypasses the coordinator and runs one task directly on the
named specialist. Context values are passed as key=value pairs:

  foreman delegate coder "Fix the flaky importer test" -c repo=importer -c branch=main`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		extra := make(map[string]string, len(delegateContext))
		for _, kv := range delegateContext {
			key, value, ok := strings.Cut(kv, "=")
			if !ok {
				return fmt.Errorf("invalid context pair %q, want key=value", kv)
			}
			extra[key] = value
		}

		o, err := buildOrchestrator(cfg, delegateWorkersFile)
		if err != nil {
			return err
		}
		defer o.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		outcome, err := o.Delegate(ctx, args[0], args[1], extra, delegateTimeout)
		if err != nil {
			return err
		}

		if outcome.Success {
			color.Green("✓ %s (%s)", outcome.WorkerName, outcome.Duration.Round(time.Millisecond))
			fmt.Println(outcome.Result)
			return nil
		}
		color.Red("✗ %s: %s", outcome.WorkerName, outcome.Error)
		os.Exit(1)
		return nil
	},
}

func init() {
	delegateCmd.Flags().DurationVar(&delegateTimeout, "timeout", 0, "task timeout (default from config)")
	delegateCmd.Flags().StringArrayVarP(&delegateContext, "context", "c", nil, "context as key=value (repeatable)")
	delegateCmd.Flags().StringVar(&delegateWorkersFile, "workers", "", "path to a workers.yaml roster")
}
