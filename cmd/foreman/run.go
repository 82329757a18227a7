package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/foreman/internal/config"
	"github.com/ShayCichocki/foreman/internal/orchestrator"
	"github.com/ShayCichocki/foreman/internal/tui"
	"github.com/ShayCichocki/foreman/pkg/models"
)

var (
	runMode        string
	runFormat      string
	runTUI         bool
	runWatch       bool
	runWorkersFile string
)

// batchFile is the on-disk shape of a batch submission.
type batchFile struct {
	Mode  string             `yaml:"mode"`
	Tasks []models.BatchTask `yaml:"tasks"`
}

var runCmd = &cobra.Command{
	Use:   "run <batch.yaml>",
	Short: "Execute a batch of tasks across the specialist workers",
	Long: `Run reads a batch file and executes its tasks. Tasks with an agent
are delegated directly; tasks without one are routed by keyword.

Example batch file:

  mode: auto
  tasks:
    - agent: coder
      task: Implement the CSV importer
      priority: 5
    - task: Verify the importer against the sample files`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read batch file: %w", err)
		}
		var batch batchFile
		if err := yaml.Unmarshal(data, &batch); err != nil {
			return fmt.Errorf("parse batch file: %w", err)
		}
		if len(batch.Tasks) == 0 {
			return fmt.Errorf("batch file %s defines no tasks", args[0])
		}

		mode := models.ExecMode(runMode)
		if runMode == "" {
			if batch.Mode != "" {
				mode = models.ExecMode(batch.Mode)
			} else {
				mode = models.ExecMode(cfg.Defaults.Mode)
			}
		}
		if !mode.Valid() {
			return fmt.Errorf("invalid execution mode: %q", mode)
		}

		o, err := buildOrchestrator(cfg, runWorkersFile)
		if err != nil {
			return err
		}
		defer o.Close()

		if runWatch {
			path := runWorkersFile
			if path == "" {
				path = cfg.Defaults.WorkersFile
			}
			if path == "" {
				return fmt.Errorf("--watch requires a workers file (--workers or defaults.workers_file)")
			}
			watcher, err := config.WatchWorkers(path, func(specs []models.WorkerSpec) {
				applyRoster(o, specs)
			})
			if err != nil {
				return fmt.Errorf("watch workers file: %w", err)
			}
			defer watcher.Close()
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		var events chan orchestrator.Event
		var tuiDone chan error
		if runTUI {
			events = make(chan orchestrator.Event, 64)
			tuiDone = make(chan error, 1)
			o.Executor().SetEventHandler(func(ev orchestrator.Event) {
				select {
				case events <- ev:
				default:
				}
			})
			go func() {
				tuiDone <- tui.Run(events)
			}()
		}

		result, err := o.ExecuteBatch(ctx, batch.Tasks, mode)
		if runTUI {
			close(events)
			<-tuiDone
		}
		if err != nil {
			return err
		}

		return printResult(o, result, runFormat)
	},
}

// applyRoster reconciles the live registry with a freshly loaded roster:
// new names are registered, names no longer in the file are removed.
func applyRoster(o *orchestrator.Orchestrator, specs []models.WorkerSpec) {
	want := make(map[string]bool, len(specs))
	for _, spec := range specs {
		want[spec.Name] = true
		if _, ok := o.GetWorker(spec.Name); ok {
			continue
		}
		if err := o.AddWorker(spec); err != nil {
			fmt.Fprintf(os.Stderr, "add worker %s: %v\n", spec.Name, err)
		}
	}
	for _, name := range o.Status().WorkerNames {
		if want[name] {
			continue
		}
		if err := o.RemoveWorker(name); err != nil {
			fmt.Fprintf(os.Stderr, "remove worker %s: %v\n", name, err)
		}
	}
}

// printResult renders an aggregated result to stdout.
func printResult(o *orchestrator.Orchestrator, result *models.AggregatedResult, format string) error {
	if format != "" && format != "text" {
		out, err := o.Aggregator().Format(result, format)
		if err != nil {
			return err
		}
		fmt.Println(out)
		return nil
	}

	switch result.OverallStatus {
	case models.StatusSuccess:
		color.Green("✓ %s", result.OverallStatus)
	case models.StatusPartial:
		color.Yellow("◐ %s", result.OverallStatus)
	default:
		color.Red("✗ %s", result.OverallStatus)
	}

	fmt.Println(result.Summary)
	if len(result.Errors) > 0 {
		fmt.Println()
		color.Red("Errors:")
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
	return nil
}

func init() {
	runCmd.Flags().StringVar(&runMode, "mode", "", "execution mode: auto, parallel, sequential or thread")
	runCmd.Flags().StringVar(&runFormat, "format", "text", "output format: text, json or markdown")
	runCmd.Flags().BoolVar(&runTUI, "tui", false, "show the live progress monitor")
	runCmd.Flags().BoolVar(&runWatch, "watch", false, "hot-reload the workers file during the run")
	runCmd.Flags().StringVar(&runWorkersFile, "workers", "", "path to a workers.yaml roster")
}
