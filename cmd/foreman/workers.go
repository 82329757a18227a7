package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/foreman/internal/config"
)

var workersFileFlag string

var workersCmd = &cobra.Command{
	Use:   "workers",
	Short: "List the configured worker roster",
	Long: `Workers prints the roster Foreman would run with: either the built-in
specialists or the contents of a workers.yaml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := workersFileFlag
		if path == "" {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			path = cfg.Defaults.WorkersFile
		}

		specs, err := config.LoadWorkerSpecs(path)
		if err != nil {
			return err
		}

		if path == "" {
			fmt.Println("Built-in roster:")
		} else {
			fmt.Printf("Roster from %s:\n", path)
		}
		for _, spec := range specs {
			color.Cyan("  %s", spec.Name)
			desc := strings.SplitN(strings.TrimSpace(spec.SystemPrompt), "\n", 2)[0]
			fmt.Printf("    %s\n", desc)
			if len(spec.Keywords) > 0 {
				fmt.Printf("    keywords: %s\n", strings.Join(spec.Keywords, ", "))
			}
		}
		return nil
	},
}

func init() {
	workersCmd.Flags().StringVar(&workersFileFlag, "workers", "", "path to a workers.yaml roster")
}
