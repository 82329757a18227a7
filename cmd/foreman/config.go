package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/foreman/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify Foreman configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/foreman/config.yaml
Project-specific overrides can be placed in .foreman.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		switch len(args) {
		case 0:
			displayAllConfig(cfg)
		case 1:
			displayConfigKey(cfg, args[0])
		default:
			setConfigKey(cfg, args[0], args[1])
		}
	},
}

// displayAllConfig prints all configuration values.
func displayAllConfig(cfg *config.Config) {
	fmt.Printf("anthropic.api_key: %s (source: %s)\n",
		config.MaskAPIKey(cfg.Anthropic.APIKey), config.GetCredentialSource(cfg))
	fmt.Printf("anthropic.model: %s\n", cfg.Anthropic.Model)
	fmt.Printf("anthropic.use_aws_bedrock: %t\n", cfg.Anthropic.UseAWSBedrock)
	fmt.Printf("anthropic.aws_region: %s\n", cfg.Anthropic.AWSRegion)
	fmt.Printf("anthropic.aws_profile: %s\n", cfg.Anthropic.AWSProfile)
	fmt.Printf("defaults.workspace: %s\n", cfg.Defaults.Workspace)
	fmt.Printf("defaults.mode: %s\n", cfg.Defaults.Mode)
	fmt.Printf("defaults.task_timeout: %s\n", cfg.Defaults.TaskTimeout)
	fmt.Printf("defaults.workers_file: %s\n", cfg.Defaults.WorkersFile)
	fmt.Printf("defaults.coordinator_max_steps: %d\n", cfg.Defaults.CoordinatorMaxSteps)
	fmt.Printf("routing.load_balancing: %t\n", cfg.Routing.LoadBalancing)
	fmt.Printf("routing.caching: %t\n", cfg.Routing.Caching)
	fmt.Printf("execution.max_concurrent: %d\n", cfg.Execution.MaxConcurrent)
	fmt.Printf("execution.pool_size: %d\n", cfg.Execution.PoolSize)
	fmt.Printf("execution.batch_max_size: %d\n", cfg.Execution.BatchMaxSize)
	fmt.Printf("tui.refresh_rate: %s\n", cfg.TUI.RefreshRate)
}

// displayConfigKey prints a single configuration value.
func displayConfigKey(cfg *config.Config, key string) {
	value, err := getConfigValue(cfg, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(value)
}

// setConfigKey sets a configuration value and saves the config.
func setConfigKey(cfg *config.Config, key, value string) {
	if err := setConfigValue(cfg, key, value); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := config.Save(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Set %s = %s\n", key, value)
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.Config, key string) (string, error) {
	switch key {
	case "anthropic.api_key":
		return config.MaskAPIKey(cfg.Anthropic.APIKey), nil
	case "anthropic.model":
		return cfg.Anthropic.Model, nil
	case "anthropic.use_aws_bedrock":
		return strconv.FormatBool(cfg.Anthropic.UseAWSBedrock), nil
	case "anthropic.aws_region":
		return cfg.Anthropic.AWSRegion, nil
	case "anthropic.aws_profile":
		return cfg.Anthropic.AWSProfile, nil
	case "defaults.workspace":
		return cfg.Defaults.Workspace, nil
	case "defaults.mode":
		return cfg.Defaults.Mode, nil
	case "defaults.task_timeout":
		return cfg.Defaults.TaskTimeout.String(), nil
	case "defaults.workers_file":
		return cfg.Defaults.WorkersFile, nil
	case "defaults.coordinator_max_steps":
		return strconv.Itoa(cfg.Defaults.CoordinatorMaxSteps), nil
	case "routing.load_balancing":
		return strconv.FormatBool(cfg.Routing.LoadBalancing), nil
	case "routing.caching":
		return strconv.FormatBool(cfg.Routing.Caching), nil
	case "execution.max_concurrent":
		return strconv.Itoa(cfg.Execution.MaxConcurrent), nil
	case "execution.pool_size":
		return strconv.Itoa(cfg.Execution.PoolSize), nil
	case "execution.batch_max_size":
		return strconv.Itoa(cfg.Execution.BatchMaxSize), nil
	case "tui.refresh_rate":
		return cfg.TUI.RefreshRate.String(), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "anthropic.api_key":
		cfg.Anthropic.APIKey = value
	case "anthropic.model":
		cfg.Anthropic.Model = value
	case "anthropic.use_aws_bedrock":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Anthropic.UseAWSBedrock = b
	case "anthropic.aws_region":
		cfg.Anthropic.AWSRegion = value
	case "anthropic.aws_profile":
		cfg.Anthropic.AWSProfile = value
	case "defaults.workspace":
		cfg.Defaults.Workspace = value
	case "defaults.mode":
		cfg.Defaults.Mode = value
	case "defaults.task_timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.Defaults.TaskTimeout = d
	case "defaults.workers_file":
		cfg.Defaults.WorkersFile = value
	case "defaults.coordinator_max_steps":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Defaults.CoordinatorMaxSteps = n
	case "routing.load_balancing":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Routing.LoadBalancing = b
	case "routing.caching":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %s", key, value)
		}
		cfg.Routing.Caching = b
	case "execution.max_concurrent":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Execution.MaxConcurrent = n
	case "execution.pool_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Execution.PoolSize = n
	case "execution.batch_max_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %s", key, value)
		}
		cfg.Execution.BatchMaxSize = n
	case "tui.refresh_rate":
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration for %s: %s", key, value)
		}
		cfg.TUI.RefreshRate = d
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}
