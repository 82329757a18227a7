// Package config handles configuration loading and management for Foreman.
// It supports XDG config paths, project-level overrides, and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for Foreman.
type Config struct {
	Anthropic AnthropicConfig `mapstructure:"anthropic"`
	Defaults  DefaultsConfig  `mapstructure:"defaults"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Execution ExecutionConfig `mapstructure:"execution"`
	TUI       TUIConfig       `mapstructure:"tui"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// UseAWSBedrock routes requests through AWS Bedrock instead of the
	// Anthropic API directly.
	UseAWSBedrock bool   `mapstructure:"use_aws_bedrock"`
	AWSRegion     string `mapstructure:"aws_region"`
	AWSProfile    string `mapstructure:"aws_profile"`
}

// DefaultsConfig holds default values for Foreman runs.
type DefaultsConfig struct {
	// Workspace is the base directory workers operate under.
	Workspace string `mapstructure:"workspace"`
	// Mode is the default execution mode for batches.
	Mode string `mapstructure:"mode"`
	// TaskTimeout is the per-task timeout.
	TaskTimeout time.Duration `mapstructure:"task_timeout"`
	// WorkersFile points to the worker roster YAML.
	WorkersFile string `mapstructure:"workers_file"`
	// CoordinatorMaxSteps bounds the coordinator's agent loop.
	CoordinatorMaxSteps int `mapstructure:"coordinator_max_steps"`
}

// RoutingConfig holds task-routing toggles.
type RoutingConfig struct {
	LoadBalancing bool `mapstructure:"load_balancing"`
	Caching       bool `mapstructure:"caching"`
}

// ExecutionConfig holds batch-execution limits. Zero values mean
// host-derived defaults.
type ExecutionConfig struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
	PoolSize      int `mapstructure:"pool_size"`
	BatchMaxSize  int `mapstructure:"batch_max_size"`
}

// TUIConfig holds TUI display settings.
type TUIConfig struct {
	RefreshRate time.Duration `mapstructure:"refresh_rate"`
}

// Load loads configuration from XDG paths, project overrides, and environment variables.
// Precedence (highest to lowest):
// 1. Environment variables (ANTHROPIC_API_KEY)
// 2. Project config (.foreman.yaml in current directory or parent)
// 3. User config (~/.config/foreman/config.yaml)
// 4. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	userConfigDir := getUserConfigDir()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(userConfigDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	projectConfig := findProjectConfig()
	if projectConfig != "" {
		projectViper := viper.New()
		projectViper.SetConfigFile(projectConfig)
		if err := projectViper.ReadInConfig(); err == nil {
			if err := v.MergeConfigMap(projectViper.AllSettings()); err != nil {
				return nil, fmt.Errorf("merging project config: %w", err)
			}
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("")
	v.BindEnv("anthropic.api_key", "ANTHROPIC_API_KEY")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// LoadFromPath loads configuration from a specific path (for testing).
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.Anthropic.APIKey = os.ExpandEnv(cfg.Anthropic.APIKey)

	return cfg, nil
}

// Save writes the current configuration to the user config file.
func Save(cfg *Config) error {
	userConfigDir := getUserConfigDir()
	if err := os.MkdirAll(userConfigDir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath := filepath.Join(userConfigDir, "config.yaml")

	v := viper.New()
	v.SetConfigFile(configPath)

	v.Set("anthropic.api_key", cfg.Anthropic.APIKey)
	v.Set("anthropic.model", cfg.Anthropic.Model)
	v.Set("anthropic.use_aws_bedrock", cfg.Anthropic.UseAWSBedrock)
	v.Set("anthropic.aws_region", cfg.Anthropic.AWSRegion)
	v.Set("anthropic.aws_profile", cfg.Anthropic.AWSProfile)
	v.Set("defaults.workspace", cfg.Defaults.Workspace)
	v.Set("defaults.mode", cfg.Defaults.Mode)
	v.Set("defaults.task_timeout", cfg.Defaults.TaskTimeout.String())
	v.Set("defaults.workers_file", cfg.Defaults.WorkersFile)
	v.Set("defaults.coordinator_max_steps", cfg.Defaults.CoordinatorMaxSteps)
	v.Set("routing.load_balancing", cfg.Routing.LoadBalancing)
	v.Set("routing.caching", cfg.Routing.Caching)
	v.Set("execution.max_concurrent", cfg.Execution.MaxConcurrent)
	v.Set("execution.pool_size", cfg.Execution.PoolSize)
	v.Set("execution.batch_max_size", cfg.Execution.BatchMaxSize)
	v.Set("tui.refresh_rate", cfg.TUI.RefreshRate.String())

	return v.WriteConfig()
}

// GetUserConfigPath returns the path to the user config file.
func GetUserConfigPath() string {
	return filepath.Join(getUserConfigDir(), "config.yaml")
}

// GetProjectConfigPath returns the path to the project config file if it exists.
func GetProjectConfigPath() string {
	return findProjectConfig()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("anthropic.api_key", "")
	v.SetDefault("anthropic.model", "")
	v.SetDefault("anthropic.use_aws_bedrock", false)

	v.SetDefault("defaults.workspace", "./workspace")
	v.SetDefault("defaults.mode", "auto")
	v.SetDefault("defaults.task_timeout", "300s")
	v.SetDefault("defaults.workers_file", "")
	v.SetDefault("defaults.coordinator_max_steps", 50)

	v.SetDefault("routing.load_balancing", true)
	v.SetDefault("routing.caching", true)

	v.SetDefault("execution.max_concurrent", 0)
	v.SetDefault("execution.pool_size", 0)
	v.SetDefault("execution.batch_max_size", 100)

	v.SetDefault("tui.refresh_rate", "100ms")
}

// getUserConfigDir returns the XDG config directory for Foreman.
func getUserConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "foreman")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".config", "foreman")
	}
	return filepath.Join(home, ".config", "foreman")
}

// findProjectConfig searches for .foreman.yaml in the current directory and parents.
func findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		configPath := filepath.Join(cwd, ".foreman.yaml")
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(cwd)
		if parent == cwd {
			break
		}
		cwd = parent
	}

	return ""
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Defaults: DefaultsConfig{
			Workspace:           "./workspace",
			Mode:                "auto",
			TaskTimeout:         300 * time.Second,
			CoordinatorMaxSteps: 50,
		},
		Routing: RoutingConfig{
			LoadBalancing: true,
			Caching:       true,
		},
		Execution: ExecutionConfig{
			BatchMaxSize: 100,
		},
		TUI: TUIConfig{
			RefreshRate: 100 * time.Millisecond,
		},
	}
}
