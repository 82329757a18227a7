package main

import (
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/ShayCichocki/foreman/internal/api"
	"github.com/ShayCichocki/foreman/internal/config"
	"github.com/ShayCichocki/foreman/internal/orchestrator"
	"github.com/ShayCichocki/foreman/internal/worker"
)

// buildOrchestrator wires the full engine from configuration: API client,
// worker factory, roster and orchestrator options.
func buildOrchestrator(cfg *config.Config, workersFile string) (*orchestrator.Orchestrator, error) {
	apiKey, err := config.GetAPIKey(cfg)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        apiKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}

	if workersFile == "" {
		workersFile = cfg.Defaults.WorkersFile
	}
	specs, err := config.LoadWorkerSpecs(workersFile)
	if err != nil {
		return nil, err
	}

	opts := orchestrator.DefaultOptions()
	opts.Workspace = cfg.Defaults.Workspace
	opts.CoordinatorMaxSteps = cfg.Defaults.CoordinatorMaxSteps
	opts.DefaultTimeout = cfg.Defaults.TaskTimeout
	opts.Router.EnableLoadBalancing = cfg.Routing.LoadBalancing
	opts.Router.EnableCaching = cfg.Routing.Caching
	opts.Executor.DefaultTimeout = cfg.Defaults.TaskTimeout
	if cfg.Execution.MaxConcurrent > 0 {
		opts.Executor.MaxConcurrent = cfg.Execution.MaxConcurrent
	}
	if cfg.Execution.PoolSize > 0 {
		opts.Executor.PoolSize = cfg.Execution.PoolSize
	}
	if cfg.Execution.BatchMaxSize > 0 {
		opts.Executor.BatchMaxSize = cfg.Execution.BatchMaxSize
	}

	cwd, _ := os.Getwd()
	opts.Logger = orchestrator.NewDebugLoggerForDir(cwd)

	return orchestrator.New(&worker.APIFactory{Client: client}, specs, opts)
}
