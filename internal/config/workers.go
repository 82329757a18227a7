package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// WorkersFile is the on-disk shape of a worker roster.
type WorkersFile struct {
	Workers []models.WorkerSpec `yaml:"workers"`
}

// LoadWorkerSpecs reads a worker roster from a YAML file. An empty path
// returns the built-in default roster.
func LoadWorkerSpecs(path string) ([]models.WorkerSpec, error) {
	if path == "" {
		return DefaultWorkerSpecs(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read workers file: %w", err)
	}

	var file WorkersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse workers file %s: %w", path, err)
	}
	if len(file.Workers) == 0 {
		return nil, fmt.Errorf("workers file %s defines no workers", path)
	}

	seen := make(map[string]struct{}, len(file.Workers))
	for i, spec := range file.Workers {
		if spec.Name == "" {
			return nil, fmt.Errorf("workers file %s: worker %d has no name", path, i)
		}
		if _, dup := seen[spec.Name]; dup {
			return nil, fmt.Errorf("workers file %s: duplicate worker %q", path, spec.Name)
		}
		seen[spec.Name] = struct{}{}
		if spec.SystemPrompt == "" {
			return nil, fmt.Errorf("workers file %s: worker %q has no system prompt", path, spec.Name)
		}
	}

	return file.Workers, nil
}

// SaveWorkerSpecs writes a worker roster to a YAML file.
func SaveWorkerSpecs(path string, specs []models.WorkerSpec) error {
	data, err := yaml.Marshal(WorkersFile{Workers: specs})
	if err != nil {
		return fmt.Errorf("marshal workers: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write workers file: %w", err)
	}
	return nil
}

// DefaultWorkerSpecs returns the built-in specialist roster used when no
// workers file is configured.
func DefaultWorkerSpecs() []models.WorkerSpec {
	return []models.WorkerSpec{
		{
			Name:         "coder",
			SystemPrompt: "You are a senior software engineer. You write clean, tested, working code and debug problems methodically. Keep changes minimal and explain what you changed.",
		},
		{
			Name:         "designer",
			SystemPrompt: "You are a product designer. You produce layouts, visual structure and presentation material, and you describe design decisions concretely.",
		},
		{
			Name:         "researcher",
			SystemPrompt: "You are a research analyst. You investigate topics, compare sources and produce structured findings with the evidence for each claim.",
		},
		{
			Name:         "tester",
			SystemPrompt: "You are a QA engineer. You design test plans, find edge cases and verify behavior against requirements. Report failures precisely.",
		},
		{
			Name:         "deployer",
			SystemPrompt: "You are an infrastructure engineer. You handle deployment, containers and release operations, and you favor reproducible steps over manual ones.",
		},
		{
			Name:         "analyst",
			SystemPrompt: "You are a data analyst. You summarize datasets, compute statistics and surface the insights that matter, with the numbers to back them.",
		},
		{
			Name:         "documenter",
			SystemPrompt: "You are a technical writer. You produce clear documentation, READMEs and guides aimed at the reader's level of context.",
		},
	}
}
