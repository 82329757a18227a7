package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ShayCichocki/foreman/pkg/models"
)

func TestDefaultWorkerSpecs(t *testing.T) {
	specs := DefaultWorkerSpecs()

	if len(specs) != 7 {
		t.Fatalf("expected 7 default workers, got %d", len(specs))
	}

	seen := make(map[string]bool)
	for _, spec := range specs {
		if spec.Name == "" || spec.SystemPrompt == "" {
			t.Errorf("incomplete spec: %+v", spec)
		}
		if seen[spec.Name] {
			t.Errorf("duplicate default worker %q", spec.Name)
		}
		seen[spec.Name] = true
	}
	for _, name := range []string{"coder", "tester", "researcher"} {
		if !seen[name] {
			t.Errorf("missing default worker %q", name)
		}
	}
}

func TestLoadWorkerSpecs(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "workers.yaml")

	content := `
workers:
  - name: coder
    system_prompt: You write code.
    max_steps: 20
    keywords: [golang, rust]
  - name: tester
    system_prompt: You test code.
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write workers file: %v", err)
	}

	specs, err := LoadWorkerSpecs(path)
	if err != nil {
		t.Fatalf("LoadWorkerSpecs failed: %v", err)
	}

	if len(specs) != 2 {
		t.Fatalf("expected 2 workers, got %d", len(specs))
	}
	if specs[0].Name != "coder" || specs[0].MaxSteps != 20 {
		t.Errorf("coder spec wrong: %+v", specs[0])
	}
	if len(specs[0].Keywords) != 2 || specs[0].Keywords[0] != "golang" {
		t.Errorf("coder keywords wrong: %v", specs[0].Keywords)
	}
}

func TestLoadWorkerSpecsEmptyPathUsesDefaults(t *testing.T) {
	specs, err := LoadWorkerSpecs("")
	if err != nil {
		t.Fatalf("LoadWorkerSpecs(\"\") failed: %v", err)
	}
	if len(specs) != len(DefaultWorkerSpecs()) {
		t.Errorf("expected default roster, got %d workers", len(specs))
	}
}

func TestLoadWorkerSpecsValidation(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no workers", "workers: []\n", "no workers"},
		{"missing name", "workers:\n  - system_prompt: hi\n", "has no name"},
		{"missing prompt", "workers:\n  - name: coder\n", "no system prompt"},
		{"duplicate name", "workers:\n  - {name: coder, system_prompt: a}\n  - {name: coder, system_prompt: b}\n", "duplicate"},
		{"bad yaml", "workers: [\n", "parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, strings.ReplaceAll(tt.name, " ", "_")+".yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := LoadWorkerSpecs(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestSaveWorkerSpecsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workers.yaml")
	in := []models.WorkerSpec{{Name: "coder", SystemPrompt: "You write code.", Keywords: []string{"go"}}}

	if err := SaveWorkerSpecs(path, in); err != nil {
		t.Fatalf("SaveWorkerSpecs failed: %v", err)
	}
	out, err := LoadWorkerSpecs(path)
	if err != nil {
		t.Fatalf("LoadWorkerSpecs failed: %v", err)
	}
	if len(out) != 1 || out[0].Name != "coder" || out[0].Keywords[0] != "go" {
		t.Errorf("round trip lost data: %+v", out)
	}
}

func TestWatchWorkersReload(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "workers.yaml")
	initial := "workers:\n  - {name: coder, system_prompt: You write code.}\n"
	if err := os.WriteFile(path, []byte(initial), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan []models.WorkerSpec, 1)
	w, err := WatchWorkers(path, func(specs []models.WorkerSpec) {
		select {
		case reloaded <- specs:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchWorkers failed: %v", err)
	}
	defer w.Close()

	updated := initial + "  - {name: tester, system_prompt: You test code.}\n"
	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case specs := <-reloaded:
		if len(specs) != 2 {
			t.Errorf("reloaded %d workers, want 2", len(specs))
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not deliver a reload")
	}
}

func TestWatchWorkersIgnoresBrokenFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "workers.yaml")
	if err := os.WriteFile(path, []byte("workers:\n  - {name: coder, system_prompt: hi}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan struct{}, 1)
	w, err := WatchWorkers(path, func([]models.WorkerSpec) {
		select {
		case reloaded <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("WatchWorkers failed: %v", err)
	}
	defer w.Close()

	if err := os.WriteFile(path, []byte("workers: [\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-reloaded:
		t.Error("broken roster must not trigger the callback")
	case <-time.After(600 * time.Millisecond):
	}
}
