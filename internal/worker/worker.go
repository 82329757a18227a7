// Package worker defines the worker-capability boundary consumed by the
// orchestration engine, and an Anthropic-backed implementation of it.
package worker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// Worker is an abstract unit that accepts a task description plus optional
// context and returns a text result. Internal reasoning is opaque to the
// orchestration core; implementations must honor ctx cancellation so the
// caller can enforce timeouts.
type Worker interface {
	// Run executes the task and returns the worker's text output.
	Run(ctx context.Context, task string, extra map[string]string) (string, error)

	// Status returns a snapshot of the worker's message count, workspace,
	// and token usage.
	Status() models.WorkerStatus
}

// Factory creates Worker instances from specs. This allows the orchestrator
// to switch between API-backed workers and fakes in tests.
type Factory interface {
	// NewWorker creates a worker for the given spec.
	NewWorker(spec models.WorkerSpec) (Worker, error)
}

// Failure wraps an error raised inside a worker's run so the orchestration
// layer can surface the message verbatim plus a categorized kind.
type Failure struct {
	// WorkerName is the worker that failed.
	WorkerName string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("worker %s: %v", f.WorkerName, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error {
	return f.Err
}

// FormatContext flattens a key/value context map into the human-readable
// block that is prepended to a worker's task message. Keys are sorted so the
// rendered block is deterministic.
func FormatContext(header string, kv map[string]string) string {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("[" + header + "]")
	for _, k := range keys {
		fmt.Fprintf(&b, "\n- %s: %s", k, kv[k])
	}
	return b.String()
}
