// Package orchestrator coordinates a pool of worker agents: it classifies
// incoming work, routes it to the best-matched worker, dispatches with
// bounded concurrency, and rolls heterogeneous outcomes into one report.
package orchestrator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/ShayCichocki/foreman/internal/worker"
)

// WorkerRegistry is a thread-safe named set of worker capabilities.
// Registry mutations can race with in-flight routing and execution, so all
// access goes through the mutex.
type WorkerRegistry struct {
	// workers maps worker names to their capabilities.
	workers map[string]worker.Worker
	// mu protects workers.
	mu sync.RWMutex
}

// NewWorkerRegistry creates an empty registry.
func NewWorkerRegistry() *WorkerRegistry {
	return &WorkerRegistry{
		workers: make(map[string]worker.Worker),
	}
}

// Add registers a worker under the given name.
// Returns ErrDuplicateWorker if the name is taken.
func (r *WorkerRegistry) Add(name string, w worker.Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateWorker, name)
	}
	r.workers[name] = w
	return nil
}

// Remove unregisters a worker.
// Returns ErrUnknownWorker if the name is not registered.
func (r *WorkerRegistry) Remove(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[name]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownWorker, name)
	}
	delete(r.workers, name)
	return nil
}

// Get retrieves a worker by name. The second return is false if the name is
// not registered.
func (r *WorkerRegistry) Get(name string) (worker.Worker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[name]
	return w, ok
}

// Names returns the registered worker names in sorted order.
func (r *WorkerRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.workers))
	for name := range r.workers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered workers.
func (r *WorkerRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers)
}

// Snapshot returns a copy of the name→worker map, so callers can iterate
// without holding the registry lock across worker calls.
func (r *WorkerRegistry) Snapshot() map[string]worker.Worker {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snap := make(map[string]worker.Worker, len(r.workers))
	for name, w := range r.workers {
		snap[name] = w
	}
	return snap
}
