package orchestrator

import (
	"context"
	"sync/atomic"

	"github.com/ShayCichocki/foreman/internal/worker"
	"github.com/ShayCichocki/foreman/pkg/models"
)

// stubWorker is a scriptable worker for tests.
type stubWorker struct {
	name string
	run  func(ctx context.Context, task string, extra map[string]string) (string, error)

	calls atomic.Int64
}

func (s *stubWorker) Run(ctx context.Context, task string, extra map[string]string) (string, error) {
	s.calls.Add(1)
	if s.run != nil {
		return s.run(ctx, task, extra)
	}
	return "done: " + task, nil
}

func (s *stubWorker) Status() models.WorkerStatus {
	return models.WorkerStatus{MessageCount: int(s.calls.Load())}
}

// stubFactory builds stubWorkers and records the specs it saw.
type stubFactory struct {
	specs []models.WorkerSpec
	run   func(ctx context.Context, task string, extra map[string]string) (string, error)
}

func (f *stubFactory) NewWorker(spec models.WorkerSpec) (worker.Worker, error) {
	f.specs = append(f.specs, spec)
	return &stubWorker{name: spec.Name, run: f.run}, nil
}

// newTestRegistry builds a registry with stub workers under the given names.
func newTestRegistry(names ...string) *WorkerRegistry {
	reg := NewWorkerRegistry()
	for _, name := range names {
		_ = reg.Add(name, &stubWorker{name: name})
	}
	return reg
}
