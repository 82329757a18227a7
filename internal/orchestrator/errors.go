package orchestrator

import "errors"

// Registry and dispatch errors surfaced synchronously to callers. Per-task
// failures inside a batch never surface as errors; they are captured into
// ExecutionOutcome records instead.
var (
	// ErrUnknownWorker is returned when a worker name is not registered.
	ErrUnknownWorker = errors.New("unknown worker")
	// ErrDuplicateWorker is returned when registering a name that exists.
	ErrDuplicateWorker = errors.New("worker already registered")
	// ErrTaskTimeout marks a task that exceeded its timeout.
	ErrTaskTimeout = errors.New("task timed out")
)
