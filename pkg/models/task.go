// Package models defines the shared data types for foreman's orchestration engine.
package models

import "time"

// TaskType classifies a task by the resource it is expected to stress.
type TaskType string

const (
	// TaskTypeIOBound indicates a task dominated by waiting on external calls.
	TaskTypeIOBound TaskType = "io_bound"
	// TaskTypeCPUBound indicates a task dominated by local computation.
	TaskTypeCPUBound TaskType = "cpu_bound"
)

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeIOBound, TaskTypeCPUBound:
		return true
	default:
		return false
	}
}

// ExecMode selects the dispatch strategy for a batch of tasks.
type ExecMode string

const (
	// ModeAuto picks a strategy from the batch's task-type mix and size.
	ModeAuto ExecMode = "auto"
	// ModeParallel fans tasks out concurrently under a global semaphore.
	ModeParallel ExecMode = "parallel"
	// ModeSequential runs tasks one at a time in input order.
	ModeSequential ExecMode = "sequential"
	// ModeThread runs tasks on a fixed-size worker goroutine pool.
	ModeThread ExecMode = "thread"
)

// Valid returns true if the mode is a known value.
func (m ExecMode) Valid() bool {
	switch m {
	case ModeAuto, ModeParallel, ModeSequential, ModeThread:
		return true
	default:
		return false
	}
}

// DefaultTaskTimeout is applied when a task does not carry its own timeout.
const DefaultTaskTimeout = 300 * time.Second

// Task describes one unit of work to hand to a worker.
// A task is classified exactly once by the executor before dispatch and is
// immutable afterward within a run.
type Task struct {
	// WorkerName is the worker that should execute this task.
	WorkerName string `json:"worker_name"`
	// Description is the natural-language task text.
	Description string `json:"description"`
	// Context holds optional key/value context shared with the worker.
	Context map[string]string `json:"context,omitempty"`
	// Timeout bounds this task's execution. Zero means DefaultTaskTimeout.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Priority orders dispatch in parallel mode; higher runs first.
	Priority int `json:"priority"`
	// Type is set by classification before dispatch.
	Type TaskType `json:"task_type,omitempty"`
}

// EffectiveTimeout returns the task timeout, falling back to the default.
func (t *Task) EffectiveTimeout() time.Duration {
	if t.Timeout > 0 {
		return t.Timeout
	}
	return DefaultTaskTimeout
}

// BatchTask is the input shape consumed from callers and tools for
// batch delegation.
type BatchTask struct {
	// Agent names the worker to delegate to. Empty means "let the router pick".
	Agent string `json:"agent" yaml:"agent"`
	// Task is the task description.
	Task string `json:"task" yaml:"task"`
	// Context holds optional per-task context.
	Context map[string]string `json:"context,omitempty" yaml:"context,omitempty"`
	// Priority orders dispatch; higher runs first.
	Priority int `json:"priority,omitempty" yaml:"priority,omitempty"`
}
