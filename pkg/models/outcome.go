package models

import "time"

// ExecutionOutcome records the result of one task. Exactly one of Result and
// Error is populated, matching the Success flag.
type ExecutionOutcome struct {
	// WorkerName is the worker that ran (or was asked to run) the task.
	WorkerName string `json:"worker_name"`
	// Success indicates whether the task completed without error.
	Success bool `json:"success"`
	// Result is the worker's text output when Success is true.
	Result string `json:"result,omitempty"`
	// Error is the failure message when Success is false.
	Error string `json:"error,omitempty"`
	// ErrorKind categorizes the failure (unknown_worker, timeout, worker_error).
	ErrorKind ErrorKind `json:"error_kind,omitempty"`
	// Type is the task classification at dispatch time.
	Type TaskType `json:"task_type,omitempty"`
	// Duration is the wall time spent on the task.
	Duration time.Duration `json:"duration,omitempty"`
	// TokensUsed is the worker-reported token usage, when available.
	TokensUsed int64 `json:"tokens_used,omitempty"`
}

// ErrorKind categorizes a per-task failure.
type ErrorKind string

const (
	// ErrKindUnknownWorker means the task named a worker that is not registered.
	ErrKindUnknownWorker ErrorKind = "unknown_worker"
	// ErrKindTimeout means the task exceeded its timeout.
	ErrKindTimeout ErrorKind = "timeout"
	// ErrKindWorkerError means the worker capability itself failed.
	ErrKindWorkerError ErrorKind = "worker_error"
)

// CPUUtilization is a coarse observability label for a batch, not a control input.
type CPUUtilization string

const (
	CPUUtilizationLow    CPUUtilization = "low"
	CPUUtilizationMedium CPUUtilization = "medium"
	CPUUtilizationHigh   CPUUtilization = "high"
)

// TaskBreakdown counts tasks per classification in a batch.
type TaskBreakdown struct {
	CPUBound int `json:"cpu_bound"`
	IOBound  int `json:"io_bound"`
}

// BatchResult summarizes one executor run over a batch of tasks.
type BatchResult struct {
	// Mode is the strategy actually used (auto is resolved before dispatch).
	Mode ExecMode `json:"mode"`
	// Total is the number of tasks in the batch.
	Total int `json:"total"`
	// SuccessCount is the number of successful outcomes.
	SuccessCount int `json:"success"`
	// FailedCount is the number of failed outcomes.
	FailedCount int `json:"failed"`
	// Outcomes holds one record per task.
	Outcomes []ExecutionOutcome `json:"results"`
	// Breakdown counts tasks per type.
	Breakdown TaskBreakdown `json:"task_breakdown"`
	// CPUUtilization estimates how CPU-heavy the batch was.
	CPUUtilization CPUUtilization `json:"cpu_utilization"`
	// Duration is the wall time for the whole batch.
	Duration time.Duration `json:"duration,omitempty"`
}
