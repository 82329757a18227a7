package orchestrator

import (
	"time"
)

// EventType represents the type of orchestrator event.
type EventType string

const (
	// EventTaskQueued indicates a task has been accepted for execution.
	EventTaskQueued EventType = "task_queued"
	// EventTaskStarted indicates a task has started execution.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed or timed out.
	EventTaskFailed EventType = "task_failed"
	// EventBatchDone indicates an entire batch finished.
	EventBatchDone EventType = "batch_done"
)

// Event represents a progress event emitted during batch execution.
// These events feed the TUI monitor and are never required for correctness.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// WorkerName is the name of the related worker, if applicable.
	WorkerName string
	// TaskTitle is a short form of the related task description.
	TaskTitle string
	// Message provides additional context about the event.
	Message string
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
