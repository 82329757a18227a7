package models

// WorkerSpec configures one worker capability.
type WorkerSpec struct {
	// Name is the unique registry name for this worker.
	Name string `json:"name" yaml:"name"`
	// SystemPrompt sets the worker's specialty.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	// Workspace is the directory the worker operates in.
	Workspace string `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	// MaxSteps bounds the worker's internal step budget. Zero means the
	// implementation default.
	MaxSteps int `json:"max_steps,omitempty" yaml:"max_steps,omitempty"`
	// Keywords optionally extends routing keywords for this worker.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// WorkerStatus is a point-in-time snapshot of one worker's state.
type WorkerStatus struct {
	// MessageCount is the number of messages in the worker's history.
	MessageCount int `json:"message_count"`
	// Workspace is the worker's working directory.
	Workspace string `json:"workspace,omitempty"`
	// TokensUsed is the cumulative token usage.
	TokensUsed int64 `json:"token_usage"`
}

// OrchestratorStatus is a point-in-time snapshot of the whole engine.
type OrchestratorStatus struct {
	// WorkerCount is the number of registered workers.
	WorkerCount int `json:"worker_count"`
	// WorkerNames lists registered workers in sorted order.
	WorkerNames []string `json:"worker_names"`
	// HistoryCount is the number of recorded task-history entries.
	HistoryCount int `json:"history_count"`
	// SharedContextKeys lists keys currently held in the shared context.
	SharedContextKeys []string `json:"shared_context_keys,omitempty"`
}
