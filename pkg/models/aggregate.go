package models

// ResultStatus is the overall status of an aggregated batch.
type ResultStatus string

const (
	// StatusSuccess means every counted outcome succeeded.
	StatusSuccess ResultStatus = "success"
	// StatusPartial means the success ratio met the quality threshold.
	StatusPartial ResultStatus = "partial"
	// StatusFailed means the success ratio fell below the quality threshold.
	StatusFailed ResultStatus = "failed"
	// StatusTimeout is reserved for future per-outcome classification.
	StatusTimeout ResultStatus = "timeout"
	// StatusError is reserved for future per-outcome classification.
	StatusError ResultStatus = "error"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	switch s {
	case StatusSuccess, StatusPartial, StatusFailed, StatusTimeout, StatusError:
		return true
	default:
		return false
	}
}

// AggregatedResult is the final structured report for one batch. It is derived
// fresh per aggregation call and never mutated afterward.
type AggregatedResult struct {
	// OverallStatus summarizes the batch.
	OverallStatus ResultStatus `json:"overall_status"`
	// TotalCount is the number of outcomes in the batch.
	TotalCount int `json:"total"`
	// SuccessCount is the number of successes after deduplication.
	SuccessCount int `json:"success"`
	// FailedCount is the number of failures after deduplication.
	FailedCount int `json:"failed"`
	// Outcomes is the full ordered outcome list from the executor.
	Outcomes []ExecutionOutcome `json:"results"`
	// Summary is a human-readable report.
	Summary string `json:"summary"`
	// Errors lists failure messages, one per failed outcome.
	Errors []string `json:"errors,omitempty"`
	// Metadata carries execution details (mode, breakdown, timestamps).
	Metadata map[string]any `json:"metadata,omitempty"`
}
