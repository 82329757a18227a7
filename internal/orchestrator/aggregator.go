package orchestrator

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// AggregatorConfig controls deduplication and status classification.
type AggregatorConfig struct {
	// DedupEnabled drops outcomes whose (worker, type, success) triple was
	// already seen by this aggregator instance.
	DedupEnabled bool
	// SuccessThreshold is the minimum success ratio for partial status.
	SuccessThreshold float64
}

// DefaultAggregatorConfig returns the standard aggregation settings.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		DedupEnabled:     true,
		SuccessThreshold: 0.6,
	}
}

// ResultAggregator collects batch outcomes into a standardized summary with
// an overall status, per-worker statistics and an error digest. The
// deduplication set lives on the instance, so identical outcomes across
// separate Aggregate calls are also deduplicated.
type ResultAggregator struct {
	cfg AggregatorConfig

	mu      sync.Mutex
	seen    map[string]struct{}
	history []*models.AggregatedResult
}

// NewResultAggregator creates an aggregator with the given config.
func NewResultAggregator(cfg AggregatorConfig) *ResultAggregator {
	return &ResultAggregator{
		cfg:  cfg,
		seen: make(map[string]struct{}),
	}
}

// Aggregate converts a batch result into an aggregated summary.
// TotalCount always reflects the raw outcome count; success and failure are
// counted after deduplication, so re-aggregating an identical batch yields
// zero successes.
func (a *ResultAggregator) Aggregate(batch *models.BatchResult) *models.AggregatedResult {
	a.mu.Lock()
	defer a.mu.Unlock()

	var successful, failed []models.ExecutionOutcome
	duplicates := 0
	for _, o := range batch.Outcomes {
		if a.cfg.DedupEnabled {
			h := hashOutcome(o)
			if _, dup := a.seen[h]; dup {
				debugLog("[aggregator] skipping duplicate outcome: %s", h)
				duplicates++
				continue
			}
			a.seen[h] = struct{}{}
		}
		if o.Success {
			successful = append(successful, o)
		} else {
			failed = append(failed, o)
		}
	}

	status := a.overallStatus(len(successful), len(failed), len(batch.Outcomes))

	result := &models.AggregatedResult{
		OverallStatus: status,
		TotalCount:    len(batch.Outcomes),
		SuccessCount:  len(successful),
		FailedCount:   len(failed),
		Outcomes:      batch.Outcomes,
		Summary:       buildSummary(status, successful, failed, batch.Mode),
		Errors:        collectErrors(failed),
		Metadata: map[string]any{
			"mode":               string(batch.Mode),
			"task_breakdown":     batch.Breakdown,
			"cpu_utilization":    string(batch.CPUUtilization),
			"duplicates_skipped": duplicates,
			"timestamp":          time.Now().Format(time.RFC3339),
		},
	}

	a.history = append(a.history, result)
	debugLog("[aggregator] aggregated batch: %d/%d succeeded, status %s",
		result.SuccessCount, result.TotalCount, result.OverallStatus)

	return result
}

// hashOutcome returns the dedup key for an outcome. Only the worker, task
// type and success flag participate; the output text does not.
func hashOutcome(o models.ExecutionOutcome) string {
	key := struct {
		Worker   string `json:"worker"`
		TaskType string `json:"task_type"`
		Success  bool   `json:"success"`
	}{
		Worker:   o.WorkerName,
		TaskType: string(o.Type),
		Success:  o.Success,
	}
	content, _ := json.Marshal(key)
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// overallStatus classifies the batch. The failed==0 arm catches the case
// where deduplication removed every success but nothing actually failed.
func (a *ResultAggregator) overallStatus(success, failed, total int) models.ResultStatus {
	if total == 0 {
		return models.StatusSuccess
	}
	rate := float64(success) / float64(total)
	switch {
	case rate == 1.0:
		return models.StatusSuccess
	case rate >= a.cfg.SuccessThreshold:
		return models.StatusPartial
	case failed == 0:
		return models.StatusSuccess
	default:
		return models.StatusFailed
	}
}

func collectErrors(failed []models.ExecutionOutcome) []string {
	errs := make([]string, 0, len(failed))
	for _, o := range failed {
		name := o.WorkerName
		if name == "" {
			name = "unknown"
		}
		msg := o.Error
		if msg == "" {
			msg = "unknown error"
		}
		errs = append(errs, fmt.Sprintf("[%s] %s", name, msg))
	}
	return errs
}

var statusDescriptions = map[models.ResultStatus]string{
	models.StatusSuccess: "all succeeded",
	models.StatusPartial: "partially succeeded",
	models.StatusFailed:  "mostly failed",
	models.StatusTimeout: "timed out",
	models.StatusError:   "errored",
}

// buildSummary renders the human-readable digest with per-worker counts in
// sorted worker order.
func buildSummary(status models.ResultStatus, successful, failed []models.ExecutionOutcome, mode models.ExecMode) string {
	total := len(successful) + len(failed)

	desc, ok := statusDescriptions[status]
	if !ok {
		desc = "unknown"
	}

	type stats struct{ success, failed int }
	workerStats := make(map[string]*stats)
	for _, o := range append(append([]models.ExecutionOutcome{}, successful...), failed...) {
		name := o.WorkerName
		if name == "" {
			name = "unknown"
		}
		s, ok := workerStats[name]
		if !ok {
			s = &stats{}
			workerStats[name] = s
		}
		if o.Success {
			s.success++
		} else {
			s.failed++
		}
	}

	lines := []string{
		fmt.Sprintf("Execution mode: %s", mode),
		fmt.Sprintf("Overall status: %s", desc),
		fmt.Sprintf("Succeeded: %d/%d", len(successful), total),
	}

	names := make([]string, 0, len(workerStats))
	for name := range workerStats {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := workerStats[name]
		lines = append(lines, fmt.Sprintf("  - %s: %d succeeded, %d failed", name, s.success, s.failed))
	}

	if len(failed) > 0 {
		lines = append(lines, fmt.Sprintf("Failed tasks: %d", len(failed)))
	}

	return strings.Join(lines, "\n")
}

// Merge combines several batch results into one. The merged batch carries
// the synthetic "merged" mode label and summed counts.
func (a *ResultAggregator) Merge(batches []*models.BatchResult) *models.BatchResult {
	merged := &models.BatchResult{
		Mode:     models.ExecMode("merged"),
		Outcomes: []models.ExecutionOutcome{},
	}
	for _, b := range batches {
		if b == nil {
			continue
		}
		merged.Total += b.Total
		merged.SuccessCount += b.SuccessCount
		merged.FailedCount += b.FailedCount
		merged.Outcomes = append(merged.Outcomes, b.Outcomes...)
		merged.Breakdown.CPUBound += b.Breakdown.CPUBound
		merged.Breakdown.IOBound += b.Breakdown.IOBound
	}
	merged.CPUUtilization = estimateCPUUsage(merged.Breakdown.CPUBound, merged.Total)
	return merged
}

// WorkerOutput is one worker's contribution in a key-output extraction.
type WorkerOutput struct {
	Success bool   `json:"success"`
	Output  string `json:"output,omitempty"`
	Error   string `json:"error,omitempty"`
}

// KeyOutputs holds the distilled view of an aggregated result.
type KeyOutputs struct {
	Status        models.ResultStatus       `json:"status"`
	Summary       string                    `json:"summary"`
	Errors        []string                  `json:"errors"`
	WorkerOutputs map[string][]WorkerOutput `json:"worker_outputs"`
}

// ExtractKeyOutputs distills an aggregated result down to per-worker outputs.
func (a *ResultAggregator) ExtractKeyOutputs(result *models.AggregatedResult) KeyOutputs {
	out := KeyOutputs{
		Status:        result.OverallStatus,
		Summary:       result.Summary,
		Errors:        result.Errors,
		WorkerOutputs: make(map[string][]WorkerOutput),
	}
	for _, o := range result.Outcomes {
		name := o.WorkerName
		if name == "" {
			name = "unknown"
		}
		if o.Success {
			out.WorkerOutputs[name] = append(out.WorkerOutputs[name], WorkerOutput{Success: true, Output: o.Result})
		} else {
			out.WorkerOutputs[name] = append(out.WorkerOutputs[name], WorkerOutput{Success: false, Error: o.Error})
		}
	}
	return out
}

// Validation reports completeness checks against an expected worker set.
// A failed validation never fails the batch; callers decide what to do.
type Validation struct {
	IsValid        bool
	MissingWorkers []string
	Warnings       []string
	Errors         []string
}

// Validate checks that every required worker contributed at least one
// outcome and flags a failure rate above one half.
func (a *ResultAggregator) Validate(result *models.AggregatedResult, requiredWorkers []string) Validation {
	v := Validation{IsValid: true}
	if len(requiredWorkers) == 0 {
		return v
	}

	executed := make(map[string]struct{}, len(result.Outcomes))
	for _, o := range result.Outcomes {
		executed[o.WorkerName] = struct{}{}
	}

	for _, name := range requiredWorkers {
		if _, ok := executed[name]; !ok {
			v.MissingWorkers = append(v.MissingWorkers, name)
			v.IsValid = false
		}
	}

	if result.FailedCount > 0 && result.TotalCount > 0 {
		failureRate := float64(result.FailedCount) / float64(result.TotalCount)
		if failureRate > 0.5 {
			v.Warnings = append(v.Warnings, fmt.Sprintf("high failure rate: %.1f%%", failureRate*100))
		}
	}

	if len(v.MissingWorkers) > 0 {
		v.Errors = append(v.Errors, fmt.Sprintf("missing results from required workers: %s",
			strings.Join(v.MissingWorkers, ", ")))
	}

	return v
}

// Format renders an aggregated result as text, json or markdown.
// Unknown formats fall back to text.
func (a *ResultAggregator) Format(result *models.AggregatedResult, format string) (string, error) {
	switch format {
	case "json":
		payload := map[string]any{
			"status":   string(result.OverallStatus),
			"total":    result.TotalCount,
			"success":  result.SuccessCount,
			"failed":   result.FailedCount,
			"summary":  result.Summary,
			"errors":   result.Errors,
			"metadata": result.Metadata,
		}
		data, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return "", fmt.Errorf("marshal result: %w", err)
		}
		return string(data), nil

	case "markdown":
		lines := []string{
			"## Execution Result",
			"",
			fmt.Sprintf("**Status**: %s", result.OverallStatus),
			fmt.Sprintf("**Total**: %d", result.TotalCount),
			fmt.Sprintf("**Succeeded**: %d", result.SuccessCount),
			fmt.Sprintf("**Failed**: %d", result.FailedCount),
			"",
			"### Summary",
			"",
			result.Summary,
			"",
		}
		if len(result.Errors) > 0 {
			lines = append(lines, "### Errors", "")
			for _, e := range result.Errors {
				lines = append(lines, fmt.Sprintf("- %s", e))
			}
			lines = append(lines, "")
		}
		return strings.Join(lines, "\n"), nil

	default:
		return result.Summary, nil
	}
}

// AggregatorStatistics describes aggregator state for introspection.
type AggregatorStatistics struct {
	TotalAggregations int
	DedupHashes       int
	Config            AggregatorConfig
}

// Statistics returns counters over this aggregator's lifetime.
func (a *ResultAggregator) Statistics() AggregatorStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AggregatorStatistics{
		TotalAggregations: len(a.history),
		DedupHashes:       len(a.seen),
		Config:            a.cfg,
	}
}

// Clear resets the dedup set and aggregation history.
func (a *ResultAggregator) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.seen = make(map[string]struct{})
	a.history = nil
	debugLog("[aggregator] state cleared")
}
