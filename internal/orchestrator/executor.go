package orchestrator

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// ExecutorConfig sizes the executor's concurrency primitives from the host.
type ExecutorConfig struct {
	// MaxConcurrent bounds in-flight parallel tasks process-wide.
	MaxConcurrent int
	// PoolSize is the number of pool goroutines for thread/sequential modes.
	PoolSize int
	// DefaultTimeout applies to tasks without their own timeout.
	DefaultTimeout time.Duration
	// BatchMaxSize is the recommended batch size; larger batches still run
	// in full but are logged as oversized.
	BatchMaxSize int
}

// DefaultExecutorConfig derives limits from the CPU count: the parallel
// admission semaphore is clamped to [50, 200] and the pool holds two
// goroutines per core.
func DefaultExecutorConfig() ExecutorConfig {
	cpus := runtime.NumCPU()
	maxConcurrent := 32 * cpus
	if maxConcurrent < 50 {
		maxConcurrent = 50
	}
	if maxConcurrent > 200 {
		maxConcurrent = 200
	}
	return ExecutorConfig{
		MaxConcurrent:  maxConcurrent,
		PoolSize:       2 * cpus,
		DefaultTimeout: models.DefaultTaskTimeout,
		BatchMaxSize:   100,
	}
}

// Executor dispatches a batch of classified tasks using one of four
// strategies and returns one outcome per task. Individual task failures are
// captured into outcomes and never fail the batch; that isolation is the
// core contract of the engine.
type Executor struct {
	registry   *WorkerRegistry
	classifier Classifier
	cfg        ExecutorConfig

	// sem is the global admission semaphore for parallel mode.
	sem *semaphore.Weighted

	// onEvent receives progress events when set.
	onEvent func(Event)
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *WorkerRegistry, classifier Classifier, cfg ExecutorConfig) *Executor {
	if cfg.MaxConcurrent <= 0 || cfg.PoolSize <= 0 {
		cfg = DefaultExecutorConfig()
	}
	return &Executor{
		registry:   registry,
		classifier: classifier,
		cfg:        cfg,
		sem:        semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
	}
}

// Config returns the executor's effective configuration.
func (e *Executor) Config() ExecutorConfig {
	return e.cfg
}

// SetEventHandler installs a progress-event callback. Not safe to call while
// a batch is in flight.
func (e *Executor) SetEventHandler(fn func(Event)) {
	e.onEvent = fn
}

func (e *Executor) emit(ev Event) {
	if e.onEvent != nil {
		ev.Timestamp = time.Now()
		e.onEvent(ev)
	}
}

// Execute runs a batch of tasks under the given mode and returns the batch
// summary. An empty batch returns an all-zero summary without dispatching.
func (e *Executor) Execute(ctx context.Context, tasks []models.Task, mode models.ExecMode) *models.BatchResult {
	if len(tasks) == 0 {
		return &models.BatchResult{
			Mode:           mode,
			Outcomes:       []models.ExecutionOutcome{},
			CPUUtilization: models.CPUUtilizationLow,
		}
	}
	// Oversized batches still run in full; every task gets an outcome.
	if e.cfg.BatchMaxSize > 0 && len(tasks) > e.cfg.BatchMaxSize {
		debugLog("[executor] batch size %d exceeds recommended max %d", len(tasks), e.cfg.BatchMaxSize)
	}

	start := time.Now()

	// Classification happens before dispatch and overwrites any prior type.
	breakdown := models.TaskBreakdown{}
	for i := range tasks {
		tasks[i].Type = e.classifier.Classify(tasks[i].Description)
		if tasks[i].Type == models.TaskTypeCPUBound {
			breakdown.CPUBound++
		} else {
			breakdown.IOBound++
		}
	}

	selected := ResolveMode(mode, breakdown.CPUBound, len(tasks))
	debugLog("[executor] executing %d tasks, mode %s (requested %s), cpu=%d io=%d",
		len(tasks), selected, mode, breakdown.CPUBound, breakdown.IOBound)

	var outcomes []models.ExecutionOutcome
	switch selected {
	case models.ModeThread:
		outcomes = e.executePool(ctx, tasks, true)
	case models.ModeSequential:
		outcomes = e.executeSequential(ctx, tasks)
	default:
		outcomes = e.executeParallel(ctx, tasks)
	}

	result := &models.BatchResult{
		Mode:           selected,
		Total:          len(tasks),
		Outcomes:       outcomes,
		Breakdown:      breakdown,
		CPUUtilization: estimateCPUUsage(breakdown.CPUBound, len(tasks)),
		Duration:       time.Since(start),
	}
	for _, o := range outcomes {
		if o.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}

	e.emit(Event{Type: EventBatchDone, Message: fmt.Sprintf("%d/%d succeeded", result.SuccessCount, result.Total)})
	return result
}

// ResolveMode maps auto to a concrete strategy. Mode selection is a pure
// function of the task-type counts and batch size: a CPU-bound share above
// one half selects thread mode, batches of at most two tasks run
// sequentially, everything else runs parallel.
func ResolveMode(mode models.ExecMode, cpuBound, total int) models.ExecMode {
	if mode != models.ModeAuto {
		if mode.Valid() {
			return mode
		}
		return models.ModeParallel
	}
	if total > 0 && float64(cpuBound)/float64(total) > 0.5 {
		return models.ModeThread
	}
	if total <= 2 {
		return models.ModeSequential
	}
	return models.ModeParallel
}

// executeParallel fans all tasks out concurrently under the global admission
// semaphore. Dispatch order follows descending priority (stable on ties);
// outcomes always come back in input order so callers can match them to
// their tasks by index.
func (e *Executor) executeParallel(ctx context.Context, tasks []models.Task) []models.ExecutionOutcome {
	order := make([]int, len(tasks))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return tasks[order[i]].Priority > tasks[order[j]].Priority
	})

	outcomes := make([]models.ExecutionOutcome, len(tasks))
	var wg sync.WaitGroup
	for _, i := range order {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := e.sem.Acquire(ctx, 1); err != nil {
				outcomes[idx] = models.ExecutionOutcome{
					WorkerName: tasks[idx].WorkerName,
					Success:    false,
					Error:      fmt.Sprintf("batch cancelled: %v", err),
					ErrorKind:  models.ErrKindWorkerError,
					Type:       tasks[idx].Type,
				}
				return
			}
			defer e.sem.Release(1)
			outcomes[idx] = e.executeOne(ctx, tasks[idx])
		}(i)
	}
	wg.Wait()

	return outcomes
}

// executePool runs tasks on a fixed-size goroutine pool fed by a work queue.
// Results come back in input order. When forceCPU is set every task is
// marked cpu_bound before dispatch.
func (e *Executor) executePool(ctx context.Context, tasks []models.Task, forceCPU bool) []models.ExecutionOutcome {
	type job struct {
		idx  int
		task models.Task
	}

	jobs := make(chan job)
	outcomes := make([]models.ExecutionOutcome, len(tasks))
	workers := e.cfg.PoolSize
	if workers > len(tasks) {
		workers = len(tasks)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				if forceCPU {
					j.task.Type = models.TaskTypeCPUBound
				}
				outcomes[j.idx] = e.executeOne(ctx, j.task)
			}
		}()
	}

	for i, t := range tasks {
		jobs <- job{idx: i, task: t}
	}
	close(jobs)
	wg.Wait()

	return outcomes
}

// executeSequential runs tasks one at a time in input order. Task N+1 does
// not start before task N's outcome is recorded.
func (e *Executor) executeSequential(ctx context.Context, tasks []models.Task) []models.ExecutionOutcome {
	outcomes := make([]models.ExecutionOutcome, 0, len(tasks))
	for _, t := range tasks {
		outcomes = append(outcomes, e.executeOne(ctx, t))
	}
	return outcomes
}

// executeOne runs a single task with its timeout and captures any failure
// into the outcome. It never returns an error.
func (e *Executor) executeOne(ctx context.Context, task models.Task) models.ExecutionOutcome {
	e.emit(Event{Type: EventTaskStarted, WorkerName: task.WorkerName, TaskTitle: truncate(task.Description, 60)})

	w, ok := e.registry.Get(task.WorkerName)
	if !ok {
		e.emit(Event{Type: EventTaskFailed, WorkerName: task.WorkerName, Message: "unknown worker"})
		return models.ExecutionOutcome{
			WorkerName: task.WorkerName,
			Success:    false,
			Error:      fmt.Sprintf("unknown worker: %s", task.WorkerName),
			ErrorKind:  models.ErrKindUnknownWorker,
			Type:       task.Type,
		}
	}

	timeout := task.Timeout
	if timeout <= 0 {
		timeout = e.cfg.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = models.DefaultTaskTimeout
	}
	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()

	type runResult struct {
		output string
		err    error
	}
	// The select below is the asyncio.wait_for equivalent: the task is
	// recorded as timed out even if the worker ignores cancellation.
	resCh := make(chan runResult, 1)
	go func() {
		out, err := w.Run(tctx, task.Description, task.Context)
		resCh <- runResult{output: out, err: err}
	}()

	select {
	case <-tctx.Done():
		if tctx.Err() == context.DeadlineExceeded {
			debugLog("[executor] task timed out: %s - %s", task.WorkerName, truncate(task.Description, 50))
			e.emit(Event{Type: EventTaskFailed, WorkerName: task.WorkerName, Message: "timeout"})
			return models.ExecutionOutcome{
				WorkerName: task.WorkerName,
				Success:    false,
				Error:      fmt.Sprintf("%s after %s", ErrTaskTimeout, timeout),
				ErrorKind:  models.ErrKindTimeout,
				Type:       task.Type,
				Duration:   time.Since(start),
			}
		}
		e.emit(Event{Type: EventTaskFailed, WorkerName: task.WorkerName, Message: "cancelled"})
		return models.ExecutionOutcome{
			WorkerName: task.WorkerName,
			Success:    false,
			Error:      fmt.Sprintf("task cancelled: %v", tctx.Err()),
			ErrorKind:  models.ErrKindWorkerError,
			Type:       task.Type,
			Duration:   time.Since(start),
		}
	case res := <-resCh:
		if res.err != nil {
			debugLog("[executor] task failed: %s - %v", task.WorkerName, res.err)
			e.emit(Event{Type: EventTaskFailed, WorkerName: task.WorkerName, Message: res.err.Error()})
			return models.ExecutionOutcome{
				WorkerName: task.WorkerName,
				Success:    false,
				Error:      res.err.Error(),
				ErrorKind:  models.ErrKindWorkerError,
				Type:       task.Type,
				Duration:   time.Since(start),
			}
		}
		e.emit(Event{Type: EventTaskCompleted, WorkerName: task.WorkerName})
		return models.ExecutionOutcome{
			WorkerName: task.WorkerName,
			Success:    true,
			Result:     res.output,
			Type:       task.Type,
			Duration:   time.Since(start),
			TokensUsed: w.Status().TokensUsed,
		}
	}
}

// estimateCPUUsage is a coarse observability label, not a control input.
func estimateCPUUsage(cpuTasks, total int) models.CPUUtilization {
	switch {
	case cpuTasks == 0:
		return models.CPUUtilizationLow
	case float64(cpuTasks) < float64(total)/2:
		return models.CPUUtilizationMedium
	default:
		return models.CPUUtilizationHigh
	}
}
