package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/foreman/internal/worker"
	"github.com/ShayCichocki/foreman/pkg/models"
)

// Options configures orchestrator construction. Zero values fall back to
// the defaults of each component.
type Options struct {
	// Workspace is the base directory; each worker gets a subdirectory.
	Workspace string
	// CoordinatorMaxSteps bounds the coordinator worker's agent loop.
	CoordinatorMaxSteps int
	// DefaultTimeout applies to delegated tasks without their own timeout.
	DefaultTimeout time.Duration
	// Router configures task routing.
	Router RouterConfig
	// Aggregator configures result aggregation.
	Aggregator AggregatorConfig
	// Executor configures batch execution.
	Executor ExecutorConfig
	// Logger receives debug output. Nil disables logging.
	Logger *DebugLogger
}

// DefaultOptions returns the standard orchestrator settings.
func DefaultOptions() Options {
	return Options{
		Workspace:           "./workspace",
		CoordinatorMaxSteps: 50,
		DefaultTimeout:      models.DefaultTaskTimeout,
		Router:              DefaultRouterConfig(),
		Aggregator:          DefaultAggregatorConfig(),
		Executor:            DefaultExecutorConfig(),
	}
}

// HistoryEntry records one task submitted through the orchestrator.
type HistoryEntry struct {
	Task      string
	Worker    string
	Context   map[string]string
	Success   bool
	Error     string
	Timestamp time.Time
}

// TaskResult is the outcome of a coordinator-driven task.
type TaskResult struct {
	Success     bool
	Result      string
	Error       string
	UsedWorkers []string
	RunID       string
}

// Orchestrator is the façade over the routing, execution and aggregation
// components. One coordinator worker plans and delegates; specialist
// workers execute. Specialist conversation state stays private to each
// worker; only the coordinator sees the shared context.
type Orchestrator struct {
	factory    worker.Factory
	registry   *WorkerRegistry
	router     *TaskRouter
	executor   *Executor
	aggregator *ResultAggregator
	classifier Classifier

	coordinator worker.Worker
	opts        Options
	logger      *DebugLogger

	mu            sync.Mutex
	sharedContext map[string]string
	prompts       map[string]string
	history       []HistoryEntry
}

// New builds an orchestrator with one worker per spec plus a coordinator.
func New(factory worker.Factory, specs []models.WorkerSpec, opts Options) (*Orchestrator, error) {
	if opts.Workspace == "" {
		opts.Workspace = DefaultOptions().Workspace
	}
	if opts.CoordinatorMaxSteps <= 0 {
		opts.CoordinatorMaxSteps = DefaultOptions().CoordinatorMaxSteps
	}
	if opts.DefaultTimeout <= 0 {
		opts.DefaultTimeout = models.DefaultTaskTimeout
	}
	if opts.Logger != nil {
		SetPackageLogger(opts.Logger)
	}

	registry := NewWorkerRegistry()
	prompts := make(map[string]string, len(specs))
	keywords := make(map[string][]string)

	for _, spec := range specs {
		if spec.Workspace == "" {
			spec.Workspace = filepath.Join(opts.Workspace, spec.Name)
		}
		if err := os.MkdirAll(spec.Workspace, 0755); err != nil {
			return nil, fmt.Errorf("create workspace for %s: %w", spec.Name, err)
		}
		w, err := factory.NewWorker(spec)
		if err != nil {
			return nil, fmt.Errorf("create worker %s: %w", spec.Name, err)
		}
		if err := registry.Add(spec.Name, w); err != nil {
			return nil, err
		}
		prompts[spec.Name] = spec.SystemPrompt
		if len(spec.Keywords) > 0 {
			keywords[spec.Name] = spec.Keywords
		}
	}

	if len(keywords) > 0 {
		merged := opts.Router.Keywords
		if merged == nil {
			merged = make(map[string][]string)
		}
		for name, kws := range keywords {
			merged[name] = kws
		}
		opts.Router.Keywords = merged
	}

	classifier := NewKeywordClassifier()
	o := &Orchestrator{
		factory:       factory,
		registry:      registry,
		router:        NewTaskRouter(registry, opts.Router),
		executor:      NewExecutor(registry, classifier, opts.Executor),
		aggregator:    NewResultAggregator(opts.Aggregator),
		classifier:    classifier,
		opts:          opts,
		logger:        opts.Logger,
		sharedContext: make(map[string]string),
		prompts:       prompts,
	}

	coordSpec := models.WorkerSpec{
		Name:         "coordinator",
		SystemPrompt: coordinatorPrompt(prompts),
		Workspace:    filepath.Join(opts.Workspace, "coordinator"),
		MaxSteps:     opts.CoordinatorMaxSteps,
	}
	if err := os.MkdirAll(coordSpec.Workspace, 0755); err != nil {
		return nil, fmt.Errorf("create coordinator workspace: %w", err)
	}
	coord, err := factory.NewWorker(coordSpec)
	if err != nil {
		return nil, fmt.Errorf("create coordinator: %w", err)
	}
	o.coordinator = coord

	debugLog("[orchestrator] initialized with %d workers", registry.Count())
	return o, nil
}

// Router exposes the task router for direct routing queries.
func (o *Orchestrator) Router() *TaskRouter { return o.router }

// Executor exposes the batch executor, mainly for event-handler wiring.
func (o *Orchestrator) Executor() *Executor { return o.executor }

// Aggregator exposes the result aggregator for formatting and statistics.
func (o *Orchestrator) Aggregator() *ResultAggregator { return o.aggregator }

// GetWorker looks up a registered specialist by name.
func (o *Orchestrator) GetWorker(name string) (worker.Worker, bool) {
	return o.registry.Get(name)
}

// Delegate runs a task directly on a named specialist worker, bypassing the
// coordinator. Unknown workers are an error; execution failures and
// timeouts come back as failed outcomes.
func (o *Orchestrator) Delegate(ctx context.Context, workerName, task string, extra map[string]string, timeout time.Duration) (models.ExecutionOutcome, error) {
	if _, ok := o.registry.Get(workerName); !ok {
		return models.ExecutionOutcome{}, fmt.Errorf("%w: %s", ErrUnknownWorker, workerName)
	}
	if timeout <= 0 {
		timeout = o.opts.DefaultTimeout
	}

	o.router.AddLoad(workerName)
	defer o.router.RemoveLoad(workerName)

	outcome := o.executor.executeOne(ctx, models.Task{
		WorkerName:  workerName,
		Description: task,
		Context:     extra,
		Timeout:     timeout,
		Type:        o.classifier.Classify(task),
	})

	o.recordHistory(HistoryEntry{
		Task:      task,
		Worker:    workerName,
		Context:   extra,
		Success:   outcome.Success,
		Error:     outcome.Error,
		Timestamp: time.Now(),
	})

	return outcome, nil
}

// ExecuteTask submits a complex task to the coordinator worker, which plans
// and delegates as it sees fit. The provided context is merged into the
// shared context and prepended to the coordinator's conversation; specialist
// workers never see it directly.
func (o *Orchestrator) ExecuteTask(ctx context.Context, task string, taskContext map[string]string) (*TaskResult, error) {
	runID := uuid.New().String()
	debugLog("[orchestrator] run %s: %s", runID, truncate(task, 100))

	o.mu.Lock()
	for k, v := range taskContext {
		o.sharedContext[k] = v
	}
	o.mu.Unlock()

	var extra map[string]string
	if len(taskContext) > 0 {
		extra = taskContext
	}

	result, err := o.coordinator.Run(ctx, task, extra)

	entry := HistoryEntry{
		Task:      task,
		Worker:    "coordinator",
		Context:   taskContext,
		Success:   err == nil,
		Timestamp: time.Now(),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	o.recordHistory(entry)

	if err != nil {
		debugLog("[orchestrator] run %s failed: %v", runID, err)
		return &TaskResult{Success: false, Error: err.Error(), RunID: runID}, nil
	}

	return &TaskResult{
		Success:     true,
		Result:      result,
		UsedWorkers: o.detectUsedWorkers(result),
		RunID:       runID,
	}, nil
}

// ExecuteBatch runs independent tasks across the specialists. Tasks without
// an explicit worker are routed by keyword; everything is then dispatched
// through the executor and aggregated into one result.
func (o *Orchestrator) ExecuteBatch(ctx context.Context, tasks []models.BatchTask, mode models.ExecMode) (*models.AggregatedResult, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid execution mode: %q", mode)
	}

	resolved := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		name := t.Agent
		if name == "" {
			route := o.router.Route(t.Task, "")
			name = route.WorkerName
			debugLog("[orchestrator] routed task to %s (%s)", name, route.Reasoning)
		}
		resolved = append(resolved, models.Task{
			WorkerName:  name,
			Description: t.Task,
			Context:     t.Context,
			Priority:    t.Priority,
		})
	}

	batch := o.executor.Execute(ctx, resolved, mode)
	aggregated := o.aggregator.Aggregate(batch)

	now := time.Now()
	for i, t := range tasks {
		o.recordHistory(HistoryEntry{
			Task:      t.Task,
			Worker:    resolved[i].WorkerName,
			Context:   t.Context,
			Success:   i < len(batch.Outcomes) && batch.Outcomes[i].Success,
			Timestamp: now,
		})
	}

	return aggregated, nil
}

// AddWorker registers a new specialist at runtime.
func (o *Orchestrator) AddWorker(spec models.WorkerSpec) error {
	if spec.Workspace == "" {
		spec.Workspace = filepath.Join(o.opts.Workspace, spec.Name)
	}
	if err := os.MkdirAll(spec.Workspace, 0755); err != nil {
		return fmt.Errorf("create workspace for %s: %w", spec.Name, err)
	}

	w, err := o.factory.NewWorker(spec)
	if err != nil {
		return fmt.Errorf("create worker %s: %w", spec.Name, err)
	}
	if err := o.registry.Add(spec.Name, w); err != nil {
		return err
	}

	o.mu.Lock()
	o.prompts[spec.Name] = spec.SystemPrompt
	o.mu.Unlock()
	if len(spec.Keywords) > 0 {
		o.router.SetKeywords(spec.Name, spec.Keywords)
	}

	debugLog("[orchestrator] worker %s added", spec.Name)
	return nil
}

// RemoveWorker deregisters a specialist. In-flight tasks on that worker run
// to completion; only future lookups fail.
func (o *Orchestrator) RemoveWorker(name string) error {
	if err := o.registry.Remove(name); err != nil {
		return err
	}
	o.mu.Lock()
	delete(o.prompts, name)
	o.mu.Unlock()

	debugLog("[orchestrator] worker %s removed", name)
	return nil
}

// ShareContext stores a key/value pair in the shared context.
func (o *Orchestrator) ShareContext(key, value string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sharedContext[key] = value
}

// ClearContext empties the shared context.
func (o *Orchestrator) ClearContext() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sharedContext = make(map[string]string)
	debugLog("[orchestrator] shared context cleared")
}

// ClearHistory empties the task history.
func (o *Orchestrator) ClearHistory() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = nil
	debugLog("[orchestrator] task history cleared")
}

// History returns a copy of the task history.
func (o *Orchestrator) History() []HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// Status reports the orchestrator's current shape for monitoring.
func (o *Orchestrator) Status() models.OrchestratorStatus {
	o.mu.Lock()
	keys := make([]string, 0, len(o.sharedContext))
	for k := range o.sharedContext {
		keys = append(keys, k)
	}
	historyCount := len(o.history)
	o.mu.Unlock()
	sort.Strings(keys)

	return models.OrchestratorStatus{
		WorkerCount:       o.registry.Count(),
		WorkerNames:       o.registry.Names(),
		HistoryCount:      historyCount,
		SharedContextKeys: keys,
	}
}

// WorkerStatus reports per-worker conversation and token counters.
func (o *Orchestrator) WorkerStatus() map[string]models.WorkerStatus {
	status := make(map[string]models.WorkerStatus)
	for name, w := range o.registry.Snapshot() {
		status[name] = w.Status()
	}
	return status
}

// Close releases the debug logger.
func (o *Orchestrator) Close() error {
	return o.logger.Close()
}

func (o *Orchestrator) recordHistory(entry HistoryEntry) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, entry)
}

// detectUsedWorkers scans the coordinator's final output for worker name
// mentions. Heuristic only; absence of a mention does not prove a worker
// was idle.
func (o *Orchestrator) detectUsedWorkers(result string) []string {
	lowered := strings.ToLower(result)
	var used []string
	for _, name := range o.registry.Names() {
		if strings.Contains(lowered, strings.ToLower(name)) {
			used = append(used, name)
		}
	}
	return used
}
