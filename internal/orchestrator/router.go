package orchestrator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// DefaultWorkerKeywords maps worker names to the bilingual keyword lists that
// drive content-to-capability matching. Worker specs can extend these lists.
var DefaultWorkerKeywords = map[string][]string{
	"coder": {
		"代码", "编程", "开发", "函数", "类", "接口", "调试",
		"code", "program", "develop", "function", "class", "debug",
		"bug", "refactor", "algorithm", "api", "backend", "frontend",
	},
	"designer": {
		"设计", "海报", "演示", "文档", "视觉", "UI", "UX",
		"design", "poster", "presentation", "document", "visual",
		"canvas", "slide", "layout", "color", "typography",
	},
	"researcher": {
		"研究", "分析", "调查", "报告", "趋势", "市场", "技术",
		"research", "analyze", "investigate", "report", "trend",
		"market", "technology", "survey", "data", "information",
	},
	"tester": {
		"测试", "验证", "质量", "检查", "单元测试", "集成测试",
		"test", "verify", "quality", "check", "unit test", "integration",
		"automation", "coverage", "bug", "issue", "validation",
	},
	"deployer": {
		"部署", "发布", "运维", "容器", "云", "CI/CD", "服务器",
		"deploy", "release", "operation", "container", "cloud",
		"docker", "kubernetes", "k8s", "infrastructure", "server",
	},
	"analyst": {
		"分析", "数据", "统计", "图表", "报表", "洞察",
		"analyze", "data", "statistics", "chart", "report",
		"insight", "metric", "dashboard", "visualization",
	},
	"documenter": {
		"文档", "注释", "说明", "手册", "教程", "README",
		"document", "comment", "documentation", "manual",
		"tutorial", "specification", "guide",
	},
}

// DefaultWorkerName is the sentinel returned when no workers are registered.
// Routing never fails; absence of a match degrades to this at confidence 0.
const DefaultWorkerName = "default"

// maxAlternatives caps the alternatives list in a RouteResult.
const maxAlternatives = 5

// cacheKeyPrefixLen bounds the task-description prefix used in cache keys.
const cacheKeyPrefixLen = 100

// RouterConfig controls routing behavior.
type RouterConfig struct {
	// EnableLoadBalancing applies a per-worker load penalty to scores and
	// enables the batch rebalancing pass.
	EnableLoadBalancing bool
	// EnableCaching reuses route decisions keyed on (task prefix, preferred).
	// Cache entries are never invalidated by TTL.
	EnableCaching bool
	// Keywords maps worker names to extra routing keywords, merged over
	// DefaultWorkerKeywords.
	Keywords map[string][]string
}

// DefaultRouterConfig returns the standard router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		EnableLoadBalancing: true,
		EnableCaching:       true,
	}
}

// ScoredWorker pairs a worker name with its routing score.
type ScoredWorker struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// RouteResult records one routing decision.
type RouteResult struct {
	// WorkerName is the chosen worker.
	WorkerName string `json:"worker_name"`
	// Confidence expresses match quality in [0,1]. A preferred-worker bonus
	// can push it above 1.0.
	Confidence float64 `json:"confidence"`
	// Reasoning explains the decision: confidence bucket plus matched keywords.
	Reasoning string `json:"reasoning"`
	// Alternatives lists up to five runners-up, best first.
	Alternatives []ScoredWorker `json:"alternatives,omitempty"`
}

// routeRecord is one entry in the router's history.
type routeRecord struct {
	task   string
	result RouteResult
}

// TaskRouter chooses the best worker for a task by combining keyword matching
// against each worker's specialty with the worker's current load. It keeps a
// soft per-worker load counter and a decision cache.
type TaskRouter struct {
	registry *WorkerRegistry
	cfg      RouterConfig

	// keywords is the merged worker-name to keyword map. Guarded by mu after
	// construction.
	keywords map[string][]string
	// patterns holds precompiled word-boundary regexes for ASCII keywords.
	// Non-ASCII keywords are matched with wordBoundaryMatch at score time.
	patterns map[string]*regexp.Regexp

	mu      sync.Mutex
	load    map[string]int
	cache   map[string]RouteResult
	history []routeRecord
}

// NewTaskRouter creates a router over the given registry.
func NewTaskRouter(registry *WorkerRegistry, cfg RouterConfig) *TaskRouter {
	merged := make(map[string][]string, len(DefaultWorkerKeywords))
	for name, kws := range DefaultWorkerKeywords {
		merged[name] = kws
	}
	for name, kws := range cfg.Keywords {
		merged[name] = append(append([]string{}, merged[name]...), kws...)
	}

	r := &TaskRouter{
		registry: registry,
		cfg:      cfg,
		keywords: merged,
		patterns: make(map[string]*regexp.Regexp),
		load:     make(map[string]int),
		cache:    make(map[string]RouteResult),
	}
	for _, kws := range merged {
		for _, kw := range kws {
			r.compilePattern(kw)
		}
	}
	return r
}

func (r *TaskRouter) compilePattern(kw string) {
	key := strings.ToLower(kw)
	if _, ok := r.patterns[key]; ok {
		return
	}
	// Go's \b is ASCII-only; non-ASCII keywords use the rune-boundary scan
	// in wordBoundaryMatch instead.
	if !isASCII(key) {
		return
	}
	r.patterns[key] = regexp.MustCompile(`\b` + regexp.QuoteMeta(key) + `\b`)
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// wordBoundaryMatch reports whether kw occurs in task with non-word runes
// (or the string edge) on both sides, the Unicode-aware equivalent of a
// \bkw\b match.
func wordBoundaryMatch(task, kw string) bool {
	for start := 0; start <= len(task)-len(kw); {
		i := strings.Index(task[start:], kw)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(kw)
		before, _ := utf8.DecodeLastRuneInString(task[:i])
		after, _ := utf8.DecodeRuneInString(task[end:])
		if (i == 0 || !isWordRune(before)) && (end == len(task) || !isWordRune(after)) {
			return true
		}
		_, size := utf8.DecodeRuneInString(task[i:])
		start = i + size
	}
	return false
}

// SetKeywords replaces the keyword list for one worker and invalidates the
// decision cache, since cached routes may no longer reflect the roster.
func (r *TaskRouter) SetKeywords(workerName string, keywords []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keywords[workerName] = append([]string{}, keywords...)
	for _, kw := range keywords {
		r.compilePattern(kw)
	}
	r.cache = make(map[string]RouteResult)
}

// preprocess normalizes task text: lowercase, collapsed whitespace.
func preprocess(task string) string {
	task = strings.ToLower(task)
	return strings.Join(strings.Fields(task), " ")
}

// typeScores computes the keyword-match score per worker type:
// +1 per literal substring hit, +0.5 per word-boundary hit, normalized by
// min(1.0, score / (len(keywords) * 0.3)).
func (r *TaskRouter) typeScores(task string) map[string]float64 {
	scores := make(map[string]float64)
	for workerType, keywords := range r.keywords {
		if len(keywords) == 0 {
			scores[workerType] = 0
			continue
		}
		var score float64
		for _, kw := range keywords {
			lower := strings.ToLower(kw)
			if strings.Contains(task, lower) {
				score += 1
			}
			if p, ok := r.patterns[lower]; ok {
				if p.MatchString(task) {
					score += 0.5
				}
			} else if wordBoundaryMatch(task, lower) {
				score += 0.5
			}
		}
		normalized := score / (float64(len(keywords)) * 0.3)
		if normalized > 1.0 {
			normalized = 1.0
		}
		scores[workerType] = normalized
	}
	return scores
}

// finalScore applies the soft load penalty when load balancing is enabled.
// Load is a penalty signal only, never a hard admission limit.
func (r *TaskRouter) finalScore(typeScores map[string]float64, name string) float64 {
	base := typeScores[name]
	if !r.cfg.EnableLoadBalancing {
		return base
	}
	penalty := float64(r.load[name]) * 0.05
	if penalty > 0.3 {
		penalty = 0.3
	}
	return base * (1 - penalty)
}

// matchedKeywords returns the keywords of the chosen worker present in the task.
func (r *TaskRouter) matchedKeywords(workerName, task string) []string {
	var matched []string
	for _, kw := range r.keywords[workerName] {
		if strings.Contains(task, strings.ToLower(kw)) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// buildReasoning renders the confidence bucket and up to five matched keywords.
func buildReasoning(confidence float64, matched []string) string {
	var bucket string
	switch {
	case confidence >= 0.8:
		bucket = "high confidence"
	case confidence >= 0.5:
		bucket = "medium confidence"
	default:
		bucket = "low confidence"
	}
	if len(matched) > maxAlternatives {
		matched = matched[:maxAlternatives]
	}
	return fmt.Sprintf("%s (%.2f), matched keywords: %s", bucket, confidence, strings.Join(matched, ", "))
}

// Route analyzes a task description and selects the best worker.
// It never returns an error: with no registered workers it degrades to the
// sentinel default worker at confidence 0.
func (r *TaskRouter) Route(description, preferredWorker string) *RouteResult {
	cacheKey := cacheKeyFor(description, preferredWorker)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cfg.EnableCaching {
		if cached, ok := r.cache[cacheKey]; ok {
			out := cached
			return &out
		}
	}

	task := preprocess(description)
	typeScores := r.typeScores(task)

	available := r.registry.Names()

	if preferredWorker != "" {
		for _, name := range available {
			if name == preferredWorker {
				// Fixed bonus; may push the normalized score above 1.0.
				typeScores[preferredWorker] += 0.3
				break
			}
		}
	}

	result := r.selectBest(typeScores, available, task)

	if r.cfg.EnableCaching {
		r.cache[cacheKey] = *result
	}
	r.history = append(r.history, routeRecord{task: task, result: *result})

	debugLog("[router] %s -> %s (confidence %.2f)", truncate(task, 50), result.WorkerName, result.Confidence)
	return result
}

// selectBest ranks available workers by final score. Caller holds r.mu.
func (r *TaskRouter) selectBest(typeScores map[string]float64, available []string, task string) *RouteResult {
	if len(available) == 0 {
		return &RouteResult{
			WorkerName: DefaultWorkerName,
			Confidence: 0,
			Reasoning:  "no workers registered",
		}
	}

	ranked := make([]ScoredWorker, 0, len(available))
	for _, name := range available {
		ranked = append(ranked, ScoredWorker{Name: name, Score: r.finalScore(typeScores, name)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	best := ranked[0]
	alternatives := ranked[1:]
	if len(alternatives) > maxAlternatives {
		alternatives = alternatives[:maxAlternatives]
	}

	return &RouteResult{
		WorkerName:   best.Name,
		Confidence:   best.Score,
		Reasoning:    buildReasoning(best.Score, r.matchedKeywords(best.Name, task)),
		Alternatives: alternatives,
	}
}

// RouteBatch routes each task, then runs an explicit assign-then-rebalance
// pass over the scores already computed: when a worker's assigned count
// exceeds twice the batch average and a lower-loaded alternative exists, the
// task moves to that alternative with its score scaled by 0.9. When no
// lower-load alternative exists the assignment is left as-is.
func (r *TaskRouter) RouteBatch(tasks []models.BatchTask) []*RouteResult {
	results := make([]*RouteResult, 0, len(tasks))
	for _, t := range tasks {
		results = append(results, r.Route(t.Task, t.Agent))
	}

	if r.cfg.EnableLoadBalancing {
		r.rebalance(results)
	}
	return results
}

// rebalance is the second pass of RouteBatch.
func (r *TaskRouter) rebalance(results []*RouteResult) {
	workerCount := r.registry.Count()
	if workerCount == 0 || len(results) == 0 {
		return
	}

	counts := make(map[string]int)
	for _, res := range results {
		counts[res.WorkerName]++
	}

	avg := float64(len(results)) / float64(workerCount)
	for _, res := range results {
		count := counts[res.WorkerName]
		if float64(count) <= avg*2 || len(res.Alternatives) == 0 {
			continue
		}
		for _, alt := range res.Alternatives {
			if counts[alt.Name] < count-1 {
				counts[res.WorkerName]--
				counts[alt.Name]++
				debugLog("[router] rebalanced task from %s to %s", res.WorkerName, alt.Name)
				res.WorkerName = alt.Name
				res.Confidence = alt.Score * 0.9
				res.Reasoning = fmt.Sprintf("rebalanced from overloaded worker; %s",
					buildReasoning(res.Confidence, nil))
				break
			}
		}
	}
}

// AddLoad increments a worker's in-flight counter.
func (r *TaskRouter) AddLoad(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.load[name]++
}

// RemoveLoad decrements a worker's in-flight counter, flooring at zero.
func (r *TaskRouter) RemoveLoad(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.load[name] > 0 {
		r.load[name]--
	}
}

// LoadStatus summarizes current per-worker load.
type LoadStatus struct {
	// Loads maps worker names to in-flight counts.
	Loads map[string]int `json:"agent_loads"`
	// TotalLoad is the sum of all counters.
	TotalLoad int `json:"total_load"`
	// AverageLoad is TotalLoad divided by tracked workers.
	AverageLoad float64 `json:"average_load"`
	// Overloaded lists workers above twice the average load.
	Overloaded []string `json:"overloaded_agents,omitempty"`
}

// GetLoadStatus returns a snapshot of the load counters.
func (r *TaskRouter) GetLoadStatus() LoadStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	status := LoadStatus{Loads: make(map[string]int, len(r.load))}
	for name, load := range r.load {
		status.Loads[name] = load
		status.TotalLoad += load
	}
	if len(r.load) > 0 {
		status.AverageLoad = float64(status.TotalLoad) / float64(len(r.load))
	}
	for name, load := range r.load {
		if float64(load) > status.AverageLoad*2 && load > 0 {
			status.Overloaded = append(status.Overloaded, name)
		}
	}
	sort.Strings(status.Overloaded)
	return status
}

// RouterStatistics summarizes routing activity since the last clear.
type RouterStatistics struct {
	// TotalRoutes is the number of routing decisions made.
	TotalRoutes int `json:"total_routes"`
	// SelectionCount maps worker names to how often they were chosen.
	SelectionCount map[string]int `json:"agent_selection_count"`
	// AverageConfidence is the mean confidence across all decisions.
	AverageConfidence float64 `json:"average_confidence"`
	// CacheSize is the number of cached decisions.
	CacheSize int `json:"cache_size"`
}

// Statistics returns routing statistics.
func (r *TaskRouter) Statistics() RouterStatistics {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := RouterStatistics{
		TotalRoutes:    len(r.history),
		SelectionCount: make(map[string]int),
		CacheSize:      len(r.cache),
	}
	var total float64
	for _, rec := range r.history {
		stats.SelectionCount[rec.result.WorkerName]++
		total += rec.result.Confidence
	}
	if len(r.history) > 0 {
		stats.AverageConfidence = total / float64(len(r.history))
	}
	return stats
}

// ClearCache drops all cached route decisions.
func (r *TaskRouter) ClearCache() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]RouteResult)
}

// ClearHistory drops the routing history.
func (r *TaskRouter) ClearHistory() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = nil
}

func cacheKeyFor(description, preferred string) string {
	return truncate(description, cacheKeyPrefixLen) + ":" + preferred
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
