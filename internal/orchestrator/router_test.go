package orchestrator

import (
	"fmt"
	"strings"
	"testing"

	"github.com/ShayCichocki/foreman/pkg/models"
)

func newTestRouter(cfg RouterConfig, names ...string) *TaskRouter {
	return NewTaskRouter(newTestRegistry(names...), cfg)
}

func TestRouteCoderTask(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "coder", "designer", "researcher")

	res := r.Route("编写一个 Python 函数来计算斐波那契数列", "")
	if res.WorkerName != "coder" {
		t.Fatalf("Route = %s, want coder (reasoning: %s)", res.WorkerName, res.Reasoning)
	}
	if res.Confidence <= 0 {
		t.Errorf("Confidence = %f, want > 0", res.Confidence)
	}
	if len(res.Alternatives) != 2 {
		t.Errorf("Alternatives = %d, want 2", len(res.Alternatives))
	}
}

func TestRouteEnglishTask(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "coder", "tester", "deployer")

	res := r.Route("deploy the service to the kubernetes cluster", "")
	if res.WorkerName != "deployer" {
		t.Errorf("Route = %s, want deployer (reasoning: %s)", res.WorkerName, res.Reasoning)
	}
}

func TestWordBoundaryMatchUnicode(t *testing.T) {
	tests := []struct {
		task string
		kw   string
		want bool
	}{
		{"为活动设计 海报", "海报", true},
		{"为活动设计海报", "海报", false},
		{"海报 needs a refresh", "海报", true},
		{"deploy the app", "deploy", true},
		{"redeploy the app", "deploy", false},
	}
	for _, tt := range tests {
		if got := wordBoundaryMatch(tt.task, tt.kw); got != tt.want {
			t.Errorf("wordBoundaryMatch(%q, %q) = %t, want %t", tt.task, tt.kw, got, tt.want)
		}
	}
}

func TestRouteCJKKeywordBoundaryBonus(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "designer")

	// A space-delimited CJK keyword earns the word-boundary bonus on top of
	// the substring hit; the same keyword embedded in running text does not.
	spaced := r.typeScores(preprocess("为活动制作 海报"))
	joined := r.typeScores(preprocess("为活动制作海报"))
	if spaced["designer"] <= joined["designer"] {
		t.Errorf("spaced score %f, joined score %f, want spaced > joined",
			spaced["designer"], joined["designer"])
	}
}

func TestRoutePreferredWorkerBonus(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "coder", "designer")

	// A task matching nothing: all scores zero, the preferred bonus decides.
	res := r.Route("handle the quarterly offsite logistics", "designer")
	if res.WorkerName != "designer" {
		t.Errorf("Route = %s, want designer via preference", res.WorkerName)
	}
	if res.Confidence < 0.3 {
		t.Errorf("Confidence = %f, want >= 0.3 from preference bonus", res.Confidence)
	}
}

func TestRoutePreferredWorkerUnknownIgnored(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "coder")

	res := r.Route("write a function", "ghost")
	if res.WorkerName != "coder" {
		t.Errorf("Route = %s, want coder; unknown preference must not leak", res.WorkerName)
	}
}

func TestRouteEmptyRegistry(t *testing.T) {
	r := newTestRouter(RouterConfig{})

	res := r.Route("write a function", "")
	if res.WorkerName != DefaultWorkerName {
		t.Errorf("Route = %s, want %s", res.WorkerName, DefaultWorkerName)
	}
	if res.Confidence != 0 {
		t.Errorf("Confidence = %f, want 0", res.Confidence)
	}
}

func TestRouteAlternativesCapped(t *testing.T) {
	names := []string{"coder", "designer", "researcher", "tester", "deployer", "analyst", "documenter", "extra"}
	r := newTestRouter(RouterConfig{}, names...)

	res := r.Route("analyze the market data and write a report", "")
	if len(res.Alternatives) > maxAlternatives {
		t.Errorf("Alternatives = %d, want <= %d", len(res.Alternatives), maxAlternatives)
	}
}

func TestRouteCacheReturnsCopies(t *testing.T) {
	r := newTestRouter(RouterConfig{EnableCaching: true}, "coder", "tester")

	first := r.Route("debug the parser", "")
	first.WorkerName = "mangled"

	second := r.Route("debug the parser", "")
	if second.WorkerName == "mangled" {
		t.Fatal("mutating a returned route corrupted the cache")
	}
}

func TestRouteCacheKeyUsesPrefix(t *testing.T) {
	r := newTestRouter(RouterConfig{EnableCaching: true}, "coder", "tester")

	prefix := strings.Repeat("x", cacheKeyPrefixLen)
	a := r.Route(prefix+" debug the parser", "")
	b := r.Route(prefix+" verify the release checklist", "")

	// Same 100-rune prefix, same cache entry.
	if a.WorkerName != b.WorkerName || a.Reasoning != b.Reasoning {
		t.Errorf("cache prefix collision expected: %+v vs %+v", a, b)
	}
}

func TestRouteLoadPenalty(t *testing.T) {
	cfg := RouterConfig{EnableLoadBalancing: true}
	r := newTestRouter(cfg, "coder", "tester")

	base := r.Route("refactor the api layer", "")
	for i := 0; i < 4; i++ {
		r.AddLoad("coder")
	}
	loaded := r.Route("refactor the api layer again", "")

	if loaded.WorkerName == "coder" && loaded.Confidence >= base.Confidence {
		t.Errorf("load penalty missing: base %f, loaded %f", base.Confidence, loaded.Confidence)
	}
}

func TestRemoveLoadFloorsAtZero(t *testing.T) {
	r := newTestRouter(RouterConfig{}, "coder")

	r.RemoveLoad("coder")
	r.AddLoad("coder")
	r.RemoveLoad("coder")

	status := r.GetLoadStatus()
	if status.Loads["coder"] != 0 {
		t.Errorf("load = %d, want 0", status.Loads["coder"])
	}
}

func TestRouteBatchRebalance(t *testing.T) {
	cfg := RouterConfig{EnableLoadBalancing: true}
	r := newTestRouter(cfg, "coder", "tester", "designer")

	tasks := make([]models.BatchTask, 7)
	for i := range tasks {
		tasks[i] = models.BatchTask{Task: fmt.Sprintf("refactor module %d of the backend code", i)}
	}

	results := r.RouteBatch(tasks)
	counts := make(map[string]int)
	for _, res := range results {
		counts[res.WorkerName]++
	}

	// All seven match coder; rebalancing must spread some of them out.
	if counts["coder"] == len(tasks) {
		t.Fatalf("no rebalancing happened: %v", counts)
	}
	moved := false
	for _, res := range results {
		if res.WorkerName != "coder" {
			moved = true
			if !strings.Contains(res.Reasoning, "rebalanced") {
				t.Errorf("moved task missing rebalance reasoning: %q", res.Reasoning)
			}
		}
	}
	if !moved {
		t.Error("expected at least one moved assignment")
	}
}

func TestRouteBatchNoRebalanceWhenBalanced(t *testing.T) {
	cfg := RouterConfig{EnableLoadBalancing: true}
	r := newTestRouter(cfg, "coder", "tester")

	tasks := []models.BatchTask{
		{Task: "debug the parser code"},
		{Task: "verify the quality checklist"},
	}
	results := r.RouteBatch(tasks)

	for _, res := range results {
		if strings.Contains(res.Reasoning, "rebalanced") {
			t.Errorf("balanced batch must not be rebalanced: %q", res.Reasoning)
		}
	}
}

func TestRouterStatistics(t *testing.T) {
	r := newTestRouter(RouterConfig{EnableCaching: true}, "coder", "tester")

	r.Route("debug the code", "")
	r.Route("verify the tests", "")
	r.Route("debug the code", "") // cache hit; not recorded in history

	stats := r.Statistics()
	if stats.TotalRoutes != 2 {
		t.Errorf("TotalRoutes = %d, want 2", stats.TotalRoutes)
	}
	if stats.CacheSize != 2 {
		t.Errorf("CacheSize = %d, want 2", stats.CacheSize)
	}
	if stats.AverageConfidence <= 0 {
		t.Errorf("AverageConfidence = %f, want > 0", stats.AverageConfidence)
	}

	r.ClearCache()
	r.ClearHistory()
	stats = r.Statistics()
	if stats.TotalRoutes != 0 || stats.CacheSize != 0 {
		t.Errorf("clear did not reset statistics: %+v", stats)
	}
}
