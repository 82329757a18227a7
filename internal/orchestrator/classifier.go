package orchestrator

import (
	"strings"

	"github.com/ShayCichocki/foreman/pkg/models"
)

// Classifier decides whether a task is I/O-bound or CPU-bound. The executor
// uses the classification to pick a dispatch strategy; implementations must
// be pure so the same text always yields the same type.
type Classifier interface {
	// Classify returns the task type for a description.
	Classify(description string) models.TaskType
}

// cpuKeywords marks CPU-heavy work: local computation, transformation, and
// batch processing, in English and Chinese. Anything else defaults to
// I/O-bound. This is a coarse, explainable heuristic, not real NLP.
var cpuKeywords = []string{
	"计算", "分析", "处理", "转换", "统计", "批量",
	"编译", "渲染", "生成", "加密", "解压", "压缩",
	"calculate", "analyze", "process", "transform", "statistic",
	"batch", "generate", "render", "compile", "encrypt", "compress",
	"parse", "encode", "decode", "filter", "map", "reduce",
}

// KeywordClassifier classifies tasks by case-insensitive substring match
// against a fixed keyword list. Presence of any CPU keyword yields cpu_bound;
// absence yields io_bound.
type KeywordClassifier struct {
	keywords []string
}

// NewKeywordClassifier creates a classifier with the default keyword list.
func NewKeywordClassifier() *KeywordClassifier {
	return &KeywordClassifier{keywords: cpuKeywords}
}

// NewKeywordClassifierWithKeywords creates a classifier with a custom list.
func NewKeywordClassifierWithKeywords(keywords []string) *KeywordClassifier {
	return &KeywordClassifier{keywords: keywords}
}

// Classify implements Classifier.
func (c *KeywordClassifier) Classify(description string) models.TaskType {
	text := strings.ToLower(description)
	for _, kw := range c.keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return models.TaskTypeCPUBound
		}
	}
	return models.TaskTypeIOBound
}

var _ Classifier = (*KeywordClassifier)(nil)
