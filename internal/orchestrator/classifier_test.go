package orchestrator

import (
	"testing"

	"github.com/ShayCichocki/foreman/pkg/models"
)

func TestKeywordClassifier(t *testing.T) {
	c := NewKeywordClassifier()

	tests := []struct {
		name string
		task string
		want models.TaskType
	}{
		{"english cpu keyword", "calculate the checksum of every file", models.TaskTypeCPUBound},
		{"chinese cpu keyword", "分析这份日志", models.TaskTypeCPUBound},
		{"io default", "fetch the latest release notes", models.TaskTypeIOBound},
		{"empty task", "", models.TaskTypeIOBound},
		{"case insensitive", "ANALYZE the dataset", models.TaskTypeCPUBound},
		{"keyword inside word", "encode the payload", models.TaskTypeCPUBound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Classify(tt.task); got != tt.want {
				t.Errorf("Classify(%q) = %s, want %s", tt.task, got, tt.want)
			}
		})
	}
}

func TestKeywordClassifierIdempotent(t *testing.T) {
	c := NewKeywordClassifier()
	task := "compile the report and 统计 the totals"

	first := c.Classify(task)
	for i := 0; i < 10; i++ {
		if got := c.Classify(task); got != first {
			t.Fatalf("classification changed on repeat call: %s != %s", got, first)
		}
	}
}

func TestKeywordClassifierCustomKeywords(t *testing.T) {
	c := NewKeywordClassifierWithKeywords([]string{"juggle"})

	if got := c.Classify("juggle these numbers"); got != models.TaskTypeCPUBound {
		t.Errorf("custom keyword not honored: got %s", got)
	}
	// Default keywords are replaced, not extended.
	if got := c.Classify("calculate totals"); got != models.TaskTypeIOBound {
		t.Errorf("default keywords should be gone: got %s", got)
	}
}
