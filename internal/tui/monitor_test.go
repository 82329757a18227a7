package tui

import (
	"strings"
	"testing"

	"github.com/ShayCichocki/foreman/internal/orchestrator"
)

func TestMonitorTracksTaskLifecycle(t *testing.T) {
	m := NewMonitor(nil)

	m.apply(orchestrator.Event{Type: orchestrator.EventTaskStarted, WorkerName: "coder", TaskTitle: "write the parser"})
	m.apply(orchestrator.Event{Type: orchestrator.EventTaskStarted, WorkerName: "tester", TaskTitle: "verify the parser"})
	m.apply(orchestrator.Event{Type: orchestrator.EventTaskCompleted, WorkerName: "coder"})
	m.apply(orchestrator.Event{Type: orchestrator.EventTaskFailed, WorkerName: "tester", Message: "timeout"})

	if m.completed != 1 || m.failed != 1 {
		t.Errorf("counters = %d/%d, want 1/1", m.completed, m.failed)
	}
	if m.rows[0].status != "done" {
		t.Errorf("coder row = %s, want done", m.rows[0].status)
	}
	if m.rows[1].status != "failed" || m.rows[1].message != "timeout" {
		t.Errorf("tester row = %+v", m.rows[1])
	}
}

func TestMonitorViewContents(t *testing.T) {
	m := NewMonitor(nil)
	m.apply(orchestrator.Event{Type: orchestrator.EventTaskStarted, WorkerName: "coder", TaskTitle: "write the parser"})
	m.apply(orchestrator.Event{Type: orchestrator.EventTaskCompleted, WorkerName: "coder"})

	view := m.View()
	for _, want := range []string{"Foreman batch", "coder", "write the parser", "1 done, 0 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorBatchDone(t *testing.T) {
	m := NewMonitor(nil)
	m.apply(orchestrator.Event{Type: orchestrator.EventBatchDone, Message: "2/2 succeeded"})

	if !m.done {
		t.Error("batch done event must finish the monitor")
	}
	if !strings.Contains(m.View(), "finished: 2/2 succeeded") {
		t.Errorf("view missing summary:\n%s", m.View())
	}
}
