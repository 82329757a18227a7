package models

import (
	"testing"
	"time"
)

func TestTaskTypeValid(t *testing.T) {
	valid := []TaskType{TaskTypeIOBound, TaskTypeCPUBound}
	for _, tt := range valid {
		if !tt.Valid() {
			t.Errorf("expected %q to be valid", tt)
		}
	}

	if TaskType("gpu_bound").Valid() {
		t.Error("expected unknown task type to be invalid")
	}
	if TaskType("").Valid() {
		t.Error("expected empty task type to be invalid")
	}
}

func TestExecModeValid(t *testing.T) {
	valid := []ExecMode{ModeAuto, ModeParallel, ModeSequential, ModeThread}
	for _, m := range valid {
		if !m.Valid() {
			t.Errorf("expected %q to be valid", m)
		}
	}

	if ExecMode("turbo").Valid() {
		t.Error("expected unknown mode to be invalid")
	}
}

func TestResultStatusValid(t *testing.T) {
	valid := []ResultStatus{StatusSuccess, StatusPartial, StatusFailed, StatusTimeout, StatusError}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}

	if ResultStatus("done").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}

func TestTaskEffectiveTimeout(t *testing.T) {
	task := &Task{Description: "do something"}
	if got := task.EffectiveTimeout(); got != DefaultTaskTimeout {
		t.Errorf("expected default timeout %v, got %v", DefaultTaskTimeout, got)
	}

	task.Timeout = 10 * time.Second
	if got := task.EffectiveTimeout(); got != 10*time.Second {
		t.Errorf("expected 10s, got %v", got)
	}
}
