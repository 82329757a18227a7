package orchestrator

import (
	"errors"
	"testing"
)

func TestWorkerRegistryAddRemove(t *testing.T) {
	reg := NewWorkerRegistry()

	if err := reg.Add("coder", &stubWorker{name: "coder"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := reg.Add("coder", &stubWorker{name: "coder"}); !errors.Is(err, ErrDuplicateWorker) {
		t.Errorf("duplicate Add: got %v, want ErrDuplicateWorker", err)
	}
	if reg.Count() != 1 {
		t.Errorf("Count = %d, want 1", reg.Count())
	}

	if _, ok := reg.Get("coder"); !ok {
		t.Error("Get(coder) not found after Add")
	}
	if _, ok := reg.Get("ghost"); ok {
		t.Error("Get(ghost) found a worker that was never added")
	}

	if err := reg.Remove("ghost"); !errors.Is(err, ErrUnknownWorker) {
		t.Errorf("Remove(ghost): got %v, want ErrUnknownWorker", err)
	}
	if err := reg.Remove("coder"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if reg.Count() != 0 {
		t.Errorf("Count after Remove = %d, want 0", reg.Count())
	}
}

func TestWorkerRegistryNamesSorted(t *testing.T) {
	reg := newTestRegistry("tester", "coder", "designer")

	names := reg.Names()
	want := []string{"coder", "designer", "tester"}
	if len(names) != len(want) {
		t.Fatalf("Names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("Names[%d] = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestWorkerRegistrySnapshotIsolated(t *testing.T) {
	reg := newTestRegistry("coder")

	snap := reg.Snapshot()
	delete(snap, "coder")

	if _, ok := reg.Get("coder"); !ok {
		t.Error("mutating the snapshot affected the registry")
	}
}
