package worker

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatContext(t *testing.T) {
	got := FormatContext("Context", map[string]string{
		"project": "demo",
		"branch":  "main",
	})

	want := "[Context]\n- branch: main\n- project: demo"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatContextEmpty(t *testing.T) {
	if got := FormatContext("Shared Context", nil); got != "[Shared Context]" {
		t.Errorf("expected bare header, got %q", got)
	}
}

func TestFailureWrapsError(t *testing.T) {
	inner := errors.New("connection refused")
	f := &Failure{WorkerName: "coder", Err: inner}

	if !errors.Is(f, inner) {
		t.Error("expected Failure to unwrap to inner error")
	}
	if !strings.Contains(f.Error(), "coder") {
		t.Errorf("expected worker name in message, got %q", f.Error())
	}
	if !strings.Contains(f.Error(), "connection refused") {
		t.Errorf("expected inner message verbatim, got %q", f.Error())
	}
}
