package api

import (
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	_, err := NewClient(ClientConfig{})
	if err == nil {
		t.Fatal("expected error when no API key is configured")
	}
}

func TestNewClientWithExplicitKey(t *testing.T) {
	client, err := NewClient(ClientConfig{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if client.Model() != anthropic.ModelClaudeSonnet4_20250514 {
		t.Errorf("expected default model, got %s", client.Model())
	}
	if client.IsBedrock() {
		t.Error("expected direct API client, got Bedrock")
	}
}

func TestTranslateModelForBedrock(t *testing.T) {
	got := translateModelForBedrock(anthropic.ModelClaudeSonnet4_20250514)
	want := anthropic.Model("us.anthropic.claude-sonnet-4-20250514-v1:0")
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}

	// Unknown models pass through unchanged.
	custom := anthropic.Model("my-custom-model")
	if translateModelForBedrock(custom) != custom {
		t.Error("expected unknown model to pass through unchanged")
	}
}

func TestTokenTracker(t *testing.T) {
	tracker := NewTokenTracker()

	tracker.Add(100, 50)
	tracker.Add(200, 75)

	in, out := tracker.Total()
	if in != 300 || out != 125 {
		t.Errorf("expected totals (300, 125), got (%d, %d)", in, out)
	}
	if tracker.Calls() != 2 {
		t.Errorf("expected 2 calls, got %d", tracker.Calls())
	}

	tracker.Reset()
	in, out = tracker.Total()
	if in != 0 || out != 0 || tracker.Calls() != 0 {
		t.Error("expected tracker to be empty after reset")
	}
}
