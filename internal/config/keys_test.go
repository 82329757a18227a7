package config

import (
	"errors"
	"testing"
)

func TestGetAPIKeyFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-from-env")

	key, err := GetAPIKey(nil)
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "sk-ant-from-env" {
		t.Errorf("expected env key, got %q", key)
	}
	if src := GetCredentialSource(nil); src != CredentialSourceEnv {
		t.Errorf("expected env source, got %s", src)
	}
}

func TestGetAPIKeyFromConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.APIKey = "sk-ant-from-config"

	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey failed: %v", err)
	}
	if key != "sk-ant-from-config" {
		t.Errorf("expected config key, got %q", key)
	}
	if src := GetCredentialSource(cfg); src != CredentialSourceConfig {
		t.Errorf("expected config source, got %s", src)
	}
}

func TestGetAPIKeyMissing(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := GetAPIKey(&Config{}); !errors.Is(err, ErrNoAPIKey) {
		t.Errorf("expected ErrNoAPIKey, got %v", err)
	}
	if src := GetCredentialSource(&Config{}); src != CredentialSourceNone {
		t.Errorf("expected none source, got %s", src)
	}
}

func TestGetAPIKeyBedrock(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "")

	cfg := &Config{}
	cfg.Anthropic.UseAWSBedrock = true

	key, err := GetAPIKey(cfg)
	if err != nil {
		t.Fatalf("GetAPIKey failed under Bedrock: %v", err)
	}
	if key != "" {
		t.Errorf("expected empty key under Bedrock, got %q", key)
	}
	if src := GetCredentialSource(cfg); src != CredentialSourceBedrock {
		t.Errorf("expected bedrock source, got %s", src)
	}
}

func TestValidateAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		wantErr bool
	}{
		{"valid key", "sk-ant-api03-abcdefghij", false},
		{"empty", "", true},
		{"wrong prefix", "sk-openai-abcdefghij123", true},
		{"too short", "sk-ant-x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIKey(tt.key)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateAPIKey(%q) = %v, wantErr %v", tt.key, err, tt.wantErr)
			}
		})
	}
}

func TestMaskAPIKey(t *testing.T) {
	if got := MaskAPIKey(""); got != "(not set)" {
		t.Errorf("empty key mask = %q", got)
	}
	if got := MaskAPIKey("short"); got != "***" {
		t.Errorf("short key mask = %q", got)
	}
	long := "sk-ant-api03-abcdefgh1234"
	got := MaskAPIKey(long)
	if got != "sk-ant-...1234" {
		t.Errorf("long key mask = %q", got)
	}
}
