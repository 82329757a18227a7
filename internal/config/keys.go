package config

import (
	"errors"
	"os"
	"strings"
)

// ErrNoAPIKey is returned when direct API access is configured without a key.
var ErrNoAPIKey = errors.New("no Anthropic API key configured")

// CredentialSource names where the Anthropic credentials come from.
type CredentialSource string

const (
	CredentialSourceBedrock CredentialSource = "aws_bedrock"
	CredentialSourceEnv     CredentialSource = "environment"
	CredentialSourceConfig  CredentialSource = "config_file"
	CredentialSourceNone    CredentialSource = "none"
)

// GetAPIKey resolves the Anthropic API key, preferring the process
// environment over the config file. Config values may reference environment
// variables with ${VAR} syntax; an unexpanded reference counts as unset.
// When Bedrock is enabled no key is required and the resolved key is empty.
func GetAPIKey(cfg *Config) (string, error) {
	if cfg != nil && cfg.Anthropic.UseAWSBedrock {
		return "", nil
	}

	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		return key, nil
	}

	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return key, nil
		}
	}

	return "", ErrNoAPIKey
}

// GetCredentialSource reports which credential path GetAPIKey would take.
func GetCredentialSource(cfg *Config) CredentialSource {
	if cfg != nil && cfg.Anthropic.UseAWSBedrock {
		return CredentialSourceBedrock
	}
	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		return CredentialSourceEnv
	}
	if cfg != nil && cfg.Anthropic.APIKey != "" {
		key := os.ExpandEnv(cfg.Anthropic.APIKey)
		if key != "" && !strings.HasPrefix(key, "${") {
			return CredentialSourceConfig
		}
	}
	return CredentialSourceNone
}

// ValidateAPIKey checks the key's shape without calling the API.
func ValidateAPIKey(key string) error {
	if key == "" {
		return ErrNoAPIKey
	}
	if !strings.HasPrefix(key, "sk-ant-") {
		return errors.New("invalid API key format: expected 'sk-ant-' prefix")
	}
	if len(key) < 20 {
		return errors.New("invalid API key format: key too short")
	}
	return nil
}

// MaskAPIKey returns a display-safe form of the key: the "sk-ant-" prefix
// and the last four characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
