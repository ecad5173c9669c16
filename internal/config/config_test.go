// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
backend:
  url: "http://localhost:8080"
  send_timeout: "30s"

user:
  id: "alice"
  workspace: "personal"

storage:
  driver: "sqlite"
  path: "./test.db"

conversations:
  max: 25

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.URL != "http://localhost:8080" {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, "http://localhost:8080")
	}
	if cfg.Backend.SendTimeout != 30*time.Second {
		t.Errorf("Backend.SendTimeout = %v, want %v", cfg.Backend.SendTimeout, 30*time.Second)
	}
	if cfg.User.ID != "alice" {
		t.Errorf("User.ID = %q, want %q", cfg.User.ID, "alice")
	}
	if cfg.User.Workspace != "personal" {
		t.Errorf("User.Workspace = %q, want %q", cfg.User.Workspace, "personal")
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, "sqlite")
	}
	if cfg.Conversations.Max != 25 {
		t.Errorf("Conversations.Max = %d, want 25", cfg.Conversations.Max)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
backend:
  url: "http://localhost:8080"

user:
  id: "alice"

storage:
  path: "./test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Backend.SendTimeout != DefaultSendTimeout {
		t.Errorf("Backend.SendTimeout = %v, want default %v", cfg.Backend.SendTimeout, DefaultSendTimeout)
	}
	if cfg.User.Workspace != DefaultWorkspace {
		t.Errorf("User.Workspace = %q, want default %q", cfg.User.Workspace, DefaultWorkspace)
	}
	if cfg.Storage.Driver != DefaultStorageDriver {
		t.Errorf("Storage.Driver = %q, want default %q", cfg.Storage.Driver, DefaultStorageDriver)
	}
	if cfg.Conversations.Max != DefaultMaxConversations {
		t.Errorf("Conversations.Max = %d, want default %d", cfg.Conversations.Max, DefaultMaxConversations)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_COVEN_USER", "user-from-env")
	t.Setenv("TEST_COVEN_URL", "http://env-host:9090")

	configPath := writeConfig(t, `
backend:
  url: "${TEST_COVEN_URL}"

user:
  id: "${TEST_COVEN_USER}"

storage:
  path: "./test.db"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify env var expansion
	if cfg.User.ID != "user-from-env" {
		t.Errorf("User.ID = %q, want %q", cfg.User.ID, "user-from-env")
	}
	if cfg.Backend.URL != "http://env-host:9090" {
		t.Errorf("Backend.URL = %q, want %q", cfg.Backend.URL, "http://env-host:9090")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "backend: [not: valid: yaml")

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
backend:
  url: "http://localhost:8080"
  send_timeout: "not-a-duration"

user:
  id: "alice"

storage:
  path: "./test.db"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid duration, got nil")
	}
	if !strings.Contains(err.Error(), "send_timeout") {
		t.Errorf("Load() error = %q, want error mentioning send_timeout", err.Error())
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
		wantErrSubstr string
	}{
		{
			name: "missing backend url",
			configContent: `
user:
  id: "alice"
storage:
  path: "./test.db"
`,
			wantErrSubstr: "backend.url is required",
		},
		{
			name: "missing user id",
			configContent: `
backend:
  url: "http://localhost:8080"
storage:
  path: "./test.db"
`,
			wantErrSubstr: "user.id is required",
		},
		{
			name: "missing storage path",
			configContent: `
backend:
  url: "http://localhost:8080"
user:
  id: "alice"
`,
			wantErrSubstr: "storage.path is required",
		},
		{
			name: "unknown storage driver",
			configContent: `
backend:
  url: "http://localhost:8080"
user:
  id: "alice"
storage:
  driver: "leveldb"
  path: "./test.db"
`,
			wantErrSubstr: "storage.driver",
		},
		{
			name: "negative conversation cap",
			configContent: `
backend:
  url: "http://localhost:8080"
user:
  id: "alice"
storage:
  path: "./test.db"
conversations:
  max: -1
`,
			wantErrSubstr: "conversations.max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.configContent)

			_, err := Load(configPath)
			if err == nil {
				t.Errorf("Load() expected error containing %q, got nil", tt.wantErrSubstr)
				return
			}

			if !strings.Contains(err.Error(), tt.wantErrSubstr) {
				t.Errorf("Load() error = %q, want error containing %q", err.Error(), tt.wantErrSubstr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
