// ABOUTME: Configuration loading and parsing for coven-client
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the corresponding fields are absent from the file.
const (
	DefaultSendTimeout      = 60 * time.Second
	DefaultWorkspace        = "default"
	DefaultStorageDriver    = "bolt"
	DefaultMaxConversations = 50
)

// Config represents the complete coven-client configuration
type Config struct {
	Backend       BackendConfig       `yaml:"backend"`
	User          UserConfig          `yaml:"user"`
	Storage       StorageConfig       `yaml:"storage"`
	Conversations ConversationsConfig `yaml:"conversations"`
	Logging       LoggingConfig       `yaml:"logging"`
}

// BackendConfig holds the remote chat backend configuration
type BackendConfig struct {
	URL         string        `yaml:"url"`
	SendTimeout time.Duration `yaml:"-"`

	// Raw string value for YAML unmarshaling
	SendTimeoutRaw string `yaml:"send_timeout"`
}

// UserConfig identifies the single local user to the backend
type UserConfig struct {
	ID        string `yaml:"id"`
	Workspace string `yaml:"workspace"`
}

// StorageConfig holds durable key-value store configuration
type StorageConfig struct {
	Driver string `yaml:"driver"` // "bolt" or "sqlite"
	Path   string `yaml:"path"`
}

// ConversationsConfig bounds the persisted conversation list
type ConversationsConfig struct {
	Max int `yaml:"max"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	// Parse duration fields
	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	// Match ${VAR_NAME} pattern
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// applyDefaults fills in unset optional fields
func (c *Config) applyDefaults() {
	if c.User.Workspace == "" {
		c.User.Workspace = DefaultWorkspace
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = DefaultStorageDriver
	}
	if c.Conversations.Max == 0 {
		c.Conversations.Max = DefaultMaxConversations
	}
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("backend.url is required")
	}

	if c.User.ID == "" {
		return fmt.Errorf("user.id is required")
	}

	if c.Storage.Driver != "bolt" && c.Storage.Driver != "sqlite" {
		return fmt.Errorf("storage.driver must be \"bolt\" or \"sqlite\", got %q", c.Storage.Driver)
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	if c.Conversations.Max < 1 {
		return fmt.Errorf("conversations.max must be at least 1")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	if cfg.Backend.SendTimeoutRaw == "" {
		cfg.Backend.SendTimeout = DefaultSendTimeout
		return nil
	}

	var err error
	cfg.Backend.SendTimeout, err = time.ParseDuration(cfg.Backend.SendTimeoutRaw)
	if err != nil {
		return fmt.Errorf("parsing send_timeout %q: %w", cfg.Backend.SendTimeoutRaw, err)
	}

	return nil
}
