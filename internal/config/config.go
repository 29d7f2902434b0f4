package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults for the tunable policy knobs. Both bounds are deliberately
// configuration, not constants: MaxRetries caps cross-run failures per
// mission before permanent escalation, AttemptLimit caps attempts
// within one healing run.
const (
	DefaultMaxRetries       = 3
	DefaultAttemptLimit     = 3
	DefaultMinContextLength = 100
	DefaultTimeoutSeconds   = 120
)

// Config represents the flat mender configuration.
type Config struct {
	Version          string   `json:"version"`
	MaxRetries       int      `json:"max_retries"`
	AttemptLimit     int      `json:"attempt_limit"`
	MinContextLength int      `json:"min_context_length"`
	TimeoutSeconds   int      `json:"collaborator_timeout_seconds"`
	RepoPath         string   `json:"repo_path,omitempty"`     // version-control collaborator root, default cwd
	DecisionPath     string   `json:"decision_path,omitempty"` // decision sink file, default .mender/decision.json
	FixCommand       []string `json:"fix_command,omitempty"`   // code-generation collaborator command
	TestCommand      []string `json:"test_command,omitempty"`  // test-execution collaborator command
	Debug            bool     `json:"debug,omitempty"`
}

// Default returns a config with all policy knobs at their defaults.
func Default() *Config {
	return &Config{
		Version:          "1.0",
		MaxRetries:       DefaultMaxRetries,
		AttemptLimit:     DefaultAttemptLimit,
		MinContextLength: DefaultMinContextLength,
		TimeoutSeconds:   DefaultTimeoutSeconds,
	}
}

// Load reads .mender/config.json from the specified directory.
// Resolution order: the given directory only (no home fallback).
// Returns an error if no config is found - caller should handle accordingly.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ".mender", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadOrDefault reads the config from dir, falling back to defaults
// when no config file exists.
func LoadOrDefault(dir string) *Config {
	cfg, err := Load(dir)
	if err != nil {
		return Default()
	}
	return cfg
}

// Save writes config.json to directory
func Save(dir string, cfg *Config) error {
	menderDir := filepath.Join(dir, ".mender")
	if err := os.MkdirAll(menderDir, 0755); err != nil {
		return fmt.Errorf("failed to create .mender dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(menderDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Timeout returns the collaborator call timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *Config) applyDefaults() {
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.AttemptLimit <= 0 {
		c.AttemptLimit = DefaultAttemptLimit
	}
	if c.MinContextLength <= 0 {
		c.MinContextLength = DefaultMinContextLength
	}
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
}
