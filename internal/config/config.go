// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config is the CLI configuration, loadable from a JSON file with environment
// fallbacks. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Collaborators
	DatabaseURL string `json:"database_url,omitempty"`
	SourceToken string `json:"source_token,omitempty"` // GitHub API token
	SourceURL   string `json:"source_url,omitempty"`   // override for tests/proxies

	// Aggregation behavior
	LanguageFilter  string `json:"language_filter,omitempty"`
	IntervalMinutes int    `json:"interval_minutes,omitempty" validate:"gte=0"`
	WarmupSeconds   int    `json:"warmup_seconds,omitempty" validate:"gte=0"`
	QuotaThreshold  int    `json:"quota_threshold,omitempty" validate:"gte=0"`

	// Logging
	LogJSON bool `json:"log_json,omitempty"`
	Debug   bool `json:"debug,omitempty"`
}

// Load reads configuration from a JSON file. Returns an error if the file
// cannot be read or parsed.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return &cfg, nil
}

// FromEnv builds a config from environment variables alone.
func FromEnv() *Config {
	return &Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SourceToken: os.Getenv("GITHUB_TOKEN"),
	}
}

// Validate checks the configuration's value ranges.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. CLI flags are merged in by the command layer afterwards.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SourceToken == "" {
		result.SourceToken = defaults.SourceToken
	}
	if result.SourceURL == "" {
		result.SourceURL = defaults.SourceURL
	}
	if result.LanguageFilter == "" {
		result.LanguageFilter = defaults.LanguageFilter
	}
	if result.IntervalMinutes == 0 {
		result.IntervalMinutes = defaults.IntervalMinutes
	}
	if result.WarmupSeconds == 0 {
		result.WarmupSeconds = defaults.WarmupSeconds
	}
	if result.QuotaThreshold == 0 {
		result.QuotaThreshold = defaults.QuotaThreshold
	}

	// Bool fields: cannot distinguish unset from false, so CLI flags win.

	return result
}
