// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for sekretar.
//
// TOML with sensible defaults, environment variable overrides, and
// validation. File location: ~/.sekretar/config.toml; built-in
// defaults apply when the file is absent.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/mkuznets/sekretar/internal/catalog"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete sekretar configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version"`

	// Timezone is the IANA zone events are interpreted in.
	Timezone string `toml:"timezone"`

	// Local (LM Studio) configuration.
	Local LocalConfig `toml:"local"`

	// Cloud (OpenRouter) configuration.
	Cloud CloudConfig `toml:"cloud"`

	// History configuration.
	History HistoryConfig `toml:"history"`

	// CatalogPath points to a standalone model catalog file. Ignored
	// when Models is non-empty.
	CatalogPath string `toml:"catalog_path"`

	// Models is the inline model catalog.
	Models []catalog.Entry `toml:"models"`
}

// LocalConfig contains local model server configuration.
type LocalConfig struct {
	// BaseURL is the URL of the local OpenAI-compatible server.
	BaseURL string `toml:"base_url"`
	// TimeoutSecs bounds a generate call.
	TimeoutSecs int `toml:"timeout_secs"`
	// ProbeTimeoutSecs bounds the availability probe.
	ProbeTimeoutSecs int `toml:"probe_timeout_secs"`
}

// CloudConfig contains remote provider (OpenRouter) configuration.
type CloudConfig struct {
	// OpenRouterKey is the OpenRouter API key.
	OpenRouterKey string `toml:"openrouter_key"`
	// TimeoutSecs bounds a generate call.
	TimeoutSecs int `toml:"timeout_secs"`
}

// HistoryConfig contains request history configuration.
type HistoryConfig struct {
	// Enabled toggles the request log.
	Enabled bool `toml:"enabled"`
	// Path is the sqlite database location (empty = default under
	// ~/.sekretar).
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version:  "1.0.0",
		Timezone: "Europe/Moscow",

		Local: LocalConfig{
			BaseURL:          "http://127.0.0.1:1234",
			TimeoutSecs:      120,
			ProbeTimeoutSecs: 5,
		},

		Cloud: CloudConfig{
			OpenRouterKey: "",
			TimeoutSecs:   120,
		},

		History: HistoryConfig{
			Enabled: true,
		},

		Models: []catalog.Entry{
			{
				Name:     "local-qwen",
				Provider: catalog.ProviderLocal,
				ModelID:  "qwen2.5-7b-instruct",
				TaskTags: []string{"classification", "extraction"},
				Priority: 1,
				Enabled:  true,
			},
			{
				Name:     "cloud-qwen",
				Provider: catalog.ProviderOpenRouter,
				ModelID:  "qwen/qwen-2.5-72b-instruct",
				TaskTags: []string{"public_chat"},
				Priority: 1,
				Enabled:  true,
			},
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the sekretar configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".sekretar"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0o755)
}

// ensureSecurePermissions fixes permissions on the config file.
// SECURITY: the file holds an API key and must be 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0o600 {
		if err := os.Chmod(path, 0o600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default location, falling back to
// built-in defaults when no file exists. Environment overrides are
// applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from an explicit file path.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := ensureSecurePermissions(path); err != nil {
		return nil, err
	}

	cfg.fillDefaults()
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func (c *Config) fillDefaults() {
	def := Default()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Timezone == "" {
		c.Timezone = def.Timezone
	}
	if c.Local.BaseURL == "" {
		c.Local.BaseURL = def.Local.BaseURL
	}
	if c.Local.TimeoutSecs == 0 {
		c.Local.TimeoutSecs = def.Local.TimeoutSecs
	}
	if c.Local.ProbeTimeoutSecs == 0 {
		c.Local.ProbeTimeoutSecs = def.Local.ProbeTimeoutSecs
	}
	if c.Cloud.TimeoutSecs == 0 {
		c.Cloud.TimeoutSecs = def.Cloud.TimeoutSecs
	}
}

// ApplyEnvOverrides applies environment variable overrides.
//
// Recognized variables:
//   - OPEN_ROUTER_API_KEY / SEKRETAR_OPENROUTER_KEY: remote credential
//   - SEKRETAR_LOCAL_URL: local server base URL
//   - SEKRETAR_TZ: timezone
//   - SEKRETAR_HISTORY_PATH: history database location
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("OPEN_ROUTER_API_KEY"); v != "" {
		c.Cloud.OpenRouterKey = v
	}
	if v := os.Getenv("SEKRETAR_OPENROUTER_KEY"); v != "" {
		c.Cloud.OpenRouterKey = v
	}
	if v := os.Getenv("SEKRETAR_LOCAL_URL"); v != "" {
		c.Local.BaseURL = v
	}
	if v := os.Getenv("SEKRETAR_TZ"); v != "" {
		c.Timezone = v
	}
	if v := os.Getenv("SEKRETAR_HISTORY_PATH"); v != "" {
		c.History.Path = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError describes one invalid config field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	var errs []error

	if _, err := url.Parse(c.Local.BaseURL); err != nil || !strings.HasPrefix(c.Local.BaseURL, "http") {
		errs = append(errs, ValidationError{Field: "local.base_url", Message: "must be an http(s) URL"})
	}
	if c.Local.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "local.timeout_secs", Message: "must be positive"})
	}
	if c.Local.ProbeTimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "local.probe_timeout_secs", Message: "must be positive"})
	}
	if c.Cloud.TimeoutSecs <= 0 {
		errs = append(errs, ValidationError{Field: "cloud.timeout_secs", Message: "must be positive"})
	}

	for i, m := range c.Models {
		if m.Name == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("models[%d].name", i), Message: "must not be empty"})
		}
		if m.Provider != catalog.ProviderLocal && m.Provider != catalog.ProviderOpenRouter {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("models[%d].provider", i),
				Message: fmt.Sprintf("unknown provider %q", m.Provider),
			})
		}
		if m.ModelID == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("models[%d].model_id", i), Message: "must not be empty"})
		}
	}

	return errors.Join(errs...)
}

// =============================================================================
// DERIVED VALUES
// =============================================================================

// Catalog builds the model catalog: inline entries win, otherwise the
// standalone catalog file is loaded (tolerating failure with an empty
// catalog).
func (c *Config) Catalog() *catalog.Catalog {
	if len(c.Models) > 0 {
		return catalog.New(c.Models)
	}
	if c.CatalogPath != "" {
		return catalog.Load(c.CatalogPath)
	}
	return catalog.New(nil)
}

// HistoryPath returns the history database location, defaulting to
// ~/.sekretar/history.db.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}
