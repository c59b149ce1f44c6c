// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkuznets/sekretar/internal/catalog"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "Europe/Moscow", cfg.Timezone)
	assert.Equal(t, "http://127.0.0.1:1234", cfg.Local.BaseURL)
	assert.Equal(t, 120, cfg.Local.TimeoutSecs)
	assert.Equal(t, 5, cfg.Local.ProbeTimeoutSecs)
	assert.True(t, cfg.History.Enabled)
	require.NoError(t, cfg.Validate())

	cat := cfg.Catalog()
	_, ok := cat.LocalModel()
	assert.True(t, ok, "default catalog must include a local model")
	_, ok = cat.BestPublicModel()
	assert.True(t, ok, "default catalog must include a public model")
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
timezone = "Europe/Berlin"

[local]
base_url = "http://localhost:5000"

[cloud]
openrouter_key = "sk-or-test"

[[models]]
name = "only-local"
provider = "local"
model_id = "phi-4"
priority = 1
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "Europe/Berlin", cfg.Timezone)
	assert.Equal(t, "http://localhost:5000", cfg.Local.BaseURL)
	assert.Equal(t, "sk-or-test", cfg.Cloud.OpenRouterKey)
	assert.Equal(t, 120, cfg.Local.TimeoutSecs, "missing values must fall back to defaults")

	// Inline models replace the built-in catalog entirely.
	cat := cfg.Catalog()
	entry, ok := cat.LocalModel()
	require.True(t, ok)
	assert.Equal(t, "only-local", entry.Name)
	_, ok = cat.BestPublicModel()
	assert.False(t, ok)
}

func TestLoadFromPath_FixesPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`timezone = "UTC"`), 0o644))

	_, err := LoadFromPath(path)
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestLoadFromPath_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[local]\nbroken"), 0o600))

	_, err := LoadFromPath(path)
	assert.Error(t, err)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("OPEN_ROUTER_API_KEY", "sk-or-from-env")
	t.Setenv("SEKRETAR_LOCAL_URL", "http://10.0.0.5:1234")
	t.Setenv("SEKRETAR_TZ", "Asia/Yerevan")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "sk-or-from-env", cfg.Cloud.OpenRouterKey)
	assert.Equal(t, "http://10.0.0.5:1234", cfg.Local.BaseURL)
	assert.Equal(t, "Asia/Yerevan", cfg.Timezone)
}

func TestApplyEnvOverrides_SekretarKeyWins(t *testing.T) {
	t.Setenv("OPEN_ROUTER_API_KEY", "generic")
	t.Setenv("SEKRETAR_OPENROUTER_KEY", "specific")

	cfg := Default()
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "specific", cfg.Cloud.OpenRouterKey)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "bad_local_url",
			mutate:  func(c *Config) { c.Local.BaseURL = "not a url" },
			wantErr: "local.base_url",
		},
		{
			name:    "zero_timeout",
			mutate:  func(c *Config) { c.Local.TimeoutSecs = 0 },
			wantErr: "local.timeout_secs",
		},
		{
			name: "unknown_provider",
			mutate: func(c *Config) {
				c.Models = []catalog.Entry{{Name: "x", Provider: "mystery", ModelID: "m"}}
			},
			wantErr: "models[0].provider",
		},
		{
			name: "empty_model_id",
			mutate: func(c *Config) {
				c.Models = []catalog.Entry{{Name: "x", Provider: catalog.ProviderLocal}}
			},
			wantErr: "models[0].model_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestHistoryPath_Explicit(t *testing.T) {
	cfg := Default()
	cfg.History.Path = "/tmp/custom.db"

	path, err := cfg.HistoryPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.db", path)
}
