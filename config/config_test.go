// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "fill", cfg.Policy)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.NotEmpty(t, cfg.DataDir)
	require.Len(t, cfg.Shards, 1)
	assert.Equal(t, "primary", cfg.Shards[0].Label)
}

func TestDefaultDataDir_EndsWithDotBulkstore(t *testing.T) {
	dir := DefaultDataDir()
	assert.True(t, strings.HasSuffix(dir, ".bulkstore"))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	original := Config{
		DataDir:        "/tmp/test-bulkstore",
		Policy:         "spread",
		PublicKeyPath:  "/tmp/test-bulkstore/pub.pem",
		PrivateKeyPath: "/tmp/test-bulkstore/key.pem",
		LogLevel:       "debug",
		Shards: []ShardConfig{
			{Label: "a", Path: "/tmp/test-bulkstore/a.bulk", MaxSizeGB: 10, MaxFileCount: 1000},
			{Label: "b", Path: "/tmp/test-bulkstore/b.bulk"},
		},
	}

	require.NoError(t, SaveConfig(path, original))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, original.DataDir, loaded.DataDir)
	assert.Equal(t, original.Policy, loaded.Policy)
	assert.Equal(t, original.PublicKeyPath, loaded.PublicKeyPath)
	assert.Equal(t, original.PrivateKeyPath, loaded.PrivateKeyPath)
	assert.Equal(t, original.LogLevel, loaded.LogLevel)
	require.Len(t, loaded.Shards, 2)
	assert.Equal(t, original.Shards, loaded.Shards)
}

func TestSaveConfigCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "subdir", "config.yaml")

	require.NoError(t, SaveConfig(path, DefaultConfig()))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestLoadConfigNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, ErrConfigNotFound)
}

func TestLoadConfig_MalformedYAMLFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: [unterminated\n"), 0o600))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_PartialOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	// Unset fields retain DefaultConfig's values since LoadConfig seeds
	// from DefaultConfig before unmarshaling over it.
	assert.Equal(t, "fill", cfg.Policy)
}

func TestConfigPath(t *testing.T) {
	got := ConfigPath("/home/user/.bulkstore")
	want := filepath.Join("/home/user/.bulkstore", "config.yaml")
	assert.Equal(t, want, got)
}

func TestConfigPath_WithTrailingSlash(t *testing.T) {
	got := ConfigPath("/foo/")
	want := filepath.Join("/foo", "config.yaml")
	assert.Equal(t, want, got)
}

func TestValidateConfig_Defaults(t *testing.T) {
	assert.NoError(t, ValidateConfig(DefaultConfig()))
}

func TestValidateConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{"empty_datadir", func(c *Config) { c.DataDir = "" }, ErrEmptyDataDir},
		{"bad_policy", func(c *Config) { c.Policy = "round-robin" }, ErrInvalidPolicy},
		{"missing_public_key", func(c *Config) { c.PublicKeyPath = "" }, ErrMissingKeyPath},
		{"missing_private_key", func(c *Config) { c.PrivateKeyPath = "" }, ErrMissingKeyPath},
		{"bad_loglevel", func(c *Config) { c.LogLevel = "verbose" }, ErrInvalidLogLevel},
		{"no_shards", func(c *Config) { c.Shards = nil }, ErrNoShards},
		{
			"empty_shard_path",
			func(c *Config) { c.Shards = []ShardConfig{{Label: "a", Path: ""}} },
			ErrEmptyShardPath,
		},
		{
			"duplicate_shard_label",
			func(c *Config) {
				c.Shards = []ShardConfig{
					{Label: "a", Path: "a.bulk"},
					{Label: "a", Path: "b.bulk"},
				}
			},
			ErrDuplicateShardLabel,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			assert.ErrorIs(t, ValidateConfig(cfg), tc.wantErr)
		})
	}
}

func TestValidateConfig_LogLevelCaseInsensitive(t *testing.T) {
	for _, level := range []string{"INFO", "Debug", "WARN", "Error"} {
		cfg := DefaultConfig()
		cfg.LogLevel = level
		assert.NoError(t, ValidateConfig(cfg), "level %q", level)
	}
}

func TestValidateConfig_BothPoliciesValid(t *testing.T) {
	for _, policy := range []string{"fill", "spread"} {
		cfg := DefaultConfig()
		cfg.Policy = policy
		assert.NoError(t, ValidateConfig(cfg), "policy %q", policy)
	}
}
