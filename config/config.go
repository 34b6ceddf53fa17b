// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ShardConfig is the on-disk description of one registered shard.
type ShardConfig struct {
	Label        string  `yaml:"label"`
	Path         string  `yaml:"path"`
	MaxSizeGB    float64 `yaml:"max_size_gb,omitempty"`
	MaxFileCount int     `yaml:"max_file_count,omitempty"`
}

// Config is the top-level configuration for a bulk-storage deployment:
// where shard containers live on disk, which policy routes new blobs
// across them, and where the RSA keypair protecting every container's
// header lives.
type Config struct {
	DataDir        string        `yaml:"data_dir"`
	Policy         string        `yaml:"policy"`
	PublicKeyPath  string        `yaml:"public_key_path"`
	PrivateKeyPath string        `yaml:"private_key_path"`
	LogLevel       string        `yaml:"log_level"`
	Shards         []ShardConfig `yaml:"shards"`
}

// DefaultDataDir returns the default data directory under the user's
// home directory, falling back to the current directory if the home
// directory cannot be determined.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".bulkstore"
	}
	return filepath.Join(home, ".bulkstore")
}

// DefaultConfig returns a configuration with a single shard rooted
// under DefaultDataDir, sufficient to Create a BulkStorage and start
// adding blobs.
func DefaultConfig() Config {
	dataDir := DefaultDataDir()
	return Config{
		DataDir:        dataDir,
		Policy:         "fill",
		PublicKeyPath:  filepath.Join(dataDir, "bulkstore.pub.pem"),
		PrivateKeyPath: filepath.Join(dataDir, "bulkstore.key.pem"),
		LogLevel:       "info",
		Shards: []ShardConfig{
			{Label: "primary", Path: filepath.Join(dataDir, "primary.bulk")},
		},
	}
}

// ConfigPath returns the canonical config file path within dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), "config.yaml")
}

// LoadConfig reads and parses a YAML configuration file at path.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, ErrConfigNotFound
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// SaveConfig marshals cfg as YAML and writes it to path, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("config: create directory for %s: %w", path, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}

	header := "# bulkstore configuration\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
