// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "strings"

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within
// acceptable ranges and returns the first error encountered, or nil if
// valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if cfg.Policy != "fill" && cfg.Policy != "spread" {
		return ErrInvalidPolicy
	}

	if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
		return ErrMissingKeyPath
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if len(cfg.Shards) == 0 {
		return ErrNoShards
	}

	seen := make(map[string]bool, len(cfg.Shards))
	for _, s := range cfg.Shards {
		if s.Path == "" {
			return ErrEmptyShardPath
		}
		if seen[s.Label] {
			return ErrDuplicateShardLabel
		}
		seen[s.Label] = true
	}

	return nil
}
