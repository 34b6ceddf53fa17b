// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import "errors"

var (
	// ErrConfigNotFound indicates the configuration file does not exist.
	ErrConfigNotFound = errors.New("config: configuration file not found")

	// ErrEmptyDataDir indicates the data directory path is empty.
	ErrEmptyDataDir = errors.New("config: data directory must not be empty")

	// ErrInvalidPolicy indicates the shard selection policy is not recognized.
	ErrInvalidPolicy = errors.New("config: invalid shard policy (must be \"fill\" or \"spread\")")

	// ErrNoShards indicates no shards were configured.
	ErrNoShards = errors.New("config: at least one shard must be configured")

	// ErrDuplicateShardLabel indicates two shards share a label.
	ErrDuplicateShardLabel = errors.New("config: duplicate shard label")

	// ErrEmptyShardPath indicates a shard entry has no file path.
	ErrEmptyShardPath = errors.New("config: shard path must not be empty")

	// ErrMissingKeyPath indicates a required key file path was not set.
	ErrMissingKeyPath = errors.New("config: key path must not be empty")

	// ErrInvalidLogLevel indicates the log level is not recognized.
	ErrInvalidLogLevel = errors.New("config: invalid log level (must be \"debug\", \"info\", \"warn\", or \"error\")")
)
