package shard

import "errors"

var (
	// ErrNoEligibleShard indicates every registered shard is at or over
	// its maxSizeGB/maxFileCount limit.
	ErrNoEligibleShard = errors.New("shard: no eligible shard for selection")

	// ErrUnknownShard indicates an operation referenced a shard index or
	// label that was never registered with the manager.
	ErrUnknownShard = errors.New("shard: unknown shard")

	// ErrNotFound indicates a UUID was not located on any registered
	// shard.
	ErrNotFound = errors.New("shard: blob not found on any shard")

	// ErrDuplicateShard indicates a shard label was registered twice.
	ErrDuplicateShard = errors.New("shard: shard label already registered")

	// ErrIOFailure wraps a persisted-metadata store failure.
	ErrIOFailure = errors.New("shard: metadata store io failure")
)
