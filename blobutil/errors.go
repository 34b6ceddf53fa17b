package blobutil

import "errors"

var (
	// ErrUnsupportedCompression indicates an unrecognized Scheme value.
	ErrUnsupportedCompression = errors.New("blobutil: unsupported compression scheme")

	// ErrInvalidChunkSize indicates a non-positive chunk size.
	ErrInvalidChunkSize = errors.New("blobutil: chunk size must be positive")

	// ErrRecombinationHashMismatch indicates RecombineChunks' SHA-256 over
	// the concatenated chunks did not match the expected hash.
	ErrRecombinationHashMismatch = errors.New("blobutil: recombination hash mismatch")

	// ErrDecompressedTooLarge indicates decompressed data would exceed
	// MaxDecompressedSize.
	ErrDecompressedTooLarge = errors.New("blobutil: decompressed data exceeds maximum size")
)
