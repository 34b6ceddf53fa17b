package bulkstore

import "errors"

var (
	// ErrStorageClosed is returned by any operation issued after Close.
	ErrStorageClosed = errors.New("bulkstore: storage is closed")

	// ErrIOFailure wraps an underlying file operation failure.
	ErrIOFailure = errors.New("bulkstore: io operation failed")

	// ErrCryptoFailure wraps an RSA or AES operation failure.
	ErrCryptoFailure = errors.New("bulkstore: crypto operation failed")

	// ErrIncompatibleFile indicates the header magic or major version did
	// not match on Open.
	ErrIncompatibleFile = errors.New("bulkstore: incompatible file")

	// ErrWriteAborted indicates Add's source reader failed or was closed
	// before the encryptor finished; the file has been rolled back to the
	// pre-Add tail.
	ErrWriteAborted = errors.New("bulkstore: write aborted")

	// ErrInvalidRecord indicates a parsed record failed structural
	// validation.
	ErrInvalidRecord = errors.New("bulkstore: invalid record")

	// ErrNotFound is returned by Get for a UUID that has no live record.
	// Delete reports the same condition as (false, nil) instead.
	ErrNotFound = errors.New("bulkstore: record not found")
)
