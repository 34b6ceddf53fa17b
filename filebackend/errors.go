package filebackend

import "errors"

var (
	// ErrIOFailure wraps any underlying os.File operation failure.
	ErrIOFailure = errors.New("filebackend: io operation failed")

	// ErrClosed indicates an operation was attempted on a closed file.
	ErrClosed = errors.New("filebackend: file is closed")

	// ErrInvalidRange indicates a ReadStream range with end <= start.
	ErrInvalidRange = errors.New("filebackend: invalid byte range")
)
