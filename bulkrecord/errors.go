package bulkrecord

import "errors"

var (
	// ErrInvalidRecord indicates a record failed structural validation:
	// start >= end.
	ErrInvalidRecord = errors.New("bulkrecord: invalid record")

	// ErrShortBuffer indicates a buffer passed to FromBinary is smaller
	// than the fixed record size.
	ErrShortBuffer = errors.New("bulkrecord: buffer too short for a record")
)
