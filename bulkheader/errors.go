package bulkheader

import "errors"

var (
	// ErrIncompatibleFile indicates the magic string or major version
	// nibble did not match on open.
	ErrIncompatibleFile = errors.New("bulkheader: incompatible file")

	// ErrCryptoFailure wraps an RSA or AES failure while encoding or
	// decoding the header or TOC.
	ErrCryptoFailure = errors.New("bulkheader: crypto operation failed")

	// ErrShortBuffer indicates a buffer passed to FromBinary is smaller
	// than the fixed header size.
	ErrShortBuffer = errors.New("bulkheader: buffer too short for a header")
)
