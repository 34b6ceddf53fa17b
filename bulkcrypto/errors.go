package bulkcrypto

import "errors"

var (
	// ErrCryptoFailure wraps any RSA or AES operation failure: wrong
	// key, corrupt ciphertext, or an unpad error.
	ErrCryptoFailure = errors.New("bulkcrypto: crypto operation failed")

	// ErrInvalidPadding indicates PKCS#7 unpadding found a malformed pad.
	ErrInvalidPadding = errors.New("bulkcrypto: invalid PKCS#7 padding")

	// ErrInvalidKeySize indicates a key or IV buffer has the wrong length.
	ErrInvalidKeySize = errors.New("bulkcrypto: invalid key or IV size")

	// ErrIncompatiblePEM indicates a passphrase-protected PEM block is
	// malformed or was produced by an incompatible encoding.
	ErrIncompatiblePEM = errors.New("bulkcrypto: incompatible PEM envelope")

	// ErrWrongPassphrase indicates the checksum embedded in a
	// passphrase-protected private key did not match after decryption —
	// almost always a wrong passphrase.
	ErrWrongPassphrase = errors.New("bulkcrypto: wrong passphrase")
)
