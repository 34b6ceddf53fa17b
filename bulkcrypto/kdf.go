package bulkcrypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SessionPassphraseLen is the length of the random passphrase used
	// to derive a fresh session tocKey on create.
	SessionPassphraseLen = 64

	// SessionSaltLen is the length of the random salt used alongside
	// the session passphrase.
	SessionSaltLen = 16

	// SessionKDFIterations is the PBKDF2 iteration count for deriving
	// the session tocKey, per spec.md §4.2 create().
	SessionKDFIterations = 16384
)

// DeriveSessionKey derives a fresh 32-byte tocKey via PBKDF2-SHA256 over
// a random 64-byte passphrase and random 16-byte salt, 16,384
// iterations. Both the passphrase and salt are generated internally;
// neither is retained after this call returns, matching spec.md's
// description of tocKey as unrelated to any externally supplied
// passphrase (that role belongs to the RSA key pair instead).
func DeriveSessionKey() ([32]byte, error) {
	var key [32]byte

	passphrase := make([]byte, SessionPassphraseLen)
	if _, err := rand.Read(passphrase); err != nil {
		return key, fmt.Errorf("bulkcrypto: session passphrase: %w", err)
	}
	salt := make([]byte, SessionSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return key, fmt.Errorf("bulkcrypto: session salt: %w", err)
	}

	derived := pbkdf2.Key(passphrase, salt, SessionKDFIterations, KeySize, sha256.New)
	copy(key[:], derived)
	return key, nil
}

// derivePassphraseKey derives a 32-byte AES key from a user-supplied
// passphrase and salt via PBKDF2-SHA256, for protecting the RSA private
// key's PEM envelope (see rsa.go).
func derivePassphraseKey(passphrase string, salt []byte, iterations int) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, iterations, KeySize, sha256.New)
}
