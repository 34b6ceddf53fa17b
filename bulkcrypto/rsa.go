package bulkcrypto

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"strconv"
)

const (
	// RSAKeyBits is the RSA modulus size. A 4096-bit key produces a
	// 512-byte OAEP ciphertext, matching the header's fixed
	// tocInfoCipher field size (spec.md §3).
	RSAKeyBits = 4096

	// privateKeyPEMType is the custom PEM block type for the
	// passphrase-protected PKCS#8 private key envelope.
	privateKeyPEMType = "BULKSTORE ENCRYPTED PRIVATE KEY"

	// publicKeyPEMType is the standard SPKI PEM block type.
	publicKeyPEMType = "PUBLIC KEY"

	// privateKeyKDFIterations is the PBKDF2 iteration count protecting
	// the private key PEM envelope.
	privateKeyKDFIterations = 200000

	// privateKeyChecksumLen is the length, in bytes, of the SHA-256
	// checksum appended to the PKCS#8 DER before encryption, used to
	// detect a wrong passphrase on decode (modeled on
	// wallet.EncryptSeed's seed||checksum layout).
	privateKeyChecksumLen = 8
)

// GenerateKeyPair creates a fresh RSA-4096 key pair.
func GenerateKeyPair() (*rsa.PrivateKey, error) {
	priv, err := rsa.GenerateKey(rand.Reader, RSAKeyBits)
	if err != nil {
		return nil, fmt.Errorf("%w: rsa keygen: %v", ErrCryptoFailure, err)
	}
	return priv, nil
}

// EncodePublicKeyPEM encodes pub as an SPKI PEM block.
func EncodePublicKeyPEM(pub *rsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal spki: %v", ErrCryptoFailure, err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: publicKeyPEMType, Bytes: der}), nil
}

// DecodePublicKeyPEM decodes an SPKI PEM block into an RSA public key.
func DecodePublicKeyPEM(data []byte) (*rsa.PublicKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != publicKeyPEMType {
		return nil, ErrIncompatiblePEM
	}
	key, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("%w: parse spki: %v", ErrCryptoFailure, err)
	}
	pub, ok := key.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA public key", ErrIncompatiblePEM)
	}
	return pub, nil
}

// EncodePrivateKeyPEM encodes priv as a PKCS#8 DER payload wrapped in a
// passphrase-protected PEM block: PBKDF2-SHA256 derives an AES-256 key
// from passphrase and a random salt, and AES-256-CBC encrypts
// der||sha256(der)[:8] (the trailing checksum lets decode detect a
// wrong passphrase instead of returning garbage DER to x509).
func EncodePrivateKeyPEM(priv *rsa.PrivateKey, passphrase string) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("%w: marshal pkcs8: %v", ErrCryptoFailure, err)
	}

	salt := make([]byte, SessionSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("bulkcrypto: private key salt: %w", err)
	}
	iv, err := NewIV()
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(der)
	plaintext := make([]byte, len(der)+privateKeyChecksumLen)
	copy(plaintext, der)
	copy(plaintext[len(der):], sum[:privateKeyChecksumLen])

	var key [32]byte
	copy(key[:], derivePassphraseKey(passphrase, salt, privateKeyKDFIterations))

	ciphertext, err := EncryptCBC(plaintext, key, iv)
	if err != nil {
		return nil, err
	}

	block := &pem.Block{
		Type: privateKeyPEMType,
		Headers: map[string]string{
			"Salt":       hex.EncodeToString(salt),
			"IV":         hex.EncodeToString(iv[:]),
			"Iterations": strconv.Itoa(privateKeyKDFIterations),
		},
		Bytes: ciphertext,
	}
	return pem.EncodeToMemory(block), nil
}

// DecodePrivateKeyPEM decrypts and parses a PEM block produced by
// EncodePrivateKeyPEM. Returns ErrWrongPassphrase if the embedded
// checksum does not match after decryption.
func DecodePrivateKeyPEM(data []byte, passphrase string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != privateKeyPEMType {
		return nil, ErrIncompatiblePEM
	}

	saltHex, ivHex := block.Headers["Salt"], block.Headers["IV"]
	iterStr := block.Headers["Iterations"]
	if saltHex == "" || ivHex == "" || iterStr == "" {
		return nil, ErrIncompatiblePEM
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, fmt.Errorf("%w: salt header: %v", ErrIncompatiblePEM, err)
	}
	ivBytes, err := hex.DecodeString(ivHex)
	if err != nil || len(ivBytes) != IVSize {
		return nil, fmt.Errorf("%w: iv header", ErrIncompatiblePEM)
	}
	iterations, err := strconv.Atoi(iterStr)
	if err != nil || iterations <= 0 {
		return nil, fmt.Errorf("%w: iterations header", ErrIncompatiblePEM)
	}

	var iv [16]byte
	copy(iv[:], ivBytes)
	var key [32]byte
	copy(key[:], derivePassphraseKey(passphrase, salt, iterations))

	plaintext, err := DecryptCBC(block.Bytes, key, iv)
	if err != nil {
		return nil, ErrWrongPassphrase
	}
	if len(plaintext) <= privateKeyChecksumLen {
		return nil, ErrWrongPassphrase
	}

	der := plaintext[:len(plaintext)-privateKeyChecksumLen]
	storedSum := plaintext[len(plaintext)-privateKeyChecksumLen:]
	sum := sha256.Sum256(der)
	if hex.EncodeToString(sum[:privateKeyChecksumLen]) != hex.EncodeToString(storedSum) {
		return nil, ErrWrongPassphrase
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: parse pkcs8: %v", ErrCryptoFailure, err)
	}
	priv, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA private key", ErrIncompatiblePEM)
	}
	return priv, nil
}

// GenKey generates a fresh RSA-4096 key pair and returns its PEM
// encodings: a passphrase-protected PKCS#8 private key and an SPKI
// public key. It is the package-level helper spec.md §6 calls for.
func GenKey(passphrase string) (publicKeyPEM, privateKeyPEM []byte, err error) {
	priv, err := GenerateKeyPair()
	if err != nil {
		return nil, nil, err
	}
	publicKeyPEM, err = EncodePublicKeyPEM(&priv.PublicKey)
	if err != nil {
		return nil, nil, err
	}
	privateKeyPEM, err = EncodePrivateKeyPEM(priv, passphrase)
	if err != nil {
		return nil, nil, err
	}
	return publicKeyPEM, privateKeyPEM, nil
}

// EncryptOAEP encrypts plaintext under pub using RSA-OAEP with SHA-256.
func EncryptOAEP(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	ciphertext, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, pub, plaintext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: oaep encrypt: %v", ErrCryptoFailure, err)
	}
	return ciphertext, nil
}

// DecryptOAEP decrypts ciphertext under priv using RSA-OAEP with SHA-256.
func DecryptOAEP(priv *rsa.PrivateKey, ciphertext []byte) ([]byte, error) {
	plaintext, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, priv, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: oaep decrypt: %v", ErrCryptoFailure, err)
	}
	return plaintext, nil
}
