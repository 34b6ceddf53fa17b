// Package bulkheader implements the fixed 520-byte Header layout and the
// variable-length TableOfContents block: the two pieces of a container
// file that sit outside the plain blob regions. The header's TOC-info
// block is RSA-OAEP protected; the TOC itself is AES-256-CBC protected
// under the key and IV recovered from that block.
package bulkheader

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"fmt"

	"github.com/bitshard/bulkstore/bulkcrypto"
)

const (
	// Size is the total on-disk size of the Header block.
	Size = 520

	magicValue   = "BULK#"
	offMagic     = 0
	lenMagic     = 5
	offVersion   = 5
	lenVersion   = 3
	offTOCCipher = 8
	lenTOCCipher = 512

	// tocInfoPlainSize is the size of the TOC-info plaintext before RSA
	// encryption: tocKey(32) + tocIV(16) + tocStart(8) + random pad(200).
	tocInfoPlainSize  = 256
	tocInfoPadSize    = 200
	tocKeyOff         = 0
	tocIVOff          = 32
	tocStartOff       = 48
)

// Version identifies the on-disk header layout's major/minor/patch
// nibbles. Only a major nibble of 0 is currently accepted on open.
type Version [3]byte

// CurrentVersion is the version BulkStorage sets on every header it
// writes; Header.ToBinary itself writes whatever h.Version holds.
var CurrentVersion = Version{0, 0, 0}

// Header is the decoded form of the 520-byte header block.
type Header struct {
	Version  Version
	TOCKey   [32]byte
	TOCIV    [16]byte
	TOCStart int64
}

// ToBinary constructs the 520-byte header image. The TOC-info plaintext
// is tocKey‖tocIV‖tocStart‖random(200), encrypted under pub with
// RSA-OAEP. The result is deterministic only up to the random padding.
func (h Header) ToBinary(pub *rsa.PublicKey) ([]byte, error) {
	plain := make([]byte, tocInfoPlainSize)
	copy(plain[tocKeyOff:], h.TOCKey[:])
	copy(plain[tocIVOff:], h.TOCIV[:])
	binary.LittleEndian.PutUint64(plain[tocStartOff:], uint64(h.TOCStart))
	if _, err := rand.Read(plain[tocInfoPlainSize-tocInfoPadSize:]); err != nil {
		return nil, fmt.Errorf("bulkheader: toc-info padding: %w", err)
	}

	cipherBlock, err := bulkcrypto.EncryptOAEP(pub, plain)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if len(cipherBlock) != lenTOCCipher {
		return nil, fmt.Errorf("%w: toc-info cipher is %d bytes, want %d", ErrCryptoFailure, len(cipherBlock), lenTOCCipher)
	}

	buf := make([]byte, Size)
	copy(buf[offMagic:], magicValue)
	copy(buf[offVersion:], h.Version[:])
	copy(buf[offTOCCipher:], cipherBlock)
	return buf, nil
}

// FromBinary validates the magic and major version nibble, then decrypts
// the TOC-info block under priv. The caller is responsible for having
// already decrypted priv from its passphrase-protected PEM form.
func FromBinary(buf []byte, priv *rsa.PrivateKey) (Header, error) {
	var h Header
	if len(buf) < Size {
		return h, ErrShortBuffer
	}
	if string(buf[offMagic:offMagic+lenMagic]) != magicValue {
		return h, fmt.Errorf("%w: bad magic", ErrIncompatibleFile)
	}

	copy(h.Version[:], buf[offVersion:offVersion+lenVersion])
	if h.Version[0] != 0 {
		return h, fmt.Errorf("%w: unsupported major version %d", ErrIncompatibleFile, h.Version[0])
	}

	cipherBlock := buf[offTOCCipher : offTOCCipher+lenTOCCipher]
	plain, err := bulkcrypto.DecryptOAEP(priv, cipherBlock)
	if err != nil {
		return h, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if len(plain) != tocInfoPlainSize {
		return h, fmt.Errorf("%w: toc-info plaintext is %d bytes, want %d", ErrCryptoFailure, len(plain), tocInfoPlainSize)
	}

	copy(h.TOCKey[:], plain[tocKeyOff:tocKeyOff+32])
	copy(h.TOCIV[:], plain[tocIVOff:tocIVOff+16])
	h.TOCStart = int64(binary.LittleEndian.Uint64(plain[tocStartOff : tocStartOff+8]))
	return h, nil
}
