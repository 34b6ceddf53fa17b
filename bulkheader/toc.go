package bulkheader

import (
	"fmt"

	"github.com/bitshard/bulkstore/bulkcrypto"
	"github.com/bitshard/bulkstore/bulkrecord"
)

// TableOfContents is the ordered set of records persisted at the file
// tail between sessions. It carries no header of its own; its length on
// disk is implied by fileSize - header.tocStart.
type TableOfContents struct {
	Records []bulkrecord.FileRecord
}

// ToBinary concatenates the binary image of every record in declaration
// order and encrypts the result with AES-256-CBC under (key, iv),
// applying PKCS#7 padding. An empty TOC still encrypts to one padding
// block.
func (t TableOfContents) ToBinary(key [32]byte, iv [16]byte) ([]byte, error) {
	plain := make([]byte, 0, len(t.Records)*bulkrecord.Size)
	for _, r := range t.Records {
		plain = append(plain, r.ToBinary()...)
	}

	ciphertext, err := bulkcrypto.EncryptCBC(plain, key, iv)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	return ciphertext, nil
}

// TOCFromBinary decrypts ciphertext under (key, iv) and parses the
// result as a sequence of fixed-size FileRecord images. warn receives
// ManyFromBinary's trailing-partial-record warning, if any; it may be
// nil, in which case the warning is silently dropped.
func TOCFromBinary(ciphertext []byte, key [32]byte, iv [16]byte, warn func(format string, args ...any)) (TableOfContents, error) {
	var t TableOfContents
	plain, err := bulkcrypto.DecryptCBC(ciphertext, key, iv)
	if err != nil {
		return t, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	records, err := bulkrecord.ManyFromBinary(plain, warn)
	if err != nil {
		return t, fmt.Errorf("bulkheader: parsing toc records: %w", err)
	}
	t.Records = records
	return t, nil
}
