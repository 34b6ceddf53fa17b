// Package bulkstore implements BulkStorage, the append-only encrypted
// container controller: lifecycle (Create/Open/Sync/Close), mutation
// (Add/Delete/Purge), lookup (Get), and invariant maintenance over an
// in-memory record table mirrored to the encrypted table of contents.
package bulkstore

import (
	"crypto/md5"
	"crypto/rsa"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"sync"
	"time"

	"github.com/bitshard/bulkstore/bulkcrypto"
	"github.com/bitshard/bulkstore/bulkheader"
	"github.com/bitshard/bulkstore/bulkrecord"
	"github.com/bitshard/bulkstore/filebackend"
)

// GenKey generates a fresh RSA-4096 key pair compatible with Create and
// Open: a passphrase-protected PKCS#8 private key PEM and an SPKI public
// key PEM.
func GenKey(passphrase string) (publicKeyPEM, privateKeyPEM []byte, err error) {
	return bulkcrypto.GenKey(passphrase)
}

// Option configures a BulkStorage at construction.
type Option func(*BulkStorage)

// WithHooks registers lifecycle callbacks.
func WithHooks(h Hooks) Option {
	return func(s *BulkStorage) { s.hooks = h }
}

// BulkStorage is the storage controller for one container file. It
// exclusively owns the file handle and the record table for its
// lifetime; mutating operations are serialized by mu, which also guards
// read access to the record table (Get takes a read lock, so concurrent
// Gets proceed in parallel while any mutation excludes all of them).
type BulkStorage struct {
	mu       sync.RWMutex
	file     *filebackend.File
	table    *recordTable
	tocKey   [32]byte
	tocIV    [16]byte
	tocStart int64
	closed   bool
	hooks    Hooks
}

// Create creates or truncates the file at path, generates a fresh
// session tocKey/tocIV, writes the header and an empty TOC under pub,
// and returns an open controller.
func Create(path string, pub *rsa.PublicKey, opts ...Option) (*BulkStorage, error) {
	f, err := filebackend.Create(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	tocKey, err := bulkcrypto.DeriveSessionKey()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	tocIV, err := bulkcrypto.NewIV()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	s := &BulkStorage{
		file:     f,
		table:    newRecordTable(),
		tocKey:   tocKey,
		tocIV:    tocIV,
		tocStart: bulkheader.Size,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.syncLocked(pub); err != nil {
		f.Close()
		return nil, err
	}
	return s, nil
}

// Open reads the header and TOC at path under priv, decrypts the record
// table into memory, then truncates the file to tocStart so future
// blobs overwrite the persisted TOC.
func Open(path string, priv *rsa.PrivateKey, opts ...Option) (*BulkStorage, error) {
	s := &BulkStorage{}
	for _, opt := range opts {
		opt(s)
	}

	f, err := filebackend.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	size, err := f.Size()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	hdrBuf := make([]byte, bulkheader.Size)
	if _, err := f.ReadAt(hdrBuf, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	hdr, err := bulkheader.FromBinary(hdrBuf, priv)
	if err != nil {
		f.Close()
		return nil, translateHeaderErr(err)
	}

	tocLen := size - hdr.TOCStart
	if tocLen < 0 {
		f.Close()
		return nil, fmt.Errorf("%w: toc start %d exceeds file size %d", ErrIOFailure, hdr.TOCStart, size)
	}

	tocBuf := make([]byte, tocLen)
	if tocLen > 0 {
		if _, err := f.ReadAt(tocBuf, hdr.TOCStart); err != nil {
			f.Close()
			return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
	}

	toc, err := bulkheader.TOCFromBinary(tocBuf, hdr.TOCKey, hdr.TOCIV, s.hooks.warning)
	if err != nil {
		f.Close()
		return nil, translateHeaderErr(err)
	}

	if err := f.Truncate(hdr.TOCStart); err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	s.file = f
	s.table = newRecordTableFrom(toc.Records)
	s.tocKey = hdr.TOCKey
	s.tocIV = hdr.TOCIV
	s.tocStart = hdr.TOCStart
	return s, nil
}

func translateHeaderErr(err error) error {
	switch {
	case errors.Is(err, bulkheader.ErrIncompatibleFile):
		return fmt.Errorf("%w: %v", ErrIncompatibleFile, err)
	case errors.Is(err, bulkrecord.ErrInvalidRecord):
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	default:
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
}

// Add encrypts r's contents into a fresh blob region, appends the
// resulting FileRecord to the live table, and returns it. The source is
// teed to CRC-32/MD5/SHA-256 hashers while it is encrypted, so checksums
// reflect the original plaintext. On any read or encryption error the
// file is truncated back to the reserved start offset and ErrWriteAborted
// is returned; the table and tocStart are left unchanged.
func (s *BulkStorage) Add(r io.Reader) (bulkrecord.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return bulkrecord.FileRecord{}, ErrStorageClosed
	}

	start := s.tocStart
	key, err := bulkcrypto.NewKey()
	if err != nil {
		return bulkrecord.FileRecord{}, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	iv, err := bulkcrypto.NewIV()
	if err != nil {
		return bulkrecord.FileRecord{}, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	uuid, err := bulkcrypto.NewUUID()
	if err != nil {
		return bulkrecord.FileRecord{}, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	crcHash := crc32.NewIEEE()
	md5Hash := md5.New()
	sha256Hash := sha256.New()
	tee := io.TeeReader(r, io.MultiWriter(crcHash, md5Hash, sha256Hash))

	sink := s.file.SequentialWriter(start)
	encWriter, err := bulkcrypto.NewCBCEncryptWriter(sink, key, iv)
	if err != nil {
		return bulkrecord.FileRecord{}, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}

	if _, copyErr := io.Copy(encWriter, tee); copyErr != nil {
		return bulkrecord.FileRecord{}, s.abortAdd(start, copyErr)
	}
	written, closeErr := encWriter.Close()
	if closeErr != nil {
		return bulkrecord.FileRecord{}, s.abortAdd(start, closeErr)
	}

	record := bulkrecord.FileRecord{
		UUID:   uuid,
		Start:  start,
		End:    start + written,
		Key:    key,
		IV:     iv,
		CRC32:  crcHash.Sum32(),
		CTime:  time.Now(),
		Flags:  0,
	}
	copy(record.MD5[:], md5Hash.Sum(nil))
	copy(record.SHA256[:], sha256Hash.Sum(nil))

	if err := record.Validate(); err != nil {
		return bulkrecord.FileRecord{}, s.abortAdd(start, err)
	}

	s.table.append(record)
	s.tocStart = record.End
	s.hooks.added(record)
	return record, nil
}

func (s *BulkStorage) abortAdd(start int64, cause error) error {
	_ = s.file.Truncate(start)
	s.hooks.aborted(cause)
	return fmt.Errorf("%w: %v", ErrWriteAborted, cause)
}

// Get returns a decrypting reader over the live blob named by u, or
// ErrNotFound if no live record matches.
func (s *BulkStorage) Get(u bulkrecord.UUID) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStorageClosed
	}

	record, ok := s.table.get(u)
	if !ok || record.Flags.Has(bulkrecord.FlagDeleted) {
		return nil, ErrNotFound
	}

	ciphertext, err := s.file.ReadStream(record.Start, record.End)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	plaintext, err := bulkcrypto.NewCBCDecryptReader(ciphertext, record.Key, record.IV)
	if err != nil {
		ciphertext.Close()
		return nil, fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	return plaintext, nil
}

// Delete marks u as deleted and reports whether a live record was found.
// If u names the tail record, its ciphertext region is reclaimed
// immediately (tail optimization); otherwise the DELETED flag is set and
// the ciphertext remains on disk until Purge.
func (s *BulkStorage) Delete(u bulkrecord.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, ErrStorageClosed
	}

	record, ok := s.table.get(u)
	if !ok || record.Flags.Has(bulkrecord.FlagDeleted) {
		return false, nil
	}

	if record.End == s.tocStart && s.table.isTail(u) {
		if err := s.file.Truncate(record.Start); err != nil {
			return false, fmt.Errorf("%w: %v", ErrIOFailure, err)
		}
		s.table.removeTail(u)
		s.tocStart = record.Start
		return true, nil
	}

	s.table.setFlags(u, record.Flags.Set(bulkrecord.FlagDeleted))
	return true, nil
}

// Sync truncates the file to tocStart, writes the encrypted TOC there,
// then overwrites the header at offset 0 under pub. The public key is
// supplied per call because the private key is never retained between
// Open and Sync.
func (s *BulkStorage) Sync(pub *rsa.PublicKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}
	return s.syncLocked(pub)
}

func (s *BulkStorage) syncLocked(pub *rsa.PublicKey) error {
	if err := s.file.Truncate(s.tocStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	toc := bulkheader.TableOfContents{Records: s.table.snapshot()}
	tocBytes, err := toc.ToBinary(s.tocKey, s.tocIV)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if _, err := s.file.WriteAt(tocBytes, s.tocStart); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}

	hdr := bulkheader.Header{
		Version:  bulkheader.CurrentVersion,
		TOCKey:   s.tocKey,
		TOCIV:    s.tocIV,
		TOCStart: s.tocStart,
	}
	hdrBytes, err := hdr.ToBinary(pub)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCryptoFailure, err)
	}
	if _, err := s.file.WriteAt(hdrBytes, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// Close releases the file handle. Any operation issued afterward fails
// with ErrStorageClosed; a second Close also fails.
func (s *BulkStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}
	s.closed = true
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// IsClosed reports whether Close has already succeeded.
func (s *BulkStorage) IsClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Records returns a read-only snapshot of the live record table in
// insertion order, deleted records included (callers filter on
// FlagDeleted themselves, matching the source's "records" surface).
func (s *BulkStorage) Records() ([]bulkrecord.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrStorageClosed
	}
	return s.table.snapshot(), nil
}

// Purge compacts the container: every DELETED record's ciphertext region
// is reclaimed by sliding subsequent live records down to fill the hole,
// then the file is truncated to the new tail. It runs under the same
// exclusive gate as Add/Delete/Sync/Close.
func (s *BulkStorage) Purge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrStorageClosed
	}

	records := s.table.snapshot()
	cursor := int64(bulkheader.Size)
	var toRemove []bulkrecord.UUID

	for i, r := range records {
		if r.Flags.Has(bulkrecord.FlagDeleted) {
			toRemove = append(toRemove, r.UUID)
			continue
		}

		length := r.End - r.Start
		if r.Start != cursor {
			if err := s.copyRegion(r.Start, cursor, length); err != nil {
				return err
			}
			r.Start = cursor
			r.End = cursor + length
			records[i] = r
			s.table.replace(r.UUID, r)
		}
		cursor += length
	}

	for _, u := range toRemove {
		s.table.remove(u)
	}
	s.tocStart = cursor
	if err := s.file.Truncate(cursor); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}

// copyRegion moves length bytes of raw ciphertext from src to dst within
// the same file, preserving the record's key and IV (the canonical purge
// algorithm's "raw byte copy preserving key+IV" variant).
func (s *BulkStorage) copyRegion(src, dst, length int64) error {
	if length == 0 {
		return nil
	}
	buf := make([]byte, length)
	if _, err := s.file.ReadAt(buf, src); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	if _, err := s.file.WriteAt(buf, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrIOFailure, err)
	}
	return nil
}
