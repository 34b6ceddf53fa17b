// Package bulkrecord implements the fixed-layout binary codec for the
// storage engine's per-blob metadata record (FileRecord) and its flag
// bit-field. There is no version field per record; the 256-byte layout
// below is the only one this package supports.
package bulkrecord

import (
	"encoding/binary"
	"time"
)

// Size is the fixed on-disk size of a FileRecord, in bytes.
const Size = 256

const (
	offUUID    = 0
	lenUUID    = 16
	offStart   = 16
	offEnd     = 24
	offKey     = 32
	lenKey     = 32
	offIV      = 64
	lenIV      = 16
	offCRC     = 80
	offMD5     = 84
	lenMD5     = 16
	offSHA256  = 100
	lenSHA256  = 32
	offCTime   = 132
	offFlags   = 140
	offZero    = 142
	lenZero    = 114
)

// UUID is an opaque 16-byte stable blob identifier.
type UUID [16]byte

// FileRecord is one fixed-size metadata entry describing one stored blob.
type FileRecord struct {
	UUID   UUID
	Start  int64 // byte offset of ciphertext start
	End    int64 // byte offset one past ciphertext end; Start < End
	Key    [32]byte
	IV     [16]byte
	CRC32  uint32
	MD5    [16]byte
	SHA256 [32]byte
	CTime  time.Time // truncated to millisecond precision on round-trip
	Flags  Flags
}

// Validate checks the structural invariant a record must satisfy
// regardless of where it came from: Start < End. It does not check
// UUID uniqueness, which is a property of the owning record table,
// not of an individual record.
func (r FileRecord) Validate() error {
	if r.Start >= r.End {
		return ErrInvalidRecord
	}
	return nil
}

// ToBinary serializes r into its 256-byte on-disk image. Reserved bytes
// are written as zero.
func (r FileRecord) ToBinary() []byte {
	buf := make([]byte, Size)

	copy(buf[offUUID:offUUID+lenUUID], r.UUID[:])
	binary.LittleEndian.PutUint64(buf[offStart:offStart+8], uint64(r.Start))
	binary.LittleEndian.PutUint64(buf[offEnd:offEnd+8], uint64(r.End))
	copy(buf[offKey:offKey+lenKey], r.Key[:])
	copy(buf[offIV:offIV+lenIV], r.IV[:])
	binary.LittleEndian.PutUint32(buf[offCRC:offCRC+4], r.CRC32)
	copy(buf[offMD5:offMD5+lenMD5], r.MD5[:])
	copy(buf[offSHA256:offSHA256+lenSHA256], r.SHA256[:])
	binary.LittleEndian.PutUint64(buf[offCTime:offCTime+8], uint64(r.CTime.UnixMilli()))
	binary.LittleEndian.PutUint16(buf[offFlags:offFlags+2], uint16(r.Flags))
	// buf[offZero:offZero+lenZero] is already zero.

	return buf
}

// FromBinary parses a single 256-byte record image. Reserved bytes are
// ignored. Returns ErrShortBuffer if buf is smaller than Size, or
// ErrInvalidRecord if the parsed Start/End fail validation.
func FromBinary(buf []byte) (FileRecord, error) {
	if len(buf) < Size {
		return FileRecord{}, ErrShortBuffer
	}

	var r FileRecord
	copy(r.UUID[:], buf[offUUID:offUUID+lenUUID])
	r.Start = int64(binary.LittleEndian.Uint64(buf[offStart : offStart+8]))
	r.End = int64(binary.LittleEndian.Uint64(buf[offEnd : offEnd+8]))
	copy(r.Key[:], buf[offKey:offKey+lenKey])
	copy(r.IV[:], buf[offIV:offIV+lenIV])
	r.CRC32 = binary.LittleEndian.Uint32(buf[offCRC : offCRC+4])
	copy(r.MD5[:], buf[offMD5:offMD5+lenMD5])
	copy(r.SHA256[:], buf[offSHA256:offSHA256+lenSHA256])
	r.CTime = time.UnixMilli(int64(binary.LittleEndian.Uint64(buf[offCTime : offCTime+8]))).UTC()
	r.Flags = Flags(binary.LittleEndian.Uint16(buf[offFlags : offFlags+2]))

	if err := r.Validate(); err != nil {
		return FileRecord{}, err
	}
	return r, nil
}

// ManyFromBinary parses len(buf)/Size contiguous records. If
// len(buf) % Size != 0, the trailing partial record is ignored and
// reported through warn (which may be nil, in which case the warning
// is silently dropped — see the BulkStorage Hooks.OnWarning field for
// the production callback). An empty buffer yields an empty slice.
func ManyFromBinary(buf []byte, warn func(format string, args ...any)) ([]FileRecord, error) {
	n := len(buf) / Size
	if rem := len(buf) % Size; rem != 0 && warn != nil {
		warn("bulkrecord: ignoring %d trailing byte(s) after %d complete record(s)", rem, n)
	}

	records := make([]FileRecord, 0, n)
	for i := 0; i < n; i++ {
		r, err := FromBinary(buf[i*Size : (i+1)*Size])
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
