package bulkrecord

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomRecord(t *testing.T, start, end int64) FileRecord {
	t.Helper()
	var r FileRecord
	_, err := rand.Read(r.UUID[:])
	require.NoError(t, err)
	_, err = rand.Read(r.Key[:])
	require.NoError(t, err)
	_, err = rand.Read(r.IV[:])
	require.NoError(t, err)
	_, err = rand.Read(r.MD5[:])
	require.NoError(t, err)
	_, err = rand.Read(r.SHA256[:])
	require.NoError(t, err)
	r.Start = start
	r.End = end
	r.CRC32 = 0xdeadbeef
	r.CTime = time.UnixMilli(1700000000123).UTC()
	r.Flags = 0
	return r
}

func TestRoundTrip_Record(t *testing.T) {
	r := randomRecord(t, 520, 1024)
	buf := r.ToBinary()
	require.Len(t, buf, Size)

	got, err := FromBinary(buf)
	require.NoError(t, err)
	assert.Equal(t, r, got)
}

func TestRoundTrip_Many(t *testing.T) {
	records := []FileRecord{
		randomRecord(t, 520, 1024),
		randomRecord(t, 1024, 2048),
		randomRecord(t, 2048, 3000),
	}

	var buf []byte
	for _, r := range records {
		buf = append(buf, r.ToBinary()...)
	}

	got, err := ManyFromBinary(buf, nil)
	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestManyFromBinary_Empty(t *testing.T) {
	got, err := ManyFromBinary(nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestManyFromBinary_TrailingPartialIgnored(t *testing.T) {
	r := randomRecord(t, 520, 1024)
	buf := append(r.ToBinary(), 0x01, 0x02, 0x03)

	var warned string
	warn := func(format string, args ...any) {
		warned = format
	}

	got, err := ManyFromBinary(buf, warn)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, r, got[0])
	assert.NotEmpty(t, warned)
}

func TestFromBinary_ShortBuffer(t *testing.T) {
	_, err := FromBinary(make([]byte, Size-1))
	assert.ErrorIs(t, err, ErrShortBuffer)
}

func TestFromBinary_InvalidStartEnd(t *testing.T) {
	r := randomRecord(t, 10, 5)
	buf := r.ToBinary()
	_, err := FromBinary(buf)
	assert.ErrorIs(t, err, ErrInvalidRecord)
}

func TestValidate_StartEqualsEnd(t *testing.T) {
	r := randomRecord(t, 10, 10)
	assert.ErrorIs(t, r.Validate(), ErrInvalidRecord)
}

func TestReservedBytesZeroed(t *testing.T) {
	r := randomRecord(t, 0, 1)
	buf := r.ToBinary()
	for i := offZero; i < offZero+lenZero; i++ {
		assert.Equal(t, byte(0), buf[i], "reserved byte %d should be zero", i)
	}
}
