package bulkstore

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/bitshard/bulkstore/bulkrecord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("boom")
}

func TestHooks_OnAddedFires(t *testing.T) {
	k := genTestKeys(t)
	path := filepath.Join(t.TempDir(), "c.bulk")

	var added bulkrecord.FileRecord
	fired := false
	s, err := Create(path, mustPublicKey(t, k), WithHooks(Hooks{
		OnAdded: func(r bulkrecord.FileRecord) {
			fired = true
			added = r
		},
	}))
	require.NoError(t, err)
	defer s.Close()

	record, err := s.Add(bytes.NewReader([]byte("hooked")))
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, record.UUID, added.UUID)
}

func TestHooks_OnAbortedFiresOnReadFailure(t *testing.T) {
	k := genTestKeys(t)
	path := filepath.Join(t.TempDir(), "c.bulk")

	var abortErr error
	s, err := Create(path, mustPublicKey(t, k), WithHooks(Hooks{
		OnAborted: func(err error) { abortErr = err },
	}))
	require.NoError(t, err)
	defer s.Close()

	preSize, err := s.file.Size()
	require.NoError(t, err)

	_, err = s.Add(failingReader{})
	assert.ErrorIs(t, err, ErrWriteAborted)
	assert.Error(t, abortErr)

	postSize, err := s.file.Size()
	require.NoError(t, err)
	assert.Equal(t, preSize, postSize)

	records, err := s.Records()
	require.NoError(t, err)
	assert.Empty(t, records)
}
