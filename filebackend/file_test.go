package filebackend

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFile(t *testing.T) *File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "container.bulk")
	f, err := Create(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestFile_AppendAndReadStream(t *testing.T) {
	f := newTestFile(t)

	n, err := f.AppendStream(bytes.NewReader([]byte("hello world")))
	require.NoError(t, err)
	assert.EqualValues(t, 11, n)

	rs, err := f.ReadStream(0, 11)
	require.NoError(t, err)
	data, err := io.ReadAll(rs)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))
	require.NoError(t, rs.Close())

	rs2, err := f.ReadStream(6, 11)
	require.NoError(t, err)
	data2, err := io.ReadAll(rs2)
	require.NoError(t, err)
	assert.Equal(t, "world", string(data2))
}

func TestFile_WriteAtAndReadAt(t *testing.T) {
	f := newTestFile(t)

	_, err := f.AppendStream(bytes.NewReader(make([]byte, 20)))
	require.NoError(t, err)

	_, err = f.WriteAt([]byte("ABCDE"), 5)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := f.ReadAt(buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "ABCDE", string(buf))
}

func TestFile_Truncate(t *testing.T) {
	f := newTestFile(t)

	_, err := f.AppendStream(bytes.NewReader(make([]byte, 100)))
	require.NoError(t, err)

	require.NoError(t, f.Truncate(10))
	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, 10, size)
}

func TestFile_ReadStream_InvalidRange(t *testing.T) {
	f := newTestFile(t)
	_, err := f.ReadStream(10, 10)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestFile_OperationsAfterCloseFail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.bulk")
	f, err := Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	_, err = f.AppendStream(bytes.NewReader([]byte("x")))
	assert.ErrorIs(t, err, ErrClosed)

	_, err = f.Size()
	assert.ErrorIs(t, err, ErrClosed)

	assert.NoError(t, f.Close())
}

func TestOpen_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "y.bulk")
	f, err := Create(path)
	require.NoError(t, err)
	_, err = f.AppendStream(bytes.NewReader([]byte("persisted")))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	size, err := reopened.Size()
	require.NoError(t, err)
	assert.EqualValues(t, len("persisted"), size)
}
