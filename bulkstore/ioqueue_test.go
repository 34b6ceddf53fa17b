package bulkstore

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitshard/bulkstore/filebackend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIOQueue_RunSucceeds(t *testing.T) {
	f, err := filebackend.Create(filepath.Join(t.TempDir(), "q.bulk"))
	require.NoError(t, err)
	defer f.Close()

	q := NewIOQueue(f)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	err = q.Run(ctx, TaskAppend, func(file *filebackend.File) error {
		_, err := file.AppendStream(bytes.NewReader([]byte("payload")))
		return err
	})
	require.NoError(t, err)

	size, err := f.Size()
	require.NoError(t, err)
	assert.EqualValues(t, len("payload"), size)
}

func TestIOQueue_TimesOut(t *testing.T) {
	f, err := filebackend.Create(filepath.Join(t.TempDir(), "q.bulk"))
	require.NoError(t, err)
	defer f.Close()

	q := NewIOQueue(f)
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	err = q.Run(ctx, TaskCritical, func(file *filebackend.File) error {
		time.Sleep(50 * time.Millisecond)
		return nil
	})
	assert.Error(t, err)
}
