// Package filebackend implements the random-access file primitive the
// storage controller appends blob ciphertext to and reads it back from.
// It is a thin, mutex-guarded wrapper over *os.File, grounded on the
// same locking discipline storage.FileStore uses around its directory
// operations.
package filebackend

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// File is a single-file random-access backend guarded by a mutex. A
// storage controller owns exactly one File for the lifetime of its
// container.
type File struct {
	mu     sync.Mutex
	f      *os.File
	path   string
	closed bool
}

// Create creates or truncates the file at path and opens it for
// read/write.
func Create(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: create %s: %v", ErrIOFailure, path, err)
	}
	return &File{f: f, path: path}, nil
}

// Open opens an existing file at path for read/write.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrIOFailure, path, err)
	}
	return &File{f: f, path: path}, nil
}

// ReadAt reads up to len(p) bytes starting at off. Reaching end of file is
// not reported as an error, so n may be less than len(p) with a nil error.
func (fb *File) ReadAt(p []byte, off int64) (int, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return 0, ErrClosed
	}
	n, err := fb.f.ReadAt(p, off)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("%w: read at %d: %v", ErrIOFailure, off, err)
	}
	return n, nil
}

// WriteAt writes p at off, overwriting any existing bytes in that range.
func (fb *File) WriteAt(p []byte, off int64) (int, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return 0, ErrClosed
	}
	n, err := fb.f.WriteAt(p, off)
	if err != nil {
		return n, fmt.Errorf("%w: write at %d: %v", ErrIOFailure, off, err)
	}
	return n, nil
}

// AppendStream copies r to the current end of the file and returns the
// number of bytes written.
func (fb *File) AppendStream(r io.Reader) (int64, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return 0, ErrClosed
	}
	if _, err := fb.f.Seek(0, io.SeekEnd); err != nil {
		return 0, fmt.Errorf("%w: seek end: %v", ErrIOFailure, err)
	}
	n, err := io.Copy(fb.f, r)
	if err != nil {
		return n, fmt.Errorf("%w: append: %v", ErrIOFailure, err)
	}
	return n, nil
}

// rangeReader is the io.ReadCloser returned by ReadStream: an
// io.SectionReader over the backing file that holds no lock of its own
// (os.File.ReadAt is safe for concurrent use).
type rangeReader struct {
	*io.SectionReader
}

func (rangeReader) Close() error { return nil }

// ReadStream returns a ranged io.ReadCloser over the half-open byte
// range [start, end) of the file.
func (fb *File) ReadStream(start, end int64) (io.ReadCloser, error) {
	fb.mu.Lock()
	closed := fb.closed
	f := fb.f
	fb.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if end <= start {
		return nil, fmt.Errorf("%w: end %d <= start %d", ErrInvalidRange, end, start)
	}
	return rangeReader{io.NewSectionReader(f, start, end-start)}, nil
}

// Truncate resizes the file to size bytes.
func (fb *File) Truncate(size int64) error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return ErrClosed
	}
	if err := fb.f.Truncate(size); err != nil {
		return fmt.Errorf("%w: truncate to %d: %v", ErrIOFailure, size, err)
	}
	return nil
}

// Size returns the current file size in bytes.
func (fb *File) Size() (int64, error) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return 0, ErrClosed
	}
	info, err := fb.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("%w: stat: %v", ErrIOFailure, err)
	}
	return info.Size(), nil
}

// Sync flushes the file to stable storage.
func (fb *File) Sync() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return ErrClosed
	}
	if err := fb.f.Sync(); err != nil {
		return fmt.Errorf("%w: sync: %v", ErrIOFailure, err)
	}
	return nil
}

// Close releases the underlying file handle. Any further read, write,
// truncate, size or sync operation returns ErrClosed; a second Close is a
// no-op that returns nil.
func (fb *File) Close() error {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	if fb.closed {
		return nil
	}
	fb.closed = true
	if err := fb.f.Close(); err != nil {
		return fmt.Errorf("%w: close: %v", ErrIOFailure, err)
	}
	return nil
}

// Path returns the filesystem path this backend was opened against.
func (fb *File) Path() string {
	return fb.path
}

// SequentialWriter returns an io.Writer that writes successive calls at
// increasing offsets starting at off, implemented on top of WriteAt so
// the backing file never needs its own seek position managed by callers.
func (fb *File) SequentialWriter(off int64) io.Writer {
	return &sequentialWriter{fb: fb, off: off}
}

type sequentialWriter struct {
	fb  *File
	off int64
}

func (w *sequentialWriter) Write(p []byte) (int, error) {
	n, err := w.fb.WriteAt(p, w.off)
	w.off += int64(n)
	return n, err
}
