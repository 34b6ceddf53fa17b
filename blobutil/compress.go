package blobutil

import (
	"bytes"
	"compress/gzip"
	"compress/lzw"
	"fmt"
	"io"
)

// Scheme identifies the compression algorithm applied to a blob before it
// is handed to bulkstore.Add.
type Scheme int32

const (
	SchemeNone Scheme = iota
	SchemeLZW
	SchemeGZIP
)

// MaxDecompressedSize bounds Decompress's output to guard against a
// maliciously crafted small input expanding into something unbounded.
const MaxDecompressedSize = 1 << 30 // 1 GiB

// Compress applies scheme to data, returning the compressed bytes.
func Compress(data []byte, scheme Scheme) ([]byte, error) {
	switch scheme {
	case SchemeNone:
		return data, nil
	case SchemeLZW:
		return compressLZW(data)
	case SchemeGZIP:
		return compressGZIP(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, scheme)
	}
}

// Decompress reverses Compress, refusing to produce more than
// MaxDecompressedSize bytes.
func Decompress(data []byte, scheme Scheme) ([]byte, error) {
	switch scheme {
	case SchemeNone:
		return data, nil
	case SchemeLZW:
		return decompressLZW(data)
	case SchemeGZIP:
		return decompressGZIP(data)
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedCompression, scheme)
	}
}

func compressLZW(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.LSB, 8)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("blobutil: lzw compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("blobutil: lzw compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressLZW(data []byte) ([]byte, error) {
	r := lzw.NewReader(bytes.NewReader(data), lzw.LSB, 8)
	defer r.Close()
	out, err := readAllLimited(r)
	if err != nil {
		return nil, fmt.Errorf("blobutil: lzw decompress: %w", err)
	}
	return out, nil
}

func compressGZIP(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, fmt.Errorf("blobutil: gzip compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("blobutil: gzip compress: %w", err)
	}
	return buf.Bytes(), nil
}

func decompressGZIP(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("blobutil: gzip decompress: %w", err)
	}
	defer r.Close()
	out, err := readAllLimited(r)
	if err != nil {
		return nil, fmt.Errorf("blobutil: gzip decompress: %w", err)
	}
	return out, nil
}

func readAllLimited(r io.Reader) ([]byte, error) {
	limited := io.LimitReader(r, MaxDecompressedSize+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, err
	}
	if len(out) > MaxDecompressedSize {
		return nil, ErrDecompressedTooLarge
	}
	return out, nil
}
