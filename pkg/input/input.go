// Package input wraps the raw byte stream handed to the reader,
// transparently decompressing gzip, zstd, and lz4 inputs detected by
// their magic bytes.
package input

import (
	"bufio"
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/pulsar/pkg/errors"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// Open wraps r so the returned reader yields the decompressed byte
// stream. Unrecognized inputs pass through untouched.
func Open(r io.Reader) (io.Reader, error) {
	buffered := bufio.NewReaderSize(r, 64*1024)
	magic, err := buffered.Peek(4)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to sniff input")
	}

	switch {
	case bytes.HasPrefix(magic, gzipMagic):
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open gzip input")
		}
		return gz, nil
	case bytes.HasPrefix(magic, zstdMagic):
		dec, err := zstd.NewReader(buffered)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open zstd input")
		}
		return dec.IOReadCloser(), nil
	case bytes.HasPrefix(magic, lz4Magic):
		return lz4.NewReader(buffered), nil
	default:
		return buffered, nil
	}
}
