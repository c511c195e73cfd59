// Package containers provides the zero-copy byte containers that carry
// cell text through the reader: ByteSlice, a non-owning view of a byte
// range, and GrowableByteBuffer, reusable scratch storage for cells that
// span input buffer boundaries.
package containers

import "bytes"

// ByteSlice is a view of the half-open range [begin, end) of an
// underlying byte buffer. It never owns storage; the buffer is promised
// immutable for the lifetime of the slice. The zero value is an empty
// slice over a nil buffer.
type ByteSlice struct {
	data  []byte
	begin int
	end   int
}

// NewByteSlice returns a ByteSlice viewing data[begin:end].
func NewByteSlice(data []byte, begin, end int) ByteSlice {
	return ByteSlice{data: data, begin: begin, end: end}
}

// Reset repoints the slice at data[begin:end].
func (bs *ByteSlice) Reset(data []byte, begin, end int) {
	bs.data = data
	bs.begin = begin
	bs.end = end
}

// Data returns the underlying buffer.
func (bs *ByteSlice) Data() []byte { return bs.data }

// Begin returns the inclusive start offset into the underlying buffer.
func (bs *ByteSlice) Begin() int { return bs.begin }

// End returns the exclusive end offset into the underlying buffer.
func (bs *ByteSlice) End() int { return bs.end }

// Size returns the number of bytes in the view.
func (bs *ByteSlice) Size() int { return bs.end - bs.begin }

// Bytes returns the viewed range. The result aliases the underlying
// buffer and is only valid while the buffer is referenced.
func (bs *ByteSlice) Bytes() []byte { return bs.data[bs.begin:bs.end] }

// CopyTo copies the viewed bytes into dest starting at destOffset.
func (bs *ByteSlice) CopyTo(dest []byte, destOffset int) {
	copy(dest[destOffset:], bs.data[bs.begin:bs.end])
}

// Equals reports whether the viewed bytes equal other.
func (bs *ByteSlice) Equals(other []byte) bool {
	return bytes.Equal(bs.data[bs.begin:bs.end], other)
}

// String returns an owned copy of the viewed bytes, interpreted as
// UTF-8.
func (bs *ByteSlice) String() string {
	return string(bs.data[bs.begin:bs.end])
}

// TrimPadding narrows the view so it no longer starts or ends with pad.
func (bs *ByteSlice) TrimPadding(pad byte) {
	for bs.begin != bs.end && bs.data[bs.begin] == pad {
		bs.begin++
	}
	for bs.begin != bs.end && bs.data[bs.end-1] == pad {
		bs.end--
	}
}
