// Package strings provides zero-copy string/byte conversions and pooled
// string building for Pulsar's hot paths. Tokenization uses the unsafe
// conversions to hand cell bytes to strconv without allocating; error
// formatting uses the pooled builders.
package strings

import (
	"fmt"
	"sync"
	"unsafe"
)

// BytesToString converts a byte slice to a string without copying.
// The caller must guarantee the bytes are not mutated while the string
// is live.
func BytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// StringToBytes converts a string to a byte slice without copying.
// The returned slice must not be mutated.
func StringToBytes(s string) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice(unsafe.StringData(s), len(s))
}

// Builder is a minimal append-only string builder backed by a byte
// slice, designed for pooling.
type Builder struct {
	buf []byte
}

// NewBuilder creates a builder with the given initial capacity.
func NewBuilder(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// WriteString appends s.
func (b *Builder) WriteString(s string) {
	b.buf = append(b.buf, s...)
}

// WriteBytes appends data.
func (b *Builder) WriteBytes(data []byte) {
	b.buf = append(b.buf, data...)
}

// WriteByte appends a single byte.
func (b *Builder) WriteByte(c byte) error {
	b.buf = append(b.buf, c)
	return nil
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// String returns an owned copy of the accumulated bytes.
func (b *Builder) String() string {
	return string(b.buf)
}

// Len returns the accumulated length.
func (b *Builder) Len() int { return len(b.buf) }

// Reset truncates the builder, keeping capacity.
func (b *Builder) Reset() { b.buf = b.buf[:0] }

// BuilderSize selects a pool bucket.
type BuilderSize int

const (
	// Small builders serve short messages (error text, header names).
	Small BuilderSize = iota
	// Medium builders serve row-sized output.
	Medium
	// Large builders serve multi-row output.
	Large
)

var builderPools = [...]*sync.Pool{
	{New: func() interface{} { return NewBuilder(256) }},
	{New: func() interface{} { return NewBuilder(4 * 1024) }},
	{New: func() interface{} { return NewBuilder(64 * 1024) }},
}

// GetBuilder fetches a builder from the sized pool.
func GetBuilder(size BuilderSize) *Builder {
	return builderPools[size].Get().(*Builder)
}

// PutBuilder returns a builder to its pool.
func PutBuilder(b *Builder, size BuilderSize) {
	b.Reset()
	builderPools[size].Put(b)
}

// Sprintf formats using a pooled builder instead of fmt.Sprintf's
// internal allocation.
func Sprintf(format string, args ...interface{}) string {
	if len(args) == 0 {
		return format
	}
	size := Small
	if estimated := len(format) + len(args)*16; estimated > 4*1024 {
		size = Medium
	}
	b := GetBuilder(size)
	defer PutBuilder(b, size)
	fmt.Fprintf(b, format, args...)
	return b.String()
}
