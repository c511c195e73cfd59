package containers

// GrowableByteBuffer is reusable append-only scratch storage. The
// delimited cell grabber spills a partially-read cell here when the
// cell crosses an input buffer refill.
type GrowableByteBuffer struct {
	data []byte
}

// NewGrowableByteBuffer returns an empty buffer with a small initial
// capacity.
func NewGrowableByteBuffer() *GrowableByteBuffer {
	return &GrowableByteBuffer{data: make([]byte, 0, 1024)}
}

// Append copies src onto the end of the buffer, growing as needed.
func (g *GrowableByteBuffer) Append(src []byte) {
	g.data = append(g.data, src...)
}

// AppendByte copies a single byte onto the end of the buffer.
func (g *GrowableByteBuffer) AppendByte(b byte) {
	g.data = append(g.data, b)
}

// Clear resets the buffer to empty, keeping capacity.
func (g *GrowableByteBuffer) Clear() { g.data = g.data[:0] }

// Data returns the accumulated bytes. The result aliases internal
// storage and is invalidated by the next Append or Clear.
func (g *GrowableByteBuffer) Data() []byte { return g.data }

// Size returns the number of accumulated bytes.
func (g *GrowableByteBuffer) Size() int { return len(g.data) }
