// Package densestorage implements the per-column FIFO that buffers
// tokenized cells between the producer (tokenizer) and the consumers
// (per-column typing engines). Cells are stored as compact byte ranges
// inside shared packed blocks; a Writer publishes blocks onto an
// append-only linked list and any number of independent Readers cursor
// over it, which is what makes two-pass type inference possible without
// rebuffering the input.
package densestorage

import "math"

const (
	// LargeThreshold is the cell size, in bytes, at or above which a
	// cell gets its own owned buffer instead of being packed.
	LargeThreshold = 1024

	// PackedCap is the capacity of one packed block buffer. Control
	// words and small-cell payloads share this space.
	PackedCap = 64 * 1024

	// LargeCap is the capacity, in handles, of one large-array buffer.
	LargeCap = 1024

	// MaxUnobservedBlocks bounds how many published blocks the writer
	// may run ahead of the reader that is furthest along.
	MaxUnobservedBlocks = 16

	// controlWordSize is the byte width of the little-endian control
	// word that precedes every cell in the packed stream.
	controlWordSize = 4

	// largeCellSentinel marks a cell whose payload is the next handle
	// in the large-array stream.
	largeCellSentinel = math.MaxUint32

	// endOfStreamSentinel marks the end of a column's cell stream.
	endOfStreamSentinel = math.MaxUint32 - 1
)
