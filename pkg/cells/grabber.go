// Package cells provides the streaming cell grabbers: state machines
// that consume the raw input and emit one cell per call, flagging
// end-of-row and end-of-input. Two variants exist, one for delimited
// input and one for fixed column widths.
package cells

import "github.com/ajitpratap0/pulsar/pkg/containers"

// Grabber emits one cell per GrabNext call.
//
// dest views the cell's bytes inside the grabber's internal buffer and
// is invalidated by the next call. lastInRow is set when the cell is
// the final one of its row. endOfInput is set, with an empty dest, when
// the input is exhausted; no cell is delivered on that call.
type Grabber interface {
	GrabNext(dest *containers.ByteSlice, lastInRow, endOfInput *bool) error

	// PhysicalRowNum returns the zero-based physical row the grabber
	// is positioned on. Embedded newlines inside quoted cells advance
	// it, so it can exceed the logical row count.
	PhysicalRowNum() int64
}
