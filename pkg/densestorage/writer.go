package densestorage

import (
	"context"
	"encoding/binary"

	"golang.org/x/sync/semaphore"

	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// Writer is the producing half of a column's dense storage. It accepts
// cells in arrival order, categorizes each as small or large, and
// publishes them in blocks to the readers. Single-writer; any number of
// independent readers.
//
// Each cell is encoded as a 32-bit little-endian control word inlined
// in the packed stream, optionally followed by payload bytes:
//
//	[0, LargeThreshold)  small cell; that many payload bytes follow
//	largeCellSentinel    the next large-array handle is this cell
//	endOfStreamSentinel  no more cells in this column
//
// Keeping the control words inside the packed buffer keeps control and
// payload bytes spatially adjacent and avoids a third queue.
type Writer struct {
	ctx   context.Context
	state *queueState
	sem   *semaphore.Weighted // nil when not concurrent

	packedBuffer  []byte
	packedBegin   int
	packedCurrent int

	largeBuffer  [][]byte
	largeBegin   int
	largeCurrent int

	tail     *queueNode
	finished bool
}

// NewPair creates a connected Writer/Reader pair. When concurrent is
// true the writer blocks once it is MaxUnobservedBlocks published
// blocks ahead of the reader that is furthest along; ctx aborts that wait. When
// concurrent is false there is no flow control: the caller promises the
// writer runs to completion before any reader starts.
func NewPair(ctx context.Context, concurrent bool) (*Writer, *Reader) {
	st := newQueueState()
	// The initial shared head is a sentinel with no data.
	sentinel := &queueNode{}
	var sem *semaphore.Weighted
	if concurrent {
		sem = semaphore.NewWeighted(MaxUnobservedBlocks)
	}
	w := &Writer{
		ctx:          ctx,
		state:        st,
		sem:          sem,
		packedBuffer: make([]byte, PackedCap),
		largeBuffer:  make([][]byte, LargeCap),
		tail:         sentinel,
	}
	r := &Reader{
		state: st,
		sem:   sem,
		node:  sentinel,
	}
	return w, r
}

// Append adds one cell to the queue. Large cells are copied into their
// own buffer; small cells are packed.
func (w *Writer) Append(bs *containers.ByteSlice) error {
	size := bs.Size()
	if size >= LargeThreshold {
		large := make([]byte, size)
		bs.CopyTo(large, 0)
		if err := w.addControlWord(largeCellSentinel); err != nil {
			return err
		}
		return w.addLargeArray(large)
	}
	if err := w.addControlWord(uint32(size)); err != nil {
		return err
	}
	return w.addBytes(bs)
}

// Finish writes the end-of-stream sentinel and publishes any unflushed
// block. The writer must not be used afterwards.
func (w *Writer) Finish() error {
	if w.finished {
		return nil
	}
	w.finished = true
	if err := w.addControlWord(endOfStreamSentinel); err != nil {
		return err
	}
	return w.flush()
}

// Poison aborts the queue: blocked readers wake with err. Used when the
// producer fails mid-file so consumers do not wait forever.
func (w *Writer) Poison(err error) {
	w.state.Poison(err)
}

func (w *Writer) addControlWord(control uint32) error {
	if w.packedCurrent+controlWordSize > len(w.packedBuffer) {
		if err := w.flush(); err != nil {
			return err
		}
		w.packedBuffer = make([]byte, PackedCap)
		w.packedBegin = 0
		w.packedCurrent = 0
	}
	binary.LittleEndian.PutUint32(w.packedBuffer[w.packedCurrent:], control)
	w.packedCurrent += controlWordSize
	return nil
}

func (w *Writer) addBytes(bs *containers.ByteSlice) error {
	size := bs.Size()
	if size == 0 {
		return nil
	}
	if w.packedCurrent+size > len(w.packedBuffer) {
		if err := w.flush(); err != nil {
			return err
		}
		w.packedBuffer = make([]byte, PackedCap)
		w.packedBegin = 0
		w.packedCurrent = 0
	}
	bs.CopyTo(w.packedBuffer, w.packedCurrent)
	w.packedCurrent += size
	return nil
}

func (w *Writer) addLargeArray(large []byte) error {
	if w.largeCurrent == len(w.largeBuffer) {
		if err := w.flush(); err != nil {
			return err
		}
		w.largeBuffer = make([][]byte, LargeCap)
		w.largeBegin = 0
		w.largeCurrent = 0
	}
	w.largeBuffer[w.largeCurrent] = large
	w.largeCurrent++
	return nil
}

// flush publishes the not-yet-published suffix of both buffers as a new
// queue node. The new node owns packedBuffer[packedBegin, packedCurrent)
// and largeBuffer[largeBegin, largeCurrent); the writer keeps the
// remainder of the still-current buffers.
func (w *Writer) flush() error {
	if w.packedBegin == w.packedCurrent && w.largeBegin == w.largeCurrent {
		return nil
	}
	node := &queueNode{
		packedBuffer: w.packedBuffer,
		packedBegin:  w.packedBegin,
		packedEnd:    w.packedCurrent,
		largeBuffer:  w.largeBuffer,
		largeBegin:   w.largeBegin,
		largeEnd:     w.largeCurrent,
	}
	w.packedBegin = w.packedCurrent
	w.largeBegin = w.largeCurrent

	if w.sem != nil {
		if err := w.sem.Acquire(w.ctx, 1); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInterrupted,
				"interrupted while waiting for readers to drain")
		}
	}

	st := w.state
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.poisoned != nil {
		return st.poisoned
	}
	if w.tail.next != nil {
		return errors.New(errors.ErrorTypeInternal, "queue tail next is already set")
	}
	w.tail.next = node
	w.tail = node
	st.cond.Broadcast()
	return nil
}
