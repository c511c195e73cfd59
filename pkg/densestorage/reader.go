package densestorage

import (
	"encoding/binary"

	"golang.org/x/sync/semaphore"

	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// Reader is a forward-only cursor over a column's stored cells. Readers
// are cheap to clone; each clone advances independently over the shared
// append-only queue, which is how the typing engine replays a column
// for its second pass.
type Reader struct {
	state *queueState
	sem   *semaphore.Weighted

	node          *queueNode
	packedCurrent int
	largeCurrent  int
	done          bool
}

// Clone snapshots the reader's position. Both copies henceforth advance
// independently. The queue is append-only, so no locking is needed
// beyond reading the current cursors.
func (r *Reader) Clone() *Reader {
	return &Reader{
		state:         r.state,
		sem:           r.sem,
		node:          r.node,
		packedCurrent: r.packedCurrent,
		largeCurrent:  r.largeCurrent,
		done:          r.done,
	}
}

// TryGetNextSlice fetches the next cell into bs. It returns false at
// end of stream. The returned slice is backed by the currently-held
// queue node and remains valid until the reader (or its clones sharing
// the node) advances past that node.
func (r *Reader) TryGetNextSlice(bs *containers.ByteSlice) (bool, error) {
	if r.done {
		return false, nil
	}
	control, err := r.nextControlWord()
	if err != nil {
		return false, err
	}
	switch control {
	case endOfStreamSentinel:
		r.done = true
		return false, nil
	case largeCellSentinel:
		if err := r.sliceFromLargeArray(bs); err != nil {
			return false, err
		}
		return true, nil
	default:
		if err := r.sliceFromPackedArray(bs, int(control)); err != nil {
			return false, err
		}
		return true, nil
	}
}

func (r *Reader) nextControlWord() (uint32, error) {
	for r.packedCurrent == r.node.packedEnd {
		if err := r.advanceNode(); err != nil {
			return 0, err
		}
	}
	if r.packedCurrent+controlWordSize > r.node.packedEnd {
		return 0, errors.Newf(errors.ErrorTypeInternal,
			"short block: control word needs %d bytes, block has %d",
			controlWordSize, r.node.packedEnd-r.packedCurrent)
	}
	control := binary.LittleEndian.Uint32(r.node.packedBuffer[r.packedCurrent:])
	r.packedCurrent += controlWordSize
	return control, nil
}

func (r *Reader) sliceFromLargeArray(bs *containers.ByteSlice) error {
	for r.largeCurrent == r.node.largeEnd {
		if err := r.advanceNode(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal,
				"premature end of large array stream")
		}
	}
	large := r.node.largeBuffer[r.largeCurrent]
	r.largeCurrent++
	bs.Reset(large, 0, len(large))
	return nil
}

func (r *Reader) sliceFromPackedArray(bs *containers.ByteSlice, size int) error {
	if size == 0 {
		bs.Reset(r.node.packedBuffer, r.packedCurrent, r.packedCurrent)
		return nil
	}
	for r.packedCurrent == r.node.packedEnd {
		if err := r.advanceNode(); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal,
				"premature end of packed stream")
		}
	}
	if r.packedCurrent+size > r.node.packedEnd {
		return errors.Newf(errors.ErrorTypeInternal,
			"short block: expected at least %d bytes, block has %d",
			size, r.node.packedEnd-r.packedCurrent)
	}
	end := r.packedCurrent + size
	bs.Reset(r.node.packedBuffer, r.packedCurrent, end)
	r.packedCurrent = end
	return nil
}

// advanceNode blocks until the current node's next link is set, marks
// the transition observed, and moves to the next node. Only the first
// reader to observe a given node's transition releases a flow-control
// permit, so the producer is paced by the reader that is furthest along;
// a reader that lags does not hold the producer back.
func (r *Reader) advanceNode() error {
	st := r.state
	st.mu.Lock()
	for r.node.next == nil {
		if st.poisoned != nil {
			err := st.poisoned
			st.mu.Unlock()
			return err
		}
		st.cond.Wait()
	}
	next := r.node.next
	firstObserver := !r.node.observed
	r.node.observed = true
	st.mu.Unlock()

	if firstObserver && r.sem != nil {
		r.sem.Release(1)
	}
	r.node = next
	r.packedCurrent = next.packedBegin
	r.largeCurrent = next.largeBegin
	return nil
}
