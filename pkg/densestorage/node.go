package densestorage

import (
	"sync"

	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// queueNode is one element of the append-only linked list shared by the
// writer and all readers. Every field except next and observed is
// immutable once the node is published. next transitions from nil to
// non-nil at most once, under queueState.mu; observed records whether
// any reader has seen that transition, which gates the flow-control
// release.
type queueNode struct {
	packedBuffer []byte
	packedBegin  int
	packedEnd    int

	largeBuffer [][]byte
	largeBegin  int
	largeEnd    int

	next     *queueNode
	observed bool
}

// queueState is the synchronization shared by one writer and its
// readers: a mutex guarding every next link and observed flag in the
// queue, a condition variable signaled on publish, and a poison slot
// that aborts blocked readers when the read fails elsewhere.
type queueState struct {
	mu       sync.Mutex
	cond     *sync.Cond
	poisoned error
}

func newQueueState() *queueState {
	st := &queueState{}
	st.cond = sync.NewCond(&st.mu)
	return st
}

// Poison marks the queue as failed and wakes every blocked reader.
// The first call wins; later calls are ignored.
func (st *queueState) Poison(err error) {
	if err == nil {
		err = errors.New(errors.ErrorTypeInternal, "queue poisoned with nil error")
	}
	st.mu.Lock()
	if st.poisoned == nil {
		st.poisoned = err
		st.cond.Broadcast()
	}
	st.mu.Unlock()
}
