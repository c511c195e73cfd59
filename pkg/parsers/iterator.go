package parsers

import (
	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/densestorage"
)

// IteratorHolder is a forward cursor over a dense-storage reader that
// caches the current cell slice. Cells are consumed exactly once;
// cloning the underlying reader produces an independent iterator with
// its own position.
type IteratorHolder struct {
	dsr         *densestorage.Reader
	bs          containers.ByteSlice
	numConsumed int64
	exhausted   bool
}

// NewIteratorHolder wraps a dense-storage reader. The iterator starts
// before the first cell; call TryMoveNext to load it.
func NewIteratorHolder(dsr *densestorage.Reader) *IteratorHolder {
	return &IteratorHolder{dsr: dsr}
}

// TryMoveNext advances to the next cell. It returns false, and marks
// the iterator exhausted, at end of stream. It may block while the
// producer catches up.
func (ih *IteratorHolder) TryMoveNext() (bool, error) {
	ok, err := ih.dsr.TryGetNextSlice(&ih.bs)
	if err != nil {
		return false, err
	}
	if !ok {
		ih.exhausted = true
		return false, nil
	}
	ih.numConsumed++
	return true, nil
}

// BS returns the current cell slice. Valid only after a successful
// TryMoveNext and until the next call.
func (ih *IteratorHolder) BS() *containers.ByteSlice { return &ih.bs }

// NumConsumed returns how many cells have been consumed; the current
// cell's logical index is NumConsumed()-1.
func (ih *IteratorHolder) NumConsumed() int64 { return ih.numConsumed }

// IsExhausted reports whether the iterator has hit end of stream.
func (ih *IteratorHolder) IsExhausted() bool { return ih.exhausted }

// Reader exposes the underlying dense-storage reader, so the typing
// engine can clone fresh full-range iterators for custom parsers.
func (ih *IteratorHolder) Reader() *densestorage.Reader { return ih.dsr }
