// Package pool provides generic object pooling for Pulsar's hot paths.
// The null-flag chunk each column's global parser context uses is
// recycled through a typed pool; parser value chunks are allocated per
// parser context and are not pooled.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool is a generic object pool with type safety. It wraps sync.Pool
// with an optional reset hook and allocation, in-use and Get-count
// statistics. Safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
		hits      int64
	}
}

// New creates a typed pool. newFn is called when the pool is empty;
// resetFn, if non-nil, is applied to every object returned via Put.
func New[T any](newFn func() T, resetFn func(T)) *Pool[T] {
	p := &Pool[T]{reset: resetFn}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, allocating if empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	obj := p.pool.Get().(T)
	atomic.AddInt64(&p.stats.hits, 1)
	return obj
}

// Put returns an object to the pool for reuse, resetting it first.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns allocation count, objects currently checked out, and
// total Get calls.
func (p *Pool[T]) Stats() (allocated, inUse, hits int64) {
	return atomic.LoadInt64(&p.stats.allocated),
		atomic.LoadInt64(&p.stats.inUse),
		atomic.LoadInt64(&p.stats.hits)
}

// NullChunks pools []bool null-flag chunks of a fixed size. Every
// column's global parser context borrows one for the duration of a
// column parse.
type NullChunks struct {
	inner *Pool[[]bool]
	size  int
}

// NewNullChunks creates a pool of []bool chunks of the given size.
func NewNullChunks(size int) *NullChunks {
	return &NullChunks{
		inner: New(
			func() []bool { return make([]bool, size) },
			nil,
		),
		size: size,
	}
}

// Get borrows a chunk.
func (n *NullChunks) Get() []bool { return n.inner.Get() }

// Put returns a chunk.
func (n *NullChunks) Put(chunk []bool) {
	if len(chunk) == n.size {
		n.inner.Put(chunk)
	}
}
