// Package arrowsink is a sinks.Factory that materializes columns as
// Apache Arrow arrays. Its sinks buffer values until the column is
// complete and build the array on demand.
//
// Arrow builders are append-only, so these sinks deliberately do not
// implement sinks.Source; the typing engine therefore widens numeric
// columns with a second text pass instead of readback unification.
package arrowsink

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

// Sink is a sinks.Sink that can materialize an Arrow array.
type Sink interface {
	sinks.Sink
	// NewArray builds the Arrow array for the finished column. The
	// caller owns the returned array.
	NewArray() arrow.Array
}

// column buffers one column's values and nulls; build materializes
// them through the appropriate Arrow builder.
type column[T any] struct {
	values []T
	nulls  []bool
	build  func(values []T, nulls []bool) arrow.Array
}

func (c *column[T]) Write(src interface{}, isNull []bool, destBegin, destEnd int64, appending bool) error {
	values, ok := src.([]T)
	if !ok {
		return errors.Newf(errors.ErrorTypeInternal,
			"arrow sink got chunk of type %T", src)
	}
	n := int(destEnd - destBegin)
	if n == 0 {
		return nil
	}
	for int64(len(c.values)) < destEnd {
		var zero T
		c.values = append(c.values, zero)
		c.nulls = append(c.nulls, false)
	}
	copy(c.values[destBegin:destEnd], values[:n])
	copy(c.nulls[destBegin:destEnd], isNull[:n])
	return nil
}

func (c *column[T]) NewArray() arrow.Array {
	return c.build(c.values, c.nulls)
}

// Factory implements sinks.Factory over an Arrow allocator.
type Factory struct {
	alloc memory.Allocator
}

// NewFactory creates an Arrow sink factory; a nil allocator uses the
// Go allocator.
func NewFactory(alloc memory.Allocator) *Factory {
	if alloc == nil {
		alloc = memory.NewGoAllocator()
	}
	return &Factory{alloc: alloc}
}

// Int8Sink implements sinks.Factory.
func (f *Factory) Int8Sink(int) (sinks.Sink, error) {
	return &column[int8]{build: func(values []int8, nulls []bool) arrow.Array {
		b := array.NewInt8Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// Int16Sink implements sinks.Factory.
func (f *Factory) Int16Sink(int) (sinks.Sink, error) {
	return &column[int16]{build: func(values []int16, nulls []bool) arrow.Array {
		b := array.NewInt16Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// Int32Sink implements sinks.Factory.
func (f *Factory) Int32Sink(int) (sinks.Sink, error) {
	return &column[int32]{build: func(values []int32, nulls []bool) arrow.Array {
		b := array.NewInt32Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// Int64Sink implements sinks.Factory.
func (f *Factory) Int64Sink(int) (sinks.Sink, error) {
	return &column[int64]{build: func(values []int64, nulls []bool) arrow.Array {
		b := array.NewInt64Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// Float32Sink implements sinks.Factory.
func (f *Factory) Float32Sink(int) (sinks.Sink, error) {
	return &column[float32]{build: func(values []float32, nulls []bool) arrow.Array {
		b := array.NewFloat32Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// Float64Sink implements sinks.Factory.
func (f *Factory) Float64Sink(int) (sinks.Sink, error) {
	return &column[float64]{build: func(values []float64, nulls []bool) arrow.Array {
		b := array.NewFloat64Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// BoolSink implements sinks.Factory.
func (f *Factory) BoolSink(int) (sinks.Sink, error) {
	return &column[bool]{build: func(values []bool, nulls []bool) arrow.Array {
		b := array.NewBooleanBuilder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// CharSink implements sinks.Factory. Chars are one UTF-16 unit, stored
// as uint16.
func (f *Factory) CharSink(int) (sinks.Sink, error) {
	return &column[uint16]{build: func(values []uint16, nulls []bool) arrow.Array {
		b := array.NewUint16Builder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// StringSink implements sinks.Factory.
func (f *Factory) StringSink(int) (sinks.Sink, error) {
	return &column[string]{build: func(values []string, nulls []bool) arrow.Array {
		b := array.NewStringBuilder(f.alloc)
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(v)
			}
		}
		return b.NewArray()
	}}, nil
}

// DateTimeSink implements sinks.Factory.
func (f *Factory) DateTimeSink(int) (sinks.Sink, error) {
	return f.nanosSink()
}

// TimestampSink implements sinks.Factory.
func (f *Factory) TimestampSink(int) (sinks.Sink, error) {
	return f.nanosSink()
}

func (f *Factory) nanosSink() (sinks.Sink, error) {
	return &column[int64]{build: func(values []int64, nulls []bool) arrow.Array {
		b := array.NewTimestampBuilder(f.alloc, &arrow.TimestampType{Unit: arrow.Nanosecond, TimeZone: "UTC"})
		defer b.Release()
		for i, v := range values {
			if nulls[i] {
				b.AppendNull()
			} else {
				b.Append(arrow.Timestamp(v))
			}
		}
		return b.NewArray()
	}}, nil
}
