package sinks

import (
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// Column is the default array-backed sink. It is also a Source, so
// numeric columns built with the memory factory unify without a second
// text pass.
type Column[T any] struct {
	dataType DataType
	values   []T
	nulls    []bool
}

// NewColumn creates an empty column with the given type tag.
func NewColumn[T any](dataType DataType) *Column[T] {
	return &Column[T]{dataType: dataType}
}

// DataType returns the column's element type tag.
func (c *Column[T]) DataType() DataType { return c.dataType }

// Data returns the column's values. Null rows hold the zero value.
func (c *Column[T]) Data() []T { return c.values }

// Nulls returns the parallel null flags.
func (c *Column[T]) Nulls() []bool { return c.nulls }

// Len returns the number of rows written so far.
func (c *Column[T]) Len() int { return len(c.values) }

// Write implements Sink.
func (c *Column[T]) Write(src interface{}, isNull []bool, destBegin, destEnd int64, appending bool) error {
	values, ok := src.([]T)
	if !ok {
		return errors.Newf(errors.ErrorTypeInternal,
			"%s column got chunk of type %T", c.dataType, src)
	}
	n := int(destEnd - destBegin)
	if n == 0 {
		return nil
	}
	c.ensure(int(destEnd))
	copy(c.values[destBegin:destEnd], values[:n])
	copy(c.nulls[destBegin:destEnd], isNull[:n])
	return nil
}

// Read implements Source.
func (c *Column[T]) Read(dest interface{}, isNull []bool, srcBegin, srcEnd int64) error {
	values, ok := dest.([]T)
	if !ok {
		return errors.Newf(errors.ErrorTypeInternal,
			"%s column asked to read into chunk of type %T", c.dataType, dest)
	}
	copy(values, c.values[srcBegin:srcEnd])
	copy(isNull, c.nulls[srcBegin:srcEnd])
	return nil
}

func (c *Column[T]) ensure(size int) {
	for len(c.values) < size {
		c.values = append(c.values, *new(T))
		c.nulls = append(c.nulls, false)
	}
}

// MemoryFactory is the default Factory: every sink is an in-memory
// Column, and every numeric sink is readable.
type MemoryFactory struct{}

// NewMemoryFactory returns the default factory.
func NewMemoryFactory() *MemoryFactory { return &MemoryFactory{} }

// Int8Sink implements Factory.
func (f *MemoryFactory) Int8Sink(int) (Sink, error) { return NewColumn[int8](Int8), nil }

// Int16Sink implements Factory.
func (f *MemoryFactory) Int16Sink(int) (Sink, error) { return NewColumn[int16](Int16), nil }

// Int32Sink implements Factory.
func (f *MemoryFactory) Int32Sink(int) (Sink, error) { return NewColumn[int32](Int32), nil }

// Int64Sink implements Factory.
func (f *MemoryFactory) Int64Sink(int) (Sink, error) { return NewColumn[int64](Int64), nil }

// Float32Sink implements Factory.
func (f *MemoryFactory) Float32Sink(int) (Sink, error) { return NewColumn[float32](Float32), nil }

// Float64Sink implements Factory.
func (f *MemoryFactory) Float64Sink(int) (Sink, error) { return NewColumn[float64](Float64), nil }

// BoolSink implements Factory.
func (f *MemoryFactory) BoolSink(int) (Sink, error) { return NewColumn[bool](Bool), nil }

// CharSink implements Factory.
func (f *MemoryFactory) CharSink(int) (Sink, error) { return NewColumn[uint16](Char), nil }

// StringSink implements Factory.
func (f *MemoryFactory) StringSink(int) (Sink, error) { return NewColumn[string](String), nil }

// DateTimeSink implements Factory.
func (f *MemoryFactory) DateTimeSink(int) (Sink, error) { return NewColumn[int64](DateTime), nil }

// TimestampSink implements Factory.
func (f *MemoryFactory) TimestampSink(int) (Sink, error) { return NewColumn[int64](Timestamp), nil }
