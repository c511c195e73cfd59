package parsers

import (
	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

// converter turns one non-null cell's bytes into a value, or rejects
// the cell.
type converter[T any] func(g *GlobalContext, b []byte) (T, bool)

// typedParser is the shared machinery behind every built-in parser: a
// sink constructor, a cell converter, and the chunked parse loop.
type typedParser[T any] struct {
	name     string
	dataType sinks.DataType
	makeSink func(f sinks.Factory, colIndex int) (sinks.Sink, error)
	convert  converter[T]
}

func (p *typedParser[T]) Name() string { return p.name }

func (p *typedParser[T]) DataType() sinks.DataType { return p.dataType }

func (p *typedParser[T]) MakeContext(g *GlobalContext, chunkSize int) (*Context, error) {
	sink, err := p.makeSink(g.SinkFactory, g.ColumnIndex)
	if err != nil {
		return nil, err
	}
	return NewContext(p.dataType, sink, make([]T, chunkSize), chunkSize), nil
}

func (p *typedParser[T]) TryParse(g *GlobalContext, ctx *Context, ih *IteratorHolder, begin, end int64, appending bool) (int64, error) {
	values := ctx.values.([]T)
	chunkSize := len(values)
	current := begin
	chunkBegin := begin
	used := 0
	for current < end && ih != nil {
		if g.IsNullCell(ih) {
			var zero T
			values[used] = zero
			ctx.nulls[used] = true
		} else {
			v, ok := p.convert(g, ih.BS().Bytes())
			if !ok {
				// Leave the iterator on the failing cell so the
				// caller can observe non-exhaustion and fall back.
				break
			}
			values[used] = v
			ctx.nulls[used] = false
		}
		used++
		current++
		if used == chunkSize {
			if err := ctx.sink.Write(values, ctx.nulls, chunkBegin, current, appending); err != nil {
				return current, err
			}
			chunkBegin = current
			used = 0
		}
		more, err := ih.TryMoveNext()
		if err != nil {
			return current, err
		}
		if !more {
			break
		}
	}
	if used > 0 {
		if err := ctx.sink.Write(values, ctx.nulls, chunkBegin, current, appending); err != nil {
			return current, err
		}
	}
	return current, nil
}
