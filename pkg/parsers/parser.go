// Package parsers defines the parser contract the typing engine drives
// and implements the built-in parser ladder: narrow integers through
// wide, floats, timestamps, date-times, booleans, char, and string.
// Callers may add custom parsers; they participate in inference between
// the probed parser and the char/string fallbacks.
package parsers

import (
	"github.com/ajitpratap0/pulsar/pkg/pool"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// ChunkSize is the number of entries a parser buffers before flushing
// to its sink.
const ChunkSize = 65536

var nullChunkPool = pool.NewNullChunks(ChunkSize)

// GlobalContext is the per-column parsing state shared by every parser
// trial on that column.
type GlobalContext struct {
	// ColumnIndex is the zero-based column number, handed to the sink
	// factory.
	ColumnIndex int
	// Tokenizer provides the shared cell recognizers.
	Tokenizer *tokenization.Tokenizer
	// SinkFactory makes the sinks that receive parsed values.
	SinkFactory sinks.Factory

	nullLiterals [][]byte
	nullChunk    []bool
}

// NewGlobalContext creates the shared context for one column.
// nullLiterals is the set of cell texts interpreted as null.
func NewGlobalContext(colIndex int, tokenizer *tokenization.Tokenizer, factory sinks.Factory, nullLiterals []string) *GlobalContext {
	literals := make([][]byte, len(nullLiterals))
	for i, s := range nullLiterals {
		literals[i] = []byte(s)
	}
	return &GlobalContext{
		ColumnIndex:  colIndex,
		Tokenizer:    tokenizer,
		SinkFactory:  factory,
		nullLiterals: literals,
		nullChunk:    nullChunkPool.Get(),
	}
}

// IsNullCell reports whether the iterator's current cell matches any
// configured null literal.
func (g *GlobalContext) IsNullCell(ih *IteratorHolder) bool {
	bs := ih.BS()
	for _, literal := range g.nullLiterals {
		if bs.Equals(literal) {
			return true
		}
	}
	return false
}

// NullChunk is a shared scratch null-flag chunk, used by null filling
// and numeric unification. Callers set the flags they need each time.
func (g *GlobalContext) NullChunk() []bool { return g.nullChunk }

// Release returns pooled scratch storage. Call once the column is done.
func (g *GlobalContext) Release() {
	nullChunkPool.Put(g.nullChunk)
	g.nullChunk = nil
}

// Context is per-parser scratch: the sink obtained from the factory,
// the optional readable side, a typed value chunk, and a parallel
// null-flag chunk.
type Context struct {
	dataType sinks.DataType
	sink     sinks.Sink
	source   sinks.Source // nil when the sink is not readable
	values   interface{}
	nulls    []bool
}

// NewContext assembles a parser context around a freshly-made sink.
func NewContext(dataType sinks.DataType, sink sinks.Sink, values interface{}, chunkSize int) *Context {
	source, _ := sink.(sinks.Source)
	return &Context{
		dataType: dataType,
		sink:     sink,
		source:   source,
		values:   values,
		nulls:    make([]bool, chunkSize),
	}
}

// DataType returns the nominal output type.
func (c *Context) DataType() sinks.DataType { return c.dataType }

// Sink returns the sink values are written to.
func (c *Context) Sink() sinks.Sink { return c.sink }

// Source returns the readable side of the sink, or nil.
func (c *Context) Source() sinks.Source { return c.source }

// Values returns the typed value chunk.
func (c *Context) Values() interface{} { return c.values }

// Parser converts a column's cell text into typed values.
//
// TryParse consumes cells from ih, whose current cell has logical index
// begin, up to logical index end; it writes values and null flags to
// its sink in chunks and returns the index one past the last
// successfully-written cell. A null cell sets the null flag without
// needing a valid value. On the first non-null cell the parser cannot
// accept, it returns without advancing further, so the caller can
// observe non-exhaustion and fall back. appending tells the sink
// whether this pass extends the column or backfills earlier rows.
type Parser interface {
	Name() string
	DataType() sinks.DataType
	MakeContext(g *GlobalContext, chunkSize int) (*Context, error)
	TryParse(g *GlobalContext, ctx *Context, ih *IteratorHolder, begin, end int64, appending bool) (int64, error)
}
