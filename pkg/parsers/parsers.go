package parsers

import (
	"math"
	"unicode/utf8"

	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

// The built-in parsers. Identity matters: the typing engine
// categorizes a ladder by comparing against these values, so callers
// must use these instances rather than constructing their own.
var (
	// Int8 through Int64 form the integer widening ladder.
	Int8 Parser = &typedParser[int8]{
		name:     "int8",
		dataType: sinks.Int8,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Int8Sink(col) },
		convert: func(g *GlobalContext, b []byte) (int8, bool) {
			v, ok := g.Tokenizer.TryParseLong(b)
			if !ok || v < math.MinInt8 || v > math.MaxInt8 {
				return 0, false
			}
			return int8(v), true
		},
	}

	Int16 Parser = &typedParser[int16]{
		name:     "int16",
		dataType: sinks.Int16,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Int16Sink(col) },
		convert: func(g *GlobalContext, b []byte) (int16, bool) {
			v, ok := g.Tokenizer.TryParseLong(b)
			if !ok || v < math.MinInt16 || v > math.MaxInt16 {
				return 0, false
			}
			return int16(v), true
		},
	}

	Int32 Parser = &typedParser[int32]{
		name:     "int32",
		dataType: sinks.Int32,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Int32Sink(col) },
		convert: func(g *GlobalContext, b []byte) (int32, bool) {
			v, ok := g.Tokenizer.TryParseLong(b)
			if !ok || v < math.MinInt32 || v > math.MaxInt32 {
				return 0, false
			}
			return int32(v), true
		},
	}

	Int64 Parser = &typedParser[int64]{
		name:     "int64",
		dataType: sinks.Int64,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Int64Sink(col) },
		convert: func(g *GlobalContext, b []byte) (int64, bool) {
			return g.Tokenizer.TryParseLong(b)
		},
	}

	// Float32Fast narrows through float64 and accepts the precision
	// loss; Float32Strict requires the value to round-trip exactly.
	// A ladder may contain at most one floating-point parser.
	Float32Fast Parser = &typedParser[float32]{
		name:     "float32-fast",
		dataType: sinks.Float32,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Float32Sink(col) },
		convert: func(g *GlobalContext, b []byte) (float32, bool) {
			v, ok := g.Tokenizer.TryParseDouble(b)
			if !ok {
				return 0, false
			}
			return float32(v), true
		},
	}

	Float32Strict Parser = &typedParser[float32]{
		name:     "float32-strict",
		dataType: sinks.Float32,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Float32Sink(col) },
		convert: func(g *GlobalContext, b []byte) (float32, bool) {
			v, ok := g.Tokenizer.TryParseDouble(b)
			if !ok {
				return 0, false
			}
			narrowed := float32(v)
			if float64(narrowed) != v {
				return 0, false
			}
			return narrowed, true
		},
	}

	Float64 Parser = &typedParser[float64]{
		name:     "float64",
		dataType: sinks.Float64,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.Float64Sink(col) },
		convert: func(g *GlobalContext, b []byte) (float64, bool) {
			return g.Tokenizer.TryParseDouble(b)
		},
	}

	Boolean Parser = &typedParser[bool]{
		name:     "bool",
		dataType: sinks.Bool,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.BoolSink(col) },
		convert: func(g *GlobalContext, b []byte) (bool, bool) {
			return g.Tokenizer.TryParseBoolean(b)
		},
	}

	// Char accepts cells that are exactly one character in the basic
	// multilingual plane, stored as one UTF-16 unit.
	Char Parser = &typedParser[uint16]{
		name:     "char",
		dataType: sinks.Char,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.CharSink(col) },
		convert: func(g *GlobalContext, b []byte) (uint16, bool) {
			r, size := utf8.DecodeRune(b)
			if r == utf8.RuneError || size != len(b) || r > 0xFFFF {
				return 0, false
			}
			return uint16(r), true
		},
	}

	String Parser = &typedParser[string]{
		name:     "string",
		dataType: sinks.String,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.StringSink(col) },
		convert: func(g *GlobalContext, b []byte) (string, bool) {
			// Owned copy: the cell bytes die with their queue node.
			return string(b), true
		},
	}

	DateTime Parser = &typedParser[int64]{
		name:     "datetime",
		dataType: sinks.DateTime,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.DateTimeSink(col) },
		convert: func(g *GlobalContext, b []byte) (int64, bool) {
			return g.Tokenizer.TryParseDateTime(b)
		},
	}

	TimestampSeconds = timestampParser("timestamp-seconds", 1_000_000_000)
	TimestampMillis  = timestampParser("timestamp-millis", 1_000_000)
	TimestampMicros  = timestampParser("timestamp-micros", 1_000)
	TimestampNanos   = timestampParser("timestamp-nanos", 1)
)

// Default is the standard inference ladder. Char is deliberately
// absent so single-character text columns stay strings.
var Default = []Parser{Boolean, DateTime, Int64, Float64, String}

// Complete tries every built-in non-timestamp parser except the float32
// flavors, narrowest first.
var Complete = []Parser{
	Boolean, DateTime, Char,
	Int8, Int16, Int32, Int64, Float64,
	String,
}

func timestampParser(name string, scale int64) Parser {
	return &typedParser[int64]{
		name:     name,
		dataType: sinks.Timestamp,
		makeSink: func(f sinks.Factory, col int) (sinks.Sink, error) { return f.TimestampSink(col) },
		convert: func(g *GlobalContext, b []byte) (int64, bool) {
			v, ok := g.Tokenizer.TryParseLong(b)
			if !ok {
				return 0, false
			}
			if scale != 1 && (v > math.MaxInt64/scale || v < math.MinInt64/scale) {
				return 0, false
			}
			return v * scale, true
		},
	}
}
