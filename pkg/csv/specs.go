// Package csv is Pulsar's public surface: configuration, the
// coordinator that fans out one producer and one typing engine per
// column, and the typed result.
package csv

import (
	"math"

	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/metrics"
	"github.com/ajitpratap0/pulsar/pkg/parsers"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// Specs configure a read. Start from DefaultSpecs and override fields.
type Specs struct {
	// Delimiter separates fields; in fixed-width mode it doubles as
	// the padding byte.
	Delimiter byte
	// Quote is the field quote character.
	Quote byte
	// IgnoreSurroundingSpaces trims spaces from unquoted fields.
	IgnoreSurroundingSpaces bool
	// Trim trims spaces inside quoted fields too.
	Trim bool

	// HasHeaderRow makes the first (post-skip) row supply the names.
	HasHeaderRow bool
	// SkipHeaderRows drops this many rows before the header row.
	SkipHeaderRows int64
	// SkipRows drops this many rows before data.
	SkipRows int64
	// NumRows caps the produced rows.
	NumRows int64
	// IgnoreEmptyLines skips rows containing zero cells.
	IgnoreEmptyLines bool
	// AllowMissingColumns pads short rows with the empty cell.
	AllowMissingColumns bool
	// IgnoreExcessColumns drops extra trailing cells on long rows.
	IgnoreExcessColumns bool

	// Headers overrides every column name; the length must match the
	// discovered column count.
	Headers []string
	// HeaderForIndex overrides individual column names.
	HeaderForIndex map[int]string

	// Parsers is the default ladder tried for every column.
	Parsers []parsers.Parser
	// ParsersForName overrides the ladder for named columns.
	ParsersForName map[string][]parsers.Parser
	// ParsersForIndex overrides the ladder for indexed columns and
	// takes precedence over ParsersForName.
	ParsersForIndex map[int][]parsers.Parser

	// NullValueLiterals are the cell texts read as null.
	NullValueLiterals []string
	// NullValueLiteralsForName overrides the literals per column name.
	NullValueLiteralsForName map[string][]string
	// NullValueLiteralsForIndex overrides per column index, taking
	// precedence over the name-keyed overrides.
	NullValueLiteralsForIndex map[int][]string
	// NullParser types columns that are empty or all null.
	NullParser parsers.Parser

	// CustomDoubleParser overrides floating-point leaf parsing.
	CustomDoubleParser tokenization.DoubleParser
	// CustomTimeZoneParser resolves named time zones in date-times.
	CustomTimeZoneParser tokenization.TimeZoneParser

	// Concurrent runs the producer and the per-column typing engines
	// in parallel; off, the producer drains the input first and the
	// columns are typed sequentially.
	Concurrent bool

	// FixedColumnWidths switches the reader to fixed-width mode. The
	// widths are in character units; empty widths with a header row
	// infers them from the header.
	FixedColumnWidths []int
	// UseUtf32CountingConvention counts every code point as one
	// character for fixed widths; otherwise code points outside the
	// BMP count as two, as UTF-16 would.
	UseUtf32CountingConvention bool

	// Metrics, when set, records rows, cells, and latency per read.
	Metrics *metrics.Collector
}

// DefaultSpecs returns the standard configuration: comma-delimited,
// double-quoted, header row, inference ladder parsers.Default, the
// empty string as the only null literal, and concurrent execution.
func DefaultSpecs() Specs {
	return Specs{
		Delimiter:         ',',
		Quote:             '"',
		HasHeaderRow:      true,
		NumRows:           math.MaxInt64,
		Parsers:           parsers.Default,
		NullValueLiterals: []string{""},
		NullParser:        parsers.String,
		Concurrent:        true,
	}
}

// Validate rejects configurations the reader cannot honor.
func (s *Specs) Validate() error {
	if len(s.FixedColumnWidths) == 0 {
		switch s.Delimiter {
		case '\n', '\r':
			return errors.New(errors.ErrorTypeConfig, "delimiter must not be a line ending")
		case s.Quote:
			return errors.New(errors.ErrorTypeConfig, "delimiter and quote must differ")
		}
	}
	for _, w := range s.FixedColumnWidths {
		if w <= 0 {
			return errors.New(errors.ErrorTypeConfig, "fixed column widths must be positive")
		}
	}
	if s.NumRows < 0 || s.SkipRows < 0 || s.SkipHeaderRows < 0 {
		return errors.New(errors.ErrorTypeConfig, "row counts must not be negative")
	}
	return nil
}

// parsersFor resolves the ladder for one column.
func (s *Specs) parsersFor(index int, name string) []parsers.Parser {
	if ladder, ok := s.ParsersForIndex[index]; ok {
		return ladder
	}
	if ladder, ok := s.ParsersForName[name]; ok {
		return ladder
	}
	return s.Parsers
}

// nullLiteralsFor resolves the null literal set for one column.
func (s *Specs) nullLiteralsFor(index int, name string) []string {
	if literals, ok := s.NullValueLiteralsForIndex[index]; ok {
		return literals
	}
	if literals, ok := s.NullValueLiteralsForName[name]; ok {
		return literals
	}
	return s.NullValueLiterals
}
