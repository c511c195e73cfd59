package reading

import (
	"context"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/densestorage"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/parsers"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
	"github.com/ajitpratap0/pulsar/pkg/sinks/arrowsink"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

var intLadder = []parsers.Parser{
	parsers.Int8, parsers.Int16, parsers.Int32, parsers.Int64, parsers.Float64,
}

func storeCells(t *testing.T, cells ...string) *densestorage.Reader {
	t.Helper()
	w, r := densestorage.NewPair(context.Background(), false)
	for _, c := range cells {
		data := []byte(c)
		bs := containers.NewByteSlice(data, 0, len(data))
		require.NoError(t, w.Append(&bs))
	}
	require.NoError(t, w.Finish())
	return r
}

func infer(t *testing.T, ladder []parsers.Parser, factory sinks.Factory, cells ...string) (*Result, error) {
	t.Helper()
	return ParseDenseStorageToColumn(0, storeCells(t, cells...), ladder,
		parsers.String, []string{""}, tokenization.NewTokenizer(nil, nil), factory)
}

func mustInfer(t *testing.T, ladder []parsers.Parser, cells ...string) *Result {
	t.Helper()
	result, err := infer(t, ladder, sinks.NewMemoryFactory(), cells...)
	require.NoError(t, err)
	return result
}

func TestInfer_NarrowestIntegerWins(t *testing.T) {
	result := mustInfer(t, intLadder, "1", "2", "3")
	assert.Equal(t, sinks.Int8, result.DataType)
	col := result.Sink.(*sinks.Column[int8])
	assert.Equal(t, []int8{1, 2, 3}, col.Data())
	assert.Equal(t, []bool{false, false, false}, col.Nulls())
}

func TestInfer_WidensOnOverflow(t *testing.T) {
	result := mustInfer(t, intLadder, "1", "2", "300")
	assert.Equal(t, sinks.Int16, result.DataType)
	col := result.Sink.(*sinks.Column[int16])
	assert.Equal(t, []int16{1, 2, 300}, col.Data())

	result = mustInfer(t, intLadder, "1", "70000", "2")
	assert.Equal(t, sinks.Int32, result.DataType)

	result = mustInfer(t, intLadder, "1", "3000000000", "2")
	assert.Equal(t, sinks.Int64, result.DataType)

	result = mustInfer(t, intLadder, "1", "2.5")
	assert.Equal(t, sinks.Float64, result.DataType)
	fcol := result.Sink.(*sinks.Column[float64])
	assert.Equal(t, []float64{1, 2.5}, fcol.Data())
}

func TestInfer_NullsInsideNumericColumn(t *testing.T) {
	result := mustInfer(t, intLadder, "1", "", "2")
	assert.Equal(t, sinks.Int8, result.DataType)
	col := result.Sink.(*sinks.Column[int8])
	assert.Equal(t, []int8{1, 0, 2}, col.Data())
	assert.Equal(t, []bool{false, true, false}, col.Nulls())
}

func TestInfer_LeadingNullsBackfilled(t *testing.T) {
	result := mustInfer(t, intLadder, "", "", "1", "300")
	assert.Equal(t, sinks.Int16, result.DataType)
	col := result.Sink.(*sinks.Column[int16])
	assert.Equal(t, []int16{0, 0, 1, 300}, col.Data())
	assert.Equal(t, []bool{true, true, false, false}, col.Nulls())
}

func TestInfer_NumericFastPathFallsBackToString(t *testing.T) {
	ladder := []parsers.Parser{
		parsers.Int8, parsers.Int16, parsers.Int32, parsers.Int64, parsers.String,
	}
	result := mustInfer(t, ladder, "hello")
	assert.Equal(t, sinks.String, result.DataType)
	col := result.Sink.(*sinks.Column[string])
	assert.Equal(t, []string{"hello"}, col.Data())

	// Numbers first, then text: the numeric parsers consume a prefix
	// and the string parser still wins the whole column.
	result = mustInfer(t, ladder, "1", "2", "then text")
	assert.Equal(t, sinks.String, result.DataType)
	col = result.Sink.(*sinks.Column[string])
	assert.Equal(t, []string{"1", "2", "then text"}, col.Data())
}

func TestInfer_NoFallbackFails(t *testing.T) {
	_, err := infer(t, intLadder, sinks.NewMemoryFactory(), "1", "2", "nope")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeInference))
}

func TestInfer_AllNullColumnUsesNullParser(t *testing.T) {
	result := mustInfer(t, intLadder, "", "", "")
	assert.Equal(t, sinks.String, result.DataType)
	col := result.Sink.(*sinks.Column[string])
	assert.Equal(t, []bool{true, true, true}, col.Nulls())
	assert.Equal(t, []string{"", "", ""}, col.Data())
}

func TestInfer_EmptyColumnUsesNullParser(t *testing.T) {
	result := mustInfer(t, intLadder)
	assert.Equal(t, sinks.String, result.DataType)
	col := result.Sink.(*sinks.Column[string])
	assert.Empty(t, col.Data())
}

func TestInfer_EmptyColumnWithoutNullParserFails(t *testing.T) {
	_, err := ParseDenseStorageToColumn(0, storeCells(t), intLadder,
		nil, []string{""}, tokenization.NewTokenizer(nil, nil), sinks.NewMemoryFactory())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestInfer_SingleParserSkipsInference(t *testing.T) {
	result := mustInfer(t, []parsers.Parser{parsers.String}, "1", "2")
	assert.Equal(t, sinks.String, result.DataType)
	col := result.Sink.(*sinks.Column[string])
	assert.Equal(t, []string{"1", "2"}, col.Data())
}

func TestInfer_BooleanAndDateTimeProbes(t *testing.T) {
	result := mustInfer(t, parsers.Default, "true", "false", "")
	assert.Equal(t, sinks.Bool, result.DataType)

	result = mustInfer(t, parsers.Default, "2021-03-04T05:06:07Z")
	assert.Equal(t, sinks.DateTime, result.DataType)

	result = mustInfer(t, parsers.Complete, "A", "B")
	assert.Equal(t, sinks.Char, result.DataType)

	// The default ladder has no char parser, so single characters
	// stay strings.
	result = mustInfer(t, parsers.Default, "A", "B")
	assert.Equal(t, sinks.String, result.DataType)

	result = mustInfer(t, parsers.Default, "hello", "world")
	assert.Equal(t, sinks.String, result.DataType)
}

func TestInfer_TimestampLadder(t *testing.T) {
	ladder := []parsers.Parser{parsers.TimestampSeconds, parsers.String}
	result := mustInfer(t, ladder, "1600000000", "1600000001")
	assert.Equal(t, sinks.Timestamp, result.DataType)
	col := result.Sink.(*sinks.Column[int64])
	assert.Equal(t, []int64{1_600_000_000_000_000_000, 1_600_000_001_000_000_000}, col.Data())
}

func TestInfer_ConflictingLaddersRejected(t *testing.T) {
	_, err := infer(t, []parsers.Parser{parsers.Float32Fast, parsers.Float64}, sinks.NewMemoryFactory(), "1.5")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = infer(t, []parsers.Parser{parsers.TimestampSeconds, parsers.TimestampMillis}, sinks.NewMemoryFactory(), "16")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))

	_, err = infer(t, []parsers.Parser{parsers.Int32, parsers.TimestampSeconds}, sinks.NewMemoryFactory(), "16")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

// The unification path (readable memory sinks) and the second-pass
// path (non-readable arrow sinks) must produce identical columns.
func TestInfer_UnificationMatchesSecondPass(t *testing.T) {
	cells := []string{"", "1", "2", "300", "", "70000"}

	memResult, err := infer(t, intLadder, sinks.NewMemoryFactory(), cells...)
	require.NoError(t, err)
	require.Equal(t, sinks.Int32, memResult.DataType)
	memCol := memResult.Sink.(*sinks.Column[int32])

	arrowResult, err := infer(t, intLadder, arrowsink.NewFactory(nil), cells...)
	require.NoError(t, err)
	require.Equal(t, sinks.Int32, arrowResult.DataType)
	arr := arrowResult.Sink.(arrowsink.Sink).NewArray().(*array.Int32)
	defer arr.Release()

	require.Equal(t, len(memCol.Data()), arr.Len())
	for i := range memCol.Data() {
		assert.Equal(t, memCol.Nulls()[i], arr.IsNull(i), "row %d", i)
		if !memCol.Nulls()[i] {
			assert.Equal(t, memCol.Data()[i], arr.Value(i), "row %d", i)
		}
	}
}

func TestInfer_CustomParserRunsBeforeStrings(t *testing.T) {
	hex := &hexParser{}
	ladder := []parsers.Parser{hex, parsers.String}
	result := mustInfer(t, ladder, "0x10", "0xff")
	assert.Equal(t, sinks.Int64, result.DataType)
	col := result.Sink.(*sinks.Column[int64])
	assert.Equal(t, []int64{16, 255}, col.Data())

	// A cell the custom parser rejects demotes the column to string.
	result = mustInfer(t, ladder, "0x10", "plain")
	assert.Equal(t, sinks.String, result.DataType)
}

// hexParser parses 0x-prefixed integers; used to exercise the custom
// parser slot of the ladder.
type hexParser struct{}

func (p *hexParser) Name() string             { return "hex" }
func (p *hexParser) DataType() sinks.DataType { return sinks.Int64 }

func (p *hexParser) MakeContext(g *parsers.GlobalContext, chunkSize int) (*parsers.Context, error) {
	sink, err := g.SinkFactory.Int64Sink(g.ColumnIndex)
	if err != nil {
		return nil, err
	}
	return parsers.NewContext(sinks.Int64, sink, make([]int64, chunkSize), chunkSize), nil
}

func (p *hexParser) TryParse(g *parsers.GlobalContext, ctx *parsers.Context, ih *parsers.IteratorHolder, begin, end int64, appending bool) (int64, error) {
	values := ctx.Values().([]int64)
	nulls := make([]bool, len(values))
	current := begin
	used := 0
	flush := func(chunkBegin int64) error {
		return ctx.Sink().Write(values, nulls, chunkBegin, current, appending)
	}
	chunkBegin := begin
	for current < end && ih != nil {
		b := ih.BS().Bytes()
		if g.IsNullCell(ih) {
			values[used], nulls[used] = 0, true
		} else {
			v, ok := parseHex(b)
			if !ok {
				break
			}
			values[used], nulls[used] = v, false
		}
		used++
		current++
		if used == len(values) {
			if err := flush(chunkBegin); err != nil {
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
		if err := flush(chunkBegin); err != nil {
			return current, err
		}
	}
	return current, nil
}

func parseHex(b []byte) (int64, bool) {
	if len(b) < 3 || b[0] != '0' || b[1] != 'x' {
		return 0, false
	}
	var v int64
	for _, c := range b[2:] {
		switch {
		case c >= '0' && c <= '9':
			v = v*16 + int64(c-'0')
		case c >= 'a' && c <= 'f':
			v = v*16 + int64(c-'a'+10)
		default:
			return 0, false
		}
	}
	return v, true
}
