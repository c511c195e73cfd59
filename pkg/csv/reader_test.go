package csv

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/parsers"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

var intLadder = []parsers.Parser{
	parsers.Int8, parsers.Int16, parsers.Int32, parsers.Int64, parsers.Float64,
}

func read(t *testing.T, specs Specs, input string) *Result {
	t.Helper()
	result, err := Read(context.Background(), specs, strings.NewReader(input), sinks.NewMemoryFactory())
	require.NoError(t, err)
	return result
}

func stringData(t *testing.T, col ResultColumn) []string {
	t.Helper()
	c, ok := col.Sink.(*sinks.Column[string])
	require.True(t, ok, "column %s is %s, not string", col.Name, col.DataType)
	return c.Data()
}

func TestRead_TwoStringColumns(t *testing.T) {
	result := read(t, DefaultSpecs(), "Key,Value\nA,hello\n")
	assert.Equal(t, int64(1), result.NumRows)
	assert.Equal(t, 2, result.NumCols)

	assert.Equal(t, "Key", result.Columns[0].Name)
	assert.Equal(t, sinks.String, result.Columns[0].DataType)
	assert.Equal(t, []string{"A"}, stringData(t, result.Columns[0]))

	assert.Equal(t, "Value", result.Columns[1].Name)
	assert.Equal(t, []string{"hello"}, stringData(t, result.Columns[1]))
}

func TestRead_NumericInference(t *testing.T) {
	specs := DefaultSpecs()
	specs.Parsers = intLadder

	result := read(t, specs, "N\n1\n2\n3\n")
	require.Equal(t, sinks.Int8, result.Columns[0].DataType)
	col := result.Columns[0].Sink.(*sinks.Column[int8])
	assert.Equal(t, []int8{1, 2, 3}, col.Data())
	assert.Equal(t, []bool{false, false, false}, col.Nulls())

	result = read(t, specs, "N\n1\n2\n300\n")
	require.Equal(t, sinks.Int16, result.Columns[0].DataType)

	result = read(t, specs, "N\n1\n\n2\n")
	require.Equal(t, sinks.Int8, result.Columns[0].DataType)
	col = result.Columns[0].Sink.(*sinks.Column[int8])
	assert.Equal(t, []int8{1, 0, 2}, col.Data())
	assert.Equal(t, []bool{false, true, false}, col.Nulls())
}

func TestRead_ConcurrentAndSerialAgree(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,price,name,flag\n")
	for i := 0; i < 5000; i++ {
		b.WriteString("1234,3.25,thing,true\n")
	}
	input := b.String()

	concurrent := DefaultSpecs()
	serial := DefaultSpecs()
	serial.Concurrent = false

	got := read(t, concurrent, input)
	want := read(t, serial, input)

	require.Equal(t, want.NumRows, got.NumRows)
	require.Equal(t, want.NumCols, got.NumCols)
	for i := range want.Columns {
		assert.Equal(t, want.Columns[i].DataType, got.Columns[i].DataType)
	}
	assert.Equal(t, sinks.Int64, got.Columns[0].DataType)
	assert.Equal(t, sinks.Float64, got.Columns[1].DataType)
	assert.Equal(t, sinks.String, got.Columns[2].DataType)
	assert.Equal(t, sinks.Bool, got.Columns[3].DataType)
}

func TestRead_ReadTwiceYieldsSameColumns(t *testing.T) {
	input := "a,b\n1,x\n2,y\n"
	specs := DefaultSpecs()
	first := read(t, specs, input)
	second := read(t, specs, input)
	require.Equal(t, first.NumRows, second.NumRows)
	for i := range first.Columns {
		assert.Equal(t, first.Columns[i].DataType, second.Columns[i].DataType)
	}
}

func TestRead_SyntheticHeaders(t *testing.T) {
	specs := DefaultSpecs()
	specs.HasHeaderRow = false
	result := read(t, specs, "x,1\ny,2\n")
	assert.Equal(t, int64(2), result.NumRows)
	assert.Equal(t, []string{"Column1", "Column2"}, []string{
		result.Columns[0].Name, result.Columns[1].Name,
	})
	// The first row still counts as data.
	assert.Equal(t, []string{"x", "y"}, stringData(t, result.Columns[0]))
}

func TestRead_SkipAndCapRows(t *testing.T) {
	specs := DefaultSpecs()
	specs.SkipRows = 1
	specs.NumRows = 2
	result := read(t, specs, "n\nskipme\n1\n2\n3\n")
	assert.Equal(t, int64(2), result.NumRows)
	col := result.Columns[0].Sink.(*sinks.Column[int64])
	assert.Equal(t, []int64{1, 2}, col.Data())
}

func TestRead_IgnoreEmptyLines(t *testing.T) {
	specs := DefaultSpecs()
	specs.IgnoreEmptyLines = true
	result := read(t, specs, "a,b\n1,x\n\n2,y\n")
	assert.Equal(t, int64(2), result.NumRows)
}

func TestRead_ShortRowFailsWithoutTolerance(t *testing.T) {
	_, err := Read(context.Background(), DefaultSpecs(),
		strings.NewReader("a,b\n1\n"), sinks.NewMemoryFactory())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestRead_AllowMissingColumnsPadsNulls(t *testing.T) {
	specs := DefaultSpecs()
	specs.AllowMissingColumns = true
	result := read(t, specs, "a,b\n1,x\n2\n")
	assert.Equal(t, int64(2), result.NumRows)
	b := result.Columns[1].Sink.(*sinks.Column[string])
	assert.Equal(t, []string{"x", ""}, b.Data())
	assert.Equal(t, []bool{false, true}, b.Nulls())
}

func TestRead_ExcessColumns(t *testing.T) {
	_, err := Read(context.Background(), DefaultSpecs(),
		strings.NewReader("a,b\n1,x,extra\n"), sinks.NewMemoryFactory())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))

	specs := DefaultSpecs()
	specs.IgnoreExcessColumns = true
	result := read(t, specs, "a,b\n1,x,extra\n")
	assert.Equal(t, int64(1), result.NumRows)
	assert.Equal(t, 2, result.NumCols)
}

func TestRead_EmptyInput(t *testing.T) {
	result := read(t, DefaultSpecs(), "")
	assert.Equal(t, int64(0), result.NumRows)
	assert.Equal(t, 0, result.NumCols)

	specs := DefaultSpecs()
	specs.Headers = []string{"a", "b"}
	result = read(t, specs, "")
	assert.Equal(t, int64(0), result.NumRows)
	assert.Equal(t, 2, result.NumCols)
	for _, col := range result.Columns {
		assert.Equal(t, sinks.String, col.DataType)
	}
}

func TestRead_QuotedCells(t *testing.T) {
	result := read(t, DefaultSpecs(), "a,b\n\"1,5\",\"say \"\"hi\"\"\"\n")
	assert.Equal(t, []string{"1,5"}, stringData(t, result.Columns[0]))
	assert.Equal(t, []string{`say "hi"`}, stringData(t, result.Columns[1]))
}

func TestRead_CustomNullLiterals(t *testing.T) {
	specs := DefaultSpecs()
	specs.Parsers = intLadder
	specs.NullValueLiterals = []string{"NA"}
	result := read(t, specs, "n\n1\nNA\n2\n")
	require.Equal(t, sinks.Int8, result.Columns[0].DataType)
	col := result.Columns[0].Sink.(*sinks.Column[int8])
	assert.Equal(t, []bool{false, true, false}, col.Nulls())
}

func TestRead_PerColumnParsers(t *testing.T) {
	specs := DefaultSpecs()
	specs.Parsers = intLadder
	specs.ParsersForName = map[string][]parsers.Parser{"b": {parsers.String}}
	specs.ParsersForIndex = map[int][]parsers.Parser{0: {parsers.Int64}}
	result := read(t, specs, "a,b\n1,2\n")
	assert.Equal(t, sinks.Int64, result.Columns[0].DataType)
	assert.Equal(t, sinks.String, result.Columns[1].DataType)
}

func TestRead_HeaderOverrides(t *testing.T) {
	specs := DefaultSpecs()
	specs.HeaderForIndex = map[int]string{1: "renamed"}
	result := read(t, specs, "a,b\nx,y\n")
	assert.Equal(t, "renamed", result.Columns[1].Name)
}

func TestRead_FixedWidthInference(t *testing.T) {
	specs := DefaultSpecs()
	specs.Delimiter = ' '
	specs.FixedColumnWidths = []int{} // fixed mode, widths from header
	result := read(t, specs, "AAA BBB\n111 222\n")
	assert.Equal(t, int64(1), result.NumRows)
	require.Equal(t, 2, result.NumCols)
	assert.Equal(t, "AAA", result.Columns[0].Name)
	assert.Equal(t, "BBB", result.Columns[1].Name)
	a := result.Columns[0].Sink.(*sinks.Column[int64])
	b := result.Columns[1].Sink.(*sinks.Column[int64])
	assert.Equal(t, []int64{111}, a.Data())
	assert.Equal(t, []int64{222}, b.Data())
}

func TestRead_FixedWidthExplicit(t *testing.T) {
	specs := DefaultSpecs()
	specs.HasHeaderRow = false
	specs.FixedColumnWidths = []int{3, 4}
	result := read(t, specs, "abcdefg\nhijklmn\n")
	assert.Equal(t, int64(2), result.NumRows)
	assert.Equal(t, []string{"abc", "hij"}, stringData(t, result.Columns[0]))
	assert.Equal(t, []string{"defg", "klmn"}, stringData(t, result.Columns[1]))
}

func TestRead_ValidationErrors(t *testing.T) {
	specs := DefaultSpecs()
	specs.Delimiter = '"'
	_, err := Read(context.Background(), specs, strings.NewReader("a\n"), sinks.NewMemoryFactory())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestRead_ConflictingParsersFailTheRead(t *testing.T) {
	specs := DefaultSpecs()
	specs.Parsers = []parsers.Parser{parsers.Float32Fast, parsers.Float64}
	_, err := Read(context.Background(), specs, strings.NewReader("a\n1.5\n"), sinks.NewMemoryFactory())
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

// A failing column must abort the whole read even while the producer
// is blocked on back-pressure, rather than deadlock.
func TestRead_ConsumerFailureUnblocksProducer(t *testing.T) {
	var b strings.Builder
	b.WriteString("n\n")
	row := strings.Repeat("x", 500)
	for i := 0; i < 20000; i++ {
		b.WriteString(row)
		b.WriteByte('\n')
	}
	specs := DefaultSpecs()
	specs.Parsers = []parsers.Parser{parsers.Int8}
	_, err := Read(context.Background(), specs, strings.NewReader(b.String()), sinks.NewMemoryFactory())
	require.Error(t, err)
}

func TestRead_TrimOptions(t *testing.T) {
	specs := DefaultSpecs()
	specs.IgnoreSurroundingSpaces = true
	result := read(t, specs, "a,b\n  x  ,y\n")
	assert.Equal(t, []string{"x"}, stringData(t, result.Columns[0]))
}
