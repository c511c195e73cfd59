package cells

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// grabAll collects rows of cells until end of input.
func grabAll(t *testing.T, g Grabber) [][]string {
	t.Helper()
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	var rows [][]string
	var row []string
	for {
		require.NoError(t, g.GrabNext(&bs, &lastInRow, &endOfInput))
		if endOfInput {
			require.Empty(t, row, "input ended mid-row")
			return rows
		}
		row = append(row, bs.String())
		if lastInRow {
			rows = append(rows, row)
			row = nil
		}
	}
}

func newGrabber(input string) *DelimitedGrabber {
	return NewDelimitedGrabber(strings.NewReader(input), '"', ',', false, false)
}

func TestDelimitedGrabber_SimpleRows(t *testing.T) {
	rows := grabAll(t, newGrabber("a,b,c\nd,e,f\n"))
	assert.Equal(t, [][]string{{"a", "b", "c"}, {"d", "e", "f"}}, rows)
}

func TestDelimitedGrabber_NoTrailingNewline(t *testing.T) {
	rows := grabAll(t, newGrabber("a,b\nc,d"))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}

func TestDelimitedGrabber_CrLfTerminators(t *testing.T) {
	rows := grabAll(t, newGrabber("a,b\r\nc,d\re,f\n"))
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e", "f"}}, rows)
}

func TestDelimitedGrabber_EmptyCellsAndLines(t *testing.T) {
	rows := grabAll(t, newGrabber(",\n\na,\n"))
	assert.Equal(t, [][]string{{"", ""}, {""}, {"a", ""}}, rows)
}

func TestDelimitedGrabber_QuotedCells(t *testing.T) {
	rows := grabAll(t, newGrabber("\"a,b\",c\n\"multi\nline\",d\n"))
	assert.Equal(t, [][]string{{"a,b", "c"}, {"multi\nline", "d"}}, rows)
}

func TestDelimitedGrabber_EscapedQuote(t *testing.T) {
	rows := grabAll(t, newGrabber("\"say \"\"hi\"\"\",x\n"))
	assert.Equal(t, [][]string{{`say "hi"`, "x"}}, rows)
}

func TestDelimitedGrabber_QuotedCellAtEndOfInput(t *testing.T) {
	rows := grabAll(t, newGrabber("a,\"done\""))
	assert.Equal(t, [][]string{{"a", "done"}}, rows)
}

func TestDelimitedGrabber_UnterminatedQuoteFails(t *testing.T) {
	g := newGrabber("\"never closed")
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	err := g.GrabNext(&bs, &lastInRow, &endOfInput)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestDelimitedGrabber_StrayByteAfterQuoteFails(t *testing.T) {
	g := newGrabber("\"x\"y,z\n")
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	err := g.GrabNext(&bs, &lastInRow, &endOfInput)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestDelimitedGrabber_TrimsUnquotedOnly(t *testing.T) {
	g := NewDelimitedGrabber(strings.NewReader("  a  , \" b \" \n"), '"', ',', true, false)
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool

	require.NoError(t, g.GrabNext(&bs, &lastInRow, &endOfInput))
	assert.Equal(t, "a", bs.String())

	// The second cell opens with a space, so it parses as unquoted
	// text and only the surrounding whitespace is trimmed.
	require.NoError(t, g.GrabNext(&bs, &lastInRow, &endOfInput))
	assert.Equal(t, `" b "`, bs.String())
	assert.True(t, lastInRow)
}

func TestDelimitedGrabber_TrimInsideQuotes(t *testing.T) {
	g := NewDelimitedGrabber(strings.NewReader("\" padded \",x\n"), '"', ',', false, true)
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	require.NoError(t, g.GrabNext(&bs, &lastInRow, &endOfInput))
	assert.Equal(t, "padded", bs.String())
}

func TestDelimitedGrabber_PhysicalRowCounting(t *testing.T) {
	g := newGrabber("a\n\"x\ny\"\nb\n")
	rows := grabAll(t, g)
	assert.Equal(t, [][]string{{"a"}, {"x\ny"}, {"b"}}, rows)
	// Three terminators plus the newline embedded in the quoted cell.
	assert.Equal(t, int64(4), g.PhysicalRowNum())
}

func TestDelimitedGrabber_CellsSpanBufferRefills(t *testing.T) {
	long := strings.Repeat("m", grabberBufferSize*2+17)
	rows := grabAll(t, newGrabber(long+",x\n\""+long+"\",y\n"))
	assert.Equal(t, [][]string{{long, "x"}, {long, "y"}}, rows)
}

// shortReader returns one byte per Read call, forcing every refill
// path.
type shortReader struct{ data []byte }

func (s *shortReader) Read(p []byte) (int, error) {
	if len(s.data) == 0 {
		return 0, io.EOF
	}
	p[0] = s.data[0]
	s.data = s.data[1:]
	return 1, nil
}

func TestDelimitedGrabber_SingleByteReads(t *testing.T) {
	g := NewDelimitedGrabber(&shortReader{data: []byte("ab,\"c\"\"d\"\r\ne,f")}, '"', ',', false, false)
	rows := grabAll(t, g)
	assert.Equal(t, [][]string{{"ab", `c"d`}, {"e", "f"}}, rows)
}

func TestLineGrabber_ReturnsWholeLines(t *testing.T) {
	g := NewLineGrabber(strings.NewReader("one \"two\", three\nfour\n"))
	rows := grabAll(t, g)
	assert.Equal(t, [][]string{{"one \"two\", three"}, {"four"}}, rows)
}
