package headers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/pulsar/pkg/cells"
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

func delimitedGrabber(input string) cells.Grabber {
	return cells.NewDelimitedGrabber(strings.NewReader(input), '"', ',', false, false)
}

func TestDelimitedHeaders_FromFirstRow(t *testing.T) {
	names, firstData, err := DetermineDelimitedHeaders(delimitedGrabber("Key,Value\nA,1\n"),
		DelimitedOptions{HasHeaderRow: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"Key", "Value"}, names)
	assert.Nil(t, firstData)
}

func TestDelimitedHeaders_Synthetic(t *testing.T) {
	names, firstData, err := DetermineDelimitedHeaders(delimitedGrabber("A,1,true\nB,2,false\n"),
		DelimitedOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Column1", "Column2", "Column3"}, names)
	require.Len(t, firstData, 3)
	assert.Equal(t, []byte("A"), firstData[0])
	assert.Equal(t, []byte("true"), firstData[2])
}

func TestDelimitedHeaders_SkipHeaderRows(t *testing.T) {
	names, _, err := DetermineDelimitedHeaders(delimitedGrabber("garbage\nmore garbage\nKey,Value\n"),
		DelimitedOptions{HasHeaderRow: true, SkipHeaderRows: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"Key", "Value"}, names)
}

func TestDelimitedHeaders_Overrides(t *testing.T) {
	names, _, err := DetermineDelimitedHeaders(delimitedGrabber("a,b,c\n"),
		DelimitedOptions{
			HasHeaderRow:   true,
			Headers:        []string{"x", "y", "z"},
			HeaderForIndex: map[int]string{1: "middle"},
		})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "middle", "z"}, names)
}

func TestDelimitedHeaders_OverrideLengthMismatch(t *testing.T) {
	_, _, err := DetermineDelimitedHeaders(delimitedGrabber("a,b,c\n"),
		DelimitedOptions{HasHeaderRow: true, Headers: []string{"only", "two"}})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestDelimitedHeaders_EmptyInput(t *testing.T) {
	names, firstData, err := DetermineDelimitedHeaders(delimitedGrabber(""),
		DelimitedOptions{HasHeaderRow: true, Headers: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Nil(t, firstData)
}

func lineGrabber(input string) cells.Grabber {
	return cells.NewLineGrabber(strings.NewReader(input))
}

func TestFixedHeaders_InferWidths(t *testing.T) {
	names, widths, err := DetermineFixedHeaders(lineGrabber("AAA BBB\n111 222\n"),
		FixedOptions{HasHeaderRow: true, Delimiter: ' '})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 3}, widths)
	assert.Equal(t, []string{"AAA", "BBB"}, names)
}

func TestFixedHeaders_InferWidthsMultipleSpaces(t *testing.T) {
	names, widths, err := DetermineFixedHeaders(lineGrabber("Sym   Price  Qty\n"),
		FixedOptions{HasHeaderRow: true, Delimiter: ' '})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7, 3}, widths)
	assert.Equal(t, []string{"Sym", "Price", "Qty"}, names)
}

func TestFixedHeaders_DelimiterAtRowStartFails(t *testing.T) {
	_, _, err := DetermineFixedHeaders(lineGrabber(" AAA BBB\n"),
		FixedOptions{HasHeaderRow: true, Delimiter: ' '})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}

func TestFixedHeaders_ExplicitWidths(t *testing.T) {
	names, widths, err := DetermineFixedHeaders(lineGrabber("SymbolPrice\n"),
		FixedOptions{HasHeaderRow: true, FixedColumnWidths: []int{6, 5}, Delimiter: ' '})
	require.NoError(t, err)
	assert.Equal(t, []int{6, 5}, widths)
	assert.Equal(t, []string{"Symbol", "Price"}, names)
}

func TestFixedHeaders_SyntheticRequiresWidths(t *testing.T) {
	names, widths, err := DetermineFixedHeaders(lineGrabber("data\n"),
		FixedOptions{FixedColumnWidths: []int{2, 2}})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, widths)
	assert.Equal(t, []string{"Column1", "Column2"}, names)

	_, _, err = DetermineFixedHeaders(lineGrabber("data\n"), FixedOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
}

func TestFixedHeaders_EmptyInputWithHeaderRowFails(t *testing.T) {
	_, _, err := DetermineFixedHeaders(lineGrabber(""), FixedOptions{HasHeaderRow: true})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeParse))
}
