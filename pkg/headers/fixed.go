package headers

import (
	"github.com/ajitpratap0/pulsar/pkg/cells"
	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// FixedOptions configure fixed-width header resolution.
type FixedOptions struct {
	HasHeaderRow   bool
	SkipHeaderRows int64
	// FixedColumnWidths, when non-empty, are the caller-specified
	// widths in character units; otherwise widths are inferred from
	// the header row.
	FixedColumnWidths []int
	// Delimiter doubles as the padding byte between fixed columns.
	Delimiter byte
	// UseUtf32CountingConvention counts every code point as one
	// character; otherwise code points outside the BMP count as two.
	UseUtf32CountingConvention bool
	Headers                    []string
	HeaderForIndex             map[int]string
}

// DetermineFixedHeaders resolves the column names and widths for
// fixed-width input, consuming the header row from the line grabber
// when there is one.
func DetermineFixedHeaders(lineGrabber cells.Grabber, opts FixedOptions) ([]string, []int, error) {
	var headersToUse []string
	widthsToUse := append([]int(nil), opts.FixedColumnWidths...)

	if opts.HasHeaderRow {
		var headerRow containers.ByteSlice
		var lastInRow, endOfInput bool
		skipCount := opts.SkipHeaderRows
		for {
			if err := lineGrabber.GrabNext(&headerRow, &lastInRow, &endOfInput); err != nil {
				return nil, nil, err
			}
			if endOfInput {
				return nil, nil, errors.New(errors.ErrorTypeParse,
					"a header row is configured, but the input is empty or shorter than the header row skip count")
			}
			if skipCount == 0 {
				break
			}
			skipCount--
		}
		if len(widthsToUse) == 0 {
			inferred, err := inferColumnWidths(&headerRow, opts.Delimiter, opts.UseUtf32CountingConvention)
			if err != nil {
				return nil, nil, err
			}
			widthsToUse = inferred
		}
		extracted, err := extractHeaders(&headerRow, widthsToUse, opts.Delimiter, opts.UseUtf32CountingConvention)
		if err != nil {
			return nil, nil, err
		}
		headersToUse = extracted
	} else {
		if len(widthsToUse) == 0 {
			return nil, nil, errors.New(errors.ErrorTypeConfig,
				"no header row is configured, so fixed column widths must be specified")
		}
		headersToUse = MakeSyntheticHeaders(len(widthsToUse))
	}

	headersToUse, err := applyOverrides(headersToUse, opts.Headers, opts.HeaderForIndex)
	if err != nil {
		return nil, nil, err
	}
	return headersToUse, widthsToUse, nil
}

// inferColumnWidths derives widths from the header row: a column
// starts at a non-delimiter character preceded by a delimiter or
// start-of-row; its width runs to the next start, in character units.
func inferColumnWidths(row *containers.ByteSlice, delimiter byte, utf32 bool) ([]int, error) {
	var widths []int
	prevCharIsDelimiter := false
	data := row.Data()
	numChars := 0
	byteIndex := row.Begin()
	for {
		if byteIndex == row.End() {
			widths = append(widths, numChars)
			return widths, nil
		}
		ch := data[byteIndex]
		thisCharIsDelimiter := ch == delimiter
		if byteIndex == row.Begin() && thisCharIsDelimiter {
			return nil, errors.Newf(errors.ErrorTypeParse,
				"header row cannot start with the delimiter character %q", delimiter)
		}
		if !thisCharIsDelimiter && prevCharIsDelimiter {
			widths = append(widths, numChars)
			numChars = 0
		}
		prevCharIsDelimiter = thisCharIsDelimiter
		byteLen, charLen, err := utf8LengthAndCharLength(ch, utf32)
		if err != nil {
			return nil, err
		}
		byteIndex += byteLen
		numChars += charLen
	}
}

// extractHeaders splits the header row by the given character widths,
// giving any excess bytes to the last column, and trims the padding
// byte from each name.
func extractHeaders(row *containers.ByteSlice, charWidths []int, padding byte, utf32 bool) ([]string, error) {
	numCols := len(charWidths)
	if numCols == 0 {
		return nil, nil
	}
	byteWidths, excess, err := charWidthsToByteWidths(row, charWidths, utf32)
	if err != nil {
		return nil, err
	}
	// The last column owns any bytes beyond the declared widths.
	byteWidths[numCols-1] += excess

	result := make([]string, numCols)
	var tempSlice containers.ByteSlice
	beginByte := row.Begin()
	for colNum := 0; colNum != numCols; colNum++ {
		endByte := beginByte + byteWidths[colNum]
		if endByte > row.End() {
			endByte = row.End()
		}
		tempSlice.Reset(row.Data(), beginByte, endByte)
		tempSlice.TrimPadding(padding)
		result[colNum] = tempSlice.String()
		beginByte = endByte
	}
	return result, nil
}

func charWidthsToByteWidths(row *containers.ByteSlice, charWidths []int, utf32 bool) ([]int, int, error) {
	numCols := len(charWidths)
	byteWidths := make([]int, numCols)
	data := row.Data()
	byteCurrent := row.Begin()
	byteStart := byteCurrent
	colIndex := 0
	charCount := 0
	for {
		if colIndex == numCols {
			return byteWidths, row.End() - byteCurrent, nil
		}
		if charCount == charWidths[colIndex] {
			byteWidths[colIndex] = byteCurrent - byteStart
			byteStart = byteCurrent
			charCount = 0
			colIndex++
			continue
		}
		if byteCurrent == row.End() {
			// The row ran out before the declared widths did; the
			// remaining columns are empty.
			byteWidths[colIndex] = byteCurrent - byteStart
			byteStart = byteCurrent
			charCount = 0
			colIndex++
			continue
		}
		byteLen, charLen, err := utf8LengthAndCharLength(data[byteCurrent], utf32)
		if err != nil {
			return nil, 0, err
		}
		byteCurrent += byteLen
		charCount += charLen
	}
}

func utf8LengthAndCharLength(first byte, utf32 bool) (byteLen, charLen int, err error) {
	byteLen = tokenization.Utf8Length(first)
	if byteLen == 0 {
		return 0, 0, errors.Newf(errors.ErrorTypeParse,
			"0x%x is not a valid starting byte for a UTF-8 sequence", first)
	}
	charLen = 1
	if byteLen == 4 && !utf32 {
		charLen = 2
	}
	return byteLen, charLen, nil
}
