package cells

import (
	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// FixedGrabber splits whole physical rows, obtained from an underlying
// line grabber, into cells by character widths.
//
// Widths are counted in characters, under one of two conventions: the
// UTF-32 convention counts every code point as one character; the
// UTF-16 convention counts code points outside the basic multilingual
// plane (4-byte UTF-8 sequences) as two. The final column of every row
// absorbs any trailing bytes.
type FixedGrabber struct {
	lineGrabber  Grabber
	columnWidths []int
	utf32        bool

	rowText   containers.ByteSlice
	colIndex  int
	colOffset int
}

// NewFixedGrabber creates a fixed-width grabber. columnWidths are in
// character units under the chosen counting convention.
func NewFixedGrabber(lineGrabber Grabber, columnWidths []int, utf32CountingConvention bool) *FixedGrabber {
	return &FixedGrabber{
		lineGrabber:  lineGrabber,
		columnWidths: columnWidths,
		utf32:        utf32CountingConvention,
		// Start as if a previous row were fully delivered, so the
		// first call fetches a line.
		colIndex: len(columnWidths),
	}
}

// PhysicalRowNum implements Grabber.
func (g *FixedGrabber) PhysicalRowNum() int64 { return g.lineGrabber.PhysicalRowNum() }

// GrabNext implements Grabber.
func (g *FixedGrabber) GrabNext(dest *containers.ByteSlice, lastInRow, endOfInput *bool) error {
	var dummy bool
	for {
		if g.colOffset == g.rowText.End() {
			// Row used up. If it ran short of the expected cells,
			// return empty cells as padding.
			if g.colIndex < len(g.columnWidths) {
				dest.Reset(g.rowText.Data(), g.rowText.End(), g.rowText.End())
				g.colIndex++
				*lastInRow = g.colIndex == len(g.columnWidths)
				*endOfInput = false
				return nil
			}

			if err := g.lineGrabber.GrabNext(&g.rowText, &dummy, endOfInput); err != nil {
				return err
			}
			if *endOfInput {
				dest.Reset(nil, 0, 0)
				return nil
			}
			g.colIndex = 0
			g.colOffset = g.rowText.Begin()
			continue
		}

		cellBegin := g.colOffset
		var cellEnd int
		if g.colIndex == len(g.columnWidths)-1 {
			// Last column absorbs the remainder of the row.
			cellEnd = g.rowText.End()
		} else {
			end, err := g.takeCharacters(cellBegin, g.columnWidths[g.colIndex])
			if err != nil {
				return err
			}
			cellEnd = end
		}
		g.colIndex++
		g.colOffset = cellEnd

		dest.Reset(g.rowText.Data(), cellBegin, cellEnd)
		*lastInRow = g.colIndex == len(g.columnWidths)
		*endOfInput = false
		return nil
	}
}

// takeCharacters walks forward from byte offset begin until width
// character units are consumed or the row ends, returning the end byte
// offset.
func (g *FixedGrabber) takeCharacters(begin, width int) (int, error) {
	data := g.rowText.Data()
	end := g.rowText.End()
	offset := begin
	taken := 0
	for taken < width && offset < end {
		byteLen := tokenization.Utf8Length(data[offset])
		if byteLen == 0 {
			return 0, errors.Newf(errors.ErrorTypeParse,
				"0x%x is not a valid starting byte for a UTF-8 sequence", data[offset])
		}
		charLen := 1
		if byteLen == 4 && !g.utf32 {
			// Outside the BMP: two UTF-16 units.
			charLen = 2
		}
		if taken+charLen > width {
			return 0, errors.Newf(errors.ErrorTypeParse,
				"fixed-width cell ends mid-character: column width %d would split a surrogate pair", width)
		}
		if offset+byteLen > end {
			return 0, errors.New(errors.ErrorTypeParse,
				"row ends in the middle of a UTF-8 sequence")
		}
		offset += byteLen
		taken += charLen
	}
	return offset, nil
}
