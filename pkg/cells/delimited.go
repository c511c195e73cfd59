package cells

import (
	"io"

	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

const grabberBufferSize = 64 * 1024

// illegalUtf8 can never occur in well-formed UTF-8, so using it as the
// delimiter and quote makes the grabber return whole physical lines.
const illegalUtf8 = byte(0xFF)

// DelimitedGrabber tokenizes delimited input. It moves through four
// states per cell: start-of-cell, in-unquoted, in-quoted, and
// after-quote (where a doubled quote is a literal quote and anything
// but a delimiter or row end is an error).
type DelimitedGrabber struct {
	reader    io.Reader
	delimiter byte
	quote     byte
	quoting   bool
	// ignoreSurroundingSpaces trims unquoted cells only; trim extends
	// the trimming to quoted cells.
	ignoreSurroundingSpaces bool
	trim                    bool

	buf    []byte
	size   int
	offset int
	// spill accumulates cell bytes that survive a buffer refill or a
	// collapsed escaped quote.
	spill *containers.GrowableByteBuffer

	physicalRowNum int64
}

// NewDelimitedGrabber creates a grabber over r.
func NewDelimitedGrabber(r io.Reader, quote, delimiter byte, ignoreSurroundingSpaces, trim bool) *DelimitedGrabber {
	return &DelimitedGrabber{
		reader:                  r,
		delimiter:               delimiter,
		quote:                   quote,
		quoting:                 true,
		ignoreSurroundingSpaces: ignoreSurroundingSpaces,
		trim:                    trim,
		buf:                     make([]byte, grabberBufferSize),
		spill:                   containers.NewGrowableByteBuffer(),
	}
}

// NewLineGrabber creates a degenerate grabber that returns whole
// physical lines: its delimiter and quote are a byte that cannot occur
// in UTF-8. The fixed-width grabber builds on this to reuse the
// buffering and newline logic here.
func NewLineGrabber(r io.Reader) *DelimitedGrabber {
	g := NewDelimitedGrabber(r, illegalUtf8, illegalUtf8, false, false)
	g.quoting = false
	return g
}

// PhysicalRowNum implements Grabber.
func (g *DelimitedGrabber) PhysicalRowNum() int64 { return g.physicalRowNum }

// GrabNext implements Grabber.
func (g *DelimitedGrabber) GrabNext(dest *containers.ByteSlice, lastInRow, endOfInput *bool) error {
	g.spill.Clear()
	more, err := g.ensureMore()
	if err != nil {
		return err
	}
	if !more {
		dest.Reset(nil, 0, 0)
		*lastInRow = true
		*endOfInput = true
		return nil
	}
	*endOfInput = false
	if g.quoting && g.buf[g.offset] == g.quote {
		return g.grabQuoted(dest, lastInRow)
	}
	return g.grabUnquoted(dest, lastInRow)
}

// grabUnquoted scans to the next delimiter, row terminator, or end of
// input. The cell may span buffer refills via the spill buffer.
func (g *DelimitedGrabber) grabUnquoted(dest *containers.ByteSlice, lastInRow *bool) error {
	cellBegin := g.offset
	for {
		if g.offset == g.size {
			more, err := g.refillSpilling(&cellBegin)
			if err != nil {
				return err
			}
			if !more {
				// Input ended without a terminator; the pending bytes
				// are a valid last cell.
				g.finishCell(dest, cellBegin, g.offset)
				*lastInRow = true
				g.maybeTrimUnquoted(dest)
				return nil
			}
		}
		b := g.buf[g.offset]
		switch b {
		case g.delimiter:
			g.finishCell(dest, cellBegin, g.offset)
			g.offset++
			*lastInRow = false
			g.maybeTrimUnquoted(dest)
			return nil
		case '\n', '\r':
			g.finishCell(dest, cellBegin, g.offset)
			g.offset++
			if err := g.consumeLfAfterCr(b, dest); err != nil {
				return err
			}
			g.physicalRowNum++
			*lastInRow = true
			g.maybeTrimUnquoted(dest)
			return nil
		default:
			g.offset++
		}
	}
}

// grabQuoted consumes an opening quote, the quoted body (collapsing
// doubled quotes), the closing quote, and the terminator after it.
func (g *DelimitedGrabber) grabQuoted(dest *containers.ByteSlice, lastInRow *bool) error {
	g.offset++ // opening quote
	cellBegin := g.offset
	for {
		if g.offset == g.size {
			more, err := g.refillSpilling(&cellBegin)
			if err != nil {
				return err
			}
			if !more {
				return errors.New(errors.ErrorTypeParse,
					"cell is missing trailing quote character")
			}
		}
		b := g.buf[g.offset]
		if b == '\n' {
			g.physicalRowNum++
			g.offset++
			continue
		}
		if b != g.quote {
			g.offset++
			continue
		}

		// A quote: either the start of an escaped pair or the close.
		// The body so far, excluding this quote, is settled either way.
		g.spill.Append(g.buf[cellBegin:g.offset])
		g.offset++
		cellBegin = g.offset
		if g.offset == g.size {
			more, err := g.refillSpilling(&cellBegin)
			if err != nil {
				return err
			}
			if !more {
				// Closing quote at end of input.
				dest.Reset(g.spill.Data(), 0, g.spill.Size())
				*lastInRow = true
				g.maybeTrimQuoted(dest)
				return nil
			}
		}
		if g.buf[g.offset] == g.quote {
			// Doubled quote: a literal quote in the body.
			g.spill.AppendByte(g.quote)
			g.offset++
			cellBegin = g.offset
			continue
		}

		// Closed. The next byte must be the delimiter or a row end.
		dest.Reset(g.spill.Data(), 0, g.spill.Size())
		b = g.buf[g.offset]
		switch b {
		case g.delimiter:
			g.offset++
			*lastInRow = false
		case '\n', '\r':
			g.offset++
			if err := g.consumeLfAfterCr(b, dest); err != nil {
				return err
			}
			g.physicalRowNum++
			*lastInRow = true
		default:
			return errors.Newf(errors.ErrorTypeParse,
				"cell has unexpected character %q after closing quote", b)
		}
		g.maybeTrimQuoted(dest)
		return nil
	}
}

// consumeLfAfterCr eats the \n of a \r\n pair. The peek may need a
// refill; dest is moved to owned storage first so the refill cannot
// invalidate it.
func (g *DelimitedGrabber) consumeLfAfterCr(terminator byte, dest *containers.ByteSlice) error {
	if terminator != '\r' {
		return nil
	}
	if g.offset == g.size {
		if err := g.preserve(dest); err != nil {
			return err
		}
		more, err := g.refill()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	if g.buf[g.offset] == '\n' {
		g.offset++
	}
	return nil
}

// finishCell points dest at the completed cell: directly into the read
// buffer when the cell never spanned a refill, otherwise at the spill.
func (g *DelimitedGrabber) finishCell(dest *containers.ByteSlice, cellBegin, cellEnd int) {
	if g.spill.Size() == 0 {
		dest.Reset(g.buf, cellBegin, cellEnd)
		return
	}
	g.spill.Append(g.buf[cellBegin:cellEnd])
	dest.Reset(g.spill.Data(), 0, g.spill.Size())
}

// preserve copies dest into the spill if it still views the read
// buffer.
func (g *DelimitedGrabber) preserve(dest *containers.ByteSlice) error {
	if dest.Size() == 0 || g.spill.Size() != 0 {
		return nil
	}
	g.spill.Append(dest.Bytes())
	dest.Reset(g.spill.Data(), 0, g.spill.Size())
	return nil
}

// refillSpilling saves the in-progress cell segment [*cellBegin, size)
// to the spill, then refills the read buffer and resets *cellBegin.
func (g *DelimitedGrabber) refillSpilling(cellBegin *int) (bool, error) {
	g.spill.Append(g.buf[*cellBegin:g.size])
	more, err := g.refill()
	*cellBegin = 0
	return more, err
}

func (g *DelimitedGrabber) refill() (bool, error) {
	g.offset = 0
	g.size = 0
	for {
		n, err := g.reader.Read(g.buf)
		if n > 0 {
			g.size = n
			return true, nil
		}
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, errors.Wrap(err, errors.ErrorTypeIO, "failed to read input")
		}
	}
}

// ensureMore makes at least one unread byte available, or reports that
// the input is exhausted.
func (g *DelimitedGrabber) ensureMore() (bool, error) {
	if g.offset != g.size {
		return true, nil
	}
	return g.refill()
}

func (g *DelimitedGrabber) maybeTrimUnquoted(dest *containers.ByteSlice) {
	if g.ignoreSurroundingSpaces || g.trim {
		trimWhitespace(dest)
	}
}

func (g *DelimitedGrabber) maybeTrimQuoted(dest *containers.ByteSlice) {
	if g.trim {
		trimWhitespace(dest)
	}
}

func trimWhitespace(bs *containers.ByteSlice) {
	data := bs.Data()
	begin, end := bs.Begin(), bs.End()
	for begin != end && tokenization.IsSpaceOrTab(data[begin]) {
		begin++
	}
	for begin != end && tokenization.IsSpaceOrTab(data[end-1]) {
		end--
	}
	bs.Reset(data, begin, end)
}
