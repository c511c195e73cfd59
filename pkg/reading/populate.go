package reading

import (
	"github.com/ajitpratap0/pulsar/pkg/cells"
	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/densestorage"
	"github.com/ajitpratap0/pulsar/pkg/errors"
)

// ProducerOptions configure the dense-storage population pass.
type ProducerOptions struct {
	NumCols int
	// SkipRows drops this many data rows before production starts.
	SkipRows int64
	// NumRows caps the number of produced rows.
	NumRows int64
	// IgnoreEmptyLines skips rows that contain zero cells.
	IgnoreEmptyLines bool
	// AllowMissingColumns pads short rows with the empty cell instead
	// of failing.
	AllowMissingColumns bool
	// IgnoreExcessColumns drops trailing cells of long rows instead of
	// failing.
	IgnoreExcessColumns bool
	// FirstDataRow is a row the header resolver already consumed while
	// counting columns; it is produced before the grabber is consulted.
	FirstDataRow [][]byte
}

// PopulateColumns runs the single producing task: it reads cells from
// the grabber and appends each to its column's dense-storage writer,
// so that every row contributes exactly NumCols cells. Writers are
// finished when the grabber reports end of input or the row cap is
// reached; on error they are left unfinished and the caller poisons the
// queues.
func PopulateColumns(grabber cells.Grabber, writers []*densestorage.Writer, opts ProducerOptions) (int64, error) {
	numCols := opts.NumCols
	var rowsWritten int64
	var bs containers.ByteSlice
	var empty containers.ByteSlice
	var lastInRow, endOfInput bool

	finish := func() error {
		for _, w := range writers {
			if err := w.Finish(); err != nil {
				return err
			}
		}
		return nil
	}

	if opts.FirstDataRow != nil && opts.SkipRows == 0 && opts.NumRows > 0 {
		for i, cell := range opts.FirstDataRow {
			bs.Reset(cell, 0, len(cell))
			if err := writers[i].Append(&bs); err != nil {
				return rowsWritten, err
			}
		}
		for i := len(opts.FirstDataRow); i < numCols; i++ {
			if err := writers[i].Append(&empty); err != nil {
				return rowsWritten, err
			}
		}
		rowsWritten++
	} else if opts.FirstDataRow != nil {
		// The pre-read row is consumed by the skip count (or a zero
		// row cap) instead.
		opts.SkipRows--
	}

	for skipped := int64(0); skipped < opts.SkipRows; skipped++ {
		done, err := discardRow(grabber)
		if err != nil {
			return rowsWritten, err
		}
		if done {
			return rowsWritten, finish()
		}
	}

rowLoop:
	for rowsWritten < opts.NumRows {
		colIndex := 0
		for {
			if err := grabber.GrabNext(&bs, &lastInRow, &endOfInput); err != nil {
				return rowsWritten, err
			}
			if endOfInput {
				if colIndex != 0 {
					return rowsWritten, errors.Newf(errors.ErrorTypeInternal,
						"input ended mid-row at physical row %d", grabber.PhysicalRowNum())
				}
				break rowLoop
			}

			// A row whose only cell is empty holds zero cells.
			if colIndex == 0 && lastInRow && bs.Size() == 0 && opts.IgnoreEmptyLines {
				continue rowLoop
			}

			if colIndex < numCols {
				if err := writers[colIndex].Append(&bs); err != nil {
					return rowsWritten, err
				}
			} else if !opts.IgnoreExcessColumns {
				return rowsWritten, errors.Newf(errors.ErrorTypeParse,
					"row %d has more than the expected %d columns",
					grabber.PhysicalRowNum(), numCols)
			}
			colIndex++
			if lastInRow {
				break
			}
		}

		if colIndex < numCols {
			if !opts.AllowMissingColumns {
				return rowsWritten, errors.Newf(errors.ErrorTypeParse,
					"row %d has only %d columns; expected %d",
					grabber.PhysicalRowNum(), colIndex, numCols)
			}
			for ; colIndex < numCols; colIndex++ {
				if err := writers[colIndex].Append(&empty); err != nil {
					return rowsWritten, err
				}
			}
		}
		rowsWritten++
	}

	return rowsWritten, finish()
}

func discardRow(grabber cells.Grabber) (bool, error) {
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	for {
		if err := grabber.GrabNext(&bs, &lastInRow, &endOfInput); err != nil {
			return false, err
		}
		if endOfInput {
			return true, nil
		}
		if lastInRow {
			return false, nil
		}
	}
}
