// Package headers resolves column names, and in fixed-width mode the
// column widths, by consuming the grabber ahead of data production.
package headers

import (
	"github.com/ajitpratap0/pulsar/pkg/cells"
	"github.com/ajitpratap0/pulsar/pkg/containers"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	stringpool "github.com/ajitpratap0/pulsar/pkg/strings"
)

// DelimitedOptions configure delimited header resolution.
type DelimitedOptions struct {
	HasHeaderRow   bool
	SkipHeaderRows int64
	// Headers overrides every resolved name; its length must match.
	Headers []string
	// HeaderForIndex overrides individual names.
	HeaderForIndex map[int]string
}

// DetermineDelimitedHeaders resolves the column names for delimited
// input. When the input has no header row, names Column1..ColumnN are
// synthesized from the first data row, and that row is returned as
// owned cell copies so the producer can still deliver it.
func DetermineDelimitedHeaders(grabber cells.Grabber, opts DelimitedOptions) ([]string, [][]byte, error) {
	var headersToUse []string
	var firstDataRow [][]byte

	if opts.HasHeaderRow {
		for skipped := int64(0); skipped < opts.SkipHeaderRows; skipped++ {
			done, err := discardRow(grabber)
			if err != nil {
				return nil, nil, err
			}
			if done {
				return nil, nil, errors.New(errors.ErrorTypeParse,
					"input has fewer rows than the configured header row skip count")
			}
		}
		row, done, err := grabRow(grabber)
		if err != nil {
			return nil, nil, err
		}
		if !done {
			headersToUse = make([]string, len(row))
			for i, cell := range row {
				headersToUse[i] = string(cell)
			}
		}
	} else {
		row, done, err := grabRow(grabber)
		if err != nil {
			return nil, nil, err
		}
		if !done {
			headersToUse = MakeSyntheticHeaders(len(row))
			firstDataRow = row
		}
	}

	headersToUse, err := applyOverrides(headersToUse, opts.Headers, opts.HeaderForIndex)
	if err != nil {
		return nil, nil, err
	}
	return headersToUse, firstDataRow, nil
}

// MakeSyntheticHeaders names columns Column1..ColumnN.
func MakeSyntheticHeaders(numHeaders int) []string {
	result := make([]string, numHeaders)
	for i := range result {
		result[i] = stringpool.Sprintf("Column%d", i+1)
	}
	return result
}

// applyOverrides applies the caller's full-header and per-index name
// overrides. Discovery may legitimately find nothing (empty input), in
// which case the full override alone determines the columns.
func applyOverrides(headersToUse, fullOverride []string, forIndex map[int]string) ([]string, error) {
	if len(fullOverride) != 0 {
		if headersToUse != nil && len(fullOverride) != len(headersToUse) {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"input determined %d headers; caller overrode with %d headers",
				len(headersToUse), len(fullOverride))
		}
		headersToUse = append([]string(nil), fullOverride...)
	}
	for index, name := range forIndex {
		if index < 0 || index >= len(headersToUse) {
			return nil, errors.Newf(errors.ErrorTypeConfig,
				"header override index %d is out of range for %d columns",
				index, len(headersToUse))
		}
		headersToUse[index] = name
	}
	return headersToUse, nil
}

// grabRow consumes one whole row, returning owned cell copies, or
// done=true at end of input.
func grabRow(grabber cells.Grabber) ([][]byte, bool, error) {
	var bs containers.ByteSlice
	var lastInRow, endOfInput bool
	var row [][]byte
	for {
		if err := grabber.GrabNext(&bs, &lastInRow, &endOfInput); err != nil {
			return nil, false, err
		}
		if endOfInput {
			if len(row) == 0 {
				return nil, true, nil
			}
			return row, false, nil
		}
		cell := make([]byte, bs.Size())
		bs.CopyTo(cell, 0)
		row = append(row, cell)
		if lastInRow {
			return row, false, nil
		}
	}
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
