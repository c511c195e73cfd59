package csv

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/pulsar/pkg/cells"
	"github.com/ajitpratap0/pulsar/pkg/densestorage"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/headers"
	"github.com/ajitpratap0/pulsar/pkg/logger"
	"github.com/ajitpratap0/pulsar/pkg/reading"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// Result is a fully-typed table.
type Result struct {
	NumRows int64
	NumCols int
	// Columns are in header order.
	Columns []ResultColumn
}

// ResultColumn is one typed column: its resolved name, inferred type,
// and the sink the factory supplied to hold the data.
type ResultColumn struct {
	Name     string
	DataType sinks.DataType
	Sink     sinks.Sink
}

// Read consumes the input stream, up to the NumRows cap, and returns the
// typed columns.
// The factory supplies the sink for each column once its type is
// known; pass sinks.NewMemoryFactory() for in-memory columns.
func Read(ctx context.Context, specs Specs, r io.Reader, factory sinks.Factory) (*Result, error) {
	if err := specs.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	// A non-nil widths slice selects fixed mode; an empty one means
	// the widths are inferred from the header row.
	mode := "delimited"
	if specs.FixedColumnWidths != nil {
		mode = "fixed"
	}

	var grabber cells.Grabber
	var headerNames []string
	var firstDataRow [][]byte

	if mode == "fixed" {
		lineGrabber := cells.NewLineGrabber(r)
		names, widths, err := headers.DetermineFixedHeaders(lineGrabber, headers.FixedOptions{
			HasHeaderRow:               specs.HasHeaderRow,
			SkipHeaderRows:             specs.SkipHeaderRows,
			FixedColumnWidths:          specs.FixedColumnWidths,
			Delimiter:                  specs.Delimiter,
			UseUtf32CountingConvention: specs.UseUtf32CountingConvention,
			Headers:                    specs.Headers,
			HeaderForIndex:             specs.HeaderForIndex,
		})
		if err != nil {
			return nil, err
		}
		headerNames = names
		grabber = cells.NewFixedGrabber(lineGrabber, widths, specs.UseUtf32CountingConvention)
	} else {
		delimited := cells.NewDelimitedGrabber(r, specs.Quote, specs.Delimiter,
			specs.IgnoreSurroundingSpaces, specs.Trim)
		names, row, err := headers.DetermineDelimitedHeaders(delimited, headers.DelimitedOptions{
			HasHeaderRow:   specs.HasHeaderRow,
			SkipHeaderRows: specs.SkipHeaderRows,
			Headers:        specs.Headers,
			HeaderForIndex: specs.HeaderForIndex,
		})
		if err != nil {
			return nil, err
		}
		headerNames = names
		firstDataRow = row
		grabber = delimited
	}

	numCols := len(headerNames)
	if numCols == 0 {
		return &Result{}, nil
	}

	tokenizer := tokenization.NewTokenizer(specs.CustomDoubleParser, specs.CustomTimeZoneParser)

	eg, egCtx := errgroup.WithContext(ctx)

	writers := make([]*densestorage.Writer, numCols)
	dsReaders := make([]*densestorage.Reader, numCols)
	for i := 0; i < numCols; i++ {
		writers[i], dsReaders[i] = densestorage.NewPair(egCtx, specs.Concurrent)
	}

	producerOpts := reading.ProducerOptions{
		NumCols:             numCols,
		SkipRows:            specs.SkipRows,
		NumRows:             specs.NumRows,
		IgnoreEmptyLines:    specs.IgnoreEmptyLines,
		AllowMissingColumns: specs.AllowMissingColumns,
		IgnoreExcessColumns: specs.IgnoreExcessColumns,
		FirstDataRow:        firstDataRow,
	}

	var numRows int64
	results := make([]*reading.Result, numCols)

	produce := func() error {
		n, err := reading.PopulateColumns(grabber, writers, producerOpts)
		numRows = n
		if err != nil {
			// Consumers may be blocked waiting on these queues.
			for _, w := range writers {
				w.Poison(err)
			}
		}
		return err
	}
	consume := func(col int) error {
		res, err := reading.ParseDenseStorageToColumn(col, dsReaders[col],
			specs.parsersFor(col, headerNames[col]), specs.NullParser,
			specs.nullLiteralsFor(col, headerNames[col]), tokenizer, factory)
		if err != nil {
			if errors.IsType(err, errors.ErrorTypeInference) {
				specs.Metrics.RecordInferenceFailure(mode)
			}
			errType := errors.ErrorTypeInternal
			var structured *errors.Error
			if errors.As(err, &structured) {
				errType = structured.Type
			}
			return errors.Wrap(err, errType, "column "+headerNames[col]+" failed")
		}
		results[col] = res
		return nil
	}

	if specs.Concurrent {
		eg.Go(produce)
		for i := 0; i < numCols; i++ {
			eg.Go(func() error { return consume(i) })
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	} else {
		if err := produce(); err != nil {
			return nil, err
		}
		for i := 0; i < numCols; i++ {
			if err := consume(i); err != nil {
				return nil, err
			}
		}
	}

	result := &Result{
		NumRows: numRows,
		NumCols: numCols,
		Columns: make([]ResultColumn, numCols),
	}
	for i, res := range results {
		result.Columns[i] = ResultColumn{
			Name:     headerNames[i],
			DataType: res.DataType,
			Sink:     res.Sink,
		}
		specs.Metrics.RecordColumnType(res.DataType.String())
	}
	specs.Metrics.RecordRead(mode, numRows, numRows*int64(numCols), time.Since(start))

	logger.Get().Debug("read complete",
		zap.String("mode", mode),
		zap.Int64("rows", numRows),
		zap.Int("cols", numCols))
	return result, nil
}
