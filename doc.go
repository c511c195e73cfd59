// Package pulsar provides a high-performance streaming reader that
// turns a byte stream of character-separated (or fixed-width) values
// into a set of typed columns.
//
// The reader solves two problems at once: streaming, UTF-8-aware
// tokenization of CSV with quoting and embedded newlines, keeping every
// cell as a zero-copy byte slice; and per-column two-pass type
// inference, where a ladder of candidate parsers is tried in widening
// order and a failed narrow parse is replayed from compact in-memory
// storage instead of from the input.
//
// # Architecture
//
// A single producer tokenizes the input and appends each cell to its
// column's dense storage, a bounded FIFO of packed byte blocks on an
// append-only linked list. One consumer per column drains that storage
// through cheap, independently-cloneable cursors, which is what makes
// the second inference pass free of input rebuffering. A counting
// semaphore paces the producer to the cursor that is furthest along.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "os"
//
//	    "github.com/ajitpratap0/pulsar/pkg/csv"
//	    "github.com/ajitpratap0/pulsar/pkg/sinks"
//	)
//
//	f, _ := os.Open("trades.csv")
//	defer f.Close()
//
//	result, err := csv.Read(context.Background(), csv.DefaultSpecs(), f, sinks.NewMemoryFactory())
//	if err != nil {
//	    // handle err
//	}
//	for _, col := range result.Columns {
//	    // col.Name, col.DataType, col.Sink
//	}
//
// # Key Packages
//
//	pkg/csv          - Public configuration, coordinator, and result
//	pkg/cells        - Delimited and fixed-width cell grabbers
//	pkg/densestorage - Producer/consumer cell storage
//	pkg/parsers      - The parser ladder and parser contract
//	pkg/sinks        - Column output contracts and implementations
package pulsar
