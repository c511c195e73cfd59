// Command pulsar reads a delimited or fixed-width file and prints the
// inferred, typed columns.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ajitpratap0/pulsar/pkg/config"
	"github.com/ajitpratap0/pulsar/pkg/csv"
	"github.com/ajitpratap0/pulsar/pkg/input"
	"github.com/ajitpratap0/pulsar/pkg/logger"
	"github.com/ajitpratap0/pulsar/pkg/metrics"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
)

var version = "0.1.0"

type readFlags struct {
	profile     string
	delimiter   string
	noHeader    bool
	skipRows    int64
	numRows     int64
	fixedWidths []int
	utf32       bool
	serial      bool
	parserNames []string
	output      string
	logLevel    string
	metricsAddr string
}

func main() {
	root := &cobra.Command{
		Use:     "pulsar",
		Short:   "High-performance CSV to typed columns reader",
		Version: version,
	}
	root.AddCommand(newReadCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newReadCommand() *cobra.Command {
	flags := &readFlags{}
	cmd := &cobra.Command{
		Use:   "read <file>",
		Short: "Read a file and print its typed columns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd.Context(), args[0], flags)
		},
	}
	cmd.Flags().StringVar(&flags.profile, "profile", "", "YAML read profile")
	cmd.Flags().StringVarP(&flags.delimiter, "delimiter", "d", "", "field delimiter")
	cmd.Flags().BoolVar(&flags.noHeader, "no-header", false, "input has no header row")
	cmd.Flags().Int64Var(&flags.skipRows, "skip-rows", 0, "rows to skip before data")
	cmd.Flags().Int64Var(&flags.numRows, "num-rows", -1, "cap on produced rows")
	cmd.Flags().IntSliceVar(&flags.fixedWidths, "fixed-widths", nil, "fixed column widths (enables fixed-width mode)")
	cmd.Flags().BoolVar(&flags.utf32, "utf32", false, "count fixed widths in code points instead of UTF-16 units")
	cmd.Flags().BoolVar(&flags.serial, "serial", false, "disable concurrent execution")
	cmd.Flags().StringSliceVar(&flags.parserNames, "parsers", nil, "inference ladder, e.g. int8,int16,int32,int64,float64,string")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "summary", "output format: summary or json")
	cmd.Flags().StringVar(&flags.logLevel, "log-level", "info", "log level")
	cmd.Flags().StringVar(&flags.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	return cmd
}

func runRead(ctx context.Context, path string, flags *readFlags) error {
	if err := logger.Init(logger.Config{Level: flags.logLevel, Encoding: "console"}); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	specs, err := buildSpecs(flags)
	if err != nil {
		return err
	}

	if flags.metricsAddr != "" {
		collector, err := metrics.NewCollector(prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		specs.Metrics = collector
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(flags.metricsAddr, nil); err != nil {
				logger.Error("metrics server failed", zap.Error(err))
			}
		}()
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is the CLI argument
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	stream, err := input.Open(f)
	if err != nil {
		return err
	}

	result, err := csv.Read(ctx, specs, stream, sinks.NewMemoryFactory())
	if err != nil {
		return err
	}
	return printResult(result, flags.output)
}

func buildSpecs(flags *readFlags) (csv.Specs, error) {
	specs := csv.DefaultSpecs()
	if flags.profile != "" {
		var profile config.Profile
		if err := config.Load(flags.profile, &profile); err != nil {
			return specs, err
		}
		loaded, err := profile.ToSpecs()
		if err != nil {
			return specs, err
		}
		specs = loaded
	}
	if flags.delimiter != "" {
		specs.Delimiter = flags.delimiter[0]
	}
	if flags.noHeader {
		specs.HasHeaderRow = false
	}
	specs.SkipRows = flags.skipRows
	if flags.numRows >= 0 {
		specs.NumRows = flags.numRows
	}
	if flags.fixedWidths != nil {
		specs.FixedColumnWidths = flags.fixedWidths
	}
	specs.UseUtf32CountingConvention = flags.utf32
	if flags.serial {
		specs.Concurrent = false
	}
	if len(flags.parserNames) != 0 {
		ladder, err := config.ParserLadder(flags.parserNames)
		if err != nil {
			return specs, err
		}
		specs.Parsers = ladder
	}
	return specs, nil
}

type columnJSON struct {
	Name   string        `json:"name"`
	Type   string        `json:"type"`
	Values []interface{} `json:"values"`
}

func printResult(result *csv.Result, output string) error {
	if output == "summary" {
		fmt.Printf("%d rows x %d columns\n", result.NumRows, result.NumCols)
		for _, col := range result.Columns {
			fmt.Printf("  %-24s %s\n", col.Name, col.DataType)
		}
		return nil
	}

	table := make([]columnJSON, 0, len(result.Columns))
	for _, col := range result.Columns {
		table = append(table, columnJSON{
			Name:   col.Name,
			Type:   col.DataType.String(),
			Values: columnValues(col),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(table)
}

// columnValues renders a memory-factory column as JSON-friendly values
// with explicit nulls.
func columnValues(col csv.ResultColumn) []interface{} {
	switch c := col.Sink.(type) {
	case *sinks.Column[int8]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[int16]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[int32]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[int64]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[float32]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[float64]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[bool]:
		return renderColumn(c.Data(), c.Nulls())
	case *sinks.Column[uint16]:
		values := make([]interface{}, len(c.Data()))
		for i, v := range c.Data() {
			if c.Nulls()[i] {
				values[i] = nil
			} else {
				values[i] = string(rune(v))
			}
		}
		return values
	case *sinks.Column[string]:
		return renderColumn(c.Data(), c.Nulls())
	default:
		return nil
	}
}

func renderColumn[T any](data []T, nulls []bool) []interface{} {
	values := make([]interface{}, len(data))
	for i, v := range data {
		if nulls[i] {
			values[i] = nil
		} else {
			values[i] = v
		}
	}
	return values
}
