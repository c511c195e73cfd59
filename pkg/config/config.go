// Package config provides YAML read-profile loading for the CLI.
package config

import (
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ajitpratap0/pulsar/pkg/csv"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/parsers"
)

// Profile is the YAML shape of a read configuration. Unset fields keep
// the reader defaults.
type Profile struct {
	Delimiter                  string   `yaml:"delimiter"`
	Quote                      string   `yaml:"quote"`
	IgnoreSurroundingSpaces    bool     `yaml:"ignore_surrounding_spaces"`
	Trim                       bool     `yaml:"trim"`
	HasHeaderRow               *bool    `yaml:"has_header_row"`
	SkipHeaderRows             int64    `yaml:"skip_header_rows"`
	SkipRows                   int64    `yaml:"skip_rows"`
	NumRows                    *int64   `yaml:"num_rows"`
	IgnoreEmptyLines           bool     `yaml:"ignore_empty_lines"`
	AllowMissingColumns        bool     `yaml:"allow_missing_columns"`
	IgnoreExcessColumns        bool     `yaml:"ignore_excess_columns"`
	Headers                    []string `yaml:"headers"`
	Parsers                    []string `yaml:"parsers"`
	NullValueLiterals          []string `yaml:"null_value_literals"`
	Concurrent                 *bool    `yaml:"concurrent"`
	FixedColumnWidths          []int    `yaml:"fixed_column_widths"`
	UseUtf32CountingConvention bool     `yaml:"use_utf32_counting_convention"`
}

// Load reads a YAML file into config, substituting ${VAR} references
// with environment variable values first.
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: path is caller-controlled
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeIO, "failed to read config file")
	}

	content := substituteEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "failed to parse YAML")
	}
	return nil
}

// ToSpecs converts the profile into reader specs.
func (p *Profile) ToSpecs() (csv.Specs, error) {
	specs := csv.DefaultSpecs()
	if p.Delimiter != "" {
		specs.Delimiter = p.Delimiter[0]
	}
	if p.Quote != "" {
		specs.Quote = p.Quote[0]
	}
	specs.IgnoreSurroundingSpaces = p.IgnoreSurroundingSpaces
	specs.Trim = p.Trim
	if p.HasHeaderRow != nil {
		specs.HasHeaderRow = *p.HasHeaderRow
	}
	specs.SkipHeaderRows = p.SkipHeaderRows
	specs.SkipRows = p.SkipRows
	if p.NumRows != nil {
		specs.NumRows = *p.NumRows
	}
	specs.IgnoreEmptyLines = p.IgnoreEmptyLines
	specs.AllowMissingColumns = p.AllowMissingColumns
	specs.IgnoreExcessColumns = p.IgnoreExcessColumns
	specs.Headers = p.Headers
	if len(p.NullValueLiterals) != 0 {
		specs.NullValueLiterals = p.NullValueLiterals
	}
	if p.Concurrent != nil {
		specs.Concurrent = *p.Concurrent
	}
	if p.FixedColumnWidths != nil {
		specs.FixedColumnWidths = p.FixedColumnWidths
	}
	specs.UseUtf32CountingConvention = p.UseUtf32CountingConvention

	if len(p.Parsers) != 0 {
		ladder, err := ParserLadder(p.Parsers)
		if err != nil {
			return specs, err
		}
		specs.Parsers = ladder
	}
	return specs, nil
}

// ParserLadder resolves parser names to the built-in parsers.
func ParserLadder(names []string) ([]parsers.Parser, error) {
	byName := map[string]parsers.Parser{
		"int8":              parsers.Int8,
		"int16":             parsers.Int16,
		"int32":             parsers.Int32,
		"int64":             parsers.Int64,
		"float32":           parsers.Float32Fast,
		"float32-strict":    parsers.Float32Strict,
		"float64":           parsers.Float64,
		"bool":              parsers.Boolean,
		"char":              parsers.Char,
		"string":            parsers.String,
		"datetime":          parsers.DateTime,
		"timestamp-seconds": parsers.TimestampSeconds,
		"timestamp-millis":  parsers.TimestampMillis,
		"timestamp-micros":  parsers.TimestampMicros,
		"timestamp-nanos":   parsers.TimestampNanos,
	}
	ladder := make([]parsers.Parser, 0, len(names))
	for _, name := range names {
		p, ok := byName[strings.ToLower(name)]
		if !ok {
			return nil, errors.Newf(errors.ErrorTypeConfig, "unknown parser %q", name)
		}
		ladder = append(ladder, p)
	}
	return ladder, nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment values.
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
