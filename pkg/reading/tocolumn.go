// Package reading contains the two halves of a read: the producer that
// tokenizes input into per-column dense storage, and the per-column
// typing engine that selects a parser from the configured ladder and
// produces a typed column.
package reading

import (
	"math"

	"github.com/ajitpratap0/pulsar/pkg/densestorage"
	"github.com/ajitpratap0/pulsar/pkg/errors"
	"github.com/ajitpratap0/pulsar/pkg/parsers"
	"github.com/ajitpratap0/pulsar/pkg/sinks"
	"github.com/ajitpratap0/pulsar/pkg/tokenization"
)

// Result is a typed column: the sink chosen to hold the data and its
// element type.
type Result struct {
	Sink     sinks.Sink
	DataType sinks.DataType
}

// ParseDenseStorageToColumn drains one column's cell text from dsr,
// infers a type if the ladder allows more than one parser, and parses
// the text into typed data.
//
// Two iterator holders cursor over the same storage: one advances
// through trial parses, the other is held in reserve so a successful
// parser that started past a leading null run can backfill from zero.
func ParseDenseStorageToColumn(
	colIndex int,
	dsr *densestorage.Reader,
	parserList []parsers.Parser,
	nullParser parsers.Parser,
	nullLiterals []string,
	tokenizer *tokenization.Tokenizer,
	factory sinks.Factory,
) (*Result, error) {
	parserSet := dedupe(parserList)

	gctx := parsers.NewGlobalContext(colIndex, tokenizer, factory, nullLiterals)
	defer gctx.Release()

	ihAlt := parsers.NewIteratorHolder(dsr.Clone())
	ih := parsers.NewIteratorHolder(dsr)

	// Leading null cells split the work into four cases: an empty
	// column, a single-parser ladder (no inference), an all-null
	// column, and the general case where inference starts at the first
	// non-null cell.

	nullParserToUse := nullParser
	if len(parserSet) == 1 {
		nullParserToUse = parserSet[0]
	}

	moved, err := ih.TryMoveNext()
	if err != nil {
		return nil, err
	}
	if !moved {
		if nullParserToUse == nil {
			return nil, errors.New(errors.ErrorTypeConfig,
				"column is empty, so its type cannot be inferred, and no null parser is configured")
		}
		return emptyParse(nullParserToUse, gctx)
	}

	if len(parserSet) == 1 {
		return onePhaseParse(parserSet[0], gctx, ihAlt)
	}

	columnIsAllNulls := true
	for {
		if !gctx.IsNullCell(ih) {
			columnIsAllNulls = false
			break
		}
		moved, err = ih.TryMoveNext()
		if err != nil {
			return nil, err
		}
		if !moved {
			break
		}
	}

	if columnIsAllNulls {
		if nullParserToUse == nil {
			return nil, errors.New(errors.ErrorTypeConfig,
				"column contains all null cells, so its type cannot be inferred, and no null parser is configured")
		}
		return onePhaseParse(nullParserToUse, gctx, ihAlt)
	}

	cats, err := categorize(parserSet)
	if err != nil {
		return nil, err
	}

	// Numerics get their own fast path that reads intermediate sinks
	// back instead of reparsing the text.
	if len(cats.numeric) != 0 {
		if _, ok := tokenizer.TryParseDouble(ih.BS().Bytes()); ok {
			return parseNumerics(cats, gctx, ih, ihAlt)
		}
	}

	var beforeCustom []parsers.Parser
	if cats.timestamp != nil {
		if _, ok := tokenizer.TryParseLong(ih.BS().Bytes()); ok {
			beforeCustom = []parsers.Parser{cats.timestamp}
		}
	}
	if beforeCustom == nil && cats.boolean != nil {
		if _, ok := tokenizer.TryParseBoolean(ih.BS().Bytes()); ok {
			beforeCustom = []parsers.Parser{cats.boolean}
		}
	}
	if beforeCustom == nil && cats.dateTime != nil {
		if _, ok := tokenizer.TryParseDateTime(ih.BS().Bytes()); ok {
			beforeCustom = []parsers.Parser{cats.dateTime}
		}
	}
	return parseFromCuratedSelections(beforeCustom, cats.custom, cats.charAndString, gctx, ih, ihAlt)
}

func dedupe(list []parsers.Parser) []parsers.Parser {
	seen := make(map[parsers.Parser]struct{}, len(list))
	result := make([]parsers.Parser, 0, len(list))
	for _, p := range list {
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		result = append(result, p)
	}
	return result
}

type parserResultWrapper struct {
	parser parsers.Parser
	ctx    *parsers.Context
	begin  int64
	end    int64
}

func parseNumerics(cats *categorized, gctx *parsers.GlobalContext, ih, ihAlt *parsers.IteratorHolder) (*Result, error) {
	var wrappers []*parserResultWrapper
	for _, parser := range cats.numeric {
		wrapper, err := parseNumericsHelper(parser, gctx, ih)
		if err != nil {
			return nil, err
		}
		wrappers = append(wrappers, wrapper)
		if ih.IsExhausted() {
			break
		}
	}

	if !ih.IsExhausted() {
		if len(cats.custom) == 0 && len(cats.charAndString) == 0 {
			return nil, errors.Newf(errors.ErrorTypeInference,
				"consumed %d numeric items, then encountered a non-numeric item, and there are no custom or char/string parsers to fall back to",
				ih.NumConsumed()-1)
		}
		// The numeric ladder could not consume all input. Fall back to
		// the custom parsers, then char and string.
		return parseFromCuratedSelections(nil, cats.custom, cats.charAndString, gctx, ih, ihAlt)
	}

	// If every intermediate sink is readable we can widen by reading
	// the data back; otherwise reparse the text with the widest parser.
	if canUnify(wrappers) {
		return unifyNumericResults(gctx, wrappers)
	}
	last := wrappers[len(wrappers)-1]
	return performSecondParsePhase(gctx, last, ihAlt)
}

func canUnify(wrappers []*parserResultWrapper) bool {
	for i := 0; i < len(wrappers)-1; i++ {
		if wrappers[i].ctx.Source() == nil {
			return false
		}
	}
	return true
}

func parseNumericsHelper(parser parsers.Parser, gctx *parsers.GlobalContext, ih *parsers.IteratorHolder) (*parserResultWrapper, error) {
	pctx, err := parser.MakeContext(gctx, parsers.ChunkSize)
	if err != nil {
		return nil, err
	}
	begin := ih.NumConsumed() - 1
	end, err := parser.TryParse(gctx, pctx, ih, begin, math.MaxInt64, true)
	if err != nil {
		return nil, err
	}
	return &parserResultWrapper{parser: parser, ctx: pctx, begin: begin, end: end}, nil
}

func parseFromCuratedSelections(
	parsersBeforeCustom, customParsers, parsersAfterCustom []parsers.Parser,
	gctx *parsers.GlobalContext,
	ih, ihAlt *parsers.IteratorHolder,
) (*Result, error) {
	var ladder []parsers.Parser
	ladder = append(ladder, parsersBeforeCustom...)
	customBegin := len(ladder)
	ladder = append(ladder, customParsers...)
	customEnd := len(ladder)
	ladder = append(ladder, parsersAfterCustom...)

	if len(ladder) == 0 {
		return nil, errors.New(errors.ErrorTypeConfig, "no available parsers")
	}

	for ii := 0; ii < len(ladder)-1; ii++ {
		var result *Result
		var err error
		if ii < customBegin || ii >= customEnd {
			result, err = tryTwoPhaseParse(ladder[ii], gctx, ih, ihAlt)
		} else {
			// Custom parsers get a fresh full-range iterator for phase
			// one: they may accept null cells in their own way.
			tempFull := parsers.NewIteratorHolder(ihAlt.Reader().Clone())
			if _, err := tempFull.TryMoveNext(); err != nil {
				return nil, err
			}
			result, err = tryTwoPhaseParse(ladder[ii], gctx, tempFull, ihAlt)
		}
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}
	}

	// The final parser has nothing to fall back to, so it gets the
	// cheaper one-phase treatment and its failure is fatal.
	return onePhaseParse(ladder[len(ladder)-1], gctx, ihAlt)
}

func tryTwoPhaseParse(parser parsers.Parser, gctx *parsers.GlobalContext, ih, ihAlt *parsers.IteratorHolder) (*Result, error) {
	phaseOneStart := ih.NumConsumed() - 1
	pctx, err := parser.MakeContext(gctx, parsers.ChunkSize)
	if err != nil {
		return nil, err
	}
	end, err := parser.TryParse(gctx, pctx, ih, phaseOneStart, math.MaxInt64, true)
	if err != nil {
		return nil, err
	}
	if !ih.IsExhausted() {
		// The parser stopped short, but there are others left to try.
		// ih now rests on the failing cell; ihAlt is untouched.
		return nil, nil
	}
	if phaseOneStart == 0 {
		return &Result{Sink: pctx.Sink(), DataType: pctx.DataType()}, nil
	}
	wrapper := &parserResultWrapper{parser: parser, ctx: pctx, begin: phaseOneStart, end: end}
	return performSecondParsePhase(gctx, wrapper, ihAlt)
}

// performSecondParsePhase backfills [0, begin) with the parser that
// succeeded on [begin, EOF). By the contract of the algorithm the
// second phase cannot fail on well-behaved parsers; if it does, a
// parser accepted a non-null cell but rejects a null-literal cell it
// earlier skipped, which is a logic error.
func performSecondParsePhase(gctx *parsers.GlobalContext, wrapper *parserResultWrapper, ihAlt *parsers.IteratorHolder) (*Result, error) {
	if _, err := ihAlt.TryMoveNext(); err != nil {
		return nil, err
	}
	end, err := wrapper.parser.TryParse(gctx, wrapper.ctx, ihAlt, 0, wrapper.begin, false)
	if err != nil {
		return nil, err
	}
	if end == wrapper.begin {
		return &Result{Sink: wrapper.ctx.Sink(), DataType: wrapper.ctx.DataType()}, nil
	}
	return nil, errors.Newf(errors.ErrorTypeInternal,
		"second parse phase failed on input; parser was %s", wrapper.parser.Name())
}

func onePhaseParse(parser parsers.Parser, gctx *parsers.GlobalContext, ihAlt *parsers.IteratorHolder) (*Result, error) {
	pctx, err := parser.MakeContext(gctx, parsers.ChunkSize)
	if err != nil {
		return nil, err
	}
	if _, err := ihAlt.TryMoveNext(); err != nil {
		return nil, err
	}
	if _, err := parser.TryParse(gctx, pctx, ihAlt, 0, math.MaxInt64, true); err != nil {
		return nil, err
	}
	if ihAlt.IsExhausted() {
		return &Result{Sink: pctx.Sink(), DataType: pctx.DataType()}, nil
	}
	return nil, errors.Newf(errors.ErrorTypeInference,
		"parsing failed with nothing left to fall back to; parser %s successfully parsed %d items before failure",
		parser.Name(), ihAlt.NumConsumed()-1)
}

// emptyParse runs the parser over nothing, which still creates a sink
// of the right type for a zero-row column.
func emptyParse(parser parsers.Parser, gctx *parsers.GlobalContext) (*Result, error) {
	pctx, err := parser.MakeContext(gctx, parsers.ChunkSize)
	if err != nil {
		return nil, err
	}
	if _, err := parser.TryParse(gctx, pctx, nil, 0, 0, true); err != nil {
		return nil, err
	}
	return &Result{Sink: pctx.Sink(), DataType: pctx.DataType()}, nil
}

func unifyNumericResults(gctx *parsers.GlobalContext, wrappers []*parserResultWrapper) (*Result, error) {
	if len(wrappers) == 0 {
		return nil, errors.New(errors.ErrorTypeInternal, "no parser results to unify")
	}
	dest := wrappers[len(wrappers)-1]

	// When there is a single wrapper, first == dest and this still
	// does the right thing.
	first := wrappers[0]
	if err := fillNulls(gctx, dest.ctx, 0, first.begin); err != nil {
		return nil, err
	}

	destBegin := first.begin
	for ii := 0; ii < len(wrappers)-1; ii++ {
		curr := wrappers[ii]
		err := copyConverting(curr.ctx.Source(), dest.ctx.Sink(),
			curr.begin, curr.end, destBegin,
			curr.ctx.Values(), dest.ctx.Values(), gctx.NullChunk())
		if err != nil {
			return nil, err
		}
		destBegin += curr.end - curr.begin
	}
	return &Result{Sink: dest.ctx.Sink(), DataType: dest.ctx.DataType()}, nil
}

// fillNulls writes null flags for rows [begin, end); those rows hold
// the zero value.
func fillNulls(gctx *parsers.GlobalContext, pctx *parsers.Context, begin, end int64) error {
	if begin == end {
		return nil
	}
	nullChunk := gctx.NullChunk()
	fill := int64(len(nullChunk))
	if span := end - begin; span < fill {
		fill = span
	}
	for i := int64(0); i < fill; i++ {
		nullChunk[i] = true
	}
	// The values chunk may still hold cells from the parser's own pass.
	if err := convertChunk(make([]int8, fill), pctx.Values(), int(fill)); err != nil {
		return err
	}
	for current := begin; current != end; {
		endToUse := current + int64(len(nullChunk))
		if endToUse > end {
			endToUse = end
		}
		if err := pctx.Sink().Write(pctx.Values(), nullChunk, current, endToUse, false); err != nil {
			return err
		}
		current = endToUse
	}
	return nil
}

type categorized struct {
	boolean       parsers.Parser
	numeric       []parsers.Parser
	dateTime      parsers.Parser
	charAndString []parsers.Parser
	timestamp     parsers.Parser
	custom        []parsers.Parser
}

func categorize(parserSet []parsers.Parser) (*categorized, error) {
	cats := &categorized{}
	specifiedNumeric := make(map[parsers.Parser]struct{})
	specifiedCharAndString := make(map[parsers.Parser]struct{})
	var floatingPoint, timestamps []parsers.Parser

	for _, p := range parserSet {
		switch p {
		case parsers.Int8, parsers.Int16, parsers.Int32, parsers.Int64:
			specifiedNumeric[p] = struct{}{}
		case parsers.Float32Fast, parsers.Float32Strict, parsers.Float64:
			specifiedNumeric[p] = struct{}{}
			floatingPoint = append(floatingPoint, p)
		case parsers.TimestampSeconds, parsers.TimestampMillis, parsers.TimestampMicros, parsers.TimestampNanos:
			timestamps = append(timestamps, p)
		case parsers.Char, parsers.String:
			specifiedCharAndString[p] = struct{}{}
		case parsers.Boolean:
			cats.boolean = p
		case parsers.DateTime:
			cats.dateTime = p
		default:
			cats.custom = append(cats.custom, p)
		}
	}

	if len(floatingPoint) > 1 {
		return nil, errors.New(errors.ErrorTypeConfig,
			"parser set contains more than one floating point parser")
	}
	if len(timestamps) > 1 {
		return nil, errors.New(errors.ErrorTypeConfig,
			"parser set contains more than one timestamp parser")
	}
	if len(specifiedNumeric) != 0 && len(timestamps) != 0 {
		return nil, errors.New(errors.ErrorTypeConfig,
			"parser set must not contain both numeric and timestamp parsers")
	}

	numericPrecedence := []parsers.Parser{
		parsers.Int8, parsers.Int16, parsers.Int32, parsers.Int64,
		parsers.Float32Fast, parsers.Float32Strict, parsers.Float64,
	}
	for _, p := range numericPrecedence {
		if _, ok := specifiedNumeric[p]; ok {
			cats.numeric = append(cats.numeric, p)
		}
	}
	for _, p := range []parsers.Parser{parsers.Char, parsers.String} {
		if _, ok := specifiedCharAndString[p]; ok {
			cats.charAndString = append(cats.charAndString, p)
		}
	}
	if len(timestamps) != 0 {
		cats.timestamp = timestamps[0]
	}
	return cats, nil
}
