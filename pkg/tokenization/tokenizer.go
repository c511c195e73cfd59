// Package tokenization provides allocation-free recognizers over cell
// bytes: integers, floating point, booleans, and ISO-8601 date-times.
// The typing engine uses them both to probe the first non-null cell of
// a column and, inside the leaf parsers, to convert every cell.
package tokenization

import (
	"math"
	"strconv"
	"time"

	stringpool "github.com/ajitpratap0/pulsar/pkg/strings"
)

// DoubleParser overrides the floating-point leaf parse. It receives the
// exact cell bytes (no surrounding whitespace) and reports whether they
// form a valid double.
type DoubleParser func(b []byte) (float64, bool)

// TimeZoneParser resolves a trailing time-zone token that is not a
// numeric offset, e.g. a market abbreviation. It receives the token
// bytes and reports the location to interpret the wall time in.
type TimeZoneParser func(zone []byte) (*time.Location, bool)

// Tokenizer bundles the pluggable leaf parsing hooks. The zero value
// uses strconv for doubles and accepts only numeric offsets and Z for
// time zones.
type Tokenizer struct {
	customDouble   DoubleParser
	customTimeZone TimeZoneParser
}

// NewTokenizer creates a tokenizer with optional custom hooks; either
// may be nil.
func NewTokenizer(customDouble DoubleParser, customTimeZone TimeZoneParser) *Tokenizer {
	return &Tokenizer{customDouble: customDouble, customTimeZone: customTimeZone}
}

// trim narrows b past surrounding spaces and tabs.
func trim(b []byte) []byte {
	begin, end := 0, len(b)
	for begin != end && IsSpaceOrTab(b[begin]) {
		begin++
	}
	for begin != end && IsSpaceOrTab(b[end-1]) {
		end--
	}
	return b[begin:end]
}

// TryParseLong parses b as a signed 64-bit integer. Surrounding spaces
// and tabs are permitted; anything else, including overflow, fails.
func (t *Tokenizer) TryParseLong(b []byte) (int64, bool) {
	b = trim(b)
	if len(b) == 0 {
		return 0, false
	}
	negative := false
	i := 0
	if IsSign(b[0]) {
		negative = b[0] == '-'
		i++
		if i == len(b) {
			return 0, false
		}
	}
	// Accumulate negated to keep math.MinInt64 representable.
	var value int64
	for ; i < len(b); i++ {
		c := b[i]
		if !IsDigit(c) {
			return 0, false
		}
		digit := int64(c - '0')
		if value < (math.MinInt64+digit)/10 {
			return 0, false
		}
		value = value*10 - digit
	}
	if !negative {
		if value == math.MinInt64 {
			return 0, false
		}
		value = -value
	}
	return value, true
}

// TryParseDouble parses b as a 64-bit float, delegating to the custom
// double parser when one is configured.
func (t *Tokenizer) TryParseDouble(b []byte) (float64, bool) {
	b = trim(b)
	if len(b) == 0 {
		return 0, false
	}
	if t.customDouble != nil {
		return t.customDouble(b)
	}
	// strconv accepts forms CSV numerics should not, like "0x1p4" and
	// "Inf"; restrict to the usual decimal and exponent alphabet.
	for _, c := range b {
		if !IsDigit(c) && !IsSign(c) && c != '.' && c != 'e' && c != 'E' {
			return 0, false
		}
	}
	value, err := strconv.ParseFloat(stringpool.BytesToString(b), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

// TryParseBoolean parses b as true or false, case-insensitively.
func (t *Tokenizer) TryParseBoolean(b []byte) (bool, bool) {
	b = trim(b)
	switch len(b) {
	case 4:
		if (b[0]|0x20) == 't' && (b[1]|0x20) == 'r' && (b[2]|0x20) == 'u' && (b[3]|0x20) == 'e' {
			return true, true
		}
	case 5:
		if (b[0]|0x20) == 'f' && (b[1]|0x20) == 'a' && (b[2]|0x20) == 'l' && (b[3]|0x20) == 's' && (b[4]|0x20) == 'e' {
			return false, true
		}
	}
	return false, false
}

// TryParseDateTime parses b as an ISO-8601 date-time and returns epoch
// nanoseconds. Accepted shape:
//
//	YYYY-MM-DD[T ]hh:mm[:ss][.fffffffff][Z|±hh[[:]mm]|zone]
//
// A trailing non-numeric zone token is resolved through the custom
// time-zone parser; with no zone the time is UTC.
func (t *Tokenizer) TryParseDateTime(b []byte) (int64, bool) {
	b = trim(b)
	if len(b) < 16 {
		return 0, false
	}
	year, ok := fixedDigits(b[0:4])
	if !ok || b[4] != '-' {
		return 0, false
	}
	month, ok := fixedDigits(b[5:7])
	if !ok || month < 1 || month > 12 || b[7] != '-' {
		return 0, false
	}
	day, ok := fixedDigits(b[8:10])
	if !ok || day < 1 || day > daysInMonth(year, month) {
		return 0, false
	}
	if b[10] != 'T' && b[10] != ' ' {
		return 0, false
	}
	hour, ok := fixedDigits(b[11:13])
	if !ok || hour > 23 || b[13] != ':' {
		return 0, false
	}
	minute, ok := fixedDigits(b[14:16])
	if !ok || minute > 59 {
		return 0, false
	}
	rest := b[16:]

	second := 0
	if len(rest) >= 3 && rest[0] == ':' {
		second, ok = fixedDigits(rest[1:3])
		if !ok || second > 59 {
			return 0, false
		}
		rest = rest[3:]
	}

	nanos := 0
	if len(rest) >= 2 && rest[0] == '.' {
		rest = rest[1:]
		digits := 0
		for digits < len(rest) && IsDigit(rest[digits]) {
			digits++
		}
		if digits == 0 || digits > 9 {
			return 0, false
		}
		for i := 0; i < digits; i++ {
			nanos = nanos*10 + int(rest[i]-'0')
		}
		for i := digits; i < 9; i++ {
			nanos *= 10
		}
		rest = rest[digits:]
	}

	loc := time.UTC
	if len(rest) != 0 {
		loc, ok = t.parseZone(rest)
		if !ok {
			return 0, false
		}
	}

	parsed := time.Date(year, time.Month(month), day, hour, minute, second, nanos, loc)
	return parsed.UnixNano(), true
}

func (t *Tokenizer) parseZone(rest []byte) (*time.Location, bool) {
	if len(rest) == 1 && (rest[0] == 'Z' || rest[0] == 'z') {
		return time.UTC, true
	}
	if IsSign(rest[0]) {
		negative := rest[0] == '-'
		rest = rest[1:]
		if len(rest) < 2 {
			return nil, false
		}
		hours, ok := fixedDigits(rest[0:2])
		if !ok || hours > 14 {
			return nil, false
		}
		rest = rest[2:]
		minutes := 0
		if len(rest) != 0 && rest[0] == ':' {
			rest = rest[1:]
		}
		if len(rest) != 0 {
			minutes, ok = fixedDigits(rest)
			if !ok || minutes > 59 {
				return nil, false
			}
		}
		offset := hours*3600 + minutes*60
		if negative {
			offset = -offset
		}
		return time.FixedZone("", offset), true
	}
	if t.customTimeZone != nil {
		// Zone tokens may arrive with a leading space, e.g. "... 12:00 NY".
		return t.customTimeZone(trim(rest))
	}
	return nil, false
}

// fixedDigits parses b as an unsigned decimal where every byte must be
// a digit.
func fixedDigits(b []byte) (int, bool) {
	if len(b) == 0 {
		return 0, false
	}
	value := 0
	for _, c := range b {
		if !IsDigit(c) {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	return value, true
}

func daysInMonth(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	default:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	}
}
