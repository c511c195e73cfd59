package tokenization

// ASCII range tests used by the tokenizer and the grabbers. Kept as
// free functions so they inline.

// IsDigit reports whether b is an ASCII digit.
func IsDigit(b byte) bool { return b >= '0' && b <= '9' }

// IsSpaceOrTab reports whether b is an ASCII space or horizontal tab.
func IsSpaceOrTab(b byte) bool { return b == ' ' || b == '\t' }

// IsSign reports whether b is an ASCII plus or minus.
func IsSign(b byte) bool { return b == '+' || b == '-' }

// Utf8Length returns the expected length of a UTF-8 sequence given its
// first byte, in the range 1..4, or 0 if the byte cannot start a
// sequence.
func Utf8Length(first byte) int {
	switch {
	case first&0x80 == 0x00:
		return 1
	case first&0xE0 == 0xC0:
		return 2
	case first&0xF0 == 0xE0:
		return 3
	case first&0xF8 == 0xF0:
		return 4
	default:
		return 0
	}
}
