package macro

import (
	"strings"
	"unicode"

	"github.com/dshills/modal/internal/input/key"
)

// IsValidRegister reports whether keys can be recorded into r: a-z,
// A-Z to append, 0-9 and the unnamed register.
func IsValidRegister(r rune) bool {
	return IsLetterRegister(r) || IsAppendRegister(r) || IsDigitRegister(r) || r == '"'
}

// IsLetterRegister returns true if r is a letter register (a-z).
func IsLetterRegister(r rune) bool {
	return r >= 'a' && r <= 'z'
}

// IsDigitRegister returns true if r is a digit register (0-9).
func IsDigitRegister(r rune) bool {
	return r >= '0' && r <= '9'
}

// IsAppendRegister returns true if r is an uppercase letter (A-Z).
// Recording into it appends to the lowercase register.
func IsAppendRegister(r rune) bool {
	return r >= 'A' && r <= 'Z'
}

// NormalizeRegister converts a register to the one that holds its text.
// Invalid registers return 0.
func NormalizeRegister(r rune) rune {
	if IsAppendRegister(r) {
		return unicode.ToLower(r)
	}
	if IsValidRegister(r) {
		return r
	}
	return 0
}

// Encode renders keys as register text.
func Encode(keys key.Sequence) string {
	return keys.String()
}

// Decode parses register text back into keys. Newlines in yanked text
// play as Enter.
func Decode(text string) (key.Sequence, error) {
	text = strings.ReplaceAll(text, "\n", "<CR>")
	return key.ParseSequence(text)
}
