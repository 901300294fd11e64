package key

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Parse errors.
var (
	ErrEmptySpec   = errors.New("empty key specification")
	ErrInvalidSpec = errors.New("invalid key specification")
)

// Parse parses a single event: one character or one bracketed name such as
// "<Esc>" or "<C-alt+down>".
func Parse(spec string) (Event, error) {
	if spec == "" {
		return Event{}, ErrEmptySpec
	}
	if len(spec) > 2 && spec[0] == '<' && spec[len(spec)-1] == '>' {
		return parseBracket(spec[1 : len(spec)-1])
	}
	r, size := utf8.DecodeRuneInString(spec)
	if r == utf8.RuneError || size != len(spec) {
		return Event{}, fmt.Errorf("%w: %q", ErrInvalidSpec, spec)
	}
	return Rune(r), nil
}

// MustParse is Parse for known-valid specs; it panics on error.
func MustParse(spec string) Event {
	ev, err := Parse(spec)
	if err != nil {
		panic("invalid key specification: " + spec + ": " + err.Error())
	}
	return ev
}

// ParseSequence parses key notation into a sequence. Unknown bracketed
// names are taken literally, starting with the '<'.
func ParseSequence(s string) (Sequence, error) {
	seq := make(Sequence, 0, len(s))
	for i := 0; i < len(s); {
		if s[i] == '<' {
			if end := strings.IndexByte(s[i+1:], '>'); end > 0 {
				if ev, err := parseBracket(s[i+1 : i+1+end]); err == nil {
					seq = append(seq, ev)
					i += end + 2
					continue
				}
			}
			seq = append(seq, Rune('<'))
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("%w: invalid UTF-8 at byte %d", ErrInvalidSpec, i)
		}
		seq = append(seq, Rune(r))
		i += size
	}
	return seq, nil
}

// MustParseSequence is ParseSequence for known-valid notation.
func MustParseSequence(s string) Sequence {
	seq, err := ParseSequence(s)
	if err != nil {
		panic("invalid key sequence: " + s + ": " + err.Error())
	}
	return seq
}

// parseBracket parses the inside of <...>.
func parseBracket(inner string) (Event, error) {
	if inner == "" || strings.ContainsAny(inner, " \t<") {
		return Event{}, fmt.Errorf("%w: <%s>", ErrInvalidSpec, inner)
	}

	var mods Modifier
	keyPart := inner
	for {
		idx := strings.IndexAny(keyPart, "-+")
		if idx <= 0 || idx == len(keyPart)-1 {
			break
		}
		m, ok := ModifierFromName(keyPart[:idx])
		if !ok {
			return Event{}, fmt.Errorf("%w: unknown modifier %q", ErrInvalidSpec, keyPart[:idx])
		}
		mods = mods.With(m)
		keyPart = keyPart[idx+1:]
	}

	if r, size := utf8.DecodeRuneInString(keyPart); size == len(keyPart) && r != utf8.RuneError {
		if mods == ModNone {
			// "<a>" is just "a"; bare single characters are not names.
			return Rune(r), nil
		}
		return NewRuneEvent(r, mods), nil
	}

	k, r, ok := lookupName(keyPart)
	if !ok {
		return Event{}, fmt.Errorf("%w: unknown key %q", ErrInvalidSpec, keyPart)
	}
	if k == KeyRune {
		return NewRuneEvent(r, mods), nil
	}
	if k == KeyLeader && mods != ModNone {
		return Event{}, fmt.Errorf("%w: modifiers on <leader>", ErrInvalidSpec)
	}
	return Special(k, mods), nil
}
