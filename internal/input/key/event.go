package key

import (
	"strings"
	"unicode"
)

// Event is a single keystroke. Events are comparable with ==.
//
// For rune events the case of the rune carries Shift, so ModShift is never
// set on a rune event built by this package.
type Event struct {
	Key       Key
	Rune      rune
	Modifiers Modifier
}

// Rune returns an unmodified character event.
func Rune(r rune) Event {
	return Event{Key: KeyRune, Rune: r}
}

// Special returns an event for a non-character key.
func Special(k Key, mods Modifier) Event {
	return Event{Key: k, Modifiers: mods}
}

// Ctrl returns the control-modified character event, e.g. Ctrl('r').
func Ctrl(r rune) Event {
	return NewRuneEvent(r, ModCtrl)
}

// NewRuneEvent builds a character event, normalizing case and Shift.
func NewRuneEvent(r rune, mods Modifier) Event {
	if mods.Has(ModShift) {
		r = unicode.ToUpper(r)
		mods = mods.Without(ModShift)
	}
	if mods.Has(ModCtrl) && unicode.IsLetter(r) {
		r = unicode.ToLower(r)
	}
	return Event{Key: KeyRune, Rune: r, Modifiers: mods}
}

// Escape is the plain escape key.
var Escape = Special(KeyEscape, ModNone)

// Enter is the plain enter key.
var Enter = Special(KeyEnter, ModNone)

// IsRune reports whether e is a character event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar reports whether e produces printable text when typed.
func (e Event) IsChar() bool {
	return e.IsRune() && e.Modifiers&(ModCtrl|ModAlt|ModMeta) == 0 && unicode.IsPrint(e.Rune)
}

// IsCtrl reports whether e is ctrl plus the given character and nothing else.
func (e Event) IsCtrl(r rune) bool {
	return e.Key == KeyRune && e.Modifiers == ModCtrl && e.Rune == r
}

// IsCancel reports whether e is one of the universal cancel keys:
// <Esc>, <C-[> or <C-c>.
func (e Event) IsCancel() bool {
	if e.Key == KeyEscape && e.Modifiers == ModNone {
		return true
	}
	return e.IsCtrl('[') || e.IsCtrl('c')
}

// String renders e in key notation.
func (e Event) String() string {
	if e.Key == KeyRune && e.Modifiers == ModNone {
		if e.Rune == '<' {
			return "<lt>"
		}
		return string(e.Rune)
	}
	var body string
	if e.Key == KeyRune {
		if name, ok := runeNames[e.Rune]; ok {
			body = name
		} else {
			body = string(e.Rune)
		}
	} else {
		body = e.Key.String()
	}
	return "<" + e.Modifiers.prefix() + body + ">"
}

// Text returns the literal text e inserts, or "" when e is not printable.
func (e Event) Text() string {
	if !e.IsChar() {
		return ""
	}
	return string(e.Rune)
}

// describe is used in error messages.
func describe(events []Event) string {
	var sb strings.Builder
	for _, ev := range events {
		sb.WriteString(ev.String())
	}
	return sb.String()
}
