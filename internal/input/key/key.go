package key

import (
	"fmt"
	"strconv"
	"strings"
)

// Key identifies a keyboard key.
// Character keys use KeyRune with the character stored in Event.Rune.
type Key uint8

const (
	// KeyNone represents no key.
	KeyNone Key = iota

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown

	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	// KeyLeader is a placeholder for the configured leader key. It only
	// appears in parsed notation and is replaced before matching.
	KeyLeader

	// KeyRune is used for character keys.
	KeyRune
)

// keyNames holds the canonical notation name for each special key.
var keyNames = map[Key]string{
	KeyEscape:    "Esc",
	KeyEnter:     "CR",
	KeyTab:       "Tab",
	KeyBackspace: "BS",
	KeyDelete:    "Del",
	KeyInsert:    "Insert",
	KeyHome:      "Home",
	KeyEnd:       "End",
	KeyPageUp:    "PageUp",
	KeyPageDown:  "PageDown",
	KeyUp:        "Up",
	KeyDown:      "Down",
	KeyLeft:      "Left",
	KeyRight:     "Right",
	KeyLeader:    "leader",
}

// String returns the notation name of the key without brackets.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	switch {
	case k >= KeyF1 && k <= KeyF12:
		return fmt.Sprintf("F%d", int(k-KeyF1)+1)
	case k == KeyRune:
		return "Rune"
	case k == KeyNone:
		return "None"
	}
	return fmt.Sprintf("Key(%d)", k)
}

// IsArrow reports whether k is one of the four arrow keys.
func (k Key) IsArrow() bool {
	return k >= KeyUp && k <= KeyRight
}

// IsFunction reports whether k is F1 through F12.
func (k Key) IsFunction() bool {
	return k >= KeyF1 && k <= KeyF12
}

// nameToKey maps lowercase names (and aliases) to keys. Names that denote a
// printable character are in nameToRune instead.
var nameToKey = map[string]Key{
	"esc":       KeyEscape,
	"escape":    KeyEscape,
	"cr":        KeyEnter,
	"enter":     KeyEnter,
	"return":    KeyEnter,
	"tab":       KeyTab,
	"bs":        KeyBackspace,
	"backspace": KeyBackspace,
	"del":       KeyDelete,
	"delete":    KeyDelete,
	"insert":    KeyInsert,
	"ins":       KeyInsert,
	"home":      KeyHome,
	"end":       KeyEnd,
	"pageup":    KeyPageUp,
	"pgup":      KeyPageUp,
	"pagedown":  KeyPageDown,
	"pgdn":      KeyPageDown,
	"up":        KeyUp,
	"down":      KeyDown,
	"left":      KeyLeft,
	"right":     KeyRight,
	"leader":    KeyLeader,
}

var nameToRune = map[string]rune{
	"space":  ' ',
	"lt":     '<',
	"gt":     '>',
	"bar":    '|',
	"bslash": '\\',
}

// runeNames is the reverse of nameToRune for characters that cannot be
// written literally inside brackets.
var runeNames = map[rune]string{
	' ':  "Space",
	'<':  "lt",
	'>':  "gt",
	'|':  "Bar",
	'\\': "Bslash",
}

// lookupName resolves a bracketed key name (case-insensitive).
func lookupName(name string) (Key, rune, bool) {
	lower := strings.ToLower(name)
	if k, ok := nameToKey[lower]; ok {
		return k, 0, true
	}
	if r, ok := nameToRune[lower]; ok {
		return KeyRune, r, true
	}
	if len(lower) >= 2 && lower[0] == 'f' {
		if n, err := strconv.Atoi(lower[1:]); err == nil && n >= 1 && n <= 12 {
			return KeyF1 + Key(n-1), 0, true
		}
	}
	return KeyNone, 0, false
}
