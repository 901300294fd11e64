package key

import "strings"

// Modifier is a bitmask of held modifier keys.
type Modifier uint8

const (
	// ModNone indicates no modifiers.
	ModNone Modifier = 0

	// ModShift indicates the Shift key.
	ModShift Modifier = 1 << iota

	// ModCtrl indicates the Control key.
	ModCtrl

	// ModAlt indicates the Alt key (Option on macOS).
	ModAlt

	// ModMeta indicates the Meta key (Cmd on macOS).
	ModMeta
)

// Has returns true if m contains mod.
func (m Modifier) Has(mod Modifier) bool {
	return m&mod != 0
}

// With returns m with mod added.
func (m Modifier) With(mod Modifier) Modifier {
	return m | mod
}

// Without returns m with mod removed.
func (m Modifier) Without(mod Modifier) Modifier {
	return m &^ mod
}

// prefix renders the modifiers in notation order, e.g. "C-A-".
func (m Modifier) prefix() string {
	var sb strings.Builder
	if m.Has(ModCtrl) {
		sb.WriteString("C-")
	}
	if m.Has(ModAlt) {
		sb.WriteString("A-")
	}
	if m.Has(ModShift) {
		sb.WriteString("S-")
	}
	if m.Has(ModMeta) {
		sb.WriteString("M-")
	}
	return sb.String()
}

// modifierNames maps lowercase modifier names to values.
var modifierNames = map[string]Modifier{
	"c":       ModCtrl,
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"a":       ModAlt,
	"alt":     ModAlt,
	"opt":     ModAlt,
	"option":  ModAlt,
	"s":       ModShift,
	"shift":   ModShift,
	"m":       ModMeta,
	"meta":    ModMeta,
	"d":       ModMeta,
	"cmd":     ModMeta,
	"command": ModMeta,
}

// ModifierFromName returns the modifier for a case-insensitive name.
func ModifierFromName(name string) (Modifier, bool) {
	m, ok := modifierNames[strings.ToLower(name)]
	return m, ok
}
