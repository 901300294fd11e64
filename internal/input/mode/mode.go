package mode

import (
	"fmt"
	"strings"
)

// Kind is one modal state.
type Kind uint8

const (
	Normal Kind = iota
	Insert
	Replace
	Visual
	VisualLine
	VisualBlock
	OperatorPending
	CommandLine
)

// All lists every mode in declaration order.
var All = []Kind{Normal, Insert, Replace, Visual, VisualLine, VisualBlock, OperatorPending, CommandLine}

var kindNames = [...]string{
	Normal:          "normal",
	Insert:          "insert",
	Replace:         "replace",
	Visual:          "visual",
	VisualLine:      "visualLine",
	VisualBlock:     "visualBlock",
	OperatorPending: "operatorPending",
	CommandLine:     "commandLine",
}

// String returns the identifier used in configuration.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// DisplayName returns the status-line label, e.g. "-- INSERT --".
func (k Kind) DisplayName() string {
	switch k {
	case Insert:
		return "-- INSERT --"
	case Replace:
		return "-- REPLACE --"
	case Visual:
		return "-- VISUAL --"
	case VisualLine:
		return "-- VISUAL LINE --"
	case VisualBlock:
		return "-- VISUAL BLOCK --"
	case OperatorPending:
		return "-- (op) --"
	case CommandLine:
		return ""
	}
	return ""
}

// IsVisual reports whether k is one of the Visual kinds.
func (k Kind) IsVisual() bool {
	return k == Visual || k == VisualLine || k == VisualBlock
}

// IsInsertLike reports whether typed characters become buffer text.
func (k Kind) IsInsertLike() bool {
	return k == Insert || k == Replace
}

// RemapScope returns the mode whose remap rules apply in k. The Visual
// kinds share Visual's rules and Replace shares Insert's.
func (k Kind) RemapScope() Kind {
	switch k {
	case VisualLine, VisualBlock:
		return Visual
	case Replace:
		return Insert
	}
	return k
}

// CursorStyle is the visual shape of a cursor in a mode.
type CursorStyle uint8

const (
	CursorBlock CursorStyle = iota
	CursorBar
	CursorUnderline
)

// String returns the style name.
func (c CursorStyle) String() string {
	switch c {
	case CursorBlock:
		return "block"
	case CursorBar:
		return "bar"
	case CursorUnderline:
		return "underline"
	}
	return "unknown"
}

// CursorStyle returns the cursor shape for k.
func (k Kind) CursorStyle() CursorStyle {
	switch k {
	case Insert, CommandLine:
		return CursorBar
	case Replace, OperatorPending:
		return CursorUnderline
	}
	return CursorBlock
}

// ParseKind parses a configuration mode name. It accepts the String form
// case-insensitively plus the short aliases n, i, r, v, x, o and c.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "normal", "n":
		return Normal, nil
	case "insert", "i":
		return Insert, nil
	case "replace", "r":
		return Replace, nil
	case "visual", "v", "x":
		return Visual, nil
	case "visualline":
		return VisualLine, nil
	case "visualblock":
		return VisualBlock, nil
	case "operatorpending", "o":
		return OperatorPending, nil
	case "commandline", "c":
		return CommandLine, nil
	}
	return Normal, fmt.Errorf("unknown mode: %q", s)
}
