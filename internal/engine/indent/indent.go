// Package indent measures and regenerates leading whitespace.
//
// Indentation is compared by display width, never by its literal
// characters, so a line indented with a mix of tabs and spaces regenerates
// to the same canonical string as any other line of equal width.
package indent

import "strings"

// Options describe the configured indentation unit.
type Options struct {
	TabWidth  int  // columns per tab stop and per shift
	ExpandTab bool // generate spaces instead of tabs
}

// DefaultOptions is tab width 4 with spaces.
var DefaultOptions = Options{TabWidth: 4, ExpandTab: true}

func (o Options) tabWidth() int {
	if o.TabWidth <= 0 {
		return DefaultOptions.TabWidth
	}
	return o.TabWidth
}

// Leading returns the leading spaces and tabs of line.
func Leading(line string) string {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return line[:i]
		}
	}
	return line
}

// Width returns the display width of ws, advancing tabs to the next stop.
func (o Options) Width(ws string) int {
	tw := o.tabWidth()
	w := 0
	for _, r := range ws {
		switch r {
		case '\t':
			w += tw - w%tw
		case ' ':
			w++
		default:
			return w
		}
	}
	return w
}

// Canonical generates the whitespace for width columns: spaces only with
// ExpandTab, otherwise as many tabs as fit followed by spaces.
func (o Options) Canonical(width int) string {
	if width <= 0 {
		return ""
	}
	if o.ExpandTab {
		return strings.Repeat(" ", width)
	}
	tw := o.tabWidth()
	return strings.Repeat("\t", width/tw) + strings.Repeat(" ", width%tw)
}

// Regenerate returns the canonical form of line's leading whitespace.
func (o Options) Regenerate(line string) string {
	return o.Canonical(o.Width(Leading(line)))
}

// Shift returns line with its indentation moved by levels shift widths
// (negative to outdent), regenerated canonically. Blank lines are returned
// unchanged when indenting.
func (o Options) Shift(line string, levels int) string {
	lead := Leading(line)
	rest := line[len(lead):]
	if rest == "" && levels > 0 {
		return line
	}
	tw := o.tabWidth()
	width := o.Width(lead)
	if levels < 0 {
		// Outdent snaps down to the previous stop first.
		if r := width % tw; r != 0 {
			width -= r
			levels++
		}
	}
	width += levels * tw
	if width < 0 {
		width = 0
	}
	return o.Canonical(width) + rest
}
