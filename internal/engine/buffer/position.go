package buffer

import "fmt"

// Position is a 0-indexed line and rune column.
type Position struct {
	Line int
	Col  int
}

// Pos is shorthand for Position{line, col}.
func Pos(line, col int) Position {
	return Position{Line: line, Col: col}
}

// String returns "(line:col)".
func (p Position) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Col)
}

// Compare returns -1, 0 or 1 as p is before, equal to or after o.
func (p Position) Compare(o Position) int {
	switch {
	case p.Line < o.Line:
		return -1
	case p.Line > o.Line:
		return 1
	case p.Col < o.Col:
		return -1
	case p.Col > o.Col:
		return 1
	}
	return 0
}

// Before reports whether p sorts before o.
func (p Position) Before(o Position) bool {
	return p.Compare(o) < 0
}

// Range is a half-open span [Start, End).
type Range struct {
	Start Position
	End   Position
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// String returns "[start-end)".
func (r Range) String() string {
	return fmt.Sprintf("[%s-%s)", r.Start, r.End)
}

// Edit replaces Range with Text.
type Edit struct {
	Range Range
	Text  string
}

// String returns a short description for logs.
func (e Edit) String() string {
	switch {
	case e.Range.IsEmpty():
		return fmt.Sprintf("insert%s %q", e.Range.Start, e.Text)
	case e.Text == "":
		return fmt.Sprintf("delete%s", e.Range)
	}
	return fmt.Sprintf("replace%s %q", e.Range, e.Text)
}
