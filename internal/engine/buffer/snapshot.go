package buffer

import (
	"sort"
	"strings"
	"unicode"
)

// Snapshot is an immutable copy of the document. All methods are safe for
// concurrent use.
type Snapshot struct {
	lines   [][]rune
	starts  []int
	length  int
	version uint64
}

// NewSnapshot splits text on '\n'. An empty string is one empty line.
func NewSnapshot(text string) *Snapshot {
	return newSnapshot(text, 0)
}

func newSnapshot(text string, version uint64) *Snapshot {
	parts := strings.Split(text, "\n")
	s := &Snapshot{
		lines:   make([][]rune, len(parts)),
		starts:  make([]int, len(parts)),
		version: version,
	}
	off := 0
	for i, p := range parts {
		s.lines[i] = []rune(p)
		s.starts[i] = off
		off += len(s.lines[i]) + 1
	}
	s.length = off - 1
	return s
}

// Version increases by one with every applied edit batch.
func (s *Snapshot) Version() uint64 { return s.version }

// LineCount is always at least 1.
func (s *Snapshot) LineCount() int { return len(s.lines) }

// LastLine is LineCount()-1.
func (s *Snapshot) LastLine() int { return len(s.lines) - 1 }

// Len is the number of runes in the document including newlines.
func (s *Snapshot) Len() int { return s.length }

// Line returns the text of line i, or "" if out of range.
func (s *Snapshot) Line(i int) string {
	if i < 0 || i >= len(s.lines) {
		return ""
	}
	return string(s.lines[i])
}

// LineRunes returns line i. The slice must not be modified.
func (s *Snapshot) LineRunes(i int) []rune {
	if i < 0 || i >= len(s.lines) {
		return nil
	}
	return s.lines[i]
}

// LineLen returns the rune length of line i.
func (s *Snapshot) LineLen(i int) int {
	if i < 0 || i >= len(s.lines) {
		return 0
	}
	return len(s.lines[i])
}

// LineStart returns the offset of the first rune of line i.
func (s *Snapshot) LineStart(i int) int {
	i = clampInt(i, 0, len(s.lines)-1)
	return s.starts[i]
}

// LineEnd returns the offset just past the last rune of line i (the
// position of its newline).
func (s *Snapshot) LineEnd(i int) int {
	i = clampInt(i, 0, len(s.lines)-1)
	return s.starts[i] + len(s.lines[i])
}

// IsBlank reports whether line i is empty or whitespace only.
func (s *Snapshot) IsBlank(i int) bool {
	for _, r := range s.LineRunes(i) {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

// FirstNonBlank returns the column of the first non-whitespace rune of line
// i, or the line length if there is none.
func (s *Snapshot) FirstNonBlank(i int) int {
	runes := s.LineRunes(i)
	for c, r := range runes {
		if r != ' ' && r != '\t' {
			return c
		}
	}
	return len(runes)
}

// Offset converts p to an offset, clamping line and column.
func (s *Snapshot) Offset(p Position) int {
	line := clampInt(p.Line, 0, len(s.lines)-1)
	col := clampInt(p.Col, 0, len(s.lines[line]))
	return s.starts[line] + col
}

// PositionAt converts an offset (clamped to [0, Len]) to a position.
func (s *Snapshot) PositionAt(off int) Position {
	off = clampInt(off, 0, s.length)
	line := sort.Search(len(s.starts), func(i int) bool { return s.starts[i] > off }) - 1
	return Position{Line: line, Col: off - s.starts[line]}
}

// RuneAt returns the rune at off, '\n' at a line break, and 0 outside the
// document.
func (s *Snapshot) RuneAt(off int) rune {
	if off < 0 || off >= s.length {
		return 0
	}
	p := s.PositionAt(off)
	if p.Col >= len(s.lines[p.Line]) {
		return '\n'
	}
	return s.lines[p.Line][p.Col]
}

// Slice returns the text between two offsets.
func (s *Snapshot) Slice(start, end int) string {
	start = clampInt(start, 0, s.length)
	end = clampInt(end, 0, s.length)
	if start >= end {
		return ""
	}
	var sb strings.Builder
	for off := start; off < end; {
		p := s.PositionAt(off)
		line := s.lines[p.Line]
		stop := min(len(line), p.Col+end-off)
		sb.WriteString(string(line[p.Col:stop]))
		off += stop - p.Col
		if off < end {
			sb.WriteByte('\n')
			off++
		}
	}
	return sb.String()
}

// Text returns the whole document.
func (s *Snapshot) Text() string {
	return s.Slice(0, s.length)
}

// Contains reports whether p addresses a rune or a line end.
func (s *Snapshot) Contains(p Position) bool {
	return p.Line >= 0 && p.Line < len(s.lines) && p.Col >= 0 && p.Col <= len(s.lines[p.Line])
}

// ClampInsert clamps p so that the column may sit at the line end.
func (s *Snapshot) ClampInsert(p Position) Position {
	line := clampInt(p.Line, 0, len(s.lines)-1)
	return Position{Line: line, Col: clampInt(p.Col, 0, len(s.lines[line]))}
}

// ClampNormal clamps p onto an existing rune (column 0 on empty lines).
func (s *Snapshot) ClampNormal(p Position) Position {
	line := clampInt(p.Line, 0, len(s.lines)-1)
	return Position{Line: line, Col: clampInt(p.Col, 0, max(len(s.lines[line])-1, 0))}
}

// Edit builds an Edit from offsets.
func (s *Snapshot) Edit(start, end int, text string) Edit {
	return Edit{Range: Range{Start: s.PositionAt(start), End: s.PositionAt(end)}, Text: text}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
