package cursor

import "github.com/dshills/modal/internal/engine/buffer"

// Direction selects forward or backward scanning.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// addressable reports whether col can hold a Normal-mode cursor on a line
// of length n.
func addressable(col, n int) bool {
	return col < n || col == 0
}

// AddBelow adds a cursor at the bottom-most cursor's column on the nearest
// following line where that column exists. Shorter lines are skipped. It
// reports whether a cursor was added.
func (s *Set) AddBelow(snap *buffer.Snapshot) bool {
	extreme := s.entries[0].Cursor.Head
	for _, e := range s.entries[1:] {
		if e.Cursor.Head.Line > extreme.Line {
			extreme = e.Cursor.Head
		}
	}
	for line := extreme.Line + 1; line < snap.LineCount(); line++ {
		if addressable(extreme.Col, snap.LineLen(line)) {
			s.Add(At(buffer.Pos(line, extreme.Col)))
			return true
		}
	}
	return false
}

// AddAbove is AddBelow towards the top of the document.
func (s *Set) AddAbove(snap *buffer.Snapshot) bool {
	extreme := s.entries[0].Cursor.Head
	for _, e := range s.entries[1:] {
		if e.Cursor.Head.Line < extreme.Line {
			extreme = e.Cursor.Head
		}
	}
	for line := extreme.Line - 1; line >= 0; line-- {
		if addressable(extreme.Col, snap.LineLen(line)) {
			s.Add(At(buffer.Pos(line, extreme.Col)))
			return true
		}
	}
	return false
}

// span is a cursor's covered offsets [start, end).
func span(snap *buffer.Snapshot, c Cursor) (int, int) {
	start, end := snap.Offset(c.Start()), snap.Offset(c.End())
	return start, end + 1
}

// ExtendViaSearch adds up to count cursors on literal matches of pattern,
// scanning from beyond the extreme cursor in dir and wrapping once around
// the document. Matches overlapping an existing cursor are skipped. When the
// primary is selecting, each new cursor selects its match in the same
// orientation; otherwise it sits on the match start. It returns the number
// of cursors added.
func (s *Set) ExtendViaSearch(snap *buffer.Snapshot, pattern string, dir Direction, count int) int {
	needle := []rune(pattern)
	if len(needle) == 0 || count <= 0 {
		return 0
	}
	matches := literalMatches(snap, needle)
	if len(matches) == 0 {
		return 0
	}

	type interval struct{ start, end int }
	taken := make([]interval, 0, len(s.entries)+count)
	from := -1
	for _, e := range s.entries {
		a, b := span(snap, e.Cursor)
		taken = append(taken, interval{a, b})
		switch {
		case from == -1:
			from = a
			if dir == Forward {
				from = b
			}
		case dir == Forward && b > from:
			from = b
		case dir == Backward && a < from:
			from = a
		}
	}

	// Order candidates starting from "from" in dir, wrapping once.
	order := make([]int, 0, len(matches))
	if dir == Forward {
		for i, m := range matches {
			if m >= from {
				order = append(order, i)
			}
		}
		for i, m := range matches {
			if m < from {
				order = append(order, i)
			}
		}
	} else {
		for i := len(matches) - 1; i >= 0; i-- {
			if matches[i]+len(needle) <= from {
				order = append(order, i)
			}
		}
		for i := len(matches) - 1; i >= 0; i-- {
			if matches[i]+len(needle) > from {
				order = append(order, i)
			}
		}
	}

	primary := s.Primary()
	reversed := primary.Selecting && primary.Head.Before(primary.Anchor)
	added := 0
	for _, i := range order {
		if added == count {
			break
		}
		start, end := matches[i], matches[i]+len(needle)
		overlaps := false
		for _, t := range taken {
			if start < t.end && t.start < end {
				overlaps = true
				break
			}
		}
		if overlaps {
			continue
		}
		taken = append(taken, interval{start, end})

		first, last := snap.PositionAt(start), snap.PositionAt(end-1)
		c := At(first)
		if primary.Selecting {
			c = Selection(first, last)
			if reversed {
				c = c.Swap()
			}
		}
		s.Add(c)
		added++
	}
	return added
}

// literalMatches returns the start offsets of non-overlapping occurrences of
// needle, scanning left to right.
func literalMatches(snap *buffer.Snapshot, needle []rune) []int {
	hay := []rune(snap.Text())
	var out []int
	for i := 0; i+len(needle) <= len(hay); {
		if runesEqual(hay[i:i+len(needle)], needle) {
			out = append(out, i)
			i += len(needle)
			continue
		}
		i++
	}
	return out
}

func runesEqual(a, b []rune) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
