package textobject

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

type run struct {
	start, end int // columns, end exclusive
	kind       WordType
}

// runs splits a line into maximal runs of one WordType.
func runs(line []rune, big bool) []run {
	var out []run
	for i := 0; i < len(line); {
		k := Classify(line[i], big)
		j := i + 1
		for j < len(line) && Classify(line[j], big) == k {
			j++
		}
		out = append(out, run{start: i, end: j, kind: k})
		i = j
	}
	return out
}

// Words resolves iw/aw (iW/aW with big). Objects never cross a line break.
func Words(snap *buffer.Snapshot, pos buffer.Position, count int, inner, big bool) (Range, error) {
	line := snap.LineRunes(pos.Line)
	if len(line) == 0 {
		return Range{}, errs.ErrObjectNotFound
	}
	col := min(max(pos.Col, 0), len(line)-1)
	rs := runs(line, big)

	i := 0
	for i < len(rs) && rs[i].end <= col {
		i++
	}

	mk := func(a, b int) Range {
		return Range{Start: buffer.Pos(pos.Line, a), End: buffer.Pos(pos.Line, b)}
	}

	if inner {
		j := min(i+count-1, len(rs)-1)
		return mk(rs[i].start, rs[j].end), nil
	}

	start := rs[i].start
	j := i
	if rs[i].kind == Whitespace {
		// Leading blanks plus the following word, count times.
		for n := 0; n < count; n++ {
			if j+1 < len(rs) {
				j++
			}
			if n+1 < count && j+1 < len(rs) && rs[j+1].kind == Whitespace {
				j++
			}
		}
		return mk(start, rs[j].end), nil
	}

	trailing := false
	for n := 0; n < count; n++ {
		if n > 0 {
			if j+1 >= len(rs) {
				break
			}
			j++
		}
		trailing = false
		if j+1 < len(rs) && rs[j+1].kind == Whitespace {
			j++
			trailing = true
		}
	}
	if !trailing && i > 0 && rs[i-1].kind == Whitespace {
		start = rs[i-1].start
	}
	return mk(start, rs[j].end), nil
}
