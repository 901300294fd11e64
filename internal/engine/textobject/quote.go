package textobject

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

// Quote resolves i"/a" style objects on the cursor's line. Quotes do not
// nest: quotes pair up left to right, skipping backslash-escaped ones. The
// pair containing the cursor wins, else the first pair after it. The outer
// object also takes trailing blanks, or leading blanks when none trail.
func Quote(snap *buffer.Snapshot, pos buffer.Position, q rune, inner bool) (Range, error) {
	line := snap.LineRunes(pos.Line)

	var quotes []int
	for i := 0; i < len(line); i++ {
		if line[i] == '\\' {
			i++
			continue
		}
		if line[i] == q {
			quotes = append(quotes, i)
		}
	}

	open, close := -1, -1
	for i := 0; i+1 < len(quotes); i += 2 {
		a, b := quotes[i], quotes[i+1]
		if a <= pos.Col && pos.Col <= b {
			open, close = a, b
			break
		}
		if a > pos.Col && open < 0 {
			open, close = a, b
			break
		}
	}
	if open < 0 {
		return Range{}, errs.ErrObjectNotFound
	}

	mk := func(a, b int) Range {
		return Range{Start: buffer.Pos(pos.Line, a), End: buffer.Pos(pos.Line, b)}
	}
	if inner {
		return mk(open+1, close), nil
	}

	start, end := open, close+1
	for end < len(line) && (line[end] == ' ' || line[end] == '\t') {
		end++
	}
	if end == close+1 {
		for start > 0 && (line[start-1] == ' ' || line[start-1] == '\t') {
			start--
		}
	}
	return mk(start, end), nil
}
