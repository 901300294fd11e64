package textobject

import (
	"github.com/dshills/modal/internal/engine/buffer"
)

// Paragraphs resolves ip/ap. A paragraph is a maximal run of non-blank
// lines and runs of blank lines alternate with paragraphs. ip selects count
// runs starting at the cursor's run. ap on a paragraph adds the following
// blank run, or the preceding one when none follows; ap on blank lines
// adds the following paragraph.
func Paragraphs(snap *buffer.Snapshot, pos buffer.Position, count int, inner bool) (Range, error) {
	last := snap.LastLine()
	line := min(max(pos.Line, 0), last)

	// runEnd returns the last line of the run that starts at or contains l.
	runEnd := func(l int) int {
		blank := snap.IsBlank(l)
		for l < last && snap.IsBlank(l+1) == blank {
			l++
		}
		return l
	}

	blank := snap.IsBlank(line)
	start := line
	for start > 0 && snap.IsBlank(start-1) == blank {
		start--
	}
	end := runEnd(line)

	// next extends end by one run and reports whether there was one.
	next := func() bool {
		if end >= last {
			return false
		}
		end = runEnd(end + 1)
		return true
	}

	switch {
	case inner:
		for n := 1; n < count; n++ {
			if !next() {
				break
			}
		}
	case blank:
		for n := 0; n < count; n++ {
			if n > 0 && !next() {
				break
			}
			if !next() {
				break
			}
		}
	default:
		trailing := false
		for n := 0; n < count; n++ {
			if n > 0 && !next() {
				break
			}
			trailing = next()
		}
		if !trailing {
			for start > 0 && snap.IsBlank(start-1) {
				start--
			}
		}
	}

	return Range{
		Start:     buffer.Pos(start, 0),
		End:       buffer.Pos(end, snap.LineLen(end)),
		Inclusive: true,
		Linewise:  true,
	}, nil
}
