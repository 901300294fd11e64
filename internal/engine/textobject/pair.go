package textobject

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

// Pair resolves a bracket object for one open/close kind. Brackets of other
// kinds are ignored entirely, so "[(foo) asd ]" with the cursor inside the
// parentheses still finds the square pair. count selects the n-th
// enclosing pair. A cursor on either delimiter selects that pair.
func Pair(snap *buffer.Snapshot, pos buffer.Position, open, close rune, count int, inner bool) (Range, error) {
	off := snap.Offset(pos)
	start := off
	if snap.RuneAt(off) != open {
		start = matchBackward(snap, off-1, open, close)
	}
	for n := 1; n < count && start >= 0; n++ {
		start = matchBackward(snap, start-1, open, close)
	}
	if start < 0 {
		return Range{}, errs.ErrObjectNotFound
	}

	end := matchForward(snap, start+1, open, close)
	if end < 0 {
		return Range{}, errs.ErrObjectNotFound
	}

	if inner {
		return charRange(snap, start+1, end), nil
	}
	return charRange(snap, start, end+1), nil
}

// matchBackward finds the unmatched open at or before from.
func matchBackward(snap *buffer.Snapshot, from int, open, close rune) int {
	depth := 0
	for i := from; i >= 0; i-- {
		switch snap.RuneAt(i) {
		case close:
			depth++
		case open:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// matchForward finds the unmatched close at or after from.
func matchForward(snap *buffer.Snapshot, from int, open, close rune) int {
	depth := 0
	for i := from; i < snap.Len(); i++ {
		switch snap.RuneAt(i) {
		case open:
			depth++
		case close:
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}
