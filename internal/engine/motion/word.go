package motion

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/textobject"
)

func classAt(snap *buffer.Snapshot, off int, big bool) textobject.WordType {
	return textobject.Classify(snap.RuneAt(off), big)
}

// emptyLineAt reports whether off is the start of an empty line. Empty
// lines count as words for w and b.
func emptyLineAt(snap *buffer.Snapshot, off int) bool {
	if off == snap.Len() {
		return off == 0 || snap.RuneAt(off-1) == '\n'
	}
	return snap.RuneAt(off) == '\n' && (off == 0 || snap.RuneAt(off-1) == '\n')
}

func wordForward(snap *buffer.Snapshot, pos buffer.Position, n int, big, operator bool, m Motion) (Result, error) {
	from := snap.Offset(pos)
	off, end := from, snap.Len()
	for i := 0; i < n && off < end; i++ {
		last := i == n-1
		startedOnText := snap.RuneAt(off) != '\n'
		if c := classAt(snap, off, big); c != textobject.Whitespace {
			for off < end && classAt(snap, off, big) == c {
				off++
			}
		}
	skip:
		for off < end {
			switch {
			case snap.RuneAt(off) == '\n':
				if operator && last && startedOnText {
					// An operator stops at the end of the last word's line.
					break skip
				}
				off++
				if emptyLineAt(snap, off) {
					break skip
				}
			case classAt(snap, off, big) != textobject.Whitespace:
				break skip
			default:
				off++
			}
		}
	}
	if off == from {
		return Result{}, fail(m)
	}
	return Result{Pos: snap.PositionAt(off)}, nil
}

func wordEnd(snap *buffer.Snapshot, pos buffer.Position, n int, big bool, m Motion) (Result, error) {
	off, end := snap.Offset(pos), snap.Len()
	moved := false
	for i := 0; i < n; i++ {
		next := off + 1
		for next < end && classAt(snap, next, big) == textobject.Whitespace {
			next++
		}
		if next >= end {
			break
		}
		c := classAt(snap, next, big)
		for next+1 < end && classAt(snap, next+1, big) == c {
			next++
		}
		off = next
		moved = true
	}
	if !moved {
		return Result{}, fail(m)
	}
	return Result{Pos: snap.PositionAt(off), Inclusive: true}, nil
}

func wordBackward(snap *buffer.Snapshot, pos buffer.Position, n int, big bool, m Motion) (Result, error) {
	off := snap.Offset(pos)
	if off == 0 {
		return Result{}, fail(m)
	}
	for i := 0; i < n && off > 0; i++ {
		off--
		for off > 0 && classAt(snap, off, big) == textobject.Whitespace && !emptyLineAt(snap, off) {
			off--
		}
		if c := classAt(snap, off, big); c != textobject.Whitespace {
			for off > 0 && classAt(snap, off-1, big) == c {
				off--
			}
		}
	}
	return Result{Pos: snap.PositionAt(off)}, nil
}

func wordEndBackward(snap *buffer.Snapshot, pos buffer.Position, n int, big bool, m Motion) (Result, error) {
	off := snap.Offset(pos)
	for i := 0; i < n; i++ {
		if c := classAt(snap, off, big); c != textobject.Whitespace {
			for off > 0 && classAt(snap, off-1, big) == c {
				off--
			}
		}
		if off == 0 {
			if i == 0 {
				return Result{}, fail(m)
			}
			break
		}
		off--
		for off > 0 && classAt(snap, off, big) == textobject.Whitespace && !emptyLineAt(snap, off) {
			off--
		}
	}
	return Result{Pos: snap.PositionAt(off), Inclusive: true}, nil
}
