package quickjump

import (
	"slices"
	"unicode"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/textobject"
)

// Region limits target enumeration to lines First..Last inclusive.
type Region struct {
	First, Last int
}

// Whole returns the region covering every line of snap.
func Whole(snap *buffer.Snapshot) Region {
	return Region{First: 0, Last: snap.LastLine()}
}

func (r Region) clamp(snap *buffer.Snapshot) Region {
	r.First = max(r.First, 0)
	r.Last = min(r.Last, snap.LastLine())
	return r
}

type direction uint8

const (
	forward direction = 1 << iota
	backward
	both = forward | backward
)

func (d direction) admits(cur, p buffer.Position) bool {
	switch d {
	case forward:
		return cur.Before(p)
	case backward:
		return p.Before(cur)
	}
	return p != cur
}

// Targets enumerates jump targets for trigger t typed at cursor cur,
// ordered closest first: by line distance, then column distance, then
// document order. The cursor position is never a target.
func Targets(snap *buffer.Snapshot, cur buffer.Position, region Region, t Trigger, chars string) []buffer.Position {
	region = region.clamp(snap)
	var found []buffer.Position
	switch t {
	case Search, Search2, SearchN:
		found = matches(snap, region, chars, 0)
		found = filter(found, cur, both)
	case FindForward, Find2Forward:
		found = filter(matches(snap, region, chars, 0), cur, forward)
	case FindBackward, Find2Backward:
		found = filter(matches(snap, region, chars, 0), cur, backward)
	case FindBoth, Find2Both:
		found = filter(matches(snap, region, chars, 0), cur, both)
	case TillForward, Till2Forward:
		found = filter(matches(snap, region, chars, -1), cur, forward)
	case TillBackward, Till2Backward:
		found = filter(matches(snap, region, chars, 1), cur, backward)
	case TillBoth, Till2Both:
		found = filter(matches(snap, region, chars, -1), cur, both)
	case WordStart:
		found = filter(wordStarts(snap, region), cur, forward)
	case WordStartBackward:
		found = filter(wordStarts(snap, region), cur, backward)
	case WordStartBoth:
		found = filter(wordStarts(snap, region), cur, both)
	case WordEnd:
		found = filter(wordEnds(snap, region), cur, forward)
	case WordEndBackward:
		found = filter(wordEnds(snap, region), cur, backward)
	case WordEndBoth:
		found = filter(wordEnds(snap, region), cur, both)
	case LineDown:
		found = filter(lineStarts(snap, region), cur, forward)
	case LineUp:
		found = filter(lineStarts(snap, region), cur, backward)
	case LineBoth:
		found = filter(lineStarts(snap, region), cur, both)
	case LineForward:
		found = filter(subwordStarts(snap, cur.Line), cur, forward)
	case LineBackward:
		found = filter(subwordStarts(snap, cur.Line), cur, backward)
	}
	if t == LineDown || t == LineUp || t == LineBoth {
		found = slices.DeleteFunc(found, func(p buffer.Position) bool { return p.Line == cur.Line })
	}
	sortByDistance(found, cur)
	return found
}

func filter(ps []buffer.Position, cur buffer.Position, d direction) []buffer.Position {
	return slices.DeleteFunc(ps, func(p buffer.Position) bool { return !d.admits(cur, p) })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sortByDistance(ps []buffer.Position, cur buffer.Position) {
	slices.SortStableFunc(ps, func(a, b buffer.Position) int {
		if d := abs(a.Line-cur.Line) - abs(b.Line-cur.Line); d != 0 {
			return d
		}
		if d := abs(a.Col-cur.Col) - abs(b.Col-cur.Col); d != 0 {
			return d
		}
		return a.Compare(b)
	})
}

// matches returns literal occurrences of chars within each line, shifted
// by shift columns. Shifted positions falling outside the line are
// dropped.
func matches(snap *buffer.Snapshot, region Region, chars string, shift int) []buffer.Position {
	needle := []rune(chars)
	if len(needle) == 0 {
		return nil
	}
	var out []buffer.Position
	for line := region.First; line <= region.Last; line++ {
		runes := snap.LineRunes(line)
		for col := 0; col+len(needle) <= len(runes); col++ {
			if !slices.Equal(runes[col:col+len(needle)], needle) {
				continue
			}
			if c := col + shift; c >= 0 && c < len(runes) {
				out = append(out, buffer.Pos(line, c))
			}
		}
	}
	return out
}

func wordStarts(snap *buffer.Snapshot, region Region) []buffer.Position {
	var out []buffer.Position
	for line := region.First; line <= region.Last; line++ {
		runes := snap.LineRunes(line)
		prev := textobject.Whitespace
		for col, r := range runes {
			c := textobject.Classify(r, false)
			if c != textobject.Whitespace && c != prev {
				out = append(out, buffer.Pos(line, col))
			}
			prev = c
		}
	}
	return out
}

func wordEnds(snap *buffer.Snapshot, region Region) []buffer.Position {
	var out []buffer.Position
	for line := region.First; line <= region.Last; line++ {
		runes := snap.LineRunes(line)
		for col, r := range runes {
			c := textobject.Classify(r, false)
			if c == textobject.Whitespace {
				continue
			}
			if col+1 == len(runes) || textobject.Classify(runes[col+1], false) != c {
				out = append(out, buffer.Pos(line, col))
			}
		}
	}
	return out
}

func lineStarts(snap *buffer.Snapshot, region Region) []buffer.Position {
	out := make([]buffer.Position, 0, region.Last-region.First+1)
	for line := region.First; line <= region.Last; line++ {
		out = append(out, buffer.Pos(line, min(snap.FirstNonBlank(line), max(snap.LineLen(line)-1, 0))))
	}
	return out
}

// subwordStarts also breaks words at lower-to-upper case humps, so
// "abcDefGhi" has targets at a, D and G.
func subwordStarts(snap *buffer.Snapshot, line int) []buffer.Position {
	runes := snap.LineRunes(line)
	var out []buffer.Position
	prev := textobject.Whitespace
	for col, r := range runes {
		c := textobject.Classify(r, false)
		hump := col > 0 && unicode.IsUpper(r) && unicode.IsLower(runes[col-1])
		if c != textobject.Whitespace && (c != prev || hump) {
			out = append(out, buffer.Pos(line, col))
		}
		prev = c
	}
	return out
}
