package editor

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/engine/textobject"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
)

// errEmptyRange is returned for a motion that covers no text, such as $ on
// an empty line. A change still enters Insert mode on it.
var errEmptyRange = fmt.Errorf("%w: empty range", errs.ErrObjectNotFound)

// span is the text an operator covers, [start, end) in offsets. Linewise
// spans cover the whole lines first..last.
type span struct {
	start, end  int
	linewise    bool
	first, last int
}

func lineSpan(snap *buffer.Snapshot, first, last int) span {
	if last < first {
		first, last = last, first
	}
	first = max(first, 0)
	last = min(last, snap.LastLine())
	return span{
		start:    snap.LineStart(first),
		end:      snap.LineEnd(last),
		linewise: true,
		first:    first,
		last:     last,
	}
}

func charSpan(snap *buffer.Snapshot, start, end int) span {
	end = min(end, snap.Len())
	return span{
		start: start,
		end:   end,
		first: snap.PositionAt(start).Line,
		last:  snap.PositionAt(max(end-1, start)).Line,
	}
}

// text returns the span's content as stored in a register.
func (s span) text(snap *buffer.Snapshot) string {
	return snap.Slice(s.start, s.end)
}

// spansFor resolves an operator target for one cursor. Block selections
// produce one span per line.
func (m *Machine) spansFor(snap *buffer.Snapshot, c cursor.Cursor, op vim.Operator, t vim.Target, count int, hasCount bool) ([]span, error) {
	switch t := t.(type) {
	case vim.MotionTarget:
		s, err := m.motionSpan(snap, c.Head, op, t.Motion, count, hasCount)
		if err != nil {
			return nil, err
		}
		return []span{s}, nil
	case vim.ObjectTarget:
		r, err := textobject.Resolve(snap, c.Head, t.Kind, t.Inner, count)
		if err != nil {
			return nil, err
		}
		return []span{objectSpan(snap, r)}, nil
	case vim.LineTarget:
		return []span{lineSpan(snap, c.Head.Line, c.Head.Line+max(count, 1)-1)}, nil
	case vim.SelectionTarget:
		return selectionSpans(snap, c, m.Mode(), t.Linewise), nil
	}
	return nil, fmt.Errorf("%w: unknown target %T", errs.ErrGrammarInvalid, t)
}

func (m *Machine) motionSpan(snap *buffer.Snapshot, pos buffer.Position, op vim.Operator, mo motion.Motion, count int, hasCount bool) (span, error) {
	if op == vim.OpChange && (mo.Kind == motion.WordForward || mo.Kind == motion.BigWordForward) {
		if s, ok := changeWordSpan(snap, pos, mo.Kind == motion.BigWordForward, count); ok {
			return s, nil
		}
	}
	env := motion.Env{Count: count, HasCount: hasCount, Operator: true, Search: m.opts.Search}
	res, err := motion.Apply(snap, pos, mo, env)
	if err != nil {
		if mo.Kind == motion.Right && snap.LineLen(pos.Line) == 0 {
			return span{}, fmt.Errorf("%w for %v", errEmptyRange, mo)
		}
		return span{}, err
	}
	from, to := pos, res.Pos
	if to.Before(from) {
		from, to = to, from
	}
	if res.Linewise {
		return lineSpan(snap, from.Line, to.Line), nil
	}
	start, end := snap.Offset(from), snap.Offset(to)
	switch {
	case res.Inclusive:
		end++
	case to.Col == 0 && to.Line > from.Line:
		// An exclusive motion ending at the start of a line stops at the
		// end of the previous one.
		end = snap.LineEnd(to.Line - 1)
	}
	if end <= start {
		return span{}, fmt.Errorf("%w for %v", errEmptyRange, mo)
	}
	return charSpan(snap, start, end), nil
}

// changeWordSpan makes cw on a non-blank act like ce, except that on the
// last character of a word it changes only that character.
func changeWordSpan(snap *buffer.Snapshot, pos buffer.Position, big bool, count int) (span, bool) {
	off := snap.Offset(pos)
	r := snap.RuneAt(off)
	cls := textobject.Classify(r, big)
	if cls == textobject.Whitespace || r == '\n' {
		return span{}, false
	}
	n := max(count, 1)
	if next := snap.RuneAt(off + 1); next == '\n' || textobject.Classify(next, big) != cls {
		n--
	}
	end := off
	if n > 0 {
		kind := motion.WordEnd
		if big {
			kind = motion.BigWordEnd
		}
		res, err := motion.Apply(snap, pos, motion.Motion{Kind: kind}, motion.Env{Count: n})
		if err != nil {
			return span{}, false
		}
		end = snap.Offset(res.Pos)
	}
	return charSpan(snap, off, end+1), true
}

func objectSpan(snap *buffer.Snapshot, r textobject.Range) span {
	if r.Linewise {
		return lineSpan(snap, r.Start.Line, r.End.Line)
	}
	start, end := snap.Offset(r.Start), snap.Offset(r.End)
	if r.Inclusive {
		end++
	}
	return charSpan(snap, start, end)
}

// selectionSpans covers a Visual selection: inclusive characters, whole
// lines, or one column range per line for blocks.
func selectionSpans(snap *buffer.Snapshot, c cursor.Cursor, kind mode.Kind, linewise bool) []span {
	start, end := c.Start(), c.End()
	switch {
	case linewise || kind == mode.VisualLine:
		return []span{lineSpan(snap, start.Line, end.Line)}
	case kind == mode.VisualBlock:
		left, right := min(c.Head.Col, c.Anchor.Col), max(c.Head.Col, c.Anchor.Col)
		var out []span
		for line := start.Line; line <= end.Line; line++ {
			n := snap.LineLen(line)
			if left >= n {
				continue
			}
			ls := snap.LineStart(line)
			out = append(out, charSpan(snap, ls+left, ls+min(right+1, n)))
		}
		return out
	}
	return []span{charSpan(snap, snap.Offset(start), snap.Offset(end)+1)}
}

// selectionText joins the text of spans as one register entry.
func selectionText(snap *buffer.Snapshot, spans []span) string {
	out := ""
	for i, s := range spans {
		if i > 0 {
			out += "\n"
		}
		out += s.text(snap)
	}
	return out
}
