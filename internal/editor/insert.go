package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/indent"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
)

// insertSession records what was typed since Insert or Replace mode was
// entered so a count can replay it on leaving.
type insertSession struct {
	count     int
	open      vim.InsertKind
	opens     bool
	typed     []vim.Action
	replaying bool
}

func (m *Machine) startInsert(k mode.Kind, count int, open *vim.InsertKind) {
	m.insert = insertSession{count: max(count, 1)}
	if open != nil {
		m.insert.open, m.insert.opens = *open, true
	}
	m.switchMode(k)
}

func (m *Machine) enterInsert(a vim.EnterInsert) error {
	snap := m.host.ReadBuffer()
	if m.Mode().IsVisual() && (a.Kind == vim.InsertLineStart || a.Kind == vim.InsertLineEnd) {
		m.insertAtSelections(snap, a.Kind == vim.InsertLineEnd)
		m.startInsert(mode.Insert, 1, nil)
		return nil
	}
	switch a.Kind {
	case vim.InsertAfter:
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
			if snap.LineLen(c.Head.Line) > 0 {
				c = c.MoveTo(buffer.Pos(c.Head.Line, c.Head.Col+1))
			}
			return c, true
		})
	case vim.InsertLineStart:
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
			return c.MoveTo(buffer.Pos(c.Head.Line, snap.FirstNonBlank(c.Head.Line))), true
		})
	case vim.InsertLineEnd:
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
			return c.MoveTo(buffer.Pos(c.Head.Line, snap.LineLen(c.Head.Line))), true
		})
	case vim.OpenBelow, vim.OpenAbove:
		if err := m.openLine(a.Kind == vim.OpenBelow); err != nil {
			return err
		}
		kind := a.Kind
		m.startInsert(mode.Insert, a.Count, &kind)
		return nil
	}
	m.startInsert(mode.Insert, a.Count, nil)
	return nil
}

// insertAtSelections replaces every selection by an insertion point
// before its start or after its end. A block yields one point per line;
// lines too short for the block get I skipped and A at their end.
func (m *Machine) insertAtSelections(snap *buffer.Snapshot, after bool) {
	kind := m.Mode()
	primary := m.cursors.PrimaryID()
	var first, rest []buffer.Position
	for _, e := range m.cursors.Entries() {
		c := e.Cursor
		var ps []buffer.Position
		start, end := c.Start(), c.End()
		switch kind {
		case mode.VisualBlock:
			left, right := min(c.Head.Col, c.Anchor.Col), max(c.Head.Col, c.Anchor.Col)
			for line := start.Line; line <= end.Line; line++ {
				n := snap.LineLen(line)
				switch {
				case after:
					ps = append(ps, buffer.Pos(line, min(right+1, n)))
				case left <= n:
					ps = append(ps, buffer.Pos(line, left))
				}
			}
		case mode.VisualLine:
			if after {
				ps = append(ps, buffer.Pos(end.Line, snap.LineLen(end.Line)))
			} else {
				ps = append(ps, buffer.Pos(start.Line, 0))
			}
		default:
			if after {
				ps = append(ps, buffer.Pos(end.Line, min(end.Col+1, snap.LineLen(end.Line))))
			} else {
				ps = append(ps, start)
			}
		}
		if e.ID == primary {
			first = ps
		} else {
			rest = append(rest, ps...)
		}
	}
	all := append(first, rest...)
	if len(all) == 0 {
		return
	}
	m.cursors.Reset(cursor.At(all[0]))
	for _, p := range all[1:] {
		m.cursors.Add(cursor.At(p))
	}
}

// openLine inserts an empty line below or above every cursor, indented
// with the canonical form of the cursor line's indentation.
func (m *Machine) openLine(below bool) error {
	b := m.plan(func(snap *buffer.Snapshot, _ int, c cursor.Cursor) outcome {
		ind := m.opts.Indent.Regenerate(snap.Line(c.Head.Line))
		n := utf8.RuneCountInString(ind)
		if below {
			off := snap.LineEnd(c.Head.Line)
			return outcome{
				ok:      true,
				changes: []change{{start: off, end: off, text: "\n" + ind}},
				targets: []target{point(place{off: off, delta: 1 + n})},
			}
		}
		off := snap.LineStart(c.Head.Line)
		return outcome{
			ok:      true,
			changes: []change{{start: off, end: off, text: ind + "\n"}},
			targets: []target{point(place{off: off, delta: n})},
		}
	})
	return m.commit("open line", b)
}

// typeText applies one Insert or Replace mode edit at every cursor.
func (m *Machine) typeText(a vim.Action) error {
	if !m.Mode().IsInsertLike() {
		return fmt.Errorf("%w: %s outside Insert mode", errs.ErrGrammarInvalid, vim.Describe(a))
	}
	b := m.plan(func(snap *buffer.Snapshot, _ int, c cursor.Cursor) outcome {
		return m.typeAt(snap, c.Head, a)
	})
	if err := m.commit("insert", b); err != nil {
		return err
	}
	if !m.insert.replaying {
		m.insert.typed = append(m.insert.typed, a)
	}
	return nil
}

func (m *Machine) typeAt(snap *buffer.Snapshot, pos buffer.Position, a vim.Action) outcome {
	off := snap.Offset(pos)
	insert := func(text string) outcome {
		return outcome{
			ok:      true,
			changes: []change{{start: off, end: off, text: text}},
			targets: []target{point(place{off: off, after: true})},
		}
	}
	switch a := a.(type) {
	case vim.InsertText:
		return insert(a.Text)
	case vim.ReplaceText:
		n := utf8.RuneCountInString(a.Text)
		end := min(off+n, snap.LineEnd(pos.Line))
		return outcome{
			ok:      true,
			changes: []change{{start: off, end: end, text: a.Text}},
			targets: []target{point(place{off: off, delta: n})},
		}
	case vim.InsertNewline:
		line := snap.LineRunes(pos.Line)
		lead := indent.Leading(string(line[:min(pos.Col, len(line))]))
		return insert("\n" + m.opts.Indent.Canonical(m.opts.Indent.Width(lead)))
	case vim.InsertTab:
		if !m.opts.Indent.ExpandTab {
			return insert("\t")
		}
		tw := tabWidth(m.opts.Indent)
		line := snap.LineRunes(pos.Line)
		w := displayWidth(tw, line[:min(pos.Col, len(line))])
		return insert(strings.Repeat(" ", tw-w%tw))
	case vim.DeleteBackward:
		if off == 0 {
			return failed()
		}
		return outcome{ok: true, changes: []change{{start: off - 1, end: off}}, targets: []target{point(at(off - 1))}}
	case vim.DeleteForward:
		if off >= snap.Len() {
			return failed()
		}
		return outcome{ok: true, changes: []change{{start: off, end: off + 1}}, targets: []target{point(at(off))}}
	}
	return failed()
}

// finishInsert leaves Insert or Replace mode: a count replays what was
// typed, then every cursor steps back one column.
func (m *Machine) finishInsert() error {
	s := m.insert
	m.insert = insertSession{}
	var err error
	if s.count > 1 && len(s.typed) > 0 {
		m.insert.replaying = true
		for n := 1; n < s.count && err == nil; n++ {
			if s.opens {
				err = m.openLine(s.open == vim.OpenBelow)
			}
			for _, a := range s.typed {
				if err != nil {
					break
				}
				err = m.typeText(a)
			}
		}
		m.insert.replaying = false
	}
	m.switchMode(mode.Normal)
	m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
		if c.Head.Col > 0 {
			c = c.MoveTo(buffer.Pos(c.Head.Line, c.Head.Col-1))
		}
		return c, true
	})
	return err
}

func tabWidth(o indent.Options) int {
	if o.TabWidth <= 0 {
		return indent.DefaultOptions.TabWidth
	}
	return o.TabWidth
}

// displayWidth measures runes with tabs advancing to the next stop.
func displayWidth(tw int, runes []rune) int {
	w := 0
	for _, r := range runes {
		if r == '\t' {
			w += tw - w%tw
			continue
		}
		w++
	}
	return w
}
