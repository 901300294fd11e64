package editor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/textobject"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/register"
)

// cancel returns to Normal mode. Leaving Insert replays a count, leaving
// Visual keeps every cursor, and cancel in Normal drops all but the
// primary cursor. An open quick-jump overlay is dismissed first; in Normal
// mode that is all cancel does.
func (m *Machine) cancel() error {
	if m.jump != nil {
		m.jump = nil
		if m.Mode() == mode.Normal {
			return nil
		}
	}
	switch cur := m.Mode(); {
	case cur.IsInsertLike():
		return m.finishInsert()
	case cur == mode.CommandLine:
		m.cmdline = nil
		m.switchMode(mode.Normal)
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) { return c.Collapse(), true })
	case cur.IsVisual():
		m.switchMode(mode.Normal)
	default:
		m.switchMode(mode.Normal)
		if m.cursors.Len() > 1 {
			m.cursors.KeepPrimary()
		}
	}
	return nil
}

// enterVisual starts a Visual mode, switches between Visual kinds, or
// leaves Visual when kind is already active.
func (m *Machine) enterVisual(kind mode.Kind) {
	switch cur := m.Mode(); {
	case cur == kind:
		m.switchMode(mode.Normal)
	case cur.IsVisual():
		m.modes.Switch(kind)
	default:
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) { return c.Select(), true })
		m.modes.Switch(kind)
	}
}

// selectObject selects a text object at every cursor. A cursor with no
// such object keeps its selection.
func (m *Machine) selectObject(a vim.SelectObject) error {
	if !m.Mode().IsVisual() {
		return fmt.Errorf("%w: text object outside Visual mode", errs.ErrGrammarInvalid)
	}
	snap := m.host.ReadBuffer()
	linewise := false
	m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
		r, err := textobject.Resolve(snap, c.Head, a.Kind, a.Inner, a.Count)
		if err != nil {
			m.log.Debug("select %v at %s: %v", a.Kind, c.Head, err)
			return c, true
		}
		s := objectSpan(snap, r)
		if s.linewise {
			linewise = true
			return cursor.Selection(buffer.Pos(s.first, 0), buffer.Pos(s.last, max(snap.LineLen(s.last)-1, 0))), true
		}
		if s.end <= s.start {
			return c, true
		}
		return cursor.Selection(snap.PositionAt(s.start), snap.PositionAt(s.end-1)), true
	})
	if linewise && m.Mode() == mode.Visual {
		m.modes.Switch(mode.VisualLine)
	}
	return nil
}

// put pastes a register at every cursor. When the register was filled by
// as many cursors as there are now, each cursor gets its own piece.
func (m *Machine) put(a vim.Put) error {
	name := a.Register
	if name == 0 {
		name = '"'
	}
	content, ok := m.registers.Get(name)
	if !ok {
		m.SetStatus("register %q is empty", name)
		m.leaveVisual()
		return nil
	}
	count := max(a.Count, 1)
	cur := m.Mode()
	n := m.cursors.Len()

	b := m.plan(func(snap *buffer.Snapshot, i int, c cursor.Cursor) outcome {
		text := content.For(i, n)
		if cur.IsVisual() {
			return putOverSelection(snap, c, cur, text, content.Linewise, count)
		}
		if content.Linewise {
			lines := strings.TrimSuffix(strings.Repeat(text+"\n", count), "\n")
			if a.Before {
				off := snap.LineStart(c.Head.Line)
				return outcome{
					ok:      true,
					changes: []change{{start: off, end: off, text: lines + "\n"}},
					targets: []target{point(place{off: off, firstNonBlank: true})},
				}
			}
			off := snap.LineEnd(c.Head.Line)
			return outcome{
				ok:      true,
				changes: []change{{start: off, end: off, text: "\n" + lines}},
				targets: []target{point(place{off: off, delta: 1, firstNonBlank: true})},
			}
		}
		text = strings.Repeat(text, count)
		off := snap.Offset(c.Head)
		if !a.Before && snap.LineLen(c.Head.Line) > 0 {
			off++
		}
		return outcome{
			ok:      true,
			changes: []change{{start: off, end: off, text: text}},
			targets: []target{point(place{off: off, delta: max(utf8.RuneCountInString(text)-1, 0)})},
		}
	})
	if err := m.commit("put", b); err != nil {
		return err
	}
	if cur.IsVisual() {
		m.storeRegister('"', register.Delete, b)
		m.switchMode(mode.Normal)
	}
	return nil
}

// putOverSelection replaces the selection with text. The replaced text is
// captured for the unnamed register.
func putOverSelection(snap *buffer.Snapshot, c cursor.Cursor, kind mode.Kind, text string, linewise bool, count int) outcome {
	spans := selectionSpans(snap, c, kind, false)
	if len(spans) == 0 {
		return failed()
	}
	s := spans[0]
	text = strings.Repeat(text, count)
	if linewise && !s.linewise {
		text = "\n" + text + "\n"
	}
	o := outcome{ok: true, yank: selectionText(snap, spans), linew: s.linewise}
	o.changes = []change{{start: s.start, end: s.end, text: text}}
	for _, extra := range spans[1:] {
		o.changes = append(o.changes, change{start: extra.start, end: extra.end})
	}
	o.targets = []target{point(at(s.start))}
	return o
}

// replaceChar is r: replace count characters under each cursor, or every
// character of the selection.
func (m *Machine) replaceChar(a vim.ReplaceChar) error {
	count := max(a.Count, 1)
	cur := m.Mode()
	ch := string(a.Char)

	b := m.plan(func(snap *buffer.Snapshot, _ int, c cursor.Cursor) outcome {
		if cur.IsVisual() {
			o := outcome{ok: true}
			for _, s := range selectionSpans(snap, c, cur, false) {
				old := s.text(snap)
				repl := strings.Map(func(r rune) rune {
					if r == '\n' {
						return r
					}
					return a.Char
				}, old)
				o.changes = append(o.changes, change{start: s.start, end: s.end, text: repl})
			}
			o.targets = []target{point(at(snap.Offset(c.Start())))}
			return o
		}
		if c.Head.Col+count > snap.LineLen(c.Head.Line) {
			return failed()
		}
		off := snap.Offset(c.Head)
		if a.Char == '\n' {
			return outcome{
				ok:      true,
				changes: []change{{start: off, end: off + count, text: "\n"}},
				targets: []target{point(place{off: off, delta: 1})},
			}
		}
		return outcome{
			ok:      true,
			changes: []change{{start: off, end: off + count, text: strings.Repeat(ch, count)}},
			targets: []target{point(place{off: off, delta: count - 1})},
		}
	})
	if err := m.commit("replace", b); err != nil {
		return err
	}
	m.leaveVisual()
	return nil
}

// join is J: join count lines (at least two) at every cursor, or the
// selected lines. Leading whitespace of joined lines becomes one space.
func (m *Machine) join(count int) error {
	cur := m.Mode()
	b := m.plan(func(snap *buffer.Snapshot, _ int, c cursor.Cursor) outcome {
		first, last := c.Head.Line, c.Head.Line+max(count, 2)-1
		if cur.IsVisual() {
			first, last = c.Start().Line, max(c.End().Line, c.Start().Line+1)
		}
		last = min(last, snap.LastLine())
		if last <= first {
			return failed()
		}
		o := outcome{ok: true}
		landing := 0
		for line := first; line < last; line++ {
			next := snap.LineRunes(line + 1)
			lead := 0
			for lead < len(next) && (next[lead] == ' ' || next[lead] == '\t') {
				lead++
			}
			sep := " "
			prev := snap.LineRunes(line)
			switch {
			case lead == len(next):
				sep = ""
			case len(prev) > 0 && (prev[len(prev)-1] == ' ' || prev[len(prev)-1] == '\t'):
				sep = ""
			case next[lead] == ')':
				sep = ""
			}
			start := snap.LineEnd(line)
			o.changes = append(o.changes, change{start: start, end: snap.LineStart(line+1) + lead, text: sep})
			landing = start
		}
		o.targets = []target{point(at(landing))}
		return o
	})
	if err := m.commit("join", b); err != nil {
		return err
	}
	m.leaveVisual()
	return nil
}

// undo steps the host's undo stack when it has one.
func (m *Machine) undo(count int, redo bool) {
	u, ok := m.host.(buffer.Undoer)
	if !ok {
		m.SetStatus("undo is not supported")
		return
	}
	steps := 0
	for n := max(count, 1); n > 0; n-- {
		var moved bool
		if redo {
			_, moved = u.Redo()
		} else {
			_, moved = u.Undo()
		}
		if !moved {
			break
		}
		steps++
	}
	switch {
	case steps == 0 && redo:
		m.SetStatus("already at newest change")
	case steps == 0:
		m.SetStatus("already at oldest change")
	}
	m.leaveVisual()
}

// addCursors adds count cursors above or below the extreme cursor.
func (m *Machine) addCursors(a vim.AddCursor) {
	snap := m.host.ReadBuffer()
	added := 0
	for n := max(a.Count, 1); n > 0; n-- {
		if m.limit() == 0 {
			m.SetStatus("cursor limit reached")
			break
		}
		var ok bool
		if a.Above {
			ok = m.cursors.AddAbove(snap)
		} else {
			ok = m.cursors.AddBelow(snap)
		}
		if !ok {
			break
		}
		added++
	}
	if added == 0 {
		m.log.Debug("add cursor: no eligible line")
	}
}

// extendCursors is gb. In Normal mode it selects the word under the
// primary cursor; in Visual mode it adds cursors on the next occurrences
// of the primary selection.
func (m *Machine) extendCursors(count int) {
	snap := m.host.ReadBuffer()
	count = max(count, 1)
	if !m.Mode().IsVisual() {
		p := m.cursors.Primary()
		r, err := textobject.Words(snap, p.Head, 1, true, false)
		if err != nil || textobject.Classify(snap.RuneAt(snap.Offset(p.Head)), false) == textobject.Whitespace {
			m.SetStatus("no word under cursor")
			return
		}
		s := objectSpan(snap, r)
		m.cursors.KeepPrimary()
		m.cursors.Apply(func(cursor.Cursor) (cursor.Cursor, bool) {
			return cursor.Selection(snap.PositionAt(s.start), snap.PositionAt(s.end-1)), true
		})
		m.modes.Switch(mode.Visual)
		count--
	}
	if count == 0 {
		return
	}
	p := m.cursors.Primary()
	pattern := snap.Slice(snap.Offset(p.Start()), snap.Offset(p.End())+1)
	if n := m.cursors.ExtendViaSearch(snap, pattern, cursor.Forward, min(count, m.limit())); n == 0 {
		m.SetStatus("no more matches for %q", pattern)
	}
}
