package editor

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/indent"
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/register"
)

// resolveMotion replaces ; , n and N by the motion they repeat and
// remembers finds for later repeats.
func (m *Machine) resolveMotion(mo motion.Motion) (motion.Motion, bool) {
	switch mo.Kind {
	case motion.RepeatFind, motion.RepeatFindReverse:
		if !m.hasFind {
			m.SetStatus("no previous find")
			return mo, false
		}
		r := m.lastFind
		if mo.Kind == motion.RepeatFindReverse {
			r = r.Reverse()
		}
		r.Repeat = true
		return r, true
	case motion.SearchNext, motion.SearchPrev:
		if m.lastSearch == "" {
			m.SetStatus("no previous search pattern")
			return mo, false
		}
		r := motion.Motion{Kind: motion.Search, Pattern: m.lastSearch, Backward: m.searchBackward}
		if mo.Kind == motion.SearchPrev {
			r.Backward = !r.Backward
		}
		m.highlight = true
		return r, true
	}
	if mo.Kind.IsFind() {
		m.lastFind = mo
		m.lastFind.Repeat = false
		m.hasFind = true
	}
	return mo, true
}

// move runs a motion for every cursor, extending selections in Visual
// modes. Cursors whose motion fails stay put.
func (m *Machine) move(mo motion.Motion, env motion.Env) error {
	mo, ok := m.resolveMotion(mo)
	if !ok {
		return nil
	}
	snap := m.host.ReadBuffer()
	failures := 0
	m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) {
		res, err := motion.Apply(snap, c.Head, mo, env)
		if err != nil {
			failures++
			return c, true
		}
		return c.MoveTo(res.Pos), true
	})
	if failures > 0 {
		m.log.Debug("%s: %d cursor(s) could not move", mo, failures)
	}
	return nil
}

// operate applies an operator to its target at every cursor.
func (m *Machine) operate(a vim.Operate) error {
	if t, ok := a.Target.(vim.MotionTarget); ok {
		mo, ok := m.resolveMotion(t.Motion)
		if !ok {
			m.leaveVisual()
			return nil
		}
		a.Target = vim.MotionTarget{Motion: mo}
	}
	cur := m.Mode()

	b := m.plan(func(snap *buffer.Snapshot, _ int, c cursor.Cursor) outcome {
		spans, err := m.spansFor(snap, c, a.Op, a.Target, a.Count, a.HasCount)
		if a.Op == vim.OpChange && errors.Is(err, errEmptyRange) {
			return outcome{ok: true, targets: []target{point(at(snap.Offset(c.Head)))}}
		}
		if err != nil || len(spans) == 0 {
			m.log.Debug("%s at %s: %v", a.Op, c.Head, err)
			return failed()
		}
		o := outcome{ok: true, yank: selectionText(snap, spans), linew: spans[0].linewise}
		switch a.Op {
		case vim.OpDelete:
			m.deleteSpans(snap, spans, &o)
		case vim.OpChange:
			m.changeSpans(snap, spans, &o)
		case vim.OpYank:
			o.targets = []target{yankTarget(snap, c, spans[0], a.Target)}
		case vim.OpIndentRight, vim.OpIndentLeft:
			levels := 1
			if _, sel := a.Target.(vim.SelectionTarget); sel && a.HasCount {
				levels = a.Count
			}
			if a.Op == vim.OpIndentLeft {
				levels = -levels
			}
			o.changes = shiftLines(snap, m.opts.Indent, spans[0].first, spans[len(spans)-1].last, levels)
			o.targets = []target{point(place{off: snap.LineStart(spans[0].first), firstNonBlank: true})}
		case vim.OpLowercase, vim.OpUppercase, vim.OpToggleCase:
			for _, s := range spans {
				text := s.text(snap)
				if changed := mapCase(a.Op, text); changed != text {
					o.changes = append(o.changes, change{start: s.start, end: s.end, text: changed})
				}
			}
			land := spans[0].start
			if a.Advance {
				land = spans[len(spans)-1].end
			}
			o.targets = []target{point(at(land))}
		}
		return o
	})

	if err := m.commit(a.Op.String(), b); err != nil {
		return err
	}

	if b.succeeded() {
		switch a.Op {
		case vim.OpDelete, vim.OpChange:
			m.storeRegister(a.Register, register.Delete, b)
		case vim.OpYank:
			m.storeRegister(a.Register, register.Yank, b)
		}
	}

	switch {
	case a.Op.EntersInsert() && b.succeeded():
		m.startInsert(mode.Insert, 1, nil)
	case cur.IsVisual():
		m.switchMode(mode.Normal)
	}
	return nil
}

func (m *Machine) deleteSpans(snap *buffer.Snapshot, spans []span, o *outcome) {
	s := spans[0]
	if s.linewise {
		switch {
		case s.last < snap.LastLine():
			o.changes = []change{{start: snap.LineStart(s.first), end: snap.LineStart(s.last + 1)}}
			o.targets = []target{point(place{off: snap.LineStart(s.first), firstNonBlank: true})}
		case s.first > 0:
			o.changes = []change{{start: snap.LineEnd(s.first - 1), end: snap.Len()}}
			o.targets = []target{point(place{off: snap.LineStart(s.first - 1), firstNonBlank: true})}
		default:
			o.changes = []change{{start: 0, end: snap.Len()}}
			o.targets = []target{point(at(0))}
		}
		return
	}
	for _, s := range spans {
		o.changes = append(o.changes, change{start: s.start, end: s.end})
	}
	o.targets = []target{point(at(spans[0].start))}
}

// changeSpans deletes the spans, keeping the indentation of a linewise
// change. A block change leaves one cursor per line.
func (m *Machine) changeSpans(snap *buffer.Snapshot, spans []span, o *outcome) {
	s := spans[0]
	if s.linewise {
		ind := m.opts.Indent.Regenerate(snap.Line(s.first))
		o.changes = []change{{start: snap.LineStart(s.first), end: snap.LineEnd(s.last), text: ind}}
		o.targets = []target{point(place{off: snap.LineStart(s.first), delta: utf8.RuneCountInString(ind)})}
		return
	}
	for _, s := range spans {
		o.changes = append(o.changes, change{start: s.start, end: s.end})
		o.targets = append(o.targets, point(at(s.start)))
	}
}

// yankTarget leaves the cursor at the start of what was yanked; linewise
// yanks keep the column.
func yankTarget(snap *buffer.Snapshot, c cursor.Cursor, s span, t vim.Target) target {
	if _, sel := t.(vim.SelectionTarget); sel {
		return point(at(snap.Offset(c.Start())))
	}
	if s.linewise {
		line := min(s.first, c.Head.Line)
		return point(at(snap.Offset(snap.ClampNormal(buffer.Pos(line, c.Head.Col)))))
	}
	return point(at(s.start))
}

// shiftLines re-indents lines first..last by levels shift widths.
func shiftLines(snap *buffer.Snapshot, opts indent.Options, first, last, levels int) []change {
	var out []change
	for line := first; line <= last; line++ {
		text := snap.Line(line)
		shifted := opts.Shift(text, levels)
		if shifted == text {
			continue
		}
		old, lead := indent.Leading(text), indent.Leading(shifted)
		start := snap.LineStart(line)
		out = append(out, change{start: start, end: start + utf8.RuneCountInString(old), text: lead})
	}
	return out
}

func mapCase(op vim.Operator, text string) string {
	switch op {
	case vim.OpLowercase:
		return strings.ToLower(text)
	case vim.OpUppercase:
		return strings.ToUpper(text)
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsUpper(r) {
			return unicode.ToLower(r)
		}
		return unicode.ToUpper(r)
	}, text)
}

// storeRegister records what the successful cursors removed or copied.
func (m *Machine) storeRegister(name rune, kind register.Kind, b *batch) {
	texts, linewise := b.yanks()
	if (register.Content{Texts: texts}).IsEmpty() {
		return
	}
	if err := m.registers.Store(name, kind, register.Content{Texts: texts, Linewise: linewise}); err != nil {
		m.log.Warn("register %q: %v", name, err)
		m.SetStatus("clipboard: %v", err)
	}
}

// leaveVisual returns to Normal from any Visual mode.
func (m *Machine) leaveVisual() {
	if m.Mode().IsVisual() {
		m.switchMode(mode.Normal)
	}
}
