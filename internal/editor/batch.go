package editor

import (
	"sort"
	"unicode/utf8"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/errs"
)

// change replaces the offsets [start, end) of the snapshot the batch was
// planned against.
type change struct {
	start, end int
	text       string
}

func (c change) delta() int {
	return utf8.RuneCountInString(c.text) - (c.end - c.start)
}

func (c change) isInsert() bool {
	return c.start == c.end
}

// overlaps reports whether two changes touch the same text. Insertions at
// the boundary of a replaced range do not overlap it.
func (c change) overlaps(o change) bool {
	switch {
	case c.isInsert() && o.isInsert():
		return false
	case c.isInsert():
		return o.start < c.start && c.start < o.end
	case o.isInsert():
		return c.start < o.start && o.start < c.end
	}
	return c.start < o.end && o.start < c.end
}

// place is a position planned in old offsets and resolved after the batch
// is applied.
type place struct {
	off int
	// after lands behind text inserted exactly at off.
	after bool
	// delta is added after mapping, to land inside inserted text.
	delta int
	// firstNonBlank moves the result to its line's first non-blank.
	firstNonBlank bool
}

func at(off int) place {
	return place{off: off}
}

// target is a planned cursor.
type target struct {
	head, anchor place
	selecting    bool
}

func point(p place) target {
	return target{head: p, anchor: p}
}

// outcome is what one cursor contributes to a batch. A failed outcome
// leaves its cursor where it was.
type outcome struct {
	ok      bool
	changes []change
	targets []target
	yank    string
	linew   bool
}

func failed() outcome {
	return outcome{}
}

// batch is the plan for one action across every cursor.
type batch struct {
	snap     *buffer.Snapshot
	entries  []cursor.Entry
	outcomes []outcome
}

// plan computes every cursor's outcome against one snapshot.
func (m *Machine) plan(fn func(snap *buffer.Snapshot, i int, c cursor.Cursor) outcome) *batch {
	b := &batch{snap: m.host.ReadBuffer(), entries: m.cursors.Entries()}
	b.outcomes = make([]outcome, len(b.entries))
	for i, e := range b.entries {
		b.outcomes[i] = fn(b.snap, i, e.Cursor)
	}
	return b
}

// yanks returns the text captured by successful cursors in document order
// and whether any of it is linewise.
func (b *batch) yanks() ([]string, bool) {
	var texts []string
	linewise := false
	for _, o := range b.outcomes {
		if o.ok {
			texts = append(texts, o.yank)
			linewise = linewise || o.linew
		}
	}
	return texts, linewise
}

// succeeded reports whether any cursor succeeded.
func (b *batch) succeeded() bool {
	for _, o := range b.outcomes {
		if o.ok {
			return true
		}
	}
	return false
}

// commit applies the batch: it drops outcomes whose changes overlap an
// earlier cursor's, sends the rest to the host in one call and moves every
// cursor. On a host error nothing changes.
func (m *Machine) commit(op string, b *batch) error {
	var accepted []change
	for i := range b.outcomes {
		o := &b.outcomes[i]
		if !o.ok {
			continue
		}
		var fresh []change
	next:
		for _, c := range o.changes {
			for _, a := range accepted {
				if a == c {
					continue next
				}
				if a.overlaps(c) {
					m.log.Debug("cursor %d: %s overlaps another cursor", i, op)
					*o = failed()
					fresh = nil
					break next
				}
			}
			fresh = append(fresh, c)
		}
		accepted = append(accepted, fresh...)
	}

	newSnap := b.snap
	if len(accepted) > 0 {
		edits := make([]buffer.Edit, len(accepted))
		for i, c := range accepted {
			edits[i] = b.snap.Edit(c.start, c.end, c.text)
		}
		snap, err := m.host.ApplyEdits(edits)
		if err != nil {
			return &errs.HostEditError{Op: op, Err: err}
		}
		newSnap = snap
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].start < accepted[j].start })

	resolve := func(p place) buffer.Position {
		pos := newSnap.PositionAt(mapOffset(accepted, p))
		if p.firstNonBlank {
			pos.Col = newSnap.FirstNonBlank(pos.Line)
		}
		return pos
	}

	var extra []cursor.Cursor
	m.cursors.ApplyEntries(func(id cursor.ID, c cursor.Cursor) (cursor.Cursor, bool) {
		i := b.index(id)
		if i < 0 {
			return c, true
		}
		o := b.outcomes[i]
		targets := o.targets
		if !o.ok || len(targets) == 0 {
			targets = []target{{
				head:      at(b.snap.Offset(c.Head)),
				anchor:    at(b.snap.Offset(c.Anchor)),
				selecting: c.Selecting,
			}}
		}
		out := make([]cursor.Cursor, len(targets))
		for j, t := range targets {
			head := resolve(t.head)
			if t.selecting {
				out[j] = cursor.Selection(resolve(t.anchor), head)
			} else {
				out[j] = cursor.At(head)
			}
		}
		extra = append(extra, out[1:]...)
		return out[0], true
	})
	for _, c := range extra {
		m.cursors.Add(c)
	}
	return nil
}

func (b *batch) index(id cursor.ID) int {
	for i, e := range b.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// mapOffset moves an old offset through changes sorted by start.
func mapOffset(changes []change, p place) int {
	shift := 0
	for _, c := range changes {
		if p.off < c.start || (p.off == c.start && !p.after) {
			break
		}
		if p.off >= c.end && (p.off > c.start || p.after) {
			shift += c.delta()
			continue
		}
		// Inside replaced text.
		res := c.start + shift
		if p.after {
			res += utf8.RuneCountInString(c.text)
		}
		return res + p.delta
	}
	return p.off + shift + p.delta
}
