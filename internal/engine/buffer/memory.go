package buffer

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dshills/modal/internal/errs"
)

// Memory is an in-memory Host with a snapshot undo stack.
type Memory struct {
	mu       sync.Mutex
	snap     *Snapshot
	undo     []*Snapshot
	redo     []*Snapshot
	readOnly bool
	maxUndo  int
}

// NewMemory creates a host holding text.
func NewMemory(text string) *Memory {
	return &Memory{snap: NewSnapshot(text), maxUndo: 1000}
}

// SetReadOnly makes ApplyEdits fail with errs.ErrReadOnly.
func (m *Memory) SetReadOnly(ro bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readOnly = ro
}

// ReadBuffer implements Host.
func (m *Memory) ReadBuffer() *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}

// Text returns the current document.
func (m *Memory) Text() string {
	return m.ReadBuffer().Text()
}

type offsetEdit struct {
	start, end int
	text       string
	seq        int
}

// ApplyEdits implements Host.
func (m *Memory) ApplyEdits(edits []Edit) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readOnly {
		return m.snap, errs.ErrReadOnly
	}
	if len(edits) == 0 {
		return m.snap, nil
	}

	cur := m.snap
	ops := make([]offsetEdit, len(edits))
	for i, e := range edits {
		if !cur.Contains(e.Range.Start) || !cur.Contains(e.Range.End) {
			return cur, fmt.Errorf("edit %d: range %s outside document", i, e.Range)
		}
		start, end := cur.Offset(e.Range.Start), cur.Offset(e.Range.End)
		if end < start {
			return cur, fmt.Errorf("edit %d: inverted range %s", i, e.Range)
		}
		ops[i] = offsetEdit{start: start, end: end, text: e.Text, seq: i}
	}
	sort.SliceStable(ops, func(i, j int) bool { return ops[i].start < ops[j].start })
	for i := 1; i < len(ops); i++ {
		if ops[i].start < ops[i-1].end {
			return cur, fmt.Errorf("edits %d and %d overlap", ops[i-1].seq, ops[i].seq)
		}
	}

	var sb strings.Builder
	prev := 0
	for _, op := range ops {
		sb.WriteString(cur.Slice(prev, op.start))
		sb.WriteString(op.text)
		prev = op.end
	}
	sb.WriteString(cur.Slice(prev, cur.Len()))

	m.pushUndo(cur)
	m.redo = m.redo[:0]
	m.snap = newSnapshot(sb.String(), cur.version+1)
	return m.snap, nil
}

func (m *Memory) pushUndo(s *Snapshot) {
	m.undo = append(m.undo, s)
	if len(m.undo) > m.maxUndo {
		m.undo = m.undo[len(m.undo)-m.maxUndo:]
	}
}

// Undo implements Undoer.
func (m *Memory) Undo() (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undo) == 0 {
		return m.snap, false
	}
	prev := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, m.snap)
	m.snap = newSnapshot(prev.Text(), m.snap.version+1)
	return m.snap, true
}

// Redo implements Undoer.
func (m *Memory) Redo() (*Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redo) == 0 {
		return m.snap, false
	}
	next := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.pushUndo(m.snap)
	m.snap = newSnapshot(next.Text(), m.snap.version+1)
	return m.snap, true
}

var (
	_ Host   = (*Memory)(nil)
	_ Undoer = (*Memory)(nil)
)
