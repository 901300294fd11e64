package buffer

import (
	"errors"
	"testing"

	"github.com/dshills/modal/internal/errs"
)

func TestMemoryApplyEdits(t *testing.T) {
	m := NewMemory("11\n22")
	s := m.ReadBuffer()

	next, err := m.ApplyEdits([]Edit{
		s.Edit(3, 5, "33"),
		s.Edit(0, 2, "33"),
	})
	if err != nil {
		t.Fatalf("ApplyEdits error: %v", err)
	}
	if got := next.Text(); got != "33\n33" {
		t.Errorf("text = %q, want %q", got, "33\n33")
	}
	if next.Version() != s.Version()+1 {
		t.Errorf("version = %d, want %d", next.Version(), s.Version()+1)
	}
}

func TestMemoryInsertOrderPreserved(t *testing.T) {
	m := NewMemory("x")
	s := m.ReadBuffer()
	next, err := m.ApplyEdits([]Edit{s.Edit(0, 0, "a"), s.Edit(0, 0, "b")})
	if err != nil {
		t.Fatal(err)
	}
	if next.Text() != "abx" {
		t.Errorf("text = %q, want abx", next.Text())
	}
}

func TestMemoryAtomicFailure(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Memory)
		edits func(*Snapshot) []Edit
		is    error
	}{
		{
			name:  "read-only",
			setup: func(m *Memory) { m.SetReadOnly(true) },
			edits: func(s *Snapshot) []Edit { return []Edit{s.Edit(0, 1, "")} },
			is:    errs.ErrReadOnly,
		},
		{
			name:  "overlap",
			setup: func(*Memory) {},
			edits: func(s *Snapshot) []Edit { return []Edit{s.Edit(0, 3, ""), s.Edit(2, 4, "z")} },
		},
		{
			name:  "out of range",
			setup: func(*Memory) {},
			edits: func(s *Snapshot) []Edit {
				return []Edit{s.Edit(0, 1, "q"), {Range: Range{Start: Pos(9, 0), End: Pos(9, 0)}, Text: "x"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory("hello")
			tt.setup(m)
			before := m.ReadBuffer()
			_, err := m.ApplyEdits(tt.edits(before))
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("error = %v, want %v", err, tt.is)
			}
			if m.ReadBuffer() != before || m.Text() != "hello" {
				t.Error("failed batch must leave the document unchanged")
			}
		})
	}
}

func TestMemoryUndoRedo(t *testing.T) {
	m := NewMemory("a")
	s := m.ReadBuffer()
	if _, err := m.ApplyEdits([]Edit{s.Edit(1, 1, "b")}); err != nil {
		t.Fatal(err)
	}
	if snap, ok := m.Undo(); !ok || snap.Text() != "a" {
		t.Errorf("Undo() = %q, %v", snap.Text(), ok)
	}
	if snap, ok := m.Redo(); !ok || snap.Text() != "ab" {
		t.Errorf("Redo() = %q, %v", snap.Text(), ok)
	}
	if _, ok := m.Redo(); ok {
		t.Error("Redo with empty stack should report false")
	}
}
