package cursor

import (
	"sort"

	"github.com/dshills/modal/internal/engine/buffer"
)

// ID identifies a cursor record for the lifetime of a Set.
type ID uint64

// Entry is a cursor with its identity.
type Entry struct {
	ID     ID
	Cursor Cursor
}

// Set is the session's cursors, kept in document order.
type Set struct {
	entries []Entry
	primary ID
	nextID  ID
}

// NewSet creates a set holding one primary cursor.
func NewSet(c Cursor) *Set {
	s := &Set{}
	s.Reset(c)
	return s
}

// Reset replaces every cursor with c, which becomes primary.
func (s *Set) Reset(c Cursor) {
	s.nextID++
	s.entries = []Entry{{ID: s.nextID, Cursor: c.normalized()}}
	s.primary = s.nextID
}

// Len returns the number of cursors.
func (s *Set) Len() int {
	return len(s.entries)
}

// All returns the cursors in document order.
func (s *Set) All() []Cursor {
	out := make([]Cursor, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.Cursor
	}
	return out
}

// Entries returns a copy of the records in document order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// PrimaryID returns the primary cursor's identity.
func (s *Set) PrimaryID() ID {
	return s.primary
}

// Primary returns the primary cursor.
func (s *Set) Primary() Cursor {
	for _, e := range s.entries {
		if e.ID == s.primary {
			return e.Cursor
		}
	}
	return s.entries[0].Cursor
}

// Get returns the cursor with the given identity.
func (s *Set) Get(id ID) (Cursor, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e.Cursor, true
		}
	}
	return Cursor{}, false
}

// Add appends a cursor and returns its identity. Call Settle afterwards to
// restore ordering.
func (s *Set) Add(c Cursor) ID {
	s.nextID++
	s.entries = append(s.entries, Entry{ID: s.nextID, Cursor: c.normalized()})
	return s.nextID
}

// Update replaces the cursor with identity id.
func (s *Set) Update(id ID, c Cursor) bool {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Cursor = c.normalized()
			return true
		}
	}
	return false
}

// Apply runs fn on every cursor independently. A false result removes that
// cursor; the set never becomes empty, so if every cursor is removed the
// primary is kept unchanged.
func (s *Set) Apply(fn func(Cursor) (Cursor, bool)) {
	s.ApplyEntries(func(_ ID, c Cursor) (Cursor, bool) { return fn(c) })
}

// ApplyEntries is Apply with access to each cursor's identity.
func (s *Set) ApplyEntries(fn func(ID, Cursor) (Cursor, bool)) {
	kept := make([]Entry, 0, len(s.entries))
	var primary *Entry
	for _, e := range s.entries {
		if e.ID == s.primary {
			p := e
			primary = &p
		}
		if c, ok := fn(e.ID, e.Cursor); ok {
			kept = append(kept, Entry{ID: e.ID, Cursor: c.normalized()})
		}
	}
	if len(kept) == 0 && primary != nil {
		kept = append(kept, *primary)
	}
	s.entries = kept
	s.ensurePrimary()
}

// KeepPrimary removes every cursor but the primary.
func (s *Set) KeepPrimary() {
	p := s.Primary()
	id := s.primary
	s.entries = []Entry{{ID: id, Cursor: p}}
}

func (s *Set) ensurePrimary() {
	for _, e := range s.entries {
		if e.ID == s.primary {
			return
		}
	}
	if len(s.entries) > 0 {
		s.primary = s.entries[0].ID
	}
}

// Settle clamps every position with clamp, sorts by document order and
// merges identical cursors. When the primary is merged into another record
// the survivor becomes primary.
func (s *Set) Settle(clamp func(buffer.Position) buffer.Position) {
	for i := range s.entries {
		c := s.entries[i].Cursor
		c.Head = clamp(c.Head)
		if c.Selecting {
			c.Anchor = clamp(c.Anchor)
		}
		s.entries[i].Cursor = c.normalized()
	}

	sort.SliceStable(s.entries, func(i, j int) bool {
		return compare(s.entries[i].Cursor, s.entries[j].Cursor) < 0
	})

	merged := s.entries[:0]
	for _, e := range s.entries {
		if n := len(merged); n > 0 && merged[n-1].Cursor == e.Cursor {
			if e.ID == s.primary {
				s.primary = merged[n-1].ID
			}
			continue
		}
		merged = append(merged, e)
	}
	s.entries = merged
	s.ensurePrimary()
}
