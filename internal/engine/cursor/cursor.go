package cursor

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
)

// Cursor is an insertion point or, while Selecting, a selection from
// Anchor to Head. Both ends are inclusive in Visual modes.
type Cursor struct {
	Head      buffer.Position
	Anchor    buffer.Position
	Selecting bool
}

// At returns a plain cursor at p.
func At(p buffer.Position) Cursor {
	return Cursor{Head: p, Anchor: p}
}

// Selection returns a selecting cursor.
func Selection(anchor, head buffer.Position) Cursor {
	return Cursor{Head: head, Anchor: anchor, Selecting: true}
}

// MoveTo moves the head, keeping any selection anchor.
func (c Cursor) MoveTo(p buffer.Position) Cursor {
	c.Head = p
	if !c.Selecting {
		c.Anchor = p
	}
	return c
}

// Collapse drops the selection, keeping the head.
func (c Cursor) Collapse() Cursor {
	return At(c.Head)
}

// Select starts a selection anchored at the head.
func (c Cursor) Select() Cursor {
	return Selection(c.Head, c.Head)
}

// Swap exchanges anchor and head.
func (c Cursor) Swap() Cursor {
	if !c.Selecting {
		return c
	}
	c.Head, c.Anchor = c.Anchor, c.Head
	return c
}

// Start returns the earlier end.
func (c Cursor) Start() buffer.Position {
	if c.Selecting && c.Anchor.Before(c.Head) {
		return c.Anchor
	}
	return c.Head
}

// End returns the later end.
func (c Cursor) End() buffer.Position {
	if c.Selecting && c.Head.Before(c.Anchor) {
		return c.Anchor
	}
	return c.Head
}

// normalized makes equal cursors compare equal with ==.
func (c Cursor) normalized() Cursor {
	if !c.Selecting {
		c.Anchor = c.Head
	}
	return c
}

func (c Cursor) String() string {
	if c.Selecting {
		return fmt.Sprintf("%s..%s", c.Anchor, c.Head)
	}
	return c.Head.String()
}

func compare(a, b Cursor) int {
	if d := a.Head.Compare(b.Head); d != 0 {
		return d
	}
	if d := a.Anchor.Compare(b.Anchor); d != 0 {
		return d
	}
	switch {
	case a.Selecting == b.Selecting:
		return 0
	case !a.Selecting:
		return -1
	}
	return 1
}
