package buffer

// Host is the document owner the engine edits through.
type Host interface {
	// ReadBuffer returns the current snapshot.
	ReadBuffer() *Snapshot

	// ApplyEdits applies every edit or none. Ranges are in coordinates of
	// the snapshot last returned by ReadBuffer, must not overlap, and may
	// be given in any order; insertions at the same point keep their
	// order.
	ApplyEdits(edits []Edit) (*Snapshot, error)
}

// Undoer is implemented by hosts that keep an undo stack.
type Undoer interface {
	Undo() (*Snapshot, bool)
	Redo() (*Snapshot, bool)
}

// Viewport is implemented by hosts that know which lines are on screen.
// Quick-jump targets are limited to this range when present.
type Viewport interface {
	VisibleLines() (first, last int)
}
