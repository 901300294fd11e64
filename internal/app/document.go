package app

import (
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

// Document is the file being edited. It implements buffer.Host with undo
// and, once a viewport is attached, buffer.Viewport.
type Document struct {
	// Path is the absolute file path (empty for scratch buffers).
	Path string

	// Name is the display name (filename or "Untitled").
	Name string

	mem      *buffer.Memory
	modified atomic.Bool

	mu       sync.Mutex
	viewport buffer.Viewport
}

// NewDocument creates a document holding content.
func NewDocument(path string, content []byte) *Document {
	name := filepath.Base(path)
	if path == "" {
		name = "Untitled"
	}
	return &Document{Path: path, Name: name, mem: buffer.NewMemory(string(content))}
}

// OpenDocument reads path. A missing file opens as an empty document that
// is created on save.
func OpenDocument(path string) (*Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil && !os.IsNotExist(err) {
		return nil, errs.NewOperationError("open", abs, err)
	}
	return NewDocument(abs, data), nil
}

// SetReadOnly makes every edit fail.
func (d *Document) SetReadOnly(ro bool) {
	d.mem.SetReadOnly(ro)
}

// IsModified returns true if the document has unsaved changes.
func (d *Document) IsModified() bool {
	return d.modified.Load()
}

// IsScratch returns true if this is a scratch buffer (no file path).
func (d *Document) IsScratch() bool {
	return d.Path == ""
}

// Content returns the document text.
func (d *Document) Content() string {
	return d.mem.Text()
}

// Save writes the document to its path.
func (d *Document) Save() error {
	if d.IsScratch() {
		return errs.NewOperationError("save", d.Name, ErrNoPath)
	}
	if err := os.WriteFile(d.Path, []byte(d.Content()), 0o644); err != nil {
		return errs.NewOperationError("save", d.Path, err)
	}
	d.modified.Store(false)
	return nil
}

// SetViewport attaches the lines on screen.
func (d *Document) SetViewport(v buffer.Viewport) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = v
}

// ReadBuffer implements buffer.Host.
func (d *Document) ReadBuffer() *buffer.Snapshot {
	return d.mem.ReadBuffer()
}

// ApplyEdits implements buffer.Host.
func (d *Document) ApplyEdits(edits []buffer.Edit) (*buffer.Snapshot, error) {
	snap, err := d.mem.ApplyEdits(edits)
	if err == nil && len(edits) > 0 {
		d.modified.Store(true)
	}
	return snap, err
}

// Undo implements buffer.Undoer.
func (d *Document) Undo() (*buffer.Snapshot, bool) {
	snap, ok := d.mem.Undo()
	if ok {
		d.modified.Store(true)
	}
	return snap, ok
}

// Redo implements buffer.Undoer.
func (d *Document) Redo() (*buffer.Snapshot, bool) {
	snap, ok := d.mem.Redo()
	if ok {
		d.modified.Store(true)
	}
	return snap, ok
}

// VisibleLines implements buffer.Viewport. Without a viewport every line
// is visible.
func (d *Document) VisibleLines() (first, last int) {
	d.mu.Lock()
	v := d.viewport
	d.mu.Unlock()
	if v == nil {
		return 0, d.ReadBuffer().LastLine()
	}
	return v.VisibleLines()
}
