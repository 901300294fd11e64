package session

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/quickjump"
)

// Renderer is told about cursor and overlay changes after every key.
type Renderer interface {
	RenderCursors(m mode.Kind, cursors []cursor.Cursor)
	// RenderOverlayLabels receives nil when no overlay is shown.
	RenderOverlayLabels(labels []quickjump.Target)
}

// StatusRenderer is implemented by renderers that show a status line.
type StatusRenderer interface {
	RenderStatus(st Status)
}

// Status is what a status line shows.
type Status struct {
	Mode mode.Kind
	// Pending is the partially typed command, remap buffer included.
	Pending string
	// CommandLine is the open prompt with its prefix, if any.
	CommandLine string
	Message     string
	Cursors     int
	// Primary is the head of the primary cursor.
	Primary buffer.Position
	// Recording is the macro register being recorded, or 0.
	Recording rune
}

type nopRenderer struct{}

func (nopRenderer) RenderCursors(mode.Kind, []cursor.Cursor) {}
func (nopRenderer) RenderOverlayLabels([]quickjump.Target)   {}

// Status returns the current status line contents.
func (s *Session) Status() Status {
	st := Status{
		Mode:    s.machine.Mode(),
		Pending: s.pending.Display() + s.disp.Pending().String(),
		Message: s.machine.Status(),
		Cursors: len(s.machine.Cursors()),
		Primary: s.machine.Primary().Head,
	}
	if reg, ok := s.recorder.Recording(); ok {
		st.Recording = reg
	}
	if line, ok := s.machine.CommandLine(); ok {
		st.CommandLine = line
	}
	return st
}

func (s *Session) render() {
	s.renderer.RenderCursors(s.machine.Mode(), s.machine.Cursors())
	s.renderer.RenderOverlayLabels(s.machine.Labels())
	if sr, ok := s.renderer.(StatusRenderer); ok {
		sr.RenderStatus(s.Status())
	}
}
