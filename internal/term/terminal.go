// Package term runs a session on a terminal: it converts tcell key events
// to key events and draws the document, cursors, jump labels and a status
// line.
package term

import (
	"context"
	"sync"

	"github.com/gdamore/tcell/v2"

	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
)

// Terminal wraps a tcell screen.
type Terminal struct {
	screen   tcell.Screen
	onResize func(width, height int)
	mu       sync.Mutex
}

// New creates a terminal on the controlling tty.
func New() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return &Terminal{screen: screen}, nil
}

// NewWithScreen wraps an existing screen, such as a simulation screen.
func NewWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{screen: screen}
}

// Init initializes the screen.
func (t *Terminal) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.screen.Init(); err != nil {
		return err
	}
	t.screen.EnablePaste()
	return nil
}

// Shutdown restores the terminal.
func (t *Terminal) Shutdown() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.screen.Fini()
}

// Size returns the screen size in cells.
func (t *Terminal) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.screen.Size()
}

// OnResize sets a callback run from Keys when the screen is resized.
func (t *Terminal) OnResize(fn func(width, height int)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.onResize = fn
}

// SetCursorStyle sets the terminal cursor shape.
func (t *Terminal) SetCursorStyle(style mode.CursorStyle) {
	t.mu.Lock()
	defer t.mu.Unlock()

	var cs tcell.CursorStyle
	switch style {
	case mode.CursorBar:
		cs = tcell.CursorStyleSteadyBar
	case mode.CursorUnderline:
		cs = tcell.CursorStyleSteadyUnderline
	default:
		cs = tcell.CursorStyleSteadyBlock
	}
	t.screen.SetCursorStyle(cs)
}

// draw runs fn with the screen locked and shows the result.
func (t *Terminal) draw(fn func(s tcell.Screen)) {
	t.mu.Lock()
	defer t.mu.Unlock()

	fn(t.screen)
	t.screen.Show()
}

// Keys polls the screen and sends converted key events until ctx is done
// or the screen is finalized. Pasted text arrives as plain rune events.
func (t *Terminal) Keys(ctx context.Context) <-chan key.Event {
	out := make(chan key.Event, 64)
	go func() {
		defer close(out)
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventKey:
				k, ok := ConvertKey(ev)
				if !ok {
					continue
				}
				select {
				case out <- k:
				case <-ctx.Done():
					return
				}
			case *tcell.EventResize:
				t.mu.Lock()
				fn := t.onResize
				t.screen.Sync()
				t.mu.Unlock()
				if fn != nil {
					w, h := ev.Size()
					fn(w, h)
				}
			}
			if ctx.Err() != nil {
				return
			}
		}
	}()
	return out
}
