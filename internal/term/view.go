package term

import (
	"strconv"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/uniseg"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/quickjump"
	"github.com/dshills/modal/internal/session"
)

// Source supplies the document to draw.
type Source interface {
	ReadBuffer() *buffer.Snapshot
}

var (
	styleText      = tcell.StyleDefault
	styleSelection = tcell.StyleDefault.Reverse(true)
	styleCursor    = tcell.StyleDefault.Reverse(true).Underline(true)
	styleLabel     = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorYellow).Bold(true)
	styleStatus    = tcell.StyleDefault.Reverse(true)
	styleFiller    = tcell.StyleDefault.Foreground(tcell.ColorBlue)
)

// View draws a session on a terminal. It implements session.Renderer and
// session.StatusRenderer; the screen is redrawn when the status arrives,
// which the session sends after cursors and labels.
//
// View also implements buffer.Viewport so quick-jump targets stay on
// screen.
type View struct {
	term     *Terminal
	src      Source
	tabWidth int

	mu      sync.Mutex
	top     int
	mode    mode.Kind
	cursors []cursor.Cursor
	labels  []quickjump.Target
	status  session.Status
}

// NewView creates a view of src on t.
func NewView(t *Terminal, src Source, tabWidth int) *View {
	if tabWidth < 1 {
		tabWidth = 8
	}
	return &View{term: t, src: src, tabWidth: tabWidth}
}

// RenderCursors implements session.Renderer.
func (v *View) RenderCursors(m mode.Kind, cursors []cursor.Cursor) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.mode = m
	v.cursors = append(v.cursors[:0], cursors...)
}

// RenderOverlayLabels implements session.Renderer.
func (v *View) RenderOverlayLabels(labels []quickjump.Target) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.labels = append(v.labels[:0], labels...)
}

// RenderStatus implements session.StatusRenderer.
func (v *View) RenderStatus(st session.Status) {
	v.mu.Lock()
	v.status = st
	v.scroll()
	v.mu.Unlock()

	v.Redraw()
}

// Resize redraws after the screen size changed.
func (v *View) Resize(width, height int) {
	v.mu.Lock()
	v.scroll()
	v.mu.Unlock()

	v.Redraw()
}

// VisibleLines implements buffer.Viewport.
func (v *View) VisibleLines() (first, last int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	last = v.top + v.rows() - 1
	if end := v.src.ReadBuffer().LastLine(); last > end {
		last = end
	}
	return v.top, last
}

func (v *View) rows() int {
	_, h := v.term.Size()
	if h < 2 {
		return 1
	}
	return h - 1
}

// scroll keeps the primary cursor on screen.
func (v *View) scroll() {
	line, rows := v.status.Primary.Line, v.rows()
	switch {
	case line < v.top:
		v.top = line
	case line >= v.top+rows:
		v.top = line - rows + 1
	}
	if v.top < 0 {
		v.top = 0
	}
}

// Redraw draws the whole screen.
func (v *View) Redraw() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.term.SetCursorStyle(v.mode.CursorStyle())
	snap := v.src.ReadBuffer()
	rows := v.rows()
	v.term.draw(func(s tcell.Screen) {
		s.Clear()
		width, height := s.Size()

		cursorX, cursorY := -1, -1
		for y := 0; y < rows; y++ {
			line := v.top + y
			if line > snap.LastLine() {
				s.SetContent(0, y, '~', nil, styleFiller)
				continue
			}
			cols := v.drawLine(s, y, width, line, snap.Line(line))
			for _, c := range v.cursors {
				if c.Head.Line != line {
					continue
				}
				x := columnX(cols, c.Head.Col)
				if c.Head == v.status.Primary {
					cursorX, cursorY = x, y
				} else if x < width {
					r, comb, _, _ := s.GetContent(x, y)
					s.SetContent(x, y, r, comb, styleCursor)
				}
			}
			for _, t := range v.labels {
				if t.Pos.Line == line {
					drawString(s, columnX(cols, t.Pos.Col), y, width, t.Label, styleLabel)
				}
			}
		}

		if height > rows {
			if x, ok := v.drawStatus(s, rows, width); ok {
				cursorX, cursorY = x, rows
			}
		}
		if cursorY >= 0 && cursorX < width {
			s.ShowCursor(cursorX, cursorY)
		} else {
			s.HideCursor()
		}
	})
}

// drawLine draws one document line and returns the screen column of
// every rune column, plus one past the end.
func (v *View) drawLine(s tcell.Screen, y, width, line int, text string) []int {
	cols := make([]int, 0, len(text)+1)
	col, x := 0, 0
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if runes[0] == '\t' {
			w = v.tabWidth - x%v.tabWidth
		}
		for range runes {
			cols = append(cols, x)
		}
		style := styleText
		if v.selected(line, col) {
			style = styleSelection
		}
		if x+w <= width {
			if runes[0] == '\t' {
				for i := 0; i < w; i++ {
					s.SetContent(x+i, y, ' ', nil, style)
				}
			} else {
				s.SetContent(x, y, runes[0], runes[1:], style)
			}
		}
		col += len(runes)
		x += w
	}
	return append(cols, x)
}

// selected reports whether the rune at line, col is inside a selection.
func (v *View) selected(line, col int) bool {
	p := buffer.Pos(line, col)
	for _, c := range v.cursors {
		if !c.Selecting {
			continue
		}
		start, end := c.Start(), c.End()
		if line < start.Line || line > end.Line {
			continue
		}
		switch v.mode {
		case mode.VisualLine:
			return true
		case mode.VisualBlock:
			lo, hi := c.Anchor.Col, c.Head.Col
			if lo > hi {
				lo, hi = hi, lo
			}
			if col >= lo && col <= hi {
				return true
			}
		default:
			if !p.Before(start) && !end.Before(p) {
				return true
			}
		}
	}
	return false
}

// drawStatus draws the status line and reports where the cursor goes
// when a command line is open.
func (v *View) drawStatus(s tcell.Screen, y, width int) (int, bool) {
	for x := 0; x < width; x++ {
		s.SetContent(x, y, ' ', nil, styleStatus)
	}
	st := v.status
	if st.CommandLine != "" {
		x := drawString(s, 0, y, width, st.CommandLine, styleStatus)
		return x, true
	}

	left := st.Mode.DisplayName()
	if st.Recording != 0 {
		if left != "" {
			left += " "
		}
		left += "recording @" + string(st.Recording)
	}
	if st.Message != "" {
		if left != "" {
			left += " "
		}
		left += st.Message
	}
	drawString(s, 0, y, width, left, styleStatus)

	right := st.Pending
	if st.Cursors > 1 {
		if right != "" {
			right += "  "
		}
		right += strconv.Itoa(st.Cursors) + " cursors"
	}
	if right != "" {
		drawString(s, width-uniseg.StringWidth(right)-1, y, width, right, styleStatus)
	}
	return 0, false
}

// drawString draws text from x and returns the column after it.
func drawString(s tcell.Screen, x, y, width int, text string, style tcell.Style) int {
	if x < 0 {
		x = 0
	}
	g := uniseg.NewGraphemes(text)
	for g.Next() {
		runes := g.Runes()
		w := g.Width()
		if x+w > width {
			break
		}
		s.SetContent(x, y, runes[0], runes[1:], style)
		x += w
	}
	return x
}

func columnX(cols []int, col int) int {
	if col < 0 {
		return 0
	}
	if col >= len(cols) {
		return cols[len(cols)-1] + col - len(cols) + 1
	}
	return cols[col]
}
