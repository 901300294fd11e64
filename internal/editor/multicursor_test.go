package editor

import (
	"reflect"
	"testing"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/mode"
)

func TestMultiCursorChangeWord(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   buffer.Position
		keys string
		want string
	}{
		{"below", "11\n22", buffer.Pos(0, 0), "<C-A-Down>cw33<Esc>", "33\n33"},
		{"above", "11\n22\n33", buffer.Pos(2, 0), "<C-A-Up><C-A-Up>cw44<Esc>", "44\n44\n44"},
		{"counted", "11\n22\n33", buffer.Pos(0, 0), "2<C-A-Down>cw5<Esc>", "5\n5\n5"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newMachine(tt.text)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := host.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMultiCursorAddSkipsShortLines(t *testing.T) {
	m, _ := newMachine("abcd\nx\nabcd")
	m.SetCursors(cursor.At(buffer.Pos(0, 2)))
	mustRun(t, m, "<C-A-Down>")
	want := []buffer.Position{buffer.Pos(0, 2), buffer.Pos(2, 2)}
	if got := heads(m); !reflect.DeepEqual(got, want) {
		t.Errorf("heads = %v, want %v", got, want)
	}
}

func TestMultiCursorAddDirection(t *testing.T) {
	tests := []struct {
		keys string
		want []buffer.Position
	}{
		{"<C-A-Up>", []buffer.Position{buffer.Pos(0, 0), buffer.Pos(1, 0)}},
		{"<C-A-Down>", []buffer.Position{buffer.Pos(1, 0), buffer.Pos(2, 0)}},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			m, _ := newMachine("11\n22\n33")
			m.SetCursors(cursor.At(buffer.Pos(1, 0)))
			mustRun(t, m, tt.keys)
			if got := heads(m); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("heads = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMultiCursorMaxCursors(t *testing.T) {
	host := buffer.NewMemory("a\nb\nc\nd")
	opts := DefaultOptions()
	opts.MaxCursors = 2
	m := New(host, nil, opts)
	mustRun(t, m, "3<C-A-Down>")
	if n := len(m.Cursors()); n != 2 {
		t.Errorf("cursors = %d, want 2", n)
	}
	if m.Status() == "" {
		t.Error("no status when the cursor limit is reached")
	}
}

// gbgb<Esc>b leaves a cursor at the start of each occurrence of the word
// under the first cursor.
func TestMultiCursorVisualObjects(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   buffer.Position
		keys string
		want string
	}{
		{"viwd", "foo dont delete\nbar\ndont foo", buffer.Pos(0, 0), "gbgb<Esc>bviwd", " dont delete\nbar\ndont "},
		{"vibd", "[(foo) asd ]\n[(bar) asd ]\n[(foo) asd ]", buffer.Pos(0, 2), "gbgb<Esc>bvibd", "[() asd ]\n[(bar) asd ]\n[() asd ]"},
		{"vi[d", "[(foo) asd ]\n[(bar) asd ]\n[(foo) asd ]", buffer.Pos(0, 2), "gbgb<Esc>bvi[d", "[]\n[(bar) asd ]\n[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newMachine(tt.text)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := host.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if n := len(m.Cursors()); n != 2 {
				t.Errorf("cursors = %d, want 2", n)
			}
			if m.Mode() != mode.Normal {
				t.Errorf("mode = %v", m.Mode())
			}
		})
	}
}

func TestMultiCursorTags(t *testing.T) {
	m, host := newMachine("<div> foo bar</div> asd\n<div>foo asd</div>")
	m.SetCursors(cursor.At(buffer.Pos(0, 6)), cursor.At(buffer.Pos(1, 5)))
	mustRun(t, m, "vitd")
	if got, want := host.Text(), "<div></div> asd\n<div></div>"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if n := len(m.Cursors()); n != 2 {
		t.Errorf("cursors = %d, want 2", n)
	}
}

func TestMultiCursorPartialFailure(t *testing.T) {
	m, host := newMachine("(foo)\nbar")
	m.SetCursors(cursor.At(buffer.Pos(0, 2)), cursor.At(buffer.Pos(1, 1)))
	mustRun(t, m, "dib")
	if got, want := host.Text(), "()\nbar"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	want := []buffer.Position{buffer.Pos(0, 1), buffer.Pos(1, 1)}
	if got := heads(m); !reflect.DeepEqual(got, want) {
		t.Errorf("heads = %v, want %v", got, want)
	}
	content, ok := m.Registers().Get('"')
	if !ok || !reflect.DeepEqual(content.Texts, []string{"foo"}) {
		t.Errorf("register = %+v, want only the successful cursor's text", content)
	}
}

func TestMultiCursorAllFail(t *testing.T) {
	m, host := newMachine("foo\nbar")
	m.SetCursors(cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(1, 0)))
	mustRun(t, m, "dib")
	if host.Text() != "foo\nbar" {
		t.Errorf("text changed: %q", host.Text())
	}
	if _, ok := m.Registers().Get('"'); ok {
		t.Error("register written although every cursor failed")
	}
	if m.Mode() != mode.Normal {
		t.Errorf("mode = %v", m.Mode())
	}
}

func TestMultiCursorSameWord(t *testing.T) {
	m, host := newMachine("foo bar")
	m.SetCursors(cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(0, 2)))
	mustRun(t, m, "diw")
	if got, want := host.Text(), " bar"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if n := len(m.Cursors()); n != 1 {
		t.Errorf("cursors = %d, want the two to merge", n)
	}
}

func TestMultiCursorOverlap(t *testing.T) {
	m, host := newMachine("abcdef")
	m.SetCursors(cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(0, 2)))
	mustRun(t, m, "d3l")
	// The second cursor's range overlaps the first's and is dropped.
	if got, want := host.Text(), "def"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestMultiCursorSearch(t *testing.T) {
	m, host := newMachine("line 1\nline 2\nline 3\nline 4\nline 5")
	mustRun(t, m, "3<C-A-Down>v/ne <CR>d")
	want := "e 1\ne 2\ne 3\ne 4\nline 5"
	if got := host.Text(); got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
	if n := len(m.Cursors()); n != 4 {
		t.Errorf("cursors = %d, want 4", n)
	}
}

func TestMultiCursorYankPut(t *testing.T) {
	m, host := newMachine("ab\ncd")
	m.SetCursors(cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(1, 0)))
	mustRun(t, m, "yl$p")
	if got, want := host.Text(), "aba\ncdc"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}

	// A single cursor gets every piece joined.
	mustRun(t, m, "<Esc>0P")
	if got, want := host.Text(), "a\ncaba\ncdc"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestMultiCursorInsert(t *testing.T) {
	m, host := newMachine("one\ntwo")
	m.SetCursors(cursor.At(buffer.Pos(0, 1)))
	mustRun(t, m, "<C-v>jAfoo<Esc>")
	if got, want := host.Text(), "onfooe\ntwfooo"; got != want {
		t.Errorf("text = %q, want %q", got, want)
	}
}

func TestExtendCursorsNormal(t *testing.T) {
	m, _ := newMachine("foo bar foo foo")
	mustRun(t, m, "gb")
	if m.Mode() != mode.Visual {
		t.Fatalf("mode = %v", m.Mode())
	}
	if got, want := m.Primary(), cursor.Selection(buffer.Pos(0, 0), buffer.Pos(0, 2)); got != want {
		t.Errorf("primary = %v, want %v", got, want)
	}
	mustRun(t, m, "2gb")
	if n := len(m.Cursors()); n != 3 {
		t.Errorf("cursors = %d, want 3", n)
	}
	mustRun(t, m, "gb")
	if n := len(m.Cursors()); n != 3 || m.Status() == "" {
		t.Errorf("extra gb: %d cursors, status %q", n, m.Status())
	}
}

func TestExtendCursorsOnBlank(t *testing.T) {
	m, _ := newMachine("foo  bar")
	m.SetCursors(cursor.At(buffer.Pos(0, 3)))
	mustRun(t, m, "gb")
	if m.Mode() != mode.Normal || m.Status() == "" {
		t.Errorf("gb on blank: mode %v status %q", m.Mode(), m.Status())
	}
}
