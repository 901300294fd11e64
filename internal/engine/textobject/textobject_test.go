package textobject

import (
	"errors"
	"testing"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/errs"
)

// cut returns the text covered by a charwise range.
func cut(snap *buffer.Snapshot, r Range) string {
	return snap.Slice(snap.Offset(r.Start), snap.Offset(r.End))
}

func TestWords(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		col   int
		count int
		inner bool
		big   bool
		want  string
	}{
		{"iw keyword", "foo bar", 1, 1, true, false, "foo"},
		{"iw whitespace", "foo   bar", 4, 1, true, false, "   "},
		{"iw punctuation", "a.b(c)", 3, 1, true, false, "("},
		{"iw count", "foo bar baz", 0, 3, true, false, "foo bar"},
		{"aw trailing", "foo bar", 0, 1, false, false, "foo "},
		{"aw leading when last", "foo bar", 5, 1, false, false, " bar"},
		{"aw from blank", "foo  bar baz", 3, 1, false, false, "  bar"},
		{"aw count", "a b c d", 0, 2, false, false, "a b "},
		{"iW", "x foo.bar y", 4, 1, true, true, "foo.bar"},
		{"aW", "x foo.bar y", 4, 1, false, true, "foo.bar "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := buffer.NewSnapshot(tt.line)
			r, err := Words(snap, buffer.Pos(0, tt.col), tt.count, tt.inner, tt.big)
			if err != nil {
				t.Fatalf("Words error: %v", err)
			}
			if got := cut(snap, r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Words(buffer.NewSnapshot("a\n\nb"), buffer.Pos(1, 0), 1, true, false); !errors.Is(err, errs.ErrObjectNotFound) {
		t.Errorf("empty line error = %v", err)
	}
}

func TestPairIsKindSpecific(t *testing.T) {
	snap := buffer.NewSnapshot("[(foo) asd ]")
	pos := buffer.Pos(0, 2)

	r, err := Pair(snap, pos, '[', ']', 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := cut(snap, r); got != "(foo) asd " {
		t.Errorf("i[ = %q", got)
	}

	r, err = Pair(snap, pos, '(', ')', 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := cut(snap, r); got != "foo" {
		t.Errorf("i( = %q", got)
	}
}

func TestPair(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		pos   buffer.Position
		count int
		inner bool
		want  string
	}{
		{"nested inner", "f(a, (b), c)", buffer.Pos(0, 3), 1, true, "a, (b), c"},
		{"nested count", "f(a, (b), c)", buffer.Pos(0, 6), 2, true, "a, (b), c"},
		{"on open", "x(ab)y", buffer.Pos(0, 1), 1, false, "(ab)"},
		{"on close", "x(ab)y", buffer.Pos(0, 4), 1, false, "(ab)"},
		{"empty", "f()", buffer.Pos(0, 1), 1, true, ""},
		{"multiline", "{\n  a\n}", buffer.Pos(1, 2), 1, true, "\n  a\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := buffer.NewSnapshot(tt.text)
			open, close := '(', ')'
			if tt.text[0] == '{' {
				open, close = '{', '}'
			}
			r, err := Pair(snap, tt.pos, open, close, tt.count, tt.inner)
			if err != nil {
				t.Fatalf("Pair error: %v", err)
			}
			if got := cut(snap, r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Pair(buffer.NewSnapshot("foo) bar"), buffer.Pos(0, 1), '(', ')', 1, true); !errors.Is(err, errs.ErrObjectNotFound) {
		t.Errorf("unenclosed error = %v", err)
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		line  string
		col   int
		inner bool
		want  string
	}{
		{"inside", `say "hi there" now`, 6, true, "hi there"},
		{"around trailing", `say "hi" now`, 5, false, `"hi" `},
		{"around leading", `say "hi"`, 5, false, ` "hi"`},
		{"before first", `x = 'a' + 'b'`, 0, true, "a"},
		{"escaped", `"a\"b"`, 1, true, `a\"b`},
		{"second pair", `"a" "b"`, 5, true, "b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := buffer.NewSnapshot(tt.line)
			q := '"'
			if tt.name == "before first" {
				q = '\''
			}
			r, err := Quote(snap, buffer.Pos(0, tt.col), q, tt.inner)
			if err != nil {
				t.Fatalf("Quote error: %v", err)
			}
			if got := cut(snap, r); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := Quote(buffer.NewSnapshot(`no "quote`), buffer.Pos(0, 5), '"', true); !errors.Is(err, errs.ErrObjectNotFound) {
		t.Errorf("single quote error = %v", err)
	}
}

func TestTags(t *testing.T) {
	snap := buffer.NewSnapshot("<div> foo bar</div> asd")

	r, err := Tags(snap, buffer.Pos(0, 7), 1, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := cut(snap, r); got != " foo bar" {
		t.Errorf("it = %q", got)
	}

	r, err = Tags(snap, buffer.Pos(0, 7), 1, false)
	if err != nil {
		t.Fatal(err)
	}
	if got := cut(snap, r); got != "<div> foo bar</div>" {
		t.Errorf("at = %q", got)
	}

	nested := buffer.NewSnapshot("<a><b>x</b><c></a>")
	r, err = Tags(nested, buffer.Pos(0, 6), 2, true)
	if err != nil {
		t.Fatal(err)
	}
	if got := cut(nested, r); got != "<b>x</b><c>" {
		t.Errorf("2it = %q", got)
	}

	for _, text := range []string{"<div> foo", "foo </div>", "<a></b>"} {
		if _, err := Tags(buffer.NewSnapshot(text), buffer.Pos(0, 2), 1, true); !errors.Is(err, errs.ErrObjectNotFound) {
			t.Errorf("%q: error = %v", text, err)
		}
	}
	if _, err := Tags(snap, buffer.Pos(0, 21), 1, true); !errors.Is(err, errs.ErrObjectNotFound) {
		t.Errorf("outside tags error = %v", err)
	}
}

func TestParagraphs(t *testing.T) {
	text := "a\nb\n\n\nc\nd\n\ne"
	snap := buffer.NewSnapshot(text)
	tests := []struct {
		name      string
		line      int
		count     int
		inner     bool
		wantStart int
		wantEnd   int
	}{
		{"ip", 1, 1, true, 0, 1},
		{"ip on blank", 2, 1, true, 2, 3},
		{"ap", 0, 1, false, 0, 3},
		{"ap last takes leading", 7, 1, false, 6, 7},
		{"ap on blank", 3, 1, false, 2, 5},
		{"2ip", 0, 2, true, 0, 3},
		{"2ap", 0, 2, false, 0, 6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Paragraphs(snap, buffer.Pos(tt.line, 0), tt.count, tt.inner)
			if err != nil {
				t.Fatal(err)
			}
			if !r.Linewise {
				t.Error("paragraph ranges are linewise")
			}
			if r.Start.Line != tt.wantStart || r.End.Line != tt.wantEnd {
				t.Errorf("lines %d-%d, want %d-%d", r.Start.Line, r.End.Line, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestFromKey(t *testing.T) {
	for r, want := range map[rune]Kind{'w': Word, 'b': Paren, ']': Bracket, 'B': Brace, 't': Tag, '`': BackQuote} {
		got, ok := FromKey(r)
		if !ok || got != want {
			t.Errorf("FromKey(%q) = %v, %v", r, got, ok)
		}
	}
	if _, ok := FromKey('z'); ok {
		t.Error("FromKey(z) should fail")
	}
}
