package editor

import (
	"errors"
	"testing"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/indent"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/register"
)

var resolveOptions = vim.Options{Leader: key.Rune('\\'), QuickJump: true}

func newMachine(text string) (*Machine, *buffer.Memory) {
	host := buffer.NewMemory(text)
	return New(host, register.NewStore(nil), DefaultOptions()), host
}

// run resolves keys the way a session does and applies every complete
// action, returning the first error.
func run(t *testing.T, m *Machine, keys string) error {
	t.Helper()
	var (
		p     vim.Pending
		first error
	)
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for _, ev := range key.MustParseSequence(keys) {
		if m.Jumping() && !ev.IsCancel() {
			keep(m.TypeLabel(ev.Rune))
			continue
		}
		res := vim.Resolve(resolveOptions, p, m.Mode(), ev)
		switch res.Status {
		case vim.StatusNeedMore:
			p = res.Pending
			m.SetOperatorPending(p.InOperator())
		case vim.StatusComplete:
			p = vim.Pending{}
			keep(m.Apply(res.Action))
		default:
			p = vim.Pending{}
			m.SetOperatorPending(false)
		}
	}
	return first
}

func mustRun(t *testing.T, m *Machine, keys string) {
	t.Helper()
	if err := run(t, m, keys); err != nil {
		t.Fatalf("%q: %v", keys, err)
	}
}

func heads(m *Machine) []buffer.Position {
	var out []buffer.Position
	for _, c := range m.Cursors() {
		out = append(out, c.Head)
	}
	return out
}

func TestMachineEdits(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   buffer.Position
		keys string
		want string
		head buffer.Position
	}{
		{"x", "abc", buffer.Pos(0, 1), "x", "ac", buffer.Pos(0, 1)},
		{"x at end", "abc", buffer.Pos(0, 2), "x", "ab", buffer.Pos(0, 1)},
		{"dw", "foo bar baz", buffer.Pos(0, 0), "dw", "bar baz", buffer.Pos(0, 0)},
		{"2dw", "foo bar baz", buffer.Pos(0, 0), "2dw", "baz", buffer.Pos(0, 0)},
		{"dw at line end", "foo\nbar", buffer.Pos(0, 0), "dw", "\nbar", buffer.Pos(0, 0)},
		{"de", "foo bar", buffer.Pos(0, 0), "de", " bar", buffer.Pos(0, 0)},
		{"d$", "foo bar", buffer.Pos(0, 4), "D", "foo ", buffer.Pos(0, 3)},
		{"dd middle", "a\nb\nc", buffer.Pos(1, 0), "dd", "a\nc", buffer.Pos(1, 0)},
		{"dd last", "a\nb\nc", buffer.Pos(2, 0), "dd", "a\nb", buffer.Pos(1, 0)},
		{"dd only", "a", buffer.Pos(0, 0), "dd", "", buffer.Pos(0, 0)},
		{"2dd", "a\nb\nc", buffer.Pos(0, 0), "2dd", "c", buffer.Pos(0, 0)},
		{"dj", "a\nb\nc", buffer.Pos(0, 0), "dj", "c", buffer.Pos(0, 0)},
		{"dfx", "abxcx", buffer.Pos(0, 0), "dfx", "cx", buffer.Pos(0, 0)},
		{"dtx", "abxcx", buffer.Pos(0, 0), "dtx", "xcx", buffer.Pos(0, 0)},
		{"d;", "axbxc", buffer.Pos(0, 0), "fxd;", "ac", buffer.Pos(0, 1)},
		{"diw", "foo bar", buffer.Pos(0, 5), "diw", "foo ", buffer.Pos(0, 3)},
		{"daw", "foo bar baz", buffer.Pos(0, 5), "daw", "foo baz", buffer.Pos(0, 4)},
		{"di(", "f(a, b)", buffer.Pos(0, 3), "di(", "f()", buffer.Pos(0, 2)},
		{"da\"", `x "y" z`, buffer.Pos(0, 3), `da"`, "x z", buffer.Pos(0, 2)},
		{"di[ nested", "[(foo) asd ]", buffer.Pos(0, 2), "di[", "[]", buffer.Pos(0, 1)},
		{"cw", "foo bar", buffer.Pos(0, 0), "cwxy<Esc>", "xy bar", buffer.Pos(0, 1)},
		{"cw last char", "foo bar", buffer.Pos(0, 2), "cwX<Esc>", "foX bar", buffer.Pos(0, 2)},
		{"cc keeps indent", "  foo\nbar", buffer.Pos(0, 3), "ccx<Esc>", "  x\nbar", buffer.Pos(0, 2)},
		{"C", "foo bar", buffer.Pos(0, 4), "Cz<Esc>", "foo z", buffer.Pos(0, 4)},
		{"s", "abc", buffer.Pos(0, 1), "sX<Esc>", "aXc", buffer.Pos(0, 1)},
		{"C on empty line", "a\n\nb", buffer.Pos(1, 0), "Cz<Esc>", "a\nz\nb", buffer.Pos(1, 0)},
		{"cw on empty line", "a\n\nb", buffer.Pos(1, 0), "cwz<Esc>", "a\nz\nb", buffer.Pos(1, 0)},
		{"s on empty line", "a\n\nb", buffer.Pos(1, 0), "sz<Esc>", "a\nz\nb", buffer.Pos(1, 0)},
		{"cc on empty line", "a\n\nb", buffer.Pos(1, 0), "ccz<Esc>", "a\nz\nb", buffer.Pos(1, 0)},
		{"r", "abc", buffer.Pos(0, 1), "rX", "aXc", buffer.Pos(0, 1)},
		{"3r", "abcd", buffer.Pos(0, 0), "3rX", "XXXd", buffer.Pos(0, 2)},
		{"r past end", "ab", buffer.Pos(0, 1), "3rX", "ab", buffer.Pos(0, 1)},
		{"r enter", "ab", buffer.Pos(0, 0), "r<CR>", "\nb", buffer.Pos(1, 0)},
		{"~", "aBc", buffer.Pos(0, 0), "3~", "AbC", buffer.Pos(0, 2)},
		{"gUiw", "foo bar", buffer.Pos(0, 1), "gUiw", "FOO bar", buffer.Pos(0, 0)},
		{"guu", "FOO BAR", buffer.Pos(0, 3), "guu", "foo bar", buffer.Pos(0, 0)},
		{">>", "foo", buffer.Pos(0, 0), ">>", "    foo", buffer.Pos(0, 4)},
		{"<<", "      foo", buffer.Pos(0, 0), "<<", "    foo", buffer.Pos(0, 4)},
		{"J", "foo\n   bar", buffer.Pos(0, 0), "J", "foo bar", buffer.Pos(0, 3)},
		{"J paren", "f(\n)", buffer.Pos(0, 0), "J", "f()", buffer.Pos(0, 2)},
		{"3J", "a\nb\nc\nd", buffer.Pos(0, 0), "3J", "a b c\nd", buffer.Pos(0, 3)},
		{"i", "bc", buffer.Pos(0, 0), "ia<Esc>", "abc", buffer.Pos(0, 0)},
		{"a", "ac", buffer.Pos(0, 0), "ab<Esc>", "abc", buffer.Pos(0, 1)},
		{"A", "ab", buffer.Pos(0, 0), "Ac<Esc>", "abc", buffer.Pos(0, 2)},
		{"I", "  b", buffer.Pos(0, 2), "Ia<Esc>", "  ab", buffer.Pos(0, 2)},
		{"3ix", "", buffer.Pos(0, 0), "3ix<Esc>", "xxx", buffer.Pos(0, 2)},
		{"insert backspace", "ab", buffer.Pos(0, 0), "Axy<BS><Esc>", "abx", buffer.Pos(0, 2)},
		{"insert newline indents", "  ab", buffer.Pos(0, 0), "A<CR>c<Esc>", "  ab\n  c", buffer.Pos(1, 2)},
		{"insert tab", "ab", buffer.Pos(0, 0), "i<Tab><Esc>", "    ab", buffer.Pos(0, 3)},
		{"R", "abcd", buffer.Pos(0, 1), "Rxyz<Esc>", "axyz", buffer.Pos(0, 3)},
		{"R past end", "ab", buffer.Pos(0, 1), "Rxyz<Esc>", "axyz", buffer.Pos(0, 3)},
		{"yw P", "foo bar", buffer.Pos(0, 0), "ywP", "foo foo bar", buffer.Pos(0, 3)},
		{"yiw $p", "foo bar", buffer.Pos(0, 0), "yiw$p", "foo barfoo", buffer.Pos(0, 9)},
		{"dd p", "a\nb\nc", buffer.Pos(0, 0), "ddp", "b\na\nc", buffer.Pos(1, 0)},
		{"yy 2P", "a\nb", buffer.Pos(1, 0), "yy2P", "a\nb\nb\nb", buffer.Pos(1, 0)},
		{"xp", "ab", buffer.Pos(0, 0), "xp", "ba", buffer.Pos(0, 1)},
		{"named register", "foo bar", buffer.Pos(0, 0), "\"ayiww\"aP", "foo foobar", buffer.Pos(0, 6)},
		{"black hole", "foo bar", buffer.Pos(0, 0), "yiww\"_dwp", "foo foo", buffer.Pos(0, 6)},
		{"u", "abc", buffer.Pos(0, 0), "xxu", "bc", buffer.Pos(0, 0)},
		{"redo", "abc", buffer.Pos(0, 0), "xu<C-r>", "bc", buffer.Pos(0, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newMachine(tt.text)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := host.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if m.Mode() != mode.Normal {
				t.Errorf("mode = %v, want Normal", m.Mode())
			}
			if got := m.Primary().Head; got != tt.head {
				t.Errorf("head = %v, want %v", got, tt.head)
			}
		})
	}
}

func TestMachineMotions(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   buffer.Position
		keys string
		want buffer.Position
	}{
		{"w", "foo bar", buffer.Pos(0, 0), "w", buffer.Pos(0, 4)},
		{"3l clamps", "abc", buffer.Pos(0, 0), "9l", buffer.Pos(0, 2)},
		{"j keeps column", "abc\nabc", buffer.Pos(0, 2), "j", buffer.Pos(1, 2)},
		{"G", "a\nb\nc", buffer.Pos(0, 0), "G", buffer.Pos(2, 0)},
		{"2G", "a\nb\nc", buffer.Pos(0, 0), "2G", buffer.Pos(1, 0)},
		{"gg", "a\n  b", buffer.Pos(1, 2), "gg", buffer.Pos(0, 0)},
		{"fx ;", "axbxc", buffer.Pos(0, 0), "fx;", buffer.Pos(0, 3)},
		{"Fx ;", "axbxc", buffer.Pos(0, 4), "Fx;", buffer.Pos(0, 1)},
		{"fx ; ,", "axbxc", buffer.Pos(0, 0), "fx;,", buffer.Pos(0, 1)},
		{"search", "a\n  b\nb", buffer.Pos(0, 0), "/b<CR>", buffer.Pos(1, 2)},
		{"search n", "a\n  b\nb", buffer.Pos(0, 0), "/b<CR>n", buffer.Pos(2, 0)},
		{"search backward", "b\nab", buffer.Pos(1, 1), "?a<CR>", buffer.Pos(1, 0)},
		{"ex line", "a\n  b\nc", buffer.Pos(0, 0), ":2<CR>", buffer.Pos(1, 2)},
		{"ex line clamps", "a\nb", buffer.Pos(0, 0), ":99<CR>", buffer.Pos(1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newMachine(tt.text)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := m.Primary().Head; got != tt.want {
				t.Errorf("head = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMachineOperatorPendingMode(t *testing.T) {
	m, _ := newMachine("foo")
	var modes []mode.Kind
	m.OnModeChange(func(from, to mode.Kind) { modes = append(modes, to) })
	mustRun(t, m, "d")
	if m.Mode() != mode.OperatorPending {
		t.Fatalf("mode after d = %v", m.Mode())
	}
	mustRun(t, m, "<Esc>")
	if m.Mode() != mode.Normal {
		t.Fatalf("mode after cancel = %v", m.Mode())
	}
	if len(modes) != 2 {
		t.Errorf("mode changes = %v", modes)
	}
}

func TestMachineVisual(t *testing.T) {
	tests := []struct {
		name string
		text string
		at   buffer.Position
		keys string
		want string
	}{
		{"vd", "abcdef", buffer.Pos(0, 1), "vlld", "aef"},
		{"v backwards", "abcdef", buffer.Pos(0, 3), "vhhd", "aef"},
		{"Vd", "a\nb\nc", buffer.Pos(0, 0), "Vjd", "c"},
		{"viw", "foo bar", buffer.Pos(0, 5), "viwd", "foo "},
		{"vap linewise", "a\nb\n\nc", buffer.Pos(0, 0), "vapd", "c"},
		{"v~", "abC", buffer.Pos(0, 0), "v$~", "ABc"},
		{"vU", "abc", buffer.Pos(0, 0), "vlU", "ABc"},
		{"vr", "abc\nde", buffer.Pos(0, 1), "vjrx", "axx\nxx"},
		{"vJ", "a\nb\nc", buffer.Pos(0, 0), "VjJ", "a b\nc"},
		{"v>", "a\nb", buffer.Pos(0, 0), "Vj>", "    a\n    b"},
		{"block delete", "abcd\nefgh\nijkl", buffer.Pos(0, 1), "<C-v>jjld", "ad\neh\nil"},
		{"block change", "abcd\nefgh", buffer.Pos(0, 1), "<C-v>jlcX<Esc>", "aXd\neXh"},
		{"vy P", "foo bar", buffer.Pos(0, 0), "veyP", "foofoo bar"},
		{"vp swaps", "foo bar", buffer.Pos(0, 0), "yiwwvep", "foo foo"},
		{"vo", "abcdef", buffer.Pos(0, 2), "vlohd", "aef"},
		{"v:d", "a\nb\nc", buffer.Pos(0, 0), "vj:d<CR>", "c"},
		{"v/", "line 1", buffer.Pos(0, 0), "v/e<CR>d", " 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newMachine(tt.text)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := host.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
			if m.Mode().IsVisual() {
				t.Errorf("still in %v", m.Mode())
			}
		})
	}
}

func TestMachineVisualSwitching(t *testing.T) {
	m, _ := newMachine("abc\ndef")
	mustRun(t, m, "vl")
	if m.Mode() != mode.Visual {
		t.Fatalf("mode = %v", m.Mode())
	}
	mustRun(t, m, "V")
	if m.Mode() != mode.VisualLine {
		t.Fatalf("mode = %v", m.Mode())
	}
	if c := m.Primary(); !c.Selecting || c.Anchor != buffer.Pos(0, 0) {
		t.Errorf("selection lost: %v", c)
	}
	mustRun(t, m, "V")
	if m.Mode() != mode.Normal || m.Primary().Selecting {
		t.Errorf("V in VisualLine: mode %v cursor %v", m.Mode(), m.Primary())
	}
}

func TestMachineOpenLine(t *testing.T) {
	spaces := indent.Options{TabWidth: 4, ExpandTab: true}
	tabs := indent.Options{TabWidth: 4, ExpandTab: false}
	tests := []struct {
		name string
		opts indent.Options
		text string
		at   buffer.Position
		keys string
		want string
	}{
		{"o tab to spaces", spaces, "\tfoo", buffer.Pos(0, 0), "oa<Esc>", "\tfoo\n    a"},
		{"o repeated no drift", spaces, "\tfoo", buffer.Pos(0, 0), "oa<Esc>ob<Esc>", "\tfoo\n    a\n    b"},
		{"o spaces to tabs", tabs, "    foo", buffer.Pos(0, 0), "oa<Esc>", "    foo\n\ta"},
		{"O top", spaces, "  foo", buffer.Pos(0, 0), "Ox<Esc>", "  x\n  foo"},
		{"O repeated no drift", tabs, "\t\tfoo", buffer.Pos(0, 0), "Oa<Esc>Ob<Esc>", "\t\tb\n\t\ta\n\t\tfoo"},
		{"3o", spaces, "\tfoo", buffer.Pos(0, 0), "3oa<Esc>", "\tfoo\n    a\n    a\n    a"},
		{"o mixed", spaces, " \tfoo", buffer.Pos(0, 0), "ox<Esc>", " \tfoo\n    x"},
		{"o uses cursor line", spaces, "a\n  b", buffer.Pos(1, 0), "oc<Esc>", "a\n  b\n  c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := buffer.NewMemory(tt.text)
			opts := DefaultOptions()
			opts.Indent = tt.opts
			m := New(host, nil, opts)
			m.SetCursors(cursor.At(tt.at))
			mustRun(t, m, tt.keys)
			if got := host.Text(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMachineCancel(t *testing.T) {
	m, _ := newMachine("ab\ncd\nef")
	m.SetCursors(cursor.At(buffer.Pos(1, 0)), cursor.At(buffer.Pos(0, 0)), cursor.At(buffer.Pos(2, 0)))
	mustRun(t, m, "v<Esc>")
	if n := len(m.Cursors()); n != 3 {
		t.Fatalf("Visual cancel kept %d cursors, want 3", n)
	}
	mustRun(t, m, "<Esc>")
	got := heads(m)
	if len(got) != 1 || got[0] != buffer.Pos(1, 0) {
		t.Errorf("Normal cancel left %v, want the primary only", got)
	}
}

func TestMachineHostError(t *testing.T) {
	m, host := newMachine("abc")
	m.SetCursors(cursor.At(buffer.Pos(0, 1)))
	host.SetReadOnly(true)

	err := run(t, m, "x")
	var he *errs.HostEditError
	if !errors.As(err, &he) {
		t.Fatalf("err = %v, want HostEditError", err)
	}
	if !errors.Is(err, errs.ErrReadOnly) || !errors.Is(err, errs.ErrHostEdit) {
		t.Errorf("err = %v does not match both sentinels", err)
	}
	if host.Text() != "abc" || m.Primary().Head != buffer.Pos(0, 1) {
		t.Errorf("state changed: %q at %v", host.Text(), m.Primary().Head)
	}
	if _, ok := m.Registers().Get('"'); ok {
		t.Error("failed delete filled a register")
	}
}

func TestMachineUnknownExCommand(t *testing.T) {
	m, _ := newMachine("abc")
	err := run(t, m, ":frob<CR>")
	if !errors.Is(err, errs.ErrGrammarInvalid) {
		t.Fatalf("err = %v", err)
	}
	if m.Mode() != mode.Normal {
		t.Errorf("mode = %v", m.Mode())
	}

	var ran string
	m.SetExec(func(cmd string) (bool, error) {
		ran = cmd
		return true, nil
	})
	mustRun(t, m, ":frob<CR>")
	if ran != "frob" {
		t.Errorf("exec got %q", ran)
	}
}

func TestMachineCommandLine(t *testing.T) {
	m, _ := newMachine("abc")
	mustRun(t, m, ":ab<BS>x")
	if got, ok := m.CommandLine(); !ok || got != ":ax" {
		t.Fatalf("command line = %q, %v", got, ok)
	}
	mustRun(t, m, "<BS><BS><BS>")
	if _, ok := m.CommandLine(); ok || m.Mode() != mode.Normal {
		t.Errorf("backspace on empty prompt left mode %v", m.Mode())
	}
}

func TestMachineSearchHighlight(t *testing.T) {
	m, _ := newMachine("foo\nfoo")
	mustRun(t, m, "/foo<CR>")
	if m.Highlight() == nil {
		t.Fatal("no highlight after search")
	}
	mustRun(t, m, ":noh<CR>")
	if m.Highlight() != nil {
		t.Error("highlight survived :noh")
	}
}

func TestMachineQuickJump(t *testing.T) {
	tests := []struct {
		name string
		text string
		keys string
		want buffer.Position
		doc  string
	}{
		{"search", "abcdabcd abcd", `\\sak`, buffer.Pos(0, 9), "abcdabcd abcd"},
		{"single target", "abcdx", `\\sx`, buffer.Pos(0, 4), "abcdx"},
		{"word start", "foo bar baz", `\\wh`, buffer.Pos(0, 4), "foo bar baz"},
		{"line down", "a\n  b\nc", `\\jh`, buffer.Pos(1, 2), "a\n  b\nc"},
		{"operator", "abcdabcd abcd", `d\\fch`, buffer.Pos(0, 0), "dabcd abcd"},
		{"bad label", "abcdabcd abcd", `\\saq`, buffer.Pos(0, 0), "abcdabcd abcd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, host := newMachine(tt.text)
			mustRun(t, m, tt.keys)
			if m.Jumping() {
				t.Fatal("overlay still active")
			}
			if got := m.Primary().Head; got != tt.want {
				t.Errorf("head = %v, want %v", got, tt.want)
			}
			if got := host.Text(); got != tt.doc {
				t.Errorf("text = %q, want %q", got, tt.doc)
			}
		})
	}
}

func TestMachineQuickJumpLabels(t *testing.T) {
	m, _ := newMachine("abcdabcd abcd")
	mustRun(t, m, `\\sa`)
	labels := m.Labels()
	if len(labels) != 2 || labels[0].Pos != buffer.Pos(0, 4) || labels[0].Label != "h" {
		t.Fatalf("labels = %v", labels)
	}
	mustRun(t, m, "<Esc>")
	if m.Jumping() || m.Primary().Head != buffer.Pos(0, 0) {
		t.Errorf("cancel did not abort the overlay")
	}
}

func TestMachineQuickJumpCancelInVisual(t *testing.T) {
	m, _ := newMachine("abcdabcd abcd")
	mustRun(t, m, `v\\sa`)
	if !m.Jumping() {
		t.Fatal("overlay not active")
	}
	mustRun(t, m, "<Esc>")
	if m.Jumping() {
		t.Error("overlay still active")
	}
	if m.Mode() != mode.Normal {
		t.Errorf("mode = %v, want Normal", m.Mode())
	}
}

func TestMapOffset(t *testing.T) {
	changes := []change{
		{start: 2, end: 4, text: "xyz"},
		{start: 6, end: 6, text: "ab"},
	}
	tests := []struct {
		p    place
		want int
	}{
		{at(0), 0},
		{at(2), 2},
		{place{off: 2, after: true}, 5},
		{at(3), 2},
		{at(4), 5},
		{at(6), 7},
		{place{off: 6, after: true}, 9},
		{at(8), 11},
		{place{off: 6, delta: 1}, 8},
	}
	for _, tt := range tests {
		if got := mapOffset(changes, tt.p); got != tt.want {
			t.Errorf("mapOffset(%+v) = %d, want %d", tt.p, got, tt.want)
		}
	}
}
