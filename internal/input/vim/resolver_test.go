package vim

import (
	"reflect"
	"testing"

	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/engine/textobject"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/quickjump"
)

var testOptions = Options{Leader: key.Rune('\\'), QuickJump: true}

// feed resolves keys one at a time, returning the last result and the
// number of keys consumed before it.
func feed(t *testing.T, m mode.Kind, keys string) (Result, int) {
	t.Helper()
	var p Pending
	seq := key.MustParseSequence(keys)
	for i, ev := range seq {
		res := Resolve(testOptions, p, m, ev)
		if res.Status != StatusNeedMore {
			return res, i + 1
		}
		p = res.Pending
	}
	return Result{Status: StatusNeedMore, Pending: p}, len(seq)
}

func mv(k motion.Kind) motion.Motion {
	return motion.Motion{Kind: k}
}

func TestResolveNormal(t *testing.T) {
	tests := []struct {
		keys string
		want Action
	}{
		{"w", Move{Motion: mv(motion.WordForward)}},
		{"3w", Move{Motion: mv(motion.WordForward), Count: 3, HasCount: true}},
		{"0", Move{Motion: mv(motion.LineStart)}},
		{"10j", Move{Motion: mv(motion.Down), Count: 10, HasCount: true}},
		{"gg", Move{Motion: mv(motion.FirstLine)}},
		{"ge", Move{Motion: mv(motion.WordEndBackward)}},
		{"<Left>", Move{Motion: mv(motion.Left)}},
		{"fx", Move{Motion: motion.Motion{Kind: motion.FindForward, Char: 'x'}}},
		{"2T(", Move{Motion: motion.Motion{Kind: motion.TillBackward, Char: '('}, Count: 2, HasCount: true}},
		{";", Move{Motion: mv(motion.RepeatFind)}},
		{"dw", Operate{Op: OpDelete, Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"2d3w", Operate{Op: OpDelete, Count: 6, HasCount: true, Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"d0", Operate{Op: OpDelete, Target: MotionTarget{Motion: mv(motion.LineStart)}}},
		{"d10l", Operate{Op: OpDelete, Count: 10, HasCount: true, Target: MotionTarget{Motion: mv(motion.Right)}}},
		{"dd", Operate{Op: OpDelete, Target: LineTarget{}}},
		{"3yy", Operate{Op: OpYank, Count: 3, HasCount: true, Target: LineTarget{}}},
		{">>", Operate{Op: OpIndentRight, Target: LineTarget{}}},
		{"\"ayw", Operate{Op: OpYank, Register: 'a', Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"\"A2dd", Operate{Op: OpDelete, Register: 'A', Count: 2, HasCount: true, Target: LineTarget{}}},
		{"2\"a3dw", Operate{Op: OpDelete, Register: 'a', Count: 6, HasCount: true, Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"2\"a3d2w", Operate{Op: OpDelete, Register: 'a', Count: 12, HasCount: true, Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"12\"ap", Put{Register: 'a', Count: 12}},
		{"ciw", Operate{Op: OpChange, Target: ObjectTarget{Kind: textobject.Word, Inner: true}}},
		{"da(", Operate{Op: OpDelete, Target: ObjectTarget{Kind: textobject.Paren}}},
		{"dt)", Operate{Op: OpDelete, Target: MotionTarget{Motion: motion.Motion{Kind: motion.TillForward, Char: ')'}}}},
		{"dgg", Operate{Op: OpDelete, Target: MotionTarget{Motion: mv(motion.FirstLine)}}},
		{"gUw", Operate{Op: OpUppercase, Target: MotionTarget{Motion: mv(motion.WordForward)}}},
		{"gUU", Operate{Op: OpUppercase, Target: LineTarget{}}},
		{"gugu", Operate{Op: OpLowercase, Target: LineTarget{}}},
		{"g~~", Operate{Op: OpToggleCase, Target: LineTarget{}}},
		{"x", Operate{Op: OpDelete, Target: MotionTarget{Motion: mv(motion.Right)}}},
		{"3X", Operate{Op: OpDelete, Count: 3, HasCount: true, Target: MotionTarget{Motion: mv(motion.Left)}}},
		{"D", Operate{Op: OpDelete, Target: MotionTarget{Motion: mv(motion.LineEnd)}}},
		{"S", Operate{Op: OpChange, Target: LineTarget{}}},
		{"~", Operate{Op: OpToggleCase, Target: MotionTarget{Motion: mv(motion.Right)}, Advance: true}},
		{"i", EnterInsert{Kind: InsertBefore}},
		{"3a", EnterInsert{Kind: InsertAfter, Count: 3}},
		{"O", EnterInsert{Kind: OpenAbove}},
		{"R", EnterReplace{}},
		{"v", EnterVisual{Kind: mode.Visual}},
		{"<C-v>", EnterVisual{Kind: mode.VisualBlock}},
		{"rx", ReplaceChar{Char: 'x'}},
		{"r<CR>", ReplaceChar{Char: '\n'}},
		{"\"ap", Put{Register: 'a'}},
		{"2P", Put{Before: true, Count: 2}},
		{"u", Undo{}},
		{"<C-r>", Redo{}},
		{"J", JoinLines{}},
		{":", EnterCommandLine{Prefix: ':'}},
		{"d/", EnterCommandLine{Prefix: '/', Op: OpDelete}},
		{"<C-A-Down>", AddCursor{}},
		{"2<C-A-Up>", AddCursor{Above: true, Count: 2}},
		{"gb", ExtendCursors{}},
		{"<Esc>", Cancel{}},
		{"d<Esc>", Cancel{}},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			res, n := feed(t, mode.Normal, tt.keys)
			if res.Status != StatusComplete {
				t.Fatalf("status = %v after %d keys, want complete", res.Status, n)
			}
			if n != len(key.MustParseSequence(tt.keys)) {
				t.Errorf("completed after %d keys", n)
			}
			if !reflect.DeepEqual(res.Action, tt.want) {
				t.Errorf("action = %s, want %s", Describe(res.Action), Describe(tt.want))
			}
		})
	}
}

func TestResolveInvalid(t *testing.T) {
	tests := []string{"Q", "dQ", "gQ", "\"%", "diq", "cgb", "dgu", "\\x", "\\\\Q", "<F5>"}
	for _, keys := range tests {
		t.Run(keys, func(t *testing.T) {
			res, _ := feed(t, mode.Normal, keys)
			if res.Status != StatusInvalid {
				t.Errorf("status = %v, want invalid (%s)", res.Status, Describe(res.Action))
			}
		})
	}
}

func TestResolveVisual(t *testing.T) {
	tests := []struct {
		keys string
		want Action
	}{
		{"d", Operate{Op: OpDelete, Target: SelectionTarget{}}},
		{"\"by", Operate{Op: OpYank, Register: 'b', Target: SelectionTarget{}}},
		{"D", Operate{Op: OpDelete, Target: SelectionTarget{Linewise: true}}},
		{"U", Operate{Op: OpUppercase, Target: SelectionTarget{}}},
		{"gu", Operate{Op: OpLowercase, Target: SelectionTarget{}}},
		{"iw", SelectObject{Kind: textobject.Word, Inner: true}},
		{"2ab", SelectObject{Kind: textobject.Paren, Count: 2}},
		{"o", SwapSelectionEnds{}},
		{"A", EnterInsert{Kind: InsertLineEnd}},
		{"I", EnterInsert{Kind: InsertLineStart}},
		{"V", EnterVisual{Kind: mode.VisualLine}},
		{"e", Move{Motion: mv(motion.WordEnd)}},
		{"rx", ReplaceChar{Char: 'x'}},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			res, _ := feed(t, mode.Visual, tt.keys)
			if res.Status != StatusComplete {
				t.Fatalf("status = %v", res.Status)
			}
			if !reflect.DeepEqual(res.Action, tt.want) {
				t.Errorf("action = %s, want %s", Describe(res.Action), Describe(tt.want))
			}
		})
	}
}

func TestResolveInsert(t *testing.T) {
	tests := []struct {
		m    mode.Kind
		keys string
		want Action
	}{
		{mode.Insert, "x", InsertText{Text: "x"}},
		{mode.Insert, "<CR>", InsertNewline{}},
		{mode.Insert, "<BS>", DeleteBackward{}},
		{mode.Insert, "<Del>", DeleteForward{}},
		{mode.Insert, "<Tab>", InsertTab{}},
		{mode.Insert, "<Up>", Move{Motion: mv(motion.Up)}},
		{mode.Insert, "<C-c>", Cancel{}},
		{mode.Replace, "y", ReplaceText{Text: "y"}},
		{mode.Replace, "<BS>", Move{Motion: mv(motion.Left)}},
		{mode.CommandLine, "q", CommandLineInput{Text: "q"}},
		{mode.CommandLine, "<CR>", SubmitCommandLine{}},
		{mode.CommandLine, "<BS>", CommandLineBackspace{}},
	}
	for _, tt := range tests {
		t.Run(tt.m.String()+"/"+tt.keys, func(t *testing.T) {
			res, _ := feed(t, tt.m, tt.keys)
			if res.Status != StatusComplete {
				t.Fatalf("status = %v", res.Status)
			}
			if !reflect.DeepEqual(res.Action, tt.want) {
				t.Errorf("action = %s, want %s", Describe(res.Action), Describe(tt.want))
			}
		})
	}
}

func TestResolveQuickJump(t *testing.T) {
	tests := []struct {
		keys string
		want QuickJump
	}{
		{"\\\\w", QuickJump{Trigger: quickjump.WordStart}},
		{"\\\\sa", QuickJump{Trigger: quickjump.Search, Chars: "a"}},
		{"\\\\2fab", QuickJump{Trigger: quickjump.Find2Forward, Chars: "ab"}},
		{"\\\\ge", QuickJump{Trigger: quickjump.WordEndBackward}},
		{"\\\\\\bdjk", QuickJump{Trigger: quickjump.LineBoth}},
		{"\\\\\\bdtx", QuickJump{Trigger: quickjump.TillBoth, Chars: "x"}},
		{"\\\\/ab<BS>c<CR>", QuickJump{Trigger: quickjump.SearchN, Chars: "ac"}},
		{"d\\\\j", QuickJump{Trigger: quickjump.LineDown, Op: OpDelete}},
		{"\"ay\\\\e", QuickJump{Trigger: quickjump.WordEnd, Op: OpYank, Register: 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			res, _ := feed(t, mode.Normal, tt.keys)
			if res.Status != StatusComplete {
				t.Fatalf("status = %v", res.Status)
			}
			if !reflect.DeepEqual(res.Action, tt.want) {
				t.Errorf("action = %s, want %s", Describe(res.Action), Describe(tt.want))
			}
		})
	}
}

func TestResolveQuickJumpDisabled(t *testing.T) {
	opts := Options{Leader: key.Rune(' ')}
	res := Resolve(opts, Pending{}, mode.Normal, key.Rune(' '))
	want := Move{Motion: mv(motion.SpaceRight)}
	if res.Status != StatusComplete || !reflect.DeepEqual(res.Action, want) {
		t.Errorf("got %v %s", res.Status, Describe(res.Action))
	}
}

func TestResolvePendingIsolation(t *testing.T) {
	p := Resolve(testOptions, Pending{}, mode.Normal, key.Rune('d')).Pending
	a := Resolve(testOptions, p, mode.Normal, key.Rune('2')).Pending
	b := Resolve(testOptions, p, mode.Normal, key.Rune('3')).Pending

	if got := a.Keys.String(); got != "d2" {
		t.Errorf("a keys = %q", got)
	}
	if got := b.Keys.String(); got != "d3" {
		t.Errorf("b keys = %q", got)
	}
	if p.Count2.Active {
		t.Error("resolving mutated the input pending state")
	}
	if !p.InOperator() || p.State != StateOperator {
		t.Errorf("pending = %+v", p)
	}
}

func TestCombineCounts(t *testing.T) {
	tests := []struct {
		a, b, want int
	}{
		{0, 0, 1},
		{2, 0, 2},
		{0, 3, 3},
		{2, 3, 6},
		{maxCount, 2, maxCount},
	}
	for _, tt := range tests {
		if got := CombineCounts(tt.a, tt.b); got != tt.want {
			t.Errorf("CombineCounts(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestCountSaturates(t *testing.T) {
	var c CountState
	for i := 0; i < 20; i++ {
		c.AccumulateDigit('9')
	}
	if c.Get() != maxCount {
		t.Errorf("count = %d", c.Get())
	}
	var z CountState
	if z.AccumulateDigit('0') {
		t.Error("leading zero accepted as count")
	}
}

func TestResolveMacro(t *testing.T) {
	tests := []struct {
		keys string
		want Action
	}{
		{"qa", RecordMacro{Register: 'a'}},
		{"qA", RecordMacro{Register: 'A'}},
		{"q\"", RecordMacro{Register: '"'}},
		{"@a", PlayMacro{Register: 'a'}},
		{"3@b", PlayMacro{Register: 'b', Count: 3}},
		{"@@", PlayMacro{Register: '@'}},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			res, _ := feed(t, mode.Normal, tt.keys)
			if res.Status != StatusComplete {
				t.Fatalf("status = %v", res.Status)
			}
			if !reflect.DeepEqual(res.Action, tt.want) {
				t.Errorf("action = %s, want %s", Describe(res.Action), Describe(tt.want))
			}
		})
	}

	for _, keys := range []string{"q@", "q<CR>", "@%", "dq"} {
		if res, _ := feed(t, mode.Normal, keys); res.Status == StatusComplete {
			t.Errorf("%s resolved to %s", keys, Describe(res.Action))
		}
	}
}

func TestResolveStopRecording(t *testing.T) {
	opts := testOptions
	opts.Recording = true
	for _, m := range []mode.Kind{mode.Normal, mode.Visual, mode.VisualLine} {
		res := Resolve(opts, Pending{}, m, key.Rune('q'))
		if _, ok := res.Action.(StopRecording); !ok {
			t.Errorf("q in %v while recording = %s", m, Describe(res.Action))
		}
	}
	if res := Resolve(testOptions, Pending{}, mode.Visual, key.Rune('q')); res.Status != StatusInvalid {
		t.Errorf("q in visual without recording = %v", res.Status)
	}
}
