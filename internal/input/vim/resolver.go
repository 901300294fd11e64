package vim

import (
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/engine/textobject"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/macro"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/quickjump"
)

// Status is the outcome of resolving one key.
type Status uint8

const (
	// StatusNeedMore means the key was accepted and more are required.
	StatusNeedMore Status = iota

	// StatusComplete means an Action was produced.
	StatusComplete

	// StatusInvalid means the keys do not form a command.
	StatusInvalid
)

func (s Status) String() string {
	switch s {
	case StatusNeedMore:
		return "need-more"
	case StatusComplete:
		return "complete"
	case StatusInvalid:
		return "invalid"
	}
	return "unknown"
}

// State is the grammar position of a pending command.
type State uint8

const (
	StateInitial State = iota
	StateCount
	StateRegister
	StateOperator
	StateOperatorCount
	StateGPrefix
	StateTextObject
	StateCharSearch
	StateReplaceChar
	StateLeader
	StateTrigger
	StateTriggerChars
	StateMacroRecord
	StateMacroPlay
)

var stateNames = [...]string{
	"initial", "count", "register", "operator", "operatorCount", "gPrefix",
	"textObject", "charSearch", "replaceChar", "leader", "trigger", "triggerChars",
	"macroRecord", "macroPlay",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Pending is the partially typed command carried between keystrokes. The
// zero value is an empty command.
type Pending struct {
	State    State
	Count1   CountState
	Count2   CountState
	// RegCount is a count typed between the register and the command.
	RegCount CountState
	Register rune
	Operator Operator
	Inner    bool
	Find     motion.Kind

	// Quick-jump trigger progress.
	Leaders     int
	TriggerKeys string
	Trigger     quickjump.Trigger
	Chars       []rune

	// Keys typed so far, for display.
	Keys key.Sequence
}

// IsZero reports whether nothing is pending.
func (p Pending) IsZero() bool {
	return len(p.Keys) == 0
}

// Display renders the typed keys.
func (p Pending) Display() string {
	return p.Keys.String()
}

// InOperator reports whether an operator awaits its motion. The editor
// shows this as OperatorPending mode.
func (p Pending) InOperator() bool {
	return p.Operator != OpNone
}

func (p Pending) count() (int, bool) {
	if !p.Count1.Active && !p.Count2.Active && !p.RegCount.Active {
		return 0, false
	}
	n := CombineCounts(p.Count1.Get(), p.RegCount.Get())
	return CombineCounts(n, p.Count2.Get()), true
}

// Options configure resolution.
type Options struct {
	// Leader is the configured <leader> key.
	Leader key.Event
	// QuickJump enables the <leader><leader> triggers.
	QuickJump bool
	// Recording makes q stop the macro recording.
	Recording bool
}

// Result is the outcome of Resolve.
type Result struct {
	Status  Status
	Action  Action
	Pending Pending
}

func complete(a Action) Result {
	return Result{Status: StatusComplete, Action: a}
}

func invalid() Result {
	return Result{Status: StatusInvalid}
}

// Resolve feeds one key to the grammar for mode m. It never mutates p.
func Resolve(opts Options, p Pending, m mode.Kind, ev key.Event) Result {
	if ev.IsCancel() {
		return complete(Cancel{})
	}
	switch m {
	case mode.Insert:
		return insertKey(ev, false)
	case mode.Replace:
		return insertKey(ev, true)
	case mode.CommandLine:
		return commandLineKey(ev)
	}
	r := resolver{opts: opts, p: p, visual: m.IsVisual()}
	r.p.Keys = append(p.Keys[:len(p.Keys):len(p.Keys)], ev)
	r.p.Chars = p.Chars[:len(p.Chars):len(p.Chars)]
	return r.step(ev)
}

func insertKey(ev key.Event, replace bool) Result {
	if ev.IsChar() {
		if replace {
			return complete(ReplaceText{Text: ev.Text()})
		}
		return complete(InsertText{Text: ev.Text()})
	}
	if ev.Modifiers != key.ModNone {
		return invalid()
	}
	switch ev.Key {
	case key.KeyEnter:
		return complete(InsertNewline{})
	case key.KeyTab:
		return complete(InsertTab{})
	case key.KeyBackspace:
		if replace {
			return complete(Move{Motion: motion.Motion{Kind: motion.Left}})
		}
		return complete(DeleteBackward{})
	case key.KeyDelete:
		return complete(DeleteForward{})
	}
	if m, ok := specialMotion(ev); ok {
		return complete(Move{Motion: m})
	}
	return invalid()
}

func commandLineKey(ev key.Event) Result {
	switch {
	case ev.IsChar():
		return complete(CommandLineInput{Text: ev.Text()})
	case ev == key.Enter:
		return complete(SubmitCommandLine{})
	case ev == key.Special(key.KeyBackspace, key.ModNone):
		return complete(CommandLineBackspace{})
	}
	return invalid()
}

// specialMotion maps non-character keys to motions.
func specialMotion(ev key.Event) (motion.Motion, bool) {
	if ev.Modifiers != key.ModNone {
		return motion.Motion{}, false
	}
	switch ev.Key {
	case key.KeyLeft:
		return motion.Motion{Kind: motion.Left}, true
	case key.KeyRight:
		return motion.Motion{Kind: motion.Right}, true
	case key.KeyUp:
		return motion.Motion{Kind: motion.Up}, true
	case key.KeyDown:
		return motion.Motion{Kind: motion.Down}, true
	case key.KeyHome:
		return motion.Motion{Kind: motion.LineStart}, true
	case key.KeyEnd:
		return motion.Motion{Kind: motion.LineEnd}, true
	case key.KeyBackspace:
		return motion.Motion{Kind: motion.BackspaceLeft}, true
	}
	return motion.Motion{}, false
}

var runeMotions = map[rune]motion.Kind{
	'h': motion.Left, 'l': motion.Right, 'j': motion.Down, 'k': motion.Up,
	' ': motion.SpaceRight,
	'w': motion.WordForward, 'b': motion.WordBackward, 'e': motion.WordEnd,
	'W': motion.BigWordForward, 'B': motion.BigWordBackward, 'E': motion.BigWordEnd,
	'0': motion.LineStart, '^': motion.FirstNonBlank, '$': motion.LineEnd,
	'G': motion.LastLine, '%': motion.MatchPair,
	'{': motion.ParagraphBackward, '}': motion.ParagraphForward,
	'n': motion.SearchNext, 'N': motion.SearchPrev,
	';': motion.RepeatFind, ',': motion.RepeatFindReverse,
}

var findMotions = map[rune]motion.Kind{
	'f': motion.FindForward, 'F': motion.FindBackward,
	't': motion.TillForward, 'T': motion.TillBackward,
}

func motionFor(ev key.Event) (motion.Motion, bool) {
	if ev.IsRune() && ev.Modifiers == key.ModNone {
		if k, ok := runeMotions[ev.Rune]; ok {
			return motion.Motion{Kind: k}, true
		}
		return motion.Motion{}, false
	}
	return specialMotion(ev)
}

// resolver holds one step of resolution.
type resolver struct {
	opts   Options
	p      Pending
	visual bool
}

func (r *resolver) needMore(s State) Result {
	r.p.State = s
	return Result{Status: StatusNeedMore, Pending: r.p}
}

func (r *resolver) isLeader(ev key.Event) bool {
	return r.opts.QuickJump && ev == r.opts.Leader
}

func (r *resolver) step(ev key.Event) Result {
	switch r.p.State {
	case StateInitial, StateCount:
		return r.initial(ev)
	case StateRegister:
		return r.register(ev)
	case StateOperator, StateOperatorCount:
		return r.operator(ev)
	case StateGPrefix:
		return r.gPrefix(ev)
	case StateTextObject:
		return r.textObject(ev)
	case StateCharSearch:
		return r.charSearch(ev)
	case StateReplaceChar:
		return r.replaceChar(ev)
	case StateLeader:
		return r.leader(ev)
	case StateTrigger:
		return r.trigger(ev)
	case StateTriggerChars:
		return r.triggerChars(ev)
	case StateMacroRecord, StateMacroPlay:
		return r.macro(ev)
	}
	return invalid()
}

// finish completes a motion: a plain Move, or an Operate when an operator
// is pending.
func (r *resolver) finish(m motion.Motion) Result {
	count, has := r.p.count()
	if r.p.Operator != OpNone {
		return complete(Operate{
			Op:       r.p.Operator,
			Register: r.p.Register,
			Count:    count,
			HasCount: has,
			Target:   MotionTarget{Motion: m},
		})
	}
	return complete(Move{Motion: m, Count: count, HasCount: has})
}

func (r *resolver) operate(op Operator, target Target) Result {
	count, has := r.p.count()
	return complete(Operate{Op: op, Register: r.p.Register, Count: count, HasCount: has, Target: target})
}

func (r *resolver) initial(ev key.Event) Result {
	if ev.IsRune() && ev.Modifiers == key.ModNone && IsCountDigit(ev.Rune) {
		c := &r.p.Count1
		if r.p.Register != 0 {
			c = &r.p.RegCount
		}
		if c.AccumulateDigit(ev.Rune) {
			return r.needMore(StateCount)
		}
	}
	if r.isLeader(ev) {
		r.p.Leaders = 1
		return r.needMore(StateLeader)
	}
	if m, ok := specialMotion(ev); ok {
		return r.finish(m)
	}
	if a, ok := r.special(ev); ok {
		return a
	}
	if !ev.IsRune() || ev.Modifiers != key.ModNone {
		return invalid()
	}

	ch := ev.Rune
	switch ch {
	case '"':
		return r.needMore(StateRegister)
	case 'g':
		return r.needMore(StateGPrefix)
	case 'r':
		return r.needMore(StateReplaceChar)
	}
	if op := operatorFor(ch); op != OpNone {
		if r.visual {
			return r.operate(op, SelectionTarget{})
		}
		r.p.Operator = op
		return r.needMore(StateOperator)
	}
	if k, ok := findMotions[ch]; ok {
		r.p.Find = k
		return r.needMore(StateCharSearch)
	}
	if m, ok := motionFor(ev); ok {
		return r.finish(m)
	}
	if r.visual {
		return r.visualCommand(ch)
	}
	return r.normalCommand(ch)
}

// special handles control-key commands.
func (r *resolver) special(ev key.Event) (Result, bool) {
	count, _ := r.p.count()
	switch {
	case ev.IsCtrl('r') && !r.visual:
		return complete(Redo{Count: count}), true
	case ev.IsCtrl('v'):
		return complete(EnterVisual{Kind: mode.VisualBlock}), true
	case ev == key.Special(key.KeyDown, key.ModCtrl|key.ModAlt):
		return complete(AddCursor{Count: count}), true
	case ev == key.Special(key.KeyUp, key.ModCtrl|key.ModAlt):
		return complete(AddCursor{Above: true, Count: count}), true
	}
	return Result{}, false
}

func (r *resolver) normalCommand(ch rune) Result {
	count, _ := r.p.count()
	switch ch {
	case 'i':
		return complete(EnterInsert{Kind: InsertBefore, Count: count})
	case 'a':
		return complete(EnterInsert{Kind: InsertAfter, Count: count})
	case 'I':
		return complete(EnterInsert{Kind: InsertLineStart, Count: count})
	case 'A':
		return complete(EnterInsert{Kind: InsertLineEnd, Count: count})
	case 'o':
		return complete(EnterInsert{Kind: OpenBelow, Count: count})
	case 'O':
		return complete(EnterInsert{Kind: OpenAbove, Count: count})
	case 'R':
		return complete(EnterReplace{Count: count})
	case 'v':
		return complete(EnterVisual{Kind: mode.Visual})
	case 'V':
		return complete(EnterVisual{Kind: mode.VisualLine})
	case 'x':
		return r.operate(OpDelete, MotionTarget{Motion: motion.Motion{Kind: motion.Right}})
	case 'X':
		return r.operate(OpDelete, MotionTarget{Motion: motion.Motion{Kind: motion.Left}})
	case 'D':
		return r.operate(OpDelete, MotionTarget{Motion: motion.Motion{Kind: motion.LineEnd}})
	case 'C':
		return r.operate(OpChange, MotionTarget{Motion: motion.Motion{Kind: motion.LineEnd}})
	case 's':
		return r.operate(OpChange, MotionTarget{Motion: motion.Motion{Kind: motion.Right}})
	case 'S':
		return r.operate(OpChange, LineTarget{})
	case 'Y':
		return r.operate(OpYank, LineTarget{})
	case '~':
		n, has := r.p.count()
		return complete(Operate{
			Op:       OpToggleCase,
			Register: r.p.Register,
			Count:    n,
			HasCount: has,
			Target:   MotionTarget{Motion: motion.Motion{Kind: motion.Right}},
			Advance:  true,
		})
	case 'p', 'P':
		return complete(Put{Register: r.p.Register, Before: ch == 'P', Count: count})
	case 'J':
		return complete(JoinLines{Count: count})
	case 'u':
		return complete(Undo{Count: count})
	case 'q':
		if r.opts.Recording {
			return complete(StopRecording{})
		}
		return r.needMore(StateMacroRecord)
	case '@':
		return r.needMore(StateMacroPlay)
	case ':', '/', '?':
		return complete(EnterCommandLine{Prefix: ch, Register: r.p.Register, Count: count})
	}
	return invalid()
}

// macro reads the register of q or @.
func (r *resolver) macro(ev key.Event) Result {
	if !ev.IsChar() {
		return invalid()
	}
	reg := ev.Rune
	if r.p.State == StateMacroPlay {
		if reg != '@' && !macro.IsValidRegister(reg) {
			return invalid()
		}
		count, _ := r.p.count()
		return complete(PlayMacro{Register: reg, Count: count})
	}
	if !macro.IsValidRegister(reg) {
		return invalid()
	}
	return complete(RecordMacro{Register: reg})
}

func (r *resolver) visualCommand(ch rune) Result {
	count, _ := r.p.count()
	switch ch {
	case 'i', 'a':
		r.p.Inner = ch == 'i'
		return r.needMore(StateTextObject)
	case 'o':
		return complete(SwapSelectionEnds{})
	case 'I':
		return complete(EnterInsert{Kind: InsertLineStart, Count: count})
	case 'A':
		return complete(EnterInsert{Kind: InsertLineEnd, Count: count})
	case 'v':
		return complete(EnterVisual{Kind: mode.Visual})
	case 'V':
		return complete(EnterVisual{Kind: mode.VisualLine})
	case 'x':
		return r.operate(OpDelete, SelectionTarget{})
	case 's':
		return r.operate(OpChange, SelectionTarget{})
	case 'D', 'X':
		return r.operate(OpDelete, SelectionTarget{Linewise: true})
	case 'C', 'S', 'R':
		return r.operate(OpChange, SelectionTarget{Linewise: true})
	case 'Y':
		return r.operate(OpYank, SelectionTarget{Linewise: true})
	case '~':
		return r.operate(OpToggleCase, SelectionTarget{})
	case 'u':
		return r.operate(OpLowercase, SelectionTarget{})
	case 'U':
		return r.operate(OpUppercase, SelectionTarget{})
	case 'J':
		return complete(JoinLines{Count: count})
	case 'p', 'P':
		return complete(Put{Register: r.p.Register, Before: ch == 'P', Count: count})
	case 'q':
		if r.opts.Recording {
			return complete(StopRecording{})
		}
	case ':', '/', '?':
		return complete(EnterCommandLine{Prefix: ch, Register: r.p.Register, Count: count})
	}
	return invalid()
}

func validRegister(ch rune) bool {
	switch {
	case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
		return true
	}
	switch ch {
	case '"', '-', '_', '+', '*':
		return true
	}
	return false
}

func (r *resolver) register(ev key.Event) Result {
	if !ev.IsChar() || !validRegister(ev.Rune) {
		return invalid()
	}
	r.p.Register = ev.Rune
	return r.needMore(StateInitial)
}

func (r *resolver) operator(ev key.Event) Result {
	if ev.IsRune() && ev.Modifiers == key.ModNone {
		ch := ev.Rune
		if IsCountDigit(ch) && r.p.Count2.AccumulateDigit(ch) {
			return r.needMore(StateOperatorCount)
		}
		// dd, cc, yy, >>, <<, guu, gUU, g~~
		if r.p.Operator.isDouble(ch) {
			return r.operate(r.p.Operator, LineTarget{})
		}
		switch ch {
		case 'g':
			return r.needMore(StateGPrefix)
		case 'i', 'a':
			r.p.Inner = ch == 'i'
			return r.needMore(StateTextObject)
		case '/', '?':
			count, _ := r.p.count()
			return complete(EnterCommandLine{Prefix: ch, Op: r.p.Operator, Register: r.p.Register, Count: count})
		}
		if k, ok := findMotions[ch]; ok {
			r.p.Find = k
			return r.needMore(StateCharSearch)
		}
	}
	if r.isLeader(ev) {
		r.p.Leaders = 1
		return r.needMore(StateLeader)
	}
	if m, ok := motionFor(ev); ok {
		return r.finish(m)
	}
	return invalid()
}

func (r *resolver) gPrefix(ev key.Event) Result {
	if !ev.IsRune() || ev.Modifiers != key.ModNone {
		return invalid()
	}
	ch := ev.Rune
	switch ch {
	case 'g':
		return r.finish(motion.Motion{Kind: motion.FirstLine})
	case 'e':
		return r.finish(motion.Motion{Kind: motion.WordEndBackward})
	case 'E':
		return r.finish(motion.Motion{Kind: motion.BigWordEndBackward})
	case 'b':
		if r.p.Operator != OpNone {
			return invalid()
		}
		count, _ := r.p.count()
		return complete(ExtendCursors{Count: count})
	}
	op := gOperatorFor(ch)
	switch {
	case op == OpNone:
		return invalid()
	case r.p.Operator == op:
		// gugu, gUgU, g~g~
		return r.operate(op, LineTarget{})
	case r.p.Operator != OpNone:
		return invalid()
	case r.visual:
		return r.operate(op, SelectionTarget{})
	}
	r.p.Operator = op
	return r.needMore(StateOperator)
}

func (r *resolver) textObject(ev key.Event) Result {
	if !ev.IsChar() {
		return invalid()
	}
	kind, ok := textobject.FromKey(ev.Rune)
	if !ok {
		return invalid()
	}
	if r.p.Operator != OpNone {
		return r.operate(r.p.Operator, ObjectTarget{Kind: kind, Inner: r.p.Inner})
	}
	if !r.visual {
		// Only reachable through a malformed Pending.
		return invalid()
	}
	count, _ := r.p.count()
	return complete(SelectObject{Kind: kind, Inner: r.p.Inner, Count: count})
}

func (r *resolver) charSearch(ev key.Event) Result {
	if !ev.IsChar() {
		return invalid()
	}
	return r.finish(motion.Motion{Kind: r.p.Find, Char: ev.Rune})
}

func (r *resolver) replaceChar(ev key.Event) Result {
	count, _ := r.p.count()
	switch {
	case ev.IsChar():
		return complete(ReplaceChar{Char: ev.Rune, Count: count})
	case ev == key.Enter:
		return complete(ReplaceChar{Char: '\n', Count: count})
	}
	return invalid()
}

func (r *resolver) leader(ev key.Event) Result {
	if !r.isLeader(ev) {
		return invalid()
	}
	r.p.Leaders = 2
	r.p.TriggerKeys = ""
	return r.needMore(StateTrigger)
}

func (r *resolver) trigger(ev key.Event) Result {
	if r.isLeader(ev) && r.p.TriggerKeys == "" && r.p.Leaders == 2 {
		r.p.Leaders = 3
		return r.needMore(StateTrigger)
	}
	if !ev.IsChar() {
		return invalid()
	}
	r.p.TriggerKeys += string(ev.Rune)
	t, exact, prefix := quickjump.LookupTrigger(r.p.TriggerKeys, r.p.Leaders == 3)
	switch {
	case exact:
		r.p.Trigger = t
		if t.Chars() == 0 {
			return r.jump("")
		}
		return r.needMore(StateTriggerChars)
	case prefix:
		return r.needMore(StateTrigger)
	}
	return invalid()
}

func (r *resolver) triggerChars(ev key.Event) Result {
	need := r.p.Trigger.Chars()
	switch {
	case need < 0 && ev == key.Enter:
		if len(r.p.Chars) == 0 {
			return invalid()
		}
		return r.jump(string(r.p.Chars))
	case need < 0 && ev == key.Special(key.KeyBackspace, key.ModNone):
		if len(r.p.Chars) > 0 {
			r.p.Chars = r.p.Chars[:len(r.p.Chars)-1]
		}
		return r.needMore(StateTriggerChars)
	case !ev.IsChar():
		return invalid()
	}
	r.p.Chars = append(r.p.Chars, ev.Rune)
	if need > 0 && len(r.p.Chars) == need {
		return r.jump(string(r.p.Chars))
	}
	return r.needMore(StateTriggerChars)
}

func (r *resolver) jump(chars string) Result {
	count, _ := r.p.count()
	return complete(QuickJump{
		Trigger:  r.p.Trigger,
		Chars:    chars,
		Op:       r.p.Operator,
		Register: r.p.Register,
		Count:    count,
	})
}
