package vim

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/engine/textobject"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/quickjump"
)

// Action is a fully resolved editing action. The set of actions is closed;
// every implementation lives in this file.
type Action interface {
	isAction()
}

// Target is what an operator acts on.
type Target interface {
	isTarget()
}

// MotionTarget covers the text from the cursor to where the motion lands.
type MotionTarget struct {
	Motion motion.Motion
}

// ObjectTarget covers a text object.
type ObjectTarget struct {
	Kind  textobject.Kind
	Inner bool
}

// LineTarget covers count whole lines, from a doubled operator.
type LineTarget struct{}

// SelectionTarget covers the Visual selection. Linewise forces whole
// lines, as D, X, Y, C, S and R do in Visual mode.
type SelectionTarget struct {
	Linewise bool
}

func (MotionTarget) isTarget()    {}
func (ObjectTarget) isTarget()    {}
func (LineTarget) isTarget()      {}
func (SelectionTarget) isTarget() {}

// InsertKind says where insertion starts.
type InsertKind uint8

const (
	InsertBefore InsertKind = iota
	InsertAfter
	InsertLineStart
	InsertLineEnd
	OpenBelow
	OpenAbove
)

var insertKeys = [...]string{"i", "a", "I", "A", "o", "O"}

func (k InsertKind) String() string {
	if int(k) < len(insertKeys) {
		return insertKeys[k]
	}
	return fmt.Sprintf("InsertKind(%d)", k)
}

type (
	// Move relocates every cursor, extending selections in Visual modes.
	Move struct {
		Motion   motion.Motion
		Count    int
		HasCount bool
	}

	// Operate applies an operator. Advance leaves the cursor after the
	// operated text, as ~ does.
	Operate struct {
		Op       Operator
		Register rune
		Count    int
		HasCount bool
		Target   Target
		Advance  bool
	}

	// SelectObject selects a text object in Visual mode.
	SelectObject struct {
		Kind  textobject.Kind
		Inner bool
		Count int
	}

	// EnterInsert switches to Insert mode. Count repeats the inserted text
	// when Insert mode is left.
	EnterInsert struct {
		Kind  InsertKind
		Count int
	}

	// EnterReplace switches to Replace mode.
	EnterReplace struct {
		Count int
	}

	// EnterVisual starts, switches or toggles off a Visual mode.
	EnterVisual struct {
		Kind mode.Kind
	}

	// SwapSelectionEnds is Visual "o".
	SwapSelectionEnds struct{}

	// Put pastes a register after (or Before) the cursor or over the
	// selection.
	Put struct {
		Register rune
		Before   bool
		Count    int
	}

	// ReplaceChar is "r": replace count characters, or the selection, with
	// Char.
	ReplaceChar struct {
		Char  rune
		Count int
	}

	// JoinLines is "J".
	JoinLines struct {
		Count int
	}

	Undo struct {
		Count int
	}

	Redo struct {
		Count int
	}

	// EnterCommandLine opens the command line for ":", "/" or "?". A
	// pending operator is applied to the search motion on submit.
	EnterCommandLine struct {
		Prefix   rune
		Op       Operator
		Register rune
		Count    int
	}

	CommandLineInput struct {
		Text string
	}

	CommandLineBackspace struct{}

	SubmitCommandLine struct{}

	// AddCursor adds a cursor on the next eligible line below, or Above.
	AddCursor struct {
		Above bool
		Count int
	}

	// ExtendCursors is "gb": add a cursor on the next occurrence of the
	// word under (or selected by) the primary cursor.
	ExtendCursors struct {
		Count int
	}

	// QuickJump activates a label overlay. A pending operator applies to
	// the jump.
	QuickJump struct {
		Trigger  quickjump.Trigger
		Chars    string
		Op       Operator
		Register rune
		Count    int
	}

	InsertText struct {
		Text string
	}

	ReplaceText struct {
		Text string
	}

	InsertNewline struct{}

	InsertTab struct{}

	DeleteBackward struct{}

	DeleteForward struct{}

	// Cancel returns to Normal mode from anywhere.
	Cancel struct{}

	// RecordMacro starts recording keys into Register.
	RecordMacro struct {
		Register rune
	}

	// StopRecording ends the recording started by RecordMacro.
	StopRecording struct{}

	// PlayMacro replays the keys held in Register. Register '@' means the
	// register played last.
	PlayMacro struct {
		Register rune
		Count    int
	}
)

func (Move) isAction()                 {}
func (Operate) isAction()              {}
func (SelectObject) isAction()         {}
func (EnterInsert) isAction()          {}
func (EnterReplace) isAction()         {}
func (EnterVisual) isAction()          {}
func (SwapSelectionEnds) isAction()    {}
func (Put) isAction()                  {}
func (ReplaceChar) isAction()          {}
func (JoinLines) isAction()            {}
func (Undo) isAction()                 {}
func (Redo) isAction()                 {}
func (EnterCommandLine) isAction()     {}
func (CommandLineInput) isAction()     {}
func (CommandLineBackspace) isAction() {}
func (SubmitCommandLine) isAction()    {}
func (AddCursor) isAction()            {}
func (ExtendCursors) isAction()        {}
func (QuickJump) isAction()            {}
func (InsertText) isAction()           {}
func (ReplaceText) isAction()          {}
func (InsertNewline) isAction()        {}
func (InsertTab) isAction()            {}
func (DeleteBackward) isAction()       {}
func (DeleteForward) isAction()        {}
func (Cancel) isAction()               {}
func (RecordMacro) isAction()          {}
func (StopRecording) isAction()        {}
func (PlayMacro) isAction()            {}

// Describe renders an action for logs.
func Describe(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T%+v", a, a)
}
