// Package editor is the modal state machine. It applies resolved actions
// to every cursor, talks to the host in one atomic edit per action and owns
// the mode, cursors and registers of a session.
package editor

import (
	"fmt"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/indent"
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/engine/search"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/quickjump"
	"github.com/dshills/modal/internal/register"
)

// Options configure a Machine.
type Options struct {
	Indent indent.Options
	Search search.Options

	// LabelKeys and MaxLabelLength configure quick-jump labels.
	LabelKeys      string
	MaxLabelLength int

	// MaxCursors caps multi-cursor creation. Zero means no limit.
	MaxCursors int

	Logger *logging.Logger
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		Indent:         indent.DefaultOptions,
		Search:         search.Options{SmartCase: true},
		LabelKeys:      quickjump.DefaultKeys,
		MaxLabelLength: quickjump.DefaultMaxLabelLength,
	}
}

// Machine holds the editing state of one session. It is not safe for
// concurrent use; the session serializes every call.
type Machine struct {
	host      buffer.Host
	opts      Options
	log       *logging.Logger
	modes     *mode.Manager
	cursors   *cursor.Set
	registers *register.Store

	lastFind       motion.Motion
	hasFind        bool
	lastSearch     string
	searchBackward bool
	highlight      bool

	insert  insertSession
	cmdline *commandLine
	jump    *pendingJump
	exec    ExecFunc
	status  string
}

// New creates a machine in Normal mode with one cursor at the start of the
// document. A nil store gets a fresh one without clipboard access.
func New(host buffer.Host, registers *register.Store, opts Options) *Machine {
	if registers == nil {
		registers = register.NewStore(nil)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	if opts.MaxLabelLength <= 0 {
		opts.MaxLabelLength = quickjump.DefaultMaxLabelLength
	}
	return &Machine{
		host:      host,
		opts:      opts,
		log:       log.WithComponent("editor"),
		modes:     mode.NewManager(),
		cursors:   cursor.NewSet(cursor.At(buffer.Pos(0, 0))),
		registers: registers,
	}
}

// Mode returns the current mode.
func (m *Machine) Mode() mode.Kind {
	return m.modes.Current()
}

// OnModeChange registers a mode-change callback.
func (m *Machine) OnModeChange(cb mode.ChangeCallback) func() {
	return m.modes.OnChange(cb)
}

// Cursors returns the cursors in document order.
func (m *Machine) Cursors() []cursor.Cursor {
	return m.cursors.All()
}

// Primary returns the primary cursor.
func (m *Machine) Primary() cursor.Cursor {
	return m.cursors.Primary()
}

// SetCursors replaces every cursor; the first becomes primary.
func (m *Machine) SetCursors(cs ...cursor.Cursor) {
	if len(cs) == 0 {
		return
	}
	m.cursors.Reset(cs[0])
	for _, c := range cs[1:] {
		m.cursors.Add(c)
	}
	m.settle()
}

// Registers returns the register store.
func (m *Machine) Registers() *register.Store {
	return m.registers
}

// Status returns the last status message.
func (m *Machine) Status() string {
	return m.status
}

// SetStatus sets the status message.
func (m *Machine) SetStatus(format string, args ...any) {
	m.status = fmt.Sprintf(format, args...)
}

// Highlight returns the search pattern to highlight, or nil.
func (m *Machine) Highlight() *search.Pattern {
	if !m.highlight || m.lastSearch == "" {
		return nil
	}
	return search.Compile(m.lastSearch, m.opts.Search)
}

// SetOperatorPending reflects a pending operator in the mode. It only
// moves between Normal and OperatorPending.
func (m *Machine) SetOperatorPending(on bool) {
	switch cur := m.Mode(); {
	case on && cur == mode.Normal:
		m.modes.Switch(mode.OperatorPending)
	case !on && cur == mode.OperatorPending:
		m.modes.Switch(mode.Normal)
	}
}

// Apply performs one action. Failures of individual cursors are not
// errors; an error means the action as a whole did not happen and the
// state is unchanged.
func (m *Machine) Apply(a vim.Action) error {
	m.status = ""
	if m.Mode() == mode.OperatorPending {
		m.modes.Switch(mode.Normal)
	}
	err := m.apply(a)
	m.settle()
	return err
}

func (m *Machine) apply(a vim.Action) error {
	switch a := a.(type) {
	case vim.Cancel:
		return m.cancel()
	case vim.Move:
		if m.Mode().IsInsertLike() {
			// Moving breaks the text a count would repeat.
			m.insert.count, m.insert.typed, m.insert.opens = 1, nil, false
		}
		return m.move(a.Motion, motion.Env{Count: a.Count, HasCount: a.HasCount, Search: m.opts.Search})
	case vim.Operate:
		return m.operate(a)
	case vim.SelectObject:
		return m.selectObject(a)
	case vim.EnterInsert:
		return m.enterInsert(a)
	case vim.EnterReplace:
		m.startInsert(mode.Replace, a.Count, nil)
		return nil
	case vim.EnterVisual:
		m.enterVisual(a.Kind)
		return nil
	case vim.SwapSelectionEnds:
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) { return c.Swap(), true })
		return nil
	case vim.Put:
		return m.put(a)
	case vim.ReplaceChar:
		return m.replaceChar(a)
	case vim.JoinLines:
		return m.join(a.Count)
	case vim.Undo:
		m.undo(a.Count, false)
		return nil
	case vim.Redo:
		m.undo(a.Count, true)
		return nil
	case vim.EnterCommandLine:
		m.openCommandLine(a)
		return nil
	case vim.CommandLineInput:
		m.cmdlineInput(a.Text)
		return nil
	case vim.CommandLineBackspace:
		m.cmdlineBackspace()
		return nil
	case vim.SubmitCommandLine:
		return m.submitCommandLine()
	case vim.AddCursor:
		m.addCursors(a)
		return nil
	case vim.ExtendCursors:
		m.extendCursors(a.Count)
		return nil
	case vim.QuickJump:
		return m.quickJump(a)
	case vim.InsertText, vim.ReplaceText, vim.InsertNewline, vim.InsertTab,
		vim.DeleteBackward, vim.DeleteForward:
		return m.typeText(a)
	}
	return fmt.Errorf("unsupported action %s", vim.Describe(a))
}

// switchMode changes mode, dropping selections when leaving the Visual
// family.
func (m *Machine) switchMode(to mode.Kind) {
	from := m.modes.Switch(to)
	if from.IsVisual() && !to.IsVisual() {
		m.cursors.Apply(func(c cursor.Cursor) (cursor.Cursor, bool) { return c.Collapse(), true })
	}
}

func (m *Machine) settle() {
	snap := m.host.ReadBuffer()
	clamp := snap.ClampNormal
	if m.Mode().IsInsertLike() {
		clamp = snap.ClampInsert
	}
	m.cursors.Settle(clamp)
}

// limit reports how many more cursors may be added.
func (m *Machine) limit() int {
	if m.opts.MaxCursors <= 0 {
		return int(^uint(0) >> 1)
	}
	return max(m.opts.MaxCursors-m.cursors.Len(), 0)
}
