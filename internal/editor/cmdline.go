package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/vim"
)

// commandLine is an open ":", "/" or "?" prompt.
type commandLine struct {
	prefix   rune
	text     []rune
	op       vim.Operator
	register rune
	count    int
	from     mode.Kind
}

// ExecFunc runs an ex command the machine does not know. It reports
// whether it handled the command.
type ExecFunc func(cmd string) (bool, error)

// SetExec installs the handler for unknown ex commands.
func (m *Machine) SetExec(fn ExecFunc) {
	m.exec = fn
}

// CommandLine returns the prompt being edited, including its prefix.
func (m *Machine) CommandLine() (string, bool) {
	if m.cmdline == nil {
		return "", false
	}
	return string(m.cmdline.prefix) + string(m.cmdline.text), true
}

func (m *Machine) openCommandLine(a vim.EnterCommandLine) {
	m.cmdline = &commandLine{
		prefix:   a.Prefix,
		op:       a.Op,
		register: a.Register,
		count:    a.Count,
		from:     m.Mode(),
	}
	// Selections survive so that a search can extend them.
	m.modes.Switch(mode.CommandLine)
}

func (m *Machine) cmdlineInput(text string) {
	if m.cmdline != nil {
		m.cmdline.text = append(m.cmdline.text, []rune(text)...)
	}
}

// cmdlineBackspace deletes one character; on an empty prompt it closes the
// prompt.
func (m *Machine) cmdlineBackspace() {
	cl := m.cmdline
	if cl == nil {
		return
	}
	if len(cl.text) == 0 {
		m.cmdline = nil
		m.modes.Switch(cl.from)
		return
	}
	cl.text = cl.text[:len(cl.text)-1]
}

func (m *Machine) submitCommandLine() error {
	cl := m.cmdline
	if cl == nil {
		return nil
	}
	m.cmdline = nil
	m.modes.Switch(cl.from)
	text := string(cl.text)

	if cl.prefix == ':' {
		return m.execute(strings.TrimSpace(text), cl)
	}

	pattern := text
	if pattern == "" {
		pattern = m.lastSearch
	}
	if pattern == "" {
		m.SetStatus("no previous search pattern")
		m.leaveVisual()
		return nil
	}
	m.lastSearch = pattern
	m.searchBackward = cl.prefix == '?'
	m.highlight = true

	mo := motion.Motion{Kind: motion.Search, Pattern: pattern, Backward: m.searchBackward}
	if cl.op != vim.OpNone {
		return m.operate(vim.Operate{
			Op:       cl.op,
			Register: cl.register,
			Count:    cl.count,
			HasCount: cl.count > 0,
			Target:   vim.MotionTarget{Motion: mo},
		})
	}
	return m.move(mo, motion.Env{Count: cl.count, HasCount: cl.count > 0, Search: m.opts.Search})
}

// execute runs an ex command. From Visual mode line commands act on the
// selected lines.
func (m *Machine) execute(cmd string, cl *commandLine) error {
	if cmd == "" {
		m.leaveVisual()
		return nil
	}
	var lines vim.Target = vim.LineTarget{}
	if cl.from.IsVisual() {
		lines = vim.SelectionTarget{Linewise: true}
	}

	if n, err := strconv.Atoi(cmd); err == nil {
		m.leaveVisual()
		snap := m.host.ReadBuffer()
		line := min(max(n, 1), snap.LineCount()) - 1
		m.cursors.KeepPrimary()
		m.cursors.Apply(func(cursor.Cursor) (cursor.Cursor, bool) {
			return cursor.At(buffer.Pos(line, snap.FirstNonBlank(line))), true
		})
		return nil
	}

	switch cmd {
	case "d", "delete":
		return m.operate(vim.Operate{Op: vim.OpDelete, Register: cl.register, Target: lines})
	case "y", "yank":
		return m.operate(vim.Operate{Op: vim.OpYank, Register: cl.register, Target: lines})
	case ">":
		return m.operate(vim.Operate{Op: vim.OpIndentRight, Target: lines})
	case "<":
		return m.operate(vim.Operate{Op: vim.OpIndentLeft, Target: lines})
	case "noh", "nohlsearch":
		m.highlight = false
		m.leaveVisual()
		return nil
	case "reg", "registers", "di", "display":
		m.SetStatus("registers: %s", string(m.registers.Names()))
		m.leaveVisual()
		return nil
	}

	m.leaveVisual()
	if m.exec != nil {
		handled, err := m.exec(cmd)
		if handled || err != nil {
			return err
		}
	}
	m.SetStatus("not an editor command: %s", cmd)
	return fmt.Errorf("%w: not an editor command: %s", errs.ErrGrammarInvalid, cmd)
}
