package editor

import (
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/motion"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/quickjump"
)

// pendingJump is a quick-jump overlay waiting for a label.
type pendingJump struct {
	overlay  *quickjump.Overlay
	op       vim.Operator
	register rune
}

func (m *Machine) quickJump(a vim.QuickJump) error {
	snap := m.host.ReadBuffer()
	region := quickjump.Whole(snap)
	if v, ok := m.host.(buffer.Viewport); ok {
		first, last := v.VisibleLines()
		region = quickjump.Region{First: first, Last: last}
	}
	positions := quickjump.Targets(snap, m.cursors.Primary().Head, region, a.Trigger, a.Chars)
	ov := quickjump.New(a.Trigger, positions, m.opts.LabelKeys, m.opts.MaxLabelLength)
	if ov.Empty() {
		m.SetStatus("no jump targets")
		m.leaveVisual()
		return nil
	}
	j := &pendingJump{overlay: ov, op: a.Op, register: a.Register}
	if pos, ok := ov.Single(); ok {
		return m.land(j, pos)
	}
	m.jump = j
	return nil
}

// Labels returns the labels still reachable in the active overlay, or nil.
func (m *Machine) Labels() []quickjump.Target {
	if m.jump == nil {
		return nil
	}
	return m.jump.overlay.Visible()
}

// Jumping reports whether a quick-jump overlay is waiting for a label.
func (m *Machine) Jumping() bool {
	return m.jump != nil
}

// TypeLabel feeds one label key to the active overlay. A complete label
// jumps; a key that matches no label aborts the overlay.
func (m *Machine) TypeLabel(r rune) error {
	j := m.jump
	if j == nil {
		return nil
	}
	m.status = ""
	status, pos := j.overlay.Type(r)
	switch status {
	case quickjump.Partial:
		return nil
	case quickjump.NotFound:
		m.jump = nil
		m.SetStatus("no label %q", j.overlay.Typed())
		return nil
	}
	m.jump = nil
	err := m.land(j, pos)
	m.settle()
	return err
}

// land moves the primary cursor to pos, dropping the others, or applies
// the pending operator up to pos.
func (m *Machine) land(j *pendingJump, pos buffer.Position) error {
	m.cursors.KeepPrimary()
	t := j.overlay.Trigger()
	forward := m.cursors.Primary().Head.Before(pos)
	mo := motion.Motion{
		Kind:      motion.Jump,
		Target:    pos,
		Inclusive: forward && inclusiveTrigger(t),
		Linewise:  t == quickjump.LineDown || t == quickjump.LineUp || t == quickjump.LineBoth,
	}
	if j.op != vim.OpNone {
		return m.operate(vim.Operate{Op: j.op, Register: j.register, Target: vim.MotionTarget{Motion: mo}})
	}
	return m.move(mo, motion.Env{})
}

// inclusiveTrigger reports whether an operator includes the target
// character when jumping forward, as f, t and e do.
func inclusiveTrigger(t quickjump.Trigger) bool {
	switch t {
	case quickjump.WordStart, quickjump.WordStartBackward, quickjump.WordStartBoth,
		quickjump.LineDown, quickjump.LineUp, quickjump.LineBoth,
		quickjump.LineForward, quickjump.LineBackward:
		return false
	}
	return true
}
