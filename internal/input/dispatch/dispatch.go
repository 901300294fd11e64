// Package dispatch buffers raw key events against the remap table and
// decides when buffered input becomes remapped keys, commands or literal
// keys.
//
// The dispatcher is not safe for concurrent use. It is driven from a single
// loop, and its ambiguity timer is delivered through a Scheduler that posts
// the callback back onto that same loop.
package dispatch

import (
	"fmt"
	"time"

	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/remap"
)

// DefaultTimeout is how long an ambiguous prefix waits for more keys.
const DefaultTimeout = time.Second

// Kind classifies a dispatch result.
type Kind uint8

const (
	// Consumed means the key was buffered; nothing is emitted.
	Consumed Kind = iota
	// Resolved carries the output of a remap rule.
	Resolved
	// Expired carries keys that matched no rule, to be interpreted
	// literally.
	Expired
)

func (k Kind) String() string {
	switch k {
	case Consumed:
		return "consumed"
	case Resolved:
		return "resolved"
	case Expired:
		return "expired"
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Result is one unit of dispatcher output.
type Result struct {
	Kind     Kind
	Keys     key.Sequence
	Commands []string
	// Rule is the rule that produced a Resolved result.
	Rule *remap.Rule
}

func (r Result) String() string {
	if len(r.Commands) > 0 {
		return fmt.Sprintf("%s%v", r.Kind, r.Commands)
	}
	return fmt.Sprintf("%s(%s)", r.Kind, r.Keys)
}

// Timer is a pending scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs fn after d. Implementations must run fn on the same loop
// that calls Feed.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Config configures a Dispatcher.
type Config struct {
	Table     *remap.Table
	Timeout   time.Duration
	Scheduler Scheduler
	// Mode reports the current mode. It is consulted for every buffered
	// sequence, so mode switches caused by earlier output take effect for
	// keys re-fed after them.
	Mode func() mode.Kind
	// Emit receives results in order. It runs synchronously.
	Emit func(Result)
}

// Dispatcher is the remap input buffer.
type Dispatcher struct {
	table   *remap.Table
	timeout time.Duration
	sched   Scheduler
	mode    func() mode.Kind
	emit    func(Result)

	buf   key.Sequence
	timer Timer
	gen   uint64
}

// New creates a dispatcher.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		table:   cfg.Table,
		timeout: cfg.Timeout,
		sched:   cfg.Scheduler,
		mode:    cfg.Mode,
		emit:    cfg.Emit,
	}
	if d.timeout <= 0 {
		d.timeout = DefaultTimeout
	}
	if d.mode == nil {
		d.mode = func() mode.Kind { return mode.Normal }
	}
	if d.emit == nil {
		d.emit = func(Result) {}
	}
	return d
}

// Feed processes one key. It reports whether anything was emitted; false
// means the key is buffered (Consumed).
func (d *Dispatcher) Feed(ev key.Event) bool {
	if ev.IsCancel() {
		d.Collapse()
		d.emit(Result{Kind: Expired, Keys: key.Sequence{ev}})
		return true
	}
	return d.feed(ev)
}

func (d *Dispatcher) feed(ev key.Event) bool {
	d.buf = append(d.buf, ev)
	m := d.mode()
	match := d.table.Lookup(m, d.buf)
	switch {
	case match.Prefix:
		d.arm()
		return false
	case match.Exact():
		d.reset()
		d.resolve(m, match.Rule)
		return true
	}
	d.flush(m, true)
	return true
}

// flush empties a buffer that can no longer grow into a rule. The longest
// rule matching a prefix of the buffer resolves; otherwise the first key
// is emitted literally. With refeed set the remaining keys go through the
// dispatcher again, otherwise they are emitted literally.
func (d *Dispatcher) flush(m mode.Kind, refeed bool) {
	buf := d.buf
	d.reset()
	var rest key.Sequence
	if r := d.table.Longest(m, buf); r != nil {
		d.resolve(m, r)
		rest = buf[len(r.Before):]
	} else {
		d.emit(Result{Kind: Expired, Keys: buf[:1]})
		rest = buf[1:]
	}
	if len(rest) == 0 {
		return
	}
	if !refeed {
		d.emit(Result{Kind: Expired, Keys: rest})
		return
	}
	for _, ev := range rest {
		d.feed(ev)
	}
}

// resolve emits the output of rule r. The output of a recursive rule is
// passed through the table one more time; rules matched in that pass emit
// their output as is.
func (d *Dispatcher) resolve(m mode.Kind, r *remap.Rule) {
	if len(r.Commands) > 0 || !r.Recursive {
		d.emitRule(r)
		return
	}
	var plain key.Sequence
	for i := 0; i < len(r.After); {
		s := d.table.Longest(m, r.After[i:])
		if s == nil || (s == r && i == 0) {
			plain = append(plain, r.After[i])
			i++
			continue
		}
		if len(plain) > 0 {
			d.emit(Result{Kind: Resolved, Keys: plain, Rule: r})
			plain = nil
		}
		d.emitRule(s)
		i += len(s.Before)
	}
	if len(plain) > 0 {
		d.emit(Result{Kind: Resolved, Keys: plain, Rule: r})
	}
}

func (d *Dispatcher) emitRule(r *remap.Rule) {
	if len(r.Commands) > 0 {
		d.emit(Result{Kind: Resolved, Commands: r.Commands, Rule: r})
		return
	}
	d.emit(Result{Kind: Resolved, Keys: r.After.Clone(), Rule: r})
}

// Expire is the timer callback for generation gen. Stale generations are
// ignored.
func (d *Dispatcher) Expire(gen uint64) {
	if gen != d.gen || len(d.buf) == 0 {
		return
	}
	m := d.mode()
	if match := d.table.Lookup(m, d.buf); match.Exact() {
		d.reset()
		d.resolve(m, match.Rule)
		return
	}
	d.flush(m, false)
}

// Generation identifies the currently armed timer.
func (d *Dispatcher) Generation() uint64 {
	return d.gen
}

// Collapse discards buffered keys and cancels the timer.
func (d *Dispatcher) Collapse() {
	d.reset()
}

// Pending returns a copy of the buffered keys.
func (d *Dispatcher) Pending() key.Sequence {
	return d.buf.Clone()
}

func (d *Dispatcher) arm() {
	d.stop()
	d.gen++
	if d.sched == nil {
		return
	}
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.timeout, func() { d.Expire(gen) })
}

func (d *Dispatcher) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Dispatcher) reset() {
	d.stop()
	d.gen++
	d.buf = nil
}
