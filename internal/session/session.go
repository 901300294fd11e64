// Package session is the composition root of the engine. A Session owns
// one dispatcher, resolver state and editor machine, and processes keys on
// a single loop so that remap timeouts, scripted commands and keystrokes
// never run concurrently.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/modal/internal/editor"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/input/dispatch"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/macro"
	"github.com/dshills/modal/internal/input/remap"
	"github.com/dshills/modal/internal/input/vim"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
)

// CommandRunner runs command ids named by remap rules.
type CommandRunner interface {
	Has(name string) bool
	Run(name string) error
}

// Options configure a Session.
type Options struct {
	Rules []remap.Rule
	// Leader replaces <leader> in rules and in the grammar. Defaults to \.
	Leader  key.Event
	Timeout time.Duration
	// QuickJump enables the leader-prefixed jump triggers.
	QuickJump bool

	Editor    editor.Options
	Registers *register.Store
	Renderer  Renderer
	Logger    *logging.Logger
	// Scheduler overrides the loop scheduler; tests use a manual one.
	Scheduler dispatch.Scheduler
}

// Session interprets keystrokes for one document.
type Session struct {
	id       uuid.UUID
	log      *logging.Logger
	host     buffer.Host
	machine  *editor.Machine
	disp     *dispatch.Dispatcher
	table    *remap.Table
	resolve  vim.Options
	pending  vim.Pending
	commands CommandRunner
	renderer Renderer
	metrics  *Metrics
	recorder *macro.Recorder
	player   *macro.Player

	posted  chan func()
	done    chan struct{}
	closed  atomic.Bool
	running atomic.Bool

	// err collects the first failure while a dispatcher result is emitted.
	err error
}

// New builds a session over host. Rejected remap rules are logged and
// returned joined in err; the session is usable even when err is non-nil.
func New(host buffer.Host, opts Options) (*Session, error) {
	if opts.Leader == (key.Event{}) {
		opts.Leader = key.Rune('\\')
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	id := uuid.New()
	log = log.WithField("session", id.String()[:8])

	table, loadErr := remap.Load(opts.Rules, opts.Leader)
	if loadErr != nil {
		for _, err := range unjoin(loadErr) {
			log.Warn("remap rejected: %v", err)
		}
	}

	s := &Session{
		id:       id,
		log:      log,
		host:     host,
		table:    table,
		resolve:  vim.Options{Leader: opts.Leader, QuickJump: opts.QuickJump},
		renderer: opts.Renderer,
		metrics:  NewMetrics(),
		recorder: macro.NewRecorder(),
		player:   macro.NewPlayer(),
		posted:   make(chan func(), 16),
		done:     make(chan struct{}),
	}
	if s.renderer == nil {
		s.renderer = nopRenderer{}
	}

	eopts := opts.Editor
	if eopts.Logger == nil {
		eopts.Logger = log
	}
	s.machine = editor.New(host, opts.Registers, eopts)
	s.machine.SetExec(s.exec)

	sched := opts.Scheduler
	if sched == nil {
		sched = loopScheduler{posted: s.posted, done: s.done}
	}
	s.disp = dispatch.New(dispatch.Config{
		Table:     table,
		Timeout:   opts.Timeout,
		Scheduler: sched,
		Mode:      s.machine.Mode,
		Emit:      s.emit,
	})

	log.Info("session started with %d remap rules", table.Len())
	return s, loadErr
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

// ID identifies the session in logs.
func (s *Session) ID() uuid.UUID {
	return s.id
}

// Machine exposes the editor state for hosts and renderers.
func (s *Session) Machine() *editor.Machine {
	return s.machine
}

// Metrics returns the session's counters.
func (s *Session) Metrics() *Metrics {
	return s.metrics
}

// SetCommands installs the runner for remap command ids.
func (s *Session) SetCommands(r CommandRunner) {
	s.commands = r
}

// Run processes keys until ctx is done, keys is closed or a command asks
// to quit. Timer callbacks are run between keys.
func (s *Session) Run(ctx context.Context, keys <-chan key.Event) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	s.render()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-keys:
			if !ok {
				return nil
			}
			if err := s.HandleKey(ev); err != nil {
				if errors.Is(err, ErrQuit) {
					return nil
				}
				s.log.Debug("key %s: %v", ev, err)
			}
		case fn := <-s.posted:
			s.metrics.recordExpiry()
			err := s.collect(fn)
			s.render()
			if errors.Is(err, ErrQuit) {
				return nil
			}
		}
	}
}

// Close stops pending timers from posting to the loop.
func (s *Session) Close() {
	if s.closed.CompareAndSwap(false, true) {
		s.disp.Collapse()
		close(s.done)
	}
}

// HandleKey processes one raw key synchronously and renders the result.
func (s *Session) HandleKey(ev key.Event) error {
	start := time.Now()
	defer func() { s.metrics.RecordKey(time.Since(start)) }()

	var err error
	if s.literal() {
		err = s.interpret(ev)
	} else {
		err = s.collect(func() { s.disp.Feed(ev) })
	}
	s.render()
	return err
}

// literal reports whether the next key is taken as typed, without remaps:
// jump labels, the characters of f, t, r and jump triggers, and macro
// registers.
func (s *Session) literal() bool {
	if s.machine.Jumping() {
		return true
	}
	switch s.pending.State {
	case vim.StateCharSearch, vim.StateReplaceChar, vim.StateTriggerChars,
		vim.StateMacroRecord, vim.StateMacroPlay:
		return len(s.disp.Pending()) == 0
	}
	return false
}

// collect runs fn, which may emit dispatcher results, and returns the
// first error they produced.
func (s *Session) collect(fn func()) error {
	s.err = nil
	fn()
	err := s.err
	s.err = nil
	return err
}

func (s *Session) keep(err error) {
	if err == nil {
		return
	}
	s.metrics.recordError()
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) emit(r dispatch.Result) {
	if r.Kind == dispatch.Resolved {
		s.metrics.recordRemap()
		s.log.Debug("remap %s", r.Rule)
	}
	if len(r.Commands) > 0 {
		for _, name := range r.Commands {
			s.keep(s.runCommand(name))
		}
		return
	}
	for _, ev := range r.Keys {
		s.keep(s.interpret(ev))
	}
}

// interpret feeds one key to the grammar and applies completed actions.
func (s *Session) interpret(ev key.Event) error {
	if !s.player.IsPlaying() {
		s.recorder.Record(ev)
	}
	if s.machine.Jumping() {
		if ev.IsRune() && !ev.IsCancel() {
			return s.machine.TypeLabel(ev.Rune)
		}
		return s.apply(vim.Cancel{})
	}

	opts := s.resolve
	_, opts.Recording = s.recorder.Recording()
	res := vim.Resolve(opts, s.pending, s.machine.Mode(), ev)
	switch res.Status {
	case vim.StatusNeedMore:
		s.pending = res.Pending
		s.machine.SetOperatorPending(s.pending.InOperator())
		return nil
	case vim.StatusComplete:
		typed := len(s.pending.Keys) + 1
		s.pending = vim.Pending{}
		switch a := res.Action.(type) {
		case vim.RecordMacro:
			return s.startRecording(a.Register)
		case vim.StopRecording:
			s.recorder.Drop(typed)
			return s.stopRecording()
		case vim.PlayMacro:
			return s.playMacro(a.Register, a.Count)
		}
		return s.apply(res.Action)
	}

	keys := append(s.pending.Keys.Clone(), ev)
	s.pending = vim.Pending{}
	s.machine.SetOperatorPending(false)
	s.metrics.recordInvalid()
	s.log.Debug("invalid key sequence %s in %s", keys, s.machine.Mode())
	s.machine.SetStatus("invalid command: %s", keys)
	return fmt.Errorf("%w: %s", errs.ErrGrammarInvalid, keys)
}

func (s *Session) apply(a vim.Action) error {
	s.metrics.recordAction()
	err := s.machine.Apply(a)
	var he *errs.HostEditError
	if errors.As(err, &he) {
		s.log.Error("host rejected %s: %v", he.Op, he.Err)
	}
	return err
}

func (s *Session) startRecording(reg rune) error {
	if err := s.recorder.Start(reg); err != nil {
		return err
	}
	s.log.Debug("recording @%c", reg)
	return nil
}

// stopRecording stores the recorded keys in their register. Uppercase
// registers append.
func (s *Session) stopRecording() error {
	reg, keys := s.recorder.Stop()
	if reg == 0 {
		return nil
	}
	s.log.Debug("recorded @%c: %s", reg, keys)
	c := register.Content{Texts: []string{macro.Encode(keys)}}
	return s.machine.Registers().Set(reg, c)
}

// playMacro interprets the keys stored in a register count times. Remaps
// are not applied to them and playback stops at the first failing key.
func (s *Session) playMacro(reg rune, count int) error {
	reg, err := s.player.Resolve(reg)
	if err != nil {
		s.machine.SetStatus("%v", err)
		return err
	}
	c, ok := s.machine.Registers().Get(reg)
	if !ok {
		s.machine.SetStatus("register %c is empty", reg)
		return fmt.Errorf("%w: %c", ErrEmptyRegister, reg)
	}
	keys, err := macro.Decode(c.Joined())
	if err != nil {
		return err
	}
	s.metrics.recordMacro()
	err = s.player.Play(reg, keys, count, s.interpret)
	if err != nil && !errors.Is(err, ErrQuit) {
		s.log.Debug("%v", err)
	}
	return err
}

// Recording returns the register keys are being recorded to, if any.
func (s *Session) Recording() (rune, bool) {
	return s.recorder.Recording()
}

// Feed interprets keys written in key notation as if typed, without
// remapping them.
func (s *Session) Feed(keys string) error {
	seq, err := key.ParseSequence(keys)
	if err != nil {
		return err
	}
	var first error
	for _, ev := range seq {
		if err := s.interpret(ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// runCommand runs a remap command id. Ids starting with ':' are ex
// commands.
func (s *Session) runCommand(name string) error {
	s.metrics.recordCommand()
	if ex, ok := strings.CutPrefix(name, ":"); ok {
		return s.Feed(":" + ex + "<CR>")
	}
	if s.commands != nil && s.commands.Has(name) {
		if err := s.commands.Run(name); err != nil {
			if !errors.Is(err, ErrQuit) {
				s.log.Warn("command %s: %v", name, err)
				s.machine.SetStatus("%s: %v", name, err)
			}
			return err
		}
		return nil
	}
	s.machine.SetStatus("unknown command: %s", name)
	return fmt.Errorf("%w: %s", ErrUnknownCommand, name)
}

// exec handles ex commands the machine does not know. Installed commands
// may replace the quit commands.
func (s *Session) exec(cmd string) (bool, error) {
	name, _, _ := strings.Cut(cmd, " ")
	if s.commands != nil && s.commands.Has(name) {
		s.metrics.recordCommand()
		if err := s.commands.Run(name); err != nil {
			if !errors.Is(err, ErrQuit) {
				s.machine.SetStatus("%s: %v", name, err)
			}
			return true, err
		}
		return true, nil
	}
	switch cmd {
	case "q", "quit", "q!", "quit!":
		return true, ErrQuit
	}
	return false, nil
}

// ModeName returns the configuration name of the current mode, e.g.
// "visualLine".
func (s *Session) ModeName() string {
	return s.machine.Mode().String()
}

// SetStatus sets the status message.
func (s *Session) SetStatus(msg string) {
	s.machine.SetStatus("%s", msg)
}

// Text returns the document text.
func (s *Session) Text() string {
	return s.host.ReadBuffer().Text()
}

// Cursor returns the primary cursor's head.
func (s *Session) Cursor() buffer.Position {
	return s.machine.Primary().Head
}

// Cursors returns every cursor.
func (s *Session) Cursors() []cursor.Cursor {
	return s.machine.Cursors()
}

// Register returns the joined text of a register.
func (s *Session) Register(name rune) (string, bool) {
	c, ok := s.machine.Registers().Get(name)
	if !ok {
		return "", false
	}
	return c.Joined(), true
}

// SetRegister stores text in a register as a yank. Text ending in a
// newline is linewise.
func (s *Session) SetRegister(name rune, text string) error {
	if !register.IsValid(name) {
		return fmt.Errorf("invalid register %q", name)
	}
	c := register.Content{Texts: []string{text}}
	if trimmed, ok := strings.CutSuffix(text, "\n"); ok {
		c = register.Content{Texts: []string{trimmed}, Linewise: true}
	}
	return s.machine.Registers().Store(name, register.Yank, c)
}
