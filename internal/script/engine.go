// Package script runs user commands written in Lua. Scripts register
// named commands with modal.command; remap rules and ex commands invoke
// them by name.
//
// An Engine is not safe for concurrent use. The session calls it from its
// loop, and commands may call back into the session (modal.feed), which
// may in turn run another command.
package script

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modal/internal/errs"
	"github.com/dshills/modal/internal/logging"
)

// DefaultTimeout bounds one top-level script call.
const DefaultTimeout = 2 * time.Second

// Options configure an Engine.
type Options struct {
	Timeout time.Duration
	Logger  *logging.Logger
}

// Engine is a sandboxed Lua state plus the commands its scripts defined.
type Engine struct {
	L        *lua.LState
	host     Host
	log      *logging.Logger
	timeout  time.Duration
	commands map[string]*lua.LFunction

	// depth counts nested calls; only the outermost one owns the deadline.
	depth  int
	closed bool
}

// New creates an engine whose modal module talks to host.
func New(host Host, opts Options) *Engine {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	e := &Engine{
		L:        lua.NewState(lua.Options{SkipOpenLibs: true}),
		host:     host,
		log:      log.WithComponent("script"),
		timeout:  opts.Timeout,
		commands: make(map[string]*lua.LFunction),
	}
	openSafeLibraries(e.L)
	e.sandbox()
	e.L.SetGlobal("modal", e.module())
	return e
}

// openSafeLibraries opens the libraries that cannot reach the file system
// or the process.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes the base functions that load code from disk or strings
// and sends print to the log.
func (e *Engine) sandbox() {
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		e.L.SetGlobal(name, lua.LNil)
	}
	e.L.SetGlobal("print", e.L.NewFunction(func(L *lua.LState) int {
		n := L.GetTop()
		parts := make([]string, 0, n)
		for i := 1; i <= n; i++ {
			parts = append(parts, L.ToStringMeta(L.Get(i)).String())
		}
		e.log.Info("%s", strings.Join(parts, "\t"))
		return 0
	}))
}

// LoadFile runs a script file.
func (e *Engine) LoadFile(path string) error {
	if err := e.guard(func() error { return e.L.DoFile(path) }); err != nil {
		return errs.NewOperationError("load", path, err)
	}
	e.log.Info("loaded %s: %d commands", path, len(e.commands))
	return nil
}

// LoadString runs a chunk of Lua source.
func (e *Engine) LoadString(code string) error {
	if err := e.guard(func() error { return e.L.DoString(code) }); err != nil {
		return errs.NewOperationError("load", "<string>", err)
	}
	return nil
}

// Has reports whether a command is registered.
func (e *Engine) Has(name string) bool {
	_, ok := e.commands[name]
	return ok && !e.closed
}

// Commands returns the registered command names, sorted.
func (e *Engine) Commands() []string {
	names := make([]string, 0, len(e.commands))
	for name := range e.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run calls a registered command.
func (e *Engine) Run(name string) error {
	fn, ok := e.commands[name]
	if !ok {
		return errs.NewOperationError("call", name, ErrNoCommand)
	}
	err := e.guard(func() error {
		return e.L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true})
	})
	if err != nil {
		return errs.NewOperationError("call", name, err)
	}
	return nil
}

// guard runs fn with panic recovery and, for the outermost call, the
// engine's deadline.
func (e *Engine) guard(fn func() error) (err error) {
	if e.closed {
		return ErrEngineClosed
	}
	var ctx context.Context
	if e.depth == 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), e.timeout)
		defer cancel()
		e.L.SetContext(ctx)
		defer e.L.RemoveContext()
	}
	e.depth++
	defer func() {
		e.depth--
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
		if err != nil && ctx != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("%w after %v", ErrTimeout, e.timeout)
		}
	}()
	return fn()
}

// Close releases the Lua state. Later calls return ErrEngineClosed.
func (e *Engine) Close() {
	if e.closed {
		return
	}
	e.closed = true
	e.L.Close()
}
