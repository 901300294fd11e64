package script

import (
	"unicode/utf8"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/modal/internal/engine/buffer"
)

// Host is the editing session scripts act on.
type Host interface {
	// Feed interprets keys in key notation as if typed, without remaps.
	Feed(keys string) error
	ModeName() string
	SetStatus(msg string)
	Text() string
	Cursor() buffer.Position
	Register(name rune) (string, bool)
	SetRegister(name rune, text string) error
}

// module builds the modal table:
//
//	modal.command(name, fn)      register a command
//	modal.feed(keys)             type keys, e.g. "dw" or "<Esc>"
//	modal.mode()                 current mode name, e.g. "normal"
//	modal.status(msg)            set the status message
//	modal.text()                 the whole document
//	modal.cursor()               line (1-based), column (0-based)
//	modal.register(name)         register text or nil
//	modal.setregister(name, s)   store s in a register
//	modal.log(msg)               write to the log
func (e *Engine) module() *lua.LTable {
	return e.L.SetFuncs(e.L.NewTable(), map[string]lua.LGFunction{
		"command":     e.luaCommand,
		"feed":        e.luaFeed,
		"mode":        e.luaMode,
		"status":      e.luaStatus,
		"text":        e.luaText,
		"cursor":      e.luaCursor,
		"register":    e.luaRegister,
		"setregister": e.luaSetRegister,
		"log":         e.luaLog,
	})
}

func (e *Engine) luaCommand(L *lua.LState) int {
	name := L.CheckString(1)
	fn := L.CheckFunction(2)
	if name == "" {
		L.ArgError(1, "empty command name")
	}
	if _, ok := e.commands[name]; ok {
		e.log.Warn("command %s redefined", name)
	}
	e.commands[name] = fn
	return 0
}

func (e *Engine) luaFeed(L *lua.LState) int {
	keys := L.CheckString(1)
	if err := e.host.Feed(keys); err != nil {
		L.Push(lua.LString(err.Error()))
		return 1
	}
	return 0
}

func (e *Engine) luaMode(L *lua.LState) int {
	L.Push(lua.LString(e.host.ModeName()))
	return 1
}

func (e *Engine) luaStatus(L *lua.LState) int {
	e.host.SetStatus(L.CheckString(1))
	return 0
}

func (e *Engine) luaText(L *lua.LState) int {
	L.Push(lua.LString(e.host.Text()))
	return 1
}

func (e *Engine) luaCursor(L *lua.LState) int {
	p := e.host.Cursor()
	L.Push(lua.LNumber(p.Line + 1))
	L.Push(lua.LNumber(p.Col))
	return 2
}

func registerName(L *lua.LState, n int) rune {
	s := L.CheckString(n)
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || size != len(s) {
		L.ArgError(n, "register name must be one character")
	}
	return r
}

func (e *Engine) luaRegister(L *lua.LState) int {
	text, ok := e.host.Register(registerName(L, 1))
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(lua.LString(text))
	return 1
}

func (e *Engine) luaSetRegister(L *lua.LState) int {
	name := registerName(L, 1)
	if err := e.host.SetRegister(name, L.CheckString(2)); err != nil {
		L.RaiseError("%v", err)
	}
	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.log.Info("%s", L.CheckString(1))
	return 0
}
