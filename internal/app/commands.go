package app

import (
	"fmt"
	"sort"

	"github.com/dshills/modal/internal/session"
)

// commandSet holds the built-in ex commands and falls back to the script
// engine for everything else. Built-ins win over script commands of the
// same name.
type commandSet struct {
	builtin map[string]func() error
	script  session.CommandRunner
}

func (app *Application) newCommands(script session.CommandRunner) *commandSet {
	save := func() error {
		if err := app.doc.Save(); err != nil {
			return err
		}
		app.log.Info("wrote %s", app.doc.Path)
		return nil
	}
	quit := func() error {
		if app.doc.IsModified() {
			return fmt.Errorf("%w (add ! to override)", ErrUnsavedChanges)
		}
		return session.ErrQuit
	}
	saveQuit := func() error {
		if err := save(); err != nil {
			return err
		}
		return session.ErrQuit
	}
	return &commandSet{
		builtin: map[string]func() error{
			"w":      save,
			"write":  save,
			"wq":     saveQuit,
			"x":      saveQuit,
			"q":      quit,
			"quit":   quit,
			"reload": app.reloadCommand,
		},
		script: script,
	}
}

func (c *commandSet) Has(name string) bool {
	if _, ok := c.builtin[name]; ok {
		return true
	}
	return c.script != nil && c.script.Has(name)
}

func (c *commandSet) Run(name string) error {
	if fn, ok := c.builtin[name]; ok {
		return fn()
	}
	if c.script != nil && c.script.Has(name) {
		return c.script.Run(name)
	}
	return fmt.Errorf("%w: %s", session.ErrUnknownCommand, name)
}

// Names returns every command name, sorted.
func (c *commandSet) Names() []string {
	names := make([]string, 0, len(c.builtin))
	for name := range c.builtin {
		names = append(names, name)
	}
	if lister, ok := c.script.(interface{ Commands() []string }); ok {
		for _, name := range lister.Commands() {
			if _, dup := c.builtin[name]; !dup {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}
