package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dshills/modal/internal/config"
	"github.com/dshills/modal/internal/config/loader"
	"github.com/dshills/modal/internal/config/watcher"
	"github.com/dshills/modal/internal/engine/buffer"
	"github.com/dshills/modal/internal/engine/cursor"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/register"
	"github.com/dshills/modal/internal/script"
	"github.com/dshills/modal/internal/session"
	"github.com/dshills/modal/internal/term"
)

// Application owns the document, registers and configuration, and runs
// one session at a time over them.
type Application struct {
	mu sync.Mutex

	opts   Options
	loader *loader.Loader
	cfg    *config.Config
	log    *logging.Logger
	logOut io.Closer

	doc       *Document
	registers *register.Store

	terminal *term.Terminal
	view     *term.View
	watcher  *watcher.Watcher

	// reload is signalled by the watcher; reloadNow is set by the reload
	// command, which also ends the session.
	reload    chan struct{}
	reloadNow atomic.Bool
	running   atomic.Bool
}

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file.
	ConfigPath string

	// File is the file to edit; empty opens a scratch buffer.
	File string

	// LogLevel overrides the configured log level when set.
	LogLevel string

	// ReadOnly opens the file in read-only mode.
	ReadOnly bool

	// Watch reloads the configuration when it or the script changes.
	Watch bool

	// Clipboard backs the + and * registers with the system clipboard.
	Clipboard bool

	// Loader reads configuration files; tests supply an in-memory one.
	Loader *loader.Loader
}

// New creates a new Application with the given options.
func New(opts Options) (*Application, error) {
	app := &Application{
		opts:   opts,
		loader: opts.Loader,
		reload: make(chan struct{}, 1),
	}
	if app.loader == nil {
		app.loader = loader.New()
	}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes components in dependency order.
func (app *Application) bootstrap() error {
	cfg, err := config.Load(app.loader, app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = cfg

	if err := app.setupLogging(); err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	var clip register.ClipboardProvider
	if app.opts.Clipboard && register.Available() {
		clip = register.SystemClipboard{}
	}
	app.registers = register.NewStore(clip)

	if app.opts.File != "" {
		app.doc, err = OpenDocument(app.opts.File)
		if err != nil {
			return &InitError{Component: "document", Err: err}
		}
	} else {
		app.doc = NewDocument("", nil)
	}
	app.doc.SetReadOnly(app.opts.ReadOnly)

	app.log.Info("editing %s", app.doc.Name)
	return nil
}

func (app *Application) setupLogging() error {
	level := app.cfg.LogLevel()
	if app.opts.LogLevel != "" {
		l, ok := logging.ParseLevel(app.opts.LogLevel)
		if !ok {
			return fmt.Errorf("unknown log level %q", app.opts.LogLevel)
		}
		level = l
	}
	if app.cfg.Log.File == "" {
		app.log = logging.Nop()
		return nil
	}
	f, err := os.OpenFile(app.cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	app.logOut = f
	app.log = logging.New(logging.Config{Level: level, Output: f, Prefix: "modal"})
	return nil
}

// Document returns the edited document.
func (app *Application) Document() *Document {
	return app.doc
}

// SetTerminal sets the terminal the sessions draw on and read keys from.
// Must be called before Run.
func (app *Application) SetTerminal(t *term.Terminal) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	if app.running.Load() {
		return ErrAlreadyRunning
	}
	app.terminal = t
	app.view = term.NewView(t, app.doc, app.cfg.Editor.TabWidth)
	app.doc.SetViewport(app.view)
	t.OnResize(app.view.Resize)
	return nil
}

// Run initializes the terminal and edits until a quit command, ctx is
// done or the terminal closes.
func (app *Application) Run(ctx context.Context) error {
	if app.terminal == nil {
		return &InitError{Component: "terminal", Err: errors.New("no terminal set")}
	}
	if err := app.terminal.Init(); err != nil {
		return &InitError{Component: "terminal", Err: err}
	}
	defer app.terminal.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	return app.RunKeys(ctx, app.terminal.Keys(ctx))
}

// RunKeys edits with keys from keys. Each configuration reload replaces
// the session; the document, registers and primary cursor position carry
// over.
func (app *Application) RunKeys(ctx context.Context, keys <-chan key.Event) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	if app.opts.Watch {
		if err := app.startWatcher(); err != nil {
			app.log.Warn("config watch disabled: %v", err)
		}
	}

	var (
		at     buffer.Position
		notice string
	)
	for {
		s, err := app.newSession()
		if err != nil {
			return err
		}
		s.sess.Machine().SetCursors(cursor.At(app.doc.ReadBuffer().ClampNormal(at)))
		if notice != "" {
			s.sess.SetStatus(notice)
		} else if s.notice != "" {
			s.sess.SetStatus(s.notice)
		}

		errc := make(chan error, 1)
		sctx, stop := context.WithCancel(ctx)
		go func() { errc <- s.sess.Run(sctx, keys) }()

		var reload bool
		select {
		case err = <-errc:
			reload = app.reloadNow.Swap(false)
		case <-app.reload:
			stop()
			<-errc
			reload = true
		}
		stop()
		if reload {
			at = s.sess.Cursor()
			s.close(app.log)
			notice = app.reloadConfig()
			continue
		}
		s.close(app.log)
		if errors.Is(err, context.Canceled) && ctx.Err() != nil {
			return nil
		}
		return err
	}
}

// running session and the script engine bound to it
type live struct {
	sess   *session.Session
	script *script.Engine
	notice string
}

func (l *live) close(log *logging.Logger) {
	st := l.sess.Metrics().Snapshot()
	log.Info("session %s closed: %d keys, %d actions, %d invalid, %d remaps, avg %v max %v",
		l.sess.ID().String()[:8], st.Keys, st.Actions, st.Invalid, st.Remaps, st.KeyAvg, st.KeyMax)
	l.sess.Close()
	if l.script != nil {
		l.script.Close()
	}
}

func (app *Application) newSession() (*live, error) {
	app.mu.Lock()
	cfg := app.cfg
	app.mu.Unlock()

	rules, err := cfg.RemapRules()
	if err != nil {
		return nil, err
	}
	leader, err := cfg.LeaderKey()
	if err != nil {
		return nil, err
	}
	opts := session.Options{
		Rules:     rules,
		Leader:    leader,
		Timeout:   cfg.Editor.Timeout.Duration,
		QuickJump: cfg.QuickJump.Enabled,
		Editor:    cfg.EditorOptions(),
		Registers: app.registers,
		Logger:    app.log,
	}
	if app.view != nil {
		opts.Renderer = app.view
	}

	l := &live{}
	l.sess, err = session.New(app.doc, opts)
	if err != nil {
		l.notice = "some remaps were rejected, see the log"
	}

	var scripts session.CommandRunner
	if cfg.Script.Path != "" {
		l.script = script.New(l.sess, script.Options{Timeout: cfg.Script.Timeout.Duration, Logger: app.log})
		path := app.scriptPath(cfg)
		if err := l.script.LoadFile(path); err != nil {
			app.log.Error("script: %v", err)
			l.notice = fmt.Sprintf("script: %v", err)
		}
		scripts = l.script
	}
	cmds := app.newCommands(scripts)
	l.sess.SetCommands(cmds)
	app.log.Debug("commands: %v", cmds.Names())
	return l, nil
}

// scriptPath resolves a relative script path against the config file.
func (app *Application) scriptPath(cfg *config.Config) string {
	p := cfg.Script.Path
	if filepath.IsAbs(p) || app.opts.ConfigPath == "" {
		return p
	}
	return filepath.Join(filepath.Dir(app.opts.ConfigPath), p)
}

// requestReload asks the run loop to rebuild the session.
func (app *Application) requestReload() {
	select {
	case app.reload <- struct{}{}:
	default:
	}
}

// reloadCommand ends the session so that the run loop rebuilds it before
// the next key is read.
func (app *Application) reloadCommand() error {
	app.reloadNow.Store(true)
	return session.ErrQuit
}

// reloadConfig reads the configuration again. On failure the previous
// configuration stays and the returned notice says why.
func (app *Application) reloadConfig() string {
	cfg, err := config.Load(app.loader, app.opts.ConfigPath)
	if err != nil {
		app.log.Error("reload: %v", err)
		return fmt.Sprintf("config not reloaded: %v", err)
	}
	app.mu.Lock()
	app.cfg = cfg
	app.mu.Unlock()
	app.log.Info("configuration reloaded")
	app.watchScript()
	return "configuration reloaded"
}

func (app *Application) startWatcher() error {
	if app.opts.ConfigPath == "" {
		return nil
	}
	w, err := watcher.New(func(ev watcher.Event) {
		app.log.Debug("%s %s", ev.Op, ev.Path)
		if ev.Op != watcher.OpRemove {
			app.requestReload()
		}
	}, watcher.WithLogger(app.log))
	if err != nil {
		return err
	}
	if err := w.Watch(app.opts.ConfigPath); err != nil {
		_ = w.Close()
		return err
	}
	app.mu.Lock()
	app.watcher = w
	app.mu.Unlock()
	app.watchScript()
	return nil
}

func (app *Application) watchScript() {
	app.mu.Lock()
	w, cfg := app.watcher, app.cfg
	app.mu.Unlock()
	if w == nil || cfg.Script.Path == "" {
		return
	}
	if err := w.Watch(app.scriptPath(cfg)); err != nil {
		app.log.Warn("watch script: %v", err)
	}
}

// Shutdown releases the watcher and the log file.
func (app *Application) Shutdown() {
	app.mu.Lock()
	w := app.watcher
	app.watcher = nil
	app.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
	if app.logOut != nil {
		_ = app.logOut.Close()
		app.logOut = nil
	}
}
