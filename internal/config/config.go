// Package config holds the modal configuration: editor options, quick-jump
// labels, multi-cursor limits, remap rules per mode, logging and the
// script file. A Config is read once per session; a reload builds a new
// session from a new Config.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dshills/modal/internal/config/loader"
	"github.com/dshills/modal/internal/editor"
	"github.com/dshills/modal/internal/engine/indent"
	"github.com/dshills/modal/internal/engine/search"
	"github.com/dshills/modal/internal/input/dispatch"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/input/remap"
	"github.com/dshills/modal/internal/logging"
	"github.com/dshills/modal/internal/quickjump"
)

// Config is the whole configuration file.
type Config struct {
	Editor      EditorConfig      `toml:"editor" yaml:"editor"`
	QuickJump   QuickJumpConfig   `toml:"quickjump" yaml:"quickjump"`
	MultiCursor MultiCursorConfig `toml:"multicursor" yaml:"multicursor"`
	Remaps      RemapConfig       `toml:"remaps" yaml:"remaps"`
	Log         LogConfig         `toml:"log" yaml:"log"`
	Script      ScriptConfig      `toml:"script" yaml:"script"`
}

// EditorConfig configures editing behaviour.
type EditorConfig struct {
	// TabWidth is the columns per tab stop and per shift.
	TabWidth  int  `toml:"tab_width" yaml:"tab_width"`
	ExpandTab bool `toml:"expand_tab" yaml:"expand_tab"`

	// Leader is the key that replaces <leader>, in key notation.
	Leader string `toml:"leader" yaml:"leader"`

	// Timeout is how long an ambiguous remap prefix waits for more keys.
	Timeout Duration `toml:"timeout" yaml:"timeout"`

	IgnoreCase bool `toml:"ignore_case" yaml:"ignore_case"`
	SmartCase  bool `toml:"smart_case" yaml:"smart_case"`
}

// QuickJumpConfig configures the label overlay.
type QuickJumpConfig struct {
	Enabled bool `toml:"enabled" yaml:"enabled"`
	// Keys is the label alphabet, most preferred first.
	Keys           string `toml:"keys" yaml:"keys"`
	MaxLabelLength int    `toml:"max_label_length" yaml:"max_label_length"`
}

// MultiCursorConfig configures multiple cursors.
type MultiCursorConfig struct {
	// MaxCursors caps cursor creation; zero means no limit.
	MaxCursors int `toml:"max_cursors" yaml:"max_cursors"`
}

// RemapConfig lists remap rules per mode. Visual rules apply to every
// Visual kind and Insert rules to Replace mode too.
type RemapConfig struct {
	Normal          []RemapEntry `toml:"normal" yaml:"normal"`
	Insert          []RemapEntry `toml:"insert" yaml:"insert"`
	Visual          []RemapEntry `toml:"visual" yaml:"visual"`
	OperatorPending []RemapEntry `toml:"operator_pending" yaml:"operator_pending"`
	CommandLine     []RemapEntry `toml:"command_line" yaml:"command_line"`
}

// RemapEntry is one rule in key notation. Exactly one of After and
// Commands is set.
type RemapEntry struct {
	Before    string   `toml:"before" yaml:"before"`
	After     string   `toml:"after" yaml:"after"`
	Commands  []string `toml:"commands" yaml:"commands"`
	Recursive bool     `toml:"recursive" yaml:"recursive"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	// File is the log path; empty disables logging.
	File string `toml:"file" yaml:"file"`
}

// ScriptConfig configures the Lua command script.
type ScriptConfig struct {
	Path    string   `toml:"path" yaml:"path"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// Duration is a time.Duration written as a string such as "500ms".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			TabWidth:  indent.DefaultOptions.TabWidth,
			ExpandTab: indent.DefaultOptions.ExpandTab,
			Leader:    `\`,
			Timeout:   Duration{dispatch.DefaultTimeout},
			SmartCase: true,
		},
		QuickJump: QuickJumpConfig{
			Enabled:        true,
			Keys:           quickjump.DefaultKeys,
			MaxLabelLength: quickjump.DefaultMaxLabelLength,
		},
		Log: LogConfig{Level: "info"},
		Script: ScriptConfig{
			Timeout: Duration{2 * time.Second},
		},
	}
}

// Load reads path over the defaults and validates the result. A missing
// file yields the defaults.
func Load(l *loader.Loader, path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := l.Load(path, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every setting and returns all problems joined.
func (c *Config) Validate() error {
	var problems []error
	add := func(path, format string, args ...any) {
		problems = append(problems, &ValidationError{Path: path, Message: fmt.Sprintf(format, args...)})
	}

	if c.Editor.TabWidth < 1 || c.Editor.TabWidth > 16 {
		add("editor.tab_width", "must be between 1 and 16, got %d", c.Editor.TabWidth)
	}
	if _, err := c.LeaderKey(); err != nil {
		add("editor.leader", "%v", err)
	}
	if c.Editor.Timeout.Duration < 0 {
		add("editor.timeout", "must not be negative")
	}
	if c.QuickJump.MaxLabelLength < 1 {
		add("quickjump.max_label_length", "must be at least 1, got %d", c.QuickJump.MaxLabelLength)
	}
	if err := validateKeys(c.QuickJump.Keys); err != nil {
		add("quickjump.keys", "%v", err)
	}
	if c.MultiCursor.MaxCursors < 0 {
		add("multicursor.max_cursors", "must not be negative")
	}
	if _, ok := logging.ParseLevel(c.Log.Level); !ok {
		add("log.level", "unknown level %q", c.Log.Level)
	}
	if c.Script.Timeout.Duration < 0 {
		add("script.timeout", "must not be negative")
	}
	for _, s := range c.Remaps.sections() {
		for i, e := range s.entries {
			if err := e.validate(); err != nil {
				add(fmt.Sprintf("remaps.%s[%d]", s.name, i), "%v", err)
			}
		}
	}
	return errors.Join(problems...)
}

func validateKeys(keys string) error {
	if len([]rune(keys)) < 2 {
		return errors.New("needs at least two label keys")
	}
	seen := make(map[rune]bool)
	for _, r := range keys {
		if seen[r] {
			return fmt.Errorf("duplicate label key %q", r)
		}
		seen[r] = true
	}
	return nil
}

func (e RemapEntry) validate() error {
	if e.Before == "" {
		return errors.New("empty before")
	}
	if (e.After == "") == (len(e.Commands) == 0) {
		return errors.New("exactly one of after and commands is required")
	}
	if _, err := key.ParseSequence(e.Before); err != nil {
		return fmt.Errorf("before: %w", err)
	}
	if e.After != "" {
		if _, err := key.ParseSequence(e.After); err != nil {
			return fmt.Errorf("after: %w", err)
		}
	}
	return nil
}

type remapSection struct {
	name    string
	mode    mode.Kind
	entries []RemapEntry
}

func (r RemapConfig) sections() []remapSection {
	return []remapSection{
		{"normal", mode.Normal, r.Normal},
		{"insert", mode.Insert, r.Insert},
		{"visual", mode.Visual, r.Visual},
		{"operator_pending", mode.OperatorPending, r.OperatorPending},
		{"command_line", mode.CommandLine, r.CommandLine},
	}
}

// LeaderKey parses the leader key.
func (c *Config) LeaderKey() (key.Event, error) {
	if c.Editor.Leader == "" {
		return key.Rune('\\'), nil
	}
	ev, err := key.Parse(c.Editor.Leader)
	if err != nil {
		return key.Event{}, err
	}
	if ev.Key == key.KeyLeader {
		return key.Event{}, errors.New("leader cannot be <leader>")
	}
	return ev, nil
}

// RemapRules converts the remap sections to rules. Entries that do not
// parse are skipped and reported; Validate catches them earlier.
func (c *Config) RemapRules() ([]remap.Rule, error) {
	var (
		rules    []remap.Rule
		problems []error
	)
	for _, s := range c.Remaps.sections() {
		for i, e := range s.entries {
			r, err := e.rule(s.mode)
			if err != nil {
				problems = append(problems, fmt.Errorf("remaps.%s[%d]: %w", s.name, i, err))
				continue
			}
			rules = append(rules, r)
		}
	}
	return rules, errors.Join(problems...)
}

func (e RemapEntry) rule(m mode.Kind) (remap.Rule, error) {
	if err := e.validate(); err != nil {
		return remap.Rule{}, err
	}
	r := remap.Rule{
		Mode:      m,
		Before:    key.MustParseSequence(e.Before),
		Commands:  append([]string(nil), e.Commands...),
		Recursive: e.Recursive,
	}
	if e.After != "" {
		r.After = key.MustParseSequence(e.After)
	}
	return r, nil
}

// EditorOptions returns the editor machine options.
func (c *Config) EditorOptions() editor.Options {
	return editor.Options{
		Indent: indent.Options{TabWidth: c.Editor.TabWidth, ExpandTab: c.Editor.ExpandTab},
		Search: search.Options{IgnoreCase: c.Editor.IgnoreCase, SmartCase: c.Editor.SmartCase},

		LabelKeys:      c.QuickJump.Keys,
		MaxLabelLength: c.QuickJump.MaxLabelLength,
		MaxCursors:     c.MultiCursor.MaxCursors,
	}
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	level, _ := logging.ParseLevel(c.Log.Level)
	return level
}
