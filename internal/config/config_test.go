package config

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/dshills/modal/internal/config/loader"
	"github.com/dshills/modal/internal/input/key"
	"github.com/dshills/modal/internal/input/mode"
	"github.com/dshills/modal/internal/logging"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return []byte(data), nil
}

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	return nil, fs.ErrNotExist
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

const tomlConfig = `
[editor]
tab_width = 2
expand_tab = false
leader = "<Space>"
timeout = "300ms"

[quickjump]
keys = "asdf"

[multicursor]
max_cursors = 8

[[remaps.insert]]
before = "nne"
after = "<Esc>"

[[remaps.normal]]
before = "<leader>u"
commands = ["upper"]

[[remaps.visual]]
before = "Y"
after = "y$"
recursive = true

[log]
level = "debug"
file = "/tmp/modal.log"

[script]
path = "init.lua"
`

const yamlConfig = `
editor:
  tab_width: 2
  expand_tab: false
  leader: "<Space>"
  timeout: 300ms
quickjump:
  keys: asdf
multicursor:
  max_cursors: 8
remaps:
  insert:
    - before: nne
      after: <Esc>
  normal:
    - before: <leader>u
      commands: [upper]
  visual:
    - before: "Y"
      after: y$
      recursive: true
log:
  level: debug
  file: /tmp/modal.log
script:
  path: init.lua
`

func TestLoad(t *testing.T) {
	files := memFS{"/modal.toml": tomlConfig, "/modal.yaml": yamlConfig}
	for _, path := range []string{"/modal.toml", "/modal.yaml"} {
		t.Run(path, func(t *testing.T) {
			cfg, err := Load(loader.NewWithFS(files), path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Editor.TabWidth != 2 || cfg.Editor.ExpandTab {
				t.Errorf("editor = %+v", cfg.Editor)
			}
			if cfg.Editor.Timeout.Duration != 300*time.Millisecond {
				t.Errorf("timeout = %v", cfg.Editor.Timeout)
			}
			if lead, _ := cfg.LeaderKey(); lead != key.Rune(' ') {
				t.Errorf("leader = %v", lead)
			}
			// Unset keys keep their defaults.
			if !cfg.QuickJump.Enabled || cfg.QuickJump.MaxLabelLength != 2 {
				t.Errorf("quickjump = %+v", cfg.QuickJump)
			}
			if cfg.Script.Timeout.Duration != 2*time.Second {
				t.Errorf("script timeout = %v", cfg.Script.Timeout)
			}
			if cfg.LogLevel() != logging.LevelDebug {
				t.Errorf("log level = %v", cfg.LogLevel())
			}

			rules, err := cfg.RemapRules()
			if err != nil {
				t.Fatal(err)
			}
			if len(rules) != 3 {
				t.Fatalf("rules = %v", rules)
			}
			byMode := make(map[mode.Kind]int)
			for _, r := range rules {
				byMode[r.Mode]++
			}
			if byMode[mode.Normal] != 1 || byMode[mode.Insert] != 1 || byMode[mode.Visual] != 1 {
				t.Errorf("rules by mode = %v", byMode)
			}
			for _, r := range rules {
				switch r.Mode {
				case mode.Insert:
					if !r.After.Equal(key.Sequence{key.Escape}) {
						t.Errorf("insert rule = %v", r)
					}
				case mode.Normal:
					if len(r.Commands) != 1 || r.Commands[0] != "upper" || r.Before[0].Key != key.KeyLeader {
						t.Errorf("normal rule = %v", r)
					}
				case mode.Visual:
					if !r.Recursive {
						t.Errorf("visual rule not recursive")
					}
				}
			}

			opts := cfg.EditorOptions()
			if opts.Indent.TabWidth != 2 || opts.LabelKeys != "asdf" || opts.MaxCursors != 8 {
				t.Errorf("editor options = %+v", opts)
			}
		})
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(loader.NewWithFS(memFS{}), "/none.toml")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Editor.TabWidth != Default().Editor.TabWidth {
		t.Errorf("tab width = %d", cfg.Editor.TabWidth)
	}
}

func TestLoadParseError(t *testing.T) {
	files := memFS{"/bad.toml": "[editor]\ntab_widht = 3\n"}
	_, err := Load(loader.NewWithFS(files), "/bad.toml")
	var pe *loader.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want *loader.ParseError", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"tab width", func(c *Config) { c.Editor.TabWidth = 0 }, "editor.tab_width"},
		{"leader", func(c *Config) { c.Editor.Leader = "ab" }, "editor.leader"},
		{"leader placeholder", func(c *Config) { c.Editor.Leader = "<leader>" }, "editor.leader"},
		{"label length", func(c *Config) { c.QuickJump.MaxLabelLength = 0 }, "quickjump.max_label_length"},
		{"label keys", func(c *Config) { c.QuickJump.Keys = "aa" }, "quickjump.keys"},
		{"one label key", func(c *Config) { c.QuickJump.Keys = "a" }, "quickjump.keys"},
		{"max cursors", func(c *Config) { c.MultiCursor.MaxCursors = -1 }, "multicursor.max_cursors"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
		{"remap both", func(c *Config) {
			c.Remaps.Normal = []RemapEntry{{Before: "x", After: "y", Commands: []string{"z"}}}
		}, "remaps.normal[0]"},
		{"remap neither", func(c *Config) {
			c.Remaps.Insert = []RemapEntry{{Before: "x"}}
		}, "remaps.insert[0]"},
		{"remap empty before", func(c *Config) {
			c.Remaps.Visual = []RemapEntry{{After: "x"}}
		}, "remaps.visual[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("err = %v, want *ValidationError", err)
			}
			if !strings.Contains(err.Error(), tt.path) {
				t.Errorf("err = %v, want it to name %s", err, tt.path)
			}
		})
	}
}

func TestDurationText(t *testing.T) {
	var d Duration
	if err := d.UnmarshalText([]byte("1.5s")); err != nil {
		t.Fatal(err)
	}
	if d.Duration != 1500*time.Millisecond {
		t.Errorf("duration = %v", d.Duration)
	}
	if err := d.UnmarshalText([]byte("soon")); err == nil {
		t.Error("bad duration accepted")
	}
	text, _ := d.MarshalText()
	if string(text) != "1.5s" {
		t.Errorf("MarshalText = %q", text)
	}
}
