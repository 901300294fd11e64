package loader

import (
	"errors"
	"io/fs"
	"testing"
	"time"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Now() }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

type section struct {
	Width int    `toml:"width" yaml:"width"`
	Name  string `toml:"name" yaml:"name"`
}

type doc struct {
	Top   section  `toml:"top" yaml:"top"`
	Items []string `toml:"items" yaml:"items"`
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path string
		want Format
	}{
		{"a.toml", FormatTOML},
		{"/x/A.TOML", FormatTOML},
		{"a.yaml", FormatYAML},
		{"a.yml", FormatYAML},
		{"a.json", FormatUnknown},
		{"noext", FormatUnknown},
	}
	for _, tt := range tests {
		if got := FormatOf(tt.path); got != tt.want {
			t.Errorf("FormatOf(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoad(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/c.toml", `
items = ["a", "b"]

[top]
width = 8
`)
	memfs.AddFile("/c.yaml", `
top:
  width: 8
items: [a, b]
`)
	for _, path := range []string{"/c.toml", "/c.yaml"} {
		t.Run(path, func(t *testing.T) {
			d := doc{Top: section{Width: 4, Name: "default"}}
			found, err := NewWithFS(memfs).Load(path, &d)
			if err != nil || !found {
				t.Fatalf("Load = %v, %v", found, err)
			}
			if d.Top.Width != 8 {
				t.Errorf("width = %d, want 8", d.Top.Width)
			}
			if d.Top.Name != "default" {
				t.Errorf("name = %q, want the default kept", d.Top.Name)
			}
			if len(d.Items) != 2 || d.Items[1] != "b" {
				t.Errorf("items = %v", d.Items)
			}
		})
	}
}

func TestLoadMissing(t *testing.T) {
	var d doc
	found, err := NewWithFS(NewMemFS()).Load("/none.toml", &d)
	if found || err != nil {
		t.Errorf("Load = %v, %v, want false, nil", found, err)
	}
}

func TestLoadEmptyYAML(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/e.yaml", "")
	d := doc{Top: section{Width: 4}}
	if _, err := NewWithFS(memfs).Load("/e.yaml", &d); err != nil {
		t.Fatal(err)
	}
	if d.Top.Width != 4 {
		t.Errorf("width = %d", d.Top.Width)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		content  string
		wantLine int
	}{
		{"toml syntax", "/bad.toml", "[top]\nwidth = = 3\n", 2},
		{"toml unknown key", "/bad.toml", "[top]\nwidht = 3\n", 2},
		{"yaml syntax", "/bad.yaml", "top:\n  width: [1\n", 0},
		{"yaml unknown key", "/bad.yaml", "top:\n  widht: 3\n", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memfs := NewMemFS()
			memfs.AddFile(tt.path, tt.content)
			var d doc
			_, err := NewWithFS(memfs).Load(tt.path, &d)
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("err = %v, want *ParseError", err)
			}
			if pe.Path != tt.path {
				t.Errorf("path = %q", pe.Path)
			}
			if tt.wantLine > 0 && pe.Line != tt.wantLine {
				t.Errorf("line = %d, want %d (%v)", pe.Line, tt.wantLine, err)
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	if err := Decode("x.json", []byte("{}"), &doc{}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
