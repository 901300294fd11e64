// Package loader reads configuration files into Go values.
//
// The format follows the file extension: .toml, .yaml or .yml. Unknown keys
// are errors so that typos in a config file are reported instead of
// silently ignored.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format is a configuration file syntax.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatTOML
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	}
	return "unknown"
}

// ErrUnknownFormat is returned for files whose extension names no format.
var ErrUnknownFormat = errors.New("unknown config format")

// FormatOf returns the format implied by path's extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatUnknown
}

// Loader decodes configuration files from a FileSystem.
type Loader struct {
	fs FileSystem
}

// New creates a loader over the OS file system.
func New() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Load decodes the file at path into v. Fields of v missing from the file
// keep their values, so v is usually pre-filled with defaults. Load
// reports false, with no error, when the file does not exist.
func (l *Loader) Load(path string, v any) (bool, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return true, Decode(path, data, v)
}

// Decode decodes data in the format implied by path.
func Decode(path string, data []byte, v any) error {
	switch f := FormatOf(path); f {
	case FormatTOML:
		return decodeTOML(path, data, v)
	case FormatYAML:
		return decodeYAML(path, data, v)
	}
	return fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// ParseError represents an error while parsing a configuration file.
type ParseError struct {
	Path    string
	Line    int
	Column  int
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Line > 0 && e.Column > 0 {
		return fmt.Sprintf("parse error in %s at line %d, column %d: %s", e.Path, e.Line, e.Column, e.Message)
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error in %s at line %d: %s", e.Path, e.Line, e.Message)
	}
	return fmt.Sprintf("parse error in %s: %s", e.Path, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
