// Package loader reads relay configuration sources into layered maps.
//
// A File decodes one TOML or YAML document; an EnvLoader reads prefixed
// environment variables, optionally seeded from .env files. Layers are
// combined with Merge, later layers overriding earlier ones.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Loader produces one configuration layer.
type Loader interface {
	// Load returns nil, nil when the source does not exist.
	Load() (map[string]any, error)
}

// FileSystem reads configuration files. Tests substitute an in-memory
// implementation.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// OSFS reads from the operating system.
type OSFS struct{}

// ReadFile implements FileSystem.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// DefaultFS returns the operating system file system.
func DefaultFS() FileSystem {
	return OSFS{}
}

// File loads a configuration file in a fixed format.
type File struct {
	fs     FileSystem
	path   string
	format Format
}

// NewFile returns a loader for path in format, reading through fsys
// (DefaultFS when nil).
func NewFile(fsys FileSystem, path string, format Format) *File {
	if fsys == nil {
		fsys = DefaultFS()
	}
	return &File{fs: fsys, path: path, format: format}
}

// ForPath returns a loader for path chosen by its extension.
func ForPath(fsys FileSystem, path string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range Formats() {
		if slices.Contains(f.Extensions, ext) {
			return NewFile(fsys, path, f), nil
		}
	}
	return nil, &UnsupportedFormatError{Path: path}
}

// Path returns the file path.
func (f *File) Path() string { return f.path }

// Format returns the file format.
func (f *File) Format() Format { return f.format }

// Load reads and decodes the file. A missing file yields nil, nil.
func (f *File) Load() (map[string]any, error) {
	data, err := f.fs.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", f.path, err)
	}
	return f.format.parse(f.path, data)
}

// LoadFromReader decodes a document from r.
func (f *File) LoadFromReader(r io.Reader) (map[string]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return f.format.parse("<reader>", data)
}
