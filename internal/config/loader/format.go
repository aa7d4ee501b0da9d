package loader

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax.
type Format struct {
	// Name is the format name used in messages.
	Name string

	// Extensions lists lower-case file extensions, dot included.
	Extensions []string

	decode   func(data []byte, v *map[string]any) error
	position func(err error) (line, column int)
}

// Supported formats.
var (
	TOML = Format{
		Name:       "toml",
		Extensions: []string{".toml"},
		decode: func(data []byte, v *map[string]any) error {
			return toml.Unmarshal(data, v)
		},
		position: func(err error) (int, int) {
			var derr *toml.DecodeError
			if errors.As(err, &derr) {
				return derr.Position()
			}
			return 0, 0
		},
	}

	YAML = Format{
		Name:       "yaml",
		Extensions: []string{".yaml", ".yml"},
		decode: func(data []byte, v *map[string]any) error {
			return yaml.Unmarshal(data, v)
		},
		position: func(err error) (int, int) {
			// yaml.v3 reports syntax errors as "yaml: line N: ...".
			var line int
			if _, serr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); serr == nil {
				return line, 0
			}
			return 0, 0
		},
	}
)

// Formats returns the supported formats.
func Formats() []Format {
	return []Format{TOML, YAML}
}

// parse decodes data. An empty document yields an empty map.
func (f Format) parse(source string, data []byte) (map[string]any, error) {
	config := make(map[string]any)
	if err := f.decode(data, &config); err != nil {
		perr := &ParseError{Path: source, Format: f.Name, Err: err}
		perr.Line, perr.Column = f.position(err)
		return nil, perr
	}
	if config == nil {
		config = make(map[string]any)
	}
	return config, nil
}
