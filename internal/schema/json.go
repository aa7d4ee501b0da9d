package schema

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var errInvalidJSON = errors.New("invalid JSON")

type jsonSchema struct {
	paths []string
}

// JSON returns a schema accepting raw JSON payloads ([]byte, string or
// json.RawMessage) that are well formed and contain every given gjson path.
func JSON(paths ...string) Schema {
	return jsonSchema{paths: paths}
}

func (s jsonSchema) Validate(value any) bool {
	return s.Explain(value) == nil
}

// Explain names the first missing path.
func (s jsonSchema) Explain(value any) error {
	raw, ok := rawJSON(value)
	if !ok {
		return errInvalidJSON
	}
	if !gjson.ValidBytes(raw) {
		return errInvalidJSON
	}
	for _, p := range s.paths {
		if !gjson.GetBytes(raw, p).Exists() {
			return &MissingPathError{Path: p}
		}
	}
	return nil
}

func (s jsonSchema) String() string {
	if len(s.paths) == 0 {
		return "json"
	}
	return "json{" + strings.Join(s.paths, ", ") + "}"
}

func rawJSON(value any) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case json.RawMessage:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}

// MissingPathError reports a required JSON path that is absent.
type MissingPathError struct {
	Path string
}

// Error implements the error interface.
func (e *MissingPathError) Error() string {
	return "missing JSON path " + e.Path
}
