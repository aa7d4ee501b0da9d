package loader

import (
	"errors"
	"strconv"
	"strings"
)

// ErrUnsupportedFormat is matched by every *UnsupportedFormatError.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// ParseError reports a document that could not be decoded.
type ParseError struct {
	Path   string
	Format string

	// Line and Column are 1-based; zero when the decoder did not say.
	Line   int
	Column int

	Err error
}

// Error renders "path:line:column: format: message".
func (e *ParseError) Error() string {
	var b strings.Builder
	b.WriteString(e.Path)
	if e.Line > 0 {
		b.WriteString(":" + strconv.Itoa(e.Line))
		if e.Column > 0 {
			b.WriteString(":" + strconv.Itoa(e.Column))
		}
	}
	b.WriteString(": invalid " + e.Format + ": " + e.Err.Error())
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// UnsupportedFormatError reports a config file with an unknown extension.
type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported config format for " + e.Path + " (want .toml, .yaml or .yml)"
}

// Is matches ErrUnsupportedFormat.
func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}
