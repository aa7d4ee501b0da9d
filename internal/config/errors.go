package config

import (
	"errors"

	"github.com/dshills/relay/internal/config/loader"
)

// Errors returned by configuration operations.
var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFileNotFound indicates the configuration file doesn't exist.
	ErrFileNotFound = errors.New("config file not found")

	// ErrTypeMismatch indicates a setting has the wrong type.
	ErrTypeMismatch = errors.New("type mismatch")
)

// ParseError represents an error while parsing a configuration file.
type ParseError = loader.ParseError

// FieldError describes an invalid setting.
type FieldError struct {
	// Path is the setting path (e.g. "log.level").
	Path string

	// Value is the rejected value.
	Value any

	// Message describes the problem.
	Message string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return "invalid " + e.Path + ": " + e.Message
}

// Is allows errors.Is to match FieldError with ErrInvalidConfig.
func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidConfig
}
