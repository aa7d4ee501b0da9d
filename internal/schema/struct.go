package schema

import (
	"reflect"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// structValidator returns the shared validator instance.
// validator.Validate caches struct metadata and is safe for concurrent use.
func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type structSchema struct {
	typ reflect.Type
}

// Struct returns a schema accepting values of type T (or non-nil *T) that
// pass the `validate:"..."` struct tags of T.
func Struct[T any]() Schema {
	return structSchema{typ: reflect.TypeFor[T]()}
}

func (s structSchema) Validate(value any) bool {
	return s.Explain(value) == nil
}

// Explain returns the validator error for value, or nil if it is valid.
func (s structSchema) Explain(value any) error {
	v, ok := s.unwrap(value)
	if !ok {
		return &TypeError{Expected: s.typ.String(), Got: reflect.TypeOf(value)}
	}
	if s.typ.Kind() != reflect.Struct {
		return nil
	}
	return structValidator().Struct(v)
}

// unwrap returns the struct value held by value.
func (s structSchema) unwrap(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	if rv.Type() == s.typ {
		return value, true
	}
	if rv.Kind() == reflect.Pointer && rv.Type().Elem() == s.typ && !rv.IsNil() {
		return rv.Elem().Interface(), true
	}
	return nil, false
}

func (s structSchema) String() string {
	return s.typ.String()
}

// TypeError reports a payload of the wrong Go type.
type TypeError struct {
	Expected string
	Got      reflect.Type
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return "expected " + e.Expected + ", got " + got
}
