package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Schema validates event payloads.
type Schema interface {
	// Validate reports whether value conforms to the schema.
	Validate(value any) bool

	// String describes the schema for error messages.
	String() string
}

// Explainer is implemented by schemas that can describe why a value was
// rejected.
type Explainer interface {
	Explain(value any) error
}

// Check validates value against s and returns a *ValidationError naming
// target when it does not match. A nil schema accepts everything.
func Check(value any, s Schema, target string) error {
	if s == nil || s.Validate(value) {
		return nil
	}

	verr := &ValidationError{
		Target:   target,
		Value:    value,
		Expected: s.String(),
	}
	if ex, ok := s.(Explainer); ok {
		verr.Reason = ex.Explain(value)
	}
	return verr
}

type anySchema struct{}

// Any returns a schema that accepts every value, including nil.
func Any() Schema { return anySchema{} }

func (anySchema) Validate(any) bool { return true }
func (anySchema) String() string    { return "any" }

type nilSchema struct{}

// Nil returns a schema that accepts only nil.
func Nil() Schema { return nilSchema{} }

func (nilSchema) Validate(value any) bool { return value == nil }
func (nilSchema) String() string          { return "nil" }

// typeSchema matches a Go type.
type typeSchema struct {
	typ reflect.Type
}

// TypeOf returns a schema accepting values whose dynamic type is T.
// When T is an interface type, any value implementing it is accepted.
// A nil value never matches; combine with Nil() for optional payloads.
func TypeOf[T any]() Schema {
	return typeSchema{typ: reflect.TypeFor[T]()}
}

func (s typeSchema) Validate(value any) bool {
	if value == nil {
		return false
	}
	rt := reflect.TypeOf(value)
	if s.typ.Kind() == reflect.Interface {
		return rt.Implements(s.typ)
	}
	return rt == s.typ
}

func (s typeSchema) String() string {
	return s.typ.String()
}

type oneOf []Schema

// OneOf accepts a value matching at least one of the given schemas.
func OneOf(schemas ...Schema) Schema {
	return oneOf(schemas)
}

func (s oneOf) Validate(value any) bool {
	for _, sub := range s {
		if sub.Validate(value) {
			return true
		}
	}
	return false
}

func (s oneOf) String() string {
	parts := make([]string, len(s))
	for i, sub := range s {
		parts[i] = sub.String()
	}
	return strings.Join(parts, " | ")
}

type literal []any

// Literal accepts only the listed values, compared with reflect.DeepEqual.
func Literal(values ...any) Schema {
	return literal(values)
}

func (s literal) Validate(value any) bool {
	for _, v := range s {
		if reflect.DeepEqual(v, value) {
			return true
		}
	}
	return false
}

func (s literal) String() string {
	parts := make([]string, len(s))
	for i, v := range s {
		parts[i] = fmt.Sprintf("%#v", v)
	}
	return "literal[" + strings.Join(parts, ", ") + "]"
}

type sliceOf struct {
	elem Schema
}

// SliceOf accepts slices and arrays whose every element matches elem.
// A nil elem accepts any element.
func SliceOf(elem Schema) Schema {
	return sliceOf{elem: orAny(elem)}
}

func (s sliceOf) Validate(value any) bool {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if !s.elem.Validate(rv.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func (s sliceOf) String() string {
	return "[]" + s.elem.String()
}

type mapOf struct {
	key, val Schema
}

// MapOf accepts maps whose keys match key and values match val.
// A nil key or val schema accepts anything in that position.
func MapOf(key, val Schema) Schema {
	return mapOf{key: orAny(key), val: orAny(val)}
}

func orAny(s Schema) Schema {
	if s == nil {
		return Any()
	}
	return s
}

func (s mapOf) Validate(value any) bool {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Map {
		return false
	}
	iter := rv.MapRange()
	for iter.Next() {
		if !s.key.Validate(iter.Key().Interface()) || !s.val.Validate(iter.Value().Interface()) {
			return false
		}
	}
	return true
}

func (s mapOf) String() string {
	return "map[" + s.key.String() + "]" + s.val.String()
}

type funcSchema struct {
	name string
	fn   func(any) bool
}

// Func adapts a predicate into a Schema described by name.
func Func(name string, fn func(value any) bool) Schema {
	return funcSchema{name: name, fn: fn}
}

func (s funcSchema) Validate(value any) bool { return s.fn(value) }
func (s funcSchema) String() string          { return s.name }
