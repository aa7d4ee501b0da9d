package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaMismatch is matched by every *ValidationError.
var ErrSchemaMismatch = errors.New("value does not match schema")

// DisplayBudget is the maximum number of characters of a value rendered
// in a ValidationError.
const DisplayBudget = 50

// ValidationError reports a payload that does not match its schema.
type ValidationError struct {
	// Target names the emitter or listener that declared the schema.
	Target string

	// Value is the rejected payload.
	Value any

	// Expected is the schema description.
	Expected string

	// Reason is an optional detailed cause (e.g. struct tag failures).
	Reason error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("data: -> %s <- of type %T does not match the expected schema %s",
		Truncate(fmt.Sprintf("%v", e.Value), DisplayBudget), e.Value, e.Expected)
	if e.Target != "" {
		msg += " for " + e.Target
	}
	if e.Reason != nil {
		msg += ": " + e.Reason.Error()
	}
	return msg
}

// Unwrap returns the detailed cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is to match ValidationError with ErrSchemaMismatch.
func (e *ValidationError) Is(target error) bool {
	return target == ErrSchemaMismatch
}
