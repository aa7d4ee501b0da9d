package relay

import (
	"errors"

	"github.com/dshills/relay/internal/relay/pattern"
)

// Sentinel errors for the relay bus.
var (
	// ErrUnboundMethod is returned when a binding's method does not belong to a relay.
	ErrUnboundMethod = errors.New("binding method must come from a relay")

	// ErrForbiddenCharacter is matched when a channel or event type contains a forbidden character.
	ErrForbiddenCharacter = pattern.ErrForbiddenCharacter

	// ErrNilBinding is returned when a nil binding is added to a registry.
	ErrNilBinding = errors.New("binding cannot be nil")

	// ErrNilHandler is returned when a listener is declared without a handler.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrInvalidKind is returned for a binding kind that cannot be constructed
	// or an option that does not apply to the kind.
	ErrInvalidKind = errors.New("invalid binding kind")

	// ErrDispatcherClosed is returned when emitting through a closed dispatcher.
	ErrDispatcherClosed = errors.New("dispatcher is closed")

	// ErrRelayClosed is returned when a closed relay is used.
	ErrRelayClosed = errors.New("relay is closed")

	// ErrListenerPanic is matched by every *PanicError.
	ErrListenerPanic = errors.New("listener panicked")
)

// ConfigError reports an invalid binding declaration.
type ConfigError struct {
	// Op is the declaration that failed (e.g. "listener", "emitter", "add").
	Op string

	// Method is the method being bound.
	Method Method

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "relay: invalid " + e.Op + " " + e.Method.String() + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// HandlerError wraps an error returned by a listener.
type HandlerError struct {
	// Method is the listener's method.
	Method Method

	// EventID is the ID of the event being handled.
	EventID string

	// Channel and EventType identify the event key.
	Channel   string
	EventType string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return "listener " + e.Method.String() + " failed on " + e.Channel + ":" + e.EventType +
		" event " + e.EventID + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError wraps a listener panic as an error.
type PanicError struct {
	// Method is the listener's method.
	Method Method

	// EventID is the ID of the event being handled.
	EventID string

	// Value is the value passed to panic().
	Value any

	// Stack is the stack trace at the time of the panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return "listener " + e.Method.String() + " panicked on event " + e.EventID
}

// Is allows errors.Is to match PanicError with ErrListenerPanic.
func (e *PanicError) Is(target error) bool {
	return target == ErrListenerPanic
}
