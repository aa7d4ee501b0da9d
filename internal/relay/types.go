package relay

import (
	"context"
	"strconv"
)

// Kind is the role of a binding.
type Kind int

const (
	// KindAny matches every binding when used as a query filter.
	KindAny Kind = iota

	// KindListener is a binding that receives events.
	KindListener

	// KindEmitter is a binding that produces events.
	KindEmitter
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindAny:
		return "any"
	case KindListener:
		return "listener"
	case KindEmitter:
		return "emitter"
	default:
		return "unknown"
	}
}

// accepts reports whether a binding of kind other passes the filter k.
func (k Kind) accepts(other Kind) bool {
	return k == KindAny || k == other
}

// RelayID identifies a relay within a Bus. Zero means "no relay".
type RelayID uint64

// String returns the decimal form of the ID.
func (id RelayID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Method identifies a bound method: a name owned by a relay.
// Methods are comparable and used directly as map keys.
type Method struct {
	Relay RelayID
	Name  string
}

// IsZero returns true for the zero Method.
func (m Method) IsZero() bool {
	return m == Method{}
}

// IsBound returns true if the method belongs to a relay and has a name.
func (m Method) IsBound() bool {
	return m.Relay != 0 && m.Name != ""
}

// String returns "<relay>.<name>".
func (m Method) String() string {
	if m.IsZero() {
		return "<unbound>"
	}
	return m.Relay.String() + "." + m.Name
}

// Handler is the interface for event listeners.
type Handler interface {
	// Handle processes an event.
	Handle(ctx context.Context, ev Event) error
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(ctx context.Context, ev Event) error

// Handle implements the Handler interface.
func (f HandlerFunc) Handle(ctx context.Context, ev Event) error {
	return f(ctx, ev)
}

// TypedHandlerFunc handles events whose payload is of type T.
type TypedHandlerFunc[T any] func(ctx context.Context, ev Event, data T) error

// AsHandler converts a TypedHandlerFunc to a Handler.
// Events whose payload is not a T are skipped silently; declare the
// listener with a matching schema to reject them instead.
func AsHandler[T any](fn TypedHandlerFunc[T]) Handler {
	return HandlerFunc(func(ctx context.Context, ev Event) error {
		data, ok := DataAs[T](ev)
		if !ok {
			return nil
		}
		return fn(ctx, ev, data)
	})
}

// PanicHandler is called when a listener panics.
type PanicHandler func(ev Event, method Method, recovered any, stack []byte)

// ErrorHandler is called with the *HandlerError or *PanicError produced
// by a failed listener.
type ErrorHandler func(ev Event, b *Binding, err error)
