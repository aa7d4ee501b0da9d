package relay

import (
	"context"

	"github.com/dshills/relay/internal/schema"
)

// Emitter publishes events for one relay method to every (channel,
// event type) pair declared for it.
type Emitter struct {
	relay  *Relay
	method Method
}

// Method returns the emitter's method.
func (e *Emitter) Method() Method {
	return e.method
}

// Source returns the SourceInfo carried by events from this emitter.
// It can be passed to FromSource to listen to this emitter only.
func (e *Emitter) Source() SourceInfo {
	return SourceInfo{Relay: e.method.Relay, Emitter: e.method}
}

// Emit validates data against each target's schema and dispatches one
// event per target. Validation failures are returned before anything is
// dispatched.
func (e *Emitter) Emit(ctx context.Context, data any) error {
	events, err := e.events(data)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := e.relay.bus.dispatcher.Emit(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// EmitAndWait is like Emit but waits for every listener of every
// target to finish.
func (e *Emitter) EmitAndWait(ctx context.Context, data any) error {
	events, err := e.events(data)
	if err != nil {
		return err
	}
	for _, ev := range events {
		if err := e.relay.bus.dispatcher.EmitAndWait(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Run calls fn and emits its result. When fn reports emit == false the
// data is returned without being emitted.
func (e *Emitter) Run(ctx context.Context, fn func(ctx context.Context) (data any, emit bool, err error)) (any, error) {
	data, emit, err := fn(ctx)
	if err != nil {
		return nil, err
	}
	if !emit {
		return data, nil
	}
	return data, e.Emit(ctx, data)
}

// events builds one event per registered target of the emitter.
func (e *Emitter) events(data any) ([]Event, error) {
	if e.relay.IsClosed() {
		return nil, ErrRelayClosed
	}

	targets := e.relay.bus.registry.GetByMethod(e.method, KindEmitter)
	events := make([]Event, 0, len(targets))
	for _, b := range targets {
		if err := b.Validate(data); err != nil {
			return nil, err
		}
		src := e.Source()
		events = append(events, NewEvent(data, b.channel, b.eventType, &src))
	}
	return events, nil
}

// Listen declares a listener whose payload is a T. The listener's
// schema defaults to schema.TypeOf[T]; a *T payload is dereferenced.
func Listen[T any](r *Relay, name string, fn TypedHandlerFunc[T], opts ...BindingOption) (*Binding, error) {
	all := append([]BindingOption{WithSchema(schema.TypeOf[T]())}, opts...)
	return r.Listen(name, AsHandler(fn), all...)
}
