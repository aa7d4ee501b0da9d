package relay

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// Bus owns a Registry and a Dispatcher and creates the relays that
// declare bindings on them.
type Bus struct {
	registry   *Registry
	dispatcher *Dispatcher
	config     busConfig
	logger     *slog.Logger

	nextID atomic.Uint64
}

// NewBus creates a new bus with the given options.
func NewBus(opts ...BusOption) *Bus {
	config := defaultBusConfig()
	for _, opt := range opts {
		opt(&config)
	}

	registry := NewRegistry()
	dispatcherOpts := append([]DispatcherOption{WithLogger(config.logger)}, config.dispatcherOpts...)

	return &Bus{
		registry:   registry,
		dispatcher: NewDispatcher(registry, dispatcherOpts...),
		config:     config,
		logger:     config.logger.With("component", "bus"),
	}
}

// Registry returns the bus's binding registry.
func (b *Bus) Registry() *Registry {
	return b.registry
}

// Dispatcher returns the bus's dispatcher.
func (b *Bus) Dispatcher() *Dispatcher {
	return b.dispatcher
}

// NewRelay creates a relay with a fresh ID. IDs are never reused.
func (b *Bus) NewRelay(name string) *Relay {
	id := RelayID(b.nextID.Add(1))
	return &Relay{
		id:     id,
		name:   name,
		bus:    b,
		logger: b.logger.With("relay", name, "relay_id", id),
	}
}

// Close stops accepting emits and waits for running listeners to finish
// or ctx to be done. Bindings stay registered.
func (b *Bus) Close(ctx context.Context) error {
	return b.dispatcher.Close(ctx)
}

// Relay is a component that owns emitter and listener bindings.
type Relay struct {
	id     RelayID
	name   string
	bus    *Bus
	logger *slog.Logger
	closed atomic.Bool
}

// ID returns the relay's identifier.
func (r *Relay) ID() RelayID { return r.id }

// Name returns the relay's name.
func (r *Relay) Name() string { return r.name }

// Method returns the method called name on this relay.
func (r *Relay) Method(name string) Method {
	return Method{Relay: r.id, Name: name}
}

// Source returns the SourceInfo identifying events from this relay.
func (r *Relay) Source() SourceInfo {
	return SourceInfo{Relay: r.id}
}

// Emit dispatches an already constructed event.
func (r *Relay) Emit(ctx context.Context, ev Event) error {
	if r.closed.Load() {
		return ErrRelayClosed
	}
	return r.bus.dispatcher.Emit(ctx, ev)
}

// Listen declares and registers a listener called name.
// The event payload is checked against the listener's schema before
// handler runs; a mismatch is reported as the listener's error.
func (r *Relay) Listen(name string, handler Handler, opts ...BindingOption) (*Binding, error) {
	return r.declare(KindListener, name, handler, opts)
}

// ListenFunc is a convenience for Listen with a function handler.
func (r *Relay) ListenFunc(name string, fn HandlerFunc, opts ...BindingOption) (*Binding, error) {
	return r.Listen(name, fn, opts...)
}

// Emitter declares and registers an emitter called name. Declaring the
// same name again with other options adds another (channel, event type)
// target to the same emitter.
func (r *Relay) Emitter(name string, opts ...BindingOption) (*Emitter, error) {
	if _, err := r.declare(KindEmitter, name, nil, opts); err != nil {
		return nil, err
	}
	return &Emitter{relay: r, method: r.Method(name)}, nil
}

func (r *Relay) declare(kind Kind, name string, handler Handler, opts []BindingOption) (*Binding, error) {
	if r.closed.Load() {
		return nil, ErrRelayClosed
	}

	all := make([]BindingOption, 0, len(r.bus.config.defaults)+len(opts))
	all = append(all, r.bus.config.defaults...)
	all = append(all, opts...)

	b, err := NewBinding(kind, r.Method(name), handler, all...)
	if err != nil {
		return nil, err
	}
	if err := r.bus.registry.Add(b); err != nil {
		return nil, err
	}

	r.logger.Debug("binding registered",
		"kind", kind.String(),
		"method", name,
		"channel", b.channel,
		"event_type", b.eventType,
		"source", b.source.String(),
		"schema", b.schema.String(),
	)
	return b, nil
}

// Bindings returns the relay's bindings of the given kind.
func (r *Relay) Bindings(kind Kind) []*Binding {
	return r.bus.registry.GetByRelay(r.id, kind)
}

// Close removes every binding the relay owns and marks it closed.
// Returns the number of bindings removed.
func (r *Relay) Close() int {
	r.closed.Store(true)
	n := r.bus.registry.RemoveRelay(r.id)
	r.logger.Debug("relay closed", "bindings_removed", n)
	return n
}

// IsClosed returns true once Close has been called.
func (r *Relay) IsClosed() bool {
	return r.closed.Load()
}
