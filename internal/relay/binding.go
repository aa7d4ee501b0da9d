package relay

import (
	"context"

	"github.com/google/uuid"

	"github.com/dshills/relay/internal/relay/dispatch"
	"github.com/dshills/relay/internal/relay/pattern"
	"github.com/dshills/relay/internal/schema"
)

// Binding associates a relay method with an event key.
// A *Binding is immutable once constructed and its pointer identity is
// its identity in a Registry: two bindings with equal content are
// distinct entries.
type Binding struct {
	id        string
	kind      Kind
	method    Method
	channel   string
	eventType string
	source    *SourceInfo
	handler   Handler
	schema    schema.Schema
}

// NewListener creates a listener binding for method.
func NewListener(method Method, handler Handler, opts ...BindingOption) (*Binding, error) {
	return NewBinding(KindListener, method, handler, opts...)
}

// NewEmitter creates an emitter binding for method.
func NewEmitter(method Method, opts ...BindingOption) (*Binding, error) {
	return NewBinding(KindEmitter, method, nil, opts...)
}

// NewBinding creates a binding of the given kind.
// handler is required for listeners and ignored for emitters. An empty
// channel or event type falls back to the default, as in NewEvent.
func NewBinding(kind Kind, method Method, handler Handler, opts ...BindingOption) (*Binding, error) {
	cfg := defaultBindingConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	fail := func(err error) (*Binding, error) {
		return nil, &ConfigError{Op: kind.String(), Method: method, Err: err}
	}

	if kind != KindListener && kind != KindEmitter {
		return fail(ErrInvalidKind)
	}
	if !method.IsBound() {
		return fail(ErrUnboundMethod)
	}
	if cfg.channel == "" {
		cfg.channel = DefaultChannel
	}
	if cfg.eventType == "" {
		cfg.eventType = DefaultEventType
	}
	if err := pattern.ValidateName("channel", cfg.channel, cfg.forbidden); err != nil {
		return fail(err)
	}
	if err := pattern.ValidateName("event type", cfg.eventType, cfg.forbidden); err != nil {
		return fail(err)
	}

	b := &Binding{
		id:        uuid.NewString(),
		kind:      kind,
		method:    method,
		channel:   cfg.channel,
		eventType: cfg.eventType,
		schema:    cfg.schema,
	}

	switch kind {
	case KindListener:
		if handler == nil {
			return fail(ErrNilHandler)
		}
		b.handler = handler
		if cfg.source != nil {
			src := *cfg.source
			b.source = &src
		}
	case KindEmitter:
		if cfg.source != nil {
			return fail(ErrInvalidKind)
		}
	}

	return b, nil
}

// ID returns the binding's unique identifier.
func (b *Binding) ID() string { return b.id }

// Kind returns the binding's role.
func (b *Binding) Kind() Kind { return b.kind }

// Method returns the bound method.
func (b *Binding) Method() Method { return b.method }

// Channel returns the binding's channel.
func (b *Binding) Channel() string { return b.channel }

// EventType returns the binding's event type.
func (b *Binding) EventType() string { return b.eventType }

// Source returns the listener's source restriction, or nil.
func (b *Binding) Source() *SourceInfo { return b.source }

// Schema returns the payload schema.
func (b *Binding) Schema() schema.Schema { return b.schema }

// Handler returns the listener's handler, or nil for emitters.
func (b *Binding) Handler() Handler { return b.handler }

// String returns "<kind> <method> on <channel>:<event type>".
func (b *Binding) String() string {
	return b.kind.String() + " " + b.method.String() + " on " + pattern.Key(b.channel, b.eventType)
}

// Accepts reports whether the listener accepts events from src.
func (b *Binding) Accepts(src *SourceInfo) bool {
	return Compatible(src, b.source)
}

// Validate checks data against the binding's schema.
func (b *Binding) Validate(data any) error {
	return schema.Check(data, b.schema, b.method.String())
}

// Handle validates the event payload and then invokes the listener.
func (b *Binding) Handle(ctx context.Context, ev Event) error {
	if err := b.Validate(ev.Data); err != nil {
		return err
	}
	return b.handler.Handle(ctx, ev)
}

// task binds ev to the listener for the spawner.
func (b *Binding) task(ev Event) dispatch.Task {
	return func(ctx context.Context) error {
		return b.Handle(ctx, ev)
	}
}
