package relay

import (
	"log/slog"
	"time"

	"github.com/dshills/relay/internal/relay/pattern"
	"github.com/dshills/relay/internal/schema"
)

// BindingOption configures a binding declaration.
type BindingOption func(*bindingConfig)

// bindingConfig contains the settings for a new binding.
type bindingConfig struct {
	channel   string
	eventType string
	source    *SourceInfo
	schema    schema.Schema
	forbidden string
}

func defaultBindingConfig() bindingConfig {
	return bindingConfig{
		channel:   DefaultChannel,
		eventType: DefaultEventType,
		schema:    schema.Any(),
		forbidden: pattern.DefaultForbidden,
	}
}

// OnChannel sets the binding's channel.
func OnChannel(channel string) BindingOption {
	return func(c *bindingConfig) {
		c.channel = channel
	}
}

// OnEventType sets the binding's event type.
func OnEventType(eventType string) BindingOption {
	return func(c *bindingConfig) {
		c.eventType = eventType
	}
}

// FromSource restricts a listener to events from src.
// Zero fields of src are unconstrained.
func FromSource(src SourceInfo) BindingOption {
	return func(c *bindingConfig) {
		c.source = &src
	}
}

// WithSchema sets the payload schema. A nil schema accepts anything.
func WithSchema(s schema.Schema) BindingOption {
	return func(c *bindingConfig) {
		if s == nil {
			s = schema.Any()
		}
		c.schema = s
	}
}

// WithForbiddenCharacters replaces the set of characters rejected in
// channel and event-type names. An empty set allows every character,
// including '*', which then registers a catch-all key.
func WithForbiddenCharacters(chars string) BindingOption {
	return func(c *bindingConfig) {
		c.forbidden = chars
	}
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*dispatcherConfig)

// dispatcherConfig contains configuration for the dispatcher.
type dispatcherConfig struct {
	// handlerTimeout bounds each listener invocation. Zero disables it.
	handlerTimeout time.Duration

	// panicHandler is called when a listener panics.
	panicHandler PanicHandler

	// errorHandler is called for every failed listener.
	errorHandler ErrorHandler

	logger *slog.Logger
}

func defaultDispatcherConfig() dispatcherConfig {
	return dispatcherConfig{
		logger: slog.Default(),
	}
}

// WithHandlerTimeout sets the per-listener execution timeout.
// The listener must respect context cancellation for this to be effective.
func WithHandlerTimeout(timeout time.Duration) DispatcherOption {
	return func(c *dispatcherConfig) {
		if timeout >= 0 {
			c.handlerTimeout = timeout
		}
	}
}

// WithPanicHandler sets a hook called when a listener panics.
func WithPanicHandler(h PanicHandler) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.panicHandler = h
	}
}

// WithErrorHandler sets a hook called for every listener failure.
func WithErrorHandler(h ErrorHandler) DispatcherOption {
	return func(c *dispatcherConfig) {
		c.errorHandler = h
	}
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l *slog.Logger) DispatcherOption {
	return func(c *dispatcherConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// BusOption configures a Bus.
type BusOption func(*busConfig)

// busConfig contains configuration for the bus.
type busConfig struct {
	// defaults are prepended to every binding declared through a relay.
	defaults []BindingOption

	dispatcherOpts []DispatcherOption
	logger         *slog.Logger
}

func defaultBusConfig() busConfig {
	return busConfig{
		logger: slog.Default(),
	}
}

// WithBindingDefaults sets the channel, event type and forbidden
// characters applied to bindings declared without them. Empty channel
// and event type keep the package defaults.
func WithBindingDefaults(channel, eventType, forbidden string) BusOption {
	return func(c *busConfig) {
		if channel != "" {
			c.defaults = append(c.defaults, OnChannel(channel))
		}
		if eventType != "" {
			c.defaults = append(c.defaults, OnEventType(eventType))
		}
		c.defaults = append(c.defaults, WithForbiddenCharacters(forbidden))
	}
}

// WithDispatcherOptions passes options to the bus's dispatcher.
func WithDispatcherOptions(opts ...DispatcherOption) BusOption {
	return func(c *busConfig) {
		c.dispatcherOpts = append(c.dispatcherOpts, opts...)
	}
}

// WithBusLogger sets the logger used by the bus and its dispatcher.
func WithBusLogger(l *slog.Logger) BusOption {
	return func(c *busConfig) {
		if l != nil {
			c.logger = l
		}
	}
}
