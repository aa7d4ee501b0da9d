package relay

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dshills/relay/internal/relay/dispatch"
)

// Dispatcher fans events out to matching listeners.
// Each listener runs in its own goroutine behind a recover boundary;
// failures are logged and counted but never reach the emitter.
type Dispatcher struct {
	registry *Registry
	spawner  *dispatch.Spawner
	config   dispatcherConfig
	logger   *slog.Logger

	// Stats
	emitted   atomic.Uint64
	scheduled atomic.Uint64
	filtered  atomic.Uint64
}

// NewDispatcher creates a dispatcher that resolves listeners in registry.
func NewDispatcher(registry *Registry, opts ...DispatcherOption) *Dispatcher {
	config := defaultDispatcherConfig()
	for _, opt := range opts {
		opt(&config)
	}

	d := &Dispatcher{
		registry: registry,
		config:   config,
		logger:   config.logger.With("component", "dispatcher"),
	}
	d.spawner = dispatch.NewSpawner(
		dispatch.WithTaskTimeout(config.handlerTimeout),
	)
	return d
}

// Emit schedules ev on every matching, source-compatible listener and
// returns without waiting for them. Listeners see a context that is not
// cancelled when ctx is.
// A nil ctx is treated as context.Background().
// Returns ErrDispatcherClosed after Close.
func (d *Dispatcher) Emit(ctx context.Context, ev Event) error {
	_, err := d.schedule(ctx, ev, false)
	return err
}

// EmitAndWait schedules ev like Emit and waits until every listener has
// finished or ctx is done. Listener failures are isolated as with Emit;
// only ctx errors and ErrDispatcherClosed are returned.
func (d *Dispatcher) EmitAndWait(ctx context.Context, ev Event) error {
	if ctx == nil {
		ctx = context.Background()
	}
	pending, err := d.schedule(ctx, ev, true)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, done := range pending {
		g.Go(func() error {
			select {
			case <-done:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	}
	return g.Wait()
}

// schedule spawns one task per listener in registry order. When track is
// set, the returned channels are closed as each task finishes.
func (d *Dispatcher) schedule(ctx context.Context, ev Event, track bool) ([]chan struct{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if d.spawner.IsClosed() {
		return nil, ErrDispatcherClosed
	}

	d.emitted.Add(1)
	listeners := d.listenersFor(ev)
	if len(listeners) == 0 {
		return nil, nil
	}

	ctx = context.WithoutCancel(ctx)

	var pending []chan struct{}
	for _, b := range listeners {
		var done chan struct{}
		if track {
			done = make(chan struct{})
			pending = append(pending, done)
		}

		report := func(out dispatch.Outcome) {
			if done != nil {
				defer close(done)
			}
			d.report(ev, b, out)
		}

		if err := d.spawner.Spawn(ctx, b.task(ev), report); err != nil {
			if errors.Is(err, dispatch.ErrClosed) {
				return nil, ErrDispatcherClosed
			}
			return nil, err
		}
		d.scheduled.Add(1)
	}
	return pending, nil
}

// listenersFor returns the listeners that should receive ev.
func (d *Dispatcher) listenersFor(ev Event) []*Binding {
	candidates := d.registry.GetByEvent(ev.Channel, ev.EventType, KindListener)

	var listeners []*Binding
	for _, b := range candidates {
		if !b.Accepts(ev.Source) {
			d.filtered.Add(1)
			continue
		}
		listeners = append(listeners, b)
	}
	return listeners
}

// report logs and forwards the outcome of one listener invocation.
// The rendered event is only built when the record will be written.
func (d *Dispatcher) report(ev Event, b *Binding, out dispatch.Outcome) {
	attrs := []any{
		"event_id", ev.ID,
		"channel", ev.Channel,
		"event_type", ev.EventType,
		"relay", b.method.Relay,
		"method", b.method.Name,
		"duration", out.Duration,
	}

	var err error
	switch {
	case out.Panic != nil:
		err = &PanicError{
			Method:  b.method,
			EventID: ev.ID,
			Value:   out.Panic.Value,
			Stack:   string(out.Panic.Stack),
		}
		d.logger.Error("listener panicked",
			append(attrs, "event", ev.String(), "panic", out.Panic.Value, "stack", string(out.Panic.Stack))...)
		if d.config.panicHandler != nil {
			d.config.panicHandler(ev, b.method, out.Panic.Value, out.Panic.Stack)
		}
	case out.Err != nil:
		err = &HandlerError{
			Method:    b.method,
			EventID:   ev.ID,
			Channel:   ev.Channel,
			EventType: ev.EventType,
			Err:       out.Err,
		}
		d.logger.Error("listener failed",
			append(attrs, "event", ev.String(), "error", out.Err, "timed_out", out.TimedOut())...)
	default:
		if d.logger.Enabled(context.Background(), slog.LevelDebug) {
			d.logger.Debug("listener completed", append(attrs, "event", ev.String())...)
		}
		return
	}

	if d.config.errorHandler != nil {
		d.config.errorHandler(ev, b, err)
	}
}

// Wait blocks until no listener is running or ctx is done.
func (d *Dispatcher) Wait(ctx context.Context) error {
	return d.spawner.Wait(ctx)
}

// Close rejects further emits and waits for running listeners to
// finish or ctx to be done.
func (d *Dispatcher) Close(ctx context.Context) error {
	return d.spawner.Close(ctx)
}

// IsClosed returns true once Close has been called.
func (d *Dispatcher) IsClosed() bool {
	return d.spawner.IsClosed()
}

// Stats contains dispatcher statistics.
type Stats struct {
	// Emitted is the number of events accepted by Emit or EmitAndWait.
	Emitted uint64

	// Scheduled is the number of listener invocations started.
	Scheduled uint64

	// Filtered is the number of listeners skipped by source affinity.
	Filtered uint64

	// Succeeded is the number of listeners that returned nil.
	Succeeded uint64

	// Failed is the number of listeners that returned an error.
	Failed uint64

	// Panicked is the number of listeners that panicked.
	Panicked uint64

	// TimedOut is the number of failed listeners whose deadline expired.
	TimedOut uint64

	// InFlight is the number of listeners still running.
	InFlight int

	// AvgDuration is the average listener execution time.
	AvgDuration time.Duration
}

// Stats returns current dispatcher statistics.
func (d *Dispatcher) Stats() Stats {
	s := d.spawner.Stats()
	return Stats{
		Emitted:     d.emitted.Load(),
		Scheduled:   d.scheduled.Load(),
		Filtered:    d.filtered.Load(),
		Succeeded:   s.Succeeded,
		Failed:      s.Failed,
		Panicked:    s.Panicked,
		TimedOut:    s.TimedOut,
		InFlight:    s.InFlight,
		AvgDuration: s.AvgDuration,
	}
}
