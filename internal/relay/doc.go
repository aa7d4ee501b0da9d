// Package relay provides a typed in-process publish/subscribe bus.
//
// Components ("relays") declare emitters and listeners tagged with a
// channel and an event type. A Registry indexes every binding three ways
// (by channel and event type, by owning relay, and by method), and a
// Dispatcher fans each emitted event out to every matching, source
// compatible listener in its own goroutine.
//
// # Architecture
//
//	  Relay.Emitter ──► Emitter.Emit ──► schema check ──► Dispatcher.Emit
//	                                                           │
//	                                         Registry.GetByEvent(KindListener)
//	                                                           │
//	                                                   Compatible(source)
//	                                                           │
//	                                        ┌──────────────────┼──────────────────┐
//	                                        ▼                  ▼                  ▼
//	                                   goroutine          goroutine          goroutine
//	                                  (recover+log)      (recover+log)      (recover+log)
//
// # Channels and Event Types
//
// Bindings default to the "DEFAULT" channel and event type. Names may not
// contain a forbidden character; by default these are '*' and ':'.
// Lookups accept '*' wildcards matching zero or more characters:
//
//	orders*      - matches orders, orders-eu, orders.archive
//	*created     - matches created, user.created
//	a*b*c        - matches abc, a-b-c, aXXbYYc
//
// # Source Affinity
//
// A listener may restrict the events it accepts to those emitted by a
// particular relay, a particular emitter method, or both:
//
//	relay.FromSource(relay.SourceInfo{Relay: orders.ID()})
//
// # Failure Isolation
//
// Each listener runs in its own goroutine. Errors and panics are logged
// with the event summary and the listener's method and never reach the
// emitter or sibling listeners. Emit returns as soon as every listener
// has been scheduled; use EmitAndWait or Dispatcher.Wait to observe
// completion.
//
// # Basic Usage
//
//	bus := relay.NewBus()
//	defer bus.Close(context.Background())
//
//	orders := bus.NewRelay("orders")
//	created, _ := orders.Emitter("created",
//	    relay.OnChannel("orders"),
//	    relay.OnEventType("created"),
//	    relay.WithSchema(schema.TypeOf[Order]()),
//	)
//
//	audit := bus.NewRelay("audit")
//	relay.Listen(audit, "record", func(ctx context.Context, ev relay.Event, o Order) error {
//	    return store.Append(ctx, o)
//	}, relay.OnChannel("orders"), relay.OnEventType("*"))
//
//	created.Emit(ctx, Order{ID: "o-1"})
package relay
