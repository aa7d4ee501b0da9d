// Package dispatch runs tasks inside an isolated failure boundary.
//
// Run invokes a single task, recovers any panic together with its stack
// and measures the execution time. The result is an Outcome; a panic
// never unwinds into the caller.
//
// Spawner starts every task in its own goroutine. Spawn returns as soon
// as the goroutine is scheduled, so the caller never waits for tasks to
// finish. Tasks are not ordered with respect to each other and cannot be
// cancelled once started.
//
// Callers that need to observe completion use Wait, which blocks until no
// task is in flight, or Close, which additionally rejects new tasks.
//
//	s := dispatch.NewSpawner(dispatch.WithTaskTimeout(5 * time.Second))
//	err := s.Spawn(ctx, func(ctx context.Context) error {
//	    return deliver(ctx, msg)
//	}, func(out dispatch.Outcome) {
//	    if out.Panic != nil {
//	        log.Printf("%v\n%s", out.Panic, out.Panic.Stack)
//	    }
//	})
package dispatch
