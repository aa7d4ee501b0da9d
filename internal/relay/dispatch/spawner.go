package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Spawner runs each task in its own goroutine.
// Spawn never blocks on task execution and there is no queue to fill.
type Spawner struct {
	timeout time.Duration

	// mu guards closed, active and idle.
	mu     sync.Mutex
	closed bool
	active int
	idle   chan struct{} // closed whenever active == 0

	// Stats
	spawned     atomic.Uint64
	succeeded   atomic.Uint64
	failed      atomic.Uint64
	panicked    atomic.Uint64
	timedOut    atomic.Uint64
	skipped     atomic.Uint64
	totalTimeNs atomic.Int64
}

// SpawnerOption configures a Spawner.
type SpawnerOption func(*Spawner)

// WithTaskTimeout sets the per-task execution timeout.
// Zero disables the timeout.
func WithTaskTimeout(timeout time.Duration) SpawnerOption {
	return func(s *Spawner) {
		if timeout >= 0 {
			s.timeout = timeout
		}
	}
}

// NewSpawner creates a new Spawner.
func NewSpawner(opts ...SpawnerOption) *Spawner {
	s := &Spawner{idle: closedChan()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Spawn starts task in a new goroutine. report, if non-nil, is called
// from that goroutine with the outcome; a panic in report is swallowed.
// Returns ErrClosed if the spawner has been closed.
func (s *Spawner) Spawn(ctx context.Context, task Task, report func(Outcome)) error {
	if task == nil {
		return ErrNilTask
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if s.active == 0 {
		s.idle = make(chan struct{})
	}
	s.active++
	s.mu.Unlock()

	s.spawned.Add(1)
	go s.run(ctx, task, report)
	return nil
}

func (s *Spawner) run(ctx context.Context, task Task, report func(Outcome)) {
	defer s.done()

	out := Run(ctx, task, s.timeout)
	s.totalTimeNs.Add(out.Duration.Nanoseconds())

	switch {
	case out.Panic != nil:
		s.panicked.Add(1)
	case out.Skipped:
		s.skipped.Add(1)
	case out.Err != nil:
		if out.TimedOut() {
			s.timedOut.Add(1)
		}
		s.failed.Add(1)
	default:
		s.succeeded.Add(1)
	}

	if report != nil {
		func() {
			defer func() { _ = recover() }()
			report(out)
		}()
	}
}

// done marks a task as finished and wakes waiters when none remain.
func (s *Spawner) done() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.active--
	if s.active == 0 {
		close(s.idle)
	}
}

// Wait blocks until no task is in flight or the context is done.
// Tasks spawned while waiting extend the wait.
func (s *Spawner) Wait(ctx context.Context) error {
	for {
		s.mu.Lock()
		if s.active == 0 {
			s.mu.Unlock()
			return nil
		}
		idle := s.idle
		s.mu.Unlock()

		select {
		case <-idle:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close rejects further tasks and waits for in-flight tasks to finish
// or until the context is done. Closing twice is not an error.
func (s *Spawner) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	return s.Wait(ctx)
}

// IsClosed returns true if the spawner has been closed.
func (s *Spawner) IsClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// InFlight returns the number of tasks currently executing.
func (s *Spawner) InFlight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Stats returns spawner statistics.
// Counters are read individually, so values may be slightly inconsistent
// while tasks are running.
func (s *Spawner) Stats() SpawnerStats {
	spawned := s.spawned.Load()
	totalNs := s.totalTimeNs.Load()

	var avgNs int64
	if finished := s.succeeded.Load() + s.failed.Load() + s.panicked.Load(); finished > 0 {
		avgNs = totalNs / int64(finished)
	}

	return SpawnerStats{
		Spawned:       spawned,
		Succeeded:     s.succeeded.Load(),
		Failed:        s.failed.Load(),
		Panicked:      s.panicked.Load(),
		TimedOut:      s.timedOut.Load(),
		Skipped:       s.skipped.Load(),
		InFlight:      s.InFlight(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// SpawnerStats contains statistics for a Spawner.
type SpawnerStats struct {
	// Spawned is the total number of tasks started.
	Spawned uint64

	Succeeded uint64

	// Failed counts tasks that returned an error, timeouts included.
	Failed uint64

	Panicked uint64

	// TimedOut counts failed tasks whose deadline passed.
	TimedOut uint64

	// Skipped counts tasks whose context was done before they started.
	Skipped uint64

	// InFlight is the number of tasks still executing.
	InFlight int

	// TotalDuration is the cumulative time spent in tasks.
	TotalDuration time.Duration

	// AvgDuration is TotalDuration over finished tasks.
	AvgDuration time.Duration
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
