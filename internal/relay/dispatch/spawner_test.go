package dispatch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSpawner_Spawn_RunsTask(t *testing.T) {
	s := NewSpawner()
	defer s.Close(context.Background())

	executed := make(chan struct{})
	err := s.Spawn(context.Background(), func(ctx context.Context) error {
		close(executed)
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}

	select {
	case <-executed:
	case <-time.After(time.Second):
		t.Fatal("handler was not executed within timeout")
	}
}

func TestSpawner_Spawn_DoesNotBlock(t *testing.T) {
	s := NewSpawner()

	blocker := make(chan struct{})
	for i := 0; i < 50; i++ {
		err := s.Spawn(context.Background(), func(ctx context.Context) error {
			<-blocker
			return nil
		}, nil)
		if err != nil {
			t.Fatalf("Spawn() %d failed: %v", i, err)
		}
	}

	if got := s.InFlight(); got != 50 {
		t.Errorf("expected 50 in flight, got %d", got)
	}

	close(blocker)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}
	if got := s.InFlight(); got != 0 {
		t.Errorf("expected 0 in flight, got %d", got)
	}
}

func TestSpawner_Spawn_NilTask(t *testing.T) {
	s := NewSpawner()
	if err := s.Spawn(context.Background(), nil, nil); !errors.Is(err, ErrNilTask) {
		t.Errorf("expected ErrNilTask, got %v", err)
	}
}

func TestSpawner_Report(t *testing.T) {
	s := NewSpawner()

	want := errors.New("handler error")
	results := make(chan Outcome, 1)
	s.Spawn(context.Background(), func(ctx context.Context) error {
		return want
	}, func(out Outcome) {
		results <- out
	})

	select {
	case r := <-results:
		if !errors.Is(r.Err, want) {
			t.Errorf("expected %v, got %v", want, r.Err)
		}
	case <-time.After(time.Second):
		t.Fatal("report was not called")
	}
}

func TestSpawner_PanicIsolation(t *testing.T) {
	s := NewSpawner()
	var reported atomic.Pointer[Panic]

	var wg sync.WaitGroup
	wg.Add(2)

	var sibling atomic.Bool
	s.Spawn(context.Background(), func(ctx context.Context) error {
		defer wg.Done()
		panic("test panic")
	}, func(out Outcome) {
		reported.Store(out.Panic)
	})
	s.Spawn(context.Background(), func(ctx context.Context) error {
		defer wg.Done()
		sibling.Store(true)
		return nil
	}, nil)

	wg.Wait()
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	if !sibling.Load() {
		t.Error("expected sibling handler to run")
	}
	if p := reported.Load(); p == nil || p.Value != "test panic" {
		t.Errorf("expected reported panic, got %v", p)
	}

	stats := s.Stats()
	if stats.Panicked != 1 {
		t.Errorf("expected 1 panicked, got %d", stats.Panicked)
	}
	if stats.Succeeded != 1 {
		t.Errorf("expected 1 succeeded, got %d", stats.Succeeded)
	}
}

func TestSpawner_Timeout(t *testing.T) {
	s := NewSpawner(WithTaskTimeout(20 * time.Millisecond))

	s.Spawn(context.Background(), func(ctx context.Context) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(5 * time.Second):
			return nil
		}
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Wait(ctx); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	stats := s.Stats()
	if stats.TimedOut != 1 {
		t.Errorf("expected 1 timed out, got %d", stats.TimedOut)
	}
	if stats.Failed != 1 {
		t.Errorf("expected 1 failed, got %d", stats.Failed)
	}
}

func TestSpawner_Wait_ContextDeadline(t *testing.T) {
	s := NewSpawner()

	blocker := make(chan struct{})
	defer close(blocker)
	s.Spawn(context.Background(), func(ctx context.Context) error {
		<-blocker
		return nil
	}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

func TestSpawner_Wait_Idle(t *testing.T) {
	s := NewSpawner()
	if err := s.Wait(context.Background()); err != nil {
		t.Errorf("Wait() on idle spawner failed: %v", err)
	}
}

func TestSpawner_Close(t *testing.T) {
	s := NewSpawner()

	var executed atomic.Int32
	for i := 0; i < 10; i++ {
		s.Spawn(context.Background(), func(ctx context.Context) error {
			time.Sleep(5 * time.Millisecond)
			executed.Add(1)
			return nil
		}, nil)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if executed.Load() != 10 {
		t.Errorf("expected 10 executed, got %d", executed.Load())
	}
	if !s.IsClosed() {
		t.Error("expected spawner to be closed")
	}

	err := s.Spawn(context.Background(), func(ctx context.Context) error {
		return nil
	}, nil)
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	// Closing again is harmless.
	if err := s.Close(ctx); err != nil {
		t.Errorf("second Close() failed: %v", err)
	}
}

func TestSpawner_Stats(t *testing.T) {
	s := NewSpawner()

	s.Spawn(context.Background(), func(ctx context.Context) error { return nil }, nil)
	s.Spawn(context.Background(), func(ctx context.Context) error { return errors.New("e") }, nil)
	s.Spawn(context.Background(), func(ctx context.Context) error { panic("p") }, nil)

	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	stats := s.Stats()
	if stats.Spawned != 3 {
		t.Errorf("expected 3 spawned, got %d", stats.Spawned)
	}
	if stats.Succeeded != 1 || stats.Failed != 1 || stats.Panicked != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if stats.InFlight != 0 {
		t.Errorf("expected 0 in flight, got %d", stats.InFlight)
	}
}

func TestSpawner_SkipsCancelledContext(t *testing.T) {
	s := NewSpawner()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran atomic.Bool
	if err := s.Spawn(ctx, func(ctx context.Context) error {
		ran.Store(true)
		return nil
	}, nil); err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	if err := s.Wait(context.Background()); err != nil {
		t.Fatalf("Wait() failed: %v", err)
	}

	if ran.Load() {
		t.Error("task should not run")
	}
	if stats := s.Stats(); stats.Skipped != 1 || stats.Failed != 0 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}
