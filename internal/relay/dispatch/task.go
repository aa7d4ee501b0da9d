package dispatch

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"
)

// Task is one unit of work run behind the failure boundary.
type Task func(ctx context.Context) error

// Panic records a recovered panic.
type Panic struct {
	Value any
	Stack []byte
}

func (p *Panic) String() string {
	return fmt.Sprintf("panic: %v", p.Value)
}

// Outcome describes how a task finished.
type Outcome struct {
	// Err is the error returned by the task, or the context error when
	// the task was skipped.
	Err error

	// Panic is set when the task panicked.
	Panic *Panic

	// Duration is the time spent inside the task.
	Duration time.Duration

	// Skipped is set when ctx was already done and the task never ran.
	Skipped bool
}

// OK reports whether the task ran and returned nil.
func (o Outcome) OK() bool {
	return !o.Skipped && o.Err == nil && o.Panic == nil
}

// TimedOut reports whether the task failed because its deadline passed.
func (o Outcome) TimedOut() bool {
	return o.Panic == nil && errors.Is(o.Err, context.DeadlineExceeded)
}

// Run executes task, converting a panic into Outcome.Panic. A positive
// timeout bounds the context passed to the task; the task must observe
// ctx for the bound to take effect.
func Run(ctx context.Context, task Task, timeout time.Duration) (out Outcome) {
	if err := ctx.Err(); err != nil {
		return Outcome{Err: err, Skipped: true}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	defer func() {
		out.Duration = time.Since(start)
		if r := recover(); r != nil {
			out.Err = nil
			out.Panic = &Panic{Value: r, Stack: debug.Stack()}
		}
	}()

	out.Err = task(ctx)
	return out
}
