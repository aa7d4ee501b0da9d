package dispatch

import "errors"

var (
	// ErrClosed is returned when a task is spawned on a closed Spawner.
	ErrClosed = errors.New("spawner is closed")

	// ErrNilTask is returned when a nil task is spawned.
	ErrNilTask = errors.New("task cannot be nil")
)
