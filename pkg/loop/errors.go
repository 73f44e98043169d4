package loop

import "errors"

var (
	// ErrStopped is returned when posting to a loop that is no longer running.
	ErrStopped = errors.New("event loop stopped")

	// ErrRunning is returned when Run is called twice.
	ErrRunning = errors.New("event loop already running")
)
