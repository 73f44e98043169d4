package session

import "errors"

var (
	// ErrNotRunning is returned by operations that need Run to be active.
	ErrNotRunning = errors.New("session not running")

	// ErrNoMusic is returned when no music player is configured.
	ErrNoMusic = errors.New("music not available")

	// ErrNotDriver is returned by Run when the renderer has no frame clock.
	ErrNotDriver = errors.New("renderer cannot drive frames")
)
