package breath

import "errors"

var (
	// ErrInvalidMode is returned for modes with missing names or non-positive durations.
	ErrInvalidMode = errors.New("invalid breath mode")

	// ErrUnknownMode is returned when a mode name is not registered.
	ErrUnknownMode = errors.New("unknown breath mode")
)
