package tracking

import "errors"

// ErrNotReady means there was no new frame to look at. Run skips it silently.
var ErrNotReady = errors.New("tracking: no new frame")
