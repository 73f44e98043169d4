package camera

import "errors"

var (
	// ErrClosed is returned by a webcam after Close.
	ErrClosed = errors.New("camera: closed")

	// ErrNoFrame is returned before the first frame has been captured.
	ErrNoFrame = errors.New("camera: no frame yet")

	// ErrUnknownPreset is returned for a preset name not in Presets.
	ErrUnknownPreset = errors.New("camera: unknown preset")
)
