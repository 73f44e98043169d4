package audio

import "errors"

var (
	// ErrNoTracks is returned when the music folder holds no playable files.
	ErrNoTracks = errors.New("audio: no tracks")

	// ErrUnsupported is returned for a file extension no decoder handles.
	ErrUnsupported = errors.New("audio: unsupported file type")
)
