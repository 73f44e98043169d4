package camera

import "time"

// Frame is one captured image, JPEG encoded.
type Frame struct {
	JPEG []byte
	Seq  uint64    // increments per captured frame, starting at 1
	At   time.Time // capture time
}

// Static is a frame source that always returns the same frame. It stands in for a
// webcam in headless runs and tests.
type Static struct {
	frame Frame
}

// NewStatic returns a source that serves jpeg as frame 1.
func NewStatic(jpeg []byte) *Static {
	return &Static{frame: Frame{JPEG: jpeg, Seq: 1, At: time.Now()}}
}

// Capture returns the fixed frame.
func (s *Static) Capture() (Frame, error) {
	if len(s.frame.JPEG) == 0 {
		return Frame{}, ErrNoFrame
	}
	return s.frame, nil
}
