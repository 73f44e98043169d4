// Package detection finds faces in camera frames.
package detection

import (
	"errors"
	"fmt"
)

// Detection is one face in a frame. Coordinates are normalised to 0-1 with the
// origin at the top-left corner of the image.
type Detection struct {
	X, Y       float64 // top-left corner of the bounding box
	W, H       float64
	Confidence float64
}

// Center is the middle of the box, which the anchor maps into the scene.
func (d Detection) Center() (x, y float64) {
	return d.X + d.W/2, d.Y + d.H/2
}

// Area is the box area as a fraction of the frame.
func (d Detection) Area() float64 {
	return d.W * d.H
}

// Size is the face width as a fraction of the frame width.
func (d Detection) Size() float64 {
	return d.W
}

// Mirror flips the detection horizontally, for selfie-view cameras.
func (d Detection) Mirror() Detection {
	d.X = 1 - d.X - d.W
	return d
}

// Detector finds faces in JPEG frames.
type Detector interface {
	Detect(jpeg []byte) ([]Detection, error)
	Close() error
}

// Config tunes the face model.
type Config struct {
	ModelPath        string  // ONNX model file
	ConfidenceThresh float64 // scores below are discarded by the model
	NMSThresh        float64
	TopK             int
	InputWidth       int
	InputHeight      int
}

// DefaultConfig returns defaults for the YuNet face model.
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet_2023mar.onnx",
		ConfidenceThresh: 0.5,
		NMSThresh:        0.3,
		TopK:             5000,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.ModelPath == "" {
		errs = append(errs, errors.New("model path is empty"))
	}
	if c.ConfidenceThresh <= 0 || c.ConfidenceThresh > 1 {
		errs = append(errs, fmt.Errorf("confidence threshold %.2f outside (0, 1]", c.ConfidenceThresh))
	}
	if c.NMSThresh < 0 || c.NMSThresh > 1 {
		errs = append(errs, fmt.Errorf("nms threshold %.2f outside [0, 1]", c.NMSThresh))
	}
	if c.InputWidth <= 0 || c.InputHeight <= 0 {
		errs = append(errs, fmt.Errorf("input size %dx%d must be positive", c.InputWidth, c.InputHeight))
	}
	return errors.Join(errs...)
}

// SelectBest picks the face to follow when several are in frame.
// Score is confidence * 0.7 + relative area * 0.3.
func SelectBest(dets []Detection) *Detection {
	if len(dets) == 0 {
		return nil
	}

	var largest float64
	for _, d := range dets {
		largest = max(largest, d.Area())
	}

	best, bestScore := 0, -1.0
	for i, d := range dets {
		score := d.Confidence * 0.7
		if largest > 0 {
			score += d.Area() / largest * 0.3
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	return &dets[best]
}
