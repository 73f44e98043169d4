// Package camera captures webcam frames for face tracking and holds the
// runtime-configurable capture settings.
package camera

import (
	"errors"
	"fmt"
)

// Config holds all camera configuration parameters.
// These can be modified via the camera API at runtime.
type Config struct {
	DeviceID  int `json:"device_id"` // OpenCV device index
	Width     int `json:"width"`     // Frame width in pixels
	Height    int `json:"height"`    // Frame height in pixels
	Framerate int `json:"framerate"` // Target FPS
	Quality   int `json:"quality"`   // JPEG quality 1-100

	// Mirror flips frames horizontally so the preview reads like a mirror.
	Mirror bool `json:"mirror"`

	// Brightness is passed to the driver as-is. Zero leaves the driver default.
	Brightness float64 `json:"brightness"`
}

// Capture limits.
const (
	MinWidth     = 160
	MinHeight    = 120
	MaxWidth     = 3840
	MaxHeight    = 2160
	MaxFramerate = 120
)

// DefaultConfig returns a 640x480 webcam configuration. Face detection
// does not need more resolution than this.
func DefaultConfig() Config {
	return Config{
		DeviceID:  0,
		Width:     640,
		Height:    480,
		Framerate: 30,
		Quality:   80,
	}
}

// Validate reports every field that is out of range.
func (c Config) Validate() error {
	var errs []error

	if c.DeviceID < 0 {
		errs = append(errs, fmt.Errorf("device_id %d must not be negative", c.DeviceID))
	}
	if c.Width < MinWidth || c.Width > MaxWidth {
		errs = append(errs, fmt.Errorf("width must be between %d and %d", MinWidth, MaxWidth))
	}
	if c.Height < MinHeight || c.Height > MaxHeight {
		errs = append(errs, fmt.Errorf("height must be between %d and %d", MinHeight, MaxHeight))
	}
	if c.Framerate < 1 || c.Framerate > MaxFramerate {
		errs = append(errs, fmt.Errorf("framerate must be between 1 and %d", MaxFramerate))
	}
	if c.Quality < 1 || c.Quality > 100 {
		errs = append(errs, errors.New("quality must be between 1 and 100"))
	}
	if c.Brightness < 0 || c.Brightness > 255 {
		errs = append(errs, errors.New("brightness must be between 0 and 255"))
	}

	return errors.Join(errs...)
}

// Capabilities describes the accepted ranges for the camera API.
func Capabilities() map[string]any {
	return map[string]any{
		"min_width":     MinWidth,
		"min_height":    MinHeight,
		"max_width":     MaxWidth,
		"max_height":    MaxHeight,
		"max_framerate": MaxFramerate,
		"presets":       PresetNames(),
	}
}
