package tracking

import (
	"errors"
	"fmt"
	"time"
)

// Config holds all tunable parameters for face tracking
type Config struct {
	DetectionInterval time.Duration // How often to look at the latest frame
	MinConfidence     float64       // Ignore faces below this detector score
	Mirror            bool          // Flip detections horizontally before mapping
	ResultBuffer      int           // Result channel capacity; results are dropped when full
	LostAfter         int           // Consecutive misses before the face is reported lost
}

// DefaultConfig returns the recommended configuration for responsive tracking
func DefaultConfig() Config {
	return Config{
		DetectionInterval: 100 * time.Millisecond, // 10 detections per second
		MinConfidence:     0.5,
		Mirror:            false,
		ResultBuffer:      4,
		LostAfter:         5,
	}
}

// SlowConfig returns a configuration for low-power machines
func SlowConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionInterval = 250 * time.Millisecond
	cfg.LostAfter = 3
	return cfg
}

// AggressiveConfig returns a configuration that checks every camera frame
func AggressiveConfig() Config {
	cfg := DefaultConfig()
	cfg.DetectionInterval = 33 * time.Millisecond
	cfg.MinConfidence = 0.4
	cfg.LostAfter = 15
	return cfg
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var errs []error
	if c.DetectionInterval <= 0 {
		errs = append(errs, fmt.Errorf("detection interval %v must be positive", c.DetectionInterval))
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("min confidence %.2f outside [0, 1]", c.MinConfidence))
	}
	if c.ResultBuffer < 1 {
		errs = append(errs, errors.New("result buffer must hold at least one result"))
	}
	if c.LostAfter < 1 {
		errs = append(errs, errors.New("lost-after must be at least one miss"))
	}
	return errors.Join(errs...)
}
