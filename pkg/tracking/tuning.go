package tracking

import "time"

// TuningParams holds the tracking parameters that can change while running.
type TuningParams struct {
	DetectionHz   float64 `json:"detection_hz"`   // Detection frequency (1-30 Hz)
	MinConfidence float64 `json:"min_confidence"` // Minimum detector score
	Mirror        *bool   `json:"mirror,omitempty"`
}

// Detection frequency bounds.
const (
	MinDetectionHz = 1.0
	MaxDetectionHz = 30.0
)

// GetTuningParams returns current tuning parameters from the tracker.
func (t *Tracker) GetTuningParams() TuningParams {
	t.mu.RLock()
	defer t.mu.RUnlock()

	mirror := t.perception.mirror
	return TuningParams{
		DetectionHz:   1.0 / t.config.DetectionInterval.Seconds(),
		MinConfidence: t.perception.minConfidence,
		Mirror:        &mirror,
	}
}

// SetTuningParams updates tuning parameters at runtime.
// Only non-zero values are applied.
func (t *Tracker) SetTuningParams(params TuningParams) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if params.DetectionHz > 0 {
		hz := clamp(params.DetectionHz, MinDetectionHz, MaxDetectionHz)
		t.config.DetectionInterval = time.Duration(float64(time.Second) / hz)
	}
	if params.MinConfidence > 0 {
		c := clamp(params.MinConfidence, 0, 1)
		t.config.MinConfidence = c
		t.perception.minConfidence = c
	}
	if params.Mirror != nil {
		t.config.Mirror = *params.Mirror
		t.perception.mirror = *params.Mirror
	}

	t.logger.Info("tracking tuned",
		"interval", t.config.DetectionInterval,
		"min_confidence", t.config.MinConfidence,
		"mirror", t.config.Mirror)
}
