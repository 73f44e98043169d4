// Package anchor tracks the point the lotus is centred on.
//
// The point follows face detections through exponential smoothing so detector
// jitter never makes the flower jump, and falls back to a fixed resting point
// whenever no face is being tracked.
package anchor

import (
	"github.com/teslashibe/go-lotus/pkg/debug"
	"github.com/teslashibe/go-lotus/pkg/geom"
)

// DefaultPoint is where the flower centres when no face is tracked.
var DefaultPoint = geom.V(0, 1.5, 0)

// DefaultSmoothing is the fraction of the remaining distance covered per update.
const DefaultSmoothing = 0.2

// Anchor is the centre point seen by the layout engine.
type Anchor struct {
	Position  geom.Vec3 `json:"position"`
	HasTarget bool      `json:"has_target"`
}

// Face is a single detection in normalised image coordinates (0-1, origin top-left).
type Face struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Size    float64 `json:"size"` // width as a fraction of the frame width
}

// Occluder is an invisible head-sized sphere that hides petals passing behind the head.
type Occluder struct {
	Visible  bool      `json:"visible"`
	Position geom.Vec3 `json:"position"`
	Scale    float64   `json:"scale"`
}

// Config holds tracker tunables.
type Config struct {
	Smoothing     float64   // 0-1, share of the remaining distance per update
	Fallback      geom.Vec3 // position reported without a target
	Mapping       Mapping   // image to world transform
	OccluderScale float64   // world radius per unit of normalised face width
}

// DefaultConfig returns the tracker settings the lotus was tuned with.
func DefaultConfig() Config {
	return Config{
		Smoothing:     DefaultSmoothing,
		Fallback:      DefaultPoint,
		Mapping:       DefaultMapping(),
		OccluderScale: 5.0,
	}
}

// Tracker maintains the smoothed anchor. It is not safe for concurrent use; all
// calls happen on the event loop, which makes every update atomic to readers.
type Tracker struct {
	cfg      Config
	smoothed geom.Vec3
	target   bool
	occluder Occluder
	updates  uint64
}

// NewTracker creates a tracker resting at the fallback point.
func NewTracker(cfg Config) *Tracker {
	if cfg.Smoothing <= 0 || cfg.Smoothing > 1 {
		cfg.Smoothing = DefaultSmoothing
	}
	return &Tracker{
		cfg:      cfg,
		smoothed: cfg.Fallback,
	}
}

// Update moves the smoothed position toward raw and marks a target as present.
func (t *Tracker) Update(raw geom.Vec3) {
	t.smoothed = t.smoothed.Lerp(raw, t.cfg.Smoothing)
	t.target = true
	t.updates++
}

// NoTarget records that tracking was lost. The smoothed position is kept so the
// flower resumes from where it was when the face reappears.
func (t *Tracker) NoTarget() {
	t.target = false
	t.occluder.Visible = false
}

// Observe applies one detection result; nil means no face in the frame.
func (t *Tracker) Observe(face *Face) {
	if face == nil {
		// Hides the occluder too, so no stale head shape hangs in the scene.
		t.NoTarget()
		return
	}

	raw := t.cfg.Mapping.ToWorld(face.CenterX, face.CenterY)
	t.Update(raw)
	t.occluder = Occluder{
		Visible:  true,
		Position: t.smoothed,
		Scale:    face.Size * t.cfg.OccluderScale,
	}

	debug.TrackLog("anchor update",
		"nx", face.CenterX, "ny", face.CenterY,
		"raw", raw, "smoothed", t.smoothed)
}

// Current returns the anchor the layout engine should centre on.
func (t *Tracker) Current() Anchor {
	if !t.target {
		return Anchor{Position: t.cfg.Fallback}
	}
	return Anchor{Position: t.smoothed, HasTarget: true}
}

// Smoothed returns the last smoothed position regardless of target state.
func (t *Tracker) Smoothed() geom.Vec3 {
	return t.smoothed
}

// HasTarget reports whether a face is currently tracked.
func (t *Tracker) HasTarget() bool {
	return t.target
}

// Occluder returns the head occluder state.
func (t *Tracker) Occluder() Occluder {
	return t.occluder
}

// Updates returns how many detections have been applied.
func (t *Tracker) Updates() uint64 {
	return t.updates
}
