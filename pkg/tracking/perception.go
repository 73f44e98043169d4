package tracking

import (
	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/debug"
	"github.com/teslashibe/go-lotus/pkg/tracking/detection"
)

// Perception turns raw detections into the face the anchor follows.
type Perception struct {
	minConfidence float64
	mirror        bool

	consecutiveMisses int
	lastFace          *anchor.Face
}

// NewPerception creates a new perception system
func NewPerception(config Config) *Perception {
	return &Perception{
		minConfidence: config.MinConfidence,
		mirror:        config.Mirror,
	}
}

// Face picks the best detection and converts it to normalised face
// coordinates. It returns nil when no usable face is present.
func (p *Perception) Face(dets []detection.Detection) *anchor.Face {
	best := detection.SelectBest(dets)
	if best == nil || best.Confidence < p.minConfidence {
		p.consecutiveMisses++
		return nil
	}

	d := *best
	if p.mirror {
		d = d.Mirror()
	}
	cx, cy := d.Center()
	face := &anchor.Face{
		CenterX: clamp(cx, 0, 1),
		CenterY: clamp(cy, 0, 1),
		Size:    d.Size(),
	}

	debug.TrackLog("face selected",
		"x", face.CenterX,
		"y", face.CenterY,
		"size", face.Size,
		"confidence", d.Confidence,
		"candidates", len(dets))

	p.consecutiveMisses = 0
	p.lastFace = face
	return face
}

// GetConsecutiveMisses returns how many consecutive detections have failed
func (p *Perception) GetConsecutiveMisses() int {
	return p.consecutiveMisses
}

// LastFace returns the most recent accepted face, or nil if none yet.
func (p *Perception) LastFace() *anchor.Face {
	return p.lastFace
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
