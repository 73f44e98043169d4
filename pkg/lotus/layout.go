// Package lotus computes petal transforms for every rendered frame.
//
// Each petal's transform is a pure function of the breath phase, time spent in the
// phase, the anchor point and the frame timestamp. Nothing is carried between
// frames, so replaying the same inputs always produces the same layout.
package lotus

import (
	"math"
	"time"

	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/easing"
	"github.com/teslashibe/go-lotus/pkg/geom"
)

// Petal count limits.
const (
	DefaultPetals = 10
	MinPetals     = 3
	MaxPetals     = 32
)

// Motion constants. Rates are per millisecond.
const (
	restRadius  = 0.3
	openSpread  = 2.5 // radius and height gained over an inhale
	holdRadius  = 2.8
	holdHeight  = 3.0
	holdSpeed   = 0.0005
	idleRadius  = 0.5
	idleSpeed   = 0.0001
	idlePhase   = 0.2 // per-petal orbit offset
	idleBob     = 0.05
	idleBobRate = 0.001
	idleLift    = 0.1
	restPitch   = math.Pi * 0.15
	openPitch   = math.Pi * 0.5 // pitch gained over an inhale
)

// SpinRate is the angular speed of the whole flower around its vertical axis (rad/s).
const SpinRate = 0.18

// Origin is where the exhale settles, independent of the tracked head.
var Origin = geom.V(0, 0, 0)

// Frame holds everything a layout depends on.
type Frame struct {
	Phase    breath.Phase
	Elapsed  time.Duration // time since the phase started
	Duration time.Duration // configured length of the phase
	Anchor   geom.Vec3
	Now      time.Duration // wall-clock frame timestamp, drives idle drift and spin
}

// NewFrame builds the frame for timestamp now from a clock status and anchor.
func NewFrame(s breath.Status, a anchor.Anchor, now time.Duration) Frame {
	return Frame{
		Phase:    s.Phase,
		Elapsed:  now - s.PhaseStart,
		Duration: s.PhaseDuration(),
		Anchor:   a.Position,
		Now:      now,
	}
}

// Eased returns the eased phase progress for the frame.
func (f Frame) Eased() float64 {
	return easing.Progress(f.Elapsed, f.Duration)
}

// Petal is one petal of the flower.
type Petal struct {
	Index     int            `json:"index"`
	Transform geom.Transform `json:"transform"`
}

// Engine owns the petals. It is not safe for concurrent use.
type Engine struct {
	petals []Petal
}

// NewEngine creates count petals in their resting pose.
func NewEngine(count int) *Engine {
	if count < MinPetals {
		count = MinPetals
	}
	if count > MaxPetals {
		count = MaxPetals
	}
	e := &Engine{petals: make([]Petal, count)}
	for i := range e.petals {
		e.petals[i] = Petal{Index: i, Transform: RestPose(i, count)}
	}
	return e
}

// Count returns the number of petals.
func (e *Engine) Count() int {
	return len(e.petals)
}

// Petals returns a copy of the current petal state.
func (e *Engine) Petals() []Petal {
	out := make([]Petal, len(e.petals))
	copy(out, e.petals)
	return out
}

// Layout computes every petal transform for f without touching engine state.
func (e *Engine) Layout(f Frame) []geom.Transform {
	out := make([]geom.Transform, len(e.petals))
	eased := f.Eased()
	for i := range e.petals {
		out[i] = transform(f, eased, i, len(e.petals))
	}
	return out
}

// Apply recomputes the layout for f and writes it onto the petals.
func (e *Engine) Apply(f Frame) []Petal {
	for i, t := range e.Layout(f) {
		e.petals[i].Transform = t
	}
	return e.Petals()
}

// PetalTransform computes the transform of petal i of count for frame f.
func PetalTransform(f Frame, i, count int) geom.Transform {
	return transform(f, f.Eased(), i, count)
}

// BaseAngle spreads petals evenly around the circle.
func BaseAngle(i, count int) float64 {
	return float64(i) / float64(count) * geom.TwoPi
}

// RestPose is the closed-bud pose petals are created in.
func RestPose(i, count int) geom.Transform {
	angle := BaseAngle(i, count)
	return geom.Transform{
		Position: geom.V(math.Cos(angle)*restRadius, 0, math.Sin(angle)*restRadius),
		Rotation: geom.Euler{Pitch: restPitch, Yaw: angle},
	}
}

// GroupYaw is the slow spin applied to the whole flower beneath the petal layout.
func GroupYaw(now time.Duration) float64 {
	return geom.WrapAngle(now.Seconds() * SpinRate)
}

// World maps a petal transform into scene space by applying the group spin.
func World(t geom.Transform, groupYaw float64) geom.Transform {
	return geom.Transform{
		Position: geom.RotateY(t.Position, groupYaw),
		Rotation: geom.Euler{
			Pitch: t.Rotation.Pitch,
			Yaw:   t.Rotation.Yaw + groupYaw,
			Roll:  t.Rotation.Roll,
		},
	}
}

func transform(f Frame, eased float64, i, count int) geom.Transform {
	angle := BaseAngle(i, count)

	switch f.Phase {
	case breath.Inhale:
		return inhale(angle, eased, f.Anchor)
	case breath.Hold:
		return hold(angle, f.Elapsed, f.Anchor)
	case breath.Exhale:
		return exhale(angle, eased)
	default:
		return idle(angle, i, f.Now)
	}
}

// inhale spirals petals outward and upward from the anchor while they untwist.
func inhale(angle, e float64, a geom.Vec3) geom.Transform {
	radius := restRadius + e*openSpread
	height := e * openSpread
	spiral := angle + e*geom.TwoPi

	return geom.Transform{
		Position: orbit(a, spiral, radius, height),
		Rotation: geom.Euler{
			Pitch: restPitch + e*openPitch,
			Yaw:   angle + e*2*geom.TwoPi,
			Roll:  e * math.Pi,
		},
	}
}

// hold orbits petals at the open radius with constant angular velocity.
func hold(angle float64, elapsed time.Duration, a geom.Vec3) geom.Transform {
	w := math.Mod(ms(elapsed)*holdSpeed, geom.TwoPi)
	spiral := angle + geom.TwoPi + w

	return geom.Transform{
		Position: orbit(a, spiral, holdRadius, holdHeight),
		Rotation: geom.Euler{
			Pitch: restPitch + openPitch,
			Yaw:   angle + 2*geom.TwoPi + 2*w,
			Roll:  math.Pi,
		},
	}
}

// exhale winds petals back down onto the origin, mirroring inhale.
func exhale(angle, e float64) geom.Transform {
	radius := holdRadius - e*openSpread
	height := holdHeight - e*holdHeight
	spiral := angle + geom.TwoPi - e*geom.TwoPi

	return geom.Transform{
		Position: orbit(Origin, spiral, radius, height),
		Rotation: geom.Euler{
			Pitch: restPitch + openPitch - e*openPitch,
			Yaw:   angle + 2*geom.TwoPi - e*2*geom.TwoPi,
			Roll:  math.Pi - e*math.Pi,
		},
	}
}

// idle drifts petals on a small orbit with a gentle bob, driven by wall-clock time.
func idle(angle float64, i int, now time.Duration) geom.Transform {
	t := ms(now)
	drift := math.Mod(t*idleSpeed+float64(i)*idlePhase, geom.TwoPi)

	return geom.Transform{
		Position: geom.V(
			math.Cos(angle+drift)*idleRadius,
			idleLift+math.Sin(t*idleBobRate+float64(i))*idleBob,
			math.Sin(angle+drift)*idleRadius,
		),
		Rotation: geom.Euler{Pitch: restPitch, Yaw: angle},
	}
}

func orbit(centre geom.Vec3, angle, radius, height float64) geom.Vec3 {
	return geom.V(
		centre.X+math.Cos(angle)*radius,
		centre.Y+height,
		centre.Z+math.Sin(angle)*radius,
	)
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
