package lotus

import (
	"math"
	"testing"
	"time"

	"github.com/teslashibe/go-lotus/pkg/anchor"
	"github.com/teslashibe/go-lotus/pkg/breath"
	"github.com/teslashibe/go-lotus/pkg/geom"
)

const eps = 1e-9

func near(a, b float64) bool {
	return math.Abs(a-b) < eps
}

func nearVec(a, b geom.Vec3) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z)
}

func frame(p breath.Phase, elapsed, dur time.Duration, a geom.Vec3) Frame {
	return Frame{Phase: p, Elapsed: elapsed, Duration: dur, Anchor: a, Now: 5 * time.Second}
}

func TestNewEngine_ClampsCount(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{10, 10},
		{0, MinPetals},
		{-4, MinPetals},
		{100, MaxPetals},
	}
	for _, tc := range tests {
		if got := NewEngine(tc.in).Count(); got != tc.want {
			t.Errorf("NewEngine(%d).Count() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLayout_Deterministic(t *testing.T) {
	e := NewEngine(DefaultPetals)
	a := geom.V(0.4, 1.7, 0)

	for _, p := range []breath.Phase{breath.Idle, breath.Inhale, breath.Hold, breath.Exhale, breath.Rest} {
		f := frame(p, 1700*time.Millisecond, 4*time.Second, a)
		first := e.Layout(f)
		e.Apply(frame(breath.Hold, time.Second, 7*time.Second, geom.V(9, 9, 9)))
		second := e.Layout(f)
		for i := range first {
			if first[i] != second[i] {
				t.Fatalf("%s petal %d: layout depends on prior state: %+v != %+v", p, i, first[i], second[i])
			}
		}
	}
}

func TestInhale_StartsClosedAtAnchor(t *testing.T) {
	a := geom.V(1, 2, 0)
	f := frame(breath.Inhale, 0, 4*time.Second, a)

	for i := 0; i < DefaultPetals; i++ {
		tr := PetalTransform(f, i, DefaultPetals)
		if !near(tr.Position.Sub(a).Len(), restRadius) {
			t.Errorf("petal %d: distance from anchor = %v, want %v", i, tr.Position.Sub(a).Len(), restRadius)
		}
		if !near(tr.Position.Y, a.Y) {
			t.Errorf("petal %d: height = %v, want %v", i, tr.Position.Y, a.Y)
		}
		if !near(tr.Rotation.Pitch, restPitch) || !near(tr.Rotation.Roll, 0) {
			t.Errorf("petal %d: rotation = %+v", i, tr.Rotation)
		}
	}
}

func TestInhale_EndsOpen(t *testing.T) {
	a := geom.V(0, 1.5, 0)
	f := frame(breath.Inhale, 4*time.Second, 4*time.Second, a)

	for i := 0; i < DefaultPetals; i++ {
		tr := PetalTransform(f, i, DefaultPetals)
		angle := BaseAngle(i, DefaultPetals)
		want := geom.V(math.Cos(angle)*holdRadius, a.Y+openSpread, math.Sin(angle)*holdRadius)
		if !nearVec(tr.Position, want) {
			t.Errorf("petal %d: position = %+v, want %+v", i, tr.Position, want)
		}
		if !near(tr.Rotation.Pitch, math.Pi*0.65) || !near(tr.Rotation.Roll, math.Pi) {
			t.Errorf("petal %d: rotation = %+v", i, tr.Rotation)
		}
	}
}

func TestInhale_FollowsAnchor(t *testing.T) {
	f1 := frame(breath.Inhale, 2*time.Second, 4*time.Second, geom.V(0, 1.5, 0))
	f2 := f1
	f2.Anchor = geom.V(1, 1, 0)

	a := PetalTransform(f1, 3, DefaultPetals)
	b := PetalTransform(f2, 3, DefaultPetals)
	shift := b.Position.Sub(a.Position)
	if !nearVec(shift, geom.V(1, -0.5, 0)) {
		t.Errorf("petal moved by %+v, want anchor delta", shift)
	}
	if a.Rotation != b.Rotation {
		t.Errorf("rotation changed with anchor: %+v vs %+v", a.Rotation, b.Rotation)
	}
}

func TestHold_OrbitsAtOpenRadius(t *testing.T) {
	a := geom.V(0.5, 1.2, 0)
	for _, elapsed := range []time.Duration{0, time.Second, 3500 * time.Millisecond, 7 * time.Second} {
		f := frame(breath.Hold, elapsed, 7*time.Second, a)
		for i := 0; i < DefaultPetals; i++ {
			tr := PetalTransform(f, i, DefaultPetals)
			d := tr.Position.Sub(a)
			if !near(math.Hypot(d.X, d.Z), holdRadius) {
				t.Errorf("elapsed %v petal %d: radius = %v", elapsed, i, math.Hypot(d.X, d.Z))
			}
			if !near(d.Y, holdHeight) {
				t.Errorf("elapsed %v petal %d: height = %v", elapsed, i, d.Y)
			}
		}
	}
}

func TestHold_AdvancesWithElapsed(t *testing.T) {
	a := geom.V(0, 0, 0)
	p0 := PetalTransform(frame(breath.Hold, 0, 4*time.Second, a), 0, DefaultPetals).Position
	p1 := PetalTransform(frame(breath.Hold, time.Second, 4*time.Second, a), 0, DefaultPetals).Position

	got := math.Atan2(p1.Z, p1.X) - math.Atan2(p0.Z, p0.X)
	if !near(got, holdSpeed*1000) {
		t.Errorf("orbit advanced %v rad in 1s, want %v", got, holdSpeed*1000)
	}
}

func TestExhale_ReturnsToOrigin(t *testing.T) {
	// Anchor is ignored during exhale.
	a := geom.V(3, 4, 0)

	start := frame(breath.Exhale, 0, 8*time.Second, a)
	end := frame(breath.Exhale, 8*time.Second, 8*time.Second, a)

	for i := 0; i < DefaultPetals; i++ {
		s := PetalTransform(start, i, DefaultPetals)
		if !near(math.Hypot(s.Position.X, s.Position.Z), holdRadius) || !near(s.Position.Y, holdHeight) {
			t.Errorf("petal %d exhale start = %+v", i, s.Position)
		}

		e := PetalTransform(end, i, DefaultPetals)
		if !near(e.Position.Len(), restRadius) {
			t.Errorf("petal %d: exhale ends %v from origin, want %v", i, e.Position.Len(), restRadius)
		}
		if !near(e.Rotation.Pitch, restPitch) || !near(e.Rotation.Roll, 0) {
			t.Errorf("petal %d: exhale end rotation = %+v", i, e.Rotation)
		}
	}
}

func TestExhale_MirrorsInhaleEnd(t *testing.T) {
	in := frame(breath.Inhale, 4*time.Second, 4*time.Second, Origin)
	out := frame(breath.Exhale, 0, 8*time.Second, Origin)
	for i := 0; i < DefaultPetals; i++ {
		a := PetalTransform(in, i, DefaultPetals)
		b := PetalTransform(out, i, DefaultPetals)
		if !near(math.Hypot(a.Position.X, a.Position.Z), math.Hypot(b.Position.X, b.Position.Z)) {
			t.Errorf("petal %d: radius jumps between inhale end and exhale start", i)
		}
		if !near(a.Rotation.Pitch, b.Rotation.Pitch) || !near(a.Rotation.Roll, b.Rotation.Roll) {
			t.Errorf("petal %d: rotation jumps: %+v vs %+v", i, a.Rotation, b.Rotation)
		}
	}
}

func TestIdle_DriftsOnSmallOrbit(t *testing.T) {
	for _, p := range []breath.Phase{breath.Idle, breath.Rest} {
		for _, now := range []time.Duration{0, time.Second, 90 * time.Second} {
			f := Frame{Phase: p, Now: now, Anchor: geom.V(5, 5, 5)}
			for i := 0; i < DefaultPetals; i++ {
				tr := PetalTransform(f, i, DefaultPetals)
				if !near(math.Hypot(tr.Position.X, tr.Position.Z), idleRadius) {
					t.Errorf("%s petal %d: radius = %v", p, i, math.Hypot(tr.Position.X, tr.Position.Z))
				}
				if tr.Position.Y < idleLift-idleBob-eps || tr.Position.Y > idleLift+idleBob+eps {
					t.Errorf("%s petal %d: bob height %v out of range", p, i, tr.Position.Y)
				}
				if !near(tr.Rotation.Pitch, restPitch) {
					t.Errorf("%s petal %d: pitch = %v", p, i, tr.Rotation.Pitch)
				}
			}
		}
	}
}

func TestIdle_IgnoresElapsed(t *testing.T) {
	f1 := Frame{Phase: breath.Rest, Elapsed: 0, Now: 3 * time.Second}
	f2 := Frame{Phase: breath.Rest, Elapsed: 900 * time.Millisecond, Now: 3 * time.Second}
	if PetalTransform(f1, 2, DefaultPetals) != PetalTransform(f2, 2, DefaultPetals) {
		t.Error("rest layout should depend on frame time only")
	}
}

func TestGroupYaw(t *testing.T) {
	if got := GroupYaw(0); got != 0 {
		t.Errorf("GroupYaw(0) = %v", got)
	}
	if got := GroupYaw(10 * time.Second); !near(got, 1.8) {
		t.Errorf("GroupYaw(10s) = %v, want 1.8", got)
	}
	full := time.Duration(geom.TwoPi / SpinRate * float64(time.Second))
	if got := GroupYaw(full + 10*time.Second); math.Abs(got-1.8) > 1e-6 {
		t.Errorf("GroupYaw should wrap, got %v", got)
	}
}

func TestWorld_AppliesSpin(t *testing.T) {
	tr := geom.Transform{Position: geom.V(1, 2, 0), Rotation: geom.Euler{Yaw: 0.3}}
	w := World(tr, math.Pi/2)
	if !nearVec(w.Position, geom.V(0, 2, -1)) {
		t.Errorf("position = %+v", w.Position)
	}
	if !near(w.Rotation.Yaw, 0.3+math.Pi/2) {
		t.Errorf("yaw = %v", w.Rotation.Yaw)
	}
}

func TestNewFrame(t *testing.T) {
	s := breath.Status{
		Phase:      breath.Hold,
		PhaseStart: 10 * time.Second,
		Running:    true,
		Mode:       breath.Calm,
	}
	a := anchor.Anchor{Position: geom.V(1, 2, 3), HasTarget: true}

	f := NewFrame(s, a, 12*time.Second)
	if f.Phase != breath.Hold || f.Elapsed != 2*time.Second || f.Duration != 7*time.Second {
		t.Errorf("frame = %+v", f)
	}
	if f.Anchor != a.Position || f.Now != 12*time.Second {
		t.Errorf("frame = %+v", f)
	}
}

// With no face ever detected, the flower opens around the default anchor and
// closes back onto the origin.
func TestScenario_NoFace(t *testing.T) {
	tr := anchor.NewTracker(anchor.DefaultConfig())
	for i := 0; i < 50; i++ {
		tr.Observe(nil)
	}
	e := NewEngine(DefaultPetals)

	open := e.Apply(NewFrame(breath.Status{Phase: breath.Inhale, Mode: breath.Balance}, tr.Current(), 4*time.Second))
	for _, p := range open {
		if !near(p.Transform.Position.Y, anchor.DefaultPoint.Y+openSpread) {
			t.Fatalf("petal %d height = %v", p.Index, p.Transform.Position.Y)
		}
	}

	closed := e.Apply(NewFrame(breath.Status{Phase: breath.Exhale, Mode: breath.Balance}, tr.Current(), 4*time.Second))
	for _, p := range closed {
		if !near(p.Transform.Position.Len(), restRadius) {
			t.Fatalf("petal %d distance from origin = %v", p.Index, p.Transform.Position.Len())
		}
	}
}
