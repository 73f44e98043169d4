package anchor

import (
	"math"
	"testing"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

func TestMapping_ToWorld(t *testing.T) {
	m := DefaultMapping()

	tests := []struct {
		name   string
		nx, ny float64
		want   geom.Vec3
	}{
		{"centre", 0.5, 0.5, geom.V(0, 1.2, 0)},
		{"top left", 0, 0, geom.V(-2, 2.7, 0)},
		{"bottom right", 1, 1, geom.V(2, -0.3, 0)},
		{"quarter", 0.25, 0.75, geom.V(-1, 0.45, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := m.ToWorld(tc.nx, tc.ny)
			if got.Dist(tc.want) > 1e-9 {
				t.Errorf("ToWorld(%v,%v) = %+v, want %+v", tc.nx, tc.ny, got, tc.want)
			}
		})
	}
}

func TestTracker_DefaultsWithoutTarget(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	a := tr.Current()
	if a.HasTarget {
		t.Error("new tracker should have no target")
	}
	if a.Position != DefaultPoint {
		t.Errorf("Position = %+v, want default %+v", a.Position, DefaultPoint)
	}
}

func TestTracker_ConvergesWithoutOvershoot(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	target := geom.V(1.8, 0.4, 0)

	prev := tr.Smoothed().Dist(target)
	for i := 0; i < 100; i++ {
		tr.Update(target)
		d := tr.Smoothed().Dist(target)
		if i == 0 && d == 0 {
			t.Fatal("first update jumped straight to the target")
		}
		if d > prev {
			t.Fatalf("update %d moved away: %v > %v", i, d, prev)
		}
		if d > 0 && d >= prev {
			t.Fatalf("update %d did not get closer: %v", i, d)
		}
		// Never past the target: each axis stays on the start side.
		if tr.Smoothed().X > target.X || tr.Smoothed().Y < target.Y {
			t.Fatalf("update %d overshot: %+v", i, tr.Smoothed())
		}
		prev = d
	}
	if prev > 1e-6 {
		t.Errorf("did not converge: distance %v", prev)
	}
}

func TestTracker_UpdateIsFractional(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	start := tr.Smoothed()
	target := geom.V(2, 1.5, 0)

	tr.Update(target)

	want := start.Lerp(target, DefaultSmoothing)
	if tr.Smoothed().Dist(want) > 1e-12 {
		t.Errorf("Smoothed() = %+v, want %+v", tr.Smoothed(), want)
	}
}

func TestTracker_SameTargetAsStart(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	tr.Update(DefaultPoint)
	if tr.Smoothed() != DefaultPoint {
		t.Errorf("Smoothed() = %+v, want unchanged", tr.Smoothed())
	}
}

func TestTracker_NoTargetKeepsSmoothedPosition(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	for i := 0; i < 10; i++ {
		tr.Update(geom.V(1, 1, 0))
	}
	held := tr.Smoothed()

	tr.NoTarget()

	if tr.Current().HasTarget {
		t.Error("HasTarget should be false after NoTarget")
	}
	if tr.Current().Position != DefaultPoint {
		t.Errorf("Current() = %+v, want fallback", tr.Current().Position)
	}
	if tr.Smoothed() != held {
		t.Errorf("smoothed position reset: %+v, want %+v", tr.Smoothed(), held)
	}

	// Reacquiring continues from the held position.
	tr.Update(geom.V(1, 1, 0))
	if tr.Smoothed().Dist(geom.V(1, 1, 0)) >= held.Dist(geom.V(1, 1, 0)) {
		t.Error("reacquired update did not continue from the held position")
	}
}

func TestTracker_Observe(t *testing.T) {
	tr := NewTracker(DefaultConfig())

	tr.Observe(&Face{CenterX: 0.75, CenterY: 0.5, Size: 0.2})

	if !tr.HasTarget() {
		t.Fatal("Observe(face) should set a target")
	}
	raw := DefaultMapping().ToWorld(0.75, 0.5)
	want := DefaultPoint.Lerp(raw, DefaultSmoothing)
	if tr.Current().Position.Dist(want) > 1e-12 {
		t.Errorf("Position = %+v, want %+v", tr.Current().Position, want)
	}

	occ := tr.Occluder()
	if !occ.Visible || math.Abs(occ.Scale-1.0) > 1e-12 {
		t.Errorf("Occluder = %+v, want visible with scale 1", occ)
	}
	if occ.Position != tr.Smoothed() {
		t.Errorf("occluder at %+v, anchor at %+v", occ.Position, tr.Smoothed())
	}

	tr.Observe(nil)
	if tr.HasTarget() || tr.Occluder().Visible {
		t.Error("Observe(nil) should clear target and hide the occluder")
	}
}

func TestTracker_NeverDetectedStaysAtDefault(t *testing.T) {
	tr := NewTracker(DefaultConfig())
	for i := 0; i < 100; i++ {
		tr.Observe(nil)
		if a := tr.Current(); a.HasTarget || a.Position != DefaultPoint {
			t.Fatalf("iteration %d drifted: %+v", i, a)
		}
	}
	if tr.Updates() != 0 {
		t.Errorf("Updates() = %d, want 0", tr.Updates())
	}
}

func TestNewTracker_InvalidSmoothing(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Smoothing = 3
	tr := NewTracker(cfg)
	tr.Update(geom.V(0, 0, 0))
	want := DefaultPoint.Lerp(geom.V(0, 0, 0), DefaultSmoothing)
	if tr.Smoothed().Dist(want) > 1e-12 {
		t.Errorf("invalid smoothing not replaced by default: %+v", tr.Smoothed())
	}
}
