package render

import (
	"sort"
	"sync"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

// Shape is the state of one created shape.
type Shape struct {
	Handle    Handle
	Geometry  Geometry
	Transform geom.Transform
	Scale     float64
	Visible   bool
}

// World returns the shape's transform in scene space.
func (s Shape) World(groupYaw float64) geom.Transform {
	if !s.Geometry.Grouped {
		return s.Transform
	}
	return geom.Transform{
		Position: geom.RotateY(s.Transform.Position, groupYaw),
		Rotation: s.Transform.Rotation,
	}
}

// Point maps a local outline point into scene space.
func (s Shape) Point(local geom.Vec3, groupYaw float64) geom.Vec3 {
	p := s.Transform.Apply(local.Scale(s.Scale))
	if s.Geometry.Grouped {
		p = geom.RotateY(p, groupYaw)
	}
	return p
}

// Normal is the shape's facing direction in scene space.
func (s Shape) Normal(groupYaw float64) geom.Vec3 {
	n := s.Transform.Rotation.Rotate(geom.V(0, 0, 1))
	if s.Geometry.Grouped {
		n = geom.RotateY(n, groupYaw)
	}
	return n
}

// Snapshot is a consistent copy of the scene for drawing.
type Snapshot struct {
	Shapes   []Shape
	GroupYaw float64
	HUD      HUD
	Frame    uint64
}

// Scene is an in-memory Renderer. Window and terminal renderers draw from its
// snapshots; headless runs and tests use it directly.
type Scene struct {
	mu       sync.RWMutex
	shapes   []Shape
	groupYaw float64
	hud      HUD
	frames   uint64
}

// NewScene creates an empty scene.
func NewScene() *Scene {
	return &Scene{}
}

// CreateShape adds count shapes sharing g, visible at the origin.
func (s *Scene) CreateShape(count int, g Geometry) []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Handle, 0, count)
	for i := 0; i < count; i++ {
		h := Handle(len(s.shapes))
		s.shapes = append(s.shapes, Shape{Handle: h, Geometry: g, Scale: 1, Visible: true})
		out = append(out, h)
	}
	return out
}

// SetTransform places a shape. Unknown handles are ignored.
func (s *Scene) SetTransform(h Handle, position geom.Vec3, rotation geom.Euler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.shape(h); sh != nil {
		sh.Transform = geom.Transform{Position: position, Rotation: rotation}
	}
}

// SetScale sets a uniform scale.
func (s *Scene) SetScale(h Handle, scale float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.shape(h); sh != nil {
		sh.Scale = scale
	}
}

// SetVisible shows or hides a shape.
func (s *Scene) SetVisible(h Handle, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh := s.shape(h); sh != nil {
		sh.Visible = visible
	}
}

// SetGroupYaw spins all grouped shapes.
func (s *Scene) SetGroupYaw(yaw float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupYaw = yaw
}

// SetHUD replaces the overlay.
func (s *Scene) SetHUD(hud HUD) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hud = hud
}

// RenderFrame counts the frame. The scene itself draws nothing.
func (s *Scene) RenderFrame() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	return nil
}

// Frames returns how many frames were rendered.
func (s *Scene) Frames() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Shape returns a copy of one shape.
func (s *Scene) Shape(h Handle) (Shape, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if int(h) < 0 || int(h) >= len(s.shapes) {
		return Shape{}, false
	}
	return s.shapes[h], true
}

// Snapshot copies the scene.
func (s *Scene) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shapes := make([]Shape, len(s.shapes))
	copy(shapes, s.shapes)
	hud := s.hud
	hud.Levels = append([]float64(nil), s.hud.Levels...)

	return Snapshot{Shapes: shapes, GroupYaw: s.groupYaw, HUD: hud, Frame: s.frames}
}

func (s *Scene) shape(h Handle) *Shape {
	if int(h) < 0 || int(h) >= len(s.shapes) {
		return nil
	}
	return &s.shapes[h]
}

// Polygon is a shape projected to screen pixels.
type Polygon struct {
	Kind   Kind
	Points [][2]float64
	Depth  float64
	Normal geom.Vec3
	Index  int
}

// Project converts every visible shape to a screen polygon, sorted far to near.
func (snap Snapshot) Project(cam Camera, width, height int) []Polygon {
	var out []Polygon
	idx := 0
	for _, sh := range snap.Shapes {
		if sh.Geometry.Kind == KindPetal {
			idx++
		}
		if !sh.Visible || len(sh.Geometry.Outline) == 0 {
			continue
		}

		poly := Polygon{Kind: sh.Geometry.Kind, Normal: sh.Normal(snap.GroupYaw), Index: idx - 1}
		var depth float64
		ok := true
		for _, local := range sh.Geometry.Outline {
			x, y, d, visible := cam.Project(sh.Point(local, snap.GroupYaw), width, height)
			if !visible {
				ok = false
				break
			}
			poly.Points = append(poly.Points, [2]float64{x, y})
			depth += d
		}
		if !ok {
			continue
		}
		poly.Depth = depth / float64(len(poly.Points))
		out = append(out, poly)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Depth > out[j].Depth })
	return out
}
