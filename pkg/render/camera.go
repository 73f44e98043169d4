package render

import (
	"math"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

// Camera is a perspective camera looking down -Z.
type Camera struct {
	Position geom.Vec3
	FOV      float64 // vertical, degrees
	Near     float64
	Far      float64

	// CellAspect is the height/width ratio of one output pixel. Terminal cells
	// are about twice as tall as they are wide.
	CellAspect float64
}

// DefaultCamera sits in front of the flower, slightly above it.
func DefaultCamera() Camera {
	return Camera{
		Position:   geom.V(0, 2, 8),
		FOV:        50,
		Near:       0.1,
		Far:        100,
		CellAspect: 1,
	}
}

// Project maps a scene point to pixel coordinates on a width x height target.
// depth is the distance along the view axis; ok is false outside the clip range.
func (c Camera) Project(p geom.Vec3, width, height int) (x, y, depth float64, ok bool) {
	v := p.Sub(c.Position)
	depth = -v.Z
	if depth < c.Near || depth > c.Far || width <= 0 || height <= 0 {
		return 0, 0, depth, false
	}

	cell := c.CellAspect
	if cell <= 0 {
		cell = 1
	}
	aspect := float64(width) / (float64(height) * cell)
	f := 1 / math.Tan(c.FOV*math.Pi/360)

	ndcX := v.X / depth * f / aspect
	ndcY := v.Y / depth * f

	x = (ndcX + 1) / 2 * float64(width)
	y = (1 - ndcY) / 2 * float64(height)
	return x, y, depth, true
}
