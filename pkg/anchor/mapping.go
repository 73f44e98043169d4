package anchor

import "github.com/teslashibe/go-lotus/pkg/geom"

// Mapping converts a normalised image position into scene coordinates:
//
//	worldX = (nx - 0.5) * Width
//	worldY = (0.5 - ny) * Height + OffsetY
//	worldZ = 0
type Mapping struct {
	Width   float64
	Height  float64
	OffsetY float64
}

// DefaultMapping matches the scene camera framing.
func DefaultMapping() Mapping {
	return Mapping{Width: 4.0, Height: 3.0, OffsetY: 1.2}
}

// ToWorld maps a normalised image point into the scene.
func (m Mapping) ToWorld(nx, ny float64) geom.Vec3 {
	return geom.Vec3{
		X: (nx - 0.5) * m.Width,
		Y: (0.5-ny)*m.Height + m.OffsetY,
		Z: 0,
	}
}
