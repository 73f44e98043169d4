// Package render defines the drawing collaborator the lotus talks to, plus the
// in-memory scene and projection shared by the concrete window and terminal
// renderers.
package render

import (
	"context"
	"image/color"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

// Handle identifies a shape created by a Renderer.
type Handle int

// Kind says what a shape is for.
type Kind int

const (
	KindPetal Kind = iota
	KindDisc
	KindOccluder
)

func (k Kind) String() string {
	switch k {
	case KindPetal:
		return "petal"
	case KindDisc:
		return "disc"
	case KindOccluder:
		return "occluder"
	default:
		return "unknown"
	}
}

// Geometry is a flat shape in its local XY plane.
type Geometry struct {
	Kind    Kind
	Outline []geom.Vec3
	Color   color.RGBA
	Grouped bool // spins with the flower
}

// HUD is the text and bars drawn over the scene.
type HUD struct {
	Instruction string
	Cycles      string
	Mode        string
	FaceStatus  string
	Music       bool
	Running     bool
	Levels      []float64
}

// Renderer receives shapes and per-frame transforms.
type Renderer interface {
	CreateShape(count int, g Geometry) []Handle
	SetTransform(h Handle, position geom.Vec3, rotation geom.Euler)
	SetScale(h Handle, scale float64)
	SetVisible(h Handle, visible bool)
	SetGroupYaw(yaw float64)
	SetHUD(hud HUD)
	RenderFrame() error
}

// Driver is a Renderer that owns a frame clock and user input. Run calls frame
// once per displayed frame until ctx is cancelled or the user quits.
type Driver interface {
	Renderer
	Run(ctx context.Context, frame func()) error
	Commands() <-chan Command
}
