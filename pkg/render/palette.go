package render

import (
	"image/color"
	"math"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

// Scene colours.
var (
	PetalColor      = color.RGBA{R: 0xff, G: 0xc0, B: 0xe5, A: 0xd9}
	DiscColor       = color.RGBA{R: 0xff, G: 0xeb, B: 0x3b, A: 0xff}
	BackgroundColor = color.RGBA{R: 0x0d, G: 0x0b, B: 0x1e, A: 0xff}
	TextColor       = color.RGBA{R: 0xf0, G: 0xe6, B: 0xff, A: 0xff}
	fillLight       = color.RGBA{R: 0x93, G: 0x70, B: 0xdb, A: 0xff}
)

// Light directions, pointing from the scene toward the light.
var (
	keyLight     = unit(geom.V(5, 10, 5))
	fillLightDir = unit(geom.V(-5, -5, -5))
)

const (
	ambient       = 0.8
	keyStrength   = 0.6
	fillStrength  = 0.4
	shimmerAmount = 0.12
)

// Palette shades shapes and adds a slow per-petal shimmer.
type Palette struct {
	noise opensimplex.Noise
}

// NewPalette seeds the shimmer noise.
func NewPalette(seed int64) *Palette {
	return &Palette{noise: opensimplex.NewNormalized(seed)}
}

// Shade returns the colour of a polygon at time now. Occluders take the
// background colour so they hide what is behind them.
func (p *Palette) Shade(poly Polygon, now time.Duration) color.RGBA {
	switch poly.Kind {
	case KindOccluder:
		return BackgroundColor
	case KindDisc:
		return lit(DiscColor, poly.Normal, 0)
	default:
		return lit(PetalColor, poly.Normal, p.Shimmer(poly.Index, now))
	}
}

// Shimmer is a smooth brightness offset in [-shimmerAmount/2, shimmerAmount/2]
// that differs per petal.
func (p *Palette) Shimmer(index int, now time.Duration) float64 {
	if p == nil || p.noise == nil {
		return 0
	}
	n := p.noise.Eval2(float64(index)*0.73, now.Seconds()*0.25)
	return (n - 0.5) * shimmerAmount
}

// lit applies the two-light model. Petals are double sided, so the normal's
// sign is ignored.
func lit(base color.RGBA, normal geom.Vec3, shimmer float64) color.RGBA {
	n := unit(normal)
	key := math.Abs(n.Dot(keyLight)) * keyStrength
	fill := math.Abs(n.Dot(fillLightDir)) * fillStrength

	shade := func(c, fc uint8) uint8 {
		v := float64(c)/255*(ambient*0.75+key*0.5+shimmer) + float64(fc)/255*fill*0.25
		return uint8(geom.Clamp(v, 0, 1) * 255)
	}
	return color.RGBA{
		R: shade(base.R, fillLight.R),
		G: shade(base.G, fillLight.G),
		B: shade(base.B, fillLight.B),
		A: base.A,
	}
}

func unit(v geom.Vec3) geom.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Scale(1 / l)
}
