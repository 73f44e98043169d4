package render

import (
	"math"

	"github.com/teslashibe/go-lotus/pkg/geom"
)

// PetalOutline traces the petal: two cubic curves from the base to a tip two
// units up and back. segments is per curve.
func PetalOutline(segments int) []geom.Vec3 {
	if segments < 2 {
		segments = 2
	}
	base := [2]float64{0, 0}
	tip := [2]float64{0, 2}

	out := make([]geom.Vec3, 0, 2*segments)
	out = appendBezier(out, base, [2]float64{0.3, 0.5}, [2]float64{0.5, 1.2}, tip, segments)
	out = appendBezier(out, tip, [2]float64{-0.5, 1.2}, [2]float64{-0.3, 0.5}, base, segments)
	return out
}

// DiscOutline is a circle of radius r in the local XY plane.
func DiscOutline(r float64, segments int) []geom.Vec3 {
	if segments < 3 {
		segments = 3
	}
	out := make([]geom.Vec3, segments)
	for i := range out {
		a := float64(i) / float64(segments) * geom.TwoPi
		out[i] = geom.V(math.Cos(a)*r, math.Sin(a)*r, 0)
	}
	return out
}

// appendBezier samples a cubic curve, skipping t=0 so consecutive curves do
// not repeat their shared point.
func appendBezier(out []geom.Vec3, p0, p1, p2, p3 [2]float64, segments int) []geom.Vec3 {
	for i := 1; i <= segments; i++ {
		t := float64(i) / float64(segments)
		u := 1 - t
		a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
		out = append(out, geom.V(
			a*p0[0]+b*p1[0]+c*p2[0]+d*p3[0],
			a*p0[1]+b*p1[1]+c*p2[1]+d*p3[1],
			0,
		))
	}
	return out
}
