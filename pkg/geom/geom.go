// Package geom holds the small amount of 3D math the lotus needs:
// vectors, Euler orientations and rigid transforms.
package geom

import "math"

// TwoPi is a full turn in radians.
const TwoPi = 2 * math.Pi

// Vec3 is a point or direction in scene units.
type Vec3 struct {
	X, Y, Z float64
}

// V returns a Vec3.
func V(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Len returns the Euclidean length.
func (v Vec3) Len() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Len()
}

// Lerp moves v toward o by fraction t.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		lerp(v.X, o.X, t),
		lerp(v.Y, o.Y, t),
		lerp(v.Z, o.Z, t),
	}
}

// Euler is an orientation in radians applied in X (pitch), Y (yaw), Z (roll) order.
type Euler struct {
	Pitch, Yaw, Roll float64
}

// Matrix returns the 3x3 rotation matrix Rx(pitch) * Ry(yaw) * Rz(roll).
func (e Euler) Matrix() [3][3]float64 {
	a, b := math.Cos(e.Pitch), math.Sin(e.Pitch)
	c, d := math.Cos(e.Yaw), math.Sin(e.Yaw)
	f, g := math.Cos(e.Roll), math.Sin(e.Roll)

	ae, af := a*f, a*g
	be, bf := b*f, b*g

	return [3][3]float64{
		{c * f, -c * g, d},
		{af + be*d, ae - bf*d, -b * c},
		{bf - ae*d, be + af*d, a * c},
	}
}

// Rotate applies the orientation to v.
func (e Euler) Rotate(v Vec3) Vec3 {
	return mulVec(e.Matrix(), v)
}

// Transform places a shape in the scene.
type Transform struct {
	Position Vec3
	Rotation Euler
}

// Apply maps a point from shape-local coordinates into the parent space.
func (t Transform) Apply(local Vec3) Vec3 {
	return t.Rotation.Rotate(local).Add(t.Position)
}

// RotateY spins v around the vertical axis by angle radians.
func RotateY(v Vec3, angle float64) Vec3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Vec3{
		X: v.X*c + v.Z*s,
		Y: v.Y,
		Z: -v.X*s + v.Z*c,
	}
}

// WrapAngle maps a into [0, 2π).
func WrapAngle(a float64) float64 {
	a = math.Mod(a, TwoPi)
	if a < 0 {
		a += TwoPi
	}
	return a
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

func mulVec(m [3][3]float64, v Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		Y: m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		Z: m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}
