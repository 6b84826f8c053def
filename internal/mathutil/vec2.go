package mathutil

import "math"

// Vec2 is a 2-component vector (value type, stack-allocated).
// Convention: +Y is up, +X is right.
type Vec2 [2]float64

func (a Vec2) Add(b Vec2) Vec2 {
	return Vec2{a[0] + b[0], a[1] + b[1]}
}

func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a[0] - b[0], a[1] - b[1]}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v[0] * s, v[1] * s}
}

// Mul multiplies component-wise.
func (a Vec2) Mul(b Vec2) Vec2 {
	return Vec2{a[0] * b[0], a[1] * b[1]}
}

func (a Vec2) Dot(b Vec2) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

// Cross returns the z component of the 3D cross product of (a,0) and (b,0).
func (a Vec2) Cross(b Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

func (v Vec2) Len() float64 {
	return math.Hypot(v[0], v[1])
}

// Normalize returns the unit vector, or the zero vector for (near) zero input.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-12 {
		return Vec2{}
	}
	return Vec2{v[0] / l, v[1] / l}
}

// Rotate rotates counter-clockwise by rad radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	s, c := math.Sincos(rad)
	return Vec2{v[0]*c - v[1]*s, v[0]*s + v[1]*c}
}

// RotateQuarter rotates counter-clockwise by q quarter turns without
// trigonometric rounding, so grid directions stay exact.
func (v Vec2) RotateQuarter(q int) Vec2 {
	switch ((q % 4) + 4) % 4 {
	case 1:
		return Vec2{-v[1], v[0]}
	case 2:
		return Vec2{-v[0], -v[1]}
	case 3:
		return Vec2{v[1], -v[0]}
	}
	return v
}

// ApproxEqual reports whether a and b differ by at most eps per component.
func (a Vec2) ApproxEqual(b Vec2, eps float64) bool {
	return math.Abs(a[0]-b[0]) <= eps && math.Abs(a[1]-b[1]) <= eps
}

// QuarterRadians converts quarter turns to radians.
func QuarterRadians(q int) float64 {
	return float64(q) * math.Pi / 2
}
