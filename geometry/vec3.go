package geometry

import "fmt"

// Vec3 is a three-component float32 vector.
type Vec3 struct {
	X, Y, Z float32
}

// NewVec3 creates a Vec3 from its components.
func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Splat returns a Vec3 with all components set to v.
func Splat(v float32) Vec3 {
	return Vec3{X: v, Y: v, Z: v}
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale returns v scaled by s.
func (v Vec3) Scale(s float32) Vec3 {
	return Vec3{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

// Min returns the componentwise minimum of v and o.
func (v Vec3) Min(o Vec3) Vec3 {
	return Vec3{X: min(v.X, o.X), Y: min(v.Y, o.Y), Z: min(v.Z, o.Z)}
}

// Max returns the componentwise maximum of v and o.
func (v Vec3) Max(o Vec3) Vec3 {
	return Vec3{X: max(v.X, o.X), Y: max(v.Y, o.Y), Z: max(v.Z, o.Z)}
}

// AABB makes a point its own degenerate bound, so raw points can be
// indexed like any other bounded shape.
func (v Vec3) AABB() AABB {
	return PointAABB(v)
}

// Component returns the component selected by axis.
func (v Vec3) Component(axis Axis) float32 {
	switch axis {
	case AxisX:
		return v.X
	case AxisY:
		return v.Y
	default:
		return v.Z
	}
}

// String implements fmt.Stringer.
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}
