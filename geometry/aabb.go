package geometry

import (
	"fmt"
	"math"
)

// AABB is an axis-aligned bounding box given by its minimum and maximum
// corners. A box is valid (non-empty) when Min <= Max componentwise.
//
// The zero-extent convention is deliberate: NewAABB does not enforce
// Min <= Max, which allows the empty sentinel (Min=+Inf, Max=-Inf) to act
// as the identity element for Join.
type AABB struct {
	Min Vec3
	Max Vec3
}

// NewAABB creates an AABB with the given corners. The caller is responsible
// for Min <= Max when a valid box is intended.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the canonical empty box: Min at +Inf, Max at -Inf.
// It contains no point and is the identity for Join.
func EmptyAABB() AABB {
	inf := float32(math.Inf(1))
	return AABB{
		Min: Vec3{X: inf, Y: inf, Z: inf},
		Max: Vec3{X: -inf, Y: -inf, Z: -inf},
	}
}

// Contains reports whether p lies inside the box, bounds inclusive.
func (a AABB) Contains(p Vec3) bool {
	return p.X >= a.Min.X && p.X <= a.Max.X &&
		p.Y >= a.Min.Y && p.Y <= a.Max.Y &&
		p.Z >= a.Min.Z && p.Z <= a.Max.Z
}

// ApproxContainsEps reports whether p is inside the box within epsilon on
// every component.
func (a AABB) ApproxContainsEps(p Vec3, epsilon float32) bool {
	return (p.X-a.Min.X) > -epsilon && (p.X-a.Max.X) < epsilon &&
		(p.Y-a.Min.Y) > -epsilon && (p.Y-a.Max.Y) < epsilon &&
		(p.Z-a.Min.Z) > -epsilon && (p.Z-a.Max.Z) < epsilon
}

// ApproxContainsAABBEps reports whether both corners of other are inside the
// box within epsilon.
func (a AABB) ApproxContainsAABBEps(other AABB, epsilon float32) bool {
	return a.ApproxContainsEps(other.Min, epsilon) && a.ApproxContainsEps(other.Max, epsilon)
}

// RelativeEq reports whether the two boxes are equal within epsilon on every
// corner component. The comparison is symmetric, so rounding drift from
// repeated joins does not break equality in either direction.
func (a AABB) RelativeEq(other AABB, epsilon float32) bool {
	return vecRelativeEq(a.Min, other.Min, epsilon) && vecRelativeEq(a.Max, other.Max, epsilon)
}

func vecRelativeEq(a, b Vec3, epsilon float32) bool {
	eps := Splat(epsilon)
	cmp := func(hi, lo Vec3) bool {
		return hi.X >= lo.X && hi.Y >= lo.Y && hi.Z >= lo.Z
	}
	return cmp(a.Add(eps), b) && cmp(b, a.Sub(eps)) && cmp(a, b.Sub(eps)) && cmp(b.Add(eps), a)
}

// Join returns the minimal box containing both a and other. Joining with the
// empty box returns the other operand unchanged.
func (a AABB) Join(other AABB) AABB {
	return AABB{
		Min: a.Min.Min(other.Min),
		Max: a.Max.Max(other.Max),
	}
}

// JoinMut is the in-place version of Join.
func (a *AABB) JoinMut(other AABB) {
	a.Min = a.Min.Min(other.Min)
	a.Max = a.Max.Max(other.Max)
}

// Grow returns the minimal box containing a and the point p.
func (a AABB) Grow(p Vec3) AABB {
	return AABB{
		Min: a.Min.Min(p),
		Max: a.Max.Max(p),
	}
}

// GrowMut is the in-place version of Grow.
func (a *AABB) GrowMut(p Vec3) {
	a.Min = a.Min.Min(p)
	a.Max = a.Max.Max(p)
}

// Size returns Max - Min componentwise. The result is negative on an empty
// box; callers needing a non-negative extent must check IsEmpty first.
func (a AABB) Size() Vec3 {
	return a.Max.Sub(a.Min)
}

// Center returns the midpoint of the box.
func (a AABB) Center() Vec3 {
	return a.Min.Add(a.Size().Scale(0.5))
}

// IsEmpty reports whether Min exceeds Max on any component.
func (a AABB) IsEmpty() bool {
	return a.Min.X > a.Max.X || a.Min.Y > a.Max.Y || a.Min.Z > a.Max.Z
}

// SurfaceArea returns the total surface area of the box.
func (a AABB) SurfaceArea() float32 {
	s := a.Size()
	return 2 * (s.X*s.Y + s.X*s.Z + s.Y*s.Z)
}

// Volume returns the volume of the box.
func (a AABB) Volume() float32 {
	s := a.Size()
	return s.X * s.Y * s.Z
}

// LargestAxis returns the axis of maximum extent. X wins ties with Y, and Y
// wins ties with Z. Split-axis selection during construction depends on this
// exact ordering.
func (a AABB) LargestAxis() Axis {
	s := a.Size()
	if s.X > s.Y && s.X > s.Z {
		return AxisX
	}
	if s.Y > s.Z {
		return AxisY
	}
	return AxisZ
}

// Corner returns the minimum corner for index 0 and the maximum corner for
// any other index, addressing the two corners uniformly.
func (a AABB) Corner(i int) Vec3 {
	if i == 0 {
		return a.Min
	}
	return a.Max
}

// AABB makes the box its own bound, so boxes can be indexed directly.
func (a AABB) AABB() AABB {
	return a
}

// PointAABB returns the degenerate box spanning only p.
func PointAABB(p Vec3) AABB {
	return AABB{Min: p, Max: p}
}

// String implements fmt.Stringer.
func (a AABB) String() string {
	return fmt.Sprintf("min: %s, max: %s", a.Min, a.Max)
}
