package geometry

import "math"

// Ray is a half-line given by an origin and a direction. The componentwise
// inverse of the direction is precomputed because the slab test needs it for
// every box the ray is checked against.
type Ray struct {
	Origin    Vec3
	Direction Vec3

	invDir Vec3
}

// NewRay creates a ray from origin towards direction. The direction does not
// need to be normalized; a zero component yields an infinite inverse, which
// the slab test handles through IEEE semantics.
func NewRay(origin, direction Vec3) Ray {
	return Ray{
		Origin:    origin,
		Direction: direction,
		invDir: Vec3{
			X: 1 / direction.X,
			Y: 1 / direction.Y,
			Z: 1 / direction.Z,
		},
	}
}

// IntersectsAABB reports whether the ray hits the box, using the slab method:
// the ray's parametric overlap with each axis interval is intersected, and
// the ray hits iff the final interval is non-empty and not entirely behind
// the origin.
func (r Ray) IntersectsAABB(aabb AABB) bool {
	tMin := float32(math.Inf(-1))
	tMax := float32(math.Inf(1))

	for axis := AxisX; axis <= AxisZ; axis++ {
		origin := r.Origin.Component(axis)
		inv := r.invDir.Component(axis)

		t1 := (aabb.Min.Component(axis) - origin) * inv
		t2 := (aabb.Max.Component(axis) - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		// NaN from 0 * Inf (origin on a slab boundary of a flat box) must
		// not shrink the interval; min/max with NaN keeps the old value.
		if !math.IsNaN(float64(t1)) {
			tMin = max(tMin, t1)
		}
		if !math.IsNaN(float64(t2)) {
			tMax = min(tMax, t2)
		}

		if tMin > tMax {
			return false
		}
	}

	return tMax >= 0
}
