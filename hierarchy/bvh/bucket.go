package bvh

import "github.com/hupe1980/bvhgo/geometry"

// Bucket accumulates the shapes falling into one SAH bin: how many there are
// and their joined bounds. Buckets form a monoid under JoinBuckets with
// EmptyBucket as the identity.
//
// HasAABB distinguishes "no shape seen yet" from a real box; the AABB field
// of an empty bucket must not be joined as if it were one.
type Bucket struct {
	Size    int
	AABB    geometry.AABB
	HasAABB bool
}

// EmptyBucket returns the identity bucket.
func EmptyBucket() Bucket {
	return Bucket{}
}

// AddAABB extends the bucket by one shape with the given bounds.
func (b *Bucket) AddAABB(aabb geometry.AABB) {
	b.Size++
	if b.HasAABB {
		b.AABB.JoinMut(aabb)
	} else {
		b.AABB = aabb
		b.HasAABB = true
	}
}

// JoinBuckets combines two buckets: sizes add, bounds union when both are
// present.
func JoinBuckets(a, b Bucket) Bucket {
	out := Bucket{Size: a.Size + b.Size}
	switch {
	case a.HasAABB && b.HasAABB:
		out.AABB = a.AABB.Join(b.AABB)
		out.HasAABB = true
	case a.HasAABB:
		out.AABB = a.AABB
		out.HasAABB = true
	case b.HasAABB:
		out.AABB = b.AABB
		out.HasAABB = true
	}
	return out
}
