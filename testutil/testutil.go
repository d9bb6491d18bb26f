package testutil

import (
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns a pseudo-random number in [0,1).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Vec3 returns a pseudo-random point with each component in [-extent, extent).
func (r *RNG) Vec3(extent float32) geometry.Vec3 {
	return geometry.NewVec3(
		(r.Float32()*2-1)*extent,
		(r.Float32()*2-1)*extent,
		(r.Float32()*2-1)*extent,
	)
}

// Box is a test shape: an axis-aligned box with an identity.
type Box struct {
	ID        int
	Bounds    geometry.AABB
	nodeIndex int
}

// NewBox creates a box with the given identity and corners.
func NewBox(id int, min, max geometry.Vec3) *Box {
	return &Box{ID: id, Bounds: geometry.NewAABB(min, max), nodeIndex: hierarchy.UnsetNodeIndex}
}

// AABB returns the bounds of the box.
func (b *Box) AABB() geometry.AABB { return b.Bounds }

// SetNodeIndex records the owning leaf node.
func (b *Box) SetNodeIndex(i int) { b.nodeIndex = i }

// NodeIndex returns the owning leaf node, or hierarchy.UnsetNodeIndex.
func (b *Box) NodeIndex() int { return b.nodeIndex }

var _ hierarchy.Shape = (*Box)(nil)

// RandomBoxes generates n boxes with centers in [-extent, extent)^3 and
// edge lengths up to maxSize. Box IDs equal their slice index.
func RandomBoxes(rng *RNG, n int, extent, maxSize float32) []*Box {
	boxes := make([]*Box, n)
	for i := range boxes {
		center := rng.Vec3(extent)
		half := geometry.NewVec3(
			rng.Float32()*maxSize/2,
			rng.Float32()*maxSize/2,
			rng.Float32()*maxSize/2,
		)
		boxes[i] = NewBox(i, center.Sub(half), center.Add(half))
	}

	return boxes
}

// GridBoxes generates n unit boxes spaced two units apart along the X axis,
// a fixture with known, non-overlapping geometry.
func GridBoxes(n int) []*Box {
	boxes := make([]*Box, n)
	for i := range boxes {
		x := float32(i * 2)
		boxes[i] = NewBox(i, geometry.NewVec3(x, 0, 0), geometry.NewVec3(x+1, 1, 1))
	}

	return boxes
}

// RandomRay generates a ray with origin in [-extent, extent)^3 and a
// non-degenerate random direction.
func RandomRay(rng *RNG, extent float32) geometry.Ray {
	for {
		dir := rng.Vec3(1)
		if dir.X != 0 || dir.Y != 0 || dir.Z != 0 {
			return geometry.NewRay(rng.Vec3(extent), dir)
		}
	}
}

// BruteForceTraverse returns the IDs of all boxes the ray hits, testing
// every box directly. It is the ground truth a hierarchy traversal must
// reproduce.
func BruteForceTraverse(ray geometry.Ray, boxes []*Box) []int {
	var hits []int

	for _, b := range boxes {
		if ray.IntersectsAABB(b.Bounds) {
			hits = append(hits, b.ID)
		}
	}

	return hits
}

// SortedInts returns a sorted copy of ids.
func SortedInts(ids []int) []int {
	out := make([]int, len(ids))
	copy(out, ids)
	sort.Ints(out)

	return out
}
