package bvh

import (
	"fmt"
	"sort"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

// Build constructs a BVH over shapes using the surface area heuristic.
//
// Construction mutates the collection: it reorders an internal index
// permutation and stamps every shape with the index of the leaf that owns it
// via SetNodeIndex. It must not run concurrently with traversals or another
// build over the same shapes.
//
// Zero shapes produce an empty hierarchy whose Traverse always returns no
// candidates. Non-finite coordinates are not detected: NaN bounds propagate
// through min/max comparisons and make the affected shapes unreachable by
// traversal rather than failing the build.
func Build[S hierarchy.Shape](shapes []S, optFns ...func(o *Options)) (*BVH, error) {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	if len(shapes) == 0 {
		return &BVH{root: noChild}, nil
	}

	b := &builder[S]{
		shapes:  shapes,
		opts:    opts,
		buckets: make([]Bucket, opts.BucketCount),
		// A well-balanced tree has 2n-1 nodes for n shapes with leaf size 1.
		nodes: make([]Node, 0, 2*len(shapes)),
	}

	indices := make([]int, len(shapes))
	for i := range indices {
		indices[i] = i
	}

	b.root = b.build(indices, 0)
	return &BVH{nodes: b.nodes, root: b.root}, nil
}

type builder[S hierarchy.Shape] struct {
	shapes  []S
	opts    Options
	buckets []Bucket
	nodes   []Node
	root    int
}

// build partitions the given index range into a subtree and returns the
// arena index of its root. The range must not be empty; recursion maintains
// this because every split leaves both sides non-empty.
func (b *builder[S]) build(indices []int, depth int) int {
	joint := b.jointAABB(indices)

	if len(indices) <= b.opts.LeafSize || depth >= b.opts.MaxDepth {
		return b.createLeaf(joint, indices)
	}

	axis := joint.LargestAxis()
	extent := joint.Size().Component(axis)

	left, right, ok := b.sahSplit(indices, joint, axis, extent)
	if !ok {
		// All centroids map to a single bin (coincident centroids or a
		// zero extent). A positional median split still shrinks both
		// sides, guaranteeing termination.
		left, right = b.medianSplit(indices, axis)
	}

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)

	idx := len(b.nodes)
	b.nodes = append(b.nodes, Node{
		AABB:  b.nodes[l].AABB.Join(b.nodes[r].AABB),
		Left:  l,
		Right: r,
	})
	return idx
}

// sahSplit evaluates every interior bin boundary with the SAH cost model and
// partitions indices in place at the cheapest one. It reports ok=false when
// no boundary separates the shapes.
func (b *builder[S]) sahSplit(indices []int, joint geometry.AABB, axis geometry.Axis, extent float32) (left, right []int, ok bool) {
	if !(extent > 0) {
		return nil, nil, false
	}

	n := b.opts.BucketCount
	buckets := b.buckets
	for i := range buckets {
		buckets[i] = EmptyBucket()
	}
	for _, si := range indices {
		aabb := b.shapes[si].AABB()
		buckets[b.bucketOf(aabb, joint, axis, extent)].AddAABB(aabb)
	}

	// Cumulative joins from both ends let every boundary's cost be read
	// off without rescanning shapes.
	prefix := make([]Bucket, n)
	suffix := make([]Bucket, n)
	acc := EmptyBucket()
	for i := 0; i < n; i++ {
		acc = JoinBuckets(acc, buckets[i])
		prefix[i] = acc
	}
	acc = EmptyBucket()
	for i := n - 1; i >= 0; i-- {
		acc = JoinBuckets(acc, buckets[i])
		suffix[i] = acc
	}

	// Lowest boundary index wins cost ties: the scan uses strict <.
	bestSplit := -1
	var bestCost float32
	for s := 1; s < n; s++ {
		l, r := prefix[s-1], suffix[s]
		if l.Size == 0 || r.Size == 0 {
			continue
		}
		cost := float32(l.Size)*l.AABB.SurfaceArea() + float32(r.Size)*r.AABB.SurfaceArea()
		if bestSplit < 0 || cost < bestCost {
			bestSplit = s
			bestCost = cost
		}
	}
	if bestSplit < 0 {
		return nil, nil, false
	}

	// Unstable single-pass partition: bins below the boundary go left.
	i, j := 0, len(indices)
	for i < j {
		if b.bucketOf(b.shapes[indices[i]].AABB(), joint, axis, extent) < bestSplit {
			i++
		} else {
			j--
			indices[i], indices[j] = indices[j], indices[i]
		}
	}
	return indices[:i], indices[i:], true
}

// bucketOf maps a shape's centroid to its SAH bin on the split axis.
func (b *builder[S]) bucketOf(aabb, joint geometry.AABB, axis geometry.Axis, extent float32) int {
	c := aabb.Center().Component(axis)
	rel := (c - joint.Min.Component(axis)) / extent
	bi := int(rel * float32(b.opts.BucketCount))
	if bi < 0 {
		bi = 0
	}
	if bi >= b.opts.BucketCount {
		bi = b.opts.BucketCount - 1
	}
	return bi
}

// medianSplit orders the range by centroid along axis and cuts it in half.
func (b *builder[S]) medianSplit(indices []int, axis geometry.Axis) (left, right []int) {
	sort.Slice(indices, func(i, j int) bool {
		ci := b.shapes[indices[i]].AABB().Center().Component(axis)
		cj := b.shapes[indices[j]].AABB().Center().Component(axis)
		return ci < cj
	})
	mid := len(indices) / 2
	return indices[:mid], indices[mid:]
}

func (b *builder[S]) createLeaf(joint geometry.AABB, indices []int) int {
	idx := len(b.nodes)
	owned := make([]int, len(indices))
	copy(owned, indices)
	b.nodes = append(b.nodes, Node{
		AABB:   joint,
		Left:   noChild,
		Right:  noChild,
		Shapes: owned,
	})
	for _, si := range indices {
		b.shapes[si].SetNodeIndex(idx)
	}
	return idx
}

// jointAABB folds the bounds of every shape in the range. Calling it on an
// empty range is an internal invariant violation.
func (b *builder[S]) jointAABB(indices []int) geometry.AABB {
	if len(indices) == 0 {
		panic(fmt.Sprintf("bvh: joint AABB over empty range (shapes=%d)", len(b.shapes)))
	}
	aabb := b.shapes[indices[0]].AABB()
	for _, si := range indices[1:] {
		aabb.JoinMut(b.shapes[si].AABB())
	}
	return aabb
}
