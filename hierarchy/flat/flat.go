// Package flat provides a flattened, cache-friendly encoding of a bounding
// volume hierarchy: all nodes in depth-first order in one linear array, each
// carrying the index to jump to on a hit (entry) and on a miss (exit). The
// encoding preserves exactly the leaf/shape associations and AABBs of the
// tree it was derived from and is traversed iteratively without a call
// stack, which also makes it the natural persistence layout.
package flat

import (
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
	"github.com/hupe1980/bvhgo/hierarchy/bvh"
)

// LeafMarker in EntryIndex marks a leaf node.
const LeafMarker = math.MaxUint32

// Node is one entry of the linear encoding.
//
// For an internal node, EntryIndex is the position of its first child and
// ExitIndex is where traversal continues when the ray misses the node's box.
// For a leaf, EntryIndex is LeafMarker and ShapeOffset/ShapeCount address
// the leaf's shapes in the FlatBVH shape table.
type Node struct {
	AABB        geometry.AABB
	EntryIndex  uint32
	ExitIndex   uint32
	ShapeOffset uint32
	ShapeCount  uint32
}

// IsLeaf reports whether the node is a leaf.
func (n *Node) IsLeaf() bool {
	return n.EntryIndex == LeafMarker
}

// FlatBVH is the linear-array form of a BVH.
type FlatBVH struct {
	nodes  []Node
	shapes []uint32
}

// FromBVH converts a built tree into its linear encoding.
func FromBVH(t *bvh.BVH) *FlatBVH {
	f := &FlatBVH{}
	root := t.Root()
	if root < 0 {
		return f
	}

	src := t.Nodes()
	f.nodes = make([]Node, 0, len(src))

	// Subtree sizes determine each right sibling's position up front, so
	// exit indices can be written in a single emission pass.
	sizes := make([]int, len(src))
	var measure func(ni int) int
	measure = func(ni int) int {
		n := &src[ni]
		if n.IsLeaf() {
			sizes[ni] = 1
		} else {
			sizes[ni] = 1 + measure(n.Left) + measure(n.Right)
		}
		return sizes[ni]
	}
	total := measure(root)

	var emit func(ni int, exit uint32)
	emit = func(ni int, exit uint32) {
		n := &src[ni]
		cur := uint32(len(f.nodes))

		if n.IsLeaf() {
			off := uint32(len(f.shapes))
			for _, si := range n.Shapes {
				f.shapes = append(f.shapes, uint32(si))
			}
			f.nodes = append(f.nodes, Node{
				AABB:        n.AABB,
				EntryIndex:  LeafMarker,
				ExitIndex:   exit,
				ShapeOffset: off,
				ShapeCount:  uint32(len(n.Shapes)),
			})
			return
		}

		rightStart := cur + 1 + uint32(sizes[n.Left])
		f.nodes = append(f.nodes, Node{
			AABB:       n.AABB,
			EntryIndex: cur + 1,
			ExitIndex:  exit,
		})
		emit(n.Left, rightStart)
		emit(n.Right, exit)
	}
	emit(root, uint32(total))

	return f
}

// Build constructs a tree with bvh.Build and flattens it in one step.
func Build[S hierarchy.Shape](shapes []S, optFns ...func(o *bvh.Options)) (*FlatBVH, error) {
	t, err := bvh.Build(shapes, optFns...)
	if err != nil {
		return nil, err
	}
	return FromBVH(t), nil
}

// Traverse returns the indices of all shapes whose bounding boxes the ray
// intersects, walking the array iteratively: a hit descends via EntryIndex,
// a miss skips the whole subtree via ExitIndex. The result set is identical
// to traversing the tree the encoding was derived from.
func (f *FlatBVH) Traverse(ray geometry.Ray) []int {
	var hits []int

	end := uint32(len(f.nodes))
	i := uint32(0)
	for i < end {
		n := &f.nodes[i]
		if !ray.IntersectsAABB(n.AABB) {
			i = n.ExitIndex
			continue
		}
		if n.IsLeaf() {
			for _, si := range f.shapes[n.ShapeOffset : n.ShapeOffset+n.ShapeCount] {
				hits = append(hits, int(si))
			}
			i = n.ExitIndex
			continue
		}
		i = n.EntryIndex
	}

	return hits
}

// NodeCount implements hierarchy.Hierarchy.
func (f *FlatBVH) NodeCount() int {
	return len(f.nodes)
}

// Nodes returns the node array. It is owned by the FlatBVH and must not be
// mutated.
func (f *FlatBVH) Nodes() []Node {
	return f.nodes
}

// ShapeTable returns the concatenated leaf shape indices. It is owned by
// the FlatBVH and must not be mutated.
func (f *FlatBVH) ShapeTable() []uint32 {
	return f.shapes
}

// PrettyPrint writes the linear encoding one node per line.
func (f *FlatBVH) PrettyPrint(w io.Writer) {
	if len(f.nodes) == 0 {
		fmt.Fprintln(w, "(empty)")
		return
	}
	for i := range f.nodes {
		n := &f.nodes[i]
		if n.IsLeaf() {
			fmt.Fprintf(w, "%4d leaf exit=%d shapes=%v %s\n", i, n.ExitIndex, f.shapes[n.ShapeOffset:n.ShapeOffset+n.ShapeCount], n.AABB)
		} else {
			fmt.Fprintf(w, "%4d node entry=%d exit=%d %s\n", i, n.EntryIndex, n.ExitIndex, n.AABB)
		}
	}
}

var _ hierarchy.Hierarchy = (*FlatBVH)(nil)
