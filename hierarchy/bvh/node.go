package bvh

import (
	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

// noChild marks the child slots of a leaf node.
const noChild = -1

// Node is one node of the hierarchy. Nodes live in a flat arena owned by the
// BVH and reference their children by arena index.
//
// An internal node has Left/Right >= 0 and a nil Shapes slice; its AABB is
// the join of both children's AABBs. A leaf has Left == Right == noChild and
// owns an ordered list of shape indices; its AABB is the joint AABB of those
// shapes.
type Node struct {
	AABB   geometry.AABB
	Left   int
	Right  int
	Shapes []int
}

// IsLeaf reports whether the node owns shapes directly.
func (n *Node) IsLeaf() bool {
	return n.Left == noChild
}

// BVH is a binary bounding volume hierarchy over a shape collection. The
// zero value is not usable; call Build.
type BVH struct {
	nodes []Node
	root  int
}

// Nodes returns the node arena. The slice is owned by the BVH and must not
// be mutated.
func (b *BVH) Nodes() []Node {
	return b.nodes
}

// Root returns the arena index of the root node, or -1 for the empty
// hierarchy built from zero shapes.
func (b *BVH) Root() int {
	return b.root
}

// NodeCount implements hierarchy.Hierarchy.
func (b *BVH) NodeCount() int {
	return len(b.nodes)
}

var _ hierarchy.Hierarchy = (*BVH)(nil)
