// Package hierarchy provides the contracts every bounding hierarchy
// implementation satisfies: the Bounded capability, the Shape capability with
// its owning-node back-reference, and the traversal interface.
package hierarchy

import (
	"io"

	"github.com/hupe1980/bvhgo/geometry"
)

// UnsetNodeIndex is the node index of a shape that has not been indexed by
// any hierarchy yet.
const UnsetNodeIndex = -1

// Bounded is implemented by anything that can report its own axis-aligned
// bounding box. The box must be deterministic: a hierarchy built from a set
// of shapes assumes their boxes do not change until the next build.
type Bounded interface {
	AABB() geometry.AABB
}

// Shape is an entity a hierarchy can index. Beyond its bounds, a shape
// stores the index of the leaf node that owns it, so a shape can be mapped
// back to its containing node without a reverse lookup structure.
type Shape interface {
	Bounded

	// SetNodeIndex records the index of the owning leaf node.
	SetNodeIndex(i int)

	// NodeIndex returns the index recorded by SetNodeIndex, or
	// UnsetNodeIndex if the shape has never been indexed.
	NodeIndex() int
}

// Hierarchy is an acceleration structure over a fixed set of shapes. A
// completed hierarchy is immutable; any number of traversals may run
// concurrently over it. Building requires exclusive access to the shapes
// and must not overlap with traversals.
type Hierarchy interface {
	// Traverse returns the indices of all shapes whose bounding boxes the
	// ray intersects. The result is a candidate set: boxes are hit, the
	// contained geometry may not be. Order is unspecified.
	Traverse(ray geometry.Ray) []int

	// NodeCount returns the number of nodes in the hierarchy.
	NodeCount() int

	// PrettyPrint writes a tree-shaped visualization for debugging. The
	// output format carries no compatibility guarantee.
	PrettyPrint(w io.Writer)
}
