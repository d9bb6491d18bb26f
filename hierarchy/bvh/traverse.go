package bvh

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

// Traverse returns the indices of all shapes whose bounding boxes the ray
// intersects. Subtrees whose node box the ray misses are pruned whole. The
// tree is not mutated; concurrent traversals over one completed BVH are
// safe.
//
// An explicit work stack bounds memory by tree depth without risking native
// stack exhaustion on degenerate trees.
func (b *BVH) Traverse(ray geometry.Ray) []int {
	return b.traverse(ray, nil)
}

// TraverseFiltered is Traverse restricted to the shapes present in allowed.
// A nil bitmap matches everything.
func (b *BVH) TraverseFiltered(ray geometry.Ray, allowed *roaring.Bitmap) []int {
	return b.traverse(ray, allowed)
}

func (b *BVH) traverse(ray geometry.Ray, allowed *roaring.Bitmap) []int {
	if b.root == noChild {
		return nil
	}

	var hits []int
	stack := make([]int, 1, 64)
	stack[0] = b.root

	for len(stack) > 0 {
		ni := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &b.nodes[ni]
		if !ray.IntersectsAABB(node.AABB) {
			continue
		}

		if node.IsLeaf() {
			for _, si := range node.Shapes {
				if allowed != nil && !allowed.Contains(uint32(si)) {
					continue
				}
				hits = append(hits, si)
			}
			continue
		}

		stack = append(stack, node.Left, node.Right)
	}

	return hits
}

// TraverseShapes returns the shapes themselves instead of their indices.
// shapes must be the collection the BVH was built from.
func TraverseShapes[S hierarchy.Shape](b *BVH, ray geometry.Ray, shapes []S) []S {
	indices := b.Traverse(ray)
	if len(indices) == 0 {
		return nil
	}
	out := make([]S, 0, len(indices))
	for _, si := range indices {
		out = append(out, shapes[si])
	}
	return out
}
