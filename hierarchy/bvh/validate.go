package bvh

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/bvhgo/hierarchy"
)

// Validate checks the structural invariants of a built hierarchy against the
// shapes it was built from:
//
//   - every shape appears in exactly one leaf, exactly once
//   - every internal node's AABB equals the join of its children's AABBs
//   - every leaf's AABB equals the joint AABB of its shapes
//   - every shape's stored node index points at the leaf that owns it
//
// It returns nil when the hierarchy is sound.
func Validate[S hierarchy.Shape](b *BVH, shapes []S) error {
	seen := roaring.New()

	for ni := range b.nodes {
		node := &b.nodes[ni]

		if node.IsLeaf() {
			if len(node.Shapes) == 0 {
				return fmt.Errorf("bvh: leaf %d owns no shapes", ni)
			}
			joint := shapes[node.Shapes[0]].AABB()
			for _, si := range node.Shapes {
				if si < 0 || si >= len(shapes) {
					return fmt.Errorf("bvh: leaf %d references shape %d out of range [0,%d)", ni, si, len(shapes))
				}
				if seen.Contains(uint32(si)) {
					return fmt.Errorf("bvh: shape %d owned by more than one leaf", si)
				}
				seen.Add(uint32(si))
				if got := shapes[si].NodeIndex(); got != ni {
					return fmt.Errorf("bvh: shape %d records node %d, owned by leaf %d", si, got, ni)
				}
				joint.JoinMut(shapes[si].AABB())
			}
			if node.AABB != joint {
				return fmt.Errorf("bvh: leaf %d AABB %s != joint shape AABB %s", ni, node.AABB, joint)
			}
			continue
		}

		if node.Left < 0 || node.Left >= len(b.nodes) || node.Right < 0 || node.Right >= len(b.nodes) {
			return fmt.Errorf("bvh: node %d has child out of range (left=%d right=%d)", ni, node.Left, node.Right)
		}
		joined := b.nodes[node.Left].AABB.Join(b.nodes[node.Right].AABB)
		if node.AABB != joined {
			return fmt.Errorf("bvh: node %d AABB %s != join of children %s", ni, node.AABB, joined)
		}
	}

	if got := int(seen.GetCardinality()); got != len(shapes) {
		return fmt.Errorf("bvh: leaves cover %d of %d shapes", got, len(shapes))
	}
	return nil
}
