package bvh

import (
	"fmt"
	"io"
	"strings"
)

// PrettyPrint writes a tree-shaped visualization of the hierarchy. The
// output is for debugging only; its format is not stable.
func (b *BVH) PrettyPrint(w io.Writer) {
	if b.root == noChild {
		fmt.Fprintln(w, "(empty)")
		return
	}
	b.prettyPrint(w, b.root, 0)
}

func (b *BVH) prettyPrint(w io.Writer, ni, depth int) {
	node := &b.nodes[ni]
	indent := strings.Repeat("  ", depth)

	if node.IsLeaf() {
		fmt.Fprintf(w, "%sleaf %d shapes=%v %s\n", indent, ni, node.Shapes, node.AABB)
		return
	}

	fmt.Fprintf(w, "%snode %d %s\n", indent, ni, node.AABB)
	b.prettyPrint(w, node.Left, depth+1)
	b.prettyPrint(w, node.Right, depth+1)
}
