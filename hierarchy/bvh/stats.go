package bvh

// Stats summarizes the structure of a built hierarchy.
type Stats struct {
	NodeCount    int
	LeafCount    int
	ShapeCount   int
	MaxDepth     int
	AvgLeafDepth float64
}

// Stats walks the tree and returns structural statistics.
func (b *BVH) Stats() Stats {
	if b.root == noChild {
		return Stats{}
	}

	var s Stats
	var depthSum int

	type frame struct{ node, depth int }
	stack := []frame{{b.root, 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		s.NodeCount++
		if f.depth > s.MaxDepth {
			s.MaxDepth = f.depth
		}

		node := &b.nodes[f.node]
		if node.IsLeaf() {
			s.LeafCount++
			s.ShapeCount += len(node.Shapes)
			depthSum += f.depth
			continue
		}
		stack = append(stack, frame{node.Left, f.depth + 1}, frame{node.Right, f.depth + 1})
	}

	if s.LeafCount > 0 {
		s.AvgLeafDepth = float64(depthSum) / float64(s.LeafCount)
	}
	return s
}
