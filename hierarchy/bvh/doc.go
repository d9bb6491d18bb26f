// Package bvh implements a binary bounding volume hierarchy built with the
// surface area heuristic (SAH).
//
// Build partitions a shape collection into a binary tree whose nodes live in
// a flat arena addressed by integer indices. Construction is single-threaded
// and mutates the shape collection in place (it reorders an index permutation
// and stamps each shape with its owning leaf). A completed tree is immutable;
// traversals may run concurrently over it as long as no rebuild is in flight.
package bvh
