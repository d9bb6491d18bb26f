// Package geometry provides the value-type primitives the hierarchy is built
// from: three-component vectors, axis selectors, rays and axis-aligned
// bounding boxes (AABBs).
//
// All types are plain values with no shared ownership. The AABB algebra is
// total: every operation behaves correctly when an operand is the empty box
// (the inverted-bound sentinel returned by EmptyAABB), which acts as the
// identity for Join.
package geometry
