// Package bvhgo provides a bounding volume hierarchy (BVH) for fast ray
// intersection queries over axis-aligned bounding boxes.
//
// A BVH is built once over a set of shapes and then answers "which shapes
// might this ray hit" in logarithmic time. Construction uses the surface
// area heuristic (SAH) with bucket binning; traversal returns candidate
// shapes whose bounding boxes intersect the ray, for the caller to test
// exactly.
//
// # Quick Start
//
//	type sphere struct {
//	    center geometry.Vec3
//	    radius float32
//	    node   int
//	}
//
//	func (s *sphere) AABB() geometry.AABB { ... }
//	func (s *sphere) SetNodeIndex(i int)  { s.node = i }
//	func (s *sphere) NodeIndex() int      { return s.node }
//
//	tree, err := bvhgo.New(spheres)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ray := geometry.NewRay(origin, direction)
//	hits, _ := tree.Traverse(ctx, ray)
//
// # Flattened Traversal and Snapshots
//
// Flatten converts the pointerless tree into a contiguous node array with
// precomputed entry/exit indices, which traverses without a stack and can
// be written to disk:
//
//	err := tree.SaveSnapshot(ctx, "scene.bvh")
//	tree2, err := bvhgo.LoadSnapshot(ctx, "scene.bvh", spheres)
//
// Uncompressed snapshots can also be memory mapped, which shares the node
// array with the page cache instead of copying it onto the heap:
//
//	tree3, closer, err := bvhgo.OpenSnapshot(ctx, "scene.bvh", spheres)
//	defer closer.Close()
//
// Snapshots can be stored on any blobstore.BlobStore backend, including
// S3 and MinIO.
//
// # Concurrency
//
// A built tree is immutable; Traverse may be called from any number of
// goroutines. Rebuild swaps the tree atomically under a write lock.
package bvhgo
