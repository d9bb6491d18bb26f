// Package testutil provides testing utilities for bvhgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides a seeded random number generator, random box and ray
// fixtures, and a brute-force traversal used as ground truth.
//
// # Random Fixtures
//
//	rng := testutil.NewRNG(seed)
//	boxes := testutil.RandomBoxes(rng, 1000, 100, 5)
//	ray := testutil.RandomRay(rng, 100)
//
// # Ground Truth
//
//	want := testutil.BruteForceTraverse(ray, boxes)
package testutil
