package bvh

import "errors"

var (
	// ErrInvalidLeafSize is returned when the configured leaf size is
	// smaller than one shape.
	ErrInvalidLeafSize = errors.New("bvh: leaf size must be at least 1")

	// ErrInvalidBucketCount is returned when fewer than two SAH bins are
	// configured; a split needs at least one interior boundary.
	ErrInvalidBucketCount = errors.New("bvh: bucket count must be at least 2")

	// ErrInvalidMaxDepth is returned when the depth cutoff is not positive.
	ErrInvalidMaxDepth = errors.New("bvh: max depth must be positive")
)

// Options configures construction.
type Options struct {
	// LeafSize is the maximum number of shapes a leaf may hold. Ranges
	// with at most LeafSize shapes are never split.
	LeafSize int

	// BucketCount is the number of SAH bins the split axis is divided
	// into. More bins evaluate more split planes at higher build cost.
	BucketCount int

	// MaxDepth forces a leaf once recursion reaches this depth, bounding
	// stack use on adversarial inputs.
	MaxDepth int
}

// DefaultOptions are the construction defaults.
var DefaultOptions = Options{
	LeafSize:    1,
	BucketCount: 8,
	MaxDepth:    64,
}

func (o Options) validate() error {
	if o.LeafSize < 1 {
		return ErrInvalidLeafSize
	}
	if o.BucketCount < 2 {
		return ErrInvalidBucketCount
	}
	if o.MaxDepth < 1 {
		return ErrInvalidMaxDepth
	}
	return nil
}
