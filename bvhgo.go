package bvhgo

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
	"github.com/hupe1980/bvhgo/hierarchy/bvh"
	"github.com/hupe1980/bvhgo/hierarchy/flat"
	"github.com/hupe1980/bvhgo/resource"
)

// Tree is a bounding volume hierarchy over a fixed set of shapes.
//
// A Tree is safe for concurrent traversal; Rebuild takes exclusive access
// and swaps the hierarchy atomically. Trees restored from a snapshot carry
// only the flattened hierarchy until the next Rebuild.
type Tree[S hierarchy.Shape] struct {
	mu        sync.RWMutex
	shapes    []S
	tree      *bvh.BVH
	flattened *flat.FlatBVH
	buildOpts bvh.Options

	opts    options
	logger  *Logger
	metrics MetricsCollector
	rc      *resource.Controller
}

// New builds a Tree over the given shapes.
//
// The shapes slice is retained; traversal results reference its elements.
// Shape bounds must not change while the tree is in use.
func New[S hierarchy.Shape](shapes []S, optFns ...Option) (*Tree[S], error) {
	opts := defaultOptions()

	for _, fn := range optFns {
		fn(&opts)
	}

	t := &Tree[S]{
		opts:    opts,
		logger:  opts.logger,
		metrics: opts.metricsCollector,
		rc:      resource.NewController(opts.resourceConfig),
	}

	if err := t.Rebuild(context.Background(), shapes); err != nil {
		return nil, err
	}

	return t, nil
}

// Rebuild discards the current hierarchy and builds a new one over shapes.
// Traversals block until the rebuild completes.
func (t *Tree[S]) Rebuild(ctx context.Context, shapes []S) error {
	start := time.Now()

	resolved := bvh.DefaultOptions
	for _, fn := range t.opts.buildOptions {
		fn(&resolved)
	}

	built, err := bvh.Build(shapes, t.opts.buildOptions...)
	if err != nil {
		err = translateError(err)
		t.logger.LogBuild(ctx, len(shapes), 0, time.Since(start), err)
		t.metrics.RecordBuild(len(shapes), time.Since(start), err)

		return err
	}

	t.mu.Lock()
	t.shapes = shapes
	t.tree = built
	t.flattened = nil
	t.buildOpts = resolved
	t.mu.Unlock()

	t.logger.LogBuild(ctx, len(shapes), built.NodeCount(), time.Since(start), nil)
	t.metrics.RecordBuild(len(shapes), time.Since(start), nil)

	return nil
}

// Traverse returns all shapes whose bounds the ray intersects, in
// unspecified order.
func (t *Tree[S]) Traverse(ctx context.Context, ray geometry.Ray) ([]S, error) {
	start := time.Now()

	hits, err := t.traverse(ctx, ray, nil)

	t.logger.LogTraverse(ctx, len(hits), err)
	t.metrics.RecordTraverse(len(hits), time.Since(start), err)

	return hits, err
}

// TraverseFiltered is Traverse restricted to shape indices present in
// allowed. A nil bitmap allows every shape.
func (t *Tree[S]) TraverseFiltered(ctx context.Context, ray geometry.Ray, allowed *roaring.Bitmap) ([]S, error) {
	start := time.Now()

	hits, err := t.traverse(ctx, ray, allowed)

	t.logger.LogTraverse(ctx, len(hits), err)
	t.metrics.RecordTraverse(len(hits), time.Since(start), err)

	return hits, err
}

func (t *Tree[S]) traverse(ctx context.Context, ray geometry.Ray, allowed *roaring.Bitmap) ([]S, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var ids []int

	switch {
	case t.tree != nil:
		ids = t.tree.TraverseFiltered(ray, allowed)
	case t.flattened != nil:
		ids = t.flattened.Traverse(ray)
		if allowed != nil {
			kept := ids[:0]
			for _, id := range ids {
				if allowed.Contains(uint32(id)) {
					kept = append(kept, id)
				}
			}
			ids = kept
		}
	default:
		return nil, nil
	}

	hits := make([]S, 0, len(ids))
	for _, id := range ids {
		hits = append(hits, t.shapes[id])
	}

	return hits, nil
}

// TraverseBatch traverses many rays concurrently and returns one hit slice
// per ray, in ray order. The first traversal error cancels the batch.
func (t *Tree[S]) TraverseBatch(ctx context.Context, rays []geometry.Ray) ([][]S, error) {
	start := time.Now()

	results := make([][]S, len(rays))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.concurrency())

	for i, ray := range rays {
		g.Go(func() error {
			hits, err := t.traverse(gctx, ray, nil)
			if err != nil {
				return fmt.Errorf("ray %d: %w", i, err)
			}

			results[i] = hits

			return nil
		})
	}

	err := g.Wait()

	failed := 0
	if err != nil {
		failed = 1
	}

	t.metrics.RecordBatchTraverse(len(rays), failed, time.Since(start))

	if err != nil {
		return nil, err
	}

	return results, nil
}

func (t *Tree[S]) concurrency() int {
	if t.opts.maxConcurrency > 0 {
		return t.opts.maxConcurrency
	}

	return runtime.GOMAXPROCS(0)
}

// Flatten returns the flattened form of the hierarchy, building and caching
// it on first use. Rebuild invalidates the cached copy.
func (t *Tree[S]) Flatten() *flat.FlatBVH {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.flattenLocked()
}

func (t *Tree[S]) flattenLocked() *flat.FlatBVH {
	if t.flattened == nil && t.tree != nil {
		t.flattened = flat.FromBVH(t.tree)
	}

	return t.flattened
}

// Shapes returns the shape slice the tree was built over.
func (t *Tree[S]) Shapes() []S {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.shapes
}

// Bounds returns the bounding box of the whole scene. The zero AABB is
// returned for an empty tree.
func (t *Tree[S]) Bounds() geometry.AABB {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.tree != nil && t.tree.NodeCount() > 0:
		return t.tree.Nodes()[t.tree.Root()].AABB
	case t.flattened != nil && t.flattened.NodeCount() > 0:
		return t.flattened.Nodes()[0].AABB
	}

	return geometry.AABB{}
}

// Stats returns structural statistics. For a snapshot-restored tree only
// the node and shape counts are populated.
func (t *Tree[S]) Stats() bvh.Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tree != nil {
		return t.tree.Stats()
	}

	if t.flattened != nil {
		return bvh.Stats{
			NodeCount:  t.flattened.NodeCount(),
			ShapeCount: len(t.flattened.ShapeTable()),
		}
	}

	return bvh.Stats{}
}

// Validate checks the structural invariants of the hierarchy: bounds
// containment, shape partitioning, and back-reference consistency.
func (t *Tree[S]) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.tree == nil {
		return t.validateFlatLocked()
	}

	return bvh.Validate(t.tree, t.shapes)
}

// validateFlatLocked checks what a flattened hierarchy alone can support:
// every shape table entry must reference a supplied shape.
func (t *Tree[S]) validateFlatLocked() error {
	if t.flattened == nil {
		return nil
	}

	for _, id := range t.flattened.ShapeTable() {
		if int(id) >= len(t.shapes) {
			return fmt.Errorf("%w: shape table references shape %d of %d", ErrCorruptSnapshot, id, len(t.shapes))
		}
	}

	return nil
}

// PrettyPrint writes an indented rendering of the hierarchy to w.
func (t *Tree[S]) PrettyPrint(w io.Writer) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	switch {
	case t.tree != nil:
		t.tree.PrettyPrint(w)
	case t.flattened != nil:
		t.flattened.PrettyPrint(w)
	}
}
