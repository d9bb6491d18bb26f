package bvhgo

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/testutil"
)

func TestNew(t *testing.T) {
	boxes := testutil.GridBoxes(16)

	tree, err := New(boxes)
	require.NoError(t, err)

	assert.Equal(t, 16, tree.Stats().ShapeCount)
	require.NoError(t, tree.Validate())
}

func TestNew_Empty(t *testing.T) {
	tree, err := New([]*testutil.Box{})
	require.NoError(t, err)

	hits, err := tree.Traverse(context.Background(), testutil.RandomRay(testutil.NewRNG(1), 10))
	require.NoError(t, err)
	assert.Empty(t, hits)
	assert.True(t, tree.Bounds().IsEmpty())
}

func TestNew_InvalidOption(t *testing.T) {
	_, err := New(testutil.GridBoxes(4), WithLeafSize(0))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(testutil.GridBoxes(4), WithBucketCount(1))
	assert.ErrorIs(t, err, ErrInvalidOption)

	_, err = New(testutil.GridBoxes(4), WithMaxDepth(-1))
	assert.ErrorIs(t, err, ErrInvalidOption)
}

func TestTraverse_MatchesBruteForce(t *testing.T) {
	rng := testutil.NewRNG(21)
	boxes := testutil.RandomBoxes(rng, 400, 100, 10)

	tree, err := New(boxes, WithLeafSize(4))
	require.NoError(t, err)

	ctx := context.Background()

	for i := 0; i < 100; i++ {
		ray := testutil.RandomRay(rng, 120)

		want := testutil.BruteForceTraverse(ray, boxes)

		hits, err := tree.Traverse(ctx, ray)
		require.NoError(t, err)

		got := make([]int, len(hits))
		for j, h := range hits {
			got[j] = h.ID
		}

		assert.ElementsMatch(t, want, got)
	}
}

func TestTraverse_CanceledContext(t *testing.T) {
	tree, err := New(testutil.GridBoxes(8))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = tree.Traverse(ctx, testutil.RandomRay(testutil.NewRNG(1), 10))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTraverseFiltered(t *testing.T) {
	boxes := testutil.GridBoxes(8)

	tree, err := New(boxes)
	require.NoError(t, err)

	ray := geometry.NewRay(geometry.NewVec3(-1, 0.5, 0.5), geometry.NewVec3(1, 0, 0))

	hits, err := tree.TraverseFiltered(context.Background(), ray, roaring.BitmapOf(2, 5))
	require.NoError(t, err)
	require.Len(t, hits, 2)

	ids := []int{hits[0].ID, hits[1].ID}
	assert.ElementsMatch(t, []int{2, 5}, ids)
}

func TestTraverseBatch(t *testing.T) {
	rng := testutil.NewRNG(33)
	boxes := testutil.RandomBoxes(rng, 200, 50, 8)

	tree, err := New(boxes, WithMaxConcurrency(4))
	require.NoError(t, err)

	rays := make([]geometry.Ray, 64)
	for i := range rays {
		rays[i] = testutil.RandomRay(rng, 60)
	}

	results, err := tree.TraverseBatch(context.Background(), rays)
	require.NoError(t, err)
	require.Len(t, results, len(rays))

	for i, ray := range rays {
		want := testutil.BruteForceTraverse(ray, boxes)

		got := make([]int, len(results[i]))
		for j, h := range results[i] {
			got[j] = h.ID
		}

		assert.ElementsMatch(t, want, got, "ray %d", i)
	}
}

func TestTraverseBatch_CanceledContext(t *testing.T) {
	tree, err := New(testutil.GridBoxes(8))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rays := []geometry.Ray{testutil.RandomRay(testutil.NewRNG(1), 10)}

	_, err = tree.TraverseBatch(ctx, rays)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRebuild(t *testing.T) {
	tree, err := New(testutil.GridBoxes(4))
	require.NoError(t, err)

	first := tree.Flatten()
	require.NotNil(t, first)

	require.NoError(t, tree.Rebuild(context.Background(), testutil.GridBoxes(32)))

	assert.Equal(t, 32, tree.Stats().ShapeCount)
	assert.NotEqual(t, first.NodeCount(), tree.Flatten().NodeCount())
	require.NoError(t, tree.Validate())
}

func TestFlatten_Cached(t *testing.T) {
	tree, err := New(testutil.GridBoxes(8))
	require.NoError(t, err)

	assert.Same(t, tree.Flatten(), tree.Flatten())
}

func TestBounds(t *testing.T) {
	tree, err := New(testutil.GridBoxes(4))
	require.NoError(t, err)

	b := tree.Bounds()
	assert.Equal(t, geometry.NewVec3(0, 0, 0), b.Min)
	assert.Equal(t, geometry.NewVec3(7, 1, 1), b.Max)
}

func TestStats(t *testing.T) {
	tree, err := New(testutil.GridBoxes(16), WithLeafSize(2))
	require.NoError(t, err)

	s := tree.Stats()
	assert.Equal(t, 16, s.ShapeCount)
	assert.Equal(t, 8, s.LeafCount)
}

func TestPrettyPrint(t *testing.T) {
	tree, err := New(testutil.GridBoxes(2))
	require.NoError(t, err)

	var buf bytes.Buffer
	tree.PrettyPrint(&buf)
	assert.NotEmpty(t, buf.String())
}

func TestTree_ConcurrentTraverse(t *testing.T) {
	rng := testutil.NewRNG(5)
	boxes := testutil.RandomBoxes(rng, 500, 100, 10)

	tree, err := New(boxes)
	require.NoError(t, err)

	rays := make([]geometry.Ray, 32)
	for i := range rays {
		rays[i] = testutil.RandomRay(rng, 120)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, ray := range rays {
				_, err := tree.Traverse(context.Background(), ray)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()
}

func TestMetricsCollection(t *testing.T) {
	metrics := &BasicMetricsCollector{}

	tree, err := New(testutil.GridBoxes(8), WithMetricsCollector(metrics))
	require.NoError(t, err)

	ctx := context.Background()
	ray := geometry.NewRay(geometry.NewVec3(-1, 0.5, 0.5), geometry.NewVec3(1, 0, 0))

	_, err = tree.Traverse(ctx, ray)
	require.NoError(t, err)

	_, err = tree.TraverseBatch(ctx, []geometry.Ray{ray, ray})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BuildCount)
	assert.Equal(t, int64(1), stats.TraverseCount)
	assert.Equal(t, int64(8), stats.TraverseTotalHits)
	assert.Equal(t, int64(1), stats.BatchTraverseCount)
	assert.Equal(t, int64(2), stats.BatchTraverseRays)
}

func TestShapes(t *testing.T) {
	boxes := testutil.GridBoxes(4)

	tree, err := New(boxes)
	require.NoError(t, err)

	assert.Equal(t, boxes, tree.Shapes())
}
