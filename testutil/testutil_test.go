package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bvhgo/geometry"
	"github.com/hupe1980/bvhgo/hierarchy"
)

func TestRNG_Deterministic(t *testing.T) {
	a := NewRNG(42)
	b := NewRNG(42)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float32(), b.Float32())
	}
}

func TestRNG_Reset(t *testing.T) {
	rng := NewRNG(7)

	first := rng.Float32()
	rng.Float32()
	rng.Reset()

	assert.Equal(t, first, rng.Float32())
	assert.Equal(t, int64(7), rng.Seed())
}

func TestRandomBoxes(t *testing.T) {
	rng := NewRNG(1)
	boxes := RandomBoxes(rng, 50, 100, 5)
	require.Len(t, boxes, 50)

	for i, b := range boxes {
		assert.Equal(t, i, b.ID)
		assert.Equal(t, hierarchy.UnsetNodeIndex, b.NodeIndex())
		assert.False(t, b.AABB().IsEmpty())
	}
}

func TestGridBoxes(t *testing.T) {
	boxes := GridBoxes(3)
	require.Len(t, boxes, 3)

	assert.Equal(t, geometry.NewVec3(4, 0, 0), boxes[2].Bounds.Min)
	assert.Equal(t, geometry.NewVec3(5, 1, 1), boxes[2].Bounds.Max)
}

func TestBruteForceTraverse(t *testing.T) {
	boxes := GridBoxes(4)

	// Along the grid axis through every box.
	ray := geometry.NewRay(geometry.NewVec3(-1, 0.5, 0.5), geometry.NewVec3(1, 0, 0))
	assert.Equal(t, []int{0, 1, 2, 3}, BruteForceTraverse(ray, boxes))

	// Pointing away from the grid.
	ray = geometry.NewRay(geometry.NewVec3(-1, 0.5, 0.5), geometry.NewVec3(-1, 0, 0))
	assert.Empty(t, BruteForceTraverse(ray, boxes))
}

func TestSortedInts(t *testing.T) {
	in := []int{3, 1, 2}
	assert.Equal(t, []int{1, 2, 3}, SortedInts(in))
	assert.Equal(t, []int{3, 1, 2}, in)
}
