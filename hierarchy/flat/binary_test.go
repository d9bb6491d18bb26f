package flat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/bvhgo/hierarchy/bvh"
	"github.com/hupe1980/bvhgo/testutil"
)

func TestMarshalBinary_RoundTrip(t *testing.T) {
	rng := testutil.NewRNG(3)
	boxes := testutil.RandomBoxes(rng, 100, 50, 5)

	f, err := Build(boxes, func(o *bvh.Options) { o.LeafSize = 3 })
	require.NoError(t, err)

	data, err := f.MarshalBinary()
	require.NoError(t, err)
	assert.Len(t, data, 8+f.NodeCount()*NodeBinarySize+len(f.ShapeTable())*4)

	var decoded FlatBVH
	require.NoError(t, decoded.UnmarshalBinary(data))

	assert.Equal(t, f.Nodes(), decoded.Nodes())
	assert.Equal(t, f.ShapeTable(), decoded.ShapeTable())

	ray := testutil.RandomRay(rng, 60)
	assert.ElementsMatch(t, f.Traverse(ray), decoded.Traverse(ray))
}

func TestUnmarshalBinary_Truncated(t *testing.T) {
	var f FlatBVH

	assert.Error(t, f.UnmarshalBinary(nil))
	assert.Error(t, f.UnmarshalBinary([]byte{1, 2, 3}))

	// Valid header claiming more records than the block holds.
	assert.Error(t, f.UnmarshalBinary([]byte{1, 0, 0, 0, 0, 0, 0, 0}))
}

func TestCastNodes_RoundTrip(t *testing.T) {
	boxes := testutil.GridBoxes(8)

	f, err := Build(boxes)
	require.NoError(t, err)

	raw := NodeBytes(f.Nodes())
	require.Len(t, raw, f.NodeCount()*NodeBinarySize)

	nodes, err := CastNodes(raw)
	require.NoError(t, err)
	assert.Equal(t, f.Nodes(), nodes)
}

func TestCastNodes_Invalid(t *testing.T) {
	_, err := CastNodes(make([]byte, NodeBinarySize+1))
	assert.Error(t, err)

	nodes, err := CastNodes(nil)
	require.NoError(t, err)
	assert.Nil(t, nodes)
}

// The zero-copy cast and the explicit little-endian encoder must agree on
// the wire layout.
func TestCastNodes_MatchesMarshal(t *testing.T) {
	boxes := testutil.GridBoxes(4)

	f, err := Build(boxes)
	require.NoError(t, err)

	data, err := f.MarshalBinary()
	require.NoError(t, err)

	nodeSection := data[8 : 8+f.NodeCount()*NodeBinarySize]
	assert.Equal(t, nodeSection, NodeBytes(f.Nodes()))
}

func TestCastShapeTable_RoundTrip(t *testing.T) {
	table := []uint32{0, 7, 42, 1 << 30}

	raw := ShapeTableBytes(table)
	require.Len(t, raw, 16)

	decoded, err := CastShapeTable(raw)
	require.NoError(t, err)
	assert.Equal(t, table, decoded)

	_, err = CastShapeTable(raw[:3])
	assert.Error(t, err)
}

func TestFromSections(t *testing.T) {
	boxes := testutil.GridBoxes(4)

	f, err := Build(boxes)
	require.NoError(t, err)

	alias := FromSections(f.Nodes(), f.ShapeTable())
	assert.Equal(t, f.NodeCount(), alias.NodeCount())

	ray := testutil.RandomRay(testutil.NewRNG(5), 10)
	assert.ElementsMatch(t, f.Traverse(ray), alias.Traverse(ray))
}
