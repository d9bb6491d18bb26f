package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -2, 0.5)

	assert.Equal(t, NewVec3(5, 0, 3.5), a.Add(b))
	assert.Equal(t, NewVec3(-3, 4, 2.5), a.Sub(b))
	assert.Equal(t, NewVec3(2, 4, 6), a.Scale(2))
}

func TestVec3_MinMax(t *testing.T) {
	a := NewVec3(1, 5, 3)
	b := NewVec3(2, 4, 3)

	assert.Equal(t, NewVec3(1, 4, 3), a.Min(b))
	assert.Equal(t, NewVec3(2, 5, 3), a.Max(b))
}

func TestVec3_Component(t *testing.T) {
	v := NewVec3(1, 2, 3)

	assert.Equal(t, float32(1), v.Component(AxisX))
	assert.Equal(t, float32(2), v.Component(AxisY))
	assert.Equal(t, float32(3), v.Component(AxisZ))
}

func TestSplat(t *testing.T) {
	assert.Equal(t, NewVec3(2.5, 2.5, 2.5), Splat(2.5))
}

func TestAxis_String(t *testing.T) {
	assert.Equal(t, "X", AxisX.String())
	assert.Equal(t, "Y", AxisY.String())
	assert.Equal(t, "Z", AxisZ.String())
	assert.Equal(t, "Unknown", Axis(9).String())
}
