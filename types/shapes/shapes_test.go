package shapes

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	invalidShape := Invalid()
	assert.False(t, invalidShape.Ok())

	shape0 := Make(dtypes.Float64)
	assert.True(t, shape0.Ok())
	assert.True(t, shape0.IsScalar())
	assert.Equal(t, 0, shape0.Rank())
	assert.Equal(t, 1, shape0.Size())
	assert.Equal(t, 8, int(shape0.Memory()))

	shape1 := Make(dtypes.Float32, 4, 3, 2)
	assert.False(t, shape1.IsScalar())
	assert.Equal(t, 3, shape1.Rank())
	assert.Equal(t, 4*3*2, shape1.Size())
	assert.Equal(t, 4*4*3*2, int(shape1.Memory()))

	empty := Make(dtypes.Float32, 4, 0)
	assert.Equal(t, 0, empty.Size())

	assert.Panics(t, func() { _ = Make(dtypes.Float32, 2, -1) })
}

func TestDim(t *testing.T) {
	shape := Make(dtypes.Float32, 4, 3, 2)
	assert.Equal(t, 4, shape.Dim(0))
	assert.Equal(t, 3, shape.Dim(1))
	assert.Equal(t, 2, shape.Dim(2))
	assert.Equal(t, 4, shape.Dim(-3))
	assert.Equal(t, 2, shape.Dim(-1))
	assert.Panics(t, func() { _ = shape.Dim(3) })
	assert.Panics(t, func() { _ = shape.Dim(-4) })
}

func TestEqualAndClone(t *testing.T) {
	shape := Make(dtypes.Float32, 1, 8, 4, 4)
	clone := shape.Clone()
	assert.True(t, shape.Equal(clone))
	clone.Dimensions[1] = 16
	assert.False(t, shape.Equal(clone))
	assert.Equal(t, 8, shape.Dimensions[1], "Clone must not share the dimensions slice")

	other := Make(dtypes.Int32, 1, 8, 4, 4)
	assert.False(t, shape.Equal(other))
	assert.True(t, shape.EqualDimensions(other))

	require.NoError(t, shape.Check(dtypes.Float32, 1, 8, 4, 4))
	require.Error(t, shape.Check(dtypes.Float32, 1, 8, 4))
	require.Error(t, shape.Check(dtypes.Float64, 1, 8, 4, 4))
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "f32[1,10]", Make(dtypes.Float32, 1, 10).TypeString())
	assert.Equal(t, "i32[]", Make(dtypes.Int32).TypeString())
	assert.Equal(t, "f16[2,0]", Make(dtypes.Float16, 2, 0).TypeString())
}
