package optypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpType(t *testing.T) {
	assert.Equal(t, "loop_begin", LoopBegin.Mnemonic())
	assert.Equal(t, "parameter", Parameter.Mnemonic())
	assert.Equal(t, "invalid<0>", Invalid.Mnemonic())
	assert.True(t, Parameter.IsBoundary())
	assert.True(t, Result.IsBoundary())
	assert.False(t, Add.IsBoundary())
	assert.True(t, LoopEnd.IsLoopMarker())

	op, err := OpTypeString("Relu")
	assert.NoError(t, err)
	assert.Equal(t, Relu, op)
	_, err = OpTypeString("Transpose")
	assert.Error(t, err)
}
