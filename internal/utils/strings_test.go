package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "loop_begin", ToSnakeCase("LoopBegin"))
	assert.Equal(t, "add", ToSnakeCase("Add"))
	assert.Equal(t, "compute_data_offsets", ToSnakeCase("ComputeDataOffsets"))
}

func TestNormalizeIdentifier(t *testing.T) {
	assert.Equal(t, "", NormalizeIdentifier(""))
	assert.Equal(t, "input_0", NormalizeIdentifier("input:0"))
	assert.Equal(t, "_0abc", NormalizeIdentifier("0abc"))
	assert.Equal(t, "x_y_z", NormalizeIdentifier("x/y.z"))
}
