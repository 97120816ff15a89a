// Package layout defines Layout, the physical memory order of a tensor's axes relative to its
// logical shape.
//
// A Layout is a permutation of the axis indices: position i of the layout holds the logical axis
// that is the i-th physical axis, outermost first. The identity permutation is the default
// ("planar") layout, where memory order equals the logical order.
//
// Example: for a logical NCHW shape [1, 8, 4, 4], the layout [0, 2, 3, 1] lays the elements out
// as NHWC, that is, channels become the innermost (fastest moving) axis.
package layout

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Layout is a permutation of axes describing the physical order of a tensor in memory.
type Layout []int

// Identity returns the planar layout for the given rank: [0, 1, ..., rank-1].
func Identity(rank int) Layout {
	l := make(Layout, rank)
	for i := range l {
		l[i] = i
	}
	return l
}

// Make returns a layout with the given axes order, validating that it is a permutation.
//
// It panics if axes is not a permutation of [0, len(axes)). Use Validate for an error instead.
func Make(axes ...int) Layout {
	l := Layout(slices.Clone(axes))
	if err := l.Validate(len(axes)); err != nil {
		exceptions.Panicf("layout.Make(%v): %v", axes, err)
	}
	return l
}

// Rank is the number of axes the layout permutes.
func (l Layout) Rank() int { return len(l) }

// IsIdentity returns whether the layout is the planar (default) layout.
func (l Layout) IsIdentity() bool {
	for i, axis := range l {
		if axis != i {
			return false
		}
	}
	return true
}

// Validate that the layout is a permutation of the axes of a shape of the given rank.
func (l Layout) Validate(rank int) error {
	if len(l) != rank {
		return errors.Errorf("layout %s has %d axes, but shape has rank %d", l, len(l), rank)
	}
	seen := make([]bool, rank)
	for _, axis := range l {
		if axis < 0 || axis >= rank {
			return errors.Errorf("layout %s has axis %d out of range for rank %d", l, axis, rank)
		}
		if seen[axis] {
			return errors.Errorf("layout %s repeats axis %d, it is not a permutation", l, axis)
		}
		seen[axis] = true
	}
	return nil
}

// Equal returns whether both layouts hold the same permutation.
func (l Layout) Equal(l2 Layout) bool {
	return slices.Equal(l, l2)
}

// Clone returns a copy of the layout that doesn't share the underlying storage.
func (l Layout) Clone() Layout {
	if l == nil {
		return nil
	}
	return slices.Clone(l)
}

// PhysicalDims returns the dimensions in memory order (outermost first).
func (l Layout) PhysicalDims(dims []int) []int {
	if len(dims) != len(l) {
		exceptions.Panicf("layout %s cannot be applied to dimensions %v: rank mismatch", l, dims)
	}
	physical := make([]int, len(dims))
	for i, axis := range l {
		physical[i] = dims[axis]
	}
	return physical
}

// Strides returns, for each logical axis, the number of elements to skip in linear memory to move
// one position along that axis.
//
// The innermost physical axis has stride 1.
func (l Layout) Strides(dims []int) []int {
	physical := l.PhysicalDims(dims)
	strides := make([]int, len(dims))
	step := 1
	for i := len(physical) - 1; i >= 0; i-- {
		strides[l[i]] = step
		step *= physical[i]
	}
	return strides
}

// String implements fmt.Stringer.
func (l Layout) String() string {
	parts := make([]string, len(l))
	for i, axis := range l {
		parts[i] = strconv.Itoa(axis)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, ","))
}
