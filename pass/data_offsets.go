package pass

import (
	"github.com/gomlx/lowered"
)

// DataOffsetsAttr is the attribute of Parameters and Results set by ComputeDataOffsets: a []int with the offset in
// bytes of a step of one element along each logical axis of the buffer.
const DataOffsetsAttr = "data_offsets"

// ComputeDataOffsets computes the data-pointer offsets of each Parameter and Result in the range, from the shape,
// layout and dtype of its port, and stores them in the DataOffsetsAttr attribute.
//
// It consumes the layouts of the boundary ports, so it must run after PropagateLayout.
type ComputeDataOffsets struct{}

var _ RangedPass = ComputeDataOffsets{}

// Name implements Pass.
func (ComputeDataOffsets) Name() string { return "ComputeDataOffsets" }

// Ranged implements RangedPass.
func (ComputeDataOffsets) Ranged() {}

// Run implements Pass.
func (ComputeDataOffsets) Run(ir *lowered.LinearIR, r lowered.Range) error {
	if err := ir.CheckRange(r); err != nil {
		return err
	}
	for _, e := range ir.Range(r) {
		if !e.OpType.IsBoundary() {
			continue
		}
		var pd *lowered.PortDescriptor
		switch {
		case e.IsParameter() && len(e.Outputs) == 1:
			pd = e.Outputs[0]
		case e.IsResult() && len(e.Inputs) == 1:
			pd = e.Inputs[0]
		default:
			return lowered.Errorf(lowered.Topology, e.ID(), "%s has %d inputs and %d outputs", e.OpType, len(e.Inputs), len(e.Outputs))
		}
		if err := pd.Layout.Validate(pd.Shape.Rank()); err != nil {
			return lowered.Errorf(lowered.PassFailure, e.ID(), "invalid layout for data offsets: %v", err)
		}
		elementSize := int(pd.Shape.DType.Memory())
		if elementSize <= 0 {
			return lowered.Errorf(lowered.PassFailure, e.ID(), "dtype %s has no fixed element size", pd.Shape.DType)
		}
		offsets := pd.Layout.Strides(pd.Shape.Dimensions)
		for axis := range offsets {
			offsets[axis] *= elementSize
		}
		if e.Attributes == nil {
			e.Attributes = make(map[string]any)
		}
		e.Attributes[DataOffsetsAttr] = offsets
	}
	return nil
}
