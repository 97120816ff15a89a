package pass

import (
	"github.com/gomlx/lowered"
	"github.com/gomlx/lowered/types/layout"
	"k8s.io/klog/v2"
)

// PropagateLayout copies the layouts chosen for the kernel's interior operations to its boundary: the output port
// of each Parameter takes the layout of the input port it feeds, and the input port of each Result takes the
// layout of the output port that produces it. This way the kernel's data-pointer offsets (see ComputeDataOffsets)
// match the memory order the interior operations expect.
//
// Only non-identity layouts are propagated: an identity (planar) neighbor leaves the boundary port as it is.
// Shapes are never changed, only layouts.
//
// A Parameter must have exactly one consumer, otherwise it fails with lowered.Topology. A neighbor layout whose
// rank doesn't match the boundary port fails with lowered.PassFailure. In both cases the IR is left unmodified.
//
// It must run after all passes that decide the layouts of interior operations, and before ComputeDataOffsets.
type PropagateLayout struct{}

var _ RangedPass = PropagateLayout{}

// Name implements Pass.
func (PropagateLayout) Name() string { return "PropagateLayout" }

// Ranged implements RangedPass.
func (PropagateLayout) Ranged() {}

// layoutUpdate is a pending assignment of a layout to a boundary port.
type layoutUpdate struct {
	expr   lowered.ExprID
	target *lowered.PortDescriptor
	layout layout.Layout
}

// Run implements Pass.
func (PropagateLayout) Run(ir *lowered.LinearIR, r lowered.Range) error {
	if err := ir.CheckRange(r); err != nil {
		return err
	}

	// All updates are validated before any is applied.
	var updates []layoutUpdate
	for _, e := range ir.Range(r) {
		var (
			target, neighbor *lowered.PortDescriptor
			err              error
		)
		switch {
		case e.IsParameter():
			target, neighbor, err = parameterNeighbor(ir, e)
		case e.IsResult():
			target, neighbor, err = resultNeighbor(ir, e)
		default:
			continue
		}
		if err != nil {
			return err
		}
		if neighbor.Layout.IsIdentity() {
			continue
		}
		if err := neighbor.Layout.Validate(target.Shape.Rank()); err != nil {
			return lowered.Errorf(lowered.PassFailure, e.ID(),
				"cannot propagate layout %s to %s port with shape %s: %v", neighbor.Layout, e.OpType, target.Shape, err)
		}
		updates = append(updates, layoutUpdate{expr: e.ID(), target: target, layout: neighbor.Layout})
	}

	for _, u := range updates {
		if u.target.Layout.Equal(u.layout) {
			continue
		}
		klog.V(2).Infof("kernel %q: layout of %s set to %s (was %s)", ir.Name(), u.expr, u.layout, u.target.Layout)
		u.target.Layout = u.layout.Clone()
	}
	return nil
}

// parameterNeighbor returns the output port of the Parameter p and the input port of its only consumer.
func parameterNeighbor(ir *lowered.LinearIR, p *lowered.Expression) (target, neighbor *lowered.PortDescriptor, err error) {
	if len(p.Outputs) != 1 {
		return nil, nil, lowered.Errorf(lowered.Topology, p.ID(), "Parameter must have exactly one output, it has %d", len(p.Outputs))
	}
	consumers, err := ir.Consumers(p.Output(0))
	if err != nil {
		return nil, nil, err
	}
	if len(consumers) != 1 {
		return nil, nil, lowered.Errorf(lowered.Topology, p.ID(),
			"Parameter must have exactly one consumer to propagate its layout, it has %d", len(consumers))
	}
	neighbor, err = ir.InputDescriptor(consumers[0])
	if err != nil {
		return nil, nil, err
	}
	return p.Outputs[0], neighbor, nil
}

// resultNeighbor returns the input port of the Result r and the output port that produces it.
func resultNeighbor(ir *lowered.LinearIR, r *lowered.Expression) (target, neighbor *lowered.PortDescriptor, err error) {
	if len(r.Inputs) != 1 {
		return nil, nil, lowered.Errorf(lowered.Topology, r.ID(), "Result must have exactly one input, it has %d", len(r.Inputs))
	}
	source, err := ir.Producer(r.Input(0))
	if err != nil {
		return nil, nil, err
	}
	neighbor, err = ir.OutputDescriptor(source)
	if err != nil {
		return nil, nil, err
	}
	return r.Inputs[0], neighbor, nil
}
