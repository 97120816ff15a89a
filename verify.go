package lowered

import (
	"slices"

	"github.com/gomlx/lowered/internal/optypes"
)

// CheckTopologicalOrder verifies that for every connection the producer is positioned before the consumer.
func (ir *LinearIR) CheckTopologicalOrder() error {
	return ir.checkTopologicalOrder(ir.All())
}

func (ir *LinearIR) checkTopologicalOrder(r Range) error {
	for pos, e := range ir.Range(r) {
		for i, source := range e.sources {
			sourcePos := ir.Position(source.Expr)
			if sourcePos < 0 {
				return Errorf(PassFailure, e.id, "input #%d is connected to %s, which is not part of the kernel", i, source)
			}
			if sourcePos >= pos {
				return Errorf(PassFailure, e.id, "input #%d is produced by %s at position %d, not before the consumer at position %d",
					i, source, sourcePos, pos)
			}
		}
	}
	return nil
}

// Verify checks all invariants of the IR:
//
//   - Topological order of all connections.
//   - Arity of Parameters (no inputs, one output), Results (one input, no outputs) and loop markers.
//   - Consistency of connections: the producer lists the consumer, and the shapes on both ends match.
//   - Every port layout is a valid permutation of its shape's axes.
//   - Loop markers are balanced and properly nested.
func (ir *LinearIR) Verify() error {
	if err := ir.VerifyRange(ir.All()); err != nil {
		return err
	}
	return ir.checkLoopNesting()
}

// VerifyRange checks the invariants of Verify for the expressions positioned in r, except loop nesting which
// can only be checked for the whole IR.
func (ir *LinearIR) VerifyRange(r Range) error {
	if err := ir.CheckRange(r); err != nil {
		return err
	}
	if err := ir.checkTopologicalOrder(r); err != nil {
		return err
	}
	for _, e := range ir.Range(r) {
		if err := ir.checkArity(e); err != nil {
			return err
		}
		for i, source := range e.sources {
			producer := ir.exprs[source.Expr]
			if source.Port < 0 || source.Port >= len(producer.Outputs) {
				return Errorf(PassFailure, e.id, "input #%d is connected to non-existent port %s", i, source)
			}
			if !slices.Contains(producer.consumers[source.Port], e.Input(i)) {
				return Errorf(PassFailure, e.id, "input #%d is connected to %s, but the producer doesn't list it as a consumer", i, source)
			}
			if !producer.Outputs[source.Port].Shape.Equal(e.Inputs[i].Shape) {
				return Errorf(PassFailure, e.id, "input #%d has shape %s, but it is connected to %s with shape %s",
					i, e.Inputs[i].Shape, source, producer.Outputs[source.Port].Shape)
			}
		}
		for i, pd := range e.Inputs {
			if err := pd.Layout.Validate(pd.Shape.Rank()); err != nil {
				return Errorf(PassFailure, e.id, "input #%d: %v", i, err)
			}
		}
		for i, pd := range e.Outputs {
			if err := pd.Layout.Validate(pd.Shape.Rank()); err != nil {
				return Errorf(PassFailure, e.id, "output #%d: %v", i, err)
			}
			for _, ref := range e.consumers[i] {
				consumer := ir.exprs[ref.Expr]
				if consumer == nil || ref.Port >= len(consumer.sources) || consumer.sources[ref.Port] != e.Output(i) {
					return Errorf(PassFailure, e.id, "output #%d lists consumer %s, which is not connected to it", i, ref)
				}
			}
		}
	}
	return nil
}

func (ir *LinearIR) checkArity(e *Expression) error {
	if len(e.Inputs) != len(e.sources) || len(e.Outputs) != len(e.consumers) {
		return Errorf(PassFailure, e.id, "ports and connections of %s are out of sync", e.OpType)
	}
	var numInputs, numOutputs int
	switch {
	case e.OpType == optypes.Parameter:
		numInputs, numOutputs = 0, 1
	case e.OpType == optypes.Result:
		numInputs, numOutputs = 1, 0
	case e.OpType.IsLoopMarker():
		numInputs, numOutputs = 0, 0
	default:
		return nil
	}
	if len(e.Inputs) != numInputs || len(e.Outputs) != numOutputs {
		return Errorf(PassFailure, e.id, "%s must have %d inputs and %d outputs, got %d and %d",
			e.OpType, numInputs, numOutputs, len(e.Inputs), len(e.Outputs))
	}
	return nil
}
