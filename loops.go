package lowered

import (
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/pkg/errors"
)

// Attribute names used by the loop markers.
const (
	WorkAmountAttr = "work_amount"
	IncrementAttr  = "increment"
	LoopBeginAttr  = "loop_begin"
	LoopEndAttr    = "loop_end"
)

// LoopBegin opens a loop region: the expressions appended until the matching LoopEnd form the loop body,
// executed for workAmount iterations advancing increment elements each time.
//
// Loops can be nested, but each must be closed (LoopEnd) before its enclosing loop.
func (ir *LinearIR) LoopBegin(workAmount, increment int) (*Expression, error) {
	if workAmount < 0 || increment <= 0 {
		return nil, errors.Errorf("invalid loop with work amount %d and increment %d in kernel %q", workAmount, increment, ir.name)
	}
	e, err := ir.appendExpression(optypes.LoopBegin, nil)
	if err != nil {
		return nil, err
	}
	e.Attributes = map[string]any{
		WorkAmountAttr: workAmount,
		IncrementAttr:  increment,
	}
	return e, nil
}

// LoopEnd closes the loop region opened by begin.
func (ir *LinearIR) LoopEnd(begin *Expression) (*Expression, error) {
	if begin == nil || begin.ir != ir || begin.OpType != optypes.LoopBegin {
		return nil, errors.Errorf("LoopEnd requires a LoopBegin of kernel %q", ir.name)
	}
	if _, found := begin.Attributes[LoopEndAttr]; found {
		return nil, errors.Errorf("loop %s of kernel %q is already closed", begin.id, ir.name)
	}
	e, err := ir.appendExpression(optypes.LoopEnd, nil)
	if err != nil {
		return nil, err
	}
	e.Attributes = map[string]any{LoopBeginAttr: begin.id}
	begin.Attributes[LoopEndAttr] = e.id
	return e, nil
}

// Loops returns the LoopBegin expressions in IR order. Outer loops come before the loops they contain.
func (ir *LinearIR) Loops() []*Expression {
	var loops []*Expression
	for _, id := range ir.order {
		if e := ir.exprs[id]; e.OpType == optypes.LoopBegin {
			loops = append(loops, e)
		}
	}
	return loops
}

// LoopBody returns the current range of the body of the loop opened by the LoopBegin expression begin:
// the positions strictly between the LoopBegin and its LoopEnd.
func (ir *LinearIR) LoopBody(begin ExprID) (Range, error) {
	e, err := ir.Expression(begin)
	if err != nil {
		return Range{}, err
	}
	if e.OpType != optypes.LoopBegin {
		return Range{}, Errorf(InvalidQuery, begin, "%s is not a loop", e.OpType)
	}
	endID, ok := e.Attributes[LoopEndAttr].(ExprID)
	if !ok {
		return Range{}, Errorf(PassFailure, begin, "loop is not closed")
	}
	beginPos, endPos := ir.Position(begin), ir.Position(endID)
	if endPos < 0 || endPos <= beginPos {
		return Range{}, Errorf(PassFailure, begin, "LoopEnd %s is not positioned after its LoopBegin", endID)
	}
	return Range{Begin: beginPos + 1, End: endPos}, nil
}

// LoopBodies returns the bodies of all loops, in order of their LoopBegin position.
//
// It fails if loops are not balanced or not properly nested.
func (ir *LinearIR) LoopBodies() ([]Range, error) {
	if err := ir.checkLoopNesting(); err != nil {
		return nil, err
	}
	var bodies []Range
	for _, begin := range ir.Loops() {
		body, err := ir.LoopBody(begin.id)
		if err != nil {
			return nil, err
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

// checkLoopNesting verifies every LoopEnd closes the innermost open LoopBegin, and that all loops are closed.
func (ir *LinearIR) checkLoopNesting() error {
	var stack []ExprID
	for _, id := range ir.order {
		e := ir.exprs[id]
		switch e.OpType {
		case optypes.LoopBegin:
			stack = append(stack, id)
		case optypes.LoopEnd:
			begin, _ := e.Attributes[LoopBeginAttr].(ExprID)
			if len(stack) == 0 || stack[len(stack)-1] != begin {
				return Errorf(PassFailure, id, "LoopEnd of %s doesn't close the innermost open loop", begin)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if len(stack) > 0 {
		return Errorf(PassFailure, stack[len(stack)-1], "loop is not closed")
	}
	return nil
}
