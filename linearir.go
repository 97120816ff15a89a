package lowered

import (
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/internal/utils"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/pkg/errors"
)

// LinearIR is the ordered sequence of Expressions of one fused kernel.
//
// Expressions live in an arena indexed by their ExprID, and the order of execution is kept separately as a
// sequence of handles. For every connection the producer must come before the consumer (the topological order
// invariant): passes that reorder or insert expressions must restore it before they return.
//
// A LinearIR is not safe for concurrent use: it is transformed by one pass at a time, see Acquire.
// Independent LinearIR instances share nothing and can be transformed concurrently.
type LinearIR struct {
	name string

	// exprs is the arena, indexed by ExprID. Removed expressions leave a nil slot, and IDs are not reused.
	exprs []*Expression

	// order of execution.
	order []ExprID

	// positions caches the position of each ExprID in order, -1 if removed. Rebuilt when positionsDirty.
	positions      []int
	positionsDirty bool

	// parameters and results in kernel argument order.
	parameters, results []ExprID

	// owner holds the name of who acquired exclusive access, or "" if free.
	owner string
}

// Range is the half-open interval [Begin, End) of positions of a LinearIR.
type Range struct {
	Begin, End int
}

// Len returns the number of positions in the range.
func (r Range) Len() int { return max(0, r.End-r.Begin) }

// Contains returns whether pos is in the range.
func (r Range) Contains(pos int) bool { return pos >= r.Begin && pos < r.End }

// String implements fmt.Stringer.
func (r Range) String() string { return fmt.Sprintf("[%d, %d)", r.Begin, r.End) }

// New creates an empty LinearIR for a kernel with the given name.
//
// Expressions are added with the builder methods (Parameter, Add, Result, ...) in execution order.
func New(name string) *LinearIR {
	return &LinearIR{name: name}
}

// Name of the kernel.
func (ir *LinearIR) Name() string { return ir.name }

// Len returns the number of expressions in the IR.
func (ir *LinearIR) Len() int { return len(ir.order) }

// All returns the range covering the whole IR.
func (ir *LinearIR) All() Range { return Range{Begin: 0, End: len(ir.order)} }

// At returns the expression at the given position. It panics if pos is out of range, like slice indexing.
func (ir *LinearIR) At(pos int) *Expression {
	return ir.exprs[ir.order[pos]]
}

// Expression returns the expression with the given handle, or an InvalidQuery error if it doesn't exist.
func (ir *LinearIR) Expression(id ExprID) (*Expression, error) {
	if id < 0 || int(id) >= len(ir.exprs) || ir.exprs[id] == nil {
		return nil, Errorf(InvalidQuery, NoExpr, "expression %s doesn't exist in kernel %q", id, ir.name)
	}
	return ir.exprs[id], nil
}

// Position returns the current position of the expression, or -1 if it is not part of the IR.
func (ir *LinearIR) Position(id ExprID) int {
	if id < 0 || int(id) >= len(ir.exprs) {
		return -1
	}
	if ir.positionsDirty || len(ir.positions) != len(ir.exprs) {
		ir.rebuildPositions()
	}
	return ir.positions[id]
}

func (ir *LinearIR) rebuildPositions() {
	if cap(ir.positions) >= len(ir.exprs) {
		ir.positions = ir.positions[:len(ir.exprs)]
	} else {
		ir.positions = make([]int, len(ir.exprs))
	}
	for i := range ir.positions {
		ir.positions[i] = -1
	}
	for pos, id := range ir.order {
		ir.positions[id] = pos
	}
	ir.positionsDirty = false
}

// CheckRange returns an error if r is not a valid range of the IR.
func (ir *LinearIR) CheckRange(r Range) error {
	if r.Begin < 0 || r.End > len(ir.order) || r.Begin > r.End {
		return Errorf(PassFailure, NoExpr, "range %s is invalid for kernel %q with %d expressions", r, ir.name, len(ir.order))
	}
	return nil
}

// Range iterates over the expressions in the range, yielding their current position.
//
// The expressions visited are the ones in the range when the iteration starts: expressions inserted during the
// iteration are not visited, and removed ones are skipped.
// Positions yielded reflect any relocation done while iterating.
func (ir *LinearIR) Range(r Range) iter.Seq2[int, *Expression] {
	return func(yield func(int, *Expression) bool) {
		r.Begin = max(r.Begin, 0)
		r.End = min(r.End, len(ir.order))
		if r.Begin >= r.End {
			return
		}
		ids := slices.Clone(ir.order[r.Begin:r.End])
		for _, id := range ids {
			e := ir.exprs[id]
			if e == nil {
				continue
			}
			if !yield(ir.Position(id), e) {
				return
			}
		}
	}
}

// Parameters returns the kernel input expressions, in argument order.
func (ir *LinearIR) Parameters() []*Expression {
	return ir.lookup(ir.parameters)
}

// Results returns the kernel output expressions, in argument order.
func (ir *LinearIR) Results() []*Expression {
	return ir.lookup(ir.results)
}

func (ir *LinearIR) lookup(ids []ExprID) []*Expression {
	exprs := make([]*Expression, 0, len(ids))
	for _, id := range ids {
		if e := ir.exprs[id]; e != nil {
			exprs = append(exprs, e)
		}
	}
	return exprs
}

// Producer returns the output port connected to the given input port.
//
// It fails with InvalidQuery if the expression or the input port doesn't exist.
func (ir *LinearIR) Producer(input PortRef) (PortRef, error) {
	e, err := ir.Expression(input.Expr)
	if err != nil {
		return PortRef{}, err
	}
	if input.Port < 0 || input.Port >= len(e.sources) {
		return PortRef{}, Errorf(InvalidQuery, e.id, "%s has no input port #%d (it has %d inputs)",
			e.OpType, input.Port, len(e.sources))
	}
	return e.sources[input.Port], nil
}

// Consumers returns the input ports connected to the given output port, in connection order.
// An output with no consumers returns an empty slice.
//
// It fails with InvalidQuery if the expression or the output port doesn't exist -- e.g. for a Result, which
// has no outputs.
func (ir *LinearIR) Consumers(output PortRef) ([]PortRef, error) {
	e, err := ir.Expression(output.Expr)
	if err != nil {
		return nil, err
	}
	if output.Port < 0 || output.Port >= len(e.consumers) {
		return nil, Errorf(InvalidQuery, e.id, "%s has no output port #%d (it has %d outputs)",
			e.OpType, output.Port, len(e.consumers))
	}
	return slices.Clone(e.consumers[output.Port]), nil
}

// Predecessors returns the unique producer expressions of id, in input port order.
func (ir *LinearIR) Predecessors(id ExprID) ([]*Expression, error) {
	e, err := ir.Expression(id)
	if err != nil {
		return nil, err
	}
	seen := utils.MakeSet[ExprID](len(e.sources))
	preds := make([]*Expression, 0, len(e.sources))
	for _, source := range e.sources {
		if seen.Has(source.Expr) {
			continue
		}
		seen.Insert(source.Expr)
		preds = append(preds, ir.exprs[source.Expr])
	}
	return preds, nil
}

// Successors returns the unique consumer expressions of id, in output port and connection order.
func (ir *LinearIR) Successors(id ExprID) ([]*Expression, error) {
	e, err := ir.Expression(id)
	if err != nil {
		return nil, err
	}
	seen := utils.MakeSet[ExprID]()
	var succs []*Expression
	for _, refs := range e.consumers {
		for _, ref := range refs {
			if seen.Has(ref.Expr) {
				continue
			}
			seen.Insert(ref.Expr)
			succs = append(succs, ir.exprs[ref.Expr])
		}
	}
	return succs, nil
}

// InputDescriptor returns the descriptor of the given input port.
func (ir *LinearIR) InputDescriptor(input PortRef) (*PortDescriptor, error) {
	e, err := ir.Expression(input.Expr)
	if err != nil {
		return nil, err
	}
	if input.Port < 0 || input.Port >= len(e.Inputs) {
		return nil, Errorf(InvalidQuery, e.id, "%s has no input port #%d", e.OpType, input.Port)
	}
	return e.Inputs[input.Port], nil
}

// OutputDescriptor returns the descriptor of the given output port.
func (ir *LinearIR) OutputDescriptor(output PortRef) (*PortDescriptor, error) {
	e, err := ir.Expression(output.Expr)
	if err != nil {
		return nil, err
	}
	if output.Port < 0 || output.Port >= len(e.Outputs) {
		return nil, Errorf(InvalidQuery, e.id, "%s has no output port #%d", e.OpType, output.Port)
	}
	return e.Outputs[output.Port], nil
}

// newExpression creates an expression in the arena, connected to the given sources, but not yet placed in the
// execution order.
//
// Input descriptors are copies of the producers' output descriptors. Output descriptors get planar layouts.
func (ir *LinearIR) newExpression(opType optypes.OpType, outputShapes []shapes.Shape, sources ...PortRef) (*Expression, error) {
	if opType <= optypes.Invalid || opType >= optypes.Last {
		return nil, errors.Errorf("invalid op type %d for kernel %q", int(opType), ir.name)
	}
	inputs := make([]*PortDescriptor, len(sources))
	for i, source := range sources {
		pd, err := ir.OutputDescriptor(source)
		if err != nil {
			return nil, errors.WithMessagef(err, "cannot connect input #%d of new %s", i, opType)
		}
		inputs[i] = pd.Clone()
	}
	outputs := make([]*PortDescriptor, len(outputShapes))
	for i, shape := range outputShapes {
		pd, err := NewPortDescriptor(shape, nil)
		if err != nil {
			return nil, errors.WithMessagef(err, "output #%d of new %s", i, opType)
		}
		outputs[i] = pd
	}
	e := &Expression{
		ir:        ir,
		id:        ExprID(len(ir.exprs)),
		OpType:    opType,
		Inputs:    inputs,
		Outputs:   outputs,
		sources:   slices.Clone(sources),
		consumers: make([][]PortRef, len(outputs)),
	}
	for i, source := range sources {
		producer := ir.exprs[source.Expr]
		producer.consumers[source.Port] = append(producer.consumers[source.Port], e.Input(i))
	}
	ir.exprs = append(ir.exprs, e)
	ir.positionsDirty = true
	switch opType {
	case optypes.Parameter:
		ir.parameters = append(ir.parameters, e.id)
	case optypes.Result:
		ir.results = append(ir.results, e.id)
	}
	return e, nil
}

// InsertAt creates a new expression at position pos, shifting the expressions at pos and after by one.
//
// The sources must be output ports of expressions of this IR; the caller is responsible for keeping the
// topological order, that is, sources must be positioned before pos.
func (ir *LinearIR) InsertAt(pos int, opType optypes.OpType, outputShapes []shapes.Shape, sources ...PortRef) (*Expression, error) {
	if pos < 0 || pos > len(ir.order) {
		return nil, Errorf(PassFailure, NoExpr, "cannot insert %s at position %d of kernel %q with %d expressions",
			opType, pos, ir.name, len(ir.order))
	}
	e, err := ir.newExpression(opType, outputShapes, sources...)
	if err != nil {
		return nil, err
	}
	ir.order = slices.Insert(ir.order, pos, e.id)
	return e, nil
}

// appendExpression creates a new expression at the end of the IR.
func (ir *LinearIR) appendExpression(opType optypes.OpType, outputShapes []shapes.Shape, sources ...PortRef) (*Expression, error) {
	return ir.InsertAt(len(ir.order), opType, outputShapes, sources...)
}

// Move relocates the expression to position pos (the position it will have after the move).
func (ir *LinearIR) Move(id ExprID, pos int) error {
	from := ir.Position(id)
	if from < 0 {
		return Errorf(InvalidQuery, id, "cannot move expression not in kernel %q", ir.name)
	}
	if pos < 0 || pos >= len(ir.order) {
		return Errorf(PassFailure, id, "cannot move to position %d of kernel %q with %d expressions", pos, ir.name, len(ir.order))
	}
	ir.order = slices.Delete(ir.order, from, from+1)
	ir.order = slices.Insert(ir.order, pos, id)
	ir.positionsDirty = true
	return nil
}

// Remove deletes the expression from the IR, disconnecting its inputs.
//
// It fails with InvalidQuery if any of its outputs is still consumed: reconnect the consumers first with
// ReplaceSource.
func (ir *LinearIR) Remove(id ExprID) error {
	e, err := ir.Expression(id)
	if err != nil {
		return err
	}
	for port, refs := range e.consumers {
		if len(refs) > 0 {
			return Errorf(InvalidQuery, id, "cannot remove %s: output #%d is still consumed by %v", e.OpType, port, refs)
		}
	}
	for i, source := range e.sources {
		ir.disconnect(source, e.Input(i))
	}
	pos := ir.Position(id)
	ir.order = slices.Delete(ir.order, pos, pos+1)
	ir.exprs[id] = nil
	ir.parameters = slices.DeleteFunc(ir.parameters, func(p ExprID) bool { return p == id })
	ir.results = slices.DeleteFunc(ir.results, func(r ExprID) bool { return r == id })
	ir.positionsDirty = true
	return nil
}

// ReplaceSource reconnects the consumer input port to a new producer output port.
//
// The shape of the new source must match the consumer's input shape. The input descriptor is kept.
func (ir *LinearIR) ReplaceSource(consumer PortRef, newSource PortRef) error {
	oldSource, err := ir.Producer(consumer)
	if err != nil {
		return err
	}
	sourcePD, err := ir.OutputDescriptor(newSource)
	if err != nil {
		return err
	}
	e := ir.exprs[consumer.Expr]
	if !sourcePD.Shape.Equal(e.Inputs[consumer.Port].Shape) {
		return Errorf(PassFailure, consumer.Expr, "cannot connect input #%d (%s) to %s with shape %s",
			consumer.Port, e.Inputs[consumer.Port].Shape, newSource, sourcePD.Shape)
	}
	ir.disconnect(oldSource, consumer)
	e.sources[consumer.Port] = newSource
	producer := ir.exprs[newSource.Expr]
	producer.consumers[newSource.Port] = append(producer.consumers[newSource.Port], consumer)
	return nil
}

func (ir *LinearIR) disconnect(source, consumer PortRef) {
	producer := ir.exprs[source.Expr]
	if producer == nil {
		return
	}
	producer.consumers[source.Port] = slices.DeleteFunc(producer.consumers[source.Port],
		func(ref PortRef) bool { return ref == consumer })
}

// Acquire grants exclusive access to the IR for transformations, e.g. to run a pass pipeline.
// It fails if the IR is already acquired: transformations are not reentrant.
func (ir *LinearIR) Acquire(owner string) error {
	if ir.owner != "" {
		return Errorf(PassFailure, NoExpr, "kernel %q is already being transformed by %q, cannot start %q",
			ir.name, ir.owner, owner)
	}
	ir.owner = owner
	return nil
}

// Release the exclusive access granted by Acquire.
func (ir *LinearIR) Release() {
	ir.owner = ""
}

// Clone returns a deep copy of the IR, with the same expression handles.
// The clone is not acquired, even if ir is.
func (ir *LinearIR) Clone() *LinearIR {
	c := &LinearIR{
		name:       ir.name,
		exprs:      make([]*Expression, len(ir.exprs)),
		order:      slices.Clone(ir.order),
		parameters: slices.Clone(ir.parameters),
		results:    slices.Clone(ir.results),
	}
	for i, e := range ir.exprs {
		if e != nil {
			c.exprs[i] = e.clone(c)
		}
	}
	c.positionsDirty = true
	return c
}

// Equal compares two IRs structurally: the same expressions, in the same order, with the same ports,
// layouts, connections and attributes.
func (ir *LinearIR) Equal(other *LinearIR) bool {
	if ir.name != other.name || !slices.Equal(ir.order, other.order) ||
		!slices.Equal(ir.parameters, other.parameters) || !slices.Equal(ir.results, other.results) {
		return false
	}
	for _, id := range ir.order {
		if !ir.exprs[id].equal(other.exprs[id]) {
			return false
		}
	}
	return true
}

// IndentationStep used in the IR dump.
const IndentationStep = "  "

// Write the IR in a human-readable form to the given writer.
func (ir *LinearIR) Write(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}
	we := func(e *Expression, indentation string) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		err = e.Write(writer, indentation)
	}

	w("kernel @%s {\n", utils.NormalizeIdentifier(ir.name))
	indentation := IndentationStep
	for _, id := range ir.order {
		e := ir.exprs[id]
		if e.OpType == optypes.LoopEnd && len(indentation) > len(IndentationStep) {
			indentation = indentation[:len(indentation)-len(IndentationStep)]
		}
		we(e, indentation)
		w("\n")
		if e.OpType == optypes.LoopBegin {
			indentation += IndentationStep
		}
	}
	w("}\n")
	return err
}

// String implements fmt.Stringer, it returns the same as Write.
func (ir *LinearIR) String() string {
	var sb strings.Builder
	if err := ir.Write(&sb); err != nil {
		return fmt.Sprintf("kernel @%s: failed to write: %v", ir.name, err)
	}
	return sb.String()
}
