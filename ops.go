package lowered

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/internal/utils"
	"github.com/gomlx/lowered/shapeinference"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// This file holds the builder API used by the fusion stage to create the initial IR: expressions are
// appended in execution order, so the topological order holds by construction.
// All ports are created with the planar (identity) layout.

// checkOperands verifies the operands are single-output expressions owned by ir.
func (ir *LinearIR) checkOperands(op optypes.OpType, operands ...*Expression) error {
	for i, operand := range operands {
		if operand == nil {
			return errors.Errorf("operand #%d of %s is nil, in kernel %q", i, op, ir.name)
		}
		if operand.ir != ir {
			return errors.Errorf("cannot add operation %s to kernel %q, because operand #%d (%s) is not part of the kernel",
				op, ir.name, i, operand.id)
		}
		if ir.exprs[operand.id] != operand {
			return errors.Errorf("cannot add operation %s to kernel %q, operand #%d (%s) was removed",
				op, ir.name, i, operand.id)
		}
		if len(operand.Outputs) != 1 {
			return errors.Errorf("operand #%d of %s must have exactly one output, %s has %d",
				i, op, operand.OpType, len(operand.Outputs))
		}
	}
	return nil
}

// Parameter creates a new kernel input buffer with the given shape.
//
// The order of creation of the parameters is the order in which the buffers are bound at execution time.
func (ir *LinearIR) Parameter(shape shapes.Shape) (*Expression, error) {
	e, err := ir.appendExpression(optypes.Parameter, []shapes.Shape{shape})
	if err != nil {
		return nil, errors.WithMessagef(err, "Parameter #%d of kernel %q", len(ir.parameters), ir.name)
	}
	return e, nil
}

// NamedParameter creates a new kernel input buffer with the given name.
//
// The name is passed through NormalizeIdentifier.
func (ir *LinearIR) NamedParameter(name string, shape shapes.Shape) (*Expression, error) {
	e, err := ir.Parameter(shape)
	if err != nil {
		return nil, err
	}
	e.Name = utils.NormalizeIdentifier(name)
	return e, nil
}

// Result creates a new kernel output buffer, holding the output of x.
func (ir *LinearIR) Result(x *Expression) (*Expression, error) {
	if err := ir.checkOperands(optypes.Result, x); err != nil {
		return nil, err
	}
	return ir.appendExpression(optypes.Result, nil, x.Output(0))
}

// Scalar creates a constant scalar. The dtype is inferred from the Go type of value.
func (ir *LinearIR) Scalar(value any) (*Expression, error) {
	dtype := dtypes.FromAny(value)
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported scalar value type %T", value)
	}
	e, err := ir.appendExpression(optypes.Scalar, []shapes.Shape{shapes.Make(dtype)})
	if err != nil {
		return nil, err
	}
	e.Attributes = map[string]any{"value": value}
	return e, nil
}

// ScalarAs creates a constant scalar of the given dtype, converting value.
func (ir *LinearIR) ScalarAs(dtype dtypes.DType, value float64) (*Expression, error) {
	var v any
	switch dtype {
	case dtypes.Float64:
		v = value
	case dtypes.Float32:
		v = float32(value)
	case dtypes.Float16:
		v = float16.Fromfloat32(float32(value))
	case dtypes.Int64:
		v = int64(value)
	case dtypes.Int32:
		v = int32(value)
	case dtypes.Int16:
		v = int16(value)
	case dtypes.Int8:
		v = int8(value)
	case dtypes.Uint64:
		v = uint64(value)
	case dtypes.Uint32:
		v = uint32(value)
	case dtypes.Uint16:
		v = uint16(value)
	case dtypes.Uint8:
		v = uint8(value)
	default:
		return nil, errors.Errorf("ScalarAs doesn't support dtype %s", dtype)
	}
	return ir.Scalar(v)
}

// Op appends a generic operation with the given output shapes, whose inputs are connected to the given
// output ports. No shape inference is done: it is meant for operations decided by the fusion stage.
func (ir *LinearIR) Op(opType optypes.OpType, outputShapes []shapes.Shape, sources ...PortRef) (*Expression, error) {
	if opType.IsBoundary() || opType.IsLoopMarker() {
		return nil, errors.Errorf("%s expressions must be created with their own builder method", opType)
	}
	return ir.appendExpression(opType, outputShapes, sources...)
}

// binaryOp adds a new binary operation to the kernel.
func (ir *LinearIR) binaryOp(op optypes.OpType, lhs, rhs *Expression) (*Expression, error) {
	if err := ir.checkOperands(op, lhs, rhs); err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.BinaryOp(op, lhs.Outputs[0].Shape, rhs.Outputs[0].Shape)
	if err != nil {
		return nil, err
	}
	return ir.appendExpression(op, []shapes.Shape{outputShape}, lhs.Output(0), rhs.Output(0))
}

// unaryOp adds a new unary operation to the kernel.
func (ir *LinearIR) unaryOp(op optypes.OpType, operand *Expression) (*Expression, error) {
	if err := ir.checkOperands(op, operand); err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.UnaryOp(op, operand.Outputs[0].Shape)
	if err != nil {
		return nil, err
	}
	return ir.appendExpression(op, []shapes.Shape{outputShape}, operand.Output(0))
}

// Convert x to the given dtype.
func (ir *LinearIR) Convert(x *Expression, dtype dtypes.DType) (*Expression, error) {
	if err := ir.checkOperands(optypes.Convert, x); err != nil {
		return nil, err
	}
	outputShape, err := shapeinference.Convert(x.Outputs[0].Shape, dtype)
	if err != nil {
		return nil, err
	}
	return ir.appendExpression(optypes.Convert, []shapes.Shape{outputShape}, x.Output(0))
}
