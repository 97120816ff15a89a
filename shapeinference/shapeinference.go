// Package shapeinference calculates the shape resulting from the elementwise operations a kernel
// Expression can hold, and validates its inputs.
//
// It defines a BinaryOp function for shape inference of all binary functions, using the standard
// broadcasting rules, and UnaryOp for the unary ones, which don't change the shape.
package shapeinference

import (
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/internal/utils"
	"github.com/gomlx/lowered/types/shapes"
	"github.com/pkg/errors"
)

var (
	// NumberOperations can take any type of number as input: integers or floats.
	NumberOperations = utils.SetWith(
		optypes.Add,
		optypes.Sub,
		optypes.Mul,
		optypes.Div,
		optypes.Pow,
		optypes.Max,
		optypes.Min,

		// Notice Abs works for unsigned ints: it's just a trivial implementation.
		optypes.Abs,
		optypes.Relu,
	)

	SignedNumberOperations = utils.SetWith(
		optypes.Negate,
	)

	// FloatOperations operates only on floats.
	FloatOperations = utils.SetWith(
		optypes.Exp,
		optypes.Log,
		optypes.Sqrt,
		optypes.Rsqrt,
		optypes.Logistic,
		optypes.Tanh,
	)

	// StandardBinaryOperations include all operations that have two operands usually named lhs (left-hand-side) and
	// rhs (right-hand-side).
	StandardBinaryOperations = utils.SetWith(
		optypes.Add,
		optypes.Sub,
		optypes.Mul,
		optypes.Div,
		optypes.Pow,
		optypes.Max,
		optypes.Min,
	)

	// StandardUnaryOperations include all operations that have a single operand as input, and the return shape is the
	// same as the input.
	StandardUnaryOperations = utils.SetWith(
		optypes.Negate,
		optypes.Abs,
		optypes.Exp,
		optypes.Log,
		optypes.Sqrt,
		optypes.Rsqrt,
		optypes.Relu,
		optypes.Logistic,
		optypes.Tanh,
	)
)

// BinaryOp returns the expected output shape for ops in the StandardBinaryOperations set.
//
// It returns an error if the data type (shape.DType) is invalid for the operation -- e.g.: non-matching
// dtypes, or Exp-like float operations given integers.
func BinaryOp(opType optypes.OpType, lhsShape, rhsShape shapes.Shape) (output shapes.Shape, err error) {
	if !StandardBinaryOperations.Has(opType) {
		err = errors.Errorf("operation %s is not in the StandardBinaryOperations set, cannot process it with BinaryOp", opType)
		return
	}
	if lhsShape.DType == dtypes.InvalidDType || rhsShape.DType == dtypes.InvalidDType {
		err = errors.Errorf("invalid shape for %s or %s for %q", lhsShape, rhsShape, opType)
		return
	}
	if lhsShape.DType != rhsShape.DType {
		err = errors.Errorf("data types (DType) for BinaryOp %s must match, got %s and %s", opType, lhsShape, rhsShape)
		return
	}
	if err = checkDType(opType, lhsShape); err != nil {
		return
	}
	return binaryOpImpl(opType, lhsShape, rhsShape)
}

func binaryOpImpl(opType optypes.OpType, lhsShape, rhsShape shapes.Shape) (output shapes.Shape, err error) {
	// Trivial cases: if one of the sides is a scalar, return the other side shape.
	if lhsShape.IsScalar() {
		return rhsShape.Clone(), nil
	}
	if rhsShape.IsScalar() {
		return lhsShape.Clone(), nil
	}

	// Other cases, either the dimensions match or one of them is 1.
	if lhsShape.Rank() != rhsShape.Rank() {
		err = errors.Errorf("if operands are not scalars, their rank must match for BinaryOp (%s), got shapes %s and %s",
			opType, lhsShape, rhsShape)
		return
	}
	output = lhsShape.Clone()
	for axis := range output.Rank() {
		lhsDim := lhsShape.Dimensions[axis]
		rhsDim := rhsShape.Dimensions[axis]
		if lhsDim != 1 && rhsDim != 1 && lhsDim != rhsDim {
			err = errors.Errorf("dimension of axis #%d doesn't match and cannot be broadcast for BinaryOp (%s), got shapes %s and %s",
				axis, opType, lhsShape, rhsShape)
			return
		}
		if lhsDim == 1 {
			output.Dimensions[axis] = rhsDim
		}
	}
	return
}

// UnaryOp checks the validity of the data type for StandardUnaryOperations and returns either an error or
// the output shape, which is the same as the operand.
func UnaryOp(opType optypes.OpType, operand shapes.Shape) (output shapes.Shape, err error) {
	if !StandardUnaryOperations.Has(opType) {
		err = errors.Errorf("operation %s is not in the StandardUnaryOperations set, cannot process it with UnaryOp", opType)
		return
	}
	if operand.DType == dtypes.InvalidDType {
		err = errors.Errorf("invalid shape %s for UnaryOp %s", operand, opType)
		return
	}
	if err = checkDType(opType, operand); err != nil {
		return
	}
	output = operand.Clone()
	return
}

// checkDType validates the dtype of the (first) operand against the op's category.
func checkDType(opType optypes.OpType, operand shapes.Shape) error {
	dtype := operand.DType
	if SignedNumberOperations.Has(opType) && (dtype.IsUnsigned() || !(dtype.IsInt() || dtype.IsFloat())) {
		return errors.Errorf("signed op %s must have a signed data type as input, got %s", opType, operand)
	}
	if NumberOperations.Has(opType) && !(dtype.IsInt() || dtype.IsFloat()) {
		return errors.Errorf("numeric op %s must have a number (Int32, Float32, ...) data type as input, got %s", opType, operand)
	}
	if FloatOperations.Has(opType) && !dtype.IsFloat() {
		return errors.Errorf("float op %s must have a float (Float32, Float64, ...) data type as input, got %s", opType, operand)
	}
	return nil
}

// Convert returns the shape of operand converted to the given dtype: only the dtype changes.
func Convert(operand shapes.Shape, dtype dtypes.DType) (output shapes.Shape, err error) {
	if operand.DType == dtypes.InvalidDType || dtype == dtypes.InvalidDType {
		err = errors.Errorf("invalid dtypes for Convert(%s -> %s)", operand, dtype)
		return
	}
	if !(dtype.IsInt() || dtype.IsFloat() || dtype == dtypes.Bool) {
		err = errors.Errorf("Convert only supports integer, float and boolean dtypes, got %s", dtype)
		return
	}
	output = operand.Clone()
	output.DType = dtype
	return
}
