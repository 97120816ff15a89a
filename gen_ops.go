/***** File generated by ./internal/cmd/ops_generator. Don't edit it directly. *****/

package lowered

import "github.com/gomlx/lowered/internal/optypes"

// Add returns the element-wise sum of lhs and rhs.
func (ir *LinearIR) Add(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Add, lhs, rhs)
}

// Sub returns the element-wise difference lhs - rhs.
func (ir *LinearIR) Sub(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Sub, lhs, rhs)
}

// Mul returns the element-wise product of lhs and rhs.
func (ir *LinearIR) Mul(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Mul, lhs, rhs)
}

// Div returns the element-wise quotient lhs / rhs.
func (ir *LinearIR) Div(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Div, lhs, rhs)
}

// Max returns the element-wise maximum.
func (ir *LinearIR) Max(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Max, lhs, rhs)
}

// Min returns the element-wise minimum.
func (ir *LinearIR) Min(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Min, lhs, rhs)
}

// Pow returns lhs raised to the power rhs, element-wise.
func (ir *LinearIR) Pow(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.Pow, lhs, rhs)
}

// Negate returns -x.
func (ir *LinearIR) Negate(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Negate, x)
}

// Abs returns |x|.
func (ir *LinearIR) Abs(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Abs, x)
}

// Exp returns e^x.
func (ir *LinearIR) Exp(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Exp, x)
}

// Log returns the natural logarithm of x.
func (ir *LinearIR) Log(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Log, x)
}

// Sqrt returns the square root of x.
func (ir *LinearIR) Sqrt(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Sqrt, x)
}

// Rsqrt returns 1/sqrt(x).
func (ir *LinearIR) Rsqrt(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Rsqrt, x)
}

// Relu returns max(x, 0).
func (ir *LinearIR) Relu(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Relu, x)
}

// Logistic returns 1/(1+e^-x), also known as sigmoid.
func (ir *LinearIR) Logistic(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Logistic, x)
}

// Tanh returns the hyperbolic tangent of x.
func (ir *LinearIR) Tanh(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.Tanh, x)
}
