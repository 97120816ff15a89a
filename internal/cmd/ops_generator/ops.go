package main

import (
	"io"
	"text/template"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/shapeinference"
)

// OpInfo is one generated builder method.
type OpInfo struct {
	Name, Comment string
}

type Data struct {
	BinaryOps, UnaryOps []OpInfo
}

// comments holds the doc comment of each generated method, after its name.
var comments = map[optypes.OpType]string{
	optypes.Add:      "returns the element-wise sum of lhs and rhs.",
	optypes.Sub:      "returns the element-wise difference lhs - rhs.",
	optypes.Mul:      "returns the element-wise product of lhs and rhs.",
	optypes.Div:      "returns the element-wise quotient lhs / rhs.",
	optypes.Max:      "returns the element-wise maximum.",
	optypes.Min:      "returns the element-wise minimum.",
	optypes.Pow:      "returns lhs raised to the power rhs, element-wise.",
	optypes.Negate:   "returns -x.",
	optypes.Abs:      "returns |x|.",
	optypes.Exp:      "returns e^x.",
	optypes.Log:      "returns the natural logarithm of x.",
	optypes.Sqrt:     "returns the square root of x.",
	optypes.Rsqrt:    "returns 1/sqrt(x).",
	optypes.Relu:     "returns max(x, 0).",
	optypes.Logistic: "returns 1/(1+e^-x), also known as sigmoid.",
	optypes.Tanh:     "returns the hyperbolic tangent of x.",
}

// buildData lists the standard binary and unary operations, in OpType order.
func buildData() Data {
	var data Data
	for _, op := range optypes.OpTypeValues() {
		isBinary := shapeinference.StandardBinaryOperations.Has(op)
		isUnary := shapeinference.StandardUnaryOperations.Has(op)
		if !isBinary && !isUnary {
			continue
		}
		comment, found := comments[op]
		if !found {
			exceptions.Panicf("ops_generator: missing comment for op %s", op)
		}
		info := OpInfo{Name: op.String(), Comment: comment}
		if isBinary {
			data.BinaryOps = append(data.BinaryOps, info)
		} else {
			data.UnaryOps = append(data.UnaryOps, info)
		}
	}
	return data
}

var opsTemplate = template.Must(template.New(fileName).Parse(
	`/***** File generated by ./internal/cmd/ops_generator. Don't edit it directly. *****/

package lowered

import "github.com/gomlx/lowered/internal/optypes"
{{range .BinaryOps}}
// {{.Name}} {{.Comment}}
func (ir *LinearIR) {{.Name}}(lhs, rhs *Expression) (*Expression, error) {
	return ir.binaryOp(optypes.{{.Name}}, lhs, rhs)
}
{{end}}
{{- range .UnaryOps}}
// {{.Name}} {{.Comment}}
func (ir *LinearIR) {{.Name}}(x *Expression) (*Expression, error) {
	return ir.unaryOp(optypes.{{.Name}}, x)
}
{{end}}`))

// GenerateOps writes the contents of gen_ops.go.
func GenerateOps(w io.Writer) error {
	return opsTemplate.Execute(w, buildData())
}
