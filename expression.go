package lowered

import (
	"fmt"
	"io"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/lowered/internal/optypes"
	"github.com/gomlx/lowered/types/layout"
	"github.com/x448/float16"
)

// Expression is one instruction of the Linear IR: an operation with its input and output ports,
// and the connections of each input port to the output port of a producer.
//
// Expressions are owned by exactly one LinearIR and are created through its methods.
type Expression struct {
	ir *LinearIR
	id ExprID

	// OpType is the type of the operation.
	OpType optypes.OpType

	// Name is optional, used for Parameters and Results to help debugging and by emitters to name buffers.
	Name string

	// Inputs port descriptors, one per operand.
	Inputs []*PortDescriptor

	// Outputs port descriptors. Results have none.
	Outputs []*PortDescriptor

	// Attributes of the operation.
	Attributes map[string]any

	// sources[i] is the producer output port connected to input i.
	sources []PortRef

	// consumers[i] lists the consumer input ports connected to output i, in connection order.
	consumers [][]PortRef
}

// ID returns the stable handle of the expression within its LinearIR.
func (e *Expression) ID() ExprID { return e.id }

// IsParameter returns whether the expression is a kernel input buffer.
func (e *Expression) IsParameter() bool { return e.OpType == optypes.Parameter }

// IsResult returns whether the expression is a kernel output buffer.
func (e *Expression) IsResult() bool { return e.OpType == optypes.Result }

// Output returns a reference to the output port of the expression.
func (e *Expression) Output(port int) PortRef { return PortRef{Expr: e.id, Port: port} }

// Input returns a reference to the input port of the expression.
func (e *Expression) Input(port int) PortRef { return PortRef{Expr: e.id, Port: port} }

// clone returns a deep copy of the expression, owned by ir.
func (e *Expression) clone(ir *LinearIR) *Expression {
	c := &Expression{
		ir:         ir,
		id:         e.id,
		OpType:     e.OpType,
		Name:       e.Name,
		Inputs:     make([]*PortDescriptor, len(e.Inputs)),
		Outputs:    make([]*PortDescriptor, len(e.Outputs)),
		Attributes: maps.Clone(e.Attributes),
		sources:    slices.Clone(e.sources),
		consumers:  make([][]PortRef, len(e.consumers)),
	}
	for key, value := range c.Attributes {
		switch v := value.(type) {
		case []int:
			c.Attributes[key] = slices.Clone(v)
		case layout.Layout:
			c.Attributes[key] = v.Clone()
		}
	}
	for i, pd := range e.Inputs {
		c.Inputs[i] = pd.Clone()
	}
	for i, pd := range e.Outputs {
		c.Outputs[i] = pd.Clone()
	}
	for i, refs := range e.consumers {
		c.consumers[i] = slices.Clone(refs)
	}
	return c
}

// equal compares the expressions structurally: op, ports, connections and attributes.
func (e *Expression) equal(other *Expression) bool {
	if e.id != other.id || e.OpType != other.OpType || e.Name != other.Name ||
		len(e.Inputs) != len(other.Inputs) || len(e.Outputs) != len(other.Outputs) {
		return false
	}
	for i, pd := range e.Inputs {
		if !pd.Equal(other.Inputs[i]) {
			return false
		}
	}
	for i, pd := range e.Outputs {
		if !pd.Equal(other.Outputs[i]) {
			return false
		}
	}
	if !slices.Equal(e.sources, other.sources) {
		return false
	}
	for i, refs := range e.consumers {
		if !slices.Equal(refs, other.consumers[i]) {
			return false
		}
	}
	if len(e.Attributes) != len(other.Attributes) {
		return false
	}
	for key, value := range e.Attributes {
		otherValue, found := other.Attributes[key]
		if !found || literalToString(value) != literalToString(otherValue) {
			return false
		}
	}
	return true
}

// Write writes a one-line representation of the expression to the given writer.
func (e *Expression) Write(writer io.Writer, indentation string) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}

	w("%s", indentation)
	if len(e.Outputs) > 0 {
		w("%s = ", e.id)
	}
	w("%s(", e.OpType.Mnemonic())
	for i, source := range e.sources {
		if i > 0 {
			w(", ")
		}
		w("%s", source)
	}
	w(")")

	if e.Name != "" || len(e.Attributes) > 0 {
		parts := make([]string, 0, len(e.Attributes)+1)
		if e.Name != "" {
			parts = append(parts, fmt.Sprintf("name = %q", e.Name))
		}
		for _, key := range slices.Sorted(maps.Keys(e.Attributes)) {
			parts = append(parts, fmt.Sprintf("%s = %s", key, literalToString(e.Attributes[key])))
		}
		w(" {%s}", strings.Join(parts, ", "))
	}

	// Signature.
	w(" : (")
	for i, pd := range e.Inputs {
		if i > 0 {
			w(", ")
		}
		w("%s", pd)
	}
	w(") -> ")
	if len(e.Outputs) != 1 {
		w("(")
	}
	for i, pd := range e.Outputs {
		if i > 0 {
			w(", ")
		}
		w("%s", pd)
	}
	if len(e.Outputs) != 1 {
		w(")")
	}

	// Buffer size of kernel arguments.
	var buffer *PortDescriptor
	switch {
	case e.IsParameter() && len(e.Outputs) == 1:
		buffer = e.Outputs[0]
	case e.IsResult() && len(e.Inputs) == 1:
		buffer = e.Inputs[0]
	}
	if buffer != nil {
		w("  // %s", humanize.IBytes(uint64(buffer.Shape.Memory())))
	}
	return err
}

// String implements fmt.Stringer.
func (e *Expression) String() string {
	var sb strings.Builder
	_ = e.Write(&sb, "")
	return sb.String()
}

// literalToString converts an attribute value to its representation in the IR dump.
func literalToString(attr any) string {
	switch v := attr.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case float16.Float16:
		return fmt.Sprintf("%g : f16", v.Float32())
	case float32, float64:
		var f float64
		if f32, ok := v.(float32); ok {
			f = float64(f32)
		} else {
			f = v.(float64)
		}
		format := "%g"
		if f == math.Trunc(f) && !math.IsInf(f, 0) {
			// f is an integer, make sure we add a decimal point.
			format = "%.1f"
		}
		return fmt.Sprintf(format, f)
	case int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case ExprID:
		return v.String()
	case layout.Layout:
		return v.String()
	case []int:
		parts := make([]string, len(v))
		for i, x := range v {
			parts[i] = fmt.Sprintf("%d", x)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%#v", v)
	}
}
