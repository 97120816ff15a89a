// Package optypes defines OpType and lists the operations an Expression of the Linear IR can hold.
package optypes

import (
	"fmt"

	"github.com/gomlx/lowered/internal/utils"
)

// OpType is a closed enum of the operations a kernel Expression can perform.
//
// Parameter and Result are structurally privileged: they are the kernel's input and output buffers.
// LoopBegin and LoopEnd delimit the (bounded, possibly nested) loop regions of the kernel.
type OpType int

//go:generate go tool enumer -type=OpType optypes.go

const (
	Invalid OpType = iota
	Parameter
	Result
	Scalar
	LoopBegin
	LoopEnd
	Convert

	Add
	Sub
	Mul
	Div
	Max
	Min
	Pow

	Negate
	Abs
	Exp
	Log
	Sqrt
	Rsqrt
	Relu
	Logistic
	Tanh

	// Last should always be kept the last, it is used as a counter/marker for the enum.
	Last
)

// IsBoundary returns whether the op is a kernel-level input or output buffer (Parameter or Result).
func (op OpType) IsBoundary() bool {
	return op == Parameter || op == Result
}

// IsLoopMarker returns whether the op delimits a loop region.
func (op OpType) IsLoopMarker() bool {
	return op == LoopBegin || op == LoopEnd
}

// Mnemonic returns the name used for the operation in the IR text dump.
func (op OpType) Mnemonic() string {
	if op <= Invalid || op >= Last {
		return fmt.Sprintf("invalid<%d>", int(op))
	}
	return utils.ToSnakeCase(op.String())
}
