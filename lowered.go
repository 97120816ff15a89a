// Package lowered holds the Linear IR of a fused kernel: the ordered, dependency-respecting sequence of
// expressions that a lowering pipeline transforms before handing it to a code emitter.
//
// Among its features:
//
//   - Expressions live in an arena and are addressed by stable handles (ExprID), so passes can insert, move
//     and remove expressions while holding positions.
//   - Each input and output port carries a PortDescriptor: the logical shape, the physical layout (a
//     permutation of the axes, see package layout) and the subtensor tile size.
//   - Connection queries (Producer, Consumers) fail with an InvalidQuery error instead of returning
//     placeholders.
//   - Verify checks the invariants every pass must preserve: topological order, port consistency and
//     valid layouts.
//
// The passes that transform the IR, and the pipeline that runs them, are in package pass.
package lowered

import "github.com/gomlx/lowered/internal/utils"

// Generates the builder methods of the standard elementwise operations.
//go:generate go run ./internal/cmd/ops_generator

// NormalizeIdentifier converts the name of a kernel argument to a valid identifier:
// only letters, digits, and underscores are allowed.
//
// Invalid characters are replaced with underscores.
// If the name starts with a digit, it is prefixed with an underscore.
func NormalizeIdentifier(name string) string {
	return utils.NormalizeIdentifier(name)
}
