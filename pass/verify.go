package pass

import "github.com/gomlx/lowered"

// Verify checks the invariants of the IR in the given range, see lowered.LinearIR.Verify.
// When given the whole IR it also checks the nesting of the loops.
//
// Pipelines configured with Config.Verify already verify the IR after every pass; Verify is meant as an explicit
// step in pipelines with verification disabled.
type Verify struct{}

var _ RangedPass = Verify{}

// Name implements Pass.
func (Verify) Name() string { return "Verify" }

// Ranged implements RangedPass.
func (Verify) Ranged() {}

// Run implements Pass.
func (Verify) Run(ir *lowered.LinearIR, r lowered.Range) error {
	return verify(ir, r, r == ir.All())
}
