// Package pass defines the passes that transform a lowered.LinearIR, and the Pipeline that runs them in order.
//
// A Pass is a bounded transformation step: given a range of the IR, it mutates it in place and returns an error
// on failure. Passes are not reentrant and never run concurrently on the same IR: the Pipeline acquires
// exclusive access to the IR while running.
//
// The ordering of the passes is a contract: each pass establishes the preconditions of the passes that follow.
// E.g. PropagateLayout must run after all passes deciding layouts of the kernel's interior operations, and before
// ComputeDataOffsets, which consumes the layouts of the kernel's Parameters and Results.
package pass

import (
	"github.com/gomlx/lowered"
	"github.com/pkg/errors"
)

// Pass transforms a LinearIR.
//
// Run is given the range to transform. Passes that are not RangedPass only accept the whole IR (ir.All()).
// Run must leave the IR in topological order, and must not keep references to the IR after it returns.
type Pass interface {
	// Name of the pass, used in logs and failure reports.
	Name() string

	// Run the pass over the range r of ir.
	Run(ir *lowered.LinearIR, r lowered.Range) error
}

// RangedPass is a Pass that reads and writes only the expressions positioned in the range it is given.
//
// The same RangedPass may be run once per loop body, with different ranges of the same IR (see ForEachLoop), so
// it must not leak mutations across the bounds of the range. Neighbors of an expression in the range may be read
// through the IR connection queries.
type RangedPass interface {
	Pass

	// Ranged is a marker for passes that honor the RangedPass contract.
	Ranged()
}

// IsRanged returns whether the pass honors the RangedPass contract.
func IsRanged(p Pass) bool {
	_, ok := p.(RangedPass)
	return ok
}

// funcPass implements Func.
type funcPass struct {
	name string
	fn   func(ir *lowered.LinearIR, r lowered.Range) error
}

// Func returns a RangedPass that calls fn. fn must honor the RangedPass contract.
//
// It is used to plug into a Pipeline passes defined elsewhere, e.g. the passes deciding the layouts of the
// kernel's interior operations.
func Func(name string, fn func(ir *lowered.LinearIR, r lowered.Range) error) RangedPass {
	return &funcPass{name: name, fn: fn}
}

func (p *funcPass) Name() string { return p.name }
func (p *funcPass) Ranged()      {}
func (p *funcPass) Run(ir *lowered.LinearIR, r lowered.Range) error {
	return p.fn(ir, r)
}

// forEachLoop implements ForEachLoop.
type forEachLoop struct {
	pass RangedPass
}

// ForEachLoop returns a RangedPass that runs p once over the body of each loop whose LoopBegin is in the range it
// is given, in IR order (outer loops before the loops they contain).
//
// The loop bodies are recomputed before each run, so p may insert or remove expressions inside a body.
// The range must not split a loop: a loop starting in the range must also end in it.
func ForEachLoop(p RangedPass) RangedPass {
	return &forEachLoop{pass: p}
}

func (l *forEachLoop) Name() string { return "ForEachLoop(" + l.pass.Name() + ")" }
func (l *forEachLoop) Ranged()      {}

func (l *forEachLoop) Run(ir *lowered.LinearIR, r lowered.Range) error {
	if err := ir.CheckRange(r); err != nil {
		return err
	}
	if _, err := ir.LoopBodies(); err != nil {
		return err
	}
	var loops []lowered.ExprID
	for _, begin := range ir.Loops() {
		if !r.Contains(ir.Position(begin.ID())) {
			continue
		}
		body, err := ir.LoopBody(begin.ID())
		if err != nil {
			return err
		}
		if body.End >= r.End {
			return lowered.Errorf(lowered.PassFailure, begin.ID(),
				"loop with body %s is not contained in the range %s given to %s", body, r, l.Name())
		}
		loops = append(loops, begin.ID())
	}
	for _, begin := range loops {
		body, err := ir.LoopBody(begin)
		if err != nil {
			return err
		}
		if err = l.pass.Run(ir, body); err != nil {
			return errors.WithMessagef(err, "%s in the body %s of loop %s", l.pass.Name(), body, begin)
		}
	}
	return nil
}
