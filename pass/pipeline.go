package pass

import (
	"fmt"
	"time"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/lowered"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// State of the execution of a Pipeline.
type State int

//go:generate go tool enumer -type=State -trimprefix=State -output=gen_state_enumer.go pipeline.go

const (
	StatePending State = iota
	StateRunning
	StateSucceeded
	StateFailed
)

// Transition is one step of the execution state machine: the state entered, and the index of the pass it refers
// to (-1 if none).
type Transition struct {
	State     State
	PassIndex int
}

// String implements fmt.Stringer.
func (t Transition) String() string {
	if t.PassIndex < 0 {
		return t.State.String()
	}
	return fmt.Sprintf("%s(%d)", t.State, t.PassIndex)
}

// Execution records one run of a Pipeline.
//
// The state machine is strictly linear: Pending → Running(0) → ... → Running(n-1) → Succeeded, or it
// stops at Failed(i) on the first failure. There are no retries.
type Execution struct {
	// ID identifies the execution in the logs.
	ID string

	// State is the final state of the execution.
	State State

	// PassIndex of the last pass run, or of the failed pass. It is -1 if no pass was run.
	PassIndex int

	// Err is nil if the execution succeeded, otherwise a *Failure.
	Err error

	transitions []Transition
}

// Transitions returns the sequence of states of the execution.
func (e *Execution) Transitions() []Transition {
	return e.transitions
}

func (e *Execution) transition(state State, passIndex int) {
	e.State = state
	e.PassIndex = passIndex
	e.transitions = append(e.transitions, Transition{State: state, PassIndex: passIndex})
	if klog.V(1).Enabled() {
		klog.Infof("pass pipeline %s: %s", e.ID, e.transitions[len(e.transitions)-1])
	}
}

// InputPassName is the PassName of failures detected before the first pass runs, e.g. an input IR that fails
// verification.
const InputPassName = "<input>"

// Failure is the error returned when a Pipeline fails: it identifies the failing pass and the offending
// expression.
type Failure struct {
	// PassIndex is the index of the failing pass in the pipeline, or -1 if the failure happened before
	// the first pass ran.
	PassIndex int
	PassName  string

	// Expr that caused the failure, or lowered.NoExpr if not identifiable.
	Expr lowered.ExprID
	Kind lowered.ErrorKind
	Err  error
}

// Error implements the error interface.
func (f *Failure) Error() string {
	return fmt.Sprintf("pass #%d %q failed with %s: %v", f.PassIndex, f.PassName, f.Kind, f.Err)
}

// Unwrap returns the underlying error.
func (f *Failure) Unwrap() error { return f.Err }

// Pipeline is a fixed ordered list of passes.
//
// The order of the passes is the contract between them: see package documentation.
type Pipeline struct {
	config Config
	passes []Pass
}

// New creates a Pipeline that runs the given passes, in order.
func New(config Config, passes ...Pass) *Pipeline {
	return &Pipeline{config: config, passes: passes}
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.config }

// Passes returns the passes of the pipeline, in order.
func (p *Pipeline) Passes() []Pass { return p.passes }

// Run all passes over the whole IR.
//
// On failure the returned error is a *Failure, and the IR is left as the failing pass left it.
func (p *Pipeline) Run(ir *lowered.LinearIR) error {
	return p.Execute(ir, ir.All()).Err
}

// RunOnRange runs all passes over the range r of the IR. All passes must be RangedPass.
func (p *Pipeline) RunOnRange(ir *lowered.LinearIR, r lowered.Range) error {
	return p.Execute(ir, r).Err
}

// Execute runs all passes over the range r of the IR, and returns the record of the execution.
//
// If r is not the whole IR, all passes must be RangedPass.
// Passes that insert or remove expressions in r grow or shrink it: the following passes are given the
// adjusted range.
func (p *Pipeline) Execute(ir *lowered.LinearIR, r lowered.Range) *Execution {
	exec := &Execution{ID: uuid.NewString(), PassIndex: -1}
	exec.transition(StatePending, -1)
	fail := func(passIndex int, err error) *Execution {
		name := InputPassName
		if passIndex >= 0 {
			name = p.passes[passIndex].Name()
		}
		exec.Err = &Failure{
			PassIndex: passIndex,
			PassName:  name,
			Expr:      lowered.ExprOf(err),
			Kind:      lowered.KindOf(err),
			Err:       err,
		}
		exec.transition(StateFailed, passIndex)
		klog.V(1).Infof("kernel %q: %v", ir.Name(), exec.Err)
		return exec
	}

	if err := ir.CheckRange(r); err != nil {
		return fail(-1, err)
	}
	whole := r == ir.All()
	if !whole {
		for i, pass := range p.passes {
			if !IsRanged(pass) {
				return fail(-1, lowered.Errorf(lowered.PassFailure, lowered.NoExpr,
					"pass #%d %q can only run over the whole kernel, but was given the range %s", i, pass.Name(), r))
			}
		}
	}
	if err := ir.Acquire("pass pipeline " + exec.ID); err != nil {
		return fail(-1, err)
	}
	defer ir.Release()

	if p.config.Verify {
		if err := verify(ir, r, whole); err != nil {
			return fail(-1, errors.WithMessage(err, "input kernel failed verification"))
		}
	}
	// Positions after the range are not touched by the passes.
	tail := ir.Len() - r.End
	for i, pass := range p.passes {
		exec.transition(StateRunning, i)
		start := time.Now()
		if err := runPass(pass, ir, r); err != nil {
			return fail(i, err)
		}
		if whole {
			r = ir.All()
		} else {
			r.End = ir.Len() - tail
			if r.End < r.Begin {
				return fail(i, lowered.Errorf(lowered.PassFailure, lowered.NoExpr,
					"pass %q removed expressions outside of its range", pass.Name()))
			}
		}
		klog.V(1).Infof("kernel %q: pass %q took %s", ir.Name(), pass.Name(), time.Since(start))
		if p.config.Verify {
			if err := verify(ir, r, whole); err != nil {
				return fail(i, errors.WithMessagef(err, "kernel failed verification after pass %q", pass.Name()))
			}
		}
		if p.config.DumpIR && klog.V(2).Enabled() {
			klog.Infof("kernel %q after pass %q:\n%s", ir.Name(), pass.Name(), ir)
		}
	}
	exec.transition(StateSucceeded, len(p.passes)-1)
	return exec
}

func verify(ir *lowered.LinearIR, r lowered.Range, whole bool) error {
	if whole {
		return ir.Verify()
	}
	return ir.VerifyRange(r)
}

// runPass runs the pass, converting any panic to an error.
func runPass(pass Pass, ir *lowered.LinearIR, r lowered.Range) (err error) {
	exception := exceptions.Try(func() {
		err = pass.Run(ir, r)
	})
	if exception != nil {
		if e, ok := exception.(error); ok {
			return errors.WithMessage(e, "panic")
		}
		return errors.Errorf("panic: %v", exception)
	}
	return
}
