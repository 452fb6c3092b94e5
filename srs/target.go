// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"fmt"
	"slices"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
)

// Phase is a step of the generation pipeline.
type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseCollecting
	PhasePreAdd
	PhaseResolveParameters
	PhaseResolveDependencies
	PhaseAddFunctionInvocations
	PhaseMergeParameters
	PhaseWrite
	PhaseDone
	PhaseFailed
)

var phaseNames = [...]string{
	PhaseIdle:                   "Idle",
	PhaseCollecting:             "Collecting",
	PhasePreAdd:                 "PreAdd",
	PhaseResolveParameters:      "ResolveParameters",
	PhaseResolveDependencies:    "ResolveDependencies",
	PhaseAddFunctionInvocations: "AddFunctionInvocations",
	PhaseMergeParameters:        "MergeParameters",
	PhaseWrite:                  "Write",
	PhaseDone:                   "Done",
	PhaseFailed:                 "Failed",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint8(p))
}

// Dropped records a sub render state removed from the pass.
type Dropped struct {
	Type  string
	Phase Phase
	Err   error
}

// TargetRenderState holds the sub render states of one pass and generates
// its programs. It is not safe for concurrent use.
type TargetRenderState struct {
	registry *Registry
	states   []SubRenderState
	phase    Phase
	set      *ir.ProgramSet
	dropped  []Dropped
}

// NewTargetRenderState returns an idle render state whose single-instance
// rules come from reg.
func NewTargetRenderState(reg *Registry) *TargetRenderState {
	return &TargetRenderState{registry: reg}
}

// Phase returns the current pipeline phase.
func (t *TargetRenderState) Phase() Phase { return t.phase }

// States returns the collected states in insertion order, or in execution
// order once generation has started.
func (t *TargetRenderState) States() []SubRenderState { return slices.Clone(t.states) }

// Dropped returns the states removed during the last generation.
func (t *TargetRenderState) Dropped() []Dropped { return slices.Clone(t.dropped) }

// ProgramSet returns the programs of the last generation, or nil.
func (t *TargetRenderState) ProgramSet() *ir.ProgramSet { return t.set }

// Find returns the collected state of typ, or nil.
func (t *TargetRenderState) Find(typ string) SubRenderState {
	for _, s := range t.states {
		if s.Type() == typ {
			return s
		}
	}
	return nil
}

// Add collects s. A second state of a single-instance type is rejected.
func (t *TargetRenderState) Add(s SubRenderState) error {
	if t.phase != PhaseIdle && t.phase != PhaseCollecting {
		return NewError(ErrInvalidPhase, s.Type(), "cannot add a state during "+t.phase.String())
	}
	if t.Find(s.Type()) != nil && !t.registry.AllowsMultiple(s.Type()) {
		return NewError(ErrDuplicateState, s.Type(), "pass already has one")
	}
	t.states = append(t.states, s)
	t.phase = PhaseCollecting
	return nil
}

// Invalidate discards the states and programs, returning to Idle. Call it
// when the owning material changes.
func (t *TargetRenderState) Invalidate() {
	t.states = nil
	t.set = nil
	t.dropped = nil
	t.transition(nil, PhaseIdle)
}

func (t *TargetRenderState) transition(ctx *Context, to Phase) {
	ctx.Log().Debug("srs: pipeline phase", "from", t.phase, "to", to, "states", len(t.states))
	t.phase = to
}

func (t *TargetRenderState) drop(ctx *Context, s SubRenderState, err error) {
	ctx.Log().Warn("srs: sub render state dropped", "type", s.Type(), "phase", t.phase, "err", err)
	t.dropped = append(t.dropped, Dropped{Type: s.Type(), Phase: t.phase, Err: err})
	t.states = slices.DeleteFunc(t.states, func(x SubRenderState) bool { return x == s })
}

// Generate runs the pipeline for pass and writes the programs with w.
// Failing states are dropped; a failure of the merge, validation or write
// step fails the whole pass. Texture units and shadow materials the states
// register on pass are applied only once the programs are written, and
// only for the states that were kept.
func (t *TargetRenderState) Generate(ctx *Context, pass Pass, w backend.ProgramWriter) (backend.Result, error) {
	if t.phase != PhaseIdle && t.phase != PhaseCollecting {
		return backend.Result{}, NewError(ErrInvalidPhase, "", "cannot generate during "+t.phase.String())
	}
	if ctx == nil {
		ctx = NewContext(DefaultCapabilities())
	}
	t.dropped = nil

	// Dropping a state that edited the pass shifts the texture units of
	// the states after it, so the pipeline restarts from PreAdd.
	var staged *stagedPass
	for {
		staged = t.preAdd(ctx, pass)
		again, fromPreAdd := true, false
		for again && !fromPreAdd {
			again, fromPreAdd = t.resolve(ctx, staged)
		}
		if !fromPreAdd {
			break
		}
	}

	t.transition(ctx, PhaseMergeParameters)
	err := t.set.MergeParameters(ir.MergeOptions{Pack: ctx.PackVaryings, MaxRegisters: ctx.Caps.MaxTexCoordSlots})
	if err != nil {
		return t.fail(ctx, err)
	}
	problems, err := ir.Validate(t.set)
	if err != nil {
		return t.fail(ctx, err)
	}
	if len(problems) > 0 {
		return t.fail(ctx, &ValidationError{Problems: problems})
	}

	t.transition(ctx, PhaseWrite)
	res, err := w.Write(t.set)
	if err != nil {
		return t.fail(ctx, err)
	}
	staged.commit()
	t.transition(ctx, PhaseDone)
	return res, nil
}

// preAdd runs PreAddToRenderState on every state against a fresh staged
// pass and sorts the survivors by execution order.
func (t *TargetRenderState) preAdd(ctx *Context, pass Pass) *stagedPass {
	staged := newStagedPass(pass)
	t.transition(ctx, PhasePreAdd)
	for _, s := range slices.Clone(t.states) {
		staged.current = s
		if err := s.PreAddToRenderState(ctx, staged); err != nil {
			staged.discard(s)
			t.drop(ctx, s, err)
		}
	}
	staged.current = nil
	slices.SortStableFunc(t.states, func(a, b SubRenderState) int {
		return a.ExecutionOrder() - b.ExecutionOrder()
	})
	return staged
}

// resolve runs the program building stages on a fresh program set. again
// reports that a state was dropped after parameter resolution; fromPreAdd
// that the dropped state had edited the pass.
func (t *TargetRenderState) resolve(ctx *Context, staged *stagedPass) (again, fromPreAdd bool) {
	t.set = ir.NewProgramSet()
	stages := []struct {
		phase Phase
		run   func(SubRenderState) error
	}{
		{PhaseResolveParameters, func(s SubRenderState) error { return s.ResolveParameters(ctx, t.set) }},
		{PhaseResolveDependencies, func(s SubRenderState) error { return s.ResolveDependencies(ctx, t.set) }},
		{PhaseAddFunctionInvocations, func(s SubRenderState) error { return s.AddFunctionInvocations(ctx, t.set) }},
	}
	for _, stage := range stages {
		t.transition(ctx, stage.phase)
		for _, s := range slices.Clone(t.states) {
			cp := t.set.Checkpoint()
			if err := stage.run(s); err != nil {
				t.set.Rollback(cp)
				t.drop(ctx, s, err)
				if staged.discard(s) {
					return true, true
				}
				if stage.phase != PhaseResolveParameters {
					return true, false
				}
			}
		}
	}
	return false, false
}

func (t *TargetRenderState) fail(ctx *Context, err error) (backend.Result, error) {
	ctx.Log().Debug("srs: generation failed", "phase", t.phase, "err", err)
	t.transition(ctx, PhaseFailed)
	return backend.Result{}, fmt.Errorf("srs: %w", err)
}

// ValidationError reports programs that failed IR validation.
type ValidationError struct {
	Problems []ir.ValidationError
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid program: " + e.Problems[0].Error()
	}
	return fmt.Sprintf("invalid program: %s (and %d more)", e.Problems[0].Error(), len(e.Problems)-1)
}
