// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
)

// SubRenderState is one feature contributing to the programs of a pass.
//
// The pipeline calls the methods in declaration order. A non-nil error
// drops the state from the pass; anything it added to the programs during
// the failing call is rolled back.
type SubRenderState interface {
	// Type is the tag shared with the factory that creates the state.
	Type() string

	// ExecutionOrder ranks the state's functions against other states.
	ExecutionOrder() int

	// PreAddToRenderState validates the pass and device capabilities and
	// may register texture units or shadow materials on pass.
	PreAddToRenderState(ctx *Context, pass Pass) error

	ResolveParameters(ctx *Context, set *ir.ProgramSet) error

	// ResolveDependencies declares the helper libraries the state calls.
	ResolveDependencies(ctx *Context, set *ir.ProgramSet) error

	AddFunctionInvocations(ctx *Context, set *ir.ProgramSet) error
}

// Factory creates and serializes sub render states of one type.
type Factory interface {
	Type() string

	// New returns a state with default settings.
	New() SubRenderState

	// CreateInstance builds a state from prop. It returns nil when prop is
	// not addressed to this factory, and nil plus a diagnostic recorded on
	// tr when prop is malformed.
	CreateInstance(prop *script.Property, pass Pass, tr *Translator) SubRenderState

	// WriteInstance writes the properties recreating state.
	WriteInstance(w *script.Writer, state SubRenderState, srcPass, dstPass Pass)
}

// MultiInstanceFactory is implemented by factories whose states may appear
// several times in one pass.
type MultiInstanceFactory interface {
	Factory
	AllowsMultipleInstances() bool
}

// allowsMultiple reports whether f lifts the single-instance rule.
func allowsMultiple(f Factory) bool {
	m, ok := f.(MultiInstanceFactory)
	return ok && m.AllowsMultipleInstances()
}

// CreateOrRetrieveInstance returns the state of f's type already collected
// for tr's pass, or a new one added to it.
func CreateOrRetrieveInstance(tr *Translator, f Factory) SubRenderState {
	if s := tr.target.Find(f.Type()); s != nil {
		return s
	}
	s := f.New()
	if err := tr.target.Add(s); err != nil {
		// Translating after generation started is a programmer error.
		panic(err)
	}
	return s
}
