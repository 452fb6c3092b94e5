// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"fmt"
	"slices"

	"github.com/gogpu/rtss/script"
)

// Translator turns the script properties of one pass into sub render states
// collected on a TargetRenderState. Malformed properties are recorded as
// diagnostics and skipped.
type Translator struct {
	ctx    *Context
	target *TargetRenderState
	pass   Pass
	diags  []Diagnostic
}

// NewTranslator returns a translator adding states for pass to target.
func NewTranslator(ctx *Context, target *TargetRenderState, pass Pass) *Translator {
	if ctx == nil {
		ctx = NewContext(DefaultCapabilities())
	}
	return &Translator{ctx: ctx, target: target, pass: pass}
}

// Context returns the generation context.
func (tr *Translator) Context() *Context { return tr.ctx }

// Pass returns the pass being translated.
func (tr *Translator) Pass() Pass { return tr.pass }

// Target returns the render state receiving the created states.
func (tr *Translator) Target() *TargetRenderState { return tr.target }

// Reportf records a diagnostic against prop.
func (tr *Translator) Reportf(prop *script.Property, format string, args ...any) {
	tr.diags = append(tr.diags, Diagnostic{
		Line:     prop.Line,
		Property: prop.Name,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Diagnostics returns the properties rejected so far.
func (tr *Translator) Diagnostics() []Diagnostic {
	return slices.Clone(tr.diags)
}

// Translate offers every property to the registered factories and returns
// the number of properties that produced a state.
func (tr *Translator) Translate(props []*script.Property) int {
	accepted := 0
	for _, prop := range props {
		if tr.translate(prop) {
			accepted++
		}
	}
	return accepted
}

func (tr *Translator) translate(prop *script.Property) bool {
	for _, f := range tr.target.registry.Factories() {
		before := len(tr.diags)
		s := f.CreateInstance(prop, tr.pass, tr)
		if s == nil {
			if len(tr.diags) > before {
				return false
			}
			continue
		}
		if !slices.Contains(tr.target.states, s) {
			if err := tr.target.Add(s); err != nil {
				tr.Reportf(prop, "%v", err)
				return false
			}
		}
		return true
	}
	tr.Reportf(prop, "no factory accepts %q", prop.String())
	return false
}
