// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import "slices"

// passEdit is one change a sub render state asked to make to the pass.
type passEdit struct {
	owner SubRenderState
	unit  *TextureUnit
	apply func(Pass)
}

// stagedPass is the Pass handed to PreAddToRenderState during generation.
// Reads see the base pass plus the staged texture units; writes are kept
// per state and reach the base pass only through commit.
type stagedPass struct {
	Pass
	current SubRenderState
	edits   []passEdit
}

func newStagedPass(base Pass) *stagedPass {
	return &stagedPass{Pass: base}
}

func (p *stagedPass) TextureUnits() []TextureUnit {
	units := slices.Clone(p.Pass.TextureUnits())
	for _, e := range p.edits {
		if e.unit != nil {
			units = append(units, *e.unit)
		}
	}
	return units
}

func (p *stagedPass) AddTextureUnit(u TextureUnit) int {
	index := len(p.TextureUnits())
	p.edits = append(p.edits, passEdit{
		owner: p.current,
		unit:  &u,
		apply: func(base Pass) { base.AddTextureUnit(u) },
	})
	return index
}

func (p *stagedPass) SetShadowCasterMaterial(name string) {
	p.edits = append(p.edits, passEdit{
		owner: p.current,
		apply: func(base Pass) { base.SetShadowCasterMaterial(name) },
	})
}

func (p *stagedPass) SetShadowReceiverMaterial(name string) {
	p.edits = append(p.edits, passEdit{
		owner: p.current,
		apply: func(base Pass) { base.SetShadowReceiverMaterial(name) },
	})
}

// discard forgets the edits of s and reports whether it had any.
func (p *stagedPass) discard(s SubRenderState) bool {
	n := len(p.edits)
	p.edits = slices.DeleteFunc(p.edits, func(e passEdit) bool { return e.owner == s })
	return len(p.edits) != n
}

// commit applies the staged edits to the base pass in the order they were
// made.
func (p *stagedPass) commit() {
	for _, e := range p.edits {
		e.apply(p.Pass)
	}
	p.edits = nil
}
