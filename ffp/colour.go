// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/srs"
)

// TypeColour is the type of the Colour state.
const TypeColour = "FFP_Colour"

// Colour carries the vertex colours to the fragment program. The vertex
// program starts the diffuse colour at white, or at the vertex colour when
// the pass tracks it; the fragment program copies it to its output and adds
// the specular colour after texturing.
type Colour struct {
	tracking srs.TrackVertexColour
	specular bool

	vsColour, vsDiffuse, vsSpecular *ir.Parameter
	fsDiffuse, fsSpecular, fsOut    *ir.Parameter
}

// NewColour returns a colour stage.
func NewColour() *Colour { return &Colour{} }

func (c *Colour) Type() string        { return TypeColour }
func (c *Colour) ExecutionOrder() int { return srs.OrderColour }

func (c *Colour) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	c.tracking = pass.VertexColourTracking()
	c.specular = pass.LightingEnabled() && pass.SpecularEnabled()
	return nil
}

func (c *Colour) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	c.vsColour = nil
	if c.tracking != srs.TrackNone {
		c.vsColour = vs.Input(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	}
	c.vsDiffuse = vs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	if c.specular {
		c.vsSpecular = vs.Output(ir.SemanticColor, 1, ir.ContentColorSpecular, ir.TypeFloat4)
	}
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	c.fsDiffuse = fs.Input(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	c.fsOut = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	if c.specular {
		c.fsSpecular = fs.Input(ir.SemanticColor, 1, ir.ContentColorSpecular, ir.TypeFloat4)
	}
	return fs.Err()
}

func (c *Colour) ResolveDependencies(*srs.Context, *ir.ProgramSet) error { return nil }

func (c *Colour) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	vf := ir.NewFunction(TypeColour, srs.OrderColour)
	if c.vsColour != nil {
		vf.AddInvocation(ir.OpAssign, ir.NewIn(c.vsColour), ir.NewOut(c.vsDiffuse))
	} else {
		vf.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(1, 1, 1, 1)), ir.NewOut(c.vsDiffuse))
	}
	if c.specular {
		vf.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(0, 0, 0, 0)), ir.NewOut(c.vsSpecular))
	}
	set.Vertex.AddFunction(vf)

	ff := ir.NewFunction(TypeColour, srs.OrderColour)
	ff.AddInvocation(ir.OpAssign, ir.NewIn(c.fsDiffuse), ir.NewOut(c.fsOut))
	set.Fragment.AddFunction(ff)

	if c.specular {
		end := ir.NewFunction(TypeColour+"_Specular", orderColourEnd)
		end.AddInvocation(ir.OpAdd,
			ir.NewIn(c.fsOut).WithMask(ir.MaskXYZ),
			ir.NewIn(c.fsSpecular).WithMask(ir.MaskXYZ),
			ir.NewOut(c.fsOut).WithMask(ir.MaskXYZ))
		set.Fragment.AddFunction(end)
	}
	return nil
}

// ColourFactory handles "colour_stage ffp". Generators usually add the
// colour stage implicitly.
type ColourFactory struct{}

func (ColourFactory) Type() string            { return TypeColour }
func (ColourFactory) New() srs.SubRenderState { return NewColour() }

func (f ColourFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	return simpleStage(f, "colour_stage", prop, tr)
}

func (ColourFactory) WriteInstance(w *script.Writer, _ srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("colour_stage", valueFFP)
}
