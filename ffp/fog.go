// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeFog is the type of the Fog state.
const TypeFog = "FFP_Fog"

// FogCalc selects where the fog factor is evaluated.
type FogCalc uint8

const (
	FogPerVertex FogCalc = iota
	FogPerPixel
)

func (c FogCalc) String() string {
	if c == FogPerPixel {
		return "per_pixel"
	}
	return "per_vertex"
}

// Fog blends the fragment colour towards the fog colour by a factor
// derived from the clip space depth and the fog mode of the pass.
type Fog struct {
	Calc FogCalc

	mode srs.FogMode

	wvp, position, clipPos *ir.Parameter
	vsParams, fsParams     *ir.Parameter
	vsOut, fsIn            *ir.Parameter // fog factor or depth varying
	factor                 *ir.Parameter // per-pixel only
	colour, out            *ir.Parameter
}

// NewFog returns a per-vertex fog stage.
func NewFog() *Fog { return &Fog{} }

func (f *Fog) Type() string        { return TypeFog }
func (f *Fog) ExecutionOrder() int { return srs.OrderFog }

func (f *Fog) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	f.mode = pass.Fog()
	if f.mode == srs.FogNone {
		return srs.Errorf(TypeFog, "pass %q has fog disabled", pass.Name())
	}
	return nil
}

func (f *Fog) fogFunc() string {
	switch f.mode {
	case srs.FogExp:
		return shaderlib.FuncFogExp
	case srs.FogExp2:
		return shaderlib.FuncFogExp2
	default:
		return shaderlib.FuncFogLinear
	}
}

// varying returns the content of the value passed to the fragment stage.
func (f *Fog) varying() ir.Content {
	if f.Calc == FogPerPixel {
		return ir.ContentDepthViewSpace
	}
	return ContentFogFactor
}

func (f *Fog) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	f.wvp = vs.Auto(ir.AutoWorldViewProjMatrix, 0)
	f.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	f.clipPos = vs.Local(ir.ContentPositionProjectiveSpace, ir.TypeFloat4)
	if f.Calc == FogPerVertex {
		f.vsParams = vs.Auto(ir.AutoFogParams, 0)
	}
	f.vsOut = vs.Output(ir.SemanticTexCoord, -1, f.varying(), ir.TypeFloat1)
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	f.colour = fs.Auto(ir.AutoFogColour, 0)
	f.fsIn = fs.Input(ir.SemanticTexCoord, -1, f.varying(), ir.TypeFloat1)
	if f.Calc == FogPerPixel {
		f.fsParams = fs.Auto(ir.AutoFogParams, 0)
		f.factor = fs.Local(ContentFogFactor, ir.TypeFloat1)
	}
	f.out = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	return fs.Err()
}

func (f *Fog) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	if f.Calc == FogPerPixel {
		set.Fragment.AddDependency(shaderlib.Fog)
	} else {
		set.Vertex.AddDependency(shaderlib.Fog)
	}
	return nil
}

func (f *Fog) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	depth := ir.NewIn(f.clipPos).WithMask(ir.MaskZ)

	vf := ir.NewFunction(TypeFog, srs.OrderFog)
	vf.AddInvocation(ir.OpTransform, ir.NewIn(f.wvp), ir.NewIn(f.position), ir.NewOut(f.clipPos))
	factor := f.fsIn
	if f.Calc == FogPerPixel {
		vf.AddInvocation(ir.OpAssign, depth, ir.NewOut(f.vsOut))
	} else {
		vf.AddInvocation(f.fogFunc(), depth, ir.NewIn(f.vsParams), ir.NewOut(f.vsOut))
	}
	set.Vertex.AddFunction(vf)

	ff := ir.NewFunction(TypeFog, srs.OrderFog)
	if f.Calc == FogPerPixel {
		ff.AddInvocation(f.fogFunc(), ir.NewIn(f.fsIn), ir.NewIn(f.fsParams), ir.NewOut(f.factor))
		factor = f.factor
	}
	ff.AddInvocation(ir.OpLerp, xyz(f.colour), xyz(f.out), ir.NewIn(factor),
		ir.NewOut(f.out).WithMask(ir.MaskXYZ))
	set.Fragment.AddFunction(ff)
	return nil
}

// FogFactory handles "fog_stage ffp [per_vertex|per_pixel]".
type FogFactory struct{}

func (FogFactory) Type() string            { return TypeFog }
func (FogFactory) New() srs.SubRenderState { return NewFog() }

func (f FogFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "fog_stage" {
		return nil
	}
	if len(prop.Values) == 0 || len(prop.Values) > 2 {
		tr.Reportf(prop, "expected 1 or 2 values, got %d", len(prop.Values))
		return nil
	}
	if prop.Value(0).String() != valueFFP {
		return nil
	}
	calc := FogPerVertex
	if len(prop.Values) == 2 {
		switch v := prop.Value(1).String(); v {
		case "per_vertex":
		case "per_pixel":
			calc = FogPerPixel
		default:
			tr.Reportf(prop, "unknown fog calculation mode %q", v)
			return nil
		}
	}
	s := srs.CreateOrRetrieveInstance(tr, f).(*Fog)
	s.Calc = calc
	return s
}

func (FogFactory) WriteInstance(w *script.Writer, state srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("fog_stage", valueFFP, state.(*Fog).Calc.String())
}
