// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import (
	"strconv"

	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeIntegratedPSSM3 is the type of the IntegratedPSSM3 state.
const TypeIntegratedPSSM3 = "SGX_IntegratedPSSM3"

// ShadowSplits is the number of shadow map splits.
const ShadowSplits = 3

// shadowSplit holds the parameters of one split.
type shadowSplit struct {
	unit int

	matrix     *ir.Parameter // vertex: texture world-view-projection
	vsLightPos *ir.Parameter
	fsLightPos *ir.Parameter
	sampler    *ir.Parameter
	coord      *ir.Parameter // projected light space position
	depth      *ir.Parameter // shadow map sample
	factor     *ir.Parameter
}

// IntegratedPSSM3 darkens the fragment colour with a shadow factor taken
// from one of three parallel-split shadow maps, chosen by the view depth
// of the fragment.
type IntegratedPSSM3 struct {
	splitPoints [ShadowSplits + 1]float64
	splits      [ShadowSplits]shadowSplit

	wvp, position, clipPos *ir.Parameter
	vsDepth, fsDepth       *ir.Parameter
	splitUniform           *ir.Parameter
	shadowFactor, out      *ir.Parameter
}

// NewIntegratedPSSM3 returns a shadow stage with zero split points.
func NewIntegratedPSSM3() *IntegratedPSSM3 { return &IntegratedPSSM3{} }

func (s *IntegratedPSSM3) Type() string        { return TypeIntegratedPSSM3 }
func (s *IntegratedPSSM3) ExecutionOrder() int { return srs.OrderTexturing + 1 }

// SetSplitPoints sets the view depths bounding the splits. The points must
// be strictly ascending.
func (s *IntegratedPSSM3) SetSplitPoints(points [ShadowSplits + 1]float64) error {
	if err := checkSplitPoints(points); err != nil {
		return err
	}
	s.splitPoints = points
	return nil
}

func checkSplitPoints(points [ShadowSplits + 1]float64) error {
	for i := 1; i < len(points); i++ {
		if points[i] <= points[i-1] {
			return srs.Errorf(TypeIntegratedPSSM3, "split points are not ascending at %d", i)
		}
	}
	return nil
}

// SplitPoints returns the split points.
func (s *IntegratedPSSM3) SplitPoints() [ShadowSplits + 1]float64 { return s.splitPoints }

// PreAddToRenderState registers the shadow textures on the pass, reusing
// the ones added by an earlier generation.
func (s *IntegratedPSSM3) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	if !pass.LightingEnabled() {
		return srs.Errorf(TypeIntegratedPSSM3, "lighting is disabled on pass %q", pass.Name())
	}
	var units []int
	for i, u := range pass.TextureUnits() {
		if u.Kind == srs.TextureShadow {
			units = append(units, i)
		}
	}
	for i := len(units); i < ShadowSplits; i++ {
		units = append(units, pass.AddTextureUnit(srs.TextureUnit{
			Name: "pssm_shadow" + strconv.Itoa(i),
			Kind: srs.TextureShadow,
		}))
	}
	for i := range s.splits {
		if units[i] >= ir.MaxIndexedContents {
			return srs.Errorf(TypeIntegratedPSSM3, "shadow texture unit %d exceeds the %d supported units", units[i], ir.MaxIndexedContents)
		}
		s.splits[i].unit = units[i]
	}
	pass.SetShadowReceiverMaterial("rtss/pssm3_receiver")
	return nil
}

func (s *IntegratedPSSM3) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	s.wvp = vs.Auto(ir.AutoWorldViewProjMatrix, 0)
	s.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	s.clipPos = vs.Local(ir.ContentPositionProjectiveSpace, ir.TypeFloat4)
	s.vsDepth = vs.Output(ir.SemanticTexCoord, -1, ir.ContentDepthViewSpace, ir.TypeFloat1)
	for i := range s.splits {
		sp := &s.splits[i]
		sp.matrix = vs.Auto(ir.AutoTextureWorldViewProjMatrix, i)
		sp.vsLightPos = vs.Output(ir.SemanticTexCoord, -1, ir.PositionLightSpaceContent(i), ir.TypeFloat4)
	}
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	s.fsDepth = fs.Input(ir.SemanticTexCoord, -1, ir.ContentDepthViewSpace, ir.TypeFloat1)
	p := s.splitPoints
	s.splitUniform = fs.Uniform("pssmSplitPoints", ir.TypeFloat4, p[1], p[2], p[3], 0)
	s.shadowFactor = fs.NamedLocal("shadowFactor", ir.TypeFloat1)
	s.out = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	for i := range s.splits {
		sp := &s.splits[i]
		n := strconv.Itoa(i)
		sp.fsLightPos = fs.Input(ir.SemanticTexCoord, -1, ir.PositionLightSpaceContent(i), ir.TypeFloat4)
		sp.sampler = fs.Sampler(ir.TypeSampler2D, sp.unit)
		sp.coord = fs.NamedLocal("shadowCoord"+n, ir.TypeFloat3)
		sp.depth = fs.NamedLocal("shadowDepth"+n, ir.TypeFloat4)
		sp.factor = fs.NamedLocal("shadowFactor"+n, ir.TypeFloat1)
	}
	return fs.Err()
}

func (s *IntegratedPSSM3) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	set.Fragment.AddDependency(shaderlib.IntegratedPSSM)
	return nil
}

func (s *IntegratedPSSM3) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	order := s.ExecutionOrder()

	vf := ir.NewFunction(TypeIntegratedPSSM3, order)
	vf.AddInvocation(ir.OpTransform, ir.NewIn(s.wvp), ir.NewIn(s.position), ir.NewOut(s.clipPos))
	vf.AddInvocation(ir.OpAssign, ir.NewIn(s.clipPos).WithMask(ir.MaskZ), ir.NewOut(s.vsDepth))
	for _, sp := range s.splits {
		vf.AddInvocation(ir.OpTransform, ir.NewIn(sp.matrix), ir.NewIn(s.position), ir.NewOut(sp.vsLightPos))
	}
	set.Vertex.AddFunction(vf)

	ff := ir.NewFunction(TypeIntegratedPSSM3, order)
	for _, sp := range s.splits {
		ff.AddInvocation(ir.OpDivide,
			ir.NewIn(sp.fsLightPos).WithMask(ir.MaskXYZ),
			ir.NewIn(sp.fsLightPos).WithMask(ir.MaskW),
			ir.NewOut(sp.coord))
		ff.AddInvocation(ir.OpSampleTexture, ir.NewIn(sp.sampler), ir.NewIn(sp.coord).WithMask(ir.MaskXY), ir.NewOut(sp.depth))
		ff.AddInvocation(shaderlib.FuncShadowCompare,
			ir.NewIn(sp.depth).WithMask(ir.MaskX), ir.NewIn(sp.coord), ir.NewOut(sp.factor))
	}
	ff.AddInvocation(shaderlib.FuncComputeShadowPSSM3,
		ir.NewIn(s.fsDepth), ir.NewIn(s.splitUniform),
		ir.NewIn(s.splits[0].factor), ir.NewIn(s.splits[1].factor), ir.NewIn(s.splits[2].factor),
		ir.NewOut(s.shadowFactor))
	ff.AddInvocation(ir.OpModulate,
		ir.NewIn(s.out).WithMask(ir.MaskXYZ), ir.NewIn(s.shadowFactor),
		ir.NewOut(s.out).WithMask(ir.MaskXYZ))
	set.Fragment.AddFunction(ff)
	return nil
}

// IntegratedPSSM3Factory handles "integrated_pssm4 <s0> <s1> <s2> <s3>".
type IntegratedPSSM3Factory struct{}

func (IntegratedPSSM3Factory) Type() string            { return TypeIntegratedPSSM3 }
func (IntegratedPSSM3Factory) New() srs.SubRenderState { return NewIntegratedPSSM3() }

func (f IntegratedPSSM3Factory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "integrated_pssm4" {
		return nil
	}
	var points [ShadowSplits + 1]float64
	if len(prop.Values) != len(points) {
		tr.Reportf(prop, "expected %d split points, got %d", len(points), len(prop.Values))
		return nil
	}
	for i := range points {
		v, ok := prop.Value(i).Real()
		if !ok {
			tr.Reportf(prop, "split point %q is not a number", prop.Value(i))
			return nil
		}
		points[i] = v
	}
	if err := checkSplitPoints(points); err != nil {
		tr.Reportf(prop, "%v", err)
		return nil
	}
	s := srs.CreateOrRetrieveInstance(tr, f).(*IntegratedPSSM3)
	s.splitPoints = points
	return s
}

func (IntegratedPSSM3Factory) WriteInstance(w *script.Writer, state srs.SubRenderState, _, _ srs.Pass) {
	s := state.(*IntegratedPSSM3)
	values := make([]string, len(s.splitPoints))
	for i, p := range s.splitPoints {
		values[i] = strconv.FormatFloat(p, 'g', -1, 64)
	}
	w.WriteProperty("integrated_pssm4", values...)
}
