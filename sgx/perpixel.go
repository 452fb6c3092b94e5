// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import (
	"github.com/gogpu/rtss/ffp"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypePerPixelLighting is the type of the PerPixelLighting state.
const TypePerPixelLighting = "SGX_PerPixelLighting"

// PerPixelLighting evaluates the lights of the pass in the fragment
// program from the interpolated view space position and normal.
type PerPixelLighting struct {
	lights   []srs.LightType
	specular bool

	worldView, normalMatrix *ir.Parameter
	vsPosition, vsNormal    *ir.Parameter
	vsViewPos               *ir.Parameter
	vsOutPos, vsOutNormal   *ir.Parameter

	fsViewPos, fsNormal     *ir.Parameter
	normal                  *ir.Parameter
	scene, shininess        *ir.Parameter
	diffuseSum, specularSum *ir.Parameter
	out                     *ir.Parameter
	params                  []ffp.LightParams
}

// NewPerPixelLighting returns a per-pixel lighting stage.
func NewPerPixelLighting() *PerPixelLighting { return &PerPixelLighting{} }

func (l *PerPixelLighting) Type() string        { return TypePerPixelLighting }
func (l *PerPixelLighting) ExecutionOrder() int { return srs.OrderLighting }

func (l *PerPixelLighting) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	if !pass.LightingEnabled() {
		return srs.Errorf(TypePerPixelLighting, "lighting is disabled on pass %q", pass.Name())
	}
	l.lights = pass.Lights()
	l.specular = pass.SpecularEnabled()
	return nil
}

func (l *PerPixelLighting) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	l.worldView = vs.Auto(ir.AutoWorldViewMatrix, 0)
	l.normalMatrix = vs.Auto(ir.AutoInverseTransposeWorldViewMatrix, 0)
	l.vsPosition = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	l.vsNormal = vs.Input(ir.SemanticNormal, 0, ir.ContentNormalObjectSpace, ir.TypeFloat3)
	l.vsViewPos = vs.Local(ir.ContentPositionViewSpace, ir.TypeFloat4)
	l.vsOutPos = vs.Output(ir.SemanticTexCoord, -1, ir.ContentPositionViewSpace, ir.TypeFloat3)
	l.vsOutNormal = vs.Output(ir.SemanticTexCoord, -1, ir.ContentNormalViewSpace, ir.TypeFloat3)
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	l.fsViewPos = fs.Input(ir.SemanticTexCoord, -1, ir.ContentPositionViewSpace, ir.TypeFloat3)
	l.fsNormal = fs.Input(ir.SemanticTexCoord, -1, ir.ContentNormalViewSpace, ir.TypeFloat3)
	l.normal = fs.Local(ir.ContentNormalViewSpace, ir.TypeFloat3)
	l.scene = fs.Auto(ir.AutoDerivedSceneColour, 0)
	l.diffuseSum = fs.NamedLocal("lightDiffuse", ir.TypeFloat4)
	l.out = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	l.shininess, l.specularSum = nil, nil
	if l.specular {
		l.shininess = fs.Auto(ir.AutoSurfaceShininess, 0)
		l.specularSum = fs.NamedLocal("lightSpecular", ir.TypeFloat4)
	}
	l.params = l.params[:0]
	for i, typ := range l.lights {
		l.params = append(l.params, ffp.ResolveLight(fs, typ, i, l.specular))
	}
	return fs.Err()
}

func (l *PerPixelLighting) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	set.Fragment.AddDependency(shaderlib.Common)
	set.Fragment.AddDependency(shaderlib.Lighting)
	return nil
}

func (l *PerPixelLighting) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	vf := ir.NewFunction(TypePerPixelLighting, srs.OrderLighting)
	vf.AddInvocation(ir.OpTransform, ir.NewIn(l.worldView), ir.NewIn(l.vsPosition), ir.NewOut(l.vsViewPos))
	vf.AddInvocation(ir.OpAssign, ir.NewIn(l.vsViewPos).WithMask(ir.MaskXYZ), ir.NewOut(l.vsOutPos))
	vf.AddInvocation(ir.OpTransform, ir.NewIn(l.normalMatrix), ir.NewIn(l.vsNormal), ir.NewOut(l.vsOutNormal))
	set.Vertex.AddFunction(vf)

	ff := ir.NewFunction(TypePerPixelLighting, srs.OrderLighting)
	ff.AddInvocation(ir.OpNormalize, ir.NewIn(l.fsNormal), ir.NewOut(l.normal))
	ff.AddInvocation(ir.OpAssign, ir.NewIn(l.scene), ir.NewOut(l.diffuseSum))
	if l.specular {
		ff.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(0, 0, 0, 0)), ir.NewOut(l.specularSum))
	}
	viewPos, normal := ir.NewIn(l.fsViewPos), ir.NewIn(l.normal)
	for _, lp := range l.params {
		ffp.AddLight(ff, lp, viewPos, normal, ir.NewIn(lp.Diffuse).WithMask(ir.MaskXYZ), l.shininess, l.diffuseSum, l.specularSum)
	}
	applyLighting(ff, l.out, l.diffuseSum, l.specularSum)
	set.Fragment.AddFunction(ff)
	return nil
}

// applyLighting modulates the rgb of out by the diffuse sum and adds the
// specular sum when present.
func applyLighting(f *ir.Function, out, diffuse, specular *ir.Parameter) {
	rgb := ir.NewIn(out).WithMask(ir.MaskXYZ)
	dst := ir.NewOut(out).WithMask(ir.MaskXYZ)
	f.AddInvocation(ir.OpModulate, rgb, ir.NewIn(diffuse).WithMask(ir.MaskXYZ), dst)
	if specular != nil {
		f.AddInvocation(ir.OpAdd, rgb, ir.NewIn(specular).WithMask(ir.MaskXYZ), dst)
	}
}

// PerPixelLightingFactory handles "lighting_stage per_pixel".
type PerPixelLightingFactory struct{}

func (PerPixelLightingFactory) Type() string            { return TypePerPixelLighting }
func (PerPixelLightingFactory) New() srs.SubRenderState { return NewPerPixelLighting() }

func (f PerPixelLightingFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "lighting_stage" || prop.Value(0).String() != "per_pixel" {
		return nil
	}
	if len(prop.Values) != 1 {
		tr.Reportf(prop, "expected exactly one value, got %d", len(prop.Values))
		return nil
	}
	return srs.CreateOrRetrieveInstance(tr, f)
}

func (PerPixelLightingFactory) WriteInstance(w *script.Writer, _ srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("lighting_stage", "per_pixel")
}
