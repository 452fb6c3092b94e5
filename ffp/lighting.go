// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeLighting is the type of the Lighting state.
const TypeLighting = "FFP_Lighting"

// LightParams are the view space uniforms of one light.
type LightParams struct {
	Type srs.LightType

	Position, Direction *ir.Parameter
	Attenuation, Spot   *ir.Parameter
	Diffuse, Specular   *ir.Parameter
}

// ResolveLight declares the uniforms of light i in r. Specular colours are
// only declared when specular is set.
func ResolveLight(r *srs.Resolver, typ srs.LightType, i int, specular bool) LightParams {
	lp := LightParams{Type: typ}
	if typ != srs.LightDirectional {
		lp.Position = r.Auto(ir.AutoLightPositionViewSpace, i)
		lp.Attenuation = r.Auto(ir.AutoLightAttenuation, i)
	}
	if typ != srs.LightPoint {
		lp.Direction = r.Auto(ir.AutoLightDirectionViewSpace, i)
	}
	if typ == srs.LightSpot {
		lp.Spot = r.Auto(ir.AutoSpotlightParams, i)
	}
	lp.Diffuse = r.Auto(ir.AutoDerivedLightDiffuseColour, i)
	if specular {
		lp.Specular = r.Auto(ir.AutoDerivedLightSpecularColour, i)
	}
	return lp
}

func xyz(p *ir.Parameter) ir.Operand { return ir.NewIn(p).WithMask(ir.MaskXYZ) }

// AddLight appends the diffuse and specular terms of lp to f. The
// accumulators are updated in place through their xyz components; the
// specular term is skipped when lp has no specular colour.
func AddLight(f *ir.Function, lp LightParams, viewPos, normal, diffuse ir.Operand,
	shininess, diffuseAcc, specularAcc *ir.Parameter,
) {
	dAcc := ir.NewInOut(diffuseAcc).WithMask(ir.MaskXYZ)
	switch lp.Type {
	case srs.LightDirectional:
		f.AddInvocation(shaderlib.FuncLightDirectionalDiffuse, normal, xyz(lp.Direction), diffuse, dAcc)
	case srs.LightPoint:
		f.AddInvocation(shaderlib.FuncLightPointDiffuse, viewPos, normal, xyz(lp.Position),
			ir.NewIn(lp.Attenuation), diffuse, dAcc)
	case srs.LightSpot:
		f.AddInvocation(shaderlib.FuncLightSpotDiffuse, viewPos, normal, xyz(lp.Position), xyz(lp.Direction),
			ir.NewIn(lp.Attenuation), xyz(lp.Spot), diffuse, dAcc)
	}
	if lp.Specular == nil {
		return
	}

	sAcc := ir.NewInOut(specularAcc).WithMask(ir.MaskXYZ)
	shine := ir.NewIn(shininess)
	switch lp.Type {
	case srs.LightDirectional:
		f.AddInvocation(shaderlib.FuncLightDirectionalSpecular, viewPos, normal, xyz(lp.Direction),
			xyz(lp.Specular), shine, sAcc)
	case srs.LightPoint:
		f.AddInvocation(shaderlib.FuncLightPointSpecular, viewPos, normal, xyz(lp.Position),
			ir.NewIn(lp.Attenuation), xyz(lp.Specular), shine, sAcc)
	case srs.LightSpot:
		f.AddInvocation(shaderlib.FuncLightSpotSpecular, viewPos, normal, xyz(lp.Position), xyz(lp.Direction),
			ir.NewIn(lp.Attenuation), xyz(lp.Spot), xyz(lp.Specular), shine, sAcc)
	}
}

// Lighting computes Gouraud lighting in the vertex program: the scene
// colour plus the diffuse and specular terms of every light of the pass.
type Lighting struct {
	lights   []srs.LightType
	specular bool
	tracking srs.TrackVertexColour

	worldView, normalMatrix *ir.Parameter
	position, normal        *ir.Parameter
	viewPos, viewNormal     *ir.Parameter
	vertexColour, tracked   *ir.Parameter
	scene, shininess        *ir.Parameter
	diffuse, specularOut    *ir.Parameter
	params                  []LightParams
}

// NewLighting returns a per-vertex lighting stage.
func NewLighting() *Lighting { return &Lighting{} }

func (l *Lighting) Type() string        { return TypeLighting }
func (l *Lighting) ExecutionOrder() int { return srs.OrderLighting }

func (l *Lighting) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	if !pass.LightingEnabled() {
		return srs.Errorf(TypeLighting, "lighting is disabled on pass %q", pass.Name())
	}
	l.lights = pass.Lights()
	l.specular = pass.SpecularEnabled()
	l.tracking = pass.VertexColourTracking()
	return nil
}

func (l *Lighting) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	l.worldView = vs.Auto(ir.AutoWorldViewMatrix, 0)
	l.normalMatrix = vs.Auto(ir.AutoInverseTransposeWorldViewMatrix, 0)
	l.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	l.normal = vs.Input(ir.SemanticNormal, 0, ir.ContentNormalObjectSpace, ir.TypeFloat3)
	l.viewPos = vs.Local(ir.ContentPositionViewSpace, ir.TypeFloat4)
	l.viewNormal = vs.Local(ir.ContentNormalViewSpace, ir.TypeFloat3)
	l.scene = vs.Auto(ir.AutoDerivedSceneColour, 0)
	l.diffuse = vs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)

	l.vertexColour, l.tracked = nil, nil
	if l.tracking&srs.TrackDiffuse != 0 {
		l.vertexColour = vs.Input(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
		l.tracked = vs.NamedLocal("lightDiffuse", ir.TypeFloat3)
	}
	l.shininess, l.specularOut = nil, nil
	if l.specular {
		l.shininess = vs.Auto(ir.AutoSurfaceShininess, 0)
		l.specularOut = vs.Output(ir.SemanticColor, 1, ir.ContentColorSpecular, ir.TypeFloat4)
	}

	l.params = l.params[:0]
	for i, typ := range l.lights {
		l.params = append(l.params, ResolveLight(vs, typ, i, l.specular))
	}
	return vs.Err()
}

func (l *Lighting) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	set.Vertex.AddDependency(shaderlib.Common)
	set.Vertex.AddDependency(shaderlib.Lighting)
	return nil
}

func (l *Lighting) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	f := ir.NewFunction(TypeLighting, srs.OrderLighting)
	f.AddInvocation(ir.OpTransform, ir.NewIn(l.normalMatrix), ir.NewIn(l.normal), ir.NewOut(l.viewNormal))
	f.AddInvocation(ir.OpNormalize, ir.NewIn(l.viewNormal), ir.NewOut(l.viewNormal))
	f.AddInvocation(ir.OpTransform, ir.NewIn(l.worldView), ir.NewIn(l.position), ir.NewOut(l.viewPos))
	f.AddInvocation(ir.OpAssign, ir.NewIn(l.scene), ir.NewOut(l.diffuse))
	if l.specular {
		f.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(0, 0, 0, 0)), ir.NewOut(l.specularOut))
	}

	viewPos, normal := xyz(l.viewPos), ir.NewIn(l.viewNormal)
	for _, lp := range l.params {
		diffuse := xyz(lp.Diffuse)
		if l.tracked != nil {
			f.AddInvocation(ir.OpModulate, diffuse, xyz(l.vertexColour), ir.NewOut(l.tracked))
			diffuse = ir.NewIn(l.tracked)
		}
		AddLight(f, lp, viewPos, normal, diffuse, l.shininess, l.diffuse, l.specularOut)
	}
	set.Vertex.AddFunction(f)
	return nil
}

// LightingFactory handles "lighting_stage ffp".
type LightingFactory struct{}

func (LightingFactory) Type() string            { return TypeLighting }
func (LightingFactory) New() srs.SubRenderState { return NewLighting() }

func (f LightingFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	return simpleStage(f, "lighting_stage", prop, tr)
}

func (LightingFactory) WriteInstance(w *script.Writer, _ srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("lighting_stage", valueFFP)
}
