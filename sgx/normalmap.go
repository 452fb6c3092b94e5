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

// TypeNormalMapLighting is the type of the NormalMapLighting state.
const TypeNormalMapLighting = "SGX_NormalMapLighting"

// NormalMapSpace is the space the normals of a normal map are stored in.
type NormalMapSpace uint8

const (
	TangentSpace NormalMapSpace = iota
	ObjectSpace
)

func (s NormalMapSpace) String() string {
	if s == ObjectSpace {
		return "object_space"
	}
	return "tangent_space"
}

// normalMapLight holds the parameters of one light.
type normalMapLight struct {
	typ srs.LightType

	vector  *ir.Parameter // vertex: object space direction or position
	vsOut   *ir.Parameter
	fsIn    *ir.Parameter
	att     *ir.Parameter
	diffuse *ir.Parameter
	spec    *ir.Parameter
}

// NormalMapLighting lights fragments with normals read from a normal map.
// Light vectors are computed per vertex in the space of the map and
// interpolated; spot lights are lit as point lights.
type NormalMapLighting struct {
	texture     string
	space       NormalMapSpace
	texCoordSet int

	unit     int
	lights   []srs.LightType
	specular bool

	position, normal, tangent *ir.Parameter
	tbn                       *ir.Parameter
	vsTexIn, vsTexOut         *ir.Parameter
	camera                    *ir.Parameter
	lightVector, viewVector   *ir.Parameter
	vsView                    *ir.Parameter
	params                    []normalMapLight

	fsTexIn, sampler, texel *ir.Parameter
	fsNormal, fsView        *ir.Parameter
	scene, shininess        *ir.Parameter
	diffuseSum, specularSum *ir.Parameter
	out                     *ir.Parameter
}

// NewNormalMapLighting returns a tangent space normal map stage without a
// texture.
func NewNormalMapLighting() *NormalMapLighting { return &NormalMapLighting{unit: -1} }

func (l *NormalMapLighting) Type() string        { return TypeNormalMapLighting }
func (l *NormalMapLighting) ExecutionOrder() int { return srs.OrderLighting }

// SetNormalMap selects the normal map texture, the space of its normals
// and the texture coordinate set it is addressed with.
func (l *NormalMapLighting) SetNormalMap(texture string, space NormalMapSpace, texCoordSet int) {
	l.texture, l.space, l.texCoordSet = texture, space, texCoordSet
}

// Texture returns the normal map texture name.
func (l *NormalMapLighting) Texture() string { return l.texture }

// Space returns the space of the normal map.
func (l *NormalMapLighting) Space() NormalMapSpace { return l.space }

// TexCoordSet returns the texture coordinate set of the normal map.
func (l *NormalMapLighting) TexCoordSet() int { return l.texCoordSet }

// PreAddToRenderState registers the normal map on the pass unless an
// earlier generation already did.
func (l *NormalMapLighting) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	if !pass.LightingEnabled() {
		return srs.Errorf(TypeNormalMapLighting, "lighting is disabled on pass %q", pass.Name())
	}
	if l.texture == "" {
		return srs.Errorf(TypeNormalMapLighting, "no normal map texture")
	}
	if l.texCoordSet < 0 || l.texCoordSet >= ir.MaxIndexedContents {
		return srs.Errorf(TypeNormalMapLighting, "texture coordinate set %d out of range", l.texCoordSet)
	}
	l.unit = -1
	for i, u := range pass.TextureUnits() {
		if u.Kind == srs.TextureNormalMap && u.Name == l.texture {
			l.unit = i
			break
		}
	}
	if l.unit < 0 {
		l.unit = pass.AddTextureUnit(srs.TextureUnit{
			Name:        l.texture,
			Kind:        srs.TextureNormalMap,
			TexCoordSet: l.texCoordSet,
		})
	}
	if l.unit >= ir.MaxIndexedContents {
		return srs.Errorf(TypeNormalMapLighting, "normal map unit %d exceeds the %d supported units", l.unit, ir.MaxIndexedContents)
	}
	l.lights = pass.Lights()
	if len(l.lights) > ir.MaxIndexedContents {
		l.lights = l.lights[:ir.MaxIndexedContents]
	}
	l.specular = pass.SpecularEnabled()
	return nil
}

// lightContent returns the varying content of light i in the space of the
// map.
func (l *NormalMapLighting) lightContent(i int) ir.Content {
	if l.space == ObjectSpace {
		return ir.LightDirectionObjectSpaceContent(i)
	}
	return ir.LightDirectionTangentSpaceContent(i)
}

func (l *NormalMapLighting) viewContent() ir.Content {
	if l.space == ObjectSpace {
		return ir.ContentPostOCameraObjectSpace
	}
	return ir.ContentPostOCameraTangentSpace
}

func (l *NormalMapLighting) normalContent() ir.Content {
	if l.space == ObjectSpace {
		return ir.ContentNormalObjectSpace
	}
	return ir.ContentNormalTangentSpace
}

func (l *NormalMapLighting) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	l.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	l.tbn = nil
	if l.space == TangentSpace {
		l.normal = vs.Input(ir.SemanticNormal, 0, ir.ContentNormalObjectSpace, ir.TypeFloat3)
		l.tangent = vs.Input(ir.SemanticTangent, 0, ir.ContentTangentObjectSpace, ir.TypeFloat3)
		l.tbn = vs.NamedLocal("tbn", ir.TypeMatrix3x3)
	}
	l.vsTexIn = vs.Input(ir.SemanticTexCoord, l.texCoordSet, ir.TexCoordContent(l.texCoordSet), ir.TypeFloat2)
	l.vsTexOut = vs.Output(ir.SemanticTexCoord, -1, ir.TexCoordContent(l.unit), ir.TypeFloat2)
	l.lightVector = vs.NamedLocal("lightVector", ir.TypeFloat3)
	l.camera, l.viewVector, l.vsView = nil, nil, nil
	if l.specular {
		l.camera = vs.Auto(ir.AutoCameraPositionObjectSpace, 0)
		l.viewVector = vs.NamedLocal("viewVector", ir.TypeFloat3)
		l.vsView = vs.Output(ir.SemanticTexCoord, -1, l.viewContent(), ir.TypeFloat3)
	}
	l.params = l.params[:0]
	for i, typ := range l.lights {
		lp := normalMapLight{typ: typ}
		if typ == srs.LightDirectional {
			lp.vector = vs.Auto(ir.AutoLightDirectionObjectSpace, i)
		} else {
			lp.vector = vs.Auto(ir.AutoLightPositionObjectSpace, i)
		}
		lp.vsOut = vs.Output(ir.SemanticTexCoord, -1, l.lightContent(i), ir.TypeFloat3)
		l.params = append(l.params, lp)
	}
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	l.fsTexIn = fs.Input(ir.SemanticTexCoord, -1, ir.TexCoordContent(l.unit), ir.TypeFloat2)
	l.sampler = fs.Sampler(ir.TypeSampler2D, l.unit)
	l.texel = fs.NamedLocal("normalTexel", ir.TypeFloat4)
	l.fsNormal = fs.Local(l.normalContent(), ir.TypeFloat3)
	l.scene = fs.Auto(ir.AutoDerivedSceneColour, 0)
	l.diffuseSum = fs.NamedLocal("lightDiffuse", ir.TypeFloat4)
	l.out = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	l.fsView, l.shininess, l.specularSum = nil, nil, nil
	if l.specular {
		l.fsView = fs.Input(ir.SemanticTexCoord, -1, l.viewContent(), ir.TypeFloat3)
		l.shininess = fs.Auto(ir.AutoSurfaceShininess, 0)
		l.specularSum = fs.NamedLocal("lightSpecular", ir.TypeFloat4)
	}
	for i := range l.params {
		lp := &l.params[i]
		lp.fsIn = fs.Input(ir.SemanticTexCoord, -1, l.lightContent(i), ir.TypeFloat3)
		if lp.typ != srs.LightDirectional {
			lp.att = fs.Auto(ir.AutoLightAttenuation, i)
		}
		lp.diffuse = fs.Auto(ir.AutoDerivedLightDiffuseColour, i)
		if l.specular {
			lp.spec = fs.Auto(ir.AutoDerivedLightSpecularColour, i)
		}
	}
	return fs.Err()
}

func (l *NormalMapLighting) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	if l.space == TangentSpace {
		set.Vertex.AddDependency(shaderlib.NormalMapLighting)
	}
	set.Fragment.AddDependency(shaderlib.Common)
	set.Fragment.AddDependency(shaderlib.Lighting)
	set.Fragment.AddDependency(shaderlib.NormalMapLighting)
	return nil
}

// toMapSpace writes v, an object space vector, to dst in the space of the
// map.
func (l *NormalMapLighting) toMapSpace(f *ir.Function, v ir.Operand, dst *ir.Parameter) {
	if l.tbn == nil {
		f.AddInvocation(ir.OpAssign, v, ir.NewOut(dst))
		return
	}
	f.AddInvocation(ir.OpTransform, ir.NewIn(l.tbn), v, ir.NewOut(dst))
}

func (l *NormalMapLighting) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	pos := ir.NewIn(l.position).WithMask(ir.MaskXYZ)

	vf := ir.NewFunction(TypeNormalMapLighting, srs.OrderLighting)
	if l.tbn != nil {
		vf.AddInvocation(shaderlib.FuncConstructTBNMatrix, ir.NewIn(l.normal), ir.NewIn(l.tangent), ir.NewOut(l.tbn))
	}
	vf.AddInvocation(ir.OpAssign, ir.NewIn(l.vsTexIn), ir.NewOut(l.vsTexOut))
	if l.specular {
		vf.AddInvocation(ir.OpSubtract, ir.NewIn(l.camera).WithMask(ir.MaskXYZ), pos, ir.NewOut(l.viewVector))
		l.toMapSpace(vf, ir.NewIn(l.viewVector), l.vsView)
	}
	for _, lp := range l.params {
		v := ir.NewIn(lp.vector).WithMask(ir.MaskXYZ)
		if lp.typ != srs.LightDirectional {
			vf.AddInvocation(ir.OpSubtract, v, pos, ir.NewOut(l.lightVector))
			v = ir.NewIn(l.lightVector)
		}
		l.toMapSpace(vf, v, lp.vsOut)
	}
	set.Vertex.AddFunction(vf)

	ff := ir.NewFunction(TypeNormalMapLighting, srs.OrderLighting)
	ff.AddInvocation(ir.OpSampleTexture, ir.NewIn(l.sampler), ir.NewIn(l.fsTexIn), ir.NewOut(l.texel))
	ff.AddInvocation(shaderlib.FuncFetchNormal, ir.NewIn(l.texel), ir.NewOut(l.fsNormal))
	ff.AddInvocation(ir.OpAssign, ir.NewIn(l.scene), ir.NewOut(l.diffuseSum))
	if l.specular {
		ff.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(0, 0, 0, 0)), ir.NewOut(l.specularSum))
	}
	normal := ir.NewIn(l.fsNormal)
	origin := ir.NewIn(ir.NewConstant(0, 0, 0))
	for _, lp := range l.params {
		light := ir.NewIn(lp.fsIn)
		diffuse := ir.NewIn(lp.diffuse).WithMask(ir.MaskXYZ)
		dAcc := ir.NewInOut(l.diffuseSum).WithMask(ir.MaskXYZ)
		if lp.typ == srs.LightDirectional {
			ff.AddInvocation(shaderlib.FuncLightDirectionalDiffuse, normal, light, diffuse, dAcc)
		} else {
			ff.AddInvocation(shaderlib.FuncLightPointDiffuse, origin, normal, light, ir.NewIn(lp.att), diffuse, dAcc)
		}
		if !l.specular {
			continue
		}
		view := ir.NewIn(l.fsView)
		spec := ir.NewIn(lp.spec).WithMask(ir.MaskXYZ)
		sAcc := ir.NewInOut(l.specularSum).WithMask(ir.MaskXYZ)
		if lp.typ == srs.LightDirectional {
			ff.AddInvocation(shaderlib.FuncLightDirectionalSpecularTS, normal, light, view, spec, ir.NewIn(l.shininess), sAcc)
		} else {
			ff.AddInvocation(shaderlib.FuncLightPointSpecularTS, normal, light, ir.NewIn(lp.att), view, spec, ir.NewIn(l.shininess), sAcc)
		}
	}
	applyLighting(ff, l.out, l.diffuseSum, l.specularSum)
	set.Fragment.AddFunction(ff)
	return nil
}

// NormalMapLightingFactory handles
// "lighting_stage normal_map <texture> [tangent_space|object_space] [<texcoord set>]".
type NormalMapLightingFactory struct{}

func (NormalMapLightingFactory) Type() string            { return TypeNormalMapLighting }
func (NormalMapLightingFactory) New() srs.SubRenderState { return NewNormalMapLighting() }

func (f NormalMapLightingFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "lighting_stage" || prop.Value(0).String() != "normal_map" {
		return nil
	}
	if n := len(prop.Values); n < 2 || n > 4 {
		tr.Reportf(prop, "expected 2 to 4 values, got %d", n)
		return nil
	}
	space := TangentSpace
	if len(prop.Values) > 2 {
		switch v := prop.Value(2).String(); v {
		case "tangent_space":
		case "object_space":
			space = ObjectSpace
		default:
			tr.Reportf(prop, "unknown normal map space %q", v)
			return nil
		}
	}
	set := 0
	if len(prop.Values) > 3 {
		var ok bool
		if set, ok = prop.Value(3).Int(); !ok || set >= ir.MaxIndexedContents {
			tr.Reportf(prop, "invalid texture coordinate set %q", prop.Value(3))
			return nil
		}
	}
	s := srs.CreateOrRetrieveInstance(tr, f).(*NormalMapLighting)
	s.SetNormalMap(prop.Value(1).String(), space, set)
	return s
}

func (NormalMapLightingFactory) WriteInstance(w *script.Writer, state srs.SubRenderState, _, _ srs.Pass) {
	s := state.(*NormalMapLighting)
	w.WriteProperty("lighting_stage", "normal_map", s.texture, s.space.String(), strconv.Itoa(s.texCoordSet))
}
