// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"strconv"

	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeTexturing is the type of the Texturing state.
const TypeTexturing = "FFP_Texturing"

// TexelName returns the name of the fragment local holding the texel of
// texture unit. Functions ordered between srs.OrderTextureSampling and
// srs.OrderTexturing may overwrite it before it is blended.
func TexelName(unit int) string { return "texel" + strconv.Itoa(unit) }

// textureStage is one colour texture unit of the pass.
type textureStage struct {
	unit  int
	desc  srs.TextureUnit
	coord ir.Type

	vsIn, vsOut   *ir.Parameter
	texViewProj   *ir.Parameter
	fsIn, sampler *ir.Parameter
	projCoord     *ir.Parameter
	texel         *ir.Parameter
	args          [2]*ir.Parameter
}

// Texturing samples the colour texture units of the pass and blends them
// into the fragment colour. Texture coordinates are passed through from the
// vertex, projected through a texture projector or generated for
// environment maps.
type Texturing struct {
	stages []*textureStage

	normalMatrix, worldView, world *ir.Parameter
	position, normal               *ir.Parameter
	viewPos, viewNormal            *ir.Parameter
	out                            *ir.Parameter
}

// NewTexturing returns a texturing stage.
func NewTexturing() *Texturing { return &Texturing{} }

func (t *Texturing) Type() string        { return TypeTexturing }
func (t *Texturing) ExecutionOrder() int { return srs.OrderTexturing }

func (t *Texturing) PreAddToRenderState(_ *srs.Context, pass srs.Pass) error {
	t.stages = t.stages[:0]
	for i, u := range pass.TextureUnits() {
		if u.Kind != srs.TextureColour {
			continue
		}
		if i >= ir.MaxIndexedContents {
			return srs.Errorf(TypeTexturing, "texture unit %d exceeds the %d supported units", i, ir.MaxIndexedContents)
		}
		if u.TexCoordSet < 0 || u.TexCoordSet >= ir.MaxIndexedContents {
			return srs.Errorf(TypeTexturing, "unit %d: texture coordinate set %d out of range", i, u.TexCoordSet)
		}
		st := &textureStage{unit: i, desc: u, coord: ir.TypeFloat2}
		cube := u.Type == srs.TextureCube
		switch u.EnvMap {
		case srs.EnvMapReflection, srs.EnvMapNormal:
			if !cube {
				return srs.Errorf(TypeTexturing, "unit %d: %s mapping needs a cube texture", i, envMapName(u.EnvMap))
			}
			st.coord = ir.TypeFloat3
		case srs.EnvMapSphere, srs.EnvMapPlanar:
			if cube {
				return srs.Errorf(TypeTexturing, "unit %d: %s mapping needs a 2D texture", i, envMapName(u.EnvMap))
			}
		default:
			if cube {
				st.coord = ir.TypeFloat3
			}
		}
		if u.Projective {
			if cube || u.EnvMap != srs.EnvMapNone {
				return srs.Errorf(TypeTexturing, "unit %d: projective texturing needs a 2D texture without environment mapping", i)
			}
			st.coord = ir.TypeFloat3
		}
		t.stages = append(t.stages, st)
	}
	if len(t.stages) == 0 {
		return srs.Errorf(TypeTexturing, "pass %q has no colour texture units", pass.Name())
	}
	return nil
}

func envMapName(m srs.EnvMap) string {
	switch m {
	case srs.EnvMapSphere:
		return "sphere"
	case srs.EnvMapPlanar:
		return "planar"
	case srs.EnvMapReflection:
		return "reflection"
	case srs.EnvMapNormal:
		return "normal"
	}
	return "no"
}

// needs reports whether any stage satisfies pred.
func (t *Texturing) needs(pred func(srs.TextureUnit) bool) bool {
	for _, st := range t.stages {
		if pred(st.desc) {
			return true
		}
	}
	return false
}

func usesEnvMap(u srs.TextureUnit) bool    { return u.EnvMap != srs.EnvMapNone }
func usesViewPos(u srs.TextureUnit) bool   { return u.EnvMap == srs.EnvMapReflection }
func usesProjector(u srs.TextureUnit) bool { return u.Projective }

func (t *Texturing) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	if t.needs(usesEnvMap) {
		t.normalMatrix = vs.Auto(ir.AutoInverseTransposeWorldViewMatrix, 0)
		t.normal = vs.Input(ir.SemanticNormal, 0, ir.ContentNormalObjectSpace, ir.TypeFloat3)
		t.viewNormal = vs.Local(ir.ContentNormalViewSpace, ir.TypeFloat3)
	}
	if t.needs(usesViewPos) {
		t.worldView = vs.Auto(ir.AutoWorldViewMatrix, 0)
		t.viewPos = vs.Local(ir.ContentPositionViewSpace, ir.TypeFloat4)
	}
	if t.needs(usesViewPos) || t.needs(usesProjector) {
		t.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	}
	if t.needs(usesProjector) {
		t.world = vs.Auto(ir.AutoWorldMatrix, 0)
	}
	for _, st := range t.stages {
		switch {
		case st.desc.Projective:
			st.texViewProj = vs.Auto(ir.AutoTextureViewProjMatrix, st.unit)
		case st.desc.EnvMap == srs.EnvMapNone:
			src := st.desc.TexCoordSet
			st.vsIn = vs.Input(ir.SemanticTexCoord, src, ir.TexCoordContent(src), st.coord)
		}
		st.vsOut = vs.Output(ir.SemanticTexCoord, -1, ir.TexCoordContent(st.unit), st.coord)
	}
	if err := vs.Err(); err != nil {
		return err
	}

	fs := srs.NewResolver(set.Fragment)
	t.out = fs.Output(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4)
	for _, st := range t.stages {
		samplerType := ir.TypeSampler2D
		if st.desc.Type == srs.TextureCube {
			samplerType = ir.TypeSamplerCube
		}
		st.fsIn = fs.Input(ir.SemanticTexCoord, -1, ir.TexCoordContent(st.unit), st.coord)
		st.sampler = fs.Sampler(samplerType, st.unit)
		st.texel = fs.NamedLocal(TexelName(st.unit), ir.TypeFloat4)
		if st.desc.Projective {
			st.projCoord = fs.NamedLocal("projCoord"+strconv.Itoa(st.unit), ir.TypeFloat2)
		}
		for i, src := range st.desc.BlendArgs {
			if src == srs.BlendSourceDefault {
				src = srs.BlendSourceCurrent
				if i == 1 {
					src = srs.BlendSourceTexture
				}
			}
			switch src {
			case srs.BlendSourceCurrent:
				st.args[i] = t.out
			case srs.BlendSourceTexture:
				st.args[i] = st.texel
			case srs.BlendSourceManual:
				c := st.desc.BlendColour
				st.args[i] = fs.Uniform("blendColour"+strconv.Itoa(st.unit), ir.TypeFloat4, c[0], c[1], c[2], c[3])
			case srs.BlendSourceDiffuse, srs.BlendSourceSpecular:
				content := ir.ContentColorDiffuse
				if src == srs.BlendSourceSpecular {
					content = ir.ContentColorSpecular
				}
				// The colour stage owns the vertex side of these inputs.
				if st.args[i] = set.Fragment.InputByContent(content); st.args[i] == nil {
					return srs.Errorf(TypeTexturing, "unit %d: blend source %s is not interpolated", st.unit, content)
				}
			}
		}
	}
	return fs.Err()
}

func (t *Texturing) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	if t.needs(usesEnvMap) || t.needs(usesProjector) {
		set.Vertex.AddDependency(shaderlib.Common)
		set.Vertex.AddDependency(shaderlib.Texturing)
	}
	return nil
}

func (t *Texturing) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	vf := ir.NewFunction(TypeTexturing, srs.OrderTexturing)
	if t.needs(usesEnvMap) {
		vf.AddInvocation(ir.OpTransform, ir.NewIn(t.normalMatrix), ir.NewIn(t.normal), ir.NewOut(t.viewNormal))
		vf.AddInvocation(ir.OpNormalize, ir.NewIn(t.viewNormal), ir.NewOut(t.viewNormal))
	}
	if t.needs(usesViewPos) {
		vf.AddInvocation(ir.OpTransform, ir.NewIn(t.worldView), ir.NewIn(t.position), ir.NewOut(t.viewPos))
	}
	sf := ir.NewFunction(TypeTexturing+"_Sampling", srs.OrderTextureSampling)
	ff := ir.NewFunction(TypeTexturing, srs.OrderTexturing)
	for _, st := range t.stages {
		switch {
		case st.desc.Projective:
			vf.AddInvocation(shaderlib.FuncProjection,
				ir.NewIn(t.world), ir.NewIn(st.texViewProj), ir.NewIn(t.position), ir.NewOut(st.vsOut))
		case st.desc.EnvMap == srs.EnvMapSphere, st.desc.EnvMap == srs.EnvMapPlanar:
			vf.AddInvocation(shaderlib.FuncEnvMapSphere, ir.NewIn(t.viewNormal), ir.NewOut(st.vsOut))
		case st.desc.EnvMap == srs.EnvMapReflection:
			vf.AddInvocation(shaderlib.FuncEnvMapReflect, xyz(t.viewPos), ir.NewIn(t.viewNormal), ir.NewOut(st.vsOut))
		case st.desc.EnvMap == srs.EnvMapNormal:
			vf.AddInvocation(ir.OpAssign, ir.NewIn(t.viewNormal), ir.NewOut(st.vsOut))
		default:
			vf.AddInvocation(ir.OpAssign, ir.NewIn(st.vsIn), ir.NewOut(st.vsOut))
		}

		coord := ir.NewIn(st.fsIn)
		if st.desc.Projective {
			sf.AddInvocation(ir.OpDivide,
				ir.NewIn(st.fsIn).WithMask(ir.MaskXY), ir.NewIn(st.fsIn).WithMask(ir.MaskZ),
				ir.NewOut(st.projCoord))
			coord = ir.NewIn(st.projCoord)
		}
		sf.AddInvocation(ir.OpSampleTexture, ir.NewIn(st.sampler), coord, ir.NewOut(st.texel))

		a, b := st.args[0], st.args[1]
		switch st.desc.Blend {
		case srs.BlendAdd:
			ff.AddInvocation(ir.OpAdd, xyz(a), xyz(b), ir.NewOut(t.out).WithMask(ir.MaskXYZ))
		case srs.BlendSubtract:
			ff.AddInvocation(ir.OpSubtract, xyz(a), xyz(b), ir.NewOut(t.out).WithMask(ir.MaskXYZ))
		case srs.BlendReplace:
			ff.AddInvocation(ir.OpAssign, ir.NewIn(b), ir.NewOut(t.out))
		default:
			ff.AddInvocation(ir.OpModulate, ir.NewIn(a), ir.NewIn(b), ir.NewOut(t.out))
		}
	}
	set.Vertex.AddFunction(vf)
	set.Fragment.AddFunction(sf)
	set.Fragment.AddFunction(ff)
	return nil
}

// TexturingFactory handles "texturing_stage ffp".
type TexturingFactory struct{}

func (TexturingFactory) Type() string            { return TypeTexturing }
func (TexturingFactory) New() srs.SubRenderState { return NewTexturing() }

func (f TexturingFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	return simpleStage(f, "texturing_stage", prop, tr)
}

func (TexturingFactory) WriteInstance(w *script.Writer, _ srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("texturing_stage", valueFFP)
}
