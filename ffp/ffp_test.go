// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/glsl"
	"github.com/gogpu/rtss/hlsl"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/material"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
	"github.com/gogpu/rtss/wgsl"
)

type recordingWriter struct {
	set *ir.ProgramSet
}

func (w *recordingWriter) TargetLanguage() string { return "test" }

func (w *recordingWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	w.set = set
	return backend.Result{}, nil
}

func newRegistry(t *testing.T) *srs.Registry {
	t.Helper()
	reg, err := srs.NewRegistry(Factories()...)
	if err != nil {
		t.Fatal(err)
	}
	return reg
}

// translate builds a target for pass from a script block.
func translate(t *testing.T, pass srs.Pass, text string) (*srs.TargetRenderState, *srs.Translator) {
	t.Helper()
	props, err := script.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	target := srs.NewTargetRenderState(newRegistry(t))
	tr := srs.NewTranslator(nil, target, pass)
	tr.Translate(props)
	return target, tr
}

func functionNames(p *ir.Program) string {
	var names []string
	for _, f := range p.Functions() {
		names = append(names, f.Name)
	}
	return strings.Join(names, ",")
}

func stateTypes(states []srs.SubRenderState) []string {
	var types []string
	for _, s := range states {
		types = append(types, s.Type())
	}
	return types
}

var litPass = material.Desc{
	Name:      "lit",
	Lighting:  true,
	Lights:    []string{"directional", "point", "spot"},
	Shininess: 16,
	Specular:  [3]float64{1, 1, 1},
	Track:     []string{"diffuse"},
	Fog:       "linear",
	Textures:  []material.TextureDesc{{Name: "albedo.png"}},
}

const litScript = `
transform_stage ffp
colour_stage ffp
lighting_stage ffp
texturing_stage ffp
fog_stage ffp
`

func TestPipeline_Lit(t *testing.T) {
	target, tr := translate(t, material.MustNew(litPass), litScript)
	if d := tr.Diagnostics(); len(d) != 0 {
		t.Fatalf("unexpected diagnostics: %v", d)
	}

	w := &recordingWriter{}
	if _, err := target.Generate(nil, material.MustNew(litPass), w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d := target.Dropped(); len(d) != 0 {
		t.Fatalf("unexpected drops: %v", d)
	}

	vs, fs := w.set.Vertex, w.set.Fragment
	if got := functionNames(vs); got != "FFP_Transform,FFP_Colour,FFP_Lighting,FFP_Texturing,FFP_Fog" {
		t.Errorf("vertex functions = %s", got)
	}
	if got := functionNames(fs); got != "FFP_Colour,FFP_Texturing_Sampling,FFP_Texturing,FFP_Colour_Specular,FFP_Fog" {
		t.Errorf("fragment functions = %s", got)
	}
	wantDeps := []string{shaderlib.Common, shaderlib.Lighting, shaderlib.Fog}
	if got := vs.Dependencies(); !slices.Equal(got, wantDeps) {
		t.Errorf("vertex dependencies = %v, want %v", got, wantDeps)
	}
	if got := fs.Dependencies(); len(got) != 0 {
		t.Errorf("fragment dependencies = %v, want none", got)
	}

	// The uv and the fog factor share one register.
	regs := vs.Varyings()
	if len(regs) != 1 {
		t.Fatalf("got %d registers, want 1", len(regs))
	}
	if len(fs.Varyings()) != 1 {
		t.Errorf("fragment registers = %d, want 1", len(fs.Varyings()))
	}

	var calls []string
	for _, inv := range vs.Invocations() {
		if !ir.IsIntrinsic(inv.Name) {
			calls = append(calls, inv.Name)
		}
	}
	wantCalls := []string{
		shaderlib.FuncLightDirectionalDiffuse, shaderlib.FuncLightDirectionalSpecular,
		shaderlib.FuncLightPointDiffuse, shaderlib.FuncLightPointSpecular,
		shaderlib.FuncLightSpotDiffuse, shaderlib.FuncLightSpotSpecular,
		shaderlib.FuncFogLinear,
	}
	if !slices.Equal(calls, wantCalls) {
		t.Errorf("helper calls = %v, want %v", calls, wantCalls)
	}
}

func TestPipeline_Writers(t *testing.T) {
	writers := []backend.ProgramWriter{
		hlsl.NewProgramWriter(hlsl.DefaultOptions()),
		glsl.NewProgramWriter(glsl.DefaultOptions()),
		wgsl.NewProgramWriter(wgsl.Options{}),
	}
	for _, w := range writers {
		t.Run(w.TargetLanguage(), func(t *testing.T) {
			pass := material.MustNew(litPass)
			target, _ := translate(t, pass, litScript)
			res, err := target.Generate(nil, pass, w)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			for _, want := range []string{shaderlib.FuncLightSpotSpecular, shaderlib.FuncFogLinear} {
				if !strings.Contains(res.Vertex.Code, want) {
					t.Errorf("vertex program does not call %s", want)
				}
			}
			if !slices.Contains(res.Vertex.Libraries, shaderlib.Lighting) {
				t.Errorf("vertex libraries = %v", res.Vertex.Libraries)
			}
			if res.Fragment.Code == "" {
				t.Error("empty fragment program")
			}
		})
	}
}

func TestPipeline_LightingDisabled(t *testing.T) {
	pass := material.MustNew(material.Desc{Name: "unlit"})
	target, _ := translate(t, pass, "transform_stage ffp\nlighting_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	dropped := target.Dropped()
	if len(dropped) != 1 || dropped[0].Type != TypeLighting || dropped[0].Phase != srs.PhasePreAdd {
		t.Fatalf("dropped = %v", dropped)
	}
	if got := functionNames(w.set.Vertex); got != "FFP_Transform" {
		t.Errorf("vertex functions = %s", got)
	}
}

func TestTexturing_EnvMaps(t *testing.T) {
	pass := material.MustNew(material.Desc{
		Name: "chrome",
		Textures: []material.TextureDesc{
			{Name: "base.png", TexCoordSet: 1},
			{Name: "sphere.png", EnvMap: "sphere", Blend: "add"},
			{Name: "sky.dds", Cube: true, EnvMap: "reflection", Blend: "subtract"},
		},
	})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	vs, fs := w.set.Vertex, w.set.Fragment
	if in := vs.InputByContent(ir.TexCoordContent(1)); in == nil || in.Index != 1 {
		t.Errorf("texcoord set 1 input = %v", in)
	}
	if out := vs.OutputByContent(ir.TexCoordContent(2)); out == nil || out.Type != ir.TypeFloat3 {
		t.Errorf("reflection coordinate output = %v", out)
	}
	if got := vs.Dependencies(); !slices.Contains(got, shaderlib.Texturing) {
		t.Errorf("vertex dependencies = %v", got)
	}

	var samplers []ir.Type
	for _, u := range fs.Uniforms() {
		if u.Type == ir.TypeSampler2D || u.Type == ir.TypeSamplerCube {
			samplers = append(samplers, u.Type)
		}
	}
	want := []ir.Type{ir.TypeSampler2D, ir.TypeSampler2D, ir.TypeSamplerCube}
	if !slices.Equal(samplers, want) {
		t.Errorf("samplers = %v, want %v", samplers, want)
	}

	var ops []string
	for _, inv := range fs.Invocations() {
		ops = append(ops, inv.Name)
	}
	for _, op := range []string{ir.OpModulate, ir.OpAdd, ir.OpSubtract} {
		if !slices.Contains(ops, op) {
			t.Errorf("fragment program has no %s", op)
		}
	}
}

// invocationsOf returns the invocations of p called name.
func invocationsOf(p *ir.Program, name string) []*ir.Invocation {
	var out []*ir.Invocation
	for _, inv := range p.Invocations() {
		if inv.Name == name {
			out = append(out, inv)
		}
	}
	return out
}

func TestTexturing_PlanarAndNormalMaps(t *testing.T) {
	pass := material.MustNew(material.Desc{
		Name: "glass",
		Textures: []material.TextureDesc{
			{Name: "ground.png", EnvMap: "planar"},
			{Name: "irradiance.dds", Cube: true, EnvMap: "normal"},
		},
	})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	vs := w.set.Vertex
	if calls := invocationsOf(vs, shaderlib.FuncEnvMapSphere); len(calls) != 1 {
		t.Errorf("planar unit generated by %d sphere calls, want 1", len(calls))
	}
	if len(invocationsOf(vs, shaderlib.FuncEnvMapReflect)) != 0 {
		t.Error("normal mapping generated a reflection vector")
	}
	out := vs.OutputByContent(ir.TexCoordContent(1))
	if out == nil || out.Type != ir.TypeFloat3 {
		t.Fatalf("normal coordinate output = %v", out)
	}
	var fromNormal bool
	for _, inv := range invocationsOf(vs, ir.OpAssign) {
		src, dst := inv.Operands[0].Param, inv.Operands[1].Param
		if dst == out && src.Content == ir.ContentNormalViewSpace {
			fromNormal = true
		}
	}
	if !fromNormal {
		t.Error("normal coordinate is not the view space normal")
	}
	if vs.InputByContent(ir.TexCoordContent(0)) != nil {
		t.Error("generated coordinates read a texture coordinate input")
	}
	// Neither mode needs the view space position.
	for _, l := range vs.Locals() {
		if l.Content == ir.ContentPositionViewSpace {
			t.Error("view space position resolved")
		}
	}
}

func TestTexturing_Projective(t *testing.T) {
	pass := material.MustNew(material.Desc{
		Name:     "spotlit",
		Textures: []material.TextureDesc{{Name: "base.png"}, {Name: "cookie.png", Projective: true}},
	})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	vs, fs := w.set.Vertex, w.set.Fragment

	calls := invocationsOf(vs, shaderlib.FuncProjection)
	if len(calls) != 1 {
		t.Fatalf("got %d projection calls, want 1", len(calls))
	}
	ops := calls[0].Operands
	if ops[0].Param.Auto != ir.AutoWorldMatrix || ops[1].Param.Auto != ir.AutoTextureViewProjMatrix || ops[1].Param.AutoIndex != 1 {
		t.Errorf("projection matrices = %s, %s", ops[0].Param, ops[1].Param)
	}
	if ops[3].Param.Type != ir.TypeFloat3 {
		t.Errorf("projected coordinate type = %s", ops[3].Param.Type)
	}
	if !slices.Contains(vs.Dependencies(), shaderlib.Texturing) {
		t.Errorf("vertex dependencies = %v", vs.Dependencies())
	}

	div := invocationsOf(fs, ir.OpDivide)
	if len(div) != 1 || div[0].Operands[0].Mask != ir.MaskXY || div[0].Operands[1].Mask != ir.MaskZ {
		t.Fatalf("perspective divide = %v", div)
	}
	samples := invocationsOf(fs, ir.OpSampleTexture)
	if len(samples) != 2 || samples[1].Operands[1].Param != div[0].Operands[2].Param {
		t.Error("projective unit does not sample the divided coordinate")
	}
	if got := functionNames(fs); got != "FFP_Colour,FFP_Texturing_Sampling,FFP_Texturing" {
		t.Errorf("fragment functions = %s", got)
	}

	target, _ = translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")
	res, err := target.Generate(nil, pass, hlsl.NewProgramWriter(hlsl.DefaultOptions()))
	if err != nil {
		t.Fatalf("Generate hlsl: %v", err)
	}
	if !strings.Contains(res.Vertex.Code, "textureViewProjMatrix1") {
		t.Error("hlsl vertex program does not declare the projector matrix")
	}
}

func TestTexturing_BlendSources(t *testing.T) {
	pass := material.MustNew(material.Desc{
		Name:      "tinted",
		Lighting:  true,
		Shininess: 8,
		Specular:  [3]float64{1, 1, 1},
		Textures: []material.TextureDesc{
			{Name: "a.png", BlendArgs: [2]string{"diffuse", "texture"}},
			{Name: "b.png", Blend: "add", BlendArgs: [2]string{"current", "specular"}},
			{Name: "c.png", Blend: "replace", BlendArgs: [2]string{"", "manual"}, BlendColour: [4]float64{1, 0, 0, 1}},
		},
	})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d := target.Dropped(); len(d) != 0 {
		t.Fatalf("unexpected drops: %v", d)
	}
	fs := w.set.Fragment

	var blend *ir.Function
	for _, f := range fs.Functions() {
		if f.Name == TypeTexturing {
			blend = f
		}
	}
	if blend == nil {
		t.Fatal("no blend function")
	}
	invs := blend.Invocations
	if len(invs) != 3 {
		t.Fatalf("got %d blend invocations, want 3", len(invs))
	}
	if p := invs[0].Operands[0].Param; p.Usage != ir.UsageInput || p.Content != ir.ContentColorDiffuse {
		t.Errorf("first argument of unit 0 = %s, want the diffuse input", p)
	}
	if p := invs[1].Operands[1].Param; p.Usage != ir.UsageInput || p.Content != ir.ContentColorSpecular {
		t.Errorf("second argument of unit 1 = %s, want the specular input", p)
	}
	if invs[2].Name != ir.OpAssign {
		t.Fatalf("unit 2 blends with %s, want %s", invs[2].Name, ir.OpAssign)
	}
	manual := invs[2].Operands[0].Param
	if manual.Name != "blendColour2" || !slices.Equal(manual.Values, []float64{1, 0, 0, 1}) {
		t.Errorf("manual colour = %s %v", manual.Name, manual.Values)
	}
}

func TestTexturing_BlendSourceNotInterpolated(t *testing.T) {
	pass := material.MustNew(material.Desc{
		Name:     "flat",
		Textures: []material.TextureDesc{{Name: "a.png", BlendArgs: [2]string{"specular", ""}}},
	})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	dropped := target.Dropped()
	if len(dropped) != 1 || dropped[0].Type != TypeTexturing || dropped[0].Phase != srs.PhaseResolveParameters {
		t.Fatalf("dropped = %v", dropped)
	}
	if !strings.Contains(dropped[0].Err.Error(), "is not interpolated") {
		t.Errorf("error = %v", dropped[0].Err)
	}
}

func TestTexturing_PreAddErrors(t *testing.T) {
	tests := []struct {
		name string
		desc material.Desc
		want string
	}{
		{"no units", material.Desc{Name: "bare"}, "no colour texture units"},
		{"reflection 2D", material.Desc{Textures: []material.TextureDesc{{EnvMap: "reflection"}}}, "needs a cube texture"},
		{"sphere cube", material.Desc{Textures: []material.TextureDesc{{Cube: true, EnvMap: "sphere"}}}, "needs a 2D texture"},
		{"planar cube", material.Desc{Textures: []material.TextureDesc{{Cube: true, EnvMap: "planar"}}}, "planar mapping needs a 2D texture"},
		{"normal 2D", material.Desc{Textures: []material.TextureDesc{{EnvMap: "normal"}}}, "normal mapping needs a cube texture"},
		{"projective cube", material.Desc{Textures: []material.TextureDesc{{Cube: true, Projective: true}}}, "projective texturing needs a 2D texture"},
		{"projective sphere", material.Desc{Textures: []material.TextureDesc{{EnvMap: "sphere", Projective: true}}}, "without environment mapping"},
		{"texcoord set", material.Desc{Textures: []material.TextureDesc{{TexCoordSet: 9}}}, "out of range"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewTexturing().PreAddToRenderState(nil, material.MustNew(tt.desc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("PreAddToRenderState() = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestFog_PerPixel(t *testing.T) {
	pass := material.MustNew(material.Desc{Name: "misty", Fog: "exp"})
	target, _ := translate(t, pass, "transform_stage ffp\ncolour_stage ffp\nfog_stage ffp per_pixel\n")

	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	vs, fs := w.set.Vertex, w.set.Fragment
	if vs.OutputByContent(ir.ContentDepthViewSpace) == nil {
		t.Error("vertex program does not output the depth")
	}
	if got := fs.Dependencies(); !slices.Equal(got, []string{shaderlib.Fog}) {
		t.Errorf("fragment dependencies = %v", got)
	}
	var names []string
	for _, inv := range fs.Invocations() {
		names = append(names, inv.Name)
	}
	if !slices.Contains(names, shaderlib.FuncFogExp) || !slices.Contains(names, ir.OpLerp) {
		t.Errorf("fragment invocations = %v", names)
	}
}

func TestFog_DisabledOnPass(t *testing.T) {
	err := NewFog().PreAddToRenderState(nil, material.MustNew(material.Desc{Name: "clear"}))
	if err == nil || !strings.Contains(err.Error(), "fog disabled") {
		t.Errorf("PreAddToRenderState() = %v", err)
	}
}

func TestFogFactory_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		prop      *script.Property
		diagnosed bool
	}{
		{"not ffp", script.NewProperty("fog_stage", "notffp"), false},
		{"no values", script.NewProperty("fog_stage"), true},
		{"too many", script.NewProperty("fog_stage", "ffp", "per_pixel", "extra"), true},
		{"bad mode", script.NewProperty("fog_stage", "ffp", "per_texel"), true},
		{"other property", script.NewProperty("lighting_stage", "ffp"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := srs.NewTargetRenderState(newRegistry(t))
			tr := srs.NewTranslator(nil, target, material.MustNew(material.Desc{}))
			if s := (FogFactory{}).CreateInstance(tt.prop, tr.Pass(), tr); s != nil {
				t.Errorf("CreateInstance() = %v, want nil", s)
			}
			if n := len(target.States()); n != 0 {
				t.Errorf("target has %d states, want 0", n)
			}
			if got := len(tr.Diagnostics()) != 0; got != tt.diagnosed {
				t.Errorf("diagnosed = %v, want %v", got, tt.diagnosed)
			}
		})
	}
}

func TestSimpleStage_Rejects(t *testing.T) {
	target := srs.NewTargetRenderState(newRegistry(t))
	tr := srs.NewTranslator(nil, target, material.MustNew(material.Desc{}))

	if s := (TransformFactory{}).CreateInstance(script.NewProperty("transform_stage", "ffp", "x"), nil, tr); s != nil {
		t.Errorf("extra value accepted: %v", s)
	}
	if s := (LightingFactory{}).CreateInstance(script.NewProperty("lighting_stage", "per_pixel"), nil, tr); s != nil {
		t.Errorf("per_pixel accepted by the ffp factory: %v", s)
	}
	if n := len(tr.Diagnostics()); n != 1 {
		t.Errorf("got %d diagnostics, want 1", n)
	}
}

func TestFactories_RoundTrip(t *testing.T) {
	pass := material.MustNew(litPass)
	target, _ := translate(t, pass, litScript+"fog_stage ffp per_pixel\n")
	states := target.States()
	if got := target.Find(TypeFog).(*Fog).Calc; got != FogPerPixel {
		t.Fatalf("second fog_stage did not reconfigure the instance: %v", got)
	}

	w := script.NewWriter()
	if err := srs.WriteRenderState(w, newRegistry(t), states, pass, pass); err != nil {
		t.Fatal(err)
	}
	text := w.String()
	if !strings.Contains(text, "fog_stage ffp per_pixel") {
		t.Errorf("serialized block lacks the fog mode:\n%s", text)
	}

	again, tr := translate(t, pass, text)
	if d := tr.Diagnostics(); len(d) != 0 {
		t.Fatalf("re-parse diagnostics: %v\n%s", d, text)
	}
	if got, want := stateTypes(again.States()), stateTypes(states); !slices.Equal(got, want) {
		t.Errorf("round trip states = %v, want %v", got, want)
	}
	if got := again.Find(TypeFog).(*Fog).Calc; got != FogPerPixel {
		t.Errorf("round trip fog calc = %v", got)
	}
}
