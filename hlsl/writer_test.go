// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtss/ir"
)

// texturedSet builds a program pair that transforms the position, passes a
// texture coordinate and a white diffuse colour, and modulates the texture
// by the colour.
func texturedSet(t *testing.T) *ir.ProgramSet {
	t.Helper()
	set := ir.NewProgramSet()
	vs, fs := set.Vertex, set.Fragment
	must := func(p *ir.Parameter, err error) *ir.Parameter {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	pos := must(vs.ResolveInput(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4))
	uvIn := must(vs.ResolveInput(ir.SemanticTexCoord, 0, ir.TexCoordContent(0), ir.TypeFloat2))
	wvp := must(vs.ResolveAutoUniform(ir.AutoWorldViewProjMatrix, 0))
	oPos := must(vs.ResolveOutput(ir.SemanticPosition, 0, ir.ContentPositionProjectiveSpace, ir.TypeFloat4))
	oUV := must(vs.ResolveOutput(ir.SemanticTexCoord, -1, ir.TexCoordContent(0), ir.TypeFloat2))
	oDiffuse := must(vs.ResolveOutput(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4))

	f := ir.NewFunction("FFP_Transform", 100)
	f.AddInvocation(ir.OpTransform, ir.NewIn(wvp), ir.NewIn(pos), ir.NewOut(oPos))
	f.AddInvocation(ir.OpAssign, ir.NewIn(uvIn), ir.NewOut(oUV))
	f.AddInvocation(ir.OpAssign, ir.NewIn(ir.NewConstant(1, 1, 1, 1)), ir.NewOut(oDiffuse))
	vs.AddFunction(f)

	diffuse := must(fs.ResolveInput(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4))
	uv := must(fs.ResolveInput(ir.SemanticTexCoord, -1, ir.TexCoordContent(0), ir.TypeFloat2))
	sampler := must(fs.ResolveSampler(ir.TypeSampler2D, 0))
	texel := must(fs.ResolveNamedLocal("texel", ir.TypeFloat4))
	out := must(fs.ResolveOutput(ir.SemanticColor, 0, ir.ContentColorDiffuse, ir.TypeFloat4))

	g := ir.NewFunction("FFP_Texturing", 400)
	g.AddInvocation(ir.OpSampleTexture, ir.NewIn(sampler), ir.NewIn(uv), ir.NewOut(texel))
	g.AddInvocation(ir.OpModulate, ir.NewIn(texel), ir.NewIn(diffuse), ir.NewOut(out))
	fs.AddFunction(g)

	if err := set.MergeParameters(ir.MergeOptions{Pack: true, MaxRegisters: 8}); err != nil {
		t.Fatalf("MergeParameters: %v", err)
	}
	return set
}

func mustContain(t *testing.T, code string, parts ...string) {
	t.Helper()
	for _, p := range parts {
		if !strings.Contains(code, p) {
			t.Errorf("output missing %q\n--- output ---\n%s", p, code)
		}
	}
}

func TestProgramWriter_SM4(t *testing.T) {
	set := texturedSet(t)
	pos := set.Vertex.InputByContent(ir.ContentPositionObjectSpace)
	uv := set.Vertex.InputByContent(ir.TexCoordContent(0))

	w := NewProgramWriter(nil)
	if w.TargetLanguage() != LanguageHLSL {
		t.Fatalf("TargetLanguage() = %q", w.TargetLanguage())
	}
	res, err := w.Write(set)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	vs := res.Vertex
	if vs.Profile != "vs_4_0" || vs.EntryPoint != "main_vs" || vs.Stage != gputypes.ShaderStageVertex {
		t.Errorf("vertex source = %q %q %v", vs.Profile, vs.EntryPoint, vs.Stage)
	}
	if len(vs.VertexInputs) != 2 {
		t.Errorf("vertex inputs = %d, want 2", len(vs.VertexInputs))
	}
	mustContain(t, vs.Code,
		"cbuffer Parameters : register(b0)\n{\n    float4x4 worldViewProjMatrix;\n};",
		"struct VS_INPUT\n{\n    float4 "+pos.Name+" : POSITION;\n    float2 "+uv.Name+" : TEXCOORD0;\n};",
		"struct VS_OUTPUT\n{\n    float4 position : SV_Position;\n    float2 texCoord0 : TEXCOORD0;\n    float4 colour0 : COLOR0;\n};",
		"VS_OUTPUT main_vs(VS_INPUT input)\n{\n    VS_OUTPUT output = (VS_OUTPUT)0;",
		"    // FFP_Transform\n",
		"    output.position = mul(worldViewProjMatrix, input."+pos.Name+");\n",
		"    output.texCoord0 = input."+uv.Name+";\n",
		"    output.colour0 = float4(1.0, 1.0, 1.0, 1.0);\n",
		"    return output;\n}",
	)

	fs := res.Fragment
	if fs.Profile != "ps_4_0" || fs.Stage != gputypes.ShaderStageFragment {
		t.Errorf("fragment source = %q %v", fs.Profile, fs.Stage)
	}
	mustContain(t, fs.Code,
		"Texture2D textureUnit0_texture : register(t0);\nSamplerState textureUnit0_sampler : register(s0);",
		"struct PS_INPUT\n{\n    float4 position : SV_Position;\n    float2 texCoord0 : TEXCOORD0;\n    float4 colour0 : COLOR0;\n};",
		"struct PS_OUTPUT\n{\n    float4 colour0 : SV_Target0;\n};",
		"PS_OUTPUT main_fs(PS_INPUT input)",
		"    float4 texel;\n",
		"    texel = textureUnit0_texture.Sample(textureUnit0_sampler, input.texCoord0);\n",
		"    output.colour0 = (texel * input.colour0);\n",
	)
}

func TestProgramWriter_Cg(t *testing.T) {
	set := texturedSet(t)
	w := NewCgProgramWriter()
	if w.TargetLanguage() != LanguageCg {
		t.Fatalf("TargetLanguage() = %q", w.TargetLanguage())
	}
	res, err := w.Write(set)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if res.Vertex.Profile != "vs_3_0" {
		t.Errorf("profile = %q, want vs_3_0", res.Vertex.Profile)
	}
	mustContain(t, res.Vertex.Code,
		"uniform float4x4 worldViewProjMatrix;",
		"    float4 position : POSITION;\n",
	)
	if strings.Contains(res.Vertex.Code, "cbuffer") {
		t.Error("legacy output declares a constant buffer")
	}
	mustContain(t, res.Fragment.Code,
		"uniform sampler2D textureUnit0 : register(s0);",
		"struct PS_INPUT\n{\n    float2 texCoord0 : TEXCOORD0;\n    float4 colour0 : COLOR0;\n};",
		"    float4 colour0 : COLOR0;\n};\n",
		"    texel = tex2D(textureUnit0, input.texCoord0);\n",
	)
}

func TestProgramWriter_Libraries(t *testing.T) {
	set := texturedSet(t)
	set.Fragment.AddDependency("FFPLib_Fog")

	res, err := NewProgramWriter(&Options{ShaderModel: ShaderModel5_0}).Write(set)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(res.Fragment.Libraries) != 1 || res.Fragment.Libraries[0] != "FFPLib_Fog" {
		t.Errorf("Libraries = %v", res.Fragment.Libraries)
	}
	code := res.Fragment.Code
	lib := strings.Index(code, "float FFP_FogLinear(")
	entry := strings.Index(code, "PS_OUTPUT main_fs(")
	if lib < 0 || entry < 0 || lib > entry {
		t.Errorf("library must precede the entry point (lib %d, entry %d)", lib, entry)
	}
	if res.Fragment.Profile != "ps_5_0" {
		t.Errorf("profile = %q", res.Fragment.Profile)
	}
}

func TestProgramWriter_InvalidShaderModel(t *testing.T) {
	_, err := NewProgramWriter(&Options{ShaderModel: ShaderModel(42)}).Write(texturedSet(t))
	var he *Error
	if !errors.As(err, &he) || he.Kind != ErrInvalidShaderModel {
		t.Fatalf("error = %v, want InvalidShaderModel", err)
	}
}

func TestProgramWriter_CustomUniformEscaped(t *testing.T) {
	set := texturedSet(t)
	if _, err := set.Fragment.ResolveUniform("sample", ir.TypeFloat4); err != nil {
		t.Fatal(err)
	}
	res, err := NewProgramWriter(nil).Write(set)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	mustContain(t, res.Fragment.Code, "    float4 _sample;\n")
}
