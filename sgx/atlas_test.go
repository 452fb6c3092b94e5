// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import (
	"slices"
	"strings"
	"testing"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ffp"
	"github.com/gogpu/rtss/glsl"
	"github.com/gogpu/rtss/hlsl"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/material"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
	"github.com/gogpu/rtss/wgsl"
)

const terrainAtlas = `# terrain atlas
grass.png		terrain.png, 0, 2D, 0.0, 0.0, 0.0, 0.5, 0.5
rock.png		terrain.png, 0, 2D, 0.5, 0.0, 0.0, 0.5, 0.5

sand.png		beach.png, 0, 2D, 0.0, 0.5, 0.0, 1.0, 0.5
`

func newAtlasFactory(t *testing.T) *TextureAtlasSamplerFactory {
	t.Helper()
	f := NewTextureAtlasSamplerFactory()
	if err := f.AddAtlasDefinition(strings.NewReader(terrainAtlas)); err != nil {
		t.Fatal(err)
	}
	return f
}

// translateAtlas is translate with atlas tables taken from f.
func translateAtlas(t *testing.T, f *TextureAtlasSamplerFactory, pass srs.Pass, text string) (*srs.TargetRenderState, *srs.Translator) {
	t.Helper()
	factories := append(ffp.Factories(), Factories()...)
	for i := range factories {
		if factories[i].Type() == TypeTextureAtlasSampler {
			factories[i] = f
		}
	}
	reg, err := srs.NewRegistry(factories...)
	if err != nil {
		t.Fatal(err)
	}
	props, err := script.Parse(text)
	if err != nil {
		t.Fatal(err)
	}
	target := srs.NewTargetRenderState(reg)
	tr := srs.NewTranslator(nil, target, pass)
	tr.Translate(props)
	if d := tr.Diagnostics(); len(d) != 0 {
		t.Fatalf("diagnostics: %v", d)
	}
	return target, tr
}

func terrainPass(address string) *material.Pass {
	return material.MustNew(material.Desc{
		Name: "terrain",
		Textures: []material.TextureDesc{
			{Name: "terrain.png", Address: address},
			{Name: "detail.png"},
		},
	})
}

const atlasScript = "transform_stage ffp\ncolour_stage ffp\ntexturing_stage ffp\n"

func TestParseAtlasDefinition(t *testing.T) {
	records, err := ParseAtlasDefinition(strings.NewReader(terrainAtlas))
	if err != nil {
		t.Fatal(err)
	}
	want := []AtlasRecord{
		{Original: "grass.png", Atlas: "terrain.png", U: 0, V: 0, Width: 0.5, Height: 0.5},
		{Original: "rock.png", Atlas: "terrain.png", U: 0.5, V: 0, Width: 0.5, Height: 0.5},
		{Original: "sand.png", Atlas: "beach.png", U: 0, V: 0.5, Width: 1, Height: 0.5},
	}
	if !slices.Equal(records, want) {
		t.Errorf("records = %+v\nwant %+v", records, want)
	}
}

func TestParseAtlasDefinition_Errors(t *testing.T) {
	tests := []struct {
		name, text, want string
	}{
		{"no tab", "grass.png terrain.png, 0, 2D, 0, 0, 0, 1, 1", "line 1: missing tab"},
		{"short line", "# header\ngrass.png\tterrain.png, 0, 2D, 0, 0", "line 2: expected 8"},
		{"volume", "grass.png\tterrain.png, 0, 3D, 0, 0, 0, 1, 1", "unsupported atlas type"},
		{"not a number", "grass.png\tterrain.png, 0, 2D, left, 0, 0, 1, 1", `invalid atlas coordinate "left"`},
		{"outside atlas", "grass.png\tterrain.png, 0, 2D, 0, 0, 0, 1.5, 1", `invalid atlas coordinate "1.5"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAtlasDefinition(strings.NewReader(tt.text))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("ParseAtlasDefinition() error = %v, want %q", err, tt.want)
			}
		})
	}
}

func TestTextureAtlasSamplerFactory_Tables(t *testing.T) {
	f := newAtlasFactory(t)
	if got := f.Atlases(); !slices.Equal(got, []string{"beach.png", "terrain.png"}) {
		t.Errorf("Atlases() = %v", got)
	}
	table, ok := f.AtlasTable("terrain.png")
	if !ok || len(table.Records) != 2 || table.Records[1].Original != "rock.png" {
		t.Fatalf("AtlasTable() = %+v, %v", table, ok)
	}
	table.Records[0].Original = "changed"
	if again, _ := f.AtlasTable("terrain.png"); again.Records[0].Original != "grass.png" {
		t.Error("AtlasTable returned shared records")
	}
	f.SetAtlasSize("terrain.png", 2048, 1024)
	if table, _ := f.AtlasTable("terrain.png"); table.Width != 2048 || table.Height != 1024 || len(table.Records) != 2 {
		t.Errorf("after SetAtlasSize: %+v", table)
	}
	if _, ok := f.AtlasTable("detail.png"); ok {
		t.Error("AtlasTable found an unknown atlas")
	}
}

func TestTextureAtlasSampler(t *testing.T) {
	f := newAtlasFactory(t)
	f.SetAtlasSize("terrain.png", 1024, 512)
	pass := terrainPass("mirror")
	target, _ := translateAtlas(t, f, pass, atlasScript+"texture_atlas\n")
	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d := target.Dropped(); len(d) != 0 {
		t.Fatalf("dropped: %v", d)
	}
	vs, fs := w.set.Vertex, w.set.Fragment

	// Relative: one past the last texture unit.
	index := vs.InputByContent(ir.TexCoordContent(2))
	if index == nil || index.Type != ir.TypeFloat4 {
		t.Fatalf("index input = %v", index)
	}
	var data *ir.Parameter
	for _, u := range vs.Uniforms() {
		if u.Name == "atlasData0" {
			data = u
		}
	}
	if data == nil || data.ArraySize != 2 || !slices.Equal(data.Values, []float64{0, 0, 0.5, 0.5, 0.5, 0, 0.5, 0.5}) {
		t.Fatalf("atlas data = %+v", data)
	}
	var entry *ir.Invocation
	for _, fn := range vs.Functions() {
		if fn.Name == TypeTextureAtlasSampler {
			entry = fn.Invocations[0]
		}
	}
	if entry == nil || entry.Name != ir.OpAssign || entry.Operands[0].Param != data ||
		entry.Operands[0].Index == nil || entry.Operands[0].Index.Param != index || entry.Operands[0].Index.Mask != ir.MaskX {
		t.Fatalf("vertex entry lookup = %+v", entry)
	}

	if got := functionNames(fs); got != "FFP_Colour,FFP_Texturing_Sampling,SGX_TextureAtlasSampler,FFP_Texturing" {
		t.Errorf("fragment functions = %s", got)
	}
	if got := fs.Dependencies(); !slices.Contains(got, shaderlib.TextureAtlas) {
		t.Errorf("fragment dependencies = %v", got)
	}
	names := invocationNames(fs)
	if count(names, shaderlib.FuncAtlasMirror) != 2 || count(names, shaderlib.FuncAtlasCoordAutoAdjust) != 1 ||
		count(names, shaderlib.FuncAtlasCoordNormal) != 0 {
		t.Errorf("fragment invocations = %v", names)
	}
	// Two texturing samples plus the atlas lookup replacing texel0.
	if count(names, ir.OpSampleTexture) != 3 {
		t.Errorf("fragment invocations = %v", names)
	}
	var sampled []string
	for _, fn := range fs.Functions() {
		if fn.Name != TypeTextureAtlasSampler {
			continue
		}
		for _, inv := range fn.Invocations {
			if inv.Name == ir.OpSampleTexture {
				sampled = append(sampled, inv.Operands[len(inv.Operands)-1].Param.Name)
			}
		}
	}
	if !slices.Equal(sampled, []string{ffp.TexelName(0)}) {
		t.Errorf("atlas sampled into %v", sampled)
	}
	for _, u := range fs.Uniforms() {
		if u.Name == "atlasSize0" && !slices.Equal(u.Values, []float64{1024, 512}) {
			t.Errorf("atlas size defaults = %v", u.Values)
		}
	}
}

func TestTextureAtlasSampler_AbsoluteWithoutBorder(t *testing.T) {
	pass := terrainPass("border")
	target, _ := translateAtlas(t, newAtlasFactory(t), pass, atlasScript+"texture_atlas absolute 5 no_border\n")
	w := &recordingWriter{}
	if _, err := target.Generate(nil, pass, w); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if d := target.Dropped(); len(d) != 0 {
		t.Fatalf("dropped: %v", d)
	}
	if w.set.Vertex.InputByContent(ir.TexCoordContent(5)) == nil {
		t.Error("index set 5 not read")
	}
	for _, u := range w.set.Fragment.Uniforms() {
		if strings.HasPrefix(u.Name, "atlasSize") {
			t.Errorf("unexpected uniform %s", u.Name)
		}
	}
	names := invocationNames(w.set.Fragment)
	if count(names, shaderlib.FuncAtlasClamp) != 2 || count(names, shaderlib.FuncAtlasCoordNormal) != 1 ||
		count(names, shaderlib.FuncAtlasCoordAutoAdjust) != 0 {
		t.Errorf("fragment invocations = %v", names)
	}
}

func TestTextureAtlasSampler_Errors(t *testing.T) {
	f := newAtlasFactory(t)
	tests := []struct {
		name string
		desc material.Desc
		want string
	}{
		{"no atlas", material.Desc{Name: "plain", Textures: []material.TextureDesc{{Name: "detail.png"}}}, "no atlas textures"},
		{"cube", material.Desc{Name: "sky", Textures: []material.TextureDesc{{Name: "terrain.png", Cube: true}}}, "plain 2D textures"},
		{"sphere map", material.Desc{Name: "shiny", Textures: []material.TextureDesc{{Name: "terrain.png", EnvMap: "sphere"}}}, "plain 2D textures"},
		{"fifth unit", material.Desc{Name: "layers", Textures: []material.TextureDesc{
			{Name: "a.png"}, {Name: "b.png"}, {Name: "c.png"}, {Name: "d.png"}, {Name: "terrain.png"},
		}}, "at most 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := f.New()
			err := s.PreAddToRenderState(nil, material.MustNew(tt.desc))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("PreAddToRenderState() = %v, want %q", err, tt.want)
			}
		})
	}

	s := f.New().(*TextureAtlasSampler)
	s.SetParams(AtlasIndexAbsolute, 8, true)
	if err := s.PreAddToRenderState(nil, terrainPass("")); err == nil || !strings.Contains(err.Error(), "out of range") {
		t.Errorf("PreAddToRenderState() with set 8 = %v", err)
	}
}

func TestTextureAtlasSampler_NeedsTexturing(t *testing.T) {
	pass := terrainPass("")
	target, _ := translateAtlas(t, newAtlasFactory(t), pass, "transform_stage ffp\ncolour_stage ffp\ntexture_atlas\n")
	if _, err := target.Generate(nil, pass, &recordingWriter{}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	dropped := target.Dropped()
	if len(dropped) != 1 || dropped[0].Type != TypeTextureAtlasSampler || dropped[0].Phase != srs.PhaseResolveParameters {
		t.Fatalf("dropped = %v", dropped)
	}
	if !strings.Contains(dropped[0].Err.Error(), "not sampled by "+ffp.TypeTexturing) {
		t.Errorf("error = %v", dropped[0].Err)
	}
}

func TestTextureAtlasSamplerFactory_RoundTrip(t *testing.T) {
	f := newAtlasFactory(t)
	pass := terrainPass("")
	target, _ := translateAtlas(t, f, pass, "texture_atlas no_border absolute 3\n")
	s := target.Find(TypeTextureAtlasSampler).(*TextureAtlasSampler)
	if s.position != AtlasIndexAbsolute || s.offset != 3 || s.autoBorder {
		t.Errorf("parsed %v %d %v", s.position, s.offset, s.autoBorder)
	}

	w := script.NewWriter()
	reg, err := srs.NewRegistry(f)
	if err != nil {
		t.Fatal(err)
	}
	if err := srs.WriteRenderState(w, reg, target.States(), pass, pass); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(w.String(), "texture_atlas absolute 3 no_border") {
		t.Errorf("serialized block:\n%s", w.String())
	}

	defaults, _ := translateAtlas(t, f, pass, "texture_atlas\n")
	s = defaults.Find(TypeTextureAtlasSampler).(*TextureAtlasSampler)
	if s.position != AtlasIndexRelative || s.offset != 1 || !s.autoBorder {
		t.Errorf("defaults %v %d %v", s.position, s.offset, s.autoBorder)
	}
}

func TestTextureAtlasSamplerFactory_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		values []string
	}{
		{"unknown option", []string{"sideways"}},
		{"negative offset", []string{"relative", "-1"}},
		{"too many values", []string{"relative", "1", "auto_border", "extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := srs.NewTargetRenderState(newRegistry(t))
			tr := srs.NewTranslator(nil, target, terrainPass(""))
			prop := script.NewProperty("texture_atlas", tt.values...)
			if s := NewTextureAtlasSamplerFactory().CreateInstance(prop, tr.Pass(), tr); s != nil {
				t.Errorf("CreateInstance() = %v, want nil", s)
			}
			if len(tr.Diagnostics()) != 1 || len(target.States()) != 0 {
				t.Errorf("diagnostics = %v, states = %d", tr.Diagnostics(), len(target.States()))
			}
		})
	}
}

func TestTextureAtlasSampler_Writers(t *testing.T) {
	writers := []backend.ProgramWriter{
		hlsl.NewProgramWriter(hlsl.DefaultOptions()),
		glsl.NewProgramWriter(glsl.DefaultOptions()),
		wgsl.NewProgramWriter(wgsl.Options{}),
	}
	f := newAtlasFactory(t)
	for _, w := range writers {
		t.Run(w.TargetLanguage(), func(t *testing.T) {
			pass := terrainPass("clamp")
			target, _ := translateAtlas(t, f, pass, atlasScript+"texture_atlas\n")
			res, err := target.Generate(nil, pass, w)
			if err != nil {
				t.Fatalf("Generate: %v", err)
			}
			if d := target.Dropped(); len(d) != 0 {
				t.Fatalf("dropped: %v", d)
			}
			if !strings.Contains(res.Vertex.Code, "atlasData0") {
				t.Error("vertex program does not read the atlas table")
			}
			for _, fn := range []string{shaderlib.FuncAtlasClamp, shaderlib.FuncAtlasCoordAutoAdjust} {
				if !strings.Contains(res.Fragment.Code, fn) {
					t.Errorf("fragment program does not call %s", fn)
				}
			}
		})
	}
}
