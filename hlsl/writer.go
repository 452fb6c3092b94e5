// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
)

// Language ids served by this package.
const (
	LanguageHLSL = "hlsl"
	LanguageCg   = "cg"
)

// Options configures HLSL generation.
type Options struct {
	// ShaderModel is the target shader model.
	ShaderModel ShaderModel
}

// DefaultOptions returns sensible default options.
func DefaultOptions() *Options {
	return &Options{ShaderModel: ShaderModel4_0}
}

// ProgramWriter writes program sets as HLSL or Cg.
type ProgramWriter struct {
	language string
	opts     Options
}

// NewProgramWriter returns an HLSL writer. Nil options select the defaults.
func NewProgramWriter(opts *Options) *ProgramWriter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &ProgramWriter{language: LanguageHLSL, opts: *opts}
}

// NewCgProgramWriter returns a Cg writer. Cg programs use the legacy model.
func NewCgProgramWriter() *ProgramWriter {
	return &ProgramWriter{language: LanguageCg, opts: Options{ShaderModel: ShaderModel3_0}}
}

// Factory returns a factory for HLSL writers using opts.
func Factory(opts *Options) backend.ProgramWriterFactory {
	return backend.NewFactory(LanguageHLSL, func() backend.ProgramWriter { return NewProgramWriter(opts) })
}

// CgFactory returns a factory for Cg writers.
func CgFactory() backend.ProgramWriterFactory {
	return backend.NewFactory(LanguageCg, func() backend.ProgramWriter { return NewCgProgramWriter() })
}

// TargetLanguage returns "hlsl" or "cg".
func (pw *ProgramWriter) TargetLanguage() string { return pw.language }

// Write generates the vertex and fragment programs of set.
func (pw *ProgramWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	if !pw.opts.ShaderModel.valid() {
		return backend.Result{}, NewError(ErrInvalidShaderModel, ir.StageVertex,
			fmt.Sprintf("unknown shader model %d", pw.opts.ShaderModel))
	}
	vs, err := pw.writeProgram(set.Vertex)
	if err != nil {
		return backend.Result{}, fmt.Errorf("%s: %w", pw.language, err)
	}
	fs, err := pw.writeProgram(set.Fragment)
	if err != nil {
		return backend.Result{}, fmt.Errorf("%s: %w", pw.language, err)
	}
	return backend.Result{Vertex: vs, Fragment: fs}, nil
}

func (pw *ProgramWriter) writeProgram(prog *ir.Program) (backend.Source, error) {
	w := &writer{
		language: pw.language,
		sm:       pw.opts.ShaderModel,
		prog:     prog,
		names:    make(map[*ir.Parameter]string),
		namer:    newNamer(),
	}
	src := backend.Source{
		Language:   pw.language,
		Stage:      gputypes.ShaderStageVertex,
		EntryPoint: prog.EntryPoint,
		Profile:    pw.opts.ShaderModel.Profile(prog.Stage),
		Uniforms:   prog.Uniforms(),
	}
	if prog.Stage == ir.StageFragment {
		src.Stage = gputypes.ShaderStageFragment
	} else {
		inputs, err := backend.VertexInputs(prog)
		if err != nil {
			return backend.Source{}, err
		}
		src.VertexInputs = inputs
	}

	libs, text, err := backend.Libraries(pw.language, prog)
	if err != nil {
		return backend.Source{}, err
	}
	src.Libraries = libs
	if err := w.write(text); err != nil {
		return backend.Source{}, err
	}
	src.Code = w.String()
	return src, nil
}

// member is one field of an IO struct.
type member struct {
	typ      ir.Type
	name     string
	semantic string
}

// writer generates one program.
type writer struct {
	out    strings.Builder
	indent int

	language string
	sm       ShaderModel
	prog     *ir.Program
	names    map[*ir.Parameter]string
	namer    *namer
}

func (w *writer) write(libraries string) error {
	w.writeLine("// %s %s program generated by rtss", w.language, w.sm.Profile(w.prog.Stage))
	w.writeLine("")
	if libraries != "" {
		w.out.WriteString(libraries)
	}

	if err := w.writeUniforms(); err != nil {
		return err
	}
	for _, p := range w.prog.Locals() {
		w.names[p] = w.namer.call(p.Name)
	}

	inName, outName := "VS_INPUT", "VS_OUTPUT"
	if w.prog.Stage == ir.StageFragment {
		inName, outName = "PS_INPUT", "PS_OUTPUT"
	}
	inMembers, err := w.inputMembers()
	if err != nil {
		return err
	}
	outMembers, err := w.outputMembers()
	if err != nil {
		return err
	}
	if err := w.writeStruct(inName, inMembers); err != nil {
		return err
	}
	if err := w.writeStruct(outName, outMembers); err != nil {
		return err
	}

	body, err := backend.NewLowerer(w, w.prog).Body()
	if err != nil {
		return err
	}

	ret, params := "void", ""
	if len(outMembers) > 0 {
		ret = outName
	}
	if len(inMembers) > 0 {
		params = inName + " input"
	}
	w.writeLine("%s %s(%s)", ret, w.prog.EntryPoint, params)
	w.writeLine("{")
	w.pushIndent()
	if len(outMembers) > 0 {
		w.writeLine("%s output = (%s)0;", outName, outName)
	}
	for _, p := range w.prog.Locals() {
		t, err := w.declType(p.Type)
		if err != nil {
			return err
		}
		w.writeLine("%s %s;", t, w.names[p])
	}
	w.writeLine("")
	for _, line := range body {
		w.writeLine("%s", line)
	}
	if len(outMembers) > 0 {
		w.writeLine("return output;")
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

func (w *writer) writeUniforms() error {
	var values, samplers []*ir.Parameter
	for _, p := range w.prog.Uniforms() {
		w.names[p] = w.namer.call(p.Name)
		if p.Type.IsSampler() {
			samplers = append(samplers, p)
		} else {
			values = append(values, p)
		}
	}

	if len(values) > 0 {
		prefix := "uniform "
		if !w.sm.Legacy() {
			w.writeLine("cbuffer Parameters : register(b0)")
			w.writeLine("{")
			w.pushIndent()
			prefix = ""
		}
		for _, p := range values {
			t, err := w.declType(p.Type)
			if err != nil {
				return err
			}
			decl := prefix + t + " " + w.names[p]
			if p.IsArray() {
				decl += "[" + strconv.Itoa(p.ArraySize) + "]"
			}
			w.writeLine("%s;", decl)
		}
		if !w.sm.Legacy() {
			w.popIndent()
			w.writeLine("};")
		}
		w.writeLine("")
	}

	for _, p := range samplers {
		name := w.names[p]
		if w.sm.Legacy() {
			t := "sampler2D"
			if p.Type == ir.TypeSamplerCube {
				t = "samplerCUBE"
			}
			w.writeLine("uniform %s %s : register(s%d);", t, name, p.Index)
			continue
		}
		t := "Texture2D"
		if p.Type == ir.TypeSamplerCube {
			t = "TextureCube"
		}
		w.writeLine("%s %s_texture : register(t%d);", t, name, p.Index)
		w.writeLine("SamplerState %s_sampler : register(s%d);", name, p.Index)
	}
	if len(samplers) > 0 {
		w.writeLine("")
	}
	return nil
}

func (w *writer) inputMembers() ([]member, error) {
	var members []member
	if w.prog.Stage == ir.StageVertex {
		for _, p := range w.prog.Inputs() {
			sem, err := backend.SemanticName(p)
			if err != nil {
				return nil, err
			}
			name := Escape(p.Name)
			w.names[p] = "input." + name
			members = append(members, member{typ: p.Type, name: name, semantic: sem})
		}
		return members, nil
	}

	if !w.sm.Legacy() {
		members = append(members, member{typ: ir.TypeFloat4, name: "position", semantic: "SV_Position"})
	}
	members = append(members, w.registerMembers()...)
	members = append(members, w.colourMembers(w.prog.Inputs(), "input.")...)
	return members, nil
}

func (w *writer) outputMembers() ([]member, error) {
	if w.prog.Stage == ir.StageFragment {
		var members []member
		for _, p := range sortedColours(w.prog.Outputs()) {
			sem := "COLOR" + strconv.Itoa(p.Index)
			if !w.sm.Legacy() {
				sem = "SV_Target" + strconv.Itoa(p.Index)
			}
			name := "colour" + strconv.Itoa(p.Index)
			w.names[p] = "output." + name
			members = append(members, member{typ: p.Type, name: name, semantic: sem})
		}
		return members, nil
	}

	var members []member
	for _, p := range w.prog.Outputs() {
		if p.Semantic != ir.SemanticPosition {
			continue
		}
		sem := "POSITION"
		if !w.sm.Legacy() {
			sem = "SV_Position"
		}
		w.names[p] = "output.position"
		members = append(members, member{typ: p.Type, name: "position", semantic: sem})
	}
	members = append(members, w.registerMembers()...)
	members = append(members, w.colourMembers(w.prog.Outputs(), "output.")...)
	return members, nil
}

func (w *writer) registerMembers() []member {
	regs := w.prog.Varyings()
	members := make([]member, len(regs))
	for slot, reg := range regs {
		members[slot] = member{
			typ:      reg.Type(),
			name:     "texCoord" + strconv.Itoa(slot),
			semantic: "TEXCOORD" + strconv.Itoa(slot),
		}
	}
	return members
}

func (w *writer) colourMembers(params []*ir.Parameter, prefix string) []member {
	var members []member
	for _, p := range sortedColours(params) {
		name := "colour" + strconv.Itoa(p.Index)
		w.names[p] = prefix + name
		members = append(members, member{typ: p.Type, name: name, semantic: "COLOR" + strconv.Itoa(p.Index)})
	}
	return members
}

func sortedColours(params []*ir.Parameter) []*ir.Parameter {
	var out []*ir.Parameter
	for _, p := range params {
		if p.Semantic == ir.SemanticColor {
			out = append(out, p)
		}
	}
	slices.SortFunc(out, func(a, b *ir.Parameter) int { return a.Index - b.Index })
	return out
}

func (w *writer) writeStruct(name string, members []member) error {
	if len(members) == 0 {
		return nil
	}
	w.writeLine("struct %s", name)
	w.writeLine("{")
	w.pushIndent()
	for _, m := range members {
		t, err := w.declType(m.typ)
		if err != nil {
			return err
		}
		w.writeLine("%s %s : %s;", t, m.name, m.semantic)
	}
	w.popIndent()
	w.writeLine("};")
	w.writeLine("")
	return nil
}

func (w *writer) declType(t ir.Type) (string, error) {
	if t == ir.TypeUnknown || t.IsSampler() {
		return "", NewError(ErrUnsupportedType, w.prog.Stage, fmt.Sprintf("cannot declare a value of type %s", t))
	}
	return w.TypeName(t), nil
}

// writeLine writes an indented line with formatting.
//
//nolint:goprintffuncname // Internal helper, name is clear
func (w *writer) writeLine(format string, args ...any) {
	if format == "" {
		w.out.WriteByte('\n')
		return
	}
	w.writeIndent()
	if len(args) == 0 {
		w.out.WriteString(format)
	} else {
		fmt.Fprintf(&w.out, format, args...)
	}
	w.out.WriteByte('\n')
}

// writeIndent writes the current indentation (4 spaces per level).
func (w *writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteString("    ")
	}
}

func (w *writer) pushIndent() { w.indent++ }

func (w *writer) popIndent() {
	if w.indent > 0 {
		w.indent--
	}
}

// String returns the generated source.
func (w *writer) String() string { return w.out.String() }
