// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
)

// Language is the writer language id.
const Language = "wgsl"

// Options configures WGSL generation.
type Options struct {
	// Validate runs every generated module through the naga frontend and
	// validator.
	Validate bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{Validate: true}
}

// ProgramWriter writes program sets as WGSL.
type ProgramWriter struct {
	opts Options
}

// NewProgramWriter returns a WGSL writer.
func NewProgramWriter(opts Options) *ProgramWriter {
	return &ProgramWriter{opts: opts}
}

// Factory returns a factory for WGSL writers using opts.
func Factory(opts Options) backend.ProgramWriterFactory {
	return backend.NewFactory(Language, func() backend.ProgramWriter { return NewProgramWriter(opts) })
}

// TargetLanguage returns "wgsl".
func (pw *ProgramWriter) TargetLanguage() string { return Language }

// Write generates the vertex and fragment programs of set.
func (pw *ProgramWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	vs, err := pw.writeProgram(set.Vertex)
	if err != nil {
		return backend.Result{}, err
	}
	fs, err := pw.writeProgram(set.Fragment)
	if err != nil {
		return backend.Result{}, err
	}
	return backend.Result{Vertex: vs, Fragment: fs}, nil
}

func (pw *ProgramWriter) writeProgram(prog *ir.Program) (backend.Source, error) {
	w := &writer{
		prog:  prog,
		names: make(map[*ir.Parameter]string),
		used:  make(map[string]struct{}),
	}
	src := backend.Source{
		Language:   Language,
		Stage:      gputypes.ShaderStageVertex,
		EntryPoint: prog.EntryPoint,
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
		w.attributes = inputs
	}

	libs, text, err := backend.Libraries(Language, prog)
	if err != nil {
		return backend.Source{}, err
	}
	src.Libraries = libs
	if err := w.write(text); err != nil {
		return backend.Source{}, fmt.Errorf("wgsl: %w", err)
	}
	src.Code = w.String()
	src.Bindings = w.bindings

	if pw.opts.Validate {
		if err := Validate(prog.Stage, src.Code); err != nil {
			return backend.Source{}, err
		}
	}
	return src, nil
}

// Validate parses, lowers and validates code with naga.
func Validate(stage ir.Stage, code string) error {
	ast, err := naga.Parse(code)
	if err != nil {
		return newValidationError(stage, code, err)
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return newValidationError(stage, code, err)
	}
	problems, err := naga.Validate(module)
	if err != nil {
		return newValidationError(stage, code, err)
	}
	if len(problems) > 0 {
		errs := make([]error, len(problems))
		for i := range problems {
			errs[i] = problems[i]
		}
		return newValidationError(stage, code, errors.Join(errs...))
	}
	return nil
}

// writer generates one program.
type writer struct {
	out    strings.Builder
	indent int

	prog       *ir.Program
	attributes []backend.VertexInput
	names      map[*ir.Parameter]string
	used       map[string]struct{}
	bindings   []backend.Binding

	uniformVar string
}

// name returns a unique escaped identifier derived from base.
func (w *writer) name(base string) string {
	name := escapeName(base)
	for i := 1; ; i++ {
		if _, taken := w.used[name]; !taken {
			break
		}
		name = escapeName(base) + "_" + strconv.Itoa(i)
	}
	w.used[name] = struct{}{}
	return name
}

func (w *writer) visibility() gputypes.ShaderStages {
	if w.prog.Stage == ir.StageFragment {
		return gputypes.ShaderStageFragment
	}
	return gputypes.ShaderStageVertex
}

func (w *writer) write(libraries string) error {
	w.writeLine("// %s program generated by rtss", w.prog.Stage)
	w.writeLine("")
	if libraries != "" {
		w.out.WriteString(libraries)
	}
	for _, n := range []string{"input", "output"} {
		w.used[n] = struct{}{}
	}

	if err := w.writeUniforms(); err != nil {
		return err
	}

	inName, outName := "VertexInput", "VertexOutput"
	if w.prog.Stage == ir.StageFragment {
		inName, outName = "FragmentInput", "FragmentOutput"
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

	locals := w.prog.Locals()
	for _, p := range locals {
		w.names[p] = w.name(p.Name)
	}
	// Entry point parameters are immutable; written inputs get a copy.
	var copies []*ir.Parameter
	declared := make(map[*ir.Parameter]string)
	for _, p := range backend.WrittenInputs(w.prog) {
		declared[p] = w.names[p]
		w.names[p] = w.name("w_" + strings.TrimPrefix(declared[p], "input."))
		copies = append(copies, p)
	}

	body, err := backend.NewLowerer(w, w.prog).Body()
	if err != nil {
		return err
	}

	stage, params, ret := "@vertex", "", ""
	if w.prog.Stage == ir.StageFragment {
		stage = "@fragment"
	}
	if len(inMembers) > 0 {
		params = "input: " + inName
	}
	if len(outMembers) > 0 {
		ret = " -> " + outName
	}
	w.writeLine("%s", stage)
	w.writeLine("fn %s(%s)%s {", w.prog.EntryPoint, params, ret)
	w.pushIndent()
	if len(outMembers) > 0 {
		w.writeLine("var output: %s;", outName)
	}
	for _, p := range locals {
		t, err := w.declType(p.Type)
		if err != nil {
			return err
		}
		w.writeLine("var %s: %s;", w.names[p], t)
	}
	for _, p := range copies {
		w.writeLine("var %s = %s;", w.names[p], declared[p])
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
		if p.Type.IsSampler() {
			samplers = append(samplers, p)
		} else {
			values = append(values, p)
		}
	}

	if len(values) > 0 {
		structName, binding := "VertexUniforms", uint32(0)
		w.uniformVar = w.name("vsUniforms")
		if w.prog.Stage == ir.StageFragment {
			structName, binding = "FragmentUniforms", 1
			w.uniformVar = w.name("fsUniforms")
		}
		members := make(map[string]struct{})
		w.writeLine("struct %s {", structName)
		w.pushIndent()
		for _, p := range values {
			t, err := w.declType(p.Type)
			if err != nil {
				return err
			}
			if p.IsArray() {
				t = "array<" + t + ", " + strconv.Itoa(p.ArraySize) + ">"
			}
			member := escapeName(p.Name)
			for i := 1; ; i++ {
				if _, dup := members[member]; !dup {
					break
				}
				member = escapeName(p.Name) + "_" + strconv.Itoa(i)
			}
			members[member] = struct{}{}
			w.names[p] = w.uniformVar + "." + member
			w.writeLine("%s: %s,", member, t)
		}
		w.popIndent()
		w.writeLine("}")
		w.writeLine("")
		w.writeLine("@group(0) @binding(%d) var<uniform> %s: %s;", binding, w.uniformVar, structName)
		w.writeLine("")
		w.bindings = append(w.bindings, backend.Binding{
			Name:  w.uniformVar,
			Group: 0,
			Entry: gputypes.BindGroupLayoutEntry{
				Binding:    binding,
				Visibility: w.visibility(),
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		})
	}

	for _, p := range samplers {
		base := w.name(p.Name)
		w.names[p] = base
		texType, dim := "texture_2d<f32>", gputypes.TextureViewDimension2D
		if p.Type == ir.TypeSamplerCube {
			texType, dim = "texture_cube<f32>", gputypes.TextureViewDimensionCube
		}
		texBinding := uint32(2 * p.Index) //nolint:gosec // texture units are small
		w.writeLine("@group(1) @binding(%d) var %s_texture: %s;", texBinding, base, texType)
		w.writeLine("@group(1) @binding(%d) var %s_sampler: sampler;", texBinding+1, base)
		w.bindings = append(w.bindings,
			backend.Binding{
				Name:  base + "_texture",
				Group: 1,
				Entry: gputypes.BindGroupLayoutEntry{
					Binding:    texBinding,
					Visibility: w.visibility(),
					Texture: &gputypes.TextureBindingLayout{
						SampleType:    gputypes.TextureSampleTypeFloat,
						ViewDimension: dim,
					},
				},
			},
			backend.Binding{
				Name:  base + "_sampler",
				Group: 1,
				Entry: gputypes.BindGroupLayoutEntry{
					Binding:    texBinding + 1,
					Visibility: w.visibility(),
					Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
				},
			},
		)
	}
	if len(samplers) > 0 {
		w.writeLine("")
	}
	return nil
}

// member is one field of an IO struct.
type member struct {
	attr string
	name string
	typ  ir.Type
}

func (w *writer) inputMembers() ([]member, error) {
	var members []member
	if w.prog.Stage == ir.StageVertex {
		for _, a := range w.attributes {
			name := escapeName(a.Attribute)
			w.names[a.Param] = "input." + name
			members = append(members, member{attr: "@location(" + strconv.Itoa(int(a.Location)) + ")", name: name, typ: a.Param.Type})
		}
		return members, nil
	}
	members = append(members, w.registerMembers()...)
	members = append(members, w.colourMembers(w.prog.Inputs(), "input.")...)
	return members, nil
}

func (w *writer) outputMembers() ([]member, error) {
	var members []member
	if w.prog.Stage == ir.StageFragment {
		for _, p := range w.prog.Outputs() {
			name := "colour" + strconv.Itoa(p.Index)
			w.names[p] = "output." + name
			members = append(members, member{attr: "@location(" + strconv.Itoa(p.Index) + ")", name: name, typ: p.Type})
		}
		return members, nil
	}
	for _, p := range w.prog.Outputs() {
		if p.Semantic == ir.SemanticPosition {
			w.names[p] = "output.position"
			members = append(members, member{attr: "@builtin(position)", name: "position", typ: p.Type})
		}
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
			attr: "@location(" + strconv.Itoa(slot) + ")",
			name: "texCoord" + strconv.Itoa(slot),
			typ:  reg.Type(),
		}
	}
	return members
}

// colourMembers declares colours after the texture coordinate registers.
func (w *writer) colourMembers(params []*ir.Parameter, prefix string) []member {
	base := len(w.prog.Varyings())
	var members []member
	for i := 0; i <= 1; i++ {
		for _, p := range params {
			if p.Semantic != ir.SemanticColor || p.Index != i {
				continue
			}
			name := "colour" + strconv.Itoa(i)
			w.names[p] = prefix + name
			members = append(members, member{attr: "@location(" + strconv.Itoa(base+i) + ")", name: name, typ: p.Type})
		}
	}
	return members
}

func (w *writer) writeStruct(name string, members []member) error {
	if len(members) == 0 {
		return nil
	}
	w.writeLine("struct %s {", name)
	w.pushIndent()
	for _, m := range members {
		t, err := w.declType(m.typ)
		if err != nil {
			return err
		}
		w.writeLine("%s %s: %s,", m.attr, m.name, t)
	}
	w.popIndent()
	w.writeLine("}")
	w.writeLine("")
	return nil
}

func (w *writer) declType(t ir.Type) (string, error) {
	if t == ir.TypeUnknown || t.IsSampler() {
		return "", ir.NewError(ir.ErrUnsupportedContent, w.prog.Stage, fmt.Sprintf("cannot declare a value of type %s", t))
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

// String returns the generated WGSL source.
func (w *writer) String() string { return w.out.String() }
