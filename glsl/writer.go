// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
)

// Language ids served by this package.
const (
	LanguageGLSL   = "glsl"
	LanguageGLSLES = "glsles"
)

// ErrUnsupportedVersion is returned for GLSL versions the writer cannot target.
var ErrUnsupportedVersion = errors.New("glsl: unsupported version")

// Options configures GLSL code generation.
type Options struct {
	// LangVersion is the target GLSL version.
	// Defaults to Version330 if zero.
	LangVersion Version

	// ForceHighPrecision selects highp default precision (ES only).
	// If false, mediump is used.
	ForceHighPrecision bool
}

// DefaultOptions returns sensible default options for GLSL generation.
func DefaultOptions() Options {
	return Options{
		LangVersion:        Version330,
		ForceHighPrecision: true,
	}
}

// ProgramWriter writes program sets as GLSL.
type ProgramWriter struct {
	opts Options
}

// NewProgramWriter returns a GLSL writer.
func NewProgramWriter(opts Options) *ProgramWriter {
	if opts.LangVersion.Major == 0 {
		opts.LangVersion = Version330
	}
	return &ProgramWriter{opts: opts}
}

// Factory returns a factory for desktop GLSL writers using opts.
func Factory(opts Options) backend.ProgramWriterFactory {
	return backend.NewFactory(LanguageGLSL, func() backend.ProgramWriter { return NewProgramWriter(opts) })
}

// ESFactory returns a factory for GLSL ES 3.00 writers.
func ESFactory() backend.ProgramWriterFactory {
	return backend.NewFactory(LanguageGLSLES, func() backend.ProgramWriter {
		return NewProgramWriter(Options{LangVersion: VersionES300, ForceHighPrecision: true})
	})
}

// TargetLanguage returns "glsl" or "glsles".
func (pw *ProgramWriter) TargetLanguage() string {
	if pw.opts.LangVersion.ES {
		return LanguageGLSLES
	}
	return LanguageGLSL
}

// Write generates the vertex and fragment programs of set.
func (pw *ProgramWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	if !pw.opts.LangVersion.valid() {
		return backend.Result{}, fmt.Errorf("%w: %s", ErrUnsupportedVersion, pw.opts.LangVersion)
	}
	vs, err := pw.writeProgram(set.Vertex)
	if err != nil {
		return backend.Result{}, fmt.Errorf("glsl: %w", err)
	}
	fs, err := pw.writeProgram(set.Fragment)
	if err != nil {
		return backend.Result{}, fmt.Errorf("glsl: %w", err)
	}
	return backend.Result{Vertex: vs, Fragment: fs}, nil
}

func (pw *ProgramWriter) writeProgram(prog *ir.Program) (backend.Source, error) {
	w := &writer{
		opts:  &pw.opts,
		prog:  prog,
		names: make(map[*ir.Parameter]string),
	}
	src := backend.Source{
		Language:   pw.TargetLanguage(),
		Stage:      gputypes.ShaderStageVertex,
		EntryPoint: "main",
		Profile:    pw.opts.LangVersion.String(),
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

	libs, text, err := backend.Libraries(src.Language, prog)
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

// writer generates one program.
type writer struct {
	out    strings.Builder
	indent int

	opts       *Options
	prog       *ir.Program
	attributes []backend.VertexInput
	names      map[*ir.Parameter]string
	used       map[string]struct{}
}

// name returns a unique escaped identifier derived from base.
func (w *writer) name(base string) string {
	if w.used == nil {
		w.used = make(map[string]struct{})
	}
	name := escapeKeyword(base)
	for i := 1; ; i++ {
		if _, taken := w.used[name]; !taken {
			break
		}
		name = escapeKeyword(base) + "_" + strconv.Itoa(i)
	}
	w.used[name] = struct{}{}
	return name
}

func (w *writer) write(libraries string) error {
	v := w.opts.LangVersion
	w.writeLine("#version %s", v)
	if v.ES {
		precision := "mediump"
		if w.opts.ForceHighPrecision {
			precision = "highp"
		}
		w.writeLine("precision %s float;", precision)
		w.writeLine("precision %s int;", precision)
	}
	w.writeLine("// %s program generated by rtss", w.prog.Stage)
	w.writeLine("")
	if libraries != "" {
		w.out.WriteString(libraries)
	}

	if err := w.writeUniforms(); err != nil {
		return err
	}
	if err := w.writeInputs(); err != nil {
		return err
	}
	if err := w.writeOutputs(); err != nil {
		return err
	}

	locals := w.prog.Locals()
	for _, p := range locals {
		w.names[p] = w.name(p.Name)
	}
	// Inputs are read-only in GLSL; written ones get a mutable copy.
	var copies []*ir.Parameter
	declared := make(map[*ir.Parameter]string)
	for _, p := range backend.WrittenInputs(w.prog) {
		declared[p] = w.names[p]
		w.names[p] = w.name("w_" + declared[p])
		copies = append(copies, p)
	}

	body, err := backend.NewLowerer(w, w.prog).Body()
	if err != nil {
		return err
	}

	w.writeLine("void main()")
	w.writeLine("{")
	w.pushIndent()
	for _, p := range locals {
		t, err := w.declType(p.Type)
		if err != nil {
			return err
		}
		w.writeLine("%s %s;", t, w.names[p])
	}
	for _, p := range copies {
		t, err := w.declType(p.Type)
		if err != nil {
			return err
		}
		w.writeLine("%s %s = %s;", t, w.names[p], declared[p])
	}
	w.writeLine("")
	for _, line := range body {
		w.writeLine("%s", line)
	}
	w.popIndent()
	w.writeLine("}")
	return nil
}

func (w *writer) writeUniforms() error {
	uniforms := w.prog.Uniforms()
	for _, p := range uniforms {
		w.names[p] = w.name(p.Name)
		var t string
		if p.Type.IsSampler() {
			t = w.TypeName(p.Type)
		} else {
			var err error
			if t, err = w.declType(p.Type); err != nil {
				return err
			}
		}
		decl := "uniform " + t + " " + w.names[p]
		if p.IsArray() {
			decl += "[" + strconv.Itoa(p.ArraySize) + "]"
		}
		w.writeLine("%s;", decl)
	}
	if len(uniforms) > 0 {
		w.writeLine("")
	}
	return nil
}

func (w *writer) writeInputs() error {
	locations := w.opts.LangVersion.SupportsAttributeLocations()
	if w.prog.Stage == ir.StageVertex {
		for _, a := range w.attributes {
			t, err := w.declType(a.Param.Type)
			if err != nil {
				return err
			}
			name := w.name(a.Attribute)
			w.names[a.Param] = name
			if locations {
				w.writeLine("layout(location = %d) in %s %s;", a.Location, t, name)
			} else {
				w.writeLine("in %s %s;", t, name)
			}
		}
		w.writeLine("")
		return nil
	}

	if err := w.writeVaryings("in"); err != nil {
		return err
	}
	for _, p := range w.prog.Inputs() {
		if p.Semantic != ir.SemanticColor {
			continue
		}
		t, err := w.declType(p.Type)
		if err != nil {
			return err
		}
		w.names[p] = w.name("vColour" + strconv.Itoa(p.Index))
		w.writeLine("in %s %s;", t, w.names[p])
	}
	w.writeLine("")
	return nil
}

func (w *writer) writeOutputs() error {
	if w.prog.Stage == ir.StageFragment {
		for _, p := range w.prog.Outputs() {
			t, err := w.declType(p.Type)
			if err != nil {
				return err
			}
			name := "fragColour"
			if p.Index > 0 {
				name += strconv.Itoa(p.Index)
			}
			w.names[p] = w.name(name)
			if w.opts.LangVersion.SupportsAttributeLocations() {
				w.writeLine("layout(location = %d) out %s %s;", p.Index, t, w.names[p])
			} else {
				w.writeLine("out %s %s;", t, w.names[p])
			}
		}
		w.writeLine("")
		return nil
	}

	if err := w.writeVaryings("out"); err != nil {
		return err
	}
	for _, p := range w.prog.Outputs() {
		switch p.Semantic {
		case ir.SemanticPosition:
			w.names[p] = "gl_Position"
		case ir.SemanticColor:
			t, err := w.declType(p.Type)
			if err != nil {
				return err
			}
			w.names[p] = w.name("vColour" + strconv.Itoa(p.Index))
			w.writeLine("out %s %s;", t, w.names[p])
		}
	}
	w.writeLine("")
	return nil
}

func (w *writer) writeVaryings(qualifier string) error {
	for slot, reg := range w.prog.Varyings() {
		t, err := w.declType(reg.Type())
		if err != nil {
			return err
		}
		w.writeLine("%s %s %s;", qualifier, t, w.Register(slot))
	}
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

// String returns the generated GLSL source.
func (w *writer) String() string { return w.out.String() }
