// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package msl

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga"
	nagamsl "github.com/gogpu/naga/msl"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/wgsl"
)

// Language is the writer id.
const Language = "msl"

// Version is an MSL language version.
type Version = nagamsl.Version

// Common MSL versions.
var (
	Version2_0 = nagamsl.Version2_0
	Version2_1 = nagamsl.Version2_1
	Version2_3 = nagamsl.Version2_3
	Version3_0 = nagamsl.Version3_0
)

// Options configures MSL generation.
type Options struct {
	// LangVersion is the target MSL version.
	LangVersion Version

	// BoundsChecks makes out of range array reads return zero. Skinning
	// indexes bone arrays with vertex data, so it is on by default.
	BoundsChecks bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{LangVersion: Version2_1, BoundsChecks: true}
}

// ProgramWriter writes program sets as MSL.
type ProgramWriter struct {
	opts Options
	wgsl *wgsl.ProgramWriter
}

// NewProgramWriter returns an MSL writer.
func NewProgramWriter(opts Options) *ProgramWriter {
	return &ProgramWriter{opts: opts, wgsl: wgsl.NewProgramWriter(wgsl.Options{})}
}

// Factory returns a factory for MSL writers using opts.
func Factory(opts Options) backend.ProgramWriterFactory {
	return backend.NewFactory(Language, func() backend.ProgramWriter { return NewProgramWriter(opts) })
}

// TargetLanguage returns "msl".
func (pw *ProgramWriter) TargetLanguage() string { return Language }

// Write generates the vertex and fragment programs of set.
func (pw *ProgramWriter) Write(set *ir.ProgramSet) (backend.Result, error) {
	res, err := pw.wgsl.Write(set)
	if err != nil {
		return backend.Result{}, err
	}
	vs, err := pw.translate(ir.StageVertex, res.Vertex)
	if err != nil {
		return backend.Result{}, err
	}
	fs, err := pw.translate(ir.StageFragment, res.Fragment)
	if err != nil {
		return backend.Result{}, err
	}
	return backend.Result{Vertex: vs, Fragment: fs}, nil
}

func (pw *ProgramWriter) options() nagamsl.Options {
	opts := nagamsl.DefaultOptions()
	opts.LangVersion = pw.opts.LangVersion
	if !pw.opts.BoundsChecks {
		opts.BoundsCheckPolicies = nagamsl.BoundsCheckPolicies{}
	}
	return opts
}

// translate lowers the WGSL source of one stage and emits it as MSL. The
// bindings and attributes of src are kept.
func (pw *ProgramWriter) translate(stage ir.Stage, src backend.Source) (backend.Source, error) {
	ast, err := naga.Parse(src.Code)
	if err != nil {
		return backend.Source{}, &Error{Stage: stage, Step: "parse", Err: err}
	}
	module, err := naga.LowerWithSource(ast, src.Code)
	if err != nil {
		return backend.Source{}, &Error{Stage: stage, Step: "lower", Err: err}
	}
	problems, err := naga.Validate(module)
	if err == nil && len(problems) > 0 {
		errs := make([]error, len(problems))
		for i := range problems {
			errs[i] = problems[i]
		}
		err = errors.Join(errs...)
	}
	if err != nil {
		return backend.Source{}, &Error{Stage: stage, Step: "validate", Err: err}
	}
	code, info, err := nagamsl.Compile(module, pw.options())
	if err != nil {
		return backend.Source{}, &Error{Stage: stage, Step: "compile", Err: err}
	}

	out := src
	out.Language = Language
	out.Profile = "metal" + pw.opts.LangVersion.String()
	out.Code = code
	if name, ok := info.EntryPointNames[src.EntryPoint]; ok {
		out.EntryPoint = name
	}
	return out, nil
}

// Error reports a program naga could not translate.
type Error struct {
	Stage ir.Stage
	Step  string // parse, lower, validate or compile
	Err   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("msl: %s program: %s: %v", e.Stage, e.Step, e.Err)
}

// Unwrap returns the naga error.
func (e *Error) Unwrap() error { return e.Err }
