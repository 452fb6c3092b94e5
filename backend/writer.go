// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtss/ir"
)

// ProgramWriter emits source text for one target language.
type ProgramWriter interface {
	TargetLanguage() string
	Write(set *ir.ProgramSet) (Result, error)
}

// ProgramWriterFactory creates writers for one target language.
type ProgramWriterFactory interface {
	TargetLanguage() string
	Create() ProgramWriter
}

// NewFactory returns a factory creating writers with create.
func NewFactory(language string, create func() ProgramWriter) ProgramWriterFactory {
	return &funcFactory{language: language, create: create}
}

type funcFactory struct {
	language string
	create   func() ProgramWriter
}

func (f *funcFactory) TargetLanguage() string { return f.language }
func (f *funcFactory) Create() ProgramWriter  { return f.create() }

// Result is the generated program pair.
type Result struct {
	Vertex   Source
	Fragment Source
}

// Source is the generated text of one program, with the interface
// description the render system needs to bind it.
type Source struct {
	Language   string
	Stage      gputypes.ShaderStage
	EntryPoint string
	// Profile names the compile target, like "vs_4_0" or "330 core".
	Profile string
	Code    string

	// VertexInputs lists the vertex attributes read by a vertex program.
	VertexInputs []VertexInput

	// Uniforms lists the uniforms and samplers of the program.
	Uniforms []*ir.Parameter

	// Bindings lists resource bindings for writers that declare them explicitly.
	Bindings []Binding

	// Libraries lists the helper libraries emitted in front of the entry point.
	Libraries []string
}

// Binding is a resource binding declared by the generated code.
type Binding struct {
	Name  string
	Group uint32
	Entry gputypes.BindGroupLayoutEntry
}

// VertexLayout returns an interleaved vertex buffer layout for the vertex inputs.
func (s *Source) VertexLayout() gputypes.VertexBufferLayout {
	layout := gputypes.VertexBufferLayout{StepMode: gputypes.VertexStepModeVertex}
	for _, in := range s.VertexInputs {
		layout.Attributes = append(layout.Attributes, gputypes.VertexAttribute{
			Format:         in.Format,
			Offset:         layout.ArrayStride,
			ShaderLocation: in.Location,
		})
		layout.ArrayStride += in.Format.Size()
	}
	return layout
}
