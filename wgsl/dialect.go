// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/rtss/ir"
)

// TypeName returns the WGSL spelling of t.
func (w *writer) TypeName(t ir.Type) string {
	switch t {
	case ir.TypeFloat1:
		return "f32"
	case ir.TypeFloat2:
		return "vec2<f32>"
	case ir.TypeFloat3:
		return "vec3<f32>"
	case ir.TypeFloat4:
		return "vec4<f32>"
	case ir.TypeInt1:
		return "i32"
	case ir.TypeMatrix3x3:
		return "mat3x3<f32>"
	case ir.TypeMatrix4x4:
		return "mat4x4<f32>"
	case ir.TypeSampler2D:
		return "texture_2d<f32>"
	case ir.TypeSamplerCube:
		return "texture_cube<f32>"
	default:
		return "void"
	}
}

func (w *writer) Reference(p *ir.Parameter) string {
	if name, ok := w.names[p]; ok {
		return name
	}
	return escapeName(p.Name)
}

func (w *writer) Register(slot int) string {
	if w.prog.Stage == ir.StageFragment {
		return "input.texCoord" + strconv.Itoa(slot)
	}
	return "output.texCoord" + strconv.Itoa(slot)
}

func (w *writer) Vector(t ir.Type, args []string) string {
	return w.TypeName(t) + "(" + strings.Join(args, ", ") + ")"
}

func (w *writer) Transform(matrix, vector string) string {
	return "(" + matrix + " * " + vector + ")"
}

func (w *writer) Lerp(a, b, t string) string {
	return "mix(" + a + ", " + b + ", " + t + ")"
}

func (w *writer) Splat(t ir.Type, x string) string {
	return w.TypeName(t) + "(" + x + ")"
}

func (w *writer) Saturate(x string) string { return "saturate(" + x + ")" }

func (w *writer) Sample(sampler *ir.Parameter, coord string) string {
	name := w.Reference(sampler)
	return "textureSample(" + name + "_texture, " + name + "_sampler, " + coord + ")"
}

func (w *writer) Subscript(array, index string) string {
	return array + "[i32(" + index + ")]"
}

func (w *writer) Temporary(name string, _ ir.Type, value string) string {
	return "let " + name + " = " + value + ";"
}

func (w *writer) SwizzleStores() bool { return false }
