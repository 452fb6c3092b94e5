// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/rtss/ir"
)

// TypeName returns the GLSL spelling of t.
func (w *writer) TypeName(t ir.Type) string {
	switch t {
	case ir.TypeFloat1:
		return "float"
	case ir.TypeFloat2:
		return "vec2"
	case ir.TypeFloat3:
		return "vec3"
	case ir.TypeFloat4:
		return "vec4"
	case ir.TypeInt1:
		return "int"
	case ir.TypeMatrix3x3:
		return "mat3"
	case ir.TypeMatrix4x4:
		return "mat4"
	case ir.TypeSampler2D:
		return "sampler2D"
	case ir.TypeSamplerCube:
		return "samplerCube"
	default:
		return "void"
	}
}

func (w *writer) Reference(p *ir.Parameter) string {
	if name, ok := w.names[p]; ok {
		return name
	}
	return escapeKeyword(p.Name)
}

// Register names the varying at slot; both stages use the same name.
func (w *writer) Register(slot int) string {
	return "vTexCoord" + strconv.Itoa(slot)
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

func (w *writer) Splat(_ ir.Type, x string) string { return x }

func (w *writer) Saturate(x string) string {
	return "clamp(" + x + ", 0.0, 1.0)"
}

func (w *writer) Sample(sampler *ir.Parameter, coord string) string {
	return "texture(" + w.Reference(sampler) + ", " + coord + ")"
}

func (w *writer) Subscript(array, index string) string {
	return array + "[int(" + index + ")]"
}

func (w *writer) Temporary(name string, t ir.Type, value string) string {
	return w.TypeName(t) + " " + name + " = " + value + ";"
}

func (w *writer) SwizzleStores() bool { return true }
