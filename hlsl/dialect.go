// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"strconv"
	"strings"

	"github.com/gogpu/rtss/ir"
)

// TypeName returns the HLSL spelling of t.
func (w *writer) TypeName(t ir.Type) string {
	switch t {
	case ir.TypeFloat1:
		return "float"
	case ir.TypeFloat2:
		return "float2"
	case ir.TypeFloat3:
		return "float3"
	case ir.TypeFloat4:
		return "float4"
	case ir.TypeInt1:
		return "int"
	case ir.TypeMatrix3x3:
		return "float3x3"
	case ir.TypeMatrix4x4:
		return "float4x4"
	case ir.TypeSampler2D:
		if w.sm.Legacy() {
			return "sampler2D"
		}
		return "Texture2D"
	case ir.TypeSamplerCube:
		if w.sm.Legacy() {
			return "samplerCUBE"
		}
		return "TextureCube"
	default:
		return "void"
	}
}

func (w *writer) Reference(p *ir.Parameter) string {
	if name, ok := w.names[p]; ok {
		return name
	}
	return Escape(p.Name)
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
	return "mul(" + matrix + ", " + vector + ")"
}

func (w *writer) Lerp(a, b, t string) string {
	return "lerp(" + a + ", " + b + ", " + t + ")"
}

func (w *writer) Splat(_ ir.Type, x string) string { return x }

func (w *writer) Saturate(x string) string { return "saturate(" + x + ")" }

func (w *writer) Sample(sampler *ir.Parameter, coord string) string {
	name := w.Reference(sampler)
	if w.sm.Legacy() {
		if sampler.Type == ir.TypeSamplerCube {
			return "texCUBE(" + name + ", " + coord + ")"
		}
		return "tex2D(" + name + ", " + coord + ")"
	}
	return name + "_texture.Sample(" + name + "_sampler, " + coord + ")"
}

func (w *writer) Subscript(array, index string) string {
	return array + "[(int)" + index + "]"
}

func (w *writer) Temporary(name string, t ir.Type, value string) string {
	return w.TypeName(t) + " " + name + " = " + value + ";"
}

func (w *writer) SwizzleStores() bool { return true }
