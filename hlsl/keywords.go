// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import "strings"

// UnnamedIdentifier is the default name for empty identifiers.
const UnnamedIdentifier = "_unnamed"

// reservedKeywords holds HLSL and Cg keywords, intrinsics and object types
// that generated identifiers must not shadow.
var reservedKeywords = func() map[string]struct{} {
	words := []string{
		// Keywords shared by FXC, DXC and Cg.
		"asm", "bool", "break", "case", "cbuffer", "centroid", "class",
		"column_major", "compile", "const", "continue", "default", "discard",
		"do", "double", "else", "extern", "false", "float", "for", "groupshared",
		"half", "if", "in", "inline", "inout", "int", "interface", "linear",
		"matrix", "namespace", "nointerpolation", "noperspective", "out",
		"packoffset", "pass", "precise", "register", "return", "row_major",
		"sample", "sampler", "shared", "static", "string", "struct",
		"switch", "tbuffer", "technique", "texture", "true", "typedef",
		"uniform", "uint", "unsigned", "vector", "void", "volatile", "while",

		// Object types.
		"Buffer", "SamplerState", "SamplerComparisonState", "Texture1D",
		"Texture2D", "Texture3D", "TextureCube", "Texture2DArray",
		"sampler1D", "sampler2D", "sampler3D", "samplerCUBE", "sampler_state",

		// Cg profile keywords.
		"fixed", "fixed2", "fixed3", "fixed4", "samplerRECT", "emit",

		// Intrinsics used by generated code and helper libraries.
		"abs", "clamp", "cross", "ddx", "ddy", "degrees", "determinant",
		"distance", "dot", "exp", "exp2", "floor", "frac", "length", "lerp",
		"lit", "log", "log2", "max", "min", "mul", "normalize", "pow",
		"radians", "reflect", "refract", "rsqrt", "saturate", "sign", "sin",
		"cos", "sqrt", "step", "tan", "tex2D", "tex2Dproj", "texCUBE",
		"transpose",

		// Entry points and IO structs of generated programs.
		"main_vs", "main_fs", "VS_INPUT", "VS_OUTPUT", "PS_INPUT", "PS_OUTPUT",
		"input", "output",
	}
	m := make(map[string]struct{}, len(words)+64)
	for _, w := range words {
		m[w] = struct{}{}
	}
	for _, base := range []string{"bool", "int", "uint", "half", "float", "double"} {
		for r := 1; r <= 4; r++ {
			m[base+string(rune('0'+r))] = struct{}{}
			for c := 1; c <= 4; c++ {
				m[base+string(rune('0'+r))+"x"+string(rune('0'+c))] = struct{}{}
			}
		}
	}
	return m
}()

// caseInsensitiveKeywords are matched regardless of case by the compilers.
var caseInsensitiveKeywords = map[string]struct{}{
	"asm":          {},
	"decl":         {},
	"pass":         {},
	"technique":    {},
	"texture1d":    {},
	"texture2d":    {},
	"texture3d":    {},
	"texturecube":  {},
	"vertexshader": {},
	"pixelshader":  {},
}

// IsReserved checks if a name is an HLSL reserved word.
func IsReserved(name string) bool {
	_, ok := reservedKeywords[name]
	return ok
}

// IsCaseInsensitiveReserved checks if a name conflicts with case-insensitive keywords.
func IsCaseInsensitiveReserved(name string) bool {
	_, ok := caseInsensitiveKeywords[strings.ToLower(name)]
	return ok
}

// Escape returns a safe identifier name.
// If the name is reserved or empty, it's prefixed with underscore.
func Escape(name string) string {
	if name == "" {
		return UnnamedIdentifier
	}
	if IsReserved(name) || IsCaseInsensitiveReserved(name) {
		return "_" + name
	}
	return name
}
