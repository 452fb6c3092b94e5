// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// glslKeywords holds the GLSL reserved words and built-in functions that
// generated identifiers must not shadow (GLSL 4.60 and GLSL ES 3.20).
var glslKeywords = func() map[string]struct{} {
	words := []string{
		// Types.
		"void", "bool", "int", "uint", "float", "double",
		"vec2", "vec3", "vec4", "ivec2", "ivec3", "ivec4", "uvec2", "uvec3", "uvec4",
		"bvec2", "bvec3", "bvec4", "dvec2", "dvec3", "dvec4",
		"mat2", "mat3", "mat4", "mat2x2", "mat2x3", "mat2x4", "mat3x2", "mat3x3",
		"mat3x4", "mat4x2", "mat4x3", "mat4x4",
		"sampler1D", "sampler2D", "sampler3D", "samplerCube", "sampler2DShadow",
		"samplerCubeShadow", "sampler2DArray", "sampler2DRect", "samplerBuffer",

		// Keywords and qualifiers.
		"attribute", "const", "uniform", "varying", "buffer", "shared", "layout",
		"centroid", "flat", "smooth", "noperspective", "patch", "sample",
		"break", "continue", "do", "for", "while", "switch", "case", "default",
		"if", "else", "subroutine", "in", "out", "inout", "true", "false",
		"invariant", "precise", "discard", "return", "struct",
		"lowp", "mediump", "highp", "precision",

		// Reserved for future use.
		"common", "partition", "active", "asm", "class", "union", "enum",
		"typedef", "template", "this", "resource", "goto", "inline", "noinline",
		"public", "static", "extern", "external", "interface", "long", "short",
		"half", "fixed", "unsigned", "superp", "input", "output", "filter",
		"sizeof", "cast", "namespace", "using",

		// Built-in functions.
		"main", "radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan",
		"pow", "exp", "log", "exp2", "log2", "sqrt", "inversesqrt", "abs", "sign",
		"floor", "ceil", "fract", "mod", "min", "max", "clamp", "mix", "step",
		"smoothstep", "length", "distance", "dot", "cross", "normalize",
		"reflect", "refract", "transpose", "determinant", "inverse",
		"texture", "textureProj", "textureLod", "texelFetch", "dFdx", "dFdy", "fwidth",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// isKeyword checks if a name is a GLSL keyword or reserved word.
func isKeyword(name string) bool {
	_, ok := glslKeywords[name]
	return ok
}

// escapeKeyword escapes a name if it conflicts with GLSL keywords or uses a
// reserved prefix.
func escapeKeyword(name string) string {
	if name == "" {
		return "_unnamed"
	}
	if isKeyword(name) || strings.HasPrefix(name, "gl_") {
		return "_" + name
	}
	if strings.Contains(name, "__") {
		return strings.ReplaceAll(name, "__", "_")
	}
	return name
}
