// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import "strings"

// reserved holds WGSL keywords, type names, reserved words and the built-in
// functions used by generated code.
var reserved = func() map[string]struct{} {
	words := []string{
		"alias", "break", "case", "const", "const_assert", "continue",
		"continuing", "default", "diagnostic", "discard", "else", "enable",
		"false", "fn", "for", "if", "let", "loop", "override", "requires",
		"return", "struct", "switch", "true", "var", "while",

		"bool", "f16", "f32", "i32", "u32", "vec2", "vec3", "vec4",
		"mat2x2", "mat2x3", "mat2x4", "mat3x2", "mat3x3", "mat3x4",
		"mat4x2", "mat4x3", "mat4x4", "array", "atomic", "ptr",
		"sampler", "sampler_comparison", "texture_2d", "texture_cube",
		"texture_depth_2d",

		"NULL", "Self", "abstract", "active", "as", "asm", "async", "await",
		"become", "cast", "catch", "class", "co_await", "co_return",
		"co_yield", "coherent", "column_major", "common", "compile",
		"concept", "constexpr", "crate", "debugger", "decltype", "delete",
		"demote", "do", "dynamic_cast", "enum", "explicit", "export",
		"extends", "extern", "external", "filter", "final", "finally",
		"friend", "from", "fxgroup", "get", "goto", "handle", "highp", "impl",
		"implements", "import", "inline", "instanceof", "interface",
		"layout", "lowp", "macro", "match", "mediump", "meta", "mod",
		"module", "move", "mut", "mutable", "namespace", "new", "nil",
		"noexcept", "noinline", "nointerpolation", "noperspective", "null",
		"nullptr", "of", "operator", "package", "packoffset", "partition",
		"pass", "patch", "pixelfragment", "precise", "precision", "premerge",
		"priv", "protected", "pub", "public", "readonly", "ref",
		"regardless", "register", "reinterpret_cast", "require", "resource",
		"restrict", "self", "set", "shared", "sizeof", "smooth", "snorm",
		"static", "static_assert", "static_cast", "std", "subroutine",
		"super", "target", "template", "this", "thread_local", "throw",
		"trait", "try", "type", "typedef", "typeid", "typename", "typeof",
		"union", "unless", "unorm", "unsafe", "unsized", "use", "using",
		"varying", "virtual", "volatile", "wgsl", "where", "with",
		"writeonly", "yield",

		"clamp", "dot", "mix", "normalize", "saturate", "textureSample",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()

// escapeName returns a valid WGSL identifier for name.
func escapeName(name string) string {
	if name == "" {
		return "unnamed"
	}
	if strings.HasPrefix(name, "__") {
		name = "u" + strings.TrimLeft(name, "_")
	}
	if _, ok := reserved[name]; ok {
		return name + "_"
	}
	return name
}
