// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl writes generated programs as GLSL source.
//
// Desktop GLSL 1.50 and later and GLSL ES 3.00 are supported:
//
//   - GLSL 1.50 Core: attribute locations are bound by the application
//   - GLSL 3.30 Core and later: layout(location) on attributes and outputs
//   - GLSL ES 3.00: WebGL 2.0 and OpenGL ES 3.0, with precision qualifiers
//
// # Basic Usage
//
//	w := glsl.NewProgramWriter(glsl.DefaultOptions())
//	result, err := w.Write(set)
//
// Varyings are linked by name: texture coordinate registers are declared as
// vTexCoord<slot> and colours as vColour<index> in both stages. The vertex
// position is written to gl_Position and the fragment colour to fragColour.
// Vertex attributes carry the render system attribute names (vertex, normal,
// uv0, ...) and locations in declaration order.
package glsl
