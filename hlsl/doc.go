// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package hlsl writes generated programs as HLSL or Cg source.
//
// Shader Model 4.0 and later use the Direct3D 10+ resource model: uniforms
// live in a constant buffer, each sampler is split into a Texture object and
// a SamplerState, and system values use the SV_ semantics. Shader Model 3.0
// and the Cg writer keep the legacy model with global uniforms, combined
// sampler2D/samplerCUBE objects and POSITION/COLOR semantics.
//
// Both stages communicate through VS_OUTPUT and PS_INPUT structs whose
// members are declared in the same order: position, the texture coordinate
// registers by slot, then colours by index.
//
//	w := hlsl.NewProgramWriter(hlsl.DefaultOptions())
//	result, err := w.Write(set)
package hlsl
