// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package wgsl writes generated programs as WGSL source.
//
// Each stage is a separate module. Uniform values are gathered in one
// struct per stage bound at group 0 (binding 0 for the vertex stage,
// binding 1 for the fragment stage); each texture unit becomes a texture
// and a sampler in group 1. Texture coordinate registers use the location
// of their slot and colours follow them, so both stages agree on the
// interface without further configuration.
//
// WGSL cannot assign through a multi-component swizzle, so masked stores
// into packed registers go through a let-bound temporary.
//
// With Options.Validate set, each generated module is parsed, lowered and
// validated by naga before it is returned:
//
//	w := wgsl.NewProgramWriter(wgsl.DefaultOptions())
//	result, err := w.Write(set)
package wgsl
