// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package msl writes generated programs as Metal Shading Language.
//
// Programs are first written as WGSL, then lowered by naga and emitted by
// its MSL backend. Bindings and the vertex attribute table are the ones of
// the WGSL output; naga maps group 0 uniform buffers and group 1 textures
// to Metal buffer, texture and sampler slots in declaration order.
//
//	w := msl.NewProgramWriter(msl.DefaultOptions())
//	result, err := w.Write(set)
package msl
