// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package srs assembles sub render states into the programs of one pass.
//
// A sub render state implements one fixed-function-equivalent feature
// (transform, lighting, texturing, fog, skinning, shadows). Factories build
// them from material script properties through a Translator and serialize
// them back with WriteRenderState. A TargetRenderState collects the states
// of a pass and runs the generation pipeline:
//
//	Idle → Collecting → PreAdd → ResolveParameters → ResolveDependencies →
//	AddFunctionInvocations → MergeParameters → Write → Done | Failed
//
// A state that fails a stage is dropped from the pass and whatever it added
// to the programs is rolled back; the remaining states still generate.
// Capabilities reach the states through a Context instead of a reference to
// their factory.
package srs
