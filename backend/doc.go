// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package backend defines the program writer abstraction and the lowering
// shared by the language writers.
//
// A ProgramWriter turns a merged ir.ProgramSet into vertex and fragment
// source text. Writers are created by a ProgramWriterFactory and looked up
// by target language id in a read-only Registry.
//
// The Lowerer translates invocations into statements through a Dialect,
// which supplies the language-specific spelling: type names, matrix
// transforms, texture sampling, subscripts and the names of declared
// parameters and varying registers. Packed varyings are addressed through
// their register and the component slice recorded by the merge step.
package backend
