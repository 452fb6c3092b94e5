// Package ir defines the program graph that sub render states build and
// program writers lower to shading-language source.
//
// The graph is deliberately small:
//   - Parameters: typed, semantically tagged values (inputs, outputs,
//     uniforms, locals, constants)
//   - Invocations: a named operation applied to masked operands
//   - Functions: ordered groups of invocations contributed by one sub render state
//   - Programs: one per pipeline stage, owning parameters, functions and
//     helper library dependencies
//   - ProgramSet: the vertex/fragment pair produced for one pass
//
// # Pipeline
//
// Sub render states resolve parameters into the programs, declare helper
// libraries, and append functions. Once every state has contributed,
// ProgramSet.MergeParameters links the vertex outputs to the fragment inputs
// and packs small texture-coordinate varyings into shared registers
// (see MergeParameter). Validate checks the result before a writer runs.
//
//	sub render states → ProgramSet → MergeParameters → Validate → writer
package ir
