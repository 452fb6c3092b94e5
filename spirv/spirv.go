// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spirv compiles generated WGSL programs to SPIR-V binaries with
// naga, for render systems that consume SPIR-V directly.
package spirv

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/naga"
	nagaspirv "github.com/gogpu/naga/spirv"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/wgsl"
)

// Magic is the first word of every SPIR-V module.
const Magic = 0x07230203

// Version is a SPIR-V version.
type Version = nagaspirv.Version

// Options configures compilation.
type Options struct {
	// Version is the SPIR-V version to target.
	Version Version

	// Debug emits debug names and line information.
	Debug bool
}

// DefaultOptions targets SPIR-V 1.3 without debug information.
func DefaultOptions() Options {
	return Options{Version: nagaspirv.Version1_3}
}

// Compile compiles one WGSL program to a SPIR-V binary.
func Compile(src backend.Source, opts Options) ([]byte, error) {
	if src.Language != wgsl.Language {
		return nil, fmt.Errorf("spirv: %s program is %s, not wgsl", src.Stage, src.Language)
	}
	words, err := naga.CompileWithOptions(src.Code, naga.CompileOptions{
		SPIRVVersion: opts.Version,
		Debug:        opts.Debug,
		Validate:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("spirv: %s program: %w", src.Stage, err)
	}
	return words, nil
}

// CompileResult compiles both programs of res.
func CompileResult(res backend.Result, opts Options) (vertex, fragment []byte, err error) {
	if vertex, err = Compile(res.Vertex, opts); err != nil {
		return nil, nil, err
	}
	if fragment, err = Compile(res.Fragment, opts); err != nil {
		return nil, nil, err
	}
	return vertex, fragment, nil
}

// IsModule reports whether b starts with the SPIR-V magic number.
func IsModule(b []byte) bool {
	return len(b) >= 20 && len(b)%4 == 0 && binary.LittleEndian.Uint32(b) == Magic
}
