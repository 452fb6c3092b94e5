// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"strings"

	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/shaderlib"
)

// Libraries resolves the helper libraries prog depends on, requirements
// first, and returns their names with their concatenated source text.
func Libraries(language string, prog *ir.Program) ([]string, string, error) {
	names, err := shaderlib.Resolve(prog.Dependencies())
	if err != nil {
		return nil, "", ir.NewError(ir.ErrUnknownLibrary, prog.Stage, err.Error())
	}
	var sb strings.Builder
	for _, name := range names {
		src, err := shaderlib.Source(language, name)
		if err != nil {
			return nil, "", ir.NewError(ir.ErrUnknownLibrary, prog.Stage, err.Error())
		}
		sb.WriteString(src)
		if !strings.HasSuffix(src, "\n") {
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return names, sb.String(), nil
}
