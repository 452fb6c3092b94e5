// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import "github.com/gogpu/rtss/script"

// WriteRenderState writes states as an rtshader_system section, each state
// serialized by the factory of its type.
func WriteRenderState(w *script.Writer, reg *Registry, states []SubRenderState, srcPass, dstPass Pass) error {
	w.BeginSection(script.SectionName)
	defer w.EndSection()
	for _, s := range states {
		f, err := reg.Lookup(s.Type())
		if err != nil {
			return err
		}
		f.WriteInstance(w, s, srcPass, dstPass)
	}
	return nil
}
