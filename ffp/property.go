// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/srs"
)

// valueFFP selects the fixed-function implementation of a stage property.
const valueFFP = "ffp"

// ContentFogFactor tags the per-vertex fog factor varying.
const ContentFogFactor = ir.ContentCustomBegin

// orderColourEnd places the specular sum after texturing and before fog.
const orderColourEnd = srs.OrderTexturing + 50

// simpleStage creates the state of f from "<name> ffp". Other values are
// left to other factories; extra values are rejected.
func simpleStage(f srs.Factory, name string, prop *script.Property, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != name || prop.Value(0).String() != valueFFP {
		return nil
	}
	if len(prop.Values) != 1 {
		tr.Reportf(prop, "expected exactly one value, got %d", len(prop.Values))
		return nil
	}
	return srs.CreateOrRetrieveInstance(tr, f)
}

// Factories returns the factories of this package in translation order.
func Factories() []srs.Factory {
	return []srs.Factory{
		TransformFactory{},
		ColourFactory{},
		LightingFactory{},
		TexturingFactory{},
		FogFactory{},
	}
}
