// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import "github.com/gogpu/rtss/srs"

// Factories returns the factories of this package in translation order.
func Factories() []srs.Factory {
	return []srs.Factory{
		HardwareSkinningFactory{},
		PerPixelLightingFactory{},
		NormalMapLightingFactory{},
		IntegratedPSSM3Factory{},
		NewTextureAtlasSamplerFactory(),
	}
}
