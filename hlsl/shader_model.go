// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/rtss/ir"
)

// ShaderModel represents a DirectX Shader Model version.
type ShaderModel uint8

// Supported Shader Model versions.
const (
	// ShaderModel3_0 is the Direct3D 9 model with combined samplers.
	ShaderModel3_0 ShaderModel = iota

	// ShaderModel4_0 introduces constant buffers and separate samplers (default).
	ShaderModel4_0

	// ShaderModel4_1 is the Direct3D 10.1 model.
	ShaderModel4_1

	// ShaderModel5_0 is the base SM5 version (DirectX 11).
	ShaderModel5_0

	// ShaderModel5_1 provides improved resource binding.
	ShaderModel5_1

	// ShaderModel6_0 introduces DXIL.
	ShaderModel6_0
)

// String returns a human-readable representation of the shader model.
// Example: "SM 3.0", "SM 5.1"
func (sm ShaderModel) String() string {
	major, minor := sm.version()
	return fmt.Sprintf("SM %d.%d", major, minor)
}

// ProfileSuffix returns the shader profile suffix for this model.
// Example: "3_0", "5_1"
func (sm ShaderModel) ProfileSuffix() string {
	major, minor := sm.version()
	return fmt.Sprintf("%d_%d", major, minor)
}

// Profile returns the compile profile for a program stage, like "vs_4_0".
func (sm ShaderModel) Profile(stage ir.Stage) string {
	if stage == ir.StageFragment {
		return "ps_" + sm.ProfileSuffix()
	}
	return "vs_" + sm.ProfileSuffix()
}

func (sm ShaderModel) version() (major, minor uint8) {
	switch sm {
	case ShaderModel3_0:
		return 3, 0
	case ShaderModel4_0:
		return 4, 0
	case ShaderModel4_1:
		return 4, 1
	case ShaderModel5_0:
		return 5, 0
	case ShaderModel5_1:
		return 5, 1
	case ShaderModel6_0:
		return 6, 0
	default:
		return 4, 0
	}
}

// Major returns the major version number.
func (sm ShaderModel) Major() uint8 {
	major, _ := sm.version()
	return major
}

// Minor returns the minor version number.
func (sm ShaderModel) Minor() uint8 {
	_, minor := sm.version()
	return minor
}

// Legacy reports whether the model uses the Direct3D 9 resource model.
func (sm ShaderModel) Legacy() bool {
	return sm < ShaderModel4_0
}

func (sm ShaderModel) valid() bool {
	return sm <= ShaderModel6_0
}
