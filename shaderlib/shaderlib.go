// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaderlib embeds the helper routine libraries that generated
// programs call into. Every library exists once per language family: HLSL
// (shared by the hlsl and cg writers), GLSL and WGSL. Function names are
// unique across all libraries because WGSL has no overloading.
package shaderlib

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed lib/*
var files embed.FS

// Library names.
const (
	Common            = "FFPLib_Common"
	Lighting          = "FFPLib_Lighting"
	Fog               = "FFPLib_Fog"
	Texturing         = "FFPLib_Texturing"
	HardwareSkinning  = "SGXLib_HardwareSkinning"
	DualQuaternion    = "SGXLib_DualQuaternion"
	IntegratedPSSM    = "SGXLib_IntegratedPSSM"
	NormalMapLighting = "SGXLib_NormalMapLighting"
	TextureAtlas      = "SGXLib_TextureAtlas"
)

// Function names exported by the libraries.
const (
	FuncViewDirection = "FFP_ViewDirection"

	FuncLightDirectionalDiffuse  = "FFP_Light_Directional_Diffuse"
	FuncLightDirectionalSpecular = "FFP_Light_Directional_Specular"
	FuncLightPointDiffuse        = "FFP_Light_Point_Diffuse"
	FuncLightPointSpecular       = "FFP_Light_Point_Specular"
	FuncLightSpotDiffuse         = "FFP_Light_Spot_Diffuse"
	FuncLightSpotSpecular        = "FFP_Light_Spot_Specular"

	FuncFogLinear = "FFP_FogLinear"
	FuncFogExp    = "FFP_FogExp"
	FuncFogExp2   = "FFP_FogExp2"

	FuncEnvMapSphere  = "FFP_GenerateTexCoord_EnvMap_Sphere"
	FuncEnvMapReflect = "FFP_GenerateTexCoord_EnvMap_Reflect"
	FuncProjection    = "FFP_GenerateTexCoord_Projection"

	FuncTransformNormal = "SGX_TransformNormal"

	FuncAntipodalityAdjustment  = "SGX_AntipodalityAdjustment"
	FuncDualQuaternionTransform = "SGX_DualQuaternionTransform"
	FuncDualQuaternionRotate    = "SGX_DualQuaternionRotate"

	FuncShadowCompare      = "SGX_ShadowCompare"
	FuncComputeShadowPSSM3 = "SGX_ComputeShadowFactor_PSSM3"

	FuncConstructTBNMatrix         = "SGX_ConstructTBNMatrix"
	FuncFetchNormal                = "SGX_FetchNormal"
	FuncLightDirectionalSpecularTS = "SGX_Light_Directional_Specular_TS"
	FuncLightPointSpecularTS       = "SGX_Light_Point_Specular_TS"

	FuncAtlasWrap            = "SGX_Atlas_Wrap"
	FuncAtlasMirror          = "SGX_Atlas_Mirror"
	FuncAtlasClamp           = "SGX_Atlas_Clamp"
	FuncAtlasCoordNormal     = "SGX_Atlas_Coord_Normal"
	FuncAtlasCoordAutoAdjust = "SGX_Atlas_Coord_Auto_Adjust"
)

// requires lists the libraries each library calls into.
var requires = map[string][]string{
	Common:            nil,
	Lighting:          {Common},
	Fog:               nil,
	Texturing:         {Common},
	HardwareSkinning:  nil,
	DualQuaternion:    nil,
	IntegratedPSSM:    nil,
	NormalMapLighting: {Lighting},
	TextureAtlas:      nil,
}

// Exists reports whether name is a known library.
func Exists(name string) bool {
	_, ok := requires[name]
	return ok
}

// Family returns the source family used for a writer language id.
func Family(language string) (string, error) {
	switch language {
	case "hlsl", "cg":
		return "hlsl", nil
	case "glsl", "glsles":
		return "glsl", nil
	case "wgsl":
		return "wgsl", nil
	}
	return "", fmt.Errorf("shaderlib: no libraries for language %q", language)
}

// Resolve expands names with the libraries they require. Requirements come
// before the libraries that use them; each library appears once and the
// first-request order is otherwise kept.
func Resolve(names []string) ([]string, error) {
	var (
		out     []string
		visited = make(map[string]bool)
		visit   func(name string, chain []string) error
	)
	visit = func(name string, chain []string) error {
		if visited[name] {
			return nil
		}
		deps, ok := requires[name]
		if !ok {
			return fmt.Errorf("shaderlib: unknown library %q", name)
		}
		for _, c := range chain {
			if c == name {
				return fmt.Errorf("shaderlib: library cycle %s", strings.Join(append(chain, name), " -> "))
			}
		}
		for _, d := range deps {
			if err := visit(d, append(chain, name)); err != nil {
				return err
			}
		}
		visited[name] = true
		out = append(out, name)
		return nil
	}
	for _, n := range names {
		if err := visit(n, nil); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Source returns the text of library name for a writer language id.
func Source(language, name string) (string, error) {
	family, err := Family(language)
	if err != nil {
		return "", err
	}
	if !Exists(name) {
		return "", fmt.Errorf("shaderlib: unknown library %q", name)
	}
	data, err := files.ReadFile("lib/" + name + "." + family)
	if err != nil {
		return "", fmt.Errorf("shaderlib: %w", err)
	}
	return string(data), nil
}
