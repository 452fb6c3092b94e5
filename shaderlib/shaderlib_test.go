// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderlib

import (
	"slices"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	got, err := Resolve([]string{NormalMapLighting, Fog, Common, Lighting})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{Common, Lighting, NormalMapLighting, Fog}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}

	if _, err := Resolve([]string{"SGXLib_Missing"}); err == nil {
		t.Error("Resolve accepted an unknown library")
	}
}

func TestEveryLibraryInEveryFamily(t *testing.T) {
	for name := range requires {
		for _, lang := range []string{"hlsl", "cg", "glsl", "wgsl"} {
			src, err := Source(lang, name)
			if err != nil {
				t.Errorf("Source(%s, %s): %v", lang, name, err)
				continue
			}
			if !strings.HasPrefix(src, "// "+name) {
				t.Errorf("%s/%s does not start with its header", lang, name)
			}
		}
	}
}

func TestFunctionsDefinedInEveryFamily(t *testing.T) {
	funcs := map[string][]string{
		Common:            {FuncViewDirection},
		Lighting:          {FuncLightDirectionalDiffuse, FuncLightDirectionalSpecular, FuncLightPointDiffuse, FuncLightPointSpecular, FuncLightSpotDiffuse, FuncLightSpotSpecular},
		Fog:               {FuncFogLinear, FuncFogExp, FuncFogExp2},
		Texturing:         {FuncEnvMapSphere, FuncEnvMapReflect, FuncProjection},
		HardwareSkinning:  {FuncTransformNormal},
		DualQuaternion:    {FuncAntipodalityAdjustment, FuncDualQuaternionTransform, FuncDualQuaternionRotate},
		IntegratedPSSM:    {FuncShadowCompare, FuncComputeShadowPSSM3},
		NormalMapLighting: {FuncConstructTBNMatrix, FuncFetchNormal, FuncLightDirectionalSpecularTS, FuncLightPointSpecularTS},
		TextureAtlas:      {FuncAtlasWrap, FuncAtlasMirror, FuncAtlasClamp, FuncAtlasCoordNormal, FuncAtlasCoordAutoAdjust},
	}
	for lib, names := range funcs {
		for _, lang := range []string{"hlsl", "glsl", "wgsl"} {
			src, err := Source(lang, lib)
			if err != nil {
				t.Fatalf("Source(%s, %s): %v", lang, lib, err)
			}
			for _, fn := range names {
				if !strings.Contains(src, fn+"(") {
					t.Errorf("%s/%s does not define %s", lang, lib, fn)
				}
			}
		}
	}
}

func TestUnknownLanguage(t *testing.T) {
	if _, err := Source("spirv", Common); err == nil {
		t.Error("Source accepted an unknown language")
	}
}
