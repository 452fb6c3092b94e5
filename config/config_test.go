// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rtss.json")
	writeFile(t, path, `{
		"language": "glsl",
		"maxCalculableBones": 40,
		"packVaryings": false,
		"pass": {
			"name": "statue",
			"lighting": true,
			"lights": ["directional", "point"],
			"fog": "exp2",
			"textures": [{"name": "marble.png"}]
		}
	}`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	caps := cfg.Capabilities()
	if caps.TargetLanguage != "glsl" || caps.MaxCalculableBones != 40 || caps.MaxTexCoordSlots != 8 {
		t.Errorf("Capabilities() = %+v", caps)
	}
	if cfg.Packing() {
		t.Error("Packing() = true, want false")
	}
	if cfg.Pass == nil || cfg.Pass.Name != "statue" || len(cfg.Pass.Lights) != 2 || len(cfg.Pass.Textures) != 1 {
		t.Errorf("Pass = %+v", cfg.Pass)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed", `{"language": `},
		{"negative bones", `{"maxCalculableBones": -1}`},
		{"too many slots", `{"maxTexCoordSlots": 9}`},
		{"no slots", `{"maxTexCoordSlots": 0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "rtss.json")
			writeFile(t, path, tt.content)
			if cfg, err := LoadFile(path); err == nil {
				t.Errorf("LoadFile() = %+v, want error", cfg)
			}
		})
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json")); !os.IsNotExist(err) {
		t.Errorf("LoadFile(missing) error = %v, want not exist", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "project", "materials")
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		t.Fatalf("failed to create dirs: %v", err)
	}
	configPath := filepath.Join(tmpDir, "project", ".rtssrc")
	writeFile(t, configPath, `{"language": "wgsl"}`)

	cfg, foundPath, err := Load(subDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected config, got nil")
	}
	if foundPath != configPath {
		t.Errorf("found config at %s, expected %s", foundPath, configPath)
	}
	if cfg.Language != "wgsl" {
		t.Errorf("Language = %q, want wgsl", cfg.Language)
	}
}

func TestLoad_PrefersFirstName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "rtss.json"), `{"language": "hlsl"}`)
	writeFile(t, filepath.Join(dir, ".rtssrc"), `{"language": "cg"}`)

	cfg, _, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Language != "hlsl" {
		t.Errorf("Language = %q, want hlsl", cfg.Language)
	}
}

func TestNilConfig(t *testing.T) {
	var cfg *Config
	if caps := cfg.Capabilities(); caps.TargetLanguage != "hlsl" || caps.MaxCalculableBones != 80 {
		t.Errorf("Capabilities() = %+v", caps)
	}
	if !cfg.Packing() {
		t.Error("Packing() = false, want true")
	}
}

func TestMerge(t *testing.T) {
	off := false
	cfg := &Config{Language: "glsl"}

	merged := cfg.Merge(MergeOptions{Language: "wgsl", PackVaryings: &off})
	if merged.Language != "wgsl" || merged.Packing() {
		t.Errorf("Merge() = %+v", merged)
	}
	if cfg.Language != "glsl" || cfg.PackVaryings != nil {
		t.Errorf("Merge modified the receiver: %+v", cfg)
	}

	if got := cfg.Merge(MergeOptions{}); got.Language != "glsl" {
		t.Errorf("empty Merge() language = %q", got.Language)
	}
	if got := (*Config)(nil).Merge(MergeOptions{Language: "cg"}); got.Language != "cg" {
		t.Errorf("nil Merge() language = %q", got.Language)
	}
}
