// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package config loads rtssc settings from a JSON file.
//
// The file is named rtss.json or .rtssrc and is searched for in the starting
// directory and its parents. Every field is optional.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gogpu/rtss/material"
	"github.com/gogpu/rtss/srs"
)

// Config is the configuration file structure.
type Config struct {
	// Language is the writer id programs are emitted in.
	Language string `json:"language,omitempty"`

	// MaxCalculableBones overrides the device bone limit.
	MaxCalculableBones *int `json:"maxCalculableBones,omitempty"`

	// MaxTexCoordSlots overrides the interpolator register limit.
	MaxTexCoordSlots *int `json:"maxTexCoordSlots,omitempty"`

	// PackVaryings shares registers between small varyings (default true).
	PackVaryings *bool `json:"packVaryings,omitempty"`

	// Pass describes the material pass programs are generated for.
	Pass *material.Desc `json:"pass,omitempty"`
}

// FileNames are the config file names searched for, in order of preference.
var FileNames = []string{
	"rtss.json",
	".rtssrc",
	".rtssrc.json",
}

// Load searches for a config file starting from startDir and walking up to
// the filesystem root. It returns a nil Config when none is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range FileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile reads the configuration at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MaxCalculableBones != nil && *c.MaxCalculableBones < 0 {
		return errors.New("maxCalculableBones is negative")
	}
	if c.MaxTexCoordSlots != nil && (*c.MaxTexCoordSlots < 1 || *c.MaxTexCoordSlots > 8) {
		return fmt.Errorf("maxTexCoordSlots %d outside [1, 8]", *c.MaxTexCoordSlots)
	}
	return nil
}

// Capabilities returns the default capabilities with the configured
// overrides applied. A nil Config yields the defaults.
func (c *Config) Capabilities() srs.Capabilities {
	caps := srs.DefaultCapabilities()
	if c == nil {
		return caps
	}
	if c.Language != "" {
		caps.TargetLanguage = c.Language
	}
	if c.MaxCalculableBones != nil {
		caps.MaxCalculableBones = *c.MaxCalculableBones
	}
	if c.MaxTexCoordSlots != nil {
		caps.MaxTexCoordSlots = *c.MaxTexCoordSlots
	}
	return caps
}

// Packing reports whether varyings are packed.
func (c *Config) Packing() bool {
	if c == nil || c.PackVaryings == nil {
		return true
	}
	return *c.PackVaryings
}

// MergeOptions holds command line settings. Nil and empty fields were not
// given on the command line.
type MergeOptions struct {
	Language     string
	PackVaryings *bool
}

// Merge returns a copy of c with the command line settings applied on top.
func (c *Config) Merge(cli MergeOptions) *Config {
	var out Config
	if c != nil {
		out = *c
	}
	if cli.Language != "" {
		out.Language = cli.Language
	}
	if cli.PackVaryings != nil {
		out.PackVaryings = cli.PackVaryings
	}
	return &out
}
