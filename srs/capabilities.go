// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import "log/slog"

// Capabilities describes the limits of the device programs are generated for.
type Capabilities struct {
	// MaxCalculableBones is the largest bone count skinning may address.
	MaxCalculableBones int

	// MaxTexCoordSlots bounds the interpolator registers a pass may use.
	MaxTexCoordSlots int

	// TargetLanguage is the writer language id, e.g. "hlsl" or "wgsl".
	TargetLanguage string
}

// DefaultCapabilities returns the limits of a shader model 4 class device.
func DefaultCapabilities() Capabilities {
	return Capabilities{
		MaxCalculableBones: 80,
		MaxTexCoordSlots:   8,
		TargetLanguage:     "hlsl",
	}
}

// Context carries generation settings into factories and sub render states.
type Context struct {
	Caps Capabilities

	// PackVaryings shares interpolator registers between small varyings.
	PackVaryings bool

	// Logger overrides the package logger when non-nil.
	Logger *slog.Logger
}

// NewContext returns a context for caps with varying packing enabled.
func NewContext(caps Capabilities) *Context {
	return &Context{Caps: caps, PackVaryings: true}
}

// Log returns the logger generation should use.
func (c *Context) Log() *slog.Logger {
	if c == nil || c.Logger == nil {
		return Logger()
	}
	return c.Logger
}
