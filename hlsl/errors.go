// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"

	"github.com/gogpu/rtss/ir"
)

// ErrorKind categorizes HLSL writer errors.
type ErrorKind uint8

const (
	// ErrInvalidShaderModel indicates an invalid or unsupported shader model.
	ErrInvalidShaderModel ErrorKind = iota

	// ErrUnsupportedType indicates a type that cannot be declared in HLSL.
	ErrUnsupportedType

	// ErrUnsupportedFeature indicates a construct the target model cannot express.
	ErrUnsupportedFeature
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidShaderModel:
		return "InvalidShaderModel"
	case ErrUnsupportedType:
		return "UnsupportedType"
	case ErrUnsupportedFeature:
		return "UnsupportedFeature"
	default:
		return "Unknown"
	}
}

// Error represents an HLSL writer error.
type Error struct {
	Kind    ErrorKind
	Stage   ir.Stage
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("hlsl %s (%s): %s", e.Kind, e.Stage, e.Message)
}

// NewError creates a new HLSL error.
func NewError(kind ErrorKind, stage ir.Stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}
