// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes sub render state errors.
type ErrorKind uint8

const (
	// ErrScriptValidation indicates a malformed script property.
	ErrScriptValidation ErrorKind = iota

	// ErrDuplicateState indicates a second single-instance state of one type.
	ErrDuplicateState

	// ErrDuplicateFactory indicates two factories registered for one type.
	ErrDuplicateFactory

	// ErrUnknownType indicates a state type with no registered factory.
	ErrUnknownType

	// ErrInvalidPhase indicates an operation the pipeline phase does not allow.
	ErrInvalidPhase

	// ErrUnsupported indicates a pass configuration a state cannot render.
	ErrUnsupported
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrScriptValidation:
		return "ScriptValidation"
	case ErrDuplicateState:
		return "DuplicateState"
	case ErrDuplicateFactory:
		return "DuplicateFactory"
	case ErrUnknownType:
		return "UnknownType"
	case ErrInvalidPhase:
		return "InvalidPhase"
	case ErrUnsupported:
		return "Unsupported"
	default:
		return "Unknown"
	}
}

// Error is a sub render state error.
type Error struct {
	Kind    ErrorKind
	Type    string // sub render state type, if any
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Type == "" {
		return fmt.Sprintf("srs: %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("srs: %s %s: %s", e.Type, e.Kind, e.Message)
}

// NewError creates an error for state type typ.
func NewError(kind ErrorKind, typ, message string) *Error {
	return &Error{Kind: kind, Type: typ, Message: message}
}

// Errorf creates an ErrUnsupported error for state type typ.
func Errorf(typ, format string, args ...any) *Error {
	return NewError(ErrUnsupported, typ, fmt.Sprintf(format, args...))
}

// IsKind reports whether err wraps an srs error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Diagnostic reports a script property a factory rejected.
type Diagnostic struct {
	Line     int // 1-based script line, 0 when unknown
	Property string
	Message  string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Line > 0 {
		return fmt.Sprintf("script:%d: %s: %s", d.Line, d.Property, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Property, d.Message)
}
