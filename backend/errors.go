// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes backend errors.
type ErrorKind uint8

const (
	// ErrBackendUnsupported indicates no writer is registered for a language.
	ErrBackendUnsupported ErrorKind = iota

	// ErrDuplicateLanguage indicates two factories for the same language.
	ErrDuplicateLanguage
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrBackendUnsupported:
		return "BackendUnsupported"
	case ErrDuplicateLanguage:
		return "DuplicateLanguage"
	default:
		return "Unknown"
	}
}

// Error represents a writer registry error.
type Error struct {
	Kind     ErrorKind
	Language string
	Message  string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("backend %s %q: %s", e.Kind, e.Language, e.Message)
}

// IsUnsupported reports whether err wraps an ErrBackendUnsupported error.
func IsUnsupported(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == ErrBackendUnsupported
}
