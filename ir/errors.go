package ir

import (
	"errors"
	"fmt"
)

// ErrorKind categorizes generation errors.
type ErrorKind uint8

const (
	// ErrTypeMismatch indicates a parameter re-resolved with a different type.
	ErrTypeMismatch ErrorKind = iota

	// ErrSemanticConflict indicates two contents bound to one semantic slot.
	ErrSemanticConflict

	// ErrUnsupportedSemantic indicates a semantic that is not valid for the stage and usage.
	ErrUnsupportedSemantic

	// ErrUnlinkedVarying indicates a fragment input with no matching vertex output.
	ErrUnlinkedVarying

	// ErrRegisterLimit indicates more packed varyings than interpolator slots.
	ErrRegisterLimit

	// ErrMergeCapacity indicates a register exceeding four components or four sources.
	ErrMergeCapacity

	// ErrInvalidInvocation indicates an invocation that cannot be lowered.
	ErrInvalidInvocation

	// ErrUnsupportedContent indicates a content a writer cannot bind.
	ErrUnsupportedContent

	// ErrUnknownLibrary indicates a dependency on a helper library that does not exist.
	ErrUnknownLibrary
)

// String returns a human-readable error kind name.
func (k ErrorKind) String() string {
	switch k {
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrSemanticConflict:
		return "SemanticConflict"
	case ErrUnsupportedSemantic:
		return "UnsupportedSemantic"
	case ErrUnlinkedVarying:
		return "UnlinkedVarying"
	case ErrRegisterLimit:
		return "RegisterLimit"
	case ErrMergeCapacity:
		return "MergeCapacity"
	case ErrInvalidInvocation:
		return "InvalidInvocation"
	case ErrUnsupportedContent:
		return "UnsupportedContent"
	case ErrUnknownLibrary:
		return "UnknownLibrary"
	default:
		return "Unknown"
	}
}

// Error is a generation error: the programs of a pass cannot be produced.
type Error struct {
	Kind    ErrorKind
	Stage   Stage
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s program: %s: %s", e.Stage, e.Kind, e.Message)
}

// NewError creates a generation error for stage.
func NewError(kind ErrorKind, stage Stage, message string) *Error {
	return &Error{Kind: kind, Stage: stage, Message: message}
}

func newError(kind ErrorKind, stage Stage, format string, args ...any) *Error {
	return NewError(kind, stage, fmt.Sprintf(format, args...))
}

// IsGenerationError reports whether err wraps a generation error.
func IsGenerationError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}

// IsKind reports whether err wraps a generation error of kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
