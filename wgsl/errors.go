// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package wgsl

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/gogpu/rtss/ir"
)

// ValidationError reports generated WGSL that naga rejected.
type ValidationError struct {
	Stage   ir.Stage
	Message string
	Line    int    // 1-based line in Source, 0 when unknown
	Column  int    // 1-based column, 0 when unknown
	Source  string // generated code, for context display
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("wgsl: %s program rejected: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("wgsl: %s program rejected at %d:%d: %s", e.Stage, e.Line, e.Column, e.Message)
}

// FormatWithContext returns the error message with the offending line of
// the generated source and a caret under the reported column.
func (e *ValidationError) FormatWithContext() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line < 1 || e.Line > len(lines) {
		return e.Error()
	}
	line := lines[e.Line-1]
	col := min(max(e.Column, 1), len(line)+1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "error: %s\n", e.Message)
	fmt.Fprintf(&sb, "  --> %s program line %d:%d\n", e.Stage, e.Line, col)
	sb.WriteString("   |\n")
	fmt.Fprintf(&sb, "%3d| %s\n", e.Line, line)
	fmt.Fprintf(&sb, "   | %s^\n", strings.Repeat(" ", col-1))
	return sb.String()
}

// locationPattern matches the "line:column: " prefix of naga source errors.
var locationPattern = regexp.MustCompile(`(\d+):(\d+): `)

func newValidationError(stage ir.Stage, source string, err error) *ValidationError {
	e := &ValidationError{Stage: stage, Message: err.Error(), Source: source}
	if m := locationPattern.FindStringSubmatchIndex(e.Message); m != nil {
		e.Line, _ = strconv.Atoi(e.Message[m[2]:m[3]])
		e.Column, _ = strconv.Atoi(e.Message[m[4]:m[5]])
		e.Message = e.Message[:m[0]] + e.Message[m[1]:]
	}
	return e
}
