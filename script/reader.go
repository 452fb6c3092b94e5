// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package script

import (
	"fmt"
	"strings"
)

// ParseError reports a malformed script line.
type ParseError struct {
	Line    int
	Message string
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	return fmt.Sprintf("script:%d: %s", e.Line, e.Message)
}

// Parse reads the properties of rtshader_system blocks.
//
// Text outside a block is also accepted as bare property lines so that a
// single property can be written without the enclosing section. Comments
// start with "//" and run to the end of the line.
func Parse(text string) ([]*Property, error) {
	var (
		props []*Property
		depth int
		open  bool // section header seen, waiting for '{'
	)
	for i, line := range strings.Split(text, "\n") {
		lineNo := i + 1
		if c := strings.Index(line, "//"); c >= 0 {
			line = line[:c]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch {
		case fields[0] == SectionName && len(fields) == 1:
			if depth > 0 {
				return nil, &ParseError{Line: lineNo, Message: "nested " + SectionName}
			}
			open = true
		case fields[0] == "{" && len(fields) == 1:
			if !open {
				return nil, &ParseError{Line: lineNo, Message: "'{' without section name"}
			}
			open = false
			depth++
		case fields[0] == "}" && len(fields) == 1:
			if depth == 0 {
				return nil, &ParseError{Line: lineNo, Message: "unbalanced '}'"}
			}
			depth--
		default:
			if open {
				return nil, &ParseError{Line: lineNo, Message: "expected '{' after " + SectionName}
			}
			p := NewProperty(fields[0], fields[1:]...)
			p.Line = lineNo
			props = append(props, p)
		}
	}
	if open || depth > 0 {
		return nil, &ParseError{Line: strings.Count(text, "\n") + 1, Message: "unterminated " + SectionName}
	}
	return props, nil
}
