// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package hlsl

import (
	"fmt"
	"strings"
)

// namer generates unique identifiers for HLSL output.
// HLSL identifiers are compared case-insensitively here so that names also
// stay distinct for the legacy compilers.
type namer struct {
	// usedNames holds the lowercase form of every generated name.
	usedNames map[string]struct{}
	counter   uint32
}

// newNamer creates a namer with the given names already taken, typically
// the helper functions emitted in front of the entry point.
func newNamer(reserved ...string) *namer {
	n := &namer{usedNames: make(map[string]struct{})}
	for _, name := range reserved {
		n.reserve(name)
	}
	return n
}

// call generates a unique name based on the given base.
// It escapes reserved keywords and adds numeric suffixes if needed.
func (n *namer) call(base string) string {
	escaped := Escape(base)
	lower := strings.ToLower(escaped)
	if !n.isUsedLower(lower) {
		n.usedNames[lower] = struct{}{}
		return escaped
	}
	for {
		n.counter++
		candidate := fmt.Sprintf("%s_%d", escaped, n.counter)
		lower := strings.ToLower(candidate)
		if !n.isUsedLower(lower) {
			n.usedNames[lower] = struct{}{}
			return candidate
		}
	}
}

func (n *namer) isUsedLower(lowerName string) bool {
	_, used := n.usedNames[lowerName]
	return used
}

// reserve marks a name as used without returning it.
func (n *namer) reserve(name string) {
	n.usedNames[strings.ToLower(name)] = struct{}{}
}
