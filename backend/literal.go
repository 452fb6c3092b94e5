// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"strconv"
	"strings"
)

// FormatFloat formats v as a float literal that every target parses as a
// floating-point value: the result always carries a decimal point.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// Swizzle returns the member selector for comps of a vector of width
// components, or "" when comps selects the whole vector in order.
func Swizzle(comps []int, width int) string {
	if len(comps) == width {
		identity := true
		for i, c := range comps {
			if c != i {
				identity = false
				break
			}
		}
		if identity {
			return ""
		}
	}
	var sb strings.Builder
	sb.WriteByte('.')
	for _, c := range comps {
		sb.WriteByte("xyzw"[c])
	}
	return sb.String()
}
