// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package script holds the material-script property model consumed by sub
// render state factories, and the writer that serializes render states back
// into an rtshader_system block.
package script

import (
	"strconv"
	"strings"
)

// Value is one whitespace-separated token following a property name.
type Value struct {
	text string
}

// NewValue returns a value holding text.
func NewValue(text string) Value { return Value{text: text} }

// String returns the token text.
func (v Value) String() string { return v.text }

// Real returns the token parsed as a real number.
func (v Value) Real() (float64, bool) {
	f, err := strconv.ParseFloat(v.text, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Int returns the token parsed as a non-negative integer.
func (v Value) Int() (int, bool) {
	n, err := strconv.Atoi(v.text)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Bool returns the token parsed as true/false, on/off or yes/no.
func (v Value) Bool() (value, ok bool) {
	switch strings.ToLower(v.text) {
	case "true", "on", "yes":
		return true, true
	case "false", "off", "no":
		return false, true
	}
	return false, false
}

// Property is a named property node with an ordered list of values.
type Property struct {
	Name   string
	Values []Value
	// Line is the 1-based source line, or 0 when the property was built in code.
	Line int
}

// NewProperty builds a property from its name and value tokens.
func NewProperty(name string, values ...string) *Property {
	p := &Property{Name: name, Values: make([]Value, len(values))}
	for i, v := range values {
		p.Values[i] = NewValue(v)
	}
	return p
}

// Value returns the i-th value, or an empty value when i is out of range.
func (p *Property) Value(i int) Value {
	if i < 0 || i >= len(p.Values) {
		return Value{}
	}
	return p.Values[i]
}

func (p *Property) String() string {
	var sb strings.Builder
	sb.WriteString(p.Name)
	for _, v := range p.Values {
		sb.WriteByte(' ')
		sb.WriteString(v.text)
	}
	return sb.String()
}
