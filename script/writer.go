// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package script

import (
	"strings"
)

// SectionName is the material script block holding render state properties.
const SectionName = "rtshader_system"

// Writer serializes properties into indented script sections.
type Writer struct {
	out    strings.Builder
	indent int
}

// NewWriter creates an empty writer.
func NewWriter() *Writer {
	return &Writer{}
}

// BeginSection opens a named block.
func (w *Writer) BeginSection(name string) {
	w.writeIndent()
	w.out.WriteString(name)
	w.out.WriteByte('\n')
	w.writeIndent()
	w.out.WriteString("{\n")
	w.indent++
}

// EndSection closes the innermost block.
func (w *Writer) EndSection() {
	if w.indent == 0 {
		panic("script: EndSection without BeginSection")
	}
	w.indent--
	w.writeIndent()
	w.out.WriteString("}\n")
}

// WriteProperty writes one property line.
func (w *Writer) WriteProperty(name string, values ...string) {
	w.writeIndent()
	w.out.WriteString(name)
	for _, v := range values {
		w.out.WriteByte(' ')
		w.out.WriteString(v)
	}
	w.out.WriteByte('\n')
}

// String returns everything written so far.
func (w *Writer) String() string {
	return w.out.String()
}

func (w *Writer) writeIndent() {
	for i := 0; i < w.indent; i++ {
		w.out.WriteByte('\t')
	}
}
