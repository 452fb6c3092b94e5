// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"strconv"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rtss/ir"
)

// VertexInput describes one vertex attribute read by a vertex program.
type VertexInput struct {
	Param *ir.Parameter

	// Attribute is the render system attribute name ("vertex", "normal", "uv0").
	Attribute string

	// SemanticName is the register semantic ("POSITION", "TEXCOORD0").
	SemanticName string

	// Location is the attribute location, assigned in declaration order.
	Location uint32

	Format gputypes.VertexFormat
}

// VertexInputs describes the inputs of a vertex program.
func VertexInputs(prog *ir.Program) ([]VertexInput, error) {
	inputs := prog.Inputs()
	out := make([]VertexInput, 0, len(inputs))
	for i, p := range inputs {
		format, ok := vertexFormat(p.Type)
		if !ok {
			return nil, ir.NewError(ir.ErrUnsupportedContent, prog.Stage,
				fmt.Sprintf("vertex input %s has no attribute format for %s", p.Name, p.Type))
		}
		attr, err := AttributeName(p)
		if err != nil {
			return nil, err
		}
		sem, err := SemanticName(p)
		if err != nil {
			return nil, err
		}
		out = append(out, VertexInput{
			Param:        p,
			Attribute:    attr,
			SemanticName: sem,
			Location:     uint32(i), //nolint:gosec // bounded by the input count
			Format:       format,
		})
	}
	return out, nil
}

func vertexFormat(t ir.Type) (gputypes.VertexFormat, bool) {
	switch t {
	case ir.TypeFloat1:
		return gputypes.VertexFormatFloat32, true
	case ir.TypeFloat2:
		return gputypes.VertexFormatFloat32x2, true
	case ir.TypeFloat3:
		return gputypes.VertexFormatFloat32x3, true
	case ir.TypeFloat4:
		return gputypes.VertexFormatFloat32x4, true
	case ir.TypeInt1:
		return gputypes.VertexFormatSint32, true
	default:
		return 0, false
	}
}

// AttributeName returns the render system attribute name of a vertex input.
func AttributeName(p *ir.Parameter) (string, error) {
	switch p.Semantic {
	case ir.SemanticPosition:
		return "vertex", nil
	case ir.SemanticNormal:
		return "normal", nil
	case ir.SemanticTangent:
		return "tangent", nil
	case ir.SemanticBinormal:
		return "binormal", nil
	case ir.SemanticBlendWeights:
		return "blendWeights", nil
	case ir.SemanticBlendIndices:
		return "blendIndices", nil
	case ir.SemanticColor:
		if p.Index == 0 {
			return "colour", nil
		}
		return "secondary_colour", nil
	case ir.SemanticTexCoord:
		return "uv" + strconv.Itoa(p.Index), nil
	default:
		return "", ir.NewError(ir.ErrUnsupportedSemantic, ir.StageVertex,
			fmt.Sprintf("vertex input %s has semantic %s", p.Name, p.Semantic))
	}
}

// SemanticName returns the register semantic of p in the Direct3D naming.
func SemanticName(p *ir.Parameter) (string, error) {
	switch p.Semantic {
	case ir.SemanticPosition:
		return "POSITION", nil
	case ir.SemanticNormal:
		return "NORMAL", nil
	case ir.SemanticTangent:
		return "TANGENT", nil
	case ir.SemanticBinormal:
		return "BINORMAL", nil
	case ir.SemanticBlendWeights:
		return "BLENDWEIGHT", nil
	case ir.SemanticBlendIndices:
		return "BLENDINDICES", nil
	case ir.SemanticColor:
		return "COLOR" + strconv.Itoa(p.Index), nil
	case ir.SemanticTexCoord:
		return "TEXCOORD" + strconv.Itoa(p.Index), nil
	default:
		return "", ir.NewError(ir.ErrUnsupportedSemantic, ir.StageVertex,
			fmt.Sprintf("parameter %s has semantic %s", p.Name, p.Semantic))
	}
}

// WrittenInputs returns the inputs of prog that some invocation writes.
// Writers declare a mutable copy for each of them.
func WrittenInputs(prog *ir.Program) []*ir.Parameter {
	written := make(map[*ir.Parameter]bool)
	for _, inv := range prog.Invocations() {
		if dst, ok := inv.Destination(); ok && dst.Param != nil && dst.Param.Usage == ir.UsageInput {
			written[dst.Param] = true
		}
	}
	var out []*ir.Parameter
	for _, p := range prog.Inputs() {
		if written[p] {
			out = append(out, p)
		}
	}
	return out
}
