// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package ffp

import (
	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeTransform is the type of the Transform state.
const TypeTransform = "FFP_Transform"

// Transform projects the object space position to clip space.
type Transform struct {
	wvp, position, clip *ir.Parameter
}

// NewTransform returns a transform stage.
func NewTransform() *Transform { return &Transform{} }

func (t *Transform) Type() string        { return TypeTransform }
func (t *Transform) ExecutionOrder() int { return srs.OrderTransform }

func (t *Transform) PreAddToRenderState(*srs.Context, srs.Pass) error { return nil }

func (t *Transform) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	vs := srs.NewResolver(set.Vertex)
	t.wvp = vs.Auto(ir.AutoWorldViewProjMatrix, 0)
	t.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	t.clip = vs.Output(ir.SemanticPosition, 0, ir.ContentPositionProjectiveSpace, ir.TypeFloat4)
	return vs.Err()
}

func (t *Transform) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	set.Vertex.AddDependency(shaderlib.Common)
	return nil
}

func (t *Transform) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	f := ir.NewFunction(TypeTransform, srs.OrderTransform)
	f.AddInvocation(ir.OpTransform, ir.NewIn(t.wvp), ir.NewIn(t.position), ir.NewOut(t.clip))
	set.Vertex.AddFunction(f)
	return nil
}

// TransformFactory handles "transform_stage ffp".
type TransformFactory struct{}

func (TransformFactory) Type() string            { return TypeTransform }
func (TransformFactory) New() srs.SubRenderState { return NewTransform() }

func (f TransformFactory) CreateInstance(prop *script.Property, _ srs.Pass, tr *srs.Translator) srs.SubRenderState {
	return simpleStage(f, "transform_stage", prop, tr)
}

func (TransformFactory) WriteInstance(w *script.Writer, _ srs.SubRenderState, _, _ srs.Pass) {
	w.WriteProperty("transform_stage", valueFFP)
}
