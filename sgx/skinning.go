// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package sgx

import (
	"fmt"
	"strconv"

	"github.com/gogpu/rtss/ir"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/shaderlib"
	"github.com/gogpu/rtss/srs"
)

// TypeHardwareSkinning is the type of the HardwareSkinning state.
const TypeHardwareSkinning = "SGX_HardwareSkinning"

// Skinning limits independent of the device.
const (
	MaxBones   = 256
	MaxWeights = 4
)

// orderSkinning runs the skinning code before every other vertex stage.
const orderSkinning = srs.OrderTransform - 1

// SkinningType selects how bone transforms are blended.
type SkinningType uint8

const (
	SkinningLinear SkinningType = iota
	SkinningDualQuaternion
)

func (t SkinningType) String() string {
	if t == SkinningDualQuaternion {
		return "dual_quaternion"
	}
	return "linear"
}

// HardwareSkinning blends the vertex position and normal by up to four
// bone transforms. The skinned values replace the object space inputs, so
// later stages transform the deformed vertex.
type HardwareSkinning struct {
	boneCount, weightCount int
	skinning               SkinningType
	antipodality           bool
	scaleShear             bool
	doBones                bool

	indices, weights *ir.Parameter
	position, normal *ir.Parameter
	inverseWorld     *ir.Parameter

	// linear
	matrices *ir.Parameter
	// dual quaternion
	real, dual, scaleShearMatrices *ir.Parameter

	blendPos, bonePos       *ir.Parameter
	blendNormal, boneNormal *ir.Parameter
	blendReal, boneReal     *ir.Parameter
	blendDual, boneDual     *ir.Parameter
	weight                  *ir.Parameter
}

// NewHardwareSkinning returns a pass-through skinning stage; configure it
// with SetParams.
func NewHardwareSkinning() *HardwareSkinning { return &HardwareSkinning{} }

func (s *HardwareSkinning) Type() string        { return TypeHardwareSkinning }
func (s *HardwareSkinning) ExecutionOrder() int { return srs.OrderTransform }

// SetParams configures the skinning. Unsupported counts disable the bone
// calculations instead of failing.
func (s *HardwareSkinning) SetParams(bones, weights int, typ SkinningType, antipodality, scaleShear bool) {
	s.boneCount, s.weightCount = bones, weights
	s.skinning = typ
	s.antipodality, s.scaleShear = antipodality, scaleShear
	s.doBones = s.downgrade(0) == ""
}

// downgrade returns why the bone calculations cannot run, or "" when they
// can. maxBones of zero means the device reports no limit.
func (s *HardwareSkinning) downgrade(maxBones int) string {
	switch {
	case s.boneCount <= 0 || s.boneCount > MaxBones:
		return fmt.Sprintf("bone count %d outside [1, %d]", s.boneCount, MaxBones)
	case s.weightCount <= 0 || s.weightCount > MaxWeights:
		return fmt.Sprintf("weight count %d outside [1, %d]", s.weightCount, MaxWeights)
	case maxBones > 0 && s.boneCount > maxBones:
		return fmt.Sprintf("bone count %d exceeds the device limit of %d", s.boneCount, maxBones)
	}
	return ""
}

// DoBoneCalculations reports whether the stage transforms vertices. When
// false the stage contributes nothing to the programs.
func (s *HardwareSkinning) DoBoneCalculations() bool { return s.doBones }

func (s *HardwareSkinning) BoneCount() int             { return s.boneCount }
func (s *HardwareSkinning) WeightCount() int           { return s.weightCount }
func (s *HardwareSkinning) SkinningType() SkinningType { return s.skinning }

func (s *HardwareSkinning) PreAddToRenderState(ctx *srs.Context, pass srs.Pass) error {
	caps := srs.DefaultCapabilities()
	if ctx != nil {
		caps = ctx.Caps
	}
	reason := s.downgrade(caps.MaxCalculableBones)
	s.doBones = reason == ""
	if !s.doBones {
		ctx.Log().Info("sgx: hardware skinning disabled", "pass", pass.Name(), "reason", reason)
		return nil
	}
	pass.SetShadowCasterMaterial(fmt.Sprintf("rtss/skinning/%s_%d_%d", s.skinning, s.boneCount, s.weightCount))
	return nil
}

func (s *HardwareSkinning) ResolveParameters(_ *srs.Context, set *ir.ProgramSet) error {
	if !s.doBones {
		return nil
	}
	vs := srs.NewResolver(set.Vertex)
	s.indices = vs.Input(ir.SemanticBlendIndices, 0, ir.ContentBlendIndices, ir.TypeFloat4)
	s.weights = vs.Input(ir.SemanticBlendWeights, 0, ir.ContentBlendWeights, ir.TypeFloat4)
	s.position = vs.Input(ir.SemanticPosition, 0, ir.ContentPositionObjectSpace, ir.TypeFloat4)
	s.normal = vs.Input(ir.SemanticNormal, 0, ir.ContentNormalObjectSpace, ir.TypeFloat3)
	s.inverseWorld = vs.Auto(ir.AutoInverseWorldMatrix, 0)

	s.blendPos = vs.NamedLocal("blendPosition", ir.TypeFloat4)
	s.bonePos = vs.NamedLocal("bonePosition", ir.TypeFloat4)
	s.blendNormal = vs.NamedLocal("blendNormal", ir.TypeFloat3)
	s.boneNormal = vs.NamedLocal("boneNormal", ir.TypeFloat3)

	if s.skinning == SkinningLinear {
		s.matrices = vs.AutoArray(ir.AutoWorldMatrixArray, s.boneCount)
		return vs.Err()
	}
	s.real = vs.AutoArray(ir.AutoWorldDualQuaternionRealArray, s.boneCount)
	s.dual = vs.AutoArray(ir.AutoWorldDualQuaternionDualArray, s.boneCount)
	s.blendReal = vs.NamedLocal("blendDQReal", ir.TypeFloat4)
	s.boneReal = vs.NamedLocal("boneDQReal", ir.TypeFloat4)
	s.blendDual = vs.NamedLocal("blendDQDual", ir.TypeFloat4)
	s.boneDual = vs.NamedLocal("boneDQDual", ir.TypeFloat4)
	if s.antipodality {
		s.weight = vs.NamedLocal("boneWeight", ir.TypeFloat1)
	}
	if s.scaleShear {
		s.scaleShearMatrices = vs.AutoArray(ir.AutoWorldScaleShearMatrixArray, s.boneCount)
	}
	return vs.Err()
}

func (s *HardwareSkinning) ResolveDependencies(_ *srs.Context, set *ir.ProgramSet) error {
	if !s.doBones {
		return nil
	}
	set.Vertex.AddDependency(shaderlib.HardwareSkinning)
	if s.skinning == SkinningDualQuaternion {
		set.Vertex.AddDependency(shaderlib.DualQuaternion)
	}
	return nil
}

func (s *HardwareSkinning) AddFunctionInvocations(_ *srs.Context, set *ir.ProgramSet) error {
	if !s.doBones {
		return nil
	}
	f := ir.NewFunction(TypeHardwareSkinning, orderSkinning)
	if s.skinning == SkinningLinear {
		s.blendMatrices(f, s.matrices, ir.NewIn(s.position), ir.NewIn(s.normal))
	} else {
		s.blendDualQuaternions(f)
	}
	// Back to object space.
	f.AddInvocation(ir.OpTransform, ir.NewIn(s.inverseWorld), ir.NewIn(s.blendPos), ir.NewOut(s.position))
	f.AddInvocation(shaderlib.FuncTransformNormal, ir.NewIn(s.inverseWorld), ir.NewIn(s.blendNormal), ir.NewOut(s.normal))
	set.Vertex.AddFunction(f)
	return nil
}

// bone returns the operands selecting influence i: the bone index and its
// weight.
func (s *HardwareSkinning) bone(i int) (index, weight ir.Operand) {
	m := ir.ComponentMask(i)
	return ir.NewIn(s.indices).WithMask(m), ir.NewIn(s.weights).WithMask(m)
}

// blendMatrices writes the weighted sum of the bone matrices applied to
// pos and normal into blendPos and blendNormal.
func (s *HardwareSkinning) blendMatrices(f *ir.Function, matrices *ir.Parameter, pos, normal ir.Operand) {
	for i := range s.weightCount {
		index, weight := s.bone(i)
		m := ir.NewIn(matrices).WithIndex(index)
		f.AddInvocation(ir.OpTransform, m, pos, ir.NewOut(s.bonePos))
		f.AddInvocation(shaderlib.FuncTransformNormal, m, normal, ir.NewOut(s.boneNormal))
		accumulate(f, i, weight, s.bonePos, s.blendPos)
		accumulate(f, i, weight, s.boneNormal, s.blendNormal)
	}
}

// accumulate adds bone*weight to sum, initializing sum for the first bone.
func accumulate(f *ir.Function, i int, weight ir.Operand, bone, sum *ir.Parameter) {
	if i == 0 {
		f.AddInvocation(ir.OpModulate, ir.NewIn(bone), weight, ir.NewOut(sum))
		return
	}
	f.AddInvocation(ir.OpModulate, ir.NewIn(bone), weight, ir.NewOut(bone))
	f.AddInvocation(ir.OpAdd, ir.NewIn(sum), ir.NewIn(bone), ir.NewOut(sum))
}

func (s *HardwareSkinning) blendDualQuaternions(f *ir.Function) {
	pos, normal := ir.NewIn(s.position), ir.NewIn(s.normal)
	if s.scaleShear {
		s.blendMatrices(f, s.scaleShearMatrices, pos, normal)
		pos, normal = ir.NewIn(s.blendPos), ir.NewIn(s.blendNormal)
	}

	firstIndex, _ := s.bone(0)
	firstReal := ir.NewIn(s.real).WithIndex(firstIndex)
	for i := range s.weightCount {
		index, weight := s.bone(i)
		qReal := ir.NewIn(s.real).WithIndex(index)
		qDual := ir.NewIn(s.dual).WithIndex(index)
		if s.antipodality && i > 0 {
			f.AddInvocation(shaderlib.FuncAntipodalityAdjustment, firstReal, qReal, weight, ir.NewOut(s.weight))
			weight = ir.NewIn(s.weight)
		}
		if i == 0 {
			f.AddInvocation(ir.OpModulate, qReal, weight, ir.NewOut(s.blendReal))
			f.AddInvocation(ir.OpModulate, qDual, weight, ir.NewOut(s.blendDual))
			continue
		}
		f.AddInvocation(ir.OpModulate, qReal, weight, ir.NewOut(s.boneReal))
		f.AddInvocation(ir.OpAdd, ir.NewIn(s.blendReal), ir.NewIn(s.boneReal), ir.NewOut(s.blendReal))
		f.AddInvocation(ir.OpModulate, qDual, weight, ir.NewOut(s.boneDual))
		f.AddInvocation(ir.OpAdd, ir.NewIn(s.blendDual), ir.NewIn(s.boneDual), ir.NewOut(s.blendDual))
	}

	if !s.scaleShear {
		f.AddInvocation(ir.OpAssign, pos, ir.NewOut(s.blendPos))
	}
	f.AddInvocation(shaderlib.FuncDualQuaternionTransform,
		ir.NewIn(s.blendReal), ir.NewIn(s.blendDual), ir.NewIn(s.blendPos).WithMask(ir.MaskXYZ),
		ir.NewOut(s.blendPos).WithMask(ir.MaskXYZ))
	f.AddInvocation(shaderlib.FuncDualQuaternionRotate, ir.NewIn(s.blendReal), normal, ir.NewOut(s.blendNormal))
}

// HardwareSkinningFactory handles "hardware_skinning".
type HardwareSkinningFactory struct{}

func (HardwareSkinningFactory) Type() string            { return TypeHardwareSkinning }
func (HardwareSkinningFactory) New() srs.SubRenderState { return NewHardwareSkinning() }

func (f HardwareSkinningFactory) CreateInstance(prop *script.Property, pass srs.Pass, tr *srs.Translator) srs.SubRenderState {
	if prop.Name != "hardware_skinning" {
		return nil
	}
	if n := len(prop.Values); n < 2 || n > 5 {
		tr.Reportf(prop, "expected 2 to 5 values, got %d", n)
		return nil
	}
	bones, ok := prop.Value(0).Int()
	if !ok {
		tr.Reportf(prop, "invalid bone count %q", prop.Value(0))
		return nil
	}
	weights, ok := prop.Value(1).Int()
	if !ok {
		tr.Reportf(prop, "invalid weight count %q", prop.Value(1))
		return nil
	}
	typ := SkinningLinear
	if len(prop.Values) > 2 {
		switch v := prop.Value(2).String(); v {
		case "linear":
		case "dual_quaternion":
			typ = SkinningDualQuaternion
		default:
			tr.Reportf(prop, "unknown skinning type %q", v)
			return nil
		}
	}
	var flags [2]bool
	for i := range flags {
		if len(prop.Values) <= 3+i {
			break
		}
		if flags[i], ok = prop.Value(3 + i).Bool(); !ok {
			tr.Reportf(prop, "invalid boolean %q", prop.Value(3+i))
			return nil
		}
	}

	s := srs.CreateOrRetrieveInstance(tr, f).(*HardwareSkinning)
	s.SetParams(bones, weights, typ, flags[0], flags[1])
	if reason := s.downgrade(0); reason != "" {
		tr.Context().Log().Info("sgx: hardware skinning disabled", "pass", pass.Name(), "reason", reason)
	}
	return s
}

func (HardwareSkinningFactory) WriteInstance(w *script.Writer, state srs.SubRenderState, _, _ srs.Pass) {
	s := state.(*HardwareSkinning)
	w.WriteProperty("hardware_skinning",
		strconv.Itoa(s.boneCount), strconv.Itoa(s.weightCount), s.skinning.String(),
		strconv.FormatBool(s.antipodality), strconv.FormatBool(s.scaleShear))
}
