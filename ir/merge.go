package ir

import (
	"fmt"
	"strconv"
)

const (
	// MaxMergeComponents is the float capacity of one interpolator register.
	MaxMergeComponents = 4

	// MaxMergeSources is the number of parameters one register may hold.
	MaxMergeSources = 4
)

// MergeParameter packs up to four small float parameters into the
// components of one interpolator register.
//
// Sources are laid out in insertion order: the i-th accepted source occupies
// the destination components right after the previous one. The destination
// parameter is created on first request and never changes afterwards.
type MergeParameter struct {
	srcParams [MaxMergeSources]*Parameter
	srcMasks  [MaxMergeSources]Mask
	dstMasks  [MaxMergeSources]Mask
	srcCount  int
	usedFloat int

	dst *Parameter
}

// AddSourceParameter appends the components of p selected by mask to the
// register. It returns false, leaving m unchanged, when p is not a float
// vector or does not fit in the remaining capacity.
func (m *MergeParameter) AddSourceParameter(p *Parameter, mask Mask) bool {
	if p == nil {
		panic("ir: nil merge source")
	}
	if !p.Type.IsFloatVector() || !mask.fits(p.Type) {
		return false
	}
	k := mask.Count(p.Type)
	if m.srcCount == MaxMergeSources || m.usedFloat+k > MaxMergeComponents {
		return false
	}
	m.srcParams[m.srcCount] = p
	m.srcMasks[m.srcCount] = mask
	m.dstMasks[m.srcCount] = MaskRange(m.usedFloat, k)
	m.srcCount++
	m.usedFloat += k
	return true
}

// GetDestinationParameter returns the register parameter, creating a
// Float[UsedFloatCount] parameter of the given usage and index on the first
// call. Later calls return the same parameter regardless of arguments.
// It returns nil while the register is empty.
func (m *MergeParameter) GetDestinationParameter(usage Usage, index int) *Parameter {
	if m.dst != nil {
		return m.dst
	}
	if m.srcCount == 0 {
		return nil
	}
	prefix := "i"
	if usage == UsageOutput {
		prefix = "o"
	}
	m.dst = &Parameter{
		Name:     prefix + "Packed_" + strconv.Itoa(index),
		Semantic: SemanticTexCoord,
		Index:    index,
		Type:     FloatType(m.usedFloat),
		Usage:    usage,
		Content:  PackedRegisterContent(index),
	}
	return m.dst
}

// Destination returns the register parameter if it has been created.
func (m *MergeParameter) Destination() *Parameter { return m.dst }

// SourceCount returns the number of packed sources.
func (m *MergeParameter) SourceCount() int { return m.srcCount }

// UsedFloatCount returns the number of register components in use.
func (m *MergeParameter) UsedFloatCount() int { return m.usedFloat }

// Source returns the i-th packed parameter.
func (m *MergeParameter) Source(i int) *Parameter {
	m.checkIndex(i)
	return m.srcParams[i]
}

// SourceMask returns the components taken from the i-th source.
func (m *MergeParameter) SourceMask(i int) Mask {
	m.checkIndex(i)
	return m.srcMasks[i]
}

// DestinationMask returns the register components holding the i-th source.
func (m *MergeParameter) DestinationMask(i int) Mask {
	m.checkIndex(i)
	return m.dstMasks[i]
}

// Type returns the type the register is declared with: the source type for
// a single-source register, Float[UsedFloatCount] otherwise.
func (m *MergeParameter) Type() Type {
	if m.srcCount == 1 && m.srcMasks[0] == MaskAll {
		return m.srcParams[0].Type
	}
	if m.usedFloat == 0 {
		return TypeUnknown
	}
	return FloatType(m.usedFloat)
}

// PassThrough reports whether the register carries exactly one whole source.
func (m *MergeParameter) PassThrough() bool {
	return m.srcCount == 1 && m.srcMasks[0] == MaskAll
}

// Clear empties the register so it can be reused for another packing round.
func (m *MergeParameter) Clear() {
	*m = MergeParameter{}
}

func (m *MergeParameter) checkIndex(i int) {
	if i < 0 || i >= m.srcCount {
		panic(fmt.Sprintf("ir: merge source index %d out of range [0,%d)", i, m.srcCount))
	}
}

// PackParameters greedily packs float vector parameters into registers.
//
// A single register is open at a time: each parameter goes into it if it
// fits, otherwise the register is closed and the parameter opens a new one.
// Parameters are never split across registers and the input order is kept.
// Packing is deterministic, so two parameter lists with the same types in
// the same order produce identical layouts.
func PackParameters(params []*Parameter) ([]*MergeParameter, error) {
	var (
		out []*MergeParameter
		cur MergeParameter
	)
	flush := func() {
		if cur.SourceCount() == 0 {
			return
		}
		reg := cur
		out = append(out, &reg)
		cur.Clear()
	}
	for _, p := range params {
		if cur.AddSourceParameter(p, MaskAll) {
			continue
		}
		flush()
		if !cur.AddSourceParameter(p, MaskAll) {
			return nil, newError(ErrMergeCapacity, StageVertex, "varying %s of type %s cannot be packed", p.Name, p.Type)
		}
	}
	flush()
	return out, nil
}
