package ir

import (
	"fmt"
	"strings"
)

// Mask selects components of a vector operand.
// MaskAll (zero) selects every component of the parameter type.
type Mask uint8

const (
	MaskAll Mask = 0
	MaskX   Mask = 1 << 0
	MaskY   Mask = 1 << 1
	MaskZ   Mask = 1 << 2
	MaskW   Mask = 1 << 3

	MaskXY   = MaskX | MaskY
	MaskXYZ  = MaskX | MaskY | MaskZ
	MaskXYZW = MaskX | MaskY | MaskZ | MaskW
)

// MaskRange returns the mask selecting count consecutive components starting at offset.
func MaskRange(offset, count int) Mask {
	if offset < 0 || count < 0 || offset+count > 4 {
		panic(fmt.Sprintf("ir: invalid mask range [%d,+%d)", offset, count))
	}
	var m Mask
	for i := offset; i < offset+count; i++ {
		m |= 1 << i
	}
	return m
}

// ComponentMask returns the single-component mask for component i.
func ComponentMask(i int) Mask { return MaskRange(i, 1) }

// Components returns the selected component positions for a value of type t.
func (m Mask) Components(t Type) []int {
	n := t.Components()
	if m == MaskAll {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	}
	var out []int
	for i := 0; i < 4; i++ {
		if m&(1<<i) != 0 {
			out = append(out, i)
		}
	}
	return out
}

// Count returns the number of components m selects for a value of type t.
func (m Mask) Count(t Type) int {
	if m == MaskAll {
		return t.Components()
	}
	n := 0
	for i := 0; i < 4; i++ {
		if m&(1<<i) != 0 {
			n++
		}
	}
	return n
}

// fits reports whether every selected component exists in type t.
func (m Mask) fits(t Type) bool {
	if m == MaskAll {
		return true
	}
	n := t.Components()
	return n > 0 && m>>n == 0
}

func (m Mask) String() string {
	if m == MaskAll {
		return ""
	}
	var sb strings.Builder
	for i, c := range "xyzw" {
		if m&(1<<i) != 0 {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}

// OperandSemantic tells whether an invocation reads or writes an operand.
type OperandSemantic uint8

const (
	In OperandSemantic = iota
	Out
	// InOut operands are read and then overwritten with the result.
	InOut
)

func (s OperandSemantic) String() string {
	switch s {
	case In:
		return "in"
	case Out:
		return "out"
	case InOut:
		return "inout"
	default:
		return "?"
	}
}

// Operand references a parameter inside an invocation.
type Operand struct {
	Param    *Parameter
	Semantic OperandSemantic
	Mask     Mask
	// Index subscripts an array parameter; nil for scalars and vectors.
	Index *Operand
}

// NewIn returns an input operand reading p.
func NewIn(p *Parameter) Operand { return Operand{Param: p, Semantic: In} }

// NewOut returns an output operand writing p.
func NewOut(p *Parameter) Operand { return Operand{Param: p, Semantic: Out} }

// NewInOut returns an operand that is read and then written.
func NewInOut(p *Parameter) Operand { return Operand{Param: p, Semantic: InOut} }

// WithMask returns a copy of o selecting the components in m.
func (o Operand) WithMask(m Mask) Operand {
	o.Mask = m
	return o
}

// WithIndex returns a copy of o subscripting its array parameter with idx.
func (o Operand) WithIndex(idx Operand) Operand {
	idx.Semantic = In
	o.Index = &idx
	return o
}

// ElementType returns the type of the value the operand designates before masking.
func (o Operand) ElementType() Type {
	if o.Param == nil {
		return TypeUnknown
	}
	return o.Param.Type
}

// ValueType returns the type of the value the operand designates after masking.
func (o Operand) ValueType() Type {
	t := o.ElementType()
	if o.Mask == MaskAll || !t.IsFloatVector() {
		return t
	}
	return FloatType(o.Mask.Count(t))
}

// Writes reports whether the operand is a destination.
func (o Operand) Writes() bool { return o.Semantic == Out || o.Semantic == InOut }

// Intrinsic operation names. Backends lower these inline; any other
// invocation name is a call into a helper library.
const (
	OpAssign        = "FFP_Assign"
	OpTransform     = "FFP_Transform"
	OpModulate      = "FFP_Modulate"
	OpAdd           = "FFP_Add"
	OpSubtract      = "FFP_Subtract"
	OpDivide        = "FFP_Divide"
	OpNormalize     = "FFP_Normalize"
	OpLerp          = "FFP_Lerp"
	OpDotProduct    = "FFP_DotProduct"
	OpSampleTexture = "FFP_SampleTexture"
	OpConstruct     = "FFP_Construct"
	OpSaturate      = "FFP_Saturate"
)

// IsIntrinsic reports whether name is lowered inline by writers.
func IsIntrinsic(name string) bool {
	switch name {
	case OpAssign, OpTransform, OpModulate, OpAdd, OpSubtract, OpDivide,
		OpNormalize, OpLerp, OpDotProduct, OpSampleTexture, OpConstruct, OpSaturate:
		return true
	}
	return false
}

// Invocation applies a named operation to its operands.
// Exactly one operand is the destination (Out or InOut).
type Invocation struct {
	Name     string
	Operands []Operand
}

// NewInvocation returns an invocation of name over operands.
func NewInvocation(name string, operands ...Operand) *Invocation {
	return &Invocation{Name: name, Operands: operands}
}

// Destination returns the operand written by the invocation.
func (inv *Invocation) Destination() (Operand, bool) {
	for _, op := range inv.Operands {
		if op.Writes() {
			return op, true
		}
	}
	return Operand{}, false
}

// Arguments returns the operands read by the invocation in declaration order.
// InOut operands are included when includeInOut is set.
func (inv *Invocation) Arguments(includeInOut bool) []Operand {
	args := make([]Operand, 0, len(inv.Operands))
	for _, op := range inv.Operands {
		if op.Semantic == In || (includeInOut && op.Semantic == InOut) {
			args = append(args, op)
		}
	}
	return args
}

func (inv *Invocation) String() string {
	parts := make([]string, len(inv.Operands))
	for i, op := range inv.Operands {
		name := "<nil>"
		if op.Param != nil {
			name = op.Param.Name
		}
		if m := op.Mask.String(); m != "" {
			name += "." + m
		}
		parts[i] = op.Semantic.String() + " " + name
	}
	return inv.Name + "(" + strings.Join(parts, ", ") + ")"
}
