package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Stage      Stage
	Function   string
	Invocation int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Invocation >= 0 {
			return fmt.Sprintf("%s program, function %s, invocation %d: %s", e.Stage, e.Function, e.Invocation, e.Message)
		}
		return fmt.Sprintf("%s program, function %s: %s", e.Stage, e.Function, e.Message)
	}
	return fmt.Sprintf("%s program: %s", e.Stage, e.Message)
}

// Validator validates program sets.
type Validator struct {
	program *Program
	errors  []ValidationError

	function   string
	invocation int
}

// Validate checks both programs of set for correctness.
// Returns validation errors if any, or nil if the set is valid.
func Validate(set *ProgramSet) ([]ValidationError, error) {
	if set == nil || set.Vertex == nil || set.Fragment == nil {
		return nil, fmt.Errorf("program set is incomplete")
	}

	v := &Validator{errors: make([]ValidationError, 0)}
	v.ValidateProgram(set.Vertex)
	v.ValidateProgram(set.Fragment)

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

// ValidateProgram validates one program and its varying registers.
func (v *Validator) ValidateProgram(p *Program) {
	v.program = p
	v.function = ""
	v.invocation = -1

	v.validateRegisters()

	for _, fn := range p.Functions() {
		v.function = fn.Name
		for i, inv := range fn.Invocations {
			v.invocation = i
			v.validateInvocation(inv)
		}
		v.invocation = -1
	}
	v.function = ""
}

func (v *Validator) validateRegisters() {
	for slot, reg := range v.program.varyings {
		if reg.UsedFloatCount() > MaxMergeComponents {
			v.addError(fmt.Sprintf("register %d uses %d components", slot, reg.UsedFloatCount()))
		}
		if reg.SourceCount() > MaxMergeSources {
			v.addError(fmt.Sprintf("register %d holds %d sources", slot, reg.SourceCount()))
		}
	}
}

func (v *Validator) validateInvocation(inv *Invocation) {
	if len(inv.Operands) == 0 {
		v.addError(fmt.Sprintf("%s has no operands", inv.Name))
		return
	}

	dests := 0
	for _, op := range inv.Operands {
		if !v.validateOperand(op) {
			return
		}
		if op.Writes() {
			dests++
			v.validateDestination(op)
		}
	}
	if dests != 1 {
		v.addError(fmt.Sprintf("%s has %d destination operands, want 1", inv.Name, dests))
		return
	}

	if !IsIntrinsic(inv.Name) {
		return
	}
	dst, _ := inv.Destination()
	if dst.Semantic == InOut {
		v.addError(fmt.Sprintf("%s cannot update an InOut operand", inv.Name))
		return
	}
	if inv.Name == OpSampleTexture && v.program.Stage != StageFragment {
		v.addError(fmt.Sprintf("%s is only available to fragment programs", inv.Name))
		return
	}
	result, problem := IntrinsicResult(inv.Name, inv.Arguments(false))
	if problem != "" {
		v.addError(fmt.Sprintf("%s: %s", inv.Name, problem))
		return
	}
	if got := dst.ValueType(); got != result {
		v.addError(fmt.Sprintf("%s produces %s, destination %s is %s", inv.Name, result, dst.Param.Name, got))
	}
}

func (v *Validator) validateOperand(op Operand) bool {
	p := op.Param
	if p == nil {
		v.addError("operand references a nil parameter")
		return false
	}
	if !v.program.owns(p) {
		v.addError(fmt.Sprintf("parameter %s is not declared by the program", p.Name))
		return false
	}
	if op.Mask != MaskAll && (!p.Type.IsFloatVector() || !op.Mask.fits(p.Type)) {
		v.addError(fmt.Sprintf("mask .%s does not apply to %s %s", op.Mask, p.Type, p.Name))
		return false
	}
	if op.Index != nil {
		if !p.IsArray() {
			v.addError(fmt.Sprintf("parameter %s is subscripted but is not an array", p.Name))
			return false
		}
		if t := op.Index.ValueType(); t != TypeFloat1 && t != TypeInt1 {
			v.addError(fmt.Sprintf("array index of %s must be a scalar, got %s", p.Name, t))
			return false
		}
		return v.validateOperand(*op.Index)
	}
	if p.IsArray() {
		v.addError(fmt.Sprintf("array %s used without a subscript", p.Name))
		return false
	}
	return true
}

func (v *Validator) validateDestination(op Operand) {
	switch op.Param.Usage {
	case UsageUniform, UsageConstant:
		v.addError(fmt.Sprintf("%s %s cannot be written", op.Param.Usage, op.Param.Name))
	}
	if op.Index != nil {
		v.addError(fmt.Sprintf("array element of %s cannot be written", op.Param.Name))
	}
}

// addError adds a validation error with the current context.
func (v *Validator) addError(msg string) {
	v.errors = append(v.errors, ValidationError{
		Message:    msg,
		Stage:      v.program.Stage,
		Function:   v.function,
		Invocation: v.invocation,
	})
}

// IntrinsicResult returns the type an intrinsic produces from args, or a
// description of why the arguments are not acceptable.
//
//nolint:gocyclo,cyclop // one case per intrinsic
func IntrinsicResult(name string, args []Operand) (Type, string) {
	types := make([]Type, len(args))
	for i, a := range args {
		types[i] = a.ValueType()
	}
	arity := func(n int) string {
		if len(args) != n {
			return fmt.Sprintf("takes %d arguments, got %d", n, len(args))
		}
		return ""
	}
	vector := func(ts ...Type) string {
		for _, t := range ts {
			if !t.IsFloatVector() {
				return fmt.Sprintf("%s is not a float vector", t)
			}
		}
		return ""
	}

	switch name {
	case OpAssign:
		if msg := arity(1); msg != "" {
			return TypeUnknown, msg
		}
		return types[0], ""

	case OpTransform:
		if msg := arity(2); msg != "" {
			return TypeUnknown, msg
		}
		m, vec := types[0], types[1]
		switch {
		case m == TypeMatrix4x4 && vec == TypeFloat4, m == TypeMatrix3x3 && vec == TypeFloat3:
			return vec, ""
		default:
			return TypeUnknown, fmt.Sprintf("cannot transform %s by %s", vec, m)
		}

	case OpModulate, OpAdd, OpSubtract, OpDivide:
		if msg := arity(2); msg != "" {
			return TypeUnknown, msg
		}
		if msg := vector(types...); msg != "" {
			return TypeUnknown, msg
		}
		a, b := types[0], types[1]
		switch {
		case a == b, b == TypeFloat1:
			return a, ""
		case a == TypeFloat1:
			return b, ""
		default:
			return TypeUnknown, fmt.Sprintf("operand types %s and %s differ", a, b)
		}

	case OpNormalize, OpSaturate:
		if msg := arity(1); msg != "" {
			return TypeUnknown, msg
		}
		if msg := vector(types[0]); msg != "" {
			return TypeUnknown, msg
		}
		if name == OpNormalize && types[0] == TypeFloat1 {
			return TypeUnknown, "cannot normalize a scalar"
		}
		return types[0], ""

	case OpLerp:
		if msg := arity(3); msg != "" {
			return TypeUnknown, msg
		}
		if msg := vector(types...); msg != "" {
			return TypeUnknown, msg
		}
		if types[0] != types[1] || (types[2] != TypeFloat1 && types[2] != types[0]) {
			return TypeUnknown, fmt.Sprintf("cannot interpolate %s and %s by %s", types[0], types[1], types[2])
		}
		return types[0], ""

	case OpDotProduct:
		if msg := arity(2); msg != "" {
			return TypeUnknown, msg
		}
		if msg := vector(types...); msg != "" {
			return TypeUnknown, msg
		}
		if types[0] != types[1] {
			return TypeUnknown, fmt.Sprintf("operand types %s and %s differ", types[0], types[1])
		}
		return TypeFloat1, ""

	case OpConstruct:
		if len(args) == 0 {
			return TypeUnknown, "takes at least one argument"
		}
		if msg := vector(types...); msg != "" {
			return TypeUnknown, msg
		}
		n := 0
		for _, t := range types {
			n += t.Components()
		}
		if n < 2 || n > 4 {
			return TypeUnknown, fmt.Sprintf("cannot build a vector of %d components", n)
		}
		return FloatType(n), ""

	case OpSampleTexture:
		if msg := arity(2); msg != "" {
			return TypeUnknown, msg
		}
		switch {
		case types[0] == TypeSampler2D && types[1] == TypeFloat2,
			types[0] == TypeSamplerCube && types[1] == TypeFloat3:
			return TypeFloat4, ""
		default:
			return TypeUnknown, fmt.Sprintf("cannot sample %s at %s", types[0], types[1])
		}
	}
	return TypeUnknown, "unknown intrinsic"
}
