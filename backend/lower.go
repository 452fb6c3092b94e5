// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gogpu/rtss/ir"
)

// Dialect spells lowered expressions in one target language.
type Dialect interface {
	TypeName(t ir.Type) string

	// Reference names a declared parameter (input, output, uniform or local).
	Reference(p *ir.Parameter) string

	// Register names the varying register at slot.
	Register(slot int) string

	Vector(t ir.Type, args []string) string
	Transform(matrix, vector string) string
	Lerp(a, b, t string) string
	// Splat widens scalar x to vector type t where the target has no
	// implicit scalar promotion; other targets return x unchanged.
	Splat(t ir.Type, x string) string
	Saturate(x string) string
	Sample(sampler *ir.Parameter, coord string) string
	Subscript(array, index string) string

	// Temporary declares a statement-local temporary initialized to value.
	Temporary(name string, t ir.Type, value string) string

	// SwizzleStores reports whether a multi-component swizzle may be assigned.
	SwizzleStores() bool
}

// Lowerer translates the invocations of one program into statements.
type Lowerer struct {
	d     Dialect
	prog  *ir.Program
	temps int
}

// NewLowerer returns a lowerer for prog spelled with d.
func NewLowerer(d Dialect, prog *ir.Program) *Lowerer {
	return &Lowerer{d: d, prog: prog}
}

// Body returns the statements of every function of the program in
// execution order, each function introduced by a comment line.
func (l *Lowerer) Body() ([]string, error) {
	var lines []string
	for _, f := range l.prog.Functions() {
		lines = append(lines, "// "+f.Name)
		for _, inv := range f.Invocations {
			stmts, err := l.Statements(inv)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f.Name, err)
			}
			lines = append(lines, stmts...)
		}
	}
	return lines, nil
}

// Statements lowers one invocation.
func (l *Lowerer) Statements(inv *ir.Invocation) ([]string, error) {
	dst, ok := inv.Destination()
	if !ok || dst.Param == nil {
		return nil, l.errorf("%s has no destination", inv.Name)
	}
	expr, err := l.Expression(inv)
	if err != nil {
		return nil, err
	}
	base, comps, width, err := l.target(dst)
	if err != nil {
		return nil, err
	}
	sel := Swizzle(comps, width)
	if sel == "" || len(comps) == 1 || l.d.SwizzleStores() {
		return []string{base + sel + " = " + expr + ";"}, nil
	}

	tmp := "tmp" + strconv.Itoa(l.temps)
	l.temps++
	stmts := []string{l.d.Temporary(tmp, dst.ValueType(), expr)}
	for i, c := range comps {
		stmts = append(stmts, fmt.Sprintf("%s.%c = %s.%c;", base, "xyzw"[c], tmp, "xyzw"[i]))
	}
	return stmts, nil
}

// target returns the storage written by dst: its base expression, the
// written components and the component count of the base.
func (l *Lowerer) target(dst ir.Operand) (string, []int, int, error) {
	p := dst.Param
	switch p.Usage {
	case ir.UsageConstant:
		return "", nil, 0, l.errorf("cannot write constant %s", p.Name)
	case ir.UsageUniform:
		return "", nil, 0, l.errorf("cannot write uniform %s", p.Name)
	}
	if ref, ok := l.prog.Varying(p); ok {
		if l.prog.Stage == ir.StageFragment {
			return "", nil, 0, l.errorf("cannot write varying input %s", p.Name)
		}
		return l.d.Register(ref.Slot), registerComponents(ref, dst), ref.Register.Type().Components(), nil
	}
	if dst.Index != nil {
		return "", nil, 0, l.errorf("cannot write array element of %s", p.Name)
	}
	width := p.Type.Components()
	return l.d.Reference(p), dst.Mask.Components(p.Type), width, nil
}

func registerComponents(ref ir.VaryingRef, op ir.Operand) []int {
	slots := ref.Components()
	sel := op.Mask.Components(op.Param.Type)
	out := make([]int, len(sel))
	for i, c := range sel {
		out[i] = slots[c]
	}
	return out
}

// Operand returns the expression reading op.
func (l *Lowerer) Operand(op ir.Operand) (string, error) {
	p := op.Param
	if p == nil {
		return "", l.errorf("operand without parameter")
	}
	if p.Usage == ir.UsageConstant {
		return l.constant(p) + l.selector(op.Mask.Components(p.Type), p.Type.Components()), nil
	}
	if ref, ok := l.prog.Varying(p); ok {
		return l.d.Register(ref.Slot) + Swizzle(registerComponents(ref, op), ref.Register.Type().Components()), nil
	}
	base := l.d.Reference(p)
	if op.Index != nil {
		idx, err := l.Operand(*op.Index)
		if err != nil {
			return "", err
		}
		base = l.d.Subscript(base, idx)
	}
	return base + l.selector(op.Mask.Components(p.Type), p.Type.Components()), nil
}

func (l *Lowerer) selector(comps []int, width int) string {
	if width <= 1 {
		return ""
	}
	return Swizzle(comps, width)
}

func (l *Lowerer) constant(p *ir.Parameter) string {
	vals := make([]string, len(p.Values))
	for i, v := range p.Values {
		vals[i] = FormatFloat(v)
	}
	if len(vals) == 1 {
		return vals[0]
	}
	return l.d.Vector(p.Type, vals)
}

// Expression returns the value an invocation computes.
//
//nolint:gocyclo,cyclop // one case per intrinsic
func (l *Lowerer) Expression(inv *ir.Invocation) (string, error) {
	ops := inv.Arguments(true)
	args := make([]string, len(ops))
	for i, op := range ops {
		s, err := l.Operand(op)
		if err != nil {
			return "", err
		}
		args[i] = s
	}
	arity := func(n int) error {
		if len(args) != n {
			return l.errorf("%s takes %d arguments, got %d", inv.Name, n, len(args))
		}
		return nil
	}
	binary := func(op string) (string, error) {
		if err := arity(2); err != nil {
			return "", err
		}
		return "(" + args[0] + " " + op + " " + args[1] + ")", nil
	}

	switch inv.Name {
	case ir.OpAssign:
		if err := arity(1); err != nil {
			return "", err
		}
		return args[0], nil
	case ir.OpTransform:
		if err := arity(2); err != nil {
			return "", err
		}
		return l.d.Transform(args[0], args[1]), nil
	case ir.OpModulate:
		return binary("*")
	case ir.OpAdd:
		return binary("+")
	case ir.OpSubtract:
		return binary("-")
	case ir.OpDivide:
		return binary("/")
	case ir.OpNormalize:
		if err := arity(1); err != nil {
			return "", err
		}
		return "normalize(" + args[0] + ")", nil
	case ir.OpSaturate:
		if err := arity(1); err != nil {
			return "", err
		}
		return l.d.Saturate(args[0]), nil
	case ir.OpDotProduct:
		if err := arity(2); err != nil {
			return "", err
		}
		return "dot(" + args[0] + ", " + args[1] + ")", nil
	case ir.OpLerp:
		if err := arity(3); err != nil {
			return "", err
		}
		if v := ops[0].ValueType(); ops[2].ValueType() == ir.TypeFloat1 && v.Components() > 1 {
			args[2] = l.d.Splat(v, args[2])
		}
		return l.d.Lerp(args[0], args[1], args[2]), nil
	case ir.OpConstruct:
		t, problem := ir.IntrinsicResult(inv.Name, ops)
		if problem != "" {
			return "", l.errorf("%s: %s", inv.Name, problem)
		}
		return l.d.Vector(t, args), nil
	case ir.OpSampleTexture:
		if err := arity(2); err != nil {
			return "", err
		}
		if !ops[0].Param.Type.IsSampler() {
			return "", l.errorf("%s: %s is not a sampler", inv.Name, ops[0].Param.Name)
		}
		return l.d.Sample(ops[0].Param, args[1]), nil
	}
	return inv.Name + "(" + strings.Join(args, ", ") + ")", nil
}

func (l *Lowerer) errorf(format string, args ...any) error {
	return ir.NewError(ir.ErrInvalidInvocation, l.prog.Stage, fmt.Sprintf(format, args...))
}
