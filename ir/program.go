package ir

import (
	"fmt"
	"slices"
	"strconv"
)

// Stage is a programmable pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "Stage(" + strconv.Itoa(int(s)) + ")"
	}
}

// Program is the parameter and function graph of one pipeline stage.
type Program struct {
	Stage      Stage
	EntryPoint string

	inputs   []*Parameter
	outputs  []*Parameter
	uniforms []*Parameter
	locals   []*Parameter

	functions []*Function
	nextSeq   int

	deps   []string
	depSet map[string]struct{}

	varyings    []*MergeParameter
	varyingRefs map[*Parameter]VaryingRef
}

// NewProgram returns an empty program for stage.
func NewProgram(stage Stage) *Program {
	entry := "main_vs"
	if stage == StageFragment {
		entry = "main_fs"
	}
	return &Program{
		Stage:      stage,
		EntryPoint: entry,
		depSet:     make(map[string]struct{}),
	}
}

// Inputs returns the stage inputs in declaration order.
func (p *Program) Inputs() []*Parameter { return slices.Clone(p.inputs) }

// Outputs returns the stage outputs in declaration order.
func (p *Program) Outputs() []*Parameter { return slices.Clone(p.outputs) }

// Uniforms returns the uniforms and samplers in declaration order.
func (p *Program) Uniforms() []*Parameter { return slices.Clone(p.uniforms) }

// Locals returns the entry point temporaries in declaration order.
func (p *Program) Locals() []*Parameter { return slices.Clone(p.locals) }

// Dependencies returns the helper libraries requested by contributors,
// deduplicated and in first-request order.
func (p *Program) Dependencies() []string { return slices.Clone(p.deps) }

// AddDependency records that the program calls into library name.
// Requesting the same library twice has no effect.
func (p *Program) AddDependency(name string) {
	if _, ok := p.depSet[name]; ok {
		return
	}
	p.depSet[name] = struct{}{}
	p.deps = append(p.deps, name)
}

// AddFunction appends f to the program. Empty functions are ignored.
func (p *Program) AddFunction(f *Function) {
	if f == nil || f.Empty() {
		return
	}
	f.seq = p.nextSeq
	p.nextSeq++
	p.functions = append(p.functions, f)
}

// Functions returns the program functions in execution order: ascending
// Order, then insertion sequence.
func (p *Program) Functions() []*Function {
	fns := slices.Clone(p.functions)
	slices.SortStableFunc(fns, func(a, b *Function) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return a.seq - b.seq
	})
	return fns
}

// Invocations returns every invocation in execution order.
func (p *Program) Invocations() []*Invocation {
	var out []*Invocation
	for _, f := range p.Functions() {
		out = append(out, f.Invocations...)
	}
	return out
}

// ResolveInput returns the stage input carrying content, creating it when
// absent. index selects the semantic index; -1 picks the lowest free one.
func (p *Program) ResolveInput(sem Semantic, index int, content Content, typ Type) (*Parameter, error) {
	return p.resolveIO(&p.inputs, UsageInput, sem, index, content, typ)
}

// ResolveOutput is ResolveInput for stage outputs.
func (p *Program) ResolveOutput(sem Semantic, index int, content Content, typ Type) (*Parameter, error) {
	return p.resolveIO(&p.outputs, UsageOutput, sem, index, content, typ)
}

func (p *Program) resolveIO(list *[]*Parameter, usage Usage, sem Semantic, index int, content Content, typ Type) (*Parameter, error) {
	if err := p.checkSemantic(usage, sem, index); err != nil {
		return nil, err
	}
	for _, q := range *list {
		sameContent := content != ContentUnknown && q.Content == content && q.Semantic == sem && (index < 0 || q.Index == index)
		sameSlot := index >= 0 && q.Semantic == sem && q.Index == index
		if !sameContent && !sameSlot {
			continue
		}
		if q.Content != content {
			return nil, newError(ErrSemanticConflict, p.Stage,
				"%s %s%d already carries %s, cannot bind %s", usage, sem, index, q.Content, content)
		}
		if q.Type != typ {
			return nil, newError(ErrTypeMismatch, p.Stage,
				"%s %s resolved as %s, requested %s", usage, q.Name, q.Type, typ)
		}
		return q, nil
	}
	if index < 0 {
		index = nextFreeIndex(*list, sem)
	}
	prefix := "i"
	if usage == UsageOutput {
		prefix = "o"
	}
	param := &Parameter{
		Name:     prefix + sem.String() + "_" + strconv.Itoa(index),
		Semantic: sem,
		Index:    index,
		Type:     typ,
		Usage:    usage,
		Content:  content,
	}
	*list = append(*list, param)
	return param, nil
}

func nextFreeIndex(list []*Parameter, sem Semantic) int {
	used := make(map[int]bool)
	for _, q := range list {
		if q.Semantic == sem {
			used[q.Index] = true
		}
	}
	i := 0
	for used[i] {
		i++
	}
	return i
}

// maxColorIndex bounds the COLOR semantic: diffuse and specular.
const maxColorIndex = 1

func (p *Program) checkSemantic(usage Usage, sem Semantic, index int) error {
	allowed := true
	switch {
	case sem == SemanticUnknown:
		allowed = false
	case p.Stage == StageVertex && usage == UsageOutput:
		allowed = sem == SemanticPosition || sem == SemanticColor || sem == SemanticTexCoord
	case p.Stage == StageFragment && usage == UsageInput:
		allowed = sem == SemanticColor || sem == SemanticTexCoord
	case p.Stage == StageFragment && usage == UsageOutput:
		allowed = sem == SemanticColor
	}
	if !allowed {
		return newError(ErrUnsupportedSemantic, p.Stage, "semantic %s is not a valid %s %s", sem, p.Stage, usage)
	}
	if sem == SemanticColor && index > maxColorIndex {
		return newError(ErrUnsupportedSemantic, p.Stage, "color index %d out of range", index)
	}
	return nil
}

// ResolveUniform returns the custom uniform called name, creating it when
// absent. defaults, if any, are the value the render system should bind.
func (p *Program) ResolveUniform(name string, typ Type, defaults ...float64) (*Parameter, error) {
	return p.resolveUniform(&Parameter{
		Name:   name,
		Type:   typ,
		Usage:  UsageUniform,
		Values: slices.Clone(defaults),
	})
}

// ResolveUniformArray returns the custom uniform array called name with size
// elements, creating it when absent. values, if any, hold the elements in
// order.
func (p *Program) ResolveUniformArray(name string, typ Type, size int, values ...float64) (*Parameter, error) {
	if size <= 0 {
		panic(fmt.Sprintf("ir: invalid uniform array size %d", size))
	}
	if len(values) != 0 && len(values) != size*typ.Components() {
		return nil, newError(ErrTypeMismatch, p.Stage,
			"uniform %s: %d values for %d elements of %s", name, len(values), size, typ)
	}
	return p.resolveUniform(&Parameter{
		Name:      name,
		Type:      typ,
		Usage:     UsageUniform,
		ArraySize: size,
		Values:    slices.Clone(values),
	})
}

// ResolveAutoUniform returns the uniform bound to auto constant a. index
// selects the light or texture unit for indexed constants and is ignored
// otherwise.
func (p *Program) ResolveAutoUniform(a AutoConstant, index int) (*Parameter, error) {
	if _, ok := autoTable[a]; !ok || a.Array() {
		return nil, newError(ErrTypeMismatch, p.Stage, "%s is not a scalar auto constant", a)
	}
	if !a.Indexed() {
		index = 0
	}
	return p.resolveUniform(&Parameter{
		Name:      a.uniformName(index),
		Type:      a.Type(),
		Usage:     UsageUniform,
		Auto:      a,
		AutoIndex: index,
	})
}

// ResolveAutoUniformArray returns the uniform array of size elements bound to a.
func (p *Program) ResolveAutoUniformArray(a AutoConstant, size int) (*Parameter, error) {
	if !a.Array() {
		return nil, newError(ErrTypeMismatch, p.Stage, "%s is not an array auto constant", a)
	}
	if size <= 0 {
		panic(fmt.Sprintf("ir: invalid uniform array size %d", size))
	}
	return p.resolveUniform(&Parameter{
		Name:      a.uniformName(0),
		Type:      a.Type(),
		Usage:     UsageUniform,
		ArraySize: size,
		Auto:      a,
	})
}

// ResolveSampler returns the sampler bound to texture unit.
func (p *Program) ResolveSampler(typ Type, unit int) (*Parameter, error) {
	if !typ.IsSampler() {
		return nil, newError(ErrTypeMismatch, p.Stage, "%s is not a sampler type", typ)
	}
	return p.resolveUniform(&Parameter{
		Name:  "textureUnit" + strconv.Itoa(unit),
		Index: unit,
		Type:  typ,
		Usage: UsageUniform,
	})
}

func (p *Program) resolveUniform(want *Parameter) (*Parameter, error) {
	for _, q := range p.uniforms {
		if q.Name != want.Name {
			continue
		}
		if q.Type != want.Type || q.ArraySize != want.ArraySize {
			return nil, newError(ErrTypeMismatch, p.Stage,
				"uniform %s resolved as %s[%d], requested %s[%d]", q.Name, q.Type, q.ArraySize, want.Type, want.ArraySize)
		}
		return q, nil
	}
	p.uniforms = append(p.uniforms, want)
	return want, nil
}

// ResolveLocal returns the temporary carrying content, creating it when absent.
func (p *Program) ResolveLocal(content Content, typ Type) (*Parameter, error) {
	for _, q := range p.locals {
		if q.Content == content && content != ContentUnknown {
			if q.Type != typ {
				return nil, newError(ErrTypeMismatch, p.Stage,
					"local %s resolved as %s, requested %s", q.Name, q.Type, typ)
			}
			return q, nil
		}
	}
	return p.addLocal("l"+content.String(), content, typ), nil
}

// ResolveNamedLocal returns the temporary called name, creating it when absent.
func (p *Program) ResolveNamedLocal(name string, typ Type) (*Parameter, error) {
	for _, q := range p.locals {
		if q.Name == name {
			if q.Type != typ {
				return nil, newError(ErrTypeMismatch, p.Stage,
					"local %s resolved as %s, requested %s", q.Name, q.Type, typ)
			}
			return q, nil
		}
	}
	return p.addLocal(name, ContentUnknown, typ), nil
}

func (p *Program) addLocal(name string, content Content, typ Type) *Parameter {
	param := &Parameter{Name: name, Type: typ, Usage: UsageLocal, Content: content}
	p.locals = append(p.locals, param)
	return param
}

// InputByContent returns the input carrying content, or nil.
func (p *Program) InputByContent(c Content) *Parameter { return byContent(p.inputs, c) }

// OutputByContent returns the output carrying content, or nil.
func (p *Program) OutputByContent(c Content) *Parameter { return byContent(p.outputs, c) }

// OutputBySemantic returns the output bound to sem and index, or nil.
func (p *Program) OutputBySemantic(sem Semantic, index int) *Parameter {
	for _, q := range p.outputs {
		if q.Semantic == sem && q.Index == index {
			return q
		}
	}
	return nil
}

func byContent(list []*Parameter, c Content) *Parameter {
	for _, q := range list {
		if q.Content == c {
			return q
		}
	}
	return nil
}

// owns reports whether param is declared by p.
func (p *Program) owns(param *Parameter) bool {
	var list []*Parameter
	switch param.Usage {
	case UsageConstant:
		return true
	case UsageInput:
		list = p.inputs
	case UsageOutput:
		list = p.outputs
	case UsageUniform:
		list = p.uniforms
	case UsageLocal:
		list = p.locals
	}
	return slices.Contains(list, param)
}

// Checkpoint records the extent of a program so that later additions can be undone.
type Checkpoint struct {
	inputs, outputs, uniforms, locals int
	functions, deps                   int
}

// Checkpoint returns the current extent of p.
func (p *Program) Checkpoint() Checkpoint {
	return Checkpoint{
		inputs:    len(p.inputs),
		outputs:   len(p.outputs),
		uniforms:  len(p.uniforms),
		locals:    len(p.locals),
		functions: len(p.functions),
		deps:      len(p.deps),
	}
}

// Rollback discards every parameter, function and dependency added after cp.
func (p *Program) Rollback(cp Checkpoint) {
	p.inputs = p.inputs[:cp.inputs]
	p.outputs = p.outputs[:cp.outputs]
	p.uniforms = p.uniforms[:cp.uniforms]
	p.locals = p.locals[:cp.locals]
	p.functions = p.functions[:cp.functions]
	for _, d := range p.deps[cp.deps:] {
		delete(p.depSet, d)
	}
	p.deps = p.deps[:cp.deps]
}
