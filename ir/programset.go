package ir

import "slices"

// ProgramSet is the vertex and fragment program pair generated for one pass.
type ProgramSet struct {
	Vertex   *Program
	Fragment *Program
}

// NewProgramSet returns a set with two empty programs.
func NewProgramSet() *ProgramSet {
	return &ProgramSet{
		Vertex:   NewProgram(StageVertex),
		Fragment: NewProgram(StageFragment),
	}
}

// Program returns the program of stage.
func (s *ProgramSet) Program(stage Stage) *Program {
	if stage == StageFragment {
		return s.Fragment
	}
	return s.Vertex
}

// SetCheckpoint is a Checkpoint of both programs of a set.
type SetCheckpoint struct {
	vertex, fragment Checkpoint
}

// Checkpoint returns the current extent of both programs.
func (s *ProgramSet) Checkpoint() SetCheckpoint {
	return SetCheckpoint{vertex: s.Vertex.Checkpoint(), fragment: s.Fragment.Checkpoint()}
}

// Rollback discards everything added to either program after cp.
func (s *ProgramSet) Rollback(cp SetCheckpoint) {
	s.Vertex.Rollback(cp.vertex)
	s.Fragment.Rollback(cp.fragment)
}

// MergeOptions controls varying packing.
type MergeOptions struct {
	// Pack enables packing several varyings into one register.
	Pack bool

	// MaxRegisters bounds the number of texture coordinate registers.
	// Zero means unbounded.
	MaxRegisters int
}

// VaryingRef locates a varying inside the register layout of a program.
type VaryingRef struct {
	Slot     int
	Register *MergeParameter
	// Source is the position of the parameter among the register sources.
	Source int
}

// Components returns the register components holding the varying, in order.
func (r VaryingRef) Components() []int {
	return r.Register.DestinationMask(r.Source).Components(TypeFloat4)
}

// MergeParameters links the texture coordinate varyings of the two programs
// and assigns them to interpolator registers.
//
// Every vertex texcoord output without a fragment input of the same content
// gets one; a fragment texcoord input without a vertex output is an error.
// Both stages are packed from the vertex declaration order, so their register
// layouts agree. Color fragment inputs must match a vertex color output of
// the same index. Parameters themselves are left untouched.
func (s *ProgramSet) MergeParameters(opts MergeOptions) error {
	vs, fs := s.Vertex, s.Fragment

	for _, in := range fs.inputs {
		if in.Semantic != SemanticColor {
			continue
		}
		out := vs.OutputBySemantic(SemanticColor, in.Index)
		if out == nil {
			return newError(ErrUnlinkedVarying, StageFragment, "color input %s has no vertex output", in.Name)
		}
		if out.Type != in.Type {
			return newError(ErrTypeMismatch, StageFragment, "color input %s is %s, vertex writes %s", in.Name, in.Type, out.Type)
		}
	}

	var vsOut []*Parameter
	for _, out := range vs.outputs {
		if out.Semantic == SemanticTexCoord {
			vsOut = append(vsOut, out)
		}
	}
	for _, in := range fs.inputs {
		if in.Semantic != SemanticTexCoord {
			continue
		}
		if in.Content == ContentUnknown || !slices.ContainsFunc(vsOut, func(o *Parameter) bool { return o.Content == in.Content }) {
			return newError(ErrUnlinkedVarying, StageFragment, "input %s (%s) has no vertex output", in.Name, in.Content)
		}
	}

	fsIn := make([]*Parameter, 0, len(vsOut))
	for _, out := range vsOut {
		in, err := fs.ResolveInput(SemanticTexCoord, -1, out.Content, out.Type)
		if err != nil {
			return err
		}
		fsIn = append(fsIn, in)
	}

	vsRegs, err := packVaryings(vsOut, opts.Pack)
	if err != nil {
		return err
	}
	fsRegs, err := packVaryings(fsIn, opts.Pack)
	if err != nil {
		return err
	}
	if len(vsRegs) != len(fsRegs) {
		return newError(ErrMergeCapacity, StageFragment, "register layouts disagree: %d vertex, %d fragment", len(vsRegs), len(fsRegs))
	}
	if opts.MaxRegisters > 0 && len(vsRegs) > opts.MaxRegisters {
		return newError(ErrRegisterLimit, StageVertex, "%d texture coordinate registers needed, %d available", len(vsRegs), opts.MaxRegisters)
	}

	vs.setVaryings(vsRegs, UsageOutput)
	fs.setVaryings(fsRegs, UsageInput)
	return nil
}

func packVaryings(params []*Parameter, pack bool) ([]*MergeParameter, error) {
	if pack {
		return PackParameters(params)
	}
	regs := make([]*MergeParameter, 0, len(params))
	for _, p := range params {
		reg := &MergeParameter{}
		if !reg.AddSourceParameter(p, MaskAll) {
			return nil, newError(ErrMergeCapacity, StageVertex, "varying %s of type %s cannot be packed", p.Name, p.Type)
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

func (p *Program) setVaryings(regs []*MergeParameter, usage Usage) {
	p.varyings = regs
	p.varyingRefs = make(map[*Parameter]VaryingRef)
	for slot, reg := range regs {
		if !reg.PassThrough() {
			reg.GetDestinationParameter(usage, slot)
		}
		for i := 0; i < reg.SourceCount(); i++ {
			p.varyingRefs[reg.Source(i)] = VaryingRef{Slot: slot, Register: reg, Source: i}
		}
	}
}

// Varyings returns the texture coordinate registers assigned by MergeParameters.
func (p *Program) Varyings() []*MergeParameter { return slices.Clone(p.varyings) }

// Varying returns the register location of param if it is a packed varying.
func (p *Program) Varying(param *Parameter) (VaryingRef, bool) {
	ref, ok := p.varyingRefs[param]
	return ref, ok
}
