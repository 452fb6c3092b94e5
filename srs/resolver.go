// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import "github.com/gogpu/rtss/ir"

// Resolver resolves parameters of one program and keeps the first error,
// so a state can resolve everything it needs and check once.
type Resolver struct {
	prog *ir.Program
	err  error
}

// NewResolver returns a resolver for prog.
func NewResolver(prog *ir.Program) *Resolver {
	return &Resolver{prog: prog}
}

// Err returns the first resolution error.
func (r *Resolver) Err() error { return r.err }

func (r *Resolver) keep(p *ir.Parameter, err error) *ir.Parameter {
	if err != nil {
		r.err = err
		return nil
	}
	return p
}

func (r *Resolver) Input(sem ir.Semantic, index int, content ir.Content, typ ir.Type) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveInput(sem, index, content, typ))
}

func (r *Resolver) Output(sem ir.Semantic, index int, content ir.Content, typ ir.Type) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveOutput(sem, index, content, typ))
}

func (r *Resolver) Uniform(name string, typ ir.Type, defaults ...float64) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveUniform(name, typ, defaults...))
}

func (r *Resolver) UniformArray(name string, typ ir.Type, size int, values ...float64) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveUniformArray(name, typ, size, values...))
}

func (r *Resolver) Auto(a ir.AutoConstant, index int) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveAutoUniform(a, index))
}

func (r *Resolver) AutoArray(a ir.AutoConstant, size int) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveAutoUniformArray(a, size))
}

func (r *Resolver) Sampler(typ ir.Type, unit int) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveSampler(typ, unit))
}

func (r *Resolver) Local(content ir.Content, typ ir.Type) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveLocal(content, typ))
}

func (r *Resolver) NamedLocal(name string, typ ir.Type) *ir.Parameter {
	if r.err != nil {
		return nil
	}
	return r.keep(r.prog.ResolveNamedLocal(name, typ))
}
