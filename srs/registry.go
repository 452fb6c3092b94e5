// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

import (
	"fmt"
	"slices"
)

// Registry is an immutable set of factories keyed by state type.
// It is safe to share between concurrent generations.
type Registry struct {
	order     []Factory
	factories map[string]Factory
}

// NewRegistry builds a registry holding factories in the given order.
// Translation offers each property to the factories in that order.
func NewRegistry(factories ...Factory) (*Registry, error) {
	r := &Registry{factories: make(map[string]Factory, len(factories))}
	for _, f := range factories {
		if _, dup := r.factories[f.Type()]; dup {
			return nil, NewError(ErrDuplicateFactory, f.Type(), "factory registered twice")
		}
		r.factories[f.Type()] = f
		r.order = append(r.order, f)
	}
	return r, nil
}

// Lookup returns the factory of typ.
func (r *Registry) Lookup(typ string) (Factory, error) {
	f, ok := r.factories[typ]
	if !ok {
		return nil, NewError(ErrUnknownType, typ, fmt.Sprintf("no factory among %d registered", len(r.order)))
	}
	return f, nil
}

// Factories returns the factories in registration order.
func (r *Registry) Factories() []Factory {
	return slices.Clone(r.order)
}

// Types returns the registered state types in registration order.
func (r *Registry) Types() []string {
	out := make([]string, len(r.order))
	for i, f := range r.order {
		out[i] = f.Type()
	}
	return out
}

// AllowsMultiple reports whether states of typ may repeat within a pass.
func (r *Registry) AllowsMultiple(typ string) bool {
	f, ok := r.factories[typ]
	return ok && allowsMultiple(f)
}
