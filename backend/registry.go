// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"slices"
)

// Registry maps target language ids to writer factories.
// It is immutable after construction and safe for concurrent use.
type Registry struct {
	factories map[string]ProgramWriterFactory
	languages []string
}

// NewRegistry builds a registry from factories. Two factories for the same
// language are rejected.
func NewRegistry(factories ...ProgramWriterFactory) (*Registry, error) {
	r := &Registry{factories: make(map[string]ProgramWriterFactory, len(factories))}
	for _, f := range factories {
		lang := f.TargetLanguage()
		if _, dup := r.factories[lang]; dup {
			return nil, &Error{Kind: ErrDuplicateLanguage, Language: lang, Message: "writer factory registered twice"}
		}
		r.factories[lang] = f
		r.languages = append(r.languages, lang)
	}
	return r, nil
}

// Lookup returns the factory for language.
func (r *Registry) Lookup(language string) (ProgramWriterFactory, error) {
	f, ok := r.factories[language]
	if !ok {
		return nil, &Error{Kind: ErrBackendUnsupported, Language: language, Message: "no program writer registered"}
	}
	return f, nil
}

// Create returns a new writer for language.
func (r *Registry) Create(language string) (ProgramWriter, error) {
	f, err := r.Lookup(language)
	if err != nil {
		return nil, err
	}
	return f.Create(), nil
}

// Languages returns the registered language ids in registration order.
func (r *Registry) Languages() []string {
	return slices.Clone(r.languages)
}
