// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package rtss generates vertex and fragment shader pairs for material passes.
//
// A pass's rtshader_system block names the sub render states it is composed
// of: transform, colour, lighting, texturing, fog, hardware skinning,
// normal mapping, per-pixel lighting and cascaded shadows. The Generator
// translates the block into states, runs the generation pipeline and writes
// the programs in the configured shading language.
//
// Example usage:
//
//	pass := material.MustNew(material.Desc{Name: "lit", Lighting: true, Lights: []string{"directional"}})
//	res, err := rtss.NewGenerator(rtss.DefaultOptions()).GenerateScript(pass, `
//	rtshader_system
//	{
//		transform_stage ffp
//		lighting_stage ffp
//	}
//	`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Vertex.Code)
package rtss

import (
	"fmt"
	"sync"

	"github.com/gogpu/rtss/backend"
	"github.com/gogpu/rtss/ffp"
	"github.com/gogpu/rtss/glsl"
	"github.com/gogpu/rtss/hlsl"
	"github.com/gogpu/rtss/msl"
	"github.com/gogpu/rtss/script"
	"github.com/gogpu/rtss/sgx"
	"github.com/gogpu/rtss/srs"
	"github.com/gogpu/rtss/wgsl"
)

// Options configures generation.
type Options struct {
	// Capabilities describes the target device and names the writer.
	Capabilities srs.Capabilities

	// PackVaryings shares interpolator registers between small varyings.
	PackVaryings bool

	// ImplicitColourStage adds FFP_Colour to blocks that do not name a
	// colour stage.
	ImplicitColourStage bool
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Capabilities:        srs.DefaultCapabilities(),
		PackVaryings:        true,
		ImplicitColourStage: true,
	}
}

// DefaultFactories returns the registry of every built-in sub render state
// factory. Its texture atlas sampler knows no atlases.
var DefaultFactories = sync.OnceValue(func() *srs.Registry {
	reg, err := NewFactories(sgx.NewTextureAtlasSamplerFactory())
	if err != nil {
		panic(err)
	}
	return reg
})

// NewFactories returns a registry of every built-in sub render state
// factory that looks texture atlases up in atlas.
func NewFactories(atlas *sgx.TextureAtlasSamplerFactory) (*srs.Registry, error) {
	factories := append(ffp.Factories(), sgx.Factories()...)
	for i, f := range factories {
		if f.Type() == sgx.TypeTextureAtlasSampler {
			factories[i] = atlas
		}
	}
	return srs.NewRegistry(factories...)
}

// DefaultWriters returns the registry of every built-in program writer:
// hlsl, cg, glsl, glsles, wgsl and msl.
var DefaultWriters = sync.OnceValue(func() *backend.Registry {
	reg, err := backend.NewRegistry(
		hlsl.Factory(hlsl.DefaultOptions()),
		hlsl.CgFactory(),
		glsl.Factory(glsl.DefaultOptions()),
		glsl.ESFactory(),
		wgsl.Factory(wgsl.DefaultOptions()),
		msl.Factory(msl.DefaultOptions()),
	)
	if err != nil {
		panic(err)
	}
	return reg
})

// Generator generates programs for passes. Its registries are read-only,
// so one Generator may serve concurrent calls.
type Generator struct {
	opts      Options
	factories *srs.Registry
	writers   *backend.Registry
}

// NewGenerator returns a generator using the default registries.
func NewGenerator(opts Options) *Generator {
	return NewGeneratorWithRegistries(opts, DefaultFactories(), DefaultWriters())
}

// NewGeneratorWithRegistries returns a generator using the given
// registries.
func NewGeneratorWithRegistries(opts Options, factories *srs.Registry, writers *backend.Registry) *Generator {
	return &Generator{opts: opts, factories: factories, writers: writers}
}

// Options returns the generator's options.
func (g *Generator) Options() Options { return g.opts }

// Result is the outcome of one generation.
type Result struct {
	backend.Result

	// Diagnostics lists the properties that were rejected.
	Diagnostics []srs.Diagnostic

	// Dropped lists the states removed while generating.
	Dropped []srs.Dropped

	// States lists the types of the states that contributed, in execution
	// order.
	States []string
}

func (g *Generator) context() *srs.Context {
	ctx := srs.NewContext(g.opts.Capabilities)
	ctx.PackVaryings = g.opts.PackVaryings
	return ctx
}

// Translate turns props into the collected states of a new target render
// state. Rejected properties are reported as diagnostics.
func (g *Generator) Translate(pass srs.Pass, props []*script.Property) (*srs.TargetRenderState, []srs.Diagnostic) {
	return g.translate(pass, props, g.opts.ImplicitColourStage)
}

func (g *Generator) translate(pass srs.Pass, props []*script.Property, implicitColour bool) (*srs.TargetRenderState, []srs.Diagnostic) {
	target := srs.NewTargetRenderState(g.factories)
	tr := srs.NewTranslator(g.context(), target, pass)
	tr.Translate(props)
	if implicitColour && target.Find(ffp.TypeColour) == nil {
		// A single colour state cannot collide with another one.
		_ = target.Add(ffp.NewColour())
	}
	return target, tr.Diagnostics()
}

// Generate translates props and writes the programs for pass. Diagnostics
// and dropped states do not fail the call; an unknown target language or a
// failed merge, validation or write does.
func (g *Generator) Generate(pass srs.Pass, props []*script.Property) (*Result, error) {
	lang := g.opts.Capabilities.TargetLanguage
	w, err := g.writers.Create(lang)
	if err != nil {
		return nil, fmt.Errorf("rtss: %w", err)
	}

	target, diags := g.Translate(pass, props)
	out, err := target.Generate(g.context(), pass, w)
	res := &Result{
		Result:      out,
		Diagnostics: diags,
		Dropped:     target.Dropped(),
	}
	for _, s := range target.States() {
		res.States = append(res.States, s.Type())
	}
	if err != nil {
		return res, fmt.Errorf("rtss: pass %q: %w", pass.Name(), err)
	}
	Logger().Debug("rtss: programs generated", "pass", pass.Name(), "language", lang,
		"states", len(res.States), "dropped", len(res.Dropped))
	return res, nil
}

// GenerateScript parses text as a property block and generates programs
// from it.
func (g *Generator) GenerateScript(pass srs.Pass, text string) (*Result, error) {
	props, err := script.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("rtss: %w", err)
	}
	return g.Generate(pass, props)
}

// WriteScript serializes the states props translate to as an
// rtshader_system block. Properties that fail to translate are dropped and
// the implicit colour stage is not written.
func (g *Generator) WriteScript(pass srs.Pass, props []*script.Property) (string, error) {
	target, _ := g.translate(pass, props, false)
	w := script.NewWriter()
	if err := srs.WriteRenderState(w, g.factories, target.States(), pass, pass); err != nil {
		return "", fmt.Errorf("rtss: %w", err)
	}
	return w.String(), nil
}
