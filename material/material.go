// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package material provides an in-memory render pass for driving shader
// generation without a full material system.
//
// A Pass is built from a Desc, which is plain data suitable for JSON:
//
//	pass, err := material.New(material.Desc{
//		Name:     "ground",
//		Lighting: true,
//		Lights:   []string{"directional", "point"},
//		Textures: []material.TextureDesc{{Name: "grass.png"}},
//	})
package material

import (
	"fmt"
	"slices"

	"github.com/gogpu/rtss/srs"
)

// TextureDesc describes one texture unit.
type TextureDesc struct {
	Name        string `json:"name"`
	Cube        bool   `json:"cube,omitempty"`
	TexCoordSet int    `json:"texCoordSet,omitempty"`
	// EnvMap is "", "sphere", "planar", "reflection" or "normal".
	EnvMap     string `json:"envMap,omitempty"`
	Projective bool   `json:"projective,omitempty"`
	// Address is "", "wrap", "mirror", "clamp" or "border".
	Address string `json:"address,omitempty"`
	// Blend is "", "modulate", "add", "subtract" or "replace".
	Blend string `json:"blend,omitempty"`
	// BlendArgs name the two blend arguments: "", "current", "texture",
	// "diffuse", "specular" or "manual".
	BlendArgs   [2]string  `json:"blendArgs,omitempty"`
	BlendColour [4]float64 `json:"blendColour,omitempty"`
}

// Desc is the serializable description of a pass.
type Desc struct {
	Name     string   `json:"name"`
	Lighting bool     `json:"lighting,omitempty"`
	Lights   []string `json:"lights,omitempty"`
	// Shininess and Specular enable specular highlights when both are
	// positive.
	Shininess float64    `json:"shininess,omitempty"`
	Specular  [3]float64 `json:"specular,omitempty"`
	// Track lists the surface colours taken from the vertex colour:
	// "ambient", "diffuse", "specular", "emissive".
	Track    []string      `json:"track,omitempty"`
	Fog      string        `json:"fog,omitempty"`
	Textures []TextureDesc `json:"textures,omitempty"`
}

// Pass is an in-memory srs.Pass.
type Pass struct {
	name     string
	lighting bool
	lights   []srs.LightType
	specular bool
	tracking srs.TrackVertexColour
	fog      srs.FogMode
	units    []srs.TextureUnit
	caster   string
	receiver string
}

var _ srs.Pass = (*Pass)(nil)

var (
	lightNames = map[string]srs.LightType{
		"point":       srs.LightPoint,
		"directional": srs.LightDirectional,
		"spot":        srs.LightSpot,
	}
	trackNames = map[string]srs.TrackVertexColour{
		"ambient":  srs.TrackAmbient,
		"diffuse":  srs.TrackDiffuse,
		"specular": srs.TrackSpecular,
		"emissive": srs.TrackEmissive,
	}
	fogNames = map[string]srs.FogMode{
		"":       srs.FogNone,
		"none":   srs.FogNone,
		"linear": srs.FogLinear,
		"exp":    srs.FogExp,
		"exp2":   srs.FogExp2,
	}
	envMapNames = map[string]srs.EnvMap{
		"":           srs.EnvMapNone,
		"sphere":     srs.EnvMapSphere,
		"planar":     srs.EnvMapPlanar,
		"reflection": srs.EnvMapReflection,
		"normal":     srs.EnvMapNormal,
	}
	addressNames = map[string]srs.TextureAddressing{
		"":       srs.AddressWrap,
		"wrap":   srs.AddressWrap,
		"mirror": srs.AddressMirror,
		"clamp":  srs.AddressClamp,
		"border": srs.AddressBorder,
	}
	blendNames = map[string]srs.BlendOp{
		"":         srs.BlendModulate,
		"modulate": srs.BlendModulate,
		"add":      srs.BlendAdd,
		"subtract": srs.BlendSubtract,
		"replace":  srs.BlendReplace,
	}
	blendSourceNames = map[string]srs.BlendSource{
		"":         srs.BlendSourceDefault,
		"current":  srs.BlendSourceCurrent,
		"texture":  srs.BlendSourceTexture,
		"diffuse":  srs.BlendSourceDiffuse,
		"specular": srs.BlendSourceSpecular,
		"manual":   srs.BlendSourceManual,
	}
)

func lookup[T any](table map[string]T, kind, name string) (T, error) {
	v, ok := table[name]
	if !ok {
		return v, fmt.Errorf("material: unknown %s %q", kind, name)
	}
	return v, nil
}

// New builds a pass from d.
func New(d Desc) (*Pass, error) {
	p := &Pass{
		name:     d.Name,
		lighting: d.Lighting,
		specular: d.Shininess > 0 && (d.Specular[0] > 0 || d.Specular[1] > 0 || d.Specular[2] > 0),
	}
	for _, name := range d.Lights {
		l, err := lookup(lightNames, "light type", name)
		if err != nil {
			return nil, err
		}
		p.lights = append(p.lights, l)
	}
	for _, name := range d.Track {
		t, err := lookup(trackNames, "tracked colour", name)
		if err != nil {
			return nil, err
		}
		p.tracking |= t
	}
	var err error
	if p.fog, err = lookup(fogNames, "fog mode", d.Fog); err != nil {
		return nil, err
	}
	for i, td := range d.Textures {
		u := srs.TextureUnit{
			Name:        td.Name,
			TexCoordSet: td.TexCoordSet,
			Projective:  td.Projective,
			BlendColour: td.BlendColour,
		}
		if td.Cube {
			u.Type = srs.TextureCube
		}
		if u.EnvMap, err = lookup(envMapNames, "environment map", td.EnvMap); err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		if u.Addressing, err = lookup(addressNames, "addressing mode", td.Address); err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		if u.Blend, err = lookup(blendNames, "blend operation", td.Blend); err != nil {
			return nil, fmt.Errorf("texture %d: %w", i, err)
		}
		for j, name := range td.BlendArgs {
			if u.BlendArgs[j], err = lookup(blendSourceNames, "blend source", name); err != nil {
				return nil, fmt.Errorf("texture %d: %w", i, err)
			}
		}
		p.units = append(p.units, u)
	}
	return p, nil
}

// MustNew is like New but panics on error.
func MustNew(d Desc) *Pass {
	p, err := New(d)
	if err != nil {
		panic(err)
	}
	return p
}

func (p *Pass) Name() string                                { return p.name }
func (p *Pass) LightingEnabled() bool                       { return p.lighting }
func (p *Pass) Lights() []srs.LightType                     { return slices.Clone(p.lights) }
func (p *Pass) SpecularEnabled() bool                       { return p.specular }
func (p *Pass) VertexColourTracking() srs.TrackVertexColour { return p.tracking }
func (p *Pass) Fog() srs.FogMode                            { return p.fog }
func (p *Pass) TextureUnits() []srs.TextureUnit             { return slices.Clone(p.units) }

func (p *Pass) AddTextureUnit(u srs.TextureUnit) int {
	p.units = append(p.units, u)
	return len(p.units) - 1
}

func (p *Pass) SetShadowCasterMaterial(name string)   { p.caster = name }
func (p *Pass) SetShadowReceiverMaterial(name string) { p.receiver = name }

// ShadowCasterMaterial returns the material registered for rendering the
// pass into shadow maps.
func (p *Pass) ShadowCasterMaterial() string { return p.caster }

// ShadowReceiverMaterial returns the material registered for receiving
// shadows.
func (p *Pass) ShadowReceiverMaterial() string { return p.receiver }

// Clone returns a copy of p that shares no mutable state with it.
func (p *Pass) Clone() *Pass {
	c := *p
	c.lights = slices.Clone(p.lights)
	c.units = slices.Clone(p.units)
	return &c
}
