// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

// LightType is the kind of a light affecting a pass.
type LightType uint8

const (
	LightPoint LightType = iota
	LightDirectional
	LightSpot
)

func (t LightType) String() string {
	switch t {
	case LightPoint:
		return "point"
	case LightDirectional:
		return "directional"
	case LightSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// TrackVertexColour selects material colours taken from the vertex colour.
type TrackVertexColour uint8

const (
	TrackNone     TrackVertexColour = 0
	TrackAmbient  TrackVertexColour = 1 << 0
	TrackDiffuse  TrackVertexColour = 1 << 1
	TrackSpecular TrackVertexColour = 1 << 2
	TrackEmissive TrackVertexColour = 1 << 3
)

// FogMode is the fog equation of a pass.
type FogMode uint8

const (
	FogNone FogMode = iota
	FogLinear
	FogExp
	FogExp2
)

func (m FogMode) String() string {
	switch m {
	case FogNone:
		return "none"
	case FogLinear:
		return "linear"
	case FogExp:
		return "exp"
	case FogExp2:
		return "exp2"
	default:
		return "unknown"
	}
}

// TextureType is the dimension of a texture unit.
type TextureType uint8

const (
	Texture2D TextureType = iota
	TextureCube
)

// TextureKind tells which sub render state samples a texture unit.
type TextureKind uint8

const (
	// TextureColour units are blended into the diffuse colour by texturing.
	TextureColour TextureKind = iota
	// TextureNormalMap units hold tangent or object space normals.
	TextureNormalMap
	// TextureShadow units hold shadow map depths.
	TextureShadow
)

// EnvMap selects generated texture coordinates.
type EnvMap uint8

const (
	EnvMapNone EnvMap = iota
	EnvMapSphere
	// EnvMapPlanar is generated like EnvMapSphere.
	EnvMapPlanar
	EnvMapReflection
	// EnvMapNormal looks a cube map up with the view space normal.
	EnvMapNormal
)

// BlendOp combines the two blend arguments of a texture unit.
type BlendOp uint8

const (
	BlendModulate BlendOp = iota
	BlendAdd
	BlendSubtract
	// BlendReplace takes the second argument.
	BlendReplace
)

// BlendSource is a blend argument. The zero value picks the default of the
// argument: the colour so far for the first, the texel for the second.
type BlendSource uint8

const (
	BlendSourceDefault BlendSource = iota
	BlendSourceCurrent
	BlendSourceTexture
	BlendSourceDiffuse
	BlendSourceSpecular
	BlendSourceManual
)

// TextureAddressing is the addressing mode of a texture unit.
type TextureAddressing uint8

const (
	AddressWrap TextureAddressing = iota
	AddressMirror
	AddressClamp
	AddressBorder
)

// TextureUnit is one texture bound to a pass.
type TextureUnit struct {
	Name        string
	Type        TextureType
	Kind        TextureKind
	TexCoordSet int
	EnvMap      EnvMap
	// Projective units are looked up through the texture view projection
	// matrix of the unit.
	Projective bool
	Addressing TextureAddressing

	Blend       BlendOp
	BlendArgs   [2]BlendSource
	BlendColour [4]float64 // BlendSourceManual value
}

// Pass is the render pass programs are generated for. It is owned by the
// material system; sub render states read its state and may register
// texture units and shadow materials on it.
type Pass interface {
	Name() string

	LightingEnabled() bool
	// Lights lists the lights the pass is lit by, in binding order.
	Lights() []LightType
	// SpecularEnabled reports a positive shininess with a non-black specular.
	SpecularEnabled() bool
	VertexColourTracking() TrackVertexColour
	Fog() FogMode

	// TextureUnits returns the units in binding order; a unit's position is
	// its sampler index.
	TextureUnits() []TextureUnit
	// AddTextureUnit appends u and returns its index.
	AddTextureUnit(u TextureUnit) int

	SetShadowCasterMaterial(name string)
	SetShadowReceiverMaterial(name string)
}
