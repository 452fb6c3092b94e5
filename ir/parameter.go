package ir

import (
	"fmt"
	"strconv"
)

// Usage describes where a parameter lives in a program.
type Usage uint8

const (
	UsageInput Usage = iota
	UsageOutput
	UsageUniform
	UsageLocal
	UsageConstant
)

func (u Usage) String() string {
	switch u {
	case UsageInput:
		return "Input"
	case UsageOutput:
		return "Output"
	case UsageUniform:
		return "Uniform"
	case UsageLocal:
		return "Local"
	case UsageConstant:
		return "Constant"
	default:
		return "Usage(" + strconv.Itoa(int(u)) + ")"
	}
}

// Semantic is the hardware binding class of an input or output.
type Semantic uint8

const (
	SemanticUnknown Semantic = iota
	SemanticPosition
	SemanticBlendWeights
	SemanticBlendIndices
	SemanticNormal
	SemanticColor
	SemanticTexCoord
	SemanticBinormal
	SemanticTangent
)

var semanticNames = [...]string{
	SemanticUnknown:      "Unknown",
	SemanticPosition:     "Position",
	SemanticBlendWeights: "BlendWeights",
	SemanticBlendIndices: "BlendIndices",
	SemanticNormal:       "Normal",
	SemanticColor:        "Color",
	SemanticTexCoord:     "TexCoord",
	SemanticBinormal:     "Binormal",
	SemanticTangent:      "Tangent",
}

func (s Semantic) String() string {
	if int(s) < len(semanticNames) {
		return semanticNames[s]
	}
	return "Semantic(" + strconv.Itoa(int(s)) + ")"
}

// Type is the data type of a parameter.
type Type uint8

const (
	TypeUnknown Type = iota
	TypeFloat1
	TypeFloat2
	TypeFloat3
	TypeFloat4
	TypeInt1
	TypeMatrix3x3
	TypeMatrix4x4
	TypeSampler2D
	TypeSamplerCube
)

var typeNames = [...]string{
	TypeUnknown:     "Unknown",
	TypeFloat1:      "Float1",
	TypeFloat2:      "Float2",
	TypeFloat3:      "Float3",
	TypeFloat4:      "Float4",
	TypeInt1:        "Int1",
	TypeMatrix3x3:   "Matrix3x3",
	TypeMatrix4x4:   "Matrix4x4",
	TypeSampler2D:   "Sampler2D",
	TypeSamplerCube: "SamplerCube",
}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

// FloatType returns the float vector type with n components.
// It panics when n is outside 1..4.
func FloatType(n int) Type {
	if n < 1 || n > 4 {
		panic(fmt.Sprintf("ir: invalid float component count %d", n))
	}
	return TypeFloat1 + Type(n-1)
}

// IsFloatVector reports whether t is one of Float1..Float4.
func (t Type) IsFloatVector() bool {
	return t >= TypeFloat1 && t <= TypeFloat4
}

// IsMatrix reports whether t is a matrix type.
func (t Type) IsMatrix() bool {
	return t == TypeMatrix3x3 || t == TypeMatrix4x4
}

// IsSampler reports whether t is a sampler type.
func (t Type) IsSampler() bool {
	return t == TypeSampler2D || t == TypeSamplerCube
}

// Components returns the number of scalar components of a vector type:
// 1..4 for float vectors, 1 for Int1, and 0 for every other type.
func (t Type) Components() int {
	switch {
	case t.IsFloatVector():
		return int(t-TypeFloat1) + 1
	case t == TypeInt1:
		return 1
	default:
		return 0
	}
}

// Content tags what a parameter carries, independently of its name.
type Content uint16

const (
	ContentUnknown Content = iota

	ContentPositionObjectSpace
	ContentPositionWorldSpace
	ContentPositionViewSpace
	ContentPositionProjectiveSpace

	ContentPositionLightSpace0
	ContentPositionLightSpace1
	ContentPositionLightSpace2
	ContentPositionLightSpace3
	ContentPositionLightSpace4
	ContentPositionLightSpace5
	ContentPositionLightSpace6
	ContentPositionLightSpace7

	ContentNormalObjectSpace
	ContentNormalWorldSpace
	ContentNormalViewSpace
	ContentNormalTangentSpace

	ContentTangentObjectSpace
	ContentBinormalObjectSpace

	ContentColorDiffuse
	ContentColorSpecular

	ContentDepthViewSpace

	ContentTexCoord0
	ContentTexCoord1
	ContentTexCoord2
	ContentTexCoord3
	ContentTexCoord4
	ContentTexCoord5
	ContentTexCoord6
	ContentTexCoord7

	ContentBlendWeights
	ContentBlendIndices

	ContentPostOCameraTangentSpace
	ContentPostOCameraObjectSpace

	ContentLightDirectionTangentSpace0
	ContentLightDirectionTangentSpace1
	ContentLightDirectionTangentSpace2
	ContentLightDirectionTangentSpace3
	ContentLightDirectionTangentSpace4
	ContentLightDirectionTangentSpace5
	ContentLightDirectionTangentSpace6
	ContentLightDirectionTangentSpace7

	ContentLightDirectionObjectSpace0
	ContentLightDirectionObjectSpace1
	ContentLightDirectionObjectSpace2
	ContentLightDirectionObjectSpace3
	ContentLightDirectionObjectSpace4
	ContentLightDirectionObjectSpace5
	ContentLightDirectionObjectSpace6
	ContentLightDirectionObjectSpace7
)

// Contents in [ContentPackedRegisterBegin, ContentPackedRegisterEnd] tag the
// interpolator registers created by varying packing.
const (
	ContentPackedRegisterBegin Content = 900
	ContentPackedRegisterEnd   Content = 999
)

// Contents in [ContentCustomBegin, ContentCustomEnd] are free for sub render
// states to tag their own varyings and temporaries.
const (
	ContentCustomBegin Content = 1000
	ContentCustomEnd   Content = 2000
)

// MaxIndexedContents is the number of contents in each indexed family
// (light space positions, tangent space light directions, texture coordinates).
const MaxIndexedContents = 8

// TexCoordContent returns the texture coordinate content for set i.
func TexCoordContent(i int) Content { return indexedContent(ContentTexCoord0, i) }

// PositionLightSpaceContent returns the light space position content for light i.
func PositionLightSpaceContent(i int) Content {
	return indexedContent(ContentPositionLightSpace0, i)
}

// LightDirectionTangentSpaceContent returns the tangent space light direction content for light i.
func LightDirectionTangentSpaceContent(i int) Content {
	return indexedContent(ContentLightDirectionTangentSpace0, i)
}

// LightDirectionObjectSpaceContent returns the object space light direction content for light i.
func LightDirectionObjectSpaceContent(i int) Content {
	return indexedContent(ContentLightDirectionObjectSpace0, i)
}

func indexedContent(base Content, i int) Content {
	if i < 0 || i >= MaxIndexedContents {
		panic(fmt.Sprintf("ir: content index %d out of range", i))
	}
	return base + Content(i)
}

// PackedRegisterContent returns the content of packed register i.
func PackedRegisterContent(i int) Content {
	c := ContentPackedRegisterBegin + Content(i)
	if i < 0 || c > ContentPackedRegisterEnd {
		panic(fmt.Sprintf("ir: packed register %d out of range", i))
	}
	return c
}

// IsPackedRegister reports whether c tags a packed interpolator register.
func (c Content) IsPackedRegister() bool {
	return c >= ContentPackedRegisterBegin && c <= ContentPackedRegisterEnd
}

// IsCustom reports whether c lies in the custom content range.
func (c Content) IsCustom() bool {
	return c >= ContentCustomBegin && c <= ContentCustomEnd
}

var contentNames = map[Content]string{
	ContentUnknown:                 "Unknown",
	ContentPositionObjectSpace:     "PositionObjectSpace",
	ContentPositionWorldSpace:      "PositionWorldSpace",
	ContentPositionViewSpace:       "PositionViewSpace",
	ContentPositionProjectiveSpace: "PositionProjectiveSpace",
	ContentNormalObjectSpace:       "NormalObjectSpace",
	ContentNormalWorldSpace:        "NormalWorldSpace",
	ContentNormalViewSpace:         "NormalViewSpace",
	ContentNormalTangentSpace:      "NormalTangentSpace",
	ContentTangentObjectSpace:      "TangentObjectSpace",
	ContentBinormalObjectSpace:     "BinormalObjectSpace",
	ContentColorDiffuse:            "ColorDiffuse",
	ContentColorSpecular:           "ColorSpecular",
	ContentDepthViewSpace:          "DepthViewSpace",
	ContentBlendWeights:            "BlendWeights",
	ContentBlendIndices:            "BlendIndices",
	ContentPostOCameraTangentSpace: "PostOCameraTangentSpace",
	ContentPostOCameraObjectSpace:  "PostOCameraObjectSpace",
}

func (c Content) String() string {
	if name, ok := contentNames[c]; ok {
		return name
	}
	families := []struct {
		base Content
		name string
	}{
		{ContentPositionLightSpace0, "PositionLightSpace"},
		{ContentTexCoord0, "TexCoord"},
		{ContentLightDirectionTangentSpace0, "LightDirectionTangentSpace"},
		{ContentLightDirectionObjectSpace0, "LightDirectionObjectSpace"},
	}
	for _, f := range families {
		if c >= f.base && c < f.base+MaxIndexedContents {
			return f.name + strconv.Itoa(int(c-f.base))
		}
	}
	if c.IsPackedRegister() {
		return "PackedRegister" + strconv.Itoa(int(c-ContentPackedRegisterBegin))
	}
	if c.IsCustom() {
		return "Custom" + strconv.Itoa(int(c-ContentCustomBegin))
	}
	return "Content(" + strconv.Itoa(int(c)) + ")"
}

// Parameter is a typed, semantically tagged value of a program.
//
// Parameters are created through the Program resolve methods (or NewConstant)
// and are never mutated by varying packing: merged registers reference their
// sources instead.
type Parameter struct {
	Name     string
	Semantic Semantic
	// Index distinguishes parameters sharing a semantic (TEXCOORD3, COLOR1).
	// For samplers it is the texture unit.
	Index   int
	Type    Type
	Usage   Usage
	Content Content

	// ArraySize is non-zero for uniform arrays.
	ArraySize int

	// Auto names the engine-provided value a uniform is bound to.
	Auto      AutoConstant
	AutoIndex int

	// Values holds the literal of a constant or the default value of a
	// custom uniform.
	Values []float64
}

func (p *Parameter) String() string {
	if p == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s %s %s", p.Usage, p.Type, p.Name)
}

// IsArray reports whether p is a uniform array.
func (p *Parameter) IsArray() bool { return p.ArraySize > 0 }

// NewConstant returns a constant parameter holding the given literal.
// One value yields a Float1, two to four values the matching float vector.
func NewConstant(values ...float64) *Parameter {
	vals := make([]float64, len(values))
	copy(vals, values)
	return &Parameter{
		Name:   "const",
		Type:   FloatType(len(values)),
		Usage:  UsageConstant,
		Values: vals,
	}
}
