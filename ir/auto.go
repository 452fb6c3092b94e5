package ir

import "strconv"

// AutoConstant names a uniform value the render system supplies every frame.
type AutoConstant uint8

const (
	AutoNone AutoConstant = iota
	AutoWorldMatrix
	AutoInverseWorldMatrix
	AutoWorldViewMatrix
	AutoWorldViewProjMatrix
	AutoViewProjMatrix
	AutoInverseTransposeWorldViewMatrix
	AutoWorldMatrixArray
	AutoWorldDualQuaternionRealArray
	AutoWorldDualQuaternionDualArray
	AutoWorldScaleShearMatrixArray
	AutoDerivedAmbientLightColour
	AutoDerivedSceneColour
	AutoSurfaceEmissiveColour
	AutoSurfaceShininess
	AutoCameraPositionObjectSpace
	AutoLightPositionViewSpace
	AutoLightDirectionViewSpace
	AutoLightPositionObjectSpace
	AutoLightDirectionObjectSpace
	AutoLightAttenuation
	AutoSpotlightParams
	AutoDerivedLightDiffuseColour
	AutoDerivedLightSpecularColour
	AutoFogColour
	AutoFogParams
	AutoTextureWorldViewProjMatrix
	AutoTextureViewProjMatrix
)

type autoInfo struct {
	name    string
	typ     Type
	indexed bool
	array   bool
}

var autoTable = map[AutoConstant]autoInfo{
	AutoWorldMatrix:                     {"worldMatrix", TypeMatrix4x4, false, false},
	AutoInverseWorldMatrix:              {"inverseWorldMatrix", TypeMatrix4x4, false, false},
	AutoWorldViewMatrix:                 {"worldViewMatrix", TypeMatrix4x4, false, false},
	AutoWorldViewProjMatrix:             {"worldViewProjMatrix", TypeMatrix4x4, false, false},
	AutoViewProjMatrix:                  {"viewProjMatrix", TypeMatrix4x4, false, false},
	AutoInverseTransposeWorldViewMatrix: {"inverseTransposeWorldViewMatrix", TypeMatrix3x3, false, false},
	AutoWorldMatrixArray:                {"worldMatrixArray", TypeMatrix4x4, false, true},
	AutoWorldDualQuaternionRealArray:    {"worldDualQuaternionReal", TypeFloat4, false, true},
	AutoWorldDualQuaternionDualArray:    {"worldDualQuaternionDual", TypeFloat4, false, true},
	AutoWorldScaleShearMatrixArray:      {"worldScaleShearMatrixArray", TypeMatrix4x4, false, true},
	AutoDerivedAmbientLightColour:       {"derivedAmbientLightColour", TypeFloat4, false, false},
	AutoDerivedSceneColour:              {"derivedSceneColour", TypeFloat4, false, false},
	AutoSurfaceEmissiveColour:           {"surfaceEmissiveColour", TypeFloat4, false, false},
	AutoSurfaceShininess:                {"surfaceShininess", TypeFloat1, false, false},
	AutoCameraPositionObjectSpace:       {"cameraPositionObjectSpace", TypeFloat4, false, false},
	AutoLightPositionViewSpace:          {"lightPositionViewSpace", TypeFloat4, true, false},
	AutoLightDirectionViewSpace:         {"lightDirectionViewSpace", TypeFloat4, true, false},
	AutoLightPositionObjectSpace:        {"lightPositionObjectSpace", TypeFloat4, true, false},
	AutoLightDirectionObjectSpace:       {"lightDirectionObjectSpace", TypeFloat4, true, false},
	AutoLightAttenuation:                {"lightAttenuation", TypeFloat4, true, false},
	AutoSpotlightParams:                 {"spotlightParams", TypeFloat4, true, false},
	AutoDerivedLightDiffuseColour:       {"derivedLightDiffuseColour", TypeFloat4, true, false},
	AutoDerivedLightSpecularColour:      {"derivedLightSpecularColour", TypeFloat4, true, false},
	AutoFogColour:                       {"fogColour", TypeFloat4, false, false},
	AutoFogParams:                       {"fogParams", TypeFloat4, false, false},
	AutoTextureWorldViewProjMatrix:      {"textureWorldViewProjMatrix", TypeMatrix4x4, true, false},
	AutoTextureViewProjMatrix:           {"textureViewProjMatrix", TypeMatrix4x4, true, false},
}

func (a AutoConstant) String() string {
	if a == AutoNone {
		return "None"
	}
	if info, ok := autoTable[a]; ok {
		return info.name
	}
	return "AutoConstant(" + strconv.Itoa(int(a)) + ")"
}

// Type returns the uniform type the render system binds for a.
func (a AutoConstant) Type() Type { return autoTable[a].typ }

// Indexed reports whether a exists once per light or texture unit.
func (a AutoConstant) Indexed() bool { return autoTable[a].indexed }

// Array reports whether a is bound as a uniform array.
func (a AutoConstant) Array() bool { return autoTable[a].array }

// uniformName returns the declared name of auto constant a at index.
func (a AutoConstant) uniformName(index int) string {
	info := autoTable[a]
	if info.indexed {
		return info.name + strconv.Itoa(index)
	}
	return info.name
}
