// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "fmt"

// Version represents a GLSL version.
type Version struct {
	Major uint8
	Minor uint8
	ES    bool // true for GLSL ES (OpenGL ES / WebGL)
}

// Common GLSL versions.
var (
	// Desktop OpenGL versions
	Version150 = Version{Major: 1, Minor: 50, ES: false} // OpenGL 3.2 Core
	Version330 = Version{Major: 3, Minor: 30, ES: false} // OpenGL 3.3 Core
	Version410 = Version{Major: 4, Minor: 10, ES: false} // OpenGL 4.1
	Version450 = Version{Major: 4, Minor: 50, ES: false} // OpenGL 4.5

	// OpenGL ES / WebGL versions
	VersionES300 = Version{Major: 3, Minor: 0, ES: true} // ES 3.0 / WebGL 2.0
)

// String returns the version as a GLSL version directive value.
func (v Version) String() string {
	if v.ES {
		return fmt.Sprintf("%d%02d es", v.Major, v.Minor)
	}
	return fmt.Sprintf("%d%02d core", v.Major, v.Minor)
}

// VersionNumber returns just the numeric version (e.g., "330", "300").
func (v Version) VersionNumber() string {
	return fmt.Sprintf("%d%02d", v.Major, v.Minor)
}

// versionLessThan returns true if the numeric version (Major*100+Minor) is
// less than the given number.
func (v Version) versionLessThan(number int) bool {
	return int(v.Major)*100+int(v.Minor) < number
}

// SupportsAttributeLocations reports whether vertex inputs and fragment
// outputs may carry layout(location) qualifiers.
func (v Version) SupportsAttributeLocations() bool {
	return v.ES || !v.versionLessThan(330)
}

func (v Version) valid() bool {
	if v.ES {
		return v.Major == 3
	}
	return !v.versionLessThan(150)
}
