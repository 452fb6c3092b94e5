// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package ffp provides sub render states reproducing the fixed-function
// pipeline: vertex transform, vertex colour, per-vertex lighting, texturing
// and fog.
//
// Each state comes with a factory reading its material script property:
//
//	transform_stage ffp
//	colour_stage ffp
//	lighting_stage ffp
//	texturing_stage ffp
//	fog_stage ffp [per_vertex|per_pixel]
package ffp
