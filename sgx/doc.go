// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package sgx provides sub render states beyond the fixed-function
// pipeline: hardware skinning, integrated parallel-split shadow maps,
// per-pixel lighting and normal map lighting.
//
// Script properties:
//
//	hardware_skinning <bones> <weights> [linear|dual_quaternion] [<antipodality>] [<scale_shear>]
//	integrated_pssm4 <s0> <s1> <s2> <s3>
//	lighting_stage per_pixel
//	lighting_stage normal_map <texture> [tangent_space|object_space] [<texcoord set>]
//
// Hardware skinning never fails: unsupported bone or weight counts turn it
// into a pass-through stage, see HardwareSkinning.DoBoneCalculations.
package sgx
