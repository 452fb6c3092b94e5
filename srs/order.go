// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package srs

// Execution orders of the built-in stages. Functions run in ascending order;
// contributions sharing an order keep their insertion sequence.
const (
	OrderPreProcess  = 0
	OrderTransform   = 100
	OrderColour      = 200
	OrderLighting    = 300
	OrderTexturing   = 400
	OrderFog         = 500
	OrderPostProcess = 2000
)

// OrderTextureSampling is the order of the fragment function that fetches
// the texels texturing later blends. Functions between it and
// OrderTexturing may replace those texels.
const OrderTextureSampling = OrderTexturing - 50
