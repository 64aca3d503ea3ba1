// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the drawing target the card renderer paints on.
//
// Surface is a small immediate-mode 2D API: filled and stroked rectangles,
// filled paths, solid and linear-gradient paints, and single-line text with
// horizontal alignment. Coordinates are logical units; Scale maps them to
// physical pixels, which is how the renderer handles display density.
//
// # Backends
//
//   - Canvas: rasterizes with github.com/gogpu/gg on the CPU.
//   - Recorder: records every call as a Command and rasterizes nothing.
//     Text measurement still uses real font metrics, so layout matches
//     Canvas exactly. Useful in tests and for dry runs.
//
// Backends are registered by name in a priority registry ("gg" first,
// then "record"):
//
//	s, err := surface.NewSurfaceWithOptions("gg", surface.Options{Width: 1200, Height: 1600})
//	// or the best available:
//	s, err := surface.NewSurfaceWithOptions("", surface.Options{Width: 1200, Height: 1600})
//
// # Usage
//
//	s := surface.NewCanvas(1200, 1600)
//	defer s.Close()
//
//	s.ResetTransform()
//	s.Scale(2, 2)
//	s.Clear(color.White)
//	_ = s.FillRect(0, 0, 600, 800, surface.LinearGradient{
//	    X1: 600, Y1: 800,
//	    Stops: []surface.Stop{{0, from}, {1, to}},
//	})
//	_ = s.SetFont("Go", 44)
//	_ = s.FillText("Dear Friend", 300, 150, surface.AlignCenter, primary)
//
// Surfaces are not safe for concurrent use.
package surface
