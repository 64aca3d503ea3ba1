// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image/color"

	"github.com/gogpu/gg"
)

// Paint is the source of color for fills. It is implemented by Solid and
// LinearGradient only.
type Paint interface {
	paint()
}

// Solid paints a single color.
type Solid struct {
	Color color.Color
}

func (Solid) paint() {}

// Stop is a gradient color stop. Offset is in [0, 1].
type Stop struct {
	Offset float64
	Color  color.Color
}

// LinearGradient interpolates its stops along the line from (X0, Y0) to
// (X1, Y1), in logical units. Colors are padded beyond the ends.
type LinearGradient struct {
	X0, Y0 float64
	X1, Y1 float64
	Stops  []Stop
}

func (LinearGradient) paint() {}

// rgba converts c to gg's straight-alpha color.
func rgba(c color.Color) gg.RGBA {
	if c == nil {
		return gg.RGBA{}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return gg.RGBA2(
		float64(n.R)/255,
		float64(n.G)/255,
		float64(n.B)/255,
		float64(n.A)/255,
	)
}
