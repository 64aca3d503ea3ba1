// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/card/fonts"
)

// Canvas is a Surface rasterized on the CPU by gg.
//
// Canvas maps logical coordinates to device pixels itself and keeps the gg
// context at the identity transform, so paths, gradient endpoints, line
// widths and text are scaled the same way.
type Canvas struct {
	dc    *gg.Context
	fonts *fonts.Registry

	sx, sy float64

	family string
	size   float64
	face   text.Face // at the logical size, for measurement

	closed bool
}

// CanvasOption configures a Canvas.
type CanvasOption func(*Canvas)

// WithFonts sets the font registry. The default is fonts.Default().
func WithFonts(r *fonts.Registry) CanvasOption {
	return func(c *Canvas) {
		if r != nil {
			c.fonts = r
		}
	}
}

// NewCanvas creates a canvas of width x height physical pixels.
// Non-positive dimensions are raised to 1.
func NewCanvas(width, height int, opts ...CanvasOption) *Canvas {
	c := &Canvas{
		dc:    gg.NewContext(max(width, 1), max(height, 1)),
		fonts: fonts.Default(),
		sx:    1,
		sy:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Context returns the underlying gg context.
func (c *Canvas) Context() *gg.Context { return c.dc }

// Size implements Surface.
func (c *Canvas) Size() (int, int) { return c.dc.Width(), c.dc.Height() }

// Resize implements Surface.
func (c *Canvas) Resize(width, height int) error {
	if c.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	return c.dc.Resize(width, height)
}

// ResetTransform implements Surface.
func (c *Canvas) ResetTransform() {
	c.sx, c.sy = 1, 1
	c.dc.Identity()
}

// Scale implements Surface.
func (c *Canvas) Scale(sx, sy float64) {
	c.sx *= sx
	c.sy *= sy
}

// Clear implements Surface.
func (c *Canvas) Clear(col color.Color) {
	if c.closed {
		return
	}
	c.dc.ClearWithColor(rgba(col))
}

// FillRect implements Surface.
func (c *Canvas) FillRect(x, y, w, h float64, p Paint) error {
	path := NewPath()
	path.Rect(x, y, w, h)
	return c.FillPath(path, p)
}

// StrokeRect implements Surface.
func (c *Canvas) StrokeRect(x, y, w, h, width float64, col color.Color) error {
	if c.closed {
		return ErrClosed
	}
	path := NewPath()
	path.Rect(x, y, w, h)
	c.trace(path)
	c.dc.SetStrokeBrush(gg.Solid(rgba(col)))
	c.dc.SetLineWidth(width * (c.sx + c.sy) / 2)
	if err := c.dc.Stroke(); err != nil {
		return fmt.Errorf("surface: stroke: %w", err)
	}
	return nil
}

// FillPath implements Surface.
func (c *Canvas) FillPath(path *Path, p Paint) error {
	if c.closed {
		return ErrClosed
	}
	if path == nil {
		return ErrNilPath
	}
	if path.IsEmpty() {
		return nil
	}
	c.trace(path)
	c.dc.SetFillBrush(c.brush(p))
	if err := c.dc.Fill(); err != nil {
		return fmt.Errorf("surface: fill: %w", err)
	}
	return nil
}

// trace replays path into the gg context in device coordinates.
func (c *Canvas) trace(path *Path) {
	c.dc.ClearPath()
	path.Walk(func(v Verb, pts []float64) {
		switch v {
		case VerbMoveTo:
			c.dc.MoveTo(pts[0]*c.sx, pts[1]*c.sy)
		case VerbLineTo:
			c.dc.LineTo(pts[0]*c.sx, pts[1]*c.sy)
		case VerbCubicTo:
			c.dc.CubicTo(
				pts[0]*c.sx, pts[1]*c.sy,
				pts[2]*c.sx, pts[3]*c.sy,
				pts[4]*c.sx, pts[5]*c.sy)
		case VerbClose:
			c.dc.ClosePath()
		}
	})
}

func (c *Canvas) brush(p Paint) gg.Brush {
	switch p := p.(type) {
	case Solid:
		return gg.Solid(rgba(p.Color))
	case LinearGradient:
		g := gg.NewLinearGradientBrush(p.X0*c.sx, p.Y0*c.sy, p.X1*c.sx, p.Y1*c.sy)
		for _, s := range p.Stops {
			g.AddColorStop(s.Offset, rgba(s.Color))
		}
		return g
	}
	return gg.Solid(gg.Black)
}

// SetFont implements Surface. Unknown families fall back to fonts.Fallback.
func (c *Canvas) SetFont(family string, size float64) error {
	if c.closed {
		return ErrClosed
	}
	family = c.fonts.Resolve(family)
	face, err := c.fonts.Face(family, size)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	c.family, c.size, c.face = family, size, face
	return nil
}

// MeasureText implements Surface.
func (c *Canvas) MeasureText(s string) (float64, error) {
	if c.face == nil {
		return 0, ErrNoFont
	}
	w, _ := text.Measure(s, c.face)
	return w, nil
}

// FillText implements Surface.
func (c *Canvas) FillText(s string, x, y float64, align Align, col color.Color) error {
	if c.closed {
		return ErrClosed
	}
	if c.face == nil {
		return ErrNoFont
	}
	if s == "" {
		return nil
	}
	w, _ := text.Measure(s, c.face)
	device, err := c.fonts.Face(c.family, c.size*c.sy)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	c.dc.SetFont(device)
	c.dc.SetFillBrush(gg.Solid(rgba(col)))
	c.dc.DrawString(s, (x-align.offset(w))*c.sx, y*c.sy)
	return nil
}

// Image implements Surface.
func (c *Canvas) Image() image.Image { return c.dc.Image() }

// Snapshot implements RestorableSurface.
func (c *Canvas) Snapshot() image.Image { return c.dc.Image() }

// Restore implements RestorableSurface.
func (c *Canvas) Restore(img image.Image) error {
	if c.closed {
		return ErrClosed
	}
	b := img.Bounds()
	if err := c.Resize(b.Dx(), b.Dy()); err != nil {
		return err
	}
	// The pixmap stores rows of RGBA bytes, the layout of image.RGBA.
	pm := c.dc.ResizeTarget()
	dst := &image.RGBA{Pix: pm.Data(), Stride: 4 * pm.Width(), Rect: image.Rect(0, 0, pm.Width(), pm.Height())}
	draw.Draw(dst, dst.Rect, img, b.Min, draw.Src)
	return nil
}

// Close implements Surface.
func (c *Canvas) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.dc.Close()
}

var _ RestorableSurface = (*Canvas)(nil)
