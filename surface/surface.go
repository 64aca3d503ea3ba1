// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
)

// Surface is a 2D drawing target.
//
// All drawing coordinates are logical units transformed by the current
// scale. Size and Resize work in physical pixels.
type Surface interface {
	// Size returns the physical size in pixels.
	Size() (width, height int)

	// Resize changes the physical size. Contents are discarded when the
	// size changes; resizing to the current size is a no-op.
	Resize(width, height int) error

	// ResetTransform restores the identity transform.
	ResetTransform()

	// Scale multiplies the current transform by a scale.
	Scale(sx, sy float64)

	// Clear fills every pixel with c, ignoring the transform.
	Clear(c color.Color)

	// FillRect fills the rectangle with paint p.
	FillRect(x, y, w, h float64, p Paint) error

	// StrokeRect outlines the rectangle with a line of the given width.
	StrokeRect(x, y, w, h, width float64, c color.Color) error

	// FillPath fills path with paint p using the non-zero rule.
	FillPath(path *Path, p Paint) error

	// SetFont selects the font family and size (in logical units) used by
	// MeasureText and FillText.
	SetFont(family string, size float64) error

	// MeasureText returns the advance width of s in logical units.
	MeasureText(s string) (float64, error)

	// FillText draws s with its baseline at y, aligned at x.
	FillText(s string, x, y float64, align Align, c color.Color) error

	// Image returns the current contents.
	Image() image.Image

	// Close releases the surface. Close is idempotent.
	Close() error
}

// RestorableSurface is an optional interface for surfaces that can save
// their pixels and put them back.
type RestorableSurface interface {
	Surface

	// Snapshot returns a copy of the current pixels that later drawing
	// does not modify.
	Snapshot() image.Image

	// Restore resizes the surface to the bounds of img and replaces every
	// pixel with it.
	Restore(img image.Image) error
}

// Align is the horizontal text alignment relative to the anchor x.
type Align uint8

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "unknown"
}

// offset returns how far left of the anchor a run of width w starts.
func (a Align) offset(w float64) float64 {
	switch a {
	case AlignCenter:
		return w / 2
	case AlignRight:
		return w
	}
	return 0
}

// Errors.
var (
	// ErrClosed is returned by drawing calls on a closed surface.
	ErrClosed = errors.New("surface: closed")

	// ErrNoFont is returned by text calls before SetFont.
	ErrNoFont = errors.New("surface: no font set")

	// ErrInvalidSize is returned by Resize for non-positive dimensions.
	ErrInvalidSize = errors.New("surface: width and height must be positive")

	// ErrNilPath is returned by FillPath for a nil path.
	ErrNilPath = errors.New("surface: nil path")
)
