// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package surface

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"slices"

	"github.com/gogpu/gg/text"

	"github.com/gogpu/card/fonts"
)

// CommandType identifies a recorded Surface call.
type CommandType uint8

const (
	CmdResize         CommandType = iota // physical W, H
	CmdResetTransform                    // no operands
	CmdScale                             // X, Y factors
	CmdClear                             // Color
	CmdFillRect                          // X, Y, W, H, Paint
	CmdStrokeRect                        // X, Y, W, H, LineWidth, Color
	CmdFillPath                          // Path, Paint
	CmdSetFont                           // Family, Size
	CmdFillText                          // Text, X, Y, Align, Color
)

var commandTypeNames = [...]string{
	CmdResize:         "Resize",
	CmdResetTransform: "ResetTransform",
	CmdScale:          "Scale",
	CmdClear:          "Clear",
	CmdFillRect:       "FillRect",
	CmdStrokeRect:     "StrokeRect",
	CmdFillPath:       "FillPath",
	CmdSetFont:        "SetFont",
	CmdFillText:       "FillText",
}

// String returns the name of the command type.
func (c CommandType) String() string {
	if int(c) < len(commandTypeNames) {
		return commandTypeNames[c]
	}
	return "Unknown"
}

// Command is one recorded call. Only the fields listed for its Type are set.
type Command struct {
	Type CommandType

	X, Y, W, H float64
	LineWidth  float64

	Paint Paint
	Color color.Color
	Path  *Path

	Text   string
	Align  Align
	Family string
	Size   float64
}

// Recorder is a Surface that records calls instead of rasterizing them.
// Image reflects Clear only. Text is measured with real font metrics.
type Recorder struct {
	img   *image.NRGBA
	fonts *fonts.Registry
	cmds  []Command

	sx, sy float64
	face   text.Face

	closed bool
}

// NewRecorder creates a recorder of width x height physical pixels.
func NewRecorder(width, height int, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		img:   image.NewNRGBA(image.Rect(0, 0, max(width, 1), max(height, 1))),
		fonts: fonts.Default(),
		sx:    1,
		sy:    1,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RecorderOption configures a Recorder.
type RecorderOption func(*Recorder)

// WithRecorderFonts sets the font registry used for measurement.
func WithRecorderFonts(f *fonts.Registry) RecorderOption {
	return func(r *Recorder) {
		if f != nil {
			r.fonts = f
		}
	}
}

func (r *Recorder) record(c Command) { r.cmds = append(r.cmds, c) }

// Commands returns a copy of the recorded calls.
func (r *Recorder) Commands() []Command { return slices.Clone(r.cmds) }

// Count returns how many calls of type t were recorded.
func (r *Recorder) Count(t CommandType) int {
	n := 0
	for _, c := range r.cmds {
		if c.Type == t {
			n++
		}
	}
	return n
}

// Texts returns the strings passed to FillText, in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, c := range r.cmds {
		if c.Type == CmdFillText {
			out = append(out, c.Text)
		}
	}
	return out
}

// Reset discards the recorded calls.
func (r *Recorder) Reset() { r.cmds = r.cmds[:0] }

// Transform returns the current scale factors.
func (r *Recorder) Transform() (sx, sy float64) { return r.sx, r.sy }

// Size implements Surface.
func (r *Recorder) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

// Resize implements Surface. Every call is recorded, including no-ops.
func (r *Recorder) Resize(width, height int) error {
	if r.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, width, height)
	}
	r.record(Command{Type: CmdResize, W: float64(width), H: float64(height)})
	if w, h := r.Size(); w != width || h != height {
		r.img = image.NewNRGBA(image.Rect(0, 0, width, height))
	}
	return nil
}

// ResetTransform implements Surface.
func (r *Recorder) ResetTransform() {
	r.sx, r.sy = 1, 1
	r.record(Command{Type: CmdResetTransform})
}

// Scale implements Surface.
func (r *Recorder) Scale(sx, sy float64) {
	r.sx *= sx
	r.sy *= sy
	r.record(Command{Type: CmdScale, X: sx, Y: sy})
}

// Clear implements Surface.
func (r *Recorder) Clear(c color.Color) {
	if r.closed {
		return
	}
	r.record(Command{Type: CmdClear, Color: c})
	if c == nil {
		c = color.Transparent
	}
	draw.Draw(r.img, r.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// FillRect implements Surface.
func (r *Recorder) FillRect(x, y, w, h float64, p Paint) error {
	if r.closed {
		return ErrClosed
	}
	r.record(Command{Type: CmdFillRect, X: x, Y: y, W: w, H: h, Paint: p})
	return nil
}

// StrokeRect implements Surface.
func (r *Recorder) StrokeRect(x, y, w, h, width float64, c color.Color) error {
	if r.closed {
		return ErrClosed
	}
	r.record(Command{Type: CmdStrokeRect, X: x, Y: y, W: w, H: h, LineWidth: width, Color: c})
	return nil
}

// FillPath implements Surface. The path is copied.
func (r *Recorder) FillPath(path *Path, p Paint) error {
	if r.closed {
		return ErrClosed
	}
	if path == nil {
		return ErrNilPath
	}
	r.record(Command{Type: CmdFillPath, Path: path.Clone(), Paint: p})
	return nil
}

// SetFont implements Surface. Unknown families fall back to fonts.Fallback.
func (r *Recorder) SetFont(family string, size float64) error {
	if r.closed {
		return ErrClosed
	}
	resolved := r.fonts.Resolve(family)
	face, err := r.fonts.Face(resolved, size)
	if err != nil {
		return fmt.Errorf("surface: %w", err)
	}
	r.face = face
	r.record(Command{Type: CmdSetFont, Family: resolved, Size: size})
	return nil
}

// MeasureText implements Surface.
func (r *Recorder) MeasureText(s string) (float64, error) {
	if r.face == nil {
		return 0, ErrNoFont
	}
	w, _ := text.Measure(s, r.face)
	return w, nil
}

// FillText implements Surface.
func (r *Recorder) FillText(s string, x, y float64, align Align, c color.Color) error {
	if r.closed {
		return ErrClosed
	}
	if r.face == nil {
		return ErrNoFont
	}
	r.record(Command{Type: CmdFillText, Text: s, X: x, Y: y, Align: align, Color: c})
	return nil
}

// Image implements Surface.
func (r *Recorder) Image() image.Image { return r.img }

// Snapshot implements RestorableSurface.
func (r *Recorder) Snapshot() image.Image { return cloneNRGBA(r.img) }

// Restore implements RestorableSurface. It is not recorded.
func (r *Recorder) Restore(img image.Image) error {
	if r.closed {
		return ErrClosed
	}
	r.img = cloneNRGBA(img)
	return nil
}

// Close implements Surface.
func (r *Recorder) Close() error {
	r.closed = true
	return nil
}

func cloneNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

var _ RestorableSurface = (*Recorder)(nil)
