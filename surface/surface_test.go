// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

var (
	white = color.NRGBA{255, 255, 255, 255}
	red   = color.NRGBA{255, 0, 0, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

func pixel(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// near allows for rounding in the float color pipeline.
func near(a, b color.NRGBA) bool {
	d := func(x, y uint8) bool { return max(x, y)-min(x, y) <= 2 }
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func luminance(c color.NRGBA) int { return int(c.R) + int(c.G) + int(c.B) }

func TestCanvasSizeAndResize(t *testing.T) {
	c := NewCanvas(60, 80)
	defer c.Close()

	if w, h := c.Size(); w != 60 || h != 80 {
		t.Fatalf("Size() = %dx%d, want 60x80", w, h)
	}
	if err := c.Resize(120, 160); err != nil {
		t.Fatal(err)
	}
	if w, h := c.Size(); w != 120 || h != 160 {
		t.Errorf("after Resize Size() = %dx%d, want 120x160", w, h)
	}
	if b := c.Image().Bounds(); b.Dx() != 120 || b.Dy() != 160 {
		t.Errorf("image bounds = %v", b)
	}
	if err := c.Resize(0, 10); !errors.Is(err, ErrInvalidSize) {
		t.Errorf("Resize(0, 10) = %v, want ErrInvalidSize", err)
	}
}

func TestCanvasClearAndScaledFill(t *testing.T) {
	c := NewCanvas(40, 40)
	defer c.Close()

	c.Clear(white)
	c.ResetTransform()
	c.Scale(2, 2)
	if err := c.FillRect(0, 0, 10, 10, Solid{Color: red}); err != nil {
		t.Fatal(err)
	}

	img := c.Image()
	tests := []struct {
		x, y int
		want color.NRGBA
	}{
		{5, 5, red},
		{15, 15, red},   // inside the scaled 20x20 rect
		{30, 30, white}, // outside
	}
	for _, tt := range tests {
		if got := pixel(img, tt.x, tt.y); !near(got, tt.want) {
			t.Errorf("pixel(%d,%d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestCanvasLinearGradient(t *testing.T) {
	c := NewCanvas(100, 10)
	defer c.Close()

	g := LinearGradient{X1: 100, Stops: []Stop{{0, black}, {1, white}}}
	if err := c.FillRect(0, 0, 100, 10, g); err != nil {
		t.Fatal(err)
	}
	img := c.Image()
	left, mid, right := pixel(img, 5, 5), pixel(img, 50, 5), pixel(img, 95, 5)
	if !(luminance(left) < luminance(mid) && luminance(mid) < luminance(right)) {
		t.Errorf("gradient not increasing: %v %v %v", left, mid, right)
	}
}

func TestCanvasFillPath(t *testing.T) {
	c := NewCanvas(50, 50)
	defer c.Close()
	c.Clear(white)

	p := NewPath()
	p.MoveTo(10, 10)
	p.LineTo(40, 10)
	p.CubicTo(45, 25, 45, 25, 40, 40)
	p.LineTo(10, 40)
	p.Close()
	if err := c.FillPath(p, Solid{Color: red}); err != nil {
		t.Fatal(err)
	}
	if got := pixel(c.Image(), 25, 25); !near(got, red) {
		t.Errorf("path interior = %v, want red", got)
	}
	if err := c.FillPath(nil, Solid{Color: red}); !errors.Is(err, ErrNilPath) {
		t.Errorf("FillPath(nil) = %v", err)
	}
}

func TestCanvasText(t *testing.T) {
	c := NewCanvas(400, 100)
	defer c.Close()
	c.Clear(white)

	if _, err := c.MeasureText("x"); !errors.Is(err, ErrNoFont) {
		t.Errorf("MeasureText before SetFont = %v, want ErrNoFont", err)
	}
	if err := c.SetFont("Go", 20); err != nil {
		t.Fatal(err)
	}
	w1, err := c.MeasureText("Hello")
	if err != nil || w1 <= 0 {
		t.Fatalf("MeasureText = %v, %v", w1, err)
	}

	// Measurement is in logical units and does not follow the scale.
	c.Scale(2, 2)
	w2, _ := c.MeasureText("Hello")
	if math.Abs(w1-w2) > 1e-9 {
		t.Errorf("MeasureText changed with scale: %v vs %v", w1, w2)
	}

	if err := c.FillText("Hello", 100, 30, AlignCenter, black); err != nil {
		t.Fatal(err)
	}
	img := c.Image()
	dark := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 400; x++ {
			if luminance(pixel(img, x, y)) < 200 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Error("FillText drew nothing")
	}
}

func TestCanvasUnknownFamilyFallsBack(t *testing.T) {
	c := NewCanvas(10, 10)
	defer c.Close()
	if err := c.SetFont("cursive, 'Comic Sans'", 12); err != nil {
		t.Errorf("SetFont with unknown family = %v", err)
	}
}

func TestCanvasClosed(t *testing.T) {
	c := NewCanvas(10, 10)
	if err := c.Close(); err != nil {
		t.Fatal(err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
	if err := c.FillRect(0, 0, 1, 1, Solid{Color: red}); !errors.Is(err, ErrClosed) {
		t.Errorf("FillRect after Close = %v", err)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder(20, 10)
	if err := r.Resize(20, 10); err != nil {
		t.Fatal(err)
	}
	r.ResetTransform()
	r.Scale(2, 2)
	r.Clear(red)
	_ = r.FillRect(0, 0, 5, 5, Solid{Color: white})
	_ = r.StrokeRect(1, 1, 3, 3, 2, black)
	if err := r.SetFont("Go", 14); err != nil {
		t.Fatal(err)
	}
	_ = r.FillText("hi", 5, 5, AlignRight, black)

	want := []CommandType{CmdResize, CmdResetTransform, CmdScale, CmdClear, CmdFillRect, CmdStrokeRect, CmdSetFont, CmdFillText}
	cmds := r.Commands()
	if len(cmds) != len(want) {
		t.Fatalf("recorded %d commands, want %d", len(cmds), len(want))
	}
	for i, c := range cmds {
		if c.Type != want[i] {
			t.Errorf("command %d = %v, want %v", i, c.Type, want[i])
		}
	}
	if sx, sy := r.Transform(); sx != 2 || sy != 2 {
		t.Errorf("Transform() = %v,%v", sx, sy)
	}
	if got := r.Texts(); len(got) != 1 || got[0] != "hi" {
		t.Errorf("Texts() = %v", got)
	}
	if got := pixel(r.Image(), 3, 3); got != red {
		t.Errorf("Clear did not fill the image: %v", got)
	}
	if w, err := r.MeasureText("hi"); err != nil || w <= 0 {
		t.Errorf("MeasureText = %v, %v", w, err)
	}

	r.Reset()
	if r.Count(CmdFillText) != 0 {
		t.Error("Reset kept commands")
	}
}

func TestRecorderCopiesPaths(t *testing.T) {
	r := NewRecorder(10, 10)
	p := NewPath()
	p.Rect(0, 0, 1, 1)
	_ = r.FillPath(p, Solid{Color: red})
	p.LineTo(5, 5)
	if got := r.Commands()[0].Path.Len(); got != 5 {
		t.Errorf("recorded path has %d verbs, want 5", got)
	}
}

func TestSnapshotRestore(t *testing.T) {
	tests := []struct {
		name string
		s    RestorableSurface
	}{
		{"canvas", NewCanvas(40, 30)},
		{"recorder", NewRecorder(40, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.s
			defer s.Close()

			s.Clear(red)
			snap := s.Snapshot()
			if err := s.Resize(10, 10); err != nil {
				t.Fatal(err)
			}
			s.Clear(white)
			if got := pixel(snap, 5, 5); !near(got, red) {
				t.Errorf("snapshot changed with the surface: %v", got)
			}

			if err := s.Restore(snap); err != nil {
				t.Fatal(err)
			}
			if w, h := s.Size(); w != 40 || h != 30 {
				t.Errorf("Size() after Restore = %dx%d, want 40x30", w, h)
			}
			if got := pixel(s.Image(), 39, 29); !near(got, red) {
				t.Errorf("pixel after Restore = %v, want red", got)
			}

			_ = s.Close()
			if err := s.Restore(snap); !errors.Is(err, ErrClosed) {
				t.Errorf("Restore after Close = %v, want ErrClosed", err)
			}
		})
	}
}

func TestPath(t *testing.T) {
	p := NewPath()
	p.LineTo(1, 2) // starts a subpath
	p.CubicTo(3, 4, 5, 6, 7, 8)
	p.Close()

	var verbs []Verb
	var n int
	p.Walk(func(v Verb, pts []float64) {
		verbs = append(verbs, v)
		n += len(pts)
	})
	if len(verbs) != 3 || verbs[0] != VerbMoveTo || verbs[1] != VerbCubicTo || verbs[2] != VerbClose {
		t.Errorf("verbs = %v", verbs)
	}
	if n != 8 {
		t.Errorf("walked %d coordinates, want 8", n)
	}
	minX, minY, maxX, maxY := p.Bounds()
	if minX != 1 || minY != 2 || maxX != 7 || maxY != 8 {
		t.Errorf("Bounds() = %v %v %v %v", minX, minY, maxX, maxY)
	}
}

func TestAlignString(t *testing.T) {
	if AlignCenter.String() != "center" || Align(9).String() != "unknown" {
		t.Error("Align.String mismatch")
	}
	if CmdFillText.String() != "FillText" || CommandType(99).String() != "Unknown" {
		t.Error("CommandType.String mismatch")
	}
}
