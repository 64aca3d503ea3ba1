// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

// Verb is a path construction command.
type Verb uint8

const (
	VerbMoveTo  Verb = iota // 1 point
	VerbLineTo              // 1 point
	VerbCubicTo             // 3 points: two controls, then the end point
	VerbClose               // no points
)

var verbNames = [...]string{
	VerbMoveTo:  "MoveTo",
	VerbLineTo:  "LineTo",
	VerbCubicTo: "CubicTo",
	VerbClose:   "Close",
}

func (v Verb) String() string {
	if int(v) < len(verbNames) {
		return verbNames[v]
	}
	return "Unknown"
}

// points returns the number of coordinate pairs v consumes.
func (v Verb) points() int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 1
	case VerbCubicTo:
		return 3
	}
	return 0
}

// Path is a vector path in logical units.
//
//	p := surface.NewPath()
//	p.MoveTo(100, 100)
//	p.LineTo(200, 100)
//	p.LineTo(150, 200)
//	p.Close()
type Path struct {
	verbs  []Verb
	points []float64
}

// NewPath creates an empty path.
func NewPath() *Path {
	return &Path{
		verbs:  make([]Verb, 0, 8),
		points: make([]float64, 0, 32),
	}
}

// MoveTo starts a new subpath at (x, y).
func (p *Path) MoveTo(x, y float64) {
	p.verbs = append(p.verbs, VerbMoveTo)
	p.points = append(p.points, x, y)
}

// LineTo adds a line to (x, y). On an empty path it starts a subpath.
func (p *Path) LineTo(x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(x, y)
		return
	}
	p.verbs = append(p.verbs, VerbLineTo)
	p.points = append(p.points, x, y)
}

// CubicTo adds a cubic Bézier curve with controls (c1x, c1y) and
// (c2x, c2y) ending at (x, y).
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	if len(p.verbs) == 0 {
		p.MoveTo(c1x, c1y)
	}
	p.verbs = append(p.verbs, VerbCubicTo)
	p.points = append(p.points, c1x, c1y, c2x, c2y, x, y)
}

// Close connects the current point back to the subpath start.
func (p *Path) Close() {
	if len(p.verbs) == 0 {
		return
	}
	p.verbs = append(p.verbs, VerbClose)
}

// Rect adds a closed rectangle.
func (p *Path) Rect(x, y, w, h float64) {
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
}

// IsEmpty reports whether the path has no elements.
func (p *Path) IsEmpty() bool { return len(p.verbs) == 0 }

// Len returns the number of verbs.
func (p *Path) Len() int { return len(p.verbs) }

// Walk calls fn for every verb with its coordinates as x, y pairs.
func (p *Path) Walk(fn func(v Verb, pts []float64)) {
	i := 0
	for _, v := range p.verbs {
		n := 2 * v.points()
		fn(v, p.points[i:i+n])
		i += n
	}
}

// Clone returns a deep copy of p.
func (p *Path) Clone() *Path {
	return &Path{
		verbs:  append([]Verb(nil), p.verbs...),
		points: append([]float64(nil), p.points...),
	}
}

// Bounds returns the axis-aligned bounding box of all points, control
// points included. An empty path has zero bounds.
func (p *Path) Bounds() (minX, minY, maxX, maxY float64) {
	if len(p.points) == 0 {
		return 0, 0, 0, 0
	}
	minX, maxX = p.points[0], p.points[0]
	minY, maxY = p.points[1], p.points[1]
	for i := 2; i < len(p.points); i += 2 {
		minX = min(minX, p.points[i])
		maxX = max(maxX, p.points[i])
		minY = min(minY, p.points[i+1])
		maxY = max(maxY, p.points[i+1])
	}
	return minX, minY, maxX, maxY
}
