package state

import (
	"fmt"
	"math"

	"github.com/gogpu/card/internal/prim"
)

// SchemaVersion is written to Meta.Version of every fresh state.
const SchemaVersion = "1.0.0"

// Limits on the physical drawing buffer, checked by Validate.
const (
	MaxPhysicalSide   = 16384
	MaxPhysicalPixels = 1 << 26 // 256 MiB at 4 bytes per pixel
)

// LayoutMode selects how the message body is aligned.
type LayoutMode string

const (
	// LayoutCentered centers every message line on the card.
	LayoutCentered LayoutMode = "centered"
	// LayoutLeft aligns message lines to the content margin.
	LayoutLeft LayoutMode = "left"
)

// Valid reports whether m is a known layout mode.
func (m LayoutMode) Valid() bool {
	return m == LayoutCentered || m == LayoutLeft
}

// String returns the mode name.
func (m LayoutMode) String() string { return string(m) }

// AppState is the whole card document. The store owns the only live copy;
// everyone else works on values returned by Clone.
type AppState struct {
	Meta    Meta    `json:"meta"`
	Content Content `json:"content"`
	Design  Design  `json:"design"`
	Config  Config  `json:"config"`
}

// Meta carries bookkeeping that users cannot edit directly.
type Meta struct {
	Version      string `json:"version"`
	LastModified int64  `json:"lastModifiedEpochMs"`
}

// Content is the text of the card. Message may contain '\n' paragraph breaks.
type Content struct {
	To      string  `json:"to"`
	Message string  `json:"message"`
	From    string  `json:"from"`
	QuoteID *string `json:"quoteId,omitempty"`
}

// Design selects the look of the card.
type Design struct {
	ThemeID       string     `json:"themeId"`
	FontFamily    string     `json:"fontFamily"`
	LayoutMode    LayoutMode `json:"layoutMode"`
	ShowWatermark bool       `json:"showWatermark"`
}

// Config holds surface geometry and export settings. Width and Height are
// logical units; the physical buffer is their product with CanvasScale.
type Config struct {
	CanvasScale   float64 `json:"canvasScale"`
	Width         int     `json:"width"`
	Height        int     `json:"height"`
	ExportQuality float64 `json:"exportQuality"`
}

// PhysicalSize returns the pixel dimensions of the drawing buffer.
func (c Config) PhysicalSize() (w, h int) {
	return prim.Scaled(c.Width, c.CanvasScale), prim.Scaled(c.Height, c.CanvasScale)
}

// Clone returns a deep copy of s that shares no memory with it.
func (s AppState) Clone() AppState {
	out := s
	if s.Content.QuoteID != nil {
		id := *s.Content.QuoteID
		out.Content.QuoteID = &id
	}
	return out
}

// Equal reports whether a and b hold the same data.
func Equal(a, b AppState) bool {
	qa, qb := a.Content.QuoteID, b.Content.QuoteID
	if (qa == nil) != (qb == nil) || (qa != nil && *qa != *qb) {
		return false
	}
	a.Content.QuoteID, b.Content.QuoteID = nil, nil
	return a == b
}

// Validate checks the structural invariants of a state value.
func (s AppState) Validate() error {
	switch {
	case s.Config.Width <= 0:
		return &ValidationError{Path: "config.width", Reason: fmt.Sprintf("must be > 0, got %d", s.Config.Width)}
	case s.Config.Height <= 0:
		return &ValidationError{Path: "config.height", Reason: fmt.Sprintf("must be > 0, got %d", s.Config.Height)}
	case !(s.Config.CanvasScale > 0) || math.IsInf(s.Config.CanvasScale, 0):
		return &ValidationError{Path: "config.canvasScale", Reason: fmt.Sprintf("must be > 0, got %v", s.Config.CanvasScale)}
	case !(s.Config.ExportQuality >= 0 && s.Config.ExportQuality <= 1):
		return &ValidationError{Path: "config.exportQuality", Reason: fmt.Sprintf("must be within [0, 1], got %v", s.Config.ExportQuality)}
	case !s.Design.LayoutMode.Valid():
		return &ValidationError{Path: "design.layoutMode", Reason: fmt.Sprintf("unknown mode %q", s.Design.LayoutMode)}
	}
	return s.Config.checkPhysical()
}

// checkPhysical bounds the buffer implied by the logical size and scale.
// The products are computed in floating point so huge values cannot wrap.
func (c Config) checkPhysical() error {
	pw := math.Round(float64(c.Width) * c.CanvasScale)
	ph := math.Round(float64(c.Height) * c.CanvasScale)
	switch {
	case pw > MaxPhysicalSide:
		return &ValidationError{Path: "config.width", Reason: fmt.Sprintf("physical width %.0f exceeds %d", pw, MaxPhysicalSide)}
	case ph > MaxPhysicalSide:
		return &ValidationError{Path: "config.height", Reason: fmt.Sprintf("physical height %.0f exceeds %d", ph, MaxPhysicalSide)}
	case pw*ph > MaxPhysicalPixels:
		return &ValidationError{Path: "config.canvasScale", Reason: fmt.Sprintf("physical buffer %.0fx%.0f exceeds %d pixels", pw, ph, MaxPhysicalPixels)}
	}
	return nil
}
