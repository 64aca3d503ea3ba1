package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoSurface is returned by New without a surface.
var ErrNoSurface = errors.New("pipeline: no surface bound")

// ErrNoSource is returned by New without a state source.
var ErrNoSource = errors.New("pipeline: no state source")

// Frame stages reported in FrameError.
const (
	StagePrepare     = "prepare"
	StageResize      = "resize"
	StageBackground  = "background"
	StageDecorations = "decorations"
	StageText        = "text"
	StageWatermark   = "watermark"
)

// FrameError reports an aborted frame. A frame failing in StagePrepare left
// the surface untouched; a later stage restored the previous pixels of a
// surface.RestorableSurface.
type FrameError struct {
	Frame uint64
	Stage string
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("pipeline: frame %d: %s: %v", e.Frame, e.Stage, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }
