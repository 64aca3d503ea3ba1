// Package card renders personalized greeting cards.
//
// # Overview
//
// A card is a small document (recipient, message, sender, theme, font,
// layout and canvas configuration) owned by a [store.Store]. Every change
// goes through the store, which keeps a bounded undo/redo history,
// persists the document and publishes the new state. The render
// [pipeline.Pipeline] listens to those notifications, folds bursts of
// changes into a single frame and paints the card onto a drawing surface
// at the configured device pixel ratio. The finished pixels can be
// exported as PNG, JPEG or PDF.
//
// # Quick Start
//
//	import "github.com/gogpu/card"
//
//	s, err := card.New(ctx)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	st := s.Store()
//	_ = st.Update(ctx, state.SetRecipient("Ada"))
//	_ = st.Update(ctx, state.SetTheme(state.ThemeMidnight))
//	st.Undo(ctx) // back to the classic theme
//
//	if err := s.Export("card.png"); err != nil {
//	    return err
//	}
//
// # Architecture
//
// The module is organized into:
//   - state: the document model, themes, quotes and the closed set of mutations
//   - store: the single owner of the document, history and persistence
//   - kv: key/value persistence backends (memory, directory, SQLite)
//   - event: the typed in-process topic broker
//   - pipeline: repaint scheduling, text layout and the card layers
//   - surface: the drawing surface port with gg-backed and recording backends
//   - fonts: built-in Go font families and user TTF registration
//   - export: PNG, JPEG and PDF encoders
//
// # Coordinate System
//
// Layout is expressed in logical units of the configured card size (600x800
// by default). The pipeline scales the surface by the canvas scale, so a
// 600x800 card at scale 2 renders into a 1200x1600 pixel buffer.
package card

// Version information.
const (
	// Version is the current version of the module.
	Version = "0.1.0"

	// VersionMajor is the major version.
	VersionMajor = 0

	// VersionMinor is the minor version.
	VersionMinor = 1

	// VersionPatch is the patch version.
	VersionPatch = 0
)
