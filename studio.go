package card

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gogpu/card/event"
	"github.com/gogpu/card/export"
	"github.com/gogpu/card/fonts"
	"github.com/gogpu/card/internal/config"
	"github.com/gogpu/card/kv"
	"github.com/gogpu/card/pipeline"
	"github.com/gogpu/card/state"
	"github.com/gogpu/card/store"
	"github.com/gogpu/card/surface"
)

// Studio wires the broker, the store and the render pipeline together.
// Every committed store change schedules one coalesced repaint.
type Studio struct {
	broker *event.Broker
	kv     kv.Store
	ownsKV bool
	store  *store.Store
	fonts  *fonts.Registry
	pipe   *pipeline.Pipeline
	log    *slog.Logger
}

// New creates a studio, loads the persisted document and binds the
// pipeline. The first frame is pending when New returns.
func New(ctx context.Context, opts ...Option) (*Studio, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.kv == nil {
		o.kv, o.ownsKV = kv.NewMemory(), true
	}
	if o.fonts == nil {
		o.fonts = fonts.Default()
	}

	s := &Studio{
		broker: event.NewBroker(),
		kv:     o.kv,
		ownsKV: o.ownsKV,
		fonts:  o.fonts,
		log:    o.logger,
	}

	storeOpts := []store.Option{store.WithLogger(o.logger)}
	if o.storeKey != "" {
		storeOpts = append(storeOpts, store.WithKey(o.storeKey))
	}
	s.store = store.New(s.kv, s.broker, storeOpts...)
	snap := s.store.Init(ctx)

	surf := o.surface
	if surf == nil {
		w, h := snap.Config.PhysicalSize()
		var err error
		surf, err = surface.NewSurfaceWithOptions(o.surfaceName, surface.Options{
			Width:  w,
			Height: h,
			Fonts:  o.fonts,
		})
		if err != nil {
			s.closeKV()
			return nil, fmt.Errorf("card: surface: %w", err)
		}
	}

	pipeOpts := []pipeline.Option{pipeline.WithLogger(o.logger)}
	if o.sched != nil {
		pipeOpts = append(pipeOpts, pipeline.WithScheduler(o.sched))
	}
	if o.reg != nil {
		pipeOpts = append(pipeOpts, pipeline.WithMetrics(o.reg))
	}
	pipe, err := pipeline.New(s.store, surf, pipeOpts...)
	if err != nil {
		_ = surf.Close()
		s.closeKV()
		return nil, err
	}
	s.pipe = pipe
	s.pipe.Bind(s.broker)

	s.log.Info("card: studio ready",
		"theme", snap.Design.ThemeID,
		"width", snap.Config.Width,
		"height", snap.Config.Height,
		"scale", snap.Config.CanvasScale)
	return s, nil
}

// Open creates a studio from process configuration: the state backend,
// the surface backend and an optional font directory.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Studio, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{WithSurfaceBackend(cfg.Surface)}
	if cfg.FontDir != "" {
		reg := fonts.NewRegistry()
		added, err := reg.RegisterDir(cfg.FontDir)
		if err != nil {
			return nil, fmt.Errorf("card: fonts: %w", err)
		}
		Logger().Debug("card: fonts registered", "dir", cfg.FontDir, "families", added)
		base = append(base, WithFonts(reg))
	}

	kvs, err := openKV(cfg)
	if err != nil {
		return nil, err
	}
	base = append(base, WithKV(kvs))

	s, err := New(ctx, append(base, opts...)...)
	if err != nil {
		_ = kvs.Close()
		return nil, err
	}
	s.ownsKV = true
	return s, nil
}

func openKV(cfg *config.Config) (kv.Store, error) {
	switch cfg.Backend() {
	case config.BackendMemory:
		return kv.NewMemory(), nil
	case config.BackendDir:
		return kv.OpenDir(cfg.StatePath)
	case config.BackendSQLite:
		return kv.OpenSQLite(cfg.StatePath, kv.WithMkdirAll())
	}
	return nil, fmt.Errorf("%w: %q", config.ErrUnknownBackend, cfg.StateBackend)
}

// Start runs the pipeline's own frame ticker until ctx is done or the
// studio is closed. It does nothing when a scheduler was supplied.
func (s *Studio) Start(ctx context.Context) { s.pipe.Start(ctx) }

// Broker returns the event broker the store publishes on.
func (s *Studio) Broker() *event.Broker { return s.broker }

// Store returns the state store.
func (s *Studio) Store() *store.Store { return s.store }

// Pipeline returns the render pipeline.
func (s *Studio) Pipeline() *pipeline.Pipeline { return s.pipe }

// Fonts returns the font registry used for text.
func (s *Studio) Fonts() *fonts.Registry { return s.fonts }

// State returns a copy of the current document.
func (s *Studio) State() state.AppState { return s.store.Get() }

// Render draws the pending frame now, if any, and returns the error of
// the last frame.
func (s *Studio) Render() error {
	s.pipe.Flush()
	return s.pipe.LastError()
}

// Export renders any pending frame and writes the surface to path, with
// the format taken from the extension and JPEG quality from the document.
func (s *Studio) Export(path string) error {
	if err := s.Render(); err != nil {
		return err
	}
	quality := s.store.Get().Config.ExportQuality
	return s.pipe.Do(func(surf surface.Surface) error {
		return export.WriteFile(path, surf.Image(), quality)
	})
}

// ExportTo renders any pending frame and encodes the surface to w.
func (s *Studio) ExportTo(w io.Writer, f export.Format) error {
	if err := s.Render(); err != nil {
		return err
	}
	quality := s.store.Get().Config.ExportQuality
	return s.pipe.Do(func(surf surface.Surface) error {
		return export.Encode(w, surf.Image(), f, quality)
	})
}

// FileName returns the suggested export file name for the current
// recipient.
func (s *Studio) FileName(f export.Format) string {
	return export.FileName(s.store.Get().Content.To, f)
}

// Close stops the pipeline, closes the surface and, when the studio opened
// it, the persistence backend.
func (s *Studio) Close() error {
	err := s.pipe.Close()
	if s.ownsKV {
		err = errors.Join(err, s.kv.Close())
	}
	s.log.Info("card: studio closed")
	return err
}

func (s *Studio) closeKV() {
	if s.ownsKV {
		_ = s.kv.Close()
	}
}
