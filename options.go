package card

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/card/fonts"
	"github.com/gogpu/card/kv"
	"github.com/gogpu/card/pipeline"
	"github.com/gogpu/card/surface"
)

// Option configures a Studio during creation.
//
// Example:
//
//	// In-memory studio rendering on the best surface backend
//	s, err := card.New(ctx)
//
//	// Persist to SQLite and drive frames by hand
//	db, _ := kv.OpenSQLite("card.db")
//	sched := pipeline.NewManual()
//	s, err := card.New(ctx, card.WithKV(db), card.WithScheduler(sched))
type Option func(*studioOptions)

type studioOptions struct {
	kv          kv.Store
	ownsKV      bool
	storeKey    string
	fonts       *fonts.Registry
	surface     surface.Surface
	surfaceName string
	sched       pipeline.Scheduler
	reg         prometheus.Registerer
	logger      *slog.Logger
}

func defaultOptions() studioOptions {
	return studioOptions{
		logger: Logger(),
	}
}

// WithKV sets the persistence backend. The studio does not close it.
// Without WithKV the document lives in memory.
func WithKV(s kv.Store) Option {
	return func(o *studioOptions) {
		o.kv = s
		o.ownsKV = false
	}
}

// WithStoreKey overrides the key the document is persisted under.
func WithStoreKey(key string) Option {
	return func(o *studioOptions) { o.storeKey = key }
}

// WithFonts sets the font registry. The default is fonts.Default().
func WithFonts(r *fonts.Registry) Option {
	return func(o *studioOptions) { o.fonts = r }
}

// WithSurface renders onto s instead of creating one. The studio takes
// ownership and closes it.
func WithSurface(s surface.Surface) Option {
	return func(o *studioOptions) { o.surface = s }
}

// WithSurfaceBackend selects a registered surface backend by name.
func WithSurfaceBackend(name string) Option {
	return func(o *studioOptions) { o.surfaceName = name }
}

// WithScheduler sets the frame scheduler. Without it the pipeline runs its
// own ticker once Start is called.
func WithScheduler(s pipeline.Scheduler) Option {
	return func(o *studioOptions) { o.sched = s }
}

// WithMetrics registers the render metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *studioOptions) { o.reg = reg }
}

// WithLogger overrides the package logger for this studio.
func WithLogger(l *slog.Logger) Option {
	return func(o *studioOptions) {
		if l != nil {
			o.logger = l
		}
	}
}
