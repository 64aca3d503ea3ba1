package pipeline

import (
	"context"
	"log/slog"
	"math/rand/v2"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Pipeline during creation.
type Option func(*options)

type options struct {
	sched  Scheduler
	rnd    *rand.Rand
	reg    prometheus.Registerer
	layout Layout
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		layout: DefaultLayout(),
		logger: slog.New(discard{}),
	}
}

// WithScheduler sets the frame scheduler. The default is a Ticker at
// DefaultInterval that the caller must Start.
func WithScheduler(s Scheduler) Option {
	return func(o *options) { o.sched = s }
}

// WithRand sets the generator for the background texture.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rnd = r }
}

// WithMetrics registers the pipeline metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithLayout replaces the card geometry.
func WithLayout(l Layout) Option {
	return func(o *options) { o.layout = l }
}

// WithLogger sets the logger. A nil logger keeps the pipeline silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
