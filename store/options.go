package store

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"time"
)

// Option configures a Store during creation.
type Option func(*options)

type options struct {
	key    string
	now    func() time.Time
	rnd    *rand.Rand
	logger *slog.Logger
}

func defaultOptions() options {
	return options{
		key:    DefaultKey,
		now:    time.Now,
		logger: slog.New(discard{}),
	}
}

// WithKey sets the kv key the document is persisted under.
func WithKey(key string) Option {
	return func(o *options) { o.key = key }
}

// WithClock sets the time source used for Meta.LastModified.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// WithRand sets the generator RandomQuote draws from.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rnd = r }
}

// WithLogger sets the logger. A nil logger keeps the store silent.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// discard is a slog.Handler that drops every record.
type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
