// Package pipeline renders the card state onto a surface.
//
// A Pipeline never draws inline with a state change. Each change requests
// a repaint; requests arriving before the scheduler's next tick are folded
// into one pending frame, and that frame reads the most recent state when
// it runs. A frame is built in two steps: prepare (theme, fonts, text
// layout) and paint (resize if needed, scale, clear, then the background,
// decorations, text and watermark layers in that order). A failure during
// prepare leaves the previous frame's pixels on the surface. A failure
// while painting does too when the surface implements
// surface.RestorableSurface: the pixels are snapshotted before the frame
// and put back.
//
//	sched := pipeline.NewManual()
//	p, err := pipeline.New(store, surface.NewCanvas(1200, 1600),
//	    pipeline.WithScheduler(sched))
//	if err != nil {
//	    return err
//	}
//	p.Bind(broker)
//	sched.Tick() // renders once
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/card/event"
	"github.com/gogpu/card/state"
	"github.com/gogpu/card/store"
	"github.com/gogpu/card/surface"
)

// Source supplies state snapshots. *store.Store implements it.
type Source interface {
	Get() state.AppState
}

// Pipeline owns a surface and keeps it in sync with a Source.
type Pipeline struct {
	src    Source
	surf   surface.Surface
	sched  Scheduler
	owned  *Ticker // default scheduler, started and stopped by the pipeline
	layout Layout
	log    *slog.Logger
	m      *metrics

	pending atomic.Bool
	frames  atomic.Uint64
	inDo    atomic.Bool

	// mu serializes frames and Do.
	mu      sync.Mutex
	rnd     *rand.Rand
	painted bool // a frame has completed on the surface

	errMu   sync.Mutex
	lastErr error

	subMu sync.Mutex
	subs  []*event.Subscription

	closeOnce sync.Once
}

// New creates a pipeline drawing src onto s. Without WithScheduler the
// pipeline runs its own Ticker once Start is called.
func New(src Source, s surface.Surface, opts ...Option) (*Pipeline, error) {
	if s == nil {
		return nil, ErrNoSurface
	}
	if src == nil {
		return nil, ErrNoSource
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	p := &Pipeline{
		src:    src,
		surf:   s,
		sched:  o.sched,
		layout: o.layout,
		log:    o.logger,
		m:      newMetrics(o.reg),
		rnd:    o.rnd,
	}
	if p.sched == nil {
		p.owned = NewTicker(DefaultInterval)
		p.sched = p.owned
	}
	if p.rnd == nil {
		p.rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return p, nil
}

// Start starts the pipeline's own ticker. It is a no-op when a scheduler
// was supplied with WithScheduler.
func (p *Pipeline) Start(ctx context.Context) {
	if p.owned != nil {
		p.owned.Start(ctx)
	}
}

// Bind subscribes to the store's change and reset topics on b and requests
// the initial repaint.
func (p *Pipeline) Bind(b *event.Broker) {
	repaint := func() { p.RequestRepaint() }
	p.subMu.Lock()
	p.subs = append(p.subs,
		event.Subscribe(b, store.TopicStateChanged, func(state.AppState) { repaint() }),
		event.Subscribe(b, store.TopicReset, func(struct{}) { repaint() }),
	)
	p.subMu.Unlock()
	p.log.Info("pipeline: bound")
	p.RequestRepaint()
}

// Close removes the subscriptions, stops the pipeline's own ticker and
// closes the surface. Close is idempotent.
func (p *Pipeline) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.subMu.Lock()
		for _, s := range p.subs {
			s.Remove()
		}
		p.subs = nil
		p.subMu.Unlock()

		if p.owned != nil {
			p.owned.Stop()
		}

		p.mu.Lock()
		err = p.surf.Close()
		p.mu.Unlock()
		p.log.Info("pipeline: closed", "frames", p.frames.Load())
	})
	return err
}

// RequestRepaint schedules a frame for the next tick. A request made while
// a frame is already pending is coalesced into it.
func (p *Pipeline) RequestRepaint() {
	p.m.requests.Inc()
	if !p.pending.CompareAndSwap(false, true) {
		p.m.coalesced.Inc()
		p.log.Debug("pipeline: repaint coalesced")
		return
	}
	p.sched.Schedule(p.tick)
}

func (p *Pipeline) tick() {
	if !p.pending.CompareAndSwap(true, false) {
		return // already flushed
	}
	p.renderFrame()
}

// Flush renders the pending frame now, if any, and reports whether it did.
// While Do is running the frame stays pending and Flush returns false.
func (p *Pipeline) Flush() bool {
	if p.inDo.Load() {
		return false
	}
	if !p.pending.CompareAndSwap(true, false) {
		return false
	}
	p.renderFrame()
	return true
}

// Pending reports whether a frame is waiting for the next tick.
func (p *Pipeline) Pending() bool { return p.pending.Load() }

// Frames returns the number of frames executed, failed ones included.
func (p *Pipeline) Frames() uint64 { return p.frames.Load() }

// LastError returns the error of the most recent failed frame, or nil if
// a frame has succeeded since.
func (p *Pipeline) LastError() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.lastErr
}

func (p *Pipeline) setLastError(err error) {
	p.errMu.Lock()
	p.lastErr = err
	p.errMu.Unlock()
}

// Surface returns the surface handle, for export.
func (p *Pipeline) Surface() surface.Surface { return p.surf }

// Do runs fn with exclusive access to the surface, between frames.
// Flush and LastError may be called from fn; calling Do from fn deadlocks.
func (p *Pipeline) Do(fn func(surface.Surface) error) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inDo.Store(true)
	defer p.inDo.Store(false)
	return fn(p.surf)
}

func (p *Pipeline) renderFrame() {
	p.mu.Lock()
	defer p.mu.Unlock()

	seq := p.frames.Add(1)
	start := time.Now()
	snap := p.src.Get()

	f, err := p.prepare(snap, p.surf)
	if err != nil {
		p.fail(seq, StagePrepare, err)
		return
	}

	var prev image.Image
	rs, restorable := p.surf.(surface.RestorableSurface)
	if restorable && p.painted {
		prev = rs.Snapshot()
	}
	if stage, err := p.paint(f); err != nil {
		if prev != nil {
			if rerr := rs.Restore(prev); rerr != nil {
				err = errors.Join(err, fmt.Errorf("restore previous frame: %w", rerr))
			}
		}
		p.fail(seq, stage, err)
		return
	}

	elapsed := time.Since(start)
	p.painted = true
	p.setLastError(nil)
	p.m.frames.Inc()
	p.m.duration.Observe(elapsed.Seconds())
	p.log.Debug("pipeline: frame",
		"frame", seq,
		"width", f.physW,
		"height", f.physH,
		"lines", len(f.lines),
		"duration", elapsed)
}

func (p *Pipeline) paint(f *frame) (string, error) {
	s := p.surf
	if w, h := s.Size(); w != f.physW || h != f.physH {
		if err := s.Resize(f.physW, f.physH); err != nil {
			return StageResize, err
		}
		p.log.Debug("pipeline: resized", "width", f.physW, "height", f.physH)
	}
	s.ResetTransform()
	s.Scale(f.scale, f.scale)
	s.Clear(f.pal.bg[0])

	if err := p.drawBackground(s, f, p.rnd); err != nil {
		return StageBackground, err
	}
	if err := p.drawDecorations(s, f); err != nil {
		return StageDecorations, err
	}
	if err := p.drawText(s, f); err != nil {
		return StageText, err
	}
	if f.watermark {
		if err := p.drawWatermark(s, f); err != nil {
			return StageWatermark, err
		}
	}
	return "", nil
}

func (p *Pipeline) fail(seq uint64, stage string, err error) {
	fe := &FrameError{Frame: seq, Stage: stage, Err: err}
	p.setLastError(fe)
	p.m.errors.WithLabelValues(stage).Inc()

	var ute *state.UnknownThemeError
	if errors.As(err, &ute) {
		p.log.Error("pipeline: frame aborted", "frame", seq, "stage", stage, "theme", ute.ID, "err", err)
		return
	}
	p.log.Error("pipeline: frame aborted", "frame", seq, "stage", stage, "err", err)
}
