package pipeline

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the Ticker refresh interval.
const DefaultInterval = time.Second / 60

// Scheduler defers work to the next refresh tick. Schedule must not run fn
// inline.
type Scheduler interface {
	Schedule(fn func())
}

// queue is the callback list shared by the schedulers.
type queue struct {
	mu      sync.Mutex
	pending []func()
}

func (q *queue) Schedule(fn func()) {
	q.mu.Lock()
	q.pending = append(q.pending, fn)
	q.mu.Unlock()
}

// drain runs the callbacks queued before the call. Callbacks scheduled while
// draining wait for the next tick.
func (q *queue) drain() int {
	q.mu.Lock()
	fns := q.pending
	q.pending = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
	return len(fns)
}

// Len returns the number of callbacks waiting for the next tick.
func (q *queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Manual is a Scheduler driven by explicit Tick calls. Headless renderers
// and tests use it.
type Manual struct {
	queue
}

// NewManual returns an idle manual scheduler.
func NewManual() *Manual { return &Manual{} }

// Tick runs the queued callbacks and returns how many ran.
func (m *Manual) Tick() int { return m.drain() }

// Ticker is a Scheduler that runs queued callbacks on a fixed interval from
// its own goroutine.
type Ticker struct {
	queue
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTicker returns a stopped ticker. A non-positive interval means
// DefaultInterval.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Ticker{interval: interval}
}

// Start begins ticking until ctx is done or Stop is called. Starting a
// running ticker is a no-op.
func (t *Ticker) Start(ctx context.Context) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	go t.run(ctx, t.done)
}

func (t *Ticker) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	tk := time.NewTicker(t.interval)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			t.drain()
		}
	}
}

// Stop halts the ticker and waits for an in-flight tick to finish.
// Callbacks still queued are kept for a later Start.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
