// Package store owns the card document. It is the only place an AppState is
// mutated: every edit goes through Update (or UpdatePath), is recorded in a
// bounded undo history, written to a kv.Store and announced on the event
// broker. Readers always receive deep copies.
//
// Example:
//
//	b := event.NewBroker()
//	s := store.New(kv.NewMemory(), b)
//	s.Init(ctx)
//	if err := s.Update(ctx, state.SetRecipient("Ada")); err != nil {
//	    return err
//	}
//	s.Undo(ctx)
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"github.com/gogpu/card/event"
	"github.com/gogpu/card/kv"
	"github.com/gogpu/card/state"
)

// DefaultKey is the kv key the document is persisted under.
const DefaultKey = "card-studio/state/v1"

// Topics published by the store.
var (
	// TopicStateChanged carries the full new state after every committed
	// change, including the initial load.
	TopicStateChanged = event.NewTopic[state.AppState]("state.changed")

	// TopicReset is published after StateChanged when Reset replaced the
	// document with the defaults.
	TopicReset = event.NewTopic[struct{}]("state.reset")

	// TopicHistory carries the undo/redo availability after every step.
	TopicHistory = event.NewTopic[HistoryState]("state.history")
)

// ErrNilMutation is returned by Update for a nil mutation.
var ErrNilMutation = errors.New("store: nil mutation")

// Store is the single owner of the application state.
type Store struct {
	mu      sync.Mutex
	current state.AppState
	hist    *history

	kv     kv.Store
	broker *event.Broker
	key    string
	now    func() time.Time
	rnd    *rand.Rand
	log    *slog.Logger
}

// New creates a store persisting through kvs and publishing on b. The store
// holds the default document until Init is called.
func New(kvs kv.Store, b *event.Broker, opts ...Option) *Store {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Store{
		current: state.Default(),
		hist:    newHistory(HistoryLimit),
		kv:      kvs,
		broker:  b,
		key:     o.key,
		now:     o.now,
		rnd:     o.rnd,
		log:     o.logger,
	}
}

// Init loads the persisted document, falling back to the defaults when it
// is absent, unreadable or invalid, and publishes the initial state. Init
// never fails; problems are logged.
func (s *Store) Init(ctx context.Context) state.AppState {
	loaded, err := s.load(ctx)
	if err != nil {
		s.log.Warn("store: using default state", "key", s.key, "err", err)
		loaded = state.Default()
	}

	s.mu.Lock()
	s.current = loaded
	s.hist = newHistory(HistoryLimit)
	snap := s.current.Clone()
	hs := s.hist.snapshot()
	s.mu.Unlock()

	s.log.Info("store: initialized", "key", s.key, "theme", snap.Design.ThemeID)
	s.publish(snap, hs)
	return snap.Clone()
}

var errNotFound = errors.New("no persisted state")

func (s *Store) load(ctx context.Context) (state.AppState, error) {
	if s.kv == nil {
		return state.AppState{}, errNotFound
	}
	raw, ok, err := s.kv.Load(ctx, s.key)
	if err != nil {
		return state.AppState{}, err
	}
	if !ok {
		return state.AppState{}, errNotFound
	}
	// Missing fields keep their default values.
	st := state.Default()
	if err := sonic.UnmarshalString(raw, &st); err != nil {
		return state.AppState{}, fmt.Errorf("decode: %w", err)
	}
	if err := st.Validate(); err != nil {
		return state.AppState{}, err
	}
	return st, nil
}

// Get returns a deep copy of the current state.
func (s *Store) Get() state.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Update applies m as one history step. When m fails to apply or the result
// does not validate, the state and the history are left untouched and the
// error is returned.
func (s *Store) Update(ctx context.Context, m state.Mutation) error {
	if m == nil {
		return ErrNilMutation
	}

	s.mu.Lock()
	next := s.current.Clone()
	if err := m.Apply(&next); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: update %s: %w", strings.Join(m.Paths(), ","), err)
	}
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("store: update %s: %w", strings.Join(m.Paths(), ","), err)
	}
	next.Meta.LastModified = s.now().UnixMilli()

	s.hist.record(s.current)
	s.current = next
	s.persistLocked(ctx)
	snap := s.current.Clone()
	hs := s.hist.snapshot()
	s.mu.Unlock()

	s.log.Debug("store: updated", "paths", m.Paths())
	s.publish(snap, hs)
	return nil
}

// UpdatePath assigns value at a dotted path such as "content.to". Unknown
// paths, paths that descend through a non-mapping value and values of the
// wrong type are rejected before any history step is recorded.
func (s *Store) UpdatePath(ctx context.Context, path string, value any) error {
	m, err := state.ParsePath(path, value)
	if err != nil {
		return fmt.Errorf("store: update %s: %w", path, err)
	}
	return s.Update(ctx, m)
}

// UseQuote replaces the message with the text of quote id and records the id, as
// one history step.
func (s *Store) UseQuote(ctx context.Context, id string) error {
	q, err := state.LookupQuote(id)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return s.Update(ctx, state.UseQuote(q))
}

// Undo restores the state before the last step. It is a no-op when there
// is nothing to undo and reports whether a step was undone.
func (s *Store) Undo(ctx context.Context) bool {
	return s.step(ctx, false)
}

// Redo reapplies the last undone step. It is a no-op when nothing was
// undone since the last edit and reports whether a step was redone.
func (s *Store) Redo(ctx context.Context) bool {
	return s.step(ctx, true)
}

func (s *Store) step(ctx context.Context, forward bool) bool {
	s.mu.Lock()
	move, op := s.hist.stepBack, "undo"
	if forward {
		move, op = s.hist.stepForward, "redo"
	}
	target, ok := move(s.current)
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.current = target
	s.persistLocked(ctx)
	snap := s.current.Clone()
	hs := s.hist.snapshot()
	s.mu.Unlock()

	s.log.Debug("store: "+op, "undo", hs.Undo, "redo", hs.Redo)
	s.publish(snap, hs)
	return true
}

// Reset replaces the document with the defaults as an undoable step and
// publishes both TopicStateChanged and TopicReset.
func (s *Store) Reset(ctx context.Context) {
	s.mu.Lock()
	next := state.Default()
	next.Meta.LastModified = s.now().UnixMilli()
	s.hist.record(s.current)
	s.current = next
	s.persistLocked(ctx)
	snap := s.current.Clone()
	hs := s.hist.snapshot()
	s.mu.Unlock()

	s.log.Info("store: reset")
	s.publish(snap, hs)
	if s.broker != nil {
		event.Publish(s.broker, TopicReset, struct{}{})
	}
}

// History reports the undo/redo availability.
func (s *Store) History() HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hist.snapshot()
}

// CanUndo reports whether Undo would change the state.
func (s *Store) CanUndo() bool { return s.History().CanUndo }

// CanRedo reports whether Redo would change the state.
func (s *Store) CanRedo() bool { return s.History().CanRedo }

// HistoryLen returns the depths of the undo and redo stacks.
func (s *Store) HistoryLen() (undo, redo int) {
	h := s.History()
	return h.Undo, h.Redo
}

// Themes returns the theme registry.
func (s *Store) Themes() []state.Theme { return state.Themes() }

// Quotes returns the quote table.
func (s *Store) Quotes() []state.Quote { return state.Quotes() }

// RandomQuote returns the text of a uniformly drawn quote.
func (s *Store) RandomQuote() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return state.RandomQuote(s.rnd).Text
}

// persistLocked writes the whole current state. Failures are logged and
// never reach the caller. s.mu must be held.
func (s *Store) persistLocked(ctx context.Context) {
	if s.kv == nil {
		return
	}
	raw, err := sonic.MarshalString(&s.current)
	if err != nil {
		s.log.Warn("store: encode failed", "err", err)
		return
	}
	if err := s.kv.Save(ctx, s.key, raw); err != nil {
		s.log.Warn("store: save failed", "key", s.key, "err", err)
	}
}

func (s *Store) publish(snap state.AppState, hs HistoryState) {
	if s.broker == nil {
		return
	}
	event.Publish(s.broker, TopicStateChanged, snap)
	event.Publish(s.broker, TopicHistory, hs)
}
