package store

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/bytedance/sonic"

	"github.com/gogpu/card/event"
	"github.com/gogpu/card/kv"
	"github.com/gogpu/card/state"
)

type fixture struct {
	store   *Store
	kv      *kv.Memory
	broker  *event.Broker
	changes []state.AppState
	resets  int
	clock   time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		kv:     kv.NewMemory(),
		broker: event.NewBroker(),
		clock:  time.UnixMilli(1_700_000_000_000),
	}
	event.Subscribe(f.broker, TopicStateChanged, func(s state.AppState) { f.changes = append(f.changes, s) })
	event.Subscribe(f.broker, TopicReset, func(struct{}) { f.resets++ })
	f.store = New(f.kv, f.broker,
		WithClock(func() time.Time {
			f.clock = f.clock.Add(time.Second)
			return f.clock
		}),
		WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	f.store.Init(context.Background())
	return f
}

func encode(t *testing.T, s state.AppState) string {
	t.Helper()
	b, err := sonic.Marshal(&s)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestInitUsesDefaultsWhenEmpty(t *testing.T) {
	f := newFixture(t)
	if !state.Equal(f.store.Get(), state.Default()) {
		t.Errorf("Init on empty kv = %+v, want defaults", f.store.Get())
	}
	if len(f.changes) != 1 {
		t.Errorf("Init published %d changes, want 1", len(f.changes))
	}
}

func TestInitFallsBackOnCorruptData(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"wrong shape", `{"config":"big"}`},
		{"invalid values", `{"config":{"width":0,"height":10,"canvasScale":1,"exportQuality":1}}`},
		{"oversized buffer", `{"config":{"width":1073741824,"height":800,"canvasScale":2,"exportQuality":1}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := kv.NewMemory()
			_ = mem.Save(context.Background(), DefaultKey, tt.raw)
			s := New(mem, event.NewBroker())
			got := s.Init(context.Background())
			if !state.Equal(got, state.Default()) {
				t.Errorf("Init = %+v, want defaults", got)
			}
		})
	}
}

func TestInitLoadsPersistedState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.Update(ctx, state.SetRecipient("Ada")); err != nil {
		t.Fatal(err)
	}

	again := New(f.kv, event.NewBroker())
	got := again.Init(ctx)
	if got.Content.To != "Ada" {
		t.Errorf("reloaded recipient = %q, want Ada", got.Content.To)
	}
	if again.CanUndo() {
		t.Error("history must not survive a reload")
	}
}

func TestUpdatePathRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := f.store.Get()

	if err := f.store.UpdatePath(ctx, "content.to", "Ada"); err != nil {
		t.Fatal(err)
	}
	got := f.store.Get()
	if got.Content.To != "Ada" {
		t.Errorf("content.to = %q, want Ada", got.Content.To)
	}
	got.Content.To = before.Content.To
	got.Meta = before.Meta
	if !state.Equal(got, before) {
		t.Errorf("siblings changed: %+v", got)
	}

	if f.store.Get().Meta.LastModified == 0 {
		t.Error("LastModified not stamped")
	}
	if n := len(f.changes); n != 2 {
		t.Errorf("published %d changes, want 2", n)
	}
	if f.changes[1].Content.To != "Ada" {
		t.Error("notification does not carry the new state")
	}

	raw, ok, _ := f.kv.Load(ctx, DefaultKey)
	if !ok || raw != encode(t, f.store.Get()) {
		t.Errorf("persisted snapshot out of date: %s", raw)
	}
}

func TestUpdateRejectsBadPathWithoutSideEffects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	before := encode(t, f.store.Get())

	tests := []struct {
		path    string
		value   any
		wantErr error
	}{
		{"content.to.first", "x", state.ErrNotMapping},
		{"content.nope", "x", state.ErrUnknownField},
		{"meta.lastModifiedEpochMs", 5, state.ErrReadOnly},
	}
	for _, tt := range tests {
		err := f.store.UpdatePath(ctx, tt.path, tt.value)
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("UpdatePath(%q) = %v, want %v", tt.path, err, tt.wantErr)
		}
	}

	var ve *state.ValidationError
	if err := f.store.Update(ctx, state.SetWidth(0)); !errors.As(err, &ve) {
		t.Errorf("SetWidth(0) = %v, want *state.ValidationError", err)
	}
	if err := f.store.UpdatePath(ctx, "config.width", 1<<30); !errors.As(err, &ve) || ve.Path != "config.width" {
		t.Errorf("UpdatePath(config.width, 1<<30) = %v, want *state.ValidationError", err)
	}
	if err := f.store.Update(ctx, state.SetCanvasScale(1e9)); !errors.As(err, &ve) {
		t.Errorf("SetCanvasScale(1e9) = %v, want *state.ValidationError", err)
	}
	var te *state.TypeError
	if err := f.store.UpdatePath(ctx, "config.height", "tall"); !errors.As(err, &te) {
		t.Errorf("UpdatePath(config.height, tall) = %v, want *state.TypeError", err)
	}
	if err := f.store.Update(ctx, nil); !errors.Is(err, ErrNilMutation) {
		t.Errorf("Update(nil) = %v", err)
	}

	if encode(t, f.store.Get()) != before {
		t.Error("rejected update changed the state")
	}
	if f.store.CanUndo() {
		t.Error("rejected update recorded a history step")
	}
	if len(f.changes) != 1 {
		t.Errorf("rejected update published %d changes", len(f.changes)-1)
	}
}

func TestUndoRedoIsIdentity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Update(ctx, state.SetRecipient("Ada"))
	_ = f.store.Update(ctx, state.SetTheme(state.ThemeForest))

	beforeUndo := encode(t, f.store.Get())
	if !f.store.Undo(ctx) {
		t.Fatal("Undo returned false")
	}
	if f.store.Get().Design.ThemeID != state.ThemeClassic {
		t.Error("Undo did not restore previous theme")
	}
	if !f.store.Redo(ctx) {
		t.Fatal("Redo returned false")
	}
	if got := encode(t, f.store.Get()); got != beforeUndo {
		t.Errorf("undo+redo changed state:\n got %s\nwant %s", got, beforeUndo)
	}
}

func TestUpdateAfterUndoClearsRedo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Update(ctx, state.SetRecipient("Ada"))
	f.store.Undo(ctx)
	if !f.store.CanRedo() {
		t.Fatal("CanRedo false after undo")
	}
	_ = f.store.Update(ctx, state.SetSender("Grace"))

	before := encode(t, f.store.Get())
	if f.store.Redo(ctx) {
		t.Error("Redo after a fresh update returned true")
	}
	if encode(t, f.store.Get()) != before {
		t.Error("Redo after a fresh update changed the state")
	}
}

func TestUndoOnEmptyHistoryIsNoop(t *testing.T) {
	f := newFixture(t)
	if f.store.Undo(context.Background()) || f.store.Redo(context.Background()) {
		t.Error("Undo/Redo on empty history reported a step")
	}
	if len(f.changes) != 1 {
		t.Errorf("no-op step published %d changes", len(f.changes)-1)
	}
}

func TestHistoryIsBounded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i <= HistoryLimit; i++ { // 51 updates
		if err := f.store.Update(ctx, state.SetRecipient(fmt.Sprintf("r%d", i))); err != nil {
			t.Fatal(err)
		}
	}
	if h := f.store.History(); h.Undo != HistoryLimit {
		t.Fatalf("undo depth = %d, want %d", h.Undo, HistoryLimit)
	}

	undone := 0
	for f.store.Undo(ctx) {
		undone++
	}
	if undone != HistoryLimit {
		t.Errorf("undid %d steps, want %d", undone, HistoryLimit)
	}
	// The default snapshot was evicted; the oldest left is after update r0.
	if got := f.store.Get().Content.To; got != "r0" {
		t.Errorf("oldest reachable recipient = %q, want r0", got)
	}
}

func TestResetIsUndoable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.Update(ctx, state.SetRecipient("Ada"))
	_ = f.store.Update(ctx, state.SetLayoutMode(state.LayoutLeft))
	preReset := encode(t, f.store.Get())

	f.store.Reset(ctx)
	got := f.store.Get()
	if got.Meta.LastModified == 0 {
		t.Error("Reset did not stamp LastModified")
	}
	got.Meta.LastModified = 0
	if !state.Equal(got, state.Default()) {
		t.Errorf("after Reset = %+v, want defaults", got)
	}
	if f.resets != 1 {
		t.Errorf("reset notifications = %d, want 1", f.resets)
	}

	f.store.Undo(ctx)
	if encode(t, f.store.Get()) != preReset {
		t.Error("Undo after Reset did not restore the pre-reset state")
	}
}

func TestGetReturnsIndependentCopy(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_ = f.store.UseQuote(ctx, "joy")

	a := f.store.Get()
	a.Content.To = "mutated"
	*a.Content.QuoteID = "mutated"

	b := f.store.Get()
	if b.Content.To == "mutated" || *b.Content.QuoteID != "joy" {
		t.Error("Get exposes the live state")
	}

	// Mutating a delivered notification must not reach history either.
	last := f.changes[len(f.changes)-1]
	*last.Content.QuoteID = "mutated"
	f.store.Undo(ctx)
	f.store.Redo(ctx)
	if *f.store.Get().Content.QuoteID != "joy" {
		t.Error("notification payload aliases the store")
	}
}

func TestUseQuote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if err := f.store.UseQuote(ctx, "stars"); err != nil {
		t.Fatal(err)
	}
	q, _ := state.LookupQuote("stars")
	got := f.store.Get()
	if got.Content.Message != q.Text || got.Content.QuoteID == nil || *got.Content.QuoteID != "stars" {
		t.Errorf("UseQuote produced %+v", got.Content)
	}
	if undo, redo := f.store.HistoryLen(); undo != 1 || redo != 0 {
		t.Errorf("HistoryLen() = %d, %d after UseQuote, want 1, 0", undo, redo)
	}
	if err := f.store.UseQuote(ctx, "missing"); !errors.Is(err, state.ErrUnknownQuote) {
		t.Errorf("UseQuote(missing) = %v", err)
	}
}

func TestRandomQuote(t *testing.T) {
	f := newFixture(t)
	text := f.store.RandomQuote()
	found := false
	for _, q := range f.store.Quotes() {
		if q.Text == text {
			found = true
		}
	}
	if !found {
		t.Errorf("RandomQuote returned %q, not in Quotes()", text)
	}
	if len(f.store.Themes()) == 0 {
		t.Error("Themes() is empty")
	}
}

type failingKV struct{ *kv.Memory }

func (failingKV) Save(context.Context, string, string) error { return errors.New("disk full") }

func TestSaveFailureIsNotPropagated(t *testing.T) {
	s := New(failingKV{Memory: kv.NewMemory()}, event.NewBroker())
	s.Init(context.Background())
	if err := s.Update(context.Background(), state.SetRecipient("Ada")); err != nil {
		t.Fatalf("Update returned persistence error: %v", err)
	}
	if s.Get().Content.To != "Ada" {
		t.Error("update not committed after save failure")
	}
}
