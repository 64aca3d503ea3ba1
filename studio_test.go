package card

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/gogpu/card/export"
	"github.com/gogpu/card/internal/config"
	"github.com/gogpu/card/pipeline"
	"github.com/gogpu/card/state"
	"github.com/gogpu/card/surface"
)

func newRecordingStudio(t *testing.T, opts ...Option) (*Studio, *surface.Recorder, *pipeline.Manual) {
	t.Helper()
	rec := surface.NewRecorder(1200, 1600)
	sched := pipeline.NewManual()
	s, err := New(context.Background(), append([]Option{WithSurface(rec), WithScheduler(sched)}, opts...)...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, rec, sched
}

func TestStudioRendersOncePerTick(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	s, rec, sched := newRecordingStudio(t, WithMetrics(reg))

	if !s.Pipeline().Pending() {
		t.Fatal("no initial frame pending after New")
	}
	st := s.Store()
	for _, m := range []state.Mutation{
		state.SetRecipient("Ada"),
		state.SetMessage("Happy birthday!\nSee you soon."),
		state.SetTheme(state.ThemeSunset),
	} {
		if err := st.Update(ctx, m); err != nil {
			t.Fatal(err)
		}
	}
	if n := sched.Tick(); n != 1 {
		t.Errorf("tick ran %d frames, want 1", n)
	}
	if got := s.Pipeline().Frames(); got != 1 {
		t.Errorf("Frames() = %d, want 1", got)
	}
	texts := rec.Texts()
	for _, want := range []string{"Ada", "Happy birthday!", "See you soon."} {
		if !slices.Contains(texts, want) {
			t.Errorf("frame texts %q missing %q", texts, want)
		}
	}
	if n, err := testutil.GatherAndCount(reg, "card_repaint_requests_total"); err != nil || n != 1 {
		t.Errorf("metrics not registered: %d, %v", n, err)
	}
}

func TestStudioExport(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, WithScheduler(pipeline.NewManual()))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Store().Update(ctx, state.SetRecipient("Grace Hopper")); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), s.FileName(export.PNG))
	if filepath.Base(path) != "greeting-card-grace-hopper.png" {
		t.Errorf("FileName = %q", filepath.Base(path))
	}
	if err := s.Export(path); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 1200 || b.Dy() != 1600 {
		t.Errorf("exported %dx%d, want 1200x1600", b.Dx(), b.Dy())
	}

	var buf bytes.Buffer
	if err := s.ExportTo(&buf, export.JPEG); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Error("ExportTo wrote nothing")
	}
}

func TestStudioRenderReportsFrameError(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newRecordingStudio(t)
	if err := s.Store().Update(ctx, state.SetTheme("neon")); err != nil {
		t.Fatal(err)
	}
	err := s.Render()
	var ute *state.UnknownThemeError
	if !errors.As(err, &ute) {
		t.Fatalf("Render() = %v, want *state.UnknownThemeError", err)
	}
	if err := s.Export(filepath.Join(t.TempDir(), "card.png")); !errors.As(err, &ute) {
		t.Errorf("Export() = %v, want the frame error", err)
	}

	s.Store().Undo(ctx)
	if err := s.Render(); err != nil {
		t.Errorf("Render() after undo = %v", err)
	}
}

func TestOpenPersists(t *testing.T) {
	ctx := context.Background()
	for _, backend := range []string{config.BackendDir, config.BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.StateBackend = backend
			cfg.StatePath = filepath.Join(t.TempDir(), "state", "card.db")
			cfg.Surface = "record"

			s, err := Open(ctx, cfg, WithScheduler(pipeline.NewManual()))
			if err != nil {
				t.Fatal(err)
			}
			if err := s.Store().Update(ctx, state.SetSender("Alan")); err != nil {
				t.Fatal(err)
			}
			if err := s.Close(); err != nil {
				t.Fatal(err)
			}

			s, err = Open(ctx, cfg, WithScheduler(pipeline.NewManual()))
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			if got := s.State().Content.From; got != "Alan" {
				t.Errorf("reopened sender = %q, want Alan", got)
			}
			if s.Store().CanUndo() {
				t.Error("history survived a restart")
			}
		})
	}
}

func TestOpenErrors(t *testing.T) {
	ctx := context.Background()

	cfg := config.Default()
	cfg.StateBackend = "redis"
	if _, err := Open(ctx, cfg); !errors.Is(err, config.ErrUnknownBackend) {
		t.Errorf("Open(redis) = %v, want ErrUnknownBackend", err)
	}

	cfg = config.Default()
	cfg.StateBackend = config.BackendMemory
	cfg.Surface = "vulkan"
	var nf *surface.BackendNotFoundError
	if _, err := Open(ctx, cfg); !errors.As(err, &nf) {
		t.Errorf("Open(surface vulkan) = %v, want BackendNotFoundError", err)
	}
}
