// Command cardgen renders a greeting card to PNG, JPEG or PDF.
//
// Usage:
//
//	cardgen -to Ada -from Grace -theme midnight -out ada.png
//	cardgen -card birthday.toml -scale 3 -out birthday.pdf
//	cardgen -random-quote -undo 1
//
// The document is persisted between runs according to CARD_STATE_BACKEND
// and CARD_STATE_PATH, so every run starts from the previous card.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/gogpu/card"
	"github.com/gogpu/card/export"
	"github.com/gogpu/card/internal/config"
	"github.com/gogpu/card/pipeline"
	"github.com/gogpu/card/state"
	"github.com/gogpu/card/surface"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

type flags struct {
	card        string
	out         string
	width       int
	height      int
	scale       float64
	quality     float64
	theme       string
	font        string
	layout      string
	to          string
	from        string
	message     string
	quote       string
	randomQuote bool
	watermark   bool
	undo        int
	reset       bool
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (*flags, map[string]bool, error) {
	var f flags
	fs := flag.NewFlagSet("cardgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.card, "card", "", "card description file (.toml, .yaml)")
	fs.StringVar(&f.out, "out", "", "output file (.png, .jpg, .pdf); default derived from the recipient")
	fs.IntVar(&f.width, "width", 0, "card width in logical units")
	fs.IntVar(&f.height, "height", 0, "card height in logical units")
	fs.Float64Var(&f.scale, "scale", 0, "device pixel ratio")
	fs.Float64Var(&f.quality, "quality", 0, "JPEG quality in [0, 1]")
	fs.StringVar(&f.theme, "theme", "", "theme id")
	fs.StringVar(&f.font, "font", "", "font family")
	fs.StringVar(&f.layout, "layout", "", "message layout: centered or left")
	fs.StringVar(&f.to, "to", "", "recipient")
	fs.StringVar(&f.from, "from", "", "sender")
	fs.StringVar(&f.message, "message", "", "message; \\n separates paragraphs")
	fs.StringVar(&f.quote, "quote", "", "use the message of a quote id")
	fs.BoolVar(&f.randomQuote, "random-quote", false, "use a random quote as the message")
	fs.BoolVar(&f.watermark, "watermark", true, "draw the watermark")
	fs.IntVar(&f.undo, "undo", 0, "undo this many steps before rendering")
	fs.BoolVar(&f.reset, "reset", false, "start from the default card")
	fs.BoolVar(&f.verbose, "v", false, "debug logging")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cardgen [flags]")
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\nEnvironment:")
		_ = config.Usage(stderr)
		fmt.Fprintf(stderr, "\nSurface backends for CARD_SURFACE: %s\n", strings.Join(surface.Available(), ", "))
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %q", fs.Args())
	}
	set := make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	return &f, set, nil
}

// mutations returns the flag values as individual store mutations.
func (f *flags) mutations(set map[string]bool) ([]state.Mutation, error) {
	var ms []state.Mutation
	if set["to"] {
		ms = append(ms, state.SetRecipient(f.to))
	}
	if set["quote"] {
		q, err := state.LookupQuote(f.quote)
		if err != nil {
			return nil, err
		}
		ms = append(ms, state.UseQuote(q))
	}
	if set["message"] {
		ms = append(ms, state.SetMessage(unescape(f.message)))
	}
	if set["from"] {
		ms = append(ms, state.SetSender(f.from))
	}
	if set["theme"] {
		if _, err := state.LookupTheme(f.theme); err != nil {
			return nil, err
		}
		ms = append(ms, state.SetTheme(f.theme))
	}
	if set["font"] {
		ms = append(ms, state.SetFontFamily(f.font))
	}
	if set["layout"] {
		ms = append(ms, state.SetLayoutMode(state.LayoutMode(f.layout)))
	}
	if set["watermark"] {
		ms = append(ms, state.SetShowWatermark(f.watermark))
	}
	if set["width"] {
		ms = append(ms, state.SetWidth(f.width))
	}
	if set["height"] {
		ms = append(ms, state.SetHeight(f.height))
	}
	if set["scale"] {
		ms = append(ms, state.SetCanvasScale(f.scale))
	}
	if set["quality"] {
		ms = append(ms, state.SetExportQuality(f.quality))
	}
	return ms, nil
}

// unescape turns the two-character sequence \n into a line break so
// paragraphs can be given on the command line.
func unescape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && s[i+1] == 'n' {
			out = append(out, '\n')
			i++
			continue
		}
		out = append(out, s[i])
	}
	return string(out)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	f, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "cardgen:", err)
		return 1
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "cardgen:", err)
		return 1
	}
	level, _ := cfg.Level()
	if f.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	card.SetLogger(logger)

	if err := generate(ctx, cfg, f, set, stdout); err != nil {
		logger.Error("cardgen failed", "err", err)
		fmt.Fprintln(stderr, "cardgen:", err)
		return 1
	}
	return 0
}

func generate(ctx context.Context, cfg *config.Config, f *flags, set map[string]bool, stdout io.Writer) error {
	var ms []state.Mutation
	if f.card != "" {
		cf, err := loadCardFile(f.card)
		if err != nil {
			return fmt.Errorf("card file %s: %w", f.card, err)
		}
		if ms, err = cf.mutations(); err != nil {
			return fmt.Errorf("card file %s: %w", f.card, err)
		}
	}
	fromFlags, err := f.mutations(set)
	if err != nil {
		return err
	}
	ms = append(ms, fromFlags...)

	s, err := card.Open(ctx, cfg, card.WithScheduler(pipeline.NewManual()))
	if err != nil {
		return err
	}
	defer s.Close()

	st := s.Store()
	if f.reset {
		st.Reset(ctx)
	}
	for _, m := range ms {
		if err := st.Update(ctx, m); err != nil {
			return err
		}
	}
	if f.randomQuote {
		if err := useRandomQuote(ctx, s); err != nil {
			return err
		}
	}
	for i := 0; i < f.undo; i++ {
		if !st.Undo(ctx) {
			break
		}
	}

	out := f.out
	if out == "" {
		out = s.FileName(export.PNG)
	}
	if err := s.Export(out); err != nil {
		return err
	}

	snap := s.State()
	w, h := snap.Config.PhysicalSize()
	fmt.Fprintf(stdout, "%s %dx%d (%dx%d @%gx, %s)\n",
		out, w, h, snap.Config.Width, snap.Config.Height, snap.Config.CanvasScale, snap.Design.ThemeID)
	return nil
}

func useRandomQuote(ctx context.Context, s *card.Studio) error {
	st := s.Store()
	text := st.RandomQuote()
	for _, q := range st.Quotes() {
		if q.Text == text {
			return st.UseQuote(ctx, q.ID)
		}
	}
	return st.Update(ctx, state.SetMessage(text))
}
