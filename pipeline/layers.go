package pipeline

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"strings"

	"github.com/gogpu/card/fonts"
	"github.com/gogpu/card/internal/prim"
	"github.com/gogpu/card/state"
	"github.com/gogpu/card/surface"
)

var (
	bodyLight      = prim.MustHex("#EDEDF5")
	bodyDark       = prim.MustHex("#3A3A3A")
	watermarkLight = color.NRGBA{R: 255, G: 255, B: 255, A: 89} // 35%
	watermarkDark  = color.NRGBA{A: 71}                         // 28%
)

type palette struct {
	bg        [2]color.NRGBA
	primary   color.NRGBA
	accent    color.NRGBA
	text      color.NRGBA
	body      color.NRGBA
	watermark color.NRGBA
}

func newPalette(t state.Theme) (palette, error) {
	var p palette
	hex := []struct {
		dst *color.NRGBA
		src string
	}{
		{&p.bg[0], t.Background[0]},
		{&p.bg[1], t.Background[1]},
		{&p.primary, t.Primary},
		{&p.accent, t.Accent},
		{&p.text, t.Text},
	}
	for _, h := range hex {
		c, err := prim.ParseHex(h.src)
		if err != nil {
			return palette{}, fmt.Errorf("theme %s: %w", t.ID, err)
		}
		*h.dst = c
	}
	p.body, p.watermark = bodyDark, watermarkDark
	if t.Dark() {
		p.body, p.watermark = bodyLight, watermarkLight
	}
	return p, nil
}

// frame is everything a paint pass needs, resolved before any pixel is
// touched.
type frame struct {
	width, height float64 // logical
	physW, physH  int
	scale         float64

	pal    palette
	family string

	recipient string
	sender    string
	lines     []Line
	align     surface.Align
	messageX  float64

	watermark bool
}

// prepare resolves the theme, sanitizes text and lays out the message.
// It may select fonts on s but never draws.
func (p *Pipeline) prepare(st state.AppState, s surface.Surface) (*frame, error) {
	// Sources other than the store hand over unvalidated states.
	if err := st.Validate(); err != nil {
		return nil, err
	}
	theme, err := state.LookupTheme(st.Design.ThemeID)
	if err != nil {
		return nil, err
	}
	pal, err := newPalette(theme)
	if err != nil {
		return nil, err
	}

	l := p.layout
	f := &frame{
		width:     float64(st.Config.Width),
		height:    float64(st.Config.Height),
		scale:     st.Config.CanvasScale,
		pal:       pal,
		family:    st.Design.FontFamily,
		recipient: singleLine(st.Content.To, l.MaxNameRunes),
		sender:    singleLine(st.Content.From, l.MaxNameRunes),
		watermark: st.Design.ShowWatermark,
		align:     surface.AlignCenter,
		messageX:  float64(st.Config.Width) / 2,
	}
	f.physW, f.physH = st.Config.PhysicalSize()
	if st.Design.LayoutMode == state.LayoutLeft {
		f.align, f.messageX = surface.AlignLeft, l.MessagePadding
	}

	if err := s.SetFont(f.family, l.MessageSize); err != nil {
		return nil, err
	}
	message := prim.Sanitize(st.Content.Message, l.MaxMessageRunes)
	f.lines, err = WrapText(message, f.width-2*l.MessagePadding, l.MessageY, l.LineHeight, s.MeasureText)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// singleLine sanitizes a name and folds line breaks into spaces.
func singleLine(s string, maxRunes int) string {
	return strings.Join(strings.Fields(prim.Sanitize(s, maxRunes)), " ")
}

func (p *Pipeline) drawBackground(s surface.Surface, f *frame, rnd *rand.Rand) error {
	grad := surface.LinearGradient{
		X1: f.width, Y1: f.height,
		Stops: []surface.Stop{
			{Offset: 0, Color: f.pal.bg[0]},
			{Offset: 1, Color: f.pal.bg[1]},
		},
	}
	if err := s.FillRect(0, 0, f.width, f.height, grad); err != nil {
		return err
	}

	l := p.layout
	if l.TextureStep <= 0 || l.TextureDensity <= 0 {
		return nil
	}
	cells := surface.NewPath()
	for y := 0.0; y < f.height; y += l.TextureStep {
		for x := 0.0; x < f.width; x += l.TextureStep {
			if rnd.Float64() < l.TextureDensity {
				cells.Rect(x, y, l.TextureCell, l.TextureCell)
			}
		}
	}
	return s.FillPath(cells, surface.Solid{Color: prim.WithAlpha(f.pal.text, l.TextureAlpha)})
}

func (p *Pipeline) drawDecorations(s surface.Surface, f *frame) error {
	l := p.layout
	m := l.FrameMargin
	border := prim.WithAlpha(f.pal.accent, l.FrameAlpha)
	if err := s.StrokeRect(m, m, f.width-2*m, f.height-2*m, l.FrameWidth, border); err != nil {
		return err
	}

	major := heart(f.width-l.HeartInset, l.HeartInset-l.HeartMajor/2, l.HeartMajor)
	if err := s.FillPath(major, surface.Solid{Color: prim.WithAlpha(f.pal.primary, l.HeartMajorAlpha)}); err != nil {
		return err
	}
	minor := heart(l.HeartInset, f.height-l.HeartInset-l.HeartMinor/2, l.HeartMinor)
	return s.FillPath(minor, surface.Solid{Color: prim.WithAlpha(f.pal.accent, l.HeartMinorAlpha)})
}

// heart returns a heart of the given size whose notch is centered at x and
// whose bounding box starts at top. The two lobes mirror each other and
// meet in the point at top+size.
func heart(x, top, size float64) *surface.Path {
	half := size / 2
	notch := top + size/4
	p := surface.NewPath()
	p.MoveTo(x, notch)
	p.CubicTo(x, top, x-half, top, x-half, notch)
	p.CubicTo(x-half, top+half, x, top+size*0.6, x, top+size)
	p.CubicTo(x, top+size*0.6, x+half, top+half, x+half, notch)
	p.CubicTo(x+half, top, x, top, x, notch)
	p.Close()
	return p
}

func (p *Pipeline) drawText(s surface.Surface, f *frame) error {
	l := p.layout
	cx := f.width / 2

	if err := s.SetFont(f.family, l.RecipientSize); err != nil {
		return err
	}
	if err := s.FillText(f.recipient, cx, l.RecipientY, surface.AlignCenter, f.pal.primary); err != nil {
		return err
	}

	divider := surface.Solid{Color: f.pal.accent}
	if err := s.FillRect(cx-l.DividerWidth/2, l.DividerY, l.DividerWidth, l.DividerHeight, divider); err != nil {
		return err
	}

	if err := s.SetFont(f.family, l.MessageSize); err != nil {
		return err
	}
	for _, line := range f.lines {
		if line.Text == "" {
			continue
		}
		if err := s.FillText(line.Text, f.messageX, line.Y, f.align, f.pal.body); err != nil {
			return err
		}
	}

	if err := s.SetFont(f.family, l.SenderSize); err != nil {
		return err
	}
	return s.FillText(f.sender, cx, f.height-l.SenderOffset, surface.AlignCenter, f.pal.accent)
}

func (p *Pipeline) drawWatermark(s surface.Surface, f *frame) error {
	l := p.layout
	if err := s.SetFont(fonts.Fallback, l.WatermarkSize); err != nil {
		return err
	}
	return s.FillText(l.WatermarkText, f.width/2, f.height-l.WatermarkOffset, surface.AlignCenter, f.pal.watermark)
}
