package pipeline

// Layout holds the card geometry in logical units. The zero value is not
// useful; start from DefaultLayout.
type Layout struct {
	// Background texture: one Cell-sized square per Step grid position,
	// drawn with probability Density at TextureAlpha of the theme text color.
	TextureStep    float64
	TextureCell    float64
	TextureDensity float64
	TextureAlpha   float64

	// Inset frame.
	FrameMargin float64
	FrameWidth  float64
	FrameAlpha  float64

	// Hearts in the top-right and bottom-left corners.
	HeartMajor      float64
	HeartMajorAlpha float64
	HeartMinor      float64
	HeartMinorAlpha float64
	HeartInset      float64

	// Recipient line and divider.
	RecipientY    float64
	RecipientSize float64
	DividerY      float64
	DividerWidth  float64
	DividerHeight float64

	// Message body.
	MessageY       float64
	MessageSize    float64
	LineHeight     float64
	MessagePadding float64 // on each side; the wrap width is width - 2*padding

	// Sender, measured up from the bottom edge.
	SenderOffset float64
	SenderSize   float64

	// Watermark, measured up from the bottom edge.
	WatermarkText   string
	WatermarkOffset float64
	WatermarkSize   float64

	// Text limits applied when the card is drawn.
	MaxNameRunes    int
	MaxMessageRunes int
}

// DefaultLayout returns the standard card geometry.
func DefaultLayout() Layout {
	return Layout{
		TextureStep:    4,
		TextureCell:    1,
		TextureDensity: 0.4,
		TextureAlpha:   0.04,

		FrameMargin: 20,
		FrameWidth:  2,
		FrameAlpha:  0.5,

		HeartMajor:      48,
		HeartMajorAlpha: 0.15,
		HeartMinor:      32,
		HeartMinorAlpha: 0.12,
		HeartInset:      50,

		RecipientY:    150,
		RecipientSize: 44,
		DividerY:      180,
		DividerWidth:  80,
		DividerHeight: 2,

		MessageY:       240,
		MessageSize:    20,
		LineHeight:     32,
		MessagePadding: 70,

		SenderOffset: 90,
		SenderSize:   30,

		WatermarkText:   "Made with Card Studio",
		WatermarkOffset: 28,
		WatermarkSize:   11,

		MaxNameRunes:    80,
		MaxMessageRunes: 2000,
	}
}
