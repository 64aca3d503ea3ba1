package state

// DefaultFontFamily is the family used by fresh cards.
const DefaultFontFamily = "Go"

// Default returns a fresh copy of the initial card.
func Default() AppState {
	return AppState{
		Meta: Meta{
			Version: SchemaVersion,
		},
		Content: Content{
			To:      "Dear Friend",
			Message: "Wishing you a day filled with joy and laughter.\nMay all your dreams come true!",
			From:    "With love",
		},
		Design: Design{
			ThemeID:       ThemeClassic,
			FontFamily:    DefaultFontFamily,
			LayoutMode:    LayoutCentered,
			ShowWatermark: true,
		},
		Config: Config{
			CanvasScale:   2,
			Width:         600,
			Height:        800,
			ExportQuality: 0.92,
		},
	}
}
