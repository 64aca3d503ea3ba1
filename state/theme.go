package state

import "slices"

// Built-in theme ids.
const (
	ThemeClassic  = "classic"
	ThemeMidnight = "midnight"
	ThemeSunset   = "sunset"
	ThemeForest   = "forest"
	ThemeOcean    = "ocean"
)

// Theme is an immutable palette. Colors are hex strings.
type Theme struct {
	ID         string
	Label      string
	Background [2]string // gradient stops, start then end
	Primary    string
	Accent     string
	Text       string
	Particles  []string
}

// Dark reports whether text on this theme must use light tones.
func (t Theme) Dark() bool { return t.ID == ThemeMidnight }

var themes = []Theme{
	{
		ID:         ThemeClassic,
		Label:      "Classic Rose",
		Background: [2]string{"#FFF5F7", "#FFE4EC"},
		Primary:    "#C2185B",
		Accent:     "#E91E63",
		Text:       "#3A3A3A",
		Particles:  []string{"#F8BBD0", "#F48FB1", "#FFFFFF"},
	},
	{
		ID:         ThemeMidnight,
		Label:      "Midnight",
		Background: [2]string{"#1A1A2E", "#16213E"},
		Primary:    "#E0C3FC",
		Accent:     "#8EC5FC",
		Text:       "#EDEDF5",
		Particles:  []string{"#E0C3FC", "#8EC5FC", "#FFFFFF"},
	},
	{
		ID:         ThemeSunset,
		Label:      "Sunset",
		Background: [2]string{"#FFF3E0", "#FFCCBC"},
		Primary:    "#D84315",
		Accent:     "#FF7043",
		Text:       "#4E342E",
		Particles:  []string{"#FFAB91", "#FFE0B2", "#FFD54F"},
	},
	{
		ID:         ThemeForest,
		Label:      "Forest",
		Background: [2]string{"#F1F8E9", "#DCEDC8"},
		Primary:    "#2E7D32",
		Accent:     "#689F38",
		Text:       "#33402F",
		Particles:  []string{"#A5D6A7", "#C5E1A5", "#FFFFFF"},
	},
	{
		ID:         ThemeOcean,
		Label:      "Ocean",
		Background: [2]string{"#E0F7FA", "#B2EBF2"},
		Primary:    "#00838F",
		Accent:     "#0288D1",
		Text:       "#263238",
		Particles:  []string{"#80DEEA", "#B3E5FC", "#FFFFFF"},
	},
}

// Themes returns the registry in display order. The slice is a copy.
func Themes() []Theme {
	out := make([]Theme, len(themes))
	for i, t := range themes {
		t.Particles = slices.Clone(t.Particles)
		out[i] = t
	}
	return out
}

// LookupTheme returns the theme registered under id.
func LookupTheme(id string) (Theme, error) {
	for _, t := range themes {
		if t.ID == id {
			t.Particles = slices.Clone(t.Particles)
			return t, nil
		}
	}
	return Theme{}, &UnknownThemeError{ID: id}
}
