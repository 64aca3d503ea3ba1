package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/card/state"
)

var errCardFormat = errors.New("card file must be .toml, .yaml or .yml")

// cardFile is a card description. Absent keys leave the document alone.
//
//	to = "Ada"
//	message = """
//	Happy birthday!
//	See you soon."""
//	theme = "sunset"
//	layout = "left"
//	scale = 2
type cardFile struct {
	To        *string  `toml:"to" yaml:"to"`
	Message   *string  `toml:"message" yaml:"message"`
	From      *string  `toml:"from" yaml:"from"`
	Quote     *string  `toml:"quote" yaml:"quote"`
	Theme     *string  `toml:"theme" yaml:"theme"`
	Font      *string  `toml:"font" yaml:"font"`
	Layout    *string  `toml:"layout" yaml:"layout"`
	Watermark *bool    `toml:"watermark" yaml:"watermark"`
	Width     *int     `toml:"width" yaml:"width"`
	Height    *int     `toml:"height" yaml:"height"`
	Scale     *float64 `toml:"scale" yaml:"scale"`
	Quality   *float64 `toml:"quality" yaml:"quality"`
}

func loadCardFile(path string) (*cardFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return parseCardFile(data, filepath.Ext(path))
}

func parseCardFile(data []byte, ext string) (*cardFile, error) {
	var c cardFile
	switch strings.ToLower(ext) {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w, got %q", errCardFormat, ext)
	}
	return &c, nil
}

// mutations returns one mutation per present key, in document order.
func (c *cardFile) mutations() ([]state.Mutation, error) {
	var ms []state.Mutation
	add := func(m state.Mutation) { ms = append(ms, m) }

	if c.To != nil {
		add(state.SetRecipient(*c.To))
	}
	if c.Quote != nil {
		q, err := state.LookupQuote(*c.Quote)
		if err != nil {
			return nil, err
		}
		add(state.UseQuote(q))
	}
	if c.Message != nil {
		add(state.SetMessage(*c.Message))
	}
	if c.From != nil {
		add(state.SetSender(*c.From))
	}
	if c.Theme != nil {
		if _, err := state.LookupTheme(*c.Theme); err != nil {
			return nil, err
		}
		add(state.SetTheme(*c.Theme))
	}
	if c.Font != nil {
		add(state.SetFontFamily(*c.Font))
	}
	if c.Layout != nil {
		add(state.SetLayoutMode(state.LayoutMode(*c.Layout)))
	}
	if c.Watermark != nil {
		add(state.SetShowWatermark(*c.Watermark))
	}
	if c.Width != nil && c.Height != nil {
		add(state.SetSize(*c.Width, *c.Height))
	} else if c.Width != nil {
		add(state.SetWidth(*c.Width))
	} else if c.Height != nil {
		add(state.SetHeight(*c.Height))
	}
	if c.Scale != nil {
		add(state.SetCanvasScale(*c.Scale))
	}
	if c.Quality != nil {
		add(state.SetExportQuality(*c.Quality))
	}
	return ms, nil
}
