package state

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Quote is a ready-made message body.
type Quote struct {
	ID   string
	Text string
}

var quotes = []Quote{
	{"joy", "Wishing you a day filled with joy, laughter and everything you love."},
	{"friend", "A friend like you is a gift the years only make more precious."},
	{"stars", "May your dreams be as bright as the stars tonight."},
	{"journey", "Every step of the journey is better with you beside me.\nThank you for being you."},
	{"smile", "Your smile makes ordinary days feel like celebrations."},
	{"thanks", "Thank you for your kindness, your patience and your generous heart."},
	{"cheers", "Here's to new adventures, old friends and the memories still to come."},
}

// Quotes returns the fixed quote table.
func Quotes() []Quote {
	return slices.Clone(quotes)
}

// LookupQuote returns the quote with the given id.
func LookupQuote(id string) (Quote, error) {
	for _, q := range quotes {
		if q.ID == id {
			return q, nil
		}
	}
	return Quote{}, fmt.Errorf("%w: %q", ErrUnknownQuote, id)
}

// RandomQuote draws uniformly from the quote table. A nil r uses the
// package-level generator.
func RandomQuote(r *rand.Rand) Quote {
	if r == nil {
		return quotes[rand.IntN(len(quotes))]
	}
	return quotes[r.IntN(len(quotes))]
}
