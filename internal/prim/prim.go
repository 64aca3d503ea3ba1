// Package prim holds the small pure helpers shared by the store and the
// render pipeline: interpolation, clamping, string sanitization and color
// conversion. Nothing in this package keeps state.
package prim

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrInvalidHex is returned by ParseHex for malformed color strings.
var ErrInvalidHex = errors.New("prim: invalid hex color")

// Lerp linearly interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Scaled returns round(v*scale), never less than 1.
func Scaled(v int, scale float64) int {
	n := int(math.Round(float64(v) * scale))
	if n < 1 {
		return 1
	}
	return n
}

// ParseHex parses "#RGB", "#RGBA", "#RRGGBB" or "#RRGGBBAA" (the leading '#'
// is optional).
func ParseHex(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(s, "#")

	var v [8]uint8
	for i := 0; i < len(hex); i++ {
		d, ok := hexDigit(hex[i])
		if !ok || len(hex) > 8 {
			return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
		}
		v[i] = d
	}

	switch len(hex) {
	case 3:
		return color.NRGBA{R: v[0] * 17, G: v[1] * 17, B: v[2] * 17, A: 255}, nil
	case 4:
		return color.NRGBA{R: v[0] * 17, G: v[1] * 17, B: v[2] * 17, A: v[3] * 17}, nil
	case 6:
		return color.NRGBA{R: v[0]<<4 | v[1], G: v[2]<<4 | v[3], B: v[4]<<4 | v[5], A: 255}, nil
	case 8:
		return color.NRGBA{R: v[0]<<4 | v[1], G: v[2]<<4 | v[3], B: v[4]<<4 | v[5], A: v[6]<<4 | v[7]}, nil
	default:
		return color.NRGBA{}, fmt.Errorf("%w: %q", ErrInvalidHex, s)
	}
}

// MustHex is ParseHex for compile-time constants. It panics on bad input.
func MustHex(s string) color.NRGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func hexDigit(c byte) (uint8, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	default:
		return 0, false
	}
}

// WithAlpha returns c with its alpha replaced by a in [0, 1].
func WithAlpha(c color.NRGBA, a float64) color.NRGBA {
	c.A = uint8(math.Round(Clamp(a, 0, 1) * 255))
	return c
}

// LerpColor interpolates two colors channel by channel in straight alpha.
func LerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	t = Clamp(t, 0, 1)
	ch := func(x, y uint8) uint8 {
		return uint8(math.Round(Lerp(float64(x), float64(y), t)))
	}
	return color.NRGBA{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: ch(a.A, b.A)}
}

// Sanitize normalizes user text for storage and drawing. It converts line
// endings to '\n', applies NFC, turns tabs into spaces, drops other control
// and format runes, trims surrounding white space and truncates to maxRunes
// (0 means no limit). The result depends only on the input.
func Sanitize(s string, maxRunes int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = norm.NFC.String(s)

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if maxRunes > 0 && n >= maxRunes {
			break
		}
		switch {
		case r == '\n':
		case r == '\t':
			r = ' '
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r), r == unicode.ReplacementChar:
			continue
		}
		b.WriteRune(r)
		n++
	}
	return strings.TrimSpace(b.String())
}

// Slug turns s into a lowercase ASCII identifier suitable for file names.
// Diacritics are stripped, runs of other characters collapse to a single
// '-'. An empty result becomes fallback.
func Slug(s, fallback string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return fallback
	}
	return out
}
