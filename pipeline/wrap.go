package pipeline

import (
	"fmt"
	"strings"
)

// Line is one laid-out line of the message body.
type Line struct {
	Text      string
	Paragraph int     // index of the source paragraph
	Y         float64 // baseline in logical units
}

// Measurer returns the advance width of s.
type Measurer func(s string) (float64, error)

// WrapText lays out message with greedy word wrap.
//
// Paragraphs are separated by '\n' ("\r\n" is accepted). Within a paragraph
// words are added to the current line while the candidate line fits in
// maxWidth; a line breaks only when the next word would overflow and the
// line already holds a word. A word wider than maxWidth is placed alone on
// its line and never split. Every line, including the last line of each
// paragraph and the empty line of an empty paragraph, advances the baseline
// by lineHeight starting at y.
//
// A measurement error stops the layout and is returned.
func WrapText(message string, maxWidth, y, lineHeight float64, measure Measurer) ([]Line, error) {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	paragraphs := strings.Split(message, "\n")

	lines := make([]Line, 0, len(paragraphs))
	emit := func(text string, para int) {
		lines = append(lines, Line{Text: text, Paragraph: para, Y: y})
		y += lineHeight
	}

	for i, para := range paragraphs {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			w, err := measure(candidate)
			if err != nil {
				return nil, fmt.Errorf("pipeline: measure %q: %w", candidate, err)
			}
			if w > maxWidth && line != "" {
				emit(line, i)
				line = word
				continue
			}
			line = candidate
		}
		emit(line, i)
	}
	return lines, nil
}
