// Package render draws project snapshots to PNG and estimates the height of
// items whose height follows their content.
package render

import (
	"math"
	"strings"
	"unicode/utf8"

	"github.com/starford/corkboard/internal/board"
)

// Layout metrics in world units. The text metrics match 12pt Go Mono.
const (
	charWidth    = 7.2
	lineHeight   = 18.0
	fontSize     = 12.0
	headerHeight = 36.0
	stickyGrip   = 24.0
	taskRow      = 28.0
	footerHeight = 32.0
	inset        = 12.0
	minSticky    = 100.0
)

// Measurer resolves content-driven heights with Measure.
type Measurer struct{}

// Height implements interaction.Measurer.
func (Measurer) Height(it *board.Item) float64 { return Measure(it) }

// Measure returns the item height: the fixed value when set, otherwise an
// estimate from the item's text laid out at its width.
func Measure(it *board.Item) float64 {
	if v, ok := it.H.Value(); ok {
		return v
	}
	textWidth := max(it.W-2*inset, charWidth)
	switch c := it.Content.(type) {
	case *board.TaskList:
		h := headerHeight + footerHeight + inset
		for _, t := range c.Tasks {
			h += max(taskRow, float64(wrappedLines(t.Text, textWidth-24))*lineHeight+10)
		}
		return h
	case *board.StickyNote:
		return max(minSticky, stickyGrip+float64(wrappedLines(c.Text, textWidth))*lineHeight+2*inset)
	case *board.NoteBoard:
		h := headerHeight + lineHeight + inset
		for _, s := range c.Sections {
			h += lineHeight + float64(wrappedLines(s.Content, textWidth))*lineHeight + inset
		}
		return h
	}
	_, h := it.Content.DefaultSize()
	return h.Or(200)
}

// wrappedLines estimates how many lines text occupies at width. Empty text
// still takes one line.
func wrappedLines(text string, width float64) int {
	perLine := max(1, int(width/charWidth))
	n := 0
	for _, para := range strings.Split(text, "\n") {
		runes := utf8.RuneCountInString(para)
		n += max(1, int(math.Ceil(float64(runes)/float64(perLine))))
	}
	return n
}
