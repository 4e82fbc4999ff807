package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type chip struct {
	s     string
	width int
}

func buildChips(tags []string, style lipgloss.Style) []chip {
	out := make([]chip, 0, len(tags))
	for _, tag := range tags {
		label := "#" + tag
		out = append(out, chip{
			s:     style.Render(label),
			width: runewidth.StringWidth(label),
		})
	}
	return out
}

// wrapChips joins chips with single spaces and breaks lines before a chip
// that would overflow width. A chip wider than width gets a line of its own.
func wrapChips(chips []chip, width int) string {
	if len(chips) == 0 {
		return ""
	}
	var out strings.Builder
	lineWidth := 0
	for i, c := range chips {
		if i > 0 {
			if width > 0 && lineWidth+1+c.width > width {
				out.WriteByte('\n')
				lineWidth = 0
			} else {
				out.WriteByte(' ')
				lineWidth++
			}
		}
		out.WriteString(c.s)
		lineWidth += c.width
	}
	return out.String()
}
