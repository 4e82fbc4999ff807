package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestWrapChipsBreaksBeforeOverflow(t *testing.T) {
	chips := buildChips([]string{"dp", "math", "graphs"}, lipgloss.NewStyle())
	got := wrapChips(chips, 9)
	if got != "#dp #math\n#graphs" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapChipsNoWidth(t *testing.T) {
	chips := buildChips([]string{"dp", "math"}, lipgloss.NewStyle())
	if got := wrapChips(chips, 0); got != "#dp #math" {
		t.Fatalf("unexpected single line: %q", got)
	}
}

func TestWrapChipsWideChip(t *testing.T) {
	chips := buildChips([]string{"constructive algorithms", "dp"}, lipgloss.NewStyle())
	lines := strings.Split(wrapChips(chips, 5), "\n")
	if len(lines) != 2 || lines[1] != "#dp" {
		t.Fatalf("expected wide chip on its own line, got %q", lines)
	}
}

func TestWrapChipsEmpty(t *testing.T) {
	if got := wrapChips(nil, 10); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}
