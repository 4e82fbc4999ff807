package tui

import (
	"strings"
	"testing"
	"time"

	"github.com/verte-zerg/cfdrill/internal/model"
)

func TestRenderFooterFormats(t *testing.T) {
	m := &Model{
		snap: model.Snapshot{
			State:     model.StateActive,
			Remaining: time.Hour + 2*time.Minute + 3*time.Second,
			Problems:  make([]model.Problem, 8),
			Solved:    []string{"1A", "2B"},
		},
	}
	out := m.renderFooter()
	if out == "" {
		t.Fatalf("expected footer output")
	}
	if !containsAll(out, []string{"Solved 2/8", "25%", "Left 01:02:03", "e end"}) {
		t.Fatalf("footer missing expected segments: %s", out)
	}
}

func TestFormatClock(t *testing.T) {
	cases := map[time.Duration]string{
		0:                               "00:00:00",
		-time.Second:                    "00:00:00",
		2 * time.Hour:                   "02:00:00",
		59*time.Minute + 59*time.Second: "00:59:59",
		1500 * time.Millisecond:         "00:00:02",
	}
	for d, want := range cases {
		if got := formatClock(d); got != want {
			t.Fatalf("formatClock(%s) = %s, want %s", d, got, want)
		}
	}
}

func containsAll(haystack string, needles []string) bool {
	for _, needle := range needles {
		if !strings.Contains(haystack, needle) {
			return false
		}
	}
	return true
}
