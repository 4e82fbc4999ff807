package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Tag", "Sessions", "Rate"}
	rows := [][]string{
		{"dp", "12", "97%"},
		{"dfs and similar", "3", "8%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Tag             Sessions Rate" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "dp                    12  97%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "dfs and similar        3   8%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthCountsWideRunes(t *testing.T) {
	if got := displayWidth("例題"); got != 4 {
		t.Fatalf("expected width 4, got %d", got)
	}
	if got := truncate("dynamic programming", 8); displayWidth(got) > 8 {
		t.Fatalf("truncated value too wide: %q", got)
	}
}

func TestRenderHistoryNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	records := []model.PerformanceRecord{
		{SessionID: "a", Date: "2024-01-01T10:00:00.000Z", TotalProblems: 8, SolvedProblems: 2, Tags: []string{"dp"}},
		{SessionID: "b", Date: "2024-01-02T10:00:00.000Z", TotalProblems: 8, SolvedProblems: 6, Tags: []string{"math"}},
	}
	if err := RenderHistory(&buf, records); err != nil {
		t.Fatalf("RenderHistory: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "6/8") > strings.Index(out, "2/8") {
		t.Fatalf("expected newest session first:\n%s", out)
	}
}

func TestRenderProblemsMarksSolved(t *testing.T) {
	var buf bytes.Buffer
	problems := []model.Problem{
		{ContestID: 1, Index: "A", Name: "Watermelon", Rating: 800, Tags: []string{"math"}},
		{ContestID: 2, Index: "B", Name: "Unrated"},
	}
	if err := RenderProblems(&buf, problems, []string{"1A"}); err != nil {
		t.Fatalf("RenderProblems: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasPrefix(lines[1], "✓ 1A") {
		t.Fatalf("expected solved mark on 1A: %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "  2B") || !strings.Contains(lines[2], " -") {
		t.Fatalf("expected unsolved unrated 2B: %q", lines[2])
	}
}

func TestRenderBacklogNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	progress := []upsolve.Progress{
		{Batch: model.UpsolveBatch{ID: "old", Date: "2024-01-01T10:00:00.000Z"}, Completed: 1, Total: 2, Rate: 50},
		{Batch: model.UpsolveBatch{ID: "new", Date: "2024-01-02T10:00:00.000Z"}, Completed: 0, Total: 3, Rate: 0},
	}
	if err := RenderBacklog(&buf, progress); err != nil {
		t.Fatalf("RenderBacklog: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "new") > strings.Index(out, "old") {
		t.Fatalf("expected newest batch first:\n%s", out)
	}
	if !strings.Contains(out, "1/2") || !strings.Contains(out, "50%") {
		t.Fatalf("missing progress:\n%s", out)
	}

	buf.Reset()
	if err := RenderBacklog(&buf, nil); err != nil || !strings.Contains(buf.String(), "empty") {
		t.Fatalf("unexpected empty backlog output %q (%v)", buf.String(), err)
	}
}
