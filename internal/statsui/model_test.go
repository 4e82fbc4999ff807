package statsui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cfdrill/internal/history"
	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/stats"
	"github.com/verte-zerg/cfdrill/internal/store"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

func newTestModel(t *testing.T) (*Model, *upsolve.Manager) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cfdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	ctx := context.Background()
	hist := history.New(st, nil)
	backlog := upsolve.New(st, nil)
	for _, id := range []string{"old", "new"} {
		rec := model.PerformanceRecord{SessionID: id, Date: "2024-01-01T10:00:00.000Z", TotalProblems: 4, SolvedProblems: 2, Tags: []string{"dp"}}
		if err := hist.Append(ctx, rec); err != nil {
			t.Fatalf("append record: %v", err)
		}
		batch := model.UpsolveBatch{
			ID:       id,
			Date:     "2024-01-01T10:00:00.000Z",
			Tags:     []string{"dp"},
			Problems: []model.Problem{{ContestID: 1, Index: "A", Name: "One"}, {ContestID: 2, Index: "B", Name: "Two"}},
		}
		if err := backlog.Append(ctx, batch); err != nil {
			t.Fatalf("append batch: %v", err)
		}
	}
	m := NewModel(hist, backlog, stats.ReportConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, backlog
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestBatchesListedNewestFirst(t *testing.T) {
	m, _ := newTestModel(t)
	if len(m.batchIDs) != 2 || m.batchIDs[0] != "new" || m.batchIDs[1] != "old" {
		t.Fatalf("unexpected batch order: %v", m.batchIDs)
	}
}

func TestToggleProblemInBatch(t *testing.T) {
	m, backlog := newTestModel(t)
	m.Update(keyMsg("right"))
	if m.activeTab != tabUpsolve {
		t.Fatalf("expected upsolve tab, got %d", m.activeTab)
	}
	m.Update(keyMsg("enter"))
	if m.openBatch != "new" {
		t.Fatalf("expected newest batch opened, got %q", m.openBatch)
	}
	m.Update(keyMsg(" "))

	b, ok, err := backlog.Get(context.Background(), "new")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !b.IsCompleted("1A") {
		t.Fatalf("expected 1A completed, got %v", b.CompletedProblems)
	}
	if !strings.Contains(m.renderBatchDetail(), "1/2 done (50%)") {
		t.Fatalf("detail not refreshed: %s", m.renderBatchDetail())
	}

	m.Update(keyMsg("esc"))
	if m.openBatch != "" {
		t.Fatalf("expected to leave batch detail")
	}
}

func TestDeleteBatchNeedsConfirmation(t *testing.T) {
	m, backlog := newTestModel(t)
	m.Update(keyMsg("right"))

	m.Update(keyMsg("d"))
	m.Update(keyMsg("n"))
	if len(m.batchIDs) != 2 {
		t.Fatalf("expected cancel to keep batches")
	}

	m.Update(keyMsg("d"))
	if !strings.Contains(m.renderFooter(), "Delete this upsolve batch?") {
		t.Fatalf("expected confirmation prompt: %s", m.renderFooter())
	}
	m.Update(keyMsg("y"))
	batches, err := backlog.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(batches) != 1 || batches[0].ID != "old" {
		t.Fatalf("expected newest batch deleted, got %+v", batches)
	}
}

func TestRenderOverview(t *testing.T) {
	m, _ := newTestModel(t)
	out := renderOverview(m.report, 100)
	for _, want := range []string{"Sessions", "Accuracy", "50%", "dp (2)", "Upsolve"} {
		if !strings.Contains(out, want) {
			t.Fatalf("overview missing %q:\n%s", want, out)
		}
	}
	if got := renderOverview(stats.Report{}, 80); !strings.HasPrefix(got, "No sessions found.") {
		t.Fatalf("unexpected empty overview: %q", got)
	}
}

func TestApplyFilterValidation(t *testing.T) {
	m, _ := newTestModel(t)
	m.filterInputs[0].SetValue("-1")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for negative last")
	}
	m.filterInputs[0].SetValue("5")
	m.filterInputs[1].SetValue("0")
	if err := m.applyFilter(); err == nil {
		t.Fatalf("expected error for zero window")
	}
	m.filterInputs[1].SetValue("3")
	if err := m.applyFilter(); err != nil {
		t.Fatalf("applyFilter: %v", err)
	}
	if m.cfg.Last != 5 || m.cfg.CurveWindow != 3 {
		t.Fatalf("unexpected config: %+v", m.cfg)
	}
}

func TestCurveWindowSteps(t *testing.T) {
	cases := []struct{ in, next, prev int }{
		{1, 5, 1},
		{5, 10, 1},
		{7, 10, 5},
		{10, 15, 5},
	}
	for _, c := range cases {
		if got := nextCurveWindow(c.in); got != c.next {
			t.Fatalf("nextCurveWindow(%d) = %d, want %d", c.in, got, c.next)
		}
		if got := prevCurveWindow(c.in); got != c.prev {
			t.Fatalf("prevCurveWindow(%d) = %d, want %d", c.in, got, c.prev)
		}
	}
}

func TestFitLines(t *testing.T) {
	got := fitLines("a\nb\nc", 3, 2)
	if got != "a  \nb  " {
		t.Fatalf("unexpected fit: %q", got)
	}
}
