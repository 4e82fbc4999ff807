package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/cfdrill/internal/model"
)

type fakeSession struct {
	active   bool
	problems []model.Problem
	solved   []string
	deadline time.Time
	last     model.TerminationSummary
	ends     int
}

func (f *fakeSession) Snapshot(now time.Time) model.Snapshot {
	if !f.active || f.deadline.Sub(now) <= 0 {
		return model.Snapshot{State: model.StateIdle}
	}
	return model.Snapshot{
		State:     model.StateActive,
		Remaining: f.deadline.Sub(now),
		Problems:  f.problems,
		Solved:    append([]string(nil), f.solved...),
	}
}

func (f *fakeSession) ToggleSolved(_ context.Context, token string) error {
	for i, s := range f.solved {
		if s == token {
			f.solved = append(f.solved[:i], f.solved[i+1:]...)
			return nil
		}
	}
	f.solved = append(f.solved, token)
	return nil
}

func (f *fakeSession) Tick(_ context.Context, now time.Time) (time.Duration, error) {
	if !f.active {
		return 0, nil
	}
	if left := f.deadline.Sub(now); left > 0 {
		return left, nil
	}
	f.end(model.EndExpired)
	return 0, nil
}

func (f *fakeSession) End(_ context.Context, reason model.EndReason) (model.TerminationSummary, error) {
	if !f.active {
		return model.TerminationSummary{}, nil
	}
	return f.end(reason), nil
}

func (f *fakeSession) LastSummary() model.TerminationSummary {
	return f.last
}

func (f *fakeSession) end(reason model.EndReason) model.TerminationSummary {
	f.active = false
	f.ends++
	f.last = model.TerminationSummary{
		SessionID:              "s",
		Reason:                 reason,
		SolvedCount:            len(f.solved),
		TotalCount:             len(f.problems),
		UnsolvedMovedToUpsolve: len(f.solved) < len(f.problems),
	}
	return f.last
}

func newFakeSession(start time.Time) *fakeSession {
	return &fakeSession{
		active:   true,
		deadline: start.Add(2 * time.Hour),
		problems: []model.Problem{
			{ContestID: 1, Index: "A", Name: "Watermelon", Rating: 800, Tags: []string{"math"}, URL: "https://codeforces.com/contest/1/problem/A"},
			{ContestID: 2, Index: "B", Name: "Two", Rating: 1200, Tags: []string{"dp"}},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestToggleSelectedRow(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fake := newFakeSession(start)
	m := NewModel(fake, func() time.Time { return start })

	m.Update(key(" "))
	if len(fake.solved) != 1 || fake.solved[0] != "1A" {
		t.Fatalf("expected 1A toggled, got %v", fake.solved)
	}
	m.Update(key("down"))
	m.Update(key("x"))
	if len(fake.solved) != 2 || fake.solved[1] != "2B" {
		t.Fatalf("expected 2B toggled, got %v", fake.solved)
	}
	if !strings.Contains(m.renderFooter(), "Solved 2/2") {
		t.Fatalf("footer not refreshed: %s", m.renderFooter())
	}
}

func TestTickExpiryShowsSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fake := newFakeSession(start)
	m := NewModel(fake, func() time.Time { return start.Add(3 * time.Hour) })

	_, cmd := m.Update(tickMsg(start.Add(90 * time.Minute)))
	if cmd == nil || m.Ended() {
		t.Fatalf("expected ticking to continue before expiry")
	}
	_, cmd = m.Update(tickMsg(start.Add(2 * time.Hour)))
	if cmd != nil || !m.Ended() {
		t.Fatalf("expected the view to stop ticking after expiry")
	}
	m.Update(tickMsg(start.Add(2*time.Hour + time.Second)))
	if fake.ends != 1 {
		t.Fatalf("expected one termination, got %d", fake.ends)
	}
	if m.Summary().Reason != model.EndExpired || !strings.Contains(m.View(), "Time is up") {
		t.Fatalf("unexpected summary view: %s", m.View())
	}
}

func TestManualEndNeedsConfirmation(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fake := newFakeSession(start)
	m := NewModel(fake, func() time.Time { return start })

	m.Update(key("e"))
	m.Update(key("n"))
	if fake.ends != 0 || m.Ended() {
		t.Fatalf("expected cancel to keep the session")
	}
	m.Update(key("e"))
	m.Update(key("y"))
	if fake.ends != 1 || !m.Ended() || m.Summary().Reason != model.EndManual {
		t.Fatalf("expected manual end, got %+v", m.Summary())
	}
	if !strings.Contains(m.View(), "upsolve backlog") {
		t.Fatalf("expected upsolve notice in summary: %s", m.View())
	}
}

func TestTickUsesTickTime(t *testing.T) {
	start := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	fake := newFakeSession(start)
	m := NewModel(fake, func() time.Time { return start.Add(2*time.Hour + time.Second) })

	_, cmd := m.Update(tickMsg(start.Add(2*time.Hour - time.Second)))
	if cmd == nil || m.Ended() || fake.ends != 0 {
		t.Fatalf("expected the session to keep running until a tick reaches the deadline")
	}
	if !strings.Contains(m.renderFooter(), "Left 00:00:01") {
		t.Fatalf("unexpected footer: %s", m.renderFooter())
	}
}
