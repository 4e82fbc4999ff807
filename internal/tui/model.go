// Package tui provides the Bubble Tea view of the active training session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// Session is the engine surface the view drives.
type Session interface {
	Snapshot(now time.Time) model.Snapshot
	ToggleSolved(ctx context.Context, token string) error
	Tick(ctx context.Context, now time.Time) (time.Duration, error)
	End(ctx context.Context, reason model.EndReason) (model.TerminationSummary, error)
	LastSummary() model.TerminationSummary
}

type tickMsg time.Time

// Model implements the Bubble Tea training UI.
type Model struct {
	engine Session
	now    func() time.Time

	table table.Model
	snap  model.Snapshot

	confirmEnd bool
	ended      bool
	summary    model.TerminationSummary
	err        error

	width  int
	height int
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	timerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	urgentStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4F"))
	solvedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	tagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	confirmStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
)

const (
	nameWidth = 32
	tagsWidth = 36
)

// NewModel constructs the training view. now defaults to time.Now.
func NewModel(engine Session, now func() time.Time) *Model {
	if now == nil {
		now = time.Now
	}
	columns := []table.Column{
		{Title: " ", Width: 1},
		{Title: "Problem", Width: 8},
		{Title: "Name", Width: nameWidth},
		{Title: "Rating", Width: 6},
		{Title: "Tags", Width: tagsWidth},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.BorderStyle(lipgloss.NormalBorder()).BorderBottom(true).Bold(true)
	styles.Selected = styles.Selected.Foreground(lipgloss.Color("#F0F0F0")).Background(lipgloss.Color("#3A3A3A"))
	t.SetStyles(styles)

	m := &Model{engine: engine, now: now, table: t}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetWidth(msg.Width)
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil
	case tickMsg:
		return m, m.handleTick(time.Time(msg))
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	default:
		return m, nil
	}
}

// Ended reports whether the session finished while the view was open.
func (m *Model) Ended() bool {
	return m.ended
}

// Summary returns the termination summary once Ended is true.
func (m *Model) Summary() model.TerminationSummary {
	return m.summary
}

func (m *Model) handleTick(now time.Time) tea.Cmd {
	if m.ended {
		return nil
	}
	if _, err := m.engine.Tick(context.Background(), now); err != nil {
		m.err = err
	}
	m.refreshAt(now)
	if m.snap.State == model.StateIdle {
		m.finish(m.engine.LastSummary())
		return nil
	}
	return tick()
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.ended {
		switch key {
		case "q", "esc", "enter":
			return tea.Quit
		}
		return nil
	}
	if m.confirmEnd {
		switch key {
		case "y", "Y":
			m.confirmEnd = false
			summary, err := m.engine.End(context.Background(), model.EndManual)
			if err != nil {
				m.err = err
				return nil
			}
			m.finish(summary)
		default:
			m.confirmEnd = false
		}
		return nil
	}
	switch key {
	case "q", "esc":
		return tea.Quit
	case " ", "x", "enter":
		m.toggleSelected()
		return nil
	case "e":
		m.confirmEnd = true
		return nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return cmd
}

func (m *Model) toggleSelected() {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.snap.Problems) {
		return
	}
	token := m.snap.Problems[idx].Token()
	if err := m.engine.ToggleSolved(context.Background(), token); err != nil {
		m.err = err
		if errors.Is(err, model.ErrNoActiveSession) {
			m.finish(m.engine.LastSummary())
		}
		return
	}
	m.err = nil
	m.refresh()
}

func (m *Model) finish(summary model.TerminationSummary) {
	m.ended = true
	m.summary = summary
}

func (m *Model) refresh() {
	m.refreshAt(m.now())
}

func (m *Model) refreshAt(now time.Time) {
	m.snap = m.engine.Snapshot(now)
	cursor := m.table.Cursor()
	m.table.SetRows(buildRows(m.snap))
	if cursor >= 0 && cursor < len(m.snap.Problems) {
		m.table.SetCursor(cursor)
	}
}

func buildRows(snap model.Snapshot) []table.Row {
	solved := make(map[string]struct{}, len(snap.Solved))
	for _, tok := range snap.Solved {
		solved[tok] = struct{}{}
	}
	rows := make([]table.Row, 0, len(snap.Problems))
	for _, p := range snap.Problems {
		mark := " "
		if _, ok := solved[p.Token()]; ok {
			mark = "✓"
		}
		rating := "?"
		if p.Rating > 0 {
			rating = fmt.Sprintf("%d", p.Rating)
		}
		rows = append(rows, table.Row{
			mark,
			p.Token(),
			runewidth.Truncate(p.Name, nameWidth, "…"),
			rating,
			runewidth.Truncate(strings.Join(p.Tags, ", "), tagsWidth, "…"),
		})
	}
	return rows
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.ended {
		return m.renderSummary()
	}
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	if tags := wrapChips(buildChips(m.snap.Tags, tagStyle), m.width); tags != "" {
		b.WriteString(tags)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	if url := m.selectedURL(); url != "" {
		b.WriteString(footerStyle.Render(url))
		b.WriteString("\n")
	}
	switch {
	case m.confirmEnd:
		b.WriteString(confirmStyle.Render("End the session now? unsolved problems move to upsolve (y/N)"))
	case m.err != nil:
		b.WriteString(errorStyle.Render(m.err.Error()))
	default:
		b.WriteString(m.renderFooter())
	}
	return b.String()
}

func (m *Model) renderHeader() string {
	remaining := m.snap.Remaining
	style := timerStyle
	if remaining < 10*time.Minute {
		style = urgentStyle
	}
	title := titleStyle.Render(fmt.Sprintf("Training · rating %d", m.snap.UserRating))
	return title + "  " + style.Render(formatClock(remaining))
}

func (m *Model) renderFooter() string {
	total := len(m.snap.Problems)
	solved := len(m.snap.Solved)
	pct := 0
	if total > 0 {
		pct = solved * 100 / total
	}
	segments := []string{
		fmt.Sprintf("Solved %d/%d · %d%%", solved, total, pct),
		fmt.Sprintf("Left %s", formatClock(m.snap.Remaining)),
		"space toggle · e end · q leave",
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) renderSummary() string {
	s := m.summary
	if s.Empty() {
		return "No active session.\n\nPress q to exit.\n"
	}
	heading := "Session ended"
	if s.Reason == model.EndExpired {
		heading = "Time is up"
	}
	lines := []string{
		titleStyle.Render(heading),
		"",
		solvedStyle.Render(fmt.Sprintf("Solved %d of %d problems", s.SolvedCount, s.TotalCount)),
	}
	if s.UnsolvedMovedToUpsolve {
		lines = append(lines, "Unsolved problems were added to the upsolve backlog.")
	}
	lines = append(lines, "", footerStyle.Render("Press q to exit."))
	return strings.Join(lines, "\n") + "\n"
}

func (m *Model) selectedURL() string {
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(m.snap.Problems) {
		return ""
	}
	return m.snap.Problems[idx].URL
}

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d.Round(time.Second) / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
