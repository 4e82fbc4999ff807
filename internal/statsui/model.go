// Package statsui provides the Bubble Tea stats and upsolve interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/stats"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

const (
	tabOverview = iota
	tabUpsolve
	tabHistory
)

const plotHeight = 8

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sectionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C0C0C0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
	confirmStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
)

// Records lists performance records.
type Records interface {
	List(ctx context.Context) ([]model.PerformanceRecord, error)
}

// Backlog is the upsolve surface the view reads and mutates.
type Backlog interface {
	Summaries(ctx context.Context) ([]upsolve.Progress, error)
	ToggleCompleted(ctx context.Context, id, token string) error
	Delete(ctx context.Context, id string) error
}

// Model implements the Bubble Tea stats UI.
type Model struct {
	records Records
	backlog Backlog
	cfg     stats.ReportConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model

	batchTable   table.Model
	batchIDs     []string
	openBatch    string
	problemTable table.Model
	historyTable table.Model

	confirmDelete bool

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a stats UI model.
func NewModel(records Records, backlog Backlog, cfg stats.ReportConfig) *Model {
	if cfg.CurveWindow < 1 {
		cfg.CurveWindow = 1
	}
	m := &Model{
		records:      records,
		backlog:      backlog,
		cfg:          cfg,
		tabs:         []string{"Overview", "Upsolve", "History"},
		overview:     viewport.New(0, 0),
		batchTable:   newTable(batchColumns()),
		problemTable: newTable(problemColumns()),
		historyTable: newTable(historyColumns()),
	}
	m.initInputs()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		if m.confirmDelete {
			return m.updateConfirmDelete(msg)
		}
		if msg.String() == "q" {
			return m, tea.Quit
		}
		if m.openBatch != "" {
			return m.updateBatchDetail(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "/":
			return m.startFilter()
		case "enter":
			if m.activeTab == tabUpsolve {
				m.openSelectedBatch()
			}
			return m, nil
		case "d":
			if m.activeTab == tabUpsolve && len(m.batchIDs) > 0 {
				m.confirmDelete = true
			}
			return m, nil
		case "g", "home":
			m.gotoEdge(true)
			return m, nil
		case "G", "end":
			m.gotoEdge(false)
			return m, nil
		}
		return m, m.routeToActive(msg)
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) routeToActive(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	switch m.activeTab {
	case tabUpsolve:
		m.batchTable, cmd = m.batchTable.Update(msg)
	case tabHistory:
		m.historyTable, cmd = m.historyTable.Update(msg)
	default:
		m.overview, cmd = m.overview.Update(msg)
	}
	return cmd
}

func (m *Model) gotoEdge(top bool) {
	switch {
	case m.openBatch != "" && top:
		m.problemTable.GotoTop()
	case m.openBatch != "":
		m.problemTable.GotoBottom()
	case m.activeTab == tabUpsolve && top:
		m.batchTable.GotoTop()
	case m.activeTab == tabUpsolve:
		m.batchTable.GotoBottom()
	case m.activeTab == tabHistory && top:
		m.historyTable.GotoTop()
	case m.activeTab == tabHistory:
		m.historyTable.GotoBottom()
	case top:
		m.overview.GotoTop()
	default:
		m.overview.GotoBottom()
	}
}

func (m *Model) updateBatchDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "left", "h":
		m.openBatch = ""
		m.focusActive()
		return m, nil
	case " ", "x", "enter":
		m.toggleSelectedProblem()
		return m, nil
	case "g", "home":
		m.gotoEdge(true)
		return m, nil
	case "G", "end":
		m.gotoEdge(false)
		return m, nil
	}
	var cmd tea.Cmd
	m.problemTable, cmd = m.problemTable.Update(msg)
	return m, cmd
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.confirmDelete = false
	if msg.String() != "y" && msg.String() != "Y" {
		return m, nil
	}
	id := m.selectedBatchID()
	if id == "" {
		return m, nil
	}
	if err := m.backlog.Delete(context.Background(), id); err != nil {
		m.errMsg = err.Error()
		return m, nil
	}
	m.refreshReport()
	return m, nil
}

func (m *Model) openSelectedBatch() {
	id := m.selectedBatchID()
	if id == "" {
		return
	}
	m.openBatch = id
	m.batchTable.Blur()
	m.applyProblemRows()
	m.problemTable.SetCursor(0)
	m.problemTable.Focus()
}

func (m *Model) toggleSelectedProblem() {
	p, ok := m.openProgress()
	if !ok {
		return
	}
	idx := m.problemTable.Cursor()
	if idx < 0 || idx >= len(p.Batch.Problems) {
		return
	}
	token := p.Batch.Problems[idx].Token()
	if err := m.backlog.ToggleCompleted(context.Background(), p.Batch.ID, token); err != nil {
		m.errMsg = err.Error()
		return
	}
	m.refreshReport()
	m.problemTable.SetCursor(idx)
}

func (m *Model) selectedBatchID() string {
	idx := m.batchTable.Cursor()
	if idx < 0 || idx >= len(m.batchIDs) {
		return ""
	}
	return m.batchIDs[idx]
}

func (m *Model) openProgress() (upsolve.Progress, bool) {
	for _, p := range m.report.Backlog {
		if p.Batch.ID == m.openBatch {
			return p, true
		}
	}
	return upsolve.Progress{}, false
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Last sessions (0 = all): "),
		newFilterInput("Curve window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 6
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	if m.cfg.Last > 0 {
		m.filterInputs[0].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[0].SetValue("")
	}
	m.filterInputs[1].SetValue(strconv.Itoa(m.cfg.CurveWindow))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := lipgloss.Height(activeNavStyle.Render("X"))
	if tabsHeight < 1 {
		tabsHeight = 1
	}
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && (m.errMsg != "" || m.confirmDelete) {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range []*table.Model{&m.batchTable, &m.problemTable, &m.historyTable} {
		t.SetWidth(m.width)
		t.SetHeight(maxInt(1, bodyHeight-2))
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = maxInt(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := m.activeTab + delta
	if next < 0 {
		next = count - 1
	}
	if next >= count {
		next = 0
	}
	m.activeTab = next
	m.focusActive()
}

func (m *Model) focusActive() {
	m.batchTable.Blur()
	m.problemTable.Blur()
	m.historyTable.Blur()
	switch m.activeTab {
	case tabUpsolve:
		m.batchTable.Focus()
	case tabHistory:
		m.historyTable.Focus()
	}
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Settings: last=%s  window=%d  pending upsolve=%d", last, m.cfg.CurveWindow, m.report.Pending)
	summary = runewidth.Truncate(summary, maxInt(m.width, 1), "...")
	return padLines(m.renderTabs(), m.width) + "\n" + headerStyle.Render(summary)
}

func (m *Model) renderHelp() string {
	help := "Nav: left/right  Scroll: up/down  Window: -/=  Settings: /  Quit: q"
	switch {
	case m.openBatch != "":
		help = "Toggle solved: space  Back: esc  Quit: q"
	case m.activeTab == tabUpsolve:
		help = "Nav: left/right  Open: enter  Delete: d  Settings: /  Quit: q"
	}
	return headerStyle.Render(help)
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := m.renderHelp()
	if m.confirmDelete {
		return help + "\n" + confirmStyle.Render("Delete this upsolve batch? (y/N)")
	}
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderFilterForm() string {
	lines := []string{"Settings (enter to apply, esc to cancel)"}
	for _, input := range m.filterInputs {
		lines = append(lines, input.View())
	}
	if m.filterError != "" {
		lines = append(lines, errorStyle.Render(m.filterError))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody() string {
	if m.filterMode {
		return m.renderFilterForm()
	}
	switch m.activeTab {
	case tabUpsolve:
		if m.openBatch != "" {
			return m.renderBatchDetail()
		}
		if len(m.report.Backlog) == 0 {
			return "Upsolve backlog is empty."
		}
		return tableMutedStyle.Render(m.batchTable.View())
	case tabHistory:
		if len(m.report.Recent) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(m.historyTable.View())
	default:
		return m.overview.View()
	}
}

func (m *Model) renderBatchDetail() string {
	p, ok := m.openProgress()
	if !ok {
		return "Batch not found."
	}
	title := sectionStyle.Render(fmt.Sprintf("%s  %d/%d done (%d%%)", displayDate(p.Batch.Date), p.Completed, p.Total, p.Rate))
	body := tableMutedStyle.Render(m.problemTable.View())
	url := ""
	if idx := m.problemTable.Cursor(); idx >= 0 && idx < len(p.Batch.Problems) {
		url = headerStyle.Render(p.Batch.Problems[idx].URL)
	}
	return strings.Join([]string{title, body, url}, "\n")
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.records, m.backlog, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load stats.")
		return
	}
	m.errMsg = ""
	m.report = report

	sel := m.batchTable.Cursor()
	rows, ids := buildBatchRows(report.Backlog)
	m.batchIDs = ids
	m.batchTable.SetRows(rows)
	if sel >= len(rows) {
		sel = len(rows) - 1
	}
	if sel >= 0 {
		m.batchTable.SetCursor(sel)
	}
	m.historyTable.SetRows(buildHistoryRows(report.Recent))
	if m.openBatch != "" {
		if _, ok := m.openProgress(); !ok {
			m.openBatch = ""
		}
		m.applyProblemRows()
	}
	m.renderOverview()
}

func (m *Model) applyProblemRows() {
	p, ok := m.openProgress()
	if !ok {
		m.problemTable.SetRows(nil)
		return
	}
	m.problemTable.SetRows(buildProblemRows(p.Batch))
}

func (m *Model) renderOverview() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	m.overview.SetContent(renderOverview(m.report, width))
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		if err := m.applyFilter(); err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	if idx < 0 {
		idx = count - 1
	}
	if idx >= count {
		idx = 0
	}
	m.filterIndex = idx
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) applyFilter() error {
	lastInput := strings.TrimSpace(m.filterInputs[0].Value())
	last := 0
	if lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}
	windowInput := strings.TrimSpace(m.filterInputs[1].Value())
	window := 1
	if windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return fmt.Errorf("invalid curve window (use integer >= 1)")
		}
		window = parsed
	}
	m.cfg.Last = last
	m.cfg.CurveWindow = window
	return nil
}

func renderOverview(report stats.Report, width int) string {
	s := report.Summary
	if s.TotalSessions == 0 {
		return "No sessions found. Start one with `cfdrill start --tags dp,math`."
	}
	cards := []string{
		metricCard("Sessions", strconv.Itoa(s.TotalSessions)),
		metricCard("Problems", strconv.Itoa(s.TotalProblems)),
		metricCard("Solved", strconv.Itoa(s.TotalSolved)),
		metricCard("Accuracy", fmt.Sprintf("%d%%", s.AverageAccuracy)),
		metricCard("Time", stats.FormatDuration(s.TotalTime)),
		metricCard("Upsolve", strconv.Itoa(report.Pending)),
	}
	var grid string
	if width < 80 {
		grid = strings.Join(cards, "\n")
	} else {
		row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
		row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
		grid = lipgloss.JoinVertical(lipgloss.Left, row1, row2)
	}

	sections := []string{grid}
	if len(s.TopTags) > 0 {
		lines := []string{sectionStyle.Render("Most practiced tags")}
		for i, tc := range s.TopTags {
			lines = append(lines, fmt.Sprintf("%d. %s (%d)", i+1, tc.Tag, tc.Count))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if len(report.Weak) > 0 {
		lines := []string{sectionStyle.Render("Needs work")}
		for _, w := range report.Weak {
			lines = append(lines, fmt.Sprintf("%s  %d%% over %d sessions", w.Tag, w.Rate(), w.Sessions))
		}
		sections = append(sections, strings.Join(lines, "\n"))
	}
	if curves := renderCurves(report.Records, report.Window, width); curves != "" {
		sections = append(sections, curves)
	}
	return strings.Join(sections, "\n\n")
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func renderCurves(records []model.PerformanceRecord, window, width int) string {
	var buf bytes.Buffer
	if err := stats.RenderCurvesWithSize(&buf, records, window, width, plotHeight, true); err != nil {
		return fmt.Sprintf("Failed to render curves: %v", err)
	}
	return strings.TrimRight(buf.String(), "\n")
}

func newTable(columns []table.Column) table.Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithHeight(1),
	)
	t.SetStyles(tableStyles())
	return t
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func batchColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Done", Width: 7},
		{Title: "Rate", Width: 5},
		{Title: "Tags", Width: 40},
	}
}

func problemColumns() []table.Column {
	return []table.Column{
		{Title: " ", Width: 1},
		{Title: "Problem", Width: 8},
		{Title: "Name", Width: 32},
		{Title: "Rating", Width: 6},
		{Title: "Tags", Width: 30},
	}
}

func historyColumns() []table.Column {
	return []table.Column{
		{Title: "Date", Width: 16},
		{Title: "Solved", Width: 7},
		{Title: "Acc", Width: 5},
		{Title: "Time", Width: 7},
		{Title: "Rating", Width: 6},
		{Title: "Tags", Width: 36},
	}
}

// buildBatchRows lists batches newest first and returns the row ids in the
// same order.
func buildBatchRows(progress []upsolve.Progress) ([]table.Row, []string) {
	rows := make([]table.Row, 0, len(progress))
	ids := make([]string, 0, len(progress))
	for i := len(progress) - 1; i >= 0; i-- {
		p := progress[i]
		rows = append(rows, table.Row{
			displayDate(p.Batch.Date),
			fmt.Sprintf("%d/%d", p.Completed, p.Total),
			fmt.Sprintf("%d%%", p.Rate),
			strings.Join(p.Batch.Tags, ", "),
		})
		ids = append(ids, p.Batch.ID)
	}
	return rows, ids
}

func buildProblemRows(batch model.UpsolveBatch) []table.Row {
	rows := make([]table.Row, 0, len(batch.Problems))
	for _, p := range batch.Problems {
		mark := " "
		if batch.IsCompleted(p.Token()) {
			mark = "✓"
		}
		rating := "?"
		if p.Rating > 0 {
			rating = strconv.Itoa(p.Rating)
		}
		rows = append(rows, table.Row{mark, p.Token(), p.Name, rating, strings.Join(p.Tags, ", ")})
	}
	return rows
}

func buildHistoryRows(records []model.PerformanceRecord) []table.Row {
	rows := make([]table.Row, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		rows = append(rows, table.Row{
			displayDate(r.Date),
			fmt.Sprintf("%d/%d", r.SolvedProblems, r.TotalProblems),
			fmt.Sprintf("%.0f%%", stats.SessionAccuracy(r)),
			stats.FormatDuration(time.Duration(r.SolveTimeMs) * time.Millisecond),
			strconv.Itoa(r.UserRating),
			strings.Join(r.Tags, ", "),
		})
	}
	return rows
}

func displayDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("2006-01-02 15:04")
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nextCurveWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevCurveWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLines(s string, width int) string {
	if width <= 0 || s == "" {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	return strings.Join(lines, "\n")
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}
