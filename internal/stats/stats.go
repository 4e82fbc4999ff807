// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// TopTagLimit is the number of tags reported by Summarize.
const TopTagLimit = 5

// TagCount is the number of sessions that practiced a tag.
type TagCount struct {
	Tag   string
	Count int
}

// Summary aggregates every performance record.
type Summary struct {
	TotalSessions   int
	TotalProblems   int
	TotalSolved     int
	AverageAccuracy int
	TotalTime       time.Duration
	TopTags         []TagCount
}

// Summarize derives the aggregate statistics. It keeps no state; call it on
// every read.
func Summarize(records []model.PerformanceRecord) Summary {
	s := Summary{TotalSessions: len(records)}
	var totalMs int64
	for _, r := range records {
		s.TotalProblems += r.TotalProblems
		s.TotalSolved += r.SolvedProblems
		totalMs += r.SolveTimeMs
	}
	s.AverageAccuracy = Percent(s.TotalSolved, s.TotalProblems)
	s.TotalTime = time.Duration(totalMs) * time.Millisecond
	s.TopTags = TopTags(records, TopTagLimit)
	return s
}

// Percent returns round(100*part/whole), or 0 when whole is zero.
func Percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(part) / float64(whole)))
}

// SessionAccuracy returns the solved share of one record in percent.
func SessionAccuracy(r model.PerformanceRecord) float64 {
	if r.TotalProblems <= 0 {
		return 0
	}
	return 100 * float64(r.SolvedProblems) / float64(r.TotalProblems)
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// FormatDuration renders d as "1h 05m" or "12m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh %02dm", h, m)
}

// RenderSummary prints the overview block.
func RenderSummary(w io.Writer, s Summary) error {
	if s.TotalSessions == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", s.TotalSessions),
		fmt.Sprintf("Problems: %d", s.TotalProblems),
		fmt.Sprintf("Solved: %d", s.TotalSolved),
		fmt.Sprintf("Avg Accuracy: %d%%", s.AverageAccuracy),
		fmt.Sprintf("Training Time: %s", FormatDuration(s.TotalTime)),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderTopTags prints the most practiced tags.
func RenderTopTags(w io.Writer, tags []TagCount) error {
	if len(tags) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Most Practiced Tags"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(tags))
	for _, tc := range tags {
		rows = append(rows, []string{tc.Tag, fmt.Sprintf("%d", tc.Count)})
	}
	return writeTable(w, []string{"Tag", "Sessions"}, rows, map[int]bool{1: true})
}

// RenderHistory prints one row per record, most recent first.
func RenderHistory(w io.Writer, records []model.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Recent Sessions"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		rows = append(rows, []string{
			displayDate(r.Date),
			fmt.Sprintf("%d/%d", r.SolvedProblems, r.TotalProblems),
			fmt.Sprintf("%.0f%%", SessionAccuracy(r)),
			FormatDuration(time.Duration(r.SolveTimeMs) * time.Millisecond),
			fmt.Sprintf("%d", r.UserRating),
			truncate(strings.Join(r.Tags, ", "), 40),
		})
	}
	headers := []string{"Date", "Solved", "Accuracy", "Time", "Rating", "Tags"}
	return writeTable(w, headers, rows, map[int]bool{1: true, 2: true, 3: true, 4: true})
}

// RenderCurves prints the accuracy and solved-count curves.
func RenderCurves(w io.Writer, records []model.PerformanceRecord, window int) error {
	return RenderCurvesWithSize(w, records, window, 0, 8, false)
}

// RenderCurvesWithSize prints the curves sized to a given total width.
func RenderCurvesWithSize(w io.Writer, records []model.PerformanceRecord, window, totalWidth, height int, useColor bool) error {
	if len(records) < 2 {
		return nil
	}
	accs := make([]float64, len(records))
	solved := make([]float64, len(records))
	for i, r := range records {
		accs[i] = SessionAccuracy(r)
		solved[i] = float64(r.SolvedProblems)
	}
	width := 0
	if totalWidth > 0 {
		width = ChartWidthFor(totalWidth)
	}
	return Chart(w, "Progress", []Series{
		{Name: "Accuracy", Values: MovingAverage(accs, window)},
		{Name: "Solved", Values: MovingAverage(solved, window)},
	}, width, height, useColor)
}

func displayDate(iso string) string {
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return iso
	}
	return t.Local().Format("2006-01-02 15:04")
}

func minMax(values []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return 0, 0
	}
	return lo, hi
}
