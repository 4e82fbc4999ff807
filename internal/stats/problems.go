package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

// RenderProblems prints a problem list with a check mark for every token in done.
func RenderProblems(w io.Writer, problems []model.Problem, done []string) error {
	doneSet := make(map[string]struct{}, len(done))
	for _, token := range done {
		doneSet[token] = struct{}{}
	}
	rows := make([][]string, 0, len(problems))
	for _, p := range problems {
		mark := " "
		if _, ok := doneSet[p.Token()]; ok {
			mark = "✓"
		}
		rating := "-"
		if p.Rating > 0 {
			rating = fmt.Sprintf("%d", p.Rating)
		}
		rows = append(rows, []string{
			mark,
			p.Token(),
			truncate(p.Name, 32),
			rating,
			truncate(strings.Join(p.Tags, ", "), 36),
			p.URL,
		})
	}
	return writeTable(w, []string{"", "Problem", "Name", "Rating", "Tags", "URL"}, rows, map[int]bool{3: true})
}

// RenderBacklog prints one row per upsolve batch, most recent first.
func RenderBacklog(w io.Writer, progress []upsolve.Progress) error {
	if len(progress) == 0 {
		_, err := fmt.Fprintln(w, "Upsolve backlog is empty.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Upsolve Backlog"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(progress))
	for i := len(progress) - 1; i >= 0; i-- {
		p := progress[i]
		rows = append(rows, []string{
			p.Batch.ID,
			displayDate(p.Batch.Date),
			fmt.Sprintf("%d/%d", p.Completed, p.Total),
			fmt.Sprintf("%d%%", p.Rate),
			truncate(strings.Join(p.Batch.Tags, ", "), 36),
		})
	}
	headers := []string{"Batch", "Date", "Done", "Rate", "Tags"}
	return writeTable(w, headers, rows, map[int]bool{2: true, 3: true})
}

// RenderWeakTags prints tags with the lowest solve rate.
func RenderWeakTags(w io.Writer, tags []TagRate) error {
	if len(tags) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "Needs Work"); err != nil {
		return err
	}
	rows := make([][]string, 0, len(tags))
	for _, tr := range tags {
		rows = append(rows, []string{
			tr.Tag,
			fmt.Sprintf("%d/%d", tr.Solved, tr.Total),
			fmt.Sprintf("%d%%", tr.Rate()),
			fmt.Sprintf("%d", tr.Sessions),
		})
	}
	return writeTable(w, []string{"Tag", "Solved", "Rate", "Sessions"}, rows, map[int]bool{1: true, 2: true, 3: true})
}
