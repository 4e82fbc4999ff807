package stats

import (
	"context"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/upsolve"
)

// RecordSource lists performance records.
type RecordSource interface {
	List(ctx context.Context) ([]model.PerformanceRecord, error)
}

// BacklogSource lists upsolve batches with their progress.
type BacklogSource interface {
	Summaries(ctx context.Context) ([]upsolve.Progress, error)
}

// ReportConfig limits what a report covers.
type ReportConfig struct {
	// Last keeps only the most recent records in Recent; 0 keeps all.
	Last int
	// CurveWindow is the moving-average window for curves.
	CurveWindow int
	// WeakMinSessions is the minimum number of sessions for a weak tag.
	WeakMinSessions int
}

// Report contains precomputed data for stats rendering.
type Report struct {
	Summary  Summary
	Records  []model.PerformanceRecord
	Recent   []model.PerformanceRecord
	Weak     []TagRate
	Backlog  []upsolve.Progress
	Pending  int
	Window   int
	Accuracy []float64
}

// BuildReport loads records and the backlog and derives everything the
// stats views show. The summary always covers every record.
func BuildReport(ctx context.Context, records RecordSource, backlog BacklogSource, cfg ReportConfig) (Report, error) {
	recs, err := records.List(ctx)
	if err != nil {
		return Report{}, err
	}
	progress, err := backlog.Summaries(ctx)
	if err != nil {
		return Report{}, err
	}

	recent := recs
	if cfg.Last > 0 && len(recent) > cfg.Last {
		recent = recent[len(recent)-cfg.Last:]
	}
	pending := 0
	for _, p := range progress {
		pending += p.Total - p.Completed
	}
	accs := make([]float64, len(recs))
	for i, r := range recs {
		accs[i] = SessionAccuracy(r)
	}
	minSessions := cfg.WeakMinSessions
	if minSessions <= 0 {
		minSessions = 2
	}

	return Report{
		Summary:  Summarize(recs),
		Records:  recs,
		Recent:   recent,
		Weak:     WeakTags(recs, minSessions, 3),
		Backlog:  progress,
		Pending:  pending,
		Window:   cfg.CurveWindow,
		Accuracy: MovingAverage(accs, cfg.CurveWindow),
	}, nil
}
