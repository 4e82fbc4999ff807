package stats

import (
	"sort"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// TagRate is the solve rate over every session that practiced a tag.
type TagRate struct {
	Tag      string
	Solved   int
	Total    int
	Sessions int
}

// Rate returns the solved share in percent.
func (r TagRate) Rate() int {
	return Percent(r.Solved, r.Total)
}

// WeakTags returns up to top tags with the lowest solve rate, ignoring tags
// practiced in fewer than minSessions sessions.
func WeakTags(records []model.PerformanceRecord, minSessions, top int) []TagRate {
	byTag := map[string]*TagRate{}
	var order []string
	for _, r := range records {
		for _, tag := range r.Tags {
			tr, ok := byTag[tag]
			if !ok {
				tr = &TagRate{Tag: tag}
				byTag[tag] = tr
				order = append(order, tag)
			}
			tr.Solved += r.SolvedProblems
			tr.Total += r.TotalProblems
			tr.Sessions++
		}
	}
	candidates := make([]TagRate, 0, len(order))
	for _, tag := range order {
		if tr := byTag[tag]; tr.Sessions >= minSessions && tr.Total > 0 {
			candidates = append(candidates, *tr)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Rate() < candidates[j].Rate()
	})
	if top <= 0 || top > len(candidates) {
		top = len(candidates)
	}
	return candidates[:top]
}
