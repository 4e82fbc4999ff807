package stats

import (
	"sort"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// TopTags counts how many records include each tag and returns the n most
// frequent. Ties keep first-seen order.
func TopTags(records []model.PerformanceRecord, n int) []TagCount {
	if n <= 0 || len(records) == 0 {
		return nil
	}
	counts := map[string]int{}
	var order []string
	for _, r := range records {
		for _, tag := range r.Tags {
			if _, ok := counts[tag]; !ok {
				order = append(order, tag)
			}
			counts[tag]++
		}
	}
	items := make([]TagCount, 0, len(order))
	for _, tag := range order {
		items = append(items, TagCount{Tag: tag, Count: counts[tag]})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Count > items[j].Count
	})
	if n > len(items) {
		n = len(items)
	}
	return items[:n]
}
