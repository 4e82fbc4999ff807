package training

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// Tag selection limits.
const (
	MinTags = 1
	MaxTags = 6
)

const bandFloor = 800

var availableTags = []string{
	"implementation",
	"math",
	"greedy",
	"dp",
	"data structures",
	"brute force",
	"constructive algorithms",
	"graphs",
	"sortings",
	"binary search",
	"dfs and similar",
	"trees",
	"strings",
	"number theory",
	"combinatorics",
	"geometry",
	"bitmasks",
	"two pointers",
	"dsu",
	"shortest paths",
	"probabilities",
	"divide and conquer",
}

// AvailableTags returns the recognized tag catalog.
func AvailableTags() []string {
	out := make([]string, len(availableTags))
	copy(out, availableTags)
	return out
}

// IsKnownTag reports whether tag is in the recognized catalog.
func IsKnownTag(tag string) bool {
	for _, t := range availableTags {
		if t == tag {
			return true
		}
	}
	return false
}

// Band returns the problem rating range practiced at rating.
func Band(rating int) model.Band {
	lo := rating - 400
	if lo < bandFloor {
		lo = bandFloor
	}
	return model.Band{Min: lo, Max: rating + 200}
}

// RecommendedTags suggests tags for rating. The suggestion is never enforced.
func RecommendedTags(rating int) []string {
	switch {
	case rating < 1000:
		return []string{"implementation", "math", "brute force", "greedy"}
	case rating < 1400:
		return []string{"implementation", "math", "greedy", "sortings", "binary search"}
	case rating < 1800:
		return []string{"dp", "data structures", "graphs", "dfs and similar", "trees"}
	default:
		return []string{"dp", "graphs", "number theory", "combinatorics", "geometry"}
	}
}

// NormalizeTags trims, lowercases and dedupes tags, keeping first-seen order,
// then checks the count and that every tag is recognized.
func NormalizeTags(tags []string) ([]string, error) {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	if len(out) < MinTags {
		return nil, fmt.Errorf("%w: select at least %d tag", model.ErrValidation, MinTags)
	}
	if len(out) > MaxTags {
		return nil, fmt.Errorf("%w: select at most %d tags, got %d", model.ErrValidation, MaxTags, len(out))
	}
	for _, tag := range out {
		if !IsKnownTag(tag) {
			return nil, fmt.Errorf("%w: unknown tag %q", model.ErrValidation, tag)
		}
	}
	return out, nil
}

// Filter keeps rated problems inside band that share at least one tag with
// tags. Duplicate tokens are dropped.
func Filter(problems []model.Problem, tags []string, band model.Band) []model.Problem {
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	seen := make(map[string]struct{})
	var out []model.Problem
	for _, p := range problems {
		if p.Rating == 0 || !band.Contains(p.Rating) {
			continue
		}
		if !anyTag(p.Tags, want) {
			continue
		}
		tok := p.Token()
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		out = append(out, p)
	}
	return out
}

func anyTag(tags []string, want map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := want[t]; ok {
			return true
		}
	}
	return false
}
