// Package generator picks random problem subsets.
package generator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// Generator draws problems without replacement.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns a Generator seeded with the current time.
func New() *Generator {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSeed returns a deterministic Generator.
func NewWithSeed(seed int64) *Generator {
	return NewWithSource(rand.NewSource(seed))
}

// NewWithSource returns a Generator backed by src.
func NewWithSource(src rand.Source) *Generator {
	return &Generator{rnd: rand.New(src)}
}

// Pick shuffles a copy of problems and returns the first n. Fewer are
// returned when not enough are available. The input is not modified.
func (g *Generator) Pick(problems []model.Problem, n int) []model.Problem {
	if n <= 0 || len(problems) == 0 {
		return nil
	}
	shuffled := make([]model.Problem, len(problems))
	copy(shuffled, problems)

	g.mu.Lock()
	g.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	g.mu.Unlock()

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n:n]
}
