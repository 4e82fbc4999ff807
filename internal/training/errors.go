package training

import (
	"fmt"
	"strings"

	"github.com/verte-zerg/cfdrill/internal/model"
)

// InsufficientProblemsError reports a filter that matched too few problems.
type InsufficientProblemsError struct {
	MinRating int
	MaxRating int
	Tags      []string
	Found     int
}

func (e *InsufficientProblemsError) Error() string {
	return fmt.Sprintf("only found %d problems for tags [%s] and rating range (%d-%d)",
		e.Found, strings.Join(e.Tags, ", "), e.MinRating, e.MaxRating)
}

// Unwrap lets errors.Is match model.ErrInsufficientProblems.
func (e *InsufficientProblemsError) Unwrap() error {
	return model.ErrInsufficientProblems
}
