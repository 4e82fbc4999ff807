// Package model defines shared data structures.
package model

import (
	"fmt"
	"time"
)

// DefaultRating is assumed for users without a rating.
const DefaultRating = 1200

// UserProfile is the bound judge account.
type UserProfile struct {
	Handle string `json:"handle"`
	Rating *int   `json:"rating,omitempty"`
	Rank   string `json:"rank,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Problem is a single catalog entry. Rating 0 means the judge has not rated it.
type Problem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    int      `json:"rating"`
	Tags      []string `json:"tags"`
	URL       string   `json:"url"`
}

// Token returns the identifier used for the problem inside sessions and batches.
func (p Problem) Token() string {
	return fmt.Sprintf("%d%s", p.ContestID, p.Index)
}

// TrainingSession is the single active practice attempt.
type TrainingSession struct {
	ID             string    `json:"id"`
	StartTime      int64     `json:"startTime"`
	DurationMs     int64     `json:"duration"`
	Problems       []Problem `json:"problems"`
	SolvedProblems []string  `json:"solvedProblems"`
	SelectedTags   []string  `json:"selectedTags"`
	UserRating     int       `json:"userRating"`
}

// StartedAt returns the session start as a time.
func (s TrainingSession) StartedAt() time.Time {
	return time.UnixMilli(s.StartTime)
}

// Duration returns the configured session length.
func (s TrainingSession) Duration() time.Duration {
	return time.Duration(s.DurationMs) * time.Millisecond
}

// Remaining returns the time left at now, never negative.
func (s TrainingSession) Remaining(now time.Time) time.Duration {
	left := s.Duration() - now.Sub(s.StartedAt())
	if left < 0 {
		return 0
	}
	return left
}

// HasProblem reports whether token belongs to the session.
func (s TrainingSession) HasProblem(token string) bool {
	for _, p := range s.Problems {
		if p.Token() == token {
			return true
		}
	}
	return false
}

// IsSolved reports whether token is marked solved.
func (s TrainingSession) IsSolved(token string) bool {
	return contains(s.SolvedProblems, token)
}

// Unsolved returns the problems not marked solved, in session order.
func (s TrainingSession) Unsolved() []Problem {
	out := make([]Problem, 0, len(s.Problems))
	for _, p := range s.Problems {
		if !s.IsSolved(p.Token()) {
			out = append(out, p)
		}
	}
	return out
}

// UpsolveBatch holds the problems a finished session left unsolved.
type UpsolveBatch struct {
	ID                string    `json:"id"`
	Date              string    `json:"date"`
	Problems          []Problem `json:"problems"`
	Tags              []string  `json:"tags"`
	CompletedProblems []string  `json:"completedProblems"`
}

// HasProblem reports whether token belongs to the batch.
func (b UpsolveBatch) HasProblem(token string) bool {
	for _, p := range b.Problems {
		if p.Token() == token {
			return true
		}
	}
	return false
}

// IsCompleted reports whether token is marked completed.
func (b UpsolveBatch) IsCompleted(token string) bool {
	return contains(b.CompletedProblems, token)
}

// PerformanceRecord summarizes one finished session.
type PerformanceRecord struct {
	SessionID      string   `json:"sessionId"`
	Date           string   `json:"date"`
	TotalProblems  int      `json:"totalProblems"`
	SolvedProblems int      `json:"solvedProblems"`
	Tags           []string `json:"tags"`
	UserRating     int      `json:"userRating"`
	SolveTimeMs    int64    `json:"solveTime"`
}

// EndReason says why a session was terminated.
type EndReason string

// Termination reasons.
const (
	EndManual  EndReason = "manual"
	EndExpired EndReason = "expired"
)

// TerminationSummary is returned when a session ends. The zero value means
// there was nothing to end.
type TerminationSummary struct {
	SessionID              string
	Reason                 EndReason
	SolvedCount            int
	TotalCount             int
	UnsolvedMovedToUpsolve bool
}

// Empty reports whether no session was terminated.
func (s TerminationSummary) Empty() bool {
	return s.SessionID == ""
}

// SessionState is the coarse engine state.
type SessionState string

// Engine states.
const (
	StateIdle   SessionState = "idle"
	StateActive SessionState = "active"
)

// Snapshot is a read-only view of the engine for display.
type Snapshot struct {
	State      SessionState
	SessionID  string
	StartedAt  time.Time
	Remaining  time.Duration
	Problems   []Problem
	Solved     []string
	Tags       []string
	UserRating int
}

// Band is an inclusive problem rating range.
type Band struct {
	Min int
	Max int
}

// Contains reports whether rating falls inside the band.
func (b Band) Contains(rating int) bool {
	return rating >= b.Min && rating <= b.Max
}

func (b Band) String() string {
	return fmt.Sprintf("%d-%d", b.Min, b.Max)
}

// Config defines training settings.
type Config struct {
	Duration    time.Duration
	MaxProblems int
	MinProblems int
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
