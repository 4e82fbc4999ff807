// Package codeforces talks to the judge's public read-only API.
package codeforces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/model"
)

const (
	// DefaultBaseURL is the public API root.
	DefaultBaseURL = "https://codeforces.com/api"
	// DefaultTimeout bounds a single API call; the full problem set is large.
	DefaultTimeout = 60 * time.Second

	problemURLFormat = "https://codeforces.com/contest/%d/problem/%s"
)

// ErrNotFound is returned when the judge does not know a handle.
var ErrNotFound = errors.New("not found")

// Client fetches problems and user profiles.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger attaches a logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// New returns a Client for the public API.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type envelope struct {
	Status  string          `json:"status"`
	Comment string          `json:"comment"`
	Result  json.RawMessage `json:"result"`
}

type apiProblem struct {
	ContestID int      `json:"contestId"`
	Index     string   `json:"index"`
	Name      string   `json:"name"`
	Rating    *int     `json:"rating"`
	Tags      []string `json:"tags"`
}

type apiUser struct {
	Handle string `json:"handle"`
	Rating *int   `json:"rating"`
	Rank   string `json:"rank"`
	Avatar string `json:"titlePhoto"`
}

// FetchProblems downloads the complete problem set.
func (c *Client) FetchProblems(ctx context.Context) ([]model.Problem, error) {
	started := time.Now()
	var result struct {
		Problems []apiProblem `json:"problems"`
	}
	if err := c.call(ctx, "problemset.problems", nil, &result); err != nil {
		return nil, err
	}

	problems := make([]model.Problem, 0, len(result.Problems))
	for _, p := range result.Problems {
		if p.ContestID == 0 || p.Index == "" {
			continue
		}
		rating := 0
		if p.Rating != nil {
			rating = *p.Rating
		}
		problems = append(problems, model.Problem{
			ContestID: p.ContestID,
			Index:     p.Index,
			Name:      p.Name,
			Rating:    rating,
			Tags:      append([]string(nil), p.Tags...),
			URL:       ProblemURL(p.ContestID, p.Index),
		})
	}
	c.log.Debug("fetched problem set",
		zap.Int("problems", len(problems)),
		zap.Duration("took", time.Since(started)),
	)
	return problems, nil
}

// FetchUser loads the public profile of handle.
func (c *Client) FetchUser(ctx context.Context, handle string) (model.UserProfile, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return model.UserProfile{}, fmt.Errorf("handle is required")
	}
	var users []apiUser
	if err := c.call(ctx, "user.info", url.Values{"handles": {handle}}, &users); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "not found") {
			return model.UserProfile{}, fmt.Errorf("handle %q: %w", handle, ErrNotFound)
		}
		return model.UserProfile{}, err
	}
	if len(users) == 0 {
		return model.UserProfile{}, fmt.Errorf("handle %q: %w", handle, ErrNotFound)
	}
	u := users[0]
	return model.UserProfile{
		Handle: u.Handle,
		Rating: u.Rating,
		Rank:   u.Rank,
		Avatar: u.Avatar,
	}, nil
}

// ProblemURL builds the public statement link for a problem.
func ProblemURL(contestID int, index string) string {
	return fmt.Sprintf(problemURLFormat, contestID, index)
}

func (c *Client) call(ctx context.Context, method string, query url.Values, dest any) error {
	endpoint := c.baseURL + "/" + method
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)
	if decodeErr == nil && env.Status != "" && env.Status != "OK" {
		return fmt.Errorf("%s failed: %s", method, env.Comment)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected %s status: %s", method, resp.Status)
	}
	if decodeErr != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, decodeErr)
	}
	if env.Status != "OK" {
		return fmt.Errorf("%s returned status %q", method, env.Status)
	}
	if err := json.Unmarshal(env.Result, dest); err != nil {
		return fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return nil
}
