package codeforces

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/model"
)

const catalogKey = "catalog.problems"

// ProblemFetcher is anything that can produce the full problem set.
type ProblemFetcher interface {
	FetchProblems(ctx context.Context) ([]model.Problem, error)
}

// KV is the subset of the store the cache needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

type cachedCatalog struct {
	FetchedAt int64           `json:"fetchedAt"`
	Problems  []model.Problem `json:"problems"`
}

// Cached serves the problem set from the store while it is younger than ttl.
type Cached struct {
	source ProblemFetcher
	kv     KV
	ttl    time.Duration
	now    func() time.Time
	log    *zap.Logger
}

// NewCached wraps source. A non-positive ttl disables caching.
func NewCached(source ProblemFetcher, kv KV, ttl time.Duration, log *zap.Logger) *Cached {
	if log == nil {
		log = zap.NewNop()
	}
	return &Cached{source: source, kv: kv, ttl: ttl, now: time.Now, log: log}
}

// FetchProblems returns a fresh cached copy or fetches and stores a new one.
func (c *Cached) FetchProblems(ctx context.Context) ([]model.Problem, error) {
	if c.ttl <= 0 {
		return c.source.FetchProblems(ctx)
	}
	var cached cachedCatalog
	ok, err := c.kv.Get(ctx, catalogKey, &cached)
	if err != nil {
		c.log.Warn("failed to read cached catalog", zap.Error(err))
	}
	if ok && err == nil {
		age := c.now().Sub(time.UnixMilli(cached.FetchedAt))
		if age >= 0 && age < c.ttl && len(cached.Problems) > 0 {
			c.log.Debug("serving cached catalog", zap.Duration("age", age), zap.Int("problems", len(cached.Problems)))
			return cached.Problems, nil
		}
	}

	problems, err := c.source.FetchProblems(ctx)
	if err != nil {
		return nil, err
	}
	entry := cachedCatalog{FetchedAt: c.now().UnixMilli(), Problems: problems}
	if err := c.kv.Set(ctx, catalogKey, entry); err != nil {
		c.log.Warn("failed to cache catalog", zap.Error(err))
	}
	return problems, nil
}
