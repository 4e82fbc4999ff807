// Package training runs timed practice sessions over a random problem set.
package training

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/generator"
	"github.com/verte-zerg/cfdrill/internal/model"
)

const activeKey = "session.active"

const dateLayout = "2006-01-02T15:04:05.000Z"

// Store persists the active session.
type Store interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Catalog returns the full problem catalog.
type Catalog interface {
	FetchProblems(ctx context.Context) ([]model.Problem, error)
}

// Backlog receives the unsolved problems of a finished session.
type Backlog interface {
	Append(ctx context.Context, batch model.UpsolveBatch) error
}

// History receives the performance record of a finished session.
type History interface {
	Append(ctx context.Context, rec model.PerformanceRecord) error
}

// Picker chooses up to n problems from a candidate list.
type Picker interface {
	Pick(problems []model.Problem, n int) []model.Problem
}

// DefaultConfig returns the standard session settings.
func DefaultConfig() model.Config {
	return model.Config{
		Duration:    2 * time.Hour,
		MaxProblems: 8,
		MinProblems: 3,
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithPicker replaces the random problem picker.
func WithPicker(p Picker) Option {
	return func(e *Engine) {
		e.picker = p
	}
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// WithConfig overrides the session settings. Zero fields keep their defaults.
func WithConfig(cfg model.Config) Option {
	return func(e *Engine) {
		if cfg.Duration > 0 {
			e.cfg.Duration = cfg.Duration
		}
		if cfg.MaxProblems > 0 {
			e.cfg.MaxProblems = cfg.MaxProblems
		}
		if cfg.MinProblems > 0 {
			e.cfg.MinProblems = cfg.MinProblems
		}
	}
}

// Engine owns the single active session. All mutations are serialized; the
// catalog fetch runs without holding the lock.
type Engine struct {
	mu      sync.Mutex
	store   Store
	catalog Catalog
	backlog Backlog
	history History
	picker  Picker
	now     func() time.Time
	cfg     model.Config
	log     *zap.Logger

	active *model.TrainingSession
	last   model.TerminationSummary
}

// New returns an Engine. Call Load before use to pick up a stored session.
func New(store Store, catalog Catalog, backlog Backlog, history History, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		catalog: catalog,
		backlog: backlog,
		history: history,
		picker:  generator.New(),
		now:     time.Now,
		cfg:     DefaultConfig(),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Config returns the session settings in use.
func (e *Engine) Config() model.Config {
	return e.cfg
}

// Load reads the stored session. A session that expired while the
// application was closed is terminated as expired and its summary returned.
func (e *Engine) Load(ctx context.Context) (model.TerminationSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var s model.TrainingSession
	ok, err := e.store.Get(ctx, activeKey, &s)
	if err != nil {
		return model.TerminationSummary{}, fmt.Errorf("failed to load active session: %w", err)
	}
	if !ok || s.ID == "" {
		e.active = nil
		return model.TerminationSummary{}, nil
	}
	e.active = &s
	now := e.now()
	if s.Remaining(now) > 0 {
		e.log.Debug("active session loaded", zap.String("session", s.ID), zap.Duration("remaining", s.Remaining(now)))
		return model.TerminationSummary{}, nil
	}
	e.log.Info("reconciling expired session", zap.String("session", s.ID))
	return e.endLocked(ctx, model.EndExpired, now)
}

// Generate starts a new session over tags at rating. Tags are validated
// before the catalog is fetched; nothing is persisted unless enough problems
// match.
func (e *Engine) Generate(ctx context.Context, tags []string, rating int) (model.TrainingSession, error) {
	tags, err := NormalizeTags(tags)
	if err != nil {
		return model.TrainingSession{}, err
	}

	e.mu.Lock()
	if err := e.ensureIdleLocked(ctx); err != nil {
		e.mu.Unlock()
		return model.TrainingSession{}, err
	}
	e.mu.Unlock()

	band := Band(rating)
	started := time.Now()
	problems, err := e.catalog.FetchProblems(ctx)
	if err != nil {
		e.log.Warn("catalog fetch failed", zap.Error(err))
		return model.TrainingSession{}, fmt.Errorf("%w: %v", model.ErrCatalogUnavailable, err)
	}
	matches := Filter(problems, tags, band)
	e.log.Info("catalog filtered",
		zap.Strings("tags", tags),
		zap.Stringer("band", band),
		zap.Int("catalog", len(problems)),
		zap.Int("matches", len(matches)),
		zap.Duration("elapsed", time.Since(started)),
	)
	if len(matches) < e.cfg.MinProblems {
		return model.TrainingSession{}, &InsufficientProblemsError{
			MinRating: band.Min,
			MaxRating: band.Max,
			Tags:      tags,
			Found:     len(matches),
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.ensureIdleLocked(ctx); err != nil {
		return model.TrainingSession{}, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return model.TrainingSession{}, fmt.Errorf("failed to create session id: %w", err)
	}
	now := e.now()
	s := model.TrainingSession{
		ID:             id.String(),
		StartTime:      now.UnixMilli(),
		DurationMs:     e.cfg.Duration.Milliseconds(),
		Problems:       e.picker.Pick(matches, e.cfg.MaxProblems),
		SolvedProblems: []string{},
		SelectedTags:   tags,
		UserRating:     rating,
	}
	if err := e.store.Set(ctx, activeKey, s); err != nil {
		return model.TrainingSession{}, fmt.Errorf("failed to save session: %w", err)
	}
	e.active = &s
	e.log.Info("session started", zap.String("session", s.ID), zap.Int("problems", len(s.Problems)))
	return cloneSession(s), nil
}

// ToggleSolved flips the solved mark of token and persists the session. A
// session whose time is up is terminated as expired instead and the toggle
// fails with model.ErrNoActiveSession.
func (e *Engine) ToggleSolved(ctx context.Context, token string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return model.ErrNoActiveSession
	}
	if now := e.now(); e.active.Remaining(now) <= 0 {
		if _, err := e.endLocked(ctx, model.EndExpired, now); err != nil {
			return err
		}
		return model.ErrNoActiveSession
	}
	if !e.active.HasProblem(token) {
		return fmt.Errorf("%w: %s is not in the active session", model.ErrUnknownProblem, token)
	}
	next := cloneSession(*e.active)
	next.SolvedProblems = toggle(next.SolvedProblems, token)
	if err := e.store.Set(ctx, activeKey, next); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	e.active = &next
	e.log.Debug("problem toggled", zap.String("problem", token), zap.Bool("solved", next.IsSolved(token)))
	return nil
}

// Tick returns the time left at now. When it reaches zero the session is
// terminated as expired; later ticks find no session and return zero.
func (e *Engine) Tick(ctx context.Context, now time.Time) (time.Duration, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == nil {
		return 0, nil
	}
	remaining := e.active.Remaining(now)
	if remaining > 0 {
		return remaining, nil
	}
	if _, err := e.endLocked(ctx, model.EndExpired, now); err != nil {
		return 0, err
	}
	return 0, nil
}

// End terminates the active session. Without one it returns an empty summary.
func (e *Engine) End(ctx context.Context, reason model.EndReason) (model.TerminationSummary, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endLocked(ctx, reason, e.now())
}

// Active returns a copy of the active session.
func (e *Engine) Active() (model.TrainingSession, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil {
		return model.TrainingSession{}, false
	}
	return cloneSession(*e.active), true
}

// Snapshot describes the engine at now for display. A session whose time is
// up reads as idle; Tick terminates it.
func (e *Engine) Snapshot(now time.Time) model.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.active == nil || e.active.Remaining(now) <= 0 {
		return model.Snapshot{State: model.StateIdle}
	}
	s := cloneSession(*e.active)
	return model.Snapshot{
		State:      model.StateActive,
		SessionID:  s.ID,
		StartedAt:  s.StartedAt(),
		Remaining:  s.Remaining(now),
		Problems:   s.Problems,
		Solved:     s.SolvedProblems,
		Tags:       s.SelectedTags,
		UserRating: s.UserRating,
	}
}

// LastSummary returns the summary of the most recent termination.
func (e *Engine) LastSummary() model.TerminationSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.last
}

// ensureIdleLocked rejects generation while a live session exists. A stored
// session whose time is up is terminated first.
func (e *Engine) ensureIdleLocked(ctx context.Context) error {
	if e.active == nil {
		return nil
	}
	now := e.now()
	if e.active.Remaining(now) > 0 {
		return model.ErrSessionAlreadyActive
	}
	_, err := e.endLocked(ctx, model.EndExpired, now)
	return err
}

func (e *Engine) endLocked(ctx context.Context, reason model.EndReason, now time.Time) (model.TerminationSummary, error) {
	if e.active == nil {
		return model.TerminationSummary{}, nil
	}
	s := *e.active
	date := s.StartedAt().UTC().Format(dateLayout)

	unsolved := s.Unsolved()
	moved := len(unsolved) > 0
	if moved {
		batch := model.UpsolveBatch{
			ID:                s.ID,
			Date:              date,
			Problems:          unsolved,
			Tags:              append([]string(nil), s.SelectedTags...),
			CompletedProblems: []string{},
		}
		if err := e.backlog.Append(ctx, batch); err != nil {
			e.log.Error("failed to append upsolve batch", zap.String("session", s.ID), zap.Error(err))
			return model.TerminationSummary{}, fmt.Errorf("failed to move unsolved problems: %w", err)
		}
	}

	elapsed := now.Sub(s.StartedAt())
	if elapsed > s.Duration() {
		elapsed = s.Duration()
	}
	if elapsed < 0 {
		elapsed = 0
	}
	solved := len(s.Problems) - len(unsolved)
	rec := model.PerformanceRecord{
		SessionID:      s.ID,
		Date:           date,
		TotalProblems:  len(s.Problems),
		SolvedProblems: solved,
		Tags:           append([]string(nil), s.SelectedTags...),
		UserRating:     s.UserRating,
		SolveTimeMs:    elapsed.Milliseconds(),
	}
	if err := e.history.Append(ctx, rec); err != nil {
		e.log.Error("failed to append performance record", zap.String("session", s.ID), zap.Error(err))
		return model.TerminationSummary{}, fmt.Errorf("failed to record performance: %w", err)
	}

	if err := e.store.Remove(ctx, activeKey); err != nil {
		e.log.Error("failed to clear active session", zap.String("session", s.ID), zap.Error(err))
		return model.TerminationSummary{}, fmt.Errorf("failed to clear session: %w", err)
	}
	e.active = nil

	summary := model.TerminationSummary{
		SessionID:              s.ID,
		Reason:                 reason,
		SolvedCount:            solved,
		TotalCount:             len(s.Problems),
		UnsolvedMovedToUpsolve: moved,
	}
	e.last = summary
	e.log.Info("session ended",
		zap.String("session", s.ID),
		zap.String("reason", string(reason)),
		zap.Int("solved", solved),
		zap.Int("total", len(s.Problems)),
		zap.Bool("moved", moved),
	)
	return summary, nil
}

func cloneSession(s model.TrainingSession) model.TrainingSession {
	s.Problems = append([]model.Problem(nil), s.Problems...)
	s.SolvedProblems = append([]string{}, s.SolvedProblems...)
	s.SelectedTags = append([]string(nil), s.SelectedTags...)
	return s
}

func toggle(items []string, v string) []string {
	out := make([]string, 0, len(items)+1)
	found := false
	for _, item := range items {
		if item == v {
			found = true
			continue
		}
		out = append(out, item)
	}
	if !found {
		out = append(out, v)
	}
	return out
}
