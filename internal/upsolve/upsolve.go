// Package upsolve manages the backlog of problems left unsolved by finished
// training sessions.
package upsolve

import (
	"context"
	"fmt"
	"math"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/model"
)

const batchesKey = "upsolve.batches"

// KV is the persistence the manager needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Manager owns the durable list of upsolve batches. Every mutation reads the
// whole collection, changes it in memory and writes it back.
type Manager struct {
	mu  sync.Mutex
	kv  KV
	log *zap.Logger
}

// Progress pairs a batch with its completion counters.
type Progress struct {
	Batch     model.UpsolveBatch
	Completed int
	Total     int
	Rate      int
}

// New returns a Manager.
func New(kv KV, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{kv: kv, log: log}
}

// List returns all batches, oldest first.
func (m *Manager) List(ctx context.Context) ([]model.UpsolveBatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(ctx)
}

// Get returns the batch with id.
func (m *Manager) Get(ctx context.Context, id string) (model.UpsolveBatch, bool, error) {
	batches, err := m.List(ctx)
	if err != nil {
		return model.UpsolveBatch{}, false, err
	}
	for _, b := range batches {
		if b.ID == id {
			return b, true, nil
		}
	}
	return model.UpsolveBatch{}, false, nil
}

// Summaries returns every batch with its completion counters, oldest first.
func (m *Manager) Summaries(ctx context.Context) ([]Progress, error) {
	batches, err := m.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Progress, 0, len(batches))
	for _, b := range batches {
		out = append(out, Progress{
			Batch:     b,
			Completed: len(b.CompletedProblems),
			Total:     len(b.Problems),
			Rate:      CompletionRate(b),
		})
	}
	return out, nil
}

// Append adds batch. A batch whose id is already stored is left untouched,
// so retrying a termination never duplicates it.
func (m *Manager) Append(ctx context.Context, batch model.UpsolveBatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batches, err := m.load(ctx)
	if err != nil {
		return err
	}
	for _, b := range batches {
		if b.ID == batch.ID {
			m.log.Debug("upsolve batch already stored", zap.String("batch", batch.ID))
			return nil
		}
	}
	if batch.CompletedProblems == nil {
		batch.CompletedProblems = []string{}
	}
	batches = append(batches, batch)
	if err := m.save(ctx, batches); err != nil {
		return err
	}
	m.log.Info("upsolve batch added", zap.String("batch", batch.ID), zap.Int("problems", len(batch.Problems)))
	return nil
}

// ToggleCompleted flips the completion mark of token in batch id. Unknown
// batches are ignored; tokens outside the batch are rejected.
func (m *Manager) ToggleCompleted(ctx context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batches, err := m.load(ctx)
	if err != nil {
		return err
	}
	idx := -1
	for i, b := range batches {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	batch := batches[idx]
	if !batch.HasProblem(token) {
		return fmt.Errorf("%w: %s is not in batch %s", model.ErrUnknownProblem, token, id)
	}
	batch.CompletedProblems = toggle(batch.CompletedProblems, token)
	batches[idx] = batch
	if err := m.save(ctx, batches); err != nil {
		return err
	}
	m.log.Debug("upsolve problem toggled",
		zap.String("batch", id),
		zap.String("problem", token),
		zap.Bool("completed", batch.IsCompleted(token)),
	)
	return nil
}

// Delete removes batch id. Deleting an unknown id is a no-op.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	batches, err := m.load(ctx)
	if err != nil {
		return err
	}
	kept := batches[:0]
	removed := false
	for _, b := range batches {
		if b.ID == id {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	if !removed {
		return nil
	}
	if err := m.save(ctx, kept); err != nil {
		return err
	}
	m.log.Info("upsolve batch deleted", zap.String("batch", id))
	return nil
}

// CompletionRate returns the completed share of batch as a rounded percentage.
func CompletionRate(batch model.UpsolveBatch) int {
	if len(batch.Problems) == 0 {
		return 0
	}
	return int(math.Round(100 * float64(len(batch.CompletedProblems)) / float64(len(batch.Problems))))
}

func (m *Manager) load(ctx context.Context) ([]model.UpsolveBatch, error) {
	var batches []model.UpsolveBatch
	if _, err := m.kv.Get(ctx, batchesKey, &batches); err != nil {
		return nil, fmt.Errorf("failed to load upsolve batches: %w", err)
	}
	return batches, nil
}

func (m *Manager) save(ctx context.Context, batches []model.UpsolveBatch) error {
	if batches == nil {
		batches = []model.UpsolveBatch{}
	}
	if err := m.kv.Set(ctx, batchesKey, batches); err != nil {
		return fmt.Errorf("failed to save upsolve batches: %w", err)
	}
	return nil
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
