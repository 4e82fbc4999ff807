// Package history stores the performance record of every finished session.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/verte-zerg/cfdrill/internal/model"
)

const recordsKey = "training.performance"

// KV is the persistence the log needs.
type KV interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	Remove(ctx context.Context, key string) error
}

// Log is an append-only list of performance records.
type Log struct {
	mu  sync.Mutex
	kv  KV
	log *zap.Logger
}

// New returns a Log.
func New(kv KV, log *zap.Logger) *Log {
	if log == nil {
		log = zap.NewNop()
	}
	return &Log{kv: kv, log: log}
}

// List returns all records, oldest first.
func (l *Log) List(ctx context.Context) ([]model.PerformanceRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

// Append adds rec unless a record for the same session is already stored.
func (l *Log) Append(ctx context.Context, rec model.PerformanceRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	records, err := l.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.SessionID == rec.SessionID {
			l.log.Debug("performance record already stored", zap.String("session", rec.SessionID))
			return nil
		}
	}
	records = append(records, rec)
	if err := l.kv.Set(ctx, recordsKey, records); err != nil {
		return fmt.Errorf("failed to save performance records: %w", err)
	}
	l.log.Info("performance recorded",
		zap.String("session", rec.SessionID),
		zap.Int("solved", rec.SolvedProblems),
		zap.Int("total", rec.TotalProblems),
	)
	return nil
}

// Clear drops every record.
func (l *Log) Clear(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.kv.Remove(ctx, recordsKey); err != nil {
		return fmt.Errorf("failed to clear performance records: %w", err)
	}
	l.log.Info("performance history cleared")
	return nil
}

// Export writes all records to w as indented JSON.
func (l *Log) Export(ctx context.Context, w io.Writer) error {
	records, err := l.List(ctx)
	if err != nil {
		return err
	}
	if records == nil {
		records = []model.PerformanceRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to export history: %w", err)
	}
	return nil
}

func (l *Log) load(ctx context.Context) ([]model.PerformanceRecord, error) {
	var records []model.PerformanceRecord
	if _, err := l.kv.Get(ctx, recordsKey, &records); err != nil {
		return nil, fmt.Errorf("failed to load performance records: %w", err)
	}
	return records, nil
}
