package upsolve

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/store"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "cfdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return New(st, nil)
}

func batch(id string, tokens ...string) model.UpsolveBatch {
	b := model.UpsolveBatch{ID: id, Date: "2024-01-01T00:00:00.000Z", Tags: []string{"dp"}}
	for i, tok := range tokens {
		b.Problems = append(b.Problems, model.Problem{ContestID: 100 + i, Index: tok})
	}
	return b
}

func TestListEmpty(t *testing.T) {
	m := newTestManager(t)
	batches, err := m.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}

func TestAppendKeepsInsertionOrderAndIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	for _, id := range []string{"s1", "s2", "s1"} {
		if err := m.Append(ctx, batch(id, "A")); err != nil {
			t.Fatalf("Append %s: %v", id, err)
		}
	}
	batches, err := m.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(batches) != 2 || batches[0].ID != "s1" || batches[1].ID != "s2" {
		t.Fatalf("unexpected batches: %+v", batches)
	}
	if batches[0].CompletedProblems == nil {
		t.Fatalf("expected empty completed list, got nil")
	}
}

func TestToggleCompleted(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	b := batch("s1", "A", "B")
	if err := m.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	tokA := b.Problems[0].Token()

	if err := m.ToggleCompleted(ctx, "s1", tokA); err != nil {
		t.Fatalf("ToggleCompleted: %v", err)
	}
	got, ok, err := m.Get(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if !got.IsCompleted(tokA) || CompletionRate(got) != 50 {
		t.Fatalf("expected %s completed at 50%%, got %+v rate=%d", tokA, got, CompletionRate(got))
	}

	if err := m.ToggleCompleted(ctx, "s1", tokA); err != nil {
		t.Fatalf("second ToggleCompleted: %v", err)
	}
	got, _, _ = m.Get(ctx, "s1")
	if got.IsCompleted(tokA) || CompletionRate(got) != 0 {
		t.Fatalf("expected toggle pair to restore state, got %+v", got)
	}
}

func TestToggleCompletedUnknownProblem(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	if err := m.Append(ctx, batch("s1", "A")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	err := m.ToggleCompleted(ctx, "s1", "999Z")
	if !errors.Is(err, model.ErrUnknownProblem) {
		t.Fatalf("expected ErrUnknownProblem, got %v", err)
	}
	got, _, _ := m.Get(ctx, "s1")
	if len(got.CompletedProblems) != 0 {
		t.Fatalf("expected no mutation, got %v", got.CompletedProblems)
	}
}

func TestToggleCompletedUnknownBatchIsNoop(t *testing.T) {
	m := newTestManager(t)
	if err := m.ToggleCompleted(context.Background(), "missing", "100A"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	for _, id := range []string{"s1", "s2"} {
		if err := m.Append(ctx, batch(id, "A")); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := m.Delete(ctx, "s1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := m.Delete(ctx, "s1"); err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	batches, _ := m.List(ctx)
	if len(batches) != 1 || batches[0].ID != "s2" {
		t.Fatalf("unexpected batches after delete: %+v", batches)
	}
}

func TestCompletionRate(t *testing.T) {
	if got := CompletionRate(model.UpsolveBatch{}); got != 0 {
		t.Fatalf("expected 0 for empty batch, got %d", got)
	}
	b := batch("s", "A", "B", "C")
	b.CompletedProblems = []string{b.Problems[0].Token()}
	if got := CompletionRate(b); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	b.CompletedProblems = append(b.CompletedProblems, b.Problems[1].Token())
	if got := CompletionRate(b); got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
}

func TestSummaries(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()
	b := batch("s1", "A", "B", "C", "D")
	if err := m.Append(ctx, b); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := m.ToggleCompleted(ctx, "s1", b.Problems[2].Token()); err != nil {
		t.Fatalf("ToggleCompleted: %v", err)
	}
	progress, err := m.Summaries(ctx)
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(progress) != 1 || progress[0].Completed != 1 || progress[0].Total != 4 || progress[0].Rate != 25 {
		t.Fatalf("unexpected progress: %+v", progress)
	}
}
