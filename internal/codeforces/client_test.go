package codeforces

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/cfdrill/internal/model"
	"github.com/verte-zerg/cfdrill/internal/store"
)

const problemsPayload = `{
  "status": "OK",
  "result": {
    "problems": [
      {"contestId": 1800, "index": "A", "name": "Is It a Cat?", "type": "PROGRAMMING", "rating": 800, "tags": ["implementation", "strings"]},
      {"contestId": 1801, "index": "B2", "name": "Unrated One", "type": "PROGRAMMING", "tags": ["dp"]},
      {"index": "Z", "name": "No Contest", "tags": []}
    ],
    "problemStatistics": []
  }
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(WithBaseURL(srv.URL+"/"), WithTimeout(5*time.Second))
}

func TestFetchProblems(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/problemset.problems" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(problemsPayload))
	})

	problems, err := c.FetchProblems(context.Background())
	if err != nil {
		t.Fatalf("FetchProblems: %v", err)
	}
	if len(problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(problems))
	}
	first := problems[0]
	if first.Token() != "1800A" || first.Rating != 800 || len(first.Tags) != 2 {
		t.Fatalf("unexpected first problem: %+v", first)
	}
	if first.URL != "https://codeforces.com/contest/1800/problem/A" {
		t.Fatalf("unexpected url: %s", first.URL)
	}
	if problems[1].Rating != 0 {
		t.Fatalf("expected unrated problem to keep rating 0, got %d", problems[1].Rating)
	}
}

func TestFetchProblemsFailedStatus(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"Call limit exceeded"}`))
	})
	if _, err := c.FetchProblems(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFetchProblemsNonJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>bad gateway</html>"))
	})
	if _, err := c.FetchProblems(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFetchUser(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("handles"); got != "tourist" {
			t.Errorf("unexpected handles param %q", got)
		}
		_, _ = w.Write([]byte(`{"status":"OK","result":[{"handle":"tourist","rating":3500,"rank":"legendary grandmaster","titlePhoto":"https://example.com/p.jpg"}]}`))
	})
	u, err := c.FetchUser(context.Background(), " tourist ")
	if err != nil {
		t.Fatalf("FetchUser: %v", err)
	}
	if u.Handle != "tourist" || u.Rating == nil || *u.Rating != 3500 || u.Rank == "" {
		t.Fatalf("unexpected profile: %+v", u)
	}
}

func TestFetchUserNotFound(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":"FAILED","comment":"handles: User with handle nobody not found"}`))
	})
	_, err := c.FetchUser(context.Background(), "nobody")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type countingFetcher struct {
	calls    int
	problems []model.Problem
	err      error
}

func (f *countingFetcher) FetchProblems(context.Context) ([]model.Problem, error) {
	f.calls++
	return f.problems, f.err
}

func TestCachedServesFreshCopy(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "cfdrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	src := &countingFetcher{problems: []model.Problem{{ContestID: 1, Index: "A", Rating: 800}}}
	now := time.Unix(1_700_000_000, 0)
	c := NewCached(src, st, time.Hour, nil)
	c.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		problems, err := c.FetchProblems(ctx)
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if len(problems) != 1 {
			t.Fatalf("unexpected problems: %+v", problems)
		}
	}
	if src.calls != 1 {
		t.Fatalf("expected 1 upstream call, got %d", src.calls)
	}

	now = now.Add(2 * time.Hour)
	if _, err := c.FetchProblems(ctx); err != nil {
		t.Fatalf("fetch after expiry: %v", err)
	}
	if src.calls != 2 {
		t.Fatalf("expected refetch after ttl, got %d calls", src.calls)
	}

	now = now.Add(2 * time.Hour)
	src.err = errors.New("offline")
	if _, err := c.FetchProblems(ctx); err == nil {
		t.Fatalf("expected stale cache not to hide upstream failure")
	}
}

func TestCachedDisabled(t *testing.T) {
	src := &countingFetcher{problems: []model.Problem{{ContestID: 1, Index: "A"}}}
	c := NewCached(src, nil, 0, nil)
	for i := 0; i < 3; i++ {
		if _, err := c.FetchProblems(context.Background()); err != nil {
			t.Fatalf("fetch: %v", err)
		}
	}
	if src.calls != 3 {
		t.Fatalf("expected every call to reach upstream, got %d", src.calls)
	}
}
