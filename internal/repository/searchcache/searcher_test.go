package searchcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/db"
	"github.com/kailas-cloud/newsline/internal/db/memory"
	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/article"
)

func sampleArticles() []article.Article {
	d := time.Date(2023, 5, 6, 7, 8, 9, 0, time.UTC)
	return []article.Article{
		{DocID: "1", Title: "Dated", Link: "https://a/1", Rating: article.RatingCenter, Date: &d, Publisher: "A"},
		{DocID: "2", Title: "Undated", Link: "https://b/2", Rating: "SOMETHING_NEW"},
	}
}

func TestSearch_CacheMiss(t *testing.T) {
	inner := &mockSearcher{items: sampleArticles()}
	cs, ms := newTestCachedSearcher(t, inner)

	var (
		setKey string
		setTTL time.Duration
	)
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		setKey, setTTL = key, ttl
		return nil
	}

	got, err := cs.Search(context.Background(), "cats", 20)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || inner.calls != 1 {
		t.Fatalf("expected backend call with 2 results, got %d results / %d calls", len(got), inner.calls)
	}
	if !strings.HasPrefix(setKey, "newsline:query:") {
		t.Errorf("unexpected cache key %q", setKey)
	}
	if setTTL != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", setTTL)
	}
}

func TestSearch_CacheHitSkipsBackend(t *testing.T) {
	inner := &mockSearcher{items: sampleArticles()}
	cs := New(inner, memory.NewStore(16), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	first, err := cs.Search(ctx, "Cats ", 20)
	if err != nil {
		t.Fatalf("first search: %v", err)
	}
	second, err := cs.Search(ctx, " Cats", 20)
	if err != nil {
		t.Fatalf("second search: %v", err)
	}
	if inner.calls != 1 {
		t.Fatalf("expected 1 backend call, got %d", inner.calls)
	}
	if len(second) != len(first) {
		t.Fatalf("cached length %d != %d", len(second), len(first))
	}
	if !second[0].Date.Equal(*first[0].Date) || second[0].Rating != article.RatingCenter {
		t.Errorf("cached article differs: %+v", second[0])
	}
	if second[1].Date != nil || second[1].Rating != "SOMETHING_NEW" {
		t.Errorf("undated / unknown rating not preserved: %+v", second[1])
	}

	// A different result count is a different entry.
	if _, err := cs.Search(ctx, "Cats", 5); err != nil {
		t.Fatal(err)
	}
	if inner.calls != 2 {
		t.Errorf("expected n to be part of the key, calls = %d", inner.calls)
	}
}

func TestSearch_CacheKeyKeepsQueryCase(t *testing.T) {
	inner := &mockSearcher{items: sampleArticles()}
	cs := New(inner, memory.NewStore(16), time.Minute, nil, zap.NewNop())
	ctx := context.Background()

	for _, q := range []string{"Cats", "cats", "CATS"} {
		if _, err := cs.Search(ctx, q, 20); err != nil {
			t.Fatalf("search %q: %v", q, err)
		}
	}
	if inner.calls != 3 {
		t.Errorf("queries differing in case must not share an entry, calls = %d", inner.calls)
	}
	if inner.lastQuery != "CATS" {
		t.Errorf("backend got %q, want the query as typed", inner.lastQuery)
	}
}

func TestSearch_InnerErrorNotCached(t *testing.T) {
	inner := &mockSearcher{err: domain.NewStatusError(500)}
	cs, ms := newTestCachedSearcher(t, inner)

	var setCalled bool
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		setCalled = true
		return nil
	}

	_, err := cs.Search(context.Background(), "cats", 20)
	if !errors.Is(err, domain.ErrSearchFailed) {
		t.Fatalf("expected ErrSearchFailed, got %v", err)
	}
	if setCalled {
		t.Fatal("failed search must not be cached")
	}
}

func TestSearch_StoreErrorsDegradeToMiss(t *testing.T) {
	inner := &mockSearcher{items: sampleArticles()}
	cs, ms := newTestCachedSearcher(t, inner)

	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, &db.Error{Op: db.OpGet, Err: errors.New("connection reset")}
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("read only replica")
	}

	got, err := cs.Search(context.Background(), "cats", 20)
	if err != nil {
		t.Fatalf("store errors must not fail search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
}

func TestSearch_CorruptEntryIsMiss(t *testing.T) {
	for _, raw := range []string{"{broken", `{"v":99,"items":[]}`} {
		inner := &mockSearcher{items: sampleArticles()}
		cs, ms := newTestCachedSearcher(t, inner)
		ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
			return []byte(raw), nil
		}

		if _, err := cs.Search(context.Background(), "cats", 20); err != nil {
			t.Fatalf("%q: unexpected error: %v", raw, err)
		}
		if inner.calls != 1 {
			t.Errorf("%q: expected fallback to backend", raw)
		}
	}
}

func TestSearch_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_cache_total"}, []string{"result"})
	cs := New(&mockSearcher{items: sampleArticles()}, memory.NewStore(4), time.Minute, counter, zap.NewNop())

	for i := 0; i < 3; i++ {
		if _, err := cs.Search(context.Background(), "dogs", 10); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(counter.WithLabelValues("miss")); got != 1 {
		t.Errorf("miss = %v, want 1", got)
	}
	if got := testutil.ToFloat64(counter.WithLabelValues("hit")); got != 2 {
		t.Errorf("hit = %v, want 2", got)
	}
}
