package chi

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/domain/article"
	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
	healthuc "github.com/kailas-cloud/newsline/internal/usecase/health"
	searchuc "github.com/kailas-cloud/newsline/internal/usecase/search"
)

type fakeBackend struct {
	items     []article.Article
	err       error
	healthErr error
	lastN     int
}

func (f *fakeBackend) Search(_ context.Context, _ string, n int) ([]article.Article, error) {
	f.lastN = n
	return f.items, f.err
}

func (f *fakeBackend) HealthCheck(_ context.Context) error { return f.healthErr }

type fakeQueue struct {
	updates []domfb.Update
}

func (q *fakeQueue) Dispatch(_ context.Context, u domfb.Update) error {
	q.updates = append(q.updates, u)
	return nil
}

type testEnv struct {
	backend *fakeBackend
	queue   *fakeQueue
	server  *Server
	handler http.Handler
}

func newTestEnv(t *testing.T, limiter *RateLimiter) *testEnv {
	t.Helper()
	backend := &fakeBackend{}
	queue := &fakeQueue{}
	srv := NewServer(
		searchuc.New(backend, 20, 100),
		feedbackuc.New(queue),
		healthuc.New(backend, nil),
		ViewerOptions{Title: "NewsLine", SearchBarWidth: 860},
		zap.NewNop(),
	)
	return &testEnv{backend: backend, queue: queue, server: srv, handler: srv.Router(limiter)}
}

func day(d int) *time.Time {
	t := time.Date(2024, 2, d, 12, 0, 0, 0, time.UTC)
	return &t
}
