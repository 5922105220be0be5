package newsline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/transport/backend"
	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
	searchuc "github.com/kailas-cloud/newsline/internal/usecase/search"
)

// Client is the newsline client. Safe for concurrent use.
type Client struct {
	backend    *backend.Client
	searchSvc  *searchuc.Service
	feedback   *feedbackuc.Service
	dispatcher *feedbackuc.Dispatcher
	obs        *observer
	closeOnce  sync.Once
}

// New creates a client for the news-search backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	be, err := backend.NewClient(&backend.Config{
		BaseURL:    baseURL,
		Timeout:    cfg.timeout,
		HTTPClient: cfg.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("newsline: %w", err)
	}

	dispatcher := feedbackuc.NewDispatcher(
		&observedUpdater{inner: be, obs: obs},
		feedbackuc.DispatcherConfig{Workers: cfg.workers, QueueSize: cfg.queueSize},
		nil,
	)

	return &Client{
		backend:    be,
		searchSvc:  searchuc.New(be, 0, cfg.maxResults),
		feedback:   feedbackuc.New(dispatcher),
		dispatcher: dispatcher,
		obs:        obs,
	}, nil
}

// Search returns up to n results for query, newest first.
// n <= 0 uses the default of 20.
func (c *Client) Search(ctx context.Context, query string, n int) ([]Article, error) {
	start := time.Now()
	items, err := c.searchSvc.Search(ctx, query, n)
	c.obs.observe(opSearch, start, err, "query", query, "results", len(items))
	if err != nil {
		return nil, err
	}

	out := make([]Article, len(items))
	for i := range items {
		out[i] = articleFromDomain(&items[i])
	}
	return out, nil
}

// Session starts vote tracking for the results of query.
func (c *Client) Session(query string) *Session {
	return newSession(c.feedback, query)
}

// Ping checks that the backend answers.
func (c *Client) Ping(ctx context.Context) error {
	start := time.Now()
	err := c.backend.HealthCheck(ctx)
	c.obs.observe(opPing, start, err)
	if err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Close stops accepting feedback and waits for queued votes to be sent.
func (c *Client) Close() {
	c.closeOnce.Do(c.dispatcher.Close)
}

// observedUpdater reports each background feedback delivery.
type observedUpdater struct {
	inner feedbackuc.Updater
	obs   *observer
}

func (u *observedUpdater) Update(ctx context.Context, upd feedback.Update) error {
	start := time.Now()
	err := u.inner.Update(ctx, upd)
	u.obs.observe(opFeedback, start, err, "query", upd.Query(), "kind", string(upd.Kind()))
	if err != nil {
		return fmt.Errorf("feedback: %w", err)
	}
	return nil
}
