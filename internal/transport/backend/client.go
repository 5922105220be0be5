// Package backend is the HTTP client for the news-search backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/article"
	"github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/metrics"
)

// Endpoint labels for metrics.
const (
	endpointSearch = "search"
	endpointUpdate = "update"
	endpointHealth = "health"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Config holds the backend client settings.
type Config struct {
	BaseURL         string
	Timeout         time.Duration
	MaxIdleConns    int
	IdleConnTimeout time.Duration
	HTTPClient      *http.Client // optional, overrides the transport settings above
	Logger          *zap.Logger
}

// Client talks to the news-search backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a backend client.
func NewClient(cfg *Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid backend base url %q", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.MaxIdleConns > 0 {
			transport.MaxIdleConns = cfg.MaxIdleConns
			transport.MaxIdleConnsPerHost = cfg.MaxIdleConns
		}
		if cfg.IdleConnTimeout > 0 {
			transport.IdleConnTimeout = cfg.IdleConnTimeout
		}
		hc = &http.Client{Timeout: timeout, Transport: transport}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{baseURL: base, httpClient: hc, logger: logger}, nil
}

// Search runs GET /query?q=...&n_results=... and returns the results in backend order.
// A non-200 status is reported as domain.ErrSearchFailed.
func (c *Client) Search(ctx context.Context, query string, n int) ([]article.Article, error) {
	params := url.Values{}
	params.Set("q", query)
	if n > 0 {
		params.Set("n_results", strconv.Itoa(n))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/query", params), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, endpointSearch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body := readErrorBody(resp.Body)
		c.logger.Warn("Search backend returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", body),
		)
		return nil, domain.NewStatusError(resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w: %w", domain.ErrSearchFailed, err)
	}

	out := make([]article.Article, 0, len(parsed.Results))
	for i := range parsed.Results {
		out = append(out, parsed.Results[i].toDomain())
	}
	return out, nil
}

// Update sends one relevance update: POST /query/update.
// The response body is drained and ignored; only the status is checked.
func (c *Client) Update(ctx context.Context, u feedback.Update) error {
	body, err := json.Marshal(updateToWire(u))
	if err != nil {
		return fmt.Errorf("encode update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/query/update", nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build update request: %w", err)
	}
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(req, endpointUpdate)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("update rejected with status %d: %w", resp.StatusCode, domain.ErrBackendUnavailable)
	}
	return nil
}

// HealthCheck reports whether the backend answers HTTP at all.
// Any response below 500 counts as reachable.
func (c *Client) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/", nil), http.NoBody)
	if err != nil {
		return fmt.Errorf("build health request: %w", err)
	}
	resp, err := c.do(req, endpointHealth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("backend status %d: %w", resp.StatusCode, domain.ErrBackendUnavailable)
	}
	return nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) endpoint(path string, params url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if params != nil {
		u.RawQuery = params.Encode()
	}
	return u.String()
}

// do executes the request and records transport metrics.
func (c *Client) do(req *http.Request, endpoint string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s request canceled: %w", endpoint, err)
		}
		return nil, fmt.Errorf("%s request: %w: %w", endpoint, domain.ErrBackendUnavailable, err)
	}
	metrics.BackendRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

func readErrorBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return strings.TrimSpace(string(b))
}
