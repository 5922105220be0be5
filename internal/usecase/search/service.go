package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/article"
)

// Default result counts.
const (
	DefaultResults = 20
	MaxResults     = 100
)

// maxQueryLen bounds the query text forwarded to the backend.
const maxQueryLen = 512

// Service runs timeline searches.
type Service struct {
	backend    Backend
	defaultN   int
	maxResults int
}

// New creates a search service. Zero limits fall back to the package defaults.
func New(backend Backend, defaultN, maxResults int) *Service {
	if maxResults <= 0 {
		maxResults = MaxResults
	}
	if defaultN <= 0 {
		defaultN = DefaultResults
	}
	if defaultN > maxResults {
		defaultN = maxResults
	}
	return &Service{backend: backend, defaultN: defaultN, maxResults: maxResults}
}

// Search returns results for query in timeline order (newest first).
// n <= 0 uses the default count; larger values are capped.
func (s *Service) Search(ctx context.Context, query string, n int) ([]article.Article, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	}
	if len(q) > maxQueryLen {
		return nil, fmt.Errorf("%w: query longer than %d bytes", domain.ErrInvalidQuery, maxQueryLen)
	}

	items, err := s.backend.Search(ctx, q, s.Limit(n))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", q, err)
	}

	out := make([]article.Article, len(items))
	copy(out, items)
	article.SortTimeline(out)
	return out, nil
}

// Limit returns the effective result count for a requested n.
func (s *Service) Limit(n int) int {
	switch {
	case n <= 0:
		return s.defaultN
	case n > s.maxResults:
		return s.maxResults
	default:
		return n
	}
}
