package search

import (
	"context"

	"github.com/kailas-cloud/newsline/internal/domain/article"
)

// Backend runs a query against the news-search backend (possibly cached).
type Backend interface {
	Search(ctx context.Context, query string, n int) ([]article.Article, error)
}
