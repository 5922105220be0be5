// Package searchcache caches backend search results in a key-value store.
package searchcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/db"
	"github.com/kailas-cloud/newsline/internal/domain"
	"github.com/kailas-cloud/newsline/internal/domain/article"
)

var cacheKeyPrefix = domain.KeyPrefix + "query:"

// Searcher runs a search against the backend.
type Searcher interface {
	Search(ctx context.Context, query string, n int) ([]article.Article, error)
}

// store is the consumer interface for the result cache.
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CachedSearcher caches search results per (query, n).
type CachedSearcher struct {
	inner      Searcher
	store      store
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
// cacheTotal is a counter vec with label "result" ("hit"/"miss"), passed explicitly.
func New(
	inner Searcher,
	s store,
	ttl time.Duration,
	cacheTotal *prometheus.CounterVec,
	logger *zap.Logger,
) *CachedSearcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedSearcher{
		inner:      inner,
		store:      s,
		ttl:        ttl,
		cacheTotal: cacheTotal,
		logger:     logger,
	}
}

// Search returns cached results or asks the inner searcher.
// Failed searches are not cached. Cache errors degrade to a miss.
func (c *CachedSearcher) Search(ctx context.Context, query string, n int) ([]article.Article, error) {
	key := c.cacheKey(query, n)

	if items, ok := c.getFromCache(ctx, key); ok {
		c.incCache("hit")
		return items, nil
	}

	c.incCache("miss")

	items, err := c.inner.Search(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("search backend: %w", err)
	}

	c.putToCache(ctx, key, items)
	return items, nil
}

func (c *CachedSearcher) incCache(result string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(result).Inc()
	}
}

// cacheKey keeps the query's case: the backend may rank "Cats" and "cats" differently,
// and feedback on the results must name the query the backend answered.
func (c *CachedSearcher) cacheKey(query string, n int) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(query) + "\x00" + strconv.Itoa(n)))
	return cacheKeyPrefix + hex.EncodeToString(h[:])
}

func (c *CachedSearcher) getFromCache(ctx context.Context, key string) ([]article.Article, bool) {
	data, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			c.logger.Warn("Failed to get cached results", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	if len(data) == 0 {
		return nil, false
	}

	var entry entryDTO
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Failed to parse cached results", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if entry.Version != cacheVersion {
		return nil, false
	}
	return entry.toDomain(), true
}

func (c *CachedSearcher) putToCache(ctx context.Context, key string, items []article.Article) {
	data, err := json.Marshal(toDTO(items))
	if err != nil {
		c.logger.Warn("Failed to encode results for cache", zap.Error(err))
		return
	}
	if err := c.store.SetWithTTL(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("Failed to cache results", zap.String("key", key), zap.Error(err))
	}
}
