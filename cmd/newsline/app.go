package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/config"
	"github.com/kailas-cloud/newsline/internal/db"
	"github.com/kailas-cloud/newsline/internal/db/memory"
	dbRedis "github.com/kailas-cloud/newsline/internal/db/redis"
	logpkg "github.com/kailas-cloud/newsline/internal/logger"
	"github.com/kailas-cloud/newsline/internal/metrics"
	"github.com/kailas-cloud/newsline/internal/repository/searchcache"
	"github.com/kailas-cloud/newsline/internal/transport/backend"
	healthuc "github.com/kailas-cloud/newsline/internal/usecase/health"
	searchuc "github.com/kailas-cloud/newsline/internal/usecase/search"
)

// cacheReadyTimeout bounds the wait for a remote cache at startup.
const cacheReadyTimeout = 5 * time.Second

// app is the composition root shared by all commands.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	backend *backend.Client
	store   db.Store // nil when the cache is disabled
	search  *searchuc.Service
	health  *healthuc.Service
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.env)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.backendURL != "" {
		cfg.Backend.BaseURL = opts.backendURL
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config: %w", err)
		}
	}
	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}

	logger, err := logpkg.NewLogger(opts.env, level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	client, err := backend.NewClient(&backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		Timeout:         time.Duration(cfg.Backend.TimeoutSec) * time.Second,
		MaxIdleConns:    cfg.Backend.MaxIdleConns,
		IdleConnTimeout: time.Duration(cfg.Backend.IdleConnTTLSec) * time.Second,
		Logger:          logger,
	})
	if err != nil {
		return nil, fmt.Errorf("create backend client: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, backend: client}

	store, err := openCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}
	a.store = store

	// Decorator chain: backend -> cache (when enabled).
	var searcher searchuc.Backend = client
	if store != nil {
		searcher = searchcache.New(client, store, time.Duration(cfg.Cache.TTLSec)*time.Second,
			metrics.SearchCacheTotal, logger)
	}
	a.search = searchuc.New(searcher, cfg.Viewer.DefaultResults, cfg.Viewer.MaxResults)

	// Pass a nil interface, not a typed nil pointer, when the cache is off.
	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	a.health = healthuc.New(client, cachePinger)

	return a, nil
}

// openCache creates the result cache store selected by cfg.Driver.
func openCache(ctx context.Context, cfg config.CacheConfig) (db.Store, error) {
	var (
		store db.Store
		err   error
	)
	switch cfg.Driver {
	case "none":
		return nil, nil
	case "memory":
		return memory.NewStore(0), nil
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:      cfg.Addrs,
			Password:   cfg.Password,
			Standalone: len(cfg.Addrs) == 1,
		})
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s cache: %w", cfg.Driver, err)
	}
	if err := store.WaitForReady(ctx, cacheReadyTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("%s cache not ready: %w", cfg.Driver, err)
	}
	return store, nil
}

func (a *app) Close() {
	if a.store != nil {
		a.store.Close()
	}
	_ = a.logger.Sync()
}
