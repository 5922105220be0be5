package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/newsline/internal/metrics"
	chiTransport "github.com/kailas-cloud/newsline/internal/transport/chi"
	feedbackuc "github.com/kailas-cloud/newsline/internal/usecase/feedback"
	"github.com/kailas-cloud/newsline/internal/version"
)

// limiterSweepInterval is how often idle rate-limit entries are dropped.
const limiterSweepInterval = time.Minute

func serveCmd(opts *rootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the NewsLine web viewer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if port > 0 {
				a.cfg.HTTP.Port = port
			}
			return serve(ctx, a)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP port (overrides config)")
	return cmd
}

func serve(ctx context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting newsline viewer",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", a.backend.BaseURL()),
		zap.String("cache_driver", cfg.Cache.Driver),
	)

	// Register feedback and backend metrics explicitly (no init()).
	metrics.RegisterFeedbackMetrics()

	dispatcher := feedbackuc.NewDispatcher(a.backend, feedbackuc.DispatcherConfig{
		Workers:   cfg.Feedback.Workers,
		QueueSize: cfg.Feedback.QueueSize,
	}, logger)
	feedbackSvc := feedbackuc.New(dispatcher)

	limiter := chiTransport.NewRateLimiter(cfg.Feedback.RatePerSec, cfg.Feedback.RateBurst)
	server := chiTransport.NewServer(a.search, feedbackSvc, a.health, chiTransport.ViewerOptions{
		Title:          cfg.Viewer.Title,
		SearchBarWidth: cfg.Viewer.SearchBarWidth,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(limiter),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		limiter.Run(gctx, limiterSweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()

		err := srv.Shutdown(shutdownCtx)
		// Handlers are done; flush what is still queued.
		dispatcher.Close()
		if err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}
