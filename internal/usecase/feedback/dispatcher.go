package feedback

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/newsline/internal/domain"
	domfb "github.com/kailas-cloud/newsline/internal/domain/feedback"
	"github.com/kailas-cloud/newsline/internal/logger"
	"github.com/kailas-cloud/newsline/internal/metrics"
)

// Dispatch outcome labels.
const (
	statusSent    = "sent"
	statusFailed  = "failed"
	statusDropped = "dropped"
	statusSkipped = "skipped"
)

// DispatcherConfig sizes the worker pool.
type DispatcherConfig struct {
	Workers   int
	QueueSize int // per worker
}

type job struct {
	ctx    context.Context
	update domfb.Update
}

// Dispatcher delivers updates in the background.
// Updates with the same shard key are handled by the same worker, so they
// reach the backend in the order they were dispatched. No retries.
type Dispatcher struct {
	updater Updater
	shards  []chan job
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher starts the workers.
func NewDispatcher(updater Updater, cfg DispatcherConfig, log *zap.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}
	if log == nil {
		log = zap.NewNop()
	}

	d := &Dispatcher{
		updater: updater,
		shards:  make([]chan job, cfg.Workers),
		logger:  log,
	}
	for i := range d.shards {
		d.shards[i] = make(chan job, cfg.QueueSize)
		d.wg.Add(1)
		go d.run(d.shards[i])
	}
	return d
}

// Dispatch queues u without waiting for delivery.
// The request context is detached: finishing the caller's request does not cancel the send.
func (d *Dispatcher) Dispatch(ctx context.Context, u domfb.Update) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		metrics.FeedbackDispatchTotal.WithLabelValues(string(u.Kind()), statusDropped).Inc()
		return domain.ErrDispatcherClosed
	}

	j := job{ctx: context.WithoutCancel(ctx), update: u}
	metrics.FeedbackQueueDepth.Inc()
	select {
	case d.shards[d.shardFor(u)] <- j:
		return nil
	default:
		metrics.FeedbackQueueDepth.Dec()
		metrics.FeedbackDispatchTotal.WithLabelValues(string(u.Kind()), statusDropped).Inc()
		d.logger.Warn("Feedback queue full, dropping update",
			zap.String("kind", string(u.Kind())),
			zap.String("query", u.Query()),
		)
		return domain.ErrQueueFull
	}
}

// Close stops accepting updates and waits until queued ones are sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	for _, ch := range d.shards {
		close(ch)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *Dispatcher) shardFor(u domfb.Update) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(u.ShardKey()))
	return int(h.Sum32() % uint32(len(d.shards)))
}

func (d *Dispatcher) run(ch <-chan job) {
	defer d.wg.Done()
	for j := range ch {
		metrics.FeedbackQueueDepth.Dec()
		d.send(j)
	}
}

func (d *Dispatcher) send(j job) {
	kind := string(j.update.Kind())
	err := d.updater.Update(j.ctx, j.update)
	if err == nil {
		metrics.FeedbackDispatchTotal.WithLabelValues(kind, statusSent).Inc()
		return
	}

	metrics.FeedbackDispatchTotal.WithLabelValues(kind, statusFailed).Inc()
	log := logger.FromContextOr(j.ctx, d.logger)
	if errors.Is(err, context.Canceled) {
		log.Debug("Feedback update canceled", zap.String("kind", kind), zap.Error(err))
		return
	}
	log.Debug("Feedback update failed",
		zap.String("kind", kind),
		zap.String("query", j.update.Query()),
		zap.Error(err),
	)
}
