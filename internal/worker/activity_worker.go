package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/observability"
	"github.com/spec-kit/helpdesk/internal/repository"
)

// ActivityWriter persists activity entries on a background goroutine. When
// the queue is full, or after Stop, entries are written inline by the caller.
// Write failures are logged and dropped.
type ActivityWriter struct {
	repo    repository.ActivityRepository
	queue   chan domain.Activity
	timeout time.Duration
	logger  *zap.Logger
	metrics *observability.Metrics

	mu      sync.RWMutex
	closed  bool
	started bool
	done    chan struct{}
}

// NewActivityWriter sizes the queue from cfg.
func NewActivityWriter(repo repository.ActivityRepository, cfg config.ActivityConfig, logger *zap.Logger, metrics *observability.Metrics) *ActivityWriter {
	size := cfg.QueueSize
	if size < 0 {
		size = 0
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityWriter{
		repo:    repo,
		queue:   make(chan domain.Activity, size),
		timeout: cfg.WriteTimeout(),
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start launches the consumer goroutine. Calling it twice is a no-op.
func (w *ActivityWriter) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started || w.closed {
		return
	}
	w.started = true
	go w.run()
}

func (w *ActivityWriter) run() {
	defer close(w.done)
	for activity := range w.queue {
		w.write(activity)
	}
}

// Submit enqueues activity without blocking.
func (w *ActivityWriter) Submit(activity domain.Activity) {
	w.mu.RLock()
	if !w.closed && w.started {
		select {
		case w.queue <- activity:
			w.mu.RUnlock()
			w.metrics.RecordActivity(observability.ActivityQueued)
			return
		default:
		}
	}
	w.mu.RUnlock()

	w.metrics.RecordActivity(observability.ActivityInline)
	w.write(activity)
}

// Stop closes the queue and waits for pending entries to be written or for
// ctx to expire.
func (w *ActivityWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	started := w.started
	close(w.queue)
	w.mu.Unlock()

	if !started {
		return nil
	}
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn("activity queue not drained before shutdown", zap.Int("pending", len(w.queue)))
		return ctx.Err()
	}
}

func (w *ActivityWriter) write(activity domain.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()
	if err := w.repo.Create(ctx, &activity); err != nil {
		w.metrics.RecordActivity(observability.ActivityFailed)
		w.logger.Warn("activity write failed",
			zap.String("activity_id", activity.ID),
			zap.String("activity_type", string(activity.Type)),
			zap.String("user_id", activity.UserID),
			zap.Error(err))
		return
	}
	w.metrics.RecordActivity(observability.ActivityWritten)
}
