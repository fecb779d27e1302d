package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/joseph-ayodele/expense-assistant/internal/events"
	"github.com/joseph-ayodele/expense-assistant/internal/observability"
)

// ErrQueueClosed is returned by Enqueue after Shutdown.
var ErrQueueClosed = errors.New("publish queue is shutting down")

// PublishQueue delivers events on a fixed pool of workers. Delivery is
// best-effort: failures are logged and counted, never retried.
type PublishQueue struct {
	pub     events.Publisher
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	// done wakes blocked senders; mu guards closing ch against in-progress sends.
	done     chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
	closed   bool
}

var _ Queue = (*PublishQueue)(nil)

type Option func(*PublishQueue)

func WithWorkers(n int) Option {
	return func(q *PublishQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *PublishQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithPublishTimeout(d time.Duration) Option {
	return func(q *PublishQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewPublishQueue(pub events.Publisher, logger *slog.Logger, opts ...Option) *PublishQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &PublishQueue{
		pub:     pub,
		logger:  logger,
		workers: 2,
		timeout: 10 * time.Second,
		ch:      make(chan Job, 100),
		done:    make(chan struct{}),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *PublishQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("publish worker started", "worker_id", workerID)

				for job := range q.ch {
					q.publish(workerID, job)
				}

				q.logger.Debug("publish worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *PublishQueue) publish(workerID int, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	if err := q.pub.PublishExpenseConfirmed(ctx, job.Message); err != nil {
		observability.PublishTotal.WithLabelValues("error").Inc()
		q.logger.Error("events.publish.error",
			"worker_id", workerID,
			"req_id", job.RequestID,
			"expense_id", job.Message.ExpenseID,
			"error", err)
		return
	}
	observability.PublishTotal.WithLabelValues("ok").Inc()
	q.logger.Debug("events.publish.delivered",
		"worker_id", workerID,
		"expense_id", job.Message.ExpenseID,
		"queued_ms", time.Since(job.SubmittedAt).Milliseconds())
}

// Enqueue blocks while the buffer is full unless ctx ends or Shutdown starts.
// Concurrent callers only share a read lock, so they block independently.
func (q *PublishQueue) Enqueue(ctx context.Context, job Job) error {
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "expense_id", job.Message.ExpenseID)
		return ErrQueueClosed
	}
	select {
	case <-q.done:
		return ErrQueueClosed
	case q.ch <- job:
		return nil
	default:
		q.logger.Warn("publish queue full, applying backpressure", "expense_id", job.Message.ExpenseID)
	}
	select {
	case q.ch <- job:
		return nil
	case <-q.done:
		observability.PublishTotal.WithLabelValues("dropped").Inc()
		return ErrQueueClosed
	case <-ctx.Done():
		observability.PublishTotal.WithLabelValues("dropped").Inc()
		return ctx.Err()
	}
}

// Shutdown stops intake and waits for queued events to drain. Senders blocked
// on a full buffer are released with ErrQueueClosed.
func (q *PublishQueue) Shutdown(ctx context.Context) {
	q.stopOnce.Do(func() { close(q.done) })

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("publish queue drained, shutdown complete")
	}
}
