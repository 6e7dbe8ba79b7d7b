package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/procurement-tracker/internal/common"
	"github.com/joseph-ayodele/procurement-tracker/internal/pipeline"
)

// ItemRunner is the orchestrator's item-backlog entry point.
type ItemRunner interface {
	ProcessItems(ctx context.Context, documentID uuid.UUID, itemIDs []uuid.UUID, sink pipeline.EventSink) (*pipeline.BatchResult, error)
}

// ItemQueue runs item backlogs on a fixed set of workers. At most one job per document is
// queued or running at a time, so a document's items never race each other.
type ItemQueue struct {
	runner  ItemRunner
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch     chan Job
	wg     sync.WaitGroup
	once   sync.Once
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	inflight map[uuid.UUID]struct{}
}

var _ Queue = (*ItemQueue)(nil)

type Option func(*ItemQueue)

func WithWorkers(n int) Option {
	return func(q *ItemQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *ItemQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithJobTimeout(d time.Duration) Option {
	return func(q *ItemQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewItemQueue(runner ItemRunner, logger *slog.Logger, opts ...Option) *ItemQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &ItemQueue{
		runner:   runner,
		logger:   logger,
		workers:  2,
		timeout:  30 * time.Minute,
		ch:       make(chan Job, 64),
		inflight: map[uuid.UUID]struct{}{},
	}
	for _, o := range opts {
		o(q)
	}
	q.base, q.cancel = context.WithCancel(context.Background())
	q.start()
	return q
}

func (q *ItemQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *ItemQueue) run(workerID int, job Job) {
	defer q.release(job.DocumentID)

	ctx, cancel := context.WithTimeout(q.base, q.timeout)
	defer cancel()
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}
	log := common.LoggerFromContext(ctx, q.logger)

	start := time.Now()
	res, err := q.runner.ProcessItems(ctx, job.DocumentID, job.ItemIDs, nil)
	attrs := []any{
		"worker_id", workerID,
		"document_id", job.DocumentID,
		"queued_ms", start.Sub(job.SubmittedAt).Milliseconds(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	}
	if res != nil {
		attrs = append(attrs, "status", res.Status, "succeeded", res.Succeeded, "failed", res.Failed)
	}
	if err != nil {
		log.Error("queue.job.failed", append(attrs, "error", err)...)
		return
	}
	log.Info("queue.job.done", attrs...)
}

func (q *ItemQueue) release(id uuid.UUID) {
	q.mu.Lock()
	delete(q.inflight, id)
	q.mu.Unlock()
}

// Enqueue never blocks: a full queue is reported to the caller.
func (q *ItemQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document_id", job.DocumentID)
		return ErrQueueClosed
	}
	if _, ok := q.inflight[job.DocumentID]; ok {
		return ErrAlreadyQueued
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now()
	}
	select {
	case q.ch <- job:
		q.inflight[job.DocumentID] = struct{}{}
		q.logger.Info("queued document for item processing", "document_id", job.DocumentID, "items", len(job.ItemIDs))
		return nil
	default:
		q.logger.Warn("queue full", "document_id", job.DocumentID)
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued ones. If ctx expires first, running
// jobs are cancelled and stop before their next item.
func (q *ItemQueue) Shutdown(ctx context.Context) {
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
		q.logger.Warn("shutdown interrupted by context, cancelling running jobs")
		q.cancel()
		<-done
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
	q.cancel()
}
