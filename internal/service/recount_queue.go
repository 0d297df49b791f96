package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/idiomas-adm-api/pkg/jobs"
)

const recountJobType = "pending-recount"

// RecountQueue schedules asynchronous pending-count refreshes after
// validation decisions, so the decision path never blocks on a full scan.
type RecountQueue struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewRecountQueue wires a worker queue that force-refreshes the pending
// count for a cycle.
func NewRecountQueue(pending *PendingService, workers int, logger *zap.Logger) *RecountQueue {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		cycleID, _ := job.Payload.(string)
		if cycleID == "" {
			return nil
		}
		_, err := pending.Count(ctx, cycleID, true)
		return err
	}
	queue := jobs.NewQueue("pending-recount", handler, jobs.QueueConfig{
		Workers:    workers,
		MaxRetries: 3,
		RetryDelay: 5 * time.Second,
		Logger:     logger,
	})
	return &RecountQueue{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (q *RecountQueue) Start(ctx context.Context) {
	q.queue.Start(ctx)
}

// Stop drains the queue workers.
func (q *RecountQueue) Stop() {
	q.queue.Stop()
}

// Schedule enqueues a recount for the cycle. Failures are logged and
// dropped; the next read-side scan repairs the count anyway.
func (q *RecountQueue) Schedule(cycleID string) {
	if cycleID == "" {
		return
	}
	job := jobs.Job{ID: uuid.NewString(), Type: recountJobType, Payload: cycleID}
	if err := q.queue.Enqueue(job); err != nil {
		q.logger.Warn("failed to schedule pending recount", zap.String("cycle_id", cycleID), zap.Error(err))
	}
}
