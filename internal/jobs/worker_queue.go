package jobs

import (
	"errors"

	"github.com/vytor/swipequiz/internal/worker"
)

var errNoSubmitter = errors.New("job queue has no submitter")

// WorkerQueue implements JobQueue using a worker pool
type WorkerQueue struct {
	submitPool *worker.Pool
	submitter  worker.SwipeSubmitter
}

// NewWorkerQueue creates a new WorkerQueue implementation. The submitter is
// bound later with SetSubmitter because it usually depends on the queue.
func NewWorkerQueue(submitPool *worker.Pool) *WorkerQueue {
	return &WorkerQueue{submitPool: submitPool}
}

func (q *WorkerQueue) SetSubmitter(s worker.SwipeSubmitter) {
	q.submitter = s
}

func (q *WorkerQueue) EnqueueSubmit(sessionID string) error {
	if q.submitter == nil {
		return errNoSubmitter
	}
	return q.submitPool.Submit(&worker.SubmitSwipesJob{
		Submitter: q.submitter,
		SessionID: sessionID,
	})
}
