package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/vytor/swipequiz/internal/logger"
)

var (
	ErrPoolStopped = errors.New("worker pool stopped")
	ErrQueueFull   = errors.New("worker queue full")
)

type Job interface {
	Run(context.Context) error
	Name() string
}

// Pool runs jobs on a fixed set of goroutines fed by a bounded queue.
// Submissions never block: a full queue is reported to the caller.
type Pool struct {
	jobs    chan Job
	wg      sync.WaitGroup
	workers int
	cancel  context.CancelFunc
	log     *logger.Logger

	mu      sync.Mutex
	stopped bool
}

func NewPool(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		jobs:    make(chan Job, queueSize),
		workers: workers,
		log:     logger.Default().WithPrefix("worker-pool"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.log.Info("starting %d workers (queue %d)", p.workers, cap(p.jobs))

	p.wg.Add(p.workers)
	for i := 1; i <= p.workers; i++ {
		go p.work(ctx, p.log.WithField("worker_id", i))
	}
}

func (p *Pool) work(ctx context.Context, log *logger.Logger) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.run(ctx, log.WithField("job", job.Name()), job)
		}
	}
}

func (p *Pool) run(ctx context.Context, log *logger.Logger, job Job) {
	start := time.Now()
	if err := safeRun(logger.NewContext(ctx, log), job); err != nil {
		log.Error("job failed after %v: %v", time.Since(start), err)
		return
	}
	log.Info("job completed in %v", time.Since(start))
}

// safeRun keeps a panicking job from taking its worker down with it.
func safeRun(ctx context.Context, job Job) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v\n%s", rec, debug.Stack())
		}
	}()
	return job.Run(ctx)
}

// Stop cancels running jobs, rejects new submissions and waits for workers.
// It is safe to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	p.log.Info("worker pool stopped")
}

// Submit queues a job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return ErrPoolStopped
	}
	select {
	case p.jobs <- job:
		p.log.Debug("queued %s", job.Name())
		return nil
	default:
		p.log.Warn("queue full, rejecting %s", job.Name())
		return ErrQueueFull
	}
}

// QueueSize returns the number of jobs waiting for a worker.
func (p *Pool) QueueSize() int {
	return len(p.jobs)
}
