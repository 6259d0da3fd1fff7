package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/sylcheck/internal/config"
)

var (
	// ErrQueueFull is returned by Submit when no queue slot is free.
	ErrQueueFull = errors.New("check queue is full")
	// ErrStopped is returned by Submit once Stop has been called.
	ErrStopped = errors.New("check queue is stopped")
)

const cleanupInterval = 5 * time.Minute

// Orchestrator runs batch check jobs on a fixed set of workers. Each worker
// owns its own file semaphore, so at most WorkerCount*MaxConcurrency files
// are checked at once.
type Orchestrator struct {
	jobs  *JobStore
	queue chan *Job
	log   *slog.Logger

	workers  int
	newWork  func() *Worker
	capacity int

	// mu guards stopped and the close of queue against concurrent sends.
	mu       sync.RWMutex
	stopped  bool
	stopOnce sync.Once
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewOrchestrator(cfg config.Config, c Checker, log *slog.Logger) *Orchestrator {
	cfg.Clamp()
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		queue:    make(chan *Job, cfg.MaxQueueSize),
		log:      log.With("component", "orchestrator"),
		workers:  cfg.WorkerCount,
		capacity: cfg.MaxQueueSize,
		newWork: func() *Worker {
			return NewWorker(c, log, cfg.MaxConcurrency)
		},
	}
}

// Start launches the workers and the expired-job sweeper. They exit when
// ctx is cancelled or Stop is called.
func (o *Orchestrator) Start(ctx context.Context) {
	ctx, o.cancel = context.WithCancel(ctx)

	for i := 0; i < o.workers; i++ {
		o.wg.Add(1)
		go o.runWorker(ctx, i, o.newWork())
	}

	o.wg.Add(1)
	go o.sweep(ctx)
}

func (o *Orchestrator) runWorker(ctx context.Context, id int, w *Worker) {
	defer o.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-o.queue:
			if !ok {
				return
			}
			o.log.Debug("job picked up", "job_id", job.ID, "worker", id)
			w.Process(ctx, job)
		}
	}
}

func (o *Orchestrator) sweep(ctx context.Context) {
	defer o.wg.Done()
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			before := o.jobs.Len()
			o.jobs.Cleanup()
			if removed := before - o.jobs.Len(); removed > 0 {
				o.log.Info("expired jobs removed", "count", removed)
			}
		}
	}
}

// Stop cancels running jobs and waits for the workers to exit. It is safe to
// call more than once.
func (o *Orchestrator) Stop() {
	o.stopOnce.Do(func() {
		if o.cancel != nil {
			o.cancel()
		}
		o.mu.Lock()
		o.stopped = true
		close(o.queue)
		o.mu.Unlock()
		o.wg.Wait()
	})
}

// Submit stores the job and queues it. A job that cannot be queued stays
// retrievable with status failed.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	files := len(job.Files())

	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.stopped {
		job.SetStatus(StatusFailed, "shutting_down")
		return ErrStopped
	}
	select {
	case o.queue <- job:
		o.log.Info("job queued", "job_id", job.ID, "files", files)
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("%w (%d jobs)", ErrQueueFull, o.capacity)
	}
}

func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth is the number of jobs waiting for a worker.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
