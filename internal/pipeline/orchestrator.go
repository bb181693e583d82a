package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/rescalc/internal/config"
)

// ErrQueueFull is returned by Submit when the queue cannot take every
// partition of a job. Jobs are never partially enqueued.
var ErrQueueFull = errors.New("partition queue is full")

// ErrStopped is returned by Submit after Stop.
var ErrStopped = errors.New("orchestrator stopped")

type task struct {
	job      *Job
	dispatch Dispatch
}

// Orchestrator runs search partitions on a fixed pool of worker goroutines.
type Orchestrator struct {
	jobs     *JobStore
	sessions *SessionStore
	stats    *LatencyStats
	queue    chan task
	worker   *Worker
	log      *slog.Logger
	cfg      config.Config

	mu      sync.Mutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline. sessions may be nil; when set its
// idle sessions are evicted on the same schedule as jobs.
func NewOrchestrator(cfg config.Config, sessions *SessionStore, stats *LatencyStats, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		jobs:     NewJobStore(cfg.JobTTL),
		sessions: sessions,
		stats:    stats,
		queue:    make(chan task, cfg.MaxQueueSize),
		worker:   NewWorker(log),
		log:      log,
		cfg:      cfg,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.cfg.WorkerCount {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			for {
				select {
				case <-workerCtx.Done():
					return
				case t, ok := <-o.queue:
					if !ok {
						return
					}
					o.run(t)
				}
			}
		}()
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
				if o.sessions != nil {
					o.sessions.Cleanup()
				}
			}
		}
	}()
}

func (o *Orchestrator) run(t task) {
	o.worker.Process(t.dispatch, func(m Message) {
		if !t.job.Apply(m) {
			return
		}
		elapsed := time.Since(t.job.CreatedAt)
		if o.stats != nil {
			o.stats.Record(elapsed)
		}
		snap := t.job.Snapshot()
		o.log.Info("search job finished",
			"job_id", snap.ID,
			"status", snap.Status,
			"chunks", snap.Progress.ChunkCount,
			"errors", len(snap.Progress.Errors),
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// Stop shuts down the pipeline. Running partitions finish; queued ones may
// be dropped, leaving their jobs unfinished.
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	if o.stopped {
		o.mu.Unlock()
		return
	}
	o.stopped = true
	close(o.queue)
	o.mu.Unlock()

	if o.cancel != nil {
		o.cancel()
	}
	o.wg.Wait()
}

// Submit registers job and queues all of its partitions.
func (o *Orchestrator) Submit(job *Job) error {
	dispatches := job.Dispatches()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.stopped {
		return ErrStopped
	}
	if free := cap(o.queue) - len(o.queue); free < len(dispatches) {
		job.SetStatus(StatusFailed)
		job.AddError("queue_full")
		return fmt.Errorf("%w: %d free, %d partitions", ErrQueueFull, free, len(dispatches))
	}
	o.jobs.Put(job)
	for _, d := range dispatches {
		o.queue <- task{job: job, dispatch: d}
	}
	return nil
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}
