package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

// Orchestrator is the host-side concurrency layer: a bounded worker pool
// running independent pipeline invocations, plus a TTL'd job registry.
// Invocations share no mutable state, so the pool bound is the only
// concurrency control needed.
type Orchestrator struct {
	pipeline *Pipeline
	jobs     *JobStore
	pool     *ants.Pool
	log      *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Orchestrator.
type Option func(*orchestratorConfig)

type orchestratorConfig struct {
	workerCount int
	jobTTL      time.Duration
}

// WithWorkerCount sets the pool size, the number of documents processed
// concurrently.
func WithWorkerCount(n int) Option {
	return func(c *orchestratorConfig) {
		if n > 0 {
			c.workerCount = n
		}
	}
}

// WithJobTTL sets how long finished jobs remain queryable.
func WithJobTTL(ttl time.Duration) Option {
	return func(c *orchestratorConfig) {
		if ttl > 0 {
			c.jobTTL = ttl
		}
	}
}

// NewOrchestrator creates the worker pool and job store.
func NewOrchestrator(p *Pipeline, log *slog.Logger, opts ...Option) (*Orchestrator, error) {
	cfg := orchestratorConfig{
		workerCount: 4,
		jobTTL:      time.Hour,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	pool, err := ants.NewPool(cfg.workerCount, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Orchestrator{
		pipeline: p,
		jobs:     NewJobStore(cfg.jobTTL),
		pool:     pool,
		log:      log,
	}, nil
}

// Start launches the job store cleanup loop.
func (o *Orchestrator) Start(ctx context.Context) {
	o.ctx, o.cancel = context.WithCancel(ctx)

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-o.ctx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop cancels in-flight pipeline invocations that have not begun writing
// and releases the pool.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	o.pool.Release()
	o.wg.Wait()
}

// Submit queues a job. Returns an error when every worker is busy; the
// caller decides whether to retry.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	err := o.pool.Submit(func() {
		o.runJob(job)
	})
	if err != nil {
		job.Fail("", fmt.Sprintf("worker pool saturated (%d workers)", o.pool.Cap()))
		return fmt.Errorf("submit job %s: %w", job.ID, err)
	}
	return nil
}

// GetJob returns a job by ID, or nil.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// Running returns the number of in-flight invocations.
func (o *Orchestrator) Running() int {
	return o.pool.Running()
}

func (o *Orchestrator) runJob(job *Job) {
	job.SetStatus(StatusProcessing)

	summary, err := o.pipeline.Run(o.ctx, Input{
		DocumentName: job.DocumentName,
		Content:      job.Content(),
		Context:      job.Context,
	})
	if err != nil {
		var kind ErrorKind
		var perr *Error
		if errors.As(err, &perr) {
			kind = perr.Kind
		}
		job.Fail(kind, err.Error())
		return
	}
	job.Complete(summary)
}
