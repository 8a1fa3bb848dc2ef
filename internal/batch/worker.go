package batch

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"donorpulse/pkg/logger"
	"donorpulse/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerCount  = 0 // 0 means derive from CPU count
	workerCPUMultiplier = 2
	poolShutdownTimeout = 30 * time.Second
)

// collector gathers outcomes from all workers, keyed by job index so the
// batch comes back in submission order.
type collector struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func newCollector(size int) *collector {
	return &collector{outcomes: make([]Outcome, size)}
}

func (c *collector) put(index int, o Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if index >= 0 && index < len(c.outcomes) {
		c.outcomes[index] = o
	}
}

// worker pulls jobs off the queue and scores them until the queue drains or
// the context is cancelled.
type worker struct {
	queue  Queue
	scorer Scorer
	sink   *collector
	name   string
	done   chan struct{}
	logger logger.Logger
}

func newWorker(q Queue, scorer Scorer, sink *collector, name string) *worker {
	return &worker{
		queue:  q,
		scorer: scorer,
		sink:   sink,
		name:   name,
		done:   make(chan struct{}),
		logger: logger.Get().Named(name),
	}
}

// run is the worker loop.
func (w *worker) run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// process scores one job and records its outcome.
func (w *worker) process(ctx context.Context, job Job) {
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	payload, err := w.scorer.Score(ctx, job)
	if err != nil {
		metrics.RecordScoringError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("batch_worker", "scoring_error")
		w.logger.Error(ctx, "scoring failed",
			logger.String("constituent_id", job.ConstituentID),
			logger.Error(err),
		)
		w.sink.put(job.Index, Outcome{ConstituentID: job.ConstituentID, Err: err})
		return
	}

	metrics.RecordConstituentScored()
	metrics.RecordBatchJobCompleted()
	w.sink.put(job.Index, Outcome{ConstituentID: job.ConstituentID, Payload: payload})
}

// Pool manages multiple workers draining one queue.
type Pool struct {
	workers []*worker
	logger  logger.Logger
}

// PoolOption configures a Pool.
type PoolOption func(*poolConfig)

type poolConfig struct {
	workerCount int
}

// WithWorkerCount sets the number of workers. Values below one fall back to
// a CPU-derived default.
func WithWorkerCount(n int) PoolOption {
	return func(c *poolConfig) {
		c.workerCount = n
	}
}

// NewPool creates a worker pool reading from q.
func NewPool(q Queue, scorer Scorer, sink *collector, opts ...PoolOption) *Pool {
	cfg := poolConfig{workerCount: defaultWorkerCount}
	for _, opt := range opts {
		opt(&cfg)
	}
	count := cfg.workerCount
	if count < 1 {
		count = runtime.NumCPU() * workerCPUMultiplier
	}

	pool := &Pool{
		workers: make([]*worker, count),
		logger:  logger.Get().Named("batch-pool"),
	}
	for i := 0; i < count; i++ {
		pool.workers[i] = newWorker(q, scorer, sink, "batch-worker-"+strconv.Itoa(i))
	}

	metrics.UpdateWorkerActiveCount(count)

	return pool
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.run(ctx)
	}
}

// Wait blocks until every worker has drained the queue and exited, or the
// context expires.
func (p *Pool) Wait(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-waitCtx.Done():
			p.logger.Warn(ctx, "worker did not finish in time", logger.Int("worker_id", i))
			return fmt.Errorf("batch pool wait: %w", waitCtx.Err())
		}
	}

	metrics.UpdateWorkerActiveCount(0)
	return nil
}
