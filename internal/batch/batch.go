// Package batch runs constituent scoring jobs through a bounded in-memory
// queue and a pool of workers. Results come back in job submission order
// regardless of which worker finished first.
package batch

import (
	"context"
	"time"

	"donorpulse/internal/domain/model"
)

// Job is one constituent to score. It carries the full scoring input so a
// worker never needs a lookup back into the submitting batch.
type Job struct {
	Index             int // position in the submitted batch
	ConstituentID     string
	Snapshot          model.ConstituentSnapshot
	Gifts             []model.GiftRecord
	Contacts          []model.ContactRecord
	EstimatedCapacity float64
	CapacityKnown     bool
	PortfolioTier     model.PortfolioTier
	AsOf              time.Time
}

// Outcome carries whatever the scorer produced for one job. The payload is
// opaque to the pipeline.
type Outcome struct {
	ConstituentID string
	Payload       any
	Err           error
}

// Scorer computes the outcome payload for a single job.
type Scorer interface {
	Score(ctx context.Context, job Job) (any, error)
}

// ScorerFunc adapts a function to the Scorer interface.
type ScorerFunc func(ctx context.Context, job Job) (any, error)

// Score implements Scorer.
func (f ScorerFunc) Score(ctx context.Context, job Job) (any, error) {
	return f(ctx, job)
}

// Process scores every job using a worker pool and returns outcomes in job
// order. Per-job failures are reported in the matching Outcome rather than
// aborting the batch; the returned error covers pipeline-level failures
// such as context cancellation.
func Process(ctx context.Context, scorer Scorer, jobs []Job, opts ...PoolOption) ([]Outcome, error) {
	if len(jobs) == 0 {
		return nil, nil
	}

	q := NewInMemoryQueue(WithCapacity(len(jobs)), WithBufferSize(len(jobs)))
	sink := newCollector(len(jobs))

	pool := NewPool(q, scorer, sink, opts...)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	pool.Start(runCtx)

	for i := range jobs {
		jobs[i].Index = i
		if !q.Enqueue(runCtx, jobs[i]) {
			cancel()
			return nil, ErrQueueFull
		}
	}
	// No more jobs; workers drain the channel and exit.
	if err := q.Close(); err != nil {
		return nil, err
	}

	if err := pool.Wait(runCtx); err != nil {
		return nil, err
	}
	return sink.outcomes, nil
}
