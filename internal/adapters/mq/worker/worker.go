// Package worker runs queued assessments through the engine.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/okian/climarisk/internal/domain/model"
	"github.com/okian/climarisk/pkg/logger"
	"github.com/okian/climarisk/pkg/metrics"
)

const defaultWorkerMultiplier = 2

// Job abstracts what workers read off the queue.
type Job = model.AssessmentJob

// Assessor turns a job into a report.
type Assessor interface {
	Assess(ctx context.Context, job Job) (model.Report, error)
}

// Sink receives the outcome of each job.
type Sink interface {
	Complete(ctx context.Context, report model.Report) error
	Fail(ctx context.Context, job Job, err error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// InMemoryWorker processes jobs from a Queue.
type InMemoryWorker struct {
	queue    Queue
	assessor Assessor
	sink     Sink
	name     string

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, assessor Assessor, sink Sink, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		assessor: assessor,
		sink:     sink,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Get().Named(w.name)
	}
	return w
}

// Run processes jobs until the queue is drained and closed, ctx is
// cancelled, or Stop is called.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			metrics.RecordQueueDequeue()
			if err := w.process(ctx, job); err != nil {
				w.logger.Error(ctx, "assessment failed",
					logger.String("assessment_id", job.ID),
					logger.String("company", job.Company),
					logger.Error(err),
				)
			}
		}
	}
}

// Stop asks the worker to return without draining.
func (w *InMemoryWorker) Stop() {
	select {
	case <-w.shutdown:
	default:
		close(w.shutdown)
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: jobs travel by value over the channel
	start := time.Now()

	report, err := w.assessor.Assess(ctx, job)
	if err != nil {
		metrics.RecordAssessment("failed", float64(time.Since(start).Milliseconds()))
		w.sink.Fail(ctx, job, err)
		return fmt.Errorf("assess %s: %w", job.ID, err)
	}
	if err := w.sink.Complete(ctx, report); err != nil {
		metrics.RecordAssessment("failed", float64(time.Since(start).Milliseconds()))
		w.sink.Fail(ctx, job, err)
		return fmt.Errorf("store %s: %w", job.ID, err)
	}

	metrics.RecordAssessment("completed", float64(time.Since(start).Milliseconds()))
	w.logger.Debug(ctx, "assessment completed",
		logger.String("assessment_id", job.ID),
		logger.Int("items", len(report.Items)),
		logger.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	logger  logger.Logger
}

// NewPool creates a worker pool; workerCount < 1 picks a CPU-based default.
func NewPool(workerCount int, q Queue, assessor Assessor, sink Sink) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	p := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Get().Named("worker-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewInMemoryWorker(q, assessor, sink, WithName("worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateWorkerCount(workerCount)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Shutdown closes the queue and lets workers drain it. Workers still busy
// when ctx expires are told to stop.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	for i, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
			for _, rest := range p.workers[i:] {
				rest.Stop()
			}
			return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
		}
	}
	return nil
}
