package shiprocket

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type JobKind string

const (
	JobProduct    JobKind = "product"
	JobCollection JobKind = "collection"
)

// Job is one pending outbound catalog push. Jobs live only in memory:
// a restart loses them, which is acceptable because the provider's
// periodic full-sync pull reconciles any missed pushes.
type Job struct {
	Kind     JobKind
	TargetID int64

	attempts  int
	nextRetry time.Time
}

type Pusher interface {
	Push(ctx context.Context, job Job) error
}

// defaultBackoff is indexed by the number of failed attempts so far.
var defaultBackoff = []time.Duration{5 * time.Second, 30 * time.Second, 5 * time.Minute}

const defaultMaxAttempts = 3

type QueueConfig struct {
	MaxAttempts  int
	Backoff      []time.Duration
	PollInterval time.Duration
}

// RetryQueue is a FIFO, time-gated buffer of outbound catalog pushes.
// A single drain loop processes the head once its nextRetry has
// elapsed; failures re-arm the head with the next backoff step until
// the attempt budget is exhausted, at which point the job is dropped.
type RetryQueue struct {
	logger *slog.Logger
	pusher Pusher

	maxAttempts  int
	backoff      []time.Duration
	pollInterval time.Duration

	mu         sync.Mutex
	jobs       []Job
	processing bool
}

func NewRetryQueue(logger *slog.Logger, pusher Pusher, cfg QueueConfig) *RetryQueue {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if len(cfg.Backoff) == 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &RetryQueue{
		logger:       logger.With(slog.String("service", "retry_queue")),
		pusher:       pusher,
		maxAttempts:  cfg.MaxAttempts,
		backoff:      cfg.Backoff,
		pollInterval: cfg.PollInterval,
	}
}

func (q *RetryQueue) EnqueueProduct(id int64) {
	q.enqueue(Job{Kind: JobProduct, TargetID: id})
}

func (q *RetryQueue) EnqueueCollection(id int64) {
	q.enqueue(Job{Kind: JobCollection, TargetID: id})
}

func (q *RetryQueue) enqueue(job Job) {
	job.nextRetry = time.Now()
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	queueDepth.Inc()
}

func (q *RetryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

// Run drains the queue until ctx is cancelled. Only one drain loop may
// run; a second call returns immediately.
func (q *RetryQueue) Run(ctx context.Context) error {
	q.mu.Lock()
	if q.processing {
		q.mu.Unlock()
		return nil
	}
	q.processing = true
	q.mu.Unlock()

	defer func() {
		q.mu.Lock()
		q.processing = false
		q.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		job, ok := q.head()
		if !ok || time.Now().Before(job.nextRetry) {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(q.pollInterval):
			}
			continue
		}

		q.process(ctx, job)
	}
}

func (q *RetryQueue) head() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return Job{}, false
	}
	return q.jobs[0], true
}

func (q *RetryQueue) process(ctx context.Context, job Job) {
	err := q.pusher.Push(ctx, job)
	pushAttempts.WithLabelValues(string(job.Kind)).Inc()

	if err == nil {
		q.dequeue()
		q.logger.DebugContext(ctx, "catalog push succeeded",
			slog.String("kind", string(job.Kind)),
			slog.Int64("target_id", job.TargetID),
		)
		return
	}

	job.attempts++
	q.logger.WarnContext(ctx, "catalog push failed",
		slog.String("kind", string(job.Kind)),
		slog.Int64("target_id", job.TargetID),
		slog.Int("attempt", job.attempts),
		slog.Any("error", err),
	)

	if job.attempts >= q.maxAttempts {
		q.dequeue()
		pushDrops.WithLabelValues(string(job.Kind)).Inc()
		q.logger.ErrorContext(ctx, "catalog push dropped after exhausting retries",
			slog.String("kind", string(job.Kind)),
			slog.Int64("target_id", job.TargetID),
		)
		return
	}

	step := job.attempts - 1
	if step >= len(q.backoff) {
		step = len(q.backoff) - 1
	}
	job.nextRetry = time.Now().Add(q.backoff[step])

	q.mu.Lock()
	if len(q.jobs) > 0 {
		q.jobs[0] = job
	}
	q.mu.Unlock()
}

func (q *RetryQueue) dequeue() {
	q.mu.Lock()
	if len(q.jobs) > 0 {
		q.jobs = q.jobs[1:]
	}
	q.mu.Unlock()
	queueDepth.Dec()
}
