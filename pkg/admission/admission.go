// Package admission gates every inbound request behind a bounded FIFO queue,
// a counting semaphore sized to the sustained throughput budget, and a fixed
// worker pool. Queue rejection (Overloaded) and permit rejection (RateLimited)
// are distinct outcomes so callers can tell queue pressure from sustained-rate
// saturation.
package admission

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/metrics"

	"golang.org/x/sync/semaphore"
)

const (
	// Workers are sized cores * (1 + waitRatio): booking work spends most of
	// its time blocked on storage I/O.
	defaultWaitRatio = 3
)

type Config struct {
	// QueueCapacity bounds how many tickets may wait for a worker.
	QueueCapacity int
	// QueueWait is both the enqueue offer timeout and the maximum time a
	// ticket may sit in the queue before a worker discards it as stale.
	QueueWait time.Duration
	// Permits is the sustained throughput budget (concurrent executions).
	Permits int64
	// PermitWait bounds the semaphore acquire, independently of QueueWait.
	PermitWait time.Duration
	// Workers is the pool size; <= 0 derives it from available parallelism.
	Workers int
}

type outcome struct {
	value any
	err   error
}

// ticket is one enqueued unit of work. The enqueue time enforces the
// queue-wait deadline on the dequeue side.
type ticket struct {
	ctx        context.Context
	enqueuedAt time.Time
	run        func(ctx context.Context) (any, error)
	done       chan outcome
}

type Controller struct {
	cfg     Config
	queue   chan *ticket
	permits *semaphore.Weighted
	log     *logger.Logger
	reg     *metrics.Registry

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopped  chan struct{}
}

func New(cfg Config, log *logger.Logger, reg *metrics.Registry) *Controller {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0) * (1 + defaultWaitRatio)
	}
	if cfg.QueueCapacity <= 0 {
		cfg.QueueCapacity = cfg.Workers
	}

	return &Controller{
		cfg:     cfg,
		queue:   make(chan *ticket, cfg.QueueCapacity),
		permits: semaphore.NewWeighted(cfg.Permits),
		log:     log,
		reg:     reg,
		stopped: make(chan struct{}),
	}
}

// Start launches the worker pool.
func (c *Controller) Start() {
	for i := 0; i < c.cfg.Workers; i++ {
		c.wg.Add(1)
		go c.worker()
	}
	c.log.Info("Admission controller started",
		"workers", c.cfg.Workers,
		"queue_capacity", c.cfg.QueueCapacity,
		"permits", c.cfg.Permits,
	)
}

// Stop halts the workers. Tickets still queued are abandoned; their
// submitters are unblocked with an Unavailable error.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopped)
	})
	c.wg.Wait()
}

// Run submits fn through the admission gate and waits for its outcome.
// Rejections surface as Overloaded (queue full or queue-wait deadline
// exceeded) or RateLimited (no permit within PermitWait). Panics inside fn
// are recovered and returned as internal errors; the permit is released on
// every exit path.
func Run[T any](c *Controller, ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	value, err := c.submit(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}

	result, ok := value.(T)
	if !ok {
		return zero, apperrors.Internal("unexpected admission result type", nil)
	}
	return result, nil
}

// Do is Run for operations without a result.
func Do(c *Controller, ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := c.submit(ctx, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (c *Controller) submit(ctx context.Context, fn func(ctx context.Context) (any, error)) (any, error) {
	t := &ticket{
		ctx:        ctx,
		enqueuedAt: time.Now(),
		run:        fn,
		done:       make(chan outcome, 1),
	}

	offer := time.NewTimer(c.cfg.QueueWait)
	defer offer.Stop()

	select {
	case c.queue <- t:
	case <-offer.C:
		c.reg.Inc("admission.rejected.overloaded")
		return nil, apperrors.Overloaded()
	case <-ctx.Done():
		c.reg.Inc("admission.rejected.overloaded")
		return nil, apperrors.Overloaded()
	case <-c.stopped:
		return nil, apperrors.Unavailable("Booking service")
	}

	select {
	case result := <-t.done:
		return result.value, result.err
	case <-c.stopped:
		return nil, apperrors.Unavailable("Booking service")
	}
}

func (c *Controller) worker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopped:
			return
		case t := <-c.queue:
			c.process(t)
		}
	}
}

func (c *Controller) process(t *ticket) {
	// Queue-wait deadline, independent of the permit deadline below. A
	// cancelled submitter context counts as an expired wait.
	if waited := time.Since(t.enqueuedAt); waited > c.cfg.QueueWait || t.ctx.Err() != nil {
		c.reg.Inc("admission.rejected.overloaded")
		t.done <- outcome{err: apperrors.Overloaded()}
		return
	}

	acquireCtx, cancel := context.WithTimeout(t.ctx, c.cfg.PermitWait)
	defer cancel()

	if err := c.permits.Acquire(acquireCtx, 1); err != nil {
		c.reg.Inc("admission.rejected.rate_limited")
		t.done <- outcome{err: apperrors.RateLimited()}
		return
	}
	defer c.permits.Release(1)

	c.reg.Inc("admission.admitted")
	t.done <- c.invoke(t)
}

// invoke runs the request body, converting panics into internal errors so
// nothing escapes the admission boundary as an unhandled fault.
func (c *Controller) invoke(t *ticket) (result outcome) {
	defer func() {
		if r := recover(); r != nil {
			c.reg.Inc("admission.panics")
			c.log.Error("Panic in admitted request",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			result = outcome{err: apperrors.Internal("Request failed unexpectedly", fmt.Errorf("panic: %v", r))}
		}
	}()

	value, err := t.run(t.ctx)
	return outcome{value: value, err: err}
}
