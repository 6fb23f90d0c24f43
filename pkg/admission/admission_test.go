package admission

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "stayhub/pkg/errors"
	"stayhub/pkg/logger"
	"stayhub/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:  logger.ERROR,
		Format: logger.TEXT,
		Output: io.Discard,
	})
}

func newController(cfg Config) (*Controller, *metrics.Registry) {
	reg := metrics.NewRegistry()
	c := New(cfg, testLogger(), reg)
	c.Start()
	return c, reg
}

func TestRunExecutesAdmittedWork(t *testing.T) {
	c, reg := newController(Config{
		QueueCapacity: 4,
		QueueWait:     time.Second,
		Permits:       2,
		PermitWait:    time.Second,
		Workers:       2,
	})
	defer c.Stop()

	got, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.Equal(t, int64(1), reg.Value("admission.admitted"))
}

func TestRunPropagatesBusinessErrors(t *testing.T) {
	c, _ := newController(Config{
		QueueCapacity: 4,
		QueueWait:     time.Second,
		Permits:       2,
		PermitWait:    time.Second,
		Workers:       2,
	})
	defer c.Stop()

	_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		return 0, apperrors.Conflict("room taken")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeConflict))
}

func TestQueueFullRejectsAsOverloaded(t *testing.T) {
	c, reg := newController(Config{
		QueueCapacity: 1,
		QueueWait:     100 * time.Millisecond,
		Permits:       1,
		PermitWait:    time.Second,
		Workers:       1,
	})
	defer c.Stop()

	running := make(chan struct{})
	release := make(chan struct{})

	// Occupy the only worker.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = Run(c, context.Background(), func(ctx context.Context) (int, error) {
			close(running)
			<-release
			return 0, nil
		})
	}()
	<-running

	// Fill the single queue slot.
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = Run(c, context.Background(), func(ctx context.Context) (int, error) {
			return 0, nil
		})
	}()
	time.Sleep(20 * time.Millisecond)

	// Queue is full and the worker is busy, so this offer times out.
	_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeOverloaded))
	assert.GreaterOrEqual(t, reg.Value("admission.rejected.overloaded"), int64(1))

	close(release)
	wg.Wait()
}

func TestPermitTimeoutRejectsAsRateLimited(t *testing.T) {
	c, reg := newController(Config{
		QueueCapacity: 4,
		QueueWait:     5 * time.Second,
		Permits:       1,
		PermitWait:    50 * time.Millisecond,
		Workers:       2,
	})
	defer c.Stop()

	running := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = Run(c, context.Background(), func(ctx context.Context) (int, error) {
			close(running)
			<-release
			return 0, nil
		})
	}()
	<-running

	// The second worker dequeues this ticket but cannot acquire the only
	// permit within PermitWait.
	_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeRateLimited))
	assert.Equal(t, int64(1), reg.Value("admission.rejected.rate_limited"))

	close(release)
	wg.Wait()
}

func TestPermitsBoundConcurrency(t *testing.T) {
	const permits = 3

	c, _ := newController(Config{
		QueueCapacity: 64,
		QueueWait:     5 * time.Second,
		Permits:       permits,
		PermitWait:    5 * time.Second,
		Workers:       16,
	})
	defer c.Stop()

	var current, max atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
				n := current.Add(1)
				for {
					prev := max.Load()
					if n <= prev || max.CompareAndSwap(prev, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				current.Add(-1)
				return 0, nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, max.Load(), int64(permits))
}

func TestPanicsSurfaceAsInternalErrors(t *testing.T) {
	c, reg := newController(Config{
		QueueCapacity: 4,
		QueueWait:     time.Second,
		Permits:       2,
		PermitWait:    time.Second,
		Workers:       2,
	})
	defer c.Stop()

	_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		panic("boom")
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeInternal))
	assert.Equal(t, int64(1), reg.Value("admission.panics"))

	// The permit must have been released despite the panic.
	got, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestCancelledContextRejectsAsOverloaded(t *testing.T) {
	c, _ := newController(Config{
		QueueCapacity: 4,
		QueueWait:     time.Second,
		Permits:       2,
		PermitWait:    time.Second,
		Workers:       2,
	})
	defer c.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(c, ctx, func(ctx context.Context) (int, error) {
		return 0, nil
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeOverloaded))
}

func TestStopUnblocksQueuedSubmitters(t *testing.T) {
	c, _ := newController(Config{
		QueueCapacity: 4,
		QueueWait:     5 * time.Second,
		Permits:       1,
		PermitWait:    5 * time.Second,
		Workers:       1,
	})

	running := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = Run(c, context.Background(), func(ctx context.Context) (int, error) {
			close(running)
			<-release
			return 0, nil
		})
	}()
	<-running

	queuedErr := make(chan error, 1)
	go func() {
		_, err := Run(c, context.Background(), func(ctx context.Context) (int, error) {
			return 0, nil
		})
		queuedErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	stopDone := make(chan struct{})
	go func() {
		c.Stop()
		close(stopDone)
	}()

	select {
	case err := <-queuedErr:
		require.Error(t, err)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeUnavailable))
	case <-time.After(time.Second):
		t.Fatal("queued submitter was not unblocked by Stop")
	}

	close(release)
	wg.Wait()
	<-stopDone
}
