package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.False(t, q.Running())
	assert.Error(t, q.Enqueue(Job{ID: "1"}))
}

func TestFailingJobDoesNotBlockSiblings(t *testing.T) {
	var done int32
	exhausted := make(chan Job, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if job.ID == "bad" {
			return errors.New("boom")
		}
		atomic.AddInt32(&done, 1)
		return nil
	}, QueueConfig{Workers: 2, MaxRetries: 1, RetryDelay: time.Millisecond, OnExhausted: func(j Job, _ error) { exhausted <- j }})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "bad"}))
	require.NoError(t, q.Enqueue(Job{ID: "a"}))
	require.NoError(t, q.Enqueue(Job{ID: "b"}))

	select {
	case j := <-exhausted:
		assert.Equal(t, "bad", j.ID)
		assert.Equal(t, 2, j.Attempt)
	case <-time.After(time.Second):
		t.Fatal("job was never exhausted")
	}
	require.Eventually(t, func() bool { return atomic.LoadInt32(&done) == 2 }, time.Second, time.Millisecond)
}

func TestStopIsIdempotentAndStopsRunning(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	q.Start(context.Background())
	assert.True(t, q.Running())
	q.Stop()
	assert.False(t, q.Running())
	q.Stop()
}

func TestEnqueueAfterStopFails(t *testing.T) {
	var handled int32
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{})
	q.Start(context.Background())
	require.NoError(t, q.Enqueue(Job{ID: "before"}))
	q.Stop()

	assert.ErrorIs(t, q.Enqueue(Job{ID: "after"}), ErrQueueStopped)
	assert.ErrorIs(t, q.EnqueueWait(context.Background(), Job{ID: "after"}), ErrQueueStopped)
	assert.EqualValues(t, 1, atomic.LoadInt32(&handled))
}

func TestEnqueueFullThenWait(t *testing.T) {
	release := make(chan struct{})
	var handled int32
	q := NewQueue("test", func(context.Context, Job) error {
		<-release
		atomic.AddInt32(&handled, 1)
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "running"}))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "buffered"}))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "overflow"}), ErrQueueFull)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.EnqueueWait(ctx, Job{ID: "overflow"}), context.DeadlineExceeded)

	waited := make(chan error, 1)
	go func() { waited <- q.EnqueueWait(context.Background(), Job{ID: "overflow"}) }()
	close(release)
	require.NoError(t, <-waited)

	q.Stop()
	assert.EqualValues(t, 3, atomic.LoadInt32(&handled))
}

func TestStopReleasesWaitingEnqueue(t *testing.T) {
	release := make(chan struct{})
	q := NewQueue("test", func(ctx context.Context, job Job) error {
		if job.ID != "running" {
			return nil
		}
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "running"}))
	require.Eventually(t, func() bool { return len(q.jobs) == 0 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(Job{ID: "buffered"}))

	waited := make(chan error, 1)
	go func() { waited <- q.EnqueueWait(context.Background(), Job{ID: "blocked"}) }()
	time.Sleep(5 * time.Millisecond)
	q.Stop()

	select {
	case err := <-waited:
		if err != nil {
			assert.ErrorIs(t, err, ErrQueueStopped)
		}
	case <-time.After(time.Second):
		t.Fatal("EnqueueWait did not return after Stop")
	}
}
