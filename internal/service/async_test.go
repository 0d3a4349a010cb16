package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsyncRunnerProcessesTasks(t *testing.T) {
	runner := NewAsyncRunner(16)
	stop := runner.Start(2)
	defer func() { _ = stop(context.Background()) }()

	var ran atomic.Int64
	for i := 0; i < 5; i++ {
		runner.Enqueue("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}

	require.Eventually(t, func() bool {
		return ran.Load() == 5
	}, 2*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		return runner.Counters().Processed == 5
	}, 2*time.Second, 10*time.Millisecond)
	assert.Zero(t, runner.Counters().Dropped)
	assert.Zero(t, runner.Counters().Failed)
}

func TestAsyncRunnerCountsFailures(t *testing.T) {
	runner := NewAsyncRunner(16)
	stop := runner.Start(1)
	defer func() { _ = stop(context.Background()) }()

	runner.Enqueue("boom", func(ctx context.Context) error {
		return errors.New("boom")
	})

	assert.Eventually(t, func() bool {
		return runner.Counters().Failed == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestAsyncRunnerDropsWhenFull(t *testing.T) {
	// 未启动 worker，队列只进不出
	runner := NewAsyncRunner(2)

	noop := func(ctx context.Context) error { return nil }
	runner.Enqueue("a", noop)
	runner.Enqueue("b", noop)
	runner.Enqueue("c", noop)

	assert.Equal(t, 2, runner.QueueLen())
	assert.Equal(t, int64(1), runner.Counters().Dropped)
}
