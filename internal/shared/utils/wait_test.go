package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForSucceeds(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), PollOptions{Timeout: time.Second, Interval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			calls++
			return calls == 3, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWaitForTimeoutIsBounded(t *testing.T) {
	opts := PollOptions{Timeout: 60 * time.Millisecond, Interval: 25 * time.Millisecond}

	start := time.Now()
	err := WaitFor(context.Background(), opts, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	elapsed := time.Since(start)

	var timeoutErr *PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.False(t, timeoutErr.ChannelFailed())
	assert.Zero(t, timeoutErr.Failures)
	assert.GreaterOrEqual(t, elapsed, opts.Timeout)
	assert.Less(t, elapsed, opts.Timeout+opts.Interval+50*time.Millisecond)
}

func TestWaitForChannelFailure(t *testing.T) {
	checkErr := errors.New("ps failed")
	err := WaitFor(context.Background(), PollOptions{Timeout: 30 * time.Millisecond, Interval: 10 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			return false, checkErr
		})

	var timeoutErr *PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.True(t, timeoutErr.ChannelFailed())
	assert.Equal(t, checkErr, timeoutErr.LastErr)
	assert.Equal(t, timeoutErr.Attempts, timeoutErr.Failures)
}

func TestWaitForMixedFailuresIsNegative(t *testing.T) {
	calls := 0
	err := WaitFor(context.Background(), PollOptions{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, error) {
			calls++
			if calls%2 == 0 {
				return false, errors.New("flaky")
			}
			return false, nil
		})

	var timeoutErr *PollTimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.False(t, timeoutErr.ChannelFailed())
}

func TestWaitForContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := WaitFor(ctx, PollOptions{Timeout: 5 * time.Second, Interval: 5 * time.Millisecond},
		func(ctx context.Context) (bool, error) { return false, nil })

	assert.ErrorIs(t, err, context.Canceled)
}
