package common

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryUntil_ImmediateSuccess(t *testing.T) {
	var calls int32
	ok, err := RetryUntil(context.Background(), 10*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return true, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryUntil_EventualSuccess(t *testing.T) {
	var calls int32
	ok, err := RetryUntil(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		return atomic.AddInt32(&calls, 1) >= 3, nil
	})

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetryUntil_TimeoutIsNotAnError(t *testing.T) {
	start := time.Now()
	ok, err := RetryUntil(context.Background(), 5*time.Millisecond, 50*time.Millisecond, func(context.Context) (bool, error) {
		return false, nil
	})

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRetryUntil_PredicateErrorStops(t *testing.T) {
	boom := errors.New("page crashed")
	var calls int32
	ok, err := RetryUntil(context.Background(), 5*time.Millisecond, time.Second, func(context.Context) (bool, error) {
		atomic.AddInt32(&calls, 1)
		return false, boom
	})

	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestRetryUntil_ParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	ok, err := RetryUntil(ctx, 5*time.Millisecond, 5*time.Second, func(context.Context) (bool, error) {
		return false, nil
	})

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSleep(t *testing.T) {
	require.NoError(t, Sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Sleep(ctx, time.Minute), context.Canceled)
}
