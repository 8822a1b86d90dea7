package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fastPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        10 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

func TestDoSucceedsFirstTry(t *testing.T) {
	attempts, err := fastPolicy().Do(context.Background(), func() error {
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, attempts)
}

func TestDoExhaustsAttempts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	attempts, err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 3, attempts)
	require.Equal(t, 3, calls)
}

func TestDoEventualSuccess(t *testing.T) {
	calls := 0
	attempts, err := fastPolicy().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestDoNonRetryable(t *testing.T) {
	permanent := errors.New("not found")
	p := fastPolicy()
	p.Retryable = func(err error) bool { return !errors.Is(err, permanent) }

	calls := 0
	attempts, err := p.Do(context.Background(), func() error {
		calls++
		return permanent
	})
	require.ErrorIs(t, err, permanent)
	require.Equal(t, 1, attempts)
	require.Equal(t, 1, calls)
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	p := Policy{
		MaxAttempts:       5,
		InitialBackoff:    time.Minute,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.Do(ctx, func() error {
		return errors.New("transient")
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffStrictlyIncreases(t *testing.T) {
	p := Policy{
		MaxAttempts:       5,
		InitialBackoff:    time.Second,
		MaxBackoff:        time.Minute,
		BackoffMultiplier: 2.0,
	}

	prev := time.Duration(0)
	for attempt := 2; attempt <= p.MaxAttempts; attempt++ {
		d := p.backoffFor(attempt)
		require.Greater(t, d, prev, "backoff before attempt %d", attempt)
		prev = d
	}
}

func TestBackoffClampedAtMax(t *testing.T) {
	p := Policy{
		MaxAttempts:       10,
		InitialBackoff:    time.Second,
		MaxBackoff:        4 * time.Second,
		BackoffMultiplier: 2.0,
	}
	require.Equal(t, time.Second, p.backoffFor(2))
	require.Equal(t, 2*time.Second, p.backoffFor(3))
	require.Equal(t, 4*time.Second, p.backoffFor(4))
	require.Equal(t, 4*time.Second, p.backoffFor(9))
}

func TestOnRetryObserved(t *testing.T) {
	var delays []time.Duration
	p := fastPolicy()
	p.OnRetry = func(attempt int, delay time.Duration, err error) {
		delays = append(delays, delay)
	}

	_, err := p.Do(context.Background(), func() error {
		return errors.New("transient")
	})
	require.Error(t, err)
	require.Len(t, delays, 2)
}
