package retry

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Policy describes how an operation is re-attempted after transient
// failure. It is injected wherever retry behavior is needed instead of
// being baked into call sites, so it can be tested on its own.
type Policy struct {
	// MaxAttempts counts the initial attempt as well.
	MaxAttempts       int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64

	// Retryable reports whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool

	// OnRetry is invoked before each backoff sleep. May be nil.
	OnRetry func(attempt int, delay time.Duration, err error)
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:       3,
		InitialBackoff:    2 * time.Second,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
	}
}

// backoffFor returns the base delay preceding the given attempt
// (attempt 2 is the first re-attempt). The sequence grows
// exponentially until it is clamped at MaxBackoff.
func (p Policy) backoffFor(attempt int) time.Duration {
	d := p.InitialBackoff
	for i := 2; i < attempt; i++ {
		d = time.Duration(float64(d) * p.BackoffMultiplier)
		if d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// Do runs fn until it succeeds, fails non-retryably, exhausts
// MaxAttempts or ctx is cancelled. It reports how many attempts were
// made alongside the last error observed.
func (p Policy) Do(ctx context.Context, fn func() error) (attempts int, err error) {
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			if attempt > 1 {
				slog.Debug("succeeded after retry", "attempt", attempt)
			}
			return attempt, nil
		}

		if p.Retryable != nil && !p.Retryable(lastErr) {
			return attempt, lastErr
		}
		if attempt >= p.MaxAttempts {
			return attempt, lastErr
		}

		// ±20% jitter so a burst of failing fetches doesn't resync
		base := p.backoffFor(attempt + 1)
		delay := time.Duration(float64(base) * (0.8 + rand.Float64()*0.4))

		if p.OnRetry != nil {
			p.OnRetry(attempt, delay, lastErr)
		}
		slog.Debug("retrying after backoff", "attempt", attempt, "delay", delay, "err", lastErr)

		select {
		case <-ctx.Done():
			return attempt, ctx.Err()
		case <-time.After(delay):
		}
	}

	return p.MaxAttempts, lastErr
}
