package mind

import (
	"math"
	"time"
)

// BackoffStrategy defines how to calculate retry delays.
type BackoffStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff implements an exponential backoff strategy.
type ExponentialBackoff struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	multiplier   float64
}

// NewExponentialBackoff creates a new exponential backoff strategy.
func NewExponentialBackoff(initial, max time.Duration, multiplier float64) *ExponentialBackoff {
	return &ExponentialBackoff{
		initialDelay: initial,
		maxDelay:     max,
		multiplier:   multiplier,
	}
}

// NextDelay calculates the delay for the given attempt.
func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	delay := time.Duration(float64(eb.initialDelay) * math.Pow(eb.multiplier, float64(attempt)))
	if delay > eb.maxDelay {
		delay = eb.maxDelay
	}
	return delay
}

// Retry provides retry logic with pluggable backoff for collaborator calls.
type Retry struct {
	maxAttempts int
	backoff     BackoffStrategy
}

// NewRetry creates a new retry instance.
func NewRetry(maxAttempts int, backoff BackoffStrategy) *Retry {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Retry{
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

// Do executes a function with retry logic, returning the last error when all
// attempts fail.
func (r *Retry) Do(fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < r.maxAttempts-1 && r.backoff != nil {
			time.Sleep(r.backoff.NextDelay(attempt))
		}
	}

	return lastErr
}
