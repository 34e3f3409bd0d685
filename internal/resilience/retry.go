// Package resilience provides the retry/backoff policy shared by every
// external provider call.
package resilience

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
)

// Policy controls retry behavior with exponential backoff. Policies are a
// fixed set of named profiles parameterized per collaborator, not tunable at
// runtime.
type Policy struct {
	// MaxAttempts is the total number of attempts (including the first try).
	// A value of 1 means no retries.
	MaxAttempts int

	// ExponentBase scales the delay after each attempt.
	ExponentBase float64

	// InitialDelay is the delay before the first retry.
	InitialDelay time.Duration

	// RetryableStatusCodes lists the HTTP status codes worth retrying.
	// Client errors other than 429 are never retried.
	RetryableStatusCodes []int

	// OnRetry is called before each retry sleep with attempt number and error.
	OnRetry func(attempt int, err error)
}

// SearchPolicy is the retry profile for the place search provider.
func SearchPolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		ExponentBase:         2,
		InitialDelay:         time.Second,
		RetryableStatusCodes: []int{429, 500, 503},
	}
}

// DetailPolicy is the retry profile for per-place detail fetches.
func DetailPolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		ExponentBase:         2,
		InitialDelay:         time.Second,
		RetryableStatusCodes: []int{429, 500, 503},
	}
}

// NarratePolicy is the retry profile for the text-generation provider.
func NarratePolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		ExponentBase:         2,
		InitialDelay:         time.Second,
		RetryableStatusCodes: []int{429, 500, 502, 503},
	}
}

// WeatherPolicy is the retry profile for the weather provider.
func WeatherPolicy() Policy {
	return Policy{
		MaxAttempts:          3,
		ExponentBase:         2,
		InitialDelay:         time.Second,
		RetryableStatusCodes: []int{429, 500, 502, 503, 504},
	}
}

// ShouldRetry reports whether another attempt is warranted for the given
// 1-indexed attempt number and HTTP status code.
func (p Policy) ShouldRetry(attempt, statusCode int) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	for _, code := range p.RetryableStatusCodes {
		if code == statusCode {
			return true
		}
	}
	return false
}

// DelayFor returns the backoff delay before the given 1-indexed attempt:
// initialDelay * exponentBase^(attempt-1).
func (p Policy) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(float64(p.InitialDelay) * math.Pow(p.ExponentBase, float64(attempt-1)))
}

// retryable decides whether an error is worth another attempt under p.
// Errors carrying an HTTP status are checked against the profile's code
// list; network-level transient errors are always retryable.
func (p Policy) retryable(err error) bool {
	if te, code := transientStatus(err); te {
		if code == 0 {
			return true
		}
		for _, c := range p.RetryableStatusCodes {
			if c == code {
				return true
			}
		}
		return false
	}
	return IsTransient(err)
}

// Do executes fn with retry logic according to p. Context cancellation stops
// retries immediately.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		// Don't retry on context cancellation.
		if ctx.Err() != nil {
			return lastErr
		}

		if !p.retryable(lastErr) {
			return lastErr
		}

		// Don't sleep after the last attempt.
		if attempt >= p.MaxAttempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}

		timer := time.NewTimer(p.DelayFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return lastErr
		case <-timer.C:
		}
	}

	return lastErr
}

// DoVal executes fn returning a value with retry logic. Same semantics as Do
// but preserves the return value from the successful call.
func DoVal[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, lastErr
		}

		if !p.retryable(lastErr) {
			return zero, lastErr
		}

		if attempt >= p.MaxAttempts {
			break
		}

		if p.OnRetry != nil {
			p.OnRetry(attempt, lastErr)
		}

		timer := time.NewTimer(p.DelayFor(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}

	return zero, lastErr
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
