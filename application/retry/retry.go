// Package retry runs an operation until it succeeds or an attempt budget is spent.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	domainerrors "github.com/plugincheck/plugincheck/domain/errors"
)

// DefaultMaxAttempts is the attempt budget used by the manifest and spec fetchers.
const DefaultMaxAttempts = 3

// Option configures a retry loop.
type Option func(*config)

type config struct {
	newBackOff func() backoff.BackOff
	retryIf    func(error) bool
	notify     func(err error, attempt int, wait time.Duration)
}

func defaultConfig() config {
	return config{
		newBackOff: DefaultBackOff,
		retryIf:    Retryable,
	}
}

// DefaultBackOff returns exponential intervals starting at 200ms, doubling,
// with 50% jitter and a 5s cap.
func DefaultBackOff() backoff.BackOff {
	return NewExponentialBackOff(200*time.Millisecond, 5*time.Second, 2, 0.5)
}

// NewExponentialBackOff builds a jittered exponential policy that never stops on
// elapsed time; the attempt budget alone bounds the loop.
func NewExponentialBackOff(initial, maxInterval time.Duration, multiplier, jitter float64) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.MaxInterval = maxInterval
	b.Multiplier = multiplier
	b.RandomizationFactor = jitter
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// WithBackOff sets the wait policy between attempts. A fresh policy is used per call.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *config) {
		if newBackOff != nil {
			c.newBackOff = newBackOff
		}
	}
}

// WithRetryIf sets the predicate deciding whether a failure is worth another attempt.
func WithRetryIf(pred func(error) bool) Option {
	return func(c *config) {
		if pred != nil {
			c.retryIf = pred
		}
	}
}

// WithNotify registers a callback invoked before each wait.
func WithNotify(fn func(err error, attempt int, wait time.Duration)) Option {
	return func(c *config) {
		c.notify = fn
	}
}

// Retryable is the default predicate: everything except context cancellation.
func Retryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Do invokes op at most maxAttempts times and returns its first successful value.
// When every attempt fails, or a failure is not retryable, the last error is
// returned wrapped in *errors.RetryError. maxAttempts below 1 means a single attempt.
func Do[T any](ctx context.Context, op func(ctx context.Context) (T, error), maxAttempts int, opts ...Option) (T, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	b := cfg.newBackOff()
	b.Reset()

	var zero T
	var lastErr error
	attempt := 0
	for attempt < maxAttempts {
		attempt++

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == maxAttempts || !cfg.retryIf(err) {
			break
		}

		wait := b.NextBackOff()
		if wait == backoff.Stop {
			break
		}
		if cfg.notify != nil {
			cfg.notify(err, attempt, wait)
		}
		if err := sleep(ctx, wait); err != nil {
			return zero, &domainerrors.RetryError{Err: err, Attempts: attempt}
		}
	}

	return zero, &domainerrors.RetryError{Err: lastErr, Attempts: attempt}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryableHTTP extends Retryable for HTTP fetches: client errors other than
// 408 and 429 will not change on a second try, so they are not retried.
func RetryableHTTP(err error) bool {
	if !Retryable(err) {
		return false
	}
	var httpErr *domainerrors.HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode >= 400 && httpErr.StatusCode < 500 {
		return httpErr.StatusCode == 408 || httpErr.StatusCode == 429
	}
	return true
}
