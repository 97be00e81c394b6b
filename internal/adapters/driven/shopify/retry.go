package shopify

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/custodia-labs/stocksync/internal/logger"
)

// Default retry policy values.
const (
	DefaultMaxAttempts     = 3
	DefaultInitialInterval = 500 * time.Millisecond
	DefaultMaxInterval     = 10 * time.Second
)

// RetryPolicy bounds retries of failed catalog calls.
type RetryPolicy struct {
	// MaxAttempts includes the first attempt. 1 disables retries.
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialInterval <= 0 {
		p.InitialInterval = DefaultInitialInterval
	}
	if p.MaxInterval <= 0 {
		p.MaxInterval = DefaultMaxInterval
	}
	return p
}

// retryable decides whether a failed call may be repeated.
// Mutations are repeated only when the request was never executed.
func retryable(err error, mutation bool) bool {
	if IsThrottled(err) {
		return true
	}
	if mutation {
		return false
	}
	return isTransient(err)
}

// withRetry runs op under the policy.
func withRetry(ctx context.Context, p RetryPolicy, name string, mutation bool, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := op()
		if err == nil {
			return struct{}{}, nil
		}
		if !retryable(err, mutation) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Debug("Retrying %s in %s: %v", name, next, err)
		}),
	)
	return err
}
