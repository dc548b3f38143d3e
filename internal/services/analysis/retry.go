package analysis

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds the guided retry loop.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	Retryable   func(error) bool
}

// DefaultRetryPolicy allows one guided retry, immediately, and only after a
// validation failure.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 2,
		Backoff:     0,
		Retryable:   IsValidationFailure,
	}
}

// IsValidationFailure reports whether err is a schema validation failure.
func IsValidationFailure(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ShouldRetry reports whether another attempt may follow the given one.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if attempt >= p.MaxAttempts || p.Retryable == nil {
		return false
	}
	return p.Retryable(err)
}

// Wait sleeps for the backoff or until ctx is done.
func (p RetryPolicy) Wait(ctx context.Context) error {
	if p.Backoff <= 0 {
		return nil
	}
	t := time.NewTimer(p.Backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
