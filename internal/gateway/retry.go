package gateway

import (
	"context"
	"errors"
	"time"

	apperr "gigpay/internal/errors"
)

const (
	defaultRetryAttempts = 3
	retryBaseDelay       = 200 * time.Millisecond
)

// Retry runs fn, retrying transient provider failures with doubling
// backoff. Declines and validation failures are never retried; the last
// transient error surfaces once the budget is exhausted.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}

	var err error
	delay := retryBaseDelay
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if apperr.KindOf(err) != apperr.KindProviderTransient {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}
