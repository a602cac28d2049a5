package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a cache backend that could not be reached.
var ErrNetwork = errors.New("cache backend unreachable")

// RetryableError marks a transient backend failure.
type RetryableError struct{ Err error }

// Retryable wraps err so that [Retry] tries again. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a [RetryableError].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// Backoff bounds [Retry]: at most Attempts calls, sleeping Delay before the
// second and doubling it after each retry.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// RequestBackoff keeps a cache hiccup from stalling an HTTP request.
var RequestBackoff = Backoff{Attempts: 3, Delay: 25 * time.Millisecond}

// Retry calls fn until it succeeds, returns an error that is not retryable,
// or the attempts are used up. Cancelling ctx stops the wait between calls.
func Retry(ctx context.Context, b Backoff, fn func() error) error {
	delay := b.Delay
	var err error
	for i := 0; i < max(b.Attempts, 1); i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
	}
	return err
}

// Get reads key from c under [Retry].
func Get(ctx context.Context, c Cache, b Backoff, key string) ([]byte, bool, error) {
	var (
		data []byte
		hit  bool
	)
	err := Retry(ctx, b, func() (err error) {
		data, hit, err = c.Get(ctx, key)
		return err
	})
	return data, hit, err
}

// Set writes key to c under [Retry].
func Set(ctx context.Context, c Cache, b Backoff, key string, data []byte, ttl time.Duration) error {
	return Retry(ctx, b, func() error { return c.Set(ctx, key, data, ttl) })
}
