package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. After, when set, is the
// server's Retry-After hint and overrides the backoff delay for the next
// attempt.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Policy is an exponential backoff schedule.
type Policy struct {
	// Attempts is the total number of calls, at least one.
	Attempts int
	// Delay is the wait after the first failure. It doubles after each
	// further failure.
	Delay time.Duration
	// MaxDelay caps any single wait, including Retry-After hints.
	// Zero means no cap.
	MaxDelay time.Duration
}

// DefaultPolicy makes 3 attempts starting at one second, never waiting
// longer than 30 seconds.
var DefaultPolicy = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Do calls fn until it succeeds, returns a non-retryable error or the
// attempts run out. It returns the last error, or ctx.Err() if ctx ends
// while waiting.
func (p Policy) Do(ctx context.Context, fn func() error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	var lastErr error

	for i := range attempts {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		var re *RetryableError
		if !errors.As(lastErr, &re) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		if err := sleep(ctx, p.wait(delay, re.After)); err != nil {
			return err
		}
		delay *= 2
	}
	return lastErr
}

func (p Policy) wait(backoff, hint time.Duration) time.Duration {
	d := backoff
	if hint > 0 {
		d = hint
	}
	if p.MaxDelay > 0 {
		d = min(d, p.MaxDelay)
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry runs fn under a policy of attempts calls starting at delay.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return Policy{Attempts: attempts, Delay: delay}.Do(ctx, fn)
}

// RetryWithBackoff runs fn under [DefaultPolicy].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultPolicy.Do(ctx, fn)
}
