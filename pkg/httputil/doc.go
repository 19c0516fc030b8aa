// Package httputil provides the retry policy used by the canvas API client.
//
// Transient failures (network errors, 5xx responses) are wrapped in
// [RetryableError] by the caller; [Retry] only retries those and returns
// anything else immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    ...
//	})
//
// A [Policy] sets the schedule: the wait doubles after every failed
// attempt, up to MaxDelay. A Retry-After hint carried by the error replaces
// the computed wait for that attempt. [RetryWithBackoff] uses
// [DefaultPolicy].
package httputil
