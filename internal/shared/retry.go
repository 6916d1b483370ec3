package shared

import (
	"context"
	"time"
)

// Backoff is a reusable retry policy: MaxAttempts total attempts with an
// exponentially doubling delay between them (BaseDelay, 2*BaseDelay, ...).
//
// One policy value is shared by the download, staging, and commit call sites
// rather than duplicating the loop at each one.
type Backoff struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultBackoff matches the pipeline retry budget: 3 attempts with 1s and 2s
// pauses between them.
var DefaultBackoff = Backoff{MaxAttempts: 3, BaseDelay: time.Second}

// Do invokes fn until it succeeds or the attempt budget is exhausted.
//
// The sleep between attempts honors ctx cancellation; the last error is
// returned unwrapped so callers can classify it.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := b.BaseDelay
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}

	return err
}
