package replay

import (
	"context"
	"time"
)

const maxBackoff = 10 * time.Second

// withRetry runs fn until it succeeds, attempts run out, or ctx is canceled.
// The pause between attempts doubles from baseDelay up to a 10s ceiling.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if attempt == maxRetries {
			break
		}
		pause := baseDelay << uint(attempt)
		if pause <= 0 || pause > maxBackoff {
			pause = maxBackoff
		}
		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}
