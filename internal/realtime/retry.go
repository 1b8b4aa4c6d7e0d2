package realtime

import (
	"context"
	"math/rand"
	"time"

	"neuraconnect-be/internal/pkg/apperror"
)

const maxBackoff = 30 * time.Second

// withRetry runs fn up to maxAttempts times, backing off exponentially with
// jitter between attempts. Only transient connection failures are retried;
// permission and credential failures surface immediately.
func withRetry(ctx context.Context, maxAttempts int, base time.Duration, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if !apperror.IsKind(lastErr, apperror.KindConnection) {
			return lastErr
		}
		if attempt == maxAttempts {
			break
		}

		delay := base << (attempt - 1)
		if delay > maxBackoff {
			delay = maxBackoff
		}
		// Full jitter keeps simultaneous reconnects from synchronizing.
		delay = time.Duration(rand.Int63n(int64(delay)) + int64(delay)/2)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
