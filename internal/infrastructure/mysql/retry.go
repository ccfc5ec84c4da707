package mysql

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	apperrors "storefront/internal/errors"
)

// Backoff before attempt n+1: 0ms, 100ms, 200ms, then 200ms for any further
// attempt. Up to 20% jitter is added so retrying transactions drift apart.
var retryBackoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

// RetryOnContention runs fn up to maxAttempts times while it fails with lock
// contention. Any other error is returned immediately. When every attempt
// hits contention the result is a RetryableError.
func RetryOnContention(ctx context.Context, maxAttempts int, logger *zap.Logger, fn func(ctx context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsLockContention(err) {
			return err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}

		logger.Warn("lock contention, retrying",
			zap.Int("attempt", attempt),
			zap.Int("maxAttempts", maxAttempts),
			zap.Error(err),
		)

		if err := sleep(ctx, backoff(attempt)); err != nil {
			return apperrors.NewRetryableError("cancelled while waiting to retry", lastErr)
		}
	}

	return apperrors.NewRetryableError("max retries exceeded", lastErr)
}

func backoff(attempt int) time.Duration {
	idx := attempt - 1
	if idx >= len(retryBackoffs) {
		idx = len(retryBackoffs) - 1
	}
	base := retryBackoffs[idx]
	if base <= 0 {
		return 0
	}
	return base + time.Duration(rand.Int63n(int64(base)/5+1))
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
