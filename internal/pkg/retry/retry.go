package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/Pesokrava/storefront_reviews/internal/pkg/logger"
)

const (
	maxWait        = 10 * time.Second
	jitterFraction = 0.25
)

// Backoff returns the wait before retry number attempt (0-indexed):
// base doubled per attempt, capped at maxWait, with ±25% jitter.
func Backoff(base time.Duration, attempt int) time.Duration {
	wait := base << attempt
	if wait <= 0 || wait > maxWait {
		wait = maxWait
	}
	jitter := time.Duration(float64(wait) * jitterFraction * (2*rand.Float64() - 1))
	return wait + jitter
}

// Do calls fn up to attempts times until it succeeds, waiting with Backoff in between.
// It gives up early when ctx is done.
func Do(ctx context.Context, log *logger.Logger, what string, attempts int, base time.Duration, fn func() error) error {
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}

		wait := Backoff(base, attempt)
		log.WithFields(map[string]interface{}{
			"attempt":      attempt + 1,
			"max_attempts": attempts,
			"backoff_ms":   wait.Milliseconds(),
		}).Warnf("%s not ready: %v", what, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s: gave up waiting: %w", what, ctx.Err())
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%s not ready after %d attempts: %w", what, attempts, err)
}
