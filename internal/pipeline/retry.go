package pipeline

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/dconnell/bookmaster/internal/organize"
)

// IsRetryable checks if an oracle error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *organize.RetryableError
	return errors.As(err, &retryErr)
}

// Backoff returns a duration for attempt n (0-indexed) with jitter.
func Backoff(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	if base > 30*time.Second {
		base = 30 * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

const MaxRetries = 3
