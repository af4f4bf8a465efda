package identity

import (
	"context"
	"errors"
	"time"

	"codeberg.org/biolink/client/internal/retry"
)

// BackoffPolicy retries rate limiting after attempt*rateStep and network
// failures after attempt*networkStep. Every other outcome is final, including a
// transport failure caused by the caller abandoning the request.
func BackoffPolicy(maxAttempts int, rateStep, networkStep time.Duration) retry.Policy {
	rateDelay := retry.Linear(rateStep)
	networkDelay := retry.Linear(networkStep)

	return retry.Policy{
		MaxAttempts: maxAttempts,
		Backoff: func(attempt int, err error) (time.Duration, bool) {
			switch {
			case errors.Is(err, context.Canceled):
				return 0, false
			case errors.Is(err, ErrRateLimited):
				return rateDelay(attempt), true
			case IsTransport(err):
				return networkDelay(attempt), true
			default:
				return 0, false
			}
		},
	}
}
