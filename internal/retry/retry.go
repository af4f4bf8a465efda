// Package retry runs an operation a bounded number of times on top of
// backoff.Retry, waiting between attempts as decided by a Policy.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"codeberg.org/biolink/client/internal/logger"
	"github.com/cenkalti/backoff/v5"
)

// BackoffFunc is consulted after a failed attempt. It returns how long to wait
// before the next attempt and whether the error is worth retrying at all.
type BackoffFunc func(attempt int, err error) (time.Duration, bool)

type Policy struct {
	MaxAttempts int
	Backoff     BackoffFunc
}

// Linear returns attempt*step, the delay grows by step after each failure.
func Linear(step time.Duration) func(attempt int) time.Duration {
	return func(attempt int) time.Duration {
		return time.Duration(attempt) * step
	}
}

type Retrier struct {
	policy Policy
	logger *slog.Logger
}

func NewRetrier(policy Policy, l *slog.Logger) *Retrier {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	if l == nil {
		l = logger.Default()
	}

	return &Retrier{policy: policy, logger: l}
}

func (r *Retrier) MaxAttempts() int {
	return r.policy.MaxAttempts
}

// policyBackOff hands backoff.Retry the delay the policy picked for the most
// recent failure.
type policyBackOff struct {
	next time.Duration
}

func (b *policyBackOff) NextBackOff() time.Duration {
	return b.next
}

func (b *policyBackOff) Reset() {
	b.next = backoff.Stop
}

// Do runs op until it succeeds, returns a non-retryable error, or the attempt
// budget is spent. There is no wait after the final attempt. A failure seen
// after ctx is done is final. The returned count is the number of times op ran.
func (r *Retrier) Do(ctx context.Context, op func(ctx context.Context, attempt int) error) (int, error) {
	var (
		attempt   int
		exhausted bool
		b         = &policyBackOff{}
	)

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++

		err := op(ctx, attempt)
		if err == nil {
			if attempt > 1 {
				r.logger.Debug("operation succeeded after retry", "attempt", attempt)
			}

			return struct{}{}, nil
		}

		if attempt >= r.policy.MaxAttempts {
			exhausted = true
			return struct{}{}, err
		}

		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(err)
		}

		delay, retryable := time.Duration(0), false
		if r.policy.Backoff != nil {
			delay, retryable = r.policy.Backoff(attempt, err)
		}

		if !retryable {
			return struct{}{}, backoff.Permanent(err)
		}

		b.next = delay
		return struct{}{}, err
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(r.policy.MaxAttempts)),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, delay time.Duration) {
			r.logger.Debug("retrying after backoff",
				"attempt", attempt,
				"delay_ms", delay.Milliseconds(),
				"error", err,
			)
		}),
	)

	if err != nil && exhausted {
		return attempt, fmt.Errorf("failed after %d attempts: %w", attempt, err)
	}

	return attempt, err
}
