package monitor

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// BackoffPolicy computes the wait between consecutive failed connection
// attempts: a geometric progression from Min, clamped at Max, with a
// random jitter fraction applied so a fleet of clients recovering from
// the same broker outage does not reconnect in lockstep.
//
// The zero value is not usable; construct with NewBackoffPolicy.
type BackoffPolicy struct {
	// Min is the base delay for the first retry.
	Min time.Duration

	// Max clamps the progression. Growth stops here regardless of how
	// many attempts have failed.
	Max time.Duration

	// Jitter is the perturbation fraction. 0.2 yields delays in
	// [0.8d, 1.2d] around the computed delay d. Zero disables jitter.
	Jitter float64

	rng *rand.Rand
}

// NewBackoffPolicy constructs a policy with its own jitter source.
//
// Parameters:
//   - min: Base delay for the first retry
//   - max: Delay ceiling
//   - jitter: Perturbation fraction in [0, 1)
//
// Returns:
//   - *BackoffPolicy: Ready-to-use policy
func NewBackoffPolicy(min, max time.Duration, jitter float64) *BackoffPolicy {
	return newBackoffPolicy(min, max, jitter, rand.NewSource(time.Now().UnixNano()))
}

// newBackoffPolicy accepts an explicit source so tests can be
// deterministic.
func newBackoffPolicy(min, max time.Duration, jitter float64, src rand.Source) *BackoffPolicy {
	if min <= 0 {
		min = time.Second
	}
	if max < min {
		max = min
	}
	if jitter < 0 {
		jitter = 0
	}
	return &BackoffPolicy{
		Min:    min,
		Max:    max,
		Jitter: jitter,
		rng:    rand.New(src),
	}
}

// Delay returns the wait before the given attempt.
//
// Attempt numbering starts at 1 (the first retry). The undisturbed
// progression is Min * 2^(attempt-1), clamped to Max before jitter is
// applied, so the jittered result stays within Jitter of the ceiling
// rather than drifting unboundedly.
//
// Parameters:
//   - attempt: 1-based count of consecutive failures
//
// Returns:
//   - time.Duration: Wait before the next attempt, always > 0
func (b *BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	// Cap the exponent before shifting to avoid overflow on long outages.
	exp := attempt - 1
	if exp > 30 {
		exp = 30
	}
	delay := b.Min << uint(exp)
	if delay > b.Max || delay <= 0 {
		delay = b.Max
	}

	if b.Jitter > 0 {
		// Uniform in [-Jitter, +Jitter].
		factor := 1 + b.Jitter*(2*b.rng.Float64()-1)
		delay = time.Duration(math.Round(float64(delay) * factor))
	}

	if delay < time.Millisecond {
		delay = time.Millisecond
	}
	return delay
}

// Wait blocks for the attempt's delay or until ctx is cancelled.
//
// Returns:
//   - error: ctx.Err() if cancelled mid-wait, nil after a full wait
func (b *BackoffPolicy) Wait(ctx context.Context, attempt int) error {
	timer := time.NewTimer(b.Delay(attempt))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
