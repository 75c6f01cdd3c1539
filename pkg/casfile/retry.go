// Copyright © 2018 One Concern

package casfile

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	defaultInitialBackoff      = time.Millisecond
	defaultMaxBackoff          = 100 * time.Millisecond
	defaultRandomizationFactor = 0.5
)

// RetryPolicy tells how update loops react to conflicts.
//
// After the n-th conflicting attempt, the loop pauses for about
// min(MaxBackoff, InitialBackoff * 2^(n-1)), randomized by ±50% so that contending
// writers do not collide again in lockstep.
type RetryPolicy struct {
	// MaxAttempts is the maximum number of attempts before giving up with status.ErrTooManyConflicts.
	// 0 means no limit: only the context stops the loop.
	MaxAttempts int

	// InitialBackoff is the first pause. 0 disables pauses.
	InitialBackoff time.Duration

	// MaxBackoff caps pauses, before randomization
	MaxBackoff time.Duration
}

// DefaultRetryPolicy retries without limit, pausing about 1ms at first and about 100ms at most
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		InitialBackoff: defaultInitialBackoff,
		MaxBackoff:     defaultMaxBackoff,
	}
}

// exponential yields the schedule of pauses, or nil when pauses are disabled
func (p RetryPolicy) exponential() *backoff.ExponentialBackOff {
	if p.InitialBackoff <= 0 {
		return nil
	}
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialBackoff
	b.RandomizationFactor = defaultRandomizationFactor
	b.Multiplier = 2
	b.MaxInterval = p.MaxBackoff
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.MaxElapsedTime = 0 // conflicts are bounded by attempts, not time
	b.Reset()
	return b
}

// backOff builds the policy for one update loop, stopped when ctx is done
func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOffContext {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if e := p.exponential(); e != nil {
		b = e
	}
	if p.MaxAttempts > 0 {
		b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	}
	return backoff.WithContext(b, ctx)
}
