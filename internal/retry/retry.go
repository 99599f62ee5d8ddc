// Package retry provides the single retry/backoff policy used by every
// retrying call site in the bot: quote fetches, swap submission, and the
// manual trade path all share the same strategy so their behavior stays
// predictable under load.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes a bounded retry loop with multiplicative backoff.
// Delay before attempt n+1 is BaseDelay * Multiplier^(n-1).
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultPolicy matches the bot's trading defaults: three attempts with
// 100ms/200ms pauses between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, Multiplier: 2.0}
}

// normalized returns a copy of p with zero values replaced by usable ones.
func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = 100 * time.Millisecond
	}
	if p.Multiplier < 1 {
		p.Multiplier = 2.0
	}
	return p
}

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// cancelled. The final error is wrapped with the attempt count; context
// cancellation during a backoff pause is returned as the context's error.
func Do(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	p = p.normalized()

	var err error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt == p.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * p.Multiplier)
	}
	return fmt.Errorf("retry: %d attempts exhausted: %w", p.MaxAttempts, err)
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := Do(ctx, p, func(ctx context.Context) error {
		var opErr error
		out, opErr = op(ctx)
		return opErr
	})
	return out, err
}
