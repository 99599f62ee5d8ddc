package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoSucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := Do(context.Background(), DefaultPolicy(), func(ctx context.Context) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDoRecoversAfterFailures(t *testing.T) {
	calls := 0
	p := Policy{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2}
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDoExhaustsAttemptsExactly(t *testing.T) {
	calls := 0
	sentinel := errors.New("permanent")
	p := Policy{MaxAttempts: 4, BaseDelay: time.Millisecond, Multiplier: 2}
	err := Do(context.Background(), p, func(ctx context.Context) error {
		calls++
		return sentinel
	})
	require.Error(t, err)
	assert.Equal(t, 4, calls)
	assert.ErrorIs(t, err, sentinel)
}

func TestDoBackoffElapsed(t *testing.T) {
	// Three failing attempts with base 100ms and multiplier 2 must pause
	// 100ms then 200ms before surfacing the terminal failure.
	p := Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, Multiplier: 2}
	start := time.Now()
	err := Do(context.Background(), p, func(ctx context.Context) error {
		return errors.New("down")
	})
	elapsed := time.Since(start)
	require.Error(t, err)
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
}

func TestDoRespectsContextDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	p := Policy{MaxAttempts: 10, BaseDelay: time.Second, Multiplier: 2}
	err := Do(ctx, p, func(ctx context.Context) error {
		return errors.New("down")
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDoValue(t *testing.T) {
	p := Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2}
	calls := 0
	v, err := DoValue(context.Background(), p, func(ctx context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, v)
}

func TestNormalizedDefaults(t *testing.T) {
	p := Policy{}.normalized()
	assert.Equal(t, 1, p.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, p.BaseDelay)
	assert.Equal(t, 2.0, p.Multiplier)
}
