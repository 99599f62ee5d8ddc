package source

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/domain"
	"solsniper/internal/state"
)

type stubFetcher struct {
	name  string
	calls atomic.Int64
	pools []domain.PoolState
	err   error
}

func (f *stubFetcher) Name() string { return f.name }

func (f *stubFetcher) Fetch(ctx context.Context) ([]domain.PoolState, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.pools, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunStoresFetchedPools(t *testing.T) {
	store := state.NewPoolStore()
	fetcher := &stubFetcher{
		name: "raydium",
		pools: []domain.PoolState{
			{PoolID: "p1", TokenA: "a", TokenB: "b", LiquidityA: 5, LiquidityB: 5, LastUpdated: time.Now()},
		},
	}

	p := NewPoller(fetcher, store, time.Second, discardLogger())
	require.NoError(t, p.Run(context.Background()))

	snap := store.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, "p1", snap[0].PoolID)
	assert.Equal(t, "raydium", snap[0].Source)
}

func TestRunPropagatesFetchError(t *testing.T) {
	store := state.NewPoolStore()
	sentinel := errors.New("upstream down")
	fetcher := &stubFetcher{name: "raydium", err: sentinel}

	p := NewPoller(fetcher, store, time.Second, discardLogger())
	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel)
	assert.Zero(t, store.Len())
}

func TestRunLoopSurvivesCycleErrors(t *testing.T) {
	store := state.NewPoolStore()
	fetcher := &stubFetcher{name: "orca", err: errors.New("flaky")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPoller(fetcher, store, 10*time.Millisecond, discardLogger())
	done := make(chan error, 1)
	go func() { done <- p.RunLoop(ctx) }()

	// Wait until at least the immediate cycle plus two ticks have fired.
	require.Eventually(t, func() bool {
		return fetcher.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunLoop did not stop after cancellation")
	}
}

func TestRunLoopRunsImmediately(t *testing.T) {
	store := state.NewPoolStore()
	fetcher := &stubFetcher{
		name:  "raydium",
		pools: []domain.PoolState{{PoolID: "p1", LiquidityA: 1, LiquidityB: 1, LastUpdated: time.Now()}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A long interval proves the first cycle does not wait for a tick.
	p := NewPoller(fetcher, store, time.Hour, discardLogger())
	done := make(chan error, 1)
	go func() { done <- p.RunLoop(ctx) }()

	require.Eventually(t, func() bool {
		return store.Len() == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunLoop did not stop after cancellation")
	}
}
