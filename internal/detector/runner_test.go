package detector

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/domain"
	"solsniper/internal/state"
)

type recordingPublisher struct {
	published [][]domain.TradeOpportunity
	err       error
}

func (p *recordingPublisher) Publish(ctx context.Context, opps []domain.TradeOpportunity) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, opps)
	return nil
}

func TestRunReplacesOpportunitySet(t *testing.T) {
	pools := state.NewPoolStore()
	opps := state.NewOpportunityStore()
	pools.ReplaceSource("raydium", []domain.PoolState{freshPool("p1", 5, 5)})

	r := NewRunner(testDetector(0.01), pools, opps, nil, nil, time.Second, slog.New(slog.DiscardHandler))
	require.NoError(t, r.Run(context.Background()))
	require.Equal(t, 1, opps.Len())

	// A drained snapshot clears the set on the next cycle.
	pools.ReplaceSource("raydium", nil)
	require.NoError(t, r.Run(context.Background()))
	assert.Zero(t, opps.Len())
}

func TestRunPublishesToCache(t *testing.T) {
	pools := state.NewPoolStore()
	opps := state.NewOpportunityStore()
	pools.ReplaceSource("raydium", []domain.PoolState{freshPool("p1", 5, 5)})

	pub := &recordingPublisher{}
	r := NewRunner(testDetector(0.01), pools, opps, pub, nil, time.Second, slog.New(slog.DiscardHandler))
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, pub.published, 1)
	require.Len(t, pub.published[0], 1)
	assert.Equal(t, "p1", pub.published[0][0].PoolID)
}

func TestRunSurvivesPublishFailure(t *testing.T) {
	pools := state.NewPoolStore()
	opps := state.NewOpportunityStore()
	pools.ReplaceSource("raydium", []domain.PoolState{freshPool("p1", 5, 5)})

	pub := &recordingPublisher{err: errors.New("cache down")}
	r := NewRunner(testDetector(0.01), pools, opps, pub, nil, time.Second, slog.New(slog.DiscardHandler))

	// Publish failure is logged, not fatal; the store still updates.
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 1, opps.Len())
}

func TestRunForwardsToExecutionQueue(t *testing.T) {
	pools := state.NewPoolStore()
	opps := state.NewOpportunityStore()
	pools.ReplaceSource("raydium", []domain.PoolState{
		freshPool("p1", 5, 5),
		freshPool("p2", 20, 20),
	})

	execCh := make(chan domain.TradeOpportunity, 4)
	r := NewRunner(testDetector(0.01), pools, opps, nil, execCh, time.Second, slog.New(slog.DiscardHandler))
	require.NoError(t, r.Run(context.Background()))

	require.Len(t, execCh, 2)
	first := <-execCh
	assert.Equal(t, "p1", first.PoolID)
}

func TestRunDropsWhenQueueFull(t *testing.T) {
	pools := state.NewPoolStore()
	opps := state.NewOpportunityStore()
	pools.ReplaceSource("raydium", []domain.PoolState{
		freshPool("p1", 5, 5),
		freshPool("p2", 20, 20),
	})

	execCh := make(chan domain.TradeOpportunity, 1)
	r := NewRunner(testDetector(0.01), pools, opps, nil, execCh, time.Second, slog.New(slog.DiscardHandler))

	// Must not block even though only one slot is free.
	done := make(chan struct{})
	go func() {
		defer close(done)
		require.NoError(t, r.Run(context.Background()))
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run blocked on a full execution queue")
	}

	assert.Len(t, execCh, 1)
	// The store still reflects the full set.
	assert.Equal(t, 2, opps.Len())
}
