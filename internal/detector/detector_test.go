package detector

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/domain"
	"solsniper/internal/solana"
)

func testDetector(minProfit float64) *Detector {
	pred := NewHeuristicPredicate(0, 0, 0) // all gates open
	return New(pred, DepthEdge{EdgeRatio: 0.01}, 0.1, minProfit, slog.New(slog.DiscardHandler))
}

func freshPool(id string, liqA, liqB float64) domain.PoolState {
	return domain.PoolState{
		PoolID:      id,
		Source:      "raydium",
		TokenA:      "tokenA-mint",
		TokenB:      solana.WrappedSOLMint,
		LiquidityA:  liqA,
		LiquidityB:  liqB,
		Volume24h:   10000,
		LastUpdated: time.Now(),
	}
}

func TestDetectCycleEstimatesDepthEdge(t *testing.T) {
	d := testDetector(0.01)

	opps := d.DetectCycle([]domain.PoolState{freshPool("p1", 5, 5)})
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, "p1", opp.PoolID)
	// 0.01 edge over 10 units of combined depth.
	assert.InDelta(t, 0.1, opp.ExpectedProfit, 1e-9)
	assert.Equal(t, solana.WrappedSOLMint, opp.TokenIn)
	assert.Equal(t, "tokenA-mint", opp.TokenOut)
	assert.InDelta(t, 0.1, opp.AmountIn, 1e-9)
	assert.InDelta(t, opp.AmountIn+opp.ExpectedProfit, opp.ExpectedAmountOut, 1e-9)
	assert.False(t, opp.Timestamp.IsZero())
}

func TestDetectCycleDropsBelowThreshold(t *testing.T) {
	d := testDetector(0.5)

	// Depth 10 estimates 0.1, below the 0.5 floor.
	opps := d.DetectCycle([]domain.PoolState{freshPool("p1", 5, 5)})
	assert.Empty(t, opps)

	// Depth 100 estimates 1.0, above it.
	opps = d.DetectCycle([]domain.PoolState{freshPool("p2", 50, 50)})
	require.Len(t, opps, 1)
	assert.InDelta(t, 1.0, opps[0].ExpectedProfit, 1e-9)
}

func TestDetectCycleSkipsEmptyPools(t *testing.T) {
	d := testDetector(0)

	pools := []domain.PoolState{
		freshPool("drained", 0, 5),
		freshPool("healthy", 5, 5),
	}
	opps := d.DetectCycle(pools)
	require.Len(t, opps, 1)
	assert.Equal(t, "healthy", opps[0].PoolID)
}

func TestDetectCycleIsIdempotent(t *testing.T) {
	d := testDetector(0.01)
	pools := []domain.PoolState{
		freshPool("b", 5, 5),
		freshPool("a", 20, 20),
	}

	first := d.DetectCycle(pools)
	second := d.DetectCycle(pools)

	require.Len(t, first, 2)
	require.Len(t, second, 2)
	// Ordered by pool id, and equivalent across cycles modulo timestamp.
	assert.Equal(t, "a", first[0].PoolID)
	assert.Equal(t, "b", first[1].PoolID)
	for i := range first {
		assert.Equal(t, first[i].PoolID, second[i].PoolID)
		assert.Equal(t, first[i].ExpectedProfit, second[i].ExpectedProfit)
		assert.Equal(t, first[i].AmountIn, second[i].AmountIn)
	}
}

func TestDetectCycleBuysNonSOLSide(t *testing.T) {
	d := testDetector(0)

	pool := freshPool("p1", 5, 5)
	pool.TokenA = solana.WrappedSOLMint
	pool.TokenB = "other-mint"

	opps := d.DetectCycle([]domain.PoolState{pool})
	require.Len(t, opps, 1)
	assert.Equal(t, "other-mint", opps[0].TokenOut)
}

func TestHeuristicPredicateGates(t *testing.T) {
	pred := NewHeuristicPredicate(5000, 1000, time.Minute)
	now := time.Now()
	pred.now = func() time.Time { return now }

	base := domain.PoolState{
		PoolID:      "p1",
		LiquidityA:  3000,
		LiquidityB:  3000,
		Volume24h:   2000,
		LastUpdated: now.Add(-time.Second),
	}

	tests := []struct {
		name   string
		mutate func(*domain.PoolState)
		want   bool
	}{
		{"qualifies", func(p *domain.PoolState) {}, true},
		{"thin liquidity", func(p *domain.PoolState) { p.LiquidityA, p.LiquidityB = 100, 100 }, false},
		{"no volume", func(p *domain.PoolState) { p.Volume24h = 500 }, false},
		{"stale observation", func(p *domain.PoolState) { p.LastUpdated = now.Add(-2 * time.Minute) }, false},
		{"exactly at floor", func(p *domain.PoolState) { p.LiquidityA, p.LiquidityB = 2500, 2500 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool := base
			tt.mutate(&pool)
			assert.Equal(t, tt.want, pred.Evaluate(pool))
		})
	}
}

func TestHeuristicPredicateZeroMaxAgeSkipsFreshnessGate(t *testing.T) {
	pred := NewHeuristicPredicate(0, 0, 0)
	pool := domain.PoolState{LiquidityA: 1, LiquidityB: 1, LastUpdated: time.Now().Add(-time.Hour)}
	assert.True(t, pred.Evaluate(pool))
}
