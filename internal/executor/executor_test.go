package executor

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
	"solsniper/internal/retry"
	"solsniper/internal/solana"
	"solsniper/internal/state"
)

type stubQuoter struct {
	calls atomic.Int64
	quote domain.Quote
	err   error
	// failUntil makes the first n calls fail before succeeding.
	failUntil       int64
	lastSlippageBps atomic.Int64
}

func (s *stubQuoter) Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64, slippageBps int) (domain.Quote, error) {
	s.lastSlippageBps.Store(int64(slippageBps))
	n := s.calls.Add(1)
	if s.err != nil && (s.failUntil == 0 || n <= s.failUntil) {
		return domain.Quote{}, s.err
	}
	return s.quote, nil
}

type stubSwapper struct {
	calls atomic.Int64
	sig   string
	err   error
}

func (s *stubSwapper) Swap(ctx context.Context, q domain.Quote, signerPubkey string) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.sig, nil
}

type memHistory struct {
	records []domain.TradeRecord
}

func (m *memHistory) Append(ctx context.Context, rec domain.TradeRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memHistory) ListRecent(ctx context.Context, limit int) ([]domain.TradeRecord, error) {
	return m.records, nil
}

func testOpp() domain.TradeOpportunity {
	return domain.TradeOpportunity{
		PoolID:            "pool-1",
		TokenIn:           solana.WrappedSOLMint,
		TokenOut:          "target-mint",
		AmountIn:          0.1,
		ExpectedAmountOut: 0.2,
		ExpectedProfit:    0.1,
		Timestamp:         time.Now(),
	}
}

func goodQuote() domain.Quote {
	return domain.Quote{
		TokenIn:     solana.WrappedSOLMint,
		TokenOut:    "target-mint",
		InAmount:    0.1,
		OutAmount:   0.19,
		SlippageBps: 50,
		Source:      domain.QuoteSourceReal,
	}
}

func testConfig() Config {
	return Config{
		SlippageBps:        50,
		MinProfitThreshold: 0.01,
		ProfitDecayFactor:  0.8,
		MinLiquidity:       1000,
		RetryPolicy:        retry.Policy{MaxAttempts: 3, BaseDelay: 100 * time.Millisecond, Multiplier: 2.0},
	}
}

func newTestExecutor(q Quoter, s Swapper) *Executor {
	return New(q, s, state.NewPoolStore(), "signer-pubkey", testConfig(), slog.New(slog.DiscardHandler))
}

func TestExecuteSuccess(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "tx-sig-1"}
	hist := &memHistory{}

	e := newTestExecutor(quoter, swapper)
	e.SetHistory(hist)

	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "tx-sig-1", result.Signature)
	assert.Empty(t, result.Error)
	assert.InDelta(t, 0.09, result.ActualProfit, 1e-9)
	assert.Equal(t, domain.QuoteSourceReal, result.QuoteSource)

	require.Len(t, hist.records, 1)
	assert.Equal(t, "pool-1", hist.records[0].PoolID)
	assert.True(t, hist.records[0].Result.Success)
	assert.NotEmpty(t, hist.records[0].ID)
}

func TestExecuteValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.TradeOpportunity)
		want   error
	}{
		{"non-positive amount", func(o *domain.TradeOpportunity) { o.AmountIn = 0 }, domain.ErrInvalidTrade},
		{"negative amount", func(o *domain.TradeOpportunity) { o.AmountIn = -1 }, domain.ErrInvalidTrade},
		{"same token both sides", func(o *domain.TradeOpportunity) { o.TokenOut = o.TokenIn }, domain.ErrInvalidTrade},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quoter := &stubQuoter{quote: goodQuote()}
			swapper := &stubSwapper{sig: "sig"}
			e := newTestExecutor(quoter, swapper)

			opp := testOpp()
			tt.mutate(&opp)

			_, err := e.Execute(context.Background(), opp)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			// Nothing was attempted.
			assert.Zero(t, quoter.calls.Load())
			assert.Zero(t, swapper.calls.Load())
		})
	}
}

func TestExecuteRejectsThinPool(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "sig"}

	pools := state.NewPoolStore()
	pools.Upsert(domain.PoolState{
		PoolID: "pool-1", Source: "raydium",
		LiquidityA: 10, LiquidityB: 10,
		LastUpdated: time.Now(),
	})
	e := New(quoter, swapper, pools, "signer", testConfig(), slog.New(slog.DiscardHandler))

	_, err := e.Execute(context.Background(), testOpp())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLiquidityTooLow)
}

func TestExecuteProfitDecayGate(t *testing.T) {
	// Estimate promised 0.1; the fresh quote only delivers 0.07, under the
	// 0.8 decay floor of 0.08.
	q := goodQuote()
	q.OutAmount = 0.17
	quoter := &stubQuoter{quote: q}
	swapper := &stubSwapper{sig: "sig"}

	e := newTestExecutor(quoter, swapper)
	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.Signature)
	assert.Contains(t, result.Error, "decayed")
	assert.Zero(t, swapper.calls.Load())
}

func TestExecuteProfitAtDecayFloorExecutes(t *testing.T) {
	// Exactly 80% of the 0.1 estimate still clears the gate.
	q := goodQuote()
	q.OutAmount = 0.18
	quoter := &stubQuoter{quote: q}
	swapper := &stubSwapper{sig: "sig"}

	e := newTestExecutor(quoter, swapper)
	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)
	assert.True(t, result.Success)
}

func TestExecuteQuoteRetryThenSuccess(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote(), err: errors.New("transient"), failUntil: 2}
	swapper := &stubSwapper{sig: "sig"}

	e := newTestExecutor(quoter, swapper)
	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, int64(3), quoter.calls.Load())
}

func TestExecuteQuoteExhaustionYieldsSyntheticRejection(t *testing.T) {
	quoter := &stubQuoter{err: errors.New("aggregator down")}
	swapper := &stubSwapper{sig: "sig"}
	hist := &memHistory{}

	e := newTestExecutor(quoter, swapper)
	e.SetHistory(hist)

	started := time.Now()
	result, err := e.Execute(context.Background(), testOpp())
	elapsed := time.Since(started)

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Empty(t, result.Signature)
	assert.Equal(t, domain.QuoteSourceSynthetic, result.QuoteSource)
	assert.Contains(t, result.Error, "quote unavailable")
	// Full retry budget: 3 attempts with 100ms and 200ms pauses.
	assert.Equal(t, int64(3), quoter.calls.Load())
	assert.GreaterOrEqual(t, elapsed, 300*time.Millisecond)
	// Synthetic quotes never reach the swapper.
	assert.Zero(t, swapper.calls.Load())

	require.Len(t, hist.records, 1)
	assert.Equal(t, domain.QuoteSourceSynthetic, hist.records[0].Result.QuoteSource)
}

func TestExecuteSwapFailureIsResultNotError(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{err: errors.New("blockhash expired")}

	e := newTestExecutor(quoter, swapper)
	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Empty(t, result.Signature)
	assert.Contains(t, result.Error, "swap failed")
	// Swap is retried under the shared policy.
	assert.Equal(t, int64(3), swapper.calls.Load())
}

func TestExecuteWithoutSignerRejected(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "sig"}
	e := New(quoter, swapper, state.NewPoolStore(), "", testConfig(), slog.New(slog.DiscardHandler))

	_, err := e.Execute(context.Background(), testOpp())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTrade)
}

func TestResultInvariant(t *testing.T) {
	// Success implies a signature and no error; failure implies no signature.
	quoter := &stubQuoter{quote: goodQuote()}
	e := newTestExecutor(quoter, &stubSwapper{sig: "sig"})

	ok, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)
	assert.True(t, ok.Success && ok.Signature != "" && ok.Error == "")

	e2 := newTestExecutor(quoter, &stubSwapper{err: errors.New("boom")})
	bad, err := e2.Execute(context.Background(), testOpp())
	require.NoError(t, err)
	assert.True(t, !bad.Success && bad.Signature == "" && bad.Error != "")
}

func TestRunConsumesQueueAndAppliesCooldown(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "sig"}
	hist := &memHistory{}

	cfg := testConfig()
	cfg.CooldownTTL = time.Hour
	e := New(quoter, swapper, state.NewPoolStore(), "signer", cfg, slog.New(slog.DiscardHandler))
	e.SetHistory(hist)

	oppCh := make(chan domain.TradeOpportunity, 4)
	// Same pool twice: the second delivery hits the cooldown.
	oppCh <- testOpp()
	oppCh <- testOpp()
	close(oppCh)

	require.NoError(t, e.Run(context.Background(), oppCh))
	assert.Len(t, hist.records, 1)
	assert.Equal(t, int64(1), swapper.calls.Load())
}

func TestRunStopsOnCancel(t *testing.T) {
	e := newTestExecutor(&stubQuoter{quote: goodQuote()}, &stubSwapper{sig: "sig"})

	ctx, cancel := context.WithCancel(context.Background())
	oppCh := make(chan domain.TradeOpportunity)

	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, oppCh) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

type stubEstimator struct {
	profit float64
}

func (s stubEstimator) Estimate(pool domain.PoolState) float64 { return s.profit }

func TestAttemptTradeBuildsOpportunityAndExecutes(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "sig"}
	e := newTestExecutor(quoter, swapper)

	pool := domain.PoolState{
		PoolID: "pool-1", Source: "raydium",
		TokenA: solana.WrappedSOLMint, TokenB: "target-mint",
		LiquidityA: 5000, LiquidityB: 5000,
		LastUpdated: time.Now(),
	}

	result, err := e.AttemptTrade(context.Background(), pool, stubEstimator{profit: 0.1}, 0.1)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "sig", result.Signature)
}

func TestAttemptTradeValidationErrorAbortsImmediately(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	e := newTestExecutor(quoter, &stubSwapper{sig: "sig"})

	pool := domain.PoolState{
		PoolID: "pool-1",
		TokenA: solana.WrappedSOLMint, TokenB: "target-mint",
	}

	_, err := e.AttemptTrade(context.Background(), pool, stubEstimator{profit: 0.1}, 0)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidTrade)
	assert.Zero(t, quoter.calls.Load())
}

func TestAttemptTradeRetriesFailedAttempts(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{err: errors.New("blockhash expired")}

	cfg := testConfig()
	cfg.RetryPolicy = retry.Policy{MaxAttempts: 2, BaseDelay: time.Millisecond, Multiplier: 2.0}
	cfg.CooldownTTL = time.Minute
	e := New(quoter, swapper, state.NewPoolStore(), "signer", cfg, slog.New(slog.DiscardHandler))

	pool := domain.PoolState{
		PoolID: "pool-1",
		TokenA: solana.WrappedSOLMint, TokenB: "target-mint",
	}

	result, err := e.AttemptTrade(context.Background(), pool, stubEstimator{profit: 0.1}, 0.1)
	require.NoError(t, err)
	assert.False(t, result.Success)
	// Two manual attempts, each retrying the swap twice.
	assert.Equal(t, int64(4), swapper.calls.Load())
}

func TestThinPoolWidensSlippage(t *testing.T) {
	quoter := &stubQuoter{quote: goodQuote()}
	swapper := &stubSwapper{sig: "sig"}

	pools := state.NewPoolStore()
	pools.Upsert(domain.PoolState{
		PoolID: "pool-1", Source: "raydium",
		LiquidityA: 1000, LiquidityB: 1000,
		LastUpdated: time.Now(),
	})

	cfg := testConfig()
	cfg.MaxSlippageBps = 100
	e := New(quoter, swapper, pools, "signer", cfg, slog.New(slog.DiscardHandler))

	result, err := e.Execute(context.Background(), testOpp())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int64(100), quoter.lastSlippageBps.Load())

	// A deep pool keeps the default tolerance.
	pools.Upsert(domain.PoolState{
		PoolID: "pool-1", Source: "raydium",
		LiquidityA: 50000, LiquidityB: 50000,
		LastUpdated: time.Now().Add(time.Second),
	})
	_, err = e.Execute(context.Background(), testOpp())
	require.NoError(t, err)
	assert.Equal(t, int64(50), quoter.lastSlippageBps.Load())
}

func TestCooldown(t *testing.T) {
	c := NewCooldown(50 * time.Millisecond)

	assert.False(t, c.ShouldSkip("p1"))
	assert.True(t, c.ShouldSkip("p1"))
	assert.False(t, c.ShouldSkip("p2"))

	time.Sleep(60 * time.Millisecond)
	assert.False(t, c.ShouldSkip("p1"))

	c.Cleanup()
}
