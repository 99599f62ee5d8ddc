// Package executor turns detected opportunities into swaps. Every execution
// re-verifies the opportunity against a fresh aggregator quote before any
// funds move; the detector's estimate is treated as a hint, never as a price.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"solsniper/internal/domain"
	"solsniper/internal/retry"
	"solsniper/internal/solana"
	"solsniper/internal/state"
)

// Quoter obtains fresh swap quotes from the aggregator.
type Quoter interface {
	Quote(ctx context.Context, tokenIn, tokenOut string, amountIn float64, slippageBps int) (domain.Quote, error)
}

// Swapper submits a verified quote for execution and returns the transaction
// signature.
type Swapper interface {
	Swap(ctx context.Context, q domain.Quote, signerPubkey string) (string, error)
}

// Notifier delivers operator alerts for trade outcomes.
type Notifier interface {
	Notify(ctx context.Context, event, title, message string) error
}

// Config carries the execution parameters the executor needs. MaxSlippageBps
// is the widened tolerance applied to thin pools; it is never below
// SlippageBps.
type Config struct {
	SlippageBps        int
	MaxSlippageBps     int
	MinProfitThreshold float64
	ProfitDecayFactor  float64
	MinLiquidity       float64
	RetryPolicy        retry.Policy
	CooldownTTL        time.Duration
}

// Pools with less combined liquidity than this move enough between quote and
// fill that the default slippage tolerance produces spurious failures.
const thinPoolLiquidity = 5000.0

// Executor validates opportunities, re-quotes them, and executes the ones
// that still carry enough profit. History and notifier are optional; a nil
// history store means outcomes are only logged.
type Executor struct {
	quoter  Quoter
	swapper Swapper
	pools   *state.PoolStore
	history domain.TradeHistoryStore
	notify  Notifier

	signerPubkey string
	cfg          Config

	cooldown        *Cooldown
	cleanupInterval time.Duration

	logger *slog.Logger
}

// New creates an Executor. signerPubkey may be empty when the bot runs in a
// monitor-only mode; Execute will then reject every trade.
func New(
	quoter Quoter,
	swapper Swapper,
	pools *state.PoolStore,
	signerPubkey string,
	cfg Config,
	logger *slog.Logger,
) *Executor {
	if cfg.CooldownTTL <= 0 {
		cfg.CooldownTTL = 2 * time.Minute
	}
	if cfg.ProfitDecayFactor <= 0 || cfg.ProfitDecayFactor > 1 {
		cfg.ProfitDecayFactor = 0.8
	}
	if cfg.MaxSlippageBps < cfg.SlippageBps {
		cfg.MaxSlippageBps = cfg.SlippageBps
	}
	return &Executor{
		quoter:          quoter,
		swapper:         swapper,
		pools:           pools,
		signerPubkey:    signerPubkey,
		cfg:             cfg,
		cooldown:        NewCooldown(cfg.CooldownTTL),
		cleanupInterval: 30 * time.Second,
		logger:          logger.With(slog.String("component", "executor")),
	}
}

// SetHistory wires the append-only trade history store.
func (e *Executor) SetHistory(h domain.TradeHistoryStore) { e.history = h }

// SetNotifier wires the operator alert channel.
func (e *Executor) SetNotifier(n Notifier) { e.notify = n }

// Execute runs one opportunity through the full validation, re-quote, and
// swap pipeline. A returned error means the trade parameters were invalid and
// nothing was attempted; every attempted trade, successful or not, comes back
// as a TradeResult with the error recorded in the Error field.
func (e *Executor) Execute(ctx context.Context, opp domain.TradeOpportunity) (domain.TradeResult, error) {
	log := e.logger.With(
		slog.String("pool_id", opp.PoolID),
		slog.String("token_out", opp.TokenOut),
	)

	if err := e.validate(opp); err != nil {
		return domain.TradeResult{}, err
	}

	quote, err := e.fetchQuote(ctx, opp)
	if err != nil {
		// Aggregator unreachable after the full retry budget. A synthetic
		// quote built from the stale estimate is recorded for observability
		// but is never executable.
		log.Warn("quote unavailable, synthesizing from estimate", slog.Any("error", err))
		synthetic := e.syntheticQuote(opp)
		result := domain.TradeResult{
			Success:     false,
			AmountIn:    synthetic.InAmount,
			AmountOut:   synthetic.OutAmount,
			QuoteSource: domain.QuoteSourceSynthetic,
			Error:       fmt.Sprintf("quote unavailable: %v", err),
		}
		e.record(ctx, opp, result)
		return result, nil
	}

	if reason, ok := e.verify(opp, quote); !ok {
		log.Info("trade rejected after re-verification", slog.String("reason", reason))
		result := domain.TradeResult{
			Success:     false,
			AmountIn:    quote.InAmount,
			AmountOut:   quote.OutAmount,
			QuoteSource: quote.Source,
			Error:       reason,
		}
		e.record(ctx, opp, result)
		return result, nil
	}

	sig, err := retry.DoValue(ctx, e.cfg.RetryPolicy, func(ctx context.Context) (string, error) {
		return e.swapper.Swap(ctx, quote, e.signerPubkey)
	})
	if err != nil {
		log.Error("swap failed", slog.Any("error", err))
		result := domain.TradeResult{
			Success:     false,
			AmountIn:    quote.InAmount,
			AmountOut:   quote.OutAmount,
			QuoteSource: quote.Source,
			Error:       fmt.Sprintf("swap failed: %v", err),
		}
		e.record(ctx, opp, result)
		return result, nil
	}

	result := domain.TradeResult{
		Success:      true,
		Signature:    sig,
		AmountIn:     quote.InAmount,
		AmountOut:    quote.OutAmount,
		ActualProfit: quote.Profit(),
		QuoteSource:  quote.Source,
	}
	log.Info("trade executed",
		slog.String("signature", sig),
		slog.Float64("actual_profit", result.ActualProfit),
	)
	e.record(ctx, opp, result)
	return result, nil
}

// Estimator mirrors the detector's profit estimator so the manual path can
// price an opportunity straight from a pool observation.
type Estimator interface {
	Estimate(pool domain.PoolState) float64
}

// AttemptTrade builds an opportunity from a raw pool observation and runs it
// through Execute, retrying failed attempts under the shared policy. A
// validation error aborts immediately; an exhausted budget returns the final
// failed result.
func (e *Executor) AttemptTrade(ctx context.Context, pool domain.PoolState, est Estimator, amountIn float64) (domain.TradeResult, error) {
	tokenOut := pool.TokenA
	if tokenOut == solana.WrappedSOLMint {
		tokenOut = pool.TokenB
	}
	profit := est.Estimate(pool)
	opp := domain.TradeOpportunity{
		PoolID:            pool.PoolID,
		TokenIn:           solana.WrappedSOLMint,
		TokenOut:          tokenOut,
		AmountIn:          amountIn,
		ExpectedAmountOut: amountIn + profit,
		ExpectedProfit:    profit,
		Timestamp:         time.Now().UTC(),
	}

	var (
		result  domain.TradeResult
		haveRes bool
		valErr  error
	)
	retryErr := retry.Do(ctx, e.cfg.RetryPolicy, func(ctx context.Context) error {
		r, err := e.Execute(ctx, opp)
		if err != nil {
			// Deterministic rejection; retrying cannot help.
			valErr = err
			return nil
		}
		result, haveRes = r, true
		if !r.Success {
			return fmt.Errorf("executor: attempt failed: %s", r.Error)
		}
		return nil
	})
	if valErr != nil {
		return domain.TradeResult{}, valErr
	}
	if !haveRes {
		return domain.TradeResult{}, retryErr
	}
	return result, nil
}

// validate rejects malformed opportunities before any network call. These are
// caller errors, not trade outcomes.
func (e *Executor) validate(opp domain.TradeOpportunity) error {
	if opp.AmountIn <= 0 {
		return fmt.Errorf("executor: %w: amount_in %v", domain.ErrInvalidTrade, opp.AmountIn)
	}
	if opp.TokenIn == opp.TokenOut {
		return fmt.Errorf("executor: %w: token_in equals token_out %s", domain.ErrInvalidTrade, opp.TokenIn)
	}
	if e.signerPubkey == "" {
		return fmt.Errorf("executor: %w: no signer configured", domain.ErrInvalidTrade)
	}
	if pool, ok := e.pools.Get(opp.PoolID); ok {
		if !pool.HasLiquidity() || pool.LiquidityA+pool.LiquidityB < e.cfg.MinLiquidity {
			return fmt.Errorf("executor: %w: pool %s", domain.ErrLiquidityTooLow, opp.PoolID)
		}
	}
	return nil
}

// fetchQuote obtains a fresh quote under the shared retry policy.
func (e *Executor) fetchQuote(ctx context.Context, opp domain.TradeOpportunity) (domain.Quote, error) {
	slippageBps := e.slippageFor(opp.PoolID)
	return retry.DoValue(ctx, e.cfg.RetryPolicy, func(ctx context.Context) (domain.Quote, error) {
		q, err := e.quoter.Quote(ctx, opp.TokenIn, opp.TokenOut, opp.AmountIn, slippageBps)
		if err != nil {
			return domain.Quote{}, fmt.Errorf("%w: %v", domain.ErrQuoteFailed, err)
		}
		return q, nil
	})
}

// slippageFor widens the slippage tolerance to the configured maximum for
// thin pools. Unknown pools get the default.
func (e *Executor) slippageFor(poolID string) int {
	if pool, ok := e.pools.Get(poolID); ok {
		if pool.LiquidityA+pool.LiquidityB < thinPoolLiquidity {
			return e.cfg.MaxSlippageBps
		}
	}
	return e.cfg.SlippageBps
}

// syntheticQuote degrades the stale detector estimate into a tagged quote.
func (e *Executor) syntheticQuote(opp domain.TradeOpportunity) domain.Quote {
	return domain.Quote{
		TokenIn:     opp.TokenIn,
		TokenOut:    opp.TokenOut,
		InAmount:    opp.AmountIn,
		OutAmount:   opp.ExpectedAmountOut,
		SlippageBps: e.slippageFor(opp.PoolID),
		Source:      domain.QuoteSourceSynthetic,
	}
}

// verify applies the pre-swap gates to a fresh quote: only live quotes whose
// profit clears both the absolute floor and the decayed share of the original
// estimate may execute.
func (e *Executor) verify(opp domain.TradeOpportunity, q domain.Quote) (string, bool) {
	if q.Source != domain.QuoteSourceReal {
		return "synthetic quote is not executable", false
	}
	profit := q.Profit()
	if profit < e.cfg.MinProfitThreshold {
		return fmt.Sprintf("quoted profit %.6f below threshold %.6f", profit, e.cfg.MinProfitThreshold), false
	}
	if floor := opp.ExpectedProfit * e.cfg.ProfitDecayFactor; profit < floor {
		return fmt.Sprintf("quoted profit %.6f decayed below %.6f (%.0f%% of estimate)",
			profit, floor, e.cfg.ProfitDecayFactor*100), false
	}
	return "", true
}

// record appends the outcome to the trade history and fires notifications.
// Both are best-effort; failures are logged and do not alter the result.
func (e *Executor) record(ctx context.Context, opp domain.TradeOpportunity, result domain.TradeResult) {
	if e.history != nil {
		rec := domain.TradeRecord{
			ID:         uuid.New().String(),
			PoolID:     opp.PoolID,
			TokenIn:    opp.TokenIn,
			TokenOut:   opp.TokenOut,
			Result:     result,
			ExecutedAt: time.Now().UTC(),
		}
		if err := e.history.Append(ctx, rec); err != nil {
			e.logger.Warn("trade history append failed", slog.Any("error", err))
		}
	}

	if e.notify != nil {
		event, title := "trade_failed", "Trade failed"
		if result.Success {
			event, title = "trade_executed", "Trade executed"
		}
		msg := fmt.Sprintf("pool %s: in %.4f out %.4f profit %.6f",
			opp.PoolID, result.AmountIn, result.AmountOut, result.ActualProfit)
		if result.Error != "" {
			msg += " (" + result.Error + ")"
		}
		if err := e.notify.Notify(ctx, event, title, msg); err != nil {
			e.logger.Warn("notification failed", slog.Any("error", err))
		}
	}
}

// Run consumes opportunities from oppCh until the context is cancelled,
// draining anything already buffered before returning. Validation errors are
// logged and skipped; they indicate a detector bug, not a trading condition.
func (e *Executor) Run(ctx context.Context, oppCh <-chan domain.TradeOpportunity) error {
	e.logger.Info("executor started")
	defer e.logger.Info("executor stopped")

	cleanupTicker := time.NewTicker(e.cleanupInterval)
	defer cleanupTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.drain(oppCh)
			return nil

		case opp, ok := <-oppCh:
			if !ok {
				return nil
			}
			e.process(ctx, opp)

		case <-cleanupTicker.C:
			e.cooldown.Cleanup()
		}
	}
}

// process handles one queued opportunity, applying the per-pool cooldown.
func (e *Executor) process(ctx context.Context, opp domain.TradeOpportunity) {
	log := e.logger.With(slog.String("pool_id", opp.PoolID))

	if e.cooldown.ShouldSkip(opp.PoolID) {
		log.Debug("pool on cooldown, skipping")
		return
	}

	result, err := e.Execute(ctx, opp)
	if err != nil {
		if errors.Is(err, domain.ErrLiquidityTooLow) {
			log.Debug("pool below liquidity floor, skipping")
			return
		}
		log.Error("invalid opportunity from detector", slog.Any("error", err))
		return
	}

	if !result.Success {
		log.Warn("trade not executed", slog.String("reason", result.Error))
	}
}

// drain executes opportunities already buffered in the channel after
// shutdown, each under a short-lived context so the process can exit.
func (e *Executor) drain(oppCh <-chan domain.TradeOpportunity) {
	for {
		select {
		case opp, ok := <-oppCh:
			if !ok {
				return
			}
			e.logger.Warn("draining opportunity after shutdown", slog.String("pool_id", opp.PoolID))
			drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			e.process(drainCtx, opp)
			cancel()
		default:
			return
		}
	}
}
