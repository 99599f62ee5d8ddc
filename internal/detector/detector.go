// Package detector turns pool snapshots into trade opportunities. Each cycle
// is a pure function of the snapshot it is given: same pools in, same
// opportunities out.
package detector

import (
	"log/slog"
	"sort"
	"time"

	"solsniper/internal/domain"
	"solsniper/internal/solana"
)

// Detector screens pools and estimates profit for the ones that qualify.
type Detector struct {
	predicate Predicate
	estimator Estimator

	tradeAmount float64
	minProfit   float64

	logger *slog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Detector. tradeAmount is the fixed SOL entry size carried on
// every emitted opportunity; minProfit is the estimated-profit floor below
// which pools are dropped.
func New(predicate Predicate, estimator Estimator, tradeAmount, minProfit float64, logger *slog.Logger) *Detector {
	return &Detector{
		predicate:   predicate,
		estimator:   estimator,
		tradeAmount: tradeAmount,
		minProfit:   minProfit,
		logger:      logger.With(slog.String("component", "detector")),
		now:         time.Now,
	}
}

// DetectCycle evaluates every pool in the snapshot and returns the
// opportunities that pass all gates, ordered by pool id. Pools with an empty
// side never qualify regardless of the predicate.
func (d *Detector) DetectCycle(pools []domain.PoolState) []domain.TradeOpportunity {
	at := d.now()
	opps := make([]domain.TradeOpportunity, 0)

	for _, pool := range pools {
		if !pool.HasLiquidity() {
			continue
		}
		if !d.predicate.Evaluate(pool) {
			continue
		}

		profit := d.estimator.Estimate(pool)
		if profit < d.minProfit {
			continue
		}

		opps = append(opps, domain.TradeOpportunity{
			PoolID:            pool.PoolID,
			TokenIn:           solana.WrappedSOLMint,
			TokenOut:          targetToken(pool),
			AmountIn:          d.tradeAmount,
			ExpectedAmountOut: d.tradeAmount + profit,
			ExpectedProfit:    profit,
			Timestamp:         at,
		})

		d.logger.Debug("opportunity found",
			slog.String("pool_id", pool.PoolID),
			slog.Float64("expected_profit", profit),
		)
	}

	sort.Slice(opps, func(i, j int) bool { return opps[i].PoolID < opps[j].PoolID })
	return opps
}

// targetToken picks the non-SOL side of the pool as the token to acquire.
// For pools that pair two non-SOL tokens, side A is bought.
func targetToken(pool domain.PoolState) string {
	if pool.TokenA == solana.WrappedSOLMint {
		return pool.TokenB
	}
	return pool.TokenA
}
