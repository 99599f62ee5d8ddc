package detector

import "solsniper/internal/domain"

// Estimator predicts the profit, in SOL, of sniping a pool with the
// configured trade size.
type Estimator interface {
	Estimate(pool domain.PoolState) float64
}

// DepthEdge estimates profit as a fixed fraction of combined pool depth: a
// deeper pool absorbs the entry with less slippage, leaving more of the edge
// intact. EdgeRatio 0.01 values a pool holding 10 units total at 0.1 SOL.
type DepthEdge struct {
	EdgeRatio float64
}

// Estimate returns EdgeRatio times the combined liquidity of both sides.
func (e DepthEdge) Estimate(pool domain.PoolState) float64 {
	return e.EdgeRatio * (pool.LiquidityA + pool.LiquidityB)
}
