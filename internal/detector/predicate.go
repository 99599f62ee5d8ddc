package detector

import (
	"time"

	"solsniper/internal/domain"
)

// Predicate decides whether a pool is worth trading at all. The detection
// cycle only estimates profit for pools that pass.
type Predicate interface {
	Evaluate(pool domain.PoolState) bool
}

// HeuristicPredicate is the default gate: a pool qualifies when it carries
// enough liquidity, shows real volume, and was observed recently. It stands
// in for a trained model; a learned predicate can replace it without touching
// the detection cycle.
type HeuristicPredicate struct {
	MinLiquidity float64
	MinVolume24h float64
	MaxAge       time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewHeuristicPredicate builds the default predicate. A non-positive maxAge
// disables the freshness check.
func NewHeuristicPredicate(minLiquidity, minVolume24h float64, maxAge time.Duration) *HeuristicPredicate {
	return &HeuristicPredicate{
		MinLiquidity: minLiquidity,
		MinVolume24h: minVolume24h,
		MaxAge:       maxAge,
		now:          time.Now,
	}
}

// Evaluate applies the liquidity, volume, and freshness gates.
func (h *HeuristicPredicate) Evaluate(pool domain.PoolState) bool {
	if pool.LiquidityA+pool.LiquidityB < h.MinLiquidity {
		return false
	}
	if pool.Volume24h < h.MinVolume24h {
		return false
	}
	if h.MaxAge > 0 && h.now().Sub(pool.LastUpdated) > h.MaxAge {
		return false
	}
	return true
}
