package domain

import "time"

// PoolState is the latest known state of one liquidity pool as reported by a
// single data source. Pools are keyed by (Source, PoolID); the same on-chain
// pool reported by two sources is stored as two independent entries and merged
// at read time.
type PoolState struct {
	PoolID      string    `json:"pool_id"`
	Source      string    `json:"source"`
	TokenA      string    `json:"token_a"`
	TokenB      string    `json:"token_b"`
	LiquidityA  float64   `json:"liquidity_a"`
	LiquidityB  float64   `json:"liquidity_b"`
	Price       float64   `json:"price"`
	Volume24h   float64   `json:"volume_24h"`
	LastUpdated time.Time `json:"last_updated"`
}

// HasLiquidity reports whether both sides of the pool hold a strictly
// positive balance. Pools that fail this are never tradeable.
func (p PoolState) HasLiquidity() bool {
	return p.LiquidityA > 0 && p.LiquidityB > 0
}
