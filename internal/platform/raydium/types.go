package raydium

import (
	"time"

	"solsniper/internal/domain"
)

// APIPair is one AMM pair as returned by the Raydium pairs endpoint.
type APIPair struct {
	AmmID           string  `json:"amm_id"`
	Name            string  `json:"name"`
	BaseMint        string  `json:"base_mint"`
	QuoteMint       string  `json:"quote_mint"`
	TokenAmountPc   float64 `json:"token_amount_pc"`
	TokenAmountLp   float64 `json:"token_amount_lp"`
	TokenAmountCoin float64 `json:"token_amount_coin"`
	Price           float64 `json:"price"`
	Volume24h       float64 `json:"volume_24h"`
	Liquidity       float64 `json:"liquidity"`
}

// ToDomainPool converts an API pair to the domain pool state. The observation
// timestamp is assigned by the caller so that one fetch produces one
// consistent snapshot time.
func (p APIPair) ToDomainPool(at time.Time) domain.PoolState {
	return domain.PoolState{
		PoolID:      p.AmmID,
		Source:      SourceName,
		TokenA:      p.BaseMint,
		TokenB:      p.QuoteMint,
		LiquidityA:  p.TokenAmountCoin,
		LiquidityB:  p.TokenAmountPc,
		Price:       p.Price,
		Volume24h:   p.Volume24h,
		LastUpdated: at,
	}
}
