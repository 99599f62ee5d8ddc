package domain

import "time"

// TradeOpportunity is a derived, ephemeral trade recommendation produced by
// one detection cycle. It carries no identity beyond its fields: two cycles
// over identical pool state emit equivalent but independent records.
// ExpectedProfit reflects pool state as of Timestamp only; it must be
// re-verified against a fresh quote before execution.
type TradeOpportunity struct {
	PoolID            string    `json:"pool_id"`
	TokenIn           string    `json:"token_in"`
	TokenOut          string    `json:"token_out"`
	AmountIn          float64   `json:"amount_in"`
	ExpectedAmountOut float64   `json:"expected_amount_out"`
	ExpectedProfit    float64   `json:"expected_profit"`
	Timestamp         time.Time `json:"timestamp"`
}
