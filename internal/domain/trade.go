package domain

import "time"

// TradeResult is the outcome of one execution attempt. Invariant:
// Success == true iff Signature is set and Error is empty. A rejected trade
// (failed re-verification, decayed profit, synthetic quote) is a TradeResult
// with Success == false, not a Go error.
type TradeResult struct {
	Success      bool        `json:"success"`
	Signature    string      `json:"signature,omitempty"`
	AmountIn     float64     `json:"amount_in"`
	AmountOut    float64     `json:"amount_out"`
	ActualProfit float64     `json:"actual_profit"`
	QuoteSource  QuoteSource `json:"quote_source,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// TradeRecord is a TradeResult enriched for the append-only trade history.
type TradeRecord struct {
	ID         string      `json:"id"`
	PoolID     string      `json:"pool_id"`
	TokenIn    string      `json:"token_in"`
	TokenOut   string      `json:"token_out"`
	Result     TradeResult `json:"result"`
	ExecutedAt time.Time   `json:"executed_at"`
}
