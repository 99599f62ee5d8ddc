package domain

// QuoteSource distinguishes quotes obtained from the live aggregator from
// quotes synthesized locally after the aggregator was unreachable. Synthetic
// quotes are informational only and are never eligible for execution.
type QuoteSource string

const (
	QuoteSourceReal      QuoteSource = "real"
	QuoteSourceSynthetic QuoteSource = "synthetic"
)

// Quote is a point-in-time price estimate for a prospective swap. Amounts are
// expressed in whole tokens (SOL-denominated for the input side); the
// aggregator client owns the base-unit (lamports) conversion.
type Quote struct {
	TokenIn              string      `json:"token_in"`
	TokenOut             string      `json:"token_out"`
	InAmount             float64     `json:"in_amount"`
	OutAmount            float64     `json:"out_amount"`
	OtherAmountThreshold float64     `json:"other_amount_threshold"`
	PriceImpactPct       float64     `json:"price_impact_pct"`
	SlippageBps          int         `json:"slippage_bps"`
	Source               QuoteSource `json:"source"`
}

// Profit returns the quoted out-minus-in difference.
func (q Quote) Profit() float64 {
	return q.OutAmount - q.InAmount
}
