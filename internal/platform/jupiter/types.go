package jupiter

import (
	"strconv"

	"solsniper/internal/domain"
	"solsniper/internal/solana"
)

// QuoteResponse mirrors the aggregator's /v6/quote payload. Amount fields are
// decimal strings denominated in base units (lamports for SOL).
type QuoteResponse struct {
	InputMint            string `json:"inputMint"`
	InAmount             string `json:"inAmount"`
	OutputMint           string `json:"outputMint"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	SwapMode             string `json:"swapMode"`
	SlippageBps          int    `json:"slippageBps"`
	PriceImpactPct       string `json:"priceImpactPct"`
}

// swapRequest is the body for /v6/swap.
type swapRequest struct {
	QuoteResponse    QuoteResponse `json:"quoteResponse"`
	UserPublicKey    string        `json:"userPublicKey"`
	WrapAndUnwrapSol bool          `json:"wrapAndUnwrapSol"`
}

// swapResponse carries the opaque execution receipt.
type swapResponse struct {
	Signature string `json:"signature"`
	Txid      string `json:"txid"`
}

// errorResponse is the aggregator's error envelope.
type errorResponse struct {
	Error string `json:"error"`
}

// ToDomainQuote converts the wire quote to the domain representation, scaling
// base units back to whole tokens.
func (q QuoteResponse) ToDomainQuote() domain.Quote {
	return domain.Quote{
		TokenIn:              q.InputMint,
		TokenOut:             q.OutputMint,
		InAmount:             solana.FromLamports(parseUint(q.InAmount)),
		OutAmount:            solana.FromLamports(parseUint(q.OutAmount)),
		OtherAmountThreshold: solana.FromLamports(parseUint(q.OtherAmountThreshold)),
		PriceImpactPct:       parseFloat(q.PriceImpactPct),
		SlippageBps:          q.SlippageBps,
		Source:               domain.QuoteSourceReal,
	}
}

// fromDomainQuote rebuilds the wire quote the /v6/swap endpoint expects.
func fromDomainQuote(q domain.Quote) QuoteResponse {
	return QuoteResponse{
		InputMint:            q.TokenIn,
		InAmount:             formatLamports(q.InAmount),
		OutputMint:           q.TokenOut,
		OutAmount:            formatLamports(q.OutAmount),
		OtherAmountThreshold: formatLamports(q.OtherAmountThreshold),
		SwapMode:             "ExactIn",
		SlippageBps:          q.SlippageBps,
		PriceImpactPct:       strconv.FormatFloat(q.PriceImpactPct, 'f', -1, 64),
	}
}

func parseUint(s string) uint64 {
	n, _ := strconv.ParseUint(s, 10, 64)
	return n
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func formatLamports(amount float64) string {
	return strconv.FormatUint(solana.ToLamports(amount), 10)
}
