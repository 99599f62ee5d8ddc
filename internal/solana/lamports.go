// Package solana holds small Solana-specific helpers: base-unit conversion
// and address validation shared by the aggregator client, wallet, and
// executor.
package solana

import "fmt"

// LamportsPerSol is the fixed base-unit scale for SOL amounts.
const LamportsPerSol = 1e9

// ToLamports converts a SOL amount to integer lamports, truncating any
// sub-lamport fraction.
func ToLamports(sol float64) uint64 {
	if sol <= 0 {
		return 0
	}
	return uint64(sol * LamportsPerSol)
}

// FromLamports converts integer lamports to a SOL amount.
func FromLamports(lamports uint64) float64 {
	return float64(lamports) / LamportsPerSol
}

// FormatSol renders a lamport amount as a human-readable SOL string.
func FormatSol(lamports uint64) string {
	return fmt.Sprintf("%.4f SOL", FromLamports(lamports))
}

// SlippageAmount returns the absolute amount given up at the configured
// slippage, where slippage is expressed in basis points.
func SlippageAmount(amount float64, slippageBps int) float64 {
	return amount * float64(slippageBps) / 10000
}

// PriceImpactPct estimates the percentage price impact of trading amountIn
// against a pool holding liquidity units of the input token. An empty pool
// yields 100%.
func PriceImpactPct(amountIn, liquidity float64) float64 {
	if liquidity <= 0 {
		return 100
	}
	return amountIn / liquidity * 100
}

// ProfitPct returns the profit of a round trip as a percentage of the input
// amount. A non-positive input yields 0.
func ProfitPct(amountIn, amountOut float64) float64 {
	if amountIn <= 0 {
		return 0
	}
	return (amountOut - amountIn) / amountIn * 100
}
