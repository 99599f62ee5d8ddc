package solana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLamportsRoundTrip(t *testing.T) {
	assert.Equal(t, uint64(1_000_000_000), ToLamports(1.0))
	assert.Equal(t, uint64(500_000_000), ToLamports(0.5))
	assert.Equal(t, uint64(0), ToLamports(-1))
	assert.InDelta(t, 0.5, FromLamports(500_000_000), 1e-12)
}

func TestFormatSol(t *testing.T) {
	assert.Equal(t, "1.0000 SOL", FormatSol(1_000_000_000))
	assert.Equal(t, "0.5000 SOL", FormatSol(500_000_000))
}

func TestSlippageAmount(t *testing.T) {
	assert.InDelta(t, 0.5, SlippageAmount(100, 50), 1e-9)  // 50 bps
	assert.InDelta(t, 1.0, SlippageAmount(100, 100), 1e-9) // 1%
}

func TestPriceImpactPct(t *testing.T) {
	assert.InDelta(t, 10.0, PriceImpactPct(10, 100), 1e-9)
	assert.InDelta(t, 100.0, PriceImpactPct(10, 0), 1e-9)
}

func TestProfitPct(t *testing.T) {
	assert.InDelta(t, 10.0, ProfitPct(100, 110), 1e-9)
	assert.InDelta(t, -10.0, ProfitPct(100, 90), 1e-9)
	assert.Zero(t, ProfitPct(0, 10))
}

func TestIsValidAddress(t *testing.T) {
	tests := []struct {
		name string
		addr string
		want bool
	}{
		{"wrapped sol mint", "So11111111111111111111111111111111111111112", true},
		{"typical pubkey", "4k3Dyjzvzp8eMZWUXbBCjEvwSkkk59S5iCNLY3QrkX6R", true},
		{"too short", "invalid", false},
		{"empty", "", false},
		{"bad alphabet", "0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl0OIl", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAddress(tt.addr))
		})
	}
}
