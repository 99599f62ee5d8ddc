package solana

import "github.com/mr-tron/base58"

// WrappedSOLMint is the canonical wrapped-SOL mint address used as the input
// side of every sniper trade.
const WrappedSOLMint = "So11111111111111111111111111111111111111112"

// addressLen is the decoded length of a Solana public key in bytes.
const addressLen = 32

// IsValidAddress reports whether s is a well-formed base58-encoded Solana
// public key. It checks the plausible encoded length first to avoid decoding
// obviously malformed input.
func IsValidAddress(s string) bool {
	if len(s) < 32 || len(s) > 44 {
		return false
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(raw) == addressLen
}
