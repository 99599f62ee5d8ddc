package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidTrade    = errors.New("invalid trade parameters")
	ErrLiquidityTooLow = errors.New("pool liquidity below floor")
	ErrQuoteFailed     = errors.New("quote request failed")
	ErrSwapFailed      = errors.New("swap execution failed")
	ErrWSDisconnect    = errors.New("websocket disconnected")
)
