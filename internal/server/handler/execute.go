package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"solsniper/internal/domain"
	"solsniper/internal/solana"
)

// TradeExecutor is the slice of the executor the manual-execution endpoint
// needs.
type TradeExecutor interface {
	Execute(ctx context.Context, opp domain.TradeOpportunity) (domain.TradeResult, error)
}

// ExecuteHandler serves manual trade execution for operators.
type ExecuteHandler struct {
	executor TradeExecutor
	logger   *slog.Logger
}

// NewExecuteHandler creates an ExecuteHandler.
func NewExecuteHandler(executor TradeExecutor, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{executor: executor, logger: logHandler(logger, "execute")}
}

// executeRequest is the manual execution request body. token_in defaults to
// wrapped SOL when omitted.
type executeRequest struct {
	PoolID   string  `json:"pool_id"`
	TokenIn  string  `json:"token_in"`
	TokenOut string  `json:"token_out"`
	AmountIn float64 `json:"amount_in"`
}

// Execute runs one trade through the full validation and execution pipeline.
// Invalid parameters yield 400; an attempted trade always yields 200 with
// the result body, whether or not the swap succeeded.
// POST /api/execute
func (h *ExecuteHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if req.TokenIn == "" {
		req.TokenIn = solana.WrappedSOLMint
	}
	if req.TokenOut == "" {
		writeError(w, http.StatusBadRequest, "token_out is required")
		return
	}

	opp := domain.TradeOpportunity{
		PoolID:   req.PoolID,
		TokenIn:  req.TokenIn,
		TokenOut: req.TokenOut,
		AmountIn: req.AmountIn,
	}

	result, err := h.executor.Execute(r.Context(), opp)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidTrade) || errors.Is(err, domain.ErrLiquidityTooLow) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("manual execution failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "execution failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}
