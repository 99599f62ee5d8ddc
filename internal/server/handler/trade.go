package handler

import (
	"log/slog"
	"net/http"

	"solsniper/internal/domain"
)

// TradeHandler serves the trade history.
type TradeHandler struct {
	history domain.TradeHistoryStore
	logger  *slog.Logger
}

// NewTradeHandler creates a TradeHandler over the given history store.
func NewTradeHandler(history domain.TradeHistoryStore, logger *slog.Logger) *TradeHandler {
	return &TradeHandler{history: history, logger: logHandler(logger, "trades")}
}

// ListTrades responds with the most recent trade records, newest first.
// GET /api/trades?limit=N
func (h *TradeHandler) ListTrades(w http.ResponseWriter, r *http.Request) {
	recs, err := h.history.ListRecent(r.Context(), parseLimit(r))
	if err != nil {
		h.logger.Error("list trades failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, "failed to list trades")
		return
	}
	if recs == nil {
		recs = []domain.TradeRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"trades": recs,
		"count":  len(recs),
	})
}
