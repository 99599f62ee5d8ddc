package handler

import (
	"net/http"

	"solsniper/internal/state"
)

// OpportunityHandler serves the latest detection results.
type OpportunityHandler struct {
	opps *state.OpportunityStore
}

// NewOpportunityHandler creates an OpportunityHandler over the shared store.
func NewOpportunityHandler(opps *state.OpportunityStore) *OpportunityHandler {
	return &OpportunityHandler{opps: opps}
}

// ListOpportunities responds with the most recent detection cycle's full
// opportunity set.
// GET /api/opportunities
func (h *OpportunityHandler) ListOpportunities(w http.ResponseWriter, r *http.Request) {
	opps := h.opps.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"opportunities": opps,
		"count":         len(opps),
	})
}
