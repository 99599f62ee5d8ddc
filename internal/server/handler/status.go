package handler

import (
	"net/http"

	"solsniper/internal/state"
)

// StatusHandler serves the bot's runtime status for dashboards.
type StatusHandler struct {
	mode        string
	autoExecute bool
	pools       *state.PoolStore
	opps        *state.OpportunityStore
}

// NewStatusHandler creates a StatusHandler over the shared stores.
func NewStatusHandler(mode string, autoExecute bool, pools *state.PoolStore, opps *state.OpportunityStore) *StatusHandler {
	return &StatusHandler{
		mode:        mode,
		autoExecute: autoExecute,
		pools:       pools,
		opps:        opps,
	}
}

// GetStatus responds with the current mode and store sizes.
// GET /api/status
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"mode":          h.mode,
		"auto_execute":  h.autoExecute,
		"pools":         h.pools.Len(),
		"opportunities": h.opps.Len(),
	})
}
