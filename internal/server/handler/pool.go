package handler

import (
	"net/http"
	"sort"

	"solsniper/internal/state"
)

// PoolHandler serves pool snapshot endpoints.
type PoolHandler struct {
	pools *state.PoolStore
}

// NewPoolHandler creates a PoolHandler over the shared pool store.
func NewPoolHandler(pools *state.PoolStore) *PoolHandler {
	return &PoolHandler{pools: pools}
}

// ListPools responds with the current merged pool snapshot, ordered by pool
// id for stable output.
// GET /api/pools
func (h *PoolHandler) ListPools(w http.ResponseWriter, r *http.Request) {
	snapshot := h.pools.Snapshot()
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].PoolID < snapshot[j].PoolID })

	limit := parseLimit(r)
	if len(snapshot) > limit {
		snapshot = snapshot[:limit]
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"pools": snapshot,
		"count": len(snapshot),
	})
}

// GetPool responds with the freshest known state of one pool.
// GET /api/pools/{id}
func (h *PoolHandler) GetPool(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pool, ok := h.pools.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "pool not found: "+id)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}
