// Package state holds the pipeline's shared in-memory containers. Both
// stores expose only atomic snapshot-read and snapshot-replace operations;
// callers never mutate stored entries in place, which keeps the concurrency
// contract limited to a single RWMutex per store.
package state

import (
	"sync"

	"solsniper/internal/domain"
)

// PoolStore holds the latest known state of every liquidity pool, keyed by
// (source, pool id). Each poller owns its source's slice of the store and
// replaces it wholesale; readers get a merged snapshot with the freshest
// entry per pool id.
type PoolStore struct {
	mu       sync.RWMutex
	bySource map[string]map[string]domain.PoolState
}

// NewPoolStore creates an empty PoolStore.
func NewPoolStore() *PoolStore {
	return &PoolStore{bySource: make(map[string]map[string]domain.PoolState)}
}

// ReplaceSource atomically replaces every pool reported by source with the
// given list. Entries whose LastUpdated would regress a strictly newer stored
// value for the same pool are kept at the stored state instead.
func (s *PoolStore) ReplaceSource(source string, pools []domain.PoolState) {
	next := make(map[string]domain.PoolState, len(pools))

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.bySource[source]
	for _, p := range pools {
		p.Source = source
		if old, ok := prev[p.PoolID]; ok && p.LastUpdated.Before(old.LastUpdated) {
			p = old
		}
		next[p.PoolID] = p
	}
	s.bySource[source] = next
}

// Upsert stores a single pushed pool update for its source, subject to the
// same LastUpdated monotonicity rule as ReplaceSource.
func (s *PoolStore) Upsert(pool domain.PoolState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pools := s.bySource[pool.Source]
	if pools == nil {
		pools = make(map[string]domain.PoolState)
		s.bySource[pool.Source] = pools
	}
	if old, ok := pools[pool.PoolID]; ok && pool.LastUpdated.Before(old.LastUpdated) {
		return
	}
	pools[pool.PoolID] = pool
}

// Snapshot returns a point-in-time copy of the store merged across sources:
// when two sources report the same pool id, the entry with the freshest
// LastUpdated wins. Order is unspecified.
func (s *PoolStore) Snapshot() []domain.PoolState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make(map[string]domain.PoolState)
	for _, pools := range s.bySource {
		for id, p := range pools {
			if cur, ok := merged[id]; !ok || p.LastUpdated.After(cur.LastUpdated) {
				merged[id] = p
			}
		}
	}

	out := make([]domain.PoolState, 0, len(merged))
	for _, p := range merged {
		out = append(out, p)
	}
	return out
}

// Get returns the freshest entry for one pool id across all sources.
func (s *PoolStore) Get(poolID string) (domain.PoolState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var best domain.PoolState
	found := false
	for _, pools := range s.bySource {
		if p, ok := pools[poolID]; ok {
			if !found || p.LastUpdated.After(best.LastUpdated) {
				best = p
				found = true
			}
		}
	}
	return best, found
}

// Len returns the number of distinct pool ids currently visible.
func (s *PoolStore) Len() int {
	return len(s.Snapshot())
}
