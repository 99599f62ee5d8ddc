package state

import (
	"sync"

	"solsniper/internal/domain"
)

// OpportunityStore holds the opportunity set from the latest detection cycle.
// Each cycle replaces the whole set; opportunities from a superseded cycle
// are never visible alongside the current one.
type OpportunityStore struct {
	mu   sync.RWMutex
	opps []domain.TradeOpportunity
}

// NewOpportunityStore creates an empty OpportunityStore.
func NewOpportunityStore() *OpportunityStore {
	return &OpportunityStore{}
}

// Replace atomically swaps the stored set for opps. The store keeps its own
// copy, so the caller may reuse the slice.
func (s *OpportunityStore) Replace(opps []domain.TradeOpportunity) {
	cp := make([]domain.TradeOpportunity, len(opps))
	copy(cp, opps)

	s.mu.Lock()
	s.opps = cp
	s.mu.Unlock()
}

// Snapshot returns a copy of the current opportunity set.
func (s *OpportunityStore) Snapshot() []domain.TradeOpportunity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TradeOpportunity, len(s.opps))
	copy(out, s.opps)
	return out
}

// Len returns the size of the current set.
func (s *OpportunityStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.opps)
}
