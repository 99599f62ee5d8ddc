package state

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solsniper/internal/domain"
)

func makePools(n int, price float64, ts time.Time) []domain.PoolState {
	pools := make([]domain.PoolState, n)
	for i := range pools {
		pools[i] = domain.PoolState{
			PoolID:      fmt.Sprintf("pool-%d", i),
			TokenA:      fmt.Sprintf("mint-%d", i),
			TokenB:      "So11111111111111111111111111111111111111112",
			LiquidityA:  100,
			LiquidityB:  100,
			Price:       price,
			LastUpdated: ts,
		}
	}
	return pools
}

func TestReplaceSourceAndSnapshot(t *testing.T) {
	s := NewPoolStore()
	now := time.Now().UTC()

	s.ReplaceSource("raydium", makePools(3, 1.0, now))
	snap := s.Snapshot()
	require.Len(t, snap, 3)
	for _, p := range snap {
		assert.Equal(t, "raydium", p.Source)
	}
}

func TestReplaceSourceDropsStalePools(t *testing.T) {
	s := NewPoolStore()
	now := time.Now().UTC()

	s.ReplaceSource("raydium", makePools(5, 1.0, now))
	s.ReplaceSource("raydium", makePools(2, 2.0, now.Add(time.Second)))

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	for _, p := range snap {
		assert.Equal(t, 2.0, p.Price)
	}
}

func TestLastUpdatedNeverRegresses(t *testing.T) {
	s := NewPoolStore()
	now := time.Now().UTC()

	s.ReplaceSource("raydium", makePools(1, 1.0, now))
	// A refresh carrying an older timestamp must not overwrite the pool.
	s.ReplaceSource("raydium", makePools(1, 9.0, now.Add(-time.Minute)))

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 1.0, snap[0].Price)
	assert.Equal(t, now, snap[0].LastUpdated)
}

func TestUpsertMonotonic(t *testing.T) {
	s := NewPoolStore()
	now := time.Now().UTC()

	fresh := domain.PoolState{PoolID: "p", Source: "geyser", Price: 2.0, LastUpdated: now}
	stale := domain.PoolState{PoolID: "p", Source: "geyser", Price: 1.0, LastUpdated: now.Add(-time.Second)}

	s.Upsert(fresh)
	s.Upsert(stale)

	snap := s.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, 2.0, snap[0].Price)
}

func TestSnapshotMergesFreshestAcrossSources(t *testing.T) {
	s := NewPoolStore()
	now := time.Now().UTC()

	s.ReplaceSource("raydium", []domain.PoolState{
		{PoolID: "shared", Price: 1.0, LastUpdated: now},
		{PoolID: "ray-only", Price: 5.0, LastUpdated: now},
	})
	s.ReplaceSource("orca", []domain.PoolState{
		{PoolID: "shared", Price: 2.0, LastUpdated: now.Add(time.Second)},
	})

	snap := s.Snapshot()
	require.Len(t, snap, 2)

	byID := make(map[string]domain.PoolState)
	for _, p := range snap {
		byID[p.PoolID] = p
	}
	assert.Equal(t, 2.0, byID["shared"].Price)
	assert.Equal(t, "orca", byID["shared"].Source)
	assert.Equal(t, 5.0, byID["ray-only"].Price)
}

// Every snapshot taken during concurrent full replaces must come from exactly
// one completed replace: all entries share that cycle's price marker.
func TestSnapshotAtomicityUnderConcurrentReplace(t *testing.T) {
	s := NewPoolStore()
	base := time.Now().UTC()
	const cycles = 200

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 1; i <= cycles; i++ {
			s.ReplaceSource("raydium", makePools(10, float64(i), base.Add(time.Duration(i)*time.Millisecond)))
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer wg.Done()
		for i := 0; i < cycles; i++ {
			snap := s.Snapshot()
			if len(snap) == 0 {
				continue
			}
			marker := snap[0].Price
			for _, p := range snap {
				if p.Price != marker {
					select {
					case errCh <- fmt.Errorf("interleaved snapshot: %v vs %v", marker, p.Price):
					default:
					}
					return
				}
			}
		}
	}()

	wg.Wait()
	select {
	case err := <-errCh:
		t.Fatal(err)
	default:
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewPoolStore()
	s.ReplaceSource("raydium", makePools(1, 1.0, time.Now().UTC()))

	snap := s.Snapshot()
	snap[0].Price = 99

	assert.Equal(t, 1.0, s.Snapshot()[0].Price)
}
