// ABOUTME: In-memory claim store for single-process deployments and tests.
// ABOUTME: Mutex-guarded map with per-entry deadlines and a background sweeper.

package claims

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map. Entries carry their
// own deadline; a background goroutine periodically sweeps expired ones so
// abandoned claims do not accumulate.
type MemoryStore struct {
	mu     sync.Mutex
	byOp   map[int64]*Claim
	done   chan struct{}
	closed bool
}

// NewMemoryStore creates an in-memory claim store and starts its sweeper.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		byOp: make(map[int64]*Claim),
		done: make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Put stores the claim, replacing any prior claim for the same operator.
func (s *MemoryStore) Put(_ context.Context, claim *Claim, ttl time.Duration) error {
	c := *claim
	if c.ExpiresAt.IsZero() {
		c.ExpiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.byOp[claim.OperatorID] = &c
	return nil
}

// Take removes and returns the operator's claim, or nil when absent.
// Expired entries that the sweeper has not reached yet are dropped here.
func (s *MemoryStore) Take(_ context.Context, operatorID int64) (*Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.byOp[operatorID]
	if !ok {
		return nil, nil
	}
	delete(s.byOp, operatorID)

	if c.Expired(time.Now()) {
		return nil, nil
	}
	return c, nil
}

// sweep runs in a background goroutine, periodically removing expired claims.
func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.done:
			return
		}
	}
}

// runSweep removes all expired claims from the map.
func (s *MemoryStore) runSweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for op, c := range s.byOp {
		if c.Expired(now) {
			delete(s.byOp, op)
		}
	}
}

// Close stops the background sweeper. It is safe to call multiple times.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
	return nil
}
