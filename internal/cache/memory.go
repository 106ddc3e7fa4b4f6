package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	orderID uint64
	expires time.Time
}

// MemoryPendingOrders is the single-instance PendingOrders.
type MemoryPendingOrders struct {
	mu  sync.Mutex
	m   map[string]entry
	ttl time.Duration
	now func() time.Time
}

func NewMemoryPendingOrders(ttl time.Duration) *MemoryPendingOrders {
	return &MemoryPendingOrders{m: make(map[string]entry), ttl: ttl, now: time.Now}
}

func (s *MemoryPendingOrders) Put(_ context.Context, sessionID string, orderID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.m[sessionID] = entry{orderID: orderID, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryPendingOrders) Get(_ context.Context, sessionID string) (uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.m[sessionID]
	if !ok || !s.now().Before(e.expires) {
		return 0, false, nil
	}
	return e.orderID, true, nil
}

func (s *MemoryPendingOrders) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, sessionID)
	return nil
}

// sweep drops expired entries. Caller holds mu.
func (s *MemoryPendingOrders) sweep() {
	now := s.now()
	for k, e := range s.m {
		if !now.Before(e.expires) {
			delete(s.m, k)
		}
	}
}

// MemoryClaimSet is the single-instance ClaimSet.
type MemoryClaimSet struct {
	mu     sync.Mutex
	claims map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewMemoryClaimSet(ttl time.Duration) *MemoryClaimSet {
	return &MemoryClaimSet{claims: make(map[string]time.Time), ttl: ttl, now: time.Now}
}

func (c *MemoryClaimSet) Claim(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if exp, ok := c.claims[key]; ok && now.Before(exp) {
		return false, nil
	}
	c.claims[key] = now.Add(c.ttl)
	return true, nil
}

func (c *MemoryClaimSet) Release(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.claims, key)
	return nil
}
