package economy

import (
	"context"
	"sync"
	"time"
)

// UsageStore tracks per-user XP earned today, split into the general counter
// and the tip-specific one. The two ceilings are independent budgets and must
// never share a counter.
type UsageStore interface {
	DailyXP(ctx context.Context, userID string) (general int, tip int, err error)
	AddDailyXP(ctx context.Context, userID string, general int, tip int) error
}

// MemoryUsageStore keeps counters in process memory, keyed by user and UTC
// date. Counters for past days are simply never read again.
type MemoryUsageStore struct {
	mu      sync.RWMutex
	general map[string]int // Key: userID:YYYY-MM-DD
	tip     map[string]int
}

func NewMemoryUsageStore() *MemoryUsageStore {
	return &MemoryUsageStore{
		general: make(map[string]int),
		tip:     make(map[string]int),
	}
}

func (s *MemoryUsageStore) DailyXP(ctx context.Context, userID string) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := s.makeKey(userID)
	return s.general[key], s.tip[key], nil
}

func (s *MemoryUsageStore) AddDailyXP(ctx context.Context, userID string, general, tip int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.makeKey(userID)
	s.general[key] += general
	s.tip[key] += tip
	return nil
}

func (s *MemoryUsageStore) makeKey(userID string) string {
	return userID + ":" + time.Now().UTC().Format("2006-01-02")
}
