package ratelimit

import (
	"context"
	"sync"
	"time"
)

type record struct {
	count   int
	resetAt time.Time
}

// MemoryStore keeps window records in a mutex-guarded map. Records are
// replaced, not incremented, once their window has passed; stale entries for
// idle keys are swept opportunistically on Take.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]*record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*record)}
}

func (s *MemoryStore) Take(ctx context.Context, key string, maxAttempts int, window time.Duration, now time.Time) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[key]
	if !ok || now.After(rec.resetAt) {
		rec = &record{count: 0, resetAt: now.Add(window)}
		s.records[key] = rec
	}

	if rec.count >= maxAttempts {
		// Rejected attempts must not consume budget.
		return Result{Allowed: false, Remaining: 0, ResetAt: rec.resetAt}, nil
	}

	rec.count++
	return Result{
		Allowed:   true,
		Remaining: maxAttempts - rec.count,
		ResetAt:   rec.resetAt,
	}, nil
}

// Sweep drops records whose window ended before now. Callers run it on a
// ticker; correctness never depends on it.
func (s *MemoryStore) Sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, rec := range s.records {
		if now.After(rec.resetAt) {
			delete(s.records, key)
		}
	}
}
