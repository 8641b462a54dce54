// Package ratelimit implements the fixed-window counters gating wallet
// operations and webhook ingestion.
//
// The window is fixed, not sliding: a burst at the tail of one window followed
// by a burst at the head of the next can momentarily run at up to twice the
// nominal rate. Callers' retry logic depends on the exact reset-boundary
// behavior, so this approximation is part of the contract, not a bug to fix.
package ratelimit

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Result of one admission check.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store owns the window records. Each Take call is one atomic
// read-compare-mutate: two concurrent callers for the same key must never
// both observe count < max when only one slot remains.
type Store interface {
	Take(ctx context.Context, key string, maxAttempts int, window time.Duration, now time.Time) (Result, error)
}

// Limiter applies per-(subject, operation) fixed windows using an injected
// store and clock. All checks are in-memory arithmetic; nothing blocks while
// a record is held.
type Limiter struct {
	store Store
	clock clockwork.Clock
}

func New(store Store, clock clockwork.Clock) *Limiter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Limiter{store: store, clock: clock}
}

// Check admits or rejects one attempt for subjectID performing operation.
// Rejected attempts do not consume budget.
func (l *Limiter) Check(ctx context.Context, subjectID, operation string, maxAttempts int, window time.Duration) (Result, error) {
	key := subjectID + ":" + operation
	return l.store.Take(ctx, key, maxAttempts, window, l.clock.Now())
}
