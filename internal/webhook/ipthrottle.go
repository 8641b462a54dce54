package webhook

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type ipEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPThrottle bounds how often a single source IP can reach the signature
// check. HMAC verification is the expensive step, so spam is shed here for
// the cost of a map lookup. Idle entries are swept on a ticker so spoofed
// source IPs cannot grow the map without bound.
type IPThrottle struct {
	mu      sync.Mutex
	entries map[string]*ipEntry
	limit   rate.Limit
	burst   int
}

// NewIPThrottle allows requestsPerMinute sustained per IP, with the same
// value as burst headroom.
func NewIPThrottle(requestsPerMinute int) *IPThrottle {
	return &IPThrottle{
		entries: make(map[string]*ipEntry),
		limit:   rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   requestsPerMinute,
	}
}

func (t *IPThrottle) Allow(ip string) bool {
	t.mu.Lock()
	entry, ok := t.entries[ip]
	if !ok {
		entry = &ipEntry{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.entries[ip] = entry
	}
	entry.lastSeen = time.Now()
	t.mu.Unlock()

	return entry.limiter.Allow()
}

// Sweep drops entries last seen before cutoff. An evicted IP that returns
// simply starts a fresh limiter with full burst headroom.
func (t *IPThrottle) Sweep(cutoff time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for ip, entry := range t.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(t.entries, ip)
		}
	}
}
