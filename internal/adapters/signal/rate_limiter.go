package signal

import (
	"sync"
	"time"
)

// JoinRateLimiter caps join attempts per client token over a sliding
// window, so a misbehaving client cannot churn rooms. Tokens whose
// whole window has expired are swept out so the history map does not
// grow for the process lifetime.
type JoinRateLimiter struct {
	mu        sync.Mutex
	history   map[string][]time.Time
	limit     int
	interval  time.Duration
	lastSweep time.Time
}

func NewJoinRateLimiter(limit int, interval time.Duration) *JoinRateLimiter {
	return &JoinRateLimiter{
		history:  make(map[string][]time.Time),
		limit:    limit,
		interval: interval,
	}
}

func (rl *JoinRateLimiter) Allow(token string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	windowStart := now.Add(-rl.interval)
	rl.sweep(now, windowStart)

	attempts := rl.history[token]
	fresh := make([]time.Time, 0, len(attempts))
	for _, t := range attempts {
		if t.After(windowStart) {
			fresh = append(fresh, t)
		}
	}

	if len(fresh) >= rl.limit {
		return false
	}

	fresh = append(fresh, now)
	rl.history[token] = fresh
	return true
}

// sweep drops tokens whose newest attempt fell out of the window. Runs
// at most once per interval; any single call is O(tokens).
func (rl *JoinRateLimiter) sweep(now, windowStart time.Time) {
	if now.Sub(rl.lastSweep) < rl.interval {
		return
	}
	rl.lastSweep = now
	for token, attempts := range rl.history {
		if len(attempts) == 0 || !attempts[len(attempts)-1].After(windowStart) {
			delete(rl.history, token)
		}
	}
}
