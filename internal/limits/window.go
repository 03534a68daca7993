// Package limits holds the shared mutable counters of the chat pipeline:
//
//   - WindowLimiter: a fixed-window request limiter per (hotel, session) key;
//   - DailyUsage: per-hotel model-call counters for the current UTC day.
//
// Both have an in-memory implementation (mutex-guarded maps, the default) and
// a Redis-backed one for deployments that run more than one instance.
package limits

import (
	"context"
	"sync"
	"time"
)

// sweepEvery is how many calls pass between opportunistic sweeps of stale
// windows.
const sweepEvery = 5000

type window struct {
	count int
	start time.Time
}

// WindowLimiter allows at most limit calls per key in each fixed window. A
// key's window opens on its first call and is replaced by the first call
// arriving a full window duration or more after it opened. Bursts of up to 2*limit-1 calls straddling a window
// boundary are possible.
//
// Windows idle for at least two window lengths are evicted during periodic
// sweeps, so memory stays proportional to the number of recently active keys.
//
// This type is safe for concurrent use.
type WindowLimiter struct {
	limit  int
	window time.Duration
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*window
	calls   uint64
}

// NewWindowLimiter returns a limiter allowing limit calls per window.
// limit < 1 is coerced to 1.
func NewWindowLimiter(limit int, win time.Duration) *WindowLimiter {
	if limit < 1 {
		limit = 1
	}
	return &WindowLimiter{
		limit:   limit,
		window:  win,
		now:     time.Now,
		entries: make(map[string]*window),
	}
}

// CheckAndRecord records a call for key at now and reports whether it is
// within the limit. A rejected call still counts toward the current window.
func (l *WindowLimiter) CheckAndRecord(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls++
	if l.calls >= sweepEvery {
		l.sweepLocked(now)
		l.calls = 0
	}

	w, ok := l.entries[key]
	if !ok || now.Sub(w.start) >= l.window {
		l.entries[key] = &window{count: 1, start: now}
		return true
	}
	w.count++
	return w.count <= l.limit
}

// Allow is CheckAndRecord at the limiter's clock. It never returns an error.
func (l *WindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.CheckAndRecord(key, l.now()), nil
}

// Sweep evicts windows that started at least two window lengths before now
// and returns how many were removed.
func (l *WindowLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(now)
}

func (l *WindowLimiter) sweepLocked(now time.Time) int {
	n := 0
	for k, w := range l.entries {
		if now.Sub(w.start) >= 2*l.window {
			delete(l.entries, k)
			n++
		}
	}
	return n
}

// Len returns the number of tracked keys.
func (l *WindowLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
