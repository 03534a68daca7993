// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements the edge token-bucket limiter for dashboard and event
// endpoints. It is process-local and complements, not replaces, the
// per-session fixed window of the chat pipeline.
package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// KeyFunc maps a request to its bucket identity.
type KeyFunc func(*gin.Context) string

// KeyByHotelOrIP keys buckets by the hotel authenticated by TenantGate and
// falls back to the client IP ("hotel:demo-hotel" vs "ip:203.0.113.7").
func KeyByHotelOrIP() KeyFunc {
	return func(c *gin.Context) string {
		if id := HotelID(c); id != "" {
			return "hotel:" + id
		}
		return "ip:" + c.ClientIP()
	}
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter is a per-key token-bucket limiter. Idle buckets are evicted
// after ttl during every gcEvery-th lookup. Safe for concurrent use.
type RateLimiter struct {
	rps   rate.Limit
	burst int
	keyFn KeyFunc

	mu       sync.Mutex
	visitors map[string]*visitor
	ttl      time.Duration
	lookups  uint64
	gcEvery  uint64
	now      func() time.Time
}

// NewRateLimiter returns a limiter refilling rps tokens per second with the
// given burst (coerced to at least 1).
func NewRateLimiter(rps float64, burst int, keyFn KeyFunc) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		rps:      rate.Limit(rps),
		burst:    burst,
		keyFn:    keyFn,
		visitors: make(map[string]*visitor),
		ttl:      10 * time.Minute,
		gcEvery:  5000,
		now:      time.Now,
	}
}

// limiterFor returns the bucket for key. Eviction runs before the lookup so a
// stale bucket for key itself is replaced with a fresh one.
func (rl *RateLimiter) limiterFor(key string) *rate.Limiter {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= rl.gcEvery {
		for k, v := range rl.visitors {
			if now.Sub(v.lastSeen) >= rl.ttl {
				delete(rl.visitors, k)
			}
		}
		rl.lookups = 0
	}

	if v, ok := rl.visitors[key]; ok {
		v.lastSeen = now
		return v.limiter
	}
	lim := rate.NewLimiter(rl.rps, rl.burst)
	rl.visitors[key] = &visitor{limiter: lim, lastSeen: now}
	return lim
}

// Handler enforces the limit and answers 429 with Retry-After when a bucket
// is empty.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limiterFor(rl.keyFn(c)).Allow() {
			c.Next()
			return
		}
		c.Header("Retry-After", "1")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"ok":         false,
			"request_id": c.Writer.Header().Get(requestIDHeader),
			"code":       "too_many_requests",
			"error":      "rate limit exceeded",
		})
	}
}
