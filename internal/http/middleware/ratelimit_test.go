package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestKeyByHotelOrIP(t *testing.T) {
	gin.SetMode(gin.TestMode)
	keyFn := KeyByHotelOrIP()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.RemoteAddr = "203.0.113.7:5555"
	if got := keyFn(c); got != "ip:203.0.113.7" {
		t.Fatalf("ip key = %q", got)
	}

	c.Set(hotelIDKey, "demo-hotel")
	if got := keyFn(c); got != "hotel:demo-hotel" {
		t.Fatalf("hotel key = %q", got)
	}
}

func TestRateLimiter_BurstThen429(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rl := NewRateLimiter(0.001, 2, func(c *gin.Context) string { return c.GetHeader("X-Key") })
	r := gin.New()
	r.Use(rl.Handler())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	hit := func(key string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set("X-Key", key)
		r.ServeHTTP(w, req)
		return w
	}

	for i := 0; i < 2; i++ {
		if w := hit("a"); w.Code != http.StatusOK {
			t.Fatalf("request %d: %d", i, w.Code)
		}
	}
	w := hit("a")
	if w.Code != http.StatusTooManyRequests || w.Header().Get("Retry-After") != "1" {
		t.Fatalf("third request: %d retry-after=%q", w.Code, w.Header().Get("Retry-After"))
	}
	if w := hit("b"); w.Code != http.StatusOK {
		t.Fatalf("other key shares bucket: %d", w.Code)
	}
}

func TestRateLimiter_EvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(1, 0, nil)
	if rl.burst != 1 {
		t.Fatalf("burst not coerced: %d", rl.burst)
	}
	now := time.Date(2026, 5, 10, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	first := rl.limiterFor("old")
	if rl.limiterFor("old") != first {
		t.Fatal("bucket not reused")
	}

	rl.gcEvery = 1
	now = now.Add(rl.ttl)
	rl.limiterFor("other")
	if _, ok := rl.visitors["old"]; ok {
		t.Fatal("idle bucket survived GC")
	}
	if rl.limiterFor("old") == first {
		t.Fatal("evicted bucket was returned again")
	}
}
