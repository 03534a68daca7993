package limits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// usageTTL keeps a day's counters around long enough to outlive the day in
// every time zone.
const usageTTL = 48 * time.Hour

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("limits: parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("limits: redis ping: %w", err)
	}
	return client, nil
}

// incrExpire bumps KEYS[1] and starts its TTL of ARGV[1] milliseconds on the
// first increment, so a counter never exists without an expiry.
var incrExpire = redis.NewScript(`
local n = redis.call('INCR', KEYS[1])
if n == 1 then
	redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
return n
`)

func incrWithTTL(ctx context.Context, c *redis.Client, key string, ttl time.Duration) (int64, error) {
	ms := ttl.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	return incrExpire.Run(ctx, c, []string{key}, ms).Int64()
}

// RedisWindowLimiter is a fixed-window limiter shared by all instances. A
// key's window opens on its first request and closes when the counter
// expires one window length later.
type RedisWindowLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisWindowLimiter returns a limiter storing counters under prefix.
func NewRedisWindowLimiter(client *redis.Client, prefix string, limit int, win time.Duration) *RedisWindowLimiter {
	if limit < 1 {
		limit = 1
	}
	return &RedisWindowLimiter{client: client, prefix: prefix, limit: limit, window: win}
}

func (l *RedisWindowLimiter) key(key string) string {
	return fmt.Sprintf("%s:win:%s", l.prefix, key)
}

// Allow counts a request against key's current window.
func (l *RedisWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	count, err := incrWithTTL(ctx, l.client, l.key(key), l.window)
	if err != nil {
		return false, fmt.Errorf("limits: window incr: %w", err)
	}
	return count <= int64(l.limit), nil
}

// RedisDailyUsage keeps per-hotel daily model-call counters in Redis. Keys
// embed the UTC day, so the reset at day change needs no coordination.
type RedisDailyUsage struct {
	client *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisDailyUsage returns a counter storing keys under prefix.
func NewRedisDailyUsage(client *redis.Client, prefix string) *RedisDailyUsage {
	return &RedisDailyUsage{client: client, prefix: prefix, now: time.Now}
}

func (u *RedisDailyUsage) key(day, hotelID string) string {
	return fmt.Sprintf("%s:ai:%s:%s", u.prefix, day, hotelKey(hotelID))
}

// Reserve increments the counter and rolls the increment back when it
// overshoots dailyCap.
func (u *RedisDailyUsage) Reserve(ctx context.Context, hotelID string, dailyCap int) (Ticket, bool, error) {
	day := dayOf(u.now())
	k := u.key(day, hotelID)

	n, err := incrWithTTL(ctx, u.client, k, usageTTL)
	if err != nil {
		return Ticket{}, false, fmt.Errorf("limits: usage incr: %w", err)
	}
	if n > int64(dailyCap) {
		if err := u.client.Decr(ctx, k).Err(); err != nil {
			return Ticket{}, false, err
		}
		return Ticket{}, false, nil
	}
	return Ticket{HotelID: hotelKey(hotelID), Day: day}, true, nil
}

// Release decrements the counter of the ticket's day.
func (u *RedisDailyUsage) Release(ctx context.Context, t Ticket) error {
	return u.client.Decr(ctx, u.key(t.Day, t.HotelID)).Err()
}

// Used returns today's count for hotelID.
func (u *RedisDailyUsage) Used(ctx context.Context, hotelID string) (int, error) {
	n, err := u.client.Get(ctx, u.key(dayOf(u.now()), hotelID)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
