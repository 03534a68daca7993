package limits

import (
	"context"
	"sync"
	"time"
)

// dayLayout is the UTC calendar-day key format.
const dayLayout = "2006-01-02"

// unknownHotel keys usage recorded without a hotel id.
const unknownHotel = "unknown"

// Ticket identifies one reserved model call so it can be released if the
// call fails.
type Ticket struct {
	HotelID string
	Day     string
}

// DailyUsage counts model calls per hotel for the current UTC day. When the
// observed day changes, every hotel's counter resets at once.
//
// A call is reserved before the model is contacted and released if the call
// fails, so concurrent requests can never push a hotel past its cap and only
// successful calls remain counted.
//
// This type is safe for concurrent use.
type DailyUsage struct {
	now func() time.Time

	mu   sync.Mutex
	day  string
	used map[string]int
}

// NewDailyUsage returns an empty counter using the wall clock.
func NewDailyUsage() *DailyUsage {
	return NewDailyUsageWithClock(time.Now)
}

// NewDailyUsageWithClock returns an empty counter reading time from now.
func NewDailyUsageWithClock(now func() time.Time) *DailyUsage {
	return &DailyUsage{now: now, used: make(map[string]int)}
}

func dayOf(t time.Time) string { return t.UTC().Format(dayLayout) }

func hotelKey(id string) string {
	if id == "" {
		return unknownHotel
	}
	return id
}

// rolloverLocked discards all counters when the calendar day has changed.
func (u *DailyUsage) rolloverLocked() string {
	today := dayOf(u.now())
	if today != u.day {
		u.day = today
		u.used = make(map[string]int)
	}
	return today
}

// Reserve takes one call from hotelID's allowance. It reports false, without
// changing any counter, when the hotel has already used dailyCap calls today.
func (u *DailyUsage) Reserve(_ context.Context, hotelID string, dailyCap int) (Ticket, bool, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	day := u.rolloverLocked()
	k := hotelKey(hotelID)
	if u.used[k] >= dailyCap {
		return Ticket{}, false, nil
	}
	u.used[k]++
	return Ticket{HotelID: k, Day: day}, true, nil
}

// Release returns a reserved call. Tickets from a previous day are ignored
// since their counters no longer exist.
func (u *DailyUsage) Release(_ context.Context, t Ticket) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.rolloverLocked() != t.Day {
		return nil
	}
	k := hotelKey(t.HotelID)
	if u.used[k] > 0 {
		u.used[k]--
	}
	return nil
}

// Used returns how many calls hotelID has consumed today.
func (u *DailyUsage) Used(_ context.Context, hotelID string) (int, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.rolloverLocked()
	return u.used[hotelKey(hotelID)], nil
}

// Day returns the UTC day the counters currently belong to.
func (u *DailyUsage) Day() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.rolloverLocked()
}
