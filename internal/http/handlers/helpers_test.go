package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hotel-concierge/internal/services"
)

// ---------- fakes ----------

type fakeReplier struct {
	out  services.Reply
	err  error
	last services.ReplyRequest
}

func (f *fakeReplier) Reply(_ context.Context, req services.ReplyRequest) (services.Reply, error) {
	f.last = req
	return f.out, f.err
}

type fakeAnalytics struct {
	err         error
	days        int
	minutes     int
	limit       int
	hotelID     string
	summaryMiss bool
}

func (f *fakeAnalytics) Analytics(_ context.Context, hotelID string, days int) (*services.Analytics, error) {
	f.hotelID, f.days = hotelID, days
	if f.err != nil {
		return nil, f.err
	}
	return &services.Analytics{HotelID: hotelID, Days: days, TotalMessages: 4}, nil
}

func (f *fakeAnalytics) Summary(_ context.Context, hotelID string, days int) (*services.Summary, error) {
	f.hotelID, f.days = hotelID, days
	if f.summaryMiss {
		return nil, services.ErrHotelNotFound
	}
	if f.err != nil {
		return nil, f.err
	}
	return &services.Summary{HotelID: hotelID, Days: days, Plan: "basic", AIDailyCap: 10}, nil
}

func (f *fakeAnalytics) Overview(_ context.Context, hotelID string, days int) (*services.Overview, error) {
	f.hotelID, f.days = hotelID, days
	if f.err != nil {
		return nil, f.err
	}
	return &services.Overview{HotelID: hotelID, Days: days}, nil
}

func (f *fakeAnalytics) Live(_ context.Context, hotelID string, minutes, limit int) (*services.LiveConversations, error) {
	f.hotelID, f.minutes, f.limit = hotelID, minutes, limit
	if f.err != nil {
		return nil, f.err
	}
	return &services.LiveConversations{HotelID: hotelID, Minutes: minutes}, nil
}

type fakeTracker struct {
	res  *services.EventResult
	err  error
	last services.EventRequest
}

func (f *fakeTracker) Track(_ context.Context, req services.EventRequest) (*services.EventResult, error) {
	f.last = req
	return f.res, f.err
}

// fakeAuth accepts id/key pairs from its map.
type fakeAuth map[string]string

func (a fakeAuth) Authenticate(hotelID, key string) (string, error) {
	id := strings.TrimSpace(hotelID)
	if id == "" || key == "" {
		return "", services.ErrMissingCredentials
	}
	if want, ok := a[id]; !ok || want != key {
		return "", services.ErrUnauthorized
	}
	return id, nil
}

var demoAuth = fakeAuth{"demo-hotel": "k1"}

func fixedPing(at time.Time, err error) Pinger {
	return func(context.Context) (time.Time, error) { return at, err }
}

// ---------- request helpers ----------

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func send(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeInto(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("json %q: %v", w.Body.String(), err)
	}
}
