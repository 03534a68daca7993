package handlers

import (
	"errors"
	"net/http"
	"testing"

	"github.com/tbourn/hotel-concierge/internal/http/middleware"
	"github.com/tbourn/hotel-concierge/internal/services"
)

func dashboardRouter(a *fakeAnalytics) http.Handler {
	h := New(Deps{Analytics: a})
	r := newEngine()
	g := r.Group("/api", middleware.TenantGate(demoAuth))
	g.GET("/analytics", h.Analytics)
	g.GET("/analytics/summary", h.Summary)
	g.GET("/dashboard/overview", h.Overview)
	g.GET("/conversations/live", h.LiveConversations)
	return r
}

const creds = "hotel_id=demo-hotel&hotel_key=k1"

func TestDashboard_PassesHotelAndDays(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", services.DefaultDays},
		{"&days=30", 30},
		{"&days=0", 1},
		{"&days=1000", services.MaxDays},
		{"&days=abc", services.DefaultDays},
	}
	for _, tc := range cases {
		a := &fakeAnalytics{}
		w := send(dashboardRouter(a), http.MethodGet, "/api/analytics?"+creds+tc.query, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%q: status=%d", tc.query, w.Code)
		}
		if a.hotelID != "demo-hotel" || a.days != tc.want {
			t.Fatalf("%q: hotel=%q days=%d want %d", tc.query, a.hotelID, a.days, tc.want)
		}
	}
}

func TestDashboard_ResponsesFlattenPayload(t *testing.T) {
	a := &fakeAnalytics{}
	r := dashboardRouter(a)

	var an map[string]any
	decodeInto(t, send(r, http.MethodGet, "/api/analytics?"+creds, ""), &an)
	if an["ok"] != true || an["hotel_id"] != "demo-hotel" || an["total_messages"] != float64(4) {
		t.Fatalf("analytics=%v", an)
	}

	var sum map[string]any
	decodeInto(t, send(r, http.MethodGet, "/api/analytics/summary?"+creds, ""), &sum)
	if sum["ok"] != true || sum["plan"] != "basic" || sum["ai_daily_cap"] != float64(10) {
		t.Fatalf("summary=%v", sum)
	}

	var ov map[string]any
	decodeInto(t, send(r, http.MethodGet, "/api/dashboard/overview?"+creds+"&days=14", ""), &ov)
	if ov["ok"] != true || ov["days"] != float64(14) {
		t.Fatalf("overview=%v", ov)
	}
}

func TestLiveConversations_ClampsQuery(t *testing.T) {
	a := &fakeAnalytics{}
	r := dashboardRouter(a)

	send(r, http.MethodGet, "/api/conversations/live?"+creds, "")
	if a.minutes != services.DefaultMinutes || a.limit != services.DefaultLive {
		t.Fatalf("defaults: minutes=%d limit=%d", a.minutes, a.limit)
	}

	send(r, http.MethodGet, "/api/conversations/live?"+creds+"&minutes=99999&limit=-4", "")
	if a.minutes != services.MaxMinutes || a.limit != 1 {
		t.Fatalf("clamped: minutes=%d limit=%d", a.minutes, a.limit)
	}
}

func TestDashboard_Errors(t *testing.T) {
	w := send(dashboardRouter(&fakeAnalytics{summaryMiss: true}), http.MethodGet, "/api/analytics/summary?"+creds, "")
	var er ErrorResponse
	decodeInto(t, w, &er)
	if w.Code != http.StatusNotFound || er.Code != ErrCodeNotFound || er.Error != textNotFound {
		t.Fatalf("summary miss: %d %+v", w.Code, er)
	}

	r := dashboardRouter(&fakeAnalytics{err: errors.New("db down")})
	for _, path := range []string{"/api/analytics", "/api/analytics/summary", "/api/dashboard/overview", "/api/conversations/live"} {
		w := send(r, http.MethodGet, path+"?"+creds, "")
		var er ErrorResponse
		decodeInto(t, w, &er)
		if w.Code != http.StatusInternalServerError || er.Code != ErrCodeInternal || er.Error != textServerError {
			t.Fatalf("%s: %d %+v", path, w.Code, er)
		}
	}
}

func TestDashboard_RequiresCredentials(t *testing.T) {
	a := &fakeAnalytics{}
	w := send(dashboardRouter(a), http.MethodGet, "/api/analytics?hotel_id=demo-hotel&hotel_key=bad", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status=%d", w.Code)
	}
	if a.hotelID != "" {
		t.Fatal("service should not be called")
	}
}
