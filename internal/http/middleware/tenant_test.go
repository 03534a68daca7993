package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

type stubAuth map[string]string

func (s stubAuth) Authenticate(id, key string) (string, error) {
	if id == "" || key == "" {
		return "", errors.New("missing")
	}
	if want, ok := s[id]; !ok || want != key {
		return "", errors.New("unauthorized")
	}
	return id, nil
}

func TestTenantGate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TenantGate(stubAuth{"demo-hotel": "k1"}))
	r.GET("/report", func(c *gin.Context) { c.String(http.StatusOK, HotelID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report?hotel_id=demo-hotel&hotel_key=k1", nil))
	if w.Code != http.StatusOK || w.Body.String() != "demo-hotel" {
		t.Fatalf("authorized: %d %q", w.Code, w.Body.String())
	}

	// Missing and wrong credentials look the same to the caller.
	var bodies []string
	for _, q := range []string{"", "?hotel_id=demo-hotel", "?hotel_id=demo-hotel&hotel_key=nope", "?hotel_id=ghost&hotel_key=k1"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/report"+q, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%q: status %d", q, w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%q: %v", q, err)
		}
		if body["ok"] != false || body["error"] != "Unauthorized" {
			t.Fatalf("%q: body %v", q, body)
		}
		bodies = append(bodies, w.Body.String())
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("401 bodies differ: %q vs %q", b, bodies[0])
		}
	}
}

func TestHotelID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if HotelID(c) != "" {
		t.Fatal("expected empty hotel id")
	}
}
