// Package handlers provides HTTP handler implementations for the public API.
//
// Two response shapes exist. The widget endpoint (POST /api/chat) always
// answers with a ChatResponse so the guest sees a reply even on failure.
// Dashboard, event and health endpoints answer with their payload plus
// "ok": true, or with an ErrorResponse built by fail().
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hotel-concierge/internal/http/middleware"
)

// ErrorResponse is the error envelope of the dashboard, event and health
// endpoints.
type ErrorResponse struct {
	OK bool `json:"ok" example:"false"`
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go constants)
	Code string `json:"code" example:"unauthorized"`
	// Human-readable message
	Error string `json:"error" example:"Unauthorized"`
}

// ChatResponse is the reply envelope consumed by the chat widget. Reply is
// always set; Source is empty only for server errors.
type ChatResponse struct {
	OK     bool   `json:"ok" example:"true"`
	Reply  string `json:"reply" example:"Το check-in είναι από 15:00."`
	Source string `json:"source,omitempty" example:"faq"`
	Error  string `json:"error,omitempty"`
}

// fail aborts the request with an ErrorResponse. 5xx responses are logged with
// the request-scoped logger.
func fail(c *gin.Context, status int, code, msg string) {
	resp := ErrorResponse{
		RequestID: c.Writer.Header().Get("X-Request-ID"),
		Code:      code,
		Error:     msg,
	}

	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Str("message", msg).
			Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail is the exported variant of fail() used by router fallbacks.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

// internal records err on the gin context and fails with a generic 500.
func internal(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, ErrCodeInternal, textServerError)
}

// ok writes a success JSON response.
func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

// chat writes a widget envelope. Non-2xx statuses abort the chain.
func chat(c *gin.Context, status int, resp ChatResponse) {
	resp.OK = status < http.StatusBadRequest
	if resp.OK {
		c.JSON(status, resp)
		return
	}
	c.AbortWithStatusJSON(status, resp)
}
