// Chat HTTP handlers.
//
// This file exposes the widget endpoint:
//   - POST /api/chat   (answer one guest message)
//   - GET  /api/chat   (usage note)
//
// It also holds the Handlers type and the service contracts every endpoint
// in this package depends on.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hotel-concierge/internal/http/middleware"
	"github.com/tbourn/hotel-concierge/internal/services"
)

//
// Service contracts (context-aware)
//

// Replier answers guest messages.
type Replier interface {
	Reply(ctx context.Context, req services.ReplyRequest) (services.Reply, error)
}

// AnalyticsReader serves the dashboard reports for one hotel.
type AnalyticsReader interface {
	Analytics(ctx context.Context, hotelID string, days int) (*services.Analytics, error)
	Summary(ctx context.Context, hotelID string, days int) (*services.Summary, error)
	Overview(ctx context.Context, hotelID string, days int) (*services.Overview, error)
	Live(ctx context.Context, hotelID string, minutes, limit int) (*services.LiveConversations, error)
}

// EventTracker stores widget events.
type EventTracker interface {
	Track(ctx context.Context, req services.EventRequest) (*services.EventResult, error)
}

// TenantAuthenticator checks a hotel id and key and returns the trimmed id.
type TenantAuthenticator interface {
	Authenticate(hotelID, key string) (string, error)
}

// Pinger checks database connectivity and returns the database-side time.
type Pinger func(ctx context.Context) (time.Time, error)

// ServiceInfo is reported by GET /api/health.
type ServiceInfo struct {
	HasModelKey    bool
	Model          string
	CounterBackend string
}

//
// Handler wiring
//

// Deps are the collaborators of Handlers.
type Deps struct {
	Replies   Replier
	Analytics AnalyticsReader
	Events    EventTracker
	Auth      TenantAuthenticator
	Ping      Pinger
	Info      ServiceInfo
	// MaxMessageChars is quoted in the 413 error text.
	MaxMessageChars int
}

// Handlers groups the HTTP endpoints of the concierge API.
type Handlers struct {
	replies   Replier
	analytics AnalyticsReader
	events    EventTracker
	auth      TenantAuthenticator
	ping      Pinger
	info      ServiceInfo
	maxChars  int
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	return &Handlers{
		replies:   d.Replies,
		analytics: d.Analytics,
		events:    d.Events,
		auth:      d.Auth,
		ping:      d.Ping,
		info:      d.Info,
		maxChars:  d.MaxMessageChars,
	}
}

//
// DTOs
//

// ChatRequest is the JSON payload sent by the widget.
type ChatRequest struct {
	HotelID   string `json:"hotel_id" example:"demo-hotel"`
	HotelKey  string `json:"hotel_key" example:"demo_key_123"`
	SessionID string `json:"session_id" example:"s-8f2c"`
	Message   string `json:"message" example:"What time is check-in?"`
}

// UsageNote is returned by GET /api/chat.
type UsageNote struct {
	OK   bool   `json:"ok" example:"true"`
	Note string `json:"note" example:"Use POST /api/chat"`
}

// Texts of the widget rejections that carry no pipeline reply.
const (
	textBadBody     = "Missing hotel_id or message"
	textEmpty       = "Empty message"
	textRateLimited = "Too many messages. Please slow down."
	textQuota       = "Daily AI limit reached"
	textNotFound    = "Hotel not found"
	textServerError = "Internal server error"
)

//
// Handlers
//

// PostChat godoc
// @ID          postChat
// @Summary     Answer a guest message
// @Description Runs the reply pipeline (FAQ rules, hotel FAQ, language model) for one message. Every response carries a human-readable reply.
// @Tags        Chat
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.ChatRequest  true  "Guest message"
//
// @Success     200  {object}  handlers.ChatResponse
// @Failure     400  {object}  handlers.ChatResponse  "Empty message or bad JSON"
// @Failure     401  {object}  handlers.ChatResponse  "Unknown hotel or wrong key"
// @Failure     404  {object}  handlers.ChatResponse  "Hotel profile missing"
// @Failure     413  {object}  handlers.ChatResponse  "Message too long"
// @Failure     429  {object}  handlers.ChatResponse  "Rate limit or daily AI limit"
// @Failure     500  {object}  handlers.ChatResponse  "Server error"
// @Router      /api/chat [post]
func (h *Handlers) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			chat(c, http.StatusRequestEntityTooLarge, ChatResponse{Reply: h.tooLongText(), Error: h.tooLongText()})
			return
		}
		chat(c, http.StatusBadRequest, ChatResponse{Reply: textBadBody, Error: textBadBody})
		return
	}

	out, err := h.replies.Reply(c.Request.Context(), services.ReplyRequest{
		HotelID:   req.HotelID,
		HotelKey:  req.HotelKey,
		SessionID: req.SessionID,
		Message:   req.Message,
	})
	if err == nil {
		chat(c, http.StatusOK, ChatResponse{Reply: out.Text, Source: out.Source})
		return
	}

	lg := middleware.LoggerFrom(c)
	switch {
	case errors.Is(err, services.ErrMissingCredentials):
		lg.Debug().Msg("chat without credentials")
		chat(c, http.StatusUnauthorized, ChatResponse{Reply: out.Text, Source: out.Source, Error: "Unauthorized"})
	case errors.Is(err, services.ErrUnauthorized):
		lg.Warn().Str("hotel_id", req.HotelID).Msg("chat with invalid hotel credentials")
		chat(c, http.StatusUnauthorized, ChatResponse{Reply: out.Text, Source: out.Source, Error: "Unauthorized"})
	case errors.Is(err, services.ErrEmptyMessage):
		chat(c, http.StatusBadRequest, ChatResponse{Reply: textEmpty, Error: textEmpty})
	case errors.Is(err, services.ErrMessageTooLong):
		chat(c, http.StatusRequestEntityTooLarge, ChatResponse{Reply: h.tooLongText(), Error: h.tooLongText()})
	case errors.Is(err, services.ErrRateLimited):
		c.Header("Retry-After", "60")
		chat(c, http.StatusTooManyRequests, ChatResponse{Reply: textRateLimited, Error: textRateLimited})
	case errors.Is(err, services.ErrQuotaExceeded):
		chat(c, http.StatusTooManyRequests, ChatResponse{Reply: out.Text, Source: out.Source, Error: textQuota})
	case errors.Is(err, services.ErrHotelNotFound):
		chat(c, http.StatusNotFound, ChatResponse{Reply: out.Text, Source: out.Source, Error: textNotFound})
	case errors.Is(err, services.ErrUpstream):
		lg.Error().Err(err).Str("hotel_id", out.HotelID).Msg("model call failed")
		chat(c, http.StatusInternalServerError, ChatResponse{Reply: services.ReplyServerError, Error: textServerError})
	default:
		lg.Error().Err(err).Str("hotel_id", out.HotelID).Msg("chat failed")
		chat(c, http.StatusInternalServerError, ChatResponse{Reply: services.ReplyServerError, Error: textServerError})
	}
}

// ChatUsage godoc
// @ID          chatUsage
// @Summary     Usage note for the chat endpoint
// @Tags        Chat
// @Produce     json
// @Success     200  {object}  handlers.UsageNote
// @Router      /api/chat [get]
func (h *Handlers) ChatUsage(c *gin.Context) {
	ok(c, http.StatusOK, UsageNote{OK: true, Note: "Use POST /api/chat"})
}

func (h *Handlers) tooLongText() string {
	if h.maxChars > 0 {
		return fmt.Sprintf("Message too long (max %d chars)", h.maxChars)
	}
	return "Message too long"
}
