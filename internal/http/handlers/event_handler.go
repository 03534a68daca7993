// Event HTTP handler: POST /api/events records widget conversion events.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/hotel-concierge/internal/http/middleware"
	"github.com/tbourn/hotel-concierge/internal/services"
	"github.com/tbourn/hotel-concierge/internal/sysutil"
)

// EventRequest is the JSON payload of POST /api/events. Credentials may also
// be passed as hotel_id / hotel_key query parameters.
type EventRequest struct {
	HotelID   string          `json:"hotel_id" example:"demo-hotel"`
	HotelKey  string          `json:"hotel_key" example:"demo_key_123"`
	SessionID string          `json:"session_id" example:"s-8f2c"`
	EventType string          `json:"event_type" example:"booking_click" enums:"booking_click,lead_created,widget_open,widget_close"`
	Meta      json.RawMessage `json:"meta,omitempty" swaggertype:"object"`
}

// EventResponse acknowledges a stored event.
type EventResponse struct {
	OK       bool   `json:"ok" example:"true"`
	EventID  string `json:"event_id" example:"6f1c0e8e-6f4e-4a55-9d0c-0f7d5a0d7e11"`
	Replayed bool   `json:"replayed"`
}

// HeaderIdempotencyReplayed is set to "true" when an earlier event is reported.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// TrackEvent godoc
// @ID          trackEvent
// @Summary     Record a widget event
// @Description Stores a booking click, lead, widget open or widget close. A repeated Idempotency-Key for the same session returns the first event.
// @Tags        Events
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string                  false  "Deduplication key"  example(evt-7d2f)
// @Param       body             body    handlers.EventRequest   true   "Event"
//
// @Success     200  {object}  handlers.EventResponse
// @Header      200  {string}  Idempotency-Replayed  "true when the event was recorded earlier"
// @Failure     400  {object}  handlers.ErrorResponse  "Missing session or unknown event type"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /api/events [post]
func (h *Handlers) TrackEvent(c *gin.Context) {
	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	hotelID, err := h.auth.Authenticate(
		sysutil.FirstNonEmpty(req.HotelID, c.Query("hotel_id")),
		sysutil.FirstNonEmpty(req.HotelKey, c.Query("hotel_key")),
	)
	if err != nil {
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "Unauthorized")
		return
	}

	key, _ := middleware.GetIdempotencyKey(c)
	res, err := h.events.Track(c.Request.Context(), services.EventRequest{
		HotelID:        hotelID,
		SessionID:      req.SessionID,
		EventType:      req.EventType,
		Meta:           req.Meta,
		IdempotencyKey: key,
	})
	switch {
	case errors.Is(err, services.ErrMissingSession), errors.Is(err, services.ErrInvalidEventType):
		fail(c, http.StatusBadRequest, ErrCodeInvalidEvent, err.Error())
		return
	case err != nil:
		internal(c, err)
		return
	}

	if res.Replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	ok(c, http.StatusOK, EventResponse{OK: true, EventID: res.EventID, Replayed: res.Replayed})
}
