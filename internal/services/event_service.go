// Package services – EventService
//
// EventService records widget conversion events (booking clicks, leads,
// widget open/close). A client may attach an idempotency key; a retry with
// the same (hotel, session, key) inside the TTL returns the first event id
// instead of inserting again.
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/domain"
	"github.com/tbourn/hotel-concierge/internal/observability"
	"github.com/tbourn/hotel-concierge/internal/repo"
)

// DefaultIdempotencyTTL is used when EventService.IdempotencyTTL is unset.
const DefaultIdempotencyTTL = 24 * time.Hour

// EventRequest is one widget event for an authenticated hotel.
type EventRequest struct {
	HotelID        string
	SessionID      string
	EventType      string
	Meta           json.RawMessage
	IdempotencyKey string
}

// EventResult identifies the stored event. Replayed is true when the event
// was recorded by an earlier request with the same idempotency key.
type EventResult struct {
	EventID  string
	Replayed bool
}

// EventService stores widget events.
type EventService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *EventService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Track validates and stores req.
func (s *EventService) Track(ctx context.Context, req EventRequest) (*EventResult, error) {
	tr := otel.Tracer("services/EventService")
	ctx, span := tr.Start(ctx, "Track",
		trace.WithAttributes(
			attribute.String("hotel.id", req.HotelID),
			attribute.String("event.type", req.EventType),
		),
	)
	defer span.End()

	sid := strings.TrimSpace(req.SessionID)
	if sid == "" {
		return nil, ErrMissingSession
	}
	eventType := strings.TrimSpace(req.EventType)
	if !domain.ValidEventType(eventType) {
		return nil, ErrInvalidEventType
	}
	meta := MetaObject(req.Meta)
	key := strings.TrimSpace(req.IdempotencyKey)

	if key != "" {
		if res, ok, err := s.replay(ctx, req.HotelID, sid, key); err != nil || ok {
			return res, err
		}
	}

	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}

	ev, err := s.insert(ctx, req.HotelID, sid, eventType, meta, key, ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won; report its event.
		if res, ok, rerr := s.replay(ctx, req.HotelID, sid, key); rerr != nil || ok {
			return res, rerr
		}
		// The blocking record has expired but not been purged yet.
		if _, perr := s.PurgeExpired(ctx); perr != nil {
			return nil, fmt.Errorf("track event: %w", perr)
		}
		ev, err = s.insert(ctx, req.HotelID, sid, eventType, meta, key, ttl)
	}
	if err != nil {
		return nil, fmt.Errorf("track event: %w", err)
	}

	observability.ObserveEvent(eventType)
	return &EventResult{EventID: ev.ID}, nil
}

// insert stores the event and, when key is set, its idempotency record in one
// transaction.
func (s *EventService) insert(ctx context.Context, hotelID, sessionID, eventType, meta, key string, ttl time.Duration) (*domain.ChatEvent, error) {
	var ev *domain.ChatEvent
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		if ev, err = repo.CreateEvent(ctx, tx, hotelID, sessionID, eventType, meta); err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		_, err = repo.CreateIdempotency(ctx, tx, hotelID, sessionID, key, ev.ID, http.StatusOK, ttl)
		return err
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *EventService) replay(ctx context.Context, hotelID, sessionID, key string) (*EventResult, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, hotelID, sessionID, key, s.now())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}
	return &EventResult{EventID: rec.EventID, Replayed: true}, true, nil
}

// PurgeExpired deletes idempotency records whose TTL has elapsed.
func (s *EventService) PurgeExpired(ctx context.Context) (int64, error) {
	return repo.DeleteExpiredIdempotency(ctx, s.DB, s.now())
}

// MetaObject returns raw when it is a JSON object and "{}" otherwise.
func MetaObject(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' || !json.Valid(raw) {
		return "{}"
	}
	return string(raw)
}
