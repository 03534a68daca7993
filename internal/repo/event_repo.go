// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for widget
// conversion events.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

// CreateEvent inserts a conversion event. meta is a JSON object literal; an
// empty value is stored as "{}". Event type validation is the caller's job.
func CreateEvent(ctx context.Context, db *gorm.DB, hotelID, sessionID, eventType, meta string) (*domain.ChatEvent, error) {
	if strings.TrimSpace(meta) == "" {
		meta = "{}"
	}
	e := &domain.ChatEvent{
		ID:        uuid.NewString(),
		HotelID:   hotelID,
		SessionID: sessionID,
		EventType: eventType,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}
