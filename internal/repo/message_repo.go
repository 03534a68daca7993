// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for chat sessions
// and logged messages.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/hotel-concierge/internal/domain"
)

// DefaultLang is stored when a message is logged without a language.
const DefaultLang = "el"

// UpsertSession records that sessionID belongs to hotelID. A session that
// reappears under another hotel is reassigned.
func UpsertSession(ctx context.Context, db *gorm.DB, hotelID, sessionID string) error {
	now := time.Now().UTC()
	s := &domain.ChatSession{SessionID: sessionID, HotelID: hotelID, CreatedAt: now, UpdatedAt: now}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"hotel_id", "updated_at"}),
		}).
		Create(s).Error
}

// CreateMessage inserts a new message row.
func CreateMessage(ctx context.Context, db *gorm.DB, hotelID, sessionID, role, text, lang, source string) (*domain.ChatMessage, error) {
	if lang == "" {
		lang = DefaultLang
	}
	m := &domain.ChatMessage{
		ID:        uuid.NewString(),
		HotelID:   hotelID,
		SessionID: sessionID,
		Role:      role,
		Message:   text,
		Lang:      lang,
		Source:    source,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListMessagesSince returns a hotel's messages created at or after since,
// ordered deterministically (CreatedAt ASC, ID ASC).
func ListMessagesSince(ctx context.Context, db *gorm.DB, hotelID string, since time.Time) ([]domain.ChatMessage, error) {
	var out []domain.ChatMessage
	err := db.WithContext(ctx).
		Where("hotel_id = ? AND created_at >= ?", hotelID, since.UTC()).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}
